package prnid

// Package prnid 提供学号（PRN）规范化与末三位匹配键的计算。
// 扫描识别出的 PRN 可能带有前缀、空格等杂质，全系统统一以纯数字形式存储和比对。

// Normalize 去除 PRN 中所有非数字字符，返回规范形式。
// 无任何数字时返回空串，由调用方判定为无效，禁止用占位值兜底。
func Normalize(raw string) string {
	out := make([]byte, 0, len(raw))
	for i := 0; i < len(raw); i++ {
		if raw[i] >= '0' && raw[i] <= '9' {
			out = append(out, raw[i])
		}
	}
	return string(out)
}

// Last3 返回规范 PRN 的末三位，作为花名册匹配键。
// 不足三位时左侧补零——上游 OCR 常丢失前导零（如 "21" 实为 "021"）。
func Last3(canonical string) string {
	if len(canonical) >= 3 {
		return canonical[len(canonical)-3:]
	}
	b := []byte{'0', '0', '0'}
	copy(b[3-len(canonical):], canonical)
	return string(b)
}

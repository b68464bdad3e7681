package scan

// Package scan 定义扫描识别协作方的输出契约。
// 像素级处理（PDF 栅格化、格子分割、涂卡识别、手写 OCR）在独立流水线中完成，
// 本服务只消费其逐页识别结果，不假设页间顺序。

// PageRecord 一张答题卡的识别结果
type PageRecord struct {
	// 识别出的学生姓名，可能为空或有噪声
	Name string `json:"name"`
	// 原始 PRN，未经规范化，可能含前缀、空格或丢失前导零
	RawPRN string `json:"prn"`
	// 题号 → 学生作答选项；缺题或空白格以空串表示
	Answers map[int]string `json:"answers"`
	// 答题卡图片引用，供人工复核
	ImagePath string `json:"image_path"`
}

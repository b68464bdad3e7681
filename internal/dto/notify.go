package dto

// ── 通知模块 DTO ──

// NotifyResultResponse 成绩邮件群发汇总
// 单个收件人失败不影响其余发送。
type NotifyResultResponse struct {
	Sent           int      `json:"sent"`
	SkippedNoEmail int      `json:"skipped_no_email"`
	Failed         int      `json:"failed"`
	Errors         []string `json:"errors,omitempty"`
}

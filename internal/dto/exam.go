package dto

// ── 判卷/核对模块 DTO ──

// IngestResultResponse 一次导入（新世代）的摘要
type IngestResultResponse struct {
	ExamID         string `json:"exam_id"`
	SubjectID      string `json:"subject_id"`
	TotalQuestions int    `json:"total_questions"`
	SheetCount     int    `json:"sheet_count"`
	ConflictCount  int    `json:"conflict_count"`
}

// SheetResponse 答题卡记录响应
type SheetResponse struct {
	SheetID        string  `json:"sheet_id"`
	ExamID         string  `json:"exam_id"`
	PRN            string  `json:"prn"`
	Name           string  `json:"name"`
	Score          int     `json:"score"`
	TotalQuestions int     `json:"total_questions"`
	ImagePath      *string `json:"image_path,omitempty"`
	IsConflict     bool    `json:"is_conflict"`
	CreatedAt      string  `json:"created_at"`
}

// SheetAnswerResponse 逐题明细响应
type SheetAnswerResponse struct {
	QuestionNo    int     `json:"question_no"`
	StudentAnswer *string `json:"student_answer"` // null 表示空白
	KeyAnswer     string  `json:"key_answer"`
	IsCorrect     bool    `json:"is_correct"`
	IsBlank       bool    `json:"is_blank"`
}

// SheetDetailResponse 答题卡 + 逐题明细
type SheetDetailResponse struct {
	Sheet   SheetResponse         `json:"sheet"`
	Answers []SheetAnswerResponse `json:"answers"`
}

// UpdateSheetIdentityRequest 人工核对：修正答题卡身份归属
type UpdateSheetIdentityRequest struct {
	PRN  string `json:"prn"  binding:"required"`
	Name string `json:"name" binding:"required,min=1,max=128"`
}

// UpdateSheetAnswersRequest 人工核对：整卷覆盖作答并重判
// 空串表示空白作答。
type UpdateSheetAnswersRequest struct {
	Answers map[int]string `json:"answers" binding:"required"`
}

// ReconcileRequest 按后三位核对单条记录
type ReconcileRequest struct {
	SheetID string  `json:"sheet_id" binding:"required,uuid"`
	Last3   string  `json:"last3"    binding:"required,len=3"`
	BatchID *string `json:"batch_id" binding:"omitempty,uuid"`
}

// ReconcileOutcomeResponse 单条核对结果
// Status: matched（唯一命中并已回写）/ none（无人匹配）/ ambiguous（多人候选）
type ReconcileOutcomeResponse struct {
	SheetID    string            `json:"sheet_id"`
	Status     string            `json:"status"`
	Matched    *StudentResponse  `json:"matched,omitempty"`
	Candidates []StudentResponse `json:"candidates,omitempty"`
}

// BulkReconcileRequest 对世代内全部冲突记录批量核对
type BulkReconcileRequest struct {
	BatchID *string `json:"batch_id" binding:"omitempty,uuid"`
}

// BulkReconcileResponse 批量核对汇总
type BulkReconcileResponse struct {
	Total     int                        `json:"total"`
	Matched   int                        `json:"matched"`
	None      int                        `json:"none"`
	Ambiguous int                        `json:"ambiguous"`
	Outcomes  []ReconcileOutcomeResponse `json:"outcomes"`
}

// PublishStatusResponse 发布状态响应
type PublishStatusResponse struct {
	SubjectID   string  `json:"subject_id"`
	ExamID      string  `json:"exam_id,omitempty"`
	IsPublished bool    `json:"is_published"`
	PublishedAt *string `json:"published_at,omitempty"`
}

// ExamResponse 世代信息响应
type ExamResponse struct {
	ExamID    string `json:"exam_id"`
	SubjectID string `json:"subject_id"`
	CreatedAt string `json:"created_at"`
	IsLatest  bool   `json:"is_latest"`
}

// [自证通过] internal/dto/exam.go

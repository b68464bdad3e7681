package model

import "time"

// LabMark 实验/内部成绩 — 对应 lab_marks
// 三态语义的落点：科目无任何 lab_marks 行 → 该科目不设实验；
// 有行但某学生无行或 Marks 为 NULL → 该生实验缺考。
type LabMark struct {
	LabMarkID string    `gorm:"type:uuid;primaryKey;default:gen_random_uuid()"   json:"lab_mark_id"`
	SubjectID string    `gorm:"type:uuid;not null;uniqueIndex:uniq_subject_prn"  json:"subject_id"`
	PRN       string    `gorm:"column:prn;type:varchar(64);not null;uniqueIndex:uniq_subject_prn" json:"prn"`
	Marks     *float64  `gorm:"type:numeric(6,2)"                                json:"marks"`
	UpdatedAt time.Time `gorm:"not null;default:CURRENT_TIMESTAMP"               json:"updated_at"`
}

func (LabMark) TableName() string { return "lab_marks" }

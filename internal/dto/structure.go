package dto

// ── 层级结构模块 DTO ──

// CreateBatchRequest 创建届请求
type CreateBatchRequest struct {
	Name string `json:"name" binding:"required,min=1,max=100"`
}

// CreateCourseRequest 创建课程请求
type CreateCourseRequest struct {
	BatchID string `json:"batch_id" binding:"required,uuid"`
	Name    string `json:"name"     binding:"required,min=1,max=100"`
}

// CreateSubjectRequest 创建科目请求
type CreateSubjectRequest struct {
	CourseID string `json:"course_id" binding:"required,uuid"`
	Name     string `json:"name"      binding:"required,min=1,max=100"`
}

// BatchResponse 届信息响应
type BatchResponse struct {
	BatchID   string `json:"batch_id"`
	Name      string `json:"name"`
	CreatedAt string `json:"created_at"`
}

// CourseResponse 课程信息响应
type CourseResponse struct {
	CourseID  string `json:"course_id"`
	BatchID   string `json:"batch_id"`
	BatchName string `json:"batch_name,omitempty"`
	Name      string `json:"name"`
	CreatedAt string `json:"created_at"`
}

// SubjectResponse 科目信息响应
type SubjectResponse struct {
	SubjectID  string `json:"subject_id"`
	CourseID   string `json:"course_id"`
	CourseName string `json:"course_name,omitempty"`
	Name       string `json:"name"`
	CreatedAt  string `json:"created_at"`
}

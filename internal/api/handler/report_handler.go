package handler

import (
	"errors"

	"github.com/gin-gonic/gin"

	"omr-portal/internal/service"
	"omr-portal/pkg/response"
)

// ReportHandler 管理端报表模块 HTTP 处理器
// 管理端报表始终基于各科目最新世代，不受发布状态影响。
type ReportHandler struct {
	reportSvc service.ReportService
}

// NewReportHandler 创建 ReportHandler
func NewReportHandler(reportSvc service.ReportService) *ReportHandler {
	return &ReportHandler{reportSvc: reportSvc}
}

// CourseReport 课程级汇总报表
// GET /api/v1/courses/:id/report
func (h *ReportHandler) CourseReport(c *gin.Context) {
	id := c.Param("id")
	if id == "" {
		response.BadRequest(c, 10001, "课程ID不能为空")
		return
	}

	report, err := h.reportSvc.CourseReport(c.Request.Context(), id)
	if err != nil {
		h.handleReportError(c, err)
		return
	}

	response.OK(c, report)
}

// StudentReport 学生个人全科报表（管理端视角，原始理论分）
// GET /api/v1/courses/:id/students/:prn/report
func (h *ReportHandler) StudentReport(c *gin.Context) {
	id := c.Param("id")
	if id == "" {
		response.BadRequest(c, 10001, "课程ID不能为空")
		return
	}

	report, err := h.reportSvc.StudentReport(c.Request.Context(), id, c.Param("prn"))
	if err != nil {
		h.handleReportError(c, err)
		return
	}

	response.OK(c, report)
}

// handleReportError 统一处理报表模块业务错误
func (h *ReportHandler) handleReportError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, service.ErrCourseNotFound):
		response.NotFound(c, 12002, "课程不存在")
	case errors.Is(err, service.ErrStudentNotFound):
		response.NotFound(c, 13001, "学生不存在")
	default:
		response.InternalError(c)
	}
}

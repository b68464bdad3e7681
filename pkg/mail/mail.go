package mail

import (
	"errors"
	"io"

	gomail "gopkg.in/gomail.v2"

	"omr-portal/config"
)

var ErrMailDisabled = errors.New("邮件发送未启用")

// Message 一封待发送的成绩通知
type Message struct {
	To       string
	Subject  string
	HTMLBody string
	// 可选纯文本附件（文件名 → 内容），用于随信附带成绩单
	Attachments map[string][]byte
}

// Sender 邮件发送接口，便于测试替换
type Sender interface {
	Send(msg *Message) error
}

// SMTPSender 基于 SMTP 的 Sender 实现
type SMTPSender struct {
	cfg    *config.MailConfig
	dialer *gomail.Dialer
}

// NewSMTPSender 创建 SMTP 发送器
func NewSMTPSender(cfg *config.MailConfig) *SMTPSender {
	return &SMTPSender{
		cfg:    cfg,
		dialer: gomail.NewDialer(cfg.SMTPHost, cfg.SMTPPort, cfg.Username, cfg.Password),
	}
}

// Send 发送单封邮件；每封独立建连，单封失败不影响其余收件人
func (s *SMTPSender) Send(msg *Message) error {
	if !s.cfg.Enabled {
		return ErrMailDisabled
	}

	m := gomail.NewMessage()
	m.SetHeader("From", s.cfg.From)
	m.SetHeader("To", msg.To)
	m.SetHeader("Subject", msg.Subject)
	m.SetBody("text/html", msg.HTMLBody)

	for name, data := range msg.Attachments {
		content := data
		m.Attach(name, gomail.SetCopyFunc(func(w io.Writer) error {
			_, err := w.Write(content)
			return err
		}))
	}

	return s.dialer.DialAndSend(m)
}

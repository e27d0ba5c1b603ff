package email

import (
	"bytes"
	"context"
	"fmt"
	"html/template"
	"strings"

	"github.com/qs3c/account_go_server/config"
)

const (
	BackendSMTP     = "smtp"
	BackendSendGrid = "sendgrid"
	BackendLog      = "log"
)

// Message 一封待发送的邮件
type Message struct {
	To      string
	Subject string
	HTML    string
	Text    string
}

// Sender 邮件发送通道
type Sender interface {
	Send(ctx context.Context, msg *Message) error
}

// NewSender 根据 email.backend 选择发送通道，未配置时生产环境走 SendGrid，其它环境只打日志
func NewSender(cfg *config.EmailConfig, env string) (Sender, error) {
	backend := cfg.Backend
	if backend == "" {
		backend = BackendLog
		if env == "production" {
			backend = BackendSendGrid
		}
	}

	switch backend {
	case BackendSMTP:
		if cfg.SMTPHost == "" {
			return nil, fmt.Errorf("email.smtp_host is required for smtp backend")
		}
		return NewSMTPSender(cfg), nil
	case BackendSendGrid:
		if cfg.SendGridAPIKey == "" {
			return nil, fmt.Errorf("email.sendgrid_api_key is required for sendgrid backend")
		}
		return NewSendGridSender(cfg), nil
	case BackendLog:
		return NewLogSender(), nil
	default:
		return nil, fmt.Errorf("unknown email backend: %s", backend)
	}
}

var verifyTemplate = template.Must(template.New("verify").Parse(`<!DOCTYPE html>
<html>
<head>
    <meta charset="UTF-8">
</head>
<body style="font-family: Arial, sans-serif; line-height: 1.6; color: #333;">
    <div style="max-width: 600px; margin: 0 auto; padding: 20px;">
        <h2 style="color: #2563eb;">Verify your email</h2>
        <p>Thanks for signing up. Please confirm your email address:</p>
        <div style="text-align: center; margin: 30px 0;">
            <a href="{{.Link}}" style="background-color: #2563eb; color: white; padding: 12px 30px; text-decoration: none; border-radius: 5px; display: inline-block;">Verify email</a>
        </div>
        <p>Or open this link in your browser:</p>
        <p style="background-color: #f3f4f6; padding: 10px; word-break: break-all;">{{.Link}}</p>
        <hr style="border: none; border-top: 1px solid #e5e7eb; margin: 20px 0;">
        <p style="color: #6b7280; font-size: 12px;">If you did not create an account, you can ignore this email.</p>
    </div>
</body>
</html>
`))

type Service struct {
	sender    Sender
	publicURL string
}

func NewService(sender Sender, publicURL string) *Service {
	return &Service{
		sender:    sender,
		publicURL: strings.TrimSuffix(publicURL, "/"),
	}
}

// VerifyLink 验证链接，指向 GET /api/users/verify/:verificationToken
func (s *Service) VerifyLink(token string) string {
	return fmt.Sprintf("%s/api/users/verify/%s", s.publicURL, token)
}

// SendVerifyEmail 发送邮箱验证邮件，错误原样返回给调用方
func (s *Service) SendVerifyEmail(ctx context.Context, token, to string) error {
	link := s.VerifyLink(token)

	var body bytes.Buffer
	if err := verifyTemplate.Execute(&body, struct{ Link string }{Link: link}); err != nil {
		return fmt.Errorf("failed to render verify email: %w", err)
	}

	return s.sender.Send(ctx, &Message{
		To:      to,
		Subject: "Verify your email",
		HTML:    body.String(),
		Text:    "Open this link to verify your email: " + link,
	})
}

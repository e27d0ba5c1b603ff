package email

import (
	"context"

	"github.com/qs3c/account_go_server/internal/pkg/logger"
)

// LogSender 不真正发信，只把邮件内容写进日志，用于开发和测试环境
type LogSender struct{}

func NewLogSender() *LogSender {
	return &LogSender{}
}

func (LogSender) Send(ctx context.Context, msg *Message) error {
	logger.FromContext(ctx).Info("email not sent (log backend)",
		"to", msg.To,
		"subject", msg.Subject,
		"text", msg.Text,
	)
	return nil
}

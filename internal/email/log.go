package email

import (
	"context"

	"github.com/redmonkez12/shop-api/internal/logging"
)

// LogSender writes messages to the log instead of delivering them. Used in development.
type LogSender struct {
	logger *logging.Logger
}

func NewLogSender(logger *logging.Logger) *LogSender {
	return &LogSender{logger: logger}
}

func (s *LogSender) Send(ctx context.Context, msg Message) error {
	s.logger.Info("email not delivered (log provider)",
		"to", msg.To,
		"subject", msg.Subject,
		"text", msg.Text,
	)
	return nil
}

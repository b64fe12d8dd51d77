package mail

import (
	"context"

	proposalapp "github.com/tierquote/backend/internal/application/proposal"
	"go.uber.org/zap"
)

// NopSender satisfies EmailSender when no SMTP host is configured. Messages
// are logged and dropped.
type NopSender struct {
	logger *zap.Logger
}

// NewNopSender creates a sender that drops all messages
func NewNopSender(logger *zap.Logger) *NopSender {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &NopSender{logger: logger}
}

var _ proposalapp.EmailSender = (*NopSender)(nil)

func (s *NopSender) Send(_ context.Context, msg proposalapp.EmailMessage) error {
	s.logger.Info("Mail disabled, dropping message",
		zap.String("to", msg.To),
		zap.String("subject", msg.Subject))
	return nil
}

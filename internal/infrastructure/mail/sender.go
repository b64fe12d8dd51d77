// Package mail delivers transactional email over SMTP.
package mail

import (
	"bytes"
	"context"
	"errors"
	"fmt"

	proposalapp "github.com/tierquote/backend/internal/application/proposal"
	infraconfig "github.com/tierquote/backend/internal/infrastructure/config"
	gomail "github.com/wneessen/go-mail"
	"go.uber.org/zap"
)

// Ensure SMTPSender implements EmailSender
var _ proposalapp.EmailSender = (*SMTPSender)(nil)

// SMTPSender implements proposal.EmailSender using an SMTP relay.
type SMTPSender struct {
	client   *gomail.Client
	from     string
	fromName string
	logger   *zap.Logger
}

// NewSMTPSender creates a new SMTPSender from configuration
func NewSMTPSender(cfg *infraconfig.MailConfig, logger *zap.Logger) (*SMTPSender, error) {
	if cfg == nil {
		return nil, errors.New("mail configuration is required")
	}
	if cfg.Host == "" {
		return nil, errors.New("mail host is required")
	}
	if cfg.From == "" {
		return nil, errors.New("mail from address is required")
	}
	if logger == nil {
		logger = zap.NewNop()
	}

	opts := []gomail.Option{
		gomail.WithPort(cfg.Port),
	}
	if cfg.Username != "" {
		opts = append(opts,
			gomail.WithSMTPAuth(gomail.SMTPAuthPlain),
			gomail.WithUsername(cfg.Username),
			gomail.WithPassword(cfg.Password),
		)
	}
	if cfg.UseTLS {
		opts = append(opts, gomail.WithTLSPortPolicy(gomail.TLSMandatory))
	} else {
		opts = append(opts, gomail.WithTLSPortPolicy(gomail.TLSOpportunistic))
	}

	client, err := gomail.NewClient(cfg.Host, opts...)
	if err != nil {
		return nil, fmt.Errorf("failed to create mail client: %w", err)
	}

	return &SMTPSender{
		client:   client,
		from:     cfg.From,
		fromName: cfg.FromName,
		logger:   logger,
	}, nil
}

// Send delivers one email message
func (s *SMTPSender) Send(ctx context.Context, msg proposalapp.EmailMessage) error {
	if msg.To == "" {
		return errors.New("recipient address is required")
	}

	m := gomail.NewMsg()
	if err := m.FromFormat(s.fromName, s.from); err != nil {
		return fmt.Errorf("invalid sender address: %w", err)
	}
	if err := m.To(msg.To); err != nil {
		return fmt.Errorf("invalid recipient address: %w", err)
	}
	m.Subject(msg.Subject)
	m.SetBodyString(gomail.TypeTextHTML, msg.HTMLBody)

	if len(msg.Attachment) > 0 && msg.AttachmentName != "" {
		if err := m.AttachReader(msg.AttachmentName, bytes.NewReader(msg.Attachment)); err != nil {
			return fmt.Errorf("failed to attach %s: %w", msg.AttachmentName, err)
		}
	}

	if err := s.client.DialAndSendWithContext(ctx, m); err != nil {
		return fmt.Errorf("failed to send email: %w", err)
	}

	s.logger.Debug("email sent",
		zap.String("to", msg.To),
		zap.String("subject", msg.Subject),
		zap.Bool("attachment", len(msg.Attachment) > 0))
	return nil
}

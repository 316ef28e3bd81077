// Package email holds the mail transports behind policies.EmailSender.
package email

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"coastalstay/internal/app/policies"
	"coastalstay/internal/infra/config"
)

var (
	ErrRecipientRequired = errors.New("email: recipient is required")
	ErrSenderRequired    = errors.New("email: sender address is required")
)

// LogSender writes mail to the log instead of delivering it. Used in
// development and when no transport is configured.
type LogSender struct {
	Logger *slog.Logger
}

func (s LogSender) Send(ctx context.Context, recipient, subject, body string) error {
	if recipient == "" {
		return ErrRecipientRequired
	}
	if s.Logger != nil {
		s.Logger.InfoContext(ctx, "email not delivered (log transport)", "recipient", recipient, "subject", subject, "body_bytes", len(body))
	}
	return nil
}

// New picks the transport named by EMAIL_TRANSPORT.
func New(ctx context.Context, cfg config.Config, logger *slog.Logger) (policies.EmailSender, error) {
	switch cfg.EmailTransport {
	case "", config.EmailLog:
		return LogSender{Logger: logger}, nil
	case config.EmailSMTP:
		if cfg.SMTPHost == "" {
			return nil, errors.New("email: SMTP_HOST is required for the smtp transport")
		}
		return NewSMTPSender(cfg.SMTPHost, cfg.SMTPPort, cfg.SMTPUser, cfg.SMTPPassword, cfg.EmailFrom), nil
	case config.EmailSES:
		sender, err := NewSESSender(ctx, SESParams{
			Region:          cfg.SESRegion,
			AccessKeyID:     cfg.SESAccessKey,
			SecretAccessKey: cfg.SESSecretKey,
			From:            cfg.EmailFrom,
		}, logger)
		if err != nil {
			return nil, err
		}
		return sender, nil
	default:
		return nil, fmt.Errorf("email: unknown transport %q", cfg.EmailTransport)
	}
}

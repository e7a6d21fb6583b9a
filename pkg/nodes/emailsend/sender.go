package emailsend

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	mail "github.com/wneessen/go-mail"
)

// ErrSMTPNotConfigured is returned when an email is sent without an SMTP host.
var ErrSMTPNotConfigured = errors.New("smtp is not configured")

// SMTPConfig configures outgoing mail. TLS is one of "opportunistic" (default), "mandatory" or "none".
type SMTPConfig struct {
	Host     string
	Port     int `validate:"omitempty,min=1,max=65535"`
	Username string
	Password string
	From     string `validate:"omitempty,email"`
	TLS      string `validate:"omitempty,oneof=opportunistic mandatory none"`
	Timeout  time.Duration
}

// Sender delivers a composed message.
type Sender interface {
	Send(ctx context.Context, msg *mail.Msg) error
}

// SMTPSender dials the configured server for every message.
type SMTPSender struct {
	config SMTPConfig
	logger *slog.Logger
}

func NewSMTPSender(config SMTPConfig, logger *slog.Logger) *SMTPSender {
	return &SMTPSender{config: config, logger: logger}
}

func (s *SMTPSender) Send(ctx context.Context, msg *mail.Msg) error {
	if s.config.Host == "" {
		return ErrSMTPNotConfigured
	}

	client, err := mail.NewClient(s.config.Host, s.clientOptions()...)
	if err != nil {
		return fmt.Errorf("failed to create smtp client: %w", err)
	}

	err = client.DialAndSendWithContext(ctx, msg)
	if err != nil {
		s.logger.ErrorContext(ctx, "Failed to send email", "host", s.config.Host, "error", err)

		return fmt.Errorf("failed to send email: %w", err)
	}

	return nil
}

func (s *SMTPSender) clientOptions() []mail.Option {
	opts := []mail.Option{}

	if s.config.Port > 0 {
		opts = append(opts, mail.WithPort(s.config.Port))
	}

	if s.config.Timeout > 0 {
		opts = append(opts, mail.WithTimeout(s.config.Timeout))
	}

	switch s.config.TLS {
	case "mandatory":
		opts = append(opts, mail.WithTLSPolicy(mail.TLSMandatory))
	case "none":
		opts = append(opts, mail.WithTLSPolicy(mail.NoTLS))
	default:
		opts = append(opts, mail.WithTLSPolicy(mail.TLSOpportunistic))
	}

	if s.config.Username != "" {
		opts = append(opts,
			mail.WithSMTPAuth(mail.SMTPAuthPlain),
			mail.WithUsername(s.config.Username),
			mail.WithPassword(s.config.Password),
		)
	}

	return opts
}

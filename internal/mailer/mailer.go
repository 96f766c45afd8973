// Package mailer delivers password-reset email. Delivery is a boundary
// collaborator: the reset flow only depends on the Mailer interface.
package mailer

import (
	"context"
	"fmt"
	"log/slog"
	"net/smtp"

	"github.com/houseofllm/user-management/internal/config"
)

const resetSubject = "Reset Your Password"

const resetBodyTemplate = `Hello,

We received a request to reset your password. Please click the link below to reset your password:

%s

If you didn't request this, please ignore this email.

Thanks,
The House of LLM Team
`

// Mailer dispatches outbound password-reset mail
type Mailer interface {
	SendPasswordReset(ctx context.Context, recipient, resetToken string) error
}

// SMTPMailer implements Mailer over a plain SMTP relay
type SMTPMailer struct {
	cfg     config.MailerConfig
	baseURL string
	logger  *slog.Logger
}

// NewSMTPMailer creates a new SMTPMailer instance. baseURL is the reset
// page the emailed link points at; the token is appended to it.
func NewSMTPMailer(cfg config.MailerConfig, baseURL string, logger *slog.Logger) *SMTPMailer {
	if logger == nil {
		logger = slog.Default()
	}
	return &SMTPMailer{cfg: cfg, baseURL: baseURL, logger: logger}
}

// SendPasswordReset sends the reset link to the recipient
func (m *SMTPMailer) SendPasswordReset(ctx context.Context, recipient, resetToken string) error {
	resetLink := m.baseURL + resetToken
	body := fmt.Sprintf(resetBodyTemplate, resetLink)

	msg := []byte("From: " + m.cfg.From + "\r\n" +
		"To: " + recipient + "\r\n" +
		"Subject: " + resetSubject + "\r\n" +
		"\r\n" +
		body)

	addr := m.cfg.Host + ":" + m.cfg.Port
	var auth smtp.Auth
	if m.cfg.Username != "" {
		auth = smtp.PlainAuth("", m.cfg.Username, m.cfg.Password, m.cfg.Host)
	}

	if err := smtp.SendMail(addr, auth, m.cfg.From, []string{recipient}, msg); err != nil {
		m.logger.Error("failed to send password reset email", "email", recipient, "error", err)
		return err
	}

	m.logger.Info("password reset email sent", "email", recipient)
	return nil
}

// NoopMailer implements Mailer without delivering anything. Used when
// outbound mail is disabled; the reset token is still persisted, so the
// flow remains testable end to end.
type NoopMailer struct {
	logger *slog.Logger
}

// NewNoopMailer creates a new NoopMailer instance
func NewNoopMailer(logger *slog.Logger) *NoopMailer {
	if logger == nil {
		logger = slog.Default()
	}
	return &NoopMailer{logger: logger}
}

// SendPasswordReset logs and discards the message
func (m *NoopMailer) SendPasswordReset(ctx context.Context, recipient, resetToken string) error {
	m.logger.Info("outbound mail disabled, skipping password reset email", "email", recipient)
	return nil
}

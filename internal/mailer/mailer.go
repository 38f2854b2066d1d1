package mailer

import (
	"context"
	"log/slog"
)

// Mailer defines the interface for sending account emails.
type Mailer interface {
	// SendVerificationCode delivers the 6-digit verification code to the
	// given address.
	SendVerificationCode(ctx context.Context, email, name, code string) error

	// SendWelcome delivers the post-verification welcome email.
	SendWelcome(ctx context.Context, email, name string) error
}

// LogMailer is a Mailer implementation that logs emails instead of sending
// them. Used in development and tests; a real SMTP or provider-backed
// implementation satisfies the same interface in production.
type LogMailer struct {
	logger *slog.Logger
}

// NewLogMailer creates a mailer that writes emails to the log.
func NewLogMailer(logger *slog.Logger) *LogMailer {
	return &LogMailer{logger: logger}
}

// SendVerificationCode logs the verification email.
func (m *LogMailer) SendVerificationCode(ctx context.Context, email, name, code string) error {
	m.logger.InfoContext(ctx, "verification email sent",
		slog.String("to", email),
		slog.String("name", name),
		slog.String("code", code),
	)
	return nil
}

// SendWelcome logs the welcome email.
func (m *LogMailer) SendWelcome(ctx context.Context, email, name string) error {
	m.logger.InfoContext(ctx, "welcome email sent",
		slog.String("to", email),
		slog.String("name", name),
	)
	return nil
}

package email

import (
	"context"
	"log/slog"

	"github.com/google/uuid"

	"github.com/campus-coins/backend/internal/application/adapter"
)

// LogSender is used when no email provider is configured.
// Only the envelope is logged; bodies may contain credentials.
type LogSender struct{}

// NewLogSender creates a new LogSender.
func NewLogSender() *LogSender {
	return &LogSender{}
}

// Send logs the envelope and reports success.
func (LogSender) Send(_ context.Context, input adapter.SendEmailInput) (*adapter.SendEmailResult, error) {
	id := "log-" + uuid.NewString()
	slog.Info("Email provider not configured, email not delivered",
		"to", input.To,
		"subject", input.Subject,
		"provider_id", id,
	)
	return &adapter.SendEmailResult{ProviderID: id}, nil
}

var _ adapter.EmailSender = LogSender{}

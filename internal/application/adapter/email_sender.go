// Package adapter defines interfaces that will be implemented in the integration layer.
package adapter

import (
	"context"

	"github.com/campus-coins/backend/internal/domain/entity"
)

// SendEmailInput represents the input for sending an email.
type SendEmailInput struct {
	To      string
	Name    string
	Subject string
	HTML    string
	Text    string
}

// SendEmailResult represents the result of sending an email.
type SendEmailResult struct {
	ProviderID string
}

// EmailSender defines the interface for sending emails via an external provider.
type EmailSender interface {
	// Send sends an email via the email provider (e.g., Resend).
	Send(ctx context.Context, input SendEmailInput) (*SendEmailResult, error)
}

// NotificationGateway tells account holders about changes to their account.
// Delivery is best effort: implementations never report failures to the caller
// and must not block it for an unbounded time.
type NotificationGateway interface {
	// NotifyRegistration announces a completed registration.
	NotifyRegistration(ctx context.Context, email, name string, role entity.Role)

	// NotifyCredentialReset delivers the new password set by a reset.
	NotifyCredentialReset(ctx context.Context, email string, role entity.Role, newPassword string)
}

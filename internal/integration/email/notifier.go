// Package email provides email sending functionality.
package email

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/campus-coins/backend/internal/application/adapter"
	"github.com/campus-coins/backend/internal/domain/entity"
	domainerror "github.com/campus-coins/backend/internal/domain/error"
	"github.com/campus-coins/backend/internal/integration/email/templates"
)

// DefaultNotifyTimeout bounds a single notification when no timeout is configured.
const DefaultNotifyTimeout = 5 * time.Second

// Notifier implements adapter.NotificationGateway.
// Registration emails go through the durable queue. Reset emails carry the new
// password and are sent directly so the secret is never persisted.
type Notifier struct {
	queue    adapter.EmailQueueRepository
	sender   adapter.EmailSender
	renderer *templates.Renderer
	appName  string
	timeout  time.Duration
	wg       sync.WaitGroup
}

// NewNotifier creates a new Notifier.
func NewNotifier(
	queue adapter.EmailQueueRepository,
	sender adapter.EmailSender,
	renderer *templates.Renderer,
	appName string,
	timeout time.Duration,
) *Notifier {
	if timeout <= 0 {
		timeout = DefaultNotifyTimeout
	}
	return &Notifier{
		queue:    queue,
		sender:   sender,
		renderer: renderer,
		appName:  appName,
		timeout:  timeout,
	}
}

// NotifyRegistration queues the role-specific welcome email.
func (n *Notifier) NotifyRegistration(ctx context.Context, email, name string, role entity.Role) {
	n.dispatch(ctx, "registration", email, role, func(ctx context.Context) error {
		subject := fmt.Sprintf("Registration confirmed - %s (%s)", n.appName, role.Label())
		job := entity.NewEmailJob(entity.TemplateRegistrationConfirmed, email, name, subject, map[string]string{
			"name":       name,
			"role":       string(role),
			"role_label": role.Label(),
		})
		return n.queue.Create(ctx, job)
	})
}

// NotifyCredentialReset sends the new password to the account holder.
func (n *Notifier) NotifyCredentialReset(ctx context.Context, email string, role entity.Role, newPassword string) {
	n.dispatch(ctx, "credential_reset", email, role, func(ctx context.Context) error {
		html, text, err := n.renderer.Render(string(entity.TemplateCredentialReset), templates.CredentialResetData{
			AppName:     n.appName,
			RoleLabel:   role.Label(),
			NewPassword: newPassword,
		})
		if err != nil {
			return domainerror.NewEmailError(domainerror.ErrCodeTemplateRenderFailed, "failed to render reset email", err)
		}

		_, err = n.sender.Send(ctx, adapter.SendEmailInput{
			To:      email,
			Subject: fmt.Sprintf("Your password was reset - %s", n.appName),
			HTML:    html,
			Text:    text,
		})
		return err
	})
}

// Wait blocks until every in-flight notification has finished.
func (n *Notifier) Wait() {
	n.wg.Wait()
}

// dispatch runs fn in the background with its own deadline.
// The caller's cancellation does not propagate; failures are only logged.
func (n *Notifier) dispatch(ctx context.Context, kind, email string, role entity.Role, fn func(ctx context.Context) error) {
	logger := slog.With("notification", kind, "recipient", email, "role", role)

	n.wg.Add(1)
	go func() {
		defer n.wg.Done()
		defer func() {
			if r := recover(); r != nil {
				logger.Error("Notification panicked", "panic", r)
			}
		}()

		ctx, cancel := context.WithTimeout(context.WithoutCancel(ctx), n.timeout)
		defer cancel()

		if err := fn(ctx); err != nil {
			logger.Error("Failed to deliver notification", "error", err)
			return
		}
		logger.Debug("Notification dispatched")
	}()
}

var _ adapter.NotificationGateway = (*Notifier)(nil)

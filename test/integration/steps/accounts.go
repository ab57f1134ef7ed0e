package steps

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strings"

	"github.com/cucumber/godog"

	"github.com/campus-coins/backend/internal/domain/entity"
	"github.com/campus-coins/backend/internal/integration/adapters"
)

var registrationPaths = map[string]string{
	"student": "/api/v1/auth/students/register",
	"teacher": "/api/v1/auth/teachers/register",
	"company": "/api/v1/auth/companies/register",
}

var accountTables = map[string]string{
	"student": "students",
	"teacher": "teachers",
	"company": "companies",
}

// registerAccountSteps registers fixtures and assertions on stored accounts.
func registerAccountSteps(ctx *godog.ScenarioContext) {
	ctx.Step(`^an? (student|teacher|company) named "([^"]*)" is registered with email "([^"]*)" and password "([^"]*)"$`, anAccountIsRegistered)
	ctx.Step(`^the stored password for the (student|teacher|company) "([^"]*)" should be a hash of "([^"]*)"$`, theStoredPasswordShouldBeAHashOf)
	ctx.Step(`^there should be (\d+) (student|teacher|company) accounts?$`, thereShouldBeAccounts)
}

// registerEmailSteps registers steps that inspect outgoing notifications.
func registerEmailSteps(ctx *godog.ScenarioContext) {
	ctx.Step(`^the email provider is unavailable$`, theEmailProviderIsUnavailable)
	ctx.Step(`^pending notifications are delivered$`, pendingNotificationsAreDelivered)
	ctx.Step(`^an email with subject containing "([^"]*)" should have been sent to "([^"]*)"$`, anEmailShouldHaveBeenSentTo)
	ctx.Step(`^the email sent to "([^"]*)" should contain "([^"]*)"$`, theEmailSentToShouldContain)
	ctx.Step(`^no email should have been sent to "([^"]*)"$`, noEmailShouldHaveBeenSentTo)
	ctx.Step(`^the email queue should hold a "([^"]*)" job for "([^"]*)"$`, theEmailQueueShouldHoldAJobFor)
	ctx.Step(`^(\d+) emails? should be queued for "([^"]*)"$`, emailsShouldBeQueuedFor)
	ctx.Step(`^redis should hold (\d+) email jobs?$`, redisShouldHoldEmailJobs)
}

func anAccountIsRegistered(ctx context.Context, role, name, address, password string) (context.Context, error) {
	tc := GetTestContext(ctx)
	if tc == nil {
		return ctx, fmt.Errorf("test context not found")
	}

	tc.nextIdentifier++
	body := map[string]string{
		"name":     name,
		"email":    address,
		"password": password,
	}
	if role == "company" {
		body["registration_number"] = fmt.Sprintf("%014d", tc.nextIdentifier)
	} else {
		body["national_id"] = fmt.Sprintf("%011d", tc.nextIdentifier)
	}

	payload, err := json.Marshal(body)
	if err != nil {
		return ctx, err
	}

	ctx, err = sendRequest(ctx, http.MethodPost, registrationPaths[role], payload)
	if err != nil {
		return ctx, err
	}
	if tc.response.StatusCode != http.StatusCreated {
		return ctx, fmt.Errorf("failed to register %s %s: status %d, body %s", role, address, tc.response.StatusCode, string(tc.responseBody))
	}
	return ctx, nil
}

func theStoredPasswordShouldBeAHashOf(ctx context.Context, role, address, password string) error {
	tc := GetTestContext(ctx)
	if tc == nil {
		return fmt.Errorf("test context not found")
	}

	var hash string
	err := tc.db.DbConn.Table(accountTables[role]).
		Select("password_hash").
		Where("email = ?", address).
		Scan(&hash).Error
	if err != nil {
		return fmt.Errorf("failed to read stored password: %w", err)
	}
	if hash == "" {
		return fmt.Errorf("no %s stored with email %s", role, address)
	}
	if hash == password {
		return fmt.Errorf("password for %s was stored in clear text", address)
	}
	if !adapters.Matches(adapters.NewPasswordService(tc.cfg.Accounts.BcryptCost), hash, password) {
		return fmt.Errorf("stored hash for %s does not verify %q", address, password)
	}
	return nil
}

func thereShouldBeAccounts(ctx context.Context, expected int, role string) error {
	tc := GetTestContext(ctx)
	if tc == nil {
		return fmt.Errorf("test context not found")
	}

	var count int64
	if err := tc.db.DbConn.Table(accountTables[role]).Count(&count).Error; err != nil {
		return fmt.Errorf("failed to count %s accounts: %w", role, err)
	}
	if count != int64(expected) {
		return fmt.Errorf("expected %d %s accounts, got %d", expected, role, count)
	}
	return nil
}

func theEmailProviderIsUnavailable(ctx context.Context) error {
	tc := GetTestContext(ctx)
	if tc == nil {
		return fmt.Errorf("test context not found")
	}
	tc.sender.SetFailure(errors.New("provider unavailable"), false)
	return nil
}

func pendingNotificationsAreDelivered(ctx context.Context) error {
	tc := GetTestContext(ctx)
	if tc == nil {
		return fmt.Errorf("test context not found")
	}
	tc.app.Notifier.Wait()
	tc.app.EmailWorker.ProcessNow(ctx)
	return nil
}

func anEmailShouldHaveBeenSentTo(ctx context.Context, subject, address string) error {
	tc := GetTestContext(ctx)
	if tc == nil {
		return fmt.Errorf("test context not found")
	}

	tc.app.Notifier.Wait()
	for _, sent := range tc.sender.SentEmails() {
		if sent.To == address && strings.Contains(sent.Subject, subject) {
			return nil
		}
	}
	return fmt.Errorf("no email with subject containing %q was sent to %s (sent: %d)", subject, address, len(tc.sender.SentEmails()))
}

func theEmailSentToShouldContain(ctx context.Context, address, expected string) error {
	tc := GetTestContext(ctx)
	if tc == nil {
		return fmt.Errorf("test context not found")
	}

	tc.app.Notifier.Wait()
	for _, sent := range tc.sender.SentEmails() {
		if sent.To != address {
			continue
		}
		if strings.Contains(sent.HTML, expected) && strings.Contains(sent.Text, expected) {
			return nil
		}
	}
	return fmt.Errorf("no email to %s contains %q", address, expected)
}

func noEmailShouldHaveBeenSentTo(ctx context.Context, address string) error {
	tc := GetTestContext(ctx)
	if tc == nil {
		return fmt.Errorf("test context not found")
	}

	tc.app.Notifier.Wait()
	for _, sent := range tc.sender.SentEmails() {
		if sent.To == address {
			return fmt.Errorf("unexpected email %q sent to %s", sent.Subject, address)
		}
	}
	return nil
}

func theEmailQueueShouldHoldAJobFor(ctx context.Context, status, address string) error {
	tc := GetTestContext(ctx)
	if tc == nil {
		return fmt.Errorf("test context not found")
	}

	tc.app.Notifier.Wait()
	jobs, err := tc.app.EmailQueue.GetByRecipient(ctx, address)
	if err != nil {
		return fmt.Errorf("failed to read email queue: %w", err)
	}
	for _, job := range jobs {
		if job.Status == entity.EmailStatus(status) {
			return nil
		}
	}
	return fmt.Errorf("no %s job queued for %s (jobs: %d)", status, address, len(jobs))
}

func emailsShouldBeQueuedFor(ctx context.Context, expected int, address string) error {
	tc := GetTestContext(ctx)
	if tc == nil {
		return fmt.Errorf("test context not found")
	}

	tc.app.Notifier.Wait()
	jobs, err := tc.app.EmailQueue.GetByRecipient(ctx, address)
	if err != nil {
		return fmt.Errorf("failed to read email queue: %w", err)
	}
	if len(jobs) != expected {
		return fmt.Errorf("expected %d queued emails for %s, found %d", expected, address, len(jobs))
	}
	return nil
}

func redisShouldHoldEmailJobs(ctx context.Context, expected int) error {
	tc := GetTestContext(ctx)
	if tc == nil {
		return fmt.Errorf("test context not found")
	}

	tc.app.Notifier.Wait()
	count := 0
	for _, key := range tc.redis.Server.Keys() {
		if strings.HasPrefix(key, "email:job:") {
			count++
		}
	}
	if count != expected {
		return fmt.Errorf("expected %d email jobs in redis, got %d", expected, count)
	}
	return nil
}

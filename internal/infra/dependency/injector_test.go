package dependency

import (
	"bytes"
	"context"
	"database/sql"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/gin-gonic/gin"
	"github.com/glebarez/sqlite"
	"github.com/redis/go-redis/v9"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"github.com/campus-coins/backend/config"
	"github.com/campus-coins/backend/internal/integration/email"
	"github.com/campus-coins/backend/internal/integration/entrypoint/dto"
	"github.com/campus-coins/backend/internal/integration/persistence/model"
)

type testApp struct {
	injector *Injector
	engine   *gin.Engine
	sender   *email.MockEmailSender
}

func newTestConfig() *config.Config {
	cfg := config.Load()
	cfg.Server.Environment = "test"
	cfg.Accounts.BcryptCost = 4
	cfg.Email.NotifyTimeout = time.Second
	return cfg
}

func newTestApp(t *testing.T, cfg *config.Config, cache *redis.Client) *testApp {
	t.Helper()

	dbSQL, err := sql.Open("sqlite", ":memory:")
	if err != nil {
		t.Fatalf("open sqlite: %v", err)
	}
	dbSQL.SetMaxOpenConns(1)
	t.Cleanup(func() { _ = dbSQL.Close() })

	db, err := gorm.Open(sqlite.Dialector{Conn: dbSQL}, &gorm.Config{Logger: logger.Default.LogMode(logger.Silent)})
	if err != nil {
		t.Fatalf("open gorm: %v", err)
	}
	if err := db.AutoMigrate(append(model.AccountModels(), &model.EmailQueueModel{})...); err != nil {
		t.Fatalf("migrate: %v", err)
	}

	sender := email.NewMockEmailSender()
	injector, err := NewInjector(cfg, db, Options{Cache: cache, EmailSender: sender})
	if err != nil {
		t.Fatalf("new injector: %v", err)
	}

	return &testApp{
		injector: injector,
		engine:   injector.Router.Setup(cfg.Server.Environment),
		sender:   sender,
	}
}

func (a *testApp) do(t *testing.T, method, path string, body any) *httptest.ResponseRecorder {
	t.Helper()

	var buf bytes.Buffer
	if body != nil {
		if err := json.NewEncoder(&buf).Encode(body); err != nil {
			t.Fatalf("encode body: %v", err)
		}
	}

	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()
	a.engine.ServeHTTP(rec, req)
	return rec
}

func decode[T any](t *testing.T, rec *httptest.ResponseRecorder) T {
	t.Helper()
	var v T
	if err := json.Unmarshal(rec.Body.Bytes(), &v); err != nil {
		t.Fatalf("decode %q: %v", rec.Body.String(), err)
	}
	return v
}

var ana = map[string]string{
	"name":        "Ana",
	"email":       "ana@x.edu",
	"national_id": "111",
	"course":      "Engineering",
	"password":    "s3cret",
}

func TestRegisterLoginFlow(t *testing.T) {
	app := newTestApp(t, newTestConfig(), nil)

	rec := app.do(t, http.MethodPost, "/api/v1/auth/students/register", ana)
	if rec.Code != http.StatusCreated {
		t.Fatalf("expected 201, got %d: %s", rec.Code, rec.Body)
	}
	registered := decode[dto.AccountResponse](t, rec)
	if registered.ID != 1 || registered.Role != "STUDENT" || registered.Email != "ana@x.edu" {
		t.Errorf("unexpected registration response: %+v", registered)
	}

	rec = app.do(t, http.MethodPost, "/api/v1/auth/login", map[string]string{
		"role": "student", "email": "ana@x.edu", "password": "s3cret",
	})
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", rec.Code, rec.Body)
	}
	if got := decode[dto.AccountResponse](t, rec); got != registered {
		t.Errorf("expected %+v, got %+v", registered, got)
	}

	app.injector.Notifier.Wait()
	jobs, err := app.injector.EmailQueue.GetByRecipient(context.Background(), "ana@x.edu")
	if err != nil {
		t.Fatalf("by recipient: %v", err)
	}
	if len(jobs) != 1 {
		t.Errorf("expected a queued welcome email, got %d", len(jobs))
	}
}

func TestErrorMapping(t *testing.T) {
	app := newTestApp(t, newTestConfig(), nil)
	if rec := app.do(t, http.MethodPost, "/api/v1/auth/students/register", ana); rec.Code != http.StatusCreated {
		t.Fatalf("register: %d %s", rec.Code, rec.Body)
	}

	tests := []struct {
		name   string
		path   string
		body   any
		status int
		code   string
	}{
		{
			name:   "duplicate email",
			path:   "/api/v1/auth/students/register",
			body:   map[string]string{"name": "A", "email": "ana@x.edu", "national_id": "999", "password": "x"},
			status: http.StatusConflict,
			code:   "AUTH-010001",
		},
		{
			name:   "duplicate national id",
			path:   "/api/v1/auth/students/register",
			body:   map[string]string{"name": "B", "email": "b@x.edu", "national_id": "111", "password": "x"},
			status: http.StatusConflict,
			code:   "AUTH-010006",
		},
		{
			name:   "invalid body",
			path:   "/api/v1/auth/companies/register",
			body:   map[string]string{"name": "Acme"},
			status: http.StatusBadRequest,
			code:   "AUTH-010005",
		},
		{
			name:   "wrong password",
			path:   "/api/v1/auth/login",
			body:   map[string]string{"role": "STUDENT", "email": "ana@x.edu", "password": "wrong"},
			status: http.StatusUnauthorized,
			code:   "AUTH-020001",
		},
		{
			name:   "unknown role",
			path:   "/api/v1/auth/login",
			body:   map[string]string{"role": "banana", "email": "ana@x.edu", "password": "s3cret"},
			status: http.StatusBadRequest,
			code:   "AUTH-020004",
		},
		{
			name:   "unknown role with blank email",
			path:   "/api/v1/auth/login",
			body:   map[string]string{"role": "banana", "email": ""},
			status: http.StatusBadRequest,
			code:   "AUTH-020004",
		},
		{
			name:   "blank login credentials",
			path:   "/api/v1/auth/login",
			body:   map[string]string{"role": "STUDENT", "email": "", "password": ""},
			status: http.StatusUnauthorized,
			code:   "AUTH-020001",
		},
		{
			name:   "reset missing field",
			path:   "/api/v1/auth/reset-password",
			body:   map[string]string{"role": "STUDENT", "email": "ana@x.edu"},
			status: http.StatusBadRequest,
			code:   "AUTH-010005",
		},
		{
			name:   "reset other role",
			path:   "/api/v1/auth/reset-password",
			body:   map[string]string{"role": "TEACHER", "email": "ana@x.edu", "new_password": "n3w"},
			status: http.StatusNotFound,
			code:   "AUTH-040003",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := app.do(t, http.MethodPost, tt.path, tt.body)
			if rec.Code != tt.status {
				t.Fatalf("expected %d, got %d: %s", tt.status, rec.Code, rec.Body)
			}
			if got := decode[dto.ErrorResponse](t, rec); got.Code != tt.code {
				t.Errorf("expected code %s, got %s", tt.code, got.Code)
			}
		})
	}
}

func TestLongPasswords(t *testing.T) {
	app := newTestApp(t, newTestConfig(), nil)
	long := strings.Repeat("p", 80)

	rec := app.do(t, http.MethodPost, "/api/v1/auth/teachers/register", map[string]string{
		"name": "Bruno", "email": "bruno@x.edu", "national_id": "222", "password": long,
	})
	if rec.Code != http.StatusCreated {
		t.Fatalf("expected 201 for an 80-byte password, got %d: %s", rec.Code, rec.Body)
	}

	rec = app.do(t, http.MethodPost, "/api/v1/auth/login", map[string]string{
		"role": "TEACHER", "email": "bruno@x.edu", "password": long,
	})
	if rec.Code != http.StatusOK {
		t.Errorf("expected login with the long password to succeed, got %d: %s", rec.Code, rec.Body)
	}

	longer := strings.Repeat("q", 100)
	rec = app.do(t, http.MethodPost, "/api/v1/auth/reset-password", map[string]string{
		"email": "bruno@x.edu", "role": "TEACHER", "new_password": longer,
	})
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200 resetting to a 100-byte password, got %d: %s", rec.Code, rec.Body)
	}

	rec = app.do(t, http.MethodPost, "/api/v1/auth/login", map[string]string{
		"role": "TEACHER", "email": "bruno@x.edu", "password": longer,
	})
	if rec.Code != http.StatusOK {
		t.Errorf("expected login with the reset password to succeed, got %d: %s", rec.Code, rec.Body)
	}
	app.injector.Notifier.Wait()
}

func TestResetPasswordFlow(t *testing.T) {
	app := newTestApp(t, newTestConfig(), nil)
	if rec := app.do(t, http.MethodPost, "/api/v1/auth/students/register", ana); rec.Code != http.StatusCreated {
		t.Fatalf("register: %d %s", rec.Code, rec.Body)
	}

	rec := app.do(t, http.MethodPost, "/api/v1/auth/reset-password", map[string]string{
		"email": "ana@x.edu", "role": "STUDENT", "new_password": "n3w-pass",
	})
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", rec.Code, rec.Body)
	}

	rec = app.do(t, http.MethodPost, "/api/v1/auth/login", map[string]string{
		"role": "STUDENT", "email": "ana@x.edu", "password": "n3w-pass",
	})
	if rec.Code != http.StatusOK {
		t.Errorf("expected login with new password to succeed, got %d", rec.Code)
	}

	app.injector.Notifier.Wait()
	sent := app.sender.SentEmails()
	if len(sent) != 1 || !strings.Contains(sent[0].Text, "n3w-pass") {
		t.Errorf("expected one reset email carrying the new password, got %+v", sent)
	}
}

func TestRedisQueueBackend(t *testing.T) {
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = client.Close() })

	cfg := newTestConfig()
	cfg.Email.QueueBackend = config.QueueBackendRedis
	app := newTestApp(t, cfg, client)

	if rec := app.do(t, http.MethodPost, "/api/v1/auth/teachers/register", map[string]string{
		"name": "Rui", "email": "rui@x.edu", "national_id": "900", "department": "Math", "password": "pw",
	}); rec.Code != http.StatusCreated {
		t.Fatalf("register: %d %s", rec.Code, rec.Body)
	}
	app.injector.Notifier.Wait()

	app.injector.EmailWorker.ProcessNow(context.Background())

	sent := app.sender.SentEmails()
	if len(sent) != 1 || sent[0].To != "rui@x.edu" {
		t.Fatalf("expected welcome email to be delivered, got %+v", sent)
	}
	jobs, err := app.injector.EmailQueue.GetByRecipient(context.Background(), "rui@x.edu")
	if err != nil {
		t.Fatalf("by recipient: %v", err)
	}
	if len(jobs) != 1 || jobs[0].Status != "sent" {
		t.Errorf("expected one sent job in redis, got %+v", jobs)
	}
	if !mr.Exists("email:job:" + jobs[0].ID.String()) {
		t.Error("expected job document under its redis key")
	}
}

func TestNewInjector_RedisBackendWithoutConnection(t *testing.T) {
	cfg := newTestConfig()
	cfg.Email.QueueBackend = config.QueueBackendRedis

	dbSQL, err := sql.Open("sqlite", ":memory:")
	if err != nil {
		t.Fatalf("open sqlite: %v", err)
	}
	t.Cleanup(func() { _ = dbSQL.Close() })
	db, err := gorm.Open(sqlite.Dialector{Conn: dbSQL}, &gorm.Config{Logger: logger.Default.LogMode(logger.Silent)})
	if err != nil {
		t.Fatalf("open gorm: %v", err)
	}

	if _, err := NewInjector(cfg, db, Options{}); err == nil {
		t.Error("expected error when redis backend has no connection")
	}
}

func TestHealth(t *testing.T) {
	app := newTestApp(t, newTestConfig(), nil)

	rec := app.do(t, http.MethodGet, "/health", nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
	body := decode[map[string]string](t, rec)
	if body["database"] != "connected" || body["cache"] != "disabled" {
		t.Errorf("unexpected health body: %v", body)
	}
}

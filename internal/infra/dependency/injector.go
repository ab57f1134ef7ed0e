// Package dependency provides dependency injection for the application.
package dependency

import (
	"fmt"
	"log/slog"

	"github.com/redis/go-redis/v9"
	"gorm.io/gorm"

	"github.com/campus-coins/backend/config"
	"github.com/campus-coins/backend/internal/application/adapter"
	"github.com/campus-coins/backend/internal/application/usecase/account"
	"github.com/campus-coins/backend/internal/infra/server/router"
	"github.com/campus-coins/backend/internal/integration/adapters"
	"github.com/campus-coins/backend/internal/integration/email"
	"github.com/campus-coins/backend/internal/integration/email/templates"
	"github.com/campus-coins/backend/internal/integration/entrypoint/controller"
	"github.com/campus-coins/backend/internal/integration/persistence"
)

// Injector holds all application dependencies.
type Injector struct {
	Config      *config.Config
	DB          *gorm.DB
	Cache       *redis.Client
	EmailQueue  adapter.EmailQueueRepository
	EmailSender adapter.EmailSender
	EmailWorker *email.Worker
	Notifier    *email.Notifier
	Router      *router.Router
}

// Options overrides collaborators that are normally built from the configuration.
type Options struct {
	// Cache is required when the email queue backend is redis.
	Cache *redis.Client

	// EmailSender replaces the Resend client or log sender.
	EmailSender adapter.EmailSender

	// DBHealthChecker and CacheHealthChecker feed the health endpoint.
	DBHealthChecker    func() bool
	CacheHealthChecker func() bool
}

// NewInjector creates a new dependency injector with all dependencies wired.
func NewInjector(cfg *config.Config, db *gorm.DB, opts Options) (*Injector, error) {
	// Repositories
	studentRepo := persistence.NewStudentRepository(db)
	teacherRepo := persistence.NewTeacherRepository(db)
	companyRepo := persistence.NewCompanyRepository(db)
	transactor := persistence.NewTransactor(db)

	emailQueue, err := newEmailQueue(cfg, db, opts.Cache)
	if err != nil {
		return nil, err
	}

	// Adapters
	passwordService := adapters.NewPasswordService(cfg.Accounts.BcryptCost)

	sender := opts.EmailSender
	if sender == nil {
		sender = newEmailSender(cfg)
	}

	renderer, err := templates.NewRenderer()
	if err != nil {
		return nil, fmt.Errorf("failed to load email templates: %w", err)
	}

	notifier := email.NewNotifier(emailQueue, sender, renderer, cfg.Email.FromName, cfg.Email.NotifyTimeout)
	worker := email.NewWorker(emailQueue, sender, renderer, email.WorkerConfig{
		AppName:         cfg.Email.FromName,
		PollInterval:    cfg.Email.PollInterval,
		BatchSize:       cfg.Email.BatchSize,
		RetentionDays:   cfg.Email.RetentionDays,
		CleanupInterval: cfg.Email.CleanupInterval,
	})

	// Use cases
	registerStudentUseCase := account.NewRegisterStudentUseCase(studentRepo, passwordService, transactor)
	registerTeacherUseCase := account.NewRegisterTeacherUseCase(teacherRepo, passwordService, transactor, cfg.Accounts.TeacherInitialCoins)
	registerCompanyUseCase := account.NewRegisterCompanyUseCase(companyRepo, passwordService, transactor)
	loginUseCase := account.NewLoginUseCase(studentRepo, teacherRepo, companyRepo, passwordService, transactor)
	resetCredentialUseCase := account.NewResetCredentialUseCase(studentRepo, teacherRepo, companyRepo, passwordService, transactor)

	// Controllers
	dbHealthChecker := opts.DBHealthChecker
	if dbHealthChecker == nil {
		dbHealthChecker = func() bool {
			sqlDB, err := db.DB()
			if err != nil {
				return false
			}
			return sqlDB.Ping() == nil
		}
	}
	healthController := controller.NewHealthController(dbHealthChecker, opts.CacheHealthChecker)

	authController := controller.NewAuthController(
		registerStudentUseCase,
		registerTeacherUseCase,
		registerCompanyUseCase,
		loginUseCase,
		resetCredentialUseCase,
		notifier,
	)

	r := router.NewRouter(healthController, authController)

	return &Injector{
		Config:      cfg,
		DB:          db,
		Cache:       opts.Cache,
		EmailQueue:  emailQueue,
		EmailSender: sender,
		EmailWorker: worker,
		Notifier:    notifier,
		Router:      r,
	}, nil
}

func newEmailQueue(cfg *config.Config, db *gorm.DB, cache *redis.Client) (adapter.EmailQueueRepository, error) {
	switch cfg.Email.QueueBackend {
	case config.QueueBackendDatabase:
		return persistence.NewEmailQueueRepository(db), nil
	case config.QueueBackendRedis:
		if cache == nil {
			return nil, fmt.Errorf("email queue backend %q requires a redis connection", cfg.Email.QueueBackend)
		}
		return persistence.NewRedisEmailQueueRepository(cache), nil
	default:
		return nil, fmt.Errorf("unsupported email queue backend %q", cfg.Email.QueueBackend)
	}
}

func newEmailSender(cfg *config.Config) adapter.EmailSender {
	if cfg.Email.ResendAPIKey == "" {
		slog.Warn("RESEND_API_KEY not set, emails will only be logged")
		return email.NewLogSender()
	}
	return email.NewResendClient(cfg.Email.ResendAPIKey, cfg.Email.FromName, cfg.Email.FromEmail)
}

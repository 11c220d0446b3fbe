package app

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/redis/go-redis/v9"

	httpapi "github.com/todopilot/pilot/internal/pilot/http"
	"github.com/todopilot/pilot/internal/pilot/service"
	"github.com/todopilot/pilot/internal/pilot/store"
	"github.com/todopilot/pilot/internal/pilot/store/drivers/postgres"
	"github.com/todopilot/pilot/internal/pilot/store/drivers/sqlite"
	"github.com/todopilot/pilot/pkg/cryptox"
	"github.com/todopilot/pilot/pkg/httpx"
	"github.com/todopilot/pilot/pkg/jwtx"
	"github.com/todopilot/pilot/pkg/mailx"
	"github.com/todopilot/pilot/pkg/slogx"
)

const (
	// BuildVersion is overridden at build time via ldflags.
	BuildVersion = "v0.1.0"
)

// Application wires configuration, storage, services and the HTTP server.
type Application struct {
	cfg    Config
	logger *slog.Logger

	// Core dependencies
	db         store.Store
	signingKey *jwtx.HS256
	hasher     *cryptox.PasswordHasher
	mailer     *service.Mailer
	redis      *redis.Client // nil unless RATELIMIT_REDIS_URL is set

	// Services
	authService         *service.AuthService
	todoService         *service.TodoService
	teamService         *service.TeamService
	invitationFlow      *service.InvitationFlow
	housekeepingService *service.HousekeepingService

	// HTTP server
	server *http.Server
	router *httpapi.Router
}

// New creates a new Application instance with all dependencies initialized
func New(cfg Config) (*Application, error) {
	app := &Application{
		cfg: cfg,
		logger: slogx.New(slogx.Config{
			Service: "todo-pilot",
			Version: BuildVersion,
			Env:     cfg.Env,
			Level:   cfg.LogLevel,
			Format:  cfg.LogFormat,
		}),
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	pepper, err := cryptox.LoadOrCreatePepper(cfg.PepperFile)
	if err != nil {
		return nil, fmt.Errorf("failed to load pepper: %w", err)
	}
	app.hasher = cryptox.NewPasswordHasher(pepper)

	app.signingKey, err = InitSigningKey(cfg, app.logger)
	if err != nil {
		return nil, err
	}

	if err := app.initDatabase(); err != nil {
		return nil, err
	}
	if err := app.initMailer(); err != nil {
		_ = app.db.Close()
		return nil, err
	}

	app.initServices()
	if err := app.initHTTP(); err != nil {
		_ = app.db.Close()
		return nil, err
	}

	return app, nil
}

// Run starts the application and blocks until shutdown is requested
func (app *Application) Run() error {
	app.housekeepingService.Start()

	app.logger.Info("todo pilot starting",
		slog.Int("port", app.cfg.Port),
		slog.String("version", BuildVersion),
		slog.String("database", app.cfg.DatabaseDriver),
	)

	serverErrors := make(chan error, 1)
	go func() {
		serverErrors <- app.server.ListenAndServe()
	}()

	shutdown := make(chan os.Signal, 1)
	signal.Notify(shutdown, os.Interrupt, syscall.SIGTERM)

	select {
	case err := <-serverErrors:
		if err != nil && !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("server failed: %w", err)
		}
	case sig := <-shutdown:
		app.logger.Info("shutdown signal received", slog.String("signal", sig.String()))

		if err := app.Shutdown(); err != nil {
			return fmt.Errorf("graceful shutdown failed: %w", err)
		}
	}

	return nil
}

// Shutdown drains HTTP requests, stops background work and closes storage.
func (app *Application) Shutdown() error {
	app.logger.Info("shutting down todo pilot...")

	ctx, cancel := context.WithTimeout(context.Background(), app.cfg.ShutdownGracePeriod)
	defer cancel()

	if err := app.server.Shutdown(ctx); err != nil {
		app.logger.Error("graceful server shutdown failed", slog.Any("error", err))
		if err := app.server.Close(); err != nil {
			app.logger.Error("error closing server", slog.Any("error", err))
		}
	}

	app.housekeepingService.Stop()

	if app.redis != nil {
		if err := app.redis.Close(); err != nil {
			app.logger.Error("error closing redis client", slog.Any("error", err))
		}
	}

	if err := app.db.Close(); err != nil {
		app.logger.Error("error closing database", slog.Any("error", err))
		return err
	}

	app.logger.Info("todo pilot stopped")
	return nil
}

// initDatabase opens the configured driver and applies migrations
func (app *Application) initDatabase() error {
	var (
		db  store.Store
		err error
	)

	switch app.cfg.DatabaseDriver {
	case "postgres":
		ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
		defer cancel()
		db, err = postgres.NewStore(ctx, app.cfg.DatabaseURL)
	default:
		dsn := fmt.Sprintf("file:%s?_pragma=busy_timeout(5000)&_pragma=journal_mode(WAL)", app.cfg.DatabaseFile)
		db, err = sqlite.NewStore(dsn)
	}
	if err != nil {
		return fmt.Errorf("failed to initialize database: %w", err)
	}
	app.db = db

	if err := db.ApplyMigrations(); err != nil {
		_ = db.Close()
		return fmt.Errorf("failed to apply database migrations: %w", err)
	}

	app.logger.Info("database migrations applied successfully", slog.String("driver", app.cfg.DatabaseDriver))
	return nil
}

// initMailer picks SMTP delivery when a host is configured and logs mails
// otherwise.
func (app *Application) initMailer() error {
	var sender mailx.Sender = mailx.LogSender{Logger: app.logger}

	if app.cfg.SMTPHost != "" {
		smtp, err := mailx.NewSMTPSender(mailx.SMTPConfig{
			Host:     app.cfg.SMTPHost,
			Port:     app.cfg.SMTPPort,
			Username: app.cfg.SMTPUser,
			Password: app.cfg.SMTPPass,
			From:     app.cfg.SMTPFrom,
			FromName: "TODO PILOT",
		})
		if err != nil {
			return fmt.Errorf("failed to configure smtp: %w", err)
		}
		sender = smtp
	} else {
		app.logger.Warn("SMTP_HOST not set, emails will be logged instead of sent")
	}

	app.mailer = &service.Mailer{
		Sender:  sender,
		BaseURL: app.cfg.PublicBaseURL,
	}
	return nil
}

// initServices initializes all business logic services
func (app *Application) initServices() {
	tokens := service.NewTokenService(app.signingKey)

	app.authService = &service.AuthService{
		Store:  app.db,
		Hasher: app.hasher,
		Tokens: tokens,
		Mailer: app.mailer,
	}
	app.todoService = &service.TodoService{Store: app.db}
	app.teamService = &service.TeamService{Store: app.db, Mailer: app.mailer}
	app.invitationFlow = &service.InvitationFlow{Store: app.db}

	app.housekeepingService = service.NewHousekeepingService(
		app.db,
		app.logger,
		app.cfg.HousekeepingInterval,
		app.cfg.UnverifiedRetention,
	)
}

// initHTTP initializes the HTTP router and server
func (app *Application) initHTTP() error {
	router := httpapi.NewRouter(
		BuildVersion,
		app.db,
		app.cfg.CORSAllowedOrigins,
		app.logger,
	)
	router.MaxUploadBytes = app.cfg.MaxUploadBytes

	// Shared counters across replicas when redis is configured
	if app.cfg.RateLimitRedisURL != "" {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()

		client, err := httpx.NewRedisClient(ctx, app.cfg.RateLimitRedisURL)
		if err != nil {
			return fmt.Errorf("failed to connect to rate limit redis: %w", err)
		}
		app.redis = client
		router.Limiters = httpx.RedisLimiters(client)
		app.logger.Info("rate limiting backed by redis")
	}

	router.AuthService = app.authService
	router.TodoService = app.todoService
	router.TeamService = app.teamService
	router.InvitationFlow = app.invitationFlow
	router.ApplyRoutes()

	app.router = router

	app.server = &http.Server{
		Addr:              fmt.Sprintf(":%d", app.cfg.Port),
		Handler:           router,
		ReadHeaderTimeout: 3 * time.Second,
	}
	return nil
}

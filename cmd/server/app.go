package main

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"

	"github.com/phrazzld/taskmanager-api/internal/api/middleware"
	"github.com/phrazzld/taskmanager-api/internal/config"
	"github.com/phrazzld/taskmanager-api/internal/metrics"
	"github.com/phrazzld/taskmanager-api/internal/platform/memory"
	"github.com/phrazzld/taskmanager-api/internal/platform/postgres"
	"github.com/phrazzld/taskmanager-api/internal/service"
	"github.com/phrazzld/taskmanager-api/internal/service/auth"
	"github.com/phrazzld/taskmanager-api/internal/store"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"golang.org/x/time/rate"
)

// application holds the shared dependencies and owns their shutdown.
type application struct {
	config *config.Config
	logger *slog.Logger

	// db is nil for the memory driver.
	db    *sql.DB
	store store.Manager

	registry *prometheus.Registry
	recorder metrics.Recorder

	users service.UserService
	tasks service.TaskService

	// rateLimiter is nil when throttling is disabled.
	rateLimiter *middleware.RateLimiter
}

// newApplication wires stores, services and middleware from cfg.
func newApplication(ctx context.Context, cfg *config.Config, logger *slog.Logger) (*application, error) {
	app := &application{
		config:   cfg,
		logger:   logger,
		recorder: metrics.Nop{},
	}

	if cfg.Server.MetricsEnabled {
		app.registry = prometheus.NewRegistry()
		app.registry.MustRegister(
			collectors.NewGoCollector(),
			collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
		)
		app.recorder = metrics.NewCollector(app.registry)
	}

	if err := app.setupStore(ctx); err != nil {
		return nil, err
	}

	tokens := auth.NewTokenIssuer(
		cfg.Auth.TokenLength,
		cfg.Auth.MaxTokenAttempts,
		logger,
		auth.WithCollisionObserver(app.recorder.RecordTokenCollision),
	)
	passwords := auth.NewBcrypt(cfg.Auth.BcryptCost)

	app.users = service.NewUserService(app.store, tokens, passwords, passwords, logger)
	app.tasks = service.NewTaskService(app.store, logger)

	if cfg.RateLimit.Enabled() {
		app.rateLimiter = middleware.NewRateLimiter(middleware.RateLimiterConfig{
			Rate:  rate.Limit(cfg.RateLimit.RequestsPerSecond),
			Burst: cfg.RateLimit.Burst,
		}, app.recorder)
	}

	logger.Info("application initialized",
		slog.Bool("metrics_enabled", cfg.Server.MetricsEnabled),
		slog.Bool("rate_limit_enabled", cfg.RateLimit.Enabled()))
	return app, nil
}

func (app *application) setupStore(ctx context.Context) error {
	switch app.config.Database.Driver {
	case config.DriverMemory:
		app.logger.Warn("using in-memory store; data is lost on restart")
		app.store = memory.NewManager(app.logger)
		return nil

	case config.DriverPostgres:
		db, err := setupAppDatabase(ctx, app.config.Database, app.logger)
		if err != nil {
			return err
		}
		app.db = db

		if app.config.Database.AutoMigrate {
			if err := postgres.Migrate(ctx, db, postgres.MigrateUp, app.logger); err != nil {
				app.cleanup()
				return fmt.Errorf("failed to apply migrations: %w", err)
			}
		}
		app.store = postgres.NewManager(db, app.logger)
		return nil

	default:
		return fmt.Errorf("unsupported database driver %q", app.config.Database.Driver)
	}
}

// Run serves HTTP until ctx is canceled, then shuts down.
func (app *application) Run(ctx context.Context) error {
	if err := app.startHTTPServer(ctx, app.setupRouter()); err != nil {
		return fmt.Errorf("server error: %w", err)
	}
	return nil
}

// cleanup releases background workers and the database pool.
func (app *application) cleanup() {
	if app.rateLimiter != nil {
		app.rateLimiter.Stop()
	}

	if app.db != nil {
		if err := app.db.Close(); err != nil {
			app.logger.Error("error closing database connection", "error", err)
		}
	}

	app.logger.Info("application shutdown completed")
}

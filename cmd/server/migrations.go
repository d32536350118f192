package main

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/phrazzld/taskmanager-api/internal/config"
	"github.com/phrazzld/taskmanager-api/internal/platform/postgres"
)

// handleMigrations runs a goose command against the configured database.
func handleMigrations(ctx context.Context, cfg *config.Config, command string, logger *slog.Logger) error {
	if cfg.Database.Driver != config.DriverPostgres {
		return fmt.Errorf("migrations require the %q driver, got %q", config.DriverPostgres, cfg.Database.Driver)
	}

	db, err := setupAppDatabase(ctx, cfg.Database, logger)
	if err != nil {
		return err
	}
	defer func() {
		if err := db.Close(); err != nil {
			logger.Error("failed to close database connection", "error", err)
		}
	}()

	logger.Info("executing migrations", slog.String("command", command))
	return postgres.Migrate(ctx, db, command, logger)
}

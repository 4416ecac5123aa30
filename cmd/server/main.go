// Package main implements the entry point for the Boardflow API server,
// which hosts collaborative kanban boards with ordered cards, activity
// notifications and deadline reminders.
package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"log/slog"

	"github.com/boardflow/boardflow-api/internal/config"
	"github.com/boardflow/boardflow-api/internal/platform/logger"
)

func main() {
	migrateCmd := flag.String("migrate", "", "run a migration command (up, down, status) and exit")
	flag.Parse()

	if err := run(*migrateCmd); err != nil {
		log.Fatalf("server exited with error: %v", err)
	}
}

// run loads configuration, wires the application and starts the server.
// Split out of main so errors flow through one exit path.
func run(migrateCmd string) error {
	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("failed to load configuration: %w", err)
	}

	appLogger, err := logger.Setup(cfg.Server)
	if err != nil {
		return fmt.Errorf("failed to set up logger: %w", err)
	}

	appLogger.Info("server configuration loaded",
		slog.Int("port", cfg.Server.Port),
		slog.String("log_level", cfg.Server.LogLevel),
		slog.Bool("email_configured", cfg.SMTP.Configured()),
		slog.Bool("telegram_configured", cfg.Telegram.Configured()))

	db, err := setupAppDatabase(cfg, appLogger)
	if err != nil {
		return fmt.Errorf("failed to set up database: %w", err)
	}

	// An explicit migrate command runs and exits without starting the server.
	if migrateCmd != "" {
		defer closeDatabase(db, appLogger)
		return runMigrations(db, migrateCmd, appLogger)
	}

	// Normal startup applies pending migrations before serving.
	if err := runMigrations(db, "up", appLogger); err != nil {
		closeDatabase(db, appLogger)
		return fmt.Errorf("failed to apply migrations: %w", err)
	}

	ctx := context.Background()

	app, err := newApplication(ctx, cfg, appLogger, db)
	if err != nil {
		closeDatabase(db, appLogger)
		return fmt.Errorf("failed to initialize application: %w", err)
	}

	return app.Run(ctx)
}

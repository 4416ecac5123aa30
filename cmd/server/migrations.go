package main

import (
	"database/sql"
	"fmt"
	"log/slog"
	"time"

	"github.com/pressly/goose/v3"

	"github.com/boardflow/boardflow-api/migrations"
)

// slogGooseLogger adapts goose's logger interface to slog.
type slogGooseLogger struct{}

func (l *slogGooseLogger) Fatalf(format string, v ...interface{}) {
	slog.Error(fmt.Sprintf(format, v...), slog.String("component", "goose"))
}

func (l *slogGooseLogger) Printf(format string, v ...interface{}) {
	slog.Info(fmt.Sprintf(format, v...), slog.String("component", "goose"))
}

// runMigrations executes the given goose command against the embedded
// migration files.
func runMigrations(db *sql.DB, command string, logger *slog.Logger) error {
	migrationLogger := logger.With(
		slog.String("component", "migrations"),
		slog.String("command", command))

	goose.SetLogger(&slogGooseLogger{})
	goose.SetBaseFS(migrations.FS)

	if err := goose.SetDialect("postgres"); err != nil {
		return fmt.Errorf("failed to set dialect: %w", err)
	}

	start := time.Now()
	migrationLogger.Info("starting migration operation")

	var err error
	switch command {
	case "up":
		err = goose.Up(db, ".")
	case "down":
		err = goose.Down(db, ".")
	case "status":
		err = goose.Status(db, ".")
	default:
		return fmt.Errorf("unknown migration command: %s (expected up, down, or status)", command)
	}

	if err != nil {
		migrationLogger.Error("migration command failed",
			slog.String("error", err.Error()),
			slog.Int64("duration_ms", time.Since(start).Milliseconds()))
		return fmt.Errorf("migration command %q failed: %w", command, err)
	}

	migrationLogger.Info("migration command completed",
		slog.Int64("duration_ms", time.Since(start).Milliseconds()))
	return nil
}

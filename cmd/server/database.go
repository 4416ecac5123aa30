package main

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"
	"time"

	// Registers the pgx stdlib driver under the name "pgx".
	_ "github.com/jackc/pgx/v5/stdlib"

	"github.com/boardflow/boardflow-api/internal/config"
)

// setupAppDatabase establishes a connection to the database and configures
// the connection pool. Returns the database connection if successful.
func setupAppDatabase(cfg *config.Config, logger *slog.Logger) (*sql.DB, error) {
	db, err := sql.Open("pgx", cfg.Database.URL)
	if err != nil {
		return nil, fmt.Errorf("failed to open database connection: %w", err)
	}

	db.SetMaxOpenConns(10)
	db.SetMaxIdleConns(5)
	db.SetConnMaxLifetime(5 * time.Minute)

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := db.PingContext(ctx); err != nil {
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}

	logger.Info("database connection established")
	return db, nil
}

// closeDatabase closes the connection, logging rather than returning the
// error since callers are already on an exit path.
func closeDatabase(db *sql.DB, logger *slog.Logger) {
	if err := db.Close(); err != nil {
		logger.Error("error closing database connection", slog.String("error", err.Error()))
	}
}

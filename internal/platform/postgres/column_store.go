package postgres

import (
	"context"
	"database/sql"
	"errors"
	"log/slog"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/boardflow/boardflow-api/internal/domain"
	"github.com/boardflow/boardflow-api/internal/platform/logger"
	"github.com/boardflow/boardflow-api/internal/store"
)

// PostgresColumnStore implements the store.ColumnStore interface
// using a PostgreSQL database as the storage backend.
type PostgresColumnStore struct {
	db     store.DBTX
	logger *slog.Logger
}

// NewPostgresColumnStore creates a new PostgreSQL implementation of the
// ColumnStore interface.
func NewPostgresColumnStore(db store.DBTX, logger *slog.Logger) *PostgresColumnStore {
	if db == nil {
		panic("db cannot be nil")
	}

	if logger == nil {
		logger = slog.Default()
	}

	return &PostgresColumnStore{
		db:     db,
		logger: logger.With(slog.String("component", "column_store")),
	}
}

// Ensure PostgresColumnStore implements store.ColumnStore interface
var _ store.ColumnStore = (*PostgresColumnStore)(nil)

// Create implements store.ColumnStore.Create
func (s *PostgresColumnStore) Create(ctx context.Context, column *domain.Column) error {
	log := logger.FromContextOrDefault(ctx, s.logger)

	if err := column.Validate(); err != nil {
		return err
	}

	query := `
		INSERT INTO columns (id, board_id, name, position, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6)
	`
	if _, err := s.db.ExecContext(
		ctx,
		query,
		column.ID,
		column.BoardID,
		column.Name,
		column.Position,
		column.CreatedAt,
		column.UpdatedAt,
	); err != nil {
		log.Error("failed to create column",
			slog.String("error", err.Error()),
			slog.String("column_id", column.ID.String()))
		return MapError(err)
	}

	return nil
}

// GetByID implements store.ColumnStore.GetByID
func (s *PostgresColumnStore) GetByID(ctx context.Context, id uuid.UUID) (*domain.Column, error) {
	query := `
		SELECT id, board_id, name, position, created_at, updated_at
		FROM columns
		WHERE id = $1
	`

	var column domain.Column
	var pos string
	err := s.db.QueryRowContext(ctx, query, id).Scan(
		&column.ID,
		&column.BoardID,
		&column.Name,
		&pos,
		&column.CreatedAt,
		&column.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, store.ErrColumnNotFound
		}
		return nil, MapError(err)
	}

	column.Position, err = decimal.NewFromString(pos)
	if err != nil {
		return nil, err
	}

	return &column, nil
}

// ListByBoard implements store.ColumnStore.ListByBoard
func (s *PostgresColumnStore) ListByBoard(
	ctx context.Context,
	boardID uuid.UUID,
) ([]*domain.Column, error) {
	query := `
		SELECT id, board_id, name, position, created_at, updated_at
		FROM columns
		WHERE board_id = $1
		ORDER BY position, created_at, id
	`

	rows, err := s.db.QueryContext(ctx, query, boardID)
	if err != nil {
		return nil, MapError(err)
	}
	defer func() { _ = rows.Close() }()

	var columns []*domain.Column
	for rows.Next() {
		var column domain.Column
		var pos string
		if err := rows.Scan(
			&column.ID,
			&column.BoardID,
			&column.Name,
			&pos,
			&column.CreatedAt,
			&column.UpdatedAt,
		); err != nil {
			return nil, MapError(err)
		}

		column.Position, err = decimal.NewFromString(pos)
		if err != nil {
			return nil, err
		}

		columns = append(columns, &column)
	}

	return columns, rows.Err()
}

// MaxPosition implements store.ColumnStore.MaxPosition
func (s *PostgresColumnStore) MaxPosition(
	ctx context.Context,
	boardID uuid.UUID,
) (*decimal.Decimal, error) {
	query := `SELECT MAX(position) FROM columns WHERE board_id = $1`

	var max sql.NullString
	if err := s.db.QueryRowContext(ctx, query, boardID).Scan(&max); err != nil {
		return nil, MapError(err)
	}

	if !max.Valid {
		return nil, nil
	}

	pos, err := decimal.NewFromString(max.String)
	if err != nil {
		return nil, err
	}

	return &pos, nil
}

// Delete implements store.ColumnStore.Delete
func (s *PostgresColumnStore) Delete(ctx context.Context, id uuid.UUID) error {
	result, err := s.db.ExecContext(ctx, `DELETE FROM columns WHERE id = $1`, id)
	if err != nil {
		return MapError(err)
	}

	return CheckRowsAffected(result, "column")
}

// WithTx implements store.ColumnStore.WithTx
func (s *PostgresColumnStore) WithTx(tx *sql.Tx) store.ColumnStore {
	return &PostgresColumnStore{
		db:     tx,
		logger: s.logger,
	}
}

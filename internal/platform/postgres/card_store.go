package postgres

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/boardflow/boardflow-api/internal/domain"
	"github.com/boardflow/boardflow-api/internal/platform/logger"
	"github.com/boardflow/boardflow-api/internal/store"
)

// PostgresCardStore implements the store.CardStore interface
// using a PostgreSQL database as the storage backend.
type PostgresCardStore struct {
	db     store.DBTX
	logger *slog.Logger
}

// NewPostgresCardStore creates a new PostgreSQL implementation of the
// CardStore interface. It accepts a database connection or transaction
// that should be initialized and managed by the caller.
func NewPostgresCardStore(db store.DBTX, logger *slog.Logger) *PostgresCardStore {
	if db == nil {
		panic("db cannot be nil")
	}

	if logger == nil {
		logger = slog.Default()
	}

	return &PostgresCardStore{
		db:     db,
		logger: logger.With(slog.String("component", "card_store")),
	}
}

// Ensure PostgresCardStore implements store.CardStore interface
var _ store.CardStore = (*PostgresCardStore)(nil)

const cardColumns = `id, board_id, column_id, title, content, position, version, deadline, created_at, updated_at`

// Create implements store.CardStore.Create
func (s *PostgresCardStore) Create(ctx context.Context, card *domain.Card) error {
	log := logger.FromContextOrDefault(ctx, s.logger)

	if err := card.Validate(); err != nil {
		log.Warn("card validation failed during create",
			slog.String("error", err.Error()),
			slog.String("card_id", card.ID.String()))
		return err
	}

	query := `
		INSERT INTO cards (id, board_id, column_id, title, content, position, version, deadline, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)
	`
	if _, err := s.db.ExecContext(
		ctx,
		query,
		card.ID,
		card.BoardID,
		card.ColumnID,
		card.Title,
		nullableJSON(card.Content),
		card.Position,
		card.Version,
		card.Deadline,
		card.CreatedAt,
		card.UpdatedAt,
	); err != nil {
		log.Error("failed to create card",
			slog.String("error", err.Error()),
			slog.String("card_id", card.ID.String()))
		return MapError(err)
	}

	log.Info("card created successfully",
		slog.String("card_id", card.ID.String()),
		slog.String("column_id", card.ColumnID.String()))
	return nil
}

// GetByID implements store.CardStore.GetByID
func (s *PostgresCardStore) GetByID(ctx context.Context, id uuid.UUID) (*domain.Card, error) {
	query := `SELECT ` + cardColumns + ` FROM cards WHERE id = $1`

	card, err := scanCard(s.db.QueryRowContext(ctx, query, id))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, store.ErrCardNotFound
		}
		return nil, MapError(err)
	}

	return card, nil
}

// ListByColumn implements store.CardStore.ListByColumn
func (s *PostgresCardStore) ListByColumn(
	ctx context.Context,
	columnID uuid.UUID,
) ([]*domain.Card, error) {
	query := `
		SELECT ` + cardColumns + `
		FROM cards
		WHERE column_id = $1
		ORDER BY position, created_at, id
	`
	return s.queryCards(ctx, query, columnID)
}

// ListByColumnForUpdate implements store.CardStore.ListByColumnForUpdate
// The FOR UPDATE locks hold until the enclosing transaction ends,
// serializing concurrent moves within the column.
func (s *PostgresCardStore) ListByColumnForUpdate(
	ctx context.Context,
	columnID uuid.UUID,
) ([]*domain.Card, error) {
	query := `
		SELECT ` + cardColumns + `
		FROM cards
		WHERE column_id = $1
		ORDER BY position, created_at, id
		FOR UPDATE
	`
	return s.queryCards(ctx, query, columnID)
}

// Move implements store.CardStore.Move
// The version predicate and the version bump live in the same UPDATE, so
// the check-and-write is atomic: either the caller held the current
// version and the row moves, or nothing is written.
func (s *PostgresCardStore) Move(
	ctx context.Context,
	cardID, columnID uuid.UUID,
	pos decimal.Decimal,
	expectedVersion int64,
) error {
	log := logger.FromContextOrDefault(ctx, s.logger)

	query := `
		UPDATE cards
		SET column_id = $1, position = $2, version = version + 1, updated_at = $3
		WHERE id = $4 AND version = $5
	`
	result, err := s.db.ExecContext(
		ctx,
		query,
		columnID,
		pos,
		time.Now().UTC(),
		cardID,
		expectedVersion,
	)
	if err != nil {
		log.Error("failed to move card",
			slog.String("error", err.Error()),
			slog.String("card_id", cardID.String()))
		return MapError(err)
	}

	return s.checkVersionedWrite(ctx, result, cardID, expectedVersion)
}

// Update implements store.CardStore.Update
func (s *PostgresCardStore) Update(
	ctx context.Context,
	cardID uuid.UUID,
	title string,
	content json.RawMessage,
	deadline *time.Time,
	expectedVersion int64,
) error {
	query := `
		UPDATE cards
		SET title = $1, content = $2, deadline = $3, version = version + 1, updated_at = $4
		WHERE id = $5 AND version = $6
	`
	result, err := s.db.ExecContext(
		ctx,
		query,
		title,
		nullableJSON(content),
		deadline,
		time.Now().UTC(),
		cardID,
		expectedVersion,
	)
	if err != nil {
		return MapError(err)
	}

	return s.checkVersionedWrite(ctx, result, cardID, expectedVersion)
}

// UpdatePositions implements store.CardStore.UpdatePositions
func (s *PostgresCardStore) UpdatePositions(
	ctx context.Context,
	positions map[uuid.UUID]decimal.Decimal,
) error {
	query := `UPDATE cards SET position = $1, updated_at = $2 WHERE id = $3`

	now := time.Now().UTC()
	for id, pos := range positions {
		if _, err := s.db.ExecContext(ctx, query, pos, now, id); err != nil {
			return MapError(err)
		}
	}

	return nil
}

// Delete implements store.CardStore.Delete
func (s *PostgresCardStore) Delete(ctx context.Context, id uuid.UUID) error {
	result, err := s.db.ExecContext(ctx, `DELETE FROM cards WHERE id = $1`, id)
	if err != nil {
		return MapError(err)
	}

	return CheckRowsAffected(result, "card")
}

// WithTx implements store.CardStore.WithTx
func (s *PostgresCardStore) WithTx(tx *sql.Tx) store.CardStore {
	return &PostgresCardStore{
		db:     tx,
		logger: s.logger,
	}
}

// checkVersionedWrite distinguishes "card gone" from "version stale" after
// a version-predicated UPDATE matched zero rows.
func (s *PostgresCardStore) checkVersionedWrite(
	ctx context.Context,
	result sql.Result,
	cardID uuid.UUID,
	expectedVersion int64,
) error {
	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return err
	}
	if rowsAffected > 0 {
		return nil
	}

	var currentVersion int64
	err = s.db.QueryRowContext(ctx, `SELECT version FROM cards WHERE id = $1`, cardID).
		Scan(&currentVersion)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return store.ErrCardNotFound
		}
		return MapError(err)
	}

	s.logger.Debug("optimistic version check failed",
		slog.String("card_id", cardID.String()),
		slog.Int64("expected_version", expectedVersion),
		slog.Int64("current_version", currentVersion))
	return store.ErrVersionConflict
}

func (s *PostgresCardStore) queryCards(
	ctx context.Context,
	query string,
	args ...any,
) ([]*domain.Card, error) {
	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, MapError(err)
	}
	defer func() { _ = rows.Close() }()

	var cards []*domain.Card
	for rows.Next() {
		card, err := scanCard(rows)
		if err != nil {
			return nil, MapError(err)
		}
		cards = append(cards, card)
	}

	return cards, rows.Err()
}

// rowScanner is satisfied by both *sql.Row and *sql.Rows.
type rowScanner interface {
	Scan(dest ...any) error
}

func scanCard(row rowScanner) (*domain.Card, error) {
	var card domain.Card
	var content sql.NullString
	var pos string

	err := row.Scan(
		&card.ID,
		&card.BoardID,
		&card.ColumnID,
		&card.Title,
		&content,
		&pos,
		&card.Version,
		&card.Deadline,
		&card.CreatedAt,
		&card.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}

	if content.Valid {
		card.Content = json.RawMessage(content.String)
	}

	card.Position, err = decimal.NewFromString(pos)
	if err != nil {
		return nil, err
	}

	return &card, nil
}

// nullableJSON maps empty content to SQL NULL instead of an empty string,
// which would not be valid JSONB.
// nullableJSON adapts a raw JSON document for a jsonb parameter. The value
// goes over the wire as text so the server coerces it, and an empty document
// becomes NULL.
func nullableJSON(content json.RawMessage) any {
	if len(content) == 0 {
		return nil
	}
	return string(content)
}

package postgres

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"

	"github.com/google/uuid"

	"github.com/boardflow/boardflow-api/internal/domain"
	"github.com/boardflow/boardflow-api/internal/platform/logger"
	"github.com/boardflow/boardflow-api/internal/store"
)

// PostgresEventStore implements the store.EventStore interface
// using a PostgreSQL database as the storage backend.
type PostgresEventStore struct {
	db     store.DBTX
	logger *slog.Logger
}

// NewPostgresEventStore creates a new PostgreSQL implementation of the
// EventStore interface.
func NewPostgresEventStore(db store.DBTX, logger *slog.Logger) *PostgresEventStore {
	if db == nil {
		panic("db cannot be nil")
	}

	if logger == nil {
		logger = slog.Default()
	}

	return &PostgresEventStore{
		db:     db,
		logger: logger.With(slog.String("component", "event_store")),
	}
}

// Ensure PostgresEventStore implements store.EventStore interface
var _ store.EventStore = (*PostgresEventStore)(nil)

const eventColumns = `id, type, actor_id, board_id, column_id, card_id, summary, link, payload, dedupe_key, created_at`

// Create implements store.EventStore.Create
func (s *PostgresEventStore) Create(ctx context.Context, event *domain.NotificationEvent) error {
	log := logger.FromContextOrDefault(ctx, s.logger)

	if err := event.Validate(); err != nil {
		return err
	}

	query := `
		INSERT INTO notification_events (id, type, actor_id, board_id, column_id, card_id, summary, link, payload, dedupe_key, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)
	`
	if _, err := s.db.ExecContext(
		ctx,
		query,
		event.ID,
		event.Type,
		event.ActorID,
		event.BoardID,
		event.ColumnID,
		event.CardID,
		event.Summary,
		event.Link,
		nullableJSON(event.Payload),
		event.DedupeKey,
		event.CreatedAt,
	); err != nil {
		log.Error("failed to create notification event",
			slog.String("error", err.Error()),
			slog.String("event_id", event.ID.String()))
		return MapError(err)
	}

	return nil
}

// GetOrCreate implements store.EventStore.GetOrCreate
// The insert uses ON CONFLICT DO NOTHING scoped to the dedupe key, so a
// lost race never poisons the enclosing transaction; the winner's row is
// then read back. The RETURNING clause tells the two cases apart.
func (s *PostgresEventStore) GetOrCreate(
	ctx context.Context,
	event *domain.NotificationEvent,
) (*domain.NotificationEvent, bool, error) {
	log := logger.FromContextOrDefault(ctx, s.logger)

	if event.DedupeKey == nil {
		return nil, false, fmt.Errorf("%w: dedupe key required for GetOrCreate", store.ErrInvalidEntity)
	}
	if err := event.Validate(); err != nil {
		return nil, false, err
	}

	query := `
		INSERT INTO notification_events (id, type, actor_id, board_id, column_id, card_id, summary, link, payload, dedupe_key, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)
		ON CONFLICT (dedupe_key) DO NOTHING
		RETURNING id
	`

	var insertedID uuid.UUID
	err := s.db.QueryRowContext(
		ctx,
		query,
		event.ID,
		event.Type,
		event.ActorID,
		event.BoardID,
		event.ColumnID,
		event.CardID,
		event.Summary,
		event.Link,
		nullableJSON(event.Payload),
		event.DedupeKey,
		event.CreatedAt,
	).Scan(&insertedID)

	if err == nil {
		log.Debug("notification event created",
			slog.String("event_id", insertedID.String()),
			slog.String("dedupe_key", *event.DedupeKey))
		return event, true, nil
	}

	if !errors.Is(err, sql.ErrNoRows) {
		return nil, false, MapError(err)
	}

	// Conflict path: fetch the winner's row.
	existing, err := s.getByDedupeKey(ctx, *event.DedupeKey)
	if err != nil {
		return nil, false, err
	}

	log.Debug("notification event already exists for dedupe key",
		slog.String("event_id", existing.ID.String()),
		slog.String("dedupe_key", *event.DedupeKey))
	return existing, false, nil
}

// GetByID implements store.EventStore.GetByID
func (s *PostgresEventStore) GetByID(
	ctx context.Context,
	id uuid.UUID,
) (*domain.NotificationEvent, error) {
	query := `SELECT ` + eventColumns + ` FROM notification_events WHERE id = $1`

	event, err := scanEvent(s.db.QueryRowContext(ctx, query, id))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, store.ErrEventNotFound
		}
		return nil, MapError(err)
	}

	return event, nil
}

// ListByBoard implements store.EventStore.ListByBoard
func (s *PostgresEventStore) ListByBoard(
	ctx context.Context,
	boardID uuid.UUID,
	limit int,
) ([]*domain.NotificationEvent, error) {
	query := `
		SELECT ` + eventColumns + `
		FROM notification_events
		WHERE board_id = $1
		ORDER BY created_at DESC, id DESC
		LIMIT $2
	`

	rows, err := s.db.QueryContext(ctx, query, boardID, limit)
	if err != nil {
		return nil, MapError(err)
	}
	defer func() { _ = rows.Close() }()

	var events []*domain.NotificationEvent
	for rows.Next() {
		event, err := scanEvent(rows)
		if err != nil {
			return nil, MapError(err)
		}
		events = append(events, event)
	}

	return events, rows.Err()
}

// WithTx implements store.EventStore.WithTx
func (s *PostgresEventStore) WithTx(tx *sql.Tx) store.EventStore {
	return &PostgresEventStore{
		db:     tx,
		logger: s.logger,
	}
}

func (s *PostgresEventStore) getByDedupeKey(
	ctx context.Context,
	key string,
) (*domain.NotificationEvent, error) {
	query := `SELECT ` + eventColumns + ` FROM notification_events WHERE dedupe_key = $1`

	event, err := scanEvent(s.db.QueryRowContext(ctx, query, key))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, store.ErrEventNotFound
		}
		return nil, MapError(err)
	}

	return event, nil
}

func scanEvent(row rowScanner) (*domain.NotificationEvent, error) {
	var event domain.NotificationEvent
	var eventType string
	var link sql.NullString
	var payload sql.NullString

	err := row.Scan(
		&event.ID,
		&eventType,
		&event.ActorID,
		&event.BoardID,
		&event.ColumnID,
		&event.CardID,
		&event.Summary,
		&link,
		&payload,
		&event.DedupeKey,
		&event.CreatedAt,
	)
	if err != nil {
		return nil, err
	}

	event.Type = domain.EventType(eventType)
	if link.Valid {
		event.Link = link.String
	}
	if payload.Valid {
		event.Payload = json.RawMessage(payload.String)
	}

	return &event, nil
}

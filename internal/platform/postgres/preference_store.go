package postgres

import (
	"context"
	"database/sql"
	"errors"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"github.com/boardflow/boardflow-api/internal/domain"
	"github.com/boardflow/boardflow-api/internal/platform/logger"
	"github.com/boardflow/boardflow-api/internal/store"
)

// PostgresPreferenceStore implements the store.PreferenceStore interface
// using a PostgreSQL database as the storage backend.
type PostgresPreferenceStore struct {
	db     store.DBTX
	logger *slog.Logger
}

// NewPostgresPreferenceStore creates a new PostgreSQL implementation of the
// PreferenceStore interface.
func NewPostgresPreferenceStore(db store.DBTX, logger *slog.Logger) *PostgresPreferenceStore {
	if db == nil {
		panic("db cannot be nil")
	}

	if logger == nil {
		logger = slog.Default()
	}

	return &PostgresPreferenceStore{
		db:     db,
		logger: logger.With(slog.String("component", "preference_store")),
	}
}

// Ensure PostgresPreferenceStore implements store.PreferenceStore interface
var _ store.PreferenceStore = (*PostgresPreferenceStore)(nil)

// Upsert implements store.PreferenceStore.Upsert
// The (user_id, board_id, channel, event_type) tuple is unique; COALESCE
// folds the nullable board_id into the index expression.
func (s *PostgresPreferenceStore) Upsert(
	ctx context.Context,
	pref *domain.NotificationPreference,
) error {
	log := logger.FromContextOrDefault(ctx, s.logger)

	query := `
		INSERT INTO notification_preferences (id, user_id, board_id, channel, event_type, enabled, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
		ON CONFLICT (user_id, COALESCE(board_id, '00000000-0000-0000-0000-000000000000'::uuid), channel, event_type)
		DO UPDATE SET enabled = EXCLUDED.enabled, updated_at = EXCLUDED.updated_at
	`
	if _, err := s.db.ExecContext(
		ctx,
		query,
		pref.ID,
		pref.UserID,
		pref.BoardID,
		pref.Channel,
		pref.EventType,
		pref.Enabled,
		pref.CreatedAt,
		time.Now().UTC(),
	); err != nil {
		log.Error("failed to upsert preference",
			slog.String("error", err.Error()),
			slog.String("user_id", pref.UserID.String()))
		return MapError(err)
	}

	return nil
}

// GetResolved implements store.PreferenceStore.GetResolved
// One query fetches both candidate rows; ordering the board-scoped row
// first makes precedence a LIMIT 1.
func (s *PostgresPreferenceStore) GetResolved(
	ctx context.Context,
	userID, boardID uuid.UUID,
	channel domain.Channel,
	eventType domain.EventType,
) (*domain.NotificationPreference, error) {
	query := `
		SELECT id, user_id, board_id, channel, event_type, enabled, created_at, updated_at
		FROM notification_preferences
		WHERE user_id = $1
		  AND channel = $2
		  AND event_type = $3
		  AND (board_id = $4 OR board_id IS NULL)
		ORDER BY board_id NULLS LAST
		LIMIT 1
	`

	pref, err := scanPreference(s.db.QueryRowContext(ctx, query, userID, channel, eventType, boardID))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, store.ErrNotFound
		}
		return nil, MapError(err)
	}

	return pref, nil
}

// ListByUser implements store.PreferenceStore.ListByUser
func (s *PostgresPreferenceStore) ListByUser(
	ctx context.Context,
	userID uuid.UUID,
) ([]*domain.NotificationPreference, error) {
	query := `
		SELECT id, user_id, board_id, channel, event_type, enabled, created_at, updated_at
		FROM notification_preferences
		WHERE user_id = $1
		ORDER BY created_at, id
	`

	rows, err := s.db.QueryContext(ctx, query, userID)
	if err != nil {
		return nil, MapError(err)
	}
	defer func() { _ = rows.Close() }()

	var prefs []*domain.NotificationPreference
	for rows.Next() {
		pref, err := scanPreference(rows)
		if err != nil {
			return nil, MapError(err)
		}
		prefs = append(prefs, pref)
	}

	return prefs, rows.Err()
}

// WithTx implements store.PreferenceStore.WithTx
func (s *PostgresPreferenceStore) WithTx(tx *sql.Tx) store.PreferenceStore {
	return &PostgresPreferenceStore{
		db:     tx,
		logger: s.logger,
	}
}

func scanPreference(row rowScanner) (*domain.NotificationPreference, error) {
	var pref domain.NotificationPreference
	var channel, eventType string

	err := row.Scan(
		&pref.ID,
		&pref.UserID,
		&pref.BoardID,
		&channel,
		&eventType,
		&pref.Enabled,
		&pref.CreatedAt,
		&pref.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}

	pref.Channel = domain.Channel(channel)
	pref.EventType = domain.EventType(eventType)
	return &pref, nil
}

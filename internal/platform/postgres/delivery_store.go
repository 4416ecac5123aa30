package postgres

import (
	"context"
	"database/sql"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"github.com/boardflow/boardflow-api/internal/domain"
	"github.com/boardflow/boardflow-api/internal/platform/logger"
	"github.com/boardflow/boardflow-api/internal/store"
)

// PostgresDeliveryStore implements the store.DeliveryStore interface
// using a PostgreSQL database as the storage backend.
type PostgresDeliveryStore struct {
	db     store.DBTX
	logger *slog.Logger
}

// NewPostgresDeliveryStore creates a new PostgreSQL implementation of the
// DeliveryStore interface.
func NewPostgresDeliveryStore(db store.DBTX, logger *slog.Logger) *PostgresDeliveryStore {
	if db == nil {
		panic("db cannot be nil")
	}

	if logger == nil {
		logger = slog.Default()
	}

	return &PostgresDeliveryStore{
		db:     db,
		logger: logger.With(slog.String("component", "delivery_store")),
	}
}

// Ensure PostgresDeliveryStore implements store.DeliveryStore interface
var _ store.DeliveryStore = (*PostgresDeliveryStore)(nil)

// Create implements store.DeliveryStore.Create
// A unique index on dedupe_key turns the second insert for the same
// reminder firing into ErrDedupeKeyExists, which callers treat as
// "already sent, stop here".
func (s *PostgresDeliveryStore) Create(
	ctx context.Context,
	delivery *domain.NotificationDelivery,
) error {
	log := logger.FromContextOrDefault(ctx, s.logger)

	if err := delivery.Validate(); err != nil {
		return err
	}

	query := `
		INSERT INTO notification_deliveries (id, event_id, recipient_id, channel, status, error, dedupe_key, sent_at, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
	`
	if _, err := s.db.ExecContext(
		ctx,
		query,
		delivery.ID,
		delivery.EventID,
		delivery.RecipientID,
		delivery.Channel,
		delivery.Status,
		delivery.Error,
		delivery.DedupeKey,
		delivery.SentAt,
		delivery.CreatedAt,
	); err != nil {
		if IsUniqueViolation(err) {
			log.Debug("delivery dedupe key already used",
				slog.String("delivery_id", delivery.ID.String()))
			return store.ErrDedupeKeyExists
		}

		log.Error("failed to create delivery",
			slog.String("error", err.Error()),
			slog.String("delivery_id", delivery.ID.String()))
		return MapError(err)
	}

	return nil
}

// MarkSent implements store.DeliveryStore.MarkSent
func (s *PostgresDeliveryStore) MarkSent(ctx context.Context, id uuid.UUID, sentAt time.Time) error {
	query := `
		UPDATE notification_deliveries
		SET status = $1, sent_at = $2, error = ''
		WHERE id = $3
	`
	result, err := s.db.ExecContext(ctx, query, domain.DeliveryStatusSent, sentAt, id)
	if err != nil {
		return MapError(err)
	}

	return CheckRowsAffected(result, "delivery")
}

// MarkFailed implements store.DeliveryStore.MarkFailed
func (s *PostgresDeliveryStore) MarkFailed(ctx context.Context, id uuid.UUID, errMsg string) error {
	query := `
		UPDATE notification_deliveries
		SET status = $1, error = $2
		WHERE id = $3
	`
	result, err := s.db.ExecContext(ctx, query, domain.DeliveryStatusFailed, errMsg, id)
	if err != nil {
		return MapError(err)
	}

	return CheckRowsAffected(result, "delivery")
}

// ListByEvent implements store.DeliveryStore.ListByEvent
func (s *PostgresDeliveryStore) ListByEvent(
	ctx context.Context,
	eventID uuid.UUID,
) ([]*domain.NotificationDelivery, error) {
	query := `
		SELECT id, event_id, recipient_id, channel, status, error, dedupe_key, sent_at, created_at
		FROM notification_deliveries
		WHERE event_id = $1
		ORDER BY created_at, id
	`

	rows, err := s.db.QueryContext(ctx, query, eventID)
	if err != nil {
		return nil, MapError(err)
	}
	defer func() { _ = rows.Close() }()

	var deliveries []*domain.NotificationDelivery
	for rows.Next() {
		var d domain.NotificationDelivery
		var channel, status string
		if err := rows.Scan(
			&d.ID,
			&d.EventID,
			&d.RecipientID,
			&channel,
			&status,
			&d.Error,
			&d.DedupeKey,
			&d.SentAt,
			&d.CreatedAt,
		); err != nil {
			return nil, MapError(err)
		}
		d.Channel = domain.Channel(channel)
		d.Status = domain.DeliveryStatus(status)
		deliveries = append(deliveries, &d)
	}

	return deliveries, rows.Err()
}

// WithTx implements store.DeliveryStore.WithTx
func (s *PostgresDeliveryStore) WithTx(tx *sql.Tx) store.DeliveryStore {
	return &PostgresDeliveryStore{
		db:     tx,
		logger: s.logger,
	}
}

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

// PostgresReminderStore implements the store.ReminderStore interface
// using a PostgreSQL database as the storage backend.
type PostgresReminderStore struct {
	db     store.DBTX
	logger *slog.Logger
}

// NewPostgresReminderStore creates a new PostgreSQL implementation of the
// ReminderStore interface.
func NewPostgresReminderStore(db store.DBTX, logger *slog.Logger) *PostgresReminderStore {
	if db == nil {
		panic("db cannot be nil")
	}

	if logger == nil {
		logger = slog.Default()
	}

	return &PostgresReminderStore{
		db:     db,
		logger: logger.With(slog.String("component", "reminder_store")),
	}
}

// Ensure PostgresReminderStore implements store.ReminderStore interface
var _ store.ReminderStore = (*PostgresReminderStore)(nil)

const reminderColumns = `id, card_id, user_id, enabled, offset_value, offset_unit, channel, resolved_channel, status, scheduled_at, schedule_token, last_error, sent_at, created_at, updated_at`

// Create implements store.ReminderStore.Create
func (s *PostgresReminderStore) Create(ctx context.Context, reminder *domain.DeadlineReminder) error {
	log := logger.FromContextOrDefault(ctx, s.logger)

	if err := reminder.Validate(); err != nil {
		return err
	}

	query := `
		INSERT INTO deadline_reminders (id, card_id, user_id, enabled, offset_value, offset_unit, channel, resolved_channel, status, scheduled_at, schedule_token, last_error, sent_at, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15)
	`
	if _, err := s.db.ExecContext(
		ctx,
		query,
		reminder.ID,
		reminder.CardID,
		reminder.UserID,
		reminder.Enabled,
		reminder.OffsetValue,
		reminder.OffsetUnit,
		reminder.Channel,
		reminder.ResolvedChannel,
		reminder.Status,
		reminder.ScheduledAt,
		reminder.ScheduleToken,
		reminder.LastError,
		reminder.SentAt,
		reminder.CreatedAt,
		reminder.UpdatedAt,
	); err != nil {
		log.Error("failed to create reminder",
			slog.String("error", err.Error()),
			slog.String("reminder_id", reminder.ID.String()))
		return MapError(err)
	}

	return nil
}

// GetByID implements store.ReminderStore.GetByID
func (s *PostgresReminderStore) GetByID(
	ctx context.Context,
	id uuid.UUID,
) (*domain.DeadlineReminder, error) {
	query := `SELECT ` + reminderColumns + ` FROM deadline_reminders WHERE id = $1`

	reminder, err := scanReminder(s.db.QueryRowContext(ctx, query, id))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, store.ErrReminderNotFound
		}
		return nil, MapError(err)
	}

	return reminder, nil
}

// ListByCard implements store.ReminderStore.ListByCard
func (s *PostgresReminderStore) ListByCard(
	ctx context.Context,
	cardID uuid.UUID,
) ([]*domain.DeadlineReminder, error) {
	query := `
		SELECT ` + reminderColumns + `
		FROM deadline_reminders
		WHERE card_id = $1
		ORDER BY created_at, id
	`
	return s.queryReminders(ctx, query, cardID)
}

// ListScheduled implements store.ReminderStore.ListScheduled
func (s *PostgresReminderStore) ListScheduled(ctx context.Context) ([]*domain.DeadlineReminder, error) {
	query := `
		SELECT ` + reminderColumns + `
		FROM deadline_reminders
		WHERE status = $1
		ORDER BY scheduled_at
	`
	return s.queryReminders(ctx, query, domain.ReminderStatusScheduled)
}

// UpdateSchedule implements store.ReminderStore.UpdateSchedule
func (s *PostgresReminderStore) UpdateSchedule(
	ctx context.Context,
	reminder *domain.DeadlineReminder,
) error {
	query := `
		UPDATE deadline_reminders
		SET enabled = $1, offset_value = $2, offset_unit = $3, channel = $4,
		    resolved_channel = $5, status = $6, scheduled_at = $7,
		    schedule_token = $8, updated_at = $9
		WHERE id = $10
	`
	result, err := s.db.ExecContext(
		ctx,
		query,
		reminder.Enabled,
		reminder.OffsetValue,
		reminder.OffsetUnit,
		reminder.Channel,
		reminder.ResolvedChannel,
		reminder.Status,
		reminder.ScheduledAt,
		reminder.ScheduleToken,
		time.Now().UTC(),
		reminder.ID,
	)
	if err != nil {
		return MapError(err)
	}

	return CheckRowsAffected(result, "reminder")
}

// MarkSent implements store.ReminderStore.MarkSent
func (s *PostgresReminderStore) MarkSent(ctx context.Context, id uuid.UUID, sentAt time.Time) error {
	query := `
		UPDATE deadline_reminders
		SET status = $1, sent_at = $2, last_error = '', updated_at = $3
		WHERE id = $4
	`
	result, err := s.db.ExecContext(
		ctx, query, domain.ReminderStatusSent, sentAt, time.Now().UTC(), id,
	)
	if err != nil {
		return MapError(err)
	}

	return CheckRowsAffected(result, "reminder")
}

// MarkFailed implements store.ReminderStore.MarkFailed
func (s *PostgresReminderStore) MarkFailed(ctx context.Context, id uuid.UUID, errMsg string) error {
	query := `
		UPDATE deadline_reminders
		SET status = $1, last_error = $2, updated_at = $3
		WHERE id = $4
	`
	result, err := s.db.ExecContext(
		ctx, query, domain.ReminderStatusFailed, errMsg, time.Now().UTC(), id,
	)
	if err != nil {
		return MapError(err)
	}

	return CheckRowsAffected(result, "reminder")
}

// MarkSkipped implements store.ReminderStore.MarkSkipped
func (s *PostgresReminderStore) MarkSkipped(ctx context.Context, id uuid.UUID) error {
	query := `
		UPDATE deadline_reminders
		SET status = $1, updated_at = $2
		WHERE id = $3
	`
	result, err := s.db.ExecContext(
		ctx, query, domain.ReminderStatusSkipped, time.Now().UTC(), id,
	)
	if err != nil {
		return MapError(err)
	}

	return CheckRowsAffected(result, "reminder")
}

// Delete implements store.ReminderStore.Delete
func (s *PostgresReminderStore) Delete(ctx context.Context, id uuid.UUID) error {
	result, err := s.db.ExecContext(ctx, `DELETE FROM deadline_reminders WHERE id = $1`, id)
	if err != nil {
		return MapError(err)
	}

	return CheckRowsAffected(result, "reminder")
}

// WithTx implements store.ReminderStore.WithTx
func (s *PostgresReminderStore) WithTx(tx *sql.Tx) store.ReminderStore {
	return &PostgresReminderStore{
		db:     tx,
		logger: s.logger,
	}
}

func (s *PostgresReminderStore) queryReminders(
	ctx context.Context,
	query string,
	args ...any,
) ([]*domain.DeadlineReminder, error) {
	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, MapError(err)
	}
	defer func() { _ = rows.Close() }()

	var reminders []*domain.DeadlineReminder
	for rows.Next() {
		reminder, err := scanReminder(rows)
		if err != nil {
			return nil, MapError(err)
		}
		reminders = append(reminders, reminder)
	}

	return reminders, rows.Err()
}

func scanReminder(row rowScanner) (*domain.DeadlineReminder, error) {
	var r domain.DeadlineReminder
	var offsetUnit, status string
	var channel, resolvedChannel sql.NullString

	err := row.Scan(
		&r.ID,
		&r.CardID,
		&r.UserID,
		&r.Enabled,
		&r.OffsetValue,
		&offsetUnit,
		&channel,
		&resolvedChannel,
		&status,
		&r.ScheduledAt,
		&r.ScheduleToken,
		&r.LastError,
		&r.SentAt,
		&r.CreatedAt,
		&r.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}

	r.OffsetUnit = domain.OffsetUnit(offsetUnit)
	r.Status = domain.ReminderStatus(status)
	if channel.Valid {
		ch := domain.Channel(channel.String)
		r.Channel = &ch
	}
	if resolvedChannel.Valid {
		ch := domain.Channel(resolvedChannel.String)
		r.ResolvedChannel = &ch
	}

	return &r, nil
}

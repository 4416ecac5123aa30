package store

import (
	"context"
	"database/sql"
	"time"

	"github.com/google/uuid"

	"github.com/boardflow/boardflow-api/internal/domain"
)

// EventStore defines the interface for notification event persistence.
type EventStore interface {
	// Create inserts the event unconditionally. Used for events without a
	// dedupe key, where every call produces a fresh row.
	Create(ctx context.Context, event *domain.NotificationEvent) error

	// GetOrCreate inserts the event if no row with its dedupe key exists,
	// or returns the existing row otherwise. The returned bool is true only
	// when this call created the row. A uniqueness collision raised by a
	// concurrent duplicate insert is resolved internally by fetching the
	// winner's row; it never reaches the caller as an error.
	//
	// The event must carry a non-nil dedupe key.
	GetOrCreate(
		ctx context.Context,
		event *domain.NotificationEvent,
	) (*domain.NotificationEvent, bool, error)

	// GetByID retrieves an event by its unique ID.
	// Returns ErrEventNotFound if the event does not exist.
	GetByID(ctx context.Context, id uuid.UUID) (*domain.NotificationEvent, error)

	// ListByBoard retrieves the most recent events of a board, newest first.
	ListByBoard(ctx context.Context, boardID uuid.UUID, limit int) ([]*domain.NotificationEvent, error)

	// WithTx returns a new EventStore instance that uses the provided transaction.
	WithTx(tx *sql.Tx) EventStore
}

// DeliveryStore defines the interface for delivery attempt persistence.
type DeliveryStore interface {
	// Create saves a delivery row. When the row carries a dedupe key and a
	// row with that key already exists, returns ErrDedupeKeyExists and
	// writes nothing; this is the guard against double sends under
	// at-least-once job execution.
	Create(ctx context.Context, delivery *domain.NotificationDelivery) error

	// MarkSent transitions a delivery to sent with the given timestamp.
	MarkSent(ctx context.Context, id uuid.UUID, sentAt time.Time) error

	// MarkFailed transitions a delivery to failed with the given error text.
	MarkFailed(ctx context.Context, id uuid.UUID, errMsg string) error

	// ListByEvent retrieves all delivery attempts for an event.
	ListByEvent(ctx context.Context, eventID uuid.UUID) ([]*domain.NotificationDelivery, error)

	// WithTx returns a new DeliveryStore instance that uses the provided transaction.
	WithTx(tx *sql.Tx) DeliveryStore
}

// PreferenceStore defines the interface for notification preference persistence.
type PreferenceStore interface {
	// Upsert creates or updates the preference row identified by
	// (user, board, channel, event type).
	Upsert(ctx context.Context, pref *domain.NotificationPreference) error

	// GetResolved returns the preference row governing the given
	// (user, board, channel, event type) tuple: the board-scoped row when
	// one exists, otherwise the user's global row. Returns ErrNotFound when
	// neither exists; callers treat that as "enabled by default".
	GetResolved(
		ctx context.Context,
		userID, boardID uuid.UUID,
		channel domain.Channel,
		eventType domain.EventType,
	) (*domain.NotificationPreference, error)

	// ListByUser retrieves all preference rows of a user.
	ListByUser(ctx context.Context, userID uuid.UUID) ([]*domain.NotificationPreference, error)

	// WithTx returns a new PreferenceStore instance that uses the provided transaction.
	WithTx(tx *sql.Tx) PreferenceStore
}

// ReminderStore defines the interface for deadline reminder persistence.
type ReminderStore interface {
	// Create saves a new reminder to the store.
	Create(ctx context.Context, reminder *domain.DeadlineReminder) error

	// GetByID retrieves a reminder by its unique ID.
	// Returns ErrReminderNotFound if the reminder does not exist.
	GetByID(ctx context.Context, id uuid.UUID) (*domain.DeadlineReminder, error)

	// ListByCard retrieves all reminders attached to a card, oldest first.
	ListByCard(ctx context.Context, cardID uuid.UUID) ([]*domain.DeadlineReminder, error)

	// ListScheduled retrieves all reminders currently in the scheduled
	// state. Used at startup to re-enqueue delayed jobs lost to a restart.
	ListScheduled(ctx context.Context) ([]*domain.DeadlineReminder, error)

	// UpdateSchedule persists the outcome of a scheduling pass: status,
	// resolved channel, scheduled_at and schedule_token, all at once.
	UpdateSchedule(ctx context.Context, reminder *domain.DeadlineReminder) error

	// MarkSent transitions a reminder to sent with the given timestamp.
	MarkSent(ctx context.Context, id uuid.UUID, sentAt time.Time) error

	// MarkFailed transitions a reminder to failed with the given error text.
	MarkFailed(ctx context.Context, id uuid.UUID, errMsg string) error

	// MarkSkipped transitions a reminder to skipped.
	MarkSkipped(ctx context.Context, id uuid.UUID) error

	// Delete removes a reminder by its ID.
	// Returns ErrReminderNotFound if the reminder does not exist.
	Delete(ctx context.Context, id uuid.UUID) error

	// WithTx returns a new ReminderStore instance that uses the provided transaction.
	WithTx(tx *sql.Tx) ReminderStore
}

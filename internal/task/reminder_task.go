package task

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"github.com/boardflow/boardflow-api/internal/events"
)

// ErrEmptyReminderID is returned when a reminder delivery task is created
// without a reminder to deliver.
var ErrEmptyReminderID = errors.New("reminder ID cannot be empty")

// ReminderDeliverer defines the reminder service operation the delivery
// task depends on.
type ReminderDeliverer interface {
	// Deliver sends the reminder if its schedule token still matches;
	// stale tokens mean the schedule was superseded and the delivery is
	// dropped silently.
	Deliver(ctx context.Context, reminderID, scheduleToken uuid.UUID) error
}

// ReminderDeliveryTask implements the Task interface for delivering a
// deadline reminder at its scheduled time.
type ReminderDeliveryTask struct {
	id         uuid.UUID
	reminderID uuid.UUID
	token      uuid.UUID
	runAt      time.Time
	deliverer  ReminderDeliverer
	logger     *slog.Logger
	status     TaskStatus
}

// NewReminderDeliveryTask creates a delivery task pinned to one scheduling
// generation of the reminder.
func NewReminderDeliveryTask(
	reminderID, scheduleToken uuid.UUID,
	runAt time.Time,
	deliverer ReminderDeliverer,
	logger *slog.Logger,
) (*ReminderDeliveryTask, error) {
	if deliverer == nil {
		return nil, ErrNilDeliverer
	}
	if logger == nil {
		return nil, ErrNilLogger
	}
	if reminderID == uuid.Nil {
		return nil, ErrEmptyReminderID
	}

	return &ReminderDeliveryTask{
		id:         uuid.New(),
		reminderID: reminderID,
		token:      scheduleToken,
		runAt:      runAt,
		deliverer:  deliverer,
		logger:     logger.With("task_type", TaskTypeReminderDelivery, "reminder_id", reminderID),
		status:     TaskStatusPending,
	}, nil
}

// ID returns the task's unique identifier
func (t *ReminderDeliveryTask) ID() uuid.UUID {
	return t.id
}

// Type returns the task type identifier
func (t *ReminderDeliveryTask) Type() string {
	return TaskTypeReminderDelivery
}

// Payload returns the serialized task data
func (t *ReminderDeliveryTask) Payload() []byte {
	payload, err := json.Marshal(events.ReminderPayload{
		ReminderID:    t.reminderID.String(),
		ScheduleToken: t.token.String(),
	})
	if err != nil {
		t.logger.Error("failed to marshal reminder payload", "error", err)
		return []byte("{}")
	}
	return payload
}

// Status returns the current task status
func (t *ReminderDeliveryTask) Status() TaskStatus {
	return t.status
}

// RunAt returns the scheduled delivery time.
func (t *ReminderDeliveryTask) RunAt() *time.Time {
	return &t.runAt
}

// Execute delivers the reminder.
func (t *ReminderDeliveryTask) Execute(ctx context.Context) error {
	t.status = TaskStatusProcessing

	t.logger.Info("starting reminder delivery")

	if err := t.deliverer.Deliver(ctx, t.reminderID, t.token); err != nil {
		t.status = TaskStatusFailed
		return fmt.Errorf("failed to deliver reminder %s: %w", t.reminderID, err)
	}

	t.status = TaskStatusCompleted
	t.logger.Info("reminder delivery completed")
	return nil
}

var _ Task = (*ReminderDeliveryTask)(nil)

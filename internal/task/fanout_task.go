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

// Common errors
var (
	ErrNilNotifier  = errors.New("notification service cannot be nil")
	ErrNilDeliverer = errors.New("reminder deliverer cannot be nil")
	ErrNilLogger    = errors.New("logger cannot be nil")
	ErrEmptyEventID = errors.New("event ID cannot be empty")
)

// FanOutService defines the notification service operation the fan-out
// task depends on.
type FanOutService interface {
	// FanOut resolves the recipients and channels for a notification event
	// and records one delivery per (recipient, channel) pair.
	FanOut(ctx context.Context, eventID uuid.UUID) error
}

// EventFanOutTask implements the Task interface for fanning a notification
// event out to its recipients.
type EventFanOutTask struct {
	id       uuid.UUID
	eventID  uuid.UUID
	notifier FanOutService
	logger   *slog.Logger
	status   TaskStatus
}

// NewEventFanOutTask creates a new fan-out task for the given notification
// event.
func NewEventFanOutTask(
	eventID uuid.UUID,
	notifier FanOutService,
	logger *slog.Logger,
) (*EventFanOutTask, error) {
	if notifier == nil {
		return nil, ErrNilNotifier
	}
	if logger == nil {
		return nil, ErrNilLogger
	}
	if eventID == uuid.Nil {
		return nil, ErrEmptyEventID
	}

	return &EventFanOutTask{
		id:       uuid.New(),
		eventID:  eventID,
		notifier: notifier,
		logger:   logger.With("task_type", TaskTypeEventFanOut, "event_id", eventID),
		status:   TaskStatusPending,
	}, nil
}

// ID returns the task's unique identifier
func (t *EventFanOutTask) ID() uuid.UUID {
	return t.id
}

// Type returns the task type identifier
func (t *EventFanOutTask) Type() string {
	return TaskTypeEventFanOut
}

// Payload returns the serialized task data
func (t *EventFanOutTask) Payload() []byte {
	payload, err := json.Marshal(events.FanOutPayload{EventID: t.eventID.String()})
	if err != nil {
		// Marshaling a struct of strings cannot fail at runtime.
		t.logger.Error("failed to marshal fan-out payload", "error", err)
		return []byte("{}")
	}
	return payload
}

// Status returns the current task status
func (t *EventFanOutTask) Status() TaskStatus {
	return t.status
}

// RunAt returns nil; fan-out runs as soon as a worker picks it up.
func (t *EventFanOutTask) RunAt() *time.Time {
	return nil
}

// Execute fans the event out to its recipients.
func (t *EventFanOutTask) Execute(ctx context.Context) error {
	t.status = TaskStatusProcessing

	t.logger.Info("starting event fan-out")

	if err := t.notifier.FanOut(ctx, t.eventID); err != nil {
		t.status = TaskStatusFailed
		return fmt.Errorf("failed to fan out event %s: %w", t.eventID, err)
	}

	t.status = TaskStatusCompleted
	t.logger.Info("event fan-out completed")
	return nil
}

var _ Task = (*EventFanOutTask)(nil)

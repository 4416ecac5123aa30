package events

import (
	"context"
	"encoding/json"
	"time"

	"github.com/google/uuid"
)

// Task type identifiers carried on TaskRequestEvent.Type. They are defined
// here rather than in the task package so that services can emit events
// without importing task machinery.
const (
	TypeEventFanOut      = "event_fanout"
	TypeReminderDelivery = "reminder_delivery"
)

// TaskRequestEvent represents a request to create a background task.
// It contains the necessary information for task creation without
// direct dependencies on the task package.
type TaskRequestEvent struct {
	// ID is a unique identifier for this event
	ID uuid.UUID `json:"id"`

	// Type indicates the task type that should be created
	Type string `json:"type"`

	// Payload contains the task-specific data serialized as JSON
	Payload json.RawMessage `json:"payload"`

	// RunAt, when set, asks the runner to hold the task until the given
	// time instead of executing it immediately.
	RunAt *time.Time `json:"run_at,omitempty"`

	// CreatedAt is the timestamp when the event was created
	CreatedAt time.Time `json:"created_at"`
}

// UnmarshalPayload decodes the event payload into the provided structure.
func (e *TaskRequestEvent) UnmarshalPayload(v interface{}) error {
	return json.Unmarshal(e.Payload, v)
}

// FanOutPayload is the payload schema for TypeEventFanOut events.
type FanOutPayload struct {
	EventID string `json:"event_id"`
}

// ReminderPayload is the payload schema for TypeReminderDelivery events.
type ReminderPayload struct {
	ReminderID    string `json:"reminder_id"`
	ScheduleToken string `json:"schedule_token"`
}

// NewFanOutRequested creates a TaskRequestEvent asking for the given
// notification event to be fanned out to its recipients.
func NewFanOutRequested(notificationEventID uuid.UUID) (*TaskRequestEvent, error) {
	return newTaskRequestEvent(TypeEventFanOut, FanOutPayload{
		EventID: notificationEventID.String(),
	}, nil)
}

// NewReminderScheduled creates a TaskRequestEvent asking for the given
// reminder to be delivered at runAt. The schedule token pins the request
// to one scheduling generation so superseded requests are dropped at
// delivery time.
func NewReminderScheduled(
	reminderID, scheduleToken uuid.UUID,
	runAt time.Time,
) (*TaskRequestEvent, error) {
	return newTaskRequestEvent(TypeReminderDelivery, ReminderPayload{
		ReminderID:    reminderID.String(),
		ScheduleToken: scheduleToken.String(),
	}, &runAt)
}

func newTaskRequestEvent(
	eventType string,
	payload interface{},
	runAt *time.Time,
) (*TaskRequestEvent, error) {
	payloadBytes, err := json.Marshal(payload)
	if err != nil {
		return nil, err
	}

	return &TaskRequestEvent{
		ID:        uuid.New(),
		Type:      eventType,
		Payload:   payloadBytes,
		RunAt:     runAt,
		CreatedAt: time.Now().UTC(),
	}, nil
}

// EventHandler defines an interface for components that can handle events.
// Handlers are responsible for processing events and taking appropriate actions.
type EventHandler interface {
	// HandleEvent processes the given event within the provided context.
	// Returns an error if the event cannot be handled successfully.
	HandleEvent(ctx context.Context, event *TaskRequestEvent) error
}

// EventEmitter defines an interface for components that can emit events.
// This allows services to publish events without direct knowledge of handlers.
type EventEmitter interface {
	// EmitEvent publishes the given event to all registered handlers.
	// Returns an error if the event cannot be emitted.
	EmitEvent(ctx context.Context, event *TaskRequestEvent) error
}

package task

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"github.com/boardflow/boardflow-api/internal/events"
)

// TaskSubmitter is the slice of the runner the event handler needs.
type TaskSubmitter interface {
	Submit(ctx context.Context, task Task) error
}

// TaskFactoryEventHandler implements the events.EventHandler interface.
// It turns task request events emitted by services after commit into
// persisted, scheduled tasks.
type TaskFactoryEventHandler struct {
	factory *TaskFactory
	runner  TaskSubmitter
	logger  *slog.Logger
}

// NewTaskFactoryEventHandler creates a new event handler that uses the given
// task factory to create tasks and submits them to the provided runner.
func NewTaskFactoryEventHandler(
	factory *TaskFactory,
	runner TaskSubmitter,
	logger *slog.Logger,
) *TaskFactoryEventHandler {
	return &TaskFactoryEventHandler{
		factory: factory,
		runner:  runner,
		logger:  logger.With(slog.String("component", "task_factory_event_handler")),
	}
}

// HandleEvent processes events by creating and submitting tasks.
func (h *TaskFactoryEventHandler) HandleEvent(
	ctx context.Context,
	event *events.TaskRequestEvent,
) error {
	var (
		t   Task
		err error
	)

	switch event.Type {
	case events.TypeEventFanOut:
		t, err = h.fanOutTask(event)
	case events.TypeReminderDelivery:
		t, err = h.reminderTask(event)
	default:
		h.logger.Debug("ignoring event with unsupported type",
			"event_type", event.Type,
			"event_id", event.ID)
		return nil
	}

	if err != nil {
		h.logger.Error("failed to create task from event",
			"error", err,
			"event_type", event.Type,
			"event_id", event.ID)
		return fmt.Errorf("failed to create task: %w", err)
	}

	if err := h.runner.Submit(ctx, t); err != nil {
		h.logger.Error("failed to submit task",
			"error", err,
			"task_id", t.ID(),
			"event_id", event.ID)
		return fmt.Errorf("failed to submit task: %w", err)
	}

	h.logger.Info("task created and submitted successfully",
		"task_id", t.ID(),
		"task_type", t.Type(),
		"event_id", event.ID)
	return nil
}

func (h *TaskFactoryEventHandler) fanOutTask(event *events.TaskRequestEvent) (Task, error) {
	var payload events.FanOutPayload
	if err := event.UnmarshalPayload(&payload); err != nil {
		return nil, fmt.Errorf("failed to unmarshal payload: %w", err)
	}

	eventID, err := uuid.Parse(payload.EventID)
	if err != nil {
		return nil, fmt.Errorf("invalid event ID: %w", err)
	}

	return h.factory.NewEventFanOutTask(eventID)
}

func (h *TaskFactoryEventHandler) reminderTask(event *events.TaskRequestEvent) (Task, error) {
	var payload events.ReminderPayload
	if err := event.UnmarshalPayload(&payload); err != nil {
		return nil, fmt.Errorf("failed to unmarshal payload: %w", err)
	}

	reminderID, err := uuid.Parse(payload.ReminderID)
	if err != nil {
		return nil, fmt.Errorf("invalid reminder ID: %w", err)
	}

	token, err := uuid.Parse(payload.ScheduleToken)
	if err != nil {
		return nil, fmt.Errorf("invalid schedule token: %w", err)
	}

	runAt := time.Now().UTC()
	if event.RunAt != nil {
		runAt = *event.RunAt
	}

	return h.factory.NewReminderDeliveryTask(reminderID, token, runAt)
}

// Ensure TaskFactoryEventHandler implements events.EventHandler
var _ events.EventHandler = (*TaskFactoryEventHandler)(nil)

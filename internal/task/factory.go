package task

import (
	"encoding/json"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"github.com/boardflow/boardflow-api/internal/events"
)

// TaskFactory builds executable tasks from their inputs. It also serves as
// the Reifier the runner uses to rebuild tasks recovered from the database.
type TaskFactory struct {
	notifier  FanOutService
	deliverer ReminderDeliverer
	logger    *slog.Logger
}

// NewTaskFactory creates a task factory wired to the given services.
func NewTaskFactory(
	notifier FanOutService,
	deliverer ReminderDeliverer,
	logger *slog.Logger,
) (*TaskFactory, error) {
	if notifier == nil {
		return nil, ErrNilNotifier
	}
	if deliverer == nil {
		return nil, ErrNilDeliverer
	}
	if logger == nil {
		return nil, ErrNilLogger
	}

	return &TaskFactory{
		notifier:  notifier,
		deliverer: deliverer,
		logger:    logger.With(slog.String("component", "task_factory")),
	}, nil
}

// NewEventFanOutTask creates a fan-out task for the given notification event.
func (f *TaskFactory) NewEventFanOutTask(eventID uuid.UUID) (Task, error) {
	return NewEventFanOutTask(eventID, f.notifier, f.logger)
}

// NewReminderDeliveryTask creates a delivery task for the given reminder
// scheduling generation.
func (f *TaskFactory) NewReminderDeliveryTask(
	reminderID, scheduleToken uuid.UUID,
	runAt time.Time,
) (Task, error) {
	return NewReminderDeliveryTask(reminderID, scheduleToken, runAt, f.deliverer, f.logger)
}

// Reify implements the Reifier interface. It rebuilds an executable task
// from a stored row by parsing the payload for the stored type.
func (f *TaskFactory) Reify(stored Task) (Task, error) {
	switch stored.Type() {
	case TaskTypeEventFanOut:
		var payload events.FanOutPayload
		if err := json.Unmarshal(stored.Payload(), &payload); err != nil {
			return nil, fmt.Errorf("malformed fan-out payload: %w", err)
		}

		eventID, err := uuid.Parse(payload.EventID)
		if err != nil {
			return nil, fmt.Errorf("invalid event ID in payload: %w", err)
		}

		t, err := NewEventFanOutTask(eventID, f.notifier, f.logger)
		if err != nil {
			return nil, err
		}
		t.id = stored.ID()
		return t, nil

	case TaskTypeReminderDelivery:
		var payload events.ReminderPayload
		if err := json.Unmarshal(stored.Payload(), &payload); err != nil {
			return nil, fmt.Errorf("malformed reminder payload: %w", err)
		}

		reminderID, err := uuid.Parse(payload.ReminderID)
		if err != nil {
			return nil, fmt.Errorf("invalid reminder ID in payload: %w", err)
		}

		token, err := uuid.Parse(payload.ScheduleToken)
		if err != nil {
			return nil, fmt.Errorf("invalid schedule token in payload: %w", err)
		}

		// Past-due recovered reminders run immediately.
		runAt := time.Now().UTC()
		if at := stored.RunAt(); at != nil {
			runAt = *at
		}

		t, err := NewReminderDeliveryTask(reminderID, token, runAt, f.deliverer, f.logger)
		if err != nil {
			return nil, err
		}
		t.id = stored.ID()
		return t, nil

	default:
		return nil, fmt.Errorf("unknown task type %q", stored.Type())
	}
}

var _ Reifier = (*TaskFactory)(nil)

package task

import (
	"context"
	"database/sql"
	"time"

	"github.com/google/uuid"

	"github.com/boardflow/boardflow-api/internal/events"
)

// TaskStatus represents the current state of a task
type TaskStatus string

// Possible task status values
const (
	TaskStatusPending    TaskStatus = "pending"
	TaskStatusProcessing TaskStatus = "processing"
	TaskStatusCompleted  TaskStatus = "completed"
	TaskStatusFailed     TaskStatus = "failed"
)

// Task type constants. The values mirror the event type identifiers so a
// TaskRequestEvent maps one-to-one onto a persisted task row.
const (
	// TaskTypeEventFanOut fans a notification event out to its recipients.
	TaskTypeEventFanOut = events.TypeEventFanOut

	// TaskTypeReminderDelivery delivers a scheduled deadline reminder.
	TaskTypeReminderDelivery = events.TypeReminderDelivery
)

// Task represents a unit of background work to be processed
type Task interface {
	// ID returns the task's unique identifier
	ID() uuid.UUID

	// Type returns the task type identifier
	Type() string

	// Payload returns the task data as a byte slice
	Payload() []byte

	// Status returns the current task status
	Status() TaskStatus

	// RunAt returns the earliest time the task may execute, or nil for
	// tasks that should run as soon as a worker is free.
	RunAt() *time.Time

	// Execute runs the task logic
	Execute(ctx context.Context) error
}

// TaskStore defines the interface for persisting tasks
type TaskStore interface {
	// SaveTask persists a task to the database
	SaveTask(ctx context.Context, task Task) error

	// UpdateTaskStatus updates the status of a task
	UpdateTaskStatus(ctx context.Context, taskID uuid.UUID, status TaskStatus, errorMsg string) error

	// GetPendingTasks retrieves all tasks with "pending" status
	GetPendingTasks(ctx context.Context) ([]Task, error)

	// GetProcessingTasks retrieves tasks with "processing" status.
	// If olderThan is non-zero, only returns tasks that have been in this
	// state longer than the specified duration.
	GetProcessingTasks(ctx context.Context, olderThan time.Duration) ([]Task, error)

	// WithTx returns a new TaskStore instance that uses the provided transaction.
	WithTx(tx *sql.Tx) TaskStore
}

// Reifier rebuilds an executable task from its persisted form. Tasks loaded
// from the database carry only type and payload; the reifier reattaches the
// services needed to execute them.
type Reifier interface {
	// Reify returns an executable task equivalent to the stored one.
	// Returns an error for unknown task types or malformed payloads.
	Reify(stored Task) (Task, error)
}

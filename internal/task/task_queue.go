package task

import (
	"errors"
	"fmt"
	"log/slog"
	"sync"
)

// Errors returned by TaskQueue.Enqueue.
var (
	ErrQueueClosed = errors.New("task queue is closed")
	ErrQueueFull   = errors.New("task queue is full")
)

// TaskQueue is the buffered hand-off between the runner's scheduler side
// (Submit, timers, recovery) and its worker pool. Enqueue never blocks; a
// full buffer is reported to the caller instead of applying backpressure,
// since submitted tasks are already persisted and will be recovered.
type TaskQueue struct {
	tasks  chan Task
	logger *slog.Logger

	mu     sync.Mutex
	closed bool
}

// NewTaskQueue creates a queue buffering up to size tasks.
func NewTaskQueue(size int, logger *slog.Logger) *TaskQueue {
	return &TaskQueue{
		tasks:  make(chan Task, size),
		logger: logger,
	}
}

// Enqueue hands a task to the workers. Returns ErrQueueClosed after Close
// and ErrQueueFull when the buffer has no room.
func (q *TaskQueue) Enqueue(task Task) error {
	q.mu.Lock()
	defer q.mu.Unlock()

	if q.closed {
		return ErrQueueClosed
	}

	select {
	case q.tasks <- task:
		q.logger.Debug("task enqueued",
			"task_id", task.ID(),
			"task_type", task.Type(),
			"queue_len", len(q.tasks))
		return nil
	default:
		return fmt.Errorf("%w: capacity %d reached", ErrQueueFull, cap(q.tasks))
	}
}

// Close rejects further submissions and lets the workers drain what is
// already buffered. Safe to call more than once.
func (q *TaskQueue) Close() {
	q.mu.Lock()
	defer q.mu.Unlock()

	if q.closed {
		return
	}
	q.closed = true
	close(q.tasks)
	q.logger.Info("task queue closed")
}

// GetChannel returns the read side of the queue for worker consumption.
func (q *TaskQueue) GetChannel() <-chan Task {
	return q.tasks
}

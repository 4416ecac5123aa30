package task

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/google/uuid"
)

// TaskRunnerConfig holds configuration for the task runner
type TaskRunnerConfig struct {
	// WorkerCount determines how many concurrent workers process tasks
	WorkerCount int

	// QueueSize determines the buffer size for the in-memory task queue
	QueueSize int

	// StuckTaskAge defines how long a task can be in processing state
	// before it's considered stuck and reset
	StuckTaskAge time.Duration

	// StuckTaskCheckInterval defines how often to check for stuck tasks
	// If zero, defaults to 5 minutes
	StuckTaskCheckInterval time.Duration
}

// DefaultTaskRunnerConfig returns a TaskRunnerConfig with reasonable defaults
func DefaultTaskRunnerConfig() TaskRunnerConfig {
	return TaskRunnerConfig{
		WorkerCount:            2,
		QueueSize:              100,
		StuckTaskAge:           30 * time.Minute,
		StuckTaskCheckInterval: 5 * time.Minute,
	}
}

// TaskRunner manages background task processing. Tasks with a RunAt in the
// future are held on an in-process timer and released into the worker queue
// when due; everything else runs as soon as a worker is free.
type TaskRunner struct {
	store      TaskStore
	reifier    Reifier
	queue      *TaskQueue
	ctx        context.Context
	cancelFunc context.CancelFunc
	wg         sync.WaitGroup
	config     TaskRunnerConfig
	logger     *slog.Logger
	errHandler func(task Task, err error)

	timerMu sync.Mutex
	timers  map[uuid.UUID]*time.Timer
	closed  bool
}

// NewTaskRunner creates a new TaskRunner. The reifier is used during
// recovery to turn persisted task rows back into executable tasks; it may
// be set later via SetReifier but must be set before Start.
func NewTaskRunner(store TaskStore, config TaskRunnerConfig, logger *slog.Logger) *TaskRunner {
	if config.StuckTaskCheckInterval == 0 {
		config.StuckTaskCheckInterval = 5 * time.Minute
	}

	ctx, cancel := context.WithCancel(context.Background())

	return &TaskRunner{
		store:      store,
		queue:      NewTaskQueue(config.QueueSize, logger),
		ctx:        ctx,
		cancelFunc: cancel,
		wg:         sync.WaitGroup{},
		config:     config,
		logger:     logger,
		timers:     make(map[uuid.UUID]*time.Timer),
		errHandler: func(task Task, err error) {
			logger.Error("task execution failed",
				"task_id", task.ID(),
				"task_type", task.Type(),
				"error", err)
		},
	}
}

// SetErrorHandler allows setting a custom error handler function
func (r *TaskRunner) SetErrorHandler(handler func(task Task, err error)) {
	r.errHandler = handler
}

// SetReifier sets the reifier used to rebuild recovered tasks.
// It exists because the reifier depends on services that are themselves
// constructed after the runner during startup wiring.
func (r *TaskRunner) SetReifier(reifier Reifier) {
	r.reifier = reifier
}

// Submit persists a task and hands it to the scheduler. Tasks whose RunAt
// is in the future are deferred; others are queued immediately.
func (r *TaskRunner) Submit(ctx context.Context, task Task) error {
	if err := r.store.SaveTask(ctx, task); err != nil {
		return fmt.Errorf("failed to save task: %w", err)
	}

	return r.dispatch(task)
}

// dispatch routes a task either onto a timer or straight into the queue.
func (r *TaskRunner) dispatch(task Task) error {
	runAt := task.RunAt()
	if runAt != nil {
		if delay := time.Until(*runAt); delay > 0 {
			r.scheduleAfter(task, delay)
			return nil
		}
	}

	return r.queue.Enqueue(task)
}

// scheduleAfter arms a timer that releases the task into the queue when it
// fires. Timers are tracked per task ID so Stop can disarm them.
func (r *TaskRunner) scheduleAfter(task Task, delay time.Duration) {
	r.timerMu.Lock()
	defer r.timerMu.Unlock()

	if r.closed {
		return
	}

	if existing, ok := r.timers[task.ID()]; ok {
		existing.Stop()
	}

	r.logger.Debug("deferring task",
		"task_id", task.ID(),
		"task_type", task.Type(),
		"delay", delay.String())

	r.timers[task.ID()] = time.AfterFunc(delay, func() {
		r.timerMu.Lock()
		delete(r.timers, task.ID())
		stopped := r.closed
		r.timerMu.Unlock()

		if stopped {
			return
		}

		if err := r.queue.Enqueue(task); err != nil {
			r.logger.Error("failed to enqueue deferred task",
				"task_id", task.ID(),
				"task_type", task.Type(),
				"error", err)
		}
	})
}

// Start initializes the worker pool and begins processing tasks
func (r *TaskRunner) Start() error {
	// Recover unfinished tasks from previous runs
	if err := r.Recover(); err != nil {
		return fmt.Errorf("failed to recover tasks: %w", err)
	}

	for i := 0; i < r.config.WorkerCount; i++ {
		r.wg.Add(1)
		go r.worker(i)
	}

	r.wg.Add(1)
	go r.stuckTaskMonitor()

	return nil
}

// Stop gracefully shuts down the task runner
func (r *TaskRunner) Stop() {
	r.timerMu.Lock()
	r.closed = true
	for id, timer := range r.timers {
		timer.Stop()
		delete(r.timers, id)
	}
	r.timerMu.Unlock()

	r.cancelFunc()
	r.wg.Wait()
	r.queue.Close()
}

// Recover loads unfinished tasks from the database and reschedules them.
// Pending tasks are reified and dispatched; tasks stranded in processing
// state by a crash are reset to pending first.
func (r *TaskRunner) Recover() error {
	ctx := context.Background()

	pendingTasks, err := r.store.GetPendingTasks(ctx)
	if err != nil {
		return fmt.Errorf("failed to get pending tasks: %w", err)
	}

	processingTasks, err := r.store.GetProcessingTasks(ctx, 0)
	if err != nil {
		return fmt.Errorf("failed to get processing tasks: %w", err)
	}

	r.logger.Info("recovering unfinished tasks",
		"pending_count", len(pendingTasks),
		"processing_count", len(processingTasks))

	for _, stored := range pendingTasks {
		r.recoverTask(ctx, stored)
	}

	for _, stored := range processingTasks {
		if err := r.store.UpdateTaskStatus(ctx, stored.ID(), TaskStatusPending, "Reset after recovery"); err != nil {
			r.logger.Error("failed to reset processing task status",
				"task_id", stored.ID(),
				"task_type", stored.Type(),
				"error", err)
			continue
		}

		r.recoverTask(ctx, stored)
	}

	return nil
}

// recoverTask reifies a stored task and dispatches it. Tasks that cannot
// be reified are marked failed rather than requeued as inert rows.
func (r *TaskRunner) recoverTask(ctx context.Context, stored Task) {
	if r.reifier == nil {
		r.logger.Error("no reifier configured, cannot recover task",
			"task_id", stored.ID(),
			"task_type", stored.Type())
		return
	}

	executable, err := r.reifier.Reify(stored)
	if err != nil {
		r.logger.Error("failed to reify recovered task",
			"task_id", stored.ID(),
			"task_type", stored.Type(),
			"error", err)
		if updateErr := r.store.UpdateTaskStatus(ctx, stored.ID(), TaskStatusFailed, err.Error()); updateErr != nil {
			r.logger.Error("failed to mark unrecoverable task as failed",
				"task_id", stored.ID(),
				"error", updateErr)
		}
		return
	}

	if err := r.dispatch(executable); err != nil {
		r.logger.Error("failed to requeue recovered task",
			"task_id", stored.ID(),
			"task_type", stored.Type(),
			"error", err)
	}
}

// worker processes tasks from the queue
func (r *TaskRunner) worker(id int) {
	defer r.wg.Done()

	r.logger.Debug("starting worker", "worker_id", id)

	for {
		select {
		case <-r.ctx.Done():
			r.logger.Debug("stopping worker", "worker_id", id)
			return

		case task, ok := <-r.queue.GetChannel():
			if !ok {
				r.logger.Debug("task channel closed, stopping worker", "worker_id", id)
				return
			}

			r.processTask(task, id)
		}
	}
}

// processTask handles execution of a single task
func (r *TaskRunner) processTask(task Task, workerID int) {
	ctx := context.Background()
	logger := r.logger.With(
		"task_id", task.ID(),
		"task_type", task.Type(),
		"worker_id", workerID,
	)

	if err := r.store.UpdateTaskStatus(ctx, task.ID(), TaskStatusProcessing, ""); err != nil {
		logger.Error("failed to update task status to processing", "error", err)
		return
	}

	logger.Info("processing task")

	err := task.Execute(ctx)

	if err != nil {
		logger.Error("task execution failed", "error", err)
		if updateErr := r.store.UpdateTaskStatus(ctx, task.ID(), TaskStatusFailed, err.Error()); updateErr != nil {
			logger.Error("failed to update task status to failed", "error", updateErr)
		}

		r.errHandler(task, err)
	} else {
		logger.Info("task completed successfully")
		if updateErr := r.store.UpdateTaskStatus(ctx, task.ID(), TaskStatusCompleted, ""); updateErr != nil {
			logger.Error("failed to update task status to completed", "error", updateErr)
		}
	}
}

// stuckTaskMonitor periodically checks for tasks that have been in
// "processing" state for too long and resets them
func (r *TaskRunner) stuckTaskMonitor() {
	defer r.wg.Done()

	ticker := time.NewTicker(r.config.StuckTaskCheckInterval)
	defer ticker.Stop()

	for {
		select {
		case <-r.ctx.Done():
			return

		case <-ticker.C:
			ctx := context.Background()

			stuckTasks, err := r.store.GetProcessingTasks(ctx, r.config.StuckTaskAge)
			if err != nil {
				r.logger.Error("failed to check for stuck tasks", "error", err)
				continue
			}

			if len(stuckTasks) == 0 {
				continue
			}

			r.logger.Info("found stuck tasks", "count", len(stuckTasks))

			for _, stored := range stuckTasks {
				if err := r.store.UpdateTaskStatus(ctx, stored.ID(), TaskStatusPending,
					"Reset after being stuck in processing state"); err != nil {
					r.logger.Error("failed to reset stuck task status",
						"task_id", stored.ID(),
						"task_type", stored.Type(),
						"error", err)
					continue
				}

				r.recoverTask(ctx, stored)
			}
		}
	}
}

package task

import (
	"context"
	"database/sql"
	"io"
	"log/slog"
	"sync"
	"time"

	"github.com/google/uuid"
)

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

// testTask is a configurable Task for exercising the queue and runner.
type testTask struct {
	id      uuid.UUID
	typ     string
	payload []byte
	runAt   *time.Time
	execute func(ctx context.Context) error
}

func newTestTask() *testTask {
	return &testTask{
		id:  uuid.New(),
		typ: "test_task",
	}
}

func (t *testTask) ID() uuid.UUID      { return t.id }
func (t *testTask) Type() string       { return t.typ }
func (t *testTask) Payload() []byte    { return t.payload }
func (t *testTask) Status() TaskStatus { return TaskStatusPending }
func (t *testTask) RunAt() *time.Time  { return t.runAt }

func (t *testTask) Execute(ctx context.Context) error {
	if t.execute != nil {
		return t.execute(ctx)
	}
	return nil
}

// fakeTaskStore is an in-memory TaskStore tracking saved tasks and status
// transitions.
type fakeTaskStore struct {
	mu       sync.Mutex
	saved    []Task
	statuses map[uuid.UUID]TaskStatus
	pending  []Task
}

func newFakeTaskStore() *fakeTaskStore {
	return &fakeTaskStore{statuses: make(map[uuid.UUID]TaskStatus)}
}

func (f *fakeTaskStore) SaveTask(ctx context.Context, task Task) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.saved = append(f.saved, task)
	f.statuses[task.ID()] = TaskStatusPending
	return nil
}

func (f *fakeTaskStore) UpdateTaskStatus(
	ctx context.Context,
	taskID uuid.UUID,
	status TaskStatus,
	errorMsg string,
) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.statuses[taskID] = status
	return nil
}

func (f *fakeTaskStore) GetPendingTasks(ctx context.Context) ([]Task, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.pending, nil
}

func (f *fakeTaskStore) GetProcessingTasks(ctx context.Context, olderThan time.Duration) ([]Task, error) {
	return nil, nil
}

func (f *fakeTaskStore) WithTx(tx *sql.Tx) TaskStore { return f }

func (f *fakeTaskStore) statusOf(id uuid.UUID) TaskStatus {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.statuses[id]
}

// fakeFanOutService records fan-out calls.
type fakeFanOutService struct {
	mu     sync.Mutex
	calls  []uuid.UUID
	result error
}

func (f *fakeFanOutService) FanOut(ctx context.Context, eventID uuid.UUID) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls = append(f.calls, eventID)
	return f.result
}

// fakeDeliverer records reminder deliveries.
type fakeDeliverer struct {
	mu     sync.Mutex
	calls  [][2]uuid.UUID
	result error
}

func (f *fakeDeliverer) Deliver(ctx context.Context, reminderID, scheduleToken uuid.UUID) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls = append(f.calls, [2]uuid.UUID{reminderID, scheduleToken})
	return f.result
}

// fakeSubmitter records tasks handed to it instead of running them.
type fakeSubmitter struct {
	mu        sync.Mutex
	submitted []Task
	result    error
}

func (f *fakeSubmitter) Submit(ctx context.Context, task Task) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.result != nil {
		return f.result
	}
	f.submitted = append(f.submitted, task)
	return nil
}

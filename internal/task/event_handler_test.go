package task

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/boardflow/boardflow-api/internal/events"
)

func newTestHandler(t *testing.T) (*TaskFactoryEventHandler, *fakeSubmitter) {
	t.Helper()

	factory, err := NewTaskFactory(&fakeFanOutService{}, &fakeDeliverer{}, testLogger())
	require.NoError(t, err)

	submitter := &fakeSubmitter{}
	return NewTaskFactoryEventHandler(factory, submitter, testLogger()), submitter
}

func TestTaskFactoryEventHandler_HandleEvent(t *testing.T) {
	t.Parallel()

	t.Run("fan-out request becomes a fan-out task", func(t *testing.T) {
		t.Parallel()
		handler, submitter := newTestHandler(t)

		event, err := events.NewFanOutRequested(uuid.New())
		require.NoError(t, err)

		require.NoError(t, handler.HandleEvent(context.Background(), event))
		require.Len(t, submitter.submitted, 1)
		assert.Equal(t, TaskTypeEventFanOut, submitter.submitted[0].Type())
		assert.Nil(t, submitter.submitted[0].RunAt())
	})

	t.Run("reminder request carries its run time", func(t *testing.T) {
		t.Parallel()
		handler, submitter := newTestHandler(t)

		runAt := time.Now().UTC().Add(time.Hour)
		event, err := events.NewReminderScheduled(uuid.New(), uuid.New(), runAt)
		require.NoError(t, err)

		require.NoError(t, handler.HandleEvent(context.Background(), event))
		require.Len(t, submitter.submitted, 1)
		assert.Equal(t, TaskTypeReminderDelivery, submitter.submitted[0].Type())
		require.NotNil(t, submitter.submitted[0].RunAt())
		assert.True(t, submitter.submitted[0].RunAt().Equal(runAt))
	})

	t.Run("unsupported event types are ignored", func(t *testing.T) {
		t.Parallel()
		handler, submitter := newTestHandler(t)

		event := &events.TaskRequestEvent{
			ID:        uuid.New(),
			Type:      "something_else",
			Payload:   []byte("{}"),
			CreatedAt: time.Now().UTC(),
		}

		require.NoError(t, handler.HandleEvent(context.Background(), event))
		assert.Empty(t, submitter.submitted)
	})

	t.Run("malformed payload is an error", func(t *testing.T) {
		t.Parallel()
		handler, submitter := newTestHandler(t)

		event := &events.TaskRequestEvent{
			ID:        uuid.New(),
			Type:      events.TypeEventFanOut,
			Payload:   []byte("{broken"),
			CreatedAt: time.Now().UTC(),
		}

		assert.Error(t, handler.HandleEvent(context.Background(), event))
		assert.Empty(t, submitter.submitted)
	})

	t.Run("submission failure propagates", func(t *testing.T) {
		t.Parallel()
		handler, submitter := newTestHandler(t)
		submitter.result = assert.AnError

		event, err := events.NewFanOutRequested(uuid.New())
		require.NoError(t, err)

		assert.Error(t, handler.HandleEvent(context.Background(), event))
	})
}

package service_test

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/boardflow/boardflow-api/internal/domain"
	"github.com/boardflow/boardflow-api/internal/events"
	"github.com/boardflow/boardflow-api/internal/mocks"
	"github.com/boardflow/boardflow-api/internal/notify"
	"github.com/boardflow/boardflow-api/internal/service"
)

// notificationFixture wires a NotificationService against in-memory fakes:
// one board whose owner is the actor, plus two additional members.
type notificationFixture struct {
	svc        service.NotificationService
	eventStore *fakeEventStore
	deliveries *fakeDeliveryStore
	prefs      *fakePreferenceStore
	boardStore *fakeBoardStore
	emitter    *captureEmitter
	email      *fakeSender
	telegram   *fakeSender

	board  *domain.Board
	actor  *domain.User
	alice  *domain.User
	bob    *domain.User
}

func newNotificationFixture(t *testing.T) *notificationFixture {
	t.Helper()

	f := &notificationFixture{
		eventStore: newFakeEventStore(),
		deliveries: newFakeDeliveryStore(),
		prefs:      &fakePreferenceStore{},
		boardStore: newFakeBoardStore(),
		emitter:    &captureEmitter{},
		email:      &fakeSender{channel: domain.ChannelEmail},
		telegram:   &fakeSender{channel: domain.ChannelTelegram},
	}

	userStore := mocks.NewMockUserStore()

	var err error
	f.actor, err = domain.NewUser("actor@example.com", "Actor", "hash")
	require.NoError(t, err)
	f.alice, err = domain.NewUser("alice@example.com", "Alice", "hash")
	require.NoError(t, err)
	f.alice.TelegramChatID = "1001"
	f.bob, err = domain.NewUser("bob@example.com", "Bob", "hash")
	require.NoError(t, err)

	for _, u := range []*domain.User{f.actor, f.alice, f.bob} {
		require.NoError(t, userStore.Create(context.Background(), u))
	}

	f.board, err = domain.NewBoard(f.actor.ID, "Launch")
	require.NoError(t, err)
	require.NoError(t, f.boardStore.Create(context.Background(), f.board))
	for _, u := range []*domain.User{f.alice, f.bob} {
		member, err := domain.NewBoardMember(f.board.ID, u.ID)
		require.NoError(t, err)
		require.NoError(t, f.boardStore.AddMember(context.Background(), member))
	}

	senders := map[domain.Channel]notify.Sender{
		domain.ChannelEmail:    f.email,
		domain.ChannelTelegram: f.telegram,
	}

	f.svc, err = service.NewNotificationService(
		f.eventStore, f.deliveries, f.prefs, f.boardStore, userStore,
		senders, f.emitter, time.Second, testLogger(),
	)
	require.NoError(t, err)

	return f
}

func (f *notificationFixture) activity(dedupeKey string) service.ActivityParams {
	return service.ActivityParams{
		Type:      domain.EventTypeCardCreated,
		ActorID:   f.actor.ID,
		BoardID:   f.board.ID,
		Subject:   "Fix login",
		DedupeKey: dedupeKey,
	}
}

func TestNotificationService_CreateEvent(t *testing.T) {
	t.Parallel()

	t.Run("creates event and requests fan-out", func(t *testing.T) {
		t.Parallel()
		f := newNotificationFixture(t)

		event, created, err := f.svc.CreateEvent(context.Background(), f.activity(""))
		require.NoError(t, err)

		assert.True(t, created)
		assert.Equal(t, `Actor created card "Fix login"`, event.Summary)
		assert.Len(t, f.emitter.byType(events.TypeEventFanOut), 1)
	})

	t.Run("dedupe key makes creation idempotent", func(t *testing.T) {
		t.Parallel()
		f := newNotificationFixture(t)

		first, created, err := f.svc.CreateEvent(context.Background(), f.activity("move:abc:1"))
		require.NoError(t, err)
		require.True(t, created)

		second, created, err := f.svc.CreateEvent(context.Background(), f.activity("move:abc:1"))
		require.NoError(t, err)

		assert.False(t, created)
		assert.Equal(t, first.ID, second.ID)

		// Only the creating call requests fan-out; the replay requests nothing.
		assert.Len(t, f.emitter.byType(events.TypeEventFanOut), 1)
	})

	t.Run("distinct dedupe keys create distinct events", func(t *testing.T) {
		t.Parallel()
		f := newNotificationFixture(t)

		first, _, err := f.svc.CreateEvent(context.Background(), f.activity("move:abc:1"))
		require.NoError(t, err)
		second, _, err := f.svc.CreateEvent(context.Background(), f.activity("move:abc:2"))
		require.NoError(t, err)

		assert.NotEqual(t, first.ID, second.ID)
		assert.Len(t, f.emitter.byType(events.TypeEventFanOut), 2)
	})

	t.Run("rejects unknown event type", func(t *testing.T) {
		t.Parallel()
		f := newNotificationFixture(t)

		params := f.activity("")
		params.Type = domain.EventType("bogus")
		_, _, err := f.svc.CreateEvent(context.Background(), params)
		assert.ErrorIs(t, err, domain.ErrInvalidEventType)
	})
}

func TestNotificationService_FanOut(t *testing.T) {
	t.Parallel()

	t.Run("delivers to every member except the actor", func(t *testing.T) {
		t.Parallel()
		f := newNotificationFixture(t)

		event, _, err := f.svc.CreateEvent(context.Background(), f.activity(""))
		require.NoError(t, err)

		require.NoError(t, f.svc.FanOut(context.Background(), event.ID))

		// Alice gets email and telegram, Bob only email, the actor nothing.
		assert.Equal(t, 1, f.email.sentTo(f.alice.ID))
		assert.Equal(t, 1, f.telegram.sentTo(f.alice.ID))
		assert.Equal(t, 1, f.email.sentTo(f.bob.ID))
		assert.Equal(t, 0, f.telegram.sentTo(f.bob.ID))
		assert.Equal(t, 0, f.email.sentTo(f.actor.ID))

		deliveries, err := f.deliveries.ListByEvent(context.Background(), event.ID)
		require.NoError(t, err)
		require.Len(t, deliveries, 3)
		for _, d := range deliveries {
			assert.Equal(t, domain.DeliveryStatusSent, d.Status)
			assert.NotNil(t, d.SentAt)
		}
	})

	t.Run("global preference disables a channel", func(t *testing.T) {
		t.Parallel()
		f := newNotificationFixture(t)

		pref, err := domain.NewNotificationPreference(
			f.alice.ID, nil, domain.ChannelEmail, domain.EventTypeCardCreated, false,
		)
		require.NoError(t, err)
		require.NoError(t, f.prefs.Upsert(context.Background(), pref))

		event, _, err := f.svc.CreateEvent(context.Background(), f.activity(""))
		require.NoError(t, err)
		require.NoError(t, f.svc.FanOut(context.Background(), event.ID))

		assert.Equal(t, 0, f.email.sentTo(f.alice.ID))
		assert.Equal(t, 1, f.telegram.sentTo(f.alice.ID))
		assert.Equal(t, 1, f.email.sentTo(f.bob.ID))
	})

	t.Run("board-scoped preference overrides global", func(t *testing.T) {
		t.Parallel()
		f := newNotificationFixture(t)

		// Globally off, but explicitly re-enabled for this board.
		global, err := domain.NewNotificationPreference(
			f.bob.ID, nil, domain.ChannelEmail, domain.EventTypeCardCreated, false,
		)
		require.NoError(t, err)
		require.NoError(t, f.prefs.Upsert(context.Background(), global))

		scoped, err := domain.NewNotificationPreference(
			f.bob.ID, &f.board.ID, domain.ChannelEmail, domain.EventTypeCardCreated, true,
		)
		require.NoError(t, err)
		require.NoError(t, f.prefs.Upsert(context.Background(), scoped))

		event, _, err := f.svc.CreateEvent(context.Background(), f.activity(""))
		require.NoError(t, err)
		require.NoError(t, f.svc.FanOut(context.Background(), event.ID))

		assert.Equal(t, 1, f.email.sentTo(f.bob.ID))
	})

	t.Run("missing event is a silent no-op", func(t *testing.T) {
		t.Parallel()
		f := newNotificationFixture(t)

		assert.NoError(t, f.svc.FanOut(context.Background(), uuid.New()))
		assert.Empty(t, f.email.sent)
	})

	t.Run("one failing channel never blocks the others", func(t *testing.T) {
		t.Parallel()
		f := newNotificationFixture(t)
		f.email.err = assert.AnError

		event, _, err := f.svc.CreateEvent(context.Background(), f.activity(""))
		require.NoError(t, err)
		require.NoError(t, f.svc.FanOut(context.Background(), event.ID))

		// Telegram still goes through for Alice.
		assert.Equal(t, 1, f.telegram.sentTo(f.alice.ID))

		deliveries, err := f.deliveries.ListByEvent(context.Background(), event.ID)
		require.NoError(t, err)

		failed := 0
		for _, d := range deliveries {
			if d.Status == domain.DeliveryStatusFailed {
				failed++
				assert.Equal(t, domain.ChannelEmail, d.Channel)
				assert.NotEmpty(t, d.Error)
			}
		}
		assert.Equal(t, 2, failed)
	})
}

func TestNotificationService_ListEvents(t *testing.T) {
	t.Parallel()

	t.Run("requires membership", func(t *testing.T) {
		t.Parallel()
		f := newNotificationFixture(t)

		_, err := f.svc.ListEvents(context.Background(), f.board.ID, uuid.New(), 10)
		assert.ErrorIs(t, err, service.ErrNotMember)
	})

	t.Run("members can list", func(t *testing.T) {
		t.Parallel()
		f := newNotificationFixture(t)

		_, _, err := f.svc.CreateEvent(context.Background(), f.activity(""))
		require.NoError(t, err)

		listed, err := f.svc.ListEvents(context.Background(), f.board.ID, f.bob.ID, 10)
		require.NoError(t, err)
		assert.Len(t, listed, 1)
	})
}

func TestNotificationService_Preferences(t *testing.T) {
	t.Parallel()

	t.Run("upsert and list", func(t *testing.T) {
		t.Parallel()
		f := newNotificationFixture(t)

		_, err := f.svc.UpsertPreference(context.Background(), service.UpsertPreferenceParams{
			UserID:    f.alice.ID,
			Channel:   domain.ChannelEmail,
			EventType: domain.EventTypeCardMoved,
			Enabled:   false,
		})
		require.NoError(t, err)

		prefs, err := f.svc.ListPreferences(context.Background(), f.alice.ID)
		require.NoError(t, err)
		require.Len(t, prefs, 1)
		assert.False(t, prefs[0].Enabled)
	})

	t.Run("rejects unknown channel", func(t *testing.T) {
		t.Parallel()
		f := newNotificationFixture(t)

		_, err := f.svc.UpsertPreference(context.Background(), service.UpsertPreferenceParams{
			UserID:    f.alice.ID,
			Channel:   domain.Channel("fax"),
			EventType: domain.EventTypeCardMoved,
			Enabled:   true,
		})
		assert.ErrorIs(t, err, domain.ErrInvalidChannel)
	})
}

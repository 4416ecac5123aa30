package service

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"github.com/boardflow/boardflow-api/internal/domain"
	"github.com/boardflow/boardflow-api/internal/events"
	"github.com/boardflow/boardflow-api/internal/notify"
	"github.com/boardflow/boardflow-api/internal/platform/logger"
	"github.com/boardflow/boardflow-api/internal/store"
)

// ActivityParams describe one piece of board activity to record.
type ActivityParams struct {
	Type     domain.EventType
	ActorID  uuid.UUID
	BoardID  uuid.UUID
	ColumnID *uuid.UUID
	CardID   *uuid.UUID

	// Subject is interpolated into the event summary (card title,
	// member name).
	Subject string

	// Payload carries optional structured detail for consumers.
	Payload json.RawMessage

	// DedupeKey, when non-empty, makes event creation idempotent: at most
	// one event ever exists for the key, and fan-out is requested only by
	// the call that created it.
	DedupeKey string
}

// ActivityRecorder records board activity. Recording is best-effort from
// the caller's perspective: failures are logged, never propagated, so a
// notification problem cannot fail the operation that produced it.
type ActivityRecorder interface {
	RecordActivity(ctx context.Context, params ActivityParams)
}

// UpsertPreferenceParams describe one notification preference row.
type UpsertPreferenceParams struct {
	UserID    uuid.UUID
	BoardID   *uuid.UUID // nil for the global (all boards) scope
	Channel   domain.Channel
	EventType domain.EventType
	Enabled   bool
}

// NotificationService owns the event, fan-out, delivery and preference
// surfaces of the notification engine.
type NotificationService interface {
	ActivityRecorder

	// CreateEvent records an event and, when the event is newly created,
	// requests its asynchronous fan-out. With a dedupe key the creation is
	// idempotent; the bool reports whether this call created the event.
	CreateEvent(ctx context.Context, params ActivityParams) (*domain.NotificationEvent, bool, error)

	// FanOut delivers an event to every board member except the actor, over
	// every channel their preferences and contact info allow. At-least-once:
	// a missing event is a silent no-op, one recipient's failure never
	// blocks another's, and there is no retry within one invocation.
	FanOut(ctx context.Context, eventID uuid.UUID) error

	// ListEvents retrieves a board's recent events, newest first.
	ListEvents(ctx context.Context, boardID, userID uuid.UUID, limit int) ([]*domain.NotificationEvent, error)

	// ListDeliveries retrieves the delivery attempts recorded for an event.
	ListDeliveries(ctx context.Context, eventID, userID uuid.UUID) ([]*domain.NotificationDelivery, error)

	// UpsertPreference creates or updates one preference row.
	UpsertPreference(ctx context.Context, params UpsertPreferenceParams) (*domain.NotificationPreference, error)

	// ListPreferences retrieves all preference rows of a user.
	ListPreferences(ctx context.Context, userID uuid.UUID) ([]*domain.NotificationPreference, error)
}

// notificationServiceImpl implements the NotificationService interface
type notificationServiceImpl struct {
	eventStore    store.EventStore
	deliveryStore store.DeliveryStore
	prefStore     store.PreferenceStore
	boardStore    store.BoardStore
	userStore     store.UserStore
	senders       map[domain.Channel]notify.Sender
	emitter       events.EventEmitter
	sendTimeout   time.Duration
	logger        *slog.Logger
}

// NewNotificationService creates a new NotificationService. The senders map
// holds one entry per configured channel; unconfigured channels are simply
// absent and never attempted.
func NewNotificationService(
	eventStore store.EventStore,
	deliveryStore store.DeliveryStore,
	prefStore store.PreferenceStore,
	boardStore store.BoardStore,
	userStore store.UserStore,
	senders map[domain.Channel]notify.Sender,
	emitter events.EventEmitter,
	sendTimeout time.Duration,
	logger *slog.Logger,
) (NotificationService, error) {
	if eventStore == nil {
		return nil, fmt.Errorf("%w: eventStore cannot be nil", domain.ErrValidation)
	}
	if deliveryStore == nil {
		return nil, fmt.Errorf("%w: deliveryStore cannot be nil", domain.ErrValidation)
	}
	if prefStore == nil {
		return nil, fmt.Errorf("%w: prefStore cannot be nil", domain.ErrValidation)
	}
	if boardStore == nil {
		return nil, fmt.Errorf("%w: boardStore cannot be nil", domain.ErrValidation)
	}
	if userStore == nil {
		return nil, fmt.Errorf("%w: userStore cannot be nil", domain.ErrValidation)
	}
	if emitter == nil {
		return nil, fmt.Errorf("%w: emitter cannot be nil", domain.ErrValidation)
	}
	if sendTimeout <= 0 {
		sendTimeout = 10 * time.Second
	}
	if logger == nil {
		logger = slog.Default()
	}

	return &notificationServiceImpl{
		eventStore:    eventStore,
		deliveryStore: deliveryStore,
		prefStore:     prefStore,
		boardStore:    boardStore,
		userStore:     userStore,
		senders:       senders,
		emitter:       emitter,
		sendTimeout:   sendTimeout,
		logger:        logger.With(slog.String("component", "notification_service")),
	}, nil
}

var _ NotificationService = (*notificationServiceImpl)(nil)

// RecordActivity implements ActivityRecorder.RecordActivity
func (s *notificationServiceImpl) RecordActivity(ctx context.Context, params ActivityParams) {
	if _, _, err := s.CreateEvent(ctx, params); err != nil {
		s.logger.Error("failed to record activity",
			slog.String("error", err.Error()),
			slog.String("event_type", string(params.Type)),
			slog.String("board_id", params.BoardID.String()))
	}
}

// CreateEvent implements NotificationService.CreateEvent
func (s *notificationServiceImpl) CreateEvent(
	ctx context.Context,
	params ActivityParams,
) (*domain.NotificationEvent, bool, error) {
	log := logger.FromContextOrDefault(ctx, s.logger)

	actorName := s.actorName(ctx, params.ActorID)

	event, err := domain.NewNotificationEvent(
		params.Type,
		params.ActorID,
		params.BoardID,
		params.Type.SummaryTemplate(actorName, params.Subject),
		params.Payload,
		params.DedupeKey,
	)
	if err != nil {
		return nil, false, err
	}
	event.ColumnID = params.ColumnID
	event.CardID = params.CardID

	created := true
	if event.DedupeKey != nil {
		event, created, err = s.eventStore.GetOrCreate(ctx, event)
	} else {
		err = s.eventStore.Create(ctx, event)
	}
	if err != nil {
		return nil, false, err
	}

	// Fan-out is requested only by the creating call; replays of the same
	// dedupe key return the existing event and request nothing.
	if created {
		request, err := events.NewFanOutRequested(event.ID)
		if err != nil {
			return nil, false, err
		}
		if err := s.emitter.EmitEvent(ctx, request); err != nil {
			log.Error("failed to request event fan-out",
				slog.String("error", err.Error()),
				slog.String("event_id", event.ID.String()))
		}
	}

	return event, created, nil
}

// FanOut implements NotificationService.FanOut
func (s *notificationServiceImpl) FanOut(ctx context.Context, eventID uuid.UUID) error {
	log := logger.FromContextOrDefault(ctx, s.logger)

	event, err := s.eventStore.GetByID(ctx, eventID)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			log.Info("event vanished before fan-out, nothing to do",
				slog.String("event_id", eventID.String()))
			return nil
		}
		return err
	}

	memberIDs, err := s.boardStore.ListMemberIDs(ctx, event.BoardID)
	if err != nil {
		return err
	}

	for _, memberID := range memberIDs {
		if memberID == event.ActorID {
			continue
		}

		recipient, err := s.userStore.GetByID(ctx, memberID)
		if err != nil {
			log.Error("failed to load fan-out recipient",
				slog.String("error", err.Error()),
				slog.String("recipient_id", memberID.String()))
			continue
		}

		for _, ch := range domain.AllChannels {
			s.attemptChannel(ctx, event, recipient, ch)
		}
	}

	return nil
}

// attemptChannel delivers the event to one recipient over one channel if
// preferences, contact info and channel configuration all allow it.
// Failures are recorded on the delivery row and never propagate.
func (s *notificationServiceImpl) attemptChannel(
	ctx context.Context,
	event *domain.NotificationEvent,
	recipient *domain.User,
	ch domain.Channel,
) {
	log := logger.FromContextOrDefault(ctx, s.logger)

	if !s.channelEnabled(ctx, recipient.ID, event, ch) {
		return
	}

	if !recipient.HasContact(ch) {
		return
	}

	sender, ok := s.senders[ch]
	if !ok {
		return
	}

	delivery, err := domain.NewNotificationDelivery(event.ID, recipient.ID, ch)
	if err != nil {
		log.Error("failed to build delivery",
			slog.String("error", err.Error()),
			slog.String("event_id", event.ID.String()))
		return
	}

	if err := s.deliveryStore.Create(ctx, delivery); err != nil {
		log.Error("failed to record delivery",
			slog.String("error", err.Error()),
			slog.String("event_id", event.ID.String()),
			slog.String("recipient_id", recipient.ID.String()))
		return
	}

	sendCtx, cancel := context.WithTimeout(ctx, s.sendTimeout)
	defer cancel()

	msg := notify.Message{
		Subject: "Boardflow: " + string(event.Type),
		Body:    event.Summary,
		Link:    event.Link,
	}

	if err := sender.Send(sendCtx, recipient, msg); err != nil {
		log.Warn("delivery failed",
			slog.String("error", err.Error()),
			slog.String("channel", string(ch)),
			slog.String("recipient_id", recipient.ID.String()))
		if markErr := s.deliveryStore.MarkFailed(ctx, delivery.ID, err.Error()); markErr != nil {
			log.Error("failed to mark delivery failed",
				slog.String("error", markErr.Error()),
				slog.String("delivery_id", delivery.ID.String()))
		}
		return
	}

	if err := s.deliveryStore.MarkSent(ctx, delivery.ID, time.Now().UTC()); err != nil {
		log.Error("failed to mark delivery sent",
			slog.String("error", err.Error()),
			slog.String("delivery_id", delivery.ID.String()))
	}
}

// channelEnabled resolves the recipient's preference for the event on the
// given channel: board-scoped row over global row over enabled-by-default.
func (s *notificationServiceImpl) channelEnabled(
	ctx context.Context,
	userID uuid.UUID,
	event *domain.NotificationEvent,
	ch domain.Channel,
) bool {
	pref, err := s.prefStore.GetResolved(ctx, userID, event.BoardID, ch, event.Type)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return true
		}
		s.logger.Error("failed to resolve preference, defaulting to enabled",
			slog.String("error", err.Error()),
			slog.String("user_id", userID.String()))
		return true
	}

	return pref.Enabled
}

// ListEvents implements NotificationService.ListEvents
func (s *notificationServiceImpl) ListEvents(
	ctx context.Context,
	boardID, userID uuid.UUID,
	limit int,
) ([]*domain.NotificationEvent, error) {
	ok, err := s.boardStore.IsMember(ctx, boardID, userID)
	if err != nil {
		return nil, err
	}
	if !ok {
		return nil, ErrNotMember
	}

	if limit <= 0 || limit > 200 {
		limit = 50
	}

	return s.eventStore.ListByBoard(ctx, boardID, limit)
}

// ListDeliveries implements NotificationService.ListDeliveries
func (s *notificationServiceImpl) ListDeliveries(
	ctx context.Context,
	eventID, userID uuid.UUID,
) ([]*domain.NotificationDelivery, error) {
	event, err := s.eventStore.GetByID(ctx, eventID)
	if err != nil {
		return nil, err
	}

	ok, err := s.boardStore.IsMember(ctx, event.BoardID, userID)
	if err != nil {
		return nil, err
	}
	if !ok {
		return nil, ErrNotMember
	}

	return s.deliveryStore.ListByEvent(ctx, eventID)
}

// UpsertPreference implements NotificationService.UpsertPreference
func (s *notificationServiceImpl) UpsertPreference(
	ctx context.Context,
	params UpsertPreferenceParams,
) (*domain.NotificationPreference, error) {
	pref, err := domain.NewNotificationPreference(
		params.UserID,
		params.BoardID,
		params.Channel,
		params.EventType,
		params.Enabled,
	)
	if err != nil {
		return nil, err
	}

	if err := s.prefStore.Upsert(ctx, pref); err != nil {
		return nil, err
	}

	return pref, nil
}

// ListPreferences implements NotificationService.ListPreferences
func (s *notificationServiceImpl) ListPreferences(
	ctx context.Context,
	userID uuid.UUID,
) ([]*domain.NotificationPreference, error) {
	return s.prefStore.ListByUser(ctx, userID)
}

// actorName resolves the actor's display name for event summaries, falling
// back to "Someone" when the actor cannot be loaded.
func (s *notificationServiceImpl) actorName(ctx context.Context, actorID uuid.UUID) string {
	user, err := s.userStore.GetByID(ctx, actorID)
	if err != nil {
		return "Someone"
	}
	if user.DisplayName != "" {
		return user.DisplayName
	}
	return user.Email
}

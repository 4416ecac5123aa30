package service

import (
	"context"
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

// CreateReminderParams are the inputs for creating a deadline reminder.
// Channel may be nil to request auto-resolution.
type CreateReminderParams struct {
	CardID      uuid.UUID
	UserID      uuid.UUID
	Enabled     bool
	OffsetValue int
	OffsetUnit  domain.OffsetUnit
	Channel     *domain.Channel
}

// UpdateReminderParams are the inputs for updating a reminder. Every update
// re-runs the scheduling evaluation from scratch.
type UpdateReminderParams struct {
	ReminderID  uuid.UUID
	UserID      uuid.UUID
	Enabled     bool
	OffsetValue int
	OffsetUnit  domain.OffsetUnit
	Channel     *domain.Channel
}

// ReminderService owns the deadline reminder state machine: scheduling,
// token-based cancellation and fire-time delivery.
type ReminderService interface {
	// CreateReminder creates a reminder and runs the scheduling evaluation.
	// The returned reminder's status reports the outcome; an invalid.*
	// status is a recorded result, not an error.
	CreateReminder(ctx context.Context, params CreateReminderParams) (*domain.DeadlineReminder, error)

	// UpdateReminder applies changes and re-runs the scheduling evaluation.
	// A fresh schedule token supersedes any in-flight delivery job.
	UpdateReminder(ctx context.Context, params UpdateReminderParams) (*domain.DeadlineReminder, error)

	// ListReminders retrieves a card's reminders.
	ListReminders(ctx context.Context, cardID, userID uuid.UUID) ([]*domain.DeadlineReminder, error)

	// DeleteReminder removes a reminder. Only its owner may delete it.
	DeleteReminder(ctx context.Context, reminderID, userID uuid.UUID) error

	// Deliver fires a scheduled reminder. The token pins the call to one
	// scheduling generation: a mismatch means the schedule was superseded
	// and the call is a silent no-op. Safe under at-least-once execution;
	// the delivery dedupe key absorbs replays.
	Deliver(ctx context.Context, reminderID, scheduleToken uuid.UUID) error

	// ResyncSchedules re-requests delivery for every reminder still in the
	// scheduled state. Run at startup; replays are absorbed by the token
	// check and the delivery dedupe key.
	ResyncSchedules(ctx context.Context) error

	// OnDeadlineChanged re-runs scheduling for all of a card's reminders
	// after its deadline moved or disappeared.
	OnDeadlineChanged(ctx context.Context, cardID uuid.UUID)
}

// reminderServiceImpl implements the ReminderService interface
type reminderServiceImpl struct {
	reminderStore store.ReminderStore
	cardStore     store.CardStore
	userStore     store.UserStore
	eventStore    store.EventStore
	deliveryStore store.DeliveryStore
	prefStore     store.PreferenceStore
	boards        BoardService
	senders       map[domain.Channel]notify.Sender
	emitter       events.EventEmitter
	sendTimeout   time.Duration
	logger        *slog.Logger
}

// NewReminderService creates a new ReminderService.
func NewReminderService(
	reminderStore store.ReminderStore,
	cardStore store.CardStore,
	userStore store.UserStore,
	eventStore store.EventStore,
	deliveryStore store.DeliveryStore,
	prefStore store.PreferenceStore,
	boards BoardService,
	senders map[domain.Channel]notify.Sender,
	emitter events.EventEmitter,
	sendTimeout time.Duration,
	logger *slog.Logger,
) (ReminderService, error) {
	if reminderStore == nil {
		return nil, fmt.Errorf("%w: reminderStore cannot be nil", domain.ErrValidation)
	}
	if cardStore == nil {
		return nil, fmt.Errorf("%w: cardStore cannot be nil", domain.ErrValidation)
	}
	if userStore == nil {
		return nil, fmt.Errorf("%w: userStore cannot be nil", domain.ErrValidation)
	}
	if eventStore == nil {
		return nil, fmt.Errorf("%w: eventStore cannot be nil", domain.ErrValidation)
	}
	if deliveryStore == nil {
		return nil, fmt.Errorf("%w: deliveryStore cannot be nil", domain.ErrValidation)
	}
	if prefStore == nil {
		return nil, fmt.Errorf("%w: prefStore cannot be nil", domain.ErrValidation)
	}
	if boards == nil {
		return nil, fmt.Errorf("%w: boards cannot be nil", domain.ErrValidation)
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

	return &reminderServiceImpl{
		reminderStore: reminderStore,
		cardStore:     cardStore,
		userStore:     userStore,
		eventStore:    eventStore,
		deliveryStore: deliveryStore,
		prefStore:     prefStore,
		boards:        boards,
		senders:       senders,
		emitter:       emitter,
		sendTimeout:   sendTimeout,
		logger:        logger.With(slog.String("component", "reminder_service")),
	}, nil
}

var _ ReminderService = (*reminderServiceImpl)(nil)
var _ DeadlineObserver = (*reminderServiceImpl)(nil)

// CreateReminder implements ReminderService.CreateReminder
func (s *reminderServiceImpl) CreateReminder(
	ctx context.Context,
	params CreateReminderParams,
) (*domain.DeadlineReminder, error) {
	card, err := s.cardStore.GetByID(ctx, params.CardID)
	if err != nil {
		return nil, err
	}

	if err := s.boards.RequireMembership(ctx, card.BoardID, params.UserID); err != nil {
		return nil, err
	}

	user, err := s.userStore.GetByID(ctx, params.UserID)
	if err != nil {
		return nil, err
	}

	reminder, err := domain.NewDeadlineReminder(
		params.CardID,
		params.UserID,
		params.OffsetValue,
		params.OffsetUnit,
		params.Channel,
	)
	if err != nil {
		return nil, err
	}
	reminder.Enabled = params.Enabled

	s.evaluate(ctx, reminder, card, user)

	if err := s.reminderStore.Create(ctx, reminder); err != nil {
		return nil, err
	}

	s.requestDeliveryIfScheduled(ctx, reminder)

	return reminder, nil
}

// UpdateReminder implements ReminderService.UpdateReminder
func (s *reminderServiceImpl) UpdateReminder(
	ctx context.Context,
	params UpdateReminderParams,
) (*domain.DeadlineReminder, error) {
	reminder, err := s.reminderStore.GetByID(ctx, params.ReminderID)
	if err != nil {
		return nil, err
	}

	if reminder.UserID != params.UserID {
		return nil, ErrNotOwner
	}

	card, err := s.cardStore.GetByID(ctx, reminder.CardID)
	if err != nil {
		return nil, err
	}

	user, err := s.userStore.GetByID(ctx, reminder.UserID)
	if err != nil {
		return nil, err
	}

	reminder.Enabled = params.Enabled
	reminder.OffsetValue = params.OffsetValue
	reminder.OffsetUnit = params.OffsetUnit
	reminder.Channel = params.Channel

	if err := reminder.Validate(); err != nil {
		return nil, err
	}

	s.evaluate(ctx, reminder, card, user)

	if err := s.reminderStore.UpdateSchedule(ctx, reminder); err != nil {
		return nil, err
	}

	s.requestDeliveryIfScheduled(ctx, reminder)

	return reminder, nil
}

// ListReminders implements ReminderService.ListReminders
func (s *reminderServiceImpl) ListReminders(
	ctx context.Context,
	cardID, userID uuid.UUID,
) ([]*domain.DeadlineReminder, error) {
	card, err := s.cardStore.GetByID(ctx, cardID)
	if err != nil {
		return nil, err
	}

	if err := s.boards.RequireMembership(ctx, card.BoardID, userID); err != nil {
		return nil, err
	}

	return s.reminderStore.ListByCard(ctx, cardID)
}

// DeleteReminder implements ReminderService.DeleteReminder
func (s *reminderServiceImpl) DeleteReminder(
	ctx context.Context,
	reminderID, userID uuid.UUID,
) error {
	reminder, err := s.reminderStore.GetByID(ctx, reminderID)
	if err != nil {
		return err
	}

	if reminder.UserID != userID {
		return ErrNotOwner
	}

	return s.reminderStore.Delete(ctx, reminderID)
}

// evaluate runs the scheduling state machine. The checks run in a fixed
// order so every reminder lands in exactly one state per pass:
// enabled, deadline present, channel resolvable, fire time in the future.
func (s *reminderServiceImpl) evaluate(
	ctx context.Context,
	reminder *domain.DeadlineReminder,
	card *domain.Card,
	user *domain.User,
) {
	if !reminder.Enabled {
		reminder.ClearSchedule(domain.ReminderStatusDisabled)
		return
	}

	if card.Deadline == nil {
		reminder.ClearSchedule(domain.ReminderStatusInvalidNoDeadline)
		return
	}

	channel, ok := s.resolveChannel(ctx, reminder, user, card.BoardID)
	if !ok {
		reminder.ClearSchedule(domain.ReminderStatusInvalidChannel)
		return
	}

	offset, err := reminder.Offset()
	if err != nil {
		// Validate runs before every evaluation, so an unparseable offset
		// here means the stored row itself is corrupt.
		reminder.ClearSchedule(domain.ReminderStatusFailed)
		reminder.LastError = err.Error()
		return
	}

	fireAt := card.Deadline.Add(-offset)
	if !fireAt.After(time.Now().UTC()) {
		reminder.ClearSchedule(domain.ReminderStatusInvalidPast)
		return
	}

	reminder.SetSchedule(channel, fireAt, uuid.New())
}

// resolveChannel picks the delivery channel for a scheduling pass. An
// explicit choice must be available right now; with no explicit choice the
// channel is auto-resolved only when exactly one is available.
func (s *reminderServiceImpl) resolveChannel(
	ctx context.Context,
	reminder *domain.DeadlineReminder,
	user *domain.User,
	boardID uuid.UUID,
) (domain.Channel, bool) {
	if reminder.Channel != nil {
		if s.channelAvailable(ctx, *reminder.Channel, user, boardID) {
			return *reminder.Channel, true
		}
		return "", false
	}

	var available []domain.Channel
	for _, ch := range domain.AllChannels {
		if s.channelAvailable(ctx, ch, user, boardID) {
			available = append(available, ch)
		}
	}

	if len(available) == 1 {
		return available[0], true
	}
	return "", false
}

// channelAvailable reports whether the channel is configured in this
// deployment, reachable for the user, and not disabled by the user's
// reminder_due preference for the card's board.
func (s *reminderServiceImpl) channelAvailable(
	ctx context.Context,
	ch domain.Channel,
	user *domain.User,
	boardID uuid.UUID,
) bool {
	if _, ok := s.senders[ch]; !ok {
		return false
	}
	if !user.HasContact(ch) {
		return false
	}

	pref, err := s.prefStore.GetResolved(ctx, user.ID, boardID, ch, domain.EventTypeReminderDue)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			// No preference row either way: enabled by default.
			return true
		}
		s.logger.Error("failed to resolve preference, defaulting to enabled",
			slog.String("error", err.Error()),
			slog.String("user_id", user.ID.String()),
			slog.String("channel", string(ch)))
		return true
	}
	return pref.Enabled
}

// requestDeliveryIfScheduled emits a delayed delivery request for a freshly
// scheduled reminder. Emission failure is logged, not propagated: the
// schedule row is already persisted and ResyncSchedules covers the gap.
func (s *reminderServiceImpl) requestDeliveryIfScheduled(
	ctx context.Context,
	reminder *domain.DeadlineReminder,
) {
	if reminder.Status != domain.ReminderStatusScheduled {
		return
	}

	request, err := events.NewReminderScheduled(
		reminder.ID,
		*reminder.ScheduleToken,
		*reminder.ScheduledAt,
	)
	if err != nil {
		s.logger.Error("failed to build reminder delivery request",
			slog.String("error", err.Error()),
			slog.String("reminder_id", reminder.ID.String()))
		return
	}

	if err := s.emitter.EmitEvent(ctx, request); err != nil {
		s.logger.Error("failed to request reminder delivery",
			slog.String("error", err.Error()),
			slog.String("reminder_id", reminder.ID.String()))
	}
}

// Deliver implements ReminderService.Deliver
func (s *reminderServiceImpl) Deliver(
	ctx context.Context,
	reminderID, scheduleToken uuid.UUID,
) error {
	log := logger.FromContextOrDefault(ctx, s.logger)

	reminder, err := s.reminderStore.GetByID(ctx, reminderID)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			log.Info("reminder vanished before delivery, nothing to do",
				slog.String("reminder_id", reminderID.String()))
			return nil
		}
		return err
	}

	// Cancellation by supersede: only the job carrying the current token
	// may deliver. Reschedules and disables replace or clear the token.
	if reminder.ScheduleToken == nil || *reminder.ScheduleToken != scheduleToken {
		log.Debug("stale schedule token, dropping delivery",
			slog.String("reminder_id", reminderID.String()))
		return nil
	}

	card, err := s.cardStore.GetByID(ctx, reminder.CardID)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return s.reminderStore.MarkSkipped(ctx, reminderID)
		}
		return err
	}

	// The deadline went away between scheduling and firing.
	if card.Deadline == nil {
		return s.reminderStore.MarkSkipped(ctx, reminderID)
	}

	user, err := s.userStore.GetByID(ctx, reminder.UserID)
	if err != nil {
		return err
	}

	if reminder.ResolvedChannel == nil {
		return s.reminderStore.MarkFailed(ctx, reminderID, "no resolved channel")
	}
	channel := *reminder.ResolvedChannel

	dedupeKey := reminderDedupeKey(reminderID, scheduleToken)

	event, _, err := s.eventStore.GetOrCreate(ctx, s.buildDueEvent(reminder, card, dedupeKey))
	if err != nil {
		return err
	}

	delivery, err := domain.NewNotificationDelivery(event.ID, user.ID, channel)
	if err != nil {
		return err
	}
	delivery.DedupeKey = &dedupeKey

	if err := s.deliveryStore.Create(ctx, delivery); err != nil {
		if errors.Is(err, store.ErrDedupeKeyExists) {
			// A previous execution of this firing already went through.
			log.Debug("reminder delivery already recorded, dropping replay",
				slog.String("reminder_id", reminderID.String()))
			return nil
		}
		return err
	}

	sender, ok := s.senders[channel]
	if !ok {
		msg := fmt.Sprintf("channel %s no longer configured", channel)
		if err := s.deliveryStore.MarkFailed(ctx, delivery.ID, msg); err != nil {
			log.Error("failed to mark delivery failed", slog.String("error", err.Error()))
		}
		return s.reminderStore.MarkFailed(ctx, reminderID, msg)
	}

	sendCtx, cancel := context.WithTimeout(ctx, s.sendTimeout)
	defer cancel()

	if err := sender.Send(sendCtx, user, notify.Message{
		Subject: "Boardflow: deadline reminder",
		Body:    event.Summary,
		Link:    event.Link,
	}); err != nil {
		log.Warn("reminder delivery failed",
			slog.String("error", err.Error()),
			slog.String("reminder_id", reminderID.String()))
		if markErr := s.deliveryStore.MarkFailed(ctx, delivery.ID, err.Error()); markErr != nil {
			log.Error("failed to mark delivery failed", slog.String("error", markErr.Error()))
		}
		return s.reminderStore.MarkFailed(ctx, reminderID, err.Error())
	}

	now := time.Now().UTC()
	if err := s.deliveryStore.MarkSent(ctx, delivery.ID, now); err != nil {
		log.Error("failed to mark delivery sent", slog.String("error", err.Error()))
	}

	log.Info("reminder delivered",
		slog.String("reminder_id", reminderID.String()),
		slog.String("channel", string(channel)))
	return s.reminderStore.MarkSent(ctx, reminderID, now)
}

// ResyncSchedules implements ReminderService.ResyncSchedules
func (s *reminderServiceImpl) ResyncSchedules(ctx context.Context) error {
	reminders, err := s.reminderStore.ListScheduled(ctx)
	if err != nil {
		return err
	}

	s.logger.Info("resyncing scheduled reminders", slog.Int("count", len(reminders)))

	for _, reminder := range reminders {
		if reminder.ScheduleToken == nil || reminder.ScheduledAt == nil {
			continue
		}
		s.requestDeliveryIfScheduled(ctx, reminder)
	}

	return nil
}

// OnDeadlineChanged implements DeadlineObserver.OnDeadlineChanged
func (s *reminderServiceImpl) OnDeadlineChanged(ctx context.Context, cardID uuid.UUID) {
	log := logger.FromContextOrDefault(ctx, s.logger)

	card, err := s.cardStore.GetByID(ctx, cardID)
	if err != nil {
		log.Error("failed to load card for reminder rescheduling",
			slog.String("error", err.Error()),
			slog.String("card_id", cardID.String()))
		return
	}

	reminders, err := s.reminderStore.ListByCard(ctx, cardID)
	if err != nil {
		log.Error("failed to list reminders for rescheduling",
			slog.String("error", err.Error()),
			slog.String("card_id", cardID.String()))
		return
	}

	for _, reminder := range reminders {
		// Terminal delivery outcomes stay as they are.
		if reminder.Status == domain.ReminderStatusSent {
			continue
		}

		user, err := s.userStore.GetByID(ctx, reminder.UserID)
		if err != nil {
			log.Error("failed to load reminder owner",
				slog.String("error", err.Error()),
				slog.String("reminder_id", reminder.ID.String()))
			continue
		}

		s.evaluate(ctx, reminder, card, user)

		if err := s.reminderStore.UpdateSchedule(ctx, reminder); err != nil {
			log.Error("failed to persist rescheduled reminder",
				slog.String("error", err.Error()),
				slog.String("reminder_id", reminder.ID.String()))
			continue
		}

		s.requestDeliveryIfScheduled(ctx, reminder)
	}
}

// buildDueEvent constructs the reminder_due notification event for a firing.
func (s *reminderServiceImpl) buildDueEvent(
	reminder *domain.DeadlineReminder,
	card *domain.Card,
	dedupeKey string,
) *domain.NotificationEvent {
	event := &domain.NotificationEvent{
		ID:        uuid.New(),
		Type:      domain.EventTypeReminderDue,
		ActorID:   reminder.UserID,
		BoardID:   card.BoardID,
		CardID:    &card.ID,
		Summary:   domain.EventTypeReminderDue.SummaryTemplate("", card.Title),
		DedupeKey: &dedupeKey,
		CreatedAt: time.Now().UTC(),
	}
	return event
}

func reminderDedupeKey(reminderID, token uuid.UUID) string {
	return fmt.Sprintf("reminder:%s:%s", reminderID, token)
}

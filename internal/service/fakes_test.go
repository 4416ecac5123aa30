package service_test

import (
	"context"
	"database/sql"
	"encoding/json"
	"io"
	"log/slog"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/boardflow/boardflow-api/internal/domain"
	"github.com/boardflow/boardflow-api/internal/events"
	"github.com/boardflow/boardflow-api/internal/notify"
	"github.com/boardflow/boardflow-api/internal/store"
)

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

// fakeBoardStore is an in-memory store.BoardStore.
type fakeBoardStore struct {
	boards  map[uuid.UUID]*domain.Board
	members map[uuid.UUID][]uuid.UUID
}

func newFakeBoardStore() *fakeBoardStore {
	return &fakeBoardStore{
		boards:  make(map[uuid.UUID]*domain.Board),
		members: make(map[uuid.UUID][]uuid.UUID),
	}
}

func (f *fakeBoardStore) Create(ctx context.Context, board *domain.Board) error {
	f.boards[board.ID] = board
	f.members[board.ID] = []uuid.UUID{board.OwnerID}
	return nil
}

func (f *fakeBoardStore) GetByID(ctx context.Context, id uuid.UUID) (*domain.Board, error) {
	board, ok := f.boards[id]
	if !ok {
		return nil, store.ErrBoardNotFound
	}
	return board, nil
}

func (f *fakeBoardStore) ListByMember(ctx context.Context, userID uuid.UUID) ([]*domain.Board, error) {
	var result []*domain.Board
	for boardID, memberIDs := range f.members {
		for _, id := range memberIDs {
			if id == userID {
				result = append(result, f.boards[boardID])
			}
		}
	}
	return result, nil
}

func (f *fakeBoardStore) AddMember(ctx context.Context, member *domain.BoardMember) error {
	for _, id := range f.members[member.BoardID] {
		if id == member.UserID {
			return nil
		}
	}
	f.members[member.BoardID] = append(f.members[member.BoardID], member.UserID)
	return nil
}

func (f *fakeBoardStore) ListMemberIDs(ctx context.Context, boardID uuid.UUID) ([]uuid.UUID, error) {
	return f.members[boardID], nil
}

func (f *fakeBoardStore) IsMember(ctx context.Context, boardID, userID uuid.UUID) (bool, error) {
	for _, id := range f.members[boardID] {
		if id == userID {
			return true, nil
		}
	}
	return false, nil
}

func (f *fakeBoardStore) Delete(ctx context.Context, id uuid.UUID) error {
	if _, ok := f.boards[id]; !ok {
		return store.ErrBoardNotFound
	}
	delete(f.boards, id)
	delete(f.members, id)
	return nil
}

func (f *fakeBoardStore) WithTx(tx *sql.Tx) store.BoardStore { return f }

// fakeEventStore is an in-memory store.EventStore implementing the
// get-or-create contract keyed on the dedupe key.
type fakeEventStore struct {
	mu     sync.Mutex
	events map[uuid.UUID]*domain.NotificationEvent
	byKey  map[string]*domain.NotificationEvent
}

func newFakeEventStore() *fakeEventStore {
	return &fakeEventStore{
		events: make(map[uuid.UUID]*domain.NotificationEvent),
		byKey:  make(map[string]*domain.NotificationEvent),
	}
}

func (f *fakeEventStore) Create(ctx context.Context, event *domain.NotificationEvent) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.events[event.ID] = event
	return nil
}

func (f *fakeEventStore) GetOrCreate(
	ctx context.Context,
	event *domain.NotificationEvent,
) (*domain.NotificationEvent, bool, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	if existing, ok := f.byKey[*event.DedupeKey]; ok {
		return existing, false, nil
	}

	f.events[event.ID] = event
	f.byKey[*event.DedupeKey] = event
	return event, true, nil
}

func (f *fakeEventStore) GetByID(ctx context.Context, id uuid.UUID) (*domain.NotificationEvent, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	event, ok := f.events[id]
	if !ok {
		return nil, store.ErrEventNotFound
	}
	return event, nil
}

func (f *fakeEventStore) ListByBoard(
	ctx context.Context,
	boardID uuid.UUID,
	limit int,
) ([]*domain.NotificationEvent, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var result []*domain.NotificationEvent
	for _, event := range f.events {
		if event.BoardID == boardID && len(result) < limit {
			result = append(result, event)
		}
	}
	return result, nil
}

func (f *fakeEventStore) WithTx(tx *sql.Tx) store.EventStore { return f }

// fakeDeliveryStore is an in-memory store.DeliveryStore enforcing the
// dedupe key uniqueness guard.
type fakeDeliveryStore struct {
	mu         sync.Mutex
	deliveries []*domain.NotificationDelivery
	keys       map[string]bool
}

func newFakeDeliveryStore() *fakeDeliveryStore {
	return &fakeDeliveryStore{keys: make(map[string]bool)}
}

func (f *fakeDeliveryStore) Create(ctx context.Context, delivery *domain.NotificationDelivery) error {
	f.mu.Lock()
	defer f.mu.Unlock()

	if delivery.DedupeKey != nil {
		if f.keys[*delivery.DedupeKey] {
			return store.ErrDedupeKeyExists
		}
		f.keys[*delivery.DedupeKey] = true
	}

	f.deliveries = append(f.deliveries, delivery)
	return nil
}

func (f *fakeDeliveryStore) MarkSent(ctx context.Context, id uuid.UUID, sentAt time.Time) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, d := range f.deliveries {
		if d.ID == id {
			d.Status = domain.DeliveryStatusSent
			d.SentAt = &sentAt
			return nil
		}
	}
	return store.ErrNotFound
}

func (f *fakeDeliveryStore) MarkFailed(ctx context.Context, id uuid.UUID, errMsg string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, d := range f.deliveries {
		if d.ID == id {
			d.Status = domain.DeliveryStatusFailed
			d.Error = errMsg
			return nil
		}
	}
	return store.ErrNotFound
}

func (f *fakeDeliveryStore) ListByEvent(
	ctx context.Context,
	eventID uuid.UUID,
) ([]*domain.NotificationDelivery, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var result []*domain.NotificationDelivery
	for _, d := range f.deliveries {
		if d.EventID == eventID {
			result = append(result, d)
		}
	}
	return result, nil
}

func (f *fakeDeliveryStore) WithTx(tx *sql.Tx) store.DeliveryStore { return f }

// fakePreferenceStore is an in-memory store.PreferenceStore implementing the
// board-over-global resolution order.
type fakePreferenceStore struct {
	prefs []*domain.NotificationPreference
}

func (f *fakePreferenceStore) Upsert(ctx context.Context, pref *domain.NotificationPreference) error {
	for i, existing := range f.prefs {
		if existing.UserID == pref.UserID &&
			equalBoardScope(existing.BoardID, pref.BoardID) &&
			existing.Channel == pref.Channel &&
			existing.EventType == pref.EventType {
			f.prefs[i] = pref
			return nil
		}
	}
	f.prefs = append(f.prefs, pref)
	return nil
}

func (f *fakePreferenceStore) GetResolved(
	ctx context.Context,
	userID, boardID uuid.UUID,
	channel domain.Channel,
	eventType domain.EventType,
) (*domain.NotificationPreference, error) {
	var global *domain.NotificationPreference
	for _, pref := range f.prefs {
		if pref.UserID != userID || pref.Channel != channel || pref.EventType != eventType {
			continue
		}
		if pref.BoardID != nil && *pref.BoardID == boardID {
			return pref, nil
		}
		if pref.BoardID == nil {
			global = pref
		}
	}
	if global != nil {
		return global, nil
	}
	return nil, store.ErrNotFound
}

func (f *fakePreferenceStore) ListByUser(
	ctx context.Context,
	userID uuid.UUID,
) ([]*domain.NotificationPreference, error) {
	var result []*domain.NotificationPreference
	for _, pref := range f.prefs {
		if pref.UserID == userID {
			result = append(result, pref)
		}
	}
	return result, nil
}

func (f *fakePreferenceStore) WithTx(tx *sql.Tx) store.PreferenceStore { return f }

func equalBoardScope(a, b *uuid.UUID) bool {
	if a == nil || b == nil {
		return a == b
	}
	return *a == *b
}

// fakeReminderStore is an in-memory store.ReminderStore.
type fakeReminderStore struct {
	mu        sync.Mutex
	reminders map[uuid.UUID]*domain.DeadlineReminder
}

func newFakeReminderStore() *fakeReminderStore {
	return &fakeReminderStore{reminders: make(map[uuid.UUID]*domain.DeadlineReminder)}
}

func (f *fakeReminderStore) Create(ctx context.Context, reminder *domain.DeadlineReminder) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.reminders[reminder.ID] = reminder
	return nil
}

func (f *fakeReminderStore) GetByID(ctx context.Context, id uuid.UUID) (*domain.DeadlineReminder, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	reminder, ok := f.reminders[id]
	if !ok {
		return nil, store.ErrReminderNotFound
	}
	return reminder, nil
}

func (f *fakeReminderStore) ListByCard(
	ctx context.Context,
	cardID uuid.UUID,
) ([]*domain.DeadlineReminder, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var result []*domain.DeadlineReminder
	for _, reminder := range f.reminders {
		if reminder.CardID == cardID {
			result = append(result, reminder)
		}
	}
	return result, nil
}

func (f *fakeReminderStore) ListScheduled(ctx context.Context) ([]*domain.DeadlineReminder, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var result []*domain.DeadlineReminder
	for _, reminder := range f.reminders {
		if reminder.Status == domain.ReminderStatusScheduled {
			result = append(result, reminder)
		}
	}
	return result, nil
}

func (f *fakeReminderStore) UpdateSchedule(ctx context.Context, reminder *domain.DeadlineReminder) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if _, ok := f.reminders[reminder.ID]; !ok {
		return store.ErrReminderNotFound
	}
	f.reminders[reminder.ID] = reminder
	return nil
}

func (f *fakeReminderStore) MarkSent(ctx context.Context, id uuid.UUID, sentAt time.Time) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	reminder, ok := f.reminders[id]
	if !ok {
		return store.ErrReminderNotFound
	}
	reminder.Status = domain.ReminderStatusSent
	reminder.SentAt = &sentAt
	return nil
}

func (f *fakeReminderStore) MarkFailed(ctx context.Context, id uuid.UUID, errMsg string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	reminder, ok := f.reminders[id]
	if !ok {
		return store.ErrReminderNotFound
	}
	reminder.Status = domain.ReminderStatusFailed
	reminder.LastError = errMsg
	return nil
}

func (f *fakeReminderStore) MarkSkipped(ctx context.Context, id uuid.UUID) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	reminder, ok := f.reminders[id]
	if !ok {
		return store.ErrReminderNotFound
	}
	reminder.Status = domain.ReminderStatusSkipped
	return nil
}

func (f *fakeReminderStore) Delete(ctx context.Context, id uuid.UUID) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if _, ok := f.reminders[id]; !ok {
		return store.ErrReminderNotFound
	}
	delete(f.reminders, id)
	return nil
}

func (f *fakeReminderStore) WithTx(tx *sql.Tx) store.ReminderStore { return f }

// fakeCardStore is an in-memory store.CardStore covering the paths that do
// not require row locks.
type fakeCardStore struct {
	cards map[uuid.UUID]*domain.Card
}

func newFakeCardStore() *fakeCardStore {
	return &fakeCardStore{cards: make(map[uuid.UUID]*domain.Card)}
}

func (f *fakeCardStore) Create(ctx context.Context, card *domain.Card) error {
	f.cards[card.ID] = card
	return nil
}

func (f *fakeCardStore) GetByID(ctx context.Context, id uuid.UUID) (*domain.Card, error) {
	card, ok := f.cards[id]
	if !ok {
		return nil, store.ErrCardNotFound
	}
	return card, nil
}

func (f *fakeCardStore) ListByColumn(ctx context.Context, columnID uuid.UUID) ([]*domain.Card, error) {
	var result []*domain.Card
	for _, card := range f.cards {
		if card.ColumnID == columnID {
			result = append(result, card)
		}
	}
	return result, nil
}

func (f *fakeCardStore) ListByColumnForUpdate(
	ctx context.Context,
	columnID uuid.UUID,
) ([]*domain.Card, error) {
	return f.ListByColumn(ctx, columnID)
}

func (f *fakeCardStore) Move(
	ctx context.Context,
	cardID, columnID uuid.UUID,
	pos decimal.Decimal,
	expectedVersion int64,
) error {
	card, ok := f.cards[cardID]
	if !ok {
		return store.ErrCardNotFound
	}
	if card.Version != expectedVersion {
		return store.ErrVersionConflict
	}
	card.ColumnID = columnID
	card.Position = pos
	card.Version++
	return nil
}

func (f *fakeCardStore) Update(
	ctx context.Context,
	cardID uuid.UUID,
	title string,
	content json.RawMessage,
	deadline *time.Time,
	expectedVersion int64,
) error {
	card, ok := f.cards[cardID]
	if !ok {
		return store.ErrCardNotFound
	}
	if card.Version != expectedVersion {
		return store.ErrVersionConflict
	}
	card.Title = title
	card.Content = content
	card.Deadline = deadline
	card.Version++
	return nil
}

func (f *fakeCardStore) UpdatePositions(
	ctx context.Context,
	positions map[uuid.UUID]decimal.Decimal,
) error {
	for id, pos := range positions {
		if card, ok := f.cards[id]; ok {
			card.Position = pos
		}
	}
	return nil
}

func (f *fakeCardStore) Delete(ctx context.Context, id uuid.UUID) error {
	if _, ok := f.cards[id]; !ok {
		return store.ErrCardNotFound
	}
	delete(f.cards, id)
	return nil
}

func (f *fakeCardStore) WithTx(tx *sql.Tx) store.CardStore { return f }

// fakeColumnStore is an in-memory store.ColumnStore.
type fakeColumnStore struct {
	columns map[uuid.UUID]*domain.Column
}

func newFakeColumnStore() *fakeColumnStore {
	return &fakeColumnStore{columns: make(map[uuid.UUID]*domain.Column)}
}

func (f *fakeColumnStore) Create(ctx context.Context, column *domain.Column) error {
	f.columns[column.ID] = column
	return nil
}

func (f *fakeColumnStore) GetByID(ctx context.Context, id uuid.UUID) (*domain.Column, error) {
	column, ok := f.columns[id]
	if !ok {
		return nil, store.ErrColumnNotFound
	}
	return column, nil
}

func (f *fakeColumnStore) ListByBoard(ctx context.Context, boardID uuid.UUID) ([]*domain.Column, error) {
	var result []*domain.Column
	for _, column := range f.columns {
		if column.BoardID == boardID {
			result = append(result, column)
		}
	}
	return result, nil
}

func (f *fakeColumnStore) MaxPosition(ctx context.Context, boardID uuid.UUID) (*decimal.Decimal, error) {
	var max *decimal.Decimal
	for _, column := range f.columns {
		if column.BoardID != boardID {
			continue
		}
		if max == nil || column.Position.GreaterThan(*max) {
			pos := column.Position
			max = &pos
		}
	}
	return max, nil
}

func (f *fakeColumnStore) Delete(ctx context.Context, id uuid.UUID) error {
	if _, ok := f.columns[id]; !ok {
		return store.ErrColumnNotFound
	}
	delete(f.columns, id)
	return nil
}

func (f *fakeColumnStore) WithTx(tx *sql.Tx) store.ColumnStore { return f }

// fakeSender records sends and optionally fails them.
type fakeSender struct {
	mu      sync.Mutex
	channel domain.Channel
	err     error
	sent    []sentMessage
}

type sentMessage struct {
	recipient *domain.User
	msg       notify.Message
}

func (f *fakeSender) Channel() domain.Channel { return f.channel }

func (f *fakeSender) Send(ctx context.Context, recipient *domain.User, msg notify.Message) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.err != nil {
		return f.err
	}
	f.sent = append(f.sent, sentMessage{recipient: recipient, msg: msg})
	return nil
}

func (f *fakeSender) sentTo(userID uuid.UUID) int {
	f.mu.Lock()
	defer f.mu.Unlock()
	count := 0
	for _, s := range f.sent {
		if s.recipient.ID == userID {
			count++
		}
	}
	return count
}

// captureEmitter records every emitted task request.
type captureEmitter struct {
	mu     sync.Mutex
	events []*events.TaskRequestEvent
}

func (c *captureEmitter) EmitEvent(ctx context.Context, event *events.TaskRequestEvent) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.events = append(c.events, event)
	return nil
}

func (c *captureEmitter) byType(eventType string) []*events.TaskRequestEvent {
	c.mu.Lock()
	defer c.mu.Unlock()
	var result []*events.TaskRequestEvent
	for _, e := range c.events {
		if e.Type == eventType {
			result = append(result, e)
		}
	}
	return result
}

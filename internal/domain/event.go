package domain

import (
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
)

// EventType identifies the kind of board activity an event records.
// The set is closed: dispatch points switch over it exhaustively.
type EventType string

// Known event types.
const (
	EventTypeCardCreated EventType = "card_created"
	EventTypeCardMoved   EventType = "card_moved"
	EventTypeCardUpdated EventType = "card_updated"
	EventTypeCardDeleted EventType = "card_deleted"
	EventTypeMemberAdded EventType = "member_added"
	EventTypeReminderDue EventType = "reminder_due"
)

// Valid reports whether the event type is one of the known types.
func (t EventType) Valid() bool {
	switch t {
	case EventTypeCardCreated,
		EventTypeCardMoved,
		EventTypeCardUpdated,
		EventTypeCardDeleted,
		EventTypeMemberAdded,
		EventTypeReminderDue:
		return true
	default:
		return false
	}
}

// SummaryTemplate returns the human-readable summary for the event type,
// with the actor's display name interpolated.
func (t EventType) SummaryTemplate(actor, subject string) string {
	switch t {
	case EventTypeCardCreated:
		return fmt.Sprintf("%s created card %q", actor, subject)
	case EventTypeCardMoved:
		return fmt.Sprintf("%s moved card %q", actor, subject)
	case EventTypeCardUpdated:
		return fmt.Sprintf("%s updated card %q", actor, subject)
	case EventTypeCardDeleted:
		return fmt.Sprintf("%s deleted card %q", actor, subject)
	case EventTypeMemberAdded:
		return fmt.Sprintf("%s added %s to the board", actor, subject)
	case EventTypeReminderDue:
		return fmt.Sprintf("Reminder: card %q is due soon", subject)
	default:
		return fmt.Sprintf("%s did something to %q", actor, subject)
	}
}

// Channel identifies a notification delivery channel.
// The set is closed: sender selection switches over it exhaustively.
type Channel string

// Known notification channels.
const (
	ChannelEmail    Channel = "email"
	ChannelTelegram Channel = "telegram"
)

// AllChannels lists every known channel in a stable order.
// Fan-out iterates this slice so that adding a channel is a one-line change.
var AllChannels = []Channel{ChannelEmail, ChannelTelegram}

// Valid reports whether the channel is one of the known channels.
func (c Channel) Valid() bool {
	switch c {
	case ChannelEmail, ChannelTelegram:
		return true
	default:
		return false
	}
}

// Event-specific validation errors
var (
	// ErrEventIDEmpty is returned when an event ID is empty or nil.
	ErrEventIDEmpty = errors.New("event ID cannot be empty")

	// ErrEventBoardIDEmpty is returned when an event's board ID is empty or nil.
	ErrEventBoardIDEmpty = errors.New("event board ID cannot be empty")

	// ErrEventSummaryEmpty is returned when an event's summary is empty.
	ErrEventSummaryEmpty = errors.New("event summary cannot be empty")
)

// NotificationEvent is an immutable record of board activity. At most one
// event may exist per non-nil DedupeKey value, globally; a nil key means
// every creation inserts a fresh row.
type NotificationEvent struct {
	ID        uuid.UUID       `json:"id"`
	Type      EventType       `json:"type"`
	ActorID   uuid.UUID       `json:"actor_id"`
	BoardID   uuid.UUID       `json:"board_id"`
	ColumnID  *uuid.UUID      `json:"column_id,omitempty"`
	CardID    *uuid.UUID      `json:"card_id,omitempty"`
	Summary   string          `json:"summary"`
	Link      string          `json:"link,omitempty"`
	Payload   json.RawMessage `json:"payload,omitempty"`
	DedupeKey *string         `json:"dedupe_key,omitempty"`
	CreatedAt time.Time       `json:"created_at"`
}

// NewNotificationEvent creates a new NotificationEvent. DedupeKey may be
// empty, in which case the event carries no idempotency guarantee.
func NewNotificationEvent(
	eventType EventType,
	actorID, boardID uuid.UUID,
	summary string,
	payload json.RawMessage,
	dedupeKey string,
) (*NotificationEvent, error) {
	event := &NotificationEvent{
		ID:        uuid.New(),
		Type:      eventType,
		ActorID:   actorID,
		BoardID:   boardID,
		Summary:   summary,
		Payload:   payload,
		CreatedAt: time.Now().UTC(),
	}
	if dedupeKey != "" {
		event.DedupeKey = &dedupeKey
	}

	if err := event.Validate(); err != nil {
		return nil, err
	}

	return event, nil
}

// Validate checks if the NotificationEvent has valid data.
func (e *NotificationEvent) Validate() error {
	if e.ID == uuid.Nil {
		return ErrEventIDEmpty
	}

	if !e.Type.Valid() {
		return ErrInvalidEventType
	}

	if e.BoardID == uuid.Nil {
		return ErrEventBoardIDEmpty
	}

	if e.Summary == "" {
		return ErrEventSummaryEmpty
	}

	return nil
}

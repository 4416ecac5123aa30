package domain

import (
	"time"

	"github.com/google/uuid"
)

// NotificationPreference is a per-user toggle for one (channel, event type)
// pair, optionally scoped to a single board. A nil BoardID means the row is
// the user's global preference for that pair.
//
// Precedence at fan-out time: board-scoped row overrides global row
// overrides the default, and the default is enabled.
type NotificationPreference struct {
	ID        uuid.UUID  `json:"id"`
	UserID    uuid.UUID  `json:"user_id"`
	BoardID   *uuid.UUID `json:"board_id,omitempty"`
	Channel   Channel    `json:"channel"`
	EventType EventType  `json:"event_type"`
	Enabled   bool       `json:"enabled"`
	CreatedAt time.Time  `json:"created_at"`
	UpdatedAt time.Time  `json:"updated_at"`
}

// NewNotificationPreference creates a preference row. boardID may be nil
// for a global preference.
func NewNotificationPreference(
	userID uuid.UUID,
	boardID *uuid.UUID,
	channel Channel,
	eventType EventType,
	enabled bool,
) (*NotificationPreference, error) {
	if userID == uuid.Nil {
		return nil, ErrUserIDEmpty
	}
	if !channel.Valid() {
		return nil, ErrInvalidChannel
	}
	if !eventType.Valid() {
		return nil, ErrInvalidEventType
	}

	return &NotificationPreference{
		ID:        uuid.New(),
		UserID:    userID,
		BoardID:   boardID,
		Channel:   channel,
		EventType: eventType,
		Enabled:   enabled,
		CreatedAt: time.Now().UTC(),
		UpdatedAt: time.Now().UTC(),
	}, nil
}

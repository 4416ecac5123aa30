package domain

import (
	"errors"
	"time"

	"github.com/google/uuid"
)

// DeliveryStatus tracks the lifecycle of a single delivery attempt.
type DeliveryStatus string

// Possible delivery status values.
const (
	DeliveryStatusQueued DeliveryStatus = "queued"
	DeliveryStatusSent   DeliveryStatus = "sent"
	DeliveryStatusFailed DeliveryStatus = "failed"
)

// Delivery-specific validation errors
var (
	// ErrDeliveryIDEmpty is returned when a delivery ID is empty or nil.
	ErrDeliveryIDEmpty = errors.New("delivery ID cannot be empty")

	// ErrDeliveryEventIDEmpty is returned when a delivery's event ID is empty or nil.
	ErrDeliveryEventIDEmpty = errors.New("delivery event ID cannot be empty")

	// ErrDeliveryRecipientEmpty is returned when a delivery's recipient ID is empty or nil.
	ErrDeliveryRecipientEmpty = errors.New("delivery recipient ID cannot be empty")
)

// NotificationDelivery records one attempt to deliver an event to one
// recipient over one channel. Rows are created lazily, only when a channel
// is actually attempted: the absence of a row means "not applicable",
// which is distinct from "failed".
//
// DedupeKey is set for reminder deliveries and derived from the reminder's
// (id, schedule token) pair; its uniqueness constraint is what keeps
// at-least-once job execution from sending twice.
type NotificationDelivery struct {
	ID          uuid.UUID      `json:"id"`
	EventID     uuid.UUID      `json:"event_id"`
	RecipientID uuid.UUID      `json:"recipient_id"`
	Channel     Channel        `json:"channel"`
	Status      DeliveryStatus `json:"status"`
	Error       string         `json:"error,omitempty"`
	DedupeKey   *string        `json:"dedupe_key,omitempty"`
	SentAt      *time.Time     `json:"sent_at,omitempty"`
	CreatedAt   time.Time      `json:"created_at"`
}

// NewNotificationDelivery creates a delivery attempt in the queued state.
func NewNotificationDelivery(
	eventID, recipientID uuid.UUID,
	channel Channel,
) (*NotificationDelivery, error) {
	delivery := &NotificationDelivery{
		ID:          uuid.New(),
		EventID:     eventID,
		RecipientID: recipientID,
		Channel:     channel,
		Status:      DeliveryStatusQueued,
		CreatedAt:   time.Now().UTC(),
	}

	if err := delivery.Validate(); err != nil {
		return nil, err
	}

	return delivery, nil
}

// Validate checks if the NotificationDelivery has valid data.
func (d *NotificationDelivery) Validate() error {
	if d.ID == uuid.Nil {
		return ErrDeliveryIDEmpty
	}

	if d.EventID == uuid.Nil {
		return ErrDeliveryEventIDEmpty
	}

	if d.RecipientID == uuid.Nil {
		return ErrDeliveryRecipientEmpty
	}

	if !d.Channel.Valid() {
		return ErrInvalidChannel
	}

	return nil
}

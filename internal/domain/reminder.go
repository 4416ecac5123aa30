package domain

import (
	"errors"
	"time"

	"github.com/google/uuid"
)

// ReminderStatus is the state machine position of a deadline reminder.
type ReminderStatus string

// Possible reminder states. The invalid.* states are terminal outcomes of
// scheduling, not errors; sent/skipped/failed are terminal outcomes of a
// fired delivery job.
const (
	ReminderStatusDisabled          ReminderStatus = "disabled"
	ReminderStatusScheduled         ReminderStatus = "scheduled"
	ReminderStatusInvalidNoDeadline ReminderStatus = "invalid.no_deadline"
	ReminderStatusInvalidPast       ReminderStatus = "invalid.past"
	ReminderStatusInvalidChannel    ReminderStatus = "invalid.channel"
	ReminderStatusSent              ReminderStatus = "sent"
	ReminderStatusSkipped           ReminderStatus = "skipped"
	ReminderStatusFailed            ReminderStatus = "failed"
)

// OffsetUnit is the unit of a reminder's lead-time offset.
type OffsetUnit string

// Known offset units.
const (
	OffsetUnitMinutes OffsetUnit = "minutes"
	OffsetUnitHours   OffsetUnit = "hours"
	OffsetUnitDays    OffsetUnit = "days"
)

// Reminder-specific validation errors
var (
	// ErrReminderIDEmpty is returned when a reminder ID is empty or nil.
	ErrReminderIDEmpty = errors.New("reminder ID cannot be empty")

	// ErrReminderCardIDEmpty is returned when a reminder's card ID is empty or nil.
	ErrReminderCardIDEmpty = errors.New("reminder card ID cannot be empty")

	// ErrReminderUserIDEmpty is returned when a reminder's user ID is empty or nil.
	ErrReminderUserIDEmpty = errors.New("reminder user ID cannot be empty")
)

// DeadlineReminder asks for a one-off notification at (card deadline − offset)
// for a single user. Channel is the user's explicit choice, nil meaning
// auto-resolve; ResolvedChannel is what scheduling actually settled on and
// is what a fired job delivers over.
//
// ScheduleToken is the cancellation primitive: a delayed job carries the
// token minted when it was enqueued, and is valid only while the persisted
// token still matches. Rescheduling or disabling the reminder replaces or
// clears the token, turning any in-flight job into a no-op.
type DeadlineReminder struct {
	ID              uuid.UUID      `json:"id"`
	CardID          uuid.UUID      `json:"card_id"`
	UserID          uuid.UUID      `json:"user_id"`
	Enabled         bool           `json:"enabled"`
	OffsetValue     int            `json:"offset_value"`
	OffsetUnit      OffsetUnit     `json:"offset_unit"`
	Channel         *Channel       `json:"channel,omitempty"`
	ResolvedChannel *Channel       `json:"resolved_channel,omitempty"`
	Status          ReminderStatus `json:"status"`
	ScheduledAt     *time.Time     `json:"scheduled_at,omitempty"`
	ScheduleToken   *uuid.UUID     `json:"schedule_token,omitempty"`
	LastError       string         `json:"last_error,omitempty"`
	SentAt          *time.Time     `json:"sent_at,omitempty"`
	CreatedAt       time.Time      `json:"created_at"`
	UpdatedAt       time.Time      `json:"updated_at"`
}

// NewDeadlineReminder creates a reminder for the given card and user.
// channel may be nil to request auto-resolution at scheduling time.
// The reminder starts in the disabled state; scheduling decides the rest.
func NewDeadlineReminder(
	cardID, userID uuid.UUID,
	offsetValue int,
	offsetUnit OffsetUnit,
	channel *Channel,
) (*DeadlineReminder, error) {
	reminder := &DeadlineReminder{
		ID:          uuid.New(),
		CardID:      cardID,
		UserID:      userID,
		Enabled:     true,
		OffsetValue: offsetValue,
		OffsetUnit:  offsetUnit,
		Channel:     channel,
		Status:      ReminderStatusDisabled,
		CreatedAt:   time.Now().UTC(),
		UpdatedAt:   time.Now().UTC(),
	}

	if err := reminder.Validate(); err != nil {
		return nil, err
	}

	return reminder, nil
}

// Validate checks if the DeadlineReminder has valid data.
func (r *DeadlineReminder) Validate() error {
	if r.ID == uuid.Nil {
		return ErrReminderIDEmpty
	}

	if r.CardID == uuid.Nil {
		return ErrReminderCardIDEmpty
	}

	if r.UserID == uuid.Nil {
		return ErrReminderUserIDEmpty
	}

	if _, err := r.Offset(); err != nil {
		return err
	}

	if r.Channel != nil && !r.Channel.Valid() {
		return ErrInvalidChannel
	}

	return nil
}

// Offset converts the (value, unit) pair to a duration.
func (r *DeadlineReminder) Offset() (time.Duration, error) {
	if r.OffsetValue <= 0 {
		return 0, ErrInvalidReminderOffset
	}

	switch r.OffsetUnit {
	case OffsetUnitMinutes:
		return time.Duration(r.OffsetValue) * time.Minute, nil
	case OffsetUnitHours:
		return time.Duration(r.OffsetValue) * time.Hour, nil
	case OffsetUnitDays:
		return time.Duration(r.OffsetValue) * 24 * time.Hour, nil
	default:
		return 0, ErrInvalidReminderOffset
	}
}

// ClearSchedule drops the scheduled time and token. Used whenever a
// scheduling pass lands in a non-scheduled state.
func (r *DeadlineReminder) ClearSchedule(status ReminderStatus) {
	r.Status = status
	r.ScheduledAt = nil
	r.ScheduleToken = nil
	r.ResolvedChannel = nil
	r.UpdatedAt = time.Now().UTC()
}

// SetSchedule records a fresh schedule: the resolved channel, the fire
// time, and a newly minted token that supersedes any in-flight job.
func (r *DeadlineReminder) SetSchedule(channel Channel, at time.Time, token uuid.UUID) {
	r.Status = ReminderStatusScheduled
	r.ResolvedChannel = &channel
	r.ScheduledAt = &at
	r.ScheduleToken = &token
	r.UpdatedAt = time.Now().UTC()
}

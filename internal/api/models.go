package api

import (
	"encoding/json"
	"time"

	"github.com/google/uuid"
)

// Common request/response structures

// RegisterRequest defines the payload for the user registration endpoint.
type RegisterRequest struct {
	Email       string `json:"email"        validate:"required,email"`
	Password    string `json:"password"     validate:"required,min=12,max=72"`
	DisplayName string `json:"display_name" validate:"required,min=1,max=100"`
}

// LoginRequest defines the payload for the user login endpoint.
type LoginRequest struct {
	Email    string `json:"email"    validate:"required,email"`
	Password string `json:"password" validate:"required,min=1"`
}

// AuthResponse defines the successful response for authentication endpoints.
type AuthResponse struct {
	// UserID is the unique identifier for the authenticated user
	UserID uuid.UUID `json:"user_id"`

	// AccessToken is the JWT token used for API authorization
	AccessToken string `json:"access_token"`

	// RefreshToken is the JWT token used to obtain new access tokens
	RefreshToken string `json:"refresh_token,omitempty"`
}

// RefreshTokenRequest defines the payload for the token refresh endpoint.
type RefreshTokenRequest struct {
	RefreshToken string `json:"refresh_token" validate:"required"`
}

// RefreshTokenResponse defines the successful response for the token refresh
// endpoint. Refreshing rotates both tokens.
type RefreshTokenResponse struct {
	AccessToken  string `json:"access_token"`
	RefreshToken string `json:"refresh_token"`
}

// UpdateProfileRequest defines the payload for updating the authenticated
// user's profile. Clearing the Telegram chat ID disables the channel for
// future deliveries.
type UpdateProfileRequest struct {
	DisplayName    string `json:"display_name"     validate:"required,min=1,max=100"`
	TelegramChatID string `json:"telegram_chat_id" validate:"omitempty,max=64"`
}

// CreateBoardRequest defines the payload for creating a board.
type CreateBoardRequest struct {
	Name string `json:"name" validate:"required,min=1,max=200"`
}

// AddMemberRequest defines the payload for adding a member to a board.
type AddMemberRequest struct {
	Email string `json:"email" validate:"required,email"`
}

// CreateColumnRequest defines the payload for creating a column.
type CreateColumnRequest struct {
	Name string `json:"name" validate:"required,min=1,max=200"`
}

// CreateCardRequest defines the payload for creating a card. The card is
// appended to the end of the column.
type CreateCardRequest struct {
	Title    string          `json:"title"    validate:"required,min=1,max=500"`
	Content  json.RawMessage `json:"content,omitempty"`
	Deadline *time.Time      `json:"deadline,omitempty"`
}

// UpdateCardRequest defines the payload for updating a card. ExpectedVersion
// must be the version the client last read; a stale value yields 409.
type UpdateCardRequest struct {
	Title           string          `json:"title"            validate:"required,min=1,max=500"`
	Content         json.RawMessage `json:"content,omitempty"`
	Deadline        *time.Time      `json:"deadline,omitempty"`
	ExpectedVersion int64           `json:"expected_version" validate:"required,min=1"`
}

// MoveCardRequest defines the payload for moving a card. BeforeID and
// AfterID name the neighbors the card should land between in the target
// column; omit both to drop the card at the end.
type MoveCardRequest struct {
	ToColumnID      uuid.UUID  `json:"to_column_id"        validate:"required"`
	BeforeID        *uuid.UUID `json:"before_id,omitempty"`
	AfterID         *uuid.UUID `json:"after_id,omitempty"`
	ExpectedVersion int64      `json:"expected_version"    validate:"required,min=1"`
}

// UpsertPreferenceRequest defines the payload for setting a notification
// preference. A nil BoardID writes the global row for the channel and
// event type.
type UpsertPreferenceRequest struct {
	BoardID   *uuid.UUID `json:"board_id,omitempty"`
	Channel   string     `json:"channel"    validate:"required,oneof=email telegram"`
	EventType string     `json:"event_type" validate:"required"`
	Enabled   bool       `json:"enabled"`
}

// CreateReminderRequest defines the payload for creating a deadline reminder.
// Enabled defaults to true when omitted. Channel omitted means auto-resolve.
type CreateReminderRequest struct {
	Enabled     *bool   `json:"enabled,omitempty"`
	OffsetValue int     `json:"offset_value" validate:"required,min=1"`
	OffsetUnit  string  `json:"offset_unit"  validate:"required,oneof=minutes hours days"`
	Channel     *string `json:"channel,omitempty" validate:"omitempty,oneof=email telegram"`
}

// UpdateReminderRequest defines the payload for updating a reminder. The
// full scheduling evaluation re-runs on every update.
type UpdateReminderRequest struct {
	Enabled     bool    `json:"enabled"`
	OffsetValue int     `json:"offset_value" validate:"required,min=1"`
	OffsetUnit  string  `json:"offset_unit"  validate:"required,oneof=minutes hours days"`
	Channel     *string `json:"channel,omitempty" validate:"omitempty,oneof=email telegram"`
}

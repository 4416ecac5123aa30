package domain

import (
	"errors"
	"net/mail"
	"time"

	"github.com/google/uuid"
)

// User-specific validation errors
var (
	// ErrUserIDEmpty is returned when a user ID is empty or nil.
	ErrUserIDEmpty = errors.New("user ID cannot be empty")

	// ErrUserEmailEmpty is returned when a user's email is empty.
	ErrUserEmailEmpty = errors.New("user email cannot be empty")

	// ErrUserPasswordEmpty is returned when a user's hashed password is empty.
	ErrUserPasswordEmpty = errors.New("user password cannot be empty")
)

// User represents an account that owns boards and receives notifications.
// Email doubles as the login identifier and the email delivery address;
// TelegramChatID is optional and, when present, enables the Telegram channel.
type User struct {
	ID             uuid.UUID `json:"id"`
	Email          string    `json:"email"`
	DisplayName    string    `json:"display_name"`
	HashedPassword string    `json:"-"`
	TelegramChatID string    `json:"telegram_chat_id,omitempty"`
	CreatedAt      time.Time `json:"created_at"`
	UpdatedAt      time.Time `json:"updated_at"`
}

// NewUser creates a new User with the given email, display name and
// pre-hashed password. It generates a new UUID and sets timestamps.
// Returns an error if validation fails.
func NewUser(email, displayName, hashedPassword string) (*User, error) {
	user := &User{
		ID:             uuid.New(),
		Email:          email,
		DisplayName:    displayName,
		HashedPassword: hashedPassword,
		CreatedAt:      time.Now().UTC(),
		UpdatedAt:      time.Now().UTC(),
	}

	if err := user.Validate(); err != nil {
		return nil, err
	}

	return user, nil
}

// Validate checks if the User has valid data.
// Returns an error if any field fails validation.
func (u *User) Validate() error {
	if u.ID == uuid.Nil {
		return ErrUserIDEmpty
	}

	if u.Email == "" {
		return ErrUserEmailEmpty
	}

	if _, err := mail.ParseAddress(u.Email); err != nil {
		return ErrInvalidEmail
	}

	if u.HashedPassword == "" {
		return ErrUserPasswordEmpty
	}

	return nil
}

// HasContact reports whether the user has contact information configured
// for the given channel.
func (u *User) HasContact(ch Channel) bool {
	switch ch {
	case ChannelEmail:
		return u.Email != ""
	case ChannelTelegram:
		return u.TelegramChatID != ""
	default:
		return false
	}
}

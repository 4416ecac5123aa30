package domain_test

import (
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/boardflow/boardflow-api/internal/domain"
)

func TestNewUser(t *testing.T) {
	t.Parallel()

	t.Run("valid user", func(t *testing.T) {
		t.Parallel()

		user, err := domain.NewUser("ada@example.com", "Ada", "hashed-password")
		require.NoError(t, err)

		assert.NotEqual(t, uuid.Nil, user.ID)
		assert.Equal(t, "ada@example.com", user.Email)
		assert.Equal(t, "Ada", user.DisplayName)
		assert.Empty(t, user.TelegramChatID)
	})

	t.Run("empty email", func(t *testing.T) {
		t.Parallel()

		_, err := domain.NewUser("", "Ada", "hashed-password")
		assert.ErrorIs(t, err, domain.ErrUserEmailEmpty)
	})

	t.Run("malformed email", func(t *testing.T) {
		t.Parallel()

		_, err := domain.NewUser("not-an-email", "Ada", "hashed-password")
		assert.ErrorIs(t, err, domain.ErrInvalidEmail)
	})

	t.Run("empty password hash", func(t *testing.T) {
		t.Parallel()

		_, err := domain.NewUser("ada@example.com", "Ada", "")
		assert.ErrorIs(t, err, domain.ErrUserPasswordEmpty)
	})
}

func TestUser_HasContact(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name     string
		user     domain.User
		channel  domain.Channel
		expected bool
	}{
		{
			name:     "email always present for email channel",
			user:     domain.User{Email: "ada@example.com"},
			channel:  domain.ChannelEmail,
			expected: true,
		},
		{
			name:     "telegram without chat ID",
			user:     domain.User{Email: "ada@example.com"},
			channel:  domain.ChannelTelegram,
			expected: false,
		},
		{
			name:     "telegram with chat ID",
			user:     domain.User{Email: "ada@example.com", TelegramChatID: "12345"},
			channel:  domain.ChannelTelegram,
			expected: true,
		},
		{
			name:     "unknown channel",
			user:     domain.User{Email: "ada@example.com", TelegramChatID: "12345"},
			channel:  domain.Channel("sms"),
			expected: false,
		},
	}

	for _, tc := range tests {
		tc := tc
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()
			assert.Equal(t, tc.expected, tc.user.HasContact(tc.channel))
		})
	}
}

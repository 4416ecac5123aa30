package domain_test

import (
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/boardflow/boardflow-api/internal/domain"
)

func TestNewDeadlineReminder(t *testing.T) {
	t.Parallel()

	cardID := uuid.New()
	userID := uuid.New()

	t.Run("valid reminder with auto-resolved channel", func(t *testing.T) {
		t.Parallel()

		reminder, err := domain.NewDeadlineReminder(cardID, userID, 30, domain.OffsetUnitMinutes, nil)
		require.NoError(t, err)

		assert.NotEqual(t, uuid.Nil, reminder.ID)
		assert.True(t, reminder.Enabled)
		assert.Nil(t, reminder.Channel)
		assert.Equal(t, domain.ReminderStatusDisabled, reminder.Status)
		assert.Nil(t, reminder.ScheduleToken)
	})

	t.Run("valid reminder with explicit channel", func(t *testing.T) {
		t.Parallel()

		ch := domain.ChannelTelegram
		reminder, err := domain.NewDeadlineReminder(cardID, userID, 2, domain.OffsetUnitDays, &ch)
		require.NoError(t, err)
		require.NotNil(t, reminder.Channel)
		assert.Equal(t, domain.ChannelTelegram, *reminder.Channel)
	})

	t.Run("empty card ID", func(t *testing.T) {
		t.Parallel()

		_, err := domain.NewDeadlineReminder(uuid.Nil, userID, 1, domain.OffsetUnitHours, nil)
		assert.ErrorIs(t, err, domain.ErrReminderCardIDEmpty)
	})

	t.Run("empty user ID", func(t *testing.T) {
		t.Parallel()

		_, err := domain.NewDeadlineReminder(cardID, uuid.Nil, 1, domain.OffsetUnitHours, nil)
		assert.ErrorIs(t, err, domain.ErrReminderUserIDEmpty)
	})

	t.Run("non-positive offset", func(t *testing.T) {
		t.Parallel()

		_, err := domain.NewDeadlineReminder(cardID, userID, 0, domain.OffsetUnitHours, nil)
		assert.ErrorIs(t, err, domain.ErrInvalidReminderOffset)
	})

	t.Run("unknown offset unit", func(t *testing.T) {
		t.Parallel()

		_, err := domain.NewDeadlineReminder(cardID, userID, 1, domain.OffsetUnit("weeks"), nil)
		assert.ErrorIs(t, err, domain.ErrInvalidReminderOffset)
	})

	t.Run("unknown channel", func(t *testing.T) {
		t.Parallel()

		ch := domain.Channel("pigeon")
		_, err := domain.NewDeadlineReminder(cardID, userID, 1, domain.OffsetUnitHours, &ch)
		assert.ErrorIs(t, err, domain.ErrInvalidChannel)
	})
}

func TestDeadlineReminder_Offset(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name    string
		value   int
		unit    domain.OffsetUnit
		want    time.Duration
		wantErr bool
	}{
		{name: "minutes", value: 45, unit: domain.OffsetUnitMinutes, want: 45 * time.Minute},
		{name: "hours", value: 3, unit: domain.OffsetUnitHours, want: 3 * time.Hour},
		{name: "days", value: 2, unit: domain.OffsetUnitDays, want: 48 * time.Hour},
		{name: "zero value", value: 0, unit: domain.OffsetUnitHours, wantErr: true},
		{name: "negative value", value: -5, unit: domain.OffsetUnitMinutes, wantErr: true},
		{name: "unknown unit", value: 1, unit: domain.OffsetUnit("fortnights"), wantErr: true},
	}

	for _, tc := range tests {
		tc := tc
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()

			reminder := &domain.DeadlineReminder{
				ID:          uuid.New(),
				CardID:      uuid.New(),
				UserID:      uuid.New(),
				OffsetValue: tc.value,
				OffsetUnit:  tc.unit,
			}

			got, err := reminder.Offset()
			if tc.wantErr {
				assert.ErrorIs(t, err, domain.ErrInvalidReminderOffset)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tc.want, got)
		})
	}
}

func TestDeadlineReminder_ScheduleTransitions(t *testing.T) {
	t.Parallel()

	reminder, err := domain.NewDeadlineReminder(
		uuid.New(), uuid.New(), 1, domain.OffsetUnitHours, nil,
	)
	require.NoError(t, err)

	fireAt := time.Now().UTC().Add(2 * time.Hour)
	token := uuid.New()

	reminder.SetSchedule(domain.ChannelEmail, fireAt, token)

	assert.Equal(t, domain.ReminderStatusScheduled, reminder.Status)
	require.NotNil(t, reminder.ResolvedChannel)
	assert.Equal(t, domain.ChannelEmail, *reminder.ResolvedChannel)
	require.NotNil(t, reminder.ScheduledAt)
	assert.True(t, reminder.ScheduledAt.Equal(fireAt))
	require.NotNil(t, reminder.ScheduleToken)
	assert.Equal(t, token, *reminder.ScheduleToken)

	// A later pass that disables the reminder must clear every schedule
	// field so an in-flight job's token no longer matches.
	reminder.ClearSchedule(domain.ReminderStatusDisabled)

	assert.Equal(t, domain.ReminderStatusDisabled, reminder.Status)
	assert.Nil(t, reminder.ScheduledAt)
	assert.Nil(t, reminder.ScheduleToken)
	assert.Nil(t, reminder.ResolvedChannel)
}

package service

import (
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/boardflow/boardflow-api/internal/domain"
)

func snapshotCard(pos string) *domain.Card {
	return &domain.Card{
		ID:       uuid.New(),
		Position: decimal.RequireFromString(pos),
	}
}

func TestAnchorPosition(t *testing.T) {
	t.Parallel()

	a := snapshotCard("1")
	b := snapshotCard("2")
	c := snapshotCard("3")
	locked := []*domain.Card{a, b, c}
	moving := uuid.New()

	t.Run("nil anchor resolves to nil", func(t *testing.T) {
		t.Parallel()

		pos, err := anchorPosition(locked, nil, moving)
		require.NoError(t, err)
		assert.Nil(t, pos)
	})

	t.Run("resolves anchor to its locked position", func(t *testing.T) {
		t.Parallel()

		pos, err := anchorPosition(locked, &b.ID, moving)
		require.NoError(t, err)
		require.NotNil(t, pos)
		assert.True(t, pos.Equal(decimal.NewFromInt(2)))
	})

	t.Run("anchor outside the column is rejected", func(t *testing.T) {
		t.Parallel()

		stranger := uuid.New()
		_, err := anchorPosition(locked, &stranger, moving)
		assert.ErrorIs(t, err, ErrColumnMismatch)
	})

	t.Run("card cannot anchor on itself", func(t *testing.T) {
		t.Parallel()

		_, err := anchorPosition(locked, &a.ID, a.ID)
		assert.ErrorIs(t, err, ErrColumnMismatch)
	})
}

func TestMaxPosition(t *testing.T) {
	t.Parallel()

	// The snapshot arrives ordered by position, so the last element wins.
	cards := []*domain.Card{snapshotCard("1"), snapshotCard("2.5"), snapshotCard("7")}
	max := maxPosition(cards)
	require.NotNil(t, max)
	assert.True(t, max.Equal(decimal.RequireFromString("7")))
}

func TestEqualDeadlines(t *testing.T) {
	t.Parallel()

	now := time.Now().UTC()
	same := now
	later := now.Add(time.Hour)

	tests := []struct {
		name string
		a, b *time.Time
		want bool
	}{
		{name: "both nil", want: true},
		{name: "nil vs set", b: &now, want: false},
		{name: "set vs nil", a: &now, want: false},
		{name: "equal instants", a: &now, b: &same, want: true},
		{name: "different instants", a: &now, b: &later, want: false},
	}

	for _, tc := range tests {
		tc := tc
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()
			assert.Equal(t, tc.want, equalDeadlines(tc.a, tc.b))
		})
	}
}

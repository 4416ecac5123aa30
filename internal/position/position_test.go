package position

import (
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func dec(s string) decimal.Decimal {
	d, err := decimal.NewFromString(s)
	if err != nil {
		panic(err)
	}
	return d
}

func decPtr(s string) *decimal.Decimal {
	d := dec(s)
	return &d
}

func TestNext(t *testing.T) {
	t.Parallel()

	t.Run("empty container starts at 1", func(t *testing.T) {
		t.Parallel()
		assert.True(t, Next(nil).Equal(dec("1")))
	})

	t.Run("appends after max", func(t *testing.T) {
		t.Parallel()
		assert.True(t, Next(decPtr("7")).Equal(dec("8")))
	})

	t.Run("appends after fractional max", func(t *testing.T) {
		t.Parallel()
		assert.True(t, Next(decPtr("2.5")).Equal(dec("3.5")))
	})
}

func TestBetween(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name   string
		before *decimal.Decimal
		after  *decimal.Decimal
		max    *decimal.Decimal
		want   decimal.Decimal
	}{
		{
			name:   "midpoint of both neighbors",
			before: decPtr("1"),
			after:  decPtr("2"),
			want:   dec("1.5"),
		},
		{
			name:   "midpoint of fractional neighbors",
			before: decPtr("1.5"),
			after:  decPtr("1.75"),
			want:   dec("1.625"),
		},
		{
			name:   "only predecessor appends after it",
			before: decPtr("3"),
			want:   dec("4"),
		},
		{
			name:  "only successor goes before it",
			after: decPtr("1"),
			want:  dec("0"),
		},
		{
			name: "no anchors falls back to append",
			max:  decPtr("5"),
			want: dec("6"),
		},
		{
			name: "no anchors in empty container",
			want: dec("1"),
		},
	}

	for _, tc := range tests {
		tc := tc
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()
			got := Between(tc.before, tc.after, tc.max)
			assert.True(t, got.Equal(tc.want),
				"Between() = %s, want %s", got, tc.want)
		})
	}
}

func TestBetween_RepeatedMidpoints(t *testing.T) {
	t.Parallel()

	// Repeatedly insert between a fixed left neighbor and the most recent
	// insertion. Each midpoint must stay strictly between its neighbors
	// for at least 30 iterations before precision erodes.
	left := dec("1")
	right := dec("2")

	for i := 0; i < 30; i++ {
		mid := Between(&left, &right, nil)
		require.True(t, mid.GreaterThan(left),
			"iteration %d: midpoint %s not above %s", i, mid, left)
		require.True(t, mid.LessThan(right),
			"iteration %d: midpoint %s not below %s", i, mid, right)
		right = mid
	}
}

func TestBetween_MidpointRoundsAtPrecisionLimit(t *testing.T) {
	t.Parallel()

	// Once the gap is below the stored precision the midpoint collapses
	// onto a neighbor. The caller recovers via Rebalance.
	before := dec("1")
	after := dec("1.000000000001")

	mid := Between(&before, &after, nil)
	assert.True(t, mid.Equal(before) || mid.Equal(after),
		"expected collapse onto a neighbor, got %s", mid)
}

func TestRebalance(t *testing.T) {
	t.Parallel()

	t.Run("assigns consecutive integers by position", func(t *testing.T) {
		t.Parallel()

		now := time.Now().UTC()
		a := Entry{ID: uuid.New(), Position: dec("0.25"), CreatedAt: now}
		b := Entry{ID: uuid.New(), Position: dec("1.5"), CreatedAt: now}
		c := Entry{ID: uuid.New(), Position: dec("9"), CreatedAt: now}

		got := Rebalance([]Entry{c, a, b})

		require.Len(t, got, 3)
		assert.True(t, got[a.ID].Equal(dec("1")))
		assert.True(t, got[b.ID].Equal(dec("2")))
		assert.True(t, got[c.ID].Equal(dec("3")))
	})

	t.Run("breaks position ties by created_at", func(t *testing.T) {
		t.Parallel()

		older := Entry{
			ID:        uuid.New(),
			Position:  dec("1.5"),
			CreatedAt: time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC),
		}
		newer := Entry{
			ID:        uuid.New(),
			Position:  dec("1.5"),
			CreatedAt: time.Date(2026, 1, 2, 0, 0, 0, 0, time.UTC),
		}

		got := Rebalance([]Entry{newer, older})

		assert.True(t, got[older.ID].Equal(dec("1")))
		assert.True(t, got[newer.ID].Equal(dec("2")))
	})

	t.Run("breaks full ties by id", func(t *testing.T) {
		t.Parallel()

		now := time.Now().UTC()
		first := Entry{
			ID:        uuid.MustParse("00000000-0000-0000-0000-000000000001"),
			Position:  dec("2"),
			CreatedAt: now,
		}
		second := Entry{
			ID:        uuid.MustParse("00000000-0000-0000-0000-000000000002"),
			Position:  dec("2"),
			CreatedAt: now,
		}

		got := Rebalance([]Entry{second, first})

		assert.True(t, got[first.ID].Equal(dec("1")))
		assert.True(t, got[second.ID].Equal(dec("2")))
	})

	t.Run("empty input yields empty map", func(t *testing.T) {
		t.Parallel()
		assert.Empty(t, Rebalance(nil))
	})

	t.Run("restores midpoint headroom", func(t *testing.T) {
		t.Parallel()

		// Squeeze two entries within the last representable digit, then
		// rebalance and verify a midpoint fits between them again.
		a := Entry{ID: uuid.New(), Position: dec("1"), CreatedAt: time.Now().UTC()}
		b := Entry{ID: uuid.New(), Position: dec("1.000000000001"), CreatedAt: time.Now().UTC()}

		got := Rebalance([]Entry{a, b})

		left := got[a.ID]
		right := got[b.ID]
		mid := Between(&left, &right, nil)
		assert.True(t, mid.GreaterThan(left))
		assert.True(t, mid.LessThan(right))
	})
}

package domain_test

import (
	"encoding/json"
	"testing"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/boardflow/boardflow-api/internal/domain"
)

func TestNewCard(t *testing.T) {
	t.Parallel()

	boardID := uuid.New()
	columnID := uuid.New()
	pos := decimal.NewFromInt(1)

	t.Run("valid card", func(t *testing.T) {
		t.Parallel()

		card, err := domain.NewCard(boardID, columnID, "Write release notes", nil, pos)
		require.NoError(t, err)

		assert.NotEqual(t, uuid.Nil, card.ID)
		assert.Equal(t, boardID, card.BoardID)
		assert.Equal(t, columnID, card.ColumnID)
		assert.Equal(t, "Write release notes", card.Title)
		assert.True(t, card.Position.Equal(pos))
		assert.Equal(t, int64(1), card.Version)
		assert.Nil(t, card.Deadline)
		assert.False(t, card.CreatedAt.IsZero())
	})

	t.Run("valid card with JSON content", func(t *testing.T) {
		t.Parallel()

		content := json.RawMessage(`{"description":"steps","checklist":["a","b"]}`)
		card, err := domain.NewCard(boardID, columnID, "Ship it", content, pos)
		require.NoError(t, err)
		assert.JSONEq(t, string(content), string(card.Content))
	})

	t.Run("empty board ID", func(t *testing.T) {
		t.Parallel()

		_, err := domain.NewCard(uuid.Nil, columnID, "Title", nil, pos)
		assert.ErrorIs(t, err, domain.ErrCardBoardIDEmpty)
	})

	t.Run("empty column ID", func(t *testing.T) {
		t.Parallel()

		_, err := domain.NewCard(boardID, uuid.Nil, "Title", nil, pos)
		assert.ErrorIs(t, err, domain.ErrCardColumnIDEmpty)
	})

	t.Run("empty title", func(t *testing.T) {
		t.Parallel()

		_, err := domain.NewCard(boardID, columnID, "", nil, pos)
		assert.ErrorIs(t, err, domain.ErrCardTitleEmpty)
	})

	t.Run("malformed content", func(t *testing.T) {
		t.Parallel()

		_, err := domain.NewCard(boardID, columnID, "Title", json.RawMessage(`{"broken`), pos)
		assert.ErrorIs(t, err, domain.ErrCardContentInvalid)
	})
}

func TestCard_Validate(t *testing.T) {
	t.Parallel()

	valid := func() *domain.Card {
		card, err := domain.NewCard(
			uuid.New(), uuid.New(), "Title", nil, decimal.NewFromInt(1),
		)
		require.NoError(t, err)
		return card
	}

	t.Run("accepts fractional positions", func(t *testing.T) {
		t.Parallel()

		card := valid()
		card.Position = decimal.RequireFromString("1.000000000001")
		assert.NoError(t, card.Validate())
	})

	t.Run("rejects nil ID", func(t *testing.T) {
		t.Parallel()

		card := valid()
		card.ID = uuid.Nil
		assert.ErrorIs(t, card.Validate(), domain.ErrCardIDEmpty)
	})
}

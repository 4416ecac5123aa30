package domain

import (
	"encoding/json"
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// Card-specific validation errors
var (
	// ErrCardIDEmpty is returned when a card ID is empty or nil.
	ErrCardIDEmpty = errors.New("card ID cannot be empty")

	// ErrCardBoardIDEmpty is returned when a card's board ID is empty or nil.
	ErrCardBoardIDEmpty = errors.New("card board ID cannot be empty")

	// ErrCardColumnIDEmpty is returned when a card's column ID is empty or nil.
	ErrCardColumnIDEmpty = errors.New("card column ID cannot be empty")

	// ErrCardTitleEmpty is returned when a card's title is empty.
	ErrCardTitleEmpty = errors.New("card title cannot be empty")

	// ErrCardContentInvalid is returned when a card's content is not valid JSON.
	ErrCardContentInvalid = errors.New("card content must be valid JSON")
)

// Card is the positional entity of the system. Its display order within a
// column is encoded by the arbitrary-precision Position key; ties are broken
// at read time by (CreatedAt, ID), never enforced unique by storage.
//
// Version is the optimistic-concurrency counter: every mutating operation
// takes the caller's expected version, and the write is rejected with a
// conflict when it no longer matches the stored value. The counter is
// incremented atomically with the write itself.
type Card struct {
	ID        uuid.UUID       `json:"id"`
	BoardID   uuid.UUID       `json:"board_id"`
	ColumnID  uuid.UUID       `json:"column_id"`
	Title     string          `json:"title"`
	Content   json.RawMessage `json:"content,omitempty"`
	Position  decimal.Decimal `json:"position"`
	Version   int64           `json:"version"`
	Deadline  *time.Time      `json:"deadline,omitempty"`
	CreatedAt time.Time       `json:"created_at"`
	UpdatedAt time.Time       `json:"updated_at"`
}

// NewCard creates a new Card in the given column at the given position.
// Content may be nil; when present it must be valid JSON.
// Returns an error if validation fails.
func NewCard(
	boardID, columnID uuid.UUID,
	title string,
	content json.RawMessage,
	position decimal.Decimal,
) (*Card, error) {
	card := &Card{
		ID:        uuid.New(),
		BoardID:   boardID,
		ColumnID:  columnID,
		Title:     title,
		Content:   content,
		Position:  position,
		Version:   1,
		CreatedAt: time.Now().UTC(),
		UpdatedAt: time.Now().UTC(),
	}

	if err := card.Validate(); err != nil {
		return nil, err
	}

	return card, nil
}

// Validate checks if the Card has valid data.
// Returns an error if any field fails validation.
func (c *Card) Validate() error {
	if c.ID == uuid.Nil {
		return ErrCardIDEmpty
	}

	if c.BoardID == uuid.Nil {
		return ErrCardBoardIDEmpty
	}

	if c.ColumnID == uuid.Nil {
		return ErrCardColumnIDEmpty
	}

	if c.Title == "" {
		return ErrCardTitleEmpty
	}

	if len(c.Content) > 0 {
		var js json.RawMessage
		if err := json.Unmarshal(c.Content, &js); err != nil {
			return ErrCardContentInvalid
		}
	}

	return nil
}

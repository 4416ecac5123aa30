package domain

import (
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// Column-specific validation errors
var (
	// ErrColumnIDEmpty is returned when a column ID is empty or nil.
	ErrColumnIDEmpty = errors.New("column ID cannot be empty")

	// ErrColumnBoardIDEmpty is returned when a column's board ID is empty or nil.
	ErrColumnBoardIDEmpty = errors.New("column board ID cannot be empty")

	// ErrColumnNameEmpty is returned when a column's name is empty.
	ErrColumnNameEmpty = errors.New("column name cannot be empty")
)

// Column is an ordered lane within a board. Columns themselves are
// positional entities: their display order within the board is encoded
// by the fractional Position key, with (Position, CreatedAt, ID) as the
// effective sort order.
type Column struct {
	ID        uuid.UUID       `json:"id"`
	BoardID   uuid.UUID       `json:"board_id"`
	Name      string          `json:"name"`
	Position  decimal.Decimal `json:"position"`
	CreatedAt time.Time       `json:"created_at"`
	UpdatedAt time.Time       `json:"updated_at"`
}

// NewColumn creates a new Column on the given board at the given position.
// Returns an error if validation fails.
func NewColumn(boardID uuid.UUID, name string, position decimal.Decimal) (*Column, error) {
	column := &Column{
		ID:        uuid.New(),
		BoardID:   boardID,
		Name:      name,
		Position:  position,
		CreatedAt: time.Now().UTC(),
		UpdatedAt: time.Now().UTC(),
	}

	if err := column.Validate(); err != nil {
		return nil, err
	}

	return column, nil
}

// Validate checks if the Column has valid data.
func (c *Column) Validate() error {
	if c.ID == uuid.Nil {
		return ErrColumnIDEmpty
	}

	if c.BoardID == uuid.Nil {
		return ErrColumnBoardIDEmpty
	}

	if c.Name == "" {
		return ErrColumnNameEmpty
	}

	return nil
}

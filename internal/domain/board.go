package domain

import (
	"errors"
	"time"

	"github.com/google/uuid"
)

// Board-specific validation errors
var (
	// ErrBoardIDEmpty is returned when a board ID is empty or nil.
	ErrBoardIDEmpty = errors.New("board ID cannot be empty")

	// ErrBoardOwnerIDEmpty is returned when a board's owner ID is empty or nil.
	ErrBoardOwnerIDEmpty = errors.New("board owner ID cannot be empty")

	// ErrBoardNameEmpty is returned when a board's name is empty.
	ErrBoardNameEmpty = errors.New("board name cannot be empty")
)

// Board is the top-level container for columns and cards. The owner is
// implicitly a member; additional members are tracked as BoardMember rows
// and are the recipient set for notification fan-out.
type Board struct {
	ID        uuid.UUID `json:"id"`
	OwnerID   uuid.UUID `json:"owner_id"`
	Name      string    `json:"name"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// NewBoard creates a new Board owned by the given user.
// Returns an error if validation fails.
func NewBoard(ownerID uuid.UUID, name string) (*Board, error) {
	board := &Board{
		ID:        uuid.New(),
		OwnerID:   ownerID,
		Name:      name,
		CreatedAt: time.Now().UTC(),
		UpdatedAt: time.Now().UTC(),
	}

	if err := board.Validate(); err != nil {
		return nil, err
	}

	return board, nil
}

// Validate checks if the Board has valid data.
func (b *Board) Validate() error {
	if b.ID == uuid.Nil {
		return ErrBoardIDEmpty
	}

	if b.OwnerID == uuid.Nil {
		return ErrBoardOwnerIDEmpty
	}

	if b.Name == "" {
		return ErrBoardNameEmpty
	}

	return nil
}

// BoardMember records a user's membership on a board.
type BoardMember struct {
	BoardID uuid.UUID `json:"board_id"`
	UserID  uuid.UUID `json:"user_id"`
	AddedAt time.Time `json:"added_at"`
}

// NewBoardMember creates a membership record for the given board and user.
func NewBoardMember(boardID, userID uuid.UUID) (*BoardMember, error) {
	if boardID == uuid.Nil {
		return nil, ErrBoardIDEmpty
	}
	if userID == uuid.Nil {
		return nil, ErrUserIDEmpty
	}

	return &BoardMember{
		BoardID: boardID,
		UserID:  userID,
		AddedAt: time.Now().UTC(),
	}, nil
}

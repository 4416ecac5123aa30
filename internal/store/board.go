package store

import (
	"context"
	"database/sql"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/boardflow/boardflow-api/internal/domain"
)

// BoardStore defines the interface for board and membership persistence.
type BoardStore interface {
	// Create saves a new board and its owner's membership row atomically.
	Create(ctx context.Context, board *domain.Board) error

	// GetByID retrieves a board by its unique ID.
	// Returns ErrBoardNotFound if the board does not exist.
	GetByID(ctx context.Context, id uuid.UUID) (*domain.Board, error)

	// ListByMember retrieves all boards the given user is a member of.
	ListByMember(ctx context.Context, userID uuid.UUID) ([]*domain.Board, error)

	// AddMember adds a user to a board. Adding an existing member is a no-op.
	AddMember(ctx context.Context, member *domain.BoardMember) error

	// ListMemberIDs retrieves the user IDs of all members of a board,
	// including the owner. This is the recipient set for fan-out.
	ListMemberIDs(ctx context.Context, boardID uuid.UUID) ([]uuid.UUID, error)

	// IsMember reports whether the user is a member of the board.
	IsMember(ctx context.Context, boardID, userID uuid.UUID) (bool, error)

	// Delete removes a board and, via cascade, its columns, cards and
	// memberships. Returns ErrBoardNotFound if the board does not exist.
	Delete(ctx context.Context, id uuid.UUID) error

	// WithTx returns a new BoardStore instance that uses the provided transaction.
	WithTx(tx *sql.Tx) BoardStore
}

// ColumnStore defines the interface for column persistence.
type ColumnStore interface {
	// Create saves a new column to the store.
	Create(ctx context.Context, column *domain.Column) error

	// GetByID retrieves a column by its unique ID.
	// Returns ErrColumnNotFound if the column does not exist.
	GetByID(ctx context.Context, id uuid.UUID) (*domain.Column, error)

	// ListByBoard retrieves all columns of a board ordered by
	// (position, created_at, id).
	ListByBoard(ctx context.Context, boardID uuid.UUID) ([]*domain.Column, error)

	// MaxPosition returns the highest position value among the board's
	// columns, or nil when the board has no columns.
	MaxPosition(ctx context.Context, boardID uuid.UUID) (*decimal.Decimal, error)

	// Delete removes a column and, via cascade, its cards.
	// Returns ErrColumnNotFound if the column does not exist.
	Delete(ctx context.Context, id uuid.UUID) error

	// WithTx returns a new ColumnStore instance that uses the provided transaction.
	WithTx(tx *sql.Tx) ColumnStore
}

package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/boardflow/boardflow-api/internal/domain"
)

// CardStore defines the interface for card data persistence.
//
// The position-mutating methods implement the locking discipline required
// by the fractional ordering scheme: a move reads neighbor positions,
// computes a midpoint and writes, and that read-compute-write span is only
// safe while the container's rows are locked. Callers run the sequence
// inside a transaction via WithTx, taking the row locks with
// ListByColumnForUpdate first.
type CardStore interface {
	// Create saves a new card to the store.
	Create(ctx context.Context, card *domain.Card) error

	// GetByID retrieves a card by its unique ID.
	// Returns ErrCardNotFound if the card does not exist.
	GetByID(ctx context.Context, id uuid.UUID) (*domain.Card, error)

	// ListByColumn retrieves all cards of a column ordered by
	// (position, created_at, id).
	ListByColumn(ctx context.Context, columnID uuid.UUID) ([]*domain.Card, error)

	// ListByColumnForUpdate is ListByColumn with SELECT ... FOR UPDATE row
	// locks. MUST be called within a transaction: the locks serialize
	// concurrent moves within the column for the rest of the transaction.
	ListByColumnForUpdate(ctx context.Context, columnID uuid.UUID) ([]*domain.Card, error)

	// Move updates a card's column and position in a single statement
	// guarded by the optimistic version check: the write applies only when
	// the stored version equals expectedVersion, and increments it.
	// Returns ErrVersionConflict when the check fails (no write occurs) and
	// ErrCardNotFound when the card does not exist.
	Move(
		ctx context.Context,
		cardID, columnID uuid.UUID,
		pos decimal.Decimal,
		expectedVersion int64,
	) error

	// Update modifies a card's title, content and deadline under the same
	// optimistic version check as Move.
	Update(
		ctx context.Context,
		cardID uuid.UUID,
		title string,
		content json.RawMessage,
		deadline *time.Time,
		expectedVersion int64,
	) error

	// UpdatePositions rewrites the position of every listed card. Used by
	// the out-of-band rebalance operation; bypasses version checks because
	// positions are rewritten wholesale under the column lock.
	UpdatePositions(ctx context.Context, positions map[uuid.UUID]decimal.Decimal) error

	// Delete removes a card from the store by its ID.
	// Returns ErrCardNotFound if the card does not exist.
	Delete(ctx context.Context, id uuid.UUID) error

	// WithTx returns a new CardStore instance that uses the provided transaction.
	WithTx(tx *sql.Tx) CardStore
}

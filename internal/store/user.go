package store

import (
	"context"
	"database/sql"

	"github.com/google/uuid"

	"github.com/boardflow/boardflow-api/internal/domain"
)

// UserStore defines the interface for user data persistence.
type UserStore interface {
	// Create saves a new user to the store.
	// Returns ErrEmailExists if a user with the same email already exists.
	Create(ctx context.Context, user *domain.User) error

	// GetByID retrieves a user by their unique ID.
	// Returns ErrUserNotFound if the user does not exist.
	GetByID(ctx context.Context, id uuid.UUID) (*domain.User, error)

	// GetByEmail retrieves a user by their email address.
	// Returns ErrUserNotFound if the user does not exist.
	GetByEmail(ctx context.Context, email string) (*domain.User, error)

	// Update modifies an existing user's profile and contact fields.
	// Returns ErrUserNotFound if the user does not exist.
	Update(ctx context.Context, user *domain.User) error

	// WithTx returns a new UserStore instance that uses the provided transaction.
	// The transaction should be created and managed by the caller.
	WithTx(tx *sql.Tx) UserStore
}

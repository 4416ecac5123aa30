package store

import (
	"errors"
	"fmt"
)

// Common store errors used across all store implementations.
var (
	// ErrNotFound is returned when a requested entity does not exist in the store.
	// This is a generic version of the entity-specific not found errors
	// (e.g., ErrUserNotFound, ErrCardNotFound).
	ErrNotFound = errors.New("entity not found")

	// ErrDuplicate is returned when an operation would create a duplicate
	// of a unique entity (e.g., a user with the same email, or a delivery
	// row with an already-used dedupe key).
	ErrDuplicate = errors.New("entity already exists")

	// ErrInvalidEntity is returned when an entity fails validation before
	// being stored. Check the wrapped error for specific validation details.
	ErrInvalidEntity = errors.New("invalid entity")

	// ErrVersionConflict is returned when an optimistic-concurrency check
	// fails: the caller's expected version no longer matches the stored
	// version. No write occurs. The caller must re-fetch and retry or
	// surface the conflict.
	ErrVersionConflict = errors.New("version conflict")

	// ErrTransactionFailed is returned when a database transaction fails
	// to commit or when an operation within a transaction fails.
	ErrTransactionFailed = errors.New("transaction failed")

	// Entity-specific "not found" errors

	// ErrUserNotFound indicates that the requested user does not exist in the store.
	ErrUserNotFound = fmt.Errorf("%w: user", ErrNotFound)

	// ErrBoardNotFound indicates that the requested board does not exist in the store.
	ErrBoardNotFound = fmt.Errorf("%w: board", ErrNotFound)

	// ErrColumnNotFound indicates that the requested column does not exist in the store.
	ErrColumnNotFound = fmt.Errorf("%w: column", ErrNotFound)

	// ErrCardNotFound indicates that the requested card does not exist in the store.
	ErrCardNotFound = fmt.Errorf("%w: card", ErrNotFound)

	// ErrEventNotFound indicates that the requested notification event does not exist.
	ErrEventNotFound = fmt.Errorf("%w: notification event", ErrNotFound)

	// ErrReminderNotFound indicates that the requested reminder does not exist.
	ErrReminderNotFound = fmt.Errorf("%w: reminder", ErrNotFound)

	// Entity-specific "duplicate" errors

	// ErrEmailExists indicates that a user with the given email already exists.
	ErrEmailExists = fmt.Errorf("%w: email", ErrDuplicate)

	// ErrDedupeKeyExists indicates that a row with the given dedupe key
	// already exists. For events this is resolved internally by returning
	// the winner's row; for deliveries it means a prior attempt already
	// recorded the send.
	ErrDedupeKeyExists = fmt.Errorf("%w: dedupe key", ErrDuplicate)
)

// IsNotFoundError checks if the error is any kind of "not found" error.
func IsNotFoundError(err error) bool {
	return errors.Is(err, ErrNotFound)
}

// IsDuplicateError checks if the error is any kind of "duplicate" error.
func IsDuplicateError(err error) bool {
	return errors.Is(err, ErrDuplicate)
}

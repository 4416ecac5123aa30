// Package service provides application-level services for boards, columns,
// cards, notifications and reminders.
package service

import "errors"

// Common service errors - sentinel errors used across service implementations.
// Callers check for these with errors.Is(); the API layer maps them to HTTP
// status codes.
var (
	// ErrNotMember indicates the requesting user is not a member of the board
	// the resource belongs to. API layer should map this to HTTP 403 Forbidden.
	ErrNotMember = errors.New("user is not a member of the board")

	// ErrInvalidCredentials indicates an unknown email or a wrong password at
	// login. API layer should map this to HTTP 401 Unauthorized.
	ErrInvalidCredentials = errors.New("invalid email or password")

	// ErrColumnMismatch indicates the before/after anchors of a move do not
	// belong to the target column. API layer should map this to HTTP 400.
	ErrColumnMismatch = errors.New("anchor card is not in the target column")

	// ErrNotOwner indicates an operation reserved for the board owner was
	// attempted by another member. API layer should map this to HTTP 403.
	ErrNotOwner = errors.New("operation requires board ownership")
)

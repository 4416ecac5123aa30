// Package domain defines the core business entities and errors.
package domain

import "errors"

// Common domain errors used across the application.
var (
	// ErrValidation is returned when a domain entity fails validation.
	// This is often wrapped with a more specific error message.
	ErrValidation = errors.New("validation failed")

	// ErrInvalidID is returned when an ID is malformed or invalid.
	ErrInvalidID = errors.New("invalid ID")

	// ErrInvalidEmail is returned when an email address is malformed.
	ErrInvalidEmail = errors.New("invalid email format")

	// ErrInvalidPassword is returned when a password doesn't meet requirements.
	ErrInvalidPassword = errors.New("invalid password")

	// ErrEmptyContent is returned when required content is empty.
	ErrEmptyContent = errors.New("content cannot be empty")

	// ErrInvalidEventType is returned when an event type is not one of the
	// known closed set of types.
	ErrInvalidEventType = errors.New("invalid event type")

	// ErrInvalidChannel is returned when a notification channel is not one
	// of the known closed set of channels.
	ErrInvalidChannel = errors.New("invalid notification channel")

	// ErrInvalidReminderOffset is returned when a reminder offset has a
	// non-positive value or an unknown unit.
	ErrInvalidReminderOffset = errors.New("invalid reminder offset")

	// ErrUnauthorized is returned when an operation is not permitted.
	ErrUnauthorized = errors.New("unauthorized operation")
)

package api_test

import (
	"errors"
	"fmt"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/boardflow/boardflow-api/internal/api"
	"github.com/boardflow/boardflow-api/internal/api/shared"
	"github.com/boardflow/boardflow-api/internal/domain"
	"github.com/boardflow/boardflow-api/internal/service"
	"github.com/boardflow/boardflow-api/internal/service/auth"
	"github.com/boardflow/boardflow-api/internal/store"
)

func TestMapErrorToStatusCode(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name string
		err  error
		want int
	}{
		{"invalid token", auth.ErrInvalidToken, http.StatusUnauthorized},
		{"expired token", auth.ErrExpiredToken, http.StatusUnauthorized},
		{"invalid refresh token", auth.ErrInvalidRefreshToken, http.StatusUnauthorized},
		{"wrong token type", auth.ErrWrongTokenType, http.StatusUnauthorized},
		{"invalid credentials", service.ErrInvalidCredentials, http.StatusUnauthorized},
		{"not a member", service.ErrNotMember, http.StatusForbidden},
		{"not the owner", service.ErrNotOwner, http.StatusForbidden},
		{"generic not found", store.ErrNotFound, http.StatusNotFound},
		{"card not found", store.ErrCardNotFound, http.StatusNotFound},
		{"reminder not found", store.ErrReminderNotFound, http.StatusNotFound},
		{"version conflict", store.ErrVersionConflict, http.StatusConflict},
		{"duplicate", store.ErrDuplicate, http.StatusConflict},
		{"email exists", store.ErrEmailExists, http.StatusConflict},
		{"invalid entity", store.ErrInvalidEntity, http.StatusBadRequest},
		{"anchor in wrong column", service.ErrColumnMismatch, http.StatusBadRequest},
		{"domain validation", domain.ErrValidation, http.StatusBadRequest},
		{"unknown error", errors.New("boom"), http.StatusInternalServerError},
		{"wrapped version conflict", fmt.Errorf("move card: %w", store.ErrVersionConflict), http.StatusConflict},
		{"wrapped not member", fmt.Errorf("get board: %w", service.ErrNotMember), http.StatusForbidden},
	}

	for _, tc := range tests {
		tc := tc
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()
			assert.Equal(t, tc.want, api.MapErrorToStatusCode(tc.err))
		})
	}
}

func TestGetSafeErrorMessage(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name string
		err  error
		want string
	}{
		{"nil error", nil, "An unexpected error occurred"},
		{"invalid credentials", service.ErrInvalidCredentials, "Invalid email or password"},
		{"not a member", service.ErrNotMember, "You are not a member of this board"},
		{"not the owner", service.ErrNotOwner, "Only the board owner can do this"},
		{"card not found", store.ErrCardNotFound, "Card not found"},
		{"board not found", store.ErrBoardNotFound, "Board not found"},
		{"column not found", store.ErrColumnNotFound, "Column not found"},
		{"reminder not found", store.ErrReminderNotFound, "Reminder not found"},
		{
			"version conflict",
			store.ErrVersionConflict,
			"The card was modified by someone else, reload and retry",
		},
		{"email exists", store.ErrEmailExists, "Email already exists"},
		{"anchor in wrong column", service.ErrColumnMismatch, "Anchor card is not in the target column"},
		{"domain validation", domain.ErrValidation, "Invalid request data"},
		{
			"raw driver error is not leaked",
			errors.New("pq: connection to postgres://u:p@db:5432 refused"),
			"An unexpected error occurred",
		},
	}

	for _, tc := range tests {
		tc := tc
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()
			assert.Equal(t, tc.want, api.GetSafeErrorMessage(tc.err))
		})
	}
}

func TestSanitizeValidationError(t *testing.T) {
	t.Parallel()

	t.Run("missing required field", func(t *testing.T) {
		t.Parallel()

		err := shared.ValidateRequest(api.LoginRequest{Password: "pw"})
		assert.Equal(t, "Invalid Email: required field", api.SanitizeValidationError(err))
	})

	t.Run("bad email format", func(t *testing.T) {
		t.Parallel()

		err := shared.ValidateRequest(api.LoginRequest{Email: "not-an-email", Password: "pw"})
		assert.Equal(t, "Invalid Email: invalid email format", api.SanitizeValidationError(err))
	})

	t.Run("value too short", func(t *testing.T) {
		t.Parallel()

		err := shared.ValidateRequest(api.RegisterRequest{
			Email:       "ada@example.com",
			Password:    "short",
			DisplayName: "Ada",
		})
		assert.Equal(t, "Invalid Password: too short", api.SanitizeValidationError(err))
	})

	t.Run("non-validator error", func(t *testing.T) {
		t.Parallel()
		assert.Equal(t, "Validation error", api.SanitizeValidationError(errors.New("boom")))
	})
}

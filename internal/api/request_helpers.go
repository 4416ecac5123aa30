package api

import (
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"github.com/boardflow/boardflow-api/internal/api/shared"
	"github.com/boardflow/boardflow-api/internal/domain"
	"github.com/boardflow/boardflow-api/internal/platform/logger"
)

// HandleAPIError maps an internal error to its HTTP status code and safe
// message, writes the response and logs the underlying error. When
// defaultMsg is non-empty it overrides the mapped message.
func HandleAPIError(w http.ResponseWriter, r *http.Request, err error, defaultMsg string) {
	status := MapErrorToStatusCode(err)

	msg := defaultMsg
	if msg == "" {
		msg = GetSafeErrorMessage(err)
	}

	shared.RespondWithErrorAndLog(w, r, status, msg, err)
}

// getUserIDFromContext extracts the authenticated user's UUID from the
// request context. The user ID is placed there by the auth middleware.
func getUserIDFromContext(r *http.Request) (uuid.UUID, bool) {
	userID, ok := r.Context().Value(shared.UserIDContextKey).(uuid.UUID)
	if !ok || userID == uuid.Nil {
		return uuid.Nil, false
	}
	return userID, true
}

// getPathUUID extracts and parses a UUID from the URL path parameters.
func getPathUUID(r *http.Request, paramName string) (uuid.UUID, error) {
	pathParam := chi.URLParam(r, paramName)
	if pathParam == "" {
		return uuid.Nil, domain.ErrValidation
	}

	id, err := uuid.Parse(pathParam)
	if err != nil {
		return uuid.Nil, domain.ErrValidation
	}

	return id, nil
}

// handleUserIDAndPathUUID extracts both the user ID from context and a UUID
// from the path parameters, writing an error response if either fails.
// Returns false when an error response has already been written.
func handleUserIDAndPathUUID(
	w http.ResponseWriter,
	r *http.Request,
	paramName string,
	log *slog.Logger,
) (uuid.UUID, uuid.UUID, bool) {
	if log == nil {
		log = logger.FromContextOrDefault(r.Context(), slog.Default())
	}

	userID, ok := getUserIDFromContext(r)
	if !ok {
		log.Warn("user ID not found or invalid in request context")
		shared.RespondWithError(w, r, http.StatusUnauthorized, "Authentication required")
		return uuid.Nil, uuid.Nil, false
	}

	pathID, err := getPathUUID(r, paramName)
	if err != nil {
		log.Warn("invalid path parameter",
			slog.String("param_name", paramName),
			slog.String("value", chi.URLParam(r, paramName)))
		shared.RespondWithError(w, r, http.StatusBadRequest, "Invalid "+paramName)
		return uuid.Nil, uuid.Nil, false
	}

	return userID, pathID, true
}

package api

import (
	"log/slog"
	"net/http"

	"github.com/boardflow/boardflow-api/internal/api/shared"
	"github.com/boardflow/boardflow-api/internal/domain"
	"github.com/boardflow/boardflow-api/internal/service"
)

// NotificationHandler handles notification preference and delivery API
// requests. Events themselves are listed per board by the board handler.
type NotificationHandler struct {
	notifications service.NotificationService
	logger        *slog.Logger
}

// NewNotificationHandler creates a new NotificationHandler with the given
// dependencies.
func NewNotificationHandler(
	notifications service.NotificationService,
	logger *slog.Logger,
) *NotificationHandler {
	if logger == nil {
		logger = slog.Default()
	}

	return &NotificationHandler{
		notifications: notifications,
		logger:        logger.With(slog.String("component", "notification_handler")),
	}
}

// ListDeliveries handles GET /events/{id}/deliveries.
func (h *NotificationHandler) ListDeliveries(w http.ResponseWriter, r *http.Request) {
	userID, eventID, ok := handleUserIDAndPathUUID(w, r, "id", h.logger)
	if !ok {
		return
	}

	deliveries, err := h.notifications.ListDeliveries(r.Context(), eventID, userID)
	if err != nil {
		HandleAPIError(w, r, err, "")
		return
	}

	shared.RespondWithJSON(w, r, http.StatusOK, deliveries)
}

// UpsertPreference handles PUT /preferences. The (board, channel, event
// type) scope identifies the row; repeated calls overwrite it.
func (h *NotificationHandler) UpsertPreference(w http.ResponseWriter, r *http.Request) {
	userID, ok := getUserIDFromContext(r)
	if !ok {
		shared.RespondWithError(w, r, http.StatusUnauthorized, "Authentication required")
		return
	}

	var req UpsertPreferenceRequest
	if err := shared.DecodeJSON(r, &req); err != nil {
		shared.RespondWithError(w, r, http.StatusBadRequest, "Invalid request format")
		return
	}

	if err := shared.ValidateRequest(req); err != nil {
		shared.RespondWithError(w, r, http.StatusBadRequest, SanitizeValidationError(err))
		return
	}

	eventType := domain.EventType(req.EventType)
	if !eventType.Valid() {
		shared.RespondWithError(w, r, http.StatusBadRequest, "Invalid event_type")
		return
	}

	pref, err := h.notifications.UpsertPreference(r.Context(), service.UpsertPreferenceParams{
		UserID:    userID,
		BoardID:   req.BoardID,
		Channel:   domain.Channel(req.Channel),
		EventType: eventType,
		Enabled:   req.Enabled,
	})
	if err != nil {
		HandleAPIError(w, r, err, "")
		return
	}

	shared.RespondWithJSON(w, r, http.StatusOK, pref)
}

// ListPreferences handles GET /preferences.
func (h *NotificationHandler) ListPreferences(w http.ResponseWriter, r *http.Request) {
	userID, ok := getUserIDFromContext(r)
	if !ok {
		shared.RespondWithError(w, r, http.StatusUnauthorized, "Authentication required")
		return
	}

	prefs, err := h.notifications.ListPreferences(r.Context(), userID)
	if err != nil {
		HandleAPIError(w, r, err, "")
		return
	}

	shared.RespondWithJSON(w, r, http.StatusOK, prefs)
}

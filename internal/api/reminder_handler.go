package api

import (
	"log/slog"
	"net/http"

	"github.com/boardflow/boardflow-api/internal/api/shared"
	"github.com/boardflow/boardflow-api/internal/domain"
	"github.com/boardflow/boardflow-api/internal/service"
)

// ReminderHandler handles deadline reminder API requests.
type ReminderHandler struct {
	reminderService service.ReminderService
	logger          *slog.Logger
}

// NewReminderHandler creates a new ReminderHandler with the given
// dependencies.
func NewReminderHandler(
	reminderService service.ReminderService,
	logger *slog.Logger,
) *ReminderHandler {
	if logger == nil {
		logger = slog.Default()
	}

	return &ReminderHandler{
		reminderService: reminderService,
		logger:          logger.With(slog.String("component", "reminder_handler")),
	}
}

// CreateReminder handles POST /cards/{id}/reminders. The response status
// field reports the scheduling outcome; an invalid.* status is a recorded
// result, not a request error.
func (h *ReminderHandler) CreateReminder(w http.ResponseWriter, r *http.Request) {
	userID, cardID, ok := handleUserIDAndPathUUID(w, r, "id", h.logger)
	if !ok {
		return
	}

	var req CreateReminderRequest
	if err := shared.DecodeJSON(r, &req); err != nil {
		shared.RespondWithError(w, r, http.StatusBadRequest, "Invalid request format")
		return
	}

	if err := shared.ValidateRequest(req); err != nil {
		shared.RespondWithError(w, r, http.StatusBadRequest, SanitizeValidationError(err))
		return
	}

	enabled := true
	if req.Enabled != nil {
		enabled = *req.Enabled
	}

	reminder, err := h.reminderService.CreateReminder(r.Context(), service.CreateReminderParams{
		CardID:      cardID,
		UserID:      userID,
		Enabled:     enabled,
		OffsetValue: req.OffsetValue,
		OffsetUnit:  domain.OffsetUnit(req.OffsetUnit),
		Channel:     channelPtr(req.Channel),
	})
	if err != nil {
		HandleAPIError(w, r, err, "")
		return
	}

	shared.RespondWithJSON(w, r, http.StatusCreated, reminder)
}

// ListReminders handles GET /cards/{id}/reminders.
func (h *ReminderHandler) ListReminders(w http.ResponseWriter, r *http.Request) {
	userID, cardID, ok := handleUserIDAndPathUUID(w, r, "id", h.logger)
	if !ok {
		return
	}

	reminders, err := h.reminderService.ListReminders(r.Context(), cardID, userID)
	if err != nil {
		HandleAPIError(w, r, err, "")
		return
	}

	shared.RespondWithJSON(w, r, http.StatusOK, reminders)
}

// UpdateReminder handles PUT /reminders/{id}. Every update re-runs the
// scheduling evaluation and mints a fresh schedule token, cancelling any
// in-flight delivery job.
func (h *ReminderHandler) UpdateReminder(w http.ResponseWriter, r *http.Request) {
	userID, reminderID, ok := handleUserIDAndPathUUID(w, r, "id", h.logger)
	if !ok {
		return
	}

	var req UpdateReminderRequest
	if err := shared.DecodeJSON(r, &req); err != nil {
		shared.RespondWithError(w, r, http.StatusBadRequest, "Invalid request format")
		return
	}

	if err := shared.ValidateRequest(req); err != nil {
		shared.RespondWithError(w, r, http.StatusBadRequest, SanitizeValidationError(err))
		return
	}

	reminder, err := h.reminderService.UpdateReminder(r.Context(), service.UpdateReminderParams{
		ReminderID:  reminderID,
		UserID:      userID,
		Enabled:     req.Enabled,
		OffsetValue: req.OffsetValue,
		OffsetUnit:  domain.OffsetUnit(req.OffsetUnit),
		Channel:     channelPtr(req.Channel),
	})
	if err != nil {
		HandleAPIError(w, r, err, "")
		return
	}

	shared.RespondWithJSON(w, r, http.StatusOK, reminder)
}

// DeleteReminder handles DELETE /reminders/{id}. Owner only.
func (h *ReminderHandler) DeleteReminder(w http.ResponseWriter, r *http.Request) {
	userID, reminderID, ok := handleUserIDAndPathUUID(w, r, "id", h.logger)
	if !ok {
		return
	}

	if err := h.reminderService.DeleteReminder(r.Context(), reminderID, userID); err != nil {
		HandleAPIError(w, r, err, "")
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

// channelPtr converts an optional channel string to the domain type.
func channelPtr(raw *string) *domain.Channel {
	if raw == nil {
		return nil
	}
	ch := domain.Channel(*raw)
	return &ch
}

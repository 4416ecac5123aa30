package api

import (
	"log/slog"
	"net/http"

	"github.com/boardflow/boardflow-api/internal/api/shared"
	"github.com/boardflow/boardflow-api/internal/service"
)

// CardHandler handles card API requests, including the position-sensitive
// move and rebalance endpoints.
type CardHandler struct {
	cardService service.CardService
	logger      *slog.Logger
}

// NewCardHandler creates a new CardHandler with the given dependencies.
func NewCardHandler(cardService service.CardService, logger *slog.Logger) *CardHandler {
	if logger == nil {
		logger = slog.Default()
	}

	return &CardHandler{
		cardService: cardService,
		logger:      logger.With(slog.String("component", "card_handler")),
	}
}

// CreateCard handles POST /columns/{id}/cards. The card is appended to the
// end of the column.
func (h *CardHandler) CreateCard(w http.ResponseWriter, r *http.Request) {
	userID, columnID, ok := handleUserIDAndPathUUID(w, r, "id", h.logger)
	if !ok {
		return
	}

	var req CreateCardRequest
	if err := shared.DecodeJSON(r, &req); err != nil {
		shared.RespondWithError(w, r, http.StatusBadRequest, "Invalid request format")
		return
	}

	if err := shared.ValidateRequest(req); err != nil {
		shared.RespondWithError(w, r, http.StatusBadRequest, SanitizeValidationError(err))
		return
	}

	card, err := h.cardService.CreateCard(r.Context(), service.CreateCardParams{
		ColumnID: columnID,
		ActorID:  userID,
		Title:    req.Title,
		Content:  req.Content,
		Deadline: req.Deadline,
	})
	if err != nil {
		HandleAPIError(w, r, err, "")
		return
	}

	shared.RespondWithJSON(w, r, http.StatusCreated, card)
}

// ListCards handles GET /columns/{id}/cards. Cards come back in display
// order.
func (h *CardHandler) ListCards(w http.ResponseWriter, r *http.Request) {
	userID, columnID, ok := handleUserIDAndPathUUID(w, r, "id", h.logger)
	if !ok {
		return
	}

	cards, err := h.cardService.ListCards(r.Context(), columnID, userID)
	if err != nil {
		HandleAPIError(w, r, err, "")
		return
	}

	shared.RespondWithJSON(w, r, http.StatusOK, cards)
}

// GetCard handles GET /cards/{id}.
func (h *CardHandler) GetCard(w http.ResponseWriter, r *http.Request) {
	userID, cardID, ok := handleUserIDAndPathUUID(w, r, "id", h.logger)
	if !ok {
		return
	}

	card, err := h.cardService.GetCard(r.Context(), cardID, userID)
	if err != nil {
		HandleAPIError(w, r, err, "")
		return
	}

	shared.RespondWithJSON(w, r, http.StatusOK, card)
}

// UpdateCard handles PUT /cards/{id}. A stale expected_version yields 409;
// the client should re-read the card and retry.
func (h *CardHandler) UpdateCard(w http.ResponseWriter, r *http.Request) {
	userID, cardID, ok := handleUserIDAndPathUUID(w, r, "id", h.logger)
	if !ok {
		return
	}

	var req UpdateCardRequest
	if err := shared.DecodeJSON(r, &req); err != nil {
		shared.RespondWithError(w, r, http.StatusBadRequest, "Invalid request format")
		return
	}

	if err := shared.ValidateRequest(req); err != nil {
		shared.RespondWithError(w, r, http.StatusBadRequest, SanitizeValidationError(err))
		return
	}

	card, err := h.cardService.UpdateCard(r.Context(), service.UpdateCardParams{
		CardID:          cardID,
		ActorID:         userID,
		Title:           req.Title,
		Content:         req.Content,
		Deadline:        req.Deadline,
		ExpectedVersion: req.ExpectedVersion,
	})
	if err != nil {
		HandleAPIError(w, r, err, "")
		return
	}

	shared.RespondWithJSON(w, r, http.StatusOK, card)
}

// MoveCard handles POST /cards/{id}/move.
func (h *CardHandler) MoveCard(w http.ResponseWriter, r *http.Request) {
	userID, cardID, ok := handleUserIDAndPathUUID(w, r, "id", h.logger)
	if !ok {
		return
	}

	var req MoveCardRequest
	if err := shared.DecodeJSON(r, &req); err != nil {
		shared.RespondWithError(w, r, http.StatusBadRequest, "Invalid request format")
		return
	}

	if err := shared.ValidateRequest(req); err != nil {
		shared.RespondWithError(w, r, http.StatusBadRequest, SanitizeValidationError(err))
		return
	}

	card, err := h.cardService.MoveCard(r.Context(), service.MoveCardParams{
		CardID:          cardID,
		ActorID:         userID,
		ToColumnID:      req.ToColumnID,
		BeforeID:        req.BeforeID,
		AfterID:         req.AfterID,
		ExpectedVersion: req.ExpectedVersion,
	})
	if err != nil {
		HandleAPIError(w, r, err, "")
		return
	}

	shared.RespondWithJSON(w, r, http.StatusOK, card)
}

// DeleteCard handles DELETE /cards/{id}.
func (h *CardHandler) DeleteCard(w http.ResponseWriter, r *http.Request) {
	userID, cardID, ok := handleUserIDAndPathUUID(w, r, "id", h.logger)
	if !ok {
		return
	}

	if err := h.cardService.DeleteCard(r.Context(), cardID, userID); err != nil {
		HandleAPIError(w, r, err, "")
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

// RebalanceColumn handles POST /columns/{id}/rebalance. Positions are
// rewritten to consecutive integers, restoring midpoint headroom.
func (h *CardHandler) RebalanceColumn(w http.ResponseWriter, r *http.Request) {
	userID, columnID, ok := handleUserIDAndPathUUID(w, r, "id", h.logger)
	if !ok {
		return
	}

	if err := h.cardService.RebalanceColumn(r.Context(), columnID, userID); err != nil {
		HandleAPIError(w, r, err, "")
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

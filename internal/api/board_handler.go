package api

import (
	"log/slog"
	"net/http"
	"strconv"

	"github.com/boardflow/boardflow-api/internal/api/shared"
	"github.com/boardflow/boardflow-api/internal/service"
)

// BoardHandler handles board and membership API requests.
type BoardHandler struct {
	boardService  service.BoardService
	columnService service.ColumnService
	notifications service.NotificationService
	logger        *slog.Logger
}

// NewBoardHandler creates a new BoardHandler with the given dependencies.
func NewBoardHandler(
	boardService service.BoardService,
	columnService service.ColumnService,
	notifications service.NotificationService,
	logger *slog.Logger,
) *BoardHandler {
	if logger == nil {
		logger = slog.Default()
	}

	return &BoardHandler{
		boardService:  boardService,
		columnService: columnService,
		notifications: notifications,
		logger:        logger.With(slog.String("component", "board_handler")),
	}
}

// CreateBoard handles POST /boards.
func (h *BoardHandler) CreateBoard(w http.ResponseWriter, r *http.Request) {
	userID, ok := getUserIDFromContext(r)
	if !ok {
		shared.RespondWithError(w, r, http.StatusUnauthorized, "Authentication required")
		return
	}

	var req CreateBoardRequest
	if err := shared.DecodeJSON(r, &req); err != nil {
		shared.RespondWithError(w, r, http.StatusBadRequest, "Invalid request format")
		return
	}

	if err := shared.ValidateRequest(req); err != nil {
		shared.RespondWithError(w, r, http.StatusBadRequest, SanitizeValidationError(err))
		return
	}

	board, err := h.boardService.CreateBoard(r.Context(), userID, req.Name)
	if err != nil {
		HandleAPIError(w, r, err, "")
		return
	}

	shared.RespondWithJSON(w, r, http.StatusCreated, board)
}

// ListBoards handles GET /boards.
func (h *BoardHandler) ListBoards(w http.ResponseWriter, r *http.Request) {
	userID, ok := getUserIDFromContext(r)
	if !ok {
		shared.RespondWithError(w, r, http.StatusUnauthorized, "Authentication required")
		return
	}

	boards, err := h.boardService.ListBoards(r.Context(), userID)
	if err != nil {
		HandleAPIError(w, r, err, "")
		return
	}

	shared.RespondWithJSON(w, r, http.StatusOK, boards)
}

// GetBoard handles GET /boards/{id}.
func (h *BoardHandler) GetBoard(w http.ResponseWriter, r *http.Request) {
	userID, boardID, ok := handleUserIDAndPathUUID(w, r, "id", h.logger)
	if !ok {
		return
	}

	board, err := h.boardService.GetBoard(r.Context(), boardID, userID)
	if err != nil {
		HandleAPIError(w, r, err, "")
		return
	}

	shared.RespondWithJSON(w, r, http.StatusOK, board)
}

// DeleteBoard handles DELETE /boards/{id}. Owner only.
func (h *BoardHandler) DeleteBoard(w http.ResponseWriter, r *http.Request) {
	userID, boardID, ok := handleUserIDAndPathUUID(w, r, "id", h.logger)
	if !ok {
		return
	}

	if err := h.boardService.DeleteBoard(r.Context(), boardID, userID); err != nil {
		HandleAPIError(w, r, err, "")
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

// AddMember handles POST /boards/{id}/members.
func (h *BoardHandler) AddMember(w http.ResponseWriter, r *http.Request) {
	userID, boardID, ok := handleUserIDAndPathUUID(w, r, "id", h.logger)
	if !ok {
		return
	}

	var req AddMemberRequest
	if err := shared.DecodeJSON(r, &req); err != nil {
		shared.RespondWithError(w, r, http.StatusBadRequest, "Invalid request format")
		return
	}

	if err := shared.ValidateRequest(req); err != nil {
		shared.RespondWithError(w, r, http.StatusBadRequest, SanitizeValidationError(err))
		return
	}

	member, err := h.boardService.AddMember(r.Context(), boardID, userID, req.Email)
	if err != nil {
		HandleAPIError(w, r, err, "")
		return
	}

	shared.RespondWithJSON(w, r, http.StatusCreated, member)
}

// CreateColumn handles POST /boards/{id}/columns.
func (h *BoardHandler) CreateColumn(w http.ResponseWriter, r *http.Request) {
	userID, boardID, ok := handleUserIDAndPathUUID(w, r, "id", h.logger)
	if !ok {
		return
	}

	var req CreateColumnRequest
	if err := shared.DecodeJSON(r, &req); err != nil {
		shared.RespondWithError(w, r, http.StatusBadRequest, "Invalid request format")
		return
	}

	if err := shared.ValidateRequest(req); err != nil {
		shared.RespondWithError(w, r, http.StatusBadRequest, SanitizeValidationError(err))
		return
	}

	column, err := h.columnService.CreateColumn(r.Context(), boardID, userID, req.Name)
	if err != nil {
		HandleAPIError(w, r, err, "")
		return
	}

	shared.RespondWithJSON(w, r, http.StatusCreated, column)
}

// ListColumns handles GET /boards/{id}/columns.
func (h *BoardHandler) ListColumns(w http.ResponseWriter, r *http.Request) {
	userID, boardID, ok := handleUserIDAndPathUUID(w, r, "id", h.logger)
	if !ok {
		return
	}

	columns, err := h.columnService.ListColumns(r.Context(), boardID, userID)
	if err != nil {
		HandleAPIError(w, r, err, "")
		return
	}

	shared.RespondWithJSON(w, r, http.StatusOK, columns)
}

// DeleteColumn handles DELETE /columns/{id}. The column's cards go with it.
func (h *BoardHandler) DeleteColumn(w http.ResponseWriter, r *http.Request) {
	userID, columnID, ok := handleUserIDAndPathUUID(w, r, "id", h.logger)
	if !ok {
		return
	}

	if err := h.columnService.DeleteColumn(r.Context(), columnID, userID); err != nil {
		HandleAPIError(w, r, err, "")
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

// ListEvents handles GET /boards/{id}/events. Accepts an optional limit
// query parameter.
func (h *BoardHandler) ListEvents(w http.ResponseWriter, r *http.Request) {
	userID, boardID, ok := handleUserIDAndPathUUID(w, r, "id", h.logger)
	if !ok {
		return
	}

	limit := 0
	if raw := r.URL.Query().Get("limit"); raw != "" {
		parsed, err := strconv.Atoi(raw)
		if err != nil {
			shared.RespondWithError(w, r, http.StatusBadRequest, "Invalid limit")
			return
		}
		limit = parsed
	}

	events, err := h.notifications.ListEvents(r.Context(), boardID, userID, limit)
	if err != nil {
		HandleAPIError(w, r, err, "")
		return
	}

	shared.RespondWithJSON(w, r, http.StatusOK, events)
}

package service

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/google/uuid"

	"github.com/boardflow/boardflow-api/internal/domain"
	"github.com/boardflow/boardflow-api/internal/platform/logger"
	"github.com/boardflow/boardflow-api/internal/position"
	"github.com/boardflow/boardflow-api/internal/store"
)

// ColumnService provides column operations. Columns are positional within
// their board; new columns always append to the end.
type ColumnService interface {
	// CreateColumn appends a new column to the board.
	CreateColumn(
		ctx context.Context,
		boardID, actorID uuid.UUID,
		name string,
	) (*domain.Column, error)

	// ListColumns retrieves the board's columns in display order.
	ListColumns(ctx context.Context, boardID, userID uuid.UUID) ([]*domain.Column, error)

	// DeleteColumn removes a column and its cards.
	DeleteColumn(ctx context.Context, columnID, userID uuid.UUID) error
}

// columnServiceImpl implements the ColumnService interface
type columnServiceImpl struct {
	columnStore store.ColumnStore
	boards      BoardService
	logger      *slog.Logger
}

// NewColumnService creates a new ColumnService.
func NewColumnService(
	columnStore store.ColumnStore,
	boards BoardService,
	logger *slog.Logger,
) (ColumnService, error) {
	if columnStore == nil {
		return nil, fmt.Errorf("%w: columnStore cannot be nil", domain.ErrValidation)
	}
	if boards == nil {
		return nil, fmt.Errorf("%w: boards cannot be nil", domain.ErrValidation)
	}
	if logger == nil {
		logger = slog.Default()
	}

	return &columnServiceImpl{
		columnStore: columnStore,
		boards:      boards,
		logger:      logger.With(slog.String("component", "column_service")),
	}, nil
}

var _ ColumnService = (*columnServiceImpl)(nil)

// CreateColumn implements ColumnService.CreateColumn
func (s *columnServiceImpl) CreateColumn(
	ctx context.Context,
	boardID, actorID uuid.UUID,
	name string,
) (*domain.Column, error) {
	log := logger.FromContextOrDefault(ctx, s.logger)

	if err := s.boards.RequireMembership(ctx, boardID, actorID); err != nil {
		return nil, err
	}

	max, err := s.columnStore.MaxPosition(ctx, boardID)
	if err != nil {
		return nil, err
	}

	column, err := domain.NewColumn(boardID, name, position.Next(max))
	if err != nil {
		return nil, err
	}

	if err := s.columnStore.Create(ctx, column); err != nil {
		log.Error("failed to create column",
			slog.String("error", err.Error()),
			slog.String("board_id", boardID.String()))
		return nil, err
	}

	log.Info("column created",
		slog.String("column_id", column.ID.String()),
		slog.String("board_id", boardID.String()))
	return column, nil
}

// ListColumns implements ColumnService.ListColumns
func (s *columnServiceImpl) ListColumns(
	ctx context.Context,
	boardID, userID uuid.UUID,
) ([]*domain.Column, error) {
	if err := s.boards.RequireMembership(ctx, boardID, userID); err != nil {
		return nil, err
	}

	return s.columnStore.ListByBoard(ctx, boardID)
}

// DeleteColumn implements ColumnService.DeleteColumn
func (s *columnServiceImpl) DeleteColumn(ctx context.Context, columnID, userID uuid.UUID) error {
	column, err := s.columnStore.GetByID(ctx, columnID)
	if err != nil {
		return err
	}

	if err := s.boards.RequireMembership(ctx, column.BoardID, userID); err != nil {
		return err
	}

	return s.columnStore.Delete(ctx, columnID)
}

package service

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/google/uuid"

	"github.com/boardflow/boardflow-api/internal/domain"
	"github.com/boardflow/boardflow-api/internal/platform/logger"
	"github.com/boardflow/boardflow-api/internal/store"
)

// BoardService provides board and membership operations.
type BoardService interface {
	// CreateBoard creates a board owned by the given user. The owner becomes
	// a member implicitly.
	CreateBoard(ctx context.Context, ownerID uuid.UUID, name string) (*domain.Board, error)

	// GetBoard retrieves a board the user is a member of.
	// Returns ErrNotMember when the user has no membership.
	GetBoard(ctx context.Context, boardID, userID uuid.UUID) (*domain.Board, error)

	// ListBoards retrieves all boards the user is a member of.
	ListBoards(ctx context.Context, userID uuid.UUID) ([]*domain.Board, error)

	// AddMember adds the user with the given email to the board and records
	// a member_added activity event. The actor must be a board member.
	AddMember(
		ctx context.Context,
		boardID, actorID uuid.UUID,
		memberEmail string,
	) (*domain.BoardMember, error)

	// DeleteBoard removes a board and everything in it. Owner only.
	DeleteBoard(ctx context.Context, boardID, userID uuid.UUID) error

	// RequireMembership returns ErrNotMember unless the user is a member of
	// the board. Exposed for sibling services guarding scoped resources.
	RequireMembership(ctx context.Context, boardID, userID uuid.UUID) error
}

// boardServiceImpl implements the BoardService interface
type boardServiceImpl struct {
	boardStore store.BoardStore
	userStore  store.UserStore
	recorder   ActivityRecorder
	logger     *slog.Logger
}

// NewBoardService creates a new BoardService.
// It returns an error if any of the required dependencies are nil.
func NewBoardService(
	boardStore store.BoardStore,
	userStore store.UserStore,
	recorder ActivityRecorder,
	logger *slog.Logger,
) (BoardService, error) {
	if boardStore == nil {
		return nil, fmt.Errorf("%w: boardStore cannot be nil", domain.ErrValidation)
	}
	if userStore == nil {
		return nil, fmt.Errorf("%w: userStore cannot be nil", domain.ErrValidation)
	}
	if recorder == nil {
		return nil, fmt.Errorf("%w: recorder cannot be nil", domain.ErrValidation)
	}
	if logger == nil {
		logger = slog.Default()
	}

	return &boardServiceImpl{
		boardStore: boardStore,
		userStore:  userStore,
		recorder:   recorder,
		logger:     logger.With(slog.String("component", "board_service")),
	}, nil
}

var _ BoardService = (*boardServiceImpl)(nil)

// CreateBoard implements BoardService.CreateBoard
func (s *boardServiceImpl) CreateBoard(
	ctx context.Context,
	ownerID uuid.UUID,
	name string,
) (*domain.Board, error) {
	log := logger.FromContextOrDefault(ctx, s.logger)

	board, err := domain.NewBoard(ownerID, name)
	if err != nil {
		return nil, err
	}

	if err := s.boardStore.Create(ctx, board); err != nil {
		log.Error("failed to create board",
			slog.String("error", err.Error()),
			slog.String("owner_id", ownerID.String()))
		return nil, err
	}

	log.Info("board created",
		slog.String("board_id", board.ID.String()),
		slog.String("owner_id", ownerID.String()))
	return board, nil
}

// GetBoard implements BoardService.GetBoard
func (s *boardServiceImpl) GetBoard(
	ctx context.Context,
	boardID, userID uuid.UUID,
) (*domain.Board, error) {
	if err := s.RequireMembership(ctx, boardID, userID); err != nil {
		return nil, err
	}

	return s.boardStore.GetByID(ctx, boardID)
}

// ListBoards implements BoardService.ListBoards
func (s *boardServiceImpl) ListBoards(
	ctx context.Context,
	userID uuid.UUID,
) ([]*domain.Board, error) {
	return s.boardStore.ListByMember(ctx, userID)
}

// AddMember implements BoardService.AddMember
func (s *boardServiceImpl) AddMember(
	ctx context.Context,
	boardID, actorID uuid.UUID,
	memberEmail string,
) (*domain.BoardMember, error) {
	log := logger.FromContextOrDefault(ctx, s.logger)

	if err := s.RequireMembership(ctx, boardID, actorID); err != nil {
		return nil, err
	}

	user, err := s.userStore.GetByEmail(ctx, memberEmail)
	if err != nil {
		return nil, err
	}

	member, err := domain.NewBoardMember(boardID, user.ID)
	if err != nil {
		return nil, err
	}

	if err := s.boardStore.AddMember(ctx, member); err != nil {
		log.Error("failed to add board member",
			slog.String("error", err.Error()),
			slog.String("board_id", boardID.String()),
			slog.String("user_id", user.ID.String()))
		return nil, err
	}

	s.recorder.RecordActivity(ctx, ActivityParams{
		Type:    domain.EventTypeMemberAdded,
		ActorID: actorID,
		BoardID: boardID,
		Subject: user.DisplayName,
	})

	log.Info("board member added",
		slog.String("board_id", boardID.String()),
		slog.String("user_id", user.ID.String()))
	return member, nil
}

// DeleteBoard implements BoardService.DeleteBoard
func (s *boardServiceImpl) DeleteBoard(ctx context.Context, boardID, userID uuid.UUID) error {
	board, err := s.boardStore.GetByID(ctx, boardID)
	if err != nil {
		return err
	}

	if board.OwnerID != userID {
		return ErrNotOwner
	}

	return s.boardStore.Delete(ctx, boardID)
}

// RequireMembership implements BoardService.RequireMembership
func (s *boardServiceImpl) RequireMembership(
	ctx context.Context,
	boardID, userID uuid.UUID,
) error {
	ok, err := s.boardStore.IsMember(ctx, boardID, userID)
	if err != nil {
		return err
	}

	if !ok {
		return ErrNotMember
	}

	return nil
}

package mocks

import (
	"context"

	"github.com/google/uuid"

	"github.com/boardflow/boardflow-api/internal/domain"
	"github.com/boardflow/boardflow-api/internal/service"
)

// MockBoardService implements service.BoardService for testing
type MockBoardService struct {
	CreateBoardFn       func(ctx context.Context, ownerID uuid.UUID, name string) (*domain.Board, error)
	GetBoardFn          func(ctx context.Context, boardID, userID uuid.UUID) (*domain.Board, error)
	ListBoardsFn        func(ctx context.Context, userID uuid.UUID) ([]*domain.Board, error)
	AddMemberFn         func(ctx context.Context, boardID, actorID uuid.UUID, memberEmail string) (*domain.BoardMember, error)
	DeleteBoardFn       func(ctx context.Context, boardID, userID uuid.UUID) error
	RequireMembershipFn func(ctx context.Context, boardID, userID uuid.UUID) error

	// Default values used when functions aren't explicitly defined
	Board         *domain.Board
	Boards        []*domain.Board
	Member        *domain.BoardMember
	Err           error
	MembershipErr error
}

// CreateBoard implements the service.BoardService interface
func (m *MockBoardService) CreateBoard(
	ctx context.Context,
	ownerID uuid.UUID,
	name string,
) (*domain.Board, error) {
	if m.CreateBoardFn != nil {
		return m.CreateBoardFn(ctx, ownerID, name)
	}

	return m.Board, m.Err
}

// GetBoard implements the service.BoardService interface
func (m *MockBoardService) GetBoard(
	ctx context.Context,
	boardID, userID uuid.UUID,
) (*domain.Board, error) {
	if m.GetBoardFn != nil {
		return m.GetBoardFn(ctx, boardID, userID)
	}

	return m.Board, m.Err
}

// ListBoards implements the service.BoardService interface
func (m *MockBoardService) ListBoards(
	ctx context.Context,
	userID uuid.UUID,
) ([]*domain.Board, error) {
	if m.ListBoardsFn != nil {
		return m.ListBoardsFn(ctx, userID)
	}

	return m.Boards, m.Err
}

// AddMember implements the service.BoardService interface
func (m *MockBoardService) AddMember(
	ctx context.Context,
	boardID, actorID uuid.UUID,
	memberEmail string,
) (*domain.BoardMember, error) {
	if m.AddMemberFn != nil {
		return m.AddMemberFn(ctx, boardID, actorID, memberEmail)
	}

	return m.Member, m.Err
}

// DeleteBoard implements the service.BoardService interface
func (m *MockBoardService) DeleteBoard(ctx context.Context, boardID, userID uuid.UUID) error {
	if m.DeleteBoardFn != nil {
		return m.DeleteBoardFn(ctx, boardID, userID)
	}

	return m.Err
}

// RequireMembership implements the service.BoardService interface
func (m *MockBoardService) RequireMembership(
	ctx context.Context,
	boardID, userID uuid.UUID,
) error {
	if m.RequireMembershipFn != nil {
		return m.RequireMembershipFn(ctx, boardID, userID)
	}

	return m.MembershipErr
}

var _ service.BoardService = (*MockBoardService)(nil)

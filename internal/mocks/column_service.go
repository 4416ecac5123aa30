package mocks

import (
	"context"

	"github.com/google/uuid"

	"github.com/boardflow/boardflow-api/internal/domain"
	"github.com/boardflow/boardflow-api/internal/service"
)

// MockColumnService implements service.ColumnService for testing
type MockColumnService struct {
	CreateColumnFn func(ctx context.Context, boardID, actorID uuid.UUID, name string) (*domain.Column, error)
	ListColumnsFn  func(ctx context.Context, boardID, userID uuid.UUID) ([]*domain.Column, error)
	DeleteColumnFn func(ctx context.Context, columnID, userID uuid.UUID) error

	// Default values used when functions aren't explicitly defined
	Column  *domain.Column
	Columns []*domain.Column
	Err     error
}

// CreateColumn implements the service.ColumnService interface
func (m *MockColumnService) CreateColumn(
	ctx context.Context,
	boardID, actorID uuid.UUID,
	name string,
) (*domain.Column, error) {
	if m.CreateColumnFn != nil {
		return m.CreateColumnFn(ctx, boardID, actorID, name)
	}

	return m.Column, m.Err
}

// ListColumns implements the service.ColumnService interface
func (m *MockColumnService) ListColumns(
	ctx context.Context,
	boardID, userID uuid.UUID,
) ([]*domain.Column, error) {
	if m.ListColumnsFn != nil {
		return m.ListColumnsFn(ctx, boardID, userID)
	}

	return m.Columns, m.Err
}

// DeleteColumn implements the service.ColumnService interface
func (m *MockColumnService) DeleteColumn(
	ctx context.Context,
	columnID, userID uuid.UUID,
) error {
	if m.DeleteColumnFn != nil {
		return m.DeleteColumnFn(ctx, columnID, userID)
	}

	return m.Err
}

var _ service.ColumnService = (*MockColumnService)(nil)

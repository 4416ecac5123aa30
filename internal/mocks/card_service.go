package mocks

import (
	"context"

	"github.com/google/uuid"

	"github.com/boardflow/boardflow-api/internal/domain"
	"github.com/boardflow/boardflow-api/internal/service"
)

// MockCardService implements service.CardService for testing
type MockCardService struct {
	CreateCardFn      func(ctx context.Context, params service.CreateCardParams) (*domain.Card, error)
	GetCardFn         func(ctx context.Context, cardID, userID uuid.UUID) (*domain.Card, error)
	ListCardsFn       func(ctx context.Context, columnID, userID uuid.UUID) ([]*domain.Card, error)
	MoveCardFn        func(ctx context.Context, params service.MoveCardParams) (*domain.Card, error)
	UpdateCardFn      func(ctx context.Context, params service.UpdateCardParams) (*domain.Card, error)
	DeleteCardFn      func(ctx context.Context, cardID, userID uuid.UUID) error
	RebalanceColumnFn func(ctx context.Context, columnID, userID uuid.UUID) error

	// Default values used when functions aren't explicitly defined
	Card  *domain.Card
	Cards []*domain.Card
	Err   error
}

// CreateCard implements the service.CardService interface
func (m *MockCardService) CreateCard(
	ctx context.Context,
	params service.CreateCardParams,
) (*domain.Card, error) {
	if m.CreateCardFn != nil {
		return m.CreateCardFn(ctx, params)
	}

	return m.Card, m.Err
}

// GetCard implements the service.CardService interface
func (m *MockCardService) GetCard(
	ctx context.Context,
	cardID, userID uuid.UUID,
) (*domain.Card, error) {
	if m.GetCardFn != nil {
		return m.GetCardFn(ctx, cardID, userID)
	}

	return m.Card, m.Err
}

// ListCards implements the service.CardService interface
func (m *MockCardService) ListCards(
	ctx context.Context,
	columnID, userID uuid.UUID,
) ([]*domain.Card, error) {
	if m.ListCardsFn != nil {
		return m.ListCardsFn(ctx, columnID, userID)
	}

	return m.Cards, m.Err
}

// MoveCard implements the service.CardService interface
func (m *MockCardService) MoveCard(
	ctx context.Context,
	params service.MoveCardParams,
) (*domain.Card, error) {
	if m.MoveCardFn != nil {
		return m.MoveCardFn(ctx, params)
	}

	return m.Card, m.Err
}

// UpdateCard implements the service.CardService interface
func (m *MockCardService) UpdateCard(
	ctx context.Context,
	params service.UpdateCardParams,
) (*domain.Card, error) {
	if m.UpdateCardFn != nil {
		return m.UpdateCardFn(ctx, params)
	}

	return m.Card, m.Err
}

// DeleteCard implements the service.CardService interface
func (m *MockCardService) DeleteCard(ctx context.Context, cardID, userID uuid.UUID) error {
	if m.DeleteCardFn != nil {
		return m.DeleteCardFn(ctx, cardID, userID)
	}

	return m.Err
}

// RebalanceColumn implements the service.CardService interface
func (m *MockCardService) RebalanceColumn(
	ctx context.Context,
	columnID, userID uuid.UUID,
) error {
	if m.RebalanceColumnFn != nil {
		return m.RebalanceColumnFn(ctx, columnID, userID)
	}

	return m.Err
}

var _ service.CardService = (*MockCardService)(nil)

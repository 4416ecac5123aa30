package mocks

import (
	"context"

	"github.com/google/uuid"

	"github.com/boardflow/boardflow-api/internal/domain"
	"github.com/boardflow/boardflow-api/internal/service"
)

// MockNotificationService implements service.NotificationService for testing
type MockNotificationService struct {
	RecordActivityFn   func(ctx context.Context, params service.ActivityParams)
	CreateEventFn      func(ctx context.Context, params service.ActivityParams) (*domain.NotificationEvent, bool, error)
	FanOutFn           func(ctx context.Context, eventID uuid.UUID) error
	ListEventsFn       func(ctx context.Context, boardID, userID uuid.UUID, limit int) ([]*domain.NotificationEvent, error)
	ListDeliveriesFn   func(ctx context.Context, eventID, userID uuid.UUID) ([]*domain.NotificationDelivery, error)
	UpsertPreferenceFn func(ctx context.Context, params service.UpsertPreferenceParams) (*domain.NotificationPreference, error)
	ListPreferencesFn  func(ctx context.Context, userID uuid.UUID) ([]*domain.NotificationPreference, error)

	// Recorded holds every ActivityParams passed to the default RecordActivity
	Recorded []service.ActivityParams

	// Default values used when functions aren't explicitly defined
	Event       *domain.NotificationEvent
	Created     bool
	Events      []*domain.NotificationEvent
	Deliveries  []*domain.NotificationDelivery
	Preference  *domain.NotificationPreference
	Preferences []*domain.NotificationPreference
	Err         error
}

// RecordActivity implements the service.ActivityRecorder interface
func (m *MockNotificationService) RecordActivity(
	ctx context.Context,
	params service.ActivityParams,
) {
	if m.RecordActivityFn != nil {
		m.RecordActivityFn(ctx, params)
		return
	}

	m.Recorded = append(m.Recorded, params)
}

// CreateEvent implements the service.NotificationService interface
func (m *MockNotificationService) CreateEvent(
	ctx context.Context,
	params service.ActivityParams,
) (*domain.NotificationEvent, bool, error) {
	if m.CreateEventFn != nil {
		return m.CreateEventFn(ctx, params)
	}

	return m.Event, m.Created, m.Err
}

// FanOut implements the service.NotificationService interface
func (m *MockNotificationService) FanOut(ctx context.Context, eventID uuid.UUID) error {
	if m.FanOutFn != nil {
		return m.FanOutFn(ctx, eventID)
	}

	return m.Err
}

// ListEvents implements the service.NotificationService interface
func (m *MockNotificationService) ListEvents(
	ctx context.Context,
	boardID, userID uuid.UUID,
	limit int,
) ([]*domain.NotificationEvent, error) {
	if m.ListEventsFn != nil {
		return m.ListEventsFn(ctx, boardID, userID, limit)
	}

	return m.Events, m.Err
}

// ListDeliveries implements the service.NotificationService interface
func (m *MockNotificationService) ListDeliveries(
	ctx context.Context,
	eventID, userID uuid.UUID,
) ([]*domain.NotificationDelivery, error) {
	if m.ListDeliveriesFn != nil {
		return m.ListDeliveriesFn(ctx, eventID, userID)
	}

	return m.Deliveries, m.Err
}

// UpsertPreference implements the service.NotificationService interface
func (m *MockNotificationService) UpsertPreference(
	ctx context.Context,
	params service.UpsertPreferenceParams,
) (*domain.NotificationPreference, error) {
	if m.UpsertPreferenceFn != nil {
		return m.UpsertPreferenceFn(ctx, params)
	}

	return m.Preference, m.Err
}

// ListPreferences implements the service.NotificationService interface
func (m *MockNotificationService) ListPreferences(
	ctx context.Context,
	userID uuid.UUID,
) ([]*domain.NotificationPreference, error) {
	if m.ListPreferencesFn != nil {
		return m.ListPreferencesFn(ctx, userID)
	}

	return m.Preferences, m.Err
}

var _ service.NotificationService = (*MockNotificationService)(nil)

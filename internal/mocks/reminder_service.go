package mocks

import (
	"context"

	"github.com/google/uuid"

	"github.com/boardflow/boardflow-api/internal/domain"
	"github.com/boardflow/boardflow-api/internal/service"
)

// MockReminderService implements service.ReminderService for testing
type MockReminderService struct {
	CreateReminderFn    func(ctx context.Context, params service.CreateReminderParams) (*domain.DeadlineReminder, error)
	UpdateReminderFn    func(ctx context.Context, params service.UpdateReminderParams) (*domain.DeadlineReminder, error)
	ListRemindersFn     func(ctx context.Context, cardID, userID uuid.UUID) ([]*domain.DeadlineReminder, error)
	DeleteReminderFn    func(ctx context.Context, reminderID, userID uuid.UUID) error
	DeliverFn           func(ctx context.Context, reminderID, scheduleToken uuid.UUID) error
	ResyncSchedulesFn   func(ctx context.Context) error
	OnDeadlineChangedFn func(ctx context.Context, cardID uuid.UUID)

	// Default values used when functions aren't explicitly defined
	Reminder  *domain.DeadlineReminder
	Reminders []*domain.DeadlineReminder
	Err       error
}

// CreateReminder implements the service.ReminderService interface
func (m *MockReminderService) CreateReminder(
	ctx context.Context,
	params service.CreateReminderParams,
) (*domain.DeadlineReminder, error) {
	if m.CreateReminderFn != nil {
		return m.CreateReminderFn(ctx, params)
	}

	return m.Reminder, m.Err
}

// UpdateReminder implements the service.ReminderService interface
func (m *MockReminderService) UpdateReminder(
	ctx context.Context,
	params service.UpdateReminderParams,
) (*domain.DeadlineReminder, error) {
	if m.UpdateReminderFn != nil {
		return m.UpdateReminderFn(ctx, params)
	}

	return m.Reminder, m.Err
}

// ListReminders implements the service.ReminderService interface
func (m *MockReminderService) ListReminders(
	ctx context.Context,
	cardID, userID uuid.UUID,
) ([]*domain.DeadlineReminder, error) {
	if m.ListRemindersFn != nil {
		return m.ListRemindersFn(ctx, cardID, userID)
	}

	return m.Reminders, m.Err
}

// DeleteReminder implements the service.ReminderService interface
func (m *MockReminderService) DeleteReminder(
	ctx context.Context,
	reminderID, userID uuid.UUID,
) error {
	if m.DeleteReminderFn != nil {
		return m.DeleteReminderFn(ctx, reminderID, userID)
	}

	return m.Err
}

// Deliver implements the service.ReminderService interface
func (m *MockReminderService) Deliver(
	ctx context.Context,
	reminderID, scheduleToken uuid.UUID,
) error {
	if m.DeliverFn != nil {
		return m.DeliverFn(ctx, reminderID, scheduleToken)
	}

	return m.Err
}

// ResyncSchedules implements the service.ReminderService interface
func (m *MockReminderService) ResyncSchedules(ctx context.Context) error {
	if m.ResyncSchedulesFn != nil {
		return m.ResyncSchedulesFn(ctx)
	}

	return m.Err
}

// OnDeadlineChanged implements the service.ReminderService interface
func (m *MockReminderService) OnDeadlineChanged(ctx context.Context, cardID uuid.UUID) {
	if m.OnDeadlineChangedFn != nil {
		m.OnDeadlineChangedFn(ctx, cardID)
	}
}

var _ service.ReminderService = (*MockReminderService)(nil)

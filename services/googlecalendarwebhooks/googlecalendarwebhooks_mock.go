package googlecalendarwebhooks

import (
	"context"

	"github.com/samber/mo"
	"github.com/stretchr/testify/mock"

	"relaybackend/models"
)

// MockGoogleCalendarWebhooksService is a mock implementation of the GoogleCalendarWebhooksService interface
type MockGoogleCalendarWebhooksService struct {
	mock.Mock
}

func (m *MockGoogleCalendarWebhooksService) GetWebhook(
	ctx context.Context,
	integrationID string,
) (mo.Option[*models.GoogleCalendarWebhook], error) {
	args := m.Called(ctx, integrationID)
	if args.Get(0) == nil {
		return mo.None[*models.GoogleCalendarWebhook](), args.Error(1)
	}
	return args.Get(0).(mo.Option[*models.GoogleCalendarWebhook]), args.Error(1)
}

func (m *MockGoogleCalendarWebhooksService) ReplaceWebhook(
	ctx context.Context,
	webhook *models.GoogleCalendarWebhook,
) (mo.Option[*models.GoogleCalendarWebhook], error) {
	args := m.Called(ctx, webhook)
	if args.Get(0) == nil {
		return mo.None[*models.GoogleCalendarWebhook](), args.Error(1)
	}
	return args.Get(0).(mo.Option[*models.GoogleCalendarWebhook]), args.Error(1)
}

func (m *MockGoogleCalendarWebhooksService) DeleteWebhook(
	ctx context.Context,
	integrationID string,
) (mo.Option[*models.GoogleCalendarWebhook], error) {
	args := m.Called(ctx, integrationID)
	if args.Get(0) == nil {
		return mo.None[*models.GoogleCalendarWebhook](), args.Error(1)
	}
	return args.Get(0).(mo.Option[*models.GoogleCalendarWebhook]), args.Error(1)
}

func (m *MockGoogleCalendarWebhooksService) UpdateSyncToken(ctx context.Context, integrationID string, syncToken *string) error {
	args := m.Called(ctx, integrationID, syncToken)
	return args.Error(0)
}

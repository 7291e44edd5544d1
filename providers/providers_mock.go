package providers

import (
	"context"

	"github.com/stretchr/testify/mock"

	"relaybackend/models"
)

// MockAdapter is a mock implementation of the Adapter interface
type MockAdapter struct {
	mock.Mock
}

func (m *MockAdapter) Provider() models.Provider {
	args := m.Called()
	return args.Get(0).(models.Provider)
}

func (m *MockAdapter) Codenames() []models.Codename {
	args := m.Called()
	if args.Get(0) == nil {
		return nil
	}
	return args.Get(0).([]models.Codename)
}

func (m *MockAdapter) RegisterWebhook(
	ctx context.Context,
	guildID string,
	creds models.Credentials,
) (*models.WebhookRegistration, error) {
	args := m.Called(ctx, guildID, creds)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.WebhookRegistration), args.Error(1)
}

func (m *MockAdapter) TeardownWebhook(ctx context.Context, guildID string) error {
	args := m.Called(ctx, guildID)
	return args.Error(0)
}

func (m *MockAdapter) Verify(ctx context.Context, hook *models.InboundWebhook) error {
	args := m.Called(ctx, hook)
	return args.Error(0)
}

func (m *MockAdapter) Fetch(ctx context.Context, hook *models.InboundWebhook) ([]models.ProviderEvent, error) {
	args := m.Called(ctx, hook)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]models.ProviderEvent), args.Error(1)
}

func (m *MockAdapter) Classify(event models.ProviderEvent) (models.Codename, bool) {
	args := m.Called(event)
	return args.Get(0).(models.Codename), args.Bool(1)
}

func (m *MockAdapter) Render(event models.ProviderEvent, codename models.Codename) (*models.Notification, error) {
	args := m.Called(event, codename)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Notification), args.Error(1)
}

// NewMockAdapter returns a mock whose Provider and Codenames are already stubbed
// with the provider's full catalog, so it passes registry validation.
func NewMockAdapter(provider models.Provider) *MockAdapter {
	adapter := &MockAdapter{}
	codenames := make([]models.Codename, 0)
	for _, entry := range models.NotificationCatalog(provider) {
		codenames = append(codenames, entry.Codename)
	}
	adapter.On("Provider").Return(provider).Maybe()
	adapter.On("Codenames").Return(codenames).Maybe()
	return adapter
}

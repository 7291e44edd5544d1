package integrations

import (
	"context"

	"github.com/samber/mo"
	"github.com/stretchr/testify/mock"

	"relaybackend/models"
)

// MockIntegrationsService is a mock implementation of the IntegrationsService interface
type MockIntegrationsService struct {
	mock.Mock
}

func (m *MockIntegrationsService) CreateIntegration(
	ctx context.Context,
	guildID string,
	provider models.Provider,
	channelID string,
) (*models.Integration, error) {
	args := m.Called(ctx, guildID, provider, channelID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Integration), args.Error(1)
}

func (m *MockIntegrationsService) GetIntegration(
	ctx context.Context,
	guildID string,
	provider models.Provider,
) (mo.Option[*models.Integration], error) {
	args := m.Called(ctx, guildID, provider)
	if args.Get(0) == nil {
		return mo.None[*models.Integration](), args.Error(1)
	}
	return args.Get(0).(mo.Option[*models.Integration]), args.Error(1)
}

func (m *MockIntegrationsService) GetIntegrationByID(ctx context.Context, id string) (mo.Option[*models.Integration], error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return mo.None[*models.Integration](), args.Error(1)
	}
	return args.Get(0).(mo.Option[*models.Integration]), args.Error(1)
}

func (m *MockIntegrationsService) GetIntegrationsByGuildID(ctx context.Context, guildID string) ([]*models.Integration, error) {
	args := m.Called(ctx, guildID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*models.Integration), args.Error(1)
}

func (m *MockIntegrationsService) UpdateIntegration(
	ctx context.Context,
	guildID string,
	provider models.Provider,
	update models.IntegrationUpdate,
) (*models.Integration, error) {
	args := m.Called(ctx, guildID, provider, update)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Integration), args.Error(1)
}

func (m *MockIntegrationsService) DeleteIntegrationsByGuildID(ctx context.Context, guildID string) (int64, error) {
	args := m.Called(ctx, guildID)
	return args.Get(0).(int64), args.Error(1)
}

func (m *MockIntegrationsService) GetCredentials(ctx context.Context, integrationID string) (models.Credentials, error) {
	args := m.Called(ctx, integrationID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(models.Credentials), args.Error(1)
}

func (m *MockIntegrationsService) SaveCredentials(
	ctx context.Context,
	integration *models.Integration,
	creds models.Credentials,
) error {
	args := m.Called(ctx, integration, creds)
	return args.Error(0)
}

func (m *MockIntegrationsService) ClearCredentials(ctx context.Context, integrationID string) error {
	args := m.Called(ctx, integrationID)
	return args.Error(0)
}

func (m *MockIntegrationsService) GetServiceNames(
	ctx context.Context,
	integrationID string,
	serviceType models.ServiceType,
) ([]string, error) {
	args := m.Called(ctx, integrationID, serviceType)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]string), args.Error(1)
}

func (m *MockIntegrationsService) EnableServices(
	ctx context.Context,
	integration *models.Integration,
	serviceType models.ServiceType,
	names []string,
) ([]string, error) {
	args := m.Called(ctx, integration, serviceType, names)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]string), args.Error(1)
}

func (m *MockIntegrationsService) DisableServices(
	ctx context.Context,
	integration *models.Integration,
	serviceType models.ServiceType,
	names []string,
) ([]string, error) {
	args := m.Called(ctx, integration, serviceType, names)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]string), args.Error(1)
}

func (m *MockIntegrationsService) GetSettings(
	ctx context.Context,
	guildID string,
	provider models.Provider,
) (mo.Option[*models.IntegrationSettings], error) {
	args := m.Called(ctx, guildID, provider)
	if args.Get(0) == nil {
		return mo.None[*models.IntegrationSettings](), args.Error(1)
	}
	return args.Get(0).(mo.Option[*models.IntegrationSettings]), args.Error(1)
}

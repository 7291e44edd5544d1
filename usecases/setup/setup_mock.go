package setup

import (
	"context"

	"github.com/stretchr/testify/mock"

	"relaybackend/models"
)

// MockSetupUseCase is a mock implementation of the SetupUseCase
type MockSetupUseCase struct {
	mock.Mock
}

func (m *MockSetupUseCase) OnboardGuild(ctx context.Context, guildID, channelID string) ([]*models.Integration, error) {
	args := m.Called(ctx, guildID, channelID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*models.Integration), args.Error(1)
}

func (m *MockSetupUseCase) RemoveGuild(ctx context.Context, guildID string) (int64, error) {
	args := m.Called(ctx, guildID)
	return args.Get(0).(int64), args.Error(1)
}

func (m *MockSetupUseCase) UpdateCredentials(
	ctx context.Context,
	guildID string,
	provider models.Provider,
	creds models.Credentials,
) (*models.WebhookRegistration, error) {
	args := m.Called(ctx, guildID, provider, creds)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.WebhookRegistration), args.Error(1)
}

func (m *MockSetupUseCase) ClearCredentials(ctx context.Context, guildID string, provider models.Provider) error {
	args := m.Called(ctx, guildID, provider)
	return args.Error(0)
}

func (m *MockSetupUseCase) UpdateIntegration(
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

func (m *MockSetupUseCase) GetSettings(
	ctx context.Context,
	guildID string,
	provider models.Provider,
) (*models.IntegrationSettings, error) {
	args := m.Called(ctx, guildID, provider)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.IntegrationSettings), args.Error(1)
}

func (m *MockSetupUseCase) EnableServices(
	ctx context.Context,
	guildID string,
	provider models.Provider,
	serviceType models.ServiceType,
	names []string,
) ([]string, error) {
	args := m.Called(ctx, guildID, provider, serviceType, names)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]string), args.Error(1)
}

func (m *MockSetupUseCase) DisableServices(
	ctx context.Context,
	guildID string,
	provider models.Provider,
	serviceType models.ServiceType,
	names []string,
) ([]string, error) {
	args := m.Called(ctx, guildID, provider, serviceType, names)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]string), args.Error(1)
}

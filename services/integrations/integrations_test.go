package integrations

import (
	"context"
	"errors"
	"testing"

	"github.com/samber/mo"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"relaybackend/core"
	"relaybackend/models"
	"relaybackend/services"
	"relaybackend/services/txmanager"
)

type mockIntegrationsRepo struct{ mock.Mock }

func (m *mockIntegrationsRepo) CreateIntegration(ctx context.Context, integration *models.Integration) error {
	return m.Called(ctx, integration).Error(0)
}

func (m *mockIntegrationsRepo) GetIntegrationByGuildAndProvider(
	ctx context.Context,
	guildID string,
	provider models.Provider,
) (mo.Option[*models.Integration], error) {
	args := m.Called(ctx, guildID, provider)
	return args.Get(0).(mo.Option[*models.Integration]), args.Error(1)
}

func (m *mockIntegrationsRepo) GetIntegrationsByGuildID(ctx context.Context, guildID string) ([]*models.Integration, error) {
	args := m.Called(ctx, guildID)
	return args.Get(0).([]*models.Integration), args.Error(1)
}

func (m *mockIntegrationsRepo) GetIntegrationByID(ctx context.Context, id string) (mo.Option[*models.Integration], error) {
	args := m.Called(ctx, id)
	return args.Get(0).(mo.Option[*models.Integration]), args.Error(1)
}

func (m *mockIntegrationsRepo) UpdateIntegration(
	ctx context.Context,
	id string,
	update models.IntegrationUpdate,
) (mo.Option[*models.Integration], error) {
	args := m.Called(ctx, id, update)
	return args.Get(0).(mo.Option[*models.Integration]), args.Error(1)
}

func (m *mockIntegrationsRepo) DeleteIntegrationsByGuildID(ctx context.Context, guildID string) (int64, error) {
	args := m.Called(ctx, guildID)
	return args.Get(0).(int64), args.Error(1)
}

type mockCredentialsRepo struct{ mock.Mock }

func (m *mockCredentialsRepo) CreateEmptyCredentials(ctx context.Context, integrationID string, names []string) error {
	return m.Called(ctx, integrationID, names).Error(0)
}

func (m *mockCredentialsRepo) GetCredentials(ctx context.Context, integrationID string) ([]*models.Credential, error) {
	args := m.Called(ctx, integrationID)
	return args.Get(0).([]*models.Credential), args.Error(1)
}

func (m *mockCredentialsRepo) UpsertCredential(ctx context.Context, integrationID, name, value string) error {
	return m.Called(ctx, integrationID, name, value).Error(0)
}

func (m *mockCredentialsRepo) ClearCredentials(ctx context.Context, integrationID string) error {
	return m.Called(ctx, integrationID).Error(0)
}

type mockServicesRepo struct{ mock.Mock }

func (m *mockServicesRepo) GetServiceNames(
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

func (m *mockServicesRepo) AddService(
	ctx context.Context,
	integrationID string,
	serviceType models.ServiceType,
	serviceName string,
) (bool, error) {
	args := m.Called(ctx, integrationID, serviceType, serviceName)
	return args.Bool(0), args.Error(1)
}

func (m *mockServicesRepo) RemoveService(
	ctx context.Context,
	integrationID string,
	serviceType models.ServiceType,
	serviceName string,
) (bool, error) {
	args := m.Called(ctx, integrationID, serviceType, serviceName)
	return args.Bool(0), args.Error(1)
}

type fixture struct {
	service          *IntegrationsService
	integrationsRepo *mockIntegrationsRepo
	credentialsRepo  *mockCredentialsRepo
	servicesRepo     *mockServicesRepo
	tx               *txmanager.PassthroughTransactionManager
}

func newFixture() *fixture {
	f := &fixture{
		integrationsRepo: &mockIntegrationsRepo{},
		credentialsRepo:  &mockCredentialsRepo{},
		servicesRepo:     &mockServicesRepo{},
		tx:               &txmanager.PassthroughTransactionManager{},
	}
	f.service = NewIntegrationsService(f.integrationsRepo, f.credentialsRepo, f.servicesRepo, f.tx)
	return f
}

func TestIntegrationsService_ImplementsInterface(t *testing.T) {
	var _ services.IntegrationsService = (*IntegrationsService)(nil)
	var _ services.IntegrationsService = (*MockIntegrationsService)(nil)
}

func TestIntegrationsService_CreateIntegration(t *testing.T) {
	ctx := context.Background()

	t.Run("creates row and empty credential batch in one transaction", func(t *testing.T) {
		f := newFixture()
		f.integrationsRepo.On("CreateIntegration", ctx, mock.MatchedBy(func(i *models.Integration) bool {
			return i.GuildID == "guild-1" && i.Provider == models.ProviderTrello && i.Enabled && core.IsValidULID(i.ID)
		})).Return(nil)
		f.credentialsRepo.On("CreateEmptyCredentials", ctx, mock.AnythingOfType("string"),
			models.ProviderTrello.CredentialNames()).Return(nil)

		integration, err := f.service.CreateIntegration(ctx, "guild-1", models.ProviderTrello, "channel-1")
		require.NoError(t, err)
		assert.Equal(t, "channel-1", integration.DiscordChannelID)
		assert.Equal(t, 1, f.tx.Calls)
		f.integrationsRepo.AssertExpectations(t)
		f.credentialsRepo.AssertExpectations(t)
	})

	t.Run("rejects unknown provider", func(t *testing.T) {
		f := newFixture()
		_, err := f.service.CreateIntegration(ctx, "guild-1", models.Provider("jira"), "channel-1")
		assert.ErrorContains(t, err, "unknown provider")
	})

	t.Run("rejects empty guild", func(t *testing.T) {
		f := newFixture()
		_, err := f.service.CreateIntegration(ctx, " ", models.ProviderGitHub, "channel-1")
		assert.Error(t, err)
	})
}

func TestIntegrationsService_SaveCredentials(t *testing.T) {
	ctx := context.Background()
	integration := &models.Integration{ID: core.NewID("int"), Provider: models.ProviderGitHub}

	t.Run("writes every catalog name", func(t *testing.T) {
		f := newFixture()
		f.credentialsRepo.On("UpsertCredential", ctx, integration.ID, models.CredentialGitHubToken, "ghp_x").Return(nil)
		f.credentialsRepo.On("UpsertCredential", ctx, integration.ID, models.CredentialGitHubOrganization, "acme").Return(nil)

		err := f.service.SaveCredentials(ctx, integration, models.Credentials{
			models.CredentialGitHubToken:        "ghp_x",
			models.CredentialGitHubOrganization: "acme",
		})
		require.NoError(t, err)
		f.credentialsRepo.AssertExpectations(t)
	})

	t.Run("incomplete batch is not configured", func(t *testing.T) {
		f := newFixture()
		err := f.service.SaveCredentials(ctx, integration, models.Credentials{models.CredentialGitHubToken: "ghp_x"})
		assert.ErrorIs(t, err, core.ErrNotConfigured)
		f.credentialsRepo.AssertNotCalled(t, "UpsertCredential")
	})

	t.Run("foreign credential name", func(t *testing.T) {
		f := newFixture()
		err := f.service.SaveCredentials(ctx, integration, models.Credentials{
			models.CredentialGitHubToken:        "ghp_x",
			models.CredentialGitHubOrganization: "acme",
			models.CredentialTrelloAPIKey:       "key",
		})
		assert.ErrorContains(t, err, "unknown github credential")
	})

	t.Run("store failure is wrapped", func(t *testing.T) {
		f := newFixture()
		f.credentialsRepo.On("UpsertCredential", ctx, integration.ID, mock.Anything, mock.Anything).
			Return(errors.New("connection reset"))

		err := f.service.SaveCredentials(ctx, integration, models.Credentials{
			models.CredentialGitHubToken:        "ghp_x",
			models.CredentialGitHubOrganization: "acme",
		})
		assert.ErrorContains(t, err, "failed to save credentials: connection reset")
	})
}

func TestIntegrationsService_EnableServices(t *testing.T) {
	ctx := context.Background()
	integration := &models.Integration{ID: core.NewID("int"), Provider: models.ProviderTrello}

	t.Run("returns newly added names only", func(t *testing.T) {
		f := newFixture()
		f.servicesRepo.On("AddService", ctx, integration.ID, models.ServiceTypeNotification, "Card Created").Return(true, nil)
		f.servicesRepo.On("AddService", ctx, integration.ID, models.ServiceTypeNotification, "Card Move").Return(false, nil)

		added, err := f.service.EnableServices(ctx, integration, models.ServiceTypeNotification, []string{"Card Created", "Card Move"})
		require.NoError(t, err)
		assert.Equal(t, []string{"Card Created"}, added)
	})

	t.Run("rejects names outside the catalog", func(t *testing.T) {
		f := newFixture()
		_, err := f.service.EnableServices(ctx, integration, models.ServiceTypeNotification, []string{"Push"})
		assert.ErrorContains(t, err, `"Push" is not a Trello notification`)
		f.servicesRepo.AssertNotCalled(t, "AddService")
	})

	t.Run("commands use the command catalog", func(t *testing.T) {
		f := newFixture()
		f.servicesRepo.On("AddService", ctx, integration.ID, models.ServiceTypeCommand, "tmove").Return(true, nil)

		added, err := f.service.EnableServices(ctx, integration, models.ServiceTypeCommand, []string{"tmove"})
		require.NoError(t, err)
		assert.Equal(t, []string{"tmove"}, added)
	})
}

func TestIntegrationsService_UpdateIntegration(t *testing.T) {
	ctx := context.Background()
	integration := &models.Integration{ID: core.NewID("int"), GuildID: "guild-1", Provider: models.ProviderGitHub}

	t.Run("missing integration is not found", func(t *testing.T) {
		f := newFixture()
		f.integrationsRepo.On("GetIntegrationByGuildAndProvider", ctx, "guild-1", models.ProviderGitHub).
			Return(mo.None[*models.Integration](), nil)

		enabled := false
		_, err := f.service.UpdateIntegration(ctx, "guild-1", models.ProviderGitHub, models.IntegrationUpdate{Enabled: &enabled})
		assert.True(t, core.IsNotFoundError(err))
	})

	t.Run("updates channel", func(t *testing.T) {
		f := newFixture()
		channel := "channel-2"
		update := models.IntegrationUpdate{DiscordChannelID: &channel}
		f.integrationsRepo.On("GetIntegrationByGuildAndProvider", ctx, "guild-1", models.ProviderGitHub).
			Return(mo.Some(integration), nil)
		f.integrationsRepo.On("UpdateIntegration", ctx, integration.ID, update).
			Return(mo.Some(&models.Integration{ID: integration.ID, DiscordChannelID: channel}), nil)

		updated, err := f.service.UpdateIntegration(ctx, "guild-1", models.ProviderGitHub, update)
		require.NoError(t, err)
		assert.Equal(t, "channel-2", updated.DiscordChannelID)
	})

	t.Run("blank channel rejected", func(t *testing.T) {
		f := newFixture()
		channel := ""
		_, err := f.service.UpdateIntegration(ctx, "guild-1", models.ProviderGitHub, models.IntegrationUpdate{DiscordChannelID: &channel})
		assert.Error(t, err)
	})
}

func TestIntegrationsService_GetSettings(t *testing.T) {
	ctx := context.Background()
	integration := &models.Integration{ID: core.NewID("int"), GuildID: "guild-1", Provider: models.ProviderGitHub}

	f := newFixture()
	f.integrationsRepo.On("GetIntegrationByGuildAndProvider", ctx, "guild-1", models.ProviderGitHub).
		Return(mo.Some(integration), nil)
	f.credentialsRepo.On("GetCredentials", ctx, integration.ID).Return([]*models.Credential{
		{IntegrationID: integration.ID, Name: models.CredentialGitHubToken, Value: "ghp_x"},
		{IntegrationID: integration.ID, Name: models.CredentialGitHubOrganization, Value: ""},
	}, nil)
	f.servicesRepo.On("GetServiceNames", ctx, integration.ID, models.ServiceTypeNotification).Return([]string{"Push"}, nil)
	f.servicesRepo.On("GetServiceNames", ctx, integration.ID, models.ServiceTypeCommand).Return(nil, nil)

	maybeSettings, err := f.service.GetSettings(ctx, "guild-1", models.ProviderGitHub)
	require.NoError(t, err)
	settings, ok := maybeSettings.Get()
	require.True(t, ok)
	assert.False(t, settings.Configured)
	assert.Equal(t, []string{"Push"}, settings.Notifications)
	assert.Equal(t, []string{}, settings.Commands)
}

package integrations

import (
	"context"
	"fmt"
	"log"
	"strings"

	"github.com/samber/mo"

	"relaybackend/core"
	"relaybackend/models"
	"relaybackend/services"
)

type IntegrationsRepository interface {
	CreateIntegration(ctx context.Context, integration *models.Integration) error
	GetIntegrationByGuildAndProvider(
		ctx context.Context,
		guildID string,
		provider models.Provider,
	) (mo.Option[*models.Integration], error)
	GetIntegrationsByGuildID(ctx context.Context, guildID string) ([]*models.Integration, error)
	GetIntegrationByID(ctx context.Context, id string) (mo.Option[*models.Integration], error)
	UpdateIntegration(
		ctx context.Context,
		id string,
		update models.IntegrationUpdate,
	) (mo.Option[*models.Integration], error)
	DeleteIntegrationsByGuildID(ctx context.Context, guildID string) (int64, error)
}

type CredentialsRepository interface {
	CreateEmptyCredentials(ctx context.Context, integrationID string, names []string) error
	GetCredentials(ctx context.Context, integrationID string) ([]*models.Credential, error)
	UpsertCredential(ctx context.Context, integrationID, name, value string) error
	ClearCredentials(ctx context.Context, integrationID string) error
}

type IntegrationServicesRepository interface {
	GetServiceNames(ctx context.Context, integrationID string, serviceType models.ServiceType) ([]string, error)
	AddService(ctx context.Context, integrationID string, serviceType models.ServiceType, serviceName string) (bool, error)
	RemoveService(
		ctx context.Context,
		integrationID string,
		serviceType models.ServiceType,
		serviceName string,
	) (bool, error)
}

type IntegrationsService struct {
	integrationsRepo IntegrationsRepository
	credentialsRepo  CredentialsRepository
	servicesRepo     IntegrationServicesRepository
	txManager        services.TransactionManager
}

func NewIntegrationsService(
	integrationsRepo IntegrationsRepository,
	credentialsRepo CredentialsRepository,
	servicesRepo IntegrationServicesRepository,
	txManager services.TransactionManager,
) *IntegrationsService {
	return &IntegrationsService{
		integrationsRepo: integrationsRepo,
		credentialsRepo:  credentialsRepo,
		servicesRepo:     servicesRepo,
		txManager:        txManager,
	}
}

// CreateIntegration creates the integration row together with its empty credential batch
func (s *IntegrationsService) CreateIntegration(
	ctx context.Context,
	guildID string,
	provider models.Provider,
	channelID string,
) (*models.Integration, error) {
	log.Printf("📋 Starting to create %s integration for guild: %s", provider, guildID)
	if strings.TrimSpace(guildID) == "" {
		return nil, fmt.Errorf("guild ID cannot be empty: %w", core.ErrInvalidInput)
	}
	if _, ok := models.ParseProvider(string(provider)); !ok {
		return nil, fmt.Errorf("unknown provider: %s: %w", provider, core.ErrInvalidInput)
	}

	integration := &models.Integration{
		ID:               core.NewID("int"),
		GuildID:          guildID,
		Provider:         provider,
		DiscordChannelID: channelID,
		Enabled:          true,
	}

	err := s.txManager.WithTransaction(ctx, func(ctx context.Context) error {
		if err := s.integrationsRepo.CreateIntegration(ctx, integration); err != nil {
			return err
		}
		return s.credentialsRepo.CreateEmptyCredentials(ctx, integration.ID, provider.CredentialNames())
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create integration: %w", err)
	}

	log.Printf("📋 Completed successfully - created %s integration %s for guild: %s", provider, integration.ID, guildID)
	return integration, nil
}

func (s *IntegrationsService) GetIntegration(
	ctx context.Context,
	guildID string,
	provider models.Provider,
) (mo.Option[*models.Integration], error) {
	if strings.TrimSpace(guildID) == "" {
		return mo.None[*models.Integration](), fmt.Errorf("guild ID cannot be empty: %w", core.ErrInvalidInput)
	}

	maybeIntegration, err := s.integrationsRepo.GetIntegrationByGuildAndProvider(ctx, guildID, provider)
	if err != nil {
		return mo.None[*models.Integration](), fmt.Errorf("failed to get integration: %w", err)
	}
	return maybeIntegration, nil
}

func (s *IntegrationsService) GetIntegrationByID(ctx context.Context, id string) (mo.Option[*models.Integration], error) {
	if !core.IsValidULID(id) {
		return mo.None[*models.Integration](), fmt.Errorf("integration ID must be a valid ULID")
	}

	maybeIntegration, err := s.integrationsRepo.GetIntegrationByID(ctx, id)
	if err != nil {
		return mo.None[*models.Integration](), fmt.Errorf("failed to get integration by ID: %w", err)
	}
	return maybeIntegration, nil
}

func (s *IntegrationsService) GetIntegrationsByGuildID(ctx context.Context, guildID string) ([]*models.Integration, error) {
	integrations, err := s.integrationsRepo.GetIntegrationsByGuildID(ctx, guildID)
	if err != nil {
		return nil, fmt.Errorf("failed to get integrations for guild: %w", err)
	}
	return integrations, nil
}

func (s *IntegrationsService) UpdateIntegration(
	ctx context.Context,
	guildID string,
	provider models.Provider,
	update models.IntegrationUpdate,
) (*models.Integration, error) {
	log.Printf("📋 Starting to update %s integration for guild: %s", provider, guildID)
	if update.DiscordChannelID != nil && strings.TrimSpace(*update.DiscordChannelID) == "" {
		return nil, fmt.Errorf("discord channel ID cannot be empty: %w", core.ErrInvalidInput)
	}

	integration, err := s.mustGetIntegration(ctx, guildID, provider)
	if err != nil {
		return nil, err
	}

	maybeUpdated, err := s.integrationsRepo.UpdateIntegration(ctx, integration.ID, update)
	if err != nil {
		return nil, fmt.Errorf("failed to update integration: %w", err)
	}
	updated, ok := maybeUpdated.Get()
	if !ok {
		return nil, fmt.Errorf("integration %s disappeared during update: %w", integration.ID, core.ErrNotFound)
	}

	log.Printf("📋 Completed successfully - updated integration %s (channel: %s, enabled: %t)",
		updated.ID, updated.DiscordChannelID, updated.Enabled)
	return updated, nil
}

func (s *IntegrationsService) DeleteIntegrationsByGuildID(ctx context.Context, guildID string) (int64, error) {
	log.Printf("📋 Starting to delete integrations for guild: %s", guildID)
	if strings.TrimSpace(guildID) == "" {
		return 0, fmt.Errorf("guild ID cannot be empty: %w", core.ErrInvalidInput)
	}

	deleted, err := s.integrationsRepo.DeleteIntegrationsByGuildID(ctx, guildID)
	if err != nil {
		return 0, fmt.Errorf("failed to delete integrations: %w", err)
	}

	log.Printf("📋 Completed successfully - deleted %d integrations for guild: %s", deleted, guildID)
	return deleted, nil
}

func (s *IntegrationsService) GetCredentials(ctx context.Context, integrationID string) (models.Credentials, error) {
	rows, err := s.credentialsRepo.GetCredentials(ctx, integrationID)
	if err != nil {
		return nil, fmt.Errorf("failed to get credentials: %w", err)
	}
	return models.CredentialsFromRows(rows), nil
}

// SaveCredentials writes the whole batch in one transaction. Names outside the provider's
// catalog are rejected and every catalog name must be present.
func (s *IntegrationsService) SaveCredentials(
	ctx context.Context,
	integration *models.Integration,
	creds models.Credentials,
) error {
	log.Printf("📋 Starting to save credentials for integration: %s", integration.ID)
	for name := range creds {
		if !integration.Provider.IsCredentialName(name) {
			return fmt.Errorf("unknown %s credential: %q: %w", integration.Provider, name, core.ErrInvalidInput)
		}
	}
	if missing := creds.MissingNames(integration.Provider); len(missing) > 0 {
		return fmt.Errorf("missing %s credentials %v: %w", integration.Provider, missing, core.ErrNotConfigured)
	}

	err := s.txManager.WithTransaction(ctx, func(ctx context.Context) error {
		for _, name := range integration.Provider.CredentialNames() {
			if err := s.credentialsRepo.UpsertCredential(ctx, integration.ID, name, creds.Get(name)); err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		return fmt.Errorf("failed to save credentials: %w", err)
	}

	log.Printf("📋 Completed successfully - saved %d credentials for integration: %s", len(creds), integration.ID)
	return nil
}

func (s *IntegrationsService) ClearCredentials(ctx context.Context, integrationID string) error {
	log.Printf("📋 Starting to clear credentials for integration: %s", integrationID)
	if err := s.credentialsRepo.ClearCredentials(ctx, integrationID); err != nil {
		return fmt.Errorf("failed to clear credentials: %w", err)
	}
	log.Printf("📋 Completed successfully - cleared credentials for integration: %s", integrationID)
	return nil
}

func (s *IntegrationsService) GetServiceNames(
	ctx context.Context,
	integrationID string,
	serviceType models.ServiceType,
) ([]string, error) {
	names, err := s.servicesRepo.GetServiceNames(ctx, integrationID, serviceType)
	if err != nil {
		return nil, fmt.Errorf("failed to get service names: %w", err)
	}
	return names, nil
}

// EnableServices subscribes to catalog entries and returns the names that were newly added
func (s *IntegrationsService) EnableServices(
	ctx context.Context,
	integration *models.Integration,
	serviceType models.ServiceType,
	names []string,
) ([]string, error) {
	log.Printf("📋 Starting to enable %d %s services for integration: %s", len(names), serviceType, integration.ID)
	if err := validateServiceNames(integration.Provider, serviceType, names); err != nil {
		return nil, err
	}

	var added []string
	err := s.txManager.WithTransaction(ctx, func(ctx context.Context) error {
		for _, name := range names {
			ok, err := s.servicesRepo.AddService(ctx, integration.ID, serviceType, name)
			if err != nil {
				return err
			}
			if ok {
				added = append(added, name)
			}
		}
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("failed to enable services: %w", err)
	}

	log.Printf("📋 Completed successfully - enabled %d new %s services for integration: %s", len(added), serviceType, integration.ID)
	return added, nil
}

// DisableServices returns the names that were actually removed
func (s *IntegrationsService) DisableServices(
	ctx context.Context,
	integration *models.Integration,
	serviceType models.ServiceType,
	names []string,
) ([]string, error) {
	log.Printf("📋 Starting to disable %d %s services for integration: %s", len(names), serviceType, integration.ID)
	if err := validateServiceNames(integration.Provider, serviceType, names); err != nil {
		return nil, err
	}

	var removed []string
	err := s.txManager.WithTransaction(ctx, func(ctx context.Context) error {
		for _, name := range names {
			ok, err := s.servicesRepo.RemoveService(ctx, integration.ID, serviceType, name)
			if err != nil {
				return err
			}
			if ok {
				removed = append(removed, name)
			}
		}
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("failed to disable services: %w", err)
	}

	log.Printf("📋 Completed successfully - disabled %d %s services for integration: %s", len(removed), serviceType, integration.ID)
	return removed, nil
}

func (s *IntegrationsService) GetSettings(
	ctx context.Context,
	guildID string,
	provider models.Provider,
) (mo.Option[*models.IntegrationSettings], error) {
	maybeIntegration, err := s.GetIntegration(ctx, guildID, provider)
	if err != nil {
		return mo.None[*models.IntegrationSettings](), err
	}
	integration, ok := maybeIntegration.Get()
	if !ok {
		return mo.None[*models.IntegrationSettings](), nil
	}

	creds, err := s.GetCredentials(ctx, integration.ID)
	if err != nil {
		return mo.None[*models.IntegrationSettings](), err
	}
	notifications, err := s.GetServiceNames(ctx, integration.ID, models.ServiceTypeNotification)
	if err != nil {
		return mo.None[*models.IntegrationSettings](), err
	}
	commands, err := s.GetServiceNames(ctx, integration.ID, models.ServiceTypeCommand)
	if err != nil {
		return mo.None[*models.IntegrationSettings](), err
	}

	return mo.Some(&models.IntegrationSettings{
		Integration:   integration,
		Configured:    creds.IsConfigured(provider),
		Notifications: nonNil(notifications),
		Commands:      nonNil(commands),
	}), nil
}

func (s *IntegrationsService) mustGetIntegration(
	ctx context.Context,
	guildID string,
	provider models.Provider,
) (*models.Integration, error) {
	maybeIntegration, err := s.GetIntegration(ctx, guildID, provider)
	if err != nil {
		return nil, err
	}
	integration, ok := maybeIntegration.Get()
	if !ok {
		return nil, fmt.Errorf("%s integration for guild %s: %w", provider, guildID, core.ErrNotFound)
	}
	return integration, nil
}

func validateServiceNames(provider models.Provider, serviceType models.ServiceType, names []string) error {
	if len(names) == 0 {
		return fmt.Errorf("at least one service name is required: %w", core.ErrInvalidInput)
	}
	for _, name := range names {
		var known bool
		switch serviceType {
		case models.ServiceTypeNotification:
			known = models.IsNotificationName(provider, name)
		case models.ServiceTypeCommand:
			known = models.IsCommandName(provider, name)
		default:
			return fmt.Errorf("unknown service type: %s: %w", serviceType, core.ErrInvalidInput)
		}
		if !known {
			return fmt.Errorf("%q is not a %s %s: %w", name, provider.DisplayName(), serviceType, core.ErrInvalidInput)
		}
	}
	return nil
}

func nonNil(names []string) []string {
	if names == nil {
		return []string{}
	}
	return names
}

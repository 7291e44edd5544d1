package setup

import (
	"context"
	"fmt"
	"log"
	"sort"
	"strings"

	"relaybackend/core"
	"relaybackend/models"
	"relaybackend/providers"
	"relaybackend/services"
	"relaybackend/utils"
)

// SetupUseCase covers the administrative flows: guild onboarding and removal,
// credential changes with their webhook registration, and subscription settings.
type SetupUseCase struct {
	registry            *providers.Registry
	integrationsService services.IntegrationsService
	txManager           services.TransactionManager
}

func NewSetupUseCase(
	registry *providers.Registry,
	integrationsService services.IntegrationsService,
	txManager services.TransactionManager,
) *SetupUseCase {
	return &SetupUseCase{
		registry:            registry,
		integrationsService: integrationsService,
		txManager:           txManager,
	}
}

// OnboardGuild creates the missing integrations of a guild with empty credentials.
// Running it again for a known guild creates nothing.
func (u *SetupUseCase) OnboardGuild(ctx context.Context, guildID, channelID string) ([]*models.Integration, error) {
	log.Printf("📋 Starting to onboard guild %s", guildID)

	var result []*models.Integration
	err := u.txManager.WithTransaction(ctx, func(ctx context.Context) error {
		result = nil
		for _, provider := range models.AllProviders {
			maybeIntegration, err := u.integrationsService.GetIntegration(ctx, guildID, provider)
			if err != nil {
				return err
			}
			if existing, ok := maybeIntegration.Get(); ok {
				result = append(result, existing)
				continue
			}

			integration, err := u.integrationsService.CreateIntegration(ctx, guildID, provider, channelID)
			if err != nil {
				return err
			}
			result = append(result, integration)
		}
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("failed to onboard guild: %w", err)
	}

	log.Printf("📋 Completed successfully - guild %s has %d integrations", guildID, len(result))
	return result, nil
}

// RemoveGuild tears down every provider webhook and deletes the guild's integrations.
// Teardown is best-effort so a revoked token cannot block removal.
func (u *SetupUseCase) RemoveGuild(ctx context.Context, guildID string) (int64, error) {
	log.Printf("📋 Starting to remove guild %s", guildID)
	for _, adapter := range u.registry.All() {
		if err := adapter.TeardownWebhook(ctx, guildID); err != nil {
			log.Printf("⚠️ Failed to tear down %s webhooks for guild %s: %v", adapter.Provider(), guildID, err)
		}
	}

	deleted, err := u.integrationsService.DeleteIntegrationsByGuildID(ctx, guildID)
	if err != nil {
		return 0, fmt.Errorf("failed to remove guild: %w", err)
	}

	log.Printf("📋 Completed successfully - removed %d integrations of guild %s", deleted, guildID)
	return deleted, nil
}

// UpdateCredentials replaces an integration's credential batch and re-registers its webhook.
// Webhooks of the previous credentials are torn down first. If registration fails the whole
// batch is cleared so the integration never looks half-configured.
func (u *SetupUseCase) UpdateCredentials(
	ctx context.Context,
	guildID string,
	provider models.Provider,
	creds models.Credentials,
) (*models.WebhookRegistration, error) {
	log.Printf("📋 Starting to update %s credentials for guild %s", provider, guildID)
	adapter, integration, err := u.resolve(ctx, guildID, provider)
	if err != nil {
		return nil, err
	}
	for name := range creds {
		if !provider.IsCredentialName(name) {
			return nil, fmt.Errorf("unknown %s credential %q: %w", provider, name, core.ErrInvalidInput)
		}
	}
	if missing := creds.MissingNames(provider); len(missing) > 0 {
		return nil, fmt.Errorf("missing %s credentials %v: %w", provider, missing, core.ErrNotConfigured)
	}

	if err := adapter.TeardownWebhook(ctx, guildID); err != nil {
		log.Printf("⚠️ Failed to tear down previous %s webhooks for guild %s: %v", provider, guildID, err)
	}

	log.Printf("📋 Saving %s credentials for guild %s: %s", provider, guildID, maskedCredentials(creds))
	if err := u.integrationsService.SaveCredentials(ctx, integration, creds); err != nil {
		u.clearAfterFailure(ctx, integration)
		return nil, fmt.Errorf("failed to update credentials: %w", err)
	}

	registration, err := adapter.RegisterWebhook(ctx, guildID, creds)
	if err != nil {
		u.clearAfterFailure(ctx, integration)
		return registration, fmt.Errorf("failed to register %s webhook: %w", provider, err)
	}

	log.Printf("📋 Completed successfully - %s credentials updated for guild %s", provider, guildID)
	return registration, nil
}

// ClearCredentials removes the provider webhooks and empties the credential batch
func (u *SetupUseCase) ClearCredentials(ctx context.Context, guildID string, provider models.Provider) error {
	log.Printf("📋 Starting to clear %s credentials for guild %s", provider, guildID)
	adapter, integration, err := u.resolve(ctx, guildID, provider)
	if err != nil {
		return err
	}

	if err := adapter.TeardownWebhook(ctx, guildID); err != nil {
		log.Printf("⚠️ Failed to tear down %s webhooks for guild %s: %v", provider, guildID, err)
	}
	if err := u.integrationsService.ClearCredentials(ctx, integration.ID); err != nil {
		return fmt.Errorf("failed to clear credentials: %w", err)
	}

	log.Printf("📋 Completed successfully - %s credentials cleared for guild %s", provider, guildID)
	return nil
}

func (u *SetupUseCase) UpdateIntegration(
	ctx context.Context,
	guildID string,
	provider models.Provider,
	update models.IntegrationUpdate,
) (*models.Integration, error) {
	return u.integrationsService.UpdateIntegration(ctx, guildID, provider, update)
}

func (u *SetupUseCase) GetSettings(
	ctx context.Context,
	guildID string,
	provider models.Provider,
) (*models.IntegrationSettings, error) {
	maybeSettings, err := u.integrationsService.GetSettings(ctx, guildID, provider)
	if err != nil {
		return nil, fmt.Errorf("failed to get settings: %w", err)
	}
	settings, ok := maybeSettings.Get()
	if !ok {
		return nil, fmt.Errorf("%s integration for guild %s: %w", provider, guildID, core.ErrNotFound)
	}
	return settings, nil
}

// EnableServices subscribes the integration to notifications or enables commands.
// It returns the names that were not enabled before.
func (u *SetupUseCase) EnableServices(
	ctx context.Context,
	guildID string,
	provider models.Provider,
	serviceType models.ServiceType,
	names []string,
) ([]string, error) {
	_, integration, err := u.resolve(ctx, guildID, provider)
	if err != nil {
		return nil, err
	}
	return u.integrationsService.EnableServices(ctx, integration, serviceType, names)
}

func (u *SetupUseCase) DisableServices(
	ctx context.Context,
	guildID string,
	provider models.Provider,
	serviceType models.ServiceType,
	names []string,
) ([]string, error) {
	_, integration, err := u.resolve(ctx, guildID, provider)
	if err != nil {
		return nil, err
	}
	return u.integrationsService.DisableServices(ctx, integration, serviceType, names)
}

func (u *SetupUseCase) resolve(
	ctx context.Context,
	guildID string,
	provider models.Provider,
) (providers.Adapter, *models.Integration, error) {
	adapter, ok := u.registry.Get(provider)
	if !ok {
		return nil, nil, fmt.Errorf("unknown provider %q: %w", provider, core.ErrInvalidInput)
	}
	maybeIntegration, err := u.integrationsService.GetIntegration(ctx, guildID, provider)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to get integration: %w", err)
	}
	integration, ok := maybeIntegration.Get()
	if !ok {
		return nil, nil, fmt.Errorf("%s integration for guild %s: %w", provider, guildID, core.ErrNotFound)
	}
	return adapter, integration, nil
}

func (u *SetupUseCase) clearAfterFailure(ctx context.Context, integration *models.Integration) {
	if err := u.integrationsService.ClearCredentials(ctx, integration.ID); err != nil {
		log.Printf("❌ Failed to clear credentials of integration %s after a failed update: %v", integration.ID, err)
	}
}

func maskedCredentials(creds models.Credentials) string {
	names := make([]string, 0, len(creds))
	for name := range creds {
		names = append(names, name)
	}
	sort.Strings(names)

	parts := make([]string, 0, len(names))
	for _, name := range names {
		parts = append(parts, name+"="+utils.MaskSecret(creds[name]))
	}
	return strings.Join(parts, " ")
}

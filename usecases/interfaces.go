package usecases

import (
	"context"

	"relaybackend/models"
)

// RelayUseCaseInterface defines the inbound webhook pipeline used by the HTTP handlers
type RelayUseCaseInterface interface {
	Handle(ctx context.Context, hook *models.InboundWebhook) models.RelayResult
}

// SetupUseCaseInterface defines the administrative operations used by the admin API and the Discord bot
type SetupUseCaseInterface interface {
	OnboardGuild(ctx context.Context, guildID, channelID string) ([]*models.Integration, error)
	RemoveGuild(ctx context.Context, guildID string) (int64, error)
	UpdateCredentials(
		ctx context.Context,
		guildID string,
		provider models.Provider,
		creds models.Credentials,
	) (*models.WebhookRegistration, error)
	ClearCredentials(ctx context.Context, guildID string, provider models.Provider) error
	UpdateIntegration(
		ctx context.Context,
		guildID string,
		provider models.Provider,
		update models.IntegrationUpdate,
	) (*models.Integration, error)
	GetSettings(ctx context.Context, guildID string, provider models.Provider) (*models.IntegrationSettings, error)
	EnableServices(
		ctx context.Context,
		guildID string,
		provider models.Provider,
		serviceType models.ServiceType,
		names []string,
	) ([]string, error)
	DisableServices(
		ctx context.Context,
		guildID string,
		provider models.Provider,
		serviceType models.ServiceType,
		names []string,
	) ([]string, error)
}

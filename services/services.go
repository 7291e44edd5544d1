package services

import (
	"context"

	"github.com/samber/mo"

	"relaybackend/models"
)

// TransactionManager runs fn inside a database transaction carried by ctx
type TransactionManager interface {
	WithTransaction(ctx context.Context, fn func(ctx context.Context) error) error
}

// IntegrationsService is the credential and subscription store
type IntegrationsService interface {
	CreateIntegration(
		ctx context.Context,
		guildID string,
		provider models.Provider,
		channelID string,
	) (*models.Integration, error)
	GetIntegration(ctx context.Context, guildID string, provider models.Provider) (mo.Option[*models.Integration], error)
	GetIntegrationByID(ctx context.Context, id string) (mo.Option[*models.Integration], error)
	GetIntegrationsByGuildID(ctx context.Context, guildID string) ([]*models.Integration, error)
	UpdateIntegration(
		ctx context.Context,
		guildID string,
		provider models.Provider,
		update models.IntegrationUpdate,
	) (*models.Integration, error)
	DeleteIntegrationsByGuildID(ctx context.Context, guildID string) (int64, error)

	GetCredentials(ctx context.Context, integrationID string) (models.Credentials, error)
	SaveCredentials(ctx context.Context, integration *models.Integration, creds models.Credentials) error
	ClearCredentials(ctx context.Context, integrationID string) error

	GetServiceNames(ctx context.Context, integrationID string, serviceType models.ServiceType) ([]string, error)
	EnableServices(
		ctx context.Context,
		integration *models.Integration,
		serviceType models.ServiceType,
		names []string,
	) ([]string, error)
	DisableServices(
		ctx context.Context,
		integration *models.Integration,
		serviceType models.ServiceType,
		names []string,
	) ([]string, error)
	GetSettings(ctx context.Context, guildID string, provider models.Provider) (mo.Option[*models.IntegrationSettings], error)
}

// GoogleCalendarWebhooksService stores the single active watch channel per calendar integration
type GoogleCalendarWebhooksService interface {
	GetWebhook(ctx context.Context, integrationID string) (mo.Option[*models.GoogleCalendarWebhook], error)
	ReplaceWebhook(
		ctx context.Context,
		webhook *models.GoogleCalendarWebhook,
	) (mo.Option[*models.GoogleCalendarWebhook], error)
	DeleteWebhook(ctx context.Context, integrationID string) (mo.Option[*models.GoogleCalendarWebhook], error)
	UpdateSyncToken(ctx context.Context, integrationID string, syncToken *string) error
}

// NotificationGate decides whether a classified event should reach Discord
type NotificationGate interface {
	ShouldDeliver(ctx context.Context, integrationID string, provider models.Provider, codename models.Codename) bool
}

// DeliverySink posts rendered notifications to a Discord channel. Failures are absorbed.
type DeliverySink interface {
	Deliver(ctx context.Context, channelID string, notification *models.Notification)
}

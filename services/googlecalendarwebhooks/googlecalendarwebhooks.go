package googlecalendarwebhooks

import (
	"context"
	"fmt"
	"log"

	"github.com/samber/mo"

	"relaybackend/models"
	"relaybackend/services"
	"relaybackend/utils"
)

type GoogleCalendarWebhooksRepository interface {
	CreateWebhook(ctx context.Context, webhook *models.GoogleCalendarWebhook) error
	GetWebhookByIntegrationID(ctx context.Context, integrationID string) (mo.Option[*models.GoogleCalendarWebhook], error)
	DeleteWebhookByIntegrationID(
		ctx context.Context,
		integrationID string,
	) (mo.Option[*models.GoogleCalendarWebhook], error)
	UpdateSyncToken(ctx context.Context, integrationID string, syncToken *string) (bool, error)
}

type GoogleCalendarWebhooksService struct {
	repo      GoogleCalendarWebhooksRepository
	txManager services.TransactionManager
}

func NewGoogleCalendarWebhooksService(
	repo GoogleCalendarWebhooksRepository,
	txManager services.TransactionManager,
) *GoogleCalendarWebhooksService {
	return &GoogleCalendarWebhooksService{repo: repo, txManager: txManager}
}

func (s *GoogleCalendarWebhooksService) GetWebhook(
	ctx context.Context,
	integrationID string,
) (mo.Option[*models.GoogleCalendarWebhook], error) {
	maybeWebhook, err := s.repo.GetWebhookByIntegrationID(ctx, integrationID)
	if err != nil {
		return mo.None[*models.GoogleCalendarWebhook](), fmt.Errorf("failed to get calendar webhook: %w", err)
	}
	return maybeWebhook, nil
}

// ReplaceWebhook swaps the stored registration for webhook in one transaction and returns
// the superseded row, if any. The new row always starts without a sync token.
func (s *GoogleCalendarWebhooksService) ReplaceWebhook(
	ctx context.Context,
	webhook *models.GoogleCalendarWebhook,
) (mo.Option[*models.GoogleCalendarWebhook], error) {
	utils.AssertInvariant(webhook != nil && webhook.IntegrationID != "", "webhook must reference an integration")
	log.Printf("📋 Starting to replace calendar webhook for integration: %s", webhook.IntegrationID)

	previous := mo.None[*models.GoogleCalendarWebhook]()
	err := s.txManager.WithTransaction(ctx, func(ctx context.Context) error {
		deleted, err := s.repo.DeleteWebhookByIntegrationID(ctx, webhook.IntegrationID)
		if err != nil {
			return err
		}
		previous = deleted

		webhook.SyncToken = nil
		return s.repo.CreateWebhook(ctx, webhook)
	})
	if err != nil {
		return mo.None[*models.GoogleCalendarWebhook](), fmt.Errorf("failed to replace calendar webhook: %w", err)
	}

	log.Printf("📋 Completed successfully - stored calendar channel %s for integration: %s (replaced previous: %t)",
		webhook.ChannelID, webhook.IntegrationID, previous.IsPresent())
	return previous, nil
}

func (s *GoogleCalendarWebhooksService) DeleteWebhook(
	ctx context.Context,
	integrationID string,
) (mo.Option[*models.GoogleCalendarWebhook], error) {
	deleted, err := s.repo.DeleteWebhookByIntegrationID(ctx, integrationID)
	if err != nil {
		return mo.None[*models.GoogleCalendarWebhook](), fmt.Errorf("failed to delete calendar webhook: %w", err)
	}
	return deleted, nil
}

// UpdateSyncToken persists the token from the latest pull; nil clears it.
// A missing row means the registration was torn down mid-pull and is not an error.
func (s *GoogleCalendarWebhooksService) UpdateSyncToken(ctx context.Context, integrationID string, syncToken *string) error {
	updated, err := s.repo.UpdateSyncToken(ctx, integrationID, syncToken)
	if err != nil {
		return fmt.Errorf("failed to update sync token: %w", err)
	}
	if !updated {
		log.Printf("⚠️ No calendar webhook row for integration %s, sync token not stored", integrationID)
	}
	return nil
}

package db

import (
	"context"
	"database/sql"
	"fmt"
	"strings"

	"github.com/jmoiron/sqlx"
	"github.com/samber/mo"

	dbtx "relaybackend/db/tx"
	"relaybackend/models"
)

type PostgresGoogleCalendarWebhooksRepository struct {
	db     *sqlx.DB
	schema string
}

var googleCalendarWebhooksColumns = []string{
	"integration_id",
	"channel_id",
	"resource_id",
	"resource_uri",
	"sync_token",
	"created_at",
	"updated_at",
}

func NewPostgresGoogleCalendarWebhooksRepository(db *sqlx.DB, schema string) *PostgresGoogleCalendarWebhooksRepository {
	return &PostgresGoogleCalendarWebhooksRepository{db: db, schema: schema}
}

// CreateWebhook inserts a registration with a NULL sync token
func (r *PostgresGoogleCalendarWebhooksRepository) CreateWebhook(
	ctx context.Context,
	webhook *models.GoogleCalendarWebhook,
) error {
	db := dbtx.GetTransactional(ctx, r.db)

	returningStr := strings.Join(googleCalendarWebhooksColumns, ", ")
	query := fmt.Sprintf(`
		INSERT INTO %s.google_calendar_webhooks (
			integration_id, channel_id, resource_id, resource_uri, sync_token, created_at, updated_at
		) VALUES ($1, $2, $3, $4, NULL, NOW(), NOW())
		RETURNING %s`, r.schema, returningStr)

	err := db.QueryRowxContext(
		ctx,
		query,
		webhook.IntegrationID, webhook.ChannelID, webhook.ResourceID, webhook.ResourceURI,
	).StructScan(webhook)
	if err != nil {
		return fmt.Errorf("failed to create google calendar webhook: %w", err)
	}

	return nil
}

func (r *PostgresGoogleCalendarWebhooksRepository) GetWebhookByIntegrationID(
	ctx context.Context,
	integrationID string,
) (mo.Option[*models.GoogleCalendarWebhook], error) {
	db := dbtx.GetTransactional(ctx, r.db)

	columnsStr := strings.Join(googleCalendarWebhooksColumns, ", ")
	query := fmt.Sprintf(`
		SELECT %s
		FROM %s.google_calendar_webhooks
		WHERE integration_id = $1`, columnsStr, r.schema)

	var webhook models.GoogleCalendarWebhook
	err := db.GetContext(ctx, &webhook, query, integrationID)
	if err != nil {
		if err == sql.ErrNoRows {
			return mo.None[*models.GoogleCalendarWebhook](), nil
		}
		return mo.None[*models.GoogleCalendarWebhook](), fmt.Errorf("failed to get google calendar webhook: %w", err)
	}

	return mo.Some(&webhook), nil
}

// DeleteWebhookByIntegrationID removes the registration and returns the deleted row, if any
func (r *PostgresGoogleCalendarWebhooksRepository) DeleteWebhookByIntegrationID(
	ctx context.Context,
	integrationID string,
) (mo.Option[*models.GoogleCalendarWebhook], error) {
	db := dbtx.GetTransactional(ctx, r.db)

	returningStr := strings.Join(googleCalendarWebhooksColumns, ", ")
	query := fmt.Sprintf(`
		DELETE FROM %s.google_calendar_webhooks
		WHERE integration_id = $1
		RETURNING %s`, r.schema, returningStr)

	var webhook models.GoogleCalendarWebhook
	err := db.QueryRowxContext(ctx, query, integrationID).StructScan(&webhook)
	if err != nil {
		if err == sql.ErrNoRows {
			return mo.None[*models.GoogleCalendarWebhook](), nil
		}
		return mo.None[*models.GoogleCalendarWebhook](), fmt.Errorf("failed to delete google calendar webhook: %w", err)
	}

	return mo.Some(&webhook), nil
}

// UpdateSyncToken overwrites the stored token; nil resets it to NULL
func (r *PostgresGoogleCalendarWebhooksRepository) UpdateSyncToken(
	ctx context.Context,
	integrationID string,
	syncToken *string,
) (bool, error) {
	db := dbtx.GetTransactional(ctx, r.db)

	query := fmt.Sprintf(`
		UPDATE %s.google_calendar_webhooks
		SET sync_token = $2, updated_at = NOW()
		WHERE integration_id = $1`, r.schema)

	result, err := db.ExecContext(ctx, query, integrationID, syncToken)
	if err != nil {
		return false, fmt.Errorf("failed to update sync token: %w", err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("failed to get affected rows: %w", err)
	}

	return rowsAffected > 0, nil
}

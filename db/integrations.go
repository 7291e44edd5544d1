package db

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"

	"github.com/jmoiron/sqlx"
	"github.com/lib/pq"
	"github.com/samber/mo"

	dbtx "relaybackend/db/tx"
	"relaybackend/models"
)

// ErrDuplicateIntegration is returned when a guild already has an integration for the provider
var ErrDuplicateIntegration = errors.New("integration already exists for guild and provider")

type PostgresIntegrationsRepository struct {
	db     *sqlx.DB
	schema string
}

// Column names for integrations table
var integrationsColumns = []string{
	"id",
	"guild_id",
	"provider",
	"discord_channel_id",
	"enabled",
	"created_at",
	"updated_at",
}

func NewPostgresIntegrationsRepository(db *sqlx.DB, schema string) *PostgresIntegrationsRepository {
	return &PostgresIntegrationsRepository{db: db, schema: schema}
}

func (r *PostgresIntegrationsRepository) CreateIntegration(ctx context.Context, integration *models.Integration) error {
	db := dbtx.GetTransactional(ctx, r.db)

	insertColumns := []string{"id", "guild_id", "provider", "discord_channel_id", "enabled", "created_at", "updated_at"}
	columnsStr := strings.Join(insertColumns, ", ")
	returningStr := strings.Join(integrationsColumns, ", ")

	query := fmt.Sprintf(`
		INSERT INTO %s.integrations (%s)
		VALUES ($1, $2, $3, $4, $5, NOW(), NOW())
		RETURNING %s`, r.schema, columnsStr, returningStr)

	err := db.QueryRowxContext(
		ctx,
		query,
		integration.ID, integration.GuildID, integration.Provider, integration.DiscordChannelID, integration.Enabled,
	).StructScan(integration)
	if err != nil {
		var pqErr *pq.Error
		if errors.As(err, &pqErr) && pqErr.Code == "23505" {
			return fmt.Errorf("failed to create integration: %w", ErrDuplicateIntegration)
		}
		return fmt.Errorf("failed to create integration: %w", err)
	}

	return nil
}

func (r *PostgresIntegrationsRepository) GetIntegrationByGuildAndProvider(
	ctx context.Context,
	guildID string,
	provider models.Provider,
) (mo.Option[*models.Integration], error) {
	if guildID == "" {
		return mo.None[*models.Integration](), fmt.Errorf("guild ID cannot be empty")
	}
	db := dbtx.GetTransactional(ctx, r.db)

	columnsStr := strings.Join(integrationsColumns, ", ")
	query := fmt.Sprintf(`
		SELECT %s
		FROM %s.integrations
		WHERE guild_id = $1 AND provider = $2`, columnsStr, r.schema)

	var integration models.Integration
	err := db.GetContext(ctx, &integration, query, guildID, provider)
	if err != nil {
		if err == sql.ErrNoRows {
			return mo.None[*models.Integration](), nil
		}
		return mo.None[*models.Integration](), fmt.Errorf("failed to get integration by guild and provider: %w", err)
	}

	return mo.Some(&integration), nil
}

func (r *PostgresIntegrationsRepository) GetIntegrationsByGuildID(
	ctx context.Context,
	guildID string,
) ([]*models.Integration, error) {
	if guildID == "" {
		return nil, fmt.Errorf("guild ID cannot be empty")
	}
	db := dbtx.GetTransactional(ctx, r.db)

	columnsStr := strings.Join(integrationsColumns, ", ")
	query := fmt.Sprintf(`
		SELECT %s
		FROM %s.integrations
		WHERE guild_id = $1
		ORDER BY provider`, columnsStr, r.schema)

	var integrations []*models.Integration
	if err := db.SelectContext(ctx, &integrations, query, guildID); err != nil {
		return nil, fmt.Errorf("failed to get integrations by guild ID: %w", err)
	}

	return integrations, nil
}

func (r *PostgresIntegrationsRepository) GetIntegrationByID(
	ctx context.Context,
	id string,
) (mo.Option[*models.Integration], error) {
	db := dbtx.GetTransactional(ctx, r.db)

	columnsStr := strings.Join(integrationsColumns, ", ")
	query := fmt.Sprintf(`
		SELECT %s
		FROM %s.integrations
		WHERE id = $1`, columnsStr, r.schema)

	var integration models.Integration
	err := db.GetContext(ctx, &integration, query, id)
	if err != nil {
		if err == sql.ErrNoRows {
			return mo.None[*models.Integration](), nil
		}
		return mo.None[*models.Integration](), fmt.Errorf("failed to get integration by ID: %w", err)
	}

	return mo.Some(&integration), nil
}

// UpdateIntegration applies the non-nil fields of update
func (r *PostgresIntegrationsRepository) UpdateIntegration(
	ctx context.Context,
	id string,
	update models.IntegrationUpdate,
) (mo.Option[*models.Integration], error) {
	db := dbtx.GetTransactional(ctx, r.db)

	returningStr := strings.Join(integrationsColumns, ", ")
	query := fmt.Sprintf(`
		UPDATE %s.integrations
		SET discord_channel_id = COALESCE($2, discord_channel_id),
			enabled = COALESCE($3, enabled),
			updated_at = NOW()
		WHERE id = $1
		RETURNING %s`, r.schema, returningStr)

	var integration models.Integration
	err := db.QueryRowxContext(ctx, query, id, update.DiscordChannelID, update.Enabled).StructScan(&integration)
	if err != nil {
		if err == sql.ErrNoRows {
			return mo.None[*models.Integration](), nil
		}
		return mo.None[*models.Integration](), fmt.Errorf("failed to update integration: %w", err)
	}

	return mo.Some(&integration), nil
}

// DeleteIntegrationsByGuildID removes every integration of a guild. Credentials, services and
// calendar registrations are removed by ON DELETE CASCADE.
func (r *PostgresIntegrationsRepository) DeleteIntegrationsByGuildID(ctx context.Context, guildID string) (int64, error) {
	db := dbtx.GetTransactional(ctx, r.db)

	query := fmt.Sprintf(`DELETE FROM %s.integrations WHERE guild_id = $1`, r.schema)

	result, err := db.ExecContext(ctx, query, guildID)
	if err != nil {
		return 0, fmt.Errorf("failed to delete integrations: %w", err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("failed to get affected rows: %w", err)
	}

	return rowsAffected, nil
}

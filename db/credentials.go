package db

import (
	"context"
	"fmt"
	"strings"

	"github.com/jmoiron/sqlx"

	dbtx "relaybackend/db/tx"
	"relaybackend/models"
)

type PostgresCredentialsRepository struct {
	db     *sqlx.DB
	schema string
}

var credentialsColumns = []string{
	"integration_id",
	"name",
	"value",
}

func NewPostgresCredentialsRepository(db *sqlx.DB, schema string) *PostgresCredentialsRepository {
	return &PostgresCredentialsRepository{db: db, schema: schema}
}

// CreateEmptyCredentials inserts one empty row per catalog name
func (r *PostgresCredentialsRepository) CreateEmptyCredentials(
	ctx context.Context,
	integrationID string,
	names []string,
) error {
	db := dbtx.GetTransactional(ctx, r.db)

	query := fmt.Sprintf(`
		INSERT INTO %s.integration_credentials (integration_id, name, value, updated_at)
		VALUES ($1, $2, '', NOW())
		ON CONFLICT (integration_id, name) DO NOTHING`, r.schema)

	for _, name := range names {
		if _, err := db.ExecContext(ctx, query, integrationID, name); err != nil {
			return fmt.Errorf("failed to create credential %q: %w", name, err)
		}
	}

	return nil
}

func (r *PostgresCredentialsRepository) GetCredentials(
	ctx context.Context,
	integrationID string,
) ([]*models.Credential, error) {
	db := dbtx.GetTransactional(ctx, r.db)

	columnsStr := strings.Join(credentialsColumns, ", ")
	query := fmt.Sprintf(`
		SELECT %s
		FROM %s.integration_credentials
		WHERE integration_id = $1
		ORDER BY name`, columnsStr, r.schema)

	var credentials []*models.Credential
	if err := db.SelectContext(ctx, &credentials, query, integrationID); err != nil {
		return nil, fmt.Errorf("failed to get credentials: %w", err)
	}

	return credentials, nil
}

func (r *PostgresCredentialsRepository) UpsertCredential(
	ctx context.Context,
	integrationID, name, value string,
) error {
	db := dbtx.GetTransactional(ctx, r.db)

	query := fmt.Sprintf(`
		INSERT INTO %s.integration_credentials (integration_id, name, value, updated_at)
		VALUES ($1, $2, $3, NOW())
		ON CONFLICT (integration_id, name)
		DO UPDATE SET value = EXCLUDED.value, updated_at = NOW()`, r.schema)

	if _, err := db.ExecContext(ctx, query, integrationID, name, value); err != nil {
		return fmt.Errorf("failed to upsert credential: %w", err)
	}

	return nil
}

// ClearCredentials empties every value of the batch while keeping the rows
func (r *PostgresCredentialsRepository) ClearCredentials(ctx context.Context, integrationID string) error {
	db := dbtx.GetTransactional(ctx, r.db)

	query := fmt.Sprintf(`
		UPDATE %s.integration_credentials
		SET value = '', updated_at = NOW()
		WHERE integration_id = $1`, r.schema)

	if _, err := db.ExecContext(ctx, query, integrationID); err != nil {
		return fmt.Errorf("failed to clear credentials: %w", err)
	}

	return nil
}

package db

import (
	"context"
	"fmt"

	"github.com/jmoiron/sqlx"

	dbtx "relaybackend/db/tx"
	"relaybackend/models"
)

type PostgresIntegrationServicesRepository struct {
	db     *sqlx.DB
	schema string
}

func NewPostgresIntegrationServicesRepository(db *sqlx.DB, schema string) *PostgresIntegrationServicesRepository {
	return &PostgresIntegrationServicesRepository{db: db, schema: schema}
}

func (r *PostgresIntegrationServicesRepository) GetServiceNames(
	ctx context.Context,
	integrationID string,
	serviceType models.ServiceType,
) ([]string, error) {
	db := dbtx.GetTransactional(ctx, r.db)

	query := fmt.Sprintf(`
		SELECT service_name
		FROM %s.integration_services
		WHERE integration_id = $1 AND service_type = $2
		ORDER BY created_at, service_name`, r.schema)

	var names []string
	if err := db.SelectContext(ctx, &names, query, integrationID, serviceType); err != nil {
		return nil, fmt.Errorf("failed to get %s services: %w", serviceType, err)
	}

	return names, nil
}

// AddService is idempotent; adding an existing service is a no-op
func (r *PostgresIntegrationServicesRepository) AddService(
	ctx context.Context,
	integrationID string,
	serviceType models.ServiceType,
	serviceName string,
) (bool, error) {
	db := dbtx.GetTransactional(ctx, r.db)

	query := fmt.Sprintf(`
		INSERT INTO %s.integration_services (integration_id, service_type, service_name, created_at)
		VALUES ($1, $2, $3, NOW())
		ON CONFLICT (integration_id, service_type, service_name) DO NOTHING`, r.schema)

	result, err := db.ExecContext(ctx, query, integrationID, serviceType, serviceName)
	if err != nil {
		return false, fmt.Errorf("failed to add service: %w", err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("failed to get affected rows: %w", err)
	}

	return rowsAffected > 0, nil
}

func (r *PostgresIntegrationServicesRepository) RemoveService(
	ctx context.Context,
	integrationID string,
	serviceType models.ServiceType,
	serviceName string,
) (bool, error) {
	db := dbtx.GetTransactional(ctx, r.db)

	query := fmt.Sprintf(`
		DELETE FROM %s.integration_services
		WHERE integration_id = $1 AND service_type = $2 AND service_name = $3`, r.schema)

	result, err := db.ExecContext(ctx, query, integrationID, serviceType, serviceName)
	if err != nil {
		return false, fmt.Errorf("failed to remove service: %w", err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("failed to get affected rows: %w", err)
	}

	return rowsAffected > 0, nil
}

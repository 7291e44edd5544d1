package testutils

import (
	"os"
	"testing"

	"github.com/joho/godotenv"

	"relaybackend/config"
)

// LoadTestConfig loads the database settings for integration tests and skips the test
// when no database is configured
func LoadTestConfig(t *testing.T) *config.AppConfig {
	t.Helper()

	// Try to load environment variables from the package directory and the repository root
	_ = godotenv.Load("../.env.test")
	_ = godotenv.Load(".env.test")

	databaseURL := os.Getenv("DB_URL")
	databaseSchema := os.Getenv("DB_SCHEMA")
	if databaseURL == "" || databaseSchema == "" {
		t.Skip("DB_URL or DB_SCHEMA is not set, skipping database tests")
	}

	return &config.AppConfig{
		DatabaseURL:    databaseURL,
		DatabaseSchema: databaseSchema,
	}
}

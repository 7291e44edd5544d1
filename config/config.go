package config

import (
	"fmt"
	"log"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

type DiscordConfig struct {
	BotToken string
}

// IsConfigured returns true if the bot can open a gateway session and post embeds
func (c DiscordConfig) IsConfigured() bool {
	return c.BotToken != ""
}

type AdminConfig struct {
	APIKey string
}

// IsConfigured returns true if the admin API can authenticate callers
func (c AdminConfig) IsConfigured() bool {
	return c.APIKey != ""
}

type SlackConfig struct {
	AlertWebhookURL string
}

func (c SlackConfig) IsConfigured() bool {
	return c.AlertWebhookURL != ""
}

type RelayConfig struct {
	// ServerOrigin is the public base URL providers call back to, e.g. https://relay.example.com
	ServerOrigin string
	// WebhookSecret is shared with Trello (secretId) and GitHub (HMAC key)
	WebhookSecret            string
	ProviderTimeout          time.Duration
	RelayTimeout             time.Duration
	WebhookRateLimit         int
	TrelloWebhookConcurrency int
}

type AppConfig struct {
	// Core configuration (always required)
	DatabaseURL        string
	DatabaseSchema     string
	Port               string // Optional with default "8080"
	CORSAllowedOrigins string // Optional with default "*"
	Environment        string
	ServerLogsURL      string
	UseStrictConfig    bool // If true, error when the bot or admin API is not configured

	RelayConfig   RelayConfig
	DiscordConfig DiscordConfig
	AdminConfig   AdminConfig
	SlackConfig   SlackConfig
}

func LoadConfig() (*AppConfig, error) {
	if err := godotenv.Load(); err != nil {
		fmt.Println("⚠️ Could not load .env file, continuing with system env vars")
	}

	databaseURL, err := getEnvRequired("DB_URL")
	if err != nil {
		return nil, err
	}

	databaseSchema, err := getEnvRequired("DB_SCHEMA")
	if err != nil {
		return nil, err
	}

	serverOrigin, err := getEnvRequired("SERVER_ORIGIN")
	if err != nil {
		return nil, err
	}

	webhookSecret, err := getEnvRequired("WEBHOOK_SECRET")
	if err != nil {
		return nil, err
	}

	providerTimeout, err := getDurationWithDefault("PROVIDER_TIMEOUT", 5*time.Second)
	if err != nil {
		return nil, err
	}

	relayTimeout, err := getDurationWithDefault("RELAY_TIMEOUT", 15*time.Second)
	if err != nil {
		return nil, err
	}

	rateLimit, err := getPositiveIntWithDefault("WEBHOOK_RATE_LIMIT", 120)
	if err != nil {
		return nil, err
	}

	trelloConcurrency, err := getPositiveIntWithDefault("TRELLO_WEBHOOK_CONCURRENCY", 4)
	if err != nil {
		return nil, err
	}

	config := &AppConfig{
		DatabaseURL:        databaseURL,
		DatabaseSchema:     databaseSchema,
		Port:               getEnvWithDefault("PORT", "8080"),
		CORSAllowedOrigins: getEnvWithDefault("CORS_ALLOWED_ORIGINS", "*"),
		Environment:        getEnvWithDefault("ENVIRONMENT", "dev"),
		ServerLogsURL:      getEnvWithDefault("SERVER_LOGS_URL", ""),
		UseStrictConfig:    getEnvWithDefault("USE_STRICT_CONFIG", "true") == "true",

		RelayConfig: RelayConfig{
			ServerOrigin:             strings.TrimRight(serverOrigin, "/"),
			WebhookSecret:            webhookSecret,
			ProviderTimeout:          providerTimeout,
			RelayTimeout:             relayTimeout,
			WebhookRateLimit:         rateLimit,
			TrelloWebhookConcurrency: trelloConcurrency,
		},

		DiscordConfig: DiscordConfig{
			BotToken: os.Getenv("DISCORD_BOT_TOKEN"),
		},

		AdminConfig: AdminConfig{
			APIKey: os.Getenv("ADMIN_API_KEY"),
		},

		SlackConfig: SlackConfig{
			AlertWebhookURL: os.Getenv("SLACK_ALERT_WEBHOOK_URL"),
		},
	}

	if config.DiscordConfig.IsConfigured() {
		log.Printf("✅ Discord bot configured")
	} else {
		log.Printf("⚠️ Discord bot not configured - notifications will not be delivered")
		if config.UseStrictConfig {
			return nil, fmt.Errorf("discord bot is not fully configured (USE_STRICT_CONFIG=true)")
		}
	}

	if config.AdminConfig.IsConfigured() {
		log.Printf("✅ Admin API configured")
	} else {
		log.Printf("⚠️ Admin API not configured - admin endpoints will be disabled")
		if config.UseStrictConfig {
			return nil, fmt.Errorf("admin API is not fully configured (USE_STRICT_CONFIG=true)")
		}
	}

	if !config.SlackConfig.IsConfigured() {
		log.Printf("⚠️ Slack alerts not configured - errors will only be logged")
	}

	return config, nil
}

func getEnvRequired(key string) (string, error) {
	value := os.Getenv(key)
	if value == "" {
		return "", fmt.Errorf("%s is not set", key)
	}
	return value, nil
}

func getEnvWithDefault(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getDurationWithDefault(key string, defaultValue time.Duration) (time.Duration, error) {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue, nil
	}
	d, err := time.ParseDuration(value)
	if err != nil || d <= 0 {
		return 0, fmt.Errorf("%s must be a positive duration, got %q", key, value)
	}
	return d, nil
}

func getPositiveIntWithDefault(key string, defaultValue int) (int, error) {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue, nil
	}
	n, err := strconv.Atoi(value)
	if err != nil || n <= 0 {
		return 0, fmt.Errorf("%s must be a positive integer, got %q", key, value)
	}
	return n, nil
}

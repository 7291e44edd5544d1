package models

import "time"

type Integration struct {
	ID               string    `db:"id"                 json:"id"`
	GuildID          string    `db:"guild_id"           json:"guild_id"`
	Provider         Provider  `db:"provider"           json:"provider"`
	DiscordChannelID string    `db:"discord_channel_id" json:"discord_channel_id"`
	Enabled          bool      `db:"enabled"            json:"enabled"`
	CreatedAt        time.Time `db:"created_at"         json:"created_at"`
	UpdatedAt        time.Time `db:"updated_at"         json:"updated_at"`
}

// ServiceType distinguishes notification subscriptions from command enablement
type ServiceType string

const (
	ServiceTypeNotification ServiceType = "notification"
	ServiceTypeCommand      ServiceType = "command"
)

func ParseServiceType(value string) (ServiceType, bool) {
	switch value {
	case "notification", "notifications":
		return ServiceTypeNotification, true
	case "command", "commands":
		return ServiceTypeCommand, true
	}
	return "", false
}

type IntegrationService struct {
	IntegrationID string      `db:"integration_id" json:"integration_id"`
	ServiceType   ServiceType `db:"service_type"   json:"service_type"`
	ServiceName   string      `db:"service_name"   json:"service_name"`
}

// IntegrationSettings is the read model returned to administrators
type IntegrationSettings struct {
	Integration   *Integration `json:"integration"`
	Configured    bool         `json:"configured"`
	Notifications []string     `json:"notifications"`
	Commands      []string     `json:"commands"`
}

// IntegrationUpdate carries the optional fields of a settings change
type IntegrationUpdate struct {
	DiscordChannelID *string
	Enabled          *bool
}

// GoogleCalendarWebhook is the single active watch channel of a Google Calendar integration
type GoogleCalendarWebhook struct {
	IntegrationID string    `db:"integration_id" json:"integration_id"`
	ChannelID     string    `db:"channel_id"     json:"channel_id"`
	ResourceID    string    `db:"resource_id"    json:"resource_id"`
	ResourceURI   string    `db:"resource_uri"   json:"resource_uri"`
	SyncToken     *string   `db:"sync_token"     json:"-"`
	CreatedAt     time.Time `db:"created_at"     json:"created_at"`
	UpdatedAt     time.Time `db:"updated_at"     json:"updated_at"`
}

func (w *GoogleCalendarWebhook) HasSyncToken() bool {
	return w.SyncToken != nil && *w.SyncToken != ""
}

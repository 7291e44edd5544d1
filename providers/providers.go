package providers

import (
	"context"
	"net/url"
	"strconv"
	"strings"

	"relaybackend/models"
)

// Adapter is everything the relay and the setup flow need from one provider
type Adapter interface {
	Provider() models.Provider
	// Codenames lists every codename Classify can return
	Codenames() []models.Codename

	RegisterWebhook(ctx context.Context, guildID string, creds models.Credentials) (*models.WebhookRegistration, error)
	// TeardownWebhook removes provider-side webhooks. A webhook that is already gone is not an error.
	TeardownWebhook(ctx context.Context, guildID string) error

	// Verify returns a *core.VerificationError when the request must be rejected
	Verify(ctx context.Context, hook *models.InboundWebhook) error
	// Fetch turns a verified request into provider events. hook.Integration is set.
	Fetch(ctx context.Context, hook *models.InboundWebhook) ([]models.ProviderEvent, error)
	// Classify returns false when the event maps to no codename
	Classify(event models.ProviderEvent) (models.Codename, bool)
	Render(event models.ProviderEvent, codename models.Codename) (*models.Notification, error)
}

const (
	TrelloWebhookPath         = "/trello-webhook"
	GitHubWebhookPath         = "/github-webhook"
	GoogleCalendarWebhookPath = "/google-webhook"
)

// CallbackURL builds the public URL a provider posts to for a guild.
// extra is appended after guildId in the given order.
func CallbackURL(serverOrigin, path, guildID string, extra ...string) string {
	var b strings.Builder
	b.WriteString(strings.TrimRight(serverOrigin, "/"))
	b.WriteString(path)
	b.WriteString("?guildId=")
	b.WriteString(url.QueryEscape(guildID))
	for i := 0; i+1 < len(extra); i += 2 {
		b.WriteString("&")
		b.WriteString(url.QueryEscape(extra[i]))
		b.WriteString("=")
		b.WriteString(url.QueryEscape(extra[i+1]))
	}
	return b.String()
}

// ParseColor converts "#RRGGBB" into the integer Discord expects. Invalid input yields 0.
func ParseColor(hex string) int {
	hex = strings.TrimPrefix(hex, "#")
	if len(hex) != 6 {
		return 0
	}
	value, err := strconv.ParseInt(hex, 16, 32)
	if err != nil {
		return 0
	}
	return int(value)
}

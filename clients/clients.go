package clients

import (
	"context"
	"fmt"
	"io"
	"net/http"

	"github.com/bwmarrin/discordgo"

	"relaybackend/core"
)

// TrelloClient defines the Trello REST operations the relay needs for webhook management
type TrelloClient interface {
	GetOrganizationBoards(ctx context.Context, auth TrelloAuth, organizationID string) ([]TrelloBoard, error)
	GetTokenWebhooks(ctx context.Context, auth TrelloAuth) ([]TrelloWebhook, error)
	CreateWebhook(ctx context.Context, auth TrelloAuth, params TrelloCreateWebhookParams) (*TrelloWebhook, error)
	DeleteWebhook(ctx context.Context, auth TrelloAuth, webhookID string) error
}

// GitHubClient defines the organization hook operations
type GitHubClient interface {
	ListOrgHooks(ctx context.Context, token, organization string) ([]GitHubHook, error)
	CreateOrgHook(ctx context.Context, token, organization string, config GitHubHookConfig) (*GitHubHook, error)
	DeleteOrgHook(ctx context.Context, token, organization string, hookID int64) error
}

// GoogleCalendarClient defines the push-notification and incremental sync operations
type GoogleCalendarClient interface {
	WatchEvents(
		ctx context.Context,
		auth GoogleOAuthCredentials,
		calendarID, channelID, address string,
	) (*GoogleWatchChannel, error)
	StopChannel(ctx context.Context, auth GoogleOAuthCredentials, channelID, resourceID string) error
	// ListEvents returns one page. An invalidated syncToken yields core.ErrSyncTokenInvalidated.
	ListEvents(
		ctx context.Context,
		auth GoogleOAuthCredentials,
		calendarID, syncToken, pageToken string,
	) (*GoogleEventsPage, error)
}

// DiscordClient sends messages through the bot session
type DiscordClient interface {
	SendEmbed(ctx context.Context, channelID string, embed *discordgo.MessageEmbed) error
}

// NewStatusError turns a non-2xx provider response into a *core.ProviderStatusError
func NewStatusError(provider, operation string, resp *http.Response) error {
	body, _ := io.ReadAll(io.LimitReader(resp.Body, 2048))
	return &core.ProviderStatusError{
		Provider:   provider,
		Operation:  operation,
		StatusCode: resp.StatusCode,
		Body:       string(body),
	}
}

// NewTransportError marks a failed round trip as transient
func NewTransportError(provider, operation string, err error) error {
	return fmt.Errorf("%s %s request failed: %w: %w", provider, operation, core.ErrTransientProvider, err)
}

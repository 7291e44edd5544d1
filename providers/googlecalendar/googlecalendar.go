package googlecalendar

import (
	"context"
	"crypto/subtle"
	"errors"
	"fmt"
	"log"
	"time"
	_ "time/tzdata"

	"github.com/google/uuid"

	"relaybackend/clients"
	"relaybackend/core"
	"relaybackend/models"
	"relaybackend/providers"
	"relaybackend/services"
)

const (
	ChannelIDHeader     = "X-Goog-Channel-Id"
	ResourceIDHeader    = "X-Goog-Resource-Id"
	ResourceURIHeader   = "X-Goog-Resource-Uri"
	ResourceStateHeader = "X-Goog-Resource-State"

	// resourceStateSync is the handshake Google sends right after a watch is created
	resourceStateSync = "sync"

	notificationTitle  = "Google Calendar Notification"
	thumbnailURL       = "https://upload.wikimedia.org/wikipedia/commons/thumb/a/a5/Google_Calendar_icon_%282020%29.svg/1024px-Google_Calendar_icon_%282020%29.svg.png"
	eventColor         = "#800080"
	deletedEventColor  = "#FFA500"
	defaultDescription = "No description provided"
	fullDayEvent       = "Full-day event"
)

type GoogleCalendarAdapter struct {
	client              clients.GoogleCalendarClient
	integrationsService services.IntegrationsService
	webhooksService     services.GoogleCalendarWebhooksService
	serverOrigin        string
	newChannelID        func() string
}

func NewGoogleCalendarAdapter(
	client clients.GoogleCalendarClient,
	integrationsService services.IntegrationsService,
	webhooksService services.GoogleCalendarWebhooksService,
	serverOrigin string,
) *GoogleCalendarAdapter {
	return &GoogleCalendarAdapter{
		client:              client,
		integrationsService: integrationsService,
		webhooksService:     webhooksService,
		serverOrigin:        serverOrigin,
		newChannelID:        uuid.NewString,
	}
}

func (a *GoogleCalendarAdapter) Provider() models.Provider {
	return models.ProviderGoogleCalendar
}

func (a *GoogleCalendarAdapter) Codenames() []models.Codename {
	return []models.Codename{
		models.CodenameGoogleCalendarEventCreated,
		models.CodenameGoogleCalendarEventUpdated,
		models.CodenameGoogleCalendarEventDeleted,
	}
}

func (a *GoogleCalendarAdapter) callbackURL(guildID string) string {
	return providers.CallbackURL(a.serverOrigin, providers.GoogleCalendarWebhookPath, guildID)
}

// RegisterWebhook opens a new watch channel, replaces the stored registration and
// runs a full pull so the next push is incremental against a fresh baseline.
func (a *GoogleCalendarAdapter) RegisterWebhook(
	ctx context.Context,
	guildID string,
	creds models.Credentials,
) (*models.WebhookRegistration, error) {
	log.Printf("📋 Starting to register Google Calendar watch for guild %s", guildID)
	if !creds.IsConfigured(models.ProviderGoogleCalendar) {
		return nil, fmt.Errorf(
			"google calendar credentials missing %v: %w",
			creds.MissingNames(models.ProviderGoogleCalendar),
			core.ErrNotConfigured,
		)
	}

	maybeIntegration, err := a.integrationsService.GetIntegration(ctx, guildID, models.ProviderGoogleCalendar)
	if err != nil {
		return nil, fmt.Errorf("failed to get google calendar integration: %w", err)
	}
	integration, ok := maybeIntegration.Get()
	if !ok {
		return nil, fmt.Errorf("google calendar integration for guild %s: %w", guildID, core.ErrNotFound)
	}

	auth := authFromCredentials(creds)
	calendarID := creds.Get(models.CredentialGoogleCalendarID)
	callbackURL := a.callbackURL(guildID)

	channel, err := a.client.WatchEvents(ctx, auth, calendarID, a.newChannelID(), callbackURL)
	if err != nil {
		return nil, fmt.Errorf("failed to watch google calendar: %w", err)
	}

	previous, err := a.webhooksService.ReplaceWebhook(ctx, &models.GoogleCalendarWebhook{
		IntegrationID: integration.ID,
		ChannelID:     channel.ID,
		ResourceID:    channel.ResourceID,
		ResourceURI:   channel.ResourceURI,
	})
	if err != nil {
		if stopErr := a.client.StopChannel(ctx, auth, channel.ID, channel.ResourceID); stopErr != nil {
			log.Printf("⚠️ Failed to stop unsaved Google Calendar channel %s: %v", channel.ID, stopErr)
		}
		return nil, fmt.Errorf("failed to store google calendar watch: %w", err)
	}
	if old, ok := previous.Get(); ok {
		a.stopChannel(ctx, auth, old)
	}

	if _, err := a.pull(ctx, integration.ID, auth, calendarID, nil); err != nil {
		log.Printf("⚠️ Baseline pull for guild %s failed, the next push will resync: %v", guildID, err)
	}

	log.Printf("📋 Completed successfully - Google Calendar channel %s registered for guild %s", channel.ID, guildID)
	return &models.WebhookRegistration{
		Provider:    models.ProviderGoogleCalendar,
		CallbackURL: callbackURL,
		Created:     []string{calendarID},
		Skipped:     []string{},
		Failed:      []string{},
	}, nil
}

// TeardownWebhook stops the stored channel and removes the registration row.
// Provider failures while stopping are logged, the row is removed regardless.
func (a *GoogleCalendarAdapter) TeardownWebhook(ctx context.Context, guildID string) error {
	log.Printf("📋 Starting to tear down Google Calendar watch for guild %s", guildID)
	maybeIntegration, err := a.integrationsService.GetIntegration(ctx, guildID, models.ProviderGoogleCalendar)
	if err != nil {
		return fmt.Errorf("failed to get google calendar integration: %w", err)
	}
	integration, ok := maybeIntegration.Get()
	if !ok {
		log.Printf("📋 Completed successfully - no Google Calendar integration for guild %s", guildID)
		return nil
	}

	maybeWebhook, err := a.webhooksService.GetWebhook(ctx, integration.ID)
	if err != nil {
		return fmt.Errorf("failed to get google calendar watch: %w", err)
	}
	webhook, ok := maybeWebhook.Get()
	if !ok {
		log.Printf("📋 Completed successfully - no Google Calendar watch for guild %s", guildID)
		return nil
	}

	creds, err := a.integrationsService.GetCredentials(ctx, integration.ID)
	if err != nil {
		return fmt.Errorf("failed to get google calendar credentials: %w", err)
	}
	if creds.IsConfigured(models.ProviderGoogleCalendar) {
		a.stopChannel(ctx, authFromCredentials(creds), webhook)
	}

	if _, err := a.webhooksService.DeleteWebhook(ctx, integration.ID); err != nil {
		return fmt.Errorf("failed to delete google calendar watch: %w", err)
	}

	log.Printf("📋 Completed successfully - Google Calendar channel %s removed for guild %s", webhook.ChannelID, guildID)
	return nil
}

func (a *GoogleCalendarAdapter) stopChannel(
	ctx context.Context,
	auth clients.GoogleOAuthCredentials,
	webhook *models.GoogleCalendarWebhook,
) {
	err := a.client.StopChannel(ctx, auth, webhook.ChannelID, webhook.ResourceID)
	switch {
	case err == nil:
		log.Printf("✅ Stopped Google Calendar channel %s", webhook.ChannelID)
	case errors.Is(err, core.ErrNotFound):
		log.Printf("📋 Google Calendar channel %s was already gone", webhook.ChannelID)
	default:
		log.Printf("⚠️ Failed to stop Google Calendar channel %s: %v", webhook.ChannelID, err)
	}
}

// Verify matches the channel and resource headers against the stored registration
func (a *GoogleCalendarAdapter) Verify(ctx context.Context, hook *models.InboundWebhook) error {
	channelID := hook.Header.Get(ChannelIDHeader)
	resourceID := hook.Header.Get(ResourceIDHeader)
	if channelID == "" || resourceID == "" || hook.Header.Get(ResourceURIHeader) == "" {
		return core.NewBadRequestError("missing google channel headers")
	}

	maybeIntegration, err := a.integrationsService.GetIntegration(ctx, hook.GuildID, models.ProviderGoogleCalendar)
	if err != nil {
		return fmt.Errorf("failed to get google calendar integration: %w", err)
	}
	integration, ok := maybeIntegration.Get()
	if !ok {
		return core.NewForbiddenError("no google calendar integration for guild")
	}

	maybeWebhook, err := a.webhooksService.GetWebhook(ctx, integration.ID)
	if err != nil {
		return fmt.Errorf("failed to get google calendar watch: %w", err)
	}
	webhook, ok := maybeWebhook.Get()
	if !ok {
		return core.NewForbiddenError("no google calendar watch registered")
	}

	channelMatches := subtle.ConstantTimeCompare([]byte(channelID), []byte(webhook.ChannelID)) == 1
	resourceMatches := subtle.ConstantTimeCompare([]byte(resourceID), []byte(webhook.ResourceID)) == 1
	if !channelMatches || !resourceMatches {
		return core.NewForbiddenError("google channel does not match the registered watch")
	}
	return nil
}

// Fetch pulls the change a push announces. Exactly one changed event is expected.
func (a *GoogleCalendarAdapter) Fetch(ctx context.Context, hook *models.InboundWebhook) ([]models.ProviderEvent, error) {
	if hook.Header.Get(ResourceStateHeader) == resourceStateSync {
		log.Printf("📋 Google Calendar sync handshake for guild %s acknowledged", hook.GuildID)
		return nil, nil
	}
	if hook.Integration == nil {
		return nil, fmt.Errorf("google calendar push for guild %s: %w", hook.GuildID, core.ErrNotFound)
	}

	creds, err := a.integrationsService.GetCredentials(ctx, hook.Integration.ID)
	if err != nil {
		return nil, fmt.Errorf("failed to get google calendar credentials: %w", err)
	}
	if !creds.IsConfigured(models.ProviderGoogleCalendar) {
		return nil, fmt.Errorf("google calendar integration %s: %w", hook.Integration.ID, core.ErrNotConfigured)
	}

	maybeWebhook, err := a.webhooksService.GetWebhook(ctx, hook.Integration.ID)
	if err != nil {
		return nil, fmt.Errorf("failed to get google calendar watch: %w", err)
	}
	webhook, ok := maybeWebhook.Get()
	if !ok {
		return nil, fmt.Errorf("google calendar watch for integration %s: %w", hook.Integration.ID, core.ErrNotFound)
	}

	items, err := a.pull(
		ctx,
		hook.Integration.ID,
		authFromCredentials(creds),
		creds.Get(models.CredentialGoogleCalendarID),
		webhook.SyncToken,
	)
	if err != nil {
		return nil, err
	}
	if len(items) != 1 {
		return nil, fmt.Errorf("expected exactly one changed event, got %d: %w", len(items), core.ErrStateInvariant)
	}

	event := items[0]
	return []models.ProviderEvent{{
		Provider: models.ProviderGoogleCalendar,
		Kind:     event.Status,
		Payload:  &event,
	}}, nil
}

// pull lists changes since syncToken and stores the next token. An invalidated token is
// cleared and the pull is retried once as a full sync.
func (a *GoogleCalendarAdapter) pull(
	ctx context.Context,
	integrationID string,
	auth clients.GoogleOAuthCredentials,
	calendarID string,
	syncToken *string,
) ([]clients.GoogleCalendarEvent, error) {
	token := ""
	if syncToken != nil {
		token = *syncToken
	}

	items, nextSyncToken, err := a.listChanges(ctx, auth, calendarID, token)
	if errors.Is(err, core.ErrSyncTokenInvalidated) && token != "" {
		log.Printf("⚠️ Sync token for integration %s was invalidated, running a full sync", integrationID)
		if err := a.webhooksService.UpdateSyncToken(ctx, integrationID, nil); err != nil {
			return nil, fmt.Errorf("failed to clear sync token: %w", err)
		}
		items, nextSyncToken, err = a.listChanges(ctx, auth, calendarID, "")
	}
	if err != nil {
		return nil, fmt.Errorf("failed to list google calendar changes: %w", err)
	}

	var next *string
	if nextSyncToken != "" {
		next = &nextSyncToken
	}
	if err := a.webhooksService.UpdateSyncToken(ctx, integrationID, next); err != nil {
		return nil, fmt.Errorf("failed to store sync token: %w", err)
	}
	return items, nil
}

// listChanges follows pagination until Google hands out the next sync token
func (a *GoogleCalendarAdapter) listChanges(
	ctx context.Context,
	auth clients.GoogleOAuthCredentials,
	calendarID, syncToken string,
) ([]clients.GoogleCalendarEvent, string, error) {
	var items []clients.GoogleCalendarEvent
	pageToken := ""
	for {
		page, err := a.client.ListEvents(ctx, auth, calendarID, syncToken, pageToken)
		if err != nil {
			return nil, "", err
		}
		items = append(items, page.Items...)
		if page.NextPageToken == "" {
			return items, page.NextSyncToken, nil
		}
		pageToken = page.NextPageToken
	}
}

// Classify infers the change from the event's current state: a deleted status wins,
// otherwise equal created and updated timestamps mean the event is new.
func (a *GoogleCalendarAdapter) Classify(event models.ProviderEvent) (models.Codename, bool) {
	e, ok := event.Payload.(*clients.GoogleCalendarEvent)
	if !ok {
		return "", false
	}
	if isDeleted(e) {
		return models.CodenameGoogleCalendarEventDeleted, true
	}
	if e.Created.Truncate(time.Second).Equal(e.Updated.Truncate(time.Second)) {
		return models.CodenameGoogleCalendarEventCreated, true
	}
	return models.CodenameGoogleCalendarEventUpdated, true
}

func isDeleted(e *clients.GoogleCalendarEvent) bool {
	return e.Status == "cancelled" || e.Status == "deleted"
}

func (a *GoogleCalendarAdapter) Render(event models.ProviderEvent, codename models.Codename) (*models.Notification, error) {
	e, ok := event.Payload.(*clients.GoogleCalendarEvent)
	if !ok {
		return nil, fmt.Errorf("unexpected google calendar payload %T", event.Payload)
	}

	notification := &models.Notification{
		Codename:     codename,
		Title:        notificationTitle,
		ThumbnailURL: thumbnailURL,
		Timestamp:    e.Updated,
	}
	if notification.Timestamp.IsZero() {
		notification.Timestamp = time.Now()
	}

	switch codename {
	case models.CodenameGoogleCalendarEventDeleted:
		notification.Description = "Calendar event deleted"
		notification.Color = providers.ParseColor(deletedEventColor)
		notification.Fields = []models.NotificationField{{Name: "Title", Value: "Event deleted"}}
		return notification, nil
	case models.CodenameGoogleCalendarEventCreated, models.CodenameGoogleCalendarEventUpdated:
	default:
		return nil, fmt.Errorf("no google calendar template for codename %s", codename)
	}

	date, clock, err := startDateAndTime(e.Start)
	if err != nil {
		return nil, err
	}

	description := e.Description
	if description == "" {
		description = defaultDescription
	}

	notification.Description = "Calendar event created"
	if codename == models.CodenameGoogleCalendarEventUpdated {
		notification.Description = "Calendar event updated"
	}
	notification.URL = e.HTMLLink
	notification.Color = providers.ParseColor(eventColor)
	notification.Fields = []models.NotificationField{
		{Name: "Title", Value: e.Summary},
		{Name: "Description", Value: description},
		{Name: "Date", Value: date, Inline: true},
		{Name: "Time", Value: clock, Inline: true},
	}
	return notification, nil
}

// startDateAndTime formats the start in the event's own time zone. All-day events only carry a date.
func startDateAndTime(start clients.GoogleEventTime) (string, string, error) {
	if start.DateTime == "" {
		if start.Date == "" {
			return "", "", fmt.Errorf("google calendar event has no start")
		}
		return start.Date, fullDayEvent, nil
	}

	t, err := time.Parse(time.RFC3339, start.DateTime)
	if err != nil {
		return "", "", fmt.Errorf("failed to parse event start %q: %w", start.DateTime, err)
	}
	if start.TimeZone != "" {
		if loc, err := time.LoadLocation(start.TimeZone); err == nil {
			t = t.In(loc)
		}
	}
	return t.Format("2006-01-02"), t.Format("15:04"), nil
}

func authFromCredentials(creds models.Credentials) clients.GoogleOAuthCredentials {
	return clients.GoogleOAuthCredentials{
		ClientID:     creds.Get(models.CredentialGoogleClientID),
		ClientSecret: creds.Get(models.CredentialGoogleClientSecret),
		RefreshToken: creds.Get(models.CredentialGoogleRefreshToken),
	}
}

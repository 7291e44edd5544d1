package trello

import (
	"context"
	"crypto/subtle"
	"encoding/json"
	"errors"
	"fmt"
	"log"
	"sync"

	"github.com/gammazero/workerpool"
	"golang.org/x/sync/errgroup"

	"relaybackend/clients"
	"relaybackend/core"
	"relaybackend/models"
	"relaybackend/providers"
	"relaybackend/services"
	"relaybackend/utils"
)

const (
	notificationTitle = "Trello Notification"
	thumbnailURL      = "https://cdn.iconscout.com/icon/free/png-256/trello-3-569395.png"
	embedColor        = "#0079BF"
	cardURLPrefix     = "https://trello.com/c/"
)

var codenameDescriptions = map[models.Codename]string{
	models.CodenameTrelloCreateCard: "Card created",
	models.CodenameTrelloUpdateCard: "Card updated",
	models.CodenameTrelloMoveCard:   "Card moved",
	models.CodenameTrelloDeleteCard: "Card deleted",
	models.CodenameTrelloCreateList: "List created",
	models.CodenameTrelloUpdateList: "List updated",
	models.CodenameTrelloDeleteList: "List deleted",
}

type TrelloAdapter struct {
	client              clients.TrelloClient
	integrationsService services.IntegrationsService
	webhookSecret       string
	serverOrigin        string
	concurrency         int
}

func NewTrelloAdapter(
	client clients.TrelloClient,
	integrationsService services.IntegrationsService,
	webhookSecret string,
	serverOrigin string,
	concurrency int,
) *TrelloAdapter {
	utils.AssertInvariant(webhookSecret != "", "trello webhook secret cannot be empty")
	if concurrency < 1 {
		concurrency = 1
	}
	return &TrelloAdapter{
		client:              client,
		integrationsService: integrationsService,
		webhookSecret:       webhookSecret,
		serverOrigin:        serverOrigin,
		concurrency:         concurrency,
	}
}

func (a *TrelloAdapter) Provider() models.Provider {
	return models.ProviderTrello
}

func (a *TrelloAdapter) Codenames() []models.Codename {
	return []models.Codename{
		models.CodenameTrelloCreateCard,
		models.CodenameTrelloUpdateCard,
		models.CodenameTrelloMoveCard,
		models.CodenameTrelloDeleteCard,
		models.CodenameTrelloCreateList,
		models.CodenameTrelloUpdateList,
		models.CodenameTrelloDeleteList,
	}
}

func (a *TrelloAdapter) callbackURL(guildID string) string {
	return providers.CallbackURL(a.serverOrigin, providers.TrelloWebhookPath, guildID, "secretId", a.webhookSecret)
}

// RegisterWebhook creates one webhook per organization board. Boards that already have our
// callback are skipped and per-board failures are reported instead of aborting the batch.
func (a *TrelloAdapter) RegisterWebhook(
	ctx context.Context,
	guildID string,
	creds models.Credentials,
) (*models.WebhookRegistration, error) {
	log.Printf("📋 Starting to register Trello webhooks for guild %s", guildID)
	if !creds.IsConfigured(models.ProviderTrello) {
		return nil, fmt.Errorf("trello credentials missing %v: %w", creds.MissingNames(models.ProviderTrello), core.ErrNotConfigured)
	}

	auth := authFromCredentials(creds)
	boards, err := a.client.GetOrganizationBoards(ctx, auth, creds.Get(models.CredentialTrelloOrganizationID))
	if err != nil {
		return nil, fmt.Errorf("failed to list trello boards: %w", err)
	}
	existing, err := a.client.GetTokenWebhooks(ctx, auth)
	if err != nil {
		return nil, fmt.Errorf("failed to list trello webhooks: %w", err)
	}

	callbackURL := a.callbackURL(guildID)
	registered := make(map[string]bool, len(existing))
	for _, hook := range existing {
		if hook.CallbackURL == callbackURL {
			registered[hook.IDModel] = true
		}
	}

	registration := &models.WebhookRegistration{
		Provider:    models.ProviderTrello,
		CallbackURL: providers.CallbackURL(a.serverOrigin, providers.TrelloWebhookPath, guildID),
		Created:     []string{},
		Skipped:     []string{},
		Failed:      []string{},
	}

	var mu sync.Mutex
	wp := workerpool.New(a.concurrency)
	for _, board := range boards {
		if registered[board.ID] {
			registration.Skipped = append(registration.Skipped, board.Name)
			continue
		}

		wp.Submit(func() {
			_, err := a.client.CreateWebhook(ctx, auth, clients.TrelloCreateWebhookParams{
				CallbackURL: callbackURL,
				IDModel:     board.ID,
				Description: fmt.Sprintf("Discord relay for board %s", board.Name),
			})

			mu.Lock()
			defer mu.Unlock()
			if err != nil {
				log.Printf("⚠️ Failed to create Trello webhook for board %s: %v", board.Name, err)
				registration.Failed = append(registration.Failed, board.Name)
				return
			}
			registration.Created = append(registration.Created, board.Name)
		})
	}
	wp.StopWait()

	if len(registration.Failed) > 0 && len(registration.Created)+len(registration.Skipped) == 0 {
		return registration, fmt.Errorf("failed to create a trello webhook for any of %d boards", len(registration.Failed))
	}
	if len(boards) == 0 {
		log.Printf("⚠️ Trello organization for guild %s has no boards, nothing registered", guildID)
	}

	log.Printf(
		"📋 Completed successfully - Trello webhooks for guild %s: %d created, %d skipped, %d failed",
		guildID,
		len(registration.Created),
		len(registration.Skipped),
		len(registration.Failed),
	)
	return registration, nil
}

// TeardownWebhook deletes every webhook owned by the stored API token, including ones
// this relay did not create. Trello offers no narrower filter.
func (a *TrelloAdapter) TeardownWebhook(ctx context.Context, guildID string) error {
	log.Printf("📋 Starting to tear down Trello webhooks for guild %s", guildID)
	creds, ok, err := a.storedCredentials(ctx, guildID)
	if err != nil {
		return err
	}
	if !ok {
		log.Printf("📋 Completed successfully - no configured Trello integration for guild %s", guildID)
		return nil
	}

	auth := authFromCredentials(creds)
	hooks, err := a.client.GetTokenWebhooks(ctx, auth)
	if err != nil {
		if errors.Is(err, core.ErrNotFound) {
			return nil
		}
		return fmt.Errorf("failed to list trello webhooks: %w", err)
	}

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(a.concurrency)
	for _, hook := range hooks {
		hookID := hook.ID
		g.Go(func() error {
			if err := a.client.DeleteWebhook(gctx, auth, hookID); err != nil && !errors.Is(err, core.ErrNotFound) {
				return fmt.Errorf("failed to delete trello webhook %s: %w", hookID, err)
			}
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return err
	}

	log.Printf("📋 Completed successfully - deleted %d Trello webhooks for guild %s", len(hooks), guildID)
	return nil
}

func (a *TrelloAdapter) storedCredentials(ctx context.Context, guildID string) (models.Credentials, bool, error) {
	maybeIntegration, err := a.integrationsService.GetIntegration(ctx, guildID, models.ProviderTrello)
	if err != nil {
		return nil, false, fmt.Errorf("failed to get trello integration: %w", err)
	}
	integration, ok := maybeIntegration.Get()
	if !ok {
		return nil, false, nil
	}
	creds, err := a.integrationsService.GetCredentials(ctx, integration.ID)
	if err != nil {
		return nil, false, fmt.Errorf("failed to get trello credentials: %w", err)
	}
	return creds, creds.IsConfigured(models.ProviderTrello), nil
}

// Verify checks the secretId embedded in the callback URL. A mismatch answers 410 so
// Trello drops the webhook.
func (a *TrelloAdapter) Verify(ctx context.Context, hook *models.InboundWebhook) error {
	secretID := hook.Query.Get("secretId")
	if subtle.ConstantTimeCompare([]byte(secretID), []byte(a.webhookSecret)) != 1 {
		return core.NewGoneError("trello secretId mismatch")
	}
	return nil
}

func (a *TrelloAdapter) Fetch(ctx context.Context, hook *models.InboundWebhook) ([]models.ProviderEvent, error) {
	var envelope actionEnvelope
	if err := json.Unmarshal(hook.Body, &envelope); err != nil {
		return nil, fmt.Errorf("failed to decode trello action: %w", err)
	}
	return []models.ProviderEvent{{
		Provider: models.ProviderTrello,
		Kind:     envelope.Action.Type,
		Payload:  envelope.Action,
	}}, nil
}

// Classify disambiguates the generic updateCard and updateList actions.
// An updateCard carrying only old.idList is the duplicate of a move and maps to nothing.
func (a *TrelloAdapter) Classify(event models.ProviderEvent) (models.Codename, bool) {
	act, ok := event.Payload.(action)
	if !ok {
		return "", false
	}

	switch act.Type {
	case "createCard":
		return models.CodenameTrelloCreateCard, true
	case "updateCard":
		switch {
		case act.Data.cardClosed():
			return models.CodenameTrelloDeleteCard, true
		case act.Data.hasListTransition():
			return models.CodenameTrelloMoveCard, true
		case act.Data.hasOldListID():
			return "", false
		default:
			return models.CodenameTrelloUpdateCard, true
		}
	case "createList":
		return models.CodenameTrelloCreateList, true
	case "updateList":
		if act.Data.listClosed() {
			return models.CodenameTrelloDeleteList, true
		}
		return models.CodenameTrelloUpdateList, true
	}
	return "", false
}

func (a *TrelloAdapter) Render(event models.ProviderEvent, codename models.Codename) (*models.Notification, error) {
	act, ok := event.Payload.(action)
	if !ok {
		return nil, fmt.Errorf("unexpected trello payload %T", event.Payload)
	}
	description, ok := codenameDescriptions[codename]
	if !ok {
		return nil, fmt.Errorf("no trello template for codename %s", codename)
	}

	notification := &models.Notification{
		Codename:     codename,
		Title:        notificationTitle,
		Description:  description,
		Color:        providers.ParseColor(embedColor),
		ThumbnailURL: thumbnailURL,
		Timestamp:    act.occurredAt(),
	}

	switch codename {
	case models.CodenameTrelloCreateList, models.CodenameTrelloUpdateList, models.CodenameTrelloDeleteList:
		if act.Data.List == nil {
			return nil, fmt.Errorf("trello %s action has no list", act.Type)
		}
		notification.Fields = []models.NotificationField{
			{Name: "List:", Value: act.Data.List.Name},
			{Name: "Board:", Value: act.Data.boardName()},
		}
		return notification, nil
	}

	if act.Data.Card == nil {
		return nil, fmt.Errorf("trello %s action has no card", act.Type)
	}
	c := act.Data.Card
	if c.ShortLink != "" {
		notification.URL = cardURLPrefix + c.ShortLink
	}

	fields := []models.NotificationField{{Name: "Card:", Value: c.Name}}
	if c.Desc != "" {
		fields = append(fields, models.NotificationField{Name: "Description:", Value: c.Desc, Inline: true})
	}
	if codename == models.CodenameTrelloMoveCard {
		fields = append(fields,
			models.NotificationField{Name: "List before:", Value: listName(act.Data.ListBefore), Inline: true},
			models.NotificationField{Name: "List after:", Value: listName(act.Data.ListAfter), Inline: true},
		)
	}
	fields = append(fields, models.NotificationField{Name: "Board:", Value: act.Data.boardName()})
	notification.Fields = fields
	return notification, nil
}

func listName(l *list) string {
	if l == nil {
		return ""
	}
	return l.Name
}

func authFromCredentials(creds models.Credentials) clients.TrelloAuth {
	return clients.TrelloAuth{
		APIKey:   creds.Get(models.CredentialTrelloAPIKey),
		APIToken: creds.Get(models.CredentialTrelloAPIToken),
	}
}

package github

import (
	"context"
	"crypto/hmac"
	"crypto/sha1"
	"encoding/hex"
	"encoding/json"
	"errors"
	"fmt"
	"log"
	"strconv"
	"strings"
	"time"

	"relaybackend/clients"
	"relaybackend/core"
	"relaybackend/models"
	"relaybackend/providers"
	"relaybackend/services"
	"relaybackend/utils"
)

const (
	EventHeader     = "X-GitHub-Event"
	SignatureHeader = "X-Hub-Signature"

	signaturePrefix   = "sha1="
	notificationTitle = "GitHub Notification"
	thumbnailURL      = "https://github.githubassets.com/assets/GitHub-Mark-ea2971cee799.png"
	embedColor        = "#0079BF"
)

// eventTemplate renders one X-GitHub-Event category as three inline fields
type eventTemplate struct {
	codename models.Codename
	labels   [3]string
	values   func(p *eventPayload) [3]string
	url      func(p *eventPayload) string
}

var eventTemplates = map[string]eventTemplate{
	"push": {
		codename: models.CodenameGitHubPush,
		labels:   [3]string{"Repository", "Pusher", "Commits"},
		values: func(p *eventPayload) [3]string {
			pusher := ""
			if p.Pusher != nil {
				pusher = p.Pusher.Name
			}
			return [3]string{p.repoName(), pusher, strconv.Itoa(len(p.Commits))}
		},
		url: func(p *eventPayload) string { return p.Compare },
	},
	"pull_request": {
		codename: models.CodenameGitHubPullRequest,
		labels:   [3]string{"Repository", "Pull Request", "Action"},
		values: func(p *eventPayload) [3]string {
			return [3]string{p.repoName(), p.pullRequestTitle(), p.Action}
		},
		url: (*eventPayload).pullRequestURL,
	},
	"release": {
		codename: models.CodenameGitHubRelease,
		labels:   [3]string{"Repository", "Release", "Action"},
		values: func(p *eventPayload) [3]string {
			tag := ""
			if p.Release != nil {
				tag = p.Release.TagName
			}
			return [3]string{p.repoName(), tag, p.Action}
		},
		url: func(p *eventPayload) string {
			if p.Release == nil {
				return ""
			}
			return p.Release.HTMLURL
		},
	},
	"discussion": {
		codename: models.CodenameGitHubDiscussions,
		labels:   [3]string{"Repository", "Discussion", "Action"},
		values: func(p *eventPayload) [3]string {
			title := ""
			if p.Discussion != nil {
				title = p.Discussion.Title
			}
			return [3]string{p.repoName(), title, p.Action}
		},
		url: func(p *eventPayload) string {
			if p.Discussion == nil {
				return ""
			}
			return p.Discussion.HTMLURL
		},
	},
	"create": {
		codename: models.CodenameGitHubBranch,
		labels:   [3]string{"Repository", "Ref", "Ref Type"},
		values: func(p *eventPayload) [3]string {
			return [3]string{p.repoName(), p.Ref, p.RefType}
		},
	},
	"commit_comment": {
		codename: models.CodenameGitHubCommit,
		labels:   [3]string{"Repository", "Commit", "Comment"},
		values: func(p *eventPayload) [3]string {
			commitID := ""
			if p.Comment != nil {
				commitID = p.Comment.CommitID
			}
			return [3]string{p.repoName(), commitID, p.commentBody()}
		},
		url: func(p *eventPayload) string {
			if p.Comment == nil {
				return ""
			}
			return p.Comment.HTMLURL
		},
	},
	"deployment": {
		codename: models.CodenameGitHubDeployment,
		labels:   [3]string{"Repository", "Deployment", "Action"},
		values: func(p *eventPayload) [3]string {
			return [3]string{p.repoName(), p.environment(), p.Action}
		},
	},
	"deployment_status": {
		codename: models.CodenameGitHubDeploymentStatus,
		labels:   [3]string{"Repository", "Deployment", "Status"},
		values: func(p *eventPayload) [3]string {
			state := ""
			if p.DeploymentStatus != nil {
				state = p.DeploymentStatus.State
			}
			return [3]string{p.repoName(), p.environment(), state}
		},
	},
	"member": {
		codename: models.CodenameGitHubMember,
		labels:   [3]string{"Repository", "Member", "Action"},
		values: func(p *eventPayload) [3]string {
			login := ""
			if p.Member != nil {
				login = p.Member.Login
			}
			return [3]string{p.repoName(), login, p.Action}
		},
	},
	"pull_request_review": {
		codename: models.CodenameGitHubPullRequestReview,
		labels:   [3]string{"Repository", "Pull Request", "Action"},
		values: func(p *eventPayload) [3]string {
			return [3]string{p.repoName(), p.pullRequestTitle(), p.Action}
		},
		url: (*eventPayload).pullRequestURL,
	},
	"pull_request_review_comment": {
		codename: models.CodenameGitHubPullRequestReviewComment,
		labels:   [3]string{"Repository", "Pull Request", "Comment"},
		values: func(p *eventPayload) [3]string {
			return [3]string{p.repoName(), p.pullRequestTitle(), p.commentBody()}
		},
		url: (*eventPayload).pullRequestURL,
	},
	"pull_request_review_thread": {
		codename: models.CodenameGitHubPullRequestReviewThread,
		labels:   [3]string{"Repository", "Pull Request", "Action"},
		values: func(p *eventPayload) [3]string {
			return [3]string{p.repoName(), p.pullRequestTitle(), p.Action}
		},
		url: (*eventPayload).pullRequestURL,
	},
}

type GitHubAdapter struct {
	client              clients.GitHubClient
	integrationsService services.IntegrationsService
	webhookSecret       string
	serverOrigin        string
}

func NewGitHubAdapter(
	client clients.GitHubClient,
	integrationsService services.IntegrationsService,
	webhookSecret string,
	serverOrigin string,
) *GitHubAdapter {
	utils.AssertInvariant(webhookSecret != "", "github webhook secret cannot be empty")
	return &GitHubAdapter{
		client:              client,
		integrationsService: integrationsService,
		webhookSecret:       webhookSecret,
		serverOrigin:        serverOrigin,
	}
}

func (a *GitHubAdapter) Provider() models.Provider {
	return models.ProviderGitHub
}

func (a *GitHubAdapter) Codenames() []models.Codename {
	codenames := make([]models.Codename, 0, len(eventTemplates))
	for _, tmpl := range eventTemplates {
		codenames = append(codenames, tmpl.codename)
	}
	return codenames
}

func (a *GitHubAdapter) callbackURL(guildID string) string {
	return providers.CallbackURL(a.serverOrigin, providers.GitHubWebhookPath, guildID)
}

// RegisterWebhook installs a single organization hook subscribed to every event.
// An existing hook with the same callback URL is left untouched.
func (a *GitHubAdapter) RegisterWebhook(
	ctx context.Context,
	guildID string,
	creds models.Credentials,
) (*models.WebhookRegistration, error) {
	log.Printf("📋 Starting to register GitHub webhook for guild %s", guildID)
	if !creds.IsConfigured(models.ProviderGitHub) {
		return nil, fmt.Errorf("github credentials missing %v: %w", creds.MissingNames(models.ProviderGitHub), core.ErrNotConfigured)
	}

	token := creds.Get(models.CredentialGitHubToken)
	organization := creds.Get(models.CredentialGitHubOrganization)
	callbackURL := a.callbackURL(guildID)
	registration := &models.WebhookRegistration{
		Provider:    models.ProviderGitHub,
		CallbackURL: callbackURL,
		Created:     []string{},
		Skipped:     []string{},
		Failed:      []string{},
	}

	hooks, err := a.client.ListOrgHooks(ctx, token, organization)
	if err != nil {
		return nil, fmt.Errorf("failed to list github hooks: %w", err)
	}
	for _, hook := range hooks {
		if hook.Config.URL == callbackURL {
			log.Printf("📋 Completed successfully - GitHub hook %d already exists for guild %s", hook.ID, guildID)
			registration.Skipped = append(registration.Skipped, organization)
			return registration, nil
		}
	}

	hook, err := a.client.CreateOrgHook(ctx, token, organization, clients.GitHubHookConfig{
		URL:         callbackURL,
		ContentType: "json",
		Secret:      a.webhookSecret,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create github hook: %w", err)
	}
	registration.Created = append(registration.Created, organization)

	log.Printf("📋 Completed successfully - created GitHub hook %d for guild %s", hook.ID, guildID)
	return registration, nil
}

// TeardownWebhook removes the organization hooks pointing at this guild's callback
func (a *GitHubAdapter) TeardownWebhook(ctx context.Context, guildID string) error {
	log.Printf("📋 Starting to tear down GitHub webhook for guild %s", guildID)
	maybeIntegration, err := a.integrationsService.GetIntegration(ctx, guildID, models.ProviderGitHub)
	if err != nil {
		return fmt.Errorf("failed to get github integration: %w", err)
	}
	integration, ok := maybeIntegration.Get()
	if !ok {
		log.Printf("📋 Completed successfully - no GitHub integration for guild %s", guildID)
		return nil
	}
	creds, err := a.integrationsService.GetCredentials(ctx, integration.ID)
	if err != nil {
		return fmt.Errorf("failed to get github credentials: %w", err)
	}
	if !creds.IsConfigured(models.ProviderGitHub) {
		log.Printf("📋 Completed successfully - GitHub integration for guild %s has no credentials", guildID)
		return nil
	}

	token := creds.Get(models.CredentialGitHubToken)
	organization := creds.Get(models.CredentialGitHubOrganization)
	hooks, err := a.client.ListOrgHooks(ctx, token, organization)
	if err != nil {
		if errors.Is(err, core.ErrNotFound) {
			return nil
		}
		return fmt.Errorf("failed to list github hooks: %w", err)
	}

	callbackURL := a.callbackURL(guildID)
	deleted := 0
	for _, hook := range hooks {
		if hook.Config.URL != callbackURL {
			continue
		}
		if err := a.client.DeleteOrgHook(ctx, token, organization, hook.ID); err != nil && !errors.Is(err, core.ErrNotFound) {
			return fmt.Errorf("failed to delete github hook %d: %w", hook.ID, err)
		}
		deleted++
	}

	log.Printf("📋 Completed successfully - deleted %d GitHub hooks for guild %s", deleted, guildID)
	return nil
}

// Verify checks X-Hub-Signature, the HMAC-SHA1 of the raw body keyed with the shared secret
func (a *GitHubAdapter) Verify(ctx context.Context, hook *models.InboundWebhook) error {
	signature := hook.Header.Get(SignatureHeader)
	if !strings.HasPrefix(signature, signaturePrefix) {
		return core.NewForbiddenError("missing or malformed github signature")
	}

	mac := hmac.New(sha1.New, []byte(a.webhookSecret))
	mac.Write(hook.Body)
	expected := signaturePrefix + hex.EncodeToString(mac.Sum(nil))

	if !hmac.Equal([]byte(expected), []byte(signature)) {
		return core.NewForbiddenError("github signature mismatch")
	}
	return nil
}

func (a *GitHubAdapter) Fetch(ctx context.Context, hook *models.InboundWebhook) ([]models.ProviderEvent, error) {
	var payload eventPayload
	if err := json.Unmarshal(hook.Body, &payload); err != nil {
		return nil, fmt.Errorf("failed to decode github event: %w", err)
	}
	return []models.ProviderEvent{{
		Provider: models.ProviderGitHub,
		Kind:     hook.Header.Get(EventHeader),
		Payload:  &payload,
	}}, nil
}

func (a *GitHubAdapter) Classify(event models.ProviderEvent) (models.Codename, bool) {
	tmpl, ok := eventTemplates[event.Kind]
	if !ok {
		return "", false
	}
	return tmpl.codename, true
}

func (a *GitHubAdapter) Render(event models.ProviderEvent, codename models.Codename) (*models.Notification, error) {
	payload, ok := event.Payload.(*eventPayload)
	if !ok {
		return nil, fmt.Errorf("unexpected github payload %T", event.Payload)
	}
	tmpl, ok := eventTemplates[event.Kind]
	if !ok || tmpl.codename != codename {
		return nil, fmt.Errorf("no github template for event %q and codename %s", event.Kind, codename)
	}

	values := tmpl.values(payload)
	fields := make([]models.NotificationField, len(tmpl.labels))
	for i, label := range tmpl.labels {
		fields[i] = models.NotificationField{Name: label, Value: values[i], Inline: true}
	}

	link := payload.repoURL()
	if tmpl.url != nil {
		if specific := tmpl.url(payload); specific != "" {
			link = specific
		}
	}

	return &models.Notification{
		Codename:     codename,
		Title:        notificationTitle,
		Description:  fmt.Sprintf("A new GitHub event has occurred: %s", codename),
		URL:          link,
		Color:        providers.ParseColor(embedColor),
		ThumbnailURL: thumbnailURL,
		Fields:       fields,
		Timestamp:    time.Now(),
	}, nil
}

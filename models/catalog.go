package models

import (
	"fmt"
	"sort"
)

// Codename is the provider-specific identifier produced by classification
type Codename string

const (
	CodenameTrelloCreateCard Codename = "createCard"
	CodenameTrelloUpdateCard Codename = "updateCard"
	CodenameTrelloMoveCard   Codename = "moveCard"
	CodenameTrelloDeleteCard Codename = "deleteCard"
	CodenameTrelloCreateList Codename = "createList"
	CodenameTrelloUpdateList Codename = "updateList"
	CodenameTrelloDeleteList Codename = "deleteList"

	CodenameGitHubPush                     Codename = "github-push"
	CodenameGitHubPullRequest              Codename = "github-pull-request"
	CodenameGitHubRelease                  Codename = "github-release"
	CodenameGitHubDiscussions              Codename = "github-discussions"
	CodenameGitHubBranch                   Codename = "github-branch"
	CodenameGitHubCommit                   Codename = "github-commit"
	CodenameGitHubDeployment               Codename = "github-deployment"
	CodenameGitHubDeploymentStatus         Codename = "github-deployment-status"
	CodenameGitHubMember                   Codename = "github-member"
	CodenameGitHubPullRequestReview        Codename = "github-pull-request-review"
	CodenameGitHubPullRequestReviewComment Codename = "github-pull-request-review-comment"
	CodenameGitHubPullRequestReviewThread  Codename = "github-pull-request-review-thread"

	CodenameGoogleCalendarEventCreated Codename = "google-calendar-event-created"
	CodenameGoogleCalendarEventUpdated Codename = "google-calendar-event-updated"
	CodenameGoogleCalendarEventDeleted Codename = "google-calendar-event-deleted"
)

// NotificationType pairs the display name users subscribe to with the codename the adapter emits
type NotificationType struct {
	DisplayName string   `json:"name"`
	Codename    Codename `json:"codename"`
}

var notificationCatalog = map[Provider][]NotificationType{
	ProviderTrello: {
		{DisplayName: "Card Created", Codename: CodenameTrelloCreateCard},
		{DisplayName: "Card Updated", Codename: CodenameTrelloUpdateCard},
		{DisplayName: "Card Move", Codename: CodenameTrelloMoveCard},
		{DisplayName: "Card Deleted", Codename: CodenameTrelloDeleteCard},
		{DisplayName: "List Created", Codename: CodenameTrelloCreateList},
		{DisplayName: "List Updated", Codename: CodenameTrelloUpdateList},
		{DisplayName: "List Deleted", Codename: CodenameTrelloDeleteList},
	},
	ProviderGitHub: {
		{DisplayName: "Push", Codename: CodenameGitHubPush},
		{DisplayName: "Pull Request", Codename: CodenameGitHubPullRequest},
		{DisplayName: "Release", Codename: CodenameGitHubRelease},
		{DisplayName: "Discussions", Codename: CodenameGitHubDiscussions},
		{DisplayName: "Branch", Codename: CodenameGitHubBranch},
		{DisplayName: "Commit", Codename: CodenameGitHubCommit},
		{DisplayName: "Deployment", Codename: CodenameGitHubDeployment},
		{DisplayName: "Deployment Status", Codename: CodenameGitHubDeploymentStatus},
		{DisplayName: "Member", Codename: CodenameGitHubMember},
		{DisplayName: "Pull Request Review", Codename: CodenameGitHubPullRequestReview},
		{DisplayName: "Pull Request Review Comment", Codename: CodenameGitHubPullRequestReviewComment},
		{DisplayName: "Pull Request Review Thread", Codename: CodenameGitHubPullRequestReviewThread},
	},
	ProviderGoogleCalendar: {
		{DisplayName: "Calendar Event Created", Codename: CodenameGoogleCalendarEventCreated},
		{DisplayName: "Calendar Event Updated", Codename: CodenameGoogleCalendarEventUpdated},
		{DisplayName: "Calendar Event Deleted", Codename: CodenameGoogleCalendarEventDeleted},
	},
}

// CommandType is a bot command a guild can enable for an integration.
// Only the enablement is stored here, the commands themselves live in the bot.
type CommandType struct {
	Name        string `json:"name"`
	Description string `json:"description"`
}

var commandCatalog = map[Provider][]CommandType{
	ProviderTrello: {
		{Name: "tcreate", Description: "Create a card or list on Trello"},
		{Name: "tdelete", Description: "Delete a card or list on Trello"},
		{Name: "tmove", Description: "Move a card to another list"},
		{Name: "tlabel", Description: "Add a label to a card"},
		{Name: "ttask", Description: "Assign a member to a card"},
		{Name: "tlistcards", Description: "List the cards of a list"},
	},
	ProviderGitHub: {
		{Name: "gcreate", Description: "Create a pull request or branch on GitHub"},
		{Name: "gdelete", Description: "Close a pull request or delete a branch on GitHub"},
		{Name: "gtask", Description: "Assign a member to an issue or pull request"},
	},
	ProviderGoogleCalendar: {
		{Name: "ccreate", Description: "Create a calendar event"},
		{Name: "cdelete", Description: "Delete a calendar event"},
		{Name: "clist", Description: "List upcoming calendar events"},
	},
}

func NotificationCatalog(provider Provider) []NotificationType {
	entries := notificationCatalog[provider]
	out := make([]NotificationType, len(entries))
	copy(out, entries)
	return out
}

func CommandCatalog(provider Provider) []CommandType {
	entries := commandCatalog[provider]
	out := make([]CommandType, len(entries))
	copy(out, entries)
	return out
}

// LookupNotification finds the catalog entry for a codename
func LookupNotification(provider Provider, codename Codename) (NotificationType, bool) {
	for _, entry := range notificationCatalog[provider] {
		if entry.Codename == codename {
			return entry, true
		}
	}
	return NotificationType{}, false
}

func IsNotificationName(provider Provider, displayName string) bool {
	for _, entry := range notificationCatalog[provider] {
		if entry.DisplayName == displayName {
			return true
		}
	}
	return false
}

func IsCommandName(provider Provider, name string) bool {
	for _, entry := range commandCatalog[provider] {
		if entry.Name == name {
			return true
		}
	}
	return false
}

// ValidateCatalog checks that the codenames an adapter can emit and the catalog entries
// for its provider are the same set. Called once at startup for every adapter.
func ValidateCatalog(provider Provider, codenames []Codename) error {
	entries := notificationCatalog[provider]
	if len(entries) == 0 {
		return fmt.Errorf("no notification catalog for provider %s", provider)
	}

	emitted := make(map[Codename]bool, len(codenames))
	for _, c := range codenames {
		if _, ok := LookupNotification(provider, c); !ok {
			return fmt.Errorf("codename %q of provider %s has no catalog entry", c, provider)
		}
		emitted[c] = true
	}

	var orphaned []string
	for _, entry := range entries {
		if !emitted[entry.Codename] {
			orphaned = append(orphaned, string(entry.Codename))
		}
	}
	if len(orphaned) > 0 {
		sort.Strings(orphaned)
		return fmt.Errorf("catalog entries of provider %s are never emitted: %v", provider, orphaned)
	}
	return nil
}

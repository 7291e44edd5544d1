package clients

import "time"

// TrelloAuth is the key/token pair every Trello request is signed with
type TrelloAuth struct {
	APIKey   string
	APIToken string
}

type TrelloBoard struct {
	ID     string `json:"id"`
	Name   string `json:"name"`
	Closed bool   `json:"closed"`
}

type TrelloWebhook struct {
	ID          string `json:"id"`
	Description string `json:"description"`
	IDModel     string `json:"idModel"`
	CallbackURL string `json:"callbackURL"`
	Active      bool   `json:"active"`
}

type TrelloCreateWebhookParams struct {
	CallbackURL string `json:"callbackURL"`
	IDModel     string `json:"idModel"`
	Description string `json:"description,omitempty"`
}

type GitHubHookConfig struct {
	URL         string `json:"url"`
	ContentType string `json:"content_type"`
	Secret      string `json:"secret,omitempty"`
	InsecureSSL string `json:"insecure_ssl,omitempty"`
}

type GitHubHook struct {
	ID     int64            `json:"id"`
	Name   string           `json:"name"`
	Active bool             `json:"active"`
	Events []string         `json:"events"`
	Config GitHubHookConfig `json:"config"`
}

// GoogleOAuthCredentials are exchanged for access tokens by the calendar client
type GoogleOAuthCredentials struct {
	ClientID     string
	ClientSecret string
	RefreshToken string
}

type GoogleWatchChannel struct {
	ID          string `json:"id"`
	ResourceID  string `json:"resourceId"`
	ResourceURI string `json:"resourceUri"`
	Expiration  string `json:"expiration,omitempty"`
}

// GoogleEventTime holds either an all-day Date or a DateTime
type GoogleEventTime struct {
	Date     string `json:"date,omitempty"`
	DateTime string `json:"dateTime,omitempty"`
	TimeZone string `json:"timeZone,omitempty"`
}

type GoogleCalendarEvent struct {
	ID          string          `json:"id"`
	Status      string          `json:"status"`
	Summary     string          `json:"summary"`
	Description string          `json:"description"`
	HTMLLink    string          `json:"htmlLink"`
	Created     time.Time       `json:"created"`
	Updated     time.Time       `json:"updated"`
	Start       GoogleEventTime `json:"start"`
	End         GoogleEventTime `json:"end"`
}

type GoogleEventsPage struct {
	Items         []GoogleCalendarEvent `json:"items"`
	NextPageToken string                `json:"nextPageToken"`
	NextSyncToken string                `json:"nextSyncToken"`
}

package models

import (
	"net/http"
	"net/url"
	"time"
)

// InboundWebhook is the transport-independent view of a provider callback
type InboundWebhook struct {
	Provider   Provider
	Method     string
	GuildID    string
	Query      url.Values
	Header     http.Header
	Body       []byte
	ReceivedAt time.Time

	// Integration is resolved by the relay after verification succeeds
	Integration *Integration
}

// ProviderEvent is a single provider change. Payload holds the adapter's own decoded type.
type ProviderEvent struct {
	Provider Provider
	Kind     string
	Payload  any
}

type NotificationField struct {
	Name   string `json:"name"`
	Value  string `json:"value"`
	Inline bool   `json:"inline"`
}

// Notification is the rendered message handed to the delivery sink
type Notification struct {
	Codename     Codename            `json:"codename"`
	Title        string              `json:"title"`
	Description  string              `json:"description"`
	URL          string              `json:"url,omitempty"`
	Color        int                 `json:"color"`
	ThumbnailURL string              `json:"thumbnail_url,omitempty"`
	Fields       []NotificationField `json:"fields"`
	Timestamp    time.Time           `json:"timestamp"`
}

// WebhookRegistration summarises what RegisterWebhook did on the provider side
type WebhookRegistration struct {
	Provider    Provider `json:"provider"`
	CallbackURL string   `json:"callback_url"`
	Created     []string `json:"created"`
	Skipped     []string `json:"skipped"`
	Failed      []string `json:"failed"`
}

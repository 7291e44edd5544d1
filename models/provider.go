package models

import "strings"

// Provider identifies one of the three external systems a guild can connect
type Provider string

const (
	ProviderTrello         Provider = "trello"
	ProviderGitHub         Provider = "github"
	ProviderGoogleCalendar Provider = "googlecalendar"
)

// AllProviders is the order integrations are created in during onboarding
var AllProviders = []Provider{ProviderTrello, ProviderGitHub, ProviderGoogleCalendar}

// ParseProvider accepts the stored provider key case-insensitively
func ParseProvider(value string) (Provider, bool) {
	candidate := Provider(strings.ToLower(strings.TrimSpace(value)))
	for _, p := range AllProviders {
		if p == candidate {
			return p, true
		}
	}
	return "", false
}

func (p Provider) DisplayName() string {
	switch p {
	case ProviderTrello:
		return "Trello"
	case ProviderGitHub:
		return "GitHub"
	case ProviderGoogleCalendar:
		return "Google Calendar"
	}
	return string(p)
}

func (p Provider) String() string {
	return string(p)
}

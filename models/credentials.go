package models

import "strings"

// Credential names as they are stored in integration_credentials.name
const (
	CredentialTrelloOrganizationID = "Organization ID"
	CredentialTrelloAPIKey         = "API Key"
	CredentialTrelloAPIToken       = "API Token"

	CredentialGitHubToken        = "Token"
	CredentialGitHubOrganization = "Organization"

	CredentialGoogleCalendarID   = "Calendar ID"
	CredentialGoogleClientID     = "Client ID"
	CredentialGoogleClientSecret = "Client Secret"
	CredentialGoogleRefreshToken = "Token"
)

var credentialCatalog = map[Provider][]string{
	ProviderTrello: {
		CredentialTrelloOrganizationID,
		CredentialTrelloAPIKey,
		CredentialTrelloAPIToken,
	},
	ProviderGitHub: {
		CredentialGitHubToken,
		CredentialGitHubOrganization,
	},
	ProviderGoogleCalendar: {
		CredentialGoogleCalendarID,
		CredentialGoogleClientID,
		CredentialGoogleClientSecret,
		CredentialGoogleRefreshToken,
	},
}

// CredentialNames returns the fixed credential catalog of a provider
func (p Provider) CredentialNames() []string {
	names := credentialCatalog[p]
	out := make([]string, len(names))
	copy(out, names)
	return out
}

// IsCredentialName reports whether name belongs to the provider's catalog
func (p Provider) IsCredentialName(name string) bool {
	for _, n := range credentialCatalog[p] {
		if n == name {
			return true
		}
	}
	return false
}

// Credential is one stored row of an integration's credential batch
type Credential struct {
	IntegrationID string `db:"integration_id" json:"integration_id"`
	Name          string `db:"name"           json:"name"`
	Value         string `db:"value"          json:"-"`
}

// Credentials maps credential names to values for a single integration
type Credentials map[string]string

func (c Credentials) Get(name string) string {
	return strings.TrimSpace(c[name])
}

// IsConfigured is true only when every catalog name has a non-empty value
func (c Credentials) IsConfigured(provider Provider) bool {
	names := credentialCatalog[provider]
	if len(names) == 0 {
		return false
	}
	for _, name := range names {
		if c.Get(name) == "" {
			return false
		}
	}
	return true
}

// MissingNames lists the catalog names that are still empty
func (c Credentials) MissingNames(provider Provider) []string {
	var missing []string
	for _, name := range credentialCatalog[provider] {
		if c.Get(name) == "" {
			missing = append(missing, name)
		}
	}
	return missing
}

func CredentialsFromRows(rows []*Credential) Credentials {
	creds := make(Credentials, len(rows))
	for _, row := range rows {
		creds[row.Name] = row.Value
	}
	return creds
}

package trello

import (
	"context"
	"errors"
	"net/http"
	"net/url"
	"testing"

	"github.com/samber/mo"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"relaybackend/clients"
	trelloclient "relaybackend/clients/trello"
	"relaybackend/core"
	"relaybackend/models"
	"relaybackend/services/integrations"
)

const (
	testSecret = "webhook-secret"
	testOrigin = "https://relay.example.com"
	testGuild  = "guild-1"
)

var testCreds = models.Credentials{
	models.CredentialTrelloOrganizationID: "org-1",
	models.CredentialTrelloAPIKey:         "key",
	models.CredentialTrelloAPIToken:       "token",
}

var testAuth = clients.TrelloAuth{APIKey: "key", APIToken: "token"}

func newTestAdapter() (*TrelloAdapter, *trelloclient.MockTrelloClient, *integrations.MockIntegrationsService) {
	client := &trelloclient.MockTrelloClient{}
	integrationsService := &integrations.MockIntegrationsService{}
	return NewTrelloAdapter(client, integrationsService, testSecret, testOrigin, 2), client, integrationsService
}

func fetchOne(t *testing.T, adapter *TrelloAdapter, body string) models.ProviderEvent {
	t.Helper()
	events, err := adapter.Fetch(context.Background(), &models.InboundWebhook{Body: []byte(body)})
	require.NoError(t, err)
	require.Len(t, events, 1)
	return events[0]
}

func TestTrelloAdapter_Verify(t *testing.T) {
	adapter, _, _ := newTestAdapter()

	t.Run("matching secret", func(t *testing.T) {
		hook := &models.InboundWebhook{Method: http.MethodPost, Query: url.Values{"secretId": {testSecret}}}
		assert.NoError(t, adapter.Verify(context.Background(), hook))
	})

	for name, query := range map[string]url.Values{
		"wrong secret":   {"secretId": {"nope"}},
		"missing secret": {},
		"prefix only":    {"secretId": {testSecret[:5]}},
	} {
		t.Run(name, func(t *testing.T) {
			err := adapter.Verify(context.Background(), &models.InboundWebhook{Query: query})
			verr, ok := core.AsVerificationError(err)
			require.True(t, ok)
			assert.Equal(t, http.StatusGone, verr.StatusCode)
		})
	}
}

func TestTrelloAdapter_Classify(t *testing.T) {
	adapter, _, _ := newTestAdapter()

	tests := []struct {
		name     string
		body     string
		expected models.Codename
		ok       bool
	}{
		{
			name:     "create card",
			body:     `{"action":{"type":"createCard","data":{"card":{"name":"A"}}}}`,
			expected: models.CodenameTrelloCreateCard,
			ok:       true,
		},
		{
			name:     "closed card is a delete",
			body:     `{"action":{"type":"updateCard","data":{"card":{"name":"A","closed":true},"listBefore":{"name":"x"}}}}`,
			expected: models.CodenameTrelloDeleteCard,
			ok:       true,
		},
		{
			name:     "list transition is a move",
			body:     `{"action":{"type":"updateCard","data":{"card":{"name":"A"},"listBefore":{"name":"To Do"},"listAfter":{"name":"Done"},"old":{"idList":"l1"}}}}`,
			expected: models.CodenameTrelloMoveCard,
			ok:       true,
		},
		{
			name: "old idList alone is a duplicate move",
			body: `{"action":{"type":"updateCard","data":{"card":{"name":"A"},"old":{"idList":"l1"}}}}`,
			ok:   false,
		},
		{
			name:     "plain update",
			body:     `{"action":{"type":"updateCard","data":{"card":{"name":"A"},"old":{"name":"B"}}}}`,
			expected: models.CodenameTrelloUpdateCard,
			ok:       true,
		},
		{
			name:     "create list",
			body:     `{"action":{"type":"createList","data":{"list":{"name":"L"}}}}`,
			expected: models.CodenameTrelloCreateList,
			ok:       true,
		},
		{
			name:     "closed list is a delete",
			body:     `{"action":{"type":"updateList","data":{"list":{"name":"L","closed":true}}}}`,
			expected: models.CodenameTrelloDeleteList,
			ok:       true,
		},
		{
			name:     "list rename",
			body:     `{"action":{"type":"updateList","data":{"list":{"name":"L"}}}}`,
			expected: models.CodenameTrelloUpdateList,
			ok:       true,
		},
		{
			name: "unknown action",
			body: `{"action":{"type":"addMemberToCard","data":{}}}`,
			ok:   false,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			codename, ok := adapter.Classify(fetchOne(t, adapter, tt.body))
			assert.Equal(t, tt.ok, ok)
			assert.Equal(t, tt.expected, codename)
		})
	}
}

func TestTrelloAdapter_CodenamesMatchCatalog(t *testing.T) {
	adapter, _, _ := newTestAdapter()
	assert.NoError(t, models.ValidateCatalog(adapter.Provider(), adapter.Codenames()))
}

func TestTrelloAdapter_Fetch_InvalidBody(t *testing.T) {
	adapter, _, _ := newTestAdapter()
	_, err := adapter.Fetch(context.Background(), &models.InboundWebhook{Body: []byte("not json")})
	assert.Error(t, err)
}

func TestTrelloAdapter_Render(t *testing.T) {
	adapter, _, _ := newTestAdapter()

	t.Run("closed card renders as deleted", func(t *testing.T) {
		event := fetchOne(t, adapter, `{"action":{"type":"updateCard","date":"2026-03-01T10:00:00.000Z","data":{
			"card":{"name":"Fix login","desc":"","closed":true,"shortLink":"abc"},
			"board":{"name":"Roadmap"}}}}`)
		codename, ok := adapter.Classify(event)
		require.True(t, ok)
		require.Equal(t, models.CodenameTrelloDeleteCard, codename)

		n, err := adapter.Render(event, codename)
		require.NoError(t, err)
		assert.Equal(t, "Trello Notification", n.Title)
		assert.Equal(t, "Card deleted", n.Description)
		assert.Equal(t, 0x0079BF, n.Color)
		assert.Equal(t, "https://trello.com/c/abc", n.URL)
		assert.Equal(t, 2026, n.Timestamp.Year())
		assert.Equal(t, []models.NotificationField{
			{Name: "Card:", Value: "Fix login"},
			{Name: "Board:", Value: "Roadmap"},
		}, n.Fields)
	})

	t.Run("move includes lists and description", func(t *testing.T) {
		event := fetchOne(t, adapter, `{"action":{"type":"updateCard","data":{
			"card":{"name":"Fix login","desc":"Users cannot log in"},
			"listBefore":{"name":"To Do"},"listAfter":{"name":"Done"},
			"board":{"name":"Roadmap"}}}}`)

		n, err := adapter.Render(event, models.CodenameTrelloMoveCard)
		require.NoError(t, err)
		assert.Equal(t, "Card moved", n.Description)
		assert.Equal(t, []models.NotificationField{
			{Name: "Card:", Value: "Fix login"},
			{Name: "Description:", Value: "Users cannot log in", Inline: true},
			{Name: "List before:", Value: "To Do", Inline: true},
			{Name: "List after:", Value: "Done", Inline: true},
			{Name: "Board:", Value: "Roadmap"},
		}, n.Fields)
	})

	t.Run("list event", func(t *testing.T) {
		event := fetchOne(t, adapter, `{"action":{"type":"createList","data":{"list":{"name":"Backlog"},"board":{"name":"Roadmap"}}}}`)
		n, err := adapter.Render(event, models.CodenameTrelloCreateList)
		require.NoError(t, err)
		assert.Equal(t, "List created", n.Description)
		assert.Equal(t, []models.NotificationField{
			{Name: "List:", Value: "Backlog"},
			{Name: "Board:", Value: "Roadmap"},
		}, n.Fields)
	})

	t.Run("card codename without card", func(t *testing.T) {
		event := fetchOne(t, adapter, `{"action":{"type":"createCard","data":{}}}`)
		_, err := adapter.Render(event, models.CodenameTrelloCreateCard)
		assert.Error(t, err)
	})
}

func TestTrelloAdapter_RegisterWebhook(t *testing.T) {
	callback := testOrigin + "/trello-webhook?guildId=" + testGuild + "&secretId=" + testSecret
	boards := []clients.TrelloBoard{{ID: "b1", Name: "Roadmap"}, {ID: "b2", Name: "Ops"}}

	t.Run("creates one webhook per board", func(t *testing.T) {
		adapter, client, _ := newTestAdapter()
		client.On("GetOrganizationBoards", mock.Anything, testAuth, "org-1").Return(boards, nil)
		client.On("GetTokenWebhooks", mock.Anything, testAuth).Return([]clients.TrelloWebhook{}, nil)
		client.On("CreateWebhook", mock.Anything, testAuth, mock.MatchedBy(func(p clients.TrelloCreateWebhookParams) bool {
			return p.CallbackURL == callback
		})).Return(&clients.TrelloWebhook{ID: "w"}, nil).Twice()

		reg, err := adapter.RegisterWebhook(context.Background(), testGuild, testCreds)
		require.NoError(t, err)
		assert.ElementsMatch(t, []string{"Roadmap", "Ops"}, reg.Created)
		assert.Empty(t, reg.Failed)
		assert.NotContains(t, reg.CallbackURL, testSecret)
		client.AssertExpectations(t)
	})

	t.Run("second registration skips existing webhooks", func(t *testing.T) {
		adapter, client, _ := newTestAdapter()
		client.On("GetOrganizationBoards", mock.Anything, testAuth, "org-1").Return(boards, nil)
		client.On("GetTokenWebhooks", mock.Anything, testAuth).Return([]clients.TrelloWebhook{
			{ID: "w1", IDModel: "b1", CallbackURL: callback},
			{ID: "w2", IDModel: "b2", CallbackURL: callback},
		}, nil)

		reg, err := adapter.RegisterWebhook(context.Background(), testGuild, testCreds)
		require.NoError(t, err)
		assert.Empty(t, reg.Created)
		assert.ElementsMatch(t, []string{"Roadmap", "Ops"}, reg.Skipped)
		client.AssertNotCalled(t, "CreateWebhook", mock.Anything, mock.Anything, mock.Anything)
	})

	t.Run("partial failure is reported per board", func(t *testing.T) {
		adapter, client, _ := newTestAdapter()
		client.On("GetOrganizationBoards", mock.Anything, testAuth, "org-1").Return(boards, nil)
		client.On("GetTokenWebhooks", mock.Anything, testAuth).Return([]clients.TrelloWebhook{}, nil)
		client.On("CreateWebhook", mock.Anything, testAuth, mock.MatchedBy(func(p clients.TrelloCreateWebhookParams) bool {
			return p.IDModel == "b1"
		})).Return(&clients.TrelloWebhook{ID: "w1"}, nil)
		client.On("CreateWebhook", mock.Anything, testAuth, mock.MatchedBy(func(p clients.TrelloCreateWebhookParams) bool {
			return p.IDModel == "b2"
		})).Return(nil, errors.New("boom"))

		reg, err := adapter.RegisterWebhook(context.Background(), testGuild, testCreds)
		require.NoError(t, err)
		assert.Equal(t, []string{"Roadmap"}, reg.Created)
		assert.Equal(t, []string{"Ops"}, reg.Failed)
	})

	t.Run("fails when no board succeeded", func(t *testing.T) {
		adapter, client, _ := newTestAdapter()
		client.On("GetOrganizationBoards", mock.Anything, testAuth, "org-1").Return(boards, nil)
		client.On("GetTokenWebhooks", mock.Anything, testAuth).Return([]clients.TrelloWebhook{}, nil)
		client.On("CreateWebhook", mock.Anything, testAuth, mock.Anything).Return(nil, errors.New("boom"))

		reg, err := adapter.RegisterWebhook(context.Background(), testGuild, testCreds)
		require.Error(t, err)
		assert.Len(t, reg.Failed, 2)
	})

	t.Run("incomplete credentials", func(t *testing.T) {
		adapter, client, _ := newTestAdapter()
		_, err := adapter.RegisterWebhook(context.Background(), testGuild, models.Credentials{
			models.CredentialTrelloAPIKey: "key",
		})
		assert.ErrorIs(t, err, core.ErrNotConfigured)
		client.AssertNotCalled(t, "GetOrganizationBoards", mock.Anything, mock.Anything, mock.Anything)
	})
}

func TestTrelloAdapter_TeardownWebhook(t *testing.T) {
	integration := &models.Integration{ID: "int_1", GuildID: testGuild, Provider: models.ProviderTrello}

	t.Run("deletes every token webhook and tolerates 404", func(t *testing.T) {
		adapter, client, integrationsService := newTestAdapter()
		integrationsService.On("GetIntegration", mock.Anything, testGuild, models.ProviderTrello).
			Return(mo.Some(integration), nil)
		integrationsService.On("GetCredentials", mock.Anything, "int_1").Return(testCreds, nil)
		client.On("GetTokenWebhooks", mock.Anything, testAuth).Return([]clients.TrelloWebhook{
			{ID: "w1", CallbackURL: "https://relay.example.com/trello-webhook"},
			{ID: "w2", CallbackURL: "https://someone-else.example.com/hook"},
		}, nil)
		client.On("DeleteWebhook", mock.Anything, testAuth, "w1").Return(nil)
		client.On("DeleteWebhook", mock.Anything, testAuth, "w2").
			Return(&core.ProviderStatusError{Provider: "trello", StatusCode: http.StatusNotFound})

		require.NoError(t, adapter.TeardownWebhook(context.Background(), testGuild))
		client.AssertExpectations(t)
	})

	t.Run("no integration is a no-op", func(t *testing.T) {
		adapter, client, integrationsService := newTestAdapter()
		integrationsService.On("GetIntegration", mock.Anything, testGuild, models.ProviderTrello).
			Return(mo.None[*models.Integration](), nil)

		require.NoError(t, adapter.TeardownWebhook(context.Background(), testGuild))
		client.AssertNotCalled(t, "GetTokenWebhooks", mock.Anything, mock.Anything)
	})

	t.Run("delete failure surfaces", func(t *testing.T) {
		adapter, client, integrationsService := newTestAdapter()
		integrationsService.On("GetIntegration", mock.Anything, testGuild, models.ProviderTrello).
			Return(mo.Some(integration), nil)
		integrationsService.On("GetCredentials", mock.Anything, "int_1").Return(testCreds, nil)
		client.On("GetTokenWebhooks", mock.Anything, testAuth).Return([]clients.TrelloWebhook{{ID: "w1"}}, nil)
		client.On("DeleteWebhook", mock.Anything, testAuth, "w1").
			Return(&core.ProviderStatusError{Provider: "trello", StatusCode: http.StatusBadGateway})

		assert.Error(t, adapter.TeardownWebhook(context.Background(), testGuild))
	})
}

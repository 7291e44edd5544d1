package trello

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"relaybackend/clients"
	"relaybackend/core"
)

var testAuth = clients.TrelloAuth{APIKey: "test-key", APIToken: "test-token"}

func withServer(t *testing.T, handler http.HandlerFunc) *TrelloClient {
	server := httptest.NewServer(handler)
	t.Cleanup(server.Close)

	originalBase := trelloAPIBase
	trelloAPIBase = server.URL + "/1"
	t.Cleanup(func() { trelloAPIBase = originalBase })

	return NewTrelloClient(server.Client())
}

func TestTrelloClient_ImplementsInterface(t *testing.T) {
	var _ clients.TrelloClient = (*TrelloClient)(nil)
	var _ clients.TrelloClient = (*MockTrelloClient)(nil)
}

func TestTrelloClient_GetOrganizationBoards(t *testing.T) {
	client := withServer(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodGet, r.Method)
		assert.Equal(t, "/1/organizations/acme/boards", r.URL.Path)
		assert.Equal(t, "test-key", r.URL.Query().Get("key"))
		assert.Equal(t, "test-token", r.URL.Query().Get("token"))

		w.Header().Set("Content-Type", "application/json")
		json.NewEncoder(w).Encode([]clients.TrelloBoard{{ID: "b1", Name: "Roadmap"}, {ID: "b2", Name: "Bugs"}})
	})

	boards, err := client.GetOrganizationBoards(context.Background(), testAuth, "acme")
	require.NoError(t, err)
	require.Len(t, boards, 2)
	assert.Equal(t, "Roadmap", boards[0].Name)
}

func TestTrelloClient_CreateWebhook(t *testing.T) {
	client := withServer(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		assert.Equal(t, "/1/tokens/test-token/webhooks/", r.URL.Path)
		assert.Equal(t, "application/json", r.Header.Get("Content-Type"))

		var params clients.TrelloCreateWebhookParams
		require.NoError(t, json.NewDecoder(r.Body).Decode(&params))
		assert.Equal(t, "b1", params.IDModel)
		assert.Equal(t, "https://relay.example.com/trello-webhook?guildId=1", params.CallbackURL)

		json.NewEncoder(w).Encode(clients.TrelloWebhook{ID: "wh1", IDModel: params.IDModel, CallbackURL: params.CallbackURL, Active: true})
	})

	webhook, err := client.CreateWebhook(context.Background(), testAuth, clients.TrelloCreateWebhookParams{
		CallbackURL: "https://relay.example.com/trello-webhook?guildId=1",
		IDModel:     "b1",
	})
	require.NoError(t, err)
	assert.Equal(t, "wh1", webhook.ID)
	assert.True(t, webhook.Active)
}

func TestTrelloClient_DeleteWebhook_Errors(t *testing.T) {
	t.Run("404 maps to not found", func(t *testing.T) {
		client := withServer(t, func(w http.ResponseWriter, r *http.Request) {
			assert.Equal(t, http.MethodDelete, r.Method)
			assert.Equal(t, "/1/webhooks/wh1", r.URL.Path)
			http.Error(w, "model not found", http.StatusNotFound)
		})

		err := client.DeleteWebhook(context.Background(), testAuth, "wh1")
		assert.ErrorIs(t, err, core.ErrNotFound)
	})

	t.Run("5xx is transient", func(t *testing.T) {
		client := withServer(t, func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(http.StatusBadGateway)
		})

		err := client.DeleteWebhook(context.Background(), testAuth, "wh1")
		assert.ErrorIs(t, err, core.ErrTransientProvider)
	})

	t.Run("401 is neither", func(t *testing.T) {
		client := withServer(t, func(w http.ResponseWriter, r *http.Request) {
			http.Error(w, "invalid token", http.StatusUnauthorized)
		})

		err := client.DeleteWebhook(context.Background(), testAuth, "wh1")
		require.Error(t, err)
		assert.NotErrorIs(t, err, core.ErrTransientProvider)
		assert.Contains(t, err.Error(), "invalid token")
	})
}

package trello

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"

	"relaybackend/clients"
)

var trelloAPIBase = "https://api.trello.com/1"

// TrelloClient implements the clients.TrelloClient interface
type TrelloClient struct {
	httpClient *http.Client
}

func NewTrelloClient(httpClient *http.Client) *TrelloClient {
	return &TrelloClient{httpClient: httpClient}
}

func (c *TrelloClient) GetOrganizationBoards(
	ctx context.Context,
	auth clients.TrelloAuth,
	organizationID string,
) ([]clients.TrelloBoard, error) {
	endpoint := fmt.Sprintf("%s/organizations/%s/boards", trelloAPIBase, url.PathEscape(organizationID))

	var boards []clients.TrelloBoard
	if err := c.do(ctx, http.MethodGet, endpoint, auth, nil, "list boards", &boards); err != nil {
		return nil, err
	}
	return boards, nil
}

func (c *TrelloClient) GetTokenWebhooks(ctx context.Context, auth clients.TrelloAuth) ([]clients.TrelloWebhook, error) {
	endpoint := fmt.Sprintf("%s/tokens/%s/webhooks", trelloAPIBase, url.PathEscape(auth.APIToken))

	var webhooks []clients.TrelloWebhook
	if err := c.do(ctx, http.MethodGet, endpoint, auth, nil, "list webhooks", &webhooks); err != nil {
		return nil, err
	}
	return webhooks, nil
}

func (c *TrelloClient) CreateWebhook(
	ctx context.Context,
	auth clients.TrelloAuth,
	params clients.TrelloCreateWebhookParams,
) (*clients.TrelloWebhook, error) {
	endpoint := fmt.Sprintf("%s/tokens/%s/webhooks/", trelloAPIBase, url.PathEscape(auth.APIToken))

	body, err := json.Marshal(params)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal webhook request: %w", err)
	}

	var webhook clients.TrelloWebhook
	if err := c.do(ctx, http.MethodPost, endpoint, auth, body, "create webhook", &webhook); err != nil {
		return nil, err
	}
	return &webhook, nil
}

func (c *TrelloClient) DeleteWebhook(ctx context.Context, auth clients.TrelloAuth, webhookID string) error {
	endpoint := fmt.Sprintf("%s/webhooks/%s", trelloAPIBase, url.PathEscape(webhookID))
	return c.do(ctx, http.MethodDelete, endpoint, auth, nil, "delete webhook", nil)
}

func (c *TrelloClient) do(
	ctx context.Context,
	method, endpoint string,
	auth clients.TrelloAuth,
	body []byte,
	operation string,
	out any,
) error {
	u, err := url.Parse(endpoint)
	if err != nil {
		return fmt.Errorf("failed to parse trello URL: %w", err)
	}
	q := u.Query()
	q.Set("key", auth.APIKey)
	q.Set("token", auth.APIToken)
	u.RawQuery = q.Encode()

	req, err := http.NewRequestWithContext(ctx, method, u.String(), bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Accept", "application/json")
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return clients.NewTransportError("trello", operation, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return clients.NewStatusError("trello", operation, resp)
	}

	if out == nil {
		return nil
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("failed to decode trello %s response: %w", operation, err)
	}
	return nil
}

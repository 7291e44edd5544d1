package github

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"

	"relaybackend/clients"
)

var githubAPIBase = "https://api.github.com"

// GitHubClient implements the clients.GitHubClient interface using a personal access token
type GitHubClient struct {
	httpClient *http.Client
}

func NewGitHubClient(httpClient *http.Client) *GitHubClient {
	return &GitHubClient{httpClient: httpClient}
}

type createHookRequest struct {
	Name   string                   `json:"name"`
	Config clients.GitHubHookConfig `json:"config"`
	Events []string                 `json:"events"`
	Active bool                     `json:"active"`
}

func (c *GitHubClient) ListOrgHooks(ctx context.Context, token, organization string) ([]clients.GitHubHook, error) {
	endpoint := fmt.Sprintf("%s/orgs/%s/hooks?per_page=100", githubAPIBase, url.PathEscape(organization))

	var hooks []clients.GitHubHook
	if err := c.do(ctx, http.MethodGet, endpoint, token, nil, "list hooks", &hooks); err != nil {
		return nil, err
	}
	return hooks, nil
}

// CreateOrgHook subscribes the organization to every event with a JSON payload
func (c *GitHubClient) CreateOrgHook(
	ctx context.Context,
	token, organization string,
	config clients.GitHubHookConfig,
) (*clients.GitHubHook, error) {
	endpoint := fmt.Sprintf("%s/orgs/%s/hooks", githubAPIBase, url.PathEscape(organization))

	body, err := json.Marshal(createHookRequest{
		Name:   "web",
		Config: config,
		Events: []string{"*"},
		Active: true,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to marshal hook request: %w", err)
	}

	var hook clients.GitHubHook
	if err := c.do(ctx, http.MethodPost, endpoint, token, body, "create hook", &hook); err != nil {
		return nil, err
	}
	return &hook, nil
}

func (c *GitHubClient) DeleteOrgHook(ctx context.Context, token, organization string, hookID int64) error {
	endpoint := fmt.Sprintf("%s/orgs/%s/hooks/%d", githubAPIBase, url.PathEscape(organization), hookID)
	return c.do(ctx, http.MethodDelete, endpoint, token, nil, "delete hook", nil)
}

func (c *GitHubClient) do(
	ctx context.Context,
	method, endpoint, token string,
	body []byte,
	operation string,
	out any,
) error {
	req, err := http.NewRequestWithContext(ctx, method, endpoint, bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("failed to create request: %w", err)
	}

	req.Header.Set("Authorization", "token "+token)
	req.Header.Set("Accept", "application/vnd.github.v3+json")
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return clients.NewTransportError("github", operation, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return clients.NewStatusError("github", operation, resp)
	}

	if out == nil {
		return nil
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("failed to decode github %s response: %w", operation, err)
	}
	return nil
}

package googlecalendar

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/url"

	"golang.org/x/oauth2"

	"relaybackend/clients"
	"relaybackend/core"
)

var (
	calendarAPIBase = "https://www.googleapis.com/calendar/v3"
	googleTokenURL  = "https://oauth2.googleapis.com/token"
	googleAuthURL   = "https://accounts.google.com/o/oauth2/auth"
)

// GoogleCalendarClient implements the clients.GoogleCalendarClient interface.
// Every call exchanges the stored refresh token through an oauth2 token source.
type GoogleCalendarClient struct {
	httpClient *http.Client
}

func NewGoogleCalendarClient(httpClient *http.Client) *GoogleCalendarClient {
	return &GoogleCalendarClient{httpClient: httpClient}
}

type watchRequest struct {
	ID      string `json:"id"`
	Type    string `json:"type"`
	Address string `json:"address"`
}

type stopRequest struct {
	ID         string `json:"id"`
	ResourceID string `json:"resourceId"`
}

func (c *GoogleCalendarClient) WatchEvents(
	ctx context.Context,
	auth clients.GoogleOAuthCredentials,
	calendarID, channelID, address string,
) (*clients.GoogleWatchChannel, error) {
	endpoint := fmt.Sprintf("%s/calendars/%s/events/watch", calendarAPIBase, url.PathEscape(calendarID))

	body, err := json.Marshal(watchRequest{ID: channelID, Type: "web_hook", Address: address})
	if err != nil {
		return nil, fmt.Errorf("failed to marshal watch request: %w", err)
	}

	var channel clients.GoogleWatchChannel
	if err := c.do(ctx, auth, http.MethodPost, endpoint, body, "watch events", &channel); err != nil {
		return nil, err
	}
	return &channel, nil
}

func (c *GoogleCalendarClient) StopChannel(
	ctx context.Context,
	auth clients.GoogleOAuthCredentials,
	channelID, resourceID string,
) error {
	body, err := json.Marshal(stopRequest{ID: channelID, ResourceID: resourceID})
	if err != nil {
		return fmt.Errorf("failed to marshal stop request: %w", err)
	}
	return c.do(ctx, auth, http.MethodPost, calendarAPIBase+"/channels/stop", body, "stop channel", nil)
}

func (c *GoogleCalendarClient) ListEvents(
	ctx context.Context,
	auth clients.GoogleOAuthCredentials,
	calendarID, syncToken, pageToken string,
) (*clients.GoogleEventsPage, error) {
	query := url.Values{}
	query.Set("singleEvents", "true")
	if syncToken != "" {
		query.Set("syncToken", syncToken)
	}
	if pageToken != "" {
		query.Set("pageToken", pageToken)
	}
	endpoint := fmt.Sprintf("%s/calendars/%s/events?%s", calendarAPIBase, url.PathEscape(calendarID), query.Encode())

	var page clients.GoogleEventsPage
	err := c.do(ctx, auth, http.MethodGet, endpoint, nil, "list events", &page)
	if err != nil {
		var statusErr *core.ProviderStatusError
		if errors.As(err, &statusErr) && statusErr.StatusCode == http.StatusGone {
			return nil, fmt.Errorf("google list events: %w", core.ErrSyncTokenInvalidated)
		}
		return nil, err
	}
	return &page, nil
}

func (c *GoogleCalendarClient) authorizedClient(ctx context.Context, auth clients.GoogleOAuthCredentials) *http.Client {
	config := &oauth2.Config{
		ClientID:     auth.ClientID,
		ClientSecret: auth.ClientSecret,
		Endpoint: oauth2.Endpoint{
			AuthURL:   googleAuthURL,
			TokenURL:  googleTokenURL,
			AuthStyle: oauth2.AuthStyleInParams,
		},
	}
	// the token exchange itself goes through our timeout-bound client
	ctx = context.WithValue(ctx, oauth2.HTTPClient, c.httpClient)
	return config.Client(ctx, &oauth2.Token{RefreshToken: auth.RefreshToken})
}

func (c *GoogleCalendarClient) do(
	ctx context.Context,
	auth clients.GoogleOAuthCredentials,
	method, endpoint string,
	body []byte,
	operation string,
	out any,
) error {
	req, err := http.NewRequestWithContext(ctx, method, endpoint, bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Accept", "application/json")
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := c.authorizedClient(ctx, auth).Do(req)
	if err != nil {
		var retrieveErr *oauth2.RetrieveError
		if errors.As(err, &retrieveErr) {
			return fmt.Errorf("failed to refresh google access token: %w", err)
		}
		return clients.NewTransportError("google", operation, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return clients.NewStatusError("google", operation, resp)
	}

	if out == nil {
		return nil
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("failed to decode google %s response: %w", operation, err)
	}
	return nil
}

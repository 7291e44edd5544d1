package googlecalendar

import (
	"context"

	"github.com/stretchr/testify/mock"

	"relaybackend/clients"
)

// MockGoogleCalendarClient is a mock implementation of the clients.GoogleCalendarClient interface
type MockGoogleCalendarClient struct {
	mock.Mock
}

func (m *MockGoogleCalendarClient) WatchEvents(
	ctx context.Context,
	auth clients.GoogleOAuthCredentials,
	calendarID, channelID, address string,
) (*clients.GoogleWatchChannel, error) {
	args := m.Called(ctx, auth, calendarID, channelID, address)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*clients.GoogleWatchChannel), args.Error(1)
}

func (m *MockGoogleCalendarClient) StopChannel(
	ctx context.Context,
	auth clients.GoogleOAuthCredentials,
	channelID, resourceID string,
) error {
	args := m.Called(ctx, auth, channelID, resourceID)
	return args.Error(0)
}

func (m *MockGoogleCalendarClient) ListEvents(
	ctx context.Context,
	auth clients.GoogleOAuthCredentials,
	calendarID, syncToken, pageToken string,
) (*clients.GoogleEventsPage, error) {
	args := m.Called(ctx, auth, calendarID, syncToken, pageToken)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*clients.GoogleEventsPage), args.Error(1)
}

package trello

import (
	"context"

	"github.com/stretchr/testify/mock"

	"relaybackend/clients"
)

// MockTrelloClient is a mock implementation of the clients.TrelloClient interface
type MockTrelloClient struct {
	mock.Mock
}

func (m *MockTrelloClient) GetOrganizationBoards(
	ctx context.Context,
	auth clients.TrelloAuth,
	organizationID string,
) ([]clients.TrelloBoard, error) {
	args := m.Called(ctx, auth, organizationID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]clients.TrelloBoard), args.Error(1)
}

func (m *MockTrelloClient) GetTokenWebhooks(ctx context.Context, auth clients.TrelloAuth) ([]clients.TrelloWebhook, error) {
	args := m.Called(ctx, auth)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]clients.TrelloWebhook), args.Error(1)
}

func (m *MockTrelloClient) CreateWebhook(
	ctx context.Context,
	auth clients.TrelloAuth,
	params clients.TrelloCreateWebhookParams,
) (*clients.TrelloWebhook, error) {
	args := m.Called(ctx, auth, params)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*clients.TrelloWebhook), args.Error(1)
}

func (m *MockTrelloClient) DeleteWebhook(ctx context.Context, auth clients.TrelloAuth, webhookID string) error {
	args := m.Called(ctx, auth, webhookID)
	return args.Error(0)
}

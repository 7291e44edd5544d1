package github

import (
	"context"

	"github.com/stretchr/testify/mock"

	"relaybackend/clients"
)

// MockGitHubClient is a mock implementation of the clients.GitHubClient interface
type MockGitHubClient struct {
	mock.Mock
}

func (m *MockGitHubClient) ListOrgHooks(ctx context.Context, token, organization string) ([]clients.GitHubHook, error) {
	args := m.Called(ctx, token, organization)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]clients.GitHubHook), args.Error(1)
}

func (m *MockGitHubClient) CreateOrgHook(
	ctx context.Context,
	token, organization string,
	config clients.GitHubHookConfig,
) (*clients.GitHubHook, error) {
	args := m.Called(ctx, token, organization, config)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*clients.GitHubHook), args.Error(1)
}

func (m *MockGitHubClient) DeleteOrgHook(ctx context.Context, token, organization string, hookID int64) error {
	args := m.Called(ctx, token, organization, hookID)
	return args.Error(0)
}

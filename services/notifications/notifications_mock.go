package notifications

import (
	"context"

	"github.com/stretchr/testify/mock"

	"relaybackend/models"
)

// MockNotificationGate is a mock implementation of the NotificationGate interface
type MockNotificationGate struct {
	mock.Mock
}

func (m *MockNotificationGate) ShouldDeliver(
	ctx context.Context,
	integrationID string,
	provider models.Provider,
	codename models.Codename,
) bool {
	args := m.Called(ctx, integrationID, provider, codename)
	return args.Bool(0)
}

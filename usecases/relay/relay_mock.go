package relay

import (
	"context"

	"github.com/stretchr/testify/mock"

	"relaybackend/models"
)

// MockRelayUseCase is a mock implementation of the RelayUseCase
type MockRelayUseCase struct {
	mock.Mock
}

func (m *MockRelayUseCase) Handle(ctx context.Context, hook *models.InboundWebhook) models.RelayResult {
	args := m.Called(ctx, hook)
	return args.Get(0).(models.RelayResult)
}

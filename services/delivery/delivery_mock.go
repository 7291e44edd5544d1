package delivery

import (
	"context"

	"github.com/stretchr/testify/mock"

	"relaybackend/models"
)

// MockDeliverySink is a mock implementation of the DeliverySink interface
type MockDeliverySink struct {
	mock.Mock
}

func (m *MockDeliverySink) Deliver(ctx context.Context, channelID string, notification *models.Notification) {
	m.Called(ctx, channelID, notification)
}

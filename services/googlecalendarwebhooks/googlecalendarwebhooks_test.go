package googlecalendarwebhooks

import (
	"context"
	"errors"
	"testing"

	"github.com/samber/mo"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"relaybackend/models"
	"relaybackend/services"
	"relaybackend/services/txmanager"
)

type mockRepo struct{ mock.Mock }

func (m *mockRepo) CreateWebhook(ctx context.Context, webhook *models.GoogleCalendarWebhook) error {
	return m.Called(ctx, webhook).Error(0)
}

func (m *mockRepo) GetWebhookByIntegrationID(
	ctx context.Context,
	integrationID string,
) (mo.Option[*models.GoogleCalendarWebhook], error) {
	args := m.Called(ctx, integrationID)
	return args.Get(0).(mo.Option[*models.GoogleCalendarWebhook]), args.Error(1)
}

func (m *mockRepo) DeleteWebhookByIntegrationID(
	ctx context.Context,
	integrationID string,
) (mo.Option[*models.GoogleCalendarWebhook], error) {
	args := m.Called(ctx, integrationID)
	return args.Get(0).(mo.Option[*models.GoogleCalendarWebhook]), args.Error(1)
}

func (m *mockRepo) UpdateSyncToken(ctx context.Context, integrationID string, syncToken *string) (bool, error) {
	args := m.Called(ctx, integrationID, syncToken)
	return args.Bool(0), args.Error(1)
}

func TestGoogleCalendarWebhooksService_ImplementsInterface(t *testing.T) {
	var _ services.GoogleCalendarWebhooksService = (*GoogleCalendarWebhooksService)(nil)
	var _ services.GoogleCalendarWebhooksService = (*MockGoogleCalendarWebhooksService)(nil)
}

func TestGoogleCalendarWebhooksService_ReplaceWebhook(t *testing.T) {
	ctx := context.Background()

	t.Run("replaces prior row and resets sync token", func(t *testing.T) {
		repo := &mockRepo{}
		tx := &txmanager.PassthroughTransactionManager{}
		service := NewGoogleCalendarWebhooksService(repo, tx)

		oldToken := "old-token"
		previous := &models.GoogleCalendarWebhook{IntegrationID: "int_1", ChannelID: "old", SyncToken: &oldToken}
		repo.On("DeleteWebhookByIntegrationID", ctx, "int_1").Return(mo.Some(previous), nil)
		repo.On("CreateWebhook", ctx, mock.MatchedBy(func(w *models.GoogleCalendarWebhook) bool {
			return w.ChannelID == "new" && w.SyncToken == nil
		})).Return(nil)

		stale := "stale"
		got, err := service.ReplaceWebhook(ctx, &models.GoogleCalendarWebhook{
			IntegrationID: "int_1",
			ChannelID:     "new",
			SyncToken:     &stale,
		})
		require.NoError(t, err)
		require.True(t, got.IsPresent())
		assert.Equal(t, "old", got.MustGet().ChannelID)
		assert.Equal(t, 1, tx.Calls)
		repo.AssertExpectations(t)
	})

	t.Run("insert failure surfaces", func(t *testing.T) {
		repo := &mockRepo{}
		service := NewGoogleCalendarWebhooksService(repo, &txmanager.PassthroughTransactionManager{})

		repo.On("DeleteWebhookByIntegrationID", ctx, "int_1").Return(mo.None[*models.GoogleCalendarWebhook](), nil)
		repo.On("CreateWebhook", ctx, mock.Anything).Return(errors.New("unique violation"))

		_, err := service.ReplaceWebhook(ctx, &models.GoogleCalendarWebhook{IntegrationID: "int_1", ChannelID: "new"})
		assert.ErrorContains(t, err, "failed to replace calendar webhook")
	})
}

func TestGoogleCalendarWebhooksService_UpdateSyncToken(t *testing.T) {
	ctx := context.Background()
	token := "next"

	t.Run("missing row is absorbed", func(t *testing.T) {
		repo := &mockRepo{}
		service := NewGoogleCalendarWebhooksService(repo, &txmanager.PassthroughTransactionManager{})
		repo.On("UpdateSyncToken", ctx, "int_1", &token).Return(false, nil)

		assert.NoError(t, service.UpdateSyncToken(ctx, "int_1", &token))
	})

	t.Run("store error is wrapped", func(t *testing.T) {
		repo := &mockRepo{}
		service := NewGoogleCalendarWebhooksService(repo, &txmanager.PassthroughTransactionManager{})
		repo.On("UpdateSyncToken", ctx, "int_1", (*string)(nil)).Return(false, errors.New("timeout"))

		assert.ErrorContains(t, service.UpdateSyncToken(ctx, "int_1", nil), "failed to update sync token")
	})
}

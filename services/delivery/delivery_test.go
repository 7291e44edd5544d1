package delivery

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/bwmarrin/discordgo"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"

	"relaybackend/clients/discord"
	"relaybackend/models"
	"relaybackend/services"
)

func TestDeliveryService_ImplementsInterface(t *testing.T) {
	var _ services.DeliverySink = (*DeliveryService)(nil)
	var _ services.DeliverySink = (*MockDeliverySink)(nil)
}

func testNotification() *models.Notification {
	return &models.Notification{
		Codename:     models.CodenameGitHubPullRequest,
		Title:        "GitHub Notification",
		Description:  "A new GitHub event has occurred: github-pull-request",
		Color:        0x24292E,
		ThumbnailURL: "https://example.com/thumb.png",
		Fields: []models.NotificationField{
			{Name: "Repository", Value: "acme/api"},
			{Name: "Pull Request", Value: "Fix login"},
			{Name: "Action", Value: "opened"},
		},
		Timestamp: time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC),
	}
}

func TestBuildEmbed(t *testing.T) {
	embed := BuildEmbed(testNotification())

	assert.Equal(t, "GitHub Notification", embed.Title)
	assert.Equal(t, 0x24292E, embed.Color)
	assert.Equal(t, "https://example.com/thumb.png", embed.Thumbnail.URL)
	assert.Equal(t, "2024-05-01T12:00:00Z", embed.Timestamp)
	assert.Len(t, embed.Fields, 3)
	assert.Equal(t, "Pull Request", embed.Fields[1].Name)
	assert.Equal(t, "Fix login", embed.Fields[1].Value)

	t.Run("long and empty field values", func(t *testing.T) {
		n := testNotification()
		n.Fields = []models.NotificationField{
			{Name: "Description", Value: strings.Repeat("x", 3000)},
			{Name: "Empty", Value: ""},
		}
		embed := BuildEmbed(n)
		assert.Len(t, embed.Fields[0].Value, 1024)
		assert.Equal(t, "\u200b", embed.Fields[1].Value)
	})

	t.Run("no thumbnail", func(t *testing.T) {
		n := testNotification()
		n.ThumbnailURL = ""
		assert.Nil(t, BuildEmbed(n).Thumbnail)
	})
}

func TestDeliveryService_Deliver(t *testing.T) {
	ctx := context.Background()

	t.Run("sends embed", func(t *testing.T) {
		client := &discord.MockDiscordClient{}
		client.On("SendEmbed", ctx, "channel-1", mock.MatchedBy(func(e *discordgo.MessageEmbed) bool {
			return e.Title == "GitHub Notification" && len(e.Fields) == 3
		})).Return(nil).Once()

		NewDeliveryService(client).Deliver(ctx, "channel-1", testNotification())
		client.AssertExpectations(t)
	})

	t.Run("send failure is swallowed", func(t *testing.T) {
		client := &discord.MockDiscordClient{}
		client.On("SendEmbed", ctx, "channel-1", mock.Anything).Return(errors.New("403 missing access"))

		assert.NotPanics(t, func() {
			NewDeliveryService(client).Deliver(ctx, "channel-1", testNotification())
		})
	})

	t.Run("missing channel never calls discord", func(t *testing.T) {
		client := &discord.MockDiscordClient{}
		NewDeliveryService(client).Deliver(ctx, "", testNotification())
		client.AssertNotCalled(t, "SendEmbed", mock.Anything, mock.Anything, mock.Anything)
	})

	t.Run("breaker opens after repeated failures", func(t *testing.T) {
		client := &discord.MockDiscordClient{}
		client.On("SendEmbed", ctx, "channel-1", mock.Anything).Return(errors.New("discord down"))

		service := NewDeliveryService(client)
		for i := 0; i < breakerMinRequests+3; i++ {
			service.Deliver(ctx, "channel-1", testNotification())
		}

		client.AssertNumberOfCalls(t, "SendEmbed", breakerMinRequests)
	})
}

package discord

import (
	"context"

	"github.com/bwmarrin/discordgo"
	"github.com/stretchr/testify/mock"
)

// MockDiscordClient is a mock implementation of the clients.DiscordClient interface
type MockDiscordClient struct {
	mock.Mock
}

func (m *MockDiscordClient) SendEmbed(ctx context.Context, channelID string, embed *discordgo.MessageEmbed) error {
	args := m.Called(ctx, channelID, embed)
	return args.Error(0)
}

package discord

import (
	"context"
	"testing"

	"github.com/bwmarrin/discordgo"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"relaybackend/clients"
)

func TestDiscordClient_ImplementsInterface(t *testing.T) {
	var _ clients.DiscordClient = (*DiscordClient)(nil)
	var _ clients.DiscordClient = (*MockDiscordClient)(nil)
}

func TestNewBotSession(t *testing.T) {
	t.Run("empty token", func(t *testing.T) {
		_, err := NewBotSession("")
		assert.Error(t, err)
	})

	t.Run("bot token is prefixed and guild intent requested", func(t *testing.T) {
		session, err := NewBotSession("abc")
		require.NoError(t, err)
		assert.Equal(t, "Bot abc", session.Token)
		assert.Equal(t, discordgo.IntentsGuilds, session.Identify.Intents)
	})
}

func TestDiscordClient_SendEmbed_RequiresChannel(t *testing.T) {
	session, err := NewBotSession("abc")
	require.NoError(t, err)

	client := NewDiscordClient(session)
	err = client.SendEmbed(context.Background(), "", &discordgo.MessageEmbed{Title: "x"})
	assert.ErrorContains(t, err, "channel ID cannot be empty")
}

func TestDiscordClient_SendEmbed_WithoutBot(t *testing.T) {
	client := NewDiscordClient(nil)
	err := client.SendEmbed(context.Background(), "chan-1", &discordgo.MessageEmbed{Title: "x"})
	assert.ErrorContains(t, err, "not configured")
}

package discord

import (
	"context"
	"fmt"

	"github.com/bwmarrin/discordgo"
)

// DiscordClient implements the clients.DiscordClient interface on top of a bot session
type DiscordClient struct {
	session *discordgo.Session
}

func NewDiscordClient(session *discordgo.Session) *DiscordClient {
	return &DiscordClient{session: session}
}

// NewBotSession creates a discordgo session authenticated with the bot token.
// The caller owns Open/Close of the gateway connection.
func NewBotSession(botToken string) (*discordgo.Session, error) {
	if botToken == "" {
		return nil, fmt.Errorf("discord bot token cannot be empty")
	}

	session, err := discordgo.New("Bot " + botToken)
	if err != nil {
		return nil, fmt.Errorf("failed to create Discord session: %w", err)
	}
	session.Identify.Intents = discordgo.IntentsGuilds
	return session, nil
}

func (c *DiscordClient) SendEmbed(ctx context.Context, channelID string, embed *discordgo.MessageEmbed) error {
	if c.session == nil {
		return fmt.Errorf("discord bot is not configured, dropping embed for channel %s", channelID)
	}
	if channelID == "" {
		return fmt.Errorf("discord channel ID cannot be empty")
	}

	if _, err := c.session.ChannelMessageSendEmbed(channelID, embed, discordgo.WithContext(ctx)); err != nil {
		return fmt.Errorf("failed to send embed to channel %s: %w", channelID, err)
	}
	return nil
}

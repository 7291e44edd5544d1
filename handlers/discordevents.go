package handlers

import (
	"context"
	"fmt"
	"log"

	"github.com/bwmarrin/discordgo"

	"relaybackend/middleware"
	"relaybackend/usecases"
)

// DiscordEventsHandler keeps integrations in step with the guilds the bot belongs to
type DiscordEventsHandler struct {
	session      *discordgo.Session
	setupUseCase usecases.SetupUseCaseInterface
}

func NewDiscordEventsHandler(
	session *discordgo.Session,
	setupUseCase usecases.SetupUseCaseInterface,
	alertMiddleware *middleware.ErrorAlertMiddleware,
) *DiscordEventsHandler {
	handler := &DiscordEventsHandler{
		session:      session,
		setupUseCase: setupUseCase,
	}

	session.AddHandler(middleware.WrapDiscordHandler(alertMiddleware, "GUILD_CREATE", handler.handleGuildCreate))
	session.AddHandler(middleware.WrapDiscordHandler(alertMiddleware, "GUILD_DELETE", handler.handleGuildDelete))

	// Guild lifecycle is all the bot listens to
	session.Identify.Intents = discordgo.IntentsGuilds

	return handler
}

// StartBot opens the Discord connection and starts listening for events
func (h *DiscordEventsHandler) StartBot() error {
	if err := h.session.Open(); err != nil {
		return fmt.Errorf("failed to open Discord session: %w", err)
	}

	log.Printf("🤖 Discord bot is now running and listening for events")
	return nil
}

// StopBot gracefully closes the Discord connection
func (h *DiscordEventsHandler) StopBot() {
	if err := h.session.Close(); err != nil {
		log.Printf("⚠️ Failed to close Discord session: %v", err)
	}
}

// handleGuildCreate fires on join and for every guild on startup. Onboarding only creates
// what is missing, so replays are harmless.
func (h *DiscordEventsHandler) handleGuildCreate(_ *discordgo.Session, g *discordgo.GuildCreate) error {
	if g.Guild == nil || g.ID == "" {
		return nil
	}
	if g.Unavailable {
		log.Printf("⚠️ Guild %s is unavailable - skipping onboarding", g.ID)
		return nil
	}
	log.Printf("📨 Discord guild available: %s (%s)", g.Name, g.ID)

	channelID := defaultChannelID(g.Guild)
	if channelID == "" {
		log.Printf("⚠️ Guild %s has no text channel to post to - skipping onboarding", g.ID)
		return nil
	}

	ctx := context.Background()
	integrations, err := h.setupUseCase.OnboardGuild(ctx, g.ID, channelID)
	if err != nil {
		return fmt.Errorf("failed to onboard guild %s: %w", g.ID, err)
	}

	log.Printf("✅ Guild %s onboarded with %d integrations", g.ID, len(integrations))
	return nil
}

// handleGuildDelete removes a guild the bot was kicked from. Outages also arrive as
// GUILD_DELETE but with Unavailable set, and must not lose any data.
func (h *DiscordEventsHandler) handleGuildDelete(_ *discordgo.Session, g *discordgo.GuildDelete) error {
	if g.Guild == nil || g.ID == "" {
		return nil
	}
	if g.Unavailable {
		log.Printf("⚠️ Guild %s became unavailable - keeping its integrations", g.ID)
		return nil
	}
	log.Printf("📨 Discord bot removed from guild %s", g.ID)

	ctx := context.Background()
	deleted, err := h.setupUseCase.RemoveGuild(ctx, g.ID)
	if err != nil {
		return fmt.Errorf("failed to remove guild %s: %w", g.ID, err)
	}

	log.Printf("✅ Guild %s removed (%d integrations deleted)", g.ID, deleted)
	return nil
}

// defaultChannelID prefers the system channel, then the first text channel
func defaultChannelID(guild *discordgo.Guild) string {
	if guild.SystemChannelID != "" {
		return guild.SystemChannelID
	}
	for _, channel := range guild.Channels {
		if channel.Type == discordgo.ChannelTypeGuildText {
			return channel.ID
		}
	}
	return ""
}

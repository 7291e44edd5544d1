package handlers

import (
	"errors"
	"testing"

	"github.com/bwmarrin/discordgo"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"relaybackend/middleware"
	"relaybackend/models"
	"relaybackend/usecases/setup"
)

func newTestDiscordEventsHandler(t *testing.T, setupUseCase *setup.MockSetupUseCase) *DiscordEventsHandler {
	t.Helper()
	session, err := discordgo.New("Bot test-token")
	require.NoError(t, err)
	return NewDiscordEventsHandler(session, setupUseCase, middleware.NewErrorAlertMiddleware(middleware.SlackAlertConfig{}))
}

func TestDiscordEventsHandler_GuildCreate(t *testing.T) {
	t.Run("onboards with the system channel", func(t *testing.T) {
		setupUseCase := &setup.MockSetupUseCase{}
		setupUseCase.On("OnboardGuild", mock.Anything, "g1", "sys").
			Return([]*models.Integration{{ID: "int_1"}}, nil).Once()
		handler := newTestDiscordEventsHandler(t, setupUseCase)

		err := handler.handleGuildCreate(nil, &discordgo.GuildCreate{Guild: &discordgo.Guild{
			ID:              "g1",
			SystemChannelID: "sys",
			Channels:        []*discordgo.Channel{{ID: "text", Type: discordgo.ChannelTypeGuildText}},
		}})

		require.NoError(t, err)
		setupUseCase.AssertExpectations(t)
	})

	t.Run("falls back to the first text channel", func(t *testing.T) {
		setupUseCase := &setup.MockSetupUseCase{}
		setupUseCase.On("OnboardGuild", mock.Anything, "g1", "text").Return([]*models.Integration{}, nil).Once()
		handler := newTestDiscordEventsHandler(t, setupUseCase)

		err := handler.handleGuildCreate(nil, &discordgo.GuildCreate{Guild: &discordgo.Guild{
			ID: "g1",
			Channels: []*discordgo.Channel{
				{ID: "voice", Type: discordgo.ChannelTypeGuildVoice},
				{ID: "text", Type: discordgo.ChannelTypeGuildText},
			},
		}})

		require.NoError(t, err)
		setupUseCase.AssertExpectations(t)
	})

	t.Run("no text channel", func(t *testing.T) {
		setupUseCase := &setup.MockSetupUseCase{}
		handler := newTestDiscordEventsHandler(t, setupUseCase)

		err := handler.handleGuildCreate(nil, &discordgo.GuildCreate{Guild: &discordgo.Guild{ID: "g1"}})

		require.NoError(t, err)
		setupUseCase.AssertNotCalled(t, "OnboardGuild", mock.Anything, mock.Anything, mock.Anything)
	})

	t.Run("onboarding failure is returned", func(t *testing.T) {
		setupUseCase := &setup.MockSetupUseCase{}
		setupUseCase.On("OnboardGuild", mock.Anything, "g1", "sys").Return(nil, errors.New("db down"))
		handler := newTestDiscordEventsHandler(t, setupUseCase)

		err := handler.handleGuildCreate(nil, &discordgo.GuildCreate{Guild: &discordgo.Guild{ID: "g1", SystemChannelID: "sys"}})

		assert.ErrorContains(t, err, "failed to onboard guild g1")
	})
}

func TestDiscordEventsHandler_GuildDelete(t *testing.T) {
	t.Run("removes the guild", func(t *testing.T) {
		setupUseCase := &setup.MockSetupUseCase{}
		setupUseCase.On("RemoveGuild", mock.Anything, "g1").Return(int64(3), nil).Once()
		handler := newTestDiscordEventsHandler(t, setupUseCase)

		err := handler.handleGuildDelete(nil, &discordgo.GuildDelete{Guild: &discordgo.Guild{ID: "g1"}})

		require.NoError(t, err)
		setupUseCase.AssertExpectations(t)
	})

	t.Run("outage keeps the guild", func(t *testing.T) {
		setupUseCase := &setup.MockSetupUseCase{}
		handler := newTestDiscordEventsHandler(t, setupUseCase)

		err := handler.handleGuildDelete(nil, &discordgo.GuildDelete{Guild: &discordgo.Guild{ID: "g1", Unavailable: true}})

		require.NoError(t, err)
		setupUseCase.AssertNotCalled(t, "RemoveGuild", mock.Anything, mock.Anything)
	})
}

func TestNewDiscordEventsHandler_Intents(t *testing.T) {
	handler := newTestDiscordEventsHandler(t, &setup.MockSetupUseCase{})
	assert.Equal(t, discordgo.IntentsGuilds, handler.session.Identify.Intents)
}

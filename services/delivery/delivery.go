package delivery

import (
	"context"
	"errors"
	"log"
	"time"

	"github.com/bwmarrin/discordgo"
	gobreaker "github.com/sony/gobreaker/v2"

	"relaybackend/clients"
	"relaybackend/models"
	"relaybackend/telemetry"
	"relaybackend/utils"
)

const (
	maxFieldValueLength   = 1024
	maxFieldNameLength    = 256
	maxDescriptionLength  = 4096
	maxTitleLength        = 256
	breakerName           = "discord-delivery"
	breakerMinRequests    = 5
	breakerFailureRatio   = 0.6
	breakerOpenTimeout    = 30 * time.Second
	breakerCountsInterval = time.Minute
)

// DeliveryService renders notifications as Discord embeds and posts them.
// Failures are logged and swallowed; the relay never retries.
type DeliveryService struct {
	discord clients.DiscordClient
	breaker *gobreaker.CircuitBreaker[struct{}]
}

func NewDeliveryService(discord clients.DiscordClient) *DeliveryService {
	telemetry.CircuitBreakerState.WithLabelValues(breakerName).Set(0)

	breaker := gobreaker.NewCircuitBreaker[struct{}](gobreaker.Settings{
		Name:        breakerName,
		MaxRequests: 1,
		Interval:    breakerCountsInterval,
		Timeout:     breakerOpenTimeout,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			if counts.Requests < breakerMinRequests {
				return false
			}
			return float64(counts.TotalFailures)/float64(counts.Requests) >= breakerFailureRatio
		},
		OnStateChange: func(name string, from, to gobreaker.State) {
			log.Printf("⚠️ Circuit breaker %s changed state: %s -> %s", name, from, to)
			telemetry.CircuitBreakerState.WithLabelValues(name).Set(stateToFloat(to))
		},
	})

	return &DeliveryService{discord: discord, breaker: breaker}
}

func (s *DeliveryService) Deliver(ctx context.Context, channelID string, notification *models.Notification) {
	utils.AssertInvariant(notification != nil, "notification cannot be nil")

	if channelID == "" {
		log.Printf("⚠️ No Discord channel configured, dropping %s notification", notification.Codename)
		telemetry.DeliveriesTotal.WithLabelValues("dropped").Inc()
		return
	}

	embed := BuildEmbed(notification)
	_, err := s.breaker.Execute(func() (struct{}, error) {
		return struct{}{}, s.discord.SendEmbed(ctx, channelID, embed)
	})
	if err != nil {
		if errors.Is(err, gobreaker.ErrOpenState) || errors.Is(err, gobreaker.ErrTooManyRequests) {
			log.Printf("⚠️ Discord delivery short-circuited for channel %s: %v", channelID, err)
			telemetry.DeliveriesTotal.WithLabelValues("rejected").Inc()
			return
		}
		log.Printf("❌ Failed to deliver %s notification to channel %s: %v", notification.Codename, channelID, err)
		telemetry.DeliveriesTotal.WithLabelValues("failed").Inc()
		return
	}

	log.Printf("✅ Delivered %s notification to channel %s", notification.Codename, channelID)
	telemetry.DeliveriesTotal.WithLabelValues("sent").Inc()
}

// BuildEmbed maps a notification onto a Discord embed, truncating to Discord's limits
func BuildEmbed(notification *models.Notification) *discordgo.MessageEmbed {
	embed := &discordgo.MessageEmbed{
		Type:        discordgo.EmbedTypeRich,
		Title:       utils.Truncate(notification.Title, maxTitleLength),
		Description: utils.Truncate(notification.Description, maxDescriptionLength),
		URL:         notification.URL,
		Color:       notification.Color,
	}
	if notification.ThumbnailURL != "" {
		embed.Thumbnail = &discordgo.MessageEmbedThumbnail{URL: notification.ThumbnailURL}
	}
	if !notification.Timestamp.IsZero() {
		embed.Timestamp = notification.Timestamp.UTC().Format(time.RFC3339)
	}

	// Discord rejects empty field names and values
	for _, field := range notification.Fields {
		embed.Fields = append(embed.Fields, &discordgo.MessageEmbedField{
			Name:   utils.Truncate(utils.ValueOrDefault(field.Name, "\u200b"), maxFieldNameLength),
			Value:  utils.Truncate(utils.ValueOrDefault(field.Value, "\u200b"), maxFieldValueLength),
			Inline: field.Inline,
		})
	}
	return embed
}

func stateToFloat(state gobreaker.State) float64 {
	switch state {
	case gobreaker.StateHalfOpen:
		return 1
	case gobreaker.StateOpen:
		return 2
	}
	return 0
}

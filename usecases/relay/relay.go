package relay

import (
	"context"
	"errors"
	"fmt"
	"log"
	"net/http"
	"time"

	"relaybackend/core"
	"relaybackend/models"
	"relaybackend/providers"
	"relaybackend/services"
	"relaybackend/telemetry"
)

// RelayUseCase runs an inbound webhook through verify, fetch, classify, gate and deliver
type RelayUseCase struct {
	registry            *providers.Registry
	integrationsService services.IntegrationsService
	gate                services.NotificationGate
	sink                services.DeliverySink
}

func NewRelayUseCase(
	registry *providers.Registry,
	integrationsService services.IntegrationsService,
	gate services.NotificationGate,
	sink services.DeliverySink,
) *RelayUseCase {
	return &RelayUseCase{
		registry:            registry,
		integrationsService: integrationsService,
		gate:                gate,
		sink:                sink,
	}
}

// Handle never panics on provider or store failures. Only a rejected verification
// produces a non-200 status.
func (u *RelayUseCase) Handle(ctx context.Context, hook *models.InboundWebhook) models.RelayResult {
	started := time.Now()
	result := u.handle(ctx, hook)

	telemetry.WebhooksReceivedTotal.WithLabelValues(string(hook.Provider), string(result.Kind)).Inc()
	telemetry.RelayDuration.WithLabelValues(string(hook.Provider)).Observe(time.Since(started).Seconds())

	switch result.Kind {
	case models.RelayResultFatal:
		log.Printf("❌ %s webhook for guild %s rejected (%d): %s", hook.Provider, hook.GuildID, result.StatusCode, result.Reason)
	case models.RelayResultRecoverable:
		log.Printf("⚠️ %s webhook for guild %s not relayed: %s: %v", hook.Provider, hook.GuildID, result.Reason, result.Err)
	default:
		log.Printf("🔔 %s webhook for guild %s relayed: %s (%d delivered)", hook.Provider, hook.GuildID, result.Reason, result.Delivered)
	}
	return result
}

func (u *RelayUseCase) handle(ctx context.Context, hook *models.InboundWebhook) models.RelayResult {
	adapter, ok := u.registry.Get(hook.Provider)
	if !ok {
		return models.RelayFatal(http.StatusNotFound, "unknown provider", fmt.Errorf("no adapter for provider %q", hook.Provider))
	}

	if err := adapter.Verify(ctx, hook); err != nil {
		if verr, ok := core.AsVerificationError(err); ok {
			return models.RelayFatal(verr.StatusCode, verr.Reason, err)
		}
		return models.RelayRecoverable("verification lookup failed", err)
	}

	if hook.GuildID == "" {
		return models.RelayOK(0, "no guild id")
	}

	maybeIntegration, err := u.integrationsService.GetIntegration(ctx, hook.GuildID, hook.Provider)
	if err != nil {
		return models.RelayRecoverable("integration lookup failed", err)
	}
	integration, ok := maybeIntegration.Get()
	if !ok {
		return models.RelayOK(0, "no integration for guild")
	}
	hook.Integration = integration

	events, err := adapter.Fetch(ctx, hook)
	if err != nil {
		switch {
		case errors.Is(err, core.ErrStateInvariant):
			log.Printf("❌ DATA INTEGRITY: %s integration %s: %v", hook.Provider, integration.ID, err)
			return models.RelayRecoverable("state invariant violated", err)
		case core.IsNotFoundError(err):
			return models.RelayOK(0, "nothing to fetch")
		}
		return models.RelayRecoverable("fetch failed", err)
	}

	delivered := 0
	var renderErr error
	for _, event := range events {
		codename, ok := adapter.Classify(event)
		if !ok {
			log.Printf("📋 Unclassified %s event %q for guild %s dropped", hook.Provider, event.Kind, hook.GuildID)
			continue
		}

		if !u.gate.ShouldDeliver(ctx, integration.ID, hook.Provider, codename) {
			telemetry.GateDecisionsTotal.WithLabelValues(string(hook.Provider), string(codename), "skip").Inc()
			continue
		}
		telemetry.GateDecisionsTotal.WithLabelValues(string(hook.Provider), string(codename), "deliver").Inc()

		notification, err := adapter.Render(event, codename)
		if err != nil {
			renderErr = fmt.Errorf("failed to render %s: %w", codename, err)
			log.Printf("❌ %v", renderErr)
			continue
		}

		u.sink.Deliver(ctx, integration.DiscordChannelID, notification)
		delivered++
	}

	if renderErr != nil && delivered == 0 {
		return models.RelayRecoverable("render failed", renderErr)
	}
	if len(events) == 0 {
		return models.RelayOK(0, "no events")
	}
	return models.RelayOK(delivered, "processed")
}

package notifications

import (
	"context"
	"log"

	"relaybackend/models"
)

type SubscriptionsRepository interface {
	GetServiceNames(ctx context.Context, integrationID string, serviceType models.ServiceType) ([]string, error)
}

// NotificationGate answers whether a guild subscribed to a classified event
type NotificationGate struct {
	subscriptions SubscriptionsRepository
}

func NewNotificationGate(subscriptions SubscriptionsRepository) *NotificationGate {
	return &NotificationGate{subscriptions: subscriptions}
}

// ShouldDeliver is true iff the provider catalog maps codename to a display name that is in the
// integration's enabled notification set. Lookup failures fail closed.
func (g *NotificationGate) ShouldDeliver(
	ctx context.Context,
	integrationID string,
	provider models.Provider,
	codename models.Codename,
) bool {
	entry, ok := models.LookupNotification(provider, codename)
	if !ok {
		log.Printf("⚠️ Codename %s has no %s catalog entry, not delivering", codename, provider)
		return false
	}
	if integrationID == "" {
		return false
	}

	enabled, err := g.subscriptions.GetServiceNames(ctx, integrationID, models.ServiceTypeNotification)
	if err != nil {
		log.Printf("❌ Failed to load notification subscriptions for integration %s: %v", integrationID, err)
		return false
	}

	for _, name := range enabled {
		if name == entry.DisplayName {
			return true
		}
	}
	return false
}

package providers

import (
	"fmt"

	"relaybackend/models"
)

// Registry selects the adapter for a provider
type Registry struct {
	adapters map[models.Provider]Adapter
}

// NewRegistry checks every adapter's codenames against the notification catalog so a
// mismatch fails at startup instead of silently dropping events.
func NewRegistry(adapters ...Adapter) (*Registry, error) {
	registry := &Registry{adapters: make(map[models.Provider]Adapter, len(adapters))}
	for _, adapter := range adapters {
		provider := adapter.Provider()
		if _, exists := registry.adapters[provider]; exists {
			return nil, fmt.Errorf("duplicate adapter for provider %s", provider)
		}
		if err := models.ValidateCatalog(provider, adapter.Codenames()); err != nil {
			return nil, fmt.Errorf("failed to validate %s adapter: %w", provider, err)
		}
		registry.adapters[provider] = adapter
	}
	return registry, nil
}

func (r *Registry) Get(provider models.Provider) (Adapter, bool) {
	adapter, ok := r.adapters[provider]
	return adapter, ok
}

// All returns the registered adapters in onboarding order
func (r *Registry) All() []Adapter {
	adapters := make([]Adapter, 0, len(r.adapters))
	for _, provider := range models.AllProviders {
		if adapter, ok := r.adapters[provider]; ok {
			adapters = append(adapters, adapter)
		}
	}
	return adapters
}

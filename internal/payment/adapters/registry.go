package adapters

import (
	"strings"

	"github.com/smallbiznis/paylink/internal/payment/domain"
)

// Registry maps provider names to adapter factories. It is populated once at
// startup and read-only afterwards, so concurrent lookups need no locking.
type Registry struct {
	factories map[string]domain.AdapterFactory
}

// NewRegistry builds a registry from the given factories. Later factories
// with the same provider name win.
func NewRegistry(factories ...domain.AdapterFactory) *Registry {
	r := &Registry{factories: make(map[string]domain.AdapterFactory, len(factories))}
	for _, factory := range factories {
		if factory == nil {
			continue
		}
		name := normalizeProvider(factory.Provider())
		if name == "" {
			continue
		}
		r.factories[name] = factory
	}
	return r
}

// ProviderExists reports whether a factory is registered for the provider.
func (r *Registry) ProviderExists(provider string) bool {
	if r == nil {
		return false
	}
	_, ok := r.factories[normalizeProvider(provider)]
	return ok
}

// NewAdapter constructs an adapter for the provider from the given config.
func (r *Registry) NewAdapter(provider string, config domain.AdapterConfig) (domain.PaymentAdapter, error) {
	if r == nil {
		return nil, domain.ErrProviderNotFound
	}
	factory, ok := r.factories[normalizeProvider(provider)]
	if !ok {
		return nil, domain.ErrProviderNotFound
	}
	return factory.NewAdapter(config)
}

func normalizeProvider(provider string) string {
	return strings.ToLower(strings.TrimSpace(provider))
}

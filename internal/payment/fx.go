package payment

import (
	"github.com/smallbiznis/paylink/internal/cache"
	"github.com/smallbiznis/paylink/internal/config"
	"github.com/smallbiznis/paylink/internal/payment/adapters"
	"github.com/smallbiznis/paylink/internal/payment/adapters/stripe"
	"github.com/smallbiznis/paylink/internal/payment/domain"
	"github.com/smallbiznis/paylink/internal/payment/service"
	"go.uber.org/fx"
)

var Module = fx.Module("payment.service",
	fx.Provide(func() *adapters.Registry {
		return adapters.NewRegistry(stripe.NewFactory())
	}),
	fx.Provide(newSessionCache),
	fx.Provide(service.NewService),
)

func newSessionCache(cfg config.Config) cache.Cache[string, domain.CheckoutSession] {
	if cfg.Checkout.SessionReuseTTL <= 0 {
		return cache.Noop[string, domain.CheckoutSession]{}
	}
	return cache.NewTTLCache[string, domain.CheckoutSession]()
}

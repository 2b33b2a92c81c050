package service

import (
	"context"
	"errors"
	"net/http"
	"strings"

	"github.com/smallbiznis/paylink/internal/cache"
	"github.com/smallbiznis/paylink/internal/config"
	"github.com/smallbiznis/paylink/internal/payment/adapters"
	"github.com/smallbiznis/paylink/internal/payment/domain"
	"go.uber.org/fx"
	"go.uber.org/zap"
)

type Params struct {
	fx.In

	Log      *zap.Logger
	Cfg      config.Config
	Adapters *adapters.Registry
	Sessions cache.Cache[string, domain.CheckoutSession]
}

// Service orchestrates the webhook pipeline and checkout-session creation.
// It holds no mutable state between calls; the session cache is the only
// shared structure and is safe for concurrent use.
type Service struct {
	log      *zap.Logger
	cfg      config.Config
	adapters *adapters.Registry
	sessions cache.Cache[string, domain.CheckoutSession]
}

func NewService(p Params) domain.Service {
	return &Service{
		log:      p.Log.Named("payment.service"),
		cfg:      p.Cfg,
		adapters: p.Adapters,
		sessions: p.Sessions,
	}
}

// HandleWebhook runs verification, classification and extraction in sequence
// and collapses every failure mode into an unhandled result. The caller never
// sees verification internals; they are only logged, without payload content.
func (s *Service) HandleWebhook(ctx context.Context, provider string, payload []byte, headers http.Header) (domain.WebhookResult, *domain.PaymentEvent) {
	provider = strings.ToLower(strings.TrimSpace(provider))
	if provider == "" {
		s.log.Warn("webhook for blank provider rejected")
		return domain.WebhookResult{}, nil
	}

	adapter, err := s.adapterFor(provider)
	if err != nil {
		s.log.Warn("webhook provider unavailable", zap.String("provider", provider), zap.Error(err))
		return domain.WebhookResult{}, nil
	}

	if err := adapter.Verify(ctx, payload, headers); err != nil {
		if errors.Is(err, domain.ErrSecretMissing) {
			s.log.Warn("webhook secret not configured, event unverifiable", zap.String("provider", provider))
		} else {
			s.log.Warn("webhook signature rejected", zap.String("provider", provider))
		}
		return domain.WebhookResult{}, nil
	}

	event, err := adapter.Parse(ctx, payload)
	if err != nil {
		if errors.Is(err, domain.ErrEventIgnored) {
			s.log.Info("webhook event type ignored", zap.String("provider", provider))
		} else {
			s.log.Warn("webhook payload rejected", zap.String("provider", provider), zap.Error(err))
		}
		return domain.WebhookResult{}, nil
	}

	if event.OrderNumber == "" {
		s.log.Info("webhook event carried no order reference",
			zap.String("provider", provider),
			zap.String("event_type", string(event.Category)),
		)
	}

	return domain.WebhookResult{Handled: true, OrderNumber: event.OrderNumber}, event
}

// CreateCheckoutSession validates the order and creates (or reuses) a hosted
// checkout session. Reuse is keyed by order number within the configured TTL;
// with a zero TTL every call creates a fresh provider session. Provider
// failures propagate to the caller uninterpreted.
func (s *Service) CreateCheckoutSession(ctx context.Context, provider string, order domain.OrderSnapshot) (*domain.CheckoutSession, error) {
	provider = strings.ToLower(strings.TrimSpace(provider))
	if provider == "" {
		return nil, domain.ErrInvalidProvider
	}
	if err := order.Validate(); err != nil {
		return nil, err
	}

	if cached, ok := s.sessions.Get(sessionKey(provider, order.OrderNumber)); ok {
		s.log.Info("reusing checkout session",
			zap.String("provider", provider),
			zap.String("order_number", order.OrderNumber),
			zap.String("session_id", cached.SessionID),
		)
		return &cached, nil
	}

	adapter, err := s.adapterFor(provider)
	if err != nil {
		return nil, err
	}

	session, err := adapter.CreateCheckoutSession(ctx, order)
	if err != nil {
		return nil, err
	}

	if ttl := s.cfg.Checkout.SessionReuseTTL; ttl > 0 {
		s.sessions.Set(sessionKey(provider, order.OrderNumber), *session, ttl)
	}

	s.log.Info("checkout session created",
		zap.String("provider", provider),
		zap.String("order_number", order.OrderNumber),
		zap.String("session_id", session.SessionID),
	)
	return session, nil
}

// adapterFor builds a fresh adapter with the configured credential for each
// call, keeping the credential out of ambient state.
func (s *Service) adapterFor(provider string) (domain.PaymentAdapter, error) {
	if s.adapters == nil || !s.adapters.ProviderExists(provider) {
		return nil, domain.ErrProviderNotFound
	}
	return s.adapters.NewAdapter(provider, domain.AdapterConfig{
		Provider:           provider,
		APIKey:             s.cfg.Stripe.APIKey,
		WebhookSecret:      s.cfg.Stripe.WebhookSecret,
		SignatureTolerance: s.cfg.Stripe.SignatureTolerance,
	})
}

func sessionKey(provider, orderNumber string) string {
	return provider + ":" + orderNumber
}

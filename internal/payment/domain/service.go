package domain

import (
	"context"
	"errors"
	"net/http"
)

// Service is the request-scoped payment pipeline. HandleWebhook never fails
// toward the caller: every verification or classification problem collapses
// into WebhookResult{Handled: false}, so webhook endpoints expose a uniform
// two-outcome contract. The returned PaymentEvent is non-nil exactly when the
// result is handled, so the host can pick a state transition from it.
type Service interface {
	HandleWebhook(ctx context.Context, provider string, payload []byte, headers http.Header) (WebhookResult, *PaymentEvent)
	CreateCheckoutSession(ctx context.Context, provider string, order OrderSnapshot) (*CheckoutSession, error)
}

var (
	ErrInvalidProvider  = errors.New("invalid_provider")
	ErrProviderNotFound = errors.New("provider_not_found")
	ErrInvalidConfig    = errors.New("invalid_config")
	ErrSecretMissing    = errors.New("webhook_secret_missing")
	ErrInvalidSignature = errors.New("invalid_signature")
	ErrInvalidPayload   = errors.New("invalid_payload")
	ErrEventIgnored     = errors.New("event_ignored")
	ErrInvalidOrder     = errors.New("invalid_order")
	ErrInvalidAmount    = errors.New("invalid_amount")
	ErrInvalidCurrency  = errors.New("invalid_currency")
)

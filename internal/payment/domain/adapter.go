package domain

import (
	"context"
	"net/http"
	"time"
)

// PaymentAdapter is the per-provider integration surface. Verify checks the
// signature header against the exact raw payload bytes; Parse deserializes a
// verified payload into a canonical PaymentEvent; CreateCheckoutSession maps
// an order snapshot into a hosted checkout session.
//
// Adapters hold their credential per instance and never install it as
// process-wide state, so concurrent use with different credentials is safe.
type PaymentAdapter interface {
	Verify(ctx context.Context, payload []byte, headers http.Header) error
	Parse(ctx context.Context, payload []byte) (*PaymentEvent, error)
	CreateCheckoutSession(ctx context.Context, order OrderSnapshot) (*CheckoutSession, error)
}

// AdapterConfig carries the per-provider credentials and tuning for one
// adapter instance. WebhookSecret may be empty: webhook verification then
// fails closed while session creation keeps working.
type AdapterConfig struct {
	Provider           string
	APIKey             string
	WebhookSecret      string
	SignatureTolerance time.Duration
}

// AdapterFactory builds adapters for a single provider.
type AdapterFactory interface {
	Provider() string
	NewAdapter(config AdapterConfig) (PaymentAdapter, error)
}

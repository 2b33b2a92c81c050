package stripe

import (
	"context"
	"net/http"
	"strings"
	"time"

	"github.com/smallbiznis/paylink/internal/payment/domain"
	"github.com/stripe/stripe-go/v72/client"
	"github.com/stripe/stripe-go/v72/webhook"
)

const signatureHeader = "Stripe-Signature"

// Adapter implements domain.PaymentAdapter against the Stripe API and
// webhook signature scheme (t=<timestamp>,v1=<hex-hmac> over the raw body).
type Adapter struct {
	api           *client.API
	webhookSecret string
	tolerance     time.Duration
}

// Verify checks the Stripe-Signature header against the raw payload. The
// payload must be the exact bytes as transmitted: any re-serialization breaks
// the HMAC comparison. An empty configured secret fails closed.
func (a *Adapter) Verify(ctx context.Context, payload []byte, headers http.Header) error {
	if a.webhookSecret == "" {
		return domain.ErrSecretMissing
	}
	signature := strings.TrimSpace(headers.Get(signatureHeader))
	if signature == "" {
		return domain.ErrInvalidSignature
	}
	if _, err := webhook.ConstructEventWithTolerance(payload, signature, a.webhookSecret, a.tolerance); err != nil {
		return domain.ErrInvalidSignature
	}
	return nil
}

// Parse deserializes a verified payload into a canonical PaymentEvent. Event
// types outside the allow-list return ErrEventIgnored. A missing order
// reference is not an error: the event is returned with OrderNumber empty.
func (a *Adapter) Parse(ctx context.Context, payload []byte) (*domain.PaymentEvent, error) {
	raw, err := decodeEvent(payload)
	if err != nil {
		return nil, err
	}

	category, ok := classify(raw.eventType)
	if !ok {
		return nil, domain.ErrEventIgnored
	}

	event := &domain.PaymentEvent{
		Provider:        providerName,
		ProviderEventID: raw.id,
		Category:        category,
		OrderNumber:     orderNumber(category, raw),
		OccurredAt:      raw.created,
	}
	raw.fillAmounts(event)

	return event, nil
}

package stripe

import (
	"encoding/json"
	"strings"
	"time"

	"github.com/smallbiznis/paylink/internal/payment/domain"
	stripe "github.com/stripe/stripe-go/v72"
)

// Event type tags accepted by the webhook pipeline.
const (
	eventCheckoutSessionCompleted = "checkout.session.completed"
	eventPaymentIntentSucceeded   = "payment_intent.succeeded"
	eventPaymentIntentFailed      = "payment_intent.payment_failed"
	eventChargeRefunded           = "charge.refunded"
	eventChargeRefundUpdated      = "charge.refund.updated"
)

// rawEvent is the decoded provider event: the declared type tag plus exactly
// one populated payload variant. It lives only for the duration of a single
// webhook request.
type rawEvent struct {
	id        string
	eventType string
	created   time.Time
	checkout  *stripe.CheckoutSession
	intent    *stripe.PaymentIntent
	charge    *stripe.Charge
}

// decodeEvent unmarshals the envelope and, for supported types, the typed
// payload variant. The payload is decoded once here; extraction pattern
// matches on the variant rather than re-inspecting JSON.
func decodeEvent(payload []byte) (*rawEvent, error) {
	var envelope stripe.Event
	if err := json.Unmarshal(payload, &envelope); err != nil {
		return nil, domain.ErrInvalidPayload
	}

	raw := &rawEvent{
		id:        strings.TrimSpace(envelope.ID),
		eventType: strings.TrimSpace(envelope.Type),
	}
	if envelope.Created > 0 {
		raw.created = time.Unix(envelope.Created, 0).UTC()
	}
	if envelope.Data == nil {
		return raw, nil
	}

	switch raw.eventType {
	case eventCheckoutSessionCompleted:
		var session stripe.CheckoutSession
		if err := json.Unmarshal(envelope.Data.Raw, &session); err != nil {
			return nil, domain.ErrInvalidPayload
		}
		raw.checkout = &session
	case eventPaymentIntentSucceeded, eventPaymentIntentFailed:
		var intent stripe.PaymentIntent
		if err := json.Unmarshal(envelope.Data.Raw, &intent); err != nil {
			return nil, domain.ErrInvalidPayload
		}
		raw.intent = &intent
	case eventChargeRefunded, eventChargeRefundUpdated:
		var charge stripe.Charge
		if err := json.Unmarshal(envelope.Data.Raw, &charge); err != nil {
			return nil, domain.ErrInvalidPayload
		}
		raw.charge = &charge
	}

	return raw, nil
}

// classify maps the provider type tag onto the fixed category set. Unknown
// tags are not an error; they report ok=false and the pipeline ignores them.
func classify(eventType string) (domain.EventCategory, bool) {
	switch eventType {
	case eventCheckoutSessionCompleted:
		return domain.CategoryCheckoutCompleted, true
	case eventPaymentIntentSucceeded:
		return domain.CategoryPaymentSucceeded, true
	case eventPaymentIntentFailed:
		return domain.CategoryPaymentFailed, true
	case eventChargeRefunded:
		return domain.CategoryChargeRefunded, true
	case eventChargeRefundUpdated:
		return domain.CategoryRefundUpdated, true
	default:
		return "", false
	}
}

// fillAmounts copies amount and currency details from whichever variant is
// populated.
func (r *rawEvent) fillAmounts(event *domain.PaymentEvent) {
	switch {
	case r.checkout != nil:
		event.Amount = r.checkout.AmountTotal
		event.Currency = strings.ToUpper(string(r.checkout.Currency))
	case r.intent != nil:
		event.Amount = r.intent.Amount
		event.Currency = strings.ToUpper(string(r.intent.Currency))
	case r.charge != nil:
		event.Amount = r.charge.Amount
		event.AmountRefunded = r.charge.AmountRefunded
		event.Currency = strings.ToUpper(string(r.charge.Currency))
	}
}

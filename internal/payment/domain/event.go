package domain

import "time"

// EventCategory is the closed set of provider event types the webhook
// pipeline understands. Everything else is ignored, not failed.
type EventCategory string

const (
	CategoryCheckoutCompleted EventCategory = "checkout.completed"
	CategoryPaymentSucceeded  EventCategory = "payment.succeeded"
	CategoryPaymentFailed     EventCategory = "payment.failed"
	CategoryChargeRefunded    EventCategory = "charge.refunded"
	CategoryRefundUpdated     EventCategory = "refund.updated"
)

// PaymentState is the order payment lifecycle owned by the host's order
// store. The core never persists one; it only carries enough event context
// for the host to pick a transition.
type PaymentState string

const (
	StatePending           PaymentState = "pending"
	StateProcessing        PaymentState = "processing"
	StateSucceeded         PaymentState = "succeeded"
	StateFailed            PaymentState = "failed"
	StateRefunded          PaymentState = "refunded"
	StatePartiallyRefunded PaymentState = "partially_refunded"
)

// PaymentEvent is the canonical, provider-neutral event parsed by adapters
// from a verified webhook payload. OrderNumber is empty when the event was
// understood but carried no correlatable order reference.
type PaymentEvent struct {
	Provider        string
	ProviderEventID string
	Category        EventCategory
	OrderNumber     string
	Amount          int64
	AmountRefunded  int64
	Currency        string
	OccurredAt      time.Time
}

// WebhookResult is the terminal output of the webhook pipeline. Handled is
// false for anything unverifiable or outside the allow-list; OrderNumber is
// set only when Handled is true and extraction found a reference.
type WebhookResult struct {
	Handled     bool
	OrderNumber string
}

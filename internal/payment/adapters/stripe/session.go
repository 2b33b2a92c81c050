package stripe

import (
	"context"
	"fmt"
	"strings"

	"github.com/smallbiznis/paylink/internal/payment/domain"
	stripe "github.com/stripe/stripe-go/v72"
)

// metadataCustomerEmail mirrors the customer email into session metadata
// alongside the order number.
const metadataCustomerEmail = "customerEmail"

// CreateCheckoutSession creates a single-line-item payment-mode session for
// the order. The order number travels both as the client reference and as
// metadata so webhook extraction has a fallback path. Provider failures are
// propagated uninterpreted; there is no retry here.
func (a *Adapter) CreateCheckoutSession(ctx context.Context, order domain.OrderSnapshot) (*domain.CheckoutSession, error) {
	if err := order.Validate(); err != nil {
		return nil, err
	}

	session, err := a.api.CheckoutSessions.New(sessionParams(ctx, order))
	if err != nil {
		return nil, fmt.Errorf("create checkout session: %w", err)
	}

	return &domain.CheckoutSession{
		RedirectURL: session.URL,
		SessionID:   session.ID,
	}, nil
}

// sessionParams maps an order snapshot onto the provider request. The shape
// is a pure function of the snapshot: amount, URLs and the order number are
// preserved exactly, the currency is lower-cased.
func sessionParams(ctx context.Context, order domain.OrderSnapshot) *stripe.CheckoutSessionParams {
	params := &stripe.CheckoutSessionParams{
		Params:            stripe.Params{Context: ctx},
		Mode:              stripe.String(string(stripe.CheckoutSessionModePayment)),
		SuccessURL:        stripe.String(order.SuccessURL),
		CancelURL:         stripe.String(order.CancelURL),
		ClientReferenceID: stripe.String(order.OrderNumber),
		LineItems: []*stripe.CheckoutSessionLineItemParams{
			{
				Quantity: stripe.Int64(1),
				PriceData: &stripe.CheckoutSessionLineItemPriceDataParams{
					Currency:   stripe.String(strings.ToLower(strings.TrimSpace(order.Currency))),
					UnitAmount: stripe.Int64(order.AmountMinor),
					ProductData: &stripe.CheckoutSessionLineItemPriceDataProductDataParams{
						Name: stripe.String("Order " + order.OrderNumber),
					},
				},
			},
		},
	}
	if email := strings.TrimSpace(order.CustomerEmail); email != "" {
		params.CustomerEmail = stripe.String(email)
		params.AddMetadata(metadataCustomerEmail, email)
	}
	params.AddMetadata(metadataOrderNumber, order.OrderNumber)

	return params
}

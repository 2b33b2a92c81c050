package domain

import (
	"context"
	"errors"

	paymentdomain "github.com/smallbiznis/paylink/internal/payment/domain"
)

var (
	ErrInvalidOrderNumber = errors.New("invalid_order_number")
	ErrPaymentNotFound    = errors.New("payment_not_found")
)

// Store is the order-state sink the host applies WebhookResult outcomes to.
// The payment core never calls it; the HTTP layer does, after interpreting a
// handled result.
type Store interface {
	SetPaymentState(ctx context.Context, orderNumber string, state paymentdomain.PaymentState, providerRef *string) error
	RecordEvent(ctx context.Context, record *WebhookEventRecord) (bool, error)
	GetPayment(ctx context.Context, orderNumber string) (*OrderPayment, error)
}

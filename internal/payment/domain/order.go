package domain

import "strings"

// OrderSnapshot describes an order to be paid. It is supplied by the host per
// checkout attempt and is read-only to the payment core: in particular the
// order number is treated as an opaque string and is never rewritten. The
// value sent at session creation is the same value expected back at webhook
// time via the client reference or metadata.
type OrderSnapshot struct {
	OrderNumber   string
	AmountMinor   int64
	Currency      string
	CustomerEmail string
	SuccessURL    string
	CancelURL     string
}

// Validate checks the snapshot before it is handed to a provider adapter.
func (o OrderSnapshot) Validate() error {
	if strings.TrimSpace(o.OrderNumber) == "" {
		return ErrInvalidOrder
	}
	if o.AmountMinor <= 0 {
		return ErrInvalidAmount
	}
	if strings.TrimSpace(o.Currency) == "" {
		return ErrInvalidCurrency
	}
	if strings.TrimSpace(o.SuccessURL) == "" || strings.TrimSpace(o.CancelURL) == "" {
		return ErrInvalidOrder
	}
	return nil
}

// CheckoutSession is the result of a successful session creation: an absolute
// provider-hosted redirect URL and the opaque provider session reference.
type CheckoutSession struct {
	RedirectURL string
	SessionID   string
}

package stripe

import (
	"net/http"
	"strings"
	"time"

	"github.com/smallbiznis/paylink/internal/observability/tracing"
	"github.com/smallbiznis/paylink/internal/payment/domain"
	stripe "github.com/stripe/stripe-go/v72"
	"github.com/stripe/stripe-go/v72/client"
)

const providerName = "stripe"

// defaultTolerance bounds the accepted skew between the signature header
// timestamp and the current time.
const defaultTolerance = 5 * time.Minute

const apiTimeout = 20 * time.Second

type Factory struct{}

func NewFactory() *Factory {
	return &Factory{}
}

func (f *Factory) Provider() string {
	return providerName
}

// NewAdapter builds a Stripe adapter bound to the config's credentials. The
// API key is required; the webhook secret may be empty, in which case Verify
// fails closed while session creation still works.
func (f *Factory) NewAdapter(config domain.AdapterConfig) (domain.PaymentAdapter, error) {
	apiKey := strings.TrimSpace(config.APIKey)
	if apiKey == "" {
		return nil, domain.ErrInvalidConfig
	}

	tolerance := config.SignatureTolerance
	if tolerance <= 0 {
		tolerance = defaultTolerance
	}

	// A dedicated client per adapter keeps the credential off stripe.Key so
	// concurrent adapters with different keys cannot interfere.
	api := &client.API{}
	api.Init(apiKey, stripe.NewBackends(tracing.WrapHTTPClient(&http.Client{Timeout: apiTimeout})))

	return &Adapter{
		api:           api,
		webhookSecret: strings.TrimSpace(config.WebhookSecret),
		tolerance:     tolerance,
	}, nil
}

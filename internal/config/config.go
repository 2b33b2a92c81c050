package config

import (
	"errors"
	"strings"
	"time"

	"github.com/caarlos0/env/v11"
	"github.com/joho/godotenv"
)

var ErrAPIKeyRequired = errors.New("stripe_api_key_required")

// StripeConfig carries the provider credentials. The API key is validated at
// startup; the webhook secret is optional and only degrades webhook handling
// to always-unhandled when absent.
type StripeConfig struct {
	APIKey             string        `env:"API_KEY"`
	WebhookSecret      string        `env:"WEBHOOK_SECRET"`
	SignatureTolerance time.Duration `env:"SIGNATURE_TOLERANCE" envDefault:"5m"`
}

// CheckoutConfig tunes checkout-session behaviour. SessionReuseTTL of zero
// disables reuse and every call creates a fresh provider session.
type CheckoutConfig struct {
	SessionReuseTTL time.Duration `env:"SESSION_REUSE_TTL" envDefault:"30m"`
}

// TracingConfig configures the OTLP exporter.
type TracingConfig struct {
	Enabled          bool    `env:"ENABLED" envDefault:"false"`
	ExporterEndpoint string  `env:"EXPORTER_ENDPOINT"`
	ExporterProtocol string  `env:"EXPORTER_PROTOCOL" envDefault:"grpc"`
	SamplingRatio    float64 `env:"SAMPLING_RATIO" envDefault:"1.0"`
}

type Config struct {
	Environment string `env:"PAYLINK_ENV" envDefault:"development"`
	HTTPAddr    string `env:"PAYLINK_HTTP_ADDR" envDefault:":8080"`
	DatabaseDSN string `env:"PAYLINK_DATABASE_DSN"`

	Stripe   StripeConfig   `envPrefix:"STRIPE_"`
	Checkout CheckoutConfig `envPrefix:"PAYLINK_CHECKOUT_"`
	Tracing  TracingConfig  `envPrefix:"PAYLINK_TRACING_"`
}

func (c Config) IsProduction() bool {
	return strings.EqualFold(strings.TrimSpace(c.Environment), "production")
}

// Load reads configuration from the environment (plus a local .env file when
// present) and validates it. A missing Stripe API key is a startup error so
// the process refuses to serve before the first request.
func Load() (Config, error) {
	_ = godotenv.Load()

	cfg, err := env.ParseAs[Config]()
	if err != nil {
		return Config{}, err
	}
	return cfg.validate()
}

func (c Config) validate() (Config, error) {
	c.Stripe.APIKey = strings.TrimSpace(c.Stripe.APIKey)
	c.Stripe.WebhookSecret = strings.TrimSpace(c.Stripe.WebhookSecret)
	if c.Stripe.APIKey == "" {
		return Config{}, ErrAPIKeyRequired
	}
	if c.Stripe.SignatureTolerance <= 0 {
		c.Stripe.SignatureTolerance = 5 * time.Minute
	}
	if c.Checkout.SessionReuseTTL < 0 {
		c.Checkout.SessionReuseTTL = 0
	}
	return c, nil
}

package metrics

import (
	"sync"

	"github.com/prometheus/client_golang/prometheus"
)

// Webhook pipeline outcomes and checkout session counters, labelled by
// provider only to keep cardinality fixed.
type WebhookMetrics struct {
	eventsTotal      *prometheus.CounterVec
	checkoutSessions *prometheus.CounterVec
}

const (
	OutcomeHandled   = "handled"
	OutcomeUnhandled = "unhandled"
	OutcomeDuplicate = "duplicate"

	SessionCreated = "created"
	SessionReused  = "reused"
)

var (
	webhookMetricsOnce sync.Once
	webhookMetrics     *WebhookMetrics
)

// Webhook returns the process-wide webhook metrics, registering them on
// first use.
func Webhook() *WebhookMetrics {
	webhookMetricsOnce.Do(func() {
		webhookMetrics = newWebhookMetrics(prometheus.DefaultRegisterer)
	})
	return webhookMetrics
}

func ResetWebhookMetricsForTest() {
	webhookMetricsOnce = sync.Once{}
	webhookMetrics = nil
}

func newWebhookMetrics(registerer prometheus.Registerer) *WebhookMetrics {
	if registerer == nil {
		registerer = prometheus.DefaultRegisterer
	}

	eventsTotal := prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "paylink_webhook_events_total",
			Help: "Webhook deliveries by pipeline outcome.",
		},
		[]string{"provider", "outcome"},
	)
	checkoutSessions := prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "paylink_checkout_sessions_total",
			Help: "Checkout sessions by creation result.",
		},
		[]string{"provider", "result"},
	)

	for _, collector := range []prometheus.Collector{eventsTotal, checkoutSessions} {
		if err := registerer.Register(collector); err != nil {
			if already, ok := err.(prometheus.AlreadyRegisteredError); ok {
				switch existing := already.ExistingCollector.(type) {
				case *prometheus.CounterVec:
					if collector == eventsTotal {
						eventsTotal = existing
					} else {
						checkoutSessions = existing
					}
				}
			}
		}
	}

	return &WebhookMetrics{
		eventsTotal:      eventsTotal,
		checkoutSessions: checkoutSessions,
	}
}

// RecordEvent counts one webhook delivery outcome.
func (m *WebhookMetrics) RecordEvent(provider, outcome string) {
	if m == nil {
		return
	}
	m.eventsTotal.WithLabelValues(provider, outcome).Inc()
}

// RecordSession counts one checkout session result.
func (m *WebhookMetrics) RecordSession(provider, result string) {
	if m == nil {
		return
	}
	m.checkoutSessions.WithLabelValues(provider, result).Inc()
}

package observability

import (
	"github.com/smallbiznis/paylink/internal/observability/logger"
	"github.com/smallbiznis/paylink/internal/observability/metrics"
	"github.com/smallbiznis/paylink/internal/observability/tracing"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/metric"
	"go.uber.org/fx"
)

var Module = fx.Module("observability",
	logger.Module,
	tracing.Module,
	fx.Provide(func() metric.MeterProvider {
		return otel.GetMeterProvider()
	}),
	fx.Provide(metrics.NewHTTPMetrics),
	fx.Provide(metrics.Webhook),
)

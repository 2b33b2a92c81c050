package server

import (
	"context"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/smallbiznis/paylink/internal/config"
	"github.com/smallbiznis/paylink/internal/observability/logger"
	"github.com/smallbiznis/paylink/internal/observability/metrics"
	orderpaymentsdomain "github.com/smallbiznis/paylink/internal/orderpayments/domain"
	paymentdomain "github.com/smallbiznis/paylink/internal/payment/domain"
	"go.uber.org/fx"
	"go.uber.org/zap"
)

const checkoutRateLimit = 30

var Module = fx.Module("server",
	fx.Provide(NewEngine),
	fx.Provide(NewServer),
	fx.Invoke(func(s *Server, engine *gin.Engine) {
		s.RegisterRoutes(engine)
	}),
	fx.Invoke(RunHTTP),
)

type Params struct {
	fx.In

	Log        *zap.Logger
	Cfg        config.Config
	PaymentSvc paymentdomain.Service
	Orders     orderpaymentsdomain.Store
	Metrics    *metrics.WebhookMetrics
}

// Server exposes the example host application: a checkout endpoint and a
// webhook endpoint that applies handled results to the order-payment store.
type Server struct {
	log        *zap.Logger
	cfg        config.Config
	paymentSvc paymentdomain.Service
	orders     orderpaymentsdomain.Store
	metrics    *metrics.WebhookMetrics
	limiter    *rateLimiter
}

func NewServer(p Params) *Server {
	return &Server{
		log:        p.Log.Named("server"),
		cfg:        p.Cfg,
		paymentSvc: p.PaymentSvc,
		orders:     p.Orders,
		metrics:    p.Metrics,
		limiter:    newRateLimiter(checkoutRateLimit, time.Minute),
	}
}

func NewEngine(cfg config.Config, m *metrics.HTTPMetrics) *gin.Engine {
	if cfg.IsProduction() {
		gin.SetMode(gin.ReleaseMode)
	}
	engine := gin.New()
	engine.Use(gin.Recovery())
	engine.Use(logger.GinMiddleware(logger.MiddlewareConfig{SkipPaths: []string{"/healthz", "/metrics"}}))
	engine.Use(metrics.GinMiddleware(m))
	return engine
}

func (s *Server) RegisterRoutes(engine *gin.Engine) {
	engine.GET("/healthz", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})
	engine.GET("/metrics", gin.WrapH(promhttp.Handler()))

	api := engine.Group("/api")
	api.POST("/checkout", s.CreateCheckout)
	api.GET("/orders/:orderNumber/payment", s.GetOrderPayment)
	api.POST("/webhooks/:provider", s.IngestWebhook)
}

// RunHTTP starts the HTTP listener under the fx lifecycle.
func RunHTTP(lc fx.Lifecycle, engine *gin.Engine, cfg config.Config, log *zap.Logger) {
	srv := &http.Server{
		Addr:              cfg.HTTPAddr,
		Handler:           engine,
		ReadHeaderTimeout: 10 * time.Second,
	}

	lc.Append(fx.Hook{
		OnStart: func(ctx context.Context) error {
			log.Info("http server starting", zap.String("addr", cfg.HTTPAddr))
			go func() {
				if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
					log.Error("http server failed", zap.Error(err))
				}
			}()
			return nil
		},
		OnStop: func(ctx context.Context) error {
			log.Info("http server stopping")
			return srv.Shutdown(ctx)
		},
	})
}

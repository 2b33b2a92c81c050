package server

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/smallbiznis/paylink/internal/observability/metrics"
	orderpaymentsdomain "github.com/smallbiznis/paylink/internal/orderpayments/domain"
	paymentdomain "github.com/smallbiznis/paylink/internal/payment/domain"
	"go.uber.org/zap"
	"gorm.io/datatypes"
)

// IngestWebhook feeds the raw request body and headers into the webhook
// pipeline and, for handled events with an order reference, applies the
// implied state transition to the order-payment store. The response never
// exposes why an event was unhandled.
func (s *Server) IngestWebhook(c *gin.Context) {
	provider := c.Param("provider")

	// The pipeline needs the exact bytes as transmitted; re-serialization
	// would break signature verification.
	payload, err := c.GetRawData()
	if err != nil {
		AbortWithError(c, invalidRequestError())
		return
	}

	result, event := s.paymentSvc.HandleWebhook(c.Request.Context(), provider, payload, c.Request.Header)
	if !result.Handled {
		s.metrics.RecordEvent(provider, metrics.OutcomeUnhandled)
		c.JSON(http.StatusOK, gin.H{"handled": false})
		return
	}

	if result.OrderNumber == "" {
		s.metrics.RecordEvent(provider, metrics.OutcomeHandled)
		c.JSON(http.StatusOK, gin.H{"handled": true})
		return
	}

	inserted, err := s.orders.RecordEvent(c.Request.Context(), &orderpaymentsdomain.WebhookEventRecord{
		Provider:        event.Provider,
		ProviderEventID: event.ProviderEventID,
		EventType:       string(event.Category),
		OrderNumber:     result.OrderNumber,
		Payload:         datatypes.JSON(payload),
	})
	if err != nil {
		s.log.Error("record webhook event failed", zap.String("order_number", result.OrderNumber), zap.Error(err))
		c.AbortWithStatusJSON(http.StatusInternalServerError, gin.H{"error": "internal_error"})
		return
	}
	if !inserted {
		s.metrics.RecordEvent(provider, metrics.OutcomeDuplicate)
		c.JSON(http.StatusOK, gin.H{"handled": true, "order_number": result.OrderNumber})
		return
	}

	state := stateForEvent(event)
	ref := event.ProviderEventID
	if err := s.orders.SetPaymentState(c.Request.Context(), result.OrderNumber, state, &ref); err != nil {
		s.log.Error("apply payment state failed",
			zap.String("order_number", result.OrderNumber),
			zap.String("state", string(state)),
			zap.Error(err),
		)
		c.AbortWithStatusJSON(http.StatusInternalServerError, gin.H{"error": "internal_error"})
		return
	}
	s.metrics.RecordEvent(provider, metrics.OutcomeHandled)

	c.JSON(http.StatusOK, gin.H{"handled": true, "order_number": result.OrderNumber})
}

// stateForEvent is this host's interpretation of a handled event. The
// pipeline itself never decides final order state.
func stateForEvent(event *paymentdomain.PaymentEvent) paymentdomain.PaymentState {
	switch event.Category {
	case paymentdomain.CategoryCheckoutCompleted, paymentdomain.CategoryPaymentSucceeded:
		return paymentdomain.StateSucceeded
	case paymentdomain.CategoryPaymentFailed:
		return paymentdomain.StateFailed
	case paymentdomain.CategoryChargeRefunded, paymentdomain.CategoryRefundUpdated:
		if event.AmountRefunded > 0 && event.AmountRefunded < event.Amount {
			return paymentdomain.StatePartiallyRefunded
		}
		return paymentdomain.StateRefunded
	default:
		return paymentdomain.StateProcessing
	}
}

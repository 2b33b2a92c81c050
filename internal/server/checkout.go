package server

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/smallbiznis/paylink/internal/observability/metrics"
	paymentdomain "github.com/smallbiznis/paylink/internal/payment/domain"
	"go.uber.org/zap"
)

type createCheckoutRequest struct {
	OrderNumber   string `json:"order_number"`
	AmountMinor   int64  `json:"amount_minor"`
	Currency      string `json:"currency"`
	CustomerEmail string `json:"customer_email"`
	SuccessURL    string `json:"success_url"`
	CancelURL     string `json:"cancel_url"`
	Provider      string `json:"provider"`
}

func (s *Server) CreateCheckout(c *gin.Context) {
	if !s.limiter.Allow(c.ClientIP()) {
		AbortWithError(c, ErrRateLimited)
		return
	}

	var req createCheckoutRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		AbortWithError(c, invalidRequestError())
		return
	}

	provider := strings.TrimSpace(req.Provider)
	if provider == "" {
		provider = "stripe"
	}
	req.OrderNumber = strings.TrimSpace(req.OrderNumber)
	if req.OrderNumber == "" {
		AbortWithError(c, newValidationError("order_number", "required", "order number is required"))
		return
	}

	order := paymentdomain.OrderSnapshot{
		OrderNumber:   req.OrderNumber,
		AmountMinor:   req.AmountMinor,
		Currency:      req.Currency,
		CustomerEmail: req.CustomerEmail,
		SuccessURL:    req.SuccessURL,
		CancelURL:     req.CancelURL,
	}

	session, err := s.paymentSvc.CreateCheckoutSession(c.Request.Context(), provider, order)
	if err != nil {
		s.log.Warn("checkout session creation failed",
			zap.String("order_number", req.OrderNumber),
			zap.Error(err),
		)
		AbortWithError(c, err)
		return
	}
	s.metrics.RecordSession(provider, metrics.SessionCreated)

	ref := session.SessionID
	if err := s.orders.SetPaymentState(c.Request.Context(), req.OrderNumber, paymentdomain.StatePending, &ref); err != nil {
		s.log.Error("record pending payment failed", zap.String("order_number", req.OrderNumber), zap.Error(err))
		c.AbortWithStatusJSON(http.StatusInternalServerError, gin.H{"error": "internal_error"})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"redirect_url": session.RedirectURL,
		"session_id":   session.SessionID,
	})
}

func (s *Server) GetOrderPayment(c *gin.Context) {
	orderNumber := strings.TrimSpace(c.Param("orderNumber"))
	payment, err := s.orders.GetPayment(c.Request.Context(), orderNumber)
	if err != nil {
		AbortWithError(c, ErrNotFound)
		return
	}

	resp := gin.H{
		"order_number": payment.OrderNumber,
		"state":        payment.State,
		"updated_at":   payment.UpdatedAt,
	}
	if payment.ProviderRef != nil {
		resp["provider_ref"] = *payment.ProviderRef
	}
	c.JSON(http.StatusOK, resp)
}

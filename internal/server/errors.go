package server

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	paymentdomain "github.com/smallbiznis/paylink/internal/payment/domain"
)

var (
	ErrNotFound     = errors.New("not_found")
	ErrRateLimited  = errors.New("rate_limited")
	ErrInvalidInput = errors.New("invalid_request")
)

type apiError struct {
	status  int
	code    string
	message string
}

func (e *apiError) Error() string { return e.code }

func invalidRequestError() error {
	return &apiError{status: http.StatusBadRequest, code: "invalid_request", message: "invalid request body"}
}

func newValidationError(field, code, message string) error {
	return &apiError{status: http.StatusBadRequest, code: code, message: field + ": " + message}
}

// AbortWithError maps domain errors onto HTTP responses. Provider failures
// surface as 502 so the caller knows the upstream rejected the request.
func AbortWithError(c *gin.Context, err error) {
	var apiErr *apiError
	if errors.As(err, &apiErr) {
		c.AbortWithStatusJSON(apiErr.status, gin.H{"error": apiErr.code, "message": apiErr.message})
		return
	}

	switch {
	case errors.Is(err, ErrNotFound):
		c.AbortWithStatusJSON(http.StatusNotFound, gin.H{"error": "not_found"})
	case errors.Is(err, ErrRateLimited):
		c.AbortWithStatusJSON(http.StatusTooManyRequests, gin.H{"error": "rate_limited"})
	case errors.Is(err, paymentdomain.ErrInvalidOrder),
		errors.Is(err, paymentdomain.ErrInvalidAmount),
		errors.Is(err, paymentdomain.ErrInvalidCurrency),
		errors.Is(err, paymentdomain.ErrInvalidProvider):
		c.AbortWithStatusJSON(http.StatusBadRequest, gin.H{"error": err.Error()})
	case errors.Is(err, paymentdomain.ErrProviderNotFound):
		c.AbortWithStatusJSON(http.StatusNotFound, gin.H{"error": "provider_not_found"})
	default:
		c.AbortWithStatusJSON(http.StatusBadGateway, gin.H{"error": "provider_error"})
	}
}

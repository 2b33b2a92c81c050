package server

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/smallbiznis/paylink/internal/config"
	"github.com/smallbiznis/paylink/internal/observability/metrics"
	orderpaymentsdomain "github.com/smallbiznis/paylink/internal/orderpayments/domain"
	paymentdomain "github.com/smallbiznis/paylink/internal/payment/domain"
	"go.uber.org/zap"
)

type stubPaymentService struct {
	result  paymentdomain.WebhookResult
	event   *paymentdomain.PaymentEvent
	session *paymentdomain.CheckoutSession
	err     error
}

func (s *stubPaymentService) HandleWebhook(ctx context.Context, provider string, payload []byte, headers http.Header) (paymentdomain.WebhookResult, *paymentdomain.PaymentEvent) {
	return s.result, s.event
}

func (s *stubPaymentService) CreateCheckoutSession(ctx context.Context, provider string, order paymentdomain.OrderSnapshot) (*paymentdomain.CheckoutSession, error) {
	return s.session, s.err
}

type stubStore struct {
	states    map[string]paymentdomain.PaymentState
	refs      map[string]string
	seen      map[string]bool
	stateErr  error
	recordErr error
}

func newStubStore() *stubStore {
	return &stubStore{
		states: make(map[string]paymentdomain.PaymentState),
		refs:   make(map[string]string),
		seen:   make(map[string]bool),
	}
}

func (s *stubStore) SetPaymentState(ctx context.Context, orderNumber string, state paymentdomain.PaymentState, providerRef *string) error {
	if s.stateErr != nil {
		return s.stateErr
	}
	s.states[orderNumber] = state
	if providerRef != nil {
		s.refs[orderNumber] = *providerRef
	}
	return nil
}

func (s *stubStore) RecordEvent(ctx context.Context, record *orderpaymentsdomain.WebhookEventRecord) (bool, error) {
	if s.recordErr != nil {
		return false, s.recordErr
	}
	key := record.Provider + ":" + record.ProviderEventID
	if s.seen[key] {
		return false, nil
	}
	s.seen[key] = true
	return true, nil
}

func (s *stubStore) GetPayment(ctx context.Context, orderNumber string) (*orderpaymentsdomain.OrderPayment, error) {
	state, ok := s.states[orderNumber]
	if !ok {
		return nil, orderpaymentsdomain.ErrPaymentNotFound
	}
	payment := &orderpaymentsdomain.OrderPayment{OrderNumber: orderNumber, State: string(state), UpdatedAt: time.Now()}
	if ref, ok := s.refs[orderNumber]; ok {
		payment.ProviderRef = &ref
	}
	return payment, nil
}

func newTestServer(svc paymentdomain.Service, store orderpaymentsdomain.Store) (*Server, *gin.Engine) {
	gin.SetMode(gin.TestMode)
	s := &Server{
		log:        zap.NewNop(),
		cfg:        config.Config{},
		paymentSvc: svc,
		orders:     store,
		metrics:    metrics.Webhook(),
		limiter:    newRateLimiter(checkoutRateLimit, time.Minute),
	}
	engine := gin.New()
	s.RegisterRoutes(engine)
	return s, engine
}

func postJSON(engine *gin.Engine, path string, body []byte) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodPost, path, bytes.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	engine.ServeHTTP(w, req)
	return w
}

func TestIngestWebhookUnhandled(t *testing.T) {
	store := newStubStore()
	_, engine := newTestServer(&stubPaymentService{}, store)

	w := postJSON(engine, "/api/webhooks/stripe", []byte(`{}`))
	if w.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", w.Code)
	}

	var resp map[string]any
	if err := json.Unmarshal(w.Body.Bytes(), &resp); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	if resp["handled"] != false {
		t.Fatalf("expected handled false, got %v", resp["handled"])
	}
	if len(store.states) != 0 {
		t.Fatalf("expected no state transitions, got %v", store.states)
	}
}

func TestIngestWebhookHandledAppliesState(t *testing.T) {
	store := newStubStore()
	svc := &stubPaymentService{
		result: paymentdomain.WebhookResult{Handled: true, OrderNumber: "ORD-1001"},
		event: &paymentdomain.PaymentEvent{
			Provider:        "stripe",
			ProviderEventID: "evt_1",
			Category:        paymentdomain.CategoryCheckoutCompleted,
		},
	}
	_, engine := newTestServer(svc, store)

	w := postJSON(engine, "/api/webhooks/stripe", []byte(`{}`))
	if w.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", w.Code)
	}
	if store.states["ORD-1001"] != paymentdomain.StateSucceeded {
		t.Fatalf("expected succeeded state, got %q", store.states["ORD-1001"])
	}
	if store.refs["ORD-1001"] != "evt_1" {
		t.Fatalf("expected provider ref evt_1, got %q", store.refs["ORD-1001"])
	}
}

func TestIngestWebhookDuplicateSkipsState(t *testing.T) {
	store := newStubStore()
	svc := &stubPaymentService{
		result: paymentdomain.WebhookResult{Handled: true, OrderNumber: "ORD-1"},
		event: &paymentdomain.PaymentEvent{
			Provider:        "stripe",
			ProviderEventID: "evt_dup",
			Category:        paymentdomain.CategoryPaymentSucceeded,
		},
	}
	_, engine := newTestServer(svc, store)

	postJSON(engine, "/api/webhooks/stripe", []byte(`{}`))
	delete(store.states, "ORD-1")

	w := postJSON(engine, "/api/webhooks/stripe", []byte(`{}`))
	if w.Code != http.StatusOK {
		t.Fatalf("expected 200 for duplicate, got %d", w.Code)
	}
	if _, ok := store.states["ORD-1"]; ok {
		t.Fatalf("expected duplicate delivery to skip the transition")
	}
}

func TestIngestWebhookHandledWithoutOrderNumber(t *testing.T) {
	store := newStubStore()
	svc := &stubPaymentService{
		result: paymentdomain.WebhookResult{Handled: true},
		event:  &paymentdomain.PaymentEvent{Provider: "stripe", Category: paymentdomain.CategoryChargeRefunded},
	}
	_, engine := newTestServer(svc, store)

	w := postJSON(engine, "/api/webhooks/stripe", []byte(`{}`))
	if w.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", w.Code)
	}
	if len(store.states) != 0 || len(store.seen) != 0 {
		t.Fatalf("expected no store writes for uncorrelated event")
	}
}

func TestIngestWebhookStoreFailure(t *testing.T) {
	store := newStubStore()
	store.recordErr = errors.New("db down")
	svc := &stubPaymentService{
		result: paymentdomain.WebhookResult{Handled: true, OrderNumber: "ORD-1"},
		event:  &paymentdomain.PaymentEvent{Provider: "stripe", ProviderEventID: "evt_1", Category: paymentdomain.CategoryPaymentSucceeded},
	}
	_, engine := newTestServer(svc, store)

	w := postJSON(engine, "/api/webhooks/stripe", []byte(`{}`))
	if w.Code != http.StatusInternalServerError {
		t.Fatalf("expected 500 so the provider retries, got %d", w.Code)
	}
}

func TestCreateCheckout(t *testing.T) {
	store := newStubStore()
	svc := &stubPaymentService{
		session: &paymentdomain.CheckoutSession{RedirectURL: "https://pay.example/cs_1", SessionID: "cs_1"},
	}
	_, engine := newTestServer(svc, store)

	body := []byte(`{"order_number":"ORD-1001","amount_minor":1299,"currency":"GBP","success_url":"https://example.com/s","cancel_url":"https://example.com/c"}`)
	w := postJSON(engine, "/api/checkout", body)
	if w.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", w.Code, w.Body.String())
	}

	var resp map[string]any
	if err := json.Unmarshal(w.Body.Bytes(), &resp); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	if resp["redirect_url"] != "https://pay.example/cs_1" || resp["session_id"] != "cs_1" {
		t.Fatalf("unexpected response %v", resp)
	}
	if store.states["ORD-1001"] != paymentdomain.StatePending {
		t.Fatalf("expected pending state recorded, got %q", store.states["ORD-1001"])
	}
}

func TestCreateCheckoutProviderFailure(t *testing.T) {
	svc := &stubPaymentService{err: errors.New("stripe_down")}
	_, engine := newTestServer(svc, newStubStore())

	body := []byte(`{"order_number":"ORD-1","amount_minor":100,"currency":"USD","success_url":"https://e/s","cancel_url":"https://e/c"}`)
	w := postJSON(engine, "/api/checkout", body)
	if w.Code != http.StatusBadGateway {
		t.Fatalf("expected 502, got %d", w.Code)
	}
}

func TestCreateCheckoutRejectsMissingOrderNumber(t *testing.T) {
	_, engine := newTestServer(&stubPaymentService{}, newStubStore())

	w := postJSON(engine, "/api/checkout", []byte(`{"amount_minor":100}`))
	if w.Code != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d", w.Code)
	}
}

func TestGetOrderPayment(t *testing.T) {
	store := newStubStore()
	ref := "cs_1"
	_ = store.SetPaymentState(context.Background(), "ORD-1", paymentdomain.StateSucceeded, &ref)
	_, engine := newTestServer(&stubPaymentService{}, store)

	req := httptest.NewRequest(http.MethodGet, "/api/orders/ORD-1/payment", nil)
	w := httptest.NewRecorder()
	engine.ServeHTTP(w, req)
	if w.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", w.Code)
	}

	req = httptest.NewRequest(http.MethodGet, "/api/orders/ORD-missing/payment", nil)
	w = httptest.NewRecorder()
	engine.ServeHTTP(w, req)
	if w.Code != http.StatusNotFound {
		t.Fatalf("expected 404, got %d", w.Code)
	}
}

func TestStateForEventRefunds(t *testing.T) {
	partial := &paymentdomain.PaymentEvent{Category: paymentdomain.CategoryChargeRefunded, Amount: 1299, AmountRefunded: 500}
	if got := stateForEvent(partial); got != paymentdomain.StatePartiallyRefunded {
		t.Fatalf("expected partially_refunded, got %q", got)
	}
	full := &paymentdomain.PaymentEvent{Category: paymentdomain.CategoryChargeRefunded, Amount: 1299, AmountRefunded: 1299}
	if got := stateForEvent(full); got != paymentdomain.StateRefunded {
		t.Fatalf("expected refunded, got %q", got)
	}
}

func TestRateLimiter(t *testing.T) {
	limiter := newRateLimiter(2, time.Minute)
	if !limiter.Allow("ip") || !limiter.Allow("ip") {
		t.Fatalf("expected first two calls to pass")
	}
	if limiter.Allow("ip") {
		t.Fatalf("expected third call to be limited")
	}
	if !limiter.Allow("other") {
		t.Fatalf("expected separate key to pass")
	}
	if limiter.Allow("") {
		t.Fatalf("expected empty key to be rejected")
	}
}

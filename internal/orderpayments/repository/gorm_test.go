package repository

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/bwmarrin/snowflake"
	"github.com/smallbiznis/paylink/internal/clock"
	"github.com/smallbiznis/paylink/internal/orderpayments/domain"
	paymentdomain "github.com/smallbiznis/paylink/internal/payment/domain"
	"gorm.io/datatypes"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
)

func setupStore(t *testing.T) *Store {
	t.Helper()
	db, err := gorm.Open(sqlite.Open("file::memory:"), &gorm.Config{})
	if err != nil {
		t.Fatalf("open sqlite: %v", err)
	}
	if err := db.AutoMigrate(&domain.OrderPayment{}, &domain.WebhookEventRecord{}); err != nil {
		t.Fatalf("migrate: %v", err)
	}
	node, err := snowflake.NewNode(1)
	if err != nil {
		t.Fatalf("new snowflake node: %v", err)
	}
	return &Store{
		db:    db,
		genID: node,
		clock: &clock.Fixed{Instant: time.Unix(1_700_000_000, 0).UTC()},
	}
}

func TestSetPaymentStateInsertsThenUpdates(t *testing.T) {
	store := setupStore(t)
	ctx := context.Background()

	if err := store.SetPaymentState(ctx, "ORD-1", paymentdomain.StatePending, nil); err != nil {
		t.Fatalf("insert: %v", err)
	}

	ref := "cs_123"
	if err := store.SetPaymentState(ctx, "ORD-1", paymentdomain.StateSucceeded, &ref); err != nil {
		t.Fatalf("update: %v", err)
	}

	payment, err := store.GetPayment(ctx, "ORD-1")
	if err != nil {
		t.Fatalf("get payment: %v", err)
	}
	if payment.State != string(paymentdomain.StateSucceeded) {
		t.Fatalf("expected succeeded, got %q", payment.State)
	}
	if payment.ProviderRef == nil || *payment.ProviderRef != "cs_123" {
		t.Fatalf("expected provider ref cs_123, got %v", payment.ProviderRef)
	}
}

func TestSetPaymentStateKeepsProviderRefWhenNil(t *testing.T) {
	store := setupStore(t)
	ctx := context.Background()

	ref := "cs_123"
	if err := store.SetPaymentState(ctx, "ORD-2", paymentdomain.StateProcessing, &ref); err != nil {
		t.Fatalf("insert: %v", err)
	}
	if err := store.SetPaymentState(ctx, "ORD-2", paymentdomain.StateFailed, nil); err != nil {
		t.Fatalf("update: %v", err)
	}

	payment, err := store.GetPayment(ctx, "ORD-2")
	if err != nil {
		t.Fatalf("get payment: %v", err)
	}
	if payment.ProviderRef == nil || *payment.ProviderRef != "cs_123" {
		t.Fatalf("expected provider ref preserved, got %v", payment.ProviderRef)
	}
}

func TestSetPaymentStateRejectsBlankOrderNumber(t *testing.T) {
	store := setupStore(t)

	err := store.SetPaymentState(context.Background(), "  ", paymentdomain.StatePending, nil)
	if !errors.Is(err, domain.ErrInvalidOrderNumber) {
		t.Fatalf("expected ErrInvalidOrderNumber, got %v", err)
	}
}

func TestRecordEventDetectsDuplicates(t *testing.T) {
	store := setupStore(t)
	ctx := context.Background()

	record := func() *domain.WebhookEventRecord {
		return &domain.WebhookEventRecord{
			Provider:        "stripe",
			ProviderEventID: "evt_1",
			EventType:       "checkout.completed",
			OrderNumber:     "ORD-1",
			Payload:         datatypes.JSON([]byte(`{"id":"evt_1"}`)),
		}
	}

	inserted, err := store.RecordEvent(ctx, record())
	if err != nil || !inserted {
		t.Fatalf("expected first insert, got inserted=%v err=%v", inserted, err)
	}

	inserted, err = store.RecordEvent(ctx, record())
	if err != nil {
		t.Fatalf("duplicate insert: %v", err)
	}
	if inserted {
		t.Fatalf("expected duplicate to be skipped")
	}
}

func TestGetPaymentNotFound(t *testing.T) {
	store := setupStore(t)

	if _, err := store.GetPayment(context.Background(), "ORD-missing"); !errors.Is(err, domain.ErrPaymentNotFound) {
		t.Fatalf("expected ErrPaymentNotFound, got %v", err)
	}
}

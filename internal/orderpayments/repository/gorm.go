package repository

import (
	"context"
	"errors"
	"strings"

	"github.com/bwmarrin/snowflake"
	"github.com/smallbiznis/paylink/internal/clock"
	"github.com/smallbiznis/paylink/internal/orderpayments/domain"
	paymentdomain "github.com/smallbiznis/paylink/internal/payment/domain"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type Store struct {
	db    *gorm.DB
	genID *snowflake.Node
	clock clock.Clock
}

func New(db *gorm.DB, genID *snowflake.Node, clk clock.Clock) domain.Store {
	return &Store{db: db, genID: genID, clock: clk}
}

// SetPaymentState upserts the payment row for the order, keyed by order
// number. The provider reference is only overwritten when the caller supplies
// one.
func (s *Store) SetPaymentState(ctx context.Context, orderNumber string, state paymentdomain.PaymentState, providerRef *string) error {
	orderNumber = strings.TrimSpace(orderNumber)
	if orderNumber == "" {
		return domain.ErrInvalidOrderNumber
	}

	now := s.clock.Now()
	record := domain.OrderPayment{
		ID:          s.genID.Generate(),
		OrderNumber: orderNumber,
		State:       string(state),
		ProviderRef: providerRef,
		CreatedAt:   now,
		UpdatedAt:   now,
	}

	assignments := map[string]any{
		"state":      string(state),
		"updated_at": now,
	}
	if providerRef != nil {
		assignments["provider_ref"] = *providerRef
	}

	return s.db.WithContext(ctx).
		Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "order_number"}},
			DoUpdates: clause.Assignments(assignments),
		}).
		Create(&record).Error
}

// RecordEvent inserts a webhook delivery record. It reports false without
// error when the (provider, provider_event_id) pair was already stored, so
// the caller can skip re-applying a repeated delivery.
func (s *Store) RecordEvent(ctx context.Context, record *domain.WebhookEventRecord) (bool, error) {
	if record == nil {
		return false, errors.New("record_required")
	}
	if record.ID == 0 {
		record.ID = s.genID.Generate()
	}
	if record.ReceivedAt.IsZero() {
		record.ReceivedAt = s.clock.Now()
	}

	result := s.db.WithContext(ctx).
		Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "provider"}, {Name: "provider_event_id"}},
			DoNothing: true,
		}).
		Create(record)
	if result.Error != nil {
		return false, result.Error
	}
	return result.RowsAffected > 0, nil
}

func (s *Store) GetPayment(ctx context.Context, orderNumber string) (*domain.OrderPayment, error) {
	orderNumber = strings.TrimSpace(orderNumber)
	if orderNumber == "" {
		return nil, domain.ErrInvalidOrderNumber
	}

	var record domain.OrderPayment
	err := s.db.WithContext(ctx).
		Where("order_number = ?", orderNumber).
		First(&record).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, domain.ErrPaymentNotFound
	}
	if err != nil {
		return nil, err
	}
	return &record, nil
}

package domain

import (
	"time"

	"github.com/bwmarrin/snowflake"
	"gorm.io/datatypes"
)

// OrderPayment tracks the host-side payment state for one order. The order
// number is the merchant key; the provider reference is the opaque session or
// event identifier last seen for it.
type OrderPayment struct {
	ID          snowflake.ID `gorm:"primaryKey"`
	OrderNumber string       `gorm:"type:text;not null;uniqueIndex"`
	State       string       `gorm:"type:text;not null"`
	ProviderRef *string      `gorm:"type:text"`
	CreatedAt   time.Time    `gorm:"not null"`
	UpdatedAt   time.Time    `gorm:"not null"`
}

func (OrderPayment) TableName() string { return "order_payments" }

// WebhookEventRecord stores each handled webhook delivery with its raw
// payload. The (provider, provider_event_id) pair is unique so repeated
// deliveries of the same event are detected by the host, not the core.
type WebhookEventRecord struct {
	ID              snowflake.ID   `gorm:"primaryKey"`
	Provider        string         `gorm:"type:text;not null;uniqueIndex:idx_provider_event"`
	ProviderEventID string         `gorm:"type:text;not null;uniqueIndex:idx_provider_event"`
	EventType       string         `gorm:"type:text;not null"`
	OrderNumber     string         `gorm:"type:text;index"`
	Payload         datatypes.JSON `gorm:"type:jsonb"`
	ReceivedAt      time.Time      `gorm:"not null"`
}

func (WebhookEventRecord) TableName() string { return "payment_webhook_events" }

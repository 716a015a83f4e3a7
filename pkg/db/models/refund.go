package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/anvitsharma/trendora-backend/pkg/enums"
)

// Refund is one row of the append-only refund ledger. Rows are inserted by
// the lifecycle state machine and advanced by the external reconciliation
// worker; they are never updated by this service and never deleted.
type Refund struct {
	ID           uuid.UUID           `gorm:"column:id;type:uuid;default:gen_random_uuid();primaryKey"`
	OrderID      uuid.UUID           `gorm:"column:order_id;type:uuid;not null"`
	OrderItemID  uuid.UUID           `gorm:"column:order_item_id;type:uuid;not null"`
	RefundAmount decimal.Decimal     `gorm:"column:refund_amount;type:numeric(12,2);not null"`
	RefundStatus enums.RefundStatus  `gorm:"column:refund_status;type:text;not null;default:'initiated'"`
	RefundMethod enums.PaymentMethod `gorm:"column:refund_method;type:text;not null"`
	RefundReason string              `gorm:"column:refund_reason;not null"`
	CreatedAt    time.Time           `gorm:"column:created_at;autoCreateTime"`
}

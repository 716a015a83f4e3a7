package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/anvitsharma/trendora-backend/pkg/enums"
)

// OrderItem is one purchased line. Created at checkout with status pending,
// mutated only through the lifecycle state machine, never deleted.
type OrderItem struct {
	ID        uuid.UUID       `gorm:"column:id;type:uuid;default:gen_random_uuid();primaryKey"`
	OrderID   uuid.UUID       `gorm:"column:order_id;type:uuid;not null"`
	ProductID uuid.UUID       `gorm:"column:product_id;type:uuid;not null"`
	Name      string          `gorm:"column:name;not null"`
	Size      *string         `gorm:"column:size"`
	Thumbnail *string         `gorm:"column:thumbnail"`
	Quantity  int             `gorm:"column:quantity;not null"`
	UnitPrice decimal.Decimal `gorm:"column:unit_price;type:numeric(12,2);not null"`

	Status enums.ItemStatus `gorm:"column:item_status;type:text;not null;default:'pending'"`

	CancelReason      *string          `gorm:"column:cancel_reason"`
	ReturnReason      *string          `gorm:"column:return_reason"`
	ReturnRequestedAt *time.Time       `gorm:"column:return_requested_at"`
	ReturnApprovedAt  *time.Time       `gorm:"column:return_approved_at"`
	ShippedAt         *time.Time       `gorm:"column:shipped_at"`
	DeliveredAt       *time.Time       `gorm:"column:delivered_at"`
	RefundedAt        *time.Time       `gorm:"column:refunded_at"`
	RefundAmount      *decimal.Decimal `gorm:"column:refund_amount;type:numeric(12,2)"`

	CreatedAt time.Time `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt time.Time `gorm:"column:updated_at;autoUpdateTime"`
}

// LineTotal returns quantity times the unit price captured at purchase.
func (i *OrderItem) LineTotal() decimal.Decimal {
	return i.UnitPrice.Mul(decimal.NewFromInt(int64(i.Quantity)))
}

// RefundableAmount is the stored refund amount when present, else the line
// total.
func (i *OrderItem) RefundableAmount() decimal.Decimal {
	if i.RefundAmount != nil && !i.RefundAmount.IsZero() {
		return *i.RefundAmount
	}
	return i.LineTotal()
}

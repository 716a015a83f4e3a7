package outbox

import (
	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/anvitsharma/trendora-backend/pkg/enums"
)

// ItemStatusChangedEvent is the data payload for order.item_status_changed.
type ItemStatusChangedEvent struct {
	OrderID     uuid.UUID             `json:"orderId"`
	OrderItemID uuid.UUID             `json:"orderItemId"`
	Action      enums.LifecycleAction `json:"action"`
	FromStatus  enums.ItemStatus      `json:"fromStatus"`
	ToStatus    enums.ItemStatus      `json:"toStatus"`
}

// RefundInitiatedEvent is the data payload for refund.initiated, consumed by
// the external reconciliation worker.
type RefundInitiatedEvent struct {
	RefundID     uuid.UUID           `json:"refundId"`
	OrderID      uuid.UUID           `json:"orderId"`
	OrderItemID  uuid.UUID           `json:"orderItemId"`
	RefundAmount decimal.Decimal     `json:"refundAmount"`
	RefundMethod enums.PaymentMethod `json:"refundMethod"`
	RefundReason string              `json:"refundReason"`
}

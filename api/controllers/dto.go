package controllers

import (
	"time"

	"github.com/shopspring/decimal"

	"github.com/anvitsharma/trendora-backend/pkg/db/models"
	"github.com/anvitsharma/trendora-backend/pkg/enums"
)

// ItemActionRequest is the lifecycle endpoint's body. Action and item id are
// validated together so a request missing both gets one combined error.
type ItemActionRequest struct {
	Action         string `json:"action" validate:"required"`
	OrderItemID    string `json:"order_item_id" validate:"required,uuid"`
	Reason         string `json:"reason,omitempty" validate:"omitempty,max=500"`
	GuestSessionID string `json:"guest_session_id,omitempty" validate:"omitempty,max=128"`
}

// ItemActionResponse mirrors the committed post-transition state.
type ItemActionResponse struct {
	Success            bool       `json:"success"`
	Item               *ItemView  `json:"item"`
	Order              *OrderView `json:"order"`
	OrderStatusWarning string     `json:"order_status_warning,omitempty"`
}

// RecomputeResponse is the out-of-band aggregate repair result.
type RecomputeResponse struct {
	Success   bool   `json:"success"`
	OrderID   string `json:"order_id"`
	NewStatus string `json:"new_status"`
	Message   string `json:"message"`
}

// OrderListResponse is one tracking page.
type OrderListResponse struct {
	Orders     []OrderView `json:"orders"`
	NextCursor string      `json:"next_cursor,omitempty"`
}

type ItemView struct {
	ID                string           `json:"id"`
	OrderID           string           `json:"order_id"`
	ProductID         string           `json:"product_id"`
	Name              string           `json:"name"`
	Size              *string          `json:"size,omitempty"`
	Thumbnail         *string          `json:"thumbnail,omitempty"`
	Quantity          int              `json:"quantity"`
	UnitPrice         decimal.Decimal  `json:"unit_price"`
	Status            enums.ItemStatus `json:"item_status"`
	CancelReason      *string          `json:"cancel_reason,omitempty"`
	ReturnReason      *string          `json:"return_reason,omitempty"`
	ReturnRequestedAt *time.Time       `json:"return_requested_at,omitempty"`
	ReturnApprovedAt  *time.Time       `json:"return_approved_at,omitempty"`
	ShippedAt         *time.Time       `json:"shipped_at,omitempty"`
	DeliveredAt       *time.Time       `json:"delivered_at,omitempty"`
	RefundedAt        *time.Time       `json:"refunded_at,omitempty"`
	RefundAmount      *decimal.Decimal `json:"refund_amount,omitempty"`
	CreatedAt         time.Time        `json:"created_at"`
	UpdatedAt         time.Time        `json:"updated_at"`
}

type OrderView struct {
	ID            string              `json:"id"`
	UserID        *string             `json:"user_id,omitempty"`
	PaymentMethod enums.PaymentMethod `json:"payment_method"`
	PaymentStatus enums.PaymentStatus `json:"payment_status"`
	Status        enums.OrderStatus   `json:"status"`
	TotalAmount   decimal.Decimal     `json:"total_amount"`
	ShippingName  string              `json:"shipping_name"`
	ShippingPhone *string             `json:"shipping_phone,omitempty"`
	DeliveredAt   *time.Time          `json:"delivered_at,omitempty"`
	Items         []ItemView          `json:"items,omitempty"`
	CreatedAt     time.Time           `json:"created_at"`
	UpdatedAt     time.Time           `json:"updated_at"`
}

func newItemView(item *models.OrderItem) *ItemView {
	if item == nil {
		return nil
	}
	return &ItemView{
		ID:                item.ID.String(),
		OrderID:           item.OrderID.String(),
		ProductID:         item.ProductID.String(),
		Name:              item.Name,
		Size:              item.Size,
		Thumbnail:         item.Thumbnail,
		Quantity:          item.Quantity,
		UnitPrice:         item.UnitPrice,
		Status:            item.Status,
		CancelReason:      item.CancelReason,
		ReturnReason:      item.ReturnReason,
		ReturnRequestedAt: item.ReturnRequestedAt,
		ReturnApprovedAt:  item.ReturnApprovedAt,
		ShippedAt:         item.ShippedAt,
		DeliveredAt:       item.DeliveredAt,
		RefundedAt:        item.RefundedAt,
		RefundAmount:      item.RefundAmount,
		CreatedAt:         item.CreatedAt,
		UpdatedAt:         item.UpdatedAt,
	}
}

func newOrderView(order *models.Order) *OrderView {
	if order == nil {
		return nil
	}
	view := &OrderView{
		ID:            order.ID.String(),
		PaymentMethod: order.PaymentMethod,
		PaymentStatus: order.PaymentStatus,
		Status:        order.Status,
		TotalAmount:   order.TotalAmount,
		ShippingName:  order.ShippingName,
		ShippingPhone: order.ShippingPhone,
		DeliveredAt:   order.DeliveredAt,
		CreatedAt:     order.CreatedAt,
		UpdatedAt:     order.UpdatedAt,
	}
	if order.UserID != nil {
		id := order.UserID.String()
		view.UserID = &id
	}
	for i := range order.Items {
		view.Items = append(view.Items, *newItemView(&order.Items[i]))
	}
	return view
}

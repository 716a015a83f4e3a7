package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/anvitsharma/trendora-backend/pkg/enums"
)

// Order groups the purchased items of one checkout. Exactly one of UserID and
// GuestSessionID is set; Status is a derived projection owned by the
// aggregator and is never accepted from clients.
type Order struct {
	ID             uuid.UUID           `gorm:"column:id;type:uuid;default:gen_random_uuid();primaryKey"`
	UserID         *uuid.UUID          `gorm:"column:user_id;type:uuid"`
	GuestSessionID *string             `gorm:"column:guest_session_id;type:text"`
	PaymentMethod  enums.PaymentMethod `gorm:"column:payment_method;type:text;not null"`
	PaymentStatus  enums.PaymentStatus `gorm:"column:payment_status;type:text;not null;default:'pending'"`
	Status         enums.OrderStatus   `gorm:"column:status;type:text;not null;default:'pending'"`
	TotalAmount    decimal.Decimal     `gorm:"column:total_amount;type:numeric(12,2);not null"`
	ShippingName   string              `gorm:"column:shipping_name;not null"`
	ShippingPhone  *string             `gorm:"column:shipping_phone"`
	DeliveredAt    *time.Time          `gorm:"column:delivered_at"`
	Items          []OrderItem         `gorm:"foreignKey:OrderID;constraint:OnDelete:CASCADE"`
	CreatedAt      time.Time           `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt      time.Time           `gorm:"column:updated_at;autoUpdateTime"`
}

// OwnedBy reports whether the resolved user owns this order.
func (o *Order) OwnedBy(userID uuid.UUID) bool {
	return o.UserID != nil && *o.UserID == userID
}

// MatchesGuestSession reports whether the supplied guest session id matches
// the one stored at checkout. Exact string equality, no partial matching.
func (o *Order) MatchesGuestSession(sessionID string) bool {
	return sessionID != "" && o.GuestSessionID != nil && *o.GuestSessionID == sessionID
}

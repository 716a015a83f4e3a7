package enums

import "fmt"

// OrderStatus is the aggregate label derived from the order's item statuses.
// It is a projection written only by the aggregator.
type OrderStatus string

const (
	OrderStatusPending            OrderStatus = "pending"
	OrderStatusShipped            OrderStatus = "shipped"
	OrderStatusDelivered          OrderStatus = "delivered"
	OrderStatusCancelled          OrderStatus = "cancelled"
	OrderStatusPartiallyShipped   OrderStatus = "partially_shipped"
	OrderStatusPartiallyDelivered OrderStatus = "partially_delivered"
	OrderStatusPartiallyCancelled OrderStatus = "partially_cancelled"
	OrderStatusPartiallyRefunded  OrderStatus = "partially_refunded"
	// OrderStatusMixed is the catch-all for item combinations the precedence
	// rules do not enumerate. Hitting it is logged for review.
	OrderStatusMixed OrderStatus = "mixed"
)

var validOrderStatuses = []OrderStatus{
	OrderStatusPending,
	OrderStatusShipped,
	OrderStatusDelivered,
	OrderStatusCancelled,
	OrderStatusPartiallyShipped,
	OrderStatusPartiallyDelivered,
	OrderStatusPartiallyCancelled,
	OrderStatusPartiallyRefunded,
	OrderStatusMixed,
}

// String implements fmt.Stringer.
func (s OrderStatus) String() string {
	return string(s)
}

// IsValid reports whether the value is a known OrderStatus.
func (s OrderStatus) IsValid() bool {
	for _, candidate := range validOrderStatuses {
		if candidate == s {
			return true
		}
	}
	return false
}

// ParseOrderStatus converts raw input into an OrderStatus.
func ParseOrderStatus(value string) (OrderStatus, error) {
	for _, candidate := range validOrderStatuses {
		if string(candidate) == value {
			return candidate, nil
		}
	}
	return "", fmt.Errorf("invalid order status %q", value)
}

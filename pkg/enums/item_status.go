package enums

import "fmt"

// ItemStatus is the lifecycle state of a single purchased line. It is mutated
// only by the lifecycle state machine, never written directly by clients.
type ItemStatus string

const (
	ItemStatusPending   ItemStatus = "pending"
	ItemStatusShipped   ItemStatus = "shipped"
	ItemStatusDelivered ItemStatus = "delivered"
	ItemStatusCancelled ItemStatus = "cancelled"
	ItemStatusReturned  ItemStatus = "returned"
	ItemStatusRefunded  ItemStatus = "refunded"
)

var validItemStatuses = []ItemStatus{
	ItemStatusPending,
	ItemStatusShipped,
	ItemStatusDelivered,
	ItemStatusCancelled,
	ItemStatusReturned,
	ItemStatusRefunded,
}

// String implements fmt.Stringer.
func (s ItemStatus) String() string {
	return string(s)
}

// IsValid reports whether the value is a known ItemStatus.
func (s ItemStatus) IsValid() bool {
	for _, candidate := range validItemStatuses {
		if candidate == s {
			return true
		}
	}
	return false
}

// IsTerminal reports whether no further transition can leave this status.
// Returned is not terminal: it still advances to refunded on approval.
func (s ItemStatus) IsTerminal() bool {
	return s == ItemStatusCancelled || s == ItemStatusRefunded
}

// ParseItemStatus converts raw input into an ItemStatus.
func ParseItemStatus(value string) (ItemStatus, error) {
	for _, candidate := range validItemStatuses {
		if string(candidate) == value {
			return candidate, nil
		}
	}
	return "", fmt.Errorf("invalid item status %q", value)
}

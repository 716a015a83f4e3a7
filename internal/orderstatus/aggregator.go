package orderstatus

import (
	"github.com/anvitsharma/trendora-backend/pkg/enums"
)

// Compute derives the order-level label from the multiset of sibling item
// statuses. First matching rule wins; the order of the rules is load-bearing.
// Mixed is a defined placeholder for combinations the rules do not enumerate
// (e.g. delivered+cancelled+returned), not a deliberate target — callers
// record when it is hit.
func Compute(statuses []enums.ItemStatus) enums.OrderStatus {
	if len(statuses) == 0 {
		return enums.OrderStatusPending
	}

	var counts struct {
		pending   int
		shipped   int
		delivered int
		cancelled int
		returned  int
		refunded  int
	}
	for _, status := range statuses {
		switch status {
		case enums.ItemStatusPending:
			counts.pending++
		case enums.ItemStatusShipped:
			counts.shipped++
		case enums.ItemStatusDelivered:
			counts.delivered++
		case enums.ItemStatusCancelled:
			counts.cancelled++
		case enums.ItemStatusReturned:
			counts.returned++
		case enums.ItemStatusRefunded:
			counts.refunded++
		}
	}

	total := len(statuses)
	switch {
	case counts.cancelled == total:
		return enums.OrderStatusCancelled
	case counts.pending == total:
		return enums.OrderStatusPending
	case counts.shipped == total:
		return enums.OrderStatusShipped
	case counts.delivered == total:
		return enums.OrderStatusDelivered
	case counts.delivered > 0 && (counts.shipped > 0 || counts.pending > 0):
		return enums.OrderStatusPartiallyDelivered
	case counts.shipped > 0 && counts.pending > 0:
		return enums.OrderStatusPartiallyShipped
	case counts.cancelled > 0 && counts.pending > 0:
		return enums.OrderStatusPartiallyCancelled
	case counts.refunded > 0:
		return enums.OrderStatusPartiallyRefunded
	default:
		return enums.OrderStatusMixed
	}
}

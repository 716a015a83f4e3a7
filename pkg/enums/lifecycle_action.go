package enums

import "fmt"

// LifecycleAction names a single item status transition request. The set is
// closed: anything outside it is rejected at the boundary, there is no
// default branch.
type LifecycleAction string

const (
	ActionCancelItem    LifecycleAction = "cancel_item"
	ActionShipItem      LifecycleAction = "ship_item"
	ActionDeliverItem   LifecycleAction = "deliver_item"
	ActionRequestReturn LifecycleAction = "request_return"
	ActionApproveReturn LifecycleAction = "approve_return"
	ActionRefundItem    LifecycleAction = "refund_item"
)

var validLifecycleActions = []LifecycleAction{
	ActionCancelItem,
	ActionShipItem,
	ActionDeliverItem,
	ActionRequestReturn,
	ActionApproveReturn,
	ActionRefundItem,
}

// String implements fmt.Stringer.
func (a LifecycleAction) String() string {
	return string(a)
}

// IsValid reports whether the value is a known LifecycleAction.
func (a LifecycleAction) IsValid() bool {
	for _, candidate := range validLifecycleActions {
		if candidate == a {
			return true
		}
	}
	return false
}

// AdminOnly reports whether the action is reserved for administrators.
func (a LifecycleAction) AdminOnly() bool {
	switch a {
	case ActionShipItem, ActionDeliverItem, ActionApproveReturn, ActionRefundItem:
		return true
	default:
		return false
	}
}

// ParseLifecycleAction converts raw input into a LifecycleAction.
func ParseLifecycleAction(value string) (LifecycleAction, error) {
	for _, candidate := range validLifecycleActions {
		if string(candidate) == value {
			return candidate, nil
		}
	}
	return "", fmt.Errorf("unsupported action %q", value)
}

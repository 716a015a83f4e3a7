package lifecycle

import (
	"github.com/google/uuid"

	"github.com/anvitsharma/trendora-backend/internal/authz"
	"github.com/anvitsharma/trendora-backend/pkg/db/models"
	"github.com/anvitsharma/trendora-backend/pkg/enums"
)

// ApplyInput is one transition request against one order item.
type ApplyInput struct {
	Action      enums.LifecycleAction
	OrderItemID uuid.UUID
	Reason      string
	Caller      authz.Caller
}

// ApplyResult carries the committed item and order rows plus a soft warning
// when the post-commit aggregation failed.
type ApplyResult struct {
	Item               *models.OrderItem
	Order              *models.Order
	OrderStatusWarning string
}

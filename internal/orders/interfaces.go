package orders

import (
	"context"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/anvitsharma/trendora-backend/pkg/db/models"
	"github.com/anvitsharma/trendora-backend/pkg/enums"
	"github.com/anvitsharma/trendora-backend/pkg/pagination"
)

// Repository defines persistence operations for orders and their items.
type Repository interface {
	WithTx(tx *gorm.DB) Repository
	FindItem(ctx context.Context, itemID uuid.UUID) (*models.OrderItem, error)
	FindOrder(ctx context.Context, orderID uuid.UUID) (*models.Order, error)
	FindOrderWithItems(ctx context.Context, orderID uuid.UUID) (*models.Order, error)
	// UpdateItemStatusCAS applies updates only while the item still holds the
	// expected status and reports whether the swap won.
	UpdateItemStatusCAS(ctx context.Context, itemID uuid.UUID, expected enums.ItemStatus, updates map[string]any) (bool, error)
	ListItemStatuses(ctx context.Context, orderID uuid.UUID) ([]enums.ItemStatus, error)
	UpdateOrderStatus(ctx context.Context, orderID uuid.UUID, status enums.OrderStatus) error
	UpdateOrderDeliveredAt(ctx context.Context, orderID uuid.UUID, updates map[string]any) error
	ListOrdersForUser(ctx context.Context, userID uuid.UUID, params pagination.Params) (*OrderList, error)
	ListOrdersForGuest(ctx context.Context, guestSessionID string, params pagination.Params) (*OrderList, error)
}

package orders

import "github.com/anvitsharma/trendora-backend/pkg/db/models"

// OrderList is one page of tracking results plus the cursor for the next.
type OrderList struct {
	Orders     []models.Order
	NextCursor string
}

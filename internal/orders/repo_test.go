package orders

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"

	"github.com/anvitsharma/trendora-backend/pkg/db/models"
	"github.com/anvitsharma/trendora-backend/pkg/enums"
	"github.com/anvitsharma/trendora-backend/pkg/pagination"
)

func setupOrdersTestDB(t *testing.T) *gorm.DB {
	t.Helper()

	db, err := gorm.Open(sqlite.Open("file::memory:?cache=shared"), &gorm.Config{})
	require.NoError(t, err)

	orders := `
CREATE TABLE IF NOT EXISTS orders (
  id TEXT PRIMARY KEY,
  user_id TEXT,
  guest_session_id TEXT,
  payment_method TEXT NOT NULL,
  payment_status TEXT NOT NULL DEFAULT 'pending',
  status TEXT NOT NULL DEFAULT 'pending',
  total_amount NUMERIC NOT NULL,
  shipping_name TEXT NOT NULL,
  shipping_phone TEXT,
  delivered_at DATETIME,
  created_at DATETIME,
  updated_at DATETIME
);`
	orderItems := `
CREATE TABLE IF NOT EXISTS order_items (
  id TEXT PRIMARY KEY,
  order_id TEXT NOT NULL,
  product_id TEXT NOT NULL,
  name TEXT NOT NULL,
  size TEXT,
  thumbnail TEXT,
  quantity INTEGER NOT NULL,
  unit_price NUMERIC NOT NULL,
  item_status TEXT NOT NULL DEFAULT 'pending',
  cancel_reason TEXT,
  return_reason TEXT,
  return_requested_at DATETIME,
  return_approved_at DATETIME,
  shipped_at DATETIME,
  delivered_at DATETIME,
  refunded_at DATETIME,
  refund_amount NUMERIC,
  created_at DATETIME,
  updated_at DATETIME
);`
	require.NoError(t, db.Exec(orders).Error)
	require.NoError(t, db.Exec(orderItems).Error)
	return db
}

func seedOrder(t *testing.T, db *gorm.DB, mutate ...func(*models.Order)) *models.Order {
	t.Helper()

	userID := uuid.New()
	order := &models.Order{
		ID:            uuid.New(),
		UserID:        &userID,
		PaymentMethod: enums.PaymentMethodCOD,
		PaymentStatus: enums.PaymentStatusPending,
		Status:        enums.OrderStatusPending,
		TotalAmount:   decimal.NewFromInt(2499),
		ShippingName:  "Meera Pillai",
	}
	for _, fn := range mutate {
		fn(order)
	}
	require.NoError(t, db.Create(order).Error)
	return order
}

func seedItem(t *testing.T, db *gorm.DB, orderID uuid.UUID, status enums.ItemStatus, mutate ...func(*models.OrderItem)) *models.OrderItem {
	t.Helper()

	item := &models.OrderItem{
		ID:        uuid.New(),
		OrderID:   orderID,
		ProductID: uuid.New(),
		Name:      "Cotton Saree",
		Quantity:  1,
		UnitPrice: decimal.NewFromInt(2499),
		Status:    status,
	}
	for _, fn := range mutate {
		fn(item)
	}
	require.NoError(t, db.Create(item).Error)
	return item
}

func TestUpdateItemStatusCASWins(t *testing.T) {
	db := setupOrdersTestDB(t)
	repo := NewRepository(db)
	ctx := context.Background()

	order := seedOrder(t, db)
	item := seedItem(t, db, order.ID, enums.ItemStatusPending)

	now := time.Now().UTC()
	swapped, err := repo.UpdateItemStatusCAS(ctx, item.ID, enums.ItemStatusPending, map[string]any{
		"item_status": enums.ItemStatusShipped,
		"shipped_at":  now,
	})
	require.NoError(t, err)
	assert.True(t, swapped)

	reloaded, err := repo.FindItem(ctx, item.ID)
	require.NoError(t, err)
	assert.Equal(t, enums.ItemStatusShipped, reloaded.Status)
	require.NotNil(t, reloaded.ShippedAt)
}

func TestUpdateItemStatusCASLosesOnStaleStatus(t *testing.T) {
	db := setupOrdersTestDB(t)
	repo := NewRepository(db)
	ctx := context.Background()

	order := seedOrder(t, db)
	item := seedItem(t, db, order.ID, enums.ItemStatusShipped)

	swapped, err := repo.UpdateItemStatusCAS(ctx, item.ID, enums.ItemStatusPending, map[string]any{
		"item_status": enums.ItemStatusCancelled,
	})
	require.NoError(t, err)
	assert.False(t, swapped)

	reloaded, err := repo.FindItem(ctx, item.ID)
	require.NoError(t, err)
	assert.Equal(t, enums.ItemStatusShipped, reloaded.Status, "losing swap must not touch the row")
}

func TestListItemStatuses(t *testing.T) {
	db := setupOrdersTestDB(t)
	repo := NewRepository(db)
	ctx := context.Background()

	order := seedOrder(t, db)
	base := time.Now().UTC().Add(-time.Hour)
	seedItem(t, db, order.ID, enums.ItemStatusDelivered, func(i *models.OrderItem) { i.CreatedAt = base })
	seedItem(t, db, order.ID, enums.ItemStatusShipped, func(i *models.OrderItem) { i.CreatedAt = base.Add(time.Minute) })
	seedItem(t, db, order.ID, enums.ItemStatusPending, func(i *models.OrderItem) { i.CreatedAt = base.Add(2 * time.Minute) })

	// Sibling items of another order must not leak in.
	other := seedOrder(t, db)
	seedItem(t, db, other.ID, enums.ItemStatusCancelled)

	statuses, err := repo.ListItemStatuses(ctx, order.ID)
	require.NoError(t, err)
	assert.Equal(t, []enums.ItemStatus{
		enums.ItemStatusDelivered,
		enums.ItemStatusShipped,
		enums.ItemStatusPending,
	}, statuses)
}

func TestUpdateOrderStatus(t *testing.T) {
	db := setupOrdersTestDB(t)
	repo := NewRepository(db)
	ctx := context.Background()

	order := seedOrder(t, db)
	require.NoError(t, repo.UpdateOrderStatus(ctx, order.ID, enums.OrderStatusPartiallyShipped))

	reloaded, err := repo.FindOrder(ctx, order.ID)
	require.NoError(t, err)
	assert.Equal(t, enums.OrderStatusPartiallyShipped, reloaded.Status)
}

func TestFindOrderWithItems(t *testing.T) {
	db := setupOrdersTestDB(t)
	repo := NewRepository(db)
	ctx := context.Background()

	order := seedOrder(t, db)
	seedItem(t, db, order.ID, enums.ItemStatusPending)
	seedItem(t, db, order.ID, enums.ItemStatusShipped)

	loaded, err := repo.FindOrderWithItems(ctx, order.ID)
	require.NoError(t, err)
	assert.Len(t, loaded.Items, 2)
}

func TestListOrdersForUserPagination(t *testing.T) {
	db := setupOrdersTestDB(t)
	repo := NewRepository(db)
	ctx := context.Background()

	userID := uuid.New()
	base := time.Now().UTC().Add(-24 * time.Hour)
	var ids []uuid.UUID
	for i := 0; i < 3; i++ {
		order := seedOrder(t, db, func(o *models.Order) {
			o.UserID = &userID
			o.CreatedAt = base.Add(time.Duration(i) * time.Hour)
		})
		ids = append(ids, order.ID)
	}

	page, err := repo.ListOrdersForUser(ctx, userID, pagination.Params{Limit: 2})
	require.NoError(t, err)
	require.Len(t, page.Orders, 2)
	assert.Equal(t, ids[2], page.Orders[0].ID, "newest first")
	assert.Equal(t, ids[1], page.Orders[1].ID)
	require.NotEmpty(t, page.NextCursor)

	rest, err := repo.ListOrdersForUser(ctx, userID, pagination.Params{Limit: 2, Cursor: page.NextCursor})
	require.NoError(t, err)
	require.Len(t, rest.Orders, 1)
	assert.Equal(t, ids[0], rest.Orders[0].ID)
	assert.Empty(t, rest.NextCursor)
}

func TestListOrdersForGuest(t *testing.T) {
	db := setupOrdersTestDB(t)
	repo := NewRepository(db)
	ctx := context.Background()

	session := "gs_" + uuid.NewString()
	order := seedOrder(t, db, func(o *models.Order) {
		o.UserID = nil
		o.GuestSessionID = &session
	})
	seedOrder(t, db)

	page, err := repo.ListOrdersForGuest(ctx, session, pagination.Params{})
	require.NoError(t, err)
	require.Len(t, page.Orders, 1)
	assert.Equal(t, order.ID, page.Orders[0].ID)
}

func TestListOrdersRejectsMalformedCursor(t *testing.T) {
	db := setupOrdersTestDB(t)
	repo := NewRepository(db)

	_, err := repo.ListOrdersForUser(context.Background(), uuid.New(), pagination.Params{Cursor: "not-base64!"})
	require.Error(t, err)
}

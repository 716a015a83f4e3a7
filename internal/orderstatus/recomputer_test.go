package orderstatus

import (
	"context"
	"errors"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	ordersrepo "github.com/anvitsharma/trendora-backend/internal/orders"
	"github.com/anvitsharma/trendora-backend/pkg/db/models"
	"github.com/anvitsharma/trendora-backend/pkg/enums"
	"github.com/anvitsharma/trendora-backend/pkg/pagination"
)

type stubStatusRepo struct {
	itemStatuses []enums.ItemStatus
	listErr      error
	updateErr    error

	updatedOrderID uuid.UUID
	updatedStatus  enums.OrderStatus
}

func (s *stubStatusRepo) WithTx(tx *gorm.DB) ordersrepo.Repository { return s }

func (s *stubStatusRepo) ListItemStatuses(ctx context.Context, orderID uuid.UUID) ([]enums.ItemStatus, error) {
	if s.listErr != nil {
		return nil, s.listErr
	}
	return s.itemStatuses, nil
}

func (s *stubStatusRepo) UpdateOrderStatus(ctx context.Context, orderID uuid.UUID, status enums.OrderStatus) error {
	if s.updateErr != nil {
		return s.updateErr
	}
	s.updatedOrderID = orderID
	s.updatedStatus = status
	return nil
}

func (s *stubStatusRepo) FindItem(ctx context.Context, itemID uuid.UUID) (*models.OrderItem, error) {
	panic("not implemented")
}

func (s *stubStatusRepo) FindOrder(ctx context.Context, orderID uuid.UUID) (*models.Order, error) {
	panic("not implemented")
}

func (s *stubStatusRepo) FindOrderWithItems(ctx context.Context, orderID uuid.UUID) (*models.Order, error) {
	panic("not implemented")
}

func (s *stubStatusRepo) UpdateItemStatusCAS(ctx context.Context, itemID uuid.UUID, expected enums.ItemStatus, updates map[string]any) (bool, error) {
	panic("not implemented")
}

func (s *stubStatusRepo) UpdateOrderDeliveredAt(ctx context.Context, orderID uuid.UUID, updates map[string]any) error {
	panic("not implemented")
}

func (s *stubStatusRepo) ListOrdersForUser(ctx context.Context, userID uuid.UUID, params pagination.Params) (*ordersrepo.OrderList, error) {
	panic("not implemented")
}

func (s *stubStatusRepo) ListOrdersForGuest(ctx context.Context, guestSessionID string, params pagination.Params) (*ordersrepo.OrderList, error) {
	panic("not implemented")
}

func TestRecomputePersistsDerivedStatus(t *testing.T) {
	repo := &stubStatusRepo{itemStatuses: statuses("delivered", "shipped", "pending")}
	recomputer := NewRecomputer(repo, nil, nil)
	orderID := uuid.New()

	status, err := recomputer.Recompute(context.Background(), orderID)
	require.NoError(t, err)

	assert.Equal(t, enums.OrderStatusPartiallyDelivered, status)
	assert.Equal(t, orderID, repo.updatedOrderID)
	assert.Equal(t, enums.OrderStatusPartiallyDelivered, repo.updatedStatus)
}

func TestRecomputePersistsMixedFallback(t *testing.T) {
	repo := &stubStatusRepo{itemStatuses: statuses("delivered", "cancelled", "returned")}
	recomputer := NewRecomputer(repo, nil, nil)

	status, err := recomputer.Recompute(context.Background(), uuid.New())
	require.NoError(t, err)
	assert.Equal(t, enums.OrderStatusMixed, status)
	assert.Equal(t, enums.OrderStatusMixed, repo.updatedStatus)
}

func TestRecomputeSurfacesListFailure(t *testing.T) {
	repo := &stubStatusRepo{listErr: errors.New("connection reset")}
	recomputer := NewRecomputer(repo, nil, nil)

	_, err := recomputer.Recompute(context.Background(), uuid.New())
	require.Error(t, err)
	assert.Equal(t, uuid.Nil, repo.updatedOrderID)
}

func TestRecomputeSurfacesUpdateFailure(t *testing.T) {
	repo := &stubStatusRepo{
		itemStatuses: statuses("pending"),
		updateErr:    errors.New("write timeout"),
	}
	recomputer := NewRecomputer(repo, nil, nil)

	_, err := recomputer.Recompute(context.Background(), uuid.New())
	require.Error(t, err)
}

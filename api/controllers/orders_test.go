package controllers

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/anvitsharma/trendora-backend/api/middleware"
	"github.com/anvitsharma/trendora-backend/internal/authz"
	ordersrepo "github.com/anvitsharma/trendora-backend/internal/orders"
	"github.com/anvitsharma/trendora-backend/pkg/db/models"
	"github.com/anvitsharma/trendora-backend/pkg/enums"
	"github.com/anvitsharma/trendora-backend/pkg/pagination"
)

type stubOrdersRepository struct {
	listForUserFn  func(ctx context.Context, userID uuid.UUID, params pagination.Params) (*ordersrepo.OrderList, error)
	listForGuestFn func(ctx context.Context, guestSessionID string, params pagination.Params) (*ordersrepo.OrderList, error)
	findWithItems  func(ctx context.Context, orderID uuid.UUID) (*models.Order, error)
}

func (s stubOrdersRepository) WithTx(tx *gorm.DB) ordersrepo.Repository { return s }

func (s stubOrdersRepository) ListOrdersForUser(ctx context.Context, userID uuid.UUID, params pagination.Params) (*ordersrepo.OrderList, error) {
	if s.listForUserFn != nil {
		return s.listForUserFn(ctx, userID, params)
	}
	return &ordersrepo.OrderList{}, nil
}

func (s stubOrdersRepository) ListOrdersForGuest(ctx context.Context, guestSessionID string, params pagination.Params) (*ordersrepo.OrderList, error) {
	if s.listForGuestFn != nil {
		return s.listForGuestFn(ctx, guestSessionID, params)
	}
	return &ordersrepo.OrderList{}, nil
}

func (s stubOrdersRepository) FindOrderWithItems(ctx context.Context, orderID uuid.UUID) (*models.Order, error) {
	if s.findWithItems != nil {
		return s.findWithItems(ctx, orderID)
	}
	return nil, gorm.ErrRecordNotFound
}

func (s stubOrdersRepository) FindItem(ctx context.Context, itemID uuid.UUID) (*models.OrderItem, error) {
	panic("not implemented")
}

func (s stubOrdersRepository) FindOrder(ctx context.Context, orderID uuid.UUID) (*models.Order, error) {
	panic("not implemented")
}

func (s stubOrdersRepository) UpdateItemStatusCAS(ctx context.Context, itemID uuid.UUID, expected enums.ItemStatus, updates map[string]any) (bool, error) {
	panic("not implemented")
}

func (s stubOrdersRepository) ListItemStatuses(ctx context.Context, orderID uuid.UUID) ([]enums.ItemStatus, error) {
	panic("not implemented")
}

func (s stubOrdersRepository) UpdateOrderStatus(ctx context.Context, orderID uuid.UUID, status enums.OrderStatus) error {
	panic("not implemented")
}

func (s stubOrdersRepository) UpdateOrderDeliveredAt(ctx context.Context, orderID uuid.UUID, updates map[string]any) error {
	panic("not implemented")
}

func TestListOrdersForAuthenticatedUser(t *testing.T) {
	userID := uuid.New()
	orderID := uuid.New()

	repo := stubOrdersRepository{
		listForUserFn: func(ctx context.Context, id uuid.UUID, params pagination.Params) (*ordersrepo.OrderList, error) {
			if id != userID {
				t.Fatalf("unexpected user id %s", id)
			}
			if params.Limit != 10 {
				t.Fatalf("unexpected limit %d", params.Limit)
			}
			return &ordersrepo.OrderList{
				Orders:     []models.Order{{ID: orderID, Status: enums.OrderStatusShipped}},
				NextCursor: "abc",
			}, nil
		},
	}

	handler := ListOrders(repo, nil)
	req := httptest.NewRequest(http.MethodGet, "/?limit=10", nil)
	req = req.WithContext(middleware.WithUserID(req.Context(), userID.String()))
	resp := httptest.NewRecorder()
	handler.ServeHTTP(resp, req)

	if resp.Code != http.StatusOK {
		t.Fatalf("expected 200 got %d: %s", resp.Code, resp.Body.String())
	}

	var envelope struct {
		Data OrderListResponse `json:"data"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&envelope); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	if len(envelope.Data.Orders) != 1 || envelope.Data.Orders[0].ID != orderID.String() {
		t.Fatalf("unexpected payload %+v", envelope.Data)
	}
	if envelope.Data.NextCursor != "abc" {
		t.Fatalf("cursor not surfaced")
	}
}

func TestListOrdersForGuestSession(t *testing.T) {
	repo := stubOrdersRepository{
		listForGuestFn: func(ctx context.Context, session string, params pagination.Params) (*ordersrepo.OrderList, error) {
			if session != "gs_123" {
				t.Fatalf("unexpected session %q", session)
			}
			return &ordersrepo.OrderList{}, nil
		},
	}

	handler := ListOrders(repo, nil)
	req := httptest.NewRequest(http.MethodGet, "/?guest_session_id=gs_123", nil)
	resp := httptest.NewRecorder()
	handler.ServeHTTP(resp, req)

	if resp.Code != http.StatusOK {
		t.Fatalf("expected 200 got %d", resp.Code)
	}
}

func TestListOrdersAnonymousRejected(t *testing.T) {
	handler := ListOrders(stubOrdersRepository{}, nil)
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	resp := httptest.NewRecorder()
	handler.ServeHTTP(resp, req)

	if resp.Code != http.StatusUnauthorized {
		t.Fatalf("expected 401 got %d", resp.Code)
	}
}

func TestGetOrderVisibleToOwner(t *testing.T) {
	orderID := uuid.New()
	repo := stubOrdersRepository{
		findWithItems: func(ctx context.Context, id uuid.UUID) (*models.Order, error) {
			return &models.Order{ID: orderID, Status: enums.OrderStatusDelivered}, nil
		},
	}

	handler := GetOrder(repo, stubResolver{decision: authz.Decision{IsOwnerOrGuest: true}}, nil)
	req := withOrderID(httptest.NewRequest(http.MethodGet, "/", nil), orderID)
	resp := httptest.NewRecorder()
	handler.ServeHTTP(resp, req)

	if resp.Code != http.StatusOK {
		t.Fatalf("expected 200 got %d: %s", resp.Code, resp.Body.String())
	}
}

func TestGetOrderHiddenFromStrangers(t *testing.T) {
	repo := stubOrdersRepository{
		findWithItems: func(ctx context.Context, id uuid.UUID) (*models.Order, error) {
			return &models.Order{ID: id}, nil
		},
	}

	handler := GetOrder(repo, stubResolver{}, nil)
	req := withOrderID(httptest.NewRequest(http.MethodGet, "/", nil), uuid.New())
	resp := httptest.NewRecorder()
	handler.ServeHTTP(resp, req)

	if resp.Code != http.StatusForbidden {
		t.Fatalf("expected 403 got %d", resp.Code)
	}
}

func TestGetOrderNotFound(t *testing.T) {
	handler := GetOrder(stubOrdersRepository{}, stubResolver{}, nil)
	req := withOrderID(httptest.NewRequest(http.MethodGet, "/", nil), uuid.New())
	resp := httptest.NewRecorder()
	handler.ServeHTTP(resp, req)

	if resp.Code != http.StatusNotFound {
		t.Fatalf("expected 404 got %d", resp.Code)
	}
}

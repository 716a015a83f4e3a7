package controllers

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/anvitsharma/trendora-backend/api/middleware"
	"github.com/anvitsharma/trendora-backend/internal/authz"
	"github.com/anvitsharma/trendora-backend/pkg/db/models"
	"github.com/anvitsharma/trendora-backend/pkg/enums"
	pkgerrors "github.com/anvitsharma/trendora-backend/pkg/errors"
)

type stubResolver struct {
	decision authz.Decision
	err      error
}

func (s stubResolver) Resolve(ctx context.Context, caller authz.Caller, order *models.Order) (authz.Decision, error) {
	return s.decision, s.err
}

type stubFinder struct {
	order *models.Order
	err   error
}

func (s stubFinder) FindOrder(ctx context.Context, orderID uuid.UUID) (*models.Order, error) {
	if s.err != nil {
		return nil, s.err
	}
	return s.order, nil
}

func (s stubFinder) FindOrderWithItems(ctx context.Context, orderID uuid.UUID) (*models.Order, error) {
	if s.err != nil {
		return nil, s.err
	}
	return s.order, nil
}

type stubStatusRecomputer struct {
	status enums.OrderStatus
	err    error
	calls  int
}

func (s *stubStatusRecomputer) Recompute(ctx context.Context, orderID uuid.UUID) (enums.OrderStatus, error) {
	s.calls++
	return s.status, s.err
}

func withOrderID(req *http.Request, orderID uuid.UUID) *http.Request {
	routeCtx := chi.NewRouteContext()
	routeCtx.URLParams.Add("orderId", orderID.String())
	return req.WithContext(context.WithValue(req.Context(), chi.RouteCtxKey, routeCtx))
}

func asAdmin(req *http.Request) *http.Request {
	ctx := middleware.WithUserID(req.Context(), uuid.NewString())
	return req.WithContext(middleware.WithRole(ctx, "admin"))
}

func TestRecomputeOrderStatusHappyPath(t *testing.T) {
	orderID := uuid.New()
	rec := &stubStatusRecomputer{status: enums.OrderStatusPartiallyDelivered}

	handler := RecomputeOrderStatus(
		stubResolver{decision: authz.Decision{IsAdmin: true}},
		stubFinder{order: &models.Order{ID: orderID}},
		rec,
		nil,
	)

	req := asAdmin(withOrderID(httptest.NewRequest(http.MethodPost, "/", nil), orderID))
	resp := httptest.NewRecorder()
	handler.ServeHTTP(resp, req)

	if resp.Code != http.StatusOK {
		t.Fatalf("expected 200 got %d: %s", resp.Code, resp.Body.String())
	}
	if rec.calls != 1 {
		t.Fatalf("expected one recompute call, got %d", rec.calls)
	}

	var envelope struct {
		Data RecomputeResponse `json:"data"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&envelope); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	if envelope.Data.NewStatus != "partially_delivered" {
		t.Fatalf("unexpected status %q", envelope.Data.NewStatus)
	}
	if envelope.Data.OrderID != orderID.String() {
		t.Fatalf("unexpected order id %q", envelope.Data.OrderID)
	}
}

func TestRecomputeOrderStatusRequiresCredentials(t *testing.T) {
	handler := RecomputeOrderStatus(stubResolver{}, stubFinder{}, &stubStatusRecomputer{}, nil)

	req := withOrderID(httptest.NewRequest(http.MethodPost, "/", nil), uuid.New())
	resp := httptest.NewRecorder()
	handler.ServeHTTP(resp, req)

	if resp.Code != http.StatusUnauthorized {
		t.Fatalf("expected 401 got %d", resp.Code)
	}
}

func TestRecomputeOrderStatusRequiresAdmin(t *testing.T) {
	rec := &stubStatusRecomputer{}
	handler := RecomputeOrderStatus(
		stubResolver{decision: authz.Decision{IsAdmin: false}},
		stubFinder{order: &models.Order{}},
		rec,
		nil,
	)

	req := asAdmin(withOrderID(httptest.NewRequest(http.MethodPost, "/", nil), uuid.New()))
	resp := httptest.NewRecorder()
	handler.ServeHTTP(resp, req)

	if resp.Code != http.StatusForbidden {
		t.Fatalf("expected 403 got %d", resp.Code)
	}
	if rec.calls != 0 {
		t.Fatalf("recompute must not run for non-admins")
	}
	code, _ := decodeError(t, resp)
	if code != string(pkgerrors.CodeForbidden) {
		t.Fatalf("expected forbidden code got %s", code)
	}
}

func TestRecomputeOrderStatusUnknownOrder(t *testing.T) {
	handler := RecomputeOrderStatus(
		stubResolver{decision: authz.Decision{IsAdmin: true}},
		stubFinder{err: gorm.ErrRecordNotFound},
		&stubStatusRecomputer{},
		nil,
	)

	req := asAdmin(withOrderID(httptest.NewRequest(http.MethodPost, "/", nil), uuid.New()))
	resp := httptest.NewRecorder()
	handler.ServeHTTP(resp, req)

	if resp.Code != http.StatusNotFound {
		t.Fatalf("expected 404 got %d", resp.Code)
	}
}

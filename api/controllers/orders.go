package controllers

import (
	"errors"
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/anvitsharma/trendora-backend/api/responses"
	"github.com/anvitsharma/trendora-backend/api/validators"
	ordersrepo "github.com/anvitsharma/trendora-backend/internal/orders"
	pkgerrors "github.com/anvitsharma/trendora-backend/pkg/errors"
	"github.com/anvitsharma/trendora-backend/pkg/logger"
	"github.com/anvitsharma/trendora-backend/pkg/pagination"
)

// ListOrders returns the caller's orders: the authenticated user's, or a
// guest's identified by guest_session_id.
func ListOrders(repo ordersrepo.Repository, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		limit, err := validators.ParseQueryInt(r, "limit", pagination.DefaultLimit, 1, pagination.MaxLimit)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		params := pagination.Params{
			Limit:  limit,
			Cursor: strings.TrimSpace(r.URL.Query().Get("cursor")),
		}

		caller := callerFromRequest(r, strings.TrimSpace(r.URL.Query().Get("guest_session_id")))

		var list *ordersrepo.OrderList
		switch {
		case caller.UserID != nil:
			list, err = repo.ListOrdersForUser(r.Context(), *caller.UserID, params)
		case caller.GuestSessionID != "":
			list, err = repo.ListOrdersForGuest(r.Context(), caller.GuestSessionID, params)
		default:
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeUnauthorized, "authentication or guest_session_id required"))
			return
		}
		if err != nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "list orders"))
			return
		}

		resp := OrderListResponse{NextCursor: list.NextCursor, Orders: []OrderView{}}
		for i := range list.Orders {
			resp.Orders = append(resp.Orders, *newOrderView(&list.Orders[i]))
		}
		responses.WriteSuccess(w, resp)
	}
}

// GetOrder returns one order with its items, visible to its owner, a matching
// guest session, or an admin.
func GetOrder(repo ordersrepo.Repository, resolver callerResolver, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		orderID, err := uuid.Parse(chi.URLParam(r, "orderId"))
		if err != nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid order id"))
			return
		}

		order, err := repo.FindOrderWithItems(r.Context(), orderID)
		if err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeNotFound, "order not found"))
				return
			}
			responses.WriteError(r.Context(), logg, w, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load order"))
			return
		}

		caller := callerFromRequest(r, strings.TrimSpace(r.URL.Query().Get("guest_session_id")))
		decision, err := resolver.Resolve(r.Context(), caller, order)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "resolve caller role"))
			return
		}
		if !decision.IsAdmin && !decision.IsOwnerOrGuest {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeForbidden, "not authorized to view this order"))
			return
		}

		responses.WriteSuccess(w, newOrderView(order))
	}
}

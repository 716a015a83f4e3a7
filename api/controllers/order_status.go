package controllers

import (
	"context"
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/anvitsharma/trendora-backend/api/responses"
	"github.com/anvitsharma/trendora-backend/internal/authz"
	"github.com/anvitsharma/trendora-backend/pkg/db/models"
	"github.com/anvitsharma/trendora-backend/pkg/enums"
	pkgerrors "github.com/anvitsharma/trendora-backend/pkg/errors"
	"github.com/anvitsharma/trendora-backend/pkg/logger"
)

type callerResolver interface {
	Resolve(ctx context.Context, caller authz.Caller, order *models.Order) (authz.Decision, error)
}

type statusRecomputer interface {
	Recompute(ctx context.Context, orderID uuid.UUID) (enums.OrderStatus, error)
}

type orderFinder interface {
	FindOrder(ctx context.Context, orderID uuid.UUID) (*models.Order, error)
}

// RecomputeOrderStatus re-derives an order's aggregate label out of band, for
// administrative repair when a post-mutation recompute previously failed.
func RecomputeOrderStatus(resolver callerResolver, finder orderFinder, rec statusRecomputer, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		caller := callerFromRequest(r, "")
		if caller.UserID == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeUnauthorized, "missing credentials"))
			return
		}

		decision, err := resolver.Resolve(r.Context(), caller, nil)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "resolve caller role"))
			return
		}
		if !decision.IsAdmin {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeForbidden, "admin role required"))
			return
		}

		orderID, err := uuid.Parse(chi.URLParam(r, "orderId"))
		if err != nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid order id"))
			return
		}

		if _, err := finder.FindOrder(r.Context(), orderID); err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeNotFound, "order not found"))
				return
			}
			responses.WriteError(r.Context(), logg, w, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load order"))
			return
		}

		newStatus, err := rec.Recompute(r.Context(), orderID)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "recompute order status"))
			return
		}

		responses.WriteSuccess(w, RecomputeResponse{
			Success:   true,
			OrderID:   orderID.String(),
			NewStatus: newStatus.String(),
			Message:   "order status recomputed",
		})
	}
}

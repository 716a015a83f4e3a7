package controllers

import (
	"context"
	"net/http"

	"github.com/google/uuid"

	"github.com/anvitsharma/trendora-backend/api/middleware"
	"github.com/anvitsharma/trendora-backend/api/responses"
	"github.com/anvitsharma/trendora-backend/api/validators"
	"github.com/anvitsharma/trendora-backend/internal/authz"
	"github.com/anvitsharma/trendora-backend/internal/lifecycle"
	"github.com/anvitsharma/trendora-backend/pkg/enums"
	pkgerrors "github.com/anvitsharma/trendora-backend/pkg/errors"
	"github.com/anvitsharma/trendora-backend/pkg/logger"
)

type lifecycleApplier interface {
	Apply(ctx context.Context, input lifecycle.ApplyInput) (*lifecycle.ApplyResult, error)
}

// ItemAction applies one lifecycle transition to one order item.
func ItemAction(svc lifecycleApplier, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "lifecycle service unavailable"))
			return
		}

		var payload ItemActionRequest
		if err := validators.DecodeJSONBody(r, &payload); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		action, err := enums.ParseLifecycleAction(payload.Action)
		if err != nil {
			responses.WriteError(r.Context(), logg, w,
				pkgerrors.Wrap(pkgerrors.CodeValidation, err, "unsupported action").
					WithDetails(map[string]any{"action": payload.Action}))
			return
		}

		itemID, err := uuid.Parse(payload.OrderItemID)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid order_item_id"))
			return
		}

		result, err := svc.Apply(r.Context(), lifecycle.ApplyInput{
			Action:      action,
			OrderItemID: itemID,
			Reason:      payload.Reason,
			Caller:      callerFromRequest(r, payload.GuestSessionID),
		})
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		responses.WriteSuccess(w, ItemActionResponse{
			Success:            true,
			Item:               newItemView(result.Item),
			Order:              newOrderView(result.Order),
			OrderStatusWarning: result.OrderStatusWarning,
		})
	}
}

// callerFromRequest assembles the authz caller from the verified claims the
// auth middleware seeded plus any guest session id supplied in the request.
func callerFromRequest(r *http.Request, guestSessionID string) authz.Caller {
	caller := authz.Caller{GuestSessionID: guestSessionID}

	if raw := middleware.UserIDFromContext(r.Context()); raw != "" {
		if id, err := uuid.Parse(raw); err == nil && id != uuid.Nil {
			caller.UserID = &id
		}
	}
	if role := middleware.RoleFromContext(r.Context()); role != "" {
		caller.RoleClaim = enums.UserRole(role)
	}
	return caller
}

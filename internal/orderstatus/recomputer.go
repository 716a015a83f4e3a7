package orderstatus

import (
	"context"

	"github.com/google/uuid"

	"github.com/anvitsharma/trendora-backend/internal/orders"
	"github.com/anvitsharma/trendora-backend/pkg/enums"
	"github.com/anvitsharma/trendora-backend/pkg/logger"
	"github.com/anvitsharma/trendora-backend/pkg/metrics"
)

// Recomputer loads an order's sibling item statuses, derives the aggregate
// label, and persists it. The order status is a projection: recomputation
// failure never invalidates the item mutation that triggered it.
type Recomputer struct {
	repo    orders.Repository
	logg    *logger.Logger
	metrics *metrics.LifecycleMetrics
}

func NewRecomputer(repo orders.Repository, logg *logger.Logger, m *metrics.LifecycleMetrics) *Recomputer {
	return &Recomputer{repo: repo, logg: logg, metrics: m}
}

// Recompute derives and stores the order status, returning the new label.
func (r *Recomputer) Recompute(ctx context.Context, orderID uuid.UUID) (enums.OrderStatus, error) {
	statuses, err := r.repo.ListItemStatuses(ctx, orderID)
	if err != nil {
		return "", err
	}

	status := Compute(statuses)
	if status == enums.OrderStatusMixed {
		r.metrics.IncMixedFallback()
		if r.logg != nil {
			logCtx := r.logg.WithFields(ctx, map[string]any{
				"order_id":      orderID.String(),
				"item_statuses": statuses,
			})
			r.logg.Warn(logCtx, "order status fell through to mixed")
		}
	}

	if err := r.repo.UpdateOrderStatus(ctx, orderID, status); err != nil {
		return "", err
	}
	return status, nil
}

package lifecycle

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/anvitsharma/trendora-backend/internal/authz"
	"github.com/anvitsharma/trendora-backend/internal/orders"
	"github.com/anvitsharma/trendora-backend/internal/refunds"
	"github.com/anvitsharma/trendora-backend/pkg/db/models"
	"github.com/anvitsharma/trendora-backend/pkg/enums"
	pkgerrors "github.com/anvitsharma/trendora-backend/pkg/errors"
	"github.com/anvitsharma/trendora-backend/pkg/logger"
	"github.com/anvitsharma/trendora-backend/pkg/metrics"
	"github.com/anvitsharma/trendora-backend/pkg/outbox"
)

const defaultApproveReason = "Approved by admin"
const defaultRefundReason = "Refund initiated by admin"

const (
	outcomeApplied   = "applied"
	outcomeConflict  = "conflict"
	outcomeForbidden = "forbidden"
	outcomeNotFound  = "not_found"
	outcomeError     = "error"
)

// ServiceParams wires the state machine's collaborators.
type ServiceParams struct {
	Orders       orders.Repository
	Refunds      refunds.Repository
	Tx           txRunner
	Authorizer   authorizer
	Recomputer   statusRecomputer
	Events       eventEmitter
	Logger       *logger.Logger
	Metrics      *metrics.LifecycleMetrics
	ReturnWindow time.Duration
	Now          func() time.Time
}

// Service is the item status state machine. It owns every write to
// order_items.item_status; nothing else in the system mutates that column.
type Service struct {
	orders       orders.Repository
	refunds      refunds.Repository
	tx           txRunner
	authz        authorizer
	recomputer   statusRecomputer
	events       eventEmitter
	logg         *logger.Logger
	metrics      *metrics.LifecycleMetrics
	returnWindow time.Duration
	now          func() time.Time
}

func NewService(params ServiceParams) (*Service, error) {
	if params.Orders == nil {
		return nil, errors.New("orders repository is required")
	}
	if params.Refunds == nil {
		return nil, errors.New("refunds repository is required")
	}
	if params.Tx == nil {
		return nil, errors.New("transaction runner is required")
	}
	if params.Authorizer == nil {
		return nil, errors.New("authorizer is required")
	}
	if params.Recomputer == nil {
		return nil, errors.New("status recomputer is required")
	}
	if params.ReturnWindow <= 0 {
		return nil, errors.New("return window must be positive")
	}

	now := params.Now
	if now == nil {
		now = time.Now
	}

	return &Service{
		orders:       params.Orders,
		refunds:      params.Refunds,
		tx:           params.Tx,
		authz:        params.Authorizer,
		recomputer:   params.Recomputer,
		events:       params.Events,
		logg:         params.Logger,
		metrics:      params.Metrics,
		returnWindow: params.ReturnWindow,
		now:          now,
	}, nil
}

// transitionPlan is everything a validated action will write, computed before
// the transaction opens.
type transitionPlan struct {
	expected          enums.ItemStatus
	next              enums.ItemStatus
	updates           map[string]any
	refund            *models.Refund
	stampOrderDeliver bool
}

// Apply validates and executes one transition. Authorization and precondition
// failures surface before any write; the mutation, refund insert, and outbox
// emit share one transaction; the aggregate recompute runs after commit and
// only ever degrades to a warning.
func (s *Service) Apply(ctx context.Context, input ApplyInput) (*ApplyResult, error) {
	action := input.Action
	if !action.IsValid() {
		s.metrics.ObserveTransition(action.String(), outcomeError)
		return nil, pkgerrors.Newf(pkgerrors.CodeValidation, "unsupported action %q", action)
	}

	item, err := s.orders.FindItem(ctx, input.OrderItemID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			s.metrics.ObserveTransition(action.String(), outcomeNotFound)
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, "order item not found")
		}
		s.metrics.ObserveTransition(action.String(), outcomeError)
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load order item")
	}

	order, err := s.orders.FindOrder(ctx, item.OrderID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			s.metrics.ObserveTransition(action.String(), outcomeNotFound)
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, "order not found")
		}
		s.metrics.ObserveTransition(action.String(), outcomeError)
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load order")
	}

	decision, err := s.authz.Resolve(ctx, input.Caller, order)
	if err != nil {
		s.metrics.ObserveTransition(action.String(), outcomeError)
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "resolve caller role")
	}
	if err := authorize(action, decision); err != nil {
		s.metrics.ObserveTransition(action.String(), outcomeForbidden)
		return nil, err
	}

	plan, err := s.plan(action, item, order, input.Reason)
	if err != nil {
		s.metrics.ObserveTransition(action.String(), outcomeConflict)
		return nil, err
	}

	if err := s.execute(ctx, input, item, order, plan); err != nil {
		if pkgerrors.HasCode(err, pkgerrors.CodeStateConflict) {
			s.metrics.ObserveTransition(action.String(), outcomeConflict)
		} else {
			s.metrics.ObserveTransition(action.String(), outcomeError)
		}
		return nil, err
	}
	s.metrics.ObserveTransition(action.String(), outcomeApplied)

	warning := s.recomputeAfterCommit(ctx, item.OrderID)

	// Reload both rows so the response reflects committed state, including
	// the aggregate label when the recompute succeeded.
	finalItem, err := s.orders.FindItem(ctx, input.OrderItemID)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "reload order item")
	}
	finalOrder, err := s.orders.FindOrder(ctx, item.OrderID)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "reload order")
	}

	return &ApplyResult{Item: finalItem, Order: finalOrder, OrderStatusWarning: warning}, nil
}

func authorize(action enums.LifecycleAction, decision authz.Decision) error {
	switch action {
	case enums.ActionCancelItem:
		if decision.IsAdmin || decision.IsOwnerOrGuest {
			return nil
		}
	case enums.ActionRequestReturn:
		if decision.IsOwnerOrGuest {
			return nil
		}
	case enums.ActionShipItem, enums.ActionDeliverItem, enums.ActionApproveReturn, enums.ActionRefundItem:
		if decision.IsAdmin {
			return nil
		}
	}
	return pkgerrors.Newf(pkgerrors.CodeForbidden, "not authorized to %s", action)
}

func (s *Service) plan(action enums.LifecycleAction, item *models.OrderItem, order *models.Order, reason string) (*transitionPlan, error) {
	now := s.now()

	switch action {
	case enums.ActionCancelItem:
		if item.Status != enums.ItemStatusPending {
			return nil, conflict(action, enums.ItemStatusPending, item.Status)
		}
		updates := map[string]any{"item_status": enums.ItemStatusCancelled}
		if reason != "" {
			updates["cancel_reason"] = reason
		}
		return &transitionPlan{
			expected: enums.ItemStatusPending,
			next:     enums.ItemStatusCancelled,
			updates:  updates,
		}, nil

	case enums.ActionShipItem:
		if item.Status != enums.ItemStatusPending {
			return nil, conflict(action, enums.ItemStatusPending, item.Status)
		}
		return &transitionPlan{
			expected: enums.ItemStatusPending,
			next:     enums.ItemStatusShipped,
			updates: map[string]any{
				"item_status": enums.ItemStatusShipped,
				"shipped_at":  now,
			},
		}, nil

	case enums.ActionDeliverItem:
		if item.Status != enums.ItemStatusShipped {
			return nil, conflict(action, enums.ItemStatusShipped, item.Status)
		}
		return &transitionPlan{
			expected: enums.ItemStatusShipped,
			next:     enums.ItemStatusDelivered,
			updates: map[string]any{
				"item_status":  enums.ItemStatusDelivered,
				"delivered_at": now,
			},
			stampOrderDeliver: true,
		}, nil

	case enums.ActionRequestReturn:
		if item.Status != enums.ItemStatusDelivered {
			return nil, conflict(action, enums.ItemStatusDelivered, item.Status)
		}
		if err := s.checkReturnWindow(item, order, now); err != nil {
			return nil, err
		}
		updates := map[string]any{
			"item_status":         enums.ItemStatusReturned,
			"return_requested_at": now,
		}
		if reason != "" {
			updates["return_reason"] = reason
		}
		return &transitionPlan{
			expected: enums.ItemStatusDelivered,
			next:     enums.ItemStatusReturned,
			updates:  updates,
		}, nil

	case enums.ActionApproveReturn:
		if item.Status != enums.ItemStatusReturned {
			return nil, conflict(action, enums.ItemStatusReturned, item.Status)
		}
		refundReason := reason
		if refundReason == "" {
			refundReason = defaultApproveReason
		}
		return &transitionPlan{
			expected: enums.ItemStatusReturned,
			next:     enums.ItemStatusRefunded,
			updates: map[string]any{
				"item_status":        enums.ItemStatusRefunded,
				"return_approved_at": now,
				"refunded_at":        now,
			},
			refund: &models.Refund{
				OrderID:      order.ID,
				OrderItemID:  item.ID,
				RefundAmount: item.RefundableAmount(),
				RefundStatus: enums.RefundStatusInitiated,
				RefundMethod: order.PaymentMethod,
				RefundReason: refundReason,
			},
		}, nil

	case enums.ActionRefundItem:
		if err := checkRefundEligibility(item, order); err != nil {
			return nil, err
		}
		refundReason := reason
		if refundReason == "" {
			refundReason = defaultRefundReason
		}
		return &transitionPlan{
			expected: item.Status,
			next:     enums.ItemStatusRefunded,
			updates: map[string]any{
				"item_status": enums.ItemStatusRefunded,
				"refunded_at": now,
			},
			refund: &models.Refund{
				OrderID:      order.ID,
				OrderItemID:  item.ID,
				RefundAmount: item.RefundableAmount(),
				RefundStatus: enums.RefundStatusInitiated,
				RefundMethod: order.PaymentMethod,
				RefundReason: refundReason,
			},
		}, nil
	}

	return nil, pkgerrors.Newf(pkgerrors.CodeValidation, "unsupported action %q", action)
}

// checkReturnWindow enforces the post-delivery return period. The delivered
// timestamp comes from the item's refunded_at when previously set, else the
// order's delivered_at; neither present is a data-integrity failure, not a
// user error.
func (s *Service) checkReturnWindow(item *models.OrderItem, order *models.Order, now time.Time) error {
	var deliveredAt *time.Time
	switch {
	case item.RefundedAt != nil:
		deliveredAt = item.RefundedAt
	case order.DeliveredAt != nil:
		deliveredAt = order.DeliveredAt
	}
	if deliveredAt == nil {
		return pkgerrors.New(pkgerrors.CodeStateConflict, "delivered timestamp not available")
	}
	if now.Sub(*deliveredAt) > s.returnWindow {
		return pkgerrors.New(pkgerrors.CodeStateConflict, "return window expired").
			WithDetails(map[string]any{
				"delivered_at":       deliveredAt.UTC().Format(time.RFC3339),
				"return_window_days": int(s.returnWindow.Hours() / 24),
			})
	}
	return nil
}

// checkRefundEligibility applies the payment-method split: razorpay refunds
// follow the money (order must be paid, any item status), COD refunds follow
// the goods (funds exist only once delivered; refunded allows an idempotent
// re-trigger).
func checkRefundEligibility(item *models.OrderItem, order *models.Order) error {
	switch order.PaymentMethod {
	case enums.PaymentMethodRazorpay:
		if order.PaymentStatus != enums.PaymentStatusPaid {
			return pkgerrors.Newf(pkgerrors.CodeStateConflict,
				"cannot refund_item: order payment status is %s, expected paid", order.PaymentStatus)
		}
		return nil
	case enums.PaymentMethodCOD:
		if item.Status != enums.ItemStatusDelivered && item.Status != enums.ItemStatusRefunded {
			return pkgerrors.Newf(pkgerrors.CodeStateConflict,
				"cannot refund_item: cod refund requires status delivered or refunded, current status is %s", item.Status).
				WithDetails(map[string]any{"expected": "delivered|refunded", "actual": item.Status})
		}
		return nil
	}
	return pkgerrors.Newf(pkgerrors.CodeStateConflict, "unknown payment method %q", order.PaymentMethod)
}

func conflict(action enums.LifecycleAction, expected, actual enums.ItemStatus) error {
	return pkgerrors.Newf(pkgerrors.CodeStateConflict,
		"cannot %s: expected status %s, current status is %s", action, expected, actual).
		WithDetails(map[string]any{"expected": expected, "actual": actual})
}

func (s *Service) execute(ctx context.Context, input ApplyInput, item *models.OrderItem, order *models.Order, plan *transitionPlan) error {
	return s.tx.WithTx(ctx, func(tx *gorm.DB) error {
		txOrders := s.orders.WithTx(tx)

		swapped, err := txOrders.UpdateItemStatusCAS(ctx, item.ID, plan.expected, plan.updates)
		if err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "update item status")
		}
		if !swapped {
			// Another transition won the race between our read and this
			// update.
			return pkgerrors.Newf(pkgerrors.CodeStateConflict,
				"cannot %s: item status changed concurrently, expected %s", input.Action, plan.expected)
		}

		if plan.stampOrderDeliver {
			if err := txOrders.UpdateOrderDeliveredAt(ctx, order.ID, map[string]any{"delivered_at": s.now()}); err != nil {
				return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "stamp order delivered_at")
			}
		}

		actor := actorRef(input)

		var refundRow *models.Refund
		if plan.refund != nil {
			refundRow, err = s.refunds.WithTx(tx).Insert(ctx, plan.refund)
			if err != nil {
				return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "insert refund")
			}
			if err := s.emit(ctx, tx, outbox.DomainEvent{
				EventType:     enums.EventRefundInitiated,
				AggregateType: enums.AggregateRefund,
				AggregateID:   refundRow.ID,
				Actor:         actor,
				Data: outbox.RefundInitiatedEvent{
					RefundID:     refundRow.ID,
					OrderID:      refundRow.OrderID,
					OrderItemID:  refundRow.OrderItemID,
					RefundAmount: refundRow.RefundAmount,
					RefundMethod: refundRow.RefundMethod,
					RefundReason: refundRow.RefundReason,
				},
			}); err != nil {
				return err
			}
		}

		return s.emit(ctx, tx, outbox.DomainEvent{
			EventType:     enums.EventItemStatusChanged,
			AggregateType: enums.AggregateOrderItem,
			AggregateID:   item.ID,
			Actor:         actor,
			Data: outbox.ItemStatusChangedEvent{
				OrderID:     order.ID,
				OrderItemID: item.ID,
				Action:      input.Action,
				FromStatus:  plan.expected,
				ToStatus:    plan.next,
			},
		})
	})
}

func (s *Service) emit(ctx context.Context, tx *gorm.DB, event outbox.DomainEvent) error {
	if s.events == nil {
		return nil
	}
	if err := s.events.Emit(ctx, tx, event); err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "queue outbox event")
	}
	return nil
}

func (s *Service) recomputeAfterCommit(ctx context.Context, orderID uuid.UUID) string {
	newStatus, err := s.recomputer.Recompute(ctx, orderID)
	if err == nil {
		if s.logg != nil {
			logCtx := s.logg.WithFields(ctx, map[string]any{
				"order_id":     orderID.String(),
				"order_status": newStatus,
			})
			s.logg.Info(logCtx, "order status recomputed")
		}
		return ""
	}

	s.metrics.IncAggregatorFailure()
	if s.logg != nil {
		logCtx := s.logg.WithOrderID(ctx, orderID.String())
		s.logg.Error(logCtx, "order status recompute failed after item mutation", err)
	}
	return "item updated but order status could not be recomputed"
}

func actorRef(input ApplyInput) *outbox.ActorRef {
	actor := &outbox.ActorRef{}
	if input.Caller.UserID != nil {
		id := *input.Caller.UserID
		actor.UserID = &id
	}
	if input.Caller.GuestSessionID != "" {
		session := input.Caller.GuestSessionID
		actor.GuestSessionID = &session
	}
	if input.Caller.RoleClaim != "" {
		actor.Role = input.Caller.RoleClaim.String()
	}
	return actor
}

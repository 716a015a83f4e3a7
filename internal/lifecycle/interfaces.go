package lifecycle

import (
	"context"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/anvitsharma/trendora-backend/internal/authz"
	"github.com/anvitsharma/trendora-backend/pkg/db/models"
	"github.com/anvitsharma/trendora-backend/pkg/enums"
	"github.com/anvitsharma/trendora-backend/pkg/outbox"
)

type txRunner interface {
	WithTx(ctx context.Context, fn func(tx *gorm.DB) error) error
}

type authorizer interface {
	Resolve(ctx context.Context, caller authz.Caller, order *models.Order) (authz.Decision, error)
}

type statusRecomputer interface {
	Recompute(ctx context.Context, orderID uuid.UUID) (enums.OrderStatus, error)
}

type eventEmitter interface {
	Emit(ctx context.Context, tx *gorm.DB, event outbox.DomainEvent) error
}

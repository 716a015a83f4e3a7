package authz

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/anvitsharma/trendora-backend/pkg/db"
	"github.com/anvitsharma/trendora-backend/pkg/db/models"
	"github.com/anvitsharma/trendora-backend/pkg/enums"
	"github.com/anvitsharma/trendora-backend/pkg/logger"
)

// Caller is the resolved identity of a request: an authenticated user (from a
// verified token), a guest session id supplied in the body, or both absent.
type Caller struct {
	UserID         *uuid.UUID
	RoleClaim      enums.UserRole
	GuestSessionID string
}

// Decision is what the lifecycle actions branch on.
type Decision struct {
	IsAdmin        bool
	IsOwnerOrGuest bool
}

// RoleSource resolves a user's role. The resolver consults the primary source
// first and a fallback only when the primary's backing table is unavailable.
type RoleSource interface {
	Role(ctx context.Context, caller Caller) (enums.UserRole, error)
}

// Resolver decides admin and ownership for a caller against one order.
type Resolver struct {
	primary  RoleSource
	fallback RoleSource
	logg     *logger.Logger
}

func NewResolver(profiles ProfileRepository, logg *logger.Logger) *Resolver {
	return &Resolver{
		primary:  profileRoleSource{profiles: profiles},
		fallback: claimRoleSource{},
		logg:     logg,
	}
}

// NewResolverWithSources wires explicit role sources; tests use this to
// exercise the degraded path directly.
func NewResolverWithSources(primary, fallback RoleSource, logg *logger.Logger) *Resolver {
	return &Resolver{primary: primary, fallback: fallback, logg: logg}
}

// Resolve computes the caller's standing against the order. Role resolution
// falls back to the token claim only when the profiles table is missing;
// any other lookup failure is surfaced so a transient outage cannot flip a
// decision.
func (r *Resolver) Resolve(ctx context.Context, caller Caller, order *models.Order) (Decision, error) {
	decision := Decision{}

	if caller.UserID != nil {
		role, err := r.primary.Role(ctx, caller)
		switch {
		case err == nil:
			decision.IsAdmin = role.IsAdmin()
		case errors.Is(err, gorm.ErrRecordNotFound):
			// No profile row: a valid account with no role record is a
			// plain customer.
		case db.IsUndefinedTable(err):
			if r.logg != nil {
				r.logg.Warn(ctx, "profiles table unavailable, using token role claim")
			}
			claimRole, claimErr := r.fallback.Role(ctx, caller)
			if claimErr != nil {
				return Decision{}, claimErr
			}
			decision.IsAdmin = claimRole.IsAdmin()
		default:
			return Decision{}, err
		}
	}

	if order != nil {
		if caller.UserID != nil && order.OwnedBy(*caller.UserID) {
			decision.IsOwnerOrGuest = true
		}
		if order.MatchesGuestSession(caller.GuestSessionID) {
			decision.IsOwnerOrGuest = true
		}
	}

	return decision, nil
}

type profileRoleSource struct {
	profiles ProfileRepository
}

func (s profileRoleSource) Role(ctx context.Context, caller Caller) (enums.UserRole, error) {
	if caller.UserID == nil {
		return "", gorm.ErrRecordNotFound
	}
	return s.profiles.FindRole(ctx, *caller.UserID)
}

// claimRoleSource reads the role claim carried in the already-verified JWT.
// An absent or unknown claim resolves to customer, never admin.
type claimRoleSource struct{}

func (claimRoleSource) Role(_ context.Context, caller Caller) (enums.UserRole, error) {
	if caller.RoleClaim.IsValid() {
		return caller.RoleClaim, nil
	}
	return enums.UserRoleCustomer, nil
}

package authz

import (
	"context"
	"errors"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"github.com/anvitsharma/trendora-backend/pkg/db/models"
	"github.com/anvitsharma/trendora-backend/pkg/enums"
)

type stubRoleSource struct {
	role  enums.UserRole
	err   error
	calls int
}

func (s *stubRoleSource) Role(ctx context.Context, caller Caller) (enums.UserRole, error) {
	s.calls++
	return s.role, s.err
}

func callerWithUser() (Caller, uuid.UUID) {
	userID := uuid.New()
	return Caller{UserID: &userID}, userID
}

func TestResolveAdminFromProfile(t *testing.T) {
	primary := &stubRoleSource{role: enums.UserRoleAdmin}
	fallback := &stubRoleSource{role: enums.UserRoleCustomer}
	resolver := NewResolverWithSources(primary, fallback, nil)

	caller, _ := callerWithUser()
	decision, err := resolver.Resolve(context.Background(), caller, nil)
	require.NoError(t, err)

	assert.True(t, decision.IsAdmin)
	assert.Equal(t, 0, fallback.calls, "fallback consulted only when profiles table missing")
}

func TestResolveMissingProfileRowIsCustomer(t *testing.T) {
	primary := &stubRoleSource{err: gorm.ErrRecordNotFound}
	fallback := &stubRoleSource{role: enums.UserRoleAdmin}
	resolver := NewResolverWithSources(primary, fallback, nil)

	caller, _ := callerWithUser()
	decision, err := resolver.Resolve(context.Background(), caller, nil)
	require.NoError(t, err)

	assert.False(t, decision.IsAdmin)
	assert.Equal(t, 0, fallback.calls)
}

func TestResolveFallsBackWhenProfilesTableMissing(t *testing.T) {
	primary := &stubRoleSource{err: errors.New(`no such table: profiles`)}
	fallback := &stubRoleSource{role: enums.UserRoleAdmin}
	resolver := NewResolverWithSources(primary, fallback, nil)

	caller, _ := callerWithUser()
	decision, err := resolver.Resolve(context.Background(), caller, nil)
	require.NoError(t, err)

	assert.True(t, decision.IsAdmin)
	assert.Equal(t, 1, fallback.calls)
}

func TestResolveSurfacesOtherLookupErrors(t *testing.T) {
	primary := &stubRoleSource{err: errors.New("connection refused")}
	fallback := &stubRoleSource{role: enums.UserRoleAdmin}
	resolver := NewResolverWithSources(primary, fallback, nil)

	caller, _ := callerWithUser()
	_, err := resolver.Resolve(context.Background(), caller, nil)
	require.Error(t, err)
	assert.Equal(t, 0, fallback.calls, "transient outage must not flip to the claim")
}

func TestResolveAnonymousCallerSkipsRoleLookup(t *testing.T) {
	primary := &stubRoleSource{role: enums.UserRoleAdmin}
	resolver := NewResolverWithSources(primary, &stubRoleSource{}, nil)

	decision, err := resolver.Resolve(context.Background(), Caller{GuestSessionID: "gs_abc"}, nil)
	require.NoError(t, err)

	assert.False(t, decision.IsAdmin)
	assert.Equal(t, 0, primary.calls)
}

func TestResolveOwnership(t *testing.T) {
	primary := &stubRoleSource{role: enums.UserRoleCustomer}
	resolver := NewResolverWithSources(primary, &stubRoleSource{}, nil)

	caller, userID := callerWithUser()
	owned := &models.Order{ID: uuid.New(), UserID: &userID}
	other := uuid.New()
	foreign := &models.Order{ID: uuid.New(), UserID: &other}

	decision, err := resolver.Resolve(context.Background(), caller, owned)
	require.NoError(t, err)
	assert.True(t, decision.IsOwnerOrGuest)

	decision, err = resolver.Resolve(context.Background(), caller, foreign)
	require.NoError(t, err)
	assert.False(t, decision.IsOwnerOrGuest)
}

func TestResolveGuestSessionMatch(t *testing.T) {
	resolver := NewResolverWithSources(&stubRoleSource{}, &stubRoleSource{}, nil)

	session := "gs_7f3e"
	order := &models.Order{ID: uuid.New(), GuestSessionID: &session}

	decision, err := resolver.Resolve(context.Background(), Caller{GuestSessionID: session}, order)
	require.NoError(t, err)
	assert.True(t, decision.IsOwnerOrGuest)

	decision, err = resolver.Resolve(context.Background(), Caller{GuestSessionID: "gs_other"}, order)
	require.NoError(t, err)
	assert.False(t, decision.IsOwnerOrGuest)

	// Empty session ids never match, even against an empty stored value.
	empty := ""
	blankOrder := &models.Order{ID: uuid.New(), GuestSessionID: &empty}
	decision, err = resolver.Resolve(context.Background(), Caller{}, blankOrder)
	require.NoError(t, err)
	assert.False(t, decision.IsOwnerOrGuest)
}

func TestClaimRoleSourceNeverInventsAdmin(t *testing.T) {
	source := claimRoleSource{}

	role, err := source.Role(context.Background(), Caller{RoleClaim: enums.UserRole("superuser")})
	require.NoError(t, err)
	assert.Equal(t, enums.UserRoleCustomer, role)

	role, err = source.Role(context.Background(), Caller{RoleClaim: enums.UserRoleAdmin})
	require.NoError(t, err)
	assert.Equal(t, enums.UserRoleAdmin, role)
}

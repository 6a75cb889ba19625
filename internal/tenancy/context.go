// Package tenancy carries the active organization for one unit of work
// (an HTTP request or a background job invocation) and derives
// tenant-scoped queries from it. The context value is the only carrier;
// there is no package-level current organization, so nothing needs to be
// cleared on exit paths and nothing can leak into a reused goroutine.
package tenancy

import (
	"context"

	apperrors "timetracker-backend/internal/errors"
	"timetracker-backend/internal/database/models"

	"github.com/google/uuid"
)

type contextKey string

const (
	organizationKey contextKey = "tenancy.organization_id"
	roleKey         contextKey = "tenancy.role"
	userKey         contextKey = "tenancy.user_id"
	systemKey       contextKey = "tenancy.system"
)

// WithOrganization returns a context carrying the active organization.
// Request middleware sets it after verifying membership; background jobs
// that operate on behalf of a single tenant call it explicitly.
func WithOrganization(ctx context.Context, orgID uuid.UUID) context.Context {
	return context.WithValue(ctx, organizationKey, orgID)
}

// OrganizationID returns the active organization, failing closed with
// ErrNoActiveOrganization when the context carries none.
func OrganizationID(ctx context.Context) (uuid.UUID, error) {
	if id, ok := ctx.Value(organizationKey).(uuid.UUID); ok && id != uuid.Nil {
		return id, nil
	}
	return uuid.Nil, apperrors.ErrNoActiveOrganization
}

// WithRole records the caller's role in the active organization.
func WithRole(ctx context.Context, role models.MembershipRole) context.Context {
	return context.WithValue(ctx, roleKey, role)
}

// Role returns the caller's role in the active organization, if set.
func Role(ctx context.Context) (models.MembershipRole, bool) {
	role, ok := ctx.Value(roleKey).(models.MembershipRole)
	return role, ok
}

// WithUser records the authenticated principal on the context.
func WithUser(ctx context.Context, userID uuid.UUID) context.Context {
	return context.WithValue(ctx, userKey, userID)
}

// UserID returns the authenticated principal, if set.
func UserID(ctx context.Context) (uuid.UUID, bool) {
	id, ok := ctx.Value(userKey).(uuid.UUID)
	return id, ok
}

// WithSystem returns a privileged context that bypasses tenant scoping.
// Only administrative and reconciliation jobs may use it; request
// handling code never sets it.
func WithSystem(ctx context.Context) context.Context {
	return context.WithValue(ctx, systemKey, true)
}

// IsSystem reports whether the context carries the system privilege.
func IsSystem(ctx context.Context) bool {
	v, ok := ctx.Value(systemKey).(bool)
	return ok && v
}

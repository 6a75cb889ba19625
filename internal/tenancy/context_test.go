package tenancy

import (
	"context"
	"testing"

	"timetracker-backend/internal/database/models"
	apperrors "timetracker-backend/internal/errors"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
)

func TestOrganizationIDFailsClosed(t *testing.T) {
	_, err := OrganizationID(context.Background())
	assert.ErrorIs(t, err, apperrors.ErrNoActiveOrganization)
}

func TestOrganizationIDRejectsNil(t *testing.T) {
	ctx := WithOrganization(context.Background(), uuid.Nil)
	_, err := OrganizationID(ctx)
	assert.ErrorIs(t, err, apperrors.ErrNoActiveOrganization)
}

func TestOrganizationIDRoundTrip(t *testing.T) {
	orgID := uuid.New()
	ctx := WithOrganization(context.Background(), orgID)

	got, err := OrganizationID(ctx)
	assert.NoError(t, err)
	assert.Equal(t, orgID, got)
}

func TestRoleRoundTrip(t *testing.T) {
	_, ok := Role(context.Background())
	assert.False(t, ok)

	ctx := WithRole(context.Background(), models.MembershipRoleAdmin)
	role, ok := Role(ctx)
	assert.True(t, ok)
	assert.Equal(t, models.MembershipRoleAdmin, role)
}

func TestUserIDRoundTrip(t *testing.T) {
	_, ok := UserID(context.Background())
	assert.False(t, ok)

	userID := uuid.New()
	ctx := WithUser(context.Background(), userID)
	got, ok := UserID(ctx)
	assert.True(t, ok)
	assert.Equal(t, userID, got)
}

func TestIsSystem(t *testing.T) {
	assert.False(t, IsSystem(context.Background()))
	assert.True(t, IsSystem(WithSystem(context.Background())))
}

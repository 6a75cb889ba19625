package tenancy

import (
	"context"
	"testing"

	apperrors "timetracker-backend/internal/errors"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
)

type ownedRow struct {
	orgID uuid.UUID
}

func (r ownedRow) OwnedBy() uuid.UUID { return r.orgID }

func TestScopedFailsClosedWithoutOrganization(t *testing.T) {
	db, err := Scoped(context.Background(), nil)
	assert.Nil(t, db)
	assert.ErrorIs(t, err, apperrors.ErrNoActiveOrganization)
}

func TestVerifySameOrganizationMatch(t *testing.T) {
	orgID := uuid.New()
	ctx := WithOrganization(context.Background(), orgID)

	err := VerifySameOrganization(ctx, ownedRow{orgID: orgID}, ownedRow{orgID: orgID})
	assert.NoError(t, err)
}

func TestVerifySameOrganizationMismatch(t *testing.T) {
	ctx := WithOrganization(context.Background(), uuid.New())

	err := VerifySameOrganization(ctx, ownedRow{orgID: uuid.New()})
	assert.ErrorIs(t, err, apperrors.ErrCrossTenantReference)
}

func TestVerifySameOrganizationFailsClosed(t *testing.T) {
	err := VerifySameOrganization(context.Background(), ownedRow{orgID: uuid.New()})
	assert.ErrorIs(t, err, apperrors.ErrNoActiveOrganization)
}

func TestVerifySameOrganizationSystemBypass(t *testing.T) {
	ctx := WithSystem(context.Background())

	err := VerifySameOrganization(ctx, ownedRow{orgID: uuid.New()})
	assert.NoError(t, err)
}

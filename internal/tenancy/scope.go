package tenancy

import (
	"context"

	apperrors "timetracker-backend/internal/errors"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
	"gorm.io/gorm"
)

// Owned is implemented by every tenant-scoped entity.
type Owned interface {
	OwnedBy() uuid.UUID
}

// Scoped returns a query pre-constrained to the active organization.
// With no active organization it fails closed with
// ErrNoActiveOrganization rather than returning an unscoped query. A
// system context returns the unfiltered handle.
func Scoped(ctx context.Context, db *gorm.DB) (*gorm.DB, error) {
	if IsSystem(ctx) {
		return db.WithContext(ctx), nil
	}
	orgID, err := OrganizationID(ctx)
	if err != nil {
		return nil, err
	}
	return db.WithContext(ctx).Where("organization_id = ?", orgID), nil
}

// VerifySameOrganization checks that every referenced entity belongs to
// the active organization. A mismatch is a data-integrity violation
// surfaced as ErrCrossTenantReference, never a silently ignored
// condition. System contexts skip the check.
func VerifySameOrganization(ctx context.Context, owned ...Owned) error {
	if IsSystem(ctx) {
		return nil
	}
	orgID, err := OrganizationID(ctx)
	if err != nil {
		return err
	}
	for _, entity := range owned {
		if entity.OwnedBy() != orgID {
			logrus.WithFields(logrus.Fields{
				"active_organization": orgID,
				"owning_organization": entity.OwnedBy(),
			}).Error("cross-tenant reference detected")
			return apperrors.ErrCrossTenantReference
		}
	}
	return nil
}

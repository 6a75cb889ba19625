package models

import (
	"time"

	"github.com/google/uuid"
)

// Membership binds a user to an organization with a role. A user holds at
// most one membership row per organization; only rows in status active
// count as billable seats.
type Membership struct {
	BaseModel
	OrganizationID uuid.UUID        `json:"organization_id" gorm:"type:uuid;not null;uniqueIndex:idx_memberships_org_user;index:idx_memberships_org_status" validate:"required"`
	UserID         uuid.UUID        `json:"user_id" gorm:"type:uuid;not null;uniqueIndex:idx_memberships_org_user" validate:"required"`
	Role           MembershipRole   `json:"role" gorm:"type:varchar(20);not null;default:'member'" validate:"required"`
	Status         MembershipStatus `json:"status" gorm:"type:varchar(20);not null;default:'invited';index:idx_memberships_org_status" validate:"required"`

	// InvitationToken is single-use: set when the invitation is created,
	// cleared when it is accepted.
	InvitationToken *string    `json:"-" gorm:"size:128;uniqueIndex"`
	LastActiveAt    *time.Time `json:"last_active_at,omitempty"`

	// Relationships
	Organization Organization `json:"organization,omitempty" gorm:"foreignKey:OrganizationID"`
	User         User         `json:"user,omitempty" gorm:"foreignKey:UserID"`
}

// TableName returns the table name for Membership
func (Membership) TableName() string {
	return "memberships"
}

// OwnedBy returns the owning organization for cross-tenant checks.
func (m *Membership) OwnedBy() uuid.UUID {
	return m.OrganizationID
}

// CountsTowardSeats reports whether this membership occupies a billable seat.
func (m *Membership) CountsTowardSeats() bool {
	return m.Status == MembershipStatusActive
}

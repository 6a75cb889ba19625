package models

import (
	"time"

	"github.com/google/uuid"
)

// TimeEntry is a tenant-scoped business entity recording tracked time
// against a project by a member. It carries its own organization_id so
// the scope layer and row policies apply without joins.
type TimeEntry struct {
	BaseModel
	OrganizationID uuid.UUID `json:"organization_id" gorm:"type:uuid;not null;index:idx_time_entries_org_project;index:idx_time_entries_org_member" validate:"required"`
	ProjectID      uuid.UUID `json:"project_id" gorm:"type:uuid;not null;index:idx_time_entries_org_project" validate:"required"`
	MembershipID   uuid.UUID `json:"membership_id" gorm:"type:uuid;not null;index:idx_time_entries_org_member" validate:"required"`
	Description    string    `json:"description" gorm:"size:500" validate:"max=500"`
	StartedAt      time.Time `json:"started_at" gorm:"not null" validate:"required"`
	Minutes        int       `json:"minutes" gorm:"not null;check:minutes > 0" validate:"required,min=1"`

	// Relationships
	Organization Organization `json:"organization,omitempty" gorm:"foreignKey:OrganizationID"`
	Project      Project      `json:"project,omitempty" gorm:"foreignKey:ProjectID"`
	Membership   Membership   `json:"membership,omitempty" gorm:"foreignKey:MembershipID"`
}

// TableName returns the table name for TimeEntry
func (TimeEntry) TableName() string {
	return "time_entries"
}

// OwnedBy returns the owning organization for cross-tenant checks.
func (t *TimeEntry) OwnedBy() uuid.UUID {
	return t.OrganizationID
}

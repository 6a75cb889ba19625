package models

import (
	"github.com/google/uuid"
)

// Project is a tenant-scoped business entity. Its name is unique within
// an organization, not globally.
type Project struct {
	BaseModel
	OrganizationID uuid.UUID `json:"organization_id" gorm:"type:uuid;not null;uniqueIndex:idx_projects_org_name;index:idx_projects_org_archived" validate:"required"`
	Name           string    `json:"name" gorm:"not null;size:100;uniqueIndex:idx_projects_org_name" validate:"required,min=1,max=100"`
	Description    string    `json:"description" gorm:"size:500" validate:"max=500"`
	Archived       bool      `json:"archived" gorm:"default:false;index:idx_projects_org_archived"`

	// Relationships
	Organization Organization `json:"organization,omitempty" gorm:"foreignKey:OrganizationID"`
	TimeEntries  []TimeEntry  `json:"time_entries,omitempty" gorm:"foreignKey:ProjectID"`
}

// TableName returns the table name for Project
func (Project) TableName() string {
	return "projects"
}

// OwnedBy returns the owning organization for cross-tenant checks.
func (p *Project) OwnedBy() uuid.UUID {
	return p.OrganizationID
}

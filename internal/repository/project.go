package repository

import (
	"context"

	"timetracker-backend/internal/database"
	"timetracker-backend/internal/database/models"
	apperrors "timetracker-backend/internal/errors"
	"timetracker-backend/internal/tenancy"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// ProjectRepository handles database operations for projects. Every
// operation is scoped to the organization carried by the context; there
// is no unscoped entry point. Writes run inside a tenant transaction so
// database row policies see the active organization as well.
type ProjectRepository struct {
	db *gorm.DB
}

// NewProjectRepository creates a new project repository
func NewProjectRepository(db *gorm.DB) *ProjectRepository {
	return &ProjectRepository{db: db}
}

// Create creates a new project in the active organization
func (r *ProjectRepository) Create(ctx context.Context, project *models.Project) error {
	orgID, err := tenancy.OrganizationID(ctx)
	if err != nil {
		return err
	}
	if project.OrganizationID == uuid.Nil {
		project.OrganizationID = orgID
	} else if project.OrganizationID != orgID {
		return apperrors.ErrCrossTenantReference
	}
	return database.RunTenantScoped(ctx, r.db, func(tx *gorm.DB) error {
		return tx.Create(project).Error
	})
}

// GetByID retrieves a project by ID within the active organization
func (r *ProjectRepository) GetByID(ctx context.Context, id uuid.UUID) (*models.Project, error) {
	scoped, err := tenancy.Scoped(ctx, r.db)
	if err != nil {
		return nil, err
	}
	var project models.Project
	if err := scoped.First(&project, "id = ?", id).Error; err != nil {
		return nil, err
	}
	return &project, nil
}

// GetByName retrieves a project by name within the active organization
func (r *ProjectRepository) GetByName(ctx context.Context, name string) (*models.Project, error) {
	scoped, err := tenancy.Scoped(ctx, r.db)
	if err != nil {
		return nil, err
	}
	var project models.Project
	if err := scoped.First(&project, "name = ?", name).Error; err != nil {
		return nil, err
	}
	return &project, nil
}

// List retrieves the active organization's projects with pagination
func (r *ProjectRepository) List(ctx context.Context, limit, offset int) ([]models.Project, int64, error) {
	scoped, err := tenancy.Scoped(ctx, r.db)
	if err != nil {
		return nil, 0, err
	}

	var projects []models.Project
	var total int64
	if err := scoped.Model(&models.Project{}).Count(&total).Error; err != nil {
		return nil, 0, err
	}
	if err := scoped.Limit(limit).Offset(offset).Order("created_at").Find(&projects).Error; err != nil {
		return nil, 0, err
	}
	return projects, total, nil
}

// Update updates a project within the active organization
func (r *ProjectRepository) Update(ctx context.Context, project *models.Project) error {
	if err := tenancy.VerifySameOrganization(ctx, project); err != nil {
		return err
	}
	return database.RunTenantScoped(ctx, r.db, func(tx *gorm.DB) error {
		return tx.Save(project).Error
	})
}

// Delete deletes a project within the active organization
func (r *ProjectRepository) Delete(ctx context.Context, id uuid.UUID) error {
	orgID, err := tenancy.OrganizationID(ctx)
	if err != nil {
		return err
	}
	return database.RunTenantScoped(ctx, r.db, func(tx *gorm.DB) error {
		return tx.Delete(&models.Project{}, "id = ? AND organization_id = ?", id, orgID).Error
	})
}

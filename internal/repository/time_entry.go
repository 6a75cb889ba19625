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

// TimeEntryRepository handles database operations for time entries,
// scoped to the active organization like ProjectRepository.
type TimeEntryRepository struct {
	db *gorm.DB
}

// NewTimeEntryRepository creates a new time entry repository
func NewTimeEntryRepository(db *gorm.DB) *TimeEntryRepository {
	return &TimeEntryRepository{db: db}
}

// Create creates a new time entry in the active organization
func (r *TimeEntryRepository) Create(ctx context.Context, entry *models.TimeEntry) error {
	orgID, err := tenancy.OrganizationID(ctx)
	if err != nil {
		return err
	}
	if entry.OrganizationID == uuid.Nil {
		entry.OrganizationID = orgID
	} else if entry.OrganizationID != orgID {
		return apperrors.ErrCrossTenantReference
	}
	return database.RunTenantScoped(ctx, r.db, func(tx *gorm.DB) error {
		return tx.Create(entry).Error
	})
}

// GetByID retrieves a time entry by ID within the active organization
func (r *TimeEntryRepository) GetByID(ctx context.Context, id uuid.UUID) (*models.TimeEntry, error) {
	scoped, err := tenancy.Scoped(ctx, r.db)
	if err != nil {
		return nil, err
	}
	var entry models.TimeEntry
	if err := scoped.First(&entry, "id = ?", id).Error; err != nil {
		return nil, err
	}
	return &entry, nil
}

// ListByProject retrieves a project's time entries with pagination
func (r *TimeEntryRepository) ListByProject(ctx context.Context, projectID uuid.UUID, limit, offset int) ([]models.TimeEntry, int64, error) {
	scoped, err := tenancy.Scoped(ctx, r.db)
	if err != nil {
		return nil, 0, err
	}

	var entries []models.TimeEntry
	var total int64
	query := scoped.Model(&models.TimeEntry{}).Where("project_id = ?", projectID)
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}
	if err := query.Limit(limit).Offset(offset).Order("started_at DESC").Find(&entries).Error; err != nil {
		return nil, 0, err
	}
	return entries, total, nil
}

// Update updates a time entry within the active organization
func (r *TimeEntryRepository) Update(ctx context.Context, entry *models.TimeEntry) error {
	if err := tenancy.VerifySameOrganization(ctx, entry); err != nil {
		return err
	}
	return database.RunTenantScoped(ctx, r.db, func(tx *gorm.DB) error {
		return tx.Save(entry).Error
	})
}

// Delete deletes a time entry within the active organization
func (r *TimeEntryRepository) Delete(ctx context.Context, id uuid.UUID) error {
	orgID, err := tenancy.OrganizationID(ctx)
	if err != nil {
		return err
	}
	return database.RunTenantScoped(ctx, r.db, func(tx *gorm.DB) error {
		return tx.Delete(&models.TimeEntry{}, "id = ? AND organization_id = ?", id, orgID).Error
	})
}

package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"timetracker-backend/internal/database/models"
	apperrors "timetracker-backend/internal/errors"
	"timetracker-backend/internal/repository"
	"timetracker-backend/internal/tenancy"

	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

// CreateTimeEntryRequest represents the request to record tracked time
type CreateTimeEntryRequest struct {
	ProjectID   uuid.UUID `json:"project_id" validate:"required"`
	Description string    `json:"description" validate:"max=500"`
	StartedAt   time.Time `json:"started_at" validate:"required"`
	Minutes     int       `json:"minutes" validate:"required,min=1"`
}

// UpdateTimeEntryRequest represents the request to update a time entry
type UpdateTimeEntryRequest struct {
	Description string    `json:"description" validate:"max=500"`
	StartedAt   time.Time `json:"started_at" validate:"required"`
	Minutes     int       `json:"minutes" validate:"required,min=1"`
}

// TimeEntryService handles tenant-scoped time entry operations. A
// created entry is attributed to the caller's own membership; the
// project reference is verified to live in the same organization before
// the row is written.
type TimeEntryService struct {
	entries     repository.TimeEntryRepositoryInterface
	projects    repository.ProjectRepositoryInterface
	memberships repository.MembershipRepositoryInterface
	validator   *validator.Validate
}

// NewTimeEntryService creates a new time entry service
func NewTimeEntryService(
	entries repository.TimeEntryRepositoryInterface,
	projects repository.ProjectRepositoryInterface,
	memberships repository.MembershipRepositoryInterface,
) *TimeEntryService {
	return &TimeEntryService{
		entries:     entries,
		projects:    projects,
		memberships: memberships,
		validator:   validator.New(),
	}
}

// Create records time against a project in the active organization.
func (s *TimeEntryService) Create(ctx context.Context, req *CreateTimeEntryRequest) (*models.TimeEntry, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, apperrors.NewValidationError("request", err.Error())
	}

	orgID, err := tenancy.OrganizationID(ctx)
	if err != nil {
		return nil, err
	}
	userID, ok := tenancy.UserID(ctx)
	if !ok {
		return nil, apperrors.ErrAccessDenied
	}

	project, err := s.projects.GetByID(ctx, req.ProjectID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperrors.ErrProjectNotFound
		}
		return nil, fmt.Errorf("failed to get project: %w", err)
	}
	if err := tenancy.VerifySameOrganization(ctx, project); err != nil {
		return nil, err
	}

	membership, err := s.memberships.GetByOrgAndUser(orgID, userID)
	if err != nil {
		return nil, apperrors.ErrAccessDenied
	}

	entry := &models.TimeEntry{
		ProjectID:    project.ID,
		MembershipID: membership.ID,
		Description:  req.Description,
		StartedAt:    req.StartedAt,
		Minutes:      req.Minutes,
	}
	if err := s.entries.Create(ctx, entry); err != nil {
		return nil, fmt.Errorf("failed to create time entry: %w", err)
	}
	return entry, nil
}

// Get returns a time entry by id within the active organization.
func (s *TimeEntryService) Get(ctx context.Context, id uuid.UUID) (*models.TimeEntry, error) {
	entry, err := s.entries.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperrors.ErrTimeEntryNotFound
		}
		return nil, fmt.Errorf("failed to get time entry: %w", err)
	}
	return entry, nil
}

// ListByProject returns a project's time entries with pagination.
func (s *TimeEntryService) ListByProject(ctx context.Context, projectID uuid.UUID, limit, offset int) ([]models.TimeEntry, int64, error) {
	if limit <= 0 || limit > 100 || offset < 0 {
		return nil, 0, apperrors.ErrInvalidPaginationParams
	}
	return s.entries.ListByProject(ctx, projectID, limit, offset)
}

// Update changes a time entry's mutable fields.
func (s *TimeEntryService) Update(ctx context.Context, id uuid.UUID, req *UpdateTimeEntryRequest) (*models.TimeEntry, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, apperrors.NewValidationError("request", err.Error())
	}

	entry, err := s.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	entry.Description = req.Description
	entry.StartedAt = req.StartedAt
	entry.Minutes = req.Minutes
	if err := s.entries.Update(ctx, entry); err != nil {
		return nil, fmt.Errorf("failed to update time entry: %w", err)
	}
	return entry, nil
}

// Delete removes a time entry from the active organization.
func (s *TimeEntryService) Delete(ctx context.Context, id uuid.UUID) error {
	if _, err := s.Get(ctx, id); err != nil {
		return err
	}
	return s.entries.Delete(ctx, id)
}

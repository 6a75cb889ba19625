package service

import (
	"context"
	"errors"
	"fmt"

	"timetracker-backend/internal/database/models"
	apperrors "timetracker-backend/internal/errors"
	"timetracker-backend/internal/repository"

	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

// CreateProjectRequest represents the request to create a project
type CreateProjectRequest struct {
	Name        string `json:"name" validate:"required,min=1,max=100"`
	Description string `json:"description" validate:"max=500"`
}

// UpdateProjectRequest represents the request to update a project
type UpdateProjectRequest struct {
	Name        string `json:"name" validate:"required,min=1,max=100"`
	Description string `json:"description" validate:"max=500"`
	Archived    bool   `json:"archived"`
}

// ProjectService handles tenant-scoped project operations. The tenancy
// boundary is enforced one layer down in the repository; the service
// only adds validation and name uniqueness semantics.
type ProjectService struct {
	projects  repository.ProjectRepositoryInterface
	validator *validator.Validate
}

// NewProjectService creates a new project service
func NewProjectService(projects repository.ProjectRepositoryInterface) *ProjectService {
	return &ProjectService{
		projects:  projects,
		validator: validator.New(),
	}
}

// Create creates a project in the active organization. Names are unique
// per organization.
func (s *ProjectService) Create(ctx context.Context, req *CreateProjectRequest) (*models.Project, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, apperrors.NewValidationError("request", err.Error())
	}

	if _, err := s.projects.GetByName(ctx, req.Name); err == nil {
		return nil, apperrors.ErrProjectExists
	} else if !errors.Is(err, gorm.ErrRecordNotFound) && !apperrors.IsNotFound(err) {
		return nil, fmt.Errorf("failed to check project name: %w", err)
	}

	project := &models.Project{
		Name:        req.Name,
		Description: req.Description,
	}
	if err := s.projects.Create(ctx, project); err != nil {
		return nil, fmt.Errorf("failed to create project: %w", err)
	}
	return project, nil
}

// Get returns a project by id within the active organization.
func (s *ProjectService) Get(ctx context.Context, id uuid.UUID) (*models.Project, error) {
	project, err := s.projects.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperrors.ErrProjectNotFound
		}
		return nil, fmt.Errorf("failed to get project: %w", err)
	}
	return project, nil
}

// List returns the active organization's projects with pagination.
func (s *ProjectService) List(ctx context.Context, limit, offset int) ([]models.Project, int64, error) {
	if limit <= 0 || limit > 100 || offset < 0 {
		return nil, 0, apperrors.ErrInvalidPaginationParams
	}
	return s.projects.List(ctx, limit, offset)
}

// Update changes a project's mutable fields.
func (s *ProjectService) Update(ctx context.Context, id uuid.UUID, req *UpdateProjectRequest) (*models.Project, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, apperrors.NewValidationError("request", err.Error())
	}

	project, err := s.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	project.Name = req.Name
	project.Description = req.Description
	project.Archived = req.Archived
	if err := s.projects.Update(ctx, project); err != nil {
		return nil, fmt.Errorf("failed to update project: %w", err)
	}
	return project, nil
}

// Delete removes a project from the active organization.
func (s *ProjectService) Delete(ctx context.Context, id uuid.UUID) error {
	if _, err := s.Get(ctx, id); err != nil {
		return err
	}
	return s.projects.Delete(ctx, id)
}

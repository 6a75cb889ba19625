package service

import (
	"context"
	"errors"
	"fmt"
	"regexp"
	"time"

	"timetracker-backend/internal/config"
	"timetracker-backend/internal/database/models"
	apperrors "timetracker-backend/internal/errors"
	"timetracker-backend/internal/logger"
	"timetracker-backend/internal/repository"
	"timetracker-backend/internal/tenancy"

	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

var slugPattern = regexp.MustCompile(`^[a-z0-9]+(-[a-z0-9]+)*$`)

// CreateOrganizationRequest represents the request to create an organization
type CreateOrganizationRequest struct {
	Slug        string `json:"slug" validate:"required,min=3,max=63"`
	DisplayName string `json:"display_name" validate:"required,max=200"`
	Plan        string `json:"plan" validate:"omitempty,max=50"`
}

// UpdateOrganizationRequest represents the request to update organization settings
type UpdateOrganizationRequest struct {
	DisplayName string `json:"display_name" validate:"required,max=200"`
}

// OrganizationService handles organization lifecycle: creation with a
// bootstrap admin membership, settings updates, and offboarding.
type OrganizationService struct {
	orgs        repository.OrganizationRepositoryInterface
	memberships repository.MembershipRepositoryInterface
	events      repository.SubscriptionEventRepositoryInterface
	plans       *config.PlanCatalog
	validator   *validator.Validate
	log         *logger.Logger
}

// NewOrganizationService creates a new organization service
func NewOrganizationService(
	orgs repository.OrganizationRepositoryInterface,
	memberships repository.MembershipRepositoryInterface,
	events repository.SubscriptionEventRepositoryInterface,
	plans *config.PlanCatalog,
) *OrganizationService {
	return &OrganizationService{
		orgs:        orgs,
		memberships: memberships,
		events:      events,
		plans:       plans,
		validator:   validator.New(),
		log:         logger.New(),
	}
}

// Create provisions a new organization on the requested plan and makes
// the calling user its first admin. New paid-plan tenants start in a
// trial when the plan defines one.
func (s *OrganizationService) Create(ctx context.Context, req *CreateOrganizationRequest) (*models.Organization, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, apperrors.NewValidationError("request", err.Error())
	}
	if !slugPattern.MatchString(req.Slug) {
		return nil, apperrors.NewValidationError("slug", "must contain only lowercase letters, digits, and hyphens")
	}
	userID, ok := tenancy.UserID(ctx)
	if !ok {
		return nil, apperrors.ErrAccessDenied
	}

	if _, err := s.orgs.GetBySlug(req.Slug); err == nil {
		return nil, apperrors.ErrOrganizationExists
	} else if !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, fmt.Errorf("failed to check organization slug: %w", err)
	}

	plan := req.Plan
	if plan == "" {
		plan = "free"
	}
	org := &models.Organization{
		Slug:               req.Slug,
		DisplayName:        req.DisplayName,
		Plan:               plan,
		SubscriptionStatus: models.SubscriptionStatusNone,
		SeatQuantity:       1,
		IsActive:           true,
	}
	if days := s.plans.TrialDays(plan); days > 0 {
		trialEnd := time.Now().UTC().AddDate(0, 0, days)
		org.SubscriptionStatus = models.SubscriptionStatusTrialing
		org.TrialEndsAt = &trialEnd
	}

	if err := s.orgs.Create(org); err != nil {
		return nil, fmt.Errorf("failed to create organization: %w", err)
	}

	now := time.Now().UTC()
	membership := &models.Membership{
		OrganizationID: org.ID,
		UserID:         userID,
		Role:           models.MembershipRoleAdmin,
		Status:         models.MembershipStatusActive,
		LastActiveAt:   &now,
	}
	if err := s.memberships.Create(membership); err != nil {
		return nil, fmt.Errorf("failed to create bootstrap membership: %w", err)
	}

	logger.WithContext(ctx).WithFields(map[string]interface{}{
		"organization_id": org.ID,
		"slug":            org.Slug,
		"plan":            org.Plan,
	}).Info("organization created")
	return org, nil
}

// Get returns the active organization of the request.
func (s *OrganizationService) Get(ctx context.Context) (*models.Organization, error) {
	orgID, err := tenancy.OrganizationID(ctx)
	if err != nil {
		return nil, err
	}
	org, err := s.orgs.GetByID(orgID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperrors.ErrOrganizationNotFound
		}
		return nil, fmt.Errorf("failed to get organization: %w", err)
	}
	return org, nil
}

// Update changes mutable organization settings. Admin only.
func (s *OrganizationService) Update(ctx context.Context, req *UpdateOrganizationRequest) (*models.Organization, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, apperrors.NewValidationError("request", err.Error())
	}
	if err := requireRole(ctx, models.MembershipRoleAdmin); err != nil {
		return nil, err
	}

	org, err := s.Get(ctx)
	if err != nil {
		return nil, err
	}
	org.DisplayName = req.DisplayName
	if err := s.orgs.Update(org); err != nil {
		return nil, fmt.Errorf("failed to update organization: %w", err)
	}
	return org, nil
}

// Offboard soft-deletes an organization. Subscription events are
// detached first so the billing audit trail survives; tenant-owned rows
// stay behind the soft-deleted tenant and its row policies. Admin only.
func (s *OrganizationService) Offboard(ctx context.Context, orgID uuid.UUID) error {
	if err := requireRole(ctx, models.MembershipRoleAdmin); err != nil {
		return err
	}
	if !tenancy.IsSystem(ctx) {
		active, err := tenancy.OrganizationID(ctx)
		if err != nil {
			return err
		}
		if active != orgID {
			return apperrors.ErrAccessDenied
		}
	}

	if err := s.events.DetachOrganization(orgID); err != nil {
		return fmt.Errorf("failed to detach subscription events: %w", err)
	}
	if err := s.orgs.SoftDelete(orgID); err != nil {
		return fmt.Errorf("failed to offboard organization: %w", err)
	}

	logger.WithContext(ctx).WithField("organization_id", orgID).Info("organization offboarded")
	return nil
}

// ListAll returns all organizations with pagination. System contexts only.
func (s *OrganizationService) ListAll(ctx context.Context, limit, offset int) ([]models.Organization, int64, error) {
	if !tenancy.IsSystem(ctx) {
		return nil, 0, apperrors.ErrAccessDenied
	}
	if limit <= 0 || limit > 100 || offset < 0 {
		return nil, 0, apperrors.ErrInvalidPaginationParams
	}
	return s.orgs.GetAll(limit, offset)
}

// ListEvents returns the billing event log of the active organization.
func (s *OrganizationService) ListEvents(ctx context.Context, limit, offset int) ([]models.SubscriptionEvent, int64, error) {
	orgID, err := tenancy.OrganizationID(ctx)
	if err != nil {
		return nil, 0, err
	}
	if limit <= 0 || limit > 100 || offset < 0 {
		return nil, 0, apperrors.ErrInvalidPaginationParams
	}
	return s.events.GetByOrganizationID(orgID, limit, offset)
}

package service

import (
	"context"
	"crypto/rand"
	"encoding/hex"
	"errors"
	"fmt"
	"time"

	"timetracker-backend/internal/database/models"
	apperrors "timetracker-backend/internal/errors"
	"timetracker-backend/internal/logger"
	"timetracker-backend/internal/repository"
	"timetracker-backend/internal/tenancy"

	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

// InviteMemberRequest represents the request to invite a user into the
// active organization.
type InviteMemberRequest struct {
	Email    string                `json:"email" validate:"required,email,max=255"`
	FullName string                `json:"full_name" validate:"max=200"`
	Role     models.MembershipRole `json:"role" validate:"required"`
}

// UpdateMemberRoleRequest represents the request to change a member's role.
type UpdateMemberRoleRequest struct {
	Role models.MembershipRole `json:"role" validate:"required"`
}

// MembershipService handles membership lifecycle within the active
// organization. Every mutation that changes the billable seat count
// triggers a provider sync; the local change is authoritative and is
// never rolled back on a sync failure.
type MembershipService struct {
	memberships repository.MembershipRepositoryInterface
	users       repository.UserRepositoryInterface
	orgs        repository.OrganizationRepositoryInterface
	seatSync    *SeatSyncService
	validator   *validator.Validate
	log         *logger.Logger
}

// NewMembershipService creates a new membership service
func NewMembershipService(
	memberships repository.MembershipRepositoryInterface,
	users repository.UserRepositoryInterface,
	orgs repository.OrganizationRepositoryInterface,
	seatSync *SeatSyncService,
) *MembershipService {
	return &MembershipService{
		memberships: memberships,
		users:       users,
		orgs:        orgs,
		seatSync:    seatSync,
		validator:   validator.New(),
		log:         logger.New(),
	}
}

// Invite creates an invited membership for the given email address. The
// seat allowance is checked up front: a denied invitation leaves no
// membership row behind. Only admins may invite.
func (s *MembershipService) Invite(ctx context.Context, req *InviteMemberRequest) (*models.Membership, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, apperrors.NewValidationError("request", err.Error())
	}
	if !req.Role.IsValid() {
		return nil, apperrors.NewValidationError("role", fmt.Sprintf("invalid role: %s", req.Role))
	}
	if err := requireRole(ctx, models.MembershipRoleAdmin); err != nil {
		return nil, err
	}

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

	if err := s.seatSync.HasAvailableSeat(ctx, org); err != nil {
		return nil, err
	}

	user, err := s.findOrCreateUser(req.Email, req.FullName)
	if err != nil {
		return nil, err
	}

	if existing, err := s.memberships.GetByOrgAndUser(orgID, user.ID); err == nil {
		if existing.Status == models.MembershipStatusRemoved {
			return s.reinvite(ctx, existing, req.Role)
		}
		return nil, apperrors.ErrMembershipExists
	} else if !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, fmt.Errorf("failed to check existing membership: %w", err)
	}

	token, err := newInvitationToken()
	if err != nil {
		return nil, err
	}
	membership := &models.Membership{
		OrganizationID:  orgID,
		UserID:          user.ID,
		Role:            req.Role,
		Status:          models.MembershipStatusInvited,
		InvitationToken: &token,
	}
	if err := s.memberships.Create(membership); err != nil {
		return nil, fmt.Errorf("failed to create membership: %w", err)
	}

	logger.WithContext(ctx).WithFields(map[string]interface{}{
		"membership_id": membership.ID,
		"role":          membership.Role,
	}).Info("member invited")
	return membership, nil
}

// AcceptInvitation consumes a single-use invitation token and activates
// the membership. The seat allowance is re-checked at acceptance time,
// and the new active seat is pushed to the billing provider.
func (s *MembershipService) AcceptInvitation(ctx context.Context, token string) (*models.Membership, error) {
	membership, err := s.memberships.GetByInvitationToken(token)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperrors.ErrInvitationNotFound
		}
		return nil, fmt.Errorf("failed to look up invitation: %w", err)
	}
	if membership.Status != models.MembershipStatusInvited {
		return nil, apperrors.ErrInvitationConsumed
	}

	org, err := s.orgs.GetByID(membership.OrganizationID)
	if err != nil {
		return nil, fmt.Errorf("failed to get organization: %w", err)
	}
	if err := s.seatSync.HasAvailableSeat(ctx, org); err != nil {
		return nil, err
	}

	now := time.Now().UTC()
	membership.Status = models.MembershipStatusActive
	membership.InvitationToken = nil
	membership.LastActiveAt = &now
	if err := s.memberships.Update(membership); err != nil {
		return nil, fmt.Errorf("failed to activate membership: %w", err)
	}

	s.syncAfterChange(ctx, membership.OrganizationID)
	return membership, nil
}

// Suspend marks a membership suspended, freeing its seat. Admin only.
func (s *MembershipService) Suspend(ctx context.Context, membershipID uuid.UUID) (*models.Membership, error) {
	membership, err := s.loadForAdmin(ctx, membershipID)
	if err != nil {
		return nil, err
	}
	if membership.Status != models.MembershipStatusActive {
		return nil, apperrors.NewValidationError("status", fmt.Sprintf("cannot suspend a membership in status %s", membership.Status))
	}

	membership.Status = models.MembershipStatusSuspended
	if err := s.memberships.Update(membership); err != nil {
		return nil, fmt.Errorf("failed to suspend membership: %w", err)
	}

	s.syncAfterChange(ctx, membership.OrganizationID)
	return membership, nil
}

// Reactivate returns a suspended membership to active, subject to the
// seat allowance. Admin only.
func (s *MembershipService) Reactivate(ctx context.Context, membershipID uuid.UUID) (*models.Membership, error) {
	membership, err := s.loadForAdmin(ctx, membershipID)
	if err != nil {
		return nil, err
	}
	if membership.Status != models.MembershipStatusSuspended {
		return nil, apperrors.NewValidationError("status", fmt.Sprintf("cannot reactivate a membership in status %s", membership.Status))
	}

	org, err := s.orgs.GetByID(membership.OrganizationID)
	if err != nil {
		return nil, fmt.Errorf("failed to get organization: %w", err)
	}
	if err := s.seatSync.HasAvailableSeat(ctx, org); err != nil {
		return nil, err
	}

	membership.Status = models.MembershipStatusActive
	if err := s.memberships.Update(membership); err != nil {
		return nil, fmt.Errorf("failed to reactivate membership: %w", err)
	}

	s.syncAfterChange(ctx, membership.OrganizationID)
	return membership, nil
}

// Remove marks a membership removed. The row is kept for audit; the
// seat is freed and synced. Admin only.
func (s *MembershipService) Remove(ctx context.Context, membershipID uuid.UUID) error {
	membership, err := s.loadForAdmin(ctx, membershipID)
	if err != nil {
		return err
	}
	if membership.Status == models.MembershipStatusRemoved {
		return nil
	}

	freedSeat := membership.CountsTowardSeats()
	membership.Status = models.MembershipStatusRemoved
	membership.InvitationToken = nil
	if err := s.memberships.Update(membership); err != nil {
		return fmt.Errorf("failed to remove membership: %w", err)
	}

	if freedSeat {
		s.syncAfterChange(ctx, membership.OrganizationID)
	}
	return nil
}

// UpdateRole changes a member's role. Admin only.
func (s *MembershipService) UpdateRole(ctx context.Context, membershipID uuid.UUID, req *UpdateMemberRoleRequest) (*models.Membership, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, apperrors.NewValidationError("request", err.Error())
	}
	if !req.Role.IsValid() {
		return nil, apperrors.NewValidationError("role", fmt.Sprintf("invalid role: %s", req.Role))
	}

	membership, err := s.loadForAdmin(ctx, membershipID)
	if err != nil {
		return nil, err
	}

	membership.Role = req.Role
	if err := s.memberships.Update(membership); err != nil {
		return nil, fmt.Errorf("failed to update membership role: %w", err)
	}
	return membership, nil
}

// List returns the memberships of the active organization with pagination.
func (s *MembershipService) List(ctx context.Context, limit, offset int) ([]models.Membership, int64, error) {
	orgID, err := tenancy.OrganizationID(ctx)
	if err != nil {
		return nil, 0, err
	}
	if limit <= 0 || limit > 100 || offset < 0 {
		return nil, 0, apperrors.ErrInvalidPaginationParams
	}
	return s.memberships.GetByOrganizationID(orgID, limit, offset)
}

// loadForAdmin fetches a membership and verifies both the caller's admin
// role and the membership's tenancy.
func (s *MembershipService) loadForAdmin(ctx context.Context, membershipID uuid.UUID) (*models.Membership, error) {
	if err := requireRole(ctx, models.MembershipRoleAdmin); err != nil {
		return nil, err
	}
	membership, err := s.memberships.GetByID(membershipID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperrors.ErrMembershipNotFound
		}
		return nil, fmt.Errorf("failed to get membership: %w", err)
	}
	if err := tenancy.VerifySameOrganization(ctx, membership); err != nil {
		// Cross-tenant identifiers are reported as not found so the
		// response does not confirm the row exists.
		return nil, apperrors.ErrMembershipNotFound
	}
	return membership, nil
}

func (s *MembershipService) reinvite(ctx context.Context, membership *models.Membership, role models.MembershipRole) (*models.Membership, error) {
	token, err := newInvitationToken()
	if err != nil {
		return nil, err
	}
	membership.Status = models.MembershipStatusInvited
	membership.Role = role
	membership.InvitationToken = &token
	if err := s.memberships.Update(membership); err != nil {
		return nil, fmt.Errorf("failed to reinvite member: %w", err)
	}
	return membership, nil
}

func (s *MembershipService) findOrCreateUser(email, fullName string) (*models.User, error) {
	user, err := s.users.GetByEmail(email)
	if err == nil {
		return user, nil
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, fmt.Errorf("failed to look up user: %w", err)
	}

	if fullName == "" {
		fullName = email
	}
	user = &models.User{Email: email, FullName: fullName}
	if err := s.users.Create(user); err != nil {
		return nil, fmt.Errorf("failed to create user: %w", err)
	}
	return user, nil
}

// syncAfterChange pushes the new seat count to the provider. Failures
// are already recorded as internal events by the seat sync service; the
// membership change stands either way.
func (s *MembershipService) syncAfterChange(ctx context.Context, orgID uuid.UUID) {
	if _, err := s.seatSync.SyncSeats(ctx, orgID); err != nil {
		logger.WithContext(ctx).WithError(err).Warn("seat sync after membership change failed")
	}
}

// requireRole checks the caller's role from the request context.
func requireRole(ctx context.Context, role models.MembershipRole) error {
	if tenancy.IsSystem(ctx) {
		return nil
	}
	if current, ok := tenancy.Role(ctx); !ok || current != role {
		return apperrors.ErrAccessDenied
	}
	return nil
}

func newInvitationToken() (string, error) {
	buf := make([]byte, 32)
	if _, err := rand.Read(buf); err != nil {
		return "", fmt.Errorf("failed to generate invitation token: %w", err)
	}
	return hex.EncodeToString(buf), nil
}

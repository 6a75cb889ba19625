package repository

import (
	"timetracker-backend/internal/database/models"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// MembershipRepository handles database operations for memberships
type MembershipRepository struct {
	db *gorm.DB
}

// NewMembershipRepository creates a new membership repository
func NewMembershipRepository(db *gorm.DB) *MembershipRepository {
	return &MembershipRepository{db: db}
}

// Create creates a new membership
func (r *MembershipRepository) Create(membership *models.Membership) error {
	return r.db.Create(membership).Error
}

// GetByID retrieves a membership by ID
func (r *MembershipRepository) GetByID(id uuid.UUID) (*models.Membership, error) {
	var membership models.Membership
	err := r.db.First(&membership, "id = ?", id).Error
	if err != nil {
		return nil, err
	}
	return &membership, nil
}

// GetByOrgAndUser retrieves the membership row for a user in an organization
func (r *MembershipRepository) GetByOrgAndUser(orgID, userID uuid.UUID) (*models.Membership, error) {
	var membership models.Membership
	err := r.db.First(&membership, "organization_id = ? AND user_id = ?", orgID, userID).Error
	if err != nil {
		return nil, err
	}
	return &membership, nil
}

// GetByInvitationToken retrieves a membership by its single-use invitation token
func (r *MembershipRepository) GetByInvitationToken(token string) (*models.Membership, error) {
	var membership models.Membership
	err := r.db.First(&membership, "invitation_token = ?", token).Error
	if err != nil {
		return nil, err
	}
	return &membership, nil
}

// GetActiveByUserID retrieves all active memberships of a user across organizations
func (r *MembershipRepository) GetActiveByUserID(userID uuid.UUID) ([]models.Membership, error) {
	var memberships []models.Membership
	err := r.db.
		Where("user_id = ? AND status = ?", userID, models.MembershipStatusActive).
		Order("created_at").
		Find(&memberships).Error
	if err != nil {
		return nil, err
	}
	return memberships, nil
}

// GetByOrganizationID retrieves memberships of an organization with pagination
func (r *MembershipRepository) GetByOrganizationID(orgID uuid.UUID, limit, offset int) ([]models.Membership, int64, error) {
	var memberships []models.Membership
	var total int64

	query := r.db.Model(&models.Membership{}).Where("organization_id = ?", orgID)
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	err := query.Limit(limit).Offset(offset).Order("created_at").Find(&memberships).Error
	if err != nil {
		return nil, 0, err
	}

	return memberships, total, nil
}

// CountActiveByOrganization counts the active memberships of an
// organization. This count is the seat usage pushed to the provider.
func (r *MembershipRepository) CountActiveByOrganization(orgID uuid.UUID) (int64, error) {
	var count int64
	err := r.db.Model(&models.Membership{}).
		Where("organization_id = ? AND status = ?", orgID, models.MembershipStatusActive).
		Count(&count).Error
	return count, err
}

// Update updates a membership
func (r *MembershipRepository) Update(membership *models.Membership) error {
	return r.db.Save(membership).Error
}

// Delete deletes a membership
func (r *MembershipRepository) Delete(id uuid.UUID) error {
	return r.db.Delete(&models.Membership{}, "id = ?", id).Error
}

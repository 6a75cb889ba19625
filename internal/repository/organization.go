package repository

import (
	"timetracker-backend/internal/database/models"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// OrganizationRepository handles database operations for organizations
type OrganizationRepository struct {
	db *gorm.DB
}

// NewOrganizationRepository creates a new organization repository
func NewOrganizationRepository(db *gorm.DB) *OrganizationRepository {
	return &OrganizationRepository{db: db}
}

// Create creates a new organization
func (r *OrganizationRepository) Create(org *models.Organization) error {
	return r.db.Create(org).Error
}

// GetByID retrieves an organization by ID
func (r *OrganizationRepository) GetByID(id uuid.UUID) (*models.Organization, error) {
	var org models.Organization
	err := r.db.First(&org, "id = ?", id).Error
	if err != nil {
		return nil, err
	}
	return &org, nil
}

// GetBySlug retrieves an organization by slug
func (r *OrganizationRepository) GetBySlug(slug string) (*models.Organization, error) {
	var org models.Organization
	err := r.db.First(&org, "slug = ?", slug).Error
	if err != nil {
		return nil, err
	}
	return &org, nil
}

// GetByBillingCustomerID retrieves an organization by its provider customer identifier
func (r *OrganizationRepository) GetByBillingCustomerID(customerID string) (*models.Organization, error) {
	var org models.Organization
	err := r.db.First(&org, "billing_customer_id = ?", customerID).Error
	if err != nil {
		return nil, err
	}
	return &org, nil
}

// GetByBillingSubscriptionID retrieves an organization by its provider subscription identifier
func (r *OrganizationRepository) GetByBillingSubscriptionID(subscriptionID string) (*models.Organization, error) {
	var org models.Organization
	err := r.db.First(&org, "billing_subscription_id = ?", subscriptionID).Error
	if err != nil {
		return nil, err
	}
	return &org, nil
}

// GetAll retrieves all organizations with pagination
func (r *OrganizationRepository) GetAll(limit, offset int) ([]models.Organization, int64, error) {
	var orgs []models.Organization
	var total int64

	if err := r.db.Model(&models.Organization{}).Count(&total).Error; err != nil {
		return nil, 0, err
	}

	err := r.db.Limit(limit).Offset(offset).Order("created_at").Find(&orgs).Error
	if err != nil {
		return nil, 0, err
	}

	return orgs, total, nil
}

// GetAllWithProviderSubscription retrieves the organizations that mirror a
// provider subscription; these are the reconciliation targets.
func (r *OrganizationRepository) GetAllWithProviderSubscription() ([]models.Organization, error) {
	var orgs []models.Organization
	err := r.db.Where("billing_subscription_id <> ''").Order("created_at").Find(&orgs).Error
	if err != nil {
		return nil, err
	}
	return orgs, nil
}

// Update updates an organization
func (r *OrganizationRepository) Update(org *models.Organization) error {
	return r.db.Save(org).Error
}

// ApplyBillingUpdate writes billing fields through an optimistic check on
// billing_version so a concurrent webhook application and a concurrent
// reconciliation correction cannot overwrite each other.
func (r *OrganizationRepository) ApplyBillingUpdate(id uuid.UUID, expectedVersion int, updates map[string]interface{}) (int64, error) {
	merged := make(map[string]interface{}, len(updates)+1)
	for k, v := range updates {
		merged[k] = v
	}
	merged["billing_version"] = expectedVersion + 1

	res := r.db.Model(&models.Organization{}).
		Where("id = ? AND billing_version = ?", id, expectedVersion).
		Updates(merged)
	return res.RowsAffected, res.Error
}

// SoftDelete marks an organization as deleted without touching its audit
// trail; subscription events are detached separately.
func (r *OrganizationRepository) SoftDelete(id uuid.UUID) error {
	return r.db.Delete(&models.Organization{}, "id = ?", id).Error
}

package repository

import (
	"context"

	"timetracker-backend/internal/database/models"

	"github.com/google/uuid"
)

//go:generate mockgen -source=interfaces.go -destination=../mocks/repository_mocks.go -package=mocks

// OrganizationRepositoryInterface defines the interface for organization repository operations
type OrganizationRepositoryInterface interface {
	Create(org *models.Organization) error
	GetByID(id uuid.UUID) (*models.Organization, error)
	GetBySlug(slug string) (*models.Organization, error)
	GetByBillingCustomerID(customerID string) (*models.Organization, error)
	GetByBillingSubscriptionID(subscriptionID string) (*models.Organization, error)
	GetAll(limit, offset int) ([]models.Organization, int64, error)
	GetAllWithProviderSubscription() ([]models.Organization, error)
	Update(org *models.Organization) error
	// ApplyBillingUpdate performs a compare-and-set write of billing
	// fields guarded by billing_version. It returns the number of rows
	// affected; zero means a concurrent writer won.
	ApplyBillingUpdate(id uuid.UUID, expectedVersion int, updates map[string]interface{}) (int64, error)
	SoftDelete(id uuid.UUID) error
}

// UserRepositoryInterface defines the interface for user repository operations
type UserRepositoryInterface interface {
	Create(user *models.User) error
	GetByID(id uuid.UUID) (*models.User, error)
	GetByEmail(email string) (*models.User, error)
	Update(user *models.User) error
}

// MembershipRepositoryInterface defines the interface for membership repository operations
type MembershipRepositoryInterface interface {
	Create(membership *models.Membership) error
	GetByID(id uuid.UUID) (*models.Membership, error)
	GetByOrgAndUser(orgID, userID uuid.UUID) (*models.Membership, error)
	GetByInvitationToken(token string) (*models.Membership, error)
	GetActiveByUserID(userID uuid.UUID) ([]models.Membership, error)
	GetByOrganizationID(orgID uuid.UUID, limit, offset int) ([]models.Membership, int64, error)
	CountActiveByOrganization(orgID uuid.UUID) (int64, error)
	Update(membership *models.Membership) error
	Delete(id uuid.UUID) error
}

// SubscriptionEventRepositoryInterface defines the interface for subscription event repository operations
type SubscriptionEventRepositoryInterface interface {
	Create(event *models.SubscriptionEvent) error
	GetByID(id uuid.UUID) (*models.SubscriptionEvent, error)
	GetByProviderEventID(providerEventID string) (*models.SubscriptionEvent, error)
	GetUnprocessed(limit int) ([]models.SubscriptionEvent, error)
	GetByOrganizationID(orgID uuid.UUID, limit, offset int) ([]models.SubscriptionEvent, int64, error)
	Update(event *models.SubscriptionEvent) error
	// DetachOrganization nulls the organization reference on all events of
	// an offboarded tenant so the audit trail survives tenant deletion.
	DetachOrganization(orgID uuid.UUID) error
}

// ProjectRepositoryInterface defines the interface for tenant-scoped project repository operations
type ProjectRepositoryInterface interface {
	Create(ctx context.Context, project *models.Project) error
	GetByID(ctx context.Context, id uuid.UUID) (*models.Project, error)
	GetByName(ctx context.Context, name string) (*models.Project, error)
	List(ctx context.Context, limit, offset int) ([]models.Project, int64, error)
	Update(ctx context.Context, project *models.Project) error
	Delete(ctx context.Context, id uuid.UUID) error
}

// TimeEntryRepositoryInterface defines the interface for tenant-scoped time entry repository operations
type TimeEntryRepositoryInterface interface {
	Create(ctx context.Context, entry *models.TimeEntry) error
	GetByID(ctx context.Context, id uuid.UUID) (*models.TimeEntry, error)
	ListByProject(ctx context.Context, projectID uuid.UUID, limit, offset int) ([]models.TimeEntry, int64, error)
	Update(ctx context.Context, entry *models.TimeEntry) error
	Delete(ctx context.Context, id uuid.UUID) error
}

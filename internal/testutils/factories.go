package testutils

import (
	"fmt"
	"time"

	"timetracker-backend/internal/database/models"

	"github.com/google/uuid"
)

// OrganizationFactory provides methods to create test Organization data
type OrganizationFactory struct{}

// NewOrganizationFactory creates a new OrganizationFactory
func NewOrganizationFactory() *OrganizationFactory {
	return &OrganizationFactory{}
}

// Create creates a test Organization with default values
func (f *OrganizationFactory) Create() *models.Organization {
	id := uuid.New()
	return &models.Organization{
		BaseModel: models.BaseModel{
			ID:        id,
			CreatedAt: time.Now(),
			UpdatedAt: time.Now(),
		},
		Slug:               "org-" + id.String()[:8],
		DisplayName:        "Test Organization",
		Plan:               "team",
		SubscriptionStatus: models.SubscriptionStatusActive,
		SeatQuantity:       1,
		IsActive:           true,
	}
}

// WithSlug sets a custom slug for the organization
func (f *OrganizationFactory) WithSlug(slug string) *models.Organization {
	org := f.Create()
	org.Slug = slug
	return org
}

// WithPlan sets the plan tag for the organization
func (f *OrganizationFactory) WithPlan(plan string) *models.Organization {
	org := f.Create()
	org.Plan = plan
	return org
}

// WithSubscription links the organization to a provider subscription
func (f *OrganizationFactory) WithSubscription(customerID, subscriptionID string, status models.SubscriptionStatus) *models.Organization {
	org := f.Create()
	org.BillingCustomerID = customerID
	org.BillingSubscriptionID = subscriptionID
	org.SubscriptionStatus = status
	return org
}

// UserFactory provides methods to create test User data
type UserFactory struct{}

// NewUserFactory creates a new UserFactory
func NewUserFactory() *UserFactory {
	return &UserFactory{}
}

// Create creates a test User with default values
func (f *UserFactory) Create() *models.User {
	id := uuid.New()
	return &models.User{
		BaseModel: models.BaseModel{
			ID:        id,
			CreatedAt: time.Now(),
			UpdatedAt: time.Now(),
		},
		Email:    fmt.Sprintf("user-%s@test.com", id.String()[:8]),
		FullName: "Test User",
	}
}

// WithEmail sets a custom email for the user
func (f *UserFactory) WithEmail(email string) *models.User {
	user := f.Create()
	user.Email = email
	return user
}

// MembershipFactory provides methods to create test Membership data
type MembershipFactory struct{}

// NewMembershipFactory creates a new MembershipFactory
func NewMembershipFactory() *MembershipFactory {
	return &MembershipFactory{}
}

// Create creates an active member Membership binding the given user and organization
func (f *MembershipFactory) Create(orgID, userID uuid.UUID) *models.Membership {
	return &models.Membership{
		BaseModel: models.BaseModel{
			ID:        uuid.New(),
			CreatedAt: time.Now(),
			UpdatedAt: time.Now(),
		},
		OrganizationID: orgID,
		UserID:         userID,
		Role:           models.MembershipRoleMember,
		Status:         models.MembershipStatusActive,
	}
}

// WithRole sets the role on a new membership
func (f *MembershipFactory) WithRole(orgID, userID uuid.UUID, role models.MembershipRole) *models.Membership {
	m := f.Create(orgID, userID)
	m.Role = role
	return m
}

// Invited creates an invited membership carrying a token
func (f *MembershipFactory) Invited(orgID, userID uuid.UUID, token string) *models.Membership {
	m := f.Create(orgID, userID)
	m.Status = models.MembershipStatusInvited
	m.InvitationToken = &token
	return m
}

// SubscriptionEventFactory provides methods to create test SubscriptionEvent data
type SubscriptionEventFactory struct{}

// NewSubscriptionEventFactory creates a new SubscriptionEventFactory
func NewSubscriptionEventFactory() *SubscriptionEventFactory {
	return &SubscriptionEventFactory{}
}

// Create creates an unprocessed provider event for the given organization
func (f *SubscriptionEventFactory) Create(orgID uuid.UUID, eventType models.SubscriptionEventType) *models.SubscriptionEvent {
	id := uuid.New()
	providerEventID := "evt_" + id.String()[:12]
	return &models.SubscriptionEvent{
		BaseModel: models.BaseModel{
			ID:        id,
			CreatedAt: time.Now(),
			UpdatedAt: time.Now(),
		},
		ProviderEventID: &providerEventID,
		Type:            eventType,
		OrganizationID:  &orgID,
		CustomerID:      "cus_test",
		SubscriptionID:  "sub_test",
		OccurredAt:      time.Now().UTC(),
	}
}

// Manual creates an internally recorded event with no provider id
func (f *SubscriptionEventFactory) Manual(orgID uuid.UUID, eventType models.SubscriptionEventType) *models.SubscriptionEvent {
	event := f.Create(orgID, eventType)
	event.ProviderEventID = nil
	return event
}

// ProjectFactory provides methods to create test Project data
type ProjectFactory struct{}

// NewProjectFactory creates a new ProjectFactory
func NewProjectFactory() *ProjectFactory {
	return &ProjectFactory{}
}

// Create creates a test Project in the given organization
func (f *ProjectFactory) Create(orgID uuid.UUID) *models.Project {
	id := uuid.New()
	return &models.Project{
		BaseModel: models.BaseModel{
			ID:        id,
			CreatedAt: time.Now(),
			UpdatedAt: time.Now(),
		},
		OrganizationID: orgID,
		Name:           "Project " + id.String()[:8],
		Description:    "A test project",
	}
}

// TimeEntryFactory provides methods to create test TimeEntry data
type TimeEntryFactory struct{}

// NewTimeEntryFactory creates a new TimeEntryFactory
func NewTimeEntryFactory() *TimeEntryFactory {
	return &TimeEntryFactory{}
}

// Create creates a test TimeEntry for the given project and membership
func (f *TimeEntryFactory) Create(orgID, projectID, membershipID uuid.UUID) *models.TimeEntry {
	return &models.TimeEntry{
		BaseModel: models.BaseModel{
			ID:        uuid.New(),
			CreatedAt: time.Now(),
			UpdatedAt: time.Now(),
		},
		OrganizationID: orgID,
		ProjectID:      projectID,
		MembershipID:   membershipID,
		Description:    "worked on tests",
		StartedAt:      time.Now().Add(-time.Hour),
		Minutes:        60,
	}
}

// FactorySet bundles all factories for convenience
type FactorySet struct {
	Organizations *OrganizationFactory
	Users         *UserFactory
	Memberships   *MembershipFactory
	Events        *SubscriptionEventFactory
	Projects      *ProjectFactory
	TimeEntries   *TimeEntryFactory
}

// NewFactorySet creates a FactorySet with all factories
func NewFactorySet() *FactorySet {
	return &FactorySet{
		Organizations: NewOrganizationFactory(),
		Users:         NewUserFactory(),
		Memberships:   NewMembershipFactory(),
		Events:        NewSubscriptionEventFactory(),
		Projects:      NewProjectFactory(),
		TimeEntries:   NewTimeEntryFactory(),
	}
}

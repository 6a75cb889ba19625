package models

import (
	"time"

	"gorm.io/gorm"
)

// Organization represents the root entity for multi-tenancy. All business
// data is partitioned by its identifier and every subscription mirrors
// exactly one provider subscription.
type Organization struct {
	BaseModel
	Slug        string `json:"slug" gorm:"uniqueIndex;not null;size:100" validate:"required,min=1,max=100"`
	DisplayName string `json:"display_name" gorm:"not null;size:200" validate:"required,max=200"`
	Plan        string `json:"plan" gorm:"not null;size:50;default:'free'" validate:"required,max=50"`

	// Billing mirror of the external provider. SubscriptionStatus and
	// SeatQuantity are written only by the subscription state machine,
	// the seat sync service and the reconciliation job, always through a
	// compare-and-set on BillingVersion.
	SubscriptionStatus    SubscriptionStatus `json:"subscription_status" gorm:"type:varchar(20);not null;default:'none';index" validate:"required"`
	SeatQuantity          int                `json:"seat_quantity" gorm:"not null;default:0;check:seat_quantity >= 0" validate:"min=0"`
	BillingCustomerID     string             `json:"billing_customer_id" gorm:"size:191;index"`
	BillingSubscriptionID string             `json:"billing_subscription_id" gorm:"size:191;index"`
	NextBillingAt         *time.Time         `json:"next_billing_at,omitempty"`
	BillingIssueAt        *time.Time         `json:"billing_issue_at,omitempty"`
	TrialEndsAt           *time.Time         `json:"trial_ends_at,omitempty"`

	// LastBillingEventAt is the provider timestamp of the last applied
	// billing event. The reconciliation job uses it as a fencing token so
	// it never overwrites state written by a webhook that arrived after
	// its snapshot.
	LastBillingEventAt *time.Time `json:"last_billing_event_at,omitempty"`
	BillingVersion     int        `json:"billing_version" gorm:"not null;default:0"`

	IsActive  bool           `json:"is_active" gorm:"default:true"`
	DeletedAt gorm.DeletedAt `json:"deleted_at,omitempty" gorm:"index"`

	// Relationships
	Memberships []Membership `json:"memberships,omitempty" gorm:"foreignKey:OrganizationID"`
	Projects    []Project    `json:"projects,omitempty" gorm:"foreignKey:OrganizationID"`
}

// TableName returns the table name for Organization
func (Organization) TableName() string {
	return "organizations"
}

// HasProviderSubscription reports whether the organization is linked to a
// provider subscription and therefore participates in reconciliation.
func (o *Organization) HasProviderSubscription() bool {
	return o.BillingSubscriptionID != ""
}

// BillingIssueSince returns the time a payment issue was first recorded,
// or zero when billing is healthy.
func (o *Organization) BillingIssueSince() time.Time {
	if o.BillingIssueAt == nil {
		return time.Time{}
	}
	return *o.BillingIssueAt
}

package models

import (
	"encoding/json"
	"time"

	"github.com/google/uuid"
)

// SubscriptionEvent is the append-only audit record of a billing event.
// Rows are created on ingestion with Processed=false and mutated to
// Processed=true (or get an error recorded) by the state machine. They
// are never deleted; tenant offboarding detaches the organization
// reference instead of cascading into the audit trail.
//
// ProviderEventID is the idempotency key: when non-null it is unique, so
// re-delivered webhooks collapse onto the existing row. Manually
// triggered entries carry a null provider id and are accepted as
// best-effort, non-deduplicated records.
type SubscriptionEvent struct {
	BaseModel
	ProviderEventID *string               `json:"provider_event_id,omitempty" gorm:"size:191;uniqueIndex"`
	Type            SubscriptionEventType `json:"type" gorm:"type:varchar(100);not null;index" validate:"required"`
	Payload         json.RawMessage       `json:"payload,omitempty" gorm:"type:jsonb"`

	// OrganizationID is nullable so the audit row survives tenant
	// offboarding (the purge path nulls it rather than deleting).
	OrganizationID *uuid.UUID `json:"organization_id,omitempty" gorm:"type:uuid;index:idx_subscription_events_org_processed"`

	// Transaction identifiers extracted from the payload.
	CustomerID     string `json:"customer_id" gorm:"size:191;index"`
	SubscriptionID string `json:"subscription_id" gorm:"size:191;index"`
	InvoiceID      string `json:"invoice_id" gorm:"size:191"`
	ChargeID       string `json:"charge_id" gorm:"size:191"`
	RefundID       string `json:"refund_id" gorm:"size:191"`

	AmountCents int64  `json:"amount_cents"`
	Currency    string `json:"currency" gorm:"size:3"`

	// Audit trail of the applied transition.
	PreviousStatus SubscriptionStatus `json:"previous_status" gorm:"type:varchar(20)"`
	NewStatus      SubscriptionStatus `json:"new_status" gorm:"type:varchar(20)"`
	PreviousSeats  int                `json:"previous_seats"`
	NewSeats       int                `json:"new_seats"`

	// OccurredAt is the provider's own timestamp for the event, used for
	// stale-event detection under out-of-order delivery.
	OccurredAt time.Time `json:"occurred_at" gorm:"not null;index"`

	Processed  bool    `json:"processed" gorm:"not null;default:false;index:idx_subscription_events_org_processed"`
	Error      *string `json:"error,omitempty" gorm:"type:text"`
	RetryCount int     `json:"retry_count" gorm:"not null;default:0"`
	Notes      string  `json:"notes" gorm:"type:text"`

	// Relationships
	Organization *Organization `json:"organization,omitempty" gorm:"foreignKey:OrganizationID"`
}

// TableName returns the table name for SubscriptionEvent
func (SubscriptionEvent) TableName() string {
	return "subscription_events"
}

// IsManual reports whether the event was recorded internally rather than
// delivered by the provider. Manual events have no idempotency key.
func (e *SubscriptionEvent) IsManual() bool {
	return e.ProviderEventID == nil
}

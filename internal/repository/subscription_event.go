package repository

import (
	"timetracker-backend/internal/database/models"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// SubscriptionEventRepository handles database operations for the
// append-only billing event log.
type SubscriptionEventRepository struct {
	db *gorm.DB
}

// NewSubscriptionEventRepository creates a new subscription event repository
func NewSubscriptionEventRepository(db *gorm.DB) *SubscriptionEventRepository {
	return &SubscriptionEventRepository{db: db}
}

// Create appends a new event to the log
func (r *SubscriptionEventRepository) Create(event *models.SubscriptionEvent) error {
	return r.db.Create(event).Error
}

// GetByID retrieves an event by ID
func (r *SubscriptionEventRepository) GetByID(id uuid.UUID) (*models.SubscriptionEvent, error) {
	var event models.SubscriptionEvent
	err := r.db.First(&event, "id = ?", id).Error
	if err != nil {
		return nil, err
	}
	return &event, nil
}

// GetByProviderEventID retrieves an event by its provider identifier, the
// idempotency key of webhook ingestion.
func (r *SubscriptionEventRepository) GetByProviderEventID(providerEventID string) (*models.SubscriptionEvent, error) {
	var event models.SubscriptionEvent
	err := r.db.First(&event, "provider_event_id = ?", providerEventID).Error
	if err != nil {
		return nil, err
	}
	return &event, nil
}

// GetUnprocessed retrieves events awaiting processing or retaining an
// error, oldest first, for operator inspection.
func (r *SubscriptionEventRepository) GetUnprocessed(limit int) ([]models.SubscriptionEvent, error) {
	var events []models.SubscriptionEvent
	err := r.db.
		Where("processed = ?", false).
		Order("occurred_at").
		Limit(limit).
		Find(&events).Error
	if err != nil {
		return nil, err
	}
	return events, nil
}

// GetByOrganizationID retrieves an organization's events with pagination, newest first
func (r *SubscriptionEventRepository) GetByOrganizationID(orgID uuid.UUID, limit, offset int) ([]models.SubscriptionEvent, int64, error) {
	var events []models.SubscriptionEvent
	var total int64

	query := r.db.Model(&models.SubscriptionEvent{}).Where("organization_id = ?", orgID)
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	err := query.Limit(limit).Offset(offset).Order("occurred_at DESC").Find(&events).Error
	if err != nil {
		return nil, 0, err
	}

	return events, total, nil
}

// Update updates an event row (processing outcome, retry count, notes)
func (r *SubscriptionEventRepository) Update(event *models.SubscriptionEvent) error {
	return r.db.Save(event).Error
}

// DetachOrganization nulls the organization reference on all events of an
// offboarded tenant. The audit rows survive for the retention period;
// they are never cascade-deleted with the organization.
func (r *SubscriptionEventRepository) DetachOrganization(orgID uuid.UUID) error {
	return r.db.Model(&models.SubscriptionEvent{}).
		Where("organization_id = ?", orgID).
		Updates(map[string]interface{}{
			"organization_id": nil,
			"notes":           gorm.Expr("TRIM(notes || ' [organization offboarded]')"),
		}).Error
}

package service

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"timetracker-backend/internal/config"
	"timetracker-backend/internal/database/models"
	apperrors "timetracker-backend/internal/errors"
	"timetracker-backend/internal/logger"
	"timetracker-backend/internal/repository"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// SeatSyncService keeps the billing provider's subscription quantity in
// step with the count of active memberships. Syncs for the same
// organization are serialized; the membership change itself is never
// rolled back when the provider push fails.
type SeatSyncService struct {
	orgs        repository.OrganizationRepositoryInterface
	memberships repository.MembershipRepositoryInterface
	events      repository.SubscriptionEventRepositoryInterface
	provider    BillingProvider
	plans       *config.PlanCatalog
	prorate     bool
	log         *logger.Logger

	mu    sync.Mutex
	locks map[uuid.UUID]*sync.Mutex
}

// NewSeatSyncService creates a new seat synchronization service
func NewSeatSyncService(
	orgs repository.OrganizationRepositoryInterface,
	memberships repository.MembershipRepositoryInterface,
	events repository.SubscriptionEventRepositoryInterface,
	provider BillingProvider,
	plans *config.PlanCatalog,
	prorate bool,
) *SeatSyncService {
	return &SeatSyncService{
		orgs:        orgs,
		memberships: memberships,
		events:      events,
		provider:    provider,
		plans:       plans,
		prorate:     prorate,
		log:         logger.New(),
		locks:       make(map[uuid.UUID]*sync.Mutex),
	}
}

// HasAvailableSeat reports whether the organization can take one more
// active member under its plan allowance. Callers check this before
// creating an invitation so a denied invite leaves no row behind.
func (s *SeatSyncService) HasAvailableSeat(ctx context.Context, org *models.Organization) error {
	count, err := s.memberships.CountActiveByOrganization(org.ID)
	if err != nil {
		return fmt.Errorf("failed to count active memberships: %w", err)
	}
	allowance := s.plans.SeatAllowance(org.Plan)
	if int(count) >= allowance {
		return fmt.Errorf("%w: plan %q allows %d seats, %d in use", apperrors.ErrSeatLimitExceeded, org.Plan, allowance, count)
	}
	return nil
}

// SyncSeats recomputes the active seat count for an organization and
// pushes it to the billing provider. It returns the count that was
// synchronized. A provider failure is recorded as an internal event and
// surfaced as ErrSyncFailure; local membership state stays authoritative.
func (s *SeatSyncService) SyncSeats(ctx context.Context, orgID uuid.UUID) (int, error) {
	lock := s.orgLock(orgID)
	lock.Lock()
	defer lock.Unlock()

	org, err := s.orgs.GetByID(orgID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return 0, apperrors.ErrOrganizationNotFound
		}
		return 0, fmt.Errorf("failed to get organization: %w", err)
	}

	count, err := s.memberships.CountActiveByOrganization(orgID)
	if err != nil {
		return 0, fmt.Errorf("failed to count active memberships: %w", err)
	}
	quantity := int(count)

	if org.HasProviderSubscription() {
		if err := s.provider.UpdateSubscriptionQuantity(ctx, org.BillingSubscriptionID, quantity, s.prorate); err != nil {
			s.recordSyncFailure(ctx, org, quantity, err)
			return quantity, fmt.Errorf("%w: %v", apperrors.ErrSyncFailure, err)
		}
	}

	if err := s.storeSeatQuantity(org, quantity); err != nil {
		return quantity, err
	}

	logger.WithContext(ctx).WithFields(map[string]interface{}{
		"organization_id": orgID,
		"seat_quantity":   quantity,
	}).Info("seat count synchronized")
	return quantity, nil
}

// storeSeatQuantity writes the mirrored seat count under the billing
// version guard, retrying against concurrent billing writers.
func (s *SeatSyncService) storeSeatQuantity(org *models.Organization, quantity int) error {
	for attempt := 0; attempt < billingUpdateAttempts; attempt++ {
		affected, err := s.orgs.ApplyBillingUpdate(org.ID, org.BillingVersion, map[string]interface{}{
			"seat_quantity": quantity,
		})
		if err != nil {
			return fmt.Errorf("failed to store seat quantity: %w", err)
		}
		if affected > 0 {
			org.SeatQuantity = quantity
			org.BillingVersion++
			return nil
		}
		fresh, err := s.orgs.GetByID(org.ID)
		if err != nil {
			return fmt.Errorf("failed to reload organization: %w", err)
		}
		*org = *fresh
		if org.SeatQuantity == quantity {
			return nil
		}
	}
	return apperrors.ErrConcurrentBillingUpdate
}

// recordSyncFailure logs a manual internal event so operators can see
// and retry failed pushes. Recording is best-effort.
func (s *SeatSyncService) recordSyncFailure(ctx context.Context, org *models.Organization, quantity int, cause error) {
	msg := cause.Error()
	event := &models.SubscriptionEvent{
		Type:           models.EventSeatSyncFailed,
		OrganizationID: &org.ID,
		SubscriptionID: org.BillingSubscriptionID,
		CustomerID:     org.BillingCustomerID,
		PreviousSeats:  org.SeatQuantity,
		NewSeats:       quantity,
		OccurredAt:     time.Now().UTC(),
		Error:          &msg,
	}
	if err := s.events.Create(event); err != nil {
		s.log.WithError(err).Error("failed to record seat sync failure event")
	}
	logger.WithContext(ctx).WithError(cause).WithFields(map[string]interface{}{
		"organization_id": org.ID,
		"seat_quantity":   quantity,
	}).Error("seat sync to billing provider failed")
}

func (s *SeatSyncService) orgLock(orgID uuid.UUID) *sync.Mutex {
	s.mu.Lock()
	defer s.mu.Unlock()
	lock, ok := s.locks[orgID]
	if !ok {
		lock = &sync.Mutex{}
		s.locks[orgID] = lock
	}
	return lock
}

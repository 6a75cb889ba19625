package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"timetracker-backend/internal/database/models"
	apperrors "timetracker-backend/internal/errors"
	"timetracker-backend/internal/logger"
	"timetracker-backend/internal/repository"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// billingUpdateAttempts bounds the optimistic-lock retry loop for a
// single transition before the event is parked with an error.
const billingUpdateAttempts = 3

// seatSyncer re-pushes a seat count to the provider. Implemented by
// SeatSyncService; declared here so manual reprocessing of a failed
// seat sync event can retry the push without a dependency cycle.
type seatSyncer interface {
	SyncSeats(ctx context.Context, orgID uuid.UUID) (int, error)
}

// SubscriptionService is the state machine that applies logged billing
// events to an organization's subscription mirror. It is the only
// writer of subscription_status outside the reconciliation job.
type SubscriptionService struct {
	events   repository.SubscriptionEventRepositoryInterface
	orgs     repository.OrganizationRepositoryInterface
	seatSync seatSyncer
	log      *logger.Logger
}

// NewSubscriptionService creates a new subscription state machine
func NewSubscriptionService(
	events repository.SubscriptionEventRepositoryInterface,
	orgs repository.OrganizationRepositoryInterface,
	seatSync seatSyncer,
) *SubscriptionService {
	return &SubscriptionService{
		events:   events,
		orgs:     orgs,
		seatSync: seatSync,
		log:      logger.New(),
	}
}

// ProcessEvent applies one subscription event. It is idempotent: a row
// already marked processed is a no-op, so replaying the same provider
// event identifier N times produces exactly one transition. On an
// unrecoverable error the event is retained with processed=false and
// the error recorded for manual reprocessing.
func (s *SubscriptionService) ProcessEvent(ctx context.Context, event *models.SubscriptionEvent) error {
	if event.Processed {
		return nil
	}

	org, err := s.resolveOrganization(event)
	if err != nil {
		s.recordError(event, err)
		return err
	}
	if event.OrganizationID == nil {
		event.OrganizationID = &org.ID
	}

	if event.Type == models.EventSeatSyncFailed {
		return s.reprocessSeatSync(ctx, event, org)
	}

	// Delivery order is not guaranteed. An event older than the last
	// applied one must not roll the status back.
	if org.LastBillingEventAt != nil && event.OccurredAt.Before(*org.LastBillingEventAt) {
		s.markProcessed(ctx, event, org.SubscriptionStatus, org.SubscriptionStatus, org.SeatQuantity, org.SeatQuantity,
			"ignored: stale event, a newer billing event was already applied")
		return nil
	}

	target, err := s.targetState(event, org)
	if err != nil {
		s.recordError(event, err)
		return err
	}

	if !org.SubscriptionStatus.CanTransitionTo(target.status) {
		err := fmt.Errorf("%w: %s -> %s on %s", apperrors.ErrInvalidTransition, org.SubscriptionStatus, target.status, event.Type)
		s.recordError(event, err)
		return err
	}

	previousStatus := org.SubscriptionStatus
	previousSeats := org.SeatQuantity

	if err := s.applyTransition(ctx, org, event, target); err != nil {
		s.recordError(event, err)
		return err
	}

	s.markProcessed(ctx, event, previousStatus, target.status, previousSeats, target.seats, "")
	logger.WithContext(ctx).WithFields(map[string]interface{}{
		"organization_id": org.ID,
		"event_type":      event.Type,
		"from":            previousStatus,
		"to":              target.status,
	}).Info("subscription transition applied")
	return nil
}

// ReprocessEvent re-runs processing of a retained event on operator request.
// The same event row is reused; no duplicate is created for the same
// provider identifier.
func (s *SubscriptionService) ReprocessEvent(ctx context.Context, eventID uuid.UUID) error {
	event, err := s.events.GetByID(eventID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return apperrors.ErrSubscriptionEventNotFound
		}
		return fmt.Errorf("failed to get subscription event: %w", err)
	}

	event.Processed = false
	event.Error = nil
	return s.ProcessEvent(ctx, event)
}

// targetState is the computed outcome of one event.
type targetState struct {
	status        models.SubscriptionStatus
	seats         int
	nextBillingAt *time.Time
	trialEndsAt   *time.Time
	billingIssue  *time.Time // nil clears the billing issue marker
}

// targetState maps an event to the resulting subscription state. The
// switch is exhaustive over the known event types; the webhook layer
// never dispatches unknown types here.
func (s *SubscriptionService) targetState(event *models.SubscriptionEvent, org *models.Organization) (targetState, error) {
	payload, err := parseEventObject(event.Payload)
	if err != nil {
		return targetState{}, fmt.Errorf("parse event payload: %w", err)
	}

	target := targetState{
		status:        org.SubscriptionStatus,
		seats:         org.SeatQuantity,
		nextBillingAt: org.NextBillingAt,
		trialEndsAt:   org.TrialEndsAt,
		billingIssue:  org.BillingIssueAt,
	}
	if payload.Quantity > 0 {
		target.seats = payload.Quantity
	}
	if t := payload.currentPeriodEnd(); t != nil {
		target.nextBillingAt = t
	}

	switch event.Type {
	case models.EventSubscriptionCreated:
		target.status = models.SubscriptionStatusActive
		if t := payload.trialEnd(); t != nil && t.After(event.OccurredAt) {
			target.status = models.SubscriptionStatusTrialing
			target.trialEndsAt = t
		}
	case models.EventSubscriptionUpdated:
		if payload.Status != "" {
			status := models.SubscriptionStatus(payload.Status)
			if !status.IsValid() {
				return targetState{}, fmt.Errorf("%w: %q", apperrors.ErrInvalidStatus, payload.Status)
			}
			target.status = status
		}
	case models.EventSubscriptionCanceled:
		target.status = models.SubscriptionStatusCanceled
	case models.EventTrialEnded:
		target.status = models.SubscriptionStatusActive
		if payload.Status != "" {
			status := models.SubscriptionStatus(payload.Status)
			if !status.IsValid() {
				return targetState{}, fmt.Errorf("%w: %q", apperrors.ErrInvalidStatus, payload.Status)
			}
			target.status = status
		}
		target.trialEndsAt = nil
	case models.EventPaymentSucceeded:
		target.status = models.SubscriptionStatusActive
		target.billingIssue = nil
	case models.EventPaymentFailed:
		target.status = models.SubscriptionStatusPastDue
		issue := event.OccurredAt
		target.billingIssue = &issue
	default:
		return targetState{}, fmt.Errorf("%w: no handler for event type %q", apperrors.ErrInvalidStatus, event.Type)
	}

	return target, nil
}

// applyTransition writes the new billing state as a single transactional
// update guarded by the billing version, retrying on concurrent writers.
func (s *SubscriptionService) applyTransition(ctx context.Context, org *models.Organization, event *models.SubscriptionEvent, target targetState) error {
	for attempt := 0; attempt < billingUpdateAttempts; attempt++ {
		occurred := event.OccurredAt
		updates := map[string]interface{}{
			"subscription_status":   target.status,
			"seat_quantity":         target.seats,
			"next_billing_at":       target.nextBillingAt,
			"trial_ends_at":         target.trialEndsAt,
			"billing_issue_at":      target.billingIssue,
			"last_billing_event_at": &occurred,
		}
		if org.BillingCustomerID == "" && event.CustomerID != "" {
			updates["billing_customer_id"] = event.CustomerID
		}
		if org.BillingSubscriptionID == "" && event.SubscriptionID != "" {
			updates["billing_subscription_id"] = event.SubscriptionID
		}

		affected, err := s.orgs.ApplyBillingUpdate(org.ID, org.BillingVersion, updates)
		if err != nil {
			return fmt.Errorf("failed to update organization billing state: %w", err)
		}
		if affected > 0 {
			org.SubscriptionStatus = target.status
			org.SeatQuantity = target.seats
			org.BillingVersion++
			return nil
		}

		// A concurrent writer bumped the version; reload and re-check.
		fresh, err := s.orgs.GetByID(org.ID)
		if err != nil {
			return fmt.Errorf("failed to reload organization: %w", err)
		}
		*org = *fresh
		if org.LastBillingEventAt != nil && event.OccurredAt.Before(*org.LastBillingEventAt) {
			return apperrors.ErrStaleEvent
		}
		if !org.SubscriptionStatus.CanTransitionTo(target.status) {
			return fmt.Errorf("%w: %s -> %s after concurrent update", apperrors.ErrInvalidTransition, org.SubscriptionStatus, target.status)
		}
	}
	return apperrors.ErrConcurrentBillingUpdate
}

// reprocessSeatSync retries the provider push recorded by a failed seat
// sync. On success the retained event is closed out.
func (s *SubscriptionService) reprocessSeatSync(ctx context.Context, event *models.SubscriptionEvent, org *models.Organization) error {
	if s.seatSync == nil {
		err := errors.New("seat sync service not configured")
		s.recordError(event, err)
		return err
	}
	quantity, err := s.seatSync.SyncSeats(ctx, org.ID)
	if err != nil {
		s.recordError(event, err)
		return err
	}
	s.markProcessed(ctx, event, org.SubscriptionStatus, org.SubscriptionStatus, event.PreviousSeats, quantity, "seat sync retried successfully")
	return nil
}

func (s *SubscriptionService) resolveOrganization(event *models.SubscriptionEvent) (*models.Organization, error) {
	var (
		org *models.Organization
		err error
	)
	switch {
	case event.OrganizationID != nil:
		org, err = s.orgs.GetByID(*event.OrganizationID)
	case event.SubscriptionID != "":
		org, err = s.orgs.GetByBillingSubscriptionID(event.SubscriptionID)
	case event.CustomerID != "":
		org, err = s.orgs.GetByBillingCustomerID(event.CustomerID)
	default:
		return nil, fmt.Errorf("%w: event carries no organization reference", apperrors.ErrOrganizationNotFound)
	}
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperrors.ErrOrganizationNotFound
		}
		return nil, fmt.Errorf("failed to resolve organization: %w", err)
	}
	return org, nil
}

func (s *SubscriptionService) recordError(event *models.SubscriptionEvent, cause error) {
	msg := cause.Error()
	event.Processed = false
	event.Error = &msg
	event.RetryCount++
	if err := s.events.Update(event); err != nil {
		s.log.WithError(err).Error("failed to record subscription event error")
	}
}

func (s *SubscriptionService) markProcessed(ctx context.Context, event *models.SubscriptionEvent, prevStatus, newStatus models.SubscriptionStatus, prevSeats, newSeats int, note string) {
	event.Processed = true
	event.Error = nil
	event.PreviousStatus = prevStatus
	event.NewStatus = newStatus
	event.PreviousSeats = prevSeats
	event.NewSeats = newSeats
	if note != "" {
		event.Notes = note
	}
	if err := s.events.Update(event); err != nil {
		logger.WithContext(ctx).WithError(err).Error("failed to mark subscription event processed")
	}
}

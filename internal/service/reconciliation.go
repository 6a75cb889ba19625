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
	"timetracker-backend/internal/tenancy"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// ReconcileOutcome classifies what reconciliation did for one organization.
type ReconcileOutcome string

const (
	// OutcomeInSync means the local mirror already matched the provider.
	OutcomeInSync ReconcileOutcome = "in_sync"
	// OutcomeCorrected means a discrepancy was found and the local mirror
	// was rewritten from the provider's answer.
	OutcomeCorrected ReconcileOutcome = "corrected"
	// OutcomeSkipped means a billing event arrived while reconciling and
	// won; the stale correction was discarded.
	OutcomeSkipped ReconcileOutcome = "skipped"
	// OutcomeError means the provider could not be queried or the write
	// failed; the organization is retried on the next run.
	OutcomeError ReconcileOutcome = "error"
)

// ReconciliationEntry is the per-organization result of one run.
type ReconciliationEntry struct {
	OrganizationID uuid.UUID        `json:"organization_id"`
	Outcome        ReconcileOutcome `json:"outcome"`
	Detail         string           `json:"detail,omitempty"`
}

// ReconciliationReport summarizes one reconciliation run.
type ReconciliationReport struct {
	StartedAt  time.Time             `json:"started_at"`
	FinishedAt time.Time             `json:"finished_at"`
	Total      int                   `json:"total"`
	InSync     int                   `json:"in_sync"`
	Corrected  int                   `json:"corrected"`
	Skipped    int                   `json:"skipped"`
	Errors     int                   `json:"errors"`
	Entries    []ReconciliationEntry `json:"entries"`
}

func (r *ReconciliationReport) add(entry ReconciliationEntry) {
	r.Total++
	switch entry.Outcome {
	case OutcomeInSync:
		r.InSync++
	case OutcomeCorrected:
		r.Corrected++
	case OutcomeSkipped:
		r.Skipped++
	case OutcomeError:
		r.Errors++
	}
	r.Entries = append(r.Entries, entry)
}

// ReconciliationService periodically compares the local subscription
// mirror of every provider-linked organization against the billing
// provider and corrects drift. Corrections lose to billing events that
// land concurrently: the event path carries fresher information.
type ReconciliationService struct {
	orgs     repository.OrganizationRepositoryInterface
	provider BillingProvider
	log      *logger.Logger
}

// NewReconciliationService creates a new reconciliation service
func NewReconciliationService(orgs repository.OrganizationRepositoryInterface, provider BillingProvider) *ReconciliationService {
	return &ReconciliationService{
		orgs:     orgs,
		provider: provider,
		log:      logger.New(),
	}
}

// ReconcileAll walks every organization that has a provider subscription.
// One organization's failure never aborts the run; cancellation of the
// context stops it between organizations.
func (s *ReconciliationService) ReconcileAll(ctx context.Context) (*ReconciliationReport, error) {
	ctx = tenancy.WithSystem(ctx)
	report := &ReconciliationReport{StartedAt: time.Now().UTC()}

	orgs, err := s.orgs.GetAllWithProviderSubscription()
	if err != nil {
		return nil, fmt.Errorf("failed to list organizations for reconciliation: %w", err)
	}

	for i := range orgs {
		if err := ctx.Err(); err != nil {
			report.FinishedAt = time.Now().UTC()
			return report, err
		}
		report.add(s.reconcileOrg(ctx, &orgs[i]))
	}

	report.FinishedAt = time.Now().UTC()
	s.log.WithFields(map[string]interface{}{
		"total":     report.Total,
		"in_sync":   report.InSync,
		"corrected": report.Corrected,
		"skipped":   report.Skipped,
		"errors":    report.Errors,
	}).Info("billing reconciliation run finished")
	return report, nil
}

// Reconcile runs reconciliation for a single organization on operator
// request.
func (s *ReconciliationService) Reconcile(ctx context.Context, orgID uuid.UUID) (*ReconciliationEntry, error) {
	ctx = tenancy.WithSystem(ctx)
	org, err := s.orgs.GetByID(orgID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperrors.ErrOrganizationNotFound
		}
		return nil, fmt.Errorf("failed to get organization: %w", err)
	}
	if !org.HasProviderSubscription() {
		return nil, apperrors.NewValidationError("organization", "no provider subscription to reconcile")
	}
	entry := s.reconcileOrg(ctx, org)
	return &entry, nil
}

func (s *ReconciliationService) reconcileOrg(ctx context.Context, org *models.Organization) ReconciliationEntry {
	entry := ReconciliationEntry{OrganizationID: org.ID}

	// Snapshot before the provider round trip; the version guard below
	// discards the correction if anything moved in the meantime.
	snapshotVersion := org.BillingVersion

	sub, err := s.provider.GetSubscription(ctx, org.BillingSubscriptionID)
	if err != nil {
		entry.Outcome = OutcomeError
		entry.Detail = err.Error()
		s.log.WithError(err).WithField("organization_id", org.ID).Warn("reconciliation provider lookup failed")
		return entry
	}

	status := models.SubscriptionStatus(sub.Status)
	if !status.IsValid() {
		entry.Outcome = OutcomeError
		entry.Detail = fmt.Sprintf("provider returned unknown status %q", sub.Status)
		return entry
	}

	if org.SubscriptionStatus == status && org.SeatQuantity == sub.Quantity {
		entry.Outcome = OutcomeInSync
		return entry
	}

	updates := map[string]interface{}{
		"subscription_status": status,
		"seat_quantity":       sub.Quantity,
	}
	if sub.CurrentPeriodEnd != nil {
		updates["next_billing_at"] = sub.CurrentPeriodEnd
	}

	affected, err := s.orgs.ApplyBillingUpdate(org.ID, snapshotVersion, updates)
	if err != nil {
		entry.Outcome = OutcomeError
		entry.Detail = err.Error()
		return entry
	}
	if affected == 0 {
		// A billing event landed mid-flight and bumped the version. The
		// event is fresher than the snapshot this correction was computed
		// from, so the correction is dropped.
		entry.Outcome = OutcomeSkipped
		entry.Detail = "concurrent billing event won"
		return entry
	}

	entry.Outcome = OutcomeCorrected
	entry.Detail = fmt.Sprintf("status %s -> %s, seats %d -> %d", org.SubscriptionStatus, status, org.SeatQuantity, sub.Quantity)
	logger.WithContext(ctx).WithFields(map[string]interface{}{
		"organization_id": org.ID,
		"detail":          entry.Detail,
	}).Warn("reconciliation corrected subscription drift")
	return entry
}

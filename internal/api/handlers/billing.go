package handlers

import (
	"net/http"

	"timetracker-backend/internal/service"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

// BillingHandler handles operator-facing billing endpoints: event
// reprocessing and reconciliation.
type BillingHandler struct {
	subscriptionService   *service.SubscriptionService
	reconciliationService *service.ReconciliationService
	seatSyncService       *service.SeatSyncService
}

// NewBillingHandler creates a new billing handler
func NewBillingHandler(
	subscriptionService *service.SubscriptionService,
	reconciliationService *service.ReconciliationService,
	seatSyncService *service.SeatSyncService,
) *BillingHandler {
	return &BillingHandler{
		subscriptionService:   subscriptionService,
		reconciliationService: reconciliationService,
		seatSyncService:       seatSyncService,
	}
}

// ReprocessEvent handles POST /organization/billing/events/:id/reprocess
// @Summary Reprocess a billing event
// @Description Re-run processing of a retained billing event. The same event row is reused, so no duplicate transition can occur.
// @Tags billing
// @Produce json
// @Param id path string true "Event ID (UUID)"
// @Success 200 {object} map[string]string "Event reprocessed"
// @Failure 404 {object} ErrorResponse "Event not found"
// @Failure 409 {object} ErrorResponse "Transition not allowed"
// @Security BearerAuth
// @Router /organization/billing/events/{id}/reprocess [post]
func (h *BillingHandler) ReprocessEvent(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid event ID"})
		return
	}

	if err := h.subscriptionService.ReprocessEvent(c.Request.Context(), id); err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"status": "processed"})
}

// SyncSeats handles POST /organization/billing/sync-seats
// @Summary Push the seat count to the provider
// @Description Recompute the active seat count and push it to the billing provider
// @Tags billing
// @Produce json
// @Success 200 {object} map[string]interface{} "Seat count synchronized"
// @Failure 502 {object} ErrorResponse "Provider push failed"
// @Security BearerAuth
// @Router /organization/billing/sync-seats [post]
func (h *BillingHandler) SyncSeats(c *gin.Context) {
	org, err := currentOrganizationID(c)
	if err != nil {
		respondError(c, err)
		return
	}

	quantity, err := h.seatSyncService.SyncSeats(c.Request.Context(), org)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"seat_quantity": quantity})
}

// Reconcile handles POST /organization/billing/reconcile
// @Summary Reconcile the active organization
// @Description Compare the local subscription mirror against the billing provider and correct drift
// @Tags billing
// @Produce json
// @Success 200 {object} service.ReconciliationEntry "Reconciliation result"
// @Failure 400 {object} ErrorResponse "No provider subscription"
// @Security BearerAuth
// @Router /organization/billing/reconcile [post]
func (h *BillingHandler) Reconcile(c *gin.Context) {
	org, err := currentOrganizationID(c)
	if err != nil {
		respondError(c, err)
		return
	}

	entry, err := h.reconciliationService.Reconcile(c.Request.Context(), org)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, entry)
}

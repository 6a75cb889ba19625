package handlers

import (
	"net/http"
	"strconv"

	"timetracker-backend/internal/service"
	"timetracker-backend/internal/tenancy"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

// OrganizationHandler handles HTTP requests for organization operations
type OrganizationHandler struct {
	organizationService *service.OrganizationService
}

// NewOrganizationHandler creates a new organization handler
func NewOrganizationHandler(organizationService *service.OrganizationService) *OrganizationHandler {
	return &OrganizationHandler{
		organizationService: organizationService,
	}
}

// CreateOrganization handles POST /organizations
// @Summary Create a new organization
// @Description Create a new organization with the caller as its first admin
// @Tags organizations
// @Accept json
// @Produce json
// @Param organization body service.CreateOrganizationRequest true "Organization data"
// @Success 201 {object} models.Organization "Successfully created organization"
// @Failure 400 {object} ErrorResponse "Invalid request body"
// @Failure 409 {object} ErrorResponse "Organization already exists"
// @Failure 500 {object} ErrorResponse "Internal server error"
// @Security BearerAuth
// @Router /organizations [post]
func (h *OrganizationHandler) CreateOrganization(c *gin.Context) {
	var req service.CreateOrganizationRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	org, err := h.organizationService.Create(c.Request.Context(), &req)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusCreated, org)
}

// GetOrganization handles GET /organization
// @Summary Get the active organization
// @Description Get the organization the request is acting in
// @Tags organizations
// @Produce json
// @Success 200 {object} models.Organization "Successfully retrieved organization"
// @Failure 403 {object} ErrorResponse "No active organization"
// @Failure 404 {object} ErrorResponse "Organization not found"
// @Security BearerAuth
// @Router /organization [get]
func (h *OrganizationHandler) GetOrganization(c *gin.Context) {
	org, err := h.organizationService.Get(c.Request.Context())
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, org)
}

// UpdateOrganization handles PUT /organization
// @Summary Update organization settings
// @Description Update mutable settings of the active organization
// @Tags organizations
// @Accept json
// @Produce json
// @Param organization body service.UpdateOrganizationRequest true "Updated organization data"
// @Success 200 {object} models.Organization "Successfully updated organization"
// @Failure 400 {object} ErrorResponse "Invalid request"
// @Failure 403 {object} ErrorResponse "Admin role required"
// @Security BearerAuth
// @Router /organization [put]
func (h *OrganizationHandler) UpdateOrganization(c *gin.Context) {
	var req service.UpdateOrganizationRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	org, err := h.organizationService.Update(c.Request.Context(), &req)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, org)
}

// OffboardOrganization handles DELETE /organization
// @Summary Offboard the active organization
// @Description Soft-delete the active organization, keeping the billing audit trail
// @Tags organizations
// @Produce json
// @Success 204 "Successfully offboarded"
// @Failure 403 {object} ErrorResponse "Admin role required"
// @Security BearerAuth
// @Router /organization [delete]
func (h *OrganizationHandler) OffboardOrganization(c *gin.Context) {
	orgID, err := tenancy.OrganizationID(c.Request.Context())
	if err != nil {
		respondError(c, err)
		return
	}
	if err := h.organizationService.Offboard(c.Request.Context(), orgID); err != nil {
		respondError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

// ListSubscriptionEvents handles GET /organization/billing/events
// @Summary List billing events
// @Description List the billing event log of the active organization
// @Tags billing
// @Produce json
// @Param limit query int false "Page size" default(20)
// @Param offset query int false "Page offset" default(0)
// @Success 200 {object} map[string]interface{} "Event page"
// @Failure 400 {object} ErrorResponse "Invalid pagination parameters"
// @Security BearerAuth
// @Router /organization/billing/events [get]
func (h *OrganizationHandler) ListSubscriptionEvents(c *gin.Context) {
	limit, offset := paginationParams(c)
	events, total, err := h.organizationService.ListEvents(c.Request.Context(), limit, offset)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"events": events,
		"total":  total,
		"limit":  limit,
		"offset": offset,
	})
}

func currentOrganizationID(c *gin.Context) (uuid.UUID, error) {
	return tenancy.OrganizationID(c.Request.Context())
}

func paginationParams(c *gin.Context) (int, int) {
	limit, err := strconv.Atoi(c.DefaultQuery("limit", "20"))
	if err != nil {
		limit = -1
	}
	offset, err := strconv.Atoi(c.DefaultQuery("offset", "0"))
	if err != nil {
		offset = -1
	}
	return limit, offset
}

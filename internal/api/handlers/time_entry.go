package handlers

import (
	"net/http"

	"timetracker-backend/internal/service"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

// TimeEntryHandler handles HTTP requests for time entry operations
type TimeEntryHandler struct {
	timeEntryService *service.TimeEntryService
}

// NewTimeEntryHandler creates a new time entry handler
func NewTimeEntryHandler(timeEntryService *service.TimeEntryService) *TimeEntryHandler {
	return &TimeEntryHandler{
		timeEntryService: timeEntryService,
	}
}

// CreateTimeEntry handles POST /time-entries
// @Summary Record tracked time
// @Description Record time against a project of the active organization
// @Tags time-entries
// @Accept json
// @Produce json
// @Param entry body service.CreateTimeEntryRequest true "Time entry data"
// @Success 201 {object} models.TimeEntry "Successfully recorded time"
// @Failure 400 {object} ErrorResponse "Invalid request body"
// @Failure 403 {object} ErrorResponse "Project belongs to a different organization"
// @Failure 404 {object} ErrorResponse "Project not found"
// @Security BearerAuth
// @Router /time-entries [post]
func (h *TimeEntryHandler) CreateTimeEntry(c *gin.Context) {
	var req service.CreateTimeEntryRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	entry, err := h.timeEntryService.Create(c.Request.Context(), &req)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, entry)
}

// ListTimeEntries handles GET /projects/:id/time-entries
// @Summary List time entries of a project
// @Description List the tracked time of one project with pagination
// @Tags time-entries
// @Produce json
// @Param id path string true "Project ID (UUID)"
// @Param limit query int false "Page size" default(20)
// @Param offset query int false "Page offset" default(0)
// @Success 200 {object} map[string]interface{} "Time entry page"
// @Failure 400 {object} ErrorResponse "Invalid pagination parameters"
// @Security BearerAuth
// @Router /projects/{id}/time-entries [get]
func (h *TimeEntryHandler) ListTimeEntries(c *gin.Context) {
	projectID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid project ID"})
		return
	}

	limit, offset := paginationParams(c)
	entries, total, err := h.timeEntryService.ListByProject(c.Request.Context(), projectID, limit, offset)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"time_entries": entries,
		"total":        total,
		"limit":        limit,
		"offset":       offset,
	})
}

// UpdateTimeEntry handles PUT /time-entries/:id
// @Summary Update a time entry
// @Description Update a time entry of the active organization
// @Tags time-entries
// @Accept json
// @Produce json
// @Param id path string true "Time entry ID (UUID)"
// @Param entry body service.UpdateTimeEntryRequest true "Updated time entry data"
// @Success 200 {object} models.TimeEntry "Successfully updated time entry"
// @Failure 404 {object} ErrorResponse "Time entry not found"
// @Security BearerAuth
// @Router /time-entries/{id} [put]
func (h *TimeEntryHandler) UpdateTimeEntry(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid time entry ID"})
		return
	}

	var req service.UpdateTimeEntryRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	entry, err := h.timeEntryService.Update(c.Request.Context(), id, &req)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, entry)
}

// DeleteTimeEntry handles DELETE /time-entries/:id
// @Summary Delete a time entry
// @Description Delete a time entry of the active organization
// @Tags time-entries
// @Produce json
// @Param id path string true "Time entry ID (UUID)"
// @Success 204 "Successfully deleted time entry"
// @Failure 404 {object} ErrorResponse "Time entry not found"
// @Security BearerAuth
// @Router /time-entries/{id} [delete]
func (h *TimeEntryHandler) DeleteTimeEntry(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid time entry ID"})
		return
	}

	if err := h.timeEntryService.Delete(c.Request.Context(), id); err != nil {
		respondError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

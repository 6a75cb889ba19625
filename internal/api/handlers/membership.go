package handlers

import (
	"net/http"

	"timetracker-backend/internal/service"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

// MembershipHandler handles HTTP requests for membership operations
type MembershipHandler struct {
	membershipService *service.MembershipService
}

// NewMembershipHandler creates a new membership handler
func NewMembershipHandler(membershipService *service.MembershipService) *MembershipHandler {
	return &MembershipHandler{
		membershipService: membershipService,
	}
}

// AcceptInvitationRequest represents the request to accept an invitation
type AcceptInvitationRequest struct {
	Token string `json:"token" binding:"required"`
}

// InviteMember handles POST /organization/members
// @Summary Invite a member
// @Description Invite a user into the active organization, subject to the seat allowance
// @Tags memberships
// @Accept json
// @Produce json
// @Param invitation body service.InviteMemberRequest true "Invitation data"
// @Success 201 {object} models.Membership "Successfully created invitation"
// @Failure 400 {object} ErrorResponse "Invalid request body"
// @Failure 403 {object} ErrorResponse "Admin role required"
// @Failure 409 {object} ErrorResponse "Seat limit reached or member already exists"
// @Security BearerAuth
// @Router /organization/members [post]
func (h *MembershipHandler) InviteMember(c *gin.Context) {
	var req service.InviteMemberRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	membership, err := h.membershipService.Invite(c.Request.Context(), &req)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, membership)
}

// AcceptInvitation handles POST /invitations/accept
// @Summary Accept an invitation
// @Description Consume a single-use invitation token and activate the membership
// @Tags memberships
// @Accept json
// @Produce json
// @Param invitation body AcceptInvitationRequest true "Invitation token"
// @Success 200 {object} models.Membership "Membership activated"
// @Failure 404 {object} ErrorResponse "Invitation not found"
// @Failure 409 {object} ErrorResponse "Seat limit reached"
// @Failure 410 {object} ErrorResponse "Invitation already used"
// @Security BearerAuth
// @Router /invitations/accept [post]
func (h *MembershipHandler) AcceptInvitation(c *gin.Context) {
	var req AcceptInvitationRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	membership, err := h.membershipService.AcceptInvitation(c.Request.Context(), req.Token)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, membership)
}

// ListMembers handles GET /organization/members
// @Summary List members
// @Description List the memberships of the active organization
// @Tags memberships
// @Produce json
// @Param limit query int false "Page size" default(20)
// @Param offset query int false "Page offset" default(0)
// @Success 200 {object} map[string]interface{} "Membership page"
// @Failure 400 {object} ErrorResponse "Invalid pagination parameters"
// @Security BearerAuth
// @Router /organization/members [get]
func (h *MembershipHandler) ListMembers(c *gin.Context) {
	limit, offset := paginationParams(c)
	members, total, err := h.membershipService.List(c.Request.Context(), limit, offset)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"members": members,
		"total":   total,
		"limit":   limit,
		"offset":  offset,
	})
}

// SuspendMember handles POST /organization/members/:id/suspend
// @Summary Suspend a member
// @Description Suspend an active membership, freeing its seat
// @Tags memberships
// @Produce json
// @Param id path string true "Membership ID (UUID)"
// @Success 200 {object} models.Membership "Membership suspended"
// @Failure 400 {object} ErrorResponse "Invalid membership ID or status"
// @Failure 404 {object} ErrorResponse "Membership not found"
// @Security BearerAuth
// @Router /organization/members/{id}/suspend [post]
func (h *MembershipHandler) SuspendMember(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid membership ID"})
		return
	}

	membership, err := h.membershipService.Suspend(c.Request.Context(), id)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, membership)
}

// ReactivateMember handles POST /organization/members/:id/reactivate
// @Summary Reactivate a member
// @Description Return a suspended membership to active, subject to the seat allowance
// @Tags memberships
// @Produce json
// @Param id path string true "Membership ID (UUID)"
// @Success 200 {object} models.Membership "Membership reactivated"
// @Failure 404 {object} ErrorResponse "Membership not found"
// @Failure 409 {object} ErrorResponse "Seat limit reached"
// @Security BearerAuth
// @Router /organization/members/{id}/reactivate [post]
func (h *MembershipHandler) ReactivateMember(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid membership ID"})
		return
	}

	membership, err := h.membershipService.Reactivate(c.Request.Context(), id)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, membership)
}

// UpdateMemberRole handles PUT /organization/members/:id/role
// @Summary Change a member's role
// @Description Change the role of a membership in the active organization
// @Tags memberships
// @Accept json
// @Produce json
// @Param id path string true "Membership ID (UUID)"
// @Param role body service.UpdateMemberRoleRequest true "New role"
// @Success 200 {object} models.Membership "Role updated"
// @Failure 400 {object} ErrorResponse "Invalid request"
// @Failure 404 {object} ErrorResponse "Membership not found"
// @Security BearerAuth
// @Router /organization/members/{id}/role [put]
func (h *MembershipHandler) UpdateMemberRole(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid membership ID"})
		return
	}

	var req service.UpdateMemberRoleRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	membership, err := h.membershipService.UpdateRole(c.Request.Context(), id, &req)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, membership)
}

// RemoveMember handles DELETE /organization/members/:id
// @Summary Remove a member
// @Description Mark a membership removed and free its seat
// @Tags memberships
// @Produce json
// @Param id path string true "Membership ID (UUID)"
// @Success 204 "Membership removed"
// @Failure 404 {object} ErrorResponse "Membership not found"
// @Security BearerAuth
// @Router /organization/members/{id} [delete]
func (h *MembershipHandler) RemoveMember(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid membership ID"})
		return
	}

	if err := h.membershipService.Remove(c.Request.Context(), id); err != nil {
		respondError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

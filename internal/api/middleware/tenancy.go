package middleware

import (
	"errors"
	"net/http"
	"strings"
	"time"

	"timetracker-backend/internal/auth"
	"timetracker-backend/internal/database/models"
	apperrors "timetracker-backend/internal/errors"
	"timetracker-backend/internal/logger"
	"timetracker-backend/internal/repository"
	"timetracker-backend/internal/tenancy"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

// organizationHeader carries the organization the caller wants to act
// in. A user with a single active membership may omit it.
const organizationHeader = "X-Organization-ID"

// RequireAuth validates the bearer token and records the authenticated
// user on the request context.
func RequireAuth(authService *auth.Service, users repository.UserRepositoryInterface) gin.HandlerFunc {
	return func(c *gin.Context) {
		header := c.GetHeader("Authorization")
		token, found := strings.CutPrefix(header, "Bearer ")
		if !found || token == "" {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "missing bearer token"})
			return
		}

		claims, err := authService.ValidateToken(token)
		if err != nil {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": err.Error()})
			return
		}

		user, err := users.GetByID(claims.MustUserID())
		if err != nil {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "unknown user"})
			return
		}

		ctx := tenancy.WithUser(c.Request.Context(), user.ID)
		c.Request = c.Request.WithContext(ctx)
		c.Set("user", user)
		c.Next()
	}
}

// RequireOrganization resolves the active organization for the request
// and verifies the caller holds an active membership in it. The
// asserted organization comes from the X-Organization-ID header; a user
// with exactly one active membership may omit the header. Membership
// verification failures are always 403, never a silent fallback.
func RequireOrganization(memberships repository.MembershipRepositoryInterface) gin.HandlerFunc {
	return func(c *gin.Context) {
		userID, ok := tenancy.UserID(c.Request.Context())
		if !ok {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "authentication required"})
			return
		}

		orgID, err := resolveOrganization(c, memberships, userID)
		if err != nil {
			status := http.StatusForbidden
			if apperrors.IsValidation(err) {
				status = http.StatusBadRequest
			}
			c.AbortWithStatusJSON(status, gin.H{"error": err.Error()})
			return
		}

		membership, err := memberships.GetByOrgAndUser(orgID, userID)
		if err != nil || membership.Status != models.MembershipStatusActive {
			logger.WithContext(c.Request.Context()).WithFields(map[string]interface{}{
				"user_id":         userID,
				"organization_id": orgID,
			}).Warn("organization access denied")
			c.AbortWithStatusJSON(http.StatusForbidden, gin.H{"error": apperrors.ErrAccessDenied.Error()})
			return
		}

		ctx := tenancy.WithOrganization(c.Request.Context(), orgID)
		ctx = tenancy.WithRole(ctx, membership.Role)
		c.Request = c.Request.WithContext(ctx)
		c.Next()
	}
}

func resolveOrganization(c *gin.Context, memberships repository.MembershipRepositoryInterface, userID uuid.UUID) (uuid.UUID, error) {
	if header := c.GetHeader(organizationHeader); header != "" {
		orgID, err := uuid.Parse(header)
		if err != nil {
			return uuid.Nil, apperrors.NewValidationError(organizationHeader, "must be a valid uuid")
		}
		return orgID, nil
	}

	active, err := memberships.GetActiveByUserID(userID)
	if err != nil && !errors.Is(err, gorm.ErrRecordNotFound) {
		return uuid.Nil, apperrors.ErrAccessDenied
	}
	if len(active) != 1 {
		return uuid.Nil, apperrors.ErrNoActiveOrganization
	}
	return active[0].OrganizationID, nil
}

// RequireActiveSubscription gates paid features on subscription health.
// Trialing and active pass; past_due passes within the grace period;
// canceled and expired grace get 402.
func RequireActiveSubscription(orgs repository.OrganizationRepositoryInterface, gracePeriod time.Duration) gin.HandlerFunc {
	return func(c *gin.Context) {
		orgID, err := tenancy.OrganizationID(c.Request.Context())
		if err != nil {
			c.AbortWithStatusJSON(http.StatusForbidden, gin.H{"error": err.Error()})
			return
		}
		org, err := orgs.GetByID(orgID)
		if err != nil {
			c.AbortWithStatusJSON(http.StatusForbidden, gin.H{"error": apperrors.ErrOrganizationNotFound.Error()})
			return
		}

		if !subscriptionAllows(org, gracePeriod) {
			c.AbortWithStatusJSON(http.StatusPaymentRequired, gin.H{"error": apperrors.ErrSubscriptionRequired.Error()})
			return
		}
		c.Next()
	}
}

func subscriptionAllows(org *models.Organization, gracePeriod time.Duration) bool {
	switch org.SubscriptionStatus {
	case models.SubscriptionStatusNone, models.SubscriptionStatusTrialing, models.SubscriptionStatusActive:
		return true
	case models.SubscriptionStatusPastDue:
		issue := org.BillingIssueSince()
		return issue.IsZero() || time.Since(issue) <= gracePeriod
	default:
		return false
	}
}

// RequireRole restricts a route to callers holding the given role in
// the active organization.
func RequireRole(role models.MembershipRole) gin.HandlerFunc {
	return func(c *gin.Context) {
		current, ok := tenancy.Role(c.Request.Context())
		if !ok || current != role {
			c.AbortWithStatusJSON(http.StatusForbidden, gin.H{"error": apperrors.ErrAccessDenied.Error()})
			return
		}
		c.Next()
	}
}

package handlers

import (
	"errors"
	"net/http"

	apperrors "timetracker-backend/internal/errors"

	"github.com/gin-gonic/gin"
)

// ErrorResponse represents a standard API error response
type ErrorResponse struct {
	Error string `json:"error" example:"error message"`
}

// respondError maps the service error taxonomy onto HTTP status codes.
func respondError(c *gin.Context, err error) {
	status := http.StatusInternalServerError

	switch {
	case apperrors.IsNotFound(err):
		status = http.StatusNotFound
	case apperrors.IsAlreadyExists(err):
		status = http.StatusConflict
	case apperrors.IsValidation(err), errors.Is(err, apperrors.ErrInvalidPaginationParams):
		status = http.StatusBadRequest
	case apperrors.IsAuthentication(err):
		status = http.StatusUnauthorized
	case apperrors.IsAuthorization(err), apperrors.IsTenancy(err):
		status = http.StatusForbidden
	case errors.Is(err, apperrors.ErrSubscriptionRequired):
		status = http.StatusPaymentRequired
	case errors.Is(err, apperrors.ErrSeatLimitExceeded),
		errors.Is(err, apperrors.ErrInvalidTransition),
		errors.Is(err, apperrors.ErrStaleEvent),
		errors.Is(err, apperrors.ErrConcurrentBillingUpdate):
		status = http.StatusConflict
	case errors.Is(err, apperrors.ErrInvitationConsumed):
		status = http.StatusGone
	case errors.Is(err, apperrors.ErrSyncFailure):
		status = http.StatusBadGateway
	}

	c.JSON(status, gin.H{"error": err.Error()})
}

package handlers

import (
	"errors"
	"net/http"

	"timetracker-backend/internal/auth"
	"timetracker-backend/internal/database/models"
	"timetracker-backend/internal/repository"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"
)

// AuthHandler issues development tokens. The route is only registered
// outside production; real deployments obtain tokens from the identity
// provider in front of this service.
type AuthHandler struct {
	authService *auth.Service
	users       repository.UserRepositoryInterface
}

// NewAuthHandler creates a new auth handler
func NewAuthHandler(authService *auth.Service, users repository.UserRepositoryInterface) *AuthHandler {
	return &AuthHandler{
		authService: authService,
		users:       users,
	}
}

// TokenRequest represents the request for a development token
type TokenRequest struct {
	Email    string `json:"email" binding:"required,email"`
	FullName string `json:"full_name"`
}

// TokenResponse represents an issued token
type TokenResponse struct {
	Token string `json:"token"`
}

// DevToken handles POST /auth/dev-token
// @Summary Issue a development token
// @Description Issue a signed token for the given email, creating the user if needed. Not available in production.
// @Tags auth
// @Accept json
// @Produce json
// @Param request body TokenRequest true "Token request"
// @Success 200 {object} TokenResponse "Issued token"
// @Failure 400 {object} ErrorResponse "Invalid request"
// @Router /auth/dev-token [post]
func (h *AuthHandler) DevToken(c *gin.Context) {
	var req TokenRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	user, err := h.users.GetByEmail(req.Email)
	if err != nil {
		if !errors.Is(err, gorm.ErrRecordNotFound) {
			c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
			return
		}
		fullName := req.FullName
		if fullName == "" {
			fullName = req.Email
		}
		user = &models.User{Email: req.Email, FullName: fullName}
		if err := h.users.Create(user); err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
			return
		}
	}

	token, err := h.authService.GenerateToken(user.ID, user.Email)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, TokenResponse{Token: token})
}

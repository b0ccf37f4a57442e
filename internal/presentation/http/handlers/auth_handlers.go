// Package handlers provides HTTP request handlers for the presentation layer.
package handlers

import (
	"errors"
	"net/http"
	"strings"
	"time"

	"github.com/CircuitDesk/circuitdesk-go/internal/application/services"
	"github.com/CircuitDesk/circuitdesk-go/internal/infrastructure/observability/logging"
	"github.com/CircuitDesk/circuitdesk-go/internal/infrastructure/observability/performance"
	"github.com/CircuitDesk/circuitdesk-go/internal/presentation/http/middleware"
	"github.com/gin-gonic/gin"
)

// AuthHandlers contains all authentication-related HTTP handlers
type AuthHandlers struct {
	authService *services.AuthService
	logger      *logging.ChanneledLogger
	perfTracker *performance.Tracker
}

// NewAuthHandlers creates auth handlers with injected dependencies
func NewAuthHandlers(authService *services.AuthService, logger *logging.ChanneledLogger, perfTracker *performance.Tracker) *AuthHandlers {
	return &AuthHandlers{
		authService: authService,
		logger:      logger,
		perfTracker: perfTracker,
	}
}

// LoginRequest represents the structure for login requests
type LoginRequest struct {
	Username string `json:"username" binding:"required"`
	Password string `json:"password" binding:"required"`
}

// RegisterRequest represents the structure for account creation requests
type RegisterRequest struct {
	Username string `json:"username" binding:"required"`
	FullName string `json:"full_name"`
	Password string `json:"password" binding:"required"`
	Role     string `json:"role"`
}

// ChangePasswordRequest represents the structure for password changes
type ChangePasswordRequest struct {
	OldPassword string `json:"old_password" binding:"required"`
	NewPassword string `json:"new_password" binding:"required"`
}

// PostLogin handles POST /api/v1/auth/login - credential authentication
func (h *AuthHandlers) PostLogin(c *gin.Context) {
	start := time.Now()
	marker := h.perfTracker.StartOperation("post_login_request")
	defer marker.Complete()
	h.logger.Auth().Debug("Received login request", "method", c.Request.Method, "path", c.Request.URL.Path)

	var loginReq LoginRequest
	if err := c.ShouldBindJSON(&loginReq); err != nil {
		h.logger.Auth().Error("Login request JSON binding failed", "error", err.Error())
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request format"})
		return
	}

	result, err := h.authService.Login(loginReq.Username, loginReq.Password)
	if err != nil {
		h.logger.Auth().Warn("Login attempt failed", "username", loginReq.Username, "duration", time.Since(start))
		marker.SetSuccess(false)
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Invalid username or password"})
		return
	}

	h.logger.Auth().Info("Login successful", "username", loginReq.Username, "role", result.User.Role, "duration", time.Since(start))
	marker.SetSuccess(true)

	c.JSON(http.StatusOK, gin.H{
		"token": result.Token,
		"user": gin.H{
			"id":        result.User.ID,
			"username":  result.User.Username,
			"full_name": result.User.FullName,
			"role":      result.User.Role,
		},
	})
}

// PostRegister handles POST /api/v1/auth/register - account creation (admin only)
func (h *AuthHandlers) PostRegister(c *gin.Context) {
	marker := h.perfTracker.StartOperation("post_register_request")
	defer marker.Complete()

	principal, _ := middleware.GetPrincipal(c)

	var req RegisterRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.logger.Auth().Error("Register request JSON binding failed", "error", err.Error())
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request format"})
		return
	}

	created, outcome, err := h.authService.CreateUser(principal, req.Username, req.FullName, req.Password, req.Role)
	if err != nil {
		marker.SetSuccess(false)
		respondServiceError(c, err)
		return
	}

	marker.SetSuccess(true)
	c.JSON(http.StatusCreated, gin.H{
		"user":              created,
		"persistedRemotely": outcome.PersistedRemotely,
	})
}

// PostChangePassword handles POST /api/v1/auth/password - self-service password change
func (h *AuthHandlers) PostChangePassword(c *gin.Context) {
	marker := h.perfTracker.StartOperation("post_password_request")
	defer marker.Complete()

	principal, _ := middleware.GetPrincipal(c)

	var req ChangePasswordRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.logger.Auth().Error("Password change JSON binding failed", "error", err.Error())
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request format"})
		return
	}

	outcome, err := h.authService.ChangePassword(principal, req.OldPassword, req.NewPassword)
	if err != nil {
		marker.SetSuccess(false)
		respondServiceError(c, err)
		return
	}

	marker.SetSuccess(true)
	c.JSON(http.StatusOK, gin.H{
		"success":           true,
		"persistedRemotely": outcome.PersistedRemotely,
	})
}

// GetAuthStatus handles GET /api/v1/auth/status - reports the caller's identity
func (h *AuthHandlers) GetAuthStatus(c *gin.Context) {
	token := extractBearerToken(c)
	if token == "" {
		c.JSON(http.StatusOK, gin.H{"authenticated": false})
		return
	}

	principal, err := h.authService.ValidateToken(token)
	if err != nil {
		c.JSON(http.StatusOK, gin.H{"authenticated": false})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"authenticated": true,
		"user":          principal,
	})
}

// GetUsers handles GET /api/v1/users - lists all accounts (admin only)
func (h *AuthHandlers) GetUsers(c *gin.Context) {
	marker := h.perfTracker.StartOperation("get_users_request")
	defer marker.Complete()

	principal, _ := middleware.GetPrincipal(c)

	users, err := h.authService.ListUsers(principal)
	if err != nil {
		marker.SetSuccess(false)
		respondServiceError(c, err)
		return
	}

	marker.SetSuccess(true)
	c.JSON(http.StatusOK, gin.H{"users": users})
}

// AuthMiddleware validates the bearer token and attaches the principal.
func (h *AuthHandlers) AuthMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		token := extractBearerToken(c)
		if token == "" {
			h.logger.Auth().Warn("Unauthorized access attempt", "path", c.Request.URL.Path)
			c.JSON(http.StatusUnauthorized, gin.H{"error": "Authentication required"})
			c.Abort()
			return
		}

		principal, err := h.authService.ValidateToken(token)
		if err != nil {
			h.logger.Auth().Warn("Invalid token presented", "path", c.Request.URL.Path)
			c.JSON(http.StatusUnauthorized, gin.H{"error": "Authentication required"})
			c.Abort()
			return
		}

		middleware.SetPrincipal(c, principal)
		c.Next()
	}
}

// AdminOnlyMiddleware provides admin-only authorization on top of AuthMiddleware.
func (h *AuthHandlers) AdminOnlyMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		principal, ok := middleware.GetPrincipal(c)
		if !ok || !principal.IsAdmin() {
			h.logger.Auth().Warn("Unauthorized admin access attempt", "path", c.Request.URL.Path)
			c.JSON(http.StatusForbidden, gin.H{"error": "Admin access required"})
			c.Abort()
			return
		}

		c.Next()
	}
}

// extractBearerToken pulls the token out of the Authorization header.
func extractBearerToken(c *gin.Context) string {
	authHeader := c.GetHeader("Authorization")
	if strings.HasPrefix(authHeader, "Bearer ") {
		return strings.TrimPrefix(authHeader, "Bearer ")
	}
	return ""
}

// respondServiceError maps service sentinel errors to HTTP status codes.
func respondServiceError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, services.ErrUnauthorized):
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Authentication required"})
	case errors.Is(err, services.ErrForbidden):
		c.JSON(http.StatusForbidden, gin.H{"error": "Operation not permitted"})
	case errors.Is(err, services.ErrNotFound):
		c.JSON(http.StatusNotFound, gin.H{"error": err.Error()})
	case errors.Is(err, services.ErrDuplicate):
		c.JSON(http.StatusConflict, gin.H{"error": err.Error()})
	case errors.Is(err, services.ErrValidation):
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
	default:
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Internal server error"})
	}
}

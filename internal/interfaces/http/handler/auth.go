package handler

import (
	"context"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	appidentity "github.com/opsboard/backend/internal/application/identity"
	"github.com/opsboard/backend/internal/interfaces/http/dto"
	"github.com/opsboard/backend/internal/interfaces/http/middleware"
)

// LoginRequest is the login body
type LoginRequest struct {
	Username string `json:"username" binding:"required,min=3,max=64"`
	Password string `json:"password" binding:"required,max=72"`
}

// RefreshRequest is the token refresh body
type RefreshRequest struct {
	RefreshToken string `json:"refresh_token" binding:"required"`
}

// UserLister lists users for administrators
type UserLister interface {
	List(ctx context.Context) ([]appidentity.UserInfo, error)
}

// AuthHandler handles login and session endpoints
type AuthHandler struct {
	BaseHandler
	auth  *appidentity.AuthService
	users UserLister
	now   func() time.Time
}

// NewAuthHandler creates an auth handler
func NewAuthHandler(auth *appidentity.AuthService, users UserLister) *AuthHandler {
	return &AuthHandler{auth: auth, users: users, now: time.Now}
}

// RegisterRoutes mounts the auth routes on rg
func (h *AuthHandler) RegisterRoutes(rg *gin.RouterGroup) {
	g := rg.Group("/auth")
	g.POST("/login", h.Login)
	g.POST("/refresh", h.Refresh)
	g.POST("/logout", h.Logout)
	g.GET("/me", h.Me)
	rg.GET("/users", h.ListUsers)
}

// Login handles POST /auth/login
func (h *AuthHandler) Login(c *gin.Context) {
	var req LoginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		middleware.HandleValidationError(c, err)
		return
	}
	result, err := h.auth.Login(c.Request.Context(), appidentity.LoginInput{
		Username: req.Username,
		Password: req.Password,
	})
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, result)
}

// Refresh handles POST /auth/refresh
func (h *AuthHandler) Refresh(c *gin.Context) {
	var req RefreshRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		middleware.HandleValidationError(c, err)
		return
	}
	result, err := h.auth.RefreshToken(c.Request.Context(), appidentity.RefreshTokenInput{RefreshToken: req.RefreshToken})
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, result)
}

// Logout handles POST /auth/logout. Dev header callers have no token to
// revoke and simply get 200.
func (h *AuthHandler) Logout(c *gin.Context) {
	actor, ok := h.actor(c)
	if !ok {
		return
	}
	input := appidentity.LogoutInput{UserID: actor.UserID}
	if claims := middleware.GetClaims(c); claims != nil {
		input.TokenID = claims.ID
		input.RemainingTTL = claims.RemainingTTL(h.now())
	}
	if err := h.auth.Logout(c.Request.Context(), input); err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, gin.H{"message": "Logged out"})
}

// Me handles GET /auth/me
func (h *AuthHandler) Me(c *gin.Context) {
	actor, ok := h.actor(c)
	if !ok {
		return
	}
	info, err := h.auth.GetCurrentUser(c.Request.Context(), actor.UserID)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, info)
}

// ListUsers handles GET /users, administrators only
func (h *AuthHandler) ListUsers(c *gin.Context) {
	actor, ok := h.actor(c)
	if !ok {
		return
	}
	if !actor.IsAdmin() {
		h.Forbidden(c, "Only administrators may list users")
		return
	}
	users, err := h.users.List(c.Request.Context())
	if err != nil {
		h.HandleError(c, err)
		return
	}
	c.JSON(http.StatusOK, dto.NewSuccessResponse(users))
}

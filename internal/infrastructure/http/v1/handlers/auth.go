package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"docgate/internal/core/apperror"
	"docgate/internal/domain/auth"
	"docgate/internal/infrastructure/http/v1/dto"
	"docgate/internal/infrastructure/http/v1/middleware"
)

// AuthHandler serves the delegated authentication endpoints. Only mounted in
// multi-user mode; single-user deployments authenticate against the shared
// secret and never reach these routes.
type AuthHandler struct {
	*BaseHandler
	service *auth.Service
}

// NewAuthHandler creates the auth handler.
func NewAuthHandler(base *BaseHandler, service *auth.Service) *AuthHandler {
	return &AuthHandler{BaseHandler: base, service: service}
}

// RegisterRoutes mounts public and protected auth endpoints.
func (h *AuthHandler) RegisterRoutes(public, protected *gin.RouterGroup) {
	public.POST("/request-token", h.RequestToken)
	public.POST("/refresh-token", h.RefreshToken)

	protected.GET("/validate-token", h.ValidateToken)
	protected.POST("/logout", h.Logout)
}

// RequestToken handles credential login. Invalid credentials intentionally
// come back as 200 with valid=false so the primary login path exposes no
// status side channel; only missing fields (400) and upstream failures (500)
// use error statuses.
func (h *AuthHandler) RequestToken(c *gin.Context) {
	var req dto.LoginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, dto.LoginResponse{
			Valid:   false,
			Message: "Username and password are required.",
		})
		return
	}

	outcome, err := h.service.Login(c.Request.Context(), req.Username, req.Password, c.ClientIP())
	if err != nil {
		h.Error(c, err)
		return
	}

	h.OK(c, dto.LoginResponse{
		Valid:              outcome.Valid,
		User:               dto.UserFromRemote(outcome.User),
		Token:              outcome.Token,
		Message:            outcome.Message,
		NeedsRecoveryCodes: outcome.NeedsRecoveryCodes,
	})
}

// ValidateToken reports whether the presented token identifies a principal.
// The Validated middleware has already authenticated the request, so reaching
// here means the token is good.
func (h *AuthHandler) ValidateToken(c *gin.Context) {
	h.OK(c, dto.CheckResponse{
		Valid: true,
		User:  dto.UserFromLocal(middleware.LocalUser(c)),
	})
}

// RefreshToken exchanges a near-expiry token for a fresh one.
func (h *AuthHandler) RefreshToken(c *gin.Context) {
	var req dto.RefreshRequest
	if !h.BindJSON(c, &req) {
		return
	}

	result, err := h.service.Refresh(c.Request.Context(), req.Token)
	if err != nil {
		h.Error(c, err)
		return
	}
	if !result.Success() {
		h.Error(c, apperror.NewUnauthorized("Token expired or failed validation."))
		return
	}

	h.OK(c, dto.RefreshResponse{Valid: true, Token: result.Token})
}

// Logout invalidates the cache entry for the presented token.
func (h *AuthHandler) Logout(c *gin.Context) {
	actorID := ""
	if user := middleware.LocalUser(c); user != nil {
		actorID = user.ID.String()
	}

	h.service.Logout(c.Request.Context(), middleware.Token(c), actorID)
	h.Success(c, "Logged out.")
}

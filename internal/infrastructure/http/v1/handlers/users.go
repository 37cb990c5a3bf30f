package handlers

import (
	"github.com/gin-gonic/gin"

	"docgate/internal/domain/auth"
	"docgate/internal/domain/identity"
	"docgate/internal/infrastructure/http/v1/dto"
)

// UserHandler proxies user management to the identity authority. Admin-only.
type UserHandler struct {
	*BaseHandler
	service *auth.Service
}

// NewUserHandler creates the user handler.
func NewUserHandler(base *BaseHandler, service *auth.Service) *UserHandler {
	return &UserHandler{BaseHandler: base, service: service}
}

// RegisterRoutes mounts user management endpoints.
func (h *UserHandler) RegisterRoutes(rg *gin.RouterGroup) {
	rg.GET("", h.List)
	rg.POST("", h.Create)
	rg.GET("/:id", h.Get)
	rg.PUT("/:id", h.Update)
	rg.DELETE("/:id", h.Delete)
}

// List returns all users known to the authority.
func (h *UserHandler) List(c *gin.Context) {
	users, err := h.service.ListUsers(c.Request.Context())
	if err != nil {
		h.Error(c, err)
		return
	}

	out := dto.UserListResponse{Users: make([]dto.UserRecordResponse, 0, len(users))}
	for _, u := range users {
		out.Users = append(out.Users, userRecordResponse(&u))
	}
	h.OK(c, out)
}

// Create provisions a user at the authority.
func (h *UserHandler) Create(c *gin.Context) {
	var req dto.CreateUserRequest
	if !h.BindJSON(c, &req) {
		return
	}

	user, err := h.service.CreateUser(c.Request.Context(), identity.NewUser{
		Username: req.Username,
		Password: req.Password,
		Email:    req.Email,
		Role:     auth.NormalizeRole(req.Role),
	})
	if err != nil {
		h.Error(c, err)
		return
	}
	h.Created(c, userRecordResponse(user))
}

// Get fetches one user.
func (h *UserHandler) Get(c *gin.Context) {
	user, err := h.service.GetUser(c.Request.Context(), c.Param("id"))
	if err != nil {
		h.Error(c, err)
		return
	}
	h.OK(c, userRecordResponse(user))
}

// Update applies a partial update.
func (h *UserHandler) Update(c *gin.Context) {
	var req dto.UpdateUserRequest
	if !h.BindJSON(c, &req) {
		return
	}

	update := identity.UserUpdate{
		Email:     req.Email,
		Suspended: req.Suspended,
	}
	if req.Role != nil {
		role := auth.NormalizeRole(*req.Role)
		update.Role = &role
	}

	user, err := h.service.UpdateUser(c.Request.Context(), c.Param("id"), update)
	if err != nil {
		h.Error(c, err)
		return
	}
	h.OK(c, userRecordResponse(user))
}

// Delete removes a user at the authority.
func (h *UserHandler) Delete(c *gin.Context) {
	if err := h.service.DeleteUser(c.Request.Context(), c.Param("id")); err != nil {
		h.Error(c, err)
		return
	}
	h.NoContent(c)
}

func userRecordResponse(user *identity.UserRecord) dto.UserRecordResponse {
	return dto.UserRecordResponse{
		ID:        user.ID,
		Username:  user.Username,
		Email:     user.Email,
		Role:      user.Role,
		Suspended: user.Suspended,
	}
}

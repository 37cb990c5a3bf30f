package handlers

import (
	"github.com/gin-gonic/gin"

	"docgate/internal/core/apperror"
	"docgate/internal/core/id"
	"docgate/internal/domain/auth"
	"docgate/internal/domain/documents"
	"docgate/internal/infrastructure/http/v1/dto"
	"docgate/internal/infrastructure/http/v1/middleware"
)

// DocumentHandler serves upload tracking and visibility resolution.
type DocumentHandler struct {
	*BaseHandler
	service *documents.Service
}

// NewDocumentHandler creates the document handler.
func NewDocumentHandler(base *BaseHandler, service *documents.Service) *DocumentHandler {
	return &DocumentHandler{BaseHandler: base, service: service}
}

// RegisterRoutes mounts document endpoints.
func (h *DocumentHandler) RegisterRoutes(rg *gin.RouterGroup) {
	rg.GET("", h.List)
	rg.POST("", h.Track)
	rg.DELETE("", h.Forget)
	rg.GET("/accessible-paths", h.AccessiblePaths)
}

// principal returns the request principal. Requests without one only occur
// in single-user deployments, where every document is visible; resolution
// treats them like an admin.
func (h *DocumentHandler) principal(c *gin.Context) *auth.LocalUser {
	if user := middleware.LocalUser(c); user != nil {
		return user
	}
	return &auth.LocalUser{Role: auth.RoleAdmin}
}

// List returns the upload records visible to the request principal.
func (h *DocumentHandler) List(c *gin.Context) {
	records, err := h.service.ListForUser(c.Request.Context(), h.principal(c))
	if err != nil {
		h.Error(c, err)
		return
	}

	out := dto.UploadListResponse{Documents: make([]dto.UploadRecordResponse, 0, len(records))}
	for i := range records {
		out.Documents = append(out.Documents, dto.UploadFromRecord(&records[i]))
	}
	h.OK(c, out)
}

// AccessiblePaths returns the resolved visibility set for the principal.
func (h *DocumentHandler) AccessiblePaths(c *gin.Context) {
	set, err := h.service.AccessiblePaths(c.Request.Context(), h.principal(c))
	if err != nil {
		h.Error(c, err)
		return
	}

	h.OK(c, dto.AccessiblePathsResponse{
		AllPaths: set.All(),
		Paths:    set.Paths(),
	})
}

// Track records an upload. Ownership follows the request principal; with no
// principal attached the record is untracked and visible to everyone.
func (h *DocumentHandler) Track(c *gin.Context) {
	var req dto.TrackUploadRequest
	if !h.BindJSON(c, &req) {
		return
	}

	var uploadedBy *id.ID
	if user := middleware.LocalUser(c); user != nil {
		uploadedBy = &user.ID
	}

	record, err := h.service.Track(c.Request.Context(), req.Filename, req.FolderName, req.FullPath, uploadedBy)
	if err != nil {
		h.Error(c, err)
		return
	}

	response := dto.UploadFromRecord(record)
	h.Created(c, response)
}

// Forget removes the tracking record for a path.
func (h *DocumentHandler) Forget(c *gin.Context) {
	fullPath := c.Query("path")
	if fullPath == "" {
		h.Error(c, apperror.NewValidation("path query parameter is required"))
		return
	}

	if err := h.service.Forget(c.Request.Context(), fullPath); err != nil {
		h.Error(c, err)
		return
	}
	h.NoContent(c)
}

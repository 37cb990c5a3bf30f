// Package dto defines request/response shapes for API v1.
package dto

// SuccessResponse is a generic success acknowledgement.
type SuccessResponse struct {
	Success bool   `json:"success"`
	Message string `json:"message,omitempty"`
}

// IDResponse carries the identifier of a created entity.
type IDResponse struct {
	ID string `json:"id"`
}

package dto

import (
	"docgate/internal/domain/auth"
	"docgate/internal/domain/identity"
)

// LoginRequest is the credential login body.
type LoginRequest struct {
	Username string `json:"username" binding:"required"`
	Password string `json:"password" binding:"required"`
}

// UserResponse is the principal shape returned to clients.
type UserResponse struct {
	ID       string `json:"id"`
	Username string `json:"username"`
	Email    string `json:"email,omitempty"`
	Role     string `json:"role"`
}

// LoginResponse is the login answer. Invalid credentials come back as 200
// with Valid=false; the shape is identical either way.
type LoginResponse struct {
	Valid   bool          `json:"valid"`
	User    *UserResponse `json:"user"`
	Token   string        `json:"token,omitempty"`
	Message string        `json:"message,omitempty"`

	NeedsRecoveryCodes bool `json:"needsRecoveryCodes,omitempty"`
}

// CheckResponse is the token-check answer.
type CheckResponse struct {
	Valid   bool          `json:"valid"`
	User    *UserResponse `json:"user,omitempty"`
	Message string        `json:"message,omitempty"`
}

// RefreshRequest carries the token to refresh.
type RefreshRequest struct {
	Token string `json:"token" binding:"required"`
}

// RefreshResponse is the refresh answer.
type RefreshResponse struct {
	Valid bool   `json:"valid"`
	Token string `json:"token,omitempty"`
}

// UserFromLocal maps a local user record to the response shape.
func UserFromLocal(user *auth.LocalUser) *UserResponse {
	if user == nil {
		return nil
	}
	return &UserResponse{
		ID:       user.ID.String(),
		Username: user.Username,
		Email:    user.Email,
		Role:     user.Role,
	}
}

// UserFromRemote maps a remote principal to the response shape.
func UserFromRemote(user *identity.RemoteUser) *UserResponse {
	if user == nil {
		return nil
	}
	role := user.Role
	if role == "" {
		role = auth.RoleDefault
	}
	return &UserResponse{
		ID:       user.ID,
		Username: user.Username,
		Email:    user.Email,
		Role:     role,
	}
}

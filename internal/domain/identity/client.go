// Package identity provides the client contract and validation cache for the
// remote identity authority that owns authentication in multi-user mode.
package identity

import (
	"context"
)

// RemoteUser is the principal shape returned by the identity authority.
type RemoteUser struct {
	ID       string `json:"id"`
	Username string `json:"username"`
	Email    string `json:"email,omitempty"`
	Role     string `json:"role,omitempty"`
}

// Validation is the result of a token validation. The authority always
// answers with this shape; transport failures are mapped to Valid=false
// by the caller so every call site can branch on Valid.
type Validation struct {
	Valid   bool        `json:"valid"`
	User    *RemoteUser `json:"user,omitempty"`
	Message string      `json:"message,omitempty"`
}

// LoginResult is the authority's answer to a credential login.
type LoginResult struct {
	Status             string      `json:"status"`
	Token              string      `json:"token,omitempty"`
	User               *RemoteUser `json:"user,omitempty"`
	Message            string      `json:"message,omitempty"`
	NeedsRecoveryCodes bool        `json:"needsRecoveryCodes,omitempty"`
}

// Success reports whether the login was accepted.
func (r LoginResult) Success() bool {
	return r.Status == "success"
}

// RefreshResult is the authority's answer to a token refresh.
type RefreshResult struct {
	Status  string      `json:"status"`
	Token   string      `json:"token,omitempty"`
	User    *RemoteUser `json:"user,omitempty"`
	Message string      `json:"message,omitempty"`
}

// Success reports whether the refresh was accepted.
func (r RefreshResult) Success() bool {
	return r.Status == "success"
}

// UserRecord is the full user entity managed by the authority.
type UserRecord struct {
	ID        string `json:"id"`
	Username  string `json:"username"`
	Email     string `json:"email,omitempty"`
	Role      string `json:"role,omitempty"`
	Suspended bool   `json:"suspended,omitempty"`
}

// NewUser carries the fields needed to provision a user at the authority.
type NewUser struct {
	Username string `json:"username"`
	Password string `json:"password"`
	Email    string `json:"email,omitempty"`
	Role     string `json:"role,omitempty"`
}

// UserUpdate carries a partial update; nil fields are left unchanged.
type UserUpdate struct {
	Email     *string `json:"email,omitempty"`
	Role      *string `json:"role,omitempty"`
	Suspended *bool   `json:"suspended,omitempty"`
}

// Client is the outbound contract toward the remote identity authority.
// Implementations make no authorization decisions and hold no cache; rejected
// operations inside the authority's contract come back as result values,
// transport-level failures come back as errors.
type Client interface {
	// ValidateToken asks the authority whether the token identifies a principal.
	ValidateToken(ctx context.Context, token string) (Validation, error)

	// RefreshToken exchanges a near-expiry token for a fresh one.
	RefreshToken(ctx context.Context, token string) (RefreshResult, error)

	// Login authenticates credentials and issues a token.
	Login(ctx context.Context, username, password string) (LoginResult, error)

	// CreateUser provisions a user at the authority.
	CreateUser(ctx context.Context, user NewUser) (*UserRecord, error)

	// GetUser fetches a user by the authority's ID.
	GetUser(ctx context.Context, userID string) (*UserRecord, error)

	// UpdateUser applies a partial update to a user.
	UpdateUser(ctx context.Context, userID string, update UserUpdate) (*UserRecord, error)

	// DeleteUser removes a user at the authority.
	DeleteUser(ctx context.Context, userID string) error

	// ListUsers returns all users known to the authority.
	ListUsers(ctx context.Context) ([]UserRecord, error)
}

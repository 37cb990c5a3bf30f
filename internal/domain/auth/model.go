// Package auth provides request authentication and principal reconciliation.
package auth

import (
	"time"

	"docgate/internal/core/id"
)

// Roles recognized by the gateway. The remote identity authority is the
// source of truth for role assignment; anything unrecognized degrades to
// RoleDefault.
const (
	RoleAdmin   = "admin"
	RoleManager = "manager"
	RoleDefault = "default"
)

// ManagedPasswordSentinel marks local records whose password lives at the
// identity authority. Such users can never authenticate locally.
const ManagedPasswordSentinel = "managed-by-identity-authority"

// LocalUser is the authoritative local user record, keyed by username.
// It is created on first successful remote authentication and its role is
// kept in sync with the authority on every validation. Only the reconciler
// writes it; every downstream authorization decision reads it.
type LocalUser struct {
	ID        id.ID     `db:"id" json:"id"`
	Username  string    `db:"username" json:"username"`
	Email     string    `db:"email" json:"email,omitempty"`
	Password  string    `db:"password" json:"-"`
	Role      string    `db:"role" json:"role"`
	Suspended bool      `db:"suspended" json:"suspended"`
	CreatedAt time.Time `db:"created_at" json:"createdAt"`
	UpdatedAt time.Time `db:"updated_at" json:"updatedAt"`
}

// NewManagedUser creates a local record for a remotely managed principal.
func NewManagedUser(username, email, role string) *LocalUser {
	now := time.Now()
	return &LocalUser{
		ID:        id.New(),
		Username:  username,
		Email:     email,
		Password:  ManagedPasswordSentinel,
		Role:      NormalizeRole(role),
		CreatedAt: now,
		UpdatedAt: now,
	}
}

// IsAdmin reports whether the user holds the admin role.
func (u *LocalUser) IsAdmin() bool {
	return u.Role == RoleAdmin
}

// NormalizeRole maps an authority-provided role onto the gateway's role set.
func NormalizeRole(role string) string {
	switch role {
	case RoleAdmin, RoleManager:
		return role
	default:
		return RoleDefault
	}
}

// Outcome describes what reconciliation did to the local record.
type Outcome int

const (
	// OutcomeUnchanged means the local record already matched the authority.
	OutcomeUnchanged Outcome = iota

	// OutcomeCreated means a local record was created on first sight.
	OutcomeCreated

	// OutcomeUpdated means the stored role was synced to the authority's.
	OutcomeUpdated
)

// String implements fmt.Stringer for log output.
func (o Outcome) String() string {
	switch o {
	case OutcomeCreated:
		return "created"
	case OutcomeUpdated:
		return "updated"
	default:
		return "unchanged"
	}
}

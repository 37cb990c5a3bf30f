package auth

import (
	"context"
)

// UserRepository defines local user storage operations.
// Absent records are reported as apperror.CodeNotFound.
type UserRepository interface {
	// Create creates a new local user.
	Create(ctx context.Context, user *LocalUser) error

	// FindByUsername retrieves a user by username.
	FindByUsername(ctx context.Context, username string) (*LocalUser, error)

	// Update updates user data.
	Update(ctx context.Context, user *LocalUser) error
}

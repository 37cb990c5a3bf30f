// Package context provides request-scoped values extraction.
package context

import (
	"context"
)

// UserContext contains the authenticated principal attached to a request.
// In single-user deployments with auth disabled no principal is attached
// and GetUser returns nil.
type UserContext struct {
	UserID    string
	Username  string
	Email     string
	Role      string
	Suspended bool
}

type userContextKey struct{}

// WithUser adds UserContext to context.
func WithUser(ctx context.Context, user *UserContext) context.Context {
	return context.WithValue(ctx, userContextKey{}, user)
}

// GetUser returns UserContext from context.
func GetUser(ctx context.Context) *UserContext {
	if v, ok := ctx.Value(userContextKey{}).(*UserContext); ok {
		return v
	}
	return nil
}

// GetUserID returns user ID from context or empty string.
func GetUserID(ctx context.Context) string {
	if u := GetUser(ctx); u != nil {
		return u.UserID
	}
	return ""
}

// HasRole checks if the request principal has the given role.
func HasRole(ctx context.Context, role string) bool {
	u := GetUser(ctx)
	return u != nil && u.Role == role
}

// IsAdmin reports whether the request principal is an admin.
func IsAdmin(ctx context.Context) bool {
	return HasRole(ctx, "admin")
}

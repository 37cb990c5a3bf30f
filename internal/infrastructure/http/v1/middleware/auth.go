package middleware

import (
	"strings"

	"github.com/gin-gonic/gin"

	"docgate/internal/core/apperror"
	appctx "docgate/internal/core/context"
	"docgate/internal/domain/auth"
)

const (
	// localUserKey is the gin context key holding the attached *auth.LocalUser.
	localUserKey = "local_user"

	// tokenKey is the gin context key holding the presented bearer token.
	tokenKey = "auth_token"
)

// BearerToken extracts the token from the Authorization header, falling back
// to the auth-token header used by older clients. Query-string tokens are not
// accepted: they leak into access logs.
func BearerToken(c *gin.Context) string {
	header := c.GetHeader("Authorization")
	if strings.HasPrefix(header, "Bearer ") {
		return strings.TrimPrefix(header, "Bearer ")
	}
	return c.GetHeader("auth-token")
}

// Validated runs the configured authentication strategy on every request.
// The strategy is chosen once at startup; a nil principal with no error
// means the request is authorized without one (single-user deployments).
func Validated(authenticator auth.Authenticator) gin.HandlerFunc {
	return func(c *gin.Context) {
		token := BearerToken(c)

		user, err := authenticator.Authenticate(c.Request.Context(), token)
		if err != nil {
			_ = c.Error(err)
			c.Abort()
			return
		}

		c.Set(tokenKey, token)
		if user != nil {
			c.Set(localUserKey, user)
			ctx := appctx.WithUser(c.Request.Context(), &appctx.UserContext{
				UserID:    user.ID.String(),
				Username:  user.Username,
				Email:     user.Email,
				Role:      user.Role,
				Suspended: user.Suspended,
			})
			c.Request = c.Request.WithContext(ctx)
		}

		c.Next()
	}
}

// LocalUser returns the principal attached by Validated, nil when the
// request was authorized without one.
func LocalUser(c *gin.Context) *auth.LocalUser {
	if v, exists := c.Get(localUserKey); exists {
		if user, ok := v.(*auth.LocalUser); ok {
			return user
		}
	}
	return nil
}

// Token returns the bearer token the request presented.
func Token(c *gin.Context) string {
	return c.GetString(tokenKey)
}

// RequireRole rejects requests whose principal lacks one of the given roles.
// Requests with no principal pass: they only occur in single-user
// deployments, where role separation does not exist.
func RequireRole(roles ...string) gin.HandlerFunc {
	return func(c *gin.Context) {
		user := LocalUser(c)
		if user == nil {
			c.Next()
			return
		}

		for _, role := range roles {
			if user.Role == role {
				c.Next()
				return
			}
		}

		_ = c.Error(apperror.NewForbidden("Insufficient permissions."))
		c.Abort()
	}
}

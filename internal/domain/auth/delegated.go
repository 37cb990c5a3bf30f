package auth

import (
	"context"

	"docgate/internal/core/apperror"
	"docgate/internal/domain/identity"
)

// DelegatedValidator authenticates requests against the remote identity
// authority through the validation cache, then reconciles the returned
// principal with the local user store. Used only in multi-user mode.
type DelegatedValidator struct {
	cache      *identity.ValidationCache
	reconciler *Reconciler
}

// NewDelegatedValidator creates the multi-user authenticator.
func NewDelegatedValidator(cache *identity.ValidationCache, reconciler *Reconciler) *DelegatedValidator {
	return &DelegatedValidator{cache: cache, reconciler: reconciler}
}

// Authenticate implements Authenticator.
func (v *DelegatedValidator) Authenticate(ctx context.Context, token string) (*LocalUser, error) {
	if token == "" {
		return nil, apperror.NewUnauthorized("No auth token found.")
	}

	result := v.cache.Validate(ctx, token)
	if !result.Valid || result.User == nil {
		message := result.Message
		if message == "" {
			message = "Invalid auth token."
		}
		return nil, apperror.NewUnauthorized(message)
	}

	user, _, err := v.reconciler.Reconcile(ctx, result.User)
	if err != nil {
		return nil, err
	}
	return user, nil
}

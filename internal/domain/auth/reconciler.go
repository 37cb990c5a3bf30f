package auth

import (
	"context"

	"docgate/internal/core/apperror"
	"docgate/internal/domain/events"
	"docgate/internal/domain/identity"
	"docgate/pkg/logger"
)

// Reconciler maps a remotely validated principal onto the authoritative local
// user record: find-or-create by username, keep the stored role in sync with
// the authority, and reject suspended users. The suspension check runs after
// the role sync so a local suspension always wins even while the authority
// still considers the account active.
type Reconciler struct {
	users  UserRepository
	events events.Logger
}

// NewReconciler creates a reconciler over the given user store.
func NewReconciler(users UserRepository, eventLog events.Logger) *Reconciler {
	if eventLog == nil {
		eventLog = events.Nop{}
	}
	return &Reconciler{users: users, events: eventLog}
}

// Reconcile returns the local record for the remote principal.
// Storage failures surface as authentication failures (401), not server
// faults, so clients retry the login flow instead of treating the condition
// as transient infrastructure failure.
func (r *Reconciler) Reconcile(ctx context.Context, remote *identity.RemoteUser) (*LocalUser, Outcome, error) {
	user, err := r.users.FindByUsername(ctx, remote.Username)
	switch {
	case err == nil:
		return r.sync(ctx, user, remote)
	case apperror.IsNotFound(err):
		return r.create(ctx, remote)
	default:
		logger.Error(ctx, "local user lookup failed", "username", remote.Username, "error", err)
		return nil, OutcomeUnchanged, apperror.NewUnauthorized("Failed to create local user.").WithCause(err)
	}
}

func (r *Reconciler) create(ctx context.Context, remote *identity.RemoteUser) (*LocalUser, Outcome, error) {
	user := NewManagedUser(remote.Username, remote.Email, remote.Role)
	if err := r.users.Create(ctx, user); err != nil {
		logger.Error(ctx, "failed to create local user", "username", remote.Username, "error", err)
		return nil, OutcomeUnchanged, apperror.NewUnauthorized("Failed to create local user.").WithCause(err)
	}

	logger.Info(ctx, "local user created from remote principal",
		"user_id", user.ID,
		"username", user.Username,
		"role", user.Role,
	)
	_ = r.events.LogEvent(ctx, events.EventLocalUserCreated, map[string]any{
		"username": user.Username,
		"role":     user.Role,
	}, user.ID.String())

	// Suspension is local moderation state; a record created this instant
	// cannot carry it.
	return user, OutcomeCreated, nil
}

func (r *Reconciler) sync(ctx context.Context, user *LocalUser, remote *identity.RemoteUser) (*LocalUser, Outcome, error) {
	outcome := OutcomeUnchanged

	// The authority is the role's source of truth.
	if role := NormalizeRole(remote.Role); user.Role != role {
		user.Role = role
		if err := r.users.Update(ctx, user); err != nil {
			logger.Error(ctx, "failed to sync local user role", "username", user.Username, "error", err)
			return nil, OutcomeUnchanged, apperror.NewUnauthorized("Failed to create local user.").WithCause(err)
		}
		outcome = OutcomeUpdated
		logger.Info(ctx, "local user role synced", "username", user.Username, "role", role)
	}

	if user.Suspended {
		return nil, outcome, apperror.NewUnauthorized("User is suspended from system")
	}
	return user, outcome, nil
}

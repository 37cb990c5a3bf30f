package auth

import (
	"context"

	"docgate/internal/core/apperror"
	"docgate/internal/domain/events"
	"docgate/internal/domain/identity"
	"docgate/pkg/logger"
)

// InvalidCredentialsMessage is the stable message returned for rejected
// logins. Returned with HTTP 200 on the primary login path so that status
// codes do not leak whether the username exists.
const InvalidCredentialsMessage = "[001] Invalid login credentials."

// LoginOutcome is the gateway's answer to a credential login.
type LoginOutcome struct {
	Valid              bool
	Token              string
	User               *identity.RemoteUser
	Message            string
	NeedsRecoveryCodes bool
}

// Service provides the gateway's delegated authentication operations:
// login, token check/refresh, logout and remote user management.
type Service struct {
	client     identity.Client
	cache      *identity.ValidationCache
	reconciler *Reconciler
	events     events.Logger
}

// NewService creates the auth service.
func NewService(client identity.Client, cache *identity.ValidationCache, reconciler *Reconciler, eventLog events.Logger) *Service {
	if eventLog == nil {
		eventLog = events.Nop{}
	}
	return &Service{client: client, cache: cache, reconciler: reconciler, events: eventLog}
}

// Login authenticates credentials against the identity authority. Rejected
// credentials return Valid=false with a nil error; only transport failures
// and reconciliation failures are errors.
func (s *Service) Login(ctx context.Context, username, password, ip string) (LoginOutcome, error) {
	result, err := s.client.Login(ctx, username, password)
	if err != nil {
		return LoginOutcome{}, apperror.NewUpstream(err)
	}

	if !result.Success() || result.User == nil {
		_ = s.events.LogEvent(ctx, events.EventFailedLogin, map[string]any{
			"ip":       orUnknown(ip, "Unknown IP"),
			"username": orUnknown(username, "Unknown user"),
		}, "")
		return LoginOutcome{Valid: false, Message: InvalidCredentialsMessage}, nil
	}

	user, outcome, err := s.reconciler.Reconcile(ctx, result.User)
	if err != nil {
		return LoginOutcome{}, err
	}

	logger.Info(ctx, "login accepted",
		"username", user.Username,
		"role", user.Role,
		"reconcile", outcome.String(),
	)
	_ = s.events.LogEvent(ctx, events.EventLogin, map[string]any{
		"ip":       orUnknown(ip, "Unknown IP"),
		"username": user.Username,
	}, user.ID.String())

	return LoginOutcome{
		Valid:              true,
		Token:              result.Token,
		User:               result.User,
		NeedsRecoveryCodes: result.NeedsRecoveryCodes,
	}, nil
}

// CheckToken validates a presented token through the cache.
func (s *Service) CheckToken(ctx context.Context, token string) identity.Validation {
	return s.cache.Validate(ctx, token)
}

// Refresh exchanges a token for a fresh one at the authority. The old
// token's cache entry is dropped so it cannot outlive its revocation.
func (s *Service) Refresh(ctx context.Context, token string) (identity.RefreshResult, error) {
	result, err := s.client.RefreshToken(ctx, token)
	if err != nil {
		return identity.RefreshResult{}, apperror.NewUpstream(err)
	}
	if result.Success() {
		s.cache.Clear(token)
	}
	return result, nil
}

// Logout invalidates the presented token's cache entry. The token itself is
// revoked at the authority by the authority's own surface, not here.
func (s *Service) Logout(ctx context.Context, token string, actorID string) {
	s.cache.Clear(token)
	_ = s.events.LogEvent(ctx, events.EventLogout, nil, actorID)
}

// --- Delegated user management ---

// CreateUser provisions a user at the authority.
func (s *Service) CreateUser(ctx context.Context, user identity.NewUser) (*identity.UserRecord, error) {
	record, err := s.client.CreateUser(ctx, user)
	if err != nil {
		return nil, apperror.NewUpstream(err)
	}
	return record, nil
}

// GetUser fetches a user from the authority.
func (s *Service) GetUser(ctx context.Context, userID string) (*identity.UserRecord, error) {
	record, err := s.client.GetUser(ctx, userID)
	if err != nil {
		return nil, apperror.NewUpstream(err)
	}
	if record == nil {
		return nil, apperror.NewNotFound("user", userID)
	}
	return record, nil
}

// UpdateUser applies a partial update at the authority.
func (s *Service) UpdateUser(ctx context.Context, userID string, update identity.UserUpdate) (*identity.UserRecord, error) {
	record, err := s.client.UpdateUser(ctx, userID, update)
	if err != nil {
		return nil, apperror.NewUpstream(err)
	}
	return record, nil
}

// DeleteUser removes a user at the authority and drops all cached
// validations, since any of them could belong to the removed user.
func (s *Service) DeleteUser(ctx context.Context, userID string) error {
	if err := s.client.DeleteUser(ctx, userID); err != nil {
		return apperror.NewUpstream(err)
	}
	s.cache.ClearAll()
	return nil
}

// ListUsers returns all users known to the authority.
func (s *Service) ListUsers(ctx context.Context) ([]identity.UserRecord, error) {
	records, err := s.client.ListUsers(ctx)
	if err != nil {
		return nil, apperror.NewUpstream(err)
	}
	return records, nil
}

func orUnknown(value, fallback string) string {
	if value == "" {
		return fallback
	}
	return value
}

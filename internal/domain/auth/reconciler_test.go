package auth

import (
	"context"
	"errors"
	"sync"
	"testing"

	"docgate/internal/core/apperror"
	"docgate/internal/domain/identity"
)

// memUserRepo is an in-memory UserRepository for tests.
type memUserRepo struct {
	mu        sync.Mutex
	byName    map[string]*LocalUser
	createErr error
	updateErr error
	creates   int
}

func newMemUserRepo() *memUserRepo {
	return &memUserRepo{byName: make(map[string]*LocalUser)}
}

func (m *memUserRepo) Create(_ context.Context, user *LocalUser) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.createErr != nil {
		return m.createErr
	}
	m.creates++
	clone := *user
	m.byName[user.Username] = &clone
	return nil
}

func (m *memUserRepo) FindByUsername(_ context.Context, username string) (*LocalUser, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if u, ok := m.byName[username]; ok {
		clone := *u
		return &clone, nil
	}
	return nil, apperror.NewNotFound("user", username)
}

func (m *memUserRepo) Update(_ context.Context, user *LocalUser) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.updateErr != nil {
		return m.updateErr
	}
	clone := *user
	m.byName[user.Username] = &clone
	return nil
}

func remotePrincipal(username, role string) *identity.RemoteUser {
	return &identity.RemoteUser{ID: "r-" + username, Username: username, Role: role}
}

func TestReconcile_CreatesOnFirstSight(t *testing.T) {
	repo := newMemUserRepo()
	r := NewReconciler(repo, nil)

	user, outcome, err := r.Reconcile(context.Background(), remotePrincipal("jane", "manager"))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if outcome != OutcomeCreated {
		t.Errorf("expected OutcomeCreated, got %s", outcome)
	}
	if user.Role != RoleManager {
		t.Errorf("expected role manager, got %s", user.Role)
	}
	if user.Password != ManagedPasswordSentinel {
		t.Errorf("expected sentinel password, got %q", user.Password)
	}
	if user.Suspended {
		t.Error("a freshly created record must not be suspended")
	}
}

func TestReconcile_Idempotent(t *testing.T) {
	repo := newMemUserRepo()
	r := NewReconciler(repo, nil)
	ctx := context.Background()

	first, _, err := r.Reconcile(ctx, remotePrincipal("jane", "default"))
	if err != nil {
		t.Fatalf("first reconcile: %v", err)
	}
	second, outcome, err := r.Reconcile(ctx, remotePrincipal("jane", "default"))
	if err != nil {
		t.Fatalf("second reconcile: %v", err)
	}

	if first.ID != second.ID {
		t.Errorf("reconcile must return the same local record, got %s then %s", first.ID, second.ID)
	}
	if outcome != OutcomeUnchanged {
		t.Errorf("expected OutcomeUnchanged, got %s", outcome)
	}
	if repo.creates != 1 {
		t.Errorf("expected exactly 1 create, got %d", repo.creates)
	}
}

func TestReconcile_SyncsDriftedRole(t *testing.T) {
	repo := newMemUserRepo()
	r := NewReconciler(repo, nil)
	ctx := context.Background()

	r.Reconcile(ctx, remotePrincipal("jane", "default"))
	user, outcome, err := r.Reconcile(ctx, remotePrincipal("jane", "manager"))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if outcome != OutcomeUpdated {
		t.Errorf("expected OutcomeUpdated, got %s", outcome)
	}
	if user.Role != RoleManager {
		t.Errorf("expected synced role manager, got %s", user.Role)
	}

	stored, _ := repo.FindByUsername(ctx, "jane")
	if stored.Role != RoleManager {
		t.Errorf("role sync must persist, stored role is %s", stored.Role)
	}
}

func TestReconcile_UnknownRoleDegradesToDefault(t *testing.T) {
	repo := newMemUserRepo()
	r := NewReconciler(repo, nil)

	user, _, err := r.Reconcile(context.Background(), remotePrincipal("jane", "superuser"))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if user.Role != RoleDefault {
		t.Errorf("unrecognized role must degrade to default, got %s", user.Role)
	}
}

func TestReconcile_SuspendedRejectsAfterSync(t *testing.T) {
	repo := newMemUserRepo()
	r := NewReconciler(repo, nil)
	ctx := context.Background()

	r.Reconcile(ctx, remotePrincipal("jane", "default"))
	stored, _ := repo.FindByUsername(ctx, "jane")
	stored.Suspended = true
	repo.Update(ctx, stored)

	// Role drift plus suspension: the sync happens, then suspension wins.
	_, outcome, err := r.Reconcile(ctx, remotePrincipal("jane", "manager"))
	if err == nil {
		t.Fatal("suspended user must be rejected")
	}
	appErr, ok := apperror.AsAppError(err)
	if !ok || appErr.HTTPStatus != 401 {
		t.Fatalf("expected 401, got %v", err)
	}
	if appErr.Message != "User is suspended from system" {
		t.Errorf("unexpected message: %q", appErr.Message)
	}
	if outcome != OutcomeUpdated {
		t.Errorf("role sync must run before the suspension check, got %s", outcome)
	}

	stored, _ = repo.FindByUsername(ctx, "jane")
	if stored.Role != RoleManager {
		t.Error("role must be synced even when the user is suspended")
	}
}

func TestReconcile_StorageFailureIsAuthFailure(t *testing.T) {
	repo := newMemUserRepo()
	repo.createErr = errors.New("disk full")
	r := NewReconciler(repo, nil)

	_, _, err := r.Reconcile(context.Background(), remotePrincipal("jane", "default"))
	if err == nil {
		t.Fatal("expected error")
	}
	appErr, ok := apperror.AsAppError(err)
	if !ok || appErr.HTTPStatus != 401 {
		t.Fatalf("storage failure must surface as 401, got %v", err)
	}
	if appErr.Message != "Failed to create local user." {
		t.Errorf("unexpected message: %q", appErr.Message)
	}
}

package identity

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"testing"
	"time"
)

// stubClient counts ValidateToken calls and answers from a canned table.
type stubClient struct {
	mu      sync.Mutex
	calls   int
	results map[string]Validation
	err     error
}

func (s *stubClient) ValidateToken(_ context.Context, token string) (Validation, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.calls++
	if s.err != nil {
		return Validation{}, s.err
	}
	if v, ok := s.results[token]; ok {
		return v, nil
	}
	return Validation{Valid: false, Message: "Invalid token"}, nil
}

func (s *stubClient) callCount() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.calls
}

func (s *stubClient) RefreshToken(context.Context, string) (RefreshResult, error) {
	return RefreshResult{}, nil
}
func (s *stubClient) Login(context.Context, string, string) (LoginResult, error) {
	return LoginResult{}, nil
}
func (s *stubClient) CreateUser(context.Context, NewUser) (*UserRecord, error) { return nil, nil }
func (s *stubClient) GetUser(context.Context, string) (*UserRecord, error)    { return nil, nil }
func (s *stubClient) UpdateUser(context.Context, string, UserUpdate) (*UserRecord, error) {
	return nil, nil
}
func (s *stubClient) DeleteUser(context.Context, string) error      { return nil }
func (s *stubClient) ListUsers(context.Context) ([]UserRecord, error) { return nil, nil }

func validFor(username string) Validation {
	return Validation{Valid: true, User: &RemoteUser{ID: "u1", Username: username, Role: "default"}}
}

func newTestCache(client Client, start time.Time) (*ValidationCache, *time.Time) {
	cache := NewValidationCache(client)
	now := start
	cache.now = func() time.Time { return now }
	return cache, &now
}

func TestValidate_CacheHitWithinTTL(t *testing.T) {
	stub := &stubClient{results: map[string]Validation{"tok": validFor("jane")}}
	cache, _ := newTestCache(stub, time.Unix(1000, 0))
	ctx := context.Background()

	first := cache.Validate(ctx, "tok")
	second := cache.Validate(ctx, "tok")

	if !first.Valid || !second.Valid {
		t.Fatalf("expected both validations to succeed, got %+v / %+v", first, second)
	}
	if got := stub.callCount(); got != 1 {
		t.Errorf("expected exactly 1 remote call within TTL, got %d", got)
	}
}

func TestValidate_ExpiryTriggersRemoteCall(t *testing.T) {
	stub := &stubClient{results: map[string]Validation{"tok": validFor("jane")}}
	cache, now := newTestCache(stub, time.Unix(1000, 0))
	ctx := context.Background()

	cache.Validate(ctx, "tok")
	cache.Validate(ctx, "tok")
	*now = now.Add(ValidationTTL + time.Second)
	cache.Validate(ctx, "tok")

	if got := stub.callCount(); got != 2 {
		t.Errorf("expected a new remote call after TTL elapsed, got %d calls", got)
	}
}

func TestValidate_FailureNeverCached(t *testing.T) {
	stub := &stubClient{results: map[string]Validation{}}
	cache, _ := newTestCache(stub, time.Unix(1000, 0))
	ctx := context.Background()

	first := cache.Validate(ctx, "bad")
	second := cache.Validate(ctx, "bad")

	if first.Valid || second.Valid {
		t.Fatal("expected both validations to fail")
	}
	if got := stub.callCount(); got != 2 {
		t.Errorf("failed validations must both reach the authority, got %d calls", got)
	}
	if cache.Len() != 0 {
		t.Errorf("failed validation must not be cached, cache has %d entries", cache.Len())
	}
}

func TestValidate_TransportErrorMapsToInvalid(t *testing.T) {
	stub := &stubClient{err: errors.New("connection refused")}
	cache, _ := newTestCache(stub, time.Unix(1000, 0))

	result := cache.Validate(context.Background(), "tok")
	if result.Valid {
		t.Fatal("transport failure must yield Valid=false")
	}
	if result.Message != "Authentication service unavailable." {
		t.Errorf("unexpected message: %q", result.Message)
	}
	if cache.Len() != 0 {
		t.Error("transport failure must not be cached")
	}
}

func TestClear_ForcesRevalidation(t *testing.T) {
	stub := &stubClient{results: map[string]Validation{"tok": validFor("jane")}}
	cache, _ := newTestCache(stub, time.Unix(1000, 0))
	ctx := context.Background()

	cache.Validate(ctx, "tok")
	cache.Clear("tok")
	cache.Validate(ctx, "tok")

	if got := stub.callCount(); got != 2 {
		t.Errorf("Clear must bypass the cache on next validate, got %d calls", got)
	}
}

func TestClearAll_EmptiesCache(t *testing.T) {
	stub := &stubClient{results: map[string]Validation{
		"a": validFor("a"),
		"b": validFor("b"),
	}}
	cache, _ := newTestCache(stub, time.Unix(1000, 0))
	ctx := context.Background()

	cache.Validate(ctx, "a")
	cache.Validate(ctx, "b")
	cache.ClearAll()

	if cache.Len() != 0 {
		t.Errorf("expected empty cache, got %d entries", cache.Len())
	}
}

func TestValidate_SweepDropsExpiredOnly(t *testing.T) {
	results := make(map[string]Validation)
	for i := 0; i <= sweepThreshold; i++ {
		results[fmt.Sprintf("tok-%d", i)] = validFor("user")
	}
	results["fresh"] = validFor("fresh")
	results["new"] = validFor("new")

	stub := &stubClient{results: results}
	cache, now := newTestCache(stub, time.Unix(1000, 0))
	ctx := context.Background()

	// Fill past the threshold, then let everything expire.
	for i := 0; i <= sweepThreshold; i++ {
		cache.Validate(ctx, fmt.Sprintf("tok-%d", i))
	}
	*now = now.Add(ValidationTTL + time.Second)

	// A still-fresh entry inserted after expiry must survive the sweep.
	cache.Validate(ctx, "fresh")
	cache.Validate(ctx, "new")

	if got := cache.Len(); got != 2 {
		t.Errorf("sweep should leave only unexpired entries, got %d", got)
	}
}

func TestValidate_ConcurrentAccess(t *testing.T) {
	stub := &stubClient{results: map[string]Validation{"tok": validFor("jane")}}
	cache, _ := newTestCache(stub, time.Unix(1000, 0))
	ctx := context.Background()

	var wg sync.WaitGroup
	for i := 0; i < 32; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for j := 0; j < 50; j++ {
				cache.Validate(ctx, "tok")
			}
		}()
	}
	wg.Wait()

	result := cache.Validate(ctx, "tok")
	if !result.Valid {
		t.Fatal("expected cached validation to remain valid under concurrency")
	}
}

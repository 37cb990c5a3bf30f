package identity

import (
	"context"
	"sync"
	"time"

	"docgate/pkg/logger"
)

const (
	// ValidationTTL bounds how long a successful validation is reused
	// before the authority is consulted again.
	ValidationTTL = 5 * time.Minute

	// sweepThreshold is the soft cache size ceiling. When exceeded, all
	// expired entries are dropped in one pass before the next insert.
	// There is no LRU eviction of unexpired entries.
	sweepThreshold = 100
)

type cacheEntry struct {
	result    Validation
	expiresAt time.Time
}

// ValidationCache fronts the identity authority with a bounded, TTL-expiring
// token validation cache. It absorbs repeated validations of the same token
// within the TTL window so the remote call rate per token is at most one per
// window. Failed validations are never cached: a retried request with a
// rotated token is revalidated immediately.
//
// Safe for concurrent use. Two requests missing on the same token may both
// call the authority; that duplicate call is accepted, no single-flight
// guarantee is made.
type ValidationCache struct {
	client  Client
	mu      sync.RWMutex
	entries map[string]cacheEntry

	// now is injectable for tests.
	now func() time.Time
}

// NewValidationCache creates a cache in front of the given client.
func NewValidationCache(client Client) *ValidationCache {
	return &ValidationCache{
		client:  client,
		entries: make(map[string]cacheEntry),
		now:     time.Now,
	}
}

// Validate returns the cached validation for token when fresh, otherwise asks
// the authority. Transport failures are mapped to a Valid=false result so the
// caller never has to handle an error; they are never cached.
func (c *ValidationCache) Validate(ctx context.Context, token string) Validation {
	c.mu.RLock()
	entry, ok := c.entries[token]
	c.mu.RUnlock()
	if ok && entry.expiresAt.After(c.now()) {
		return entry.result
	}

	result, err := c.client.ValidateToken(ctx, token)
	if err != nil {
		logger.Error(ctx, "token validation against identity authority failed", "error", err)
		return Validation{Valid: false, Message: "Authentication service unavailable."}
	}

	if !result.Valid {
		return result
	}

	c.mu.Lock()
	if len(c.entries) > sweepThreshold {
		c.sweepLocked()
	}
	c.entries[token] = cacheEntry{result: result, expiresAt: c.now().Add(ValidationTTL)}
	c.mu.Unlock()

	return result
}

// sweepLocked removes all expired entries. Caller holds the write lock.
func (c *ValidationCache) sweepLocked() {
	now := c.now()
	for token, entry := range c.entries {
		if entry.expiresAt.Before(now) {
			delete(c.entries, token)
		}
	}
}

// Clear removes a single token's entry. Used on logout so a revoked token is
// revalidated (and rejected) by the authority on its next use.
func (c *ValidationCache) Clear(token string) {
	c.mu.Lock()
	delete(c.entries, token)
	c.mu.Unlock()
}

// ClearAll empties the cache. Used for administrative resets.
func (c *ValidationCache) ClearAll() {
	c.mu.Lock()
	c.entries = make(map[string]cacheEntry)
	c.mu.Unlock()
}

// Len returns the number of cached entries, expired or not.
func (c *ValidationCache) Len() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return len(c.entries)
}

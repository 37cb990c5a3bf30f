// Package events defines the security/telemetry event log contract.
package events

import (
	"context"
	"time"
)

// Well-known event names emitted by the gateway.
const (
	EventLogin            = "login_event"
	EventFailedLogin      = "failed_login_invalid_credentials"
	EventLogout           = "logout_event"
	EventLocalUserCreated = "local_user_created"
)

// Entry is a recorded event.
type Entry struct {
	ID         string         `json:"id"`
	Name       string         `json:"event"`
	Payload    map[string]any `json:"metadata,omitempty"`
	OccurredBy string         `json:"userId,omitempty"`
	OccurredAt time.Time      `json:"occurredAt"`
}

// Logger records events. Implementations must never fail a request on a
// logging error; callers ignore the returned error on hot paths and it exists
// so tests and admin tooling can observe failures.
type Logger interface {
	LogEvent(ctx context.Context, name string, payload map[string]any, actorID string) error
}

// Nop is a Logger that discards everything. Used when no event store is wired.
type Nop struct{}

// LogEvent implements Logger.
func (Nop) LogEvent(context.Context, string, map[string]any, string) error { return nil }

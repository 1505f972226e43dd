package session

import (
	"context"
	"time"
)

// Binding links a browser session cookie to the external identity it was
// issued for. It carries only identity pointers and the material needed
// to rebind after a restart, never derived session state.
type Binding struct {
	SessionID    string    // unique session identifier
	Provider     string    // identity provider name
	Subject      string    // provider-scoped principal id
	Email        string    `json:",omitempty"`
	Name         string    `json:",omitempty"`
	RefreshToken string    `json:",omitempty"` // empty for self-issuing providers
	ExpiresAt    time.Time // absolute expiry time
}

// BindingStore defines how session bindings are stored and retrieved.
// Implementations (e.g. Redis) must remain stateless and opaque.
type BindingStore interface {
	Create(ctx context.Context, b Binding) error
	Get(ctx context.Context, sessionID string) (*Binding, error)
	Delete(ctx context.Context, sessionID string) error
}

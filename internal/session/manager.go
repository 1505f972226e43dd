package session

import (
	"context"
	"errors"
	"sync"
	"time"

	"tourneybase-web/internal/backend"
	"tourneybase-web/internal/gateway"
	"tourneybase-web/internal/identity"
	"tourneybase-web/internal/identity/provider"
	"tourneybase-web/internal/logger"
)

// ErrNoSession is returned when a cookie does not resolve to a live or
// rebindable session. Callers route to the login view.
var ErrNoSession = errors.New("session: not signed in")

// Manager maps session cookies to live Sessions. Each principal gets its
// own gateway client, so the Authorization header stays single-writer:
// only that principal's Session ever touches it.
type Manager struct {
	gatewayCfg gateway.Config
	providers  *provider.Registry
	bindings   BindingStore
	ttl        time.Duration

	mu   sync.Mutex
	live map[string]*Session
}

func NewManager(
	gatewayCfg gateway.Config,
	providers *provider.Registry,
	bindings BindingStore,
	ttl time.Duration,
) *Manager {
	return &Manager{
		gatewayCfg: gatewayCfg,
		providers:  providers,
		bindings:   bindings,
		ttl:        ttl,
		live:       make(map[string]*Session),
	}
}

// Establish creates a session for a freshly exchanged identity, persists
// its binding, and runs the bootstrap to completion.
func (m *Manager) Establish(
	ctx context.Context,
	id *identity.Identity,
	refreshToken string,
) (string, *Session, time.Time, error) {

	sessionID, err := GenerateID()
	if err != nil {
		return "", nil, time.Time{}, err
	}

	expiresAt := time.Now().Add(m.ttl)

	binding := Binding{
		SessionID:    sessionID,
		Provider:     id.Provider,
		Subject:      id.Subject,
		Email:        id.Email,
		Name:         id.Name,
		RefreshToken: refreshToken,
		ExpiresAt:    expiresAt,
	}

	if err := m.bindings.Create(ctx, binding); err != nil {
		return "", nil, time.Time{}, err
	}

	sess := m.spawn(sessionID)
	sess.HandleIdentityChange(ctx, id)

	m.mu.Lock()
	m.live[sessionID] = sess
	m.mu.Unlock()

	return sessionID, sess, expiresAt, nil
}

// Resolve returns the live session for a cookie, rebuilding it from the
// persisted binding after a restart. Unknown or expired cookies yield
// ErrNoSession.
func (m *Manager) Resolve(ctx context.Context, sessionID string) (*Session, error) {
	if sessionID == "" {
		return nil, ErrNoSession
	}

	m.mu.Lock()
	if sess, ok := m.live[sessionID]; ok {
		m.mu.Unlock()
		return sess, nil
	}
	m.mu.Unlock()

	binding, err := m.bindings.Get(ctx, sessionID)
	if err != nil {
		return nil, err
	}
	if binding == nil {
		return nil, ErrNoSession
	}

	if time.Now().After(binding.ExpiresAt) {
		_ = m.bindings.Delete(ctx, sessionID)
		return nil, ErrNoSession
	}

	p, err := m.providers.Get(binding.Provider)
	if err != nil {
		return nil, err
	}

	id, err := p.Rebind(ctx, binding.Subject, binding.Email, binding.Name, binding.RefreshToken)
	if err != nil {
		logger.Warn("session rebind failed", map[string]any{
			"provider": binding.Provider,
			"error":    err.Error(),
		})
		_ = m.bindings.Delete(ctx, sessionID)
		return nil, ErrNoSession
	}

	sess := m.spawn(sessionID)

	m.mu.Lock()
	if existing, ok := m.live[sessionID]; ok {
		// another request rebound it first
		m.mu.Unlock()
		return existing, nil
	}
	m.live[sessionID] = sess
	m.mu.Unlock()

	sess.HandleIdentityChange(ctx, id)

	return sess, nil
}

// Terminate signs the session out and drops its binding. Idempotent:
// terminating an unknown or already-terminated session is a no-op.
func (m *Manager) Terminate(ctx context.Context, sessionID string) {
	m.mu.Lock()
	sess, ok := m.live[sessionID]
	delete(m.live, sessionID)
	m.mu.Unlock()

	if ok {
		sess.SignOut()
	}

	if err := m.bindings.Delete(ctx, sessionID); err != nil {
		logger.Warn("failed to delete session binding", map[string]any{
			"error": err.Error(),
		})
	}
}

// spawn builds the per-session gateway client and wires its 401
// interceptor: a single unauthorized response from any call terminates
// the whole session.
func (m *Manager) spawn(sessionID string) *Session {
	gw := gateway.New(m.gatewayCfg, func() {
		logger.Warn("backend returned 401, terminating session", nil)
		go m.Terminate(context.Background(), sessionID)
	})

	return New(gw, backend.New(gw))
}

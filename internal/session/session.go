package session

import (
	"context"
	"errors"
	"sync"

	"tourneybase-web/internal/backend"
	"tourneybase-web/internal/domain"
	"tourneybase-web/internal/gateway"
	"tourneybase-web/internal/identity"
	"tourneybase-web/internal/logger"
)

// Session is the source of truth for "who is signed in and what is their
// application profile" for one principal. It owns the bootstrap protocol:
// resolving an external identity's bearer credential into a backend
// profile, exactly once per identity-change event.
//
// The derived state (identity, profile, loading) lives only in memory and
// is never persisted.
type Session struct {
	gw  *gateway.Client
	api *backend.Client

	mu       sync.Mutex
	identity *identity.Identity
	profile  *domain.Profile
	loading  bool
	gen      uint64
	changed  chan struct{}
}

func New(gw *gateway.Client, api *backend.Client) *Session {
	return &Session{
		gw:      gw,
		api:     api,
		loading: true,
		changed: make(chan struct{}),
	}
}

// API returns the typed backend client bound to this session's credential.
func (s *Session) API() *backend.Client {
	return s.api
}

// CurrentIdentity returns the external identity, or nil when signed out.
func (s *Session) CurrentIdentity() *identity.Identity {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.identity
}

// CurrentProfile returns the resolved profile, or nil. While IsLoading
// reports true, absence is not final.
func (s *Session) CurrentProfile() *domain.Profile {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.profile
}

// IsLoading reports whether a bootstrap or explicit refetch is in flight.
func (s *Session) IsLoading() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.loading
}

// Snapshot returns the full triple in one consistent read.
func (s *Session) Snapshot() (*identity.Identity, *domain.Profile, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.identity, s.profile, s.loading
}

// HandleIdentityChange is the sole external trigger for re-evaluating
// session state. A nil identity is the terminal logged-out state; a
// non-nil identity starts a bootstrap: acquire a credential, install it
// on the gateway, fetch the profile once.
//
// Results resolved after a later identity change or sign-out are
// discarded (generation guard).
func (s *Session) HandleIdentityChange(ctx context.Context, id *identity.Identity) {
	s.mu.Lock()
	s.gen++
	gen := s.gen
	s.identity = id

	if id == nil {
		s.profile = nil
		s.loading = false
		s.gw.ClearAuthorization()
		s.notifyLocked()
		s.mu.Unlock()
		return
	}

	s.loading = true
	s.mu.Unlock()

	token, err := id.Credential(ctx)
	if err != nil {
		// fatal to this bootstrap attempt only: leave the session in
		// logged-out shape, the store itself stays usable
		logger.Error("credential acquisition failed", map[string]any{
			"provider": id.Provider,
			"error":    err.Error(),
		})
		s.mu.Lock()
		if s.gen == gen {
			s.identity = nil
			s.profile = nil
			s.loading = false
			s.notifyLocked()
		}
		s.mu.Unlock()
		return
	}

	s.gw.SetAuthorization(token)

	profile, err := s.api.Player(ctx)

	s.mu.Lock()
	defer s.mu.Unlock()
	if s.gen != gen {
		return
	}

	switch {
	case err == nil:
		s.profile = profile

	case errors.Is(err, gateway.ErrNotFound):
		// expected state: identity present, profile not created yet
		s.profile = nil

	case errors.Is(err, gateway.ErrUnauthorized):
		// the backend rejected the credential; the gateway hook has
		// already torn the session down globally
		s.identity = nil
		s.profile = nil

	default:
		// transient failure: do not clear a previously good profile
		logger.Error("profile bootstrap fetch failed", map[string]any{
			"error": err.Error(),
		})
	}

	s.loading = false
	s.notifyLocked()
}

// RefetchProfile forces a re-fetch of the profile using the current
// identity's credential. Safe to call concurrently: calls race only on
// the final assignment, which is acceptable because the profile GET is
// idempotent and any valid response is equally authoritative.
func (s *Session) RefetchProfile(ctx context.Context) error {
	s.mu.Lock()
	gen := s.gen
	id := s.identity
	if id == nil {
		s.profile = nil
		s.loading = false
		s.notifyLocked()
		s.mu.Unlock()
		return nil
	}
	s.loading = true
	s.mu.Unlock()

	token, err := id.Credential(ctx)
	if err != nil {
		logger.Error("credential acquisition failed on refetch", map[string]any{
			"provider": id.Provider,
			"error":    err.Error(),
		})
		s.finishRefetch(gen, nil, true)
		return err
	}

	s.gw.SetAuthorization(token)

	profile, err := s.api.Player(ctx)
	if err != nil {
		if errors.Is(err, gateway.ErrNotFound) {
			s.finishRefetch(gen, nil, true)
			return nil
		}
		logger.Error("profile refetch failed", map[string]any{
			"error": err.Error(),
		})
		s.finishRefetch(gen, nil, true)
		return err
	}

	s.finishRefetch(gen, profile, true)
	return nil
}

func (s *Session) finishRefetch(gen uint64, profile *domain.Profile, assign bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.gen != gen {
		return
	}
	if assign {
		s.profile = profile
	}
	s.loading = false
	s.notifyLocked()
}

// SetProfile installs an authoritative profile returned by a mutation,
// avoiding an extra round trip.
func (s *Session) SetProfile(profile *domain.Profile) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.profile = profile
	s.loading = false
	s.notifyLocked()
}

// SignOut clears identity and profile and removes the credential from
// the gateway. Calling it repeatedly is harmless.
func (s *Session) SignOut() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.gen++
	s.identity = nil
	s.profile = nil
	s.loading = false
	s.gw.ClearAuthorization()
	s.notifyLocked()
}

// WaitReady blocks until the current bootstrap (or refetch) resolves.
// Dependent views must not treat absence of identity or profile as
// final before this returns.
func (s *Session) WaitReady(ctx context.Context) error {
	for {
		s.mu.Lock()
		if !s.loading {
			s.mu.Unlock()
			return nil
		}
		ch := s.changed
		s.mu.Unlock()

		select {
		case <-ch:
		case <-ctx.Done():
			return ctx.Err()
		}
	}
}

func (s *Session) notifyLocked() {
	close(s.changed)
	s.changed = make(chan struct{})
}

package session

import (
	"context"
	"errors"
	"net/http"
	"net/url"
	"sync"
	"testing"
	"time"

	"tourneybase-web/internal/domain"
	"tourneybase-web/internal/gateway"
	"tourneybase-web/internal/identity/provider"
	"tourneybase-web/internal/identity/provider/local"
)

// memBindings is an in-memory BindingStore for tests.
type memBindings struct {
	mu sync.Mutex
	m  map[string]Binding
}

func newMemBindings() *memBindings {
	return &memBindings{m: make(map[string]Binding)}
}

func (s *memBindings) Create(ctx context.Context, b Binding) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.m[b.SessionID] = b
	return nil
}

func (s *memBindings) Get(ctx context.Context, sessionID string) (*Binding, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	b, ok := s.m[sessionID]
	if !ok {
		return nil, nil
	}
	return &b, nil
}

func (s *memBindings) Delete(ctx context.Context, sessionID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.m, sessionID)
	return nil
}

func newTestManager(t *testing.T, fb *fakeBackend, bindings BindingStore, ttl time.Duration) *Manager {
	t.Helper()

	p, err := local.New("test-secret", "http://localhost/oauth/callback/local")
	if err != nil {
		t.Fatalf("local provider: %v", err)
	}

	cfg := gateway.Config{BaseURL: fb.srv.URL, Timeout: 2 * time.Second}
	return NewManager(cfg, provider.NewRegistry(p), bindings, ttl)
}

func TestEstablishThenResolve(t *testing.T) {
	fb := newFakeBackend(t)
	fb.serveProfile(domain.Profile{ID: "p1", GamerTag: "ace"})

	m := newTestManager(t, fb, newMemBindings(), time.Hour)

	id := testIdentity(staticCred("cred"))
	sid, sess, expiresAt, err := m.Establish(context.Background(), id, "")
	if err != nil {
		t.Fatalf("establish: %v", err)
	}
	if sid == "" {
		t.Fatal("expected a session id")
	}
	if time.Until(expiresAt) <= 0 {
		t.Fatal("expected a future expiry")
	}
	if sess.CurrentProfile() == nil {
		t.Fatal("establish runs the bootstrap to completion")
	}

	resolved, err := m.Resolve(context.Background(), sid)
	if err != nil {
		t.Fatalf("resolve: %v", err)
	}
	if resolved != sess {
		t.Fatal("resolve must return the live session, not a rebuilt one")
	}

	// a second principal gets its own session and gateway
	sid2, sess2, _, err := m.Establish(context.Background(), testIdentity(staticCred("cred-2")), "")
	if err != nil {
		t.Fatalf("establish second: %v", err)
	}
	if sid2 == sid || sess2 == sess {
		t.Fatal("distinct cookies must map to distinct sessions")
	}
}

func TestResolveRebindsAfterRestart(t *testing.T) {
	fb := newFakeBackend(t)
	fb.serveProfile(domain.Profile{ID: "p1", GamerTag: "ace"})

	bindings := newMemBindings()
	m1 := newTestManager(t, fb, bindings, time.Hour)

	p, err := local.New("test-secret", "http://localhost/oauth/callback/local")
	if err != nil {
		t.Fatalf("local provider: %v", err)
	}
	id, _, err := p.ExchangeCode(context.Background(), mustMintCode(t, p), "")
	if err != nil {
		t.Fatalf("exchange: %v", err)
	}

	sid, _, _, err := m1.Establish(context.Background(), id, "")
	if err != nil {
		t.Fatalf("establish: %v", err)
	}

	// a fresh manager over the same store simulates a process restart
	m2 := newTestManager(t, fb, bindings, time.Hour)

	sess, err := m2.Resolve(context.Background(), sid)
	if err != nil {
		t.Fatalf("resolve after restart: %v", err)
	}
	got := sess.CurrentIdentity()
	if got == nil || got.Subject != id.Subject {
		t.Fatalf("expected rebound identity %q, got %v", id.Subject, got)
	}
	if sess.CurrentProfile() == nil {
		t.Fatal("rebind must re-run the bootstrap")
	}
}

func TestResolveExpiredBinding(t *testing.T) {
	fb := newFakeBackend(t)
	fb.serveProfile(domain.Profile{ID: "p1"})

	bindings := newMemBindings()
	m := newTestManager(t, fb, bindings, -time.Minute)

	sid, _, _, err := m.Establish(context.Background(), testIdentity(staticCred("cred")), "")
	if err != nil {
		t.Fatalf("establish: %v", err)
	}

	// drop the live entry so Resolve must consult the store
	m.Terminate(context.Background(), sid)
	_ = bindings.Create(context.Background(), Binding{
		SessionID: sid,
		Provider:  "local",
		Subject:   "local-dev-player",
		ExpiresAt: time.Now().Add(-time.Minute),
	})

	if _, err := m.Resolve(context.Background(), sid); !errors.Is(err, ErrNoSession) {
		t.Fatalf("expected ErrNoSession for expired binding, got %v", err)
	}
	if b, _ := bindings.Get(context.Background(), sid); b != nil {
		t.Fatal("expired binding should be deleted on resolve")
	}
}

func TestResolveUnknownSession(t *testing.T) {
	fb := newFakeBackend(t)
	m := newTestManager(t, fb, newMemBindings(), time.Hour)

	if _, err := m.Resolve(context.Background(), ""); !errors.Is(err, ErrNoSession) {
		t.Fatalf("expected ErrNoSession for empty cookie, got %v", err)
	}
	if _, err := m.Resolve(context.Background(), "nope"); !errors.Is(err, ErrNoSession) {
		t.Fatalf("expected ErrNoSession for unknown cookie, got %v", err)
	}
}

func TestTerminateIdempotent(t *testing.T) {
	fb := newFakeBackend(t)
	fb.serveProfile(domain.Profile{ID: "p1"})

	bindings := newMemBindings()
	m := newTestManager(t, fb, bindings, time.Hour)

	sid, sess, _, err := m.Establish(context.Background(), testIdentity(staticCred("cred")), "")
	if err != nil {
		t.Fatalf("establish: %v", err)
	}

	m.Terminate(context.Background(), sid)
	m.Terminate(context.Background(), sid)
	m.Terminate(context.Background(), "never-existed")

	if id, profile, _ := sess.Snapshot(); id != nil || profile != nil {
		t.Fatal("terminate must sign the session out")
	}
	if _, err := m.Resolve(context.Background(), sid); !errors.Is(err, ErrNoSession) {
		t.Fatalf("expected ErrNoSession after terminate, got %v", err)
	}
}

func TestUnauthorizedResponseTerminatesSession(t *testing.T) {
	fb := newFakeBackend(t)
	fb.serveProfile(domain.Profile{ID: "p1", GamerTag: "ace"})

	bindings := newMemBindings()
	m := newTestManager(t, fb, bindings, time.Hour)

	sid, sess, _, err := m.Establish(context.Background(), testIdentity(staticCred("cred")), "")
	if err != nil {
		t.Fatalf("establish: %v", err)
	}

	fb.respond(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusUnauthorized)
	})

	if _, err := sess.API().Dashboard(context.Background()); !errors.Is(err, gateway.ErrUnauthorized) {
		t.Fatalf("expected ErrUnauthorized, got %v", err)
	}

	// the 401 hook terminates asynchronously
	deadline := time.Now().Add(2 * time.Second)
	for time.Now().Before(deadline) {
		if b, _ := bindings.Get(context.Background(), sid); b == nil && sess.CurrentIdentity() == nil {
			return
		}
		time.Sleep(10 * time.Millisecond)
	}
	t.Fatal("expected the 401 hook to terminate the session")
}

func mustMintCode(t *testing.T, p *local.Provider) string {
	t.Helper()
	parsed, err := url.Parse(p.AuthCodeURL("state", ""))
	if err != nil {
		t.Fatalf("parse auth url: %v", err)
	}
	code := parsed.Query().Get("code")
	if code == "" {
		t.Fatal("auth code url carried no code")
	}
	return code
}

package session

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"
	"time"

	"tourneybase-web/internal/backend"
	"tourneybase-web/internal/domain"
	"tourneybase-web/internal/gateway"
	"tourneybase-web/internal/identity"
)

type staticCred string

func (s staticCred) Credential(ctx context.Context) (string, error) {
	return string(s), nil
}

type failingCred struct{}

func (failingCred) Credential(ctx context.Context) (string, error) {
	return "", errors.New("token refresh failed")
}

// fakeBackend is an httptest server whose /api/player behavior can be
// swapped per test step.
type fakeBackend struct {
	srv *httptest.Server

	mu      sync.Mutex
	handler http.HandlerFunc
}

func newFakeBackend(t *testing.T) *fakeBackend {
	t.Helper()
	fb := &fakeBackend{}
	fb.srv = httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		fb.mu.Lock()
		h := fb.handler
		fb.mu.Unlock()
		if h == nil {
			http.NotFound(w, r)
			return
		}
		h(w, r)
	}))
	t.Cleanup(fb.srv.Close)
	return fb
}

func (fb *fakeBackend) respond(h http.HandlerFunc) {
	fb.mu.Lock()
	fb.handler = h
	fb.mu.Unlock()
}

func (fb *fakeBackend) serveProfile(p domain.Profile) {
	fb.respond(func(w http.ResponseWriter, r *http.Request) {
		json.NewEncoder(w).Encode(p)
	})
}

func newTestSession(fb *fakeBackend) *Session {
	gw := gateway.New(gateway.Config{BaseURL: fb.srv.URL, Timeout: 2 * time.Second}, nil)
	return New(gw, backend.New(gw))
}

func testIdentity(cred identity.CredentialSource) *identity.Identity {
	return identity.New("local", "player-1", "player@example.com", "Player One", cred)
}

func TestLoggedOutIsTerminal(t *testing.T) {
	fb := newFakeBackend(t)
	sess := newTestSession(fb)

	sess.HandleIdentityChange(context.Background(), nil)

	id, profile, loading := sess.Snapshot()
	if id != nil || profile != nil {
		t.Fatalf("expected cleared state, got identity=%v profile=%v", id, profile)
	}
	if loading {
		t.Fatal("logged-out state must not report loading")
	}
}

func TestBootstrapResolvesProfile(t *testing.T) {
	fb := newFakeBackend(t)
	var gotAuth string
	fb.respond(func(w http.ResponseWriter, r *http.Request) {
		gotAuth = r.Header.Get("Authorization")
		json.NewEncoder(w).Encode(domain.Profile{
			ID:        "p1",
			GamerTag:  "ace",
			KYCStatus: domain.StatusApproved,
		})
	})
	sess := newTestSession(fb)

	sess.HandleIdentityChange(context.Background(), testIdentity(staticCred("cred-abc")))

	if err := sess.WaitReady(context.Background()); err != nil {
		t.Fatalf("wait ready: %v", err)
	}
	if gotAuth != "Bearer cred-abc" {
		t.Fatalf("expected credential on fetch, got %q", gotAuth)
	}
	id, profile, loading := sess.Snapshot()
	if id == nil || id.Subject != "player-1" {
		t.Fatalf("expected identity retained, got %v", id)
	}
	if profile == nil || profile.GamerTag != "ace" {
		t.Fatalf("expected profile resolved, got %v", profile)
	}
	if loading {
		t.Fatal("bootstrap finished but still loading")
	}
}

func TestBootstrapWithoutProfile(t *testing.T) {
	fb := newFakeBackend(t)
	fb.respond(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, `{"error":"player not found"}`, http.StatusNotFound)
	})
	sess := newTestSession(fb)

	sess.HandleIdentityChange(context.Background(), testIdentity(staticCred("cred")))

	id, profile, loading := sess.Snapshot()
	if id == nil {
		t.Fatal("identity must survive a missing profile")
	}
	if profile != nil {
		t.Fatalf("expected no profile, got %v", profile)
	}
	if loading {
		t.Fatal("a 404 resolves the bootstrap")
	}
}

func TestTransientFailureKeepsPreviousProfile(t *testing.T) {
	fb := newFakeBackend(t)
	fb.serveProfile(domain.Profile{ID: "p1", GamerTag: "ace"})
	sess := newTestSession(fb)

	sess.HandleIdentityChange(context.Background(), testIdentity(staticCred("cred")))
	if sess.CurrentProfile() == nil {
		t.Fatal("first bootstrap should have resolved a profile")
	}

	fb.respond(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, `{"error":"boom"}`, http.StatusInternalServerError)
	})
	sess.HandleIdentityChange(context.Background(), testIdentity(staticCred("cred")))

	profile := sess.CurrentProfile()
	if profile == nil || profile.GamerTag != "ace" {
		t.Fatalf("transient failure must not clear a good profile, got %v", profile)
	}
	if sess.IsLoading() {
		t.Fatal("failed bootstrap must still resolve loading")
	}
}

func TestCredentialFailureLeavesLoggedOutShape(t *testing.T) {
	fb := newFakeBackend(t)
	sess := newTestSession(fb)

	sess.HandleIdentityChange(context.Background(), testIdentity(failingCred{}))

	id, profile, loading := sess.Snapshot()
	if id != nil || profile != nil || loading {
		t.Fatalf("expected logged-out shape, got identity=%v profile=%v loading=%v", id, profile, loading)
	}

	// the store stays usable for a later, successful identity change
	fb.serveProfile(domain.Profile{ID: "p1", GamerTag: "ace"})
	sess.HandleIdentityChange(context.Background(), testIdentity(staticCred("cred")))
	if sess.CurrentProfile() == nil {
		t.Fatal("store should recover after a credential failure")
	}
}

func TestRefetchProfileFailureClears(t *testing.T) {
	fb := newFakeBackend(t)
	fb.serveProfile(domain.Profile{ID: "p1", GamerTag: "ace"})
	sess := newTestSession(fb)
	sess.HandleIdentityChange(context.Background(), testIdentity(staticCred("cred")))

	fb.respond(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, `{"error":"boom"}`, http.StatusInternalServerError)
	})

	if err := sess.RefetchProfile(context.Background()); err == nil {
		t.Fatal("expected an error from the failed refetch")
	}
	if sess.CurrentProfile() != nil {
		t.Fatal("an explicit refetch failure clears the profile")
	}
	if sess.IsLoading() {
		t.Fatal("refetch must resolve loading")
	}
}

func TestRefetchProfileNotFound(t *testing.T) {
	fb := newFakeBackend(t)
	fb.serveProfile(domain.Profile{ID: "p1", GamerTag: "ace"})
	sess := newTestSession(fb)
	sess.HandleIdentityChange(context.Background(), testIdentity(staticCred("cred")))

	fb.respond(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, `{"error":"player not found"}`, http.StatusNotFound)
	})

	if err := sess.RefetchProfile(context.Background()); err != nil {
		t.Fatalf("a missing profile is an expected state, got %v", err)
	}
	if sess.CurrentProfile() != nil {
		t.Fatal("profile should be cleared when the backend no longer has one")
	}
}

func TestStaleBootstrapDiscardedAfterSignOut(t *testing.T) {
	fb := newFakeBackend(t)
	release := make(chan struct{})
	fb.respond(func(w http.ResponseWriter, r *http.Request) {
		<-release
		json.NewEncoder(w).Encode(domain.Profile{ID: "p1", GamerTag: "ace"})
	})
	sess := newTestSession(fb)

	done := make(chan struct{})
	go func() {
		defer close(done)
		sess.HandleIdentityChange(context.Background(), testIdentity(staticCred("cred")))
	}()

	// let the bootstrap reach the blocked profile fetch
	time.Sleep(50 * time.Millisecond)
	sess.SignOut()
	close(release)
	<-done

	id, profile, loading := sess.Snapshot()
	if id != nil || profile != nil {
		t.Fatalf("stale bootstrap result must be discarded, got identity=%v profile=%v", id, profile)
	}
	if loading {
		t.Fatal("signed-out session must not report loading")
	}
}

func TestSignOutIdempotent(t *testing.T) {
	fb := newFakeBackend(t)
	fb.serveProfile(domain.Profile{ID: "p1", GamerTag: "ace"})
	sess := newTestSession(fb)
	sess.HandleIdentityChange(context.Background(), testIdentity(staticCred("cred")))

	sess.SignOut()
	sess.SignOut()

	id, profile, loading := sess.Snapshot()
	if id != nil || profile != nil || loading {
		t.Fatalf("expected cleared state, got identity=%v profile=%v loading=%v", id, profile, loading)
	}
}

func TestSetProfileIsImmediate(t *testing.T) {
	fb := newFakeBackend(t)
	sess := newTestSession(fb)
	sess.HandleIdentityChange(context.Background(), nil)

	sess.SetProfile(&domain.Profile{ID: "p9", GamerTag: "new"})

	profile := sess.CurrentProfile()
	if profile == nil || profile.ID != "p9" {
		t.Fatalf("expected installed profile, got %v", profile)
	}
	if sess.IsLoading() {
		t.Fatal("an authoritative profile resolves loading")
	}
}

func TestWaitReadyBlocksUntilResolved(t *testing.T) {
	fb := newFakeBackend(t)
	release := make(chan struct{})
	fb.respond(func(w http.ResponseWriter, r *http.Request) {
		<-release
		json.NewEncoder(w).Encode(domain.Profile{ID: "p1"})
	})
	sess := newTestSession(fb)

	go sess.HandleIdentityChange(context.Background(), testIdentity(staticCred("cred")))
	time.Sleep(50 * time.Millisecond)

	ctx, cancel := context.WithTimeout(context.Background(), 100*time.Millisecond)
	defer cancel()
	if err := sess.WaitReady(ctx); !errors.Is(err, context.DeadlineExceeded) {
		t.Fatalf("expected WaitReady to block while loading, got %v", err)
	}

	close(release)
	ctx2, cancel2 := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel2()
	if err := sess.WaitReady(ctx2); err != nil {
		t.Fatalf("expected WaitReady to resolve, got %v", err)
	}
	if sess.CurrentProfile() == nil {
		t.Fatal("expected profile after resolution")
	}
}

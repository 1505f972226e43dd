package gateway

import (
	"bytes"
	"context"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"
)

func TestAuthorizationHeaderAttached(t *testing.T) {
	var gotAuth string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotAuth = r.Header.Get("Authorization")
		w.Write([]byte(`{"ok":true}`))
	}))
	defer srv.Close()

	client := New(Config{BaseURL: srv.URL, Timeout: 2 * time.Second}, nil)
	client.SetAuthorization("tok-123")

	var out map[string]bool
	if err := client.Get(context.Background(), "/api/player", &out); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if gotAuth != "Bearer tok-123" {
		t.Fatalf("expected bearer header, got %q", gotAuth)
	}

	client.ClearAuthorization()
	if err := client.Get(context.Background(), "/api/player", &out); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if gotAuth != "" {
		t.Fatalf("expected no authorization after clear, got %q", gotAuth)
	}
}

func TestUnauthorizedFiresHook(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusUnauthorized)
	}))
	defer srv.Close()

	hookFired := 0
	client := New(Config{BaseURL: srv.URL}, func() { hookFired++ })

	err := client.Get(context.Background(), "/api/dashboard", nil)
	if !errors.Is(err, ErrUnauthorized) {
		t.Fatalf("expected ErrUnauthorized, got %v", err)
	}
	if hookFired != 1 {
		t.Fatalf("expected hook to fire once, fired %d times", hookFired)
	}

	// the hook fires for every 401, regardless of caller
	_ = client.Delete(context.Background(), "/api/player/team/t1")
	if hookFired != 2 {
		t.Fatalf("expected hook to fire again, fired %d times", hookFired)
	}
}

func TestNotFoundClassified(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, `{"error":"no profile"}`, http.StatusNotFound)
	}))
	defer srv.Close()

	client := New(Config{BaseURL: srv.URL}, nil)

	err := client.Get(context.Background(), "/api/player", nil)
	if !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
}

func TestServerMessageSurfaced(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusConflict)
		w.Write([]byte(`{"error":"Team name already taken"}`))
	}))
	defer srv.Close()

	client := New(Config{BaseURL: srv.URL}, nil)

	err := client.Post(context.Background(), "/api/player/createTeam", map[string]string{"name": "x"}, nil)

	var statusErr *StatusError
	if !errors.As(err, &statusErr) {
		t.Fatalf("expected StatusError, got %v", err)
	}
	if statusErr.Code != http.StatusConflict {
		t.Fatalf("expected 409, got %d", statusErr.Code)
	}
	if statusErr.Message != "Team name already taken" {
		t.Fatalf("expected server message verbatim, got %q", statusErr.Message)
	}
}

func TestPostMultipart(t *testing.T) {
	var gotField, gotFile string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if err := r.ParseMultipartForm(1 << 20); err != nil {
			t.Errorf("parse multipart: %v", err)
			w.WriteHeader(http.StatusBadRequest)
			return
		}
		gotField = r.FormValue("documentType")

		f, header, err := r.FormFile("document")
		if err != nil {
			t.Errorf("form file: %v", err)
			w.WriteHeader(http.StatusBadRequest)
			return
		}
		defer f.Close()
		data, _ := io.ReadAll(f)
		gotFile = header.Filename + ":" + string(data)

		w.Write([]byte(`{"kycStatus":"pending"}`))
	}))
	defer srv.Close()

	client := New(Config{BaseURL: srv.URL}, nil)

	fields := map[string]string{"documentType": "passport"}
	files := []FilePart{{
		Field:    "document",
		Filename: "passport.png",
		Content:  bytes.NewReader([]byte("fake-image")),
	}}

	var out struct {
		KYCStatus string `json:"kycStatus"`
	}
	if err := client.PostMultipart(context.Background(), "/api/player/kyc", fields, files, &out); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if gotField != "passport" {
		t.Fatalf("expected form field, got %q", gotField)
	}
	if gotFile != "passport.png:fake-image" {
		t.Fatalf("unexpected file payload: %q", gotFile)
	}
	if out.KYCStatus != "pending" {
		t.Fatalf("expected decoded response, got %q", out.KYCStatus)
	}
}

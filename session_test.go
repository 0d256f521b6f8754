package main

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"golang.org/x/time/rate"
)

// newTestSession returns a session with rate limiting disabled so tests
// against httptest servers run without pacing delays.
func newTestSession() *Session {
	return &Session{
		client:   &http.Client{Timeout: 5 * time.Second},
		limiters: map[string]*rate.Limiter{"127.0.0.1": rate.NewLimiter(rate.Inf, 1)},
	}
}

func TestSessionGet(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if got := r.Header.Get("User-Agent"); got != userAgent {
			t.Errorf("User-Agent = %q, want %q", got, userAgent)
		}
		w.Write([]byte("hello"))
	}))
	defer server.Close()

	body, err := newTestSession().Get(context.Background(), server.URL)
	if err != nil {
		t.Fatalf("Get() error = %v", err)
	}
	if string(body) != "hello" {
		t.Errorf("Get() body = %q, want %q", body, "hello")
	}
}

func TestSessionGetHTTPError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusForbidden)
	}))
	defer server.Close()

	_, err := newTestSession().Get(context.Background(), server.URL)
	if err == nil {
		t.Fatal("Get() should return error on HTTP 403")
	}

	httpErr, ok := err.(*HTTPError)
	if !ok {
		t.Fatalf("Get() should return *HTTPError, got %T", err)
	}
	if httpErr.StatusCode != http.StatusForbidden {
		t.Errorf("StatusCode = %d, want %d", httpErr.StatusCode, http.StatusForbidden)
	}
	if !IsStatus(err, http.StatusForbidden) {
		t.Error("IsStatus() should match the returned status")
	}
	if IsStatus(err, http.StatusNotFound) {
		t.Error("IsStatus() should not match a different status")
	}
}

func TestSessionGetToken(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if got := r.Header.Get("Authorization"); got != "Bearer secret" {
			t.Errorf("Authorization = %q, want %q", got, "Bearer secret")
		}
		w.Write([]byte("ok"))
	}))
	defer server.Close()

	session := newTestSession()
	session.token = "secret"
	if _, err := session.Get(context.Background(), server.URL); err != nil {
		t.Fatalf("Get() error = %v", err)
	}
}

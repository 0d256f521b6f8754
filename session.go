package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log"
	"net/http"
	"net/url"
	"os"
	"sync"
	"time"

	"golang.org/x/time/rate"
)

const (
	requestTimeout      = 30 * time.Second
	userAgent           = "lab-pubsync/1.0"
	defaultHostInterval = 500 * time.Millisecond
)

var debugEnabled bool

// SetDebugMode enables or disables debug logging
func SetDebugMode(enabled bool) {
	debugEnabled = enabled
}

func debugLog(format string, args ...interface{}) {
	if debugEnabled {
		log.Printf("[DEBUG] "+format, args...)
	}
}

// HTTPError represents an HTTP error with status code
type HTTPError struct {
	StatusCode int
	URL        string
}

func (e *HTTPError) Error() string {
	return fmt.Sprintf("HTTP %d for %s", e.StatusCode, e.URL)
}

// IsStatus reports whether err is an HTTPError with the given status code
func IsStatus(err error, code int) bool {
	var httpErr *HTTPError
	return errors.As(err, &httpErr) && httpErr.StatusCode == code
}

// Session is the shared HTTP session for a sync run. It applies a bounded
// timeout, a stable User-Agent, an optional bearer token, and per-host
// request pacing.
type Session struct {
	client   *http.Client
	token    string
	mu       sync.Mutex
	limiters map[string]*rate.Limiter
}

// NewSession creates a session, picking up GITHUB_TOKEN from the environment
// when present.
func NewSession() *Session {
	return &Session{
		client:   &http.Client{Timeout: requestTimeout},
		token:    os.Getenv("GITHUB_TOKEN"),
		limiters: make(map[string]*rate.Limiter),
	}
}

// Get fetches the URL and returns the response body. Non-2xx responses are
// returned as *HTTPError so callers can branch on status.
func (s *Session) Get(ctx context.Context, reqURL string) ([]byte, error) {
	parsed, err := url.Parse(reqURL)
	if err != nil {
		return nil, fmt.Errorf("parsing URL %s: %w", reqURL, err)
	}

	if err := s.limiterFor(parsed.Hostname()).Wait(ctx); err != nil {
		return nil, fmt.Errorf("waiting for rate limiter: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, reqURL, nil)
	if err != nil {
		return nil, fmt.Errorf("creating request for %s: %w", reqURL, err)
	}
	req.Header.Set("User-Agent", userAgent)
	if s.token != "" {
		req.Header.Set("Authorization", "Bearer "+s.token)
	}

	resp, err := s.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("fetching %s: %w", reqURL, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return nil, &HTTPError{StatusCode: resp.StatusCode, URL: reqURL}
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("reading response from %s: %w", reqURL, err)
	}

	return body, nil
}

// limiterFor returns the rate limiter for a host, creating one on first use
func (s *Session) limiterFor(host string) *rate.Limiter {
	s.mu.Lock()
	defer s.mu.Unlock()

	if limiter, ok := s.limiters[host]; ok {
		return limiter
	}

	limiter := rate.NewLimiter(rate.Every(defaultHostInterval), 1)
	s.limiters[host] = limiter
	return limiter
}

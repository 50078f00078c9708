package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"
)

func TestRateLimiterAllow(t *testing.T) {
	rl := NewRateLimiter()

	for i := 0; i < 3; i++ {
		if !rl.Allow("k", 3, time.Minute) {
			t.Fatalf("request %d should be allowed", i+1)
		}
	}
	if rl.Allow("k", 3, time.Minute) {
		t.Error("4th request should be denied")
	}
	if !rl.Allow("other", 3, time.Minute) {
		t.Error("separate key should not share the window")
	}
}

func TestRateLimiterWindowReset(t *testing.T) {
	rl := NewRateLimiter()

	if !rl.Allow("k", 1, time.Millisecond) {
		t.Fatal("first request should pass")
	}
	if rl.Allow("k", 1, time.Millisecond) {
		t.Fatal("second request in window should be denied")
	}
	time.Sleep(5 * time.Millisecond)
	if !rl.Allow("k", 1, time.Millisecond) {
		t.Error("request after window expiry should pass")
	}
}

func TestRateLimiterCleanup(t *testing.T) {
	rl := NewRateLimiter()
	rl.Allow("stale", 1, time.Millisecond)
	rl.Allow("fresh", 1, time.Hour)

	time.Sleep(5 * time.Millisecond)
	rl.Cleanup()

	rl.mu.Lock()
	defer rl.mu.Unlock()
	if _, ok := rl.entries["stale"]; ok {
		t.Error("expired entry should be removed")
	}
	if _, ok := rl.entries["fresh"]; !ok {
		t.Error("live entry should survive cleanup")
	}
}

func TestRateLimitMiddleware(t *testing.T) {
	rl := NewRateLimiter()
	handler := RateLimit(rl, func(*http.Request) string { return "ip" }, 2, time.Minute)(
		http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(http.StatusOK)
		}),
	)

	for i := 0; i < 2; i++ {
		rec := httptest.NewRecorder()
		handler.ServeHTTP(rec, httptest.NewRequest("POST", "/login", nil))
		if rec.Code != http.StatusOK {
			t.Fatalf("request %d status = %d, want 200", i+1, rec.Code)
		}
	}

	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, httptest.NewRequest("POST", "/login", nil))
	if rec.Code != http.StatusTooManyRequests {
		t.Errorf("status = %d, want 429", rec.Code)
	}
}

func TestRealIP(t *testing.T) {
	tests := []struct {
		xff    string
		remote string
		want   string
	}{
		{"", "192.0.2.1:4000", "192.0.2.1"},
		{"203.0.113.9", "192.0.2.1:4000", "203.0.113.9"},
		{"203.0.113.9, 10.0.0.1", "192.0.2.1:4000", "203.0.113.9"},
	}

	for _, tt := range tests {
		r := httptest.NewRequest("GET", "/", nil)
		r.RemoteAddr = tt.remote
		if tt.xff != "" {
			r.Header.Set("X-Forwarded-For", tt.xff)
		}
		if got := RealIP(r); got != tt.want {
			t.Errorf("RealIP(xff=%q) = %q, want %q", tt.xff, got, tt.want)
		}
	}
}

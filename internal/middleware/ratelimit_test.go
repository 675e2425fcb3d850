package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"
)

func TestRateLimiter_FixedWindow(t *testing.T) {
	rl := NewRateLimiter(RateLimiterConfig{
		MaxRequests: 5,
		Window:      time.Minute,
	})
	defer rl.Stop()

	for i := 0; i < 5; i++ {
		if !rl.Allow("203.0.113.7") {
			t.Fatalf("request %d should be allowed", i+1)
		}
	}

	if rl.Allow("203.0.113.7") {
		t.Error("6th request within window should be rejected")
	}

	// Other clients are counted independently.
	if !rl.Allow("203.0.113.8") {
		t.Error("different client should not be affected")
	}
}

func TestRateLimiter_WindowReset(t *testing.T) {
	rl := NewRateLimiter(RateLimiterConfig{
		MaxRequests: 2,
		Window:      50 * time.Millisecond,
	})
	defer rl.Stop()

	rl.Allow("client")
	rl.Allow("client")
	if rl.Allow("client") {
		t.Fatal("3rd request within window should be rejected")
	}

	time.Sleep(60 * time.Millisecond)

	if !rl.Allow("client") {
		t.Error("request after window expiry should be allowed")
	}
}

func TestRateLimiter_Middleware(t *testing.T) {
	rl := NewRateLimiter(RateLimiterConfig{
		MaxRequests: 1,
		Window:      time.Minute,
	})
	defer rl.Stop()

	handler := rl.Middleware(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	}))

	req := httptest.NewRequest(http.MethodPost, "/api/checkout/session", nil)
	req.RemoteAddr = "198.51.100.4:52113"

	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)
	if rec.Code != http.StatusOK {
		t.Fatalf("first request: got status %d, want 200", rec.Code)
	}

	rec = httptest.NewRecorder()
	handler.ServeHTTP(rec, req)
	if rec.Code != http.StatusTooManyRequests {
		t.Errorf("second request: got status %d, want 429", rec.Code)
	}
	if rec.Header().Get("Retry-After") == "" {
		t.Error("rejected response should set Retry-After")
	}
}

func TestGetClientIP(t *testing.T) {
	tests := []struct {
		name       string
		remoteAddr string
		headers    map[string]string
		want       string
	}{
		{
			name:       "remote addr only",
			remoteAddr: "192.0.2.10:44321",
			want:       "192.0.2.10",
		},
		{
			name:       "x-forwarded-for single",
			remoteAddr: "10.0.0.1:80",
			headers:    map[string]string{"X-Forwarded-For": "203.0.113.50"},
			want:       "203.0.113.50",
		},
		{
			name:       "x-forwarded-for chain takes first",
			remoteAddr: "10.0.0.1:80",
			headers:    map[string]string{"X-Forwarded-For": "203.0.113.50, 10.0.0.2"},
			want:       "203.0.113.50",
		},
		{
			name:       "x-real-ip fallback",
			remoteAddr: "10.0.0.1:80",
			headers:    map[string]string{"X-Real-IP": "198.51.100.9"},
			want:       "198.51.100.9",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodGet, "/", nil)
			req.RemoteAddr = tt.remoteAddr
			for k, v := range tt.headers {
				req.Header.Set(k, v)
			}
			if got := GetClientIP(req); got != tt.want {
				t.Errorf("GetClientIP() = %q, want %q", got, tt.want)
			}
		})
	}
}

package middleware

import (
	"net"
	"net/http"
	"sync"
	"time"

	"github.com/printpower/storefront/internal/telemetry"
)

// RateLimiterConfig configures the fixed-window rate limiter.
type RateLimiterConfig struct {
	// MaxRequests is the number of requests allowed per window.
	MaxRequests int

	// Window is the fixed window length. Counts reset at window boundaries,
	// not on a sliding basis.
	Window time.Duration

	// CleanupInterval is how often to drop expired windows.
	CleanupInterval time.Duration

	// KeyFunc extracts the rate limit key from the request.
	// Default: client IP address.
	KeyFunc func(r *http.Request) string
}

// CheckoutRateLimiterConfig returns the limits applied to checkout session
// creation: 5 attempts per IP per minute.
func CheckoutRateLimiterConfig() RateLimiterConfig {
	return RateLimiterConfig{
		MaxRequests:     5,
		Window:          time.Minute,
		CleanupInterval: 5 * time.Minute,
		KeyFunc:         GetClientIP,
	}
}

// window counts requests inside one fixed interval.
type window struct {
	count    int
	startsAt time.Time
}

// RateLimiter is an in-memory fixed-window rate limiter. State is
// per-process; a multi-instance deployment limits per instance.
type RateLimiter struct {
	config  RateLimiterConfig
	windows map[string]*window
	mu      sync.Mutex
	stop    chan struct{}
}

// NewRateLimiter creates a new rate limiter and starts its cleanup loop.
func NewRateLimiter(config RateLimiterConfig) *RateLimiter {
	if config.KeyFunc == nil {
		config.KeyFunc = GetClientIP
	}
	if config.Window <= 0 {
		config.Window = time.Minute
	}
	if config.CleanupInterval <= 0 {
		config.CleanupInterval = 5 * config.Window
	}

	rl := &RateLimiter{
		config:  config,
		windows: make(map[string]*window),
		stop:    make(chan struct{}),
	}

	go rl.cleanup()

	return rl
}

// Allow checks if a request should be allowed
func (rl *RateLimiter) Allow(key string) bool {
	now := time.Now()

	rl.mu.Lock()
	defer rl.mu.Unlock()

	w, exists := rl.windows[key]
	if !exists || now.Sub(w.startsAt) >= rl.config.Window {
		rl.windows[key] = &window{count: 1, startsAt: now}
		return true
	}

	if w.count >= rl.config.MaxRequests {
		return false
	}
	w.count++
	return true
}

// cleanup removes expired windows periodically
func (rl *RateLimiter) cleanup() {
	ticker := time.NewTicker(rl.config.CleanupInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			now := time.Now()
			rl.mu.Lock()
			for key, w := range rl.windows {
				if now.Sub(w.startsAt) >= rl.config.Window {
					delete(rl.windows, key)
				}
			}
			rl.mu.Unlock()
		case <-rl.stop:
			return
		}
	}
}

// Stop stops the cleanup goroutine
func (rl *RateLimiter) Stop() {
	close(rl.stop)
}

// Middleware returns an HTTP middleware that applies rate limiting
func (rl *RateLimiter) Middleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		key := rl.config.KeyFunc(r)

		if !rl.Allow(key) {
			if telemetry.Business != nil {
				telemetry.Business.CheckoutRateLimited.Inc()
			}
			w.Header().Set("Retry-After", "60")
			respondTooManyRequests(w, r)
			return
		}

		next.ServeHTTP(w, r)
	})
}

// RateLimit creates a rate limiting middleware with the given config
func RateLimit(config RateLimiterConfig) func(http.Handler) http.Handler {
	limiter := NewRateLimiter(config)
	return limiter.Middleware
}

// GetClientIP extracts the client IP from the request
// It checks X-Forwarded-For and X-Real-IP headers first (for proxied requests)
func GetClientIP(r *http.Request) string {
	// Check X-Forwarded-For header (comma-separated list, first is client)
	if xff := r.Header.Get("X-Forwarded-For"); xff != "" {
		// Take the first IP in the list
		for i := 0; i < len(xff); i++ {
			if xff[i] == ',' {
				return xff[:i]
			}
		}
		return xff
	}

	// Check X-Real-IP header
	if xri := r.Header.Get("X-Real-IP"); xri != "" {
		return xri
	}

	// Fall back to RemoteAddr
	ip, _, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil {
		return r.RemoteAddr
	}
	return ip
}

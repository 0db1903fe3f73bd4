package middleware

import (
	"net/http"
	"sync"
	"time"
)

// RateLimiter applies a per-client token bucket. The chat endpoints are the
// expensive surface here (each request runs a similarity query), so the
// limiter keys on client IP rather than session id, which the client picks.
type RateLimiter struct {
	mu      sync.Mutex
	clients map[string]*tokenBucket
	rate    float64
	burst   int
}

type tokenBucket struct {
	tokens float64
	seen   time.Time
}

// NewRateLimiter allows rate requests/sec with the given burst per client.
func NewRateLimiter(rate float64, burst int) *RateLimiter {
	rl := &RateLimiter{
		clients: make(map[string]*tokenBucket),
		rate:    rate,
		burst:   burst,
	}
	go rl.evictStale()
	return rl
}

// Allow reports whether a request from the client is within the limit.
func (rl *RateLimiter) Allow(client string) bool {
	rl.mu.Lock()
	defer rl.mu.Unlock()

	now := time.Now()
	b, ok := rl.clients[client]
	if !ok {
		b = &tokenBucket{tokens: float64(rl.burst), seen: now}
		rl.clients[client] = b
	}

	b.tokens += now.Sub(b.seen).Seconds() * rl.rate
	if b.tokens > float64(rl.burst) {
		b.tokens = float64(rl.burst)
	}
	b.seen = now

	if b.tokens < 1 {
		return false
	}
	b.tokens--
	return true
}

func (rl *RateLimiter) evictStale() {
	ticker := time.NewTicker(5 * time.Minute)
	defer ticker.Stop()
	for range ticker.C {
		cutoff := time.Now().Add(-10 * time.Minute)
		rl.mu.Lock()
		for client, b := range rl.clients {
			if b.seen.Before(cutoff) {
				delete(rl.clients, client)
			}
		}
		rl.mu.Unlock()
	}
}

// RateLimit rejects requests over the configured rate with 429.
func RateLimit(rate float64, burst int) func(http.Handler) http.Handler {
	limiter := NewRateLimiter(rate, burst)
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			client := r.RemoteAddr
			// chi's RealIP middleware rewrites RemoteAddr, but honor the
			// header too in case ordering changes.
			if xri := r.Header.Get("X-Real-Ip"); xri != "" {
				client = xri
			}
			if !limiter.Allow(client) {
				http.Error(w, "rate limit exceeded", http.StatusTooManyRequests)
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}

package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"
)

func okHandler() (http.Handler, *int) {
	calls := 0
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls++
		w.WriteHeader(http.StatusOK)
	}), &calls
}

func TestCORSOrigins(t *testing.T) {
	tests := []struct {
		name      string
		allowed   []string
		origin    string
		wantAllow string
	}{
		{"listed origin", []string{"https://example.com"}, "https://example.com", "https://example.com"},
		{"unknown origin", []string{"https://example.com"}, "https://unknown.example", ""},
		{"wildcard echoes origin", []string{"*"}, "https://random.example", "https://random.example"},
		{"no origin header", []string{"https://example.com"}, "", ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			handler, calls := okHandler()
			req := httptest.NewRequest(http.MethodGet, "/chat/history", nil)
			if tt.origin != "" {
				req.Header.Set("Origin", tt.origin)
			}
			rec := httptest.NewRecorder()

			CORS(tt.allowed)(handler).ServeHTTP(rec, req)

			if *calls != 1 {
				t.Fatal("handler not reached")
			}
			if got := rec.Header().Get("Access-Control-Allow-Origin"); got != tt.wantAllow {
				t.Errorf("allow origin = %q, want %q", got, tt.wantAllow)
			}
			if tt.wantAllow != "" && rec.Header().Get("Access-Control-Allow-Methods") == "" {
				t.Error("allow methods header missing")
			}
		})
	}
}

func TestCORSPreflightShortCircuits(t *testing.T) {
	handler, calls := okHandler()
	req := httptest.NewRequest(http.MethodOptions, "/chat", nil)
	req.Header.Set("Origin", "https://example.com")
	req.Header.Set("Access-Control-Request-Method", "POST")
	rec := httptest.NewRecorder()

	CORS([]string{"https://example.com"})(handler).ServeHTTP(rec, req)

	if *calls != 0 {
		t.Error("preflight reached the handler")
	}
	if rec.Code != http.StatusNoContent {
		t.Errorf("status = %d, want 204", rec.Code)
	}
}

func TestRateLimiterBurstAndRefusal(t *testing.T) {
	rl := NewRateLimiter(1, 2)

	if !rl.Allow("10.0.0.1") || !rl.Allow("10.0.0.1") {
		t.Fatal("burst requests refused")
	}
	if rl.Allow("10.0.0.1") {
		t.Error("request over burst allowed")
	}
	// Other clients have their own bucket.
	if !rl.Allow("10.0.0.2") {
		t.Error("independent client refused")
	}
}

func TestRateLimitMiddlewareRejectsWith429(t *testing.T) {
	handler, _ := okHandler()
	limited := RateLimit(1, 1)(handler)

	req := httptest.NewRequest(http.MethodPost, "/chat", nil)
	req.RemoteAddr = "10.0.0.1:1234"

	rec := httptest.NewRecorder()
	limited.ServeHTTP(rec, req)
	if rec.Code != http.StatusOK {
		t.Fatalf("first request status = %d", rec.Code)
	}

	rec = httptest.NewRecorder()
	limited.ServeHTTP(rec, req)
	if rec.Code != http.StatusTooManyRequests {
		t.Fatalf("second request status = %d, want 429", rec.Code)
	}
}

func TestRequestLoggerPassesThrough(t *testing.T) {
	handler, calls := okHandler()
	rec := httptest.NewRecorder()

	RequestLogger(nil)(handler).ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/health", nil))

	if *calls != 1 {
		t.Fatal("handler not reached")
	}
	if rec.Code != http.StatusOK {
		t.Errorf("status = %d", rec.Code)
	}
}

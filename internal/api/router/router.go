package router

import (
	"encoding/json"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"github.com/harborhealth/bookingbot/internal/http/handlers"
	httpmiddleware "github.com/harborhealth/bookingbot/internal/http/middleware"
	"github.com/harborhealth/bookingbot/pkg/logging"
)

// Config holds router configuration
type Config struct {
	Logger             *logging.Logger
	ChatHandler        *handlers.ChatHandler
	MetricsHandler     http.Handler
	CORSAllowedOrigins []string

	// Requests per second per client IP for the chat endpoints; zero
	// disables rate limiting.
	ChatRateLimit float64
	ChatRateBurst int
}

// New creates a new Chi router with all routes configured
func New(cfg *Config) http.Handler {
	r := chi.NewRouter()

	// Middleware
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middleware.Recoverer)
	r.Use(middleware.Compress(5))
	if len(cfg.CORSAllowedOrigins) > 0 {
		r.Use(httpmiddleware.CORS(cfg.CORSAllowedOrigins))
	}
	if cfg.Logger != nil {
		r.Use(httpmiddleware.RequestLogger(cfg.Logger))
	}

	r.Get("/health", healthCheck)
	if cfg.MetricsHandler != nil {
		r.Handle("/metrics", cfg.MetricsHandler)
	}

	if cfg.ChatHandler != nil {
		r.Route("/chat", func(chat chi.Router) {
			if cfg.ChatRateLimit > 0 {
				chat.Use(httpmiddleware.RateLimit(cfg.ChatRateLimit, cfg.ChatRateBurst))
			}
			chat.Post("/", cfg.ChatHandler.HandleMessage)
			chat.Get("/ws", cfg.ChatHandler.HandleWebSocket)
			chat.Get("/history", cfg.ChatHandler.HandleHistory)
		})
	}

	return r
}

func healthCheck(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(map[string]string{"status": "ok"})
}

// Package router wires the agent handlers into the HTTP surface.
package router

import (
	"encoding/json"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/mnoushir/portfolio-assistant/internal/calendar"
	"github.com/mnoushir/portfolio-assistant/internal/feedback"
	httpmiddleware "github.com/mnoushir/portfolio-assistant/internal/http/middleware"
	"github.com/mnoushir/portfolio-assistant/internal/knowledge"
	"github.com/mnoushir/portfolio-assistant/pkg/logging"
)

// Config holds router configuration
type Config struct {
	Logger             *logging.Logger
	ChatHandler        *knowledge.Handler
	FeedbackHandler    *feedback.Handler
	CalendarHandler    *calendar.Handler
	MetricsHandler     http.Handler
	CORSAllowedOrigins []string
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

	r.Get("/", serviceInfo)
	r.Get("/health", healthCheck)
	if cfg.MetricsHandler != nil {
		r.Handle("/metrics", cfg.MetricsHandler)
	}

	r.Route("/api", func(api chi.Router) {
		if cfg.ChatHandler != nil {
			api.Post("/chat", cfg.ChatHandler.Chat)
		}
		if cfg.FeedbackHandler != nil {
			api.Post("/feedback", cfg.FeedbackHandler.Submit)
		}
		if cfg.CalendarHandler != nil {
			api.Route("/calendar", func(cal chi.Router) {
				cal.Get("/availability", cfg.CalendarHandler.GetAvailability)
				cal.Post("/book", cfg.CalendarHandler.BookSlot)
				cal.Delete("/book/{eventID}", cfg.CalendarHandler.CancelBooking)
				cal.Get("/auth/url", cfg.CalendarHandler.GetAuthURL)
				cal.Get("/oauth/callback", cfg.CalendarHandler.OAuthCallback)
			})
		}
	})

	return r
}

func serviceInfo(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, map[string]any{
		"service": "portfolio-assistant",
		"version": "0.1.0",
		"status":  "running",
		"agents":  []string{"knowledge", "feedback", "calendar"},
		"endpoints": []string{
			"POST /api/chat",
			"POST /api/feedback",
			"GET /api/calendar/availability",
			"POST /api/calendar/book",
			"DELETE /api/calendar/book/{eventID}",
			"GET /api/calendar/auth/url",
			"GET /api/calendar/oauth/callback",
		},
	})
}

func healthCheck(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func writeJSON(w http.ResponseWriter, status int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(payload)
}

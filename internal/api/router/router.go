package router

import (
	"context"
	"encoding/json"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"github.com/wolfman30/clinic-secretary/internal/booking"
	"github.com/wolfman30/clinic-secretary/internal/catalog"
	"github.com/wolfman30/clinic-secretary/internal/clinic"
	"github.com/wolfman30/clinic-secretary/internal/dialoglog"
	httpmiddleware "github.com/wolfman30/clinic-secretary/internal/http/middleware"
	"github.com/wolfman30/clinic-secretary/internal/reminders"
	"github.com/wolfman30/clinic-secretary/internal/secretary"
	"github.com/wolfman30/clinic-secretary/internal/webchat"
	"github.com/wolfman30/clinic-secretary/pkg/logging"
)

// Config holds router configuration. Nil handlers leave their routes out.
type Config struct {
	Logger             *logging.Logger
	HTTPObserver       httpmiddleware.HTTPObserver
	CatalogHandler     *catalog.Handler
	BookingHandler     *booking.Handler
	SecretaryHandler   *secretary.Handler
	WebChat            *webchat.Handler
	AnalyticsHandler   *dialoglog.Handler
	RemindersHandler   *reminders.Handler
	ClinicHandler      *clinic.Handler
	MetricsHandler     http.Handler
	CORSAllowedOrigins []string

	// Per-IP limit on chat endpoints; zero disables it.
	ChatRateLimitPerSec float64
	ChatRateLimitBurst  int
}

// New creates a new Chi router with all routes configured. ctx bounds
// background work started by middleware.
func New(ctx context.Context, cfg *Config) http.Handler {
	r := chi.NewRouter()

	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middleware.Recoverer)
	if len(cfg.CORSAllowedOrigins) > 0 {
		r.Use(httpmiddleware.CORS(cfg.CORSAllowedOrigins))
	}
	r.Use(httpmiddleware.RequestLogger(cfg.Logger, cfg.HTTPObserver))

	chatLimit := func(next http.Handler) http.Handler { return next }
	if cfg.ChatRateLimitPerSec > 0 {
		chatLimit = httpmiddleware.RateLimit(ctx, cfg.ChatRateLimitPerSec, cfg.ChatRateLimitBurst)
	}

	r.Get("/health", health)
	if cfg.MetricsHandler != nil {
		r.Handle("/metrics", cfg.MetricsHandler)
	}
	if cfg.WebChat != nil {
		r.With(chatLimit).Get("/ws/chat", cfg.WebChat.HandleWebSocket)
	}

	r.Route("/api", func(api chi.Router) {
		api.Use(middleware.Compress(5))

		if cfg.CatalogHandler != nil {
			api.Get("/services", cfg.CatalogHandler.ListServices)
			api.Get("/specialists", cfg.CatalogHandler.ListSpecialists)
		}
		if cfg.BookingHandler != nil {
			api.Get("/slots", cfg.BookingHandler.Slots)
			api.Route("/appointments", func(r chi.Router) {
				r.Post("/", cfg.BookingHandler.Create)
				r.Get("/", cfg.BookingHandler.List)
				r.Post("/{id}/cancel", cfg.BookingHandler.Cancel)
				r.Post("/{id}/confirm", cfg.BookingHandler.Confirm)
			})
		}
		api.Route("/chat", func(r chi.Router) {
			if cfg.SecretaryHandler != nil {
				r.With(chatLimit).Post("/", cfg.SecretaryHandler.Chat)
				r.Get("/sessions/{id}", cfg.SecretaryHandler.Session)
				r.Delete("/sessions/{id}", cfg.SecretaryHandler.Reset)
				r.Get("/stats", cfg.SecretaryHandler.Stats)
			}
			if cfg.WebChat != nil {
				r.Get("/history", cfg.WebChat.HandleHistory)
			}
		})
		if cfg.AnalyticsHandler != nil {
			api.Route("/analytics", func(r chi.Router) {
				r.Get("/daily", cfg.AnalyticsHandler.Daily)
				r.Get("/services", cfg.AnalyticsHandler.Services)
				r.Get("/overview", cfg.AnalyticsHandler.Overview)
				r.Get("/sessions/{id}", cfg.AnalyticsHandler.Session)
			})
		}
		if cfg.RemindersHandler != nil {
			api.Route("/reminders", cfg.RemindersHandler.RegisterRoutes)
		}
		if cfg.ClinicHandler != nil {
			api.Get("/clinic", cfg.ClinicHandler.GetConfig)
			api.Put("/clinic", cfg.ClinicHandler.UpdateConfig)
		}
	})

	return r
}

func health(w http.ResponseWriter, _ *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(map[string]string{
		"status":  "ok",
		"service": "clinic-secretary",
	})
}

package router

import (
	"net/http"

	"starcg-market-api/internal/handler"
	"starcg-market-api/internal/metrics"
	"starcg-market-api/internal/middleware"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/cors"
	"go.uber.org/zap"
)

// Config holds the configuration for creating a router.
type Config struct {
	Handler             *handler.Handler
	MarketHandler       *handler.MarketHandler
	TrackedHandler      *handler.TrackedHandler
	SettingsHandler     *handler.SettingsHandler
	NotificationHandler *handler.NotificationHandler
	CommandHandler      *handler.CommandHandler
	AdminHandler        *handler.AdminHandler
	AuthMiddleware      func(http.Handler) http.Handler
	MetricsHandler      http.Handler
	AllowedOrigins      []string
	Logger              *zap.SugaredLogger
	Metrics             *metrics.Metrics
}

// New creates and configures the HTTP router.
func New(cfg Config) *chi.Mux {
	r := chi.NewRouter()

	origins := cfg.AllowedOrigins
	if len(origins) == 0 {
		origins = []string{"*"}
	}

	// Global middleware stack (applies to ALL routes)
	r.Use(middleware.Recovery(cfg.Logger))
	r.Use(middleware.RequestID)
	r.Use(middleware.Logging(cfg.Logger, cfg.Metrics))
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   origins,
		AllowedMethods:   []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type", "X-Request-ID", "X-API-Key"},
		ExposedHeaders:   []string{"X-Request-ID"},
		AllowCredentials: false,
		MaxAge:           300,
	}))

	// PUBLIC routes (no auth required)
	if cfg.Handler != nil {
		r.Get("/api/status", cfg.Handler.Status)
	}
	if cfg.MetricsHandler != nil {
		r.Handle("/metrics", cfg.MetricsHandler)
	}

	// AUTHENTICATED routes
	r.Group(func(r chi.Router) {
		if cfg.AuthMiddleware != nil {
			r.Use(cfg.AuthMiddleware)
		}

		r.Route("/api/v1", func(r chi.Router) {
			if cfg.Handler != nil {
				r.Get("/health", cfg.Handler.Health)
				r.Get("/ready", cfg.Handler.Ready)
			}

			if cfg.CommandHandler != nil {
				r.Post("/command", cfg.CommandHandler.Dispatch)
			}

			if cfg.MarketHandler != nil {
				r.Route("/market", func(r chi.Router) {
					r.Get("/search", cfg.MarketHandler.Search)
					r.Get("/page", cfg.MarketHandler.Page)
					r.Get("/all", cfg.MarketHandler.All)
					r.Get("/history", cfg.MarketHandler.History)
					r.Get("/listings", cfg.MarketHandler.Listings)
				})
			}

			if cfg.TrackedHandler != nil {
				r.Route("/tracked", func(r chi.Router) {
					r.Get("/", cfg.TrackedHandler.List)
					r.Post("/", cfg.TrackedHandler.Add)
					r.Patch("/{name}", cfg.TrackedHandler.Update)
					r.Delete("/{name}", cfg.TrackedHandler.Remove)
				})
			}

			if cfg.SettingsHandler != nil {
				r.Get("/settings", cfg.SettingsHandler.Get)
				r.Put("/settings", cfg.SettingsHandler.Update)
			}

			if cfg.NotificationHandler != nil {
				r.Route("/notifications", func(r chi.Router) {
					r.Post("/test", cfg.NotificationHandler.Test)
					r.Get("/ws", cfg.NotificationHandler.WebSocket)
				})
			}

			if cfg.AdminHandler != nil {
				r.Route("/admin", func(r chi.Router) {
					r.Get("/stats", cfg.AdminHandler.GetStats)
					r.Post("/cache/clear", cfg.AdminHandler.ClearCache)
					r.Post("/refresh", cfg.AdminHandler.Refresh)
				})
			}
		})
	})

	return r
}

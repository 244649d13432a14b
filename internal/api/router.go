package api

import (
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/rs/cors"
)

// RouterConfig holds the optional parts of the router.
type RouterConfig struct {
	// BearerToken protects the search routes when non-empty.
	BearerToken string
	// AllowedOrigins for CORS. Empty allows any origin.
	AllowedOrigins []string
	// Checks are pinged by the health endpoint, keyed by service name.
	Checks map[string]Pinger
}

// NewRouter builds and returns the Chi router with all routes configured.
// The index and health endpoints are never authenticated.
func NewRouter(handlers *Handlers, cfg RouterConfig, log *slog.Logger) *chi.Mux {
	r := chi.NewRouter()

	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(RequestLogger(log))
	r.Use(middleware.Recoverer)
	r.Use(cors.New(cors.Options{
		AllowedOrigins: cfg.AllowedOrigins,
		AllowedMethods: []string{http.MethodGet, http.MethodOptions},
		AllowedHeaders: []string{"Authorization", "Content-Type"},
	}).Handler)

	r.NotFound(func(w http.ResponseWriter, _ *http.Request) {
		writeJSON(w, http.StatusNotFound, map[string]string{"error": "not found"})
	})

	r.Get("/", handlers.Index)
	r.Get("/api/health", HealthHandlerFunc(cfg.Checks, log))

	r.Group(func(r chi.Router) {
		if cfg.BearerToken != "" {
			r.Use(BearerAuth(cfg.BearerToken))
		}
		r.Get("/api/flights", handlers.SearchFlights)
		r.Get("/api/hotels", handlers.SearchHotels)
		r.Get("/api/hotels/destinations", handlers.ListDestinations)
	})

	return r
}

// Ensure chi.Mux implements http.Handler.
var _ http.Handler = (*chi.Mux)(nil)

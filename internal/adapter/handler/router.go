package handler

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/rl1809/inventory-service/pkg/logger"
)

type RouterConfig struct {
	APIKey  string
	Logger  *logger.Logger
	Metrics http.Handler
}

// NewRouter mounts the inventory API behind API key auth. Health and metrics
// stay public.
func NewRouter(h *HTTPHandler, cfg RouterConfig) http.Handler {
	r := chi.NewRouter()
	r.Use(RequestID(cfg.Logger))
	r.Use(Logging(cfg.Logger))
	r.Use(Recoverer(cfg.Logger))

	r.Get("/health", h.HealthCheck)
	if cfg.Metrics != nil {
		r.Method(http.MethodGet, "/metrics", cfg.Metrics)
	}

	r.Route("/api/inventory", func(r chi.Router) {
		r.Use(APIKey(cfg.APIKey))
		r.Get("/{productId}", h.GetInventory)
		r.Put("/", h.UpdateInventory)
		r.Post("/purchase", h.Purchase)
	})

	r.NotFound(func(w http.ResponseWriter, r *http.Request) {
		writeFailure(w, http.StatusNotFound, "Not found", "route not found")
	})
	r.MethodNotAllowed(func(w http.ResponseWriter, r *http.Request) {
		writeFailure(w, http.StatusMethodNotAllowed, "Method not allowed", r.Method+" is not supported")
	})
	return r
}

package api

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
)

// BuildRouter mounts the health, metrics and token endpoints
func BuildRouter(api *API, logMW *LoggingMiddleware, metricsHandler http.Handler) chi.Router {
	r := chi.NewRouter()

	r.Use(middleware.RequestID)
	r.Use(middleware.Recoverer)
	r.Use(middleware.RealIP)

	if logMW != nil {
		r.Use(logMW.Handler)
	}

	r.Get("/healthz", api.Healthz)
	r.Get("/readiness", api.Readiness)
	if metricsHandler != nil {
		r.Mount("/metrics", metricsHandler)
	}

	r.Route("/api", func(apiR chi.Router) {
		apiR.Get("/tokens", api.Tokens)
		apiR.Get("/tokens/export", api.Export)
		apiR.Get("/tokens/{category}/{id}", api.Token)
		apiR.Get("/category", api.Category)
		apiR.Put("/category", api.SetCategory)
		apiR.Post("/quickbuy", api.QuickBuy)
	})

	return r
}

package api

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"FinSent/internal/config"
)

// NewRouter creates and configures a Chi router with all routes. gatherer backs
// /metrics; nil means the default Prometheus registry.
func NewRouter(h *Handler, cfg *config.Config, gatherer prometheus.Gatherer) http.Handler {
	if gatherer == nil {
		gatherer = prometheus.DefaultGatherer
	}
	r := chi.NewRouter()

	// Middleware stack
	r.Use(middleware.RealIP)
	r.Use(middleware.RequestID)
	r.Use(LoggerMiddleware(h.deps.Logger))
	r.Use(middleware.Recoverer)
	r.Use(middleware.Timeout(cfg.Server.RequestTimeout))
	r.Use(CORSMiddleware(cfg.Server.AllowedOrigin))
	r.Use(MetricsMiddleware(h.deps.Metrics))

	r.Handle("/metrics", promhttp.HandlerFor(gatherer, promhttp.HandlerOpts{}))

	r.Route("/api", func(r chi.Router) {
		r.Get("/health", h.HandleHealth)
		r.Get("/options", h.HandleOptions)

		r.Get("/prices/{ticker}", h.HandlePrices)
		r.Get("/headlines/{ticker}", h.HandleHeadlines)
		r.Get("/sentiment", h.HandleSentiment)

		r.Post("/refresh", h.HandleRefresh)
	})

	return r
}

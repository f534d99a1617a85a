package kit

import (
	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"
)

type RouterDeps struct {
	Log     *zap.Logger
	Service string

	// Metrics is nil when the service exports nothing.
	Metrics  *Metrics
	Registry *prometheus.Registry

	MetricsEnabled bool
	MetricsToken   string

	LogFields []RequestField
}

// NewRouter builds the chi mux every service starts from: request id, panic recovery,
// request logging, HTTP metrics and the guarded /metrics endpoint.
func NewRouter(deps RouterDeps) *chi.Mux {
	log := deps.Log
	if log == nil {
		log = zap.NewNop()
	}

	r := chi.NewRouter()
	r.Use(chimw.RequestID)
	r.Use(Recoverer)
	r.Use(Logging(log, deps.LogFields...))

	if deps.Metrics == nil {
		return r
	}
	r.Use(deps.Metrics.Middleware(deps.Service, ChiRoutePatternOrPath))

	if deps.MetricsEnabled && deps.Registry != nil {
		r.With(MetricsAuth(deps.MetricsToken)).
			Handle("/metrics", promhttp.HandlerFor(deps.Registry, promhttp.HandlerOpts{}))
	}
	return r
}

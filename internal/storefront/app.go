package storefront

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus"
	"go.uber.org/zap"

	"NotebookStore/pkg/kit"
)

type HTTPDeps struct {
	Log      *zap.Logger
	Service  string
	Registry *prometheus.Registry
	Metrics  *kit.Metrics

	MetricsEnabled bool
	MetricsToken   string

	RateLimitPerMin int
}

func NewHandler(s *Server, deps HTTPDeps) http.Handler {
	r := kit.NewRouter(kit.RouterDeps{
		Log:            deps.Log,
		Service:        deps.Service,
		Metrics:        deps.Metrics,
		Registry:       deps.Registry,
		MetricsEnabled: deps.MetricsEnabled,
		MetricsToken:   deps.MetricsToken,
		LogFields:      []kit.RequestField{sessionField},
	})

	r.Get("/healthz", func(w http.ResponseWriter, _ *http.Request) { w.WriteHeader(http.StatusOK) })
	r.Get("/readyz", s.ready)

	r.Route("/api", func(api chi.Router) {
		if deps.RateLimitPerMin > 0 {
			api.Use(kit.NewIPRateLimiter(deps.RateLimitPerMin, time.Minute).Middleware)
		}
		api.Use(s.Sessions.Middleware)
		api.Mount("/", s.Routes())
	})
	return r
}

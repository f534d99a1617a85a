package catalogstub

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"go.uber.org/zap"

	"NotebookStore/pkg/kit"
)

type HTTPDeps struct {
	Log      *zap.Logger
	Service  string
	Registry *prometheus.Registry

	MetricsEnabled bool
	MetricsToken   string
}

// NewHandler serves the catalog API. When s.Faults is set, /admin/faults switches
// injected failures on (PUT) and off (DELETE).
func NewHandler(s *Server, deps HTTPDeps) http.Handler {
	var metrics *kit.Metrics
	if deps.Registry != nil {
		metrics = kit.NewMetrics(deps.Registry)
	}

	r := kit.NewRouter(kit.RouterDeps{
		Log:            deps.Log,
		Service:        deps.Service,
		Metrics:        metrics,
		Registry:       deps.Registry,
		MetricsEnabled: deps.MetricsEnabled,
		MetricsToken:   deps.MetricsToken,
	})

	if s.Faults != nil {
		r.Put("/admin/faults", s.Faults.put)
		r.Delete("/admin/faults", s.Faults.clear)
	}

	r.Mount("/", s.Routes())
	return r
}

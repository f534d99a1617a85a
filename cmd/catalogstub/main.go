// Command catalogstub serves the bundled notebook catalog over the remote catalog API
// contract for local development.
package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/prometheus/client_golang/prometheus"
	"go.uber.org/zap"

	"NotebookStore/internal/catalogstub"
	"NotebookStore/internal/config"
	"NotebookStore/pkg/kit"
)

func main() {
	service := "catalogstub"

	cfg, err := config.Load()
	if err != nil {
		kit.NewLogger(service, "info").Fatal("config", zap.Error(err))
	}

	log := kit.NewLogger(service, cfg.LogLevel)
	defer func() { _ = log.Sync() }()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	s := &catalogstub.Server{
		Store:  catalogstub.NewMemStore(),
		Faults: &catalogstub.Faults{},
		Log:    log,
	}

	h := catalogstub.NewHandler(s, catalogstub.HTTPDeps{
		Log:            log,
		Service:        service,
		Registry:       prometheus.NewRegistry(),
		MetricsEnabled: cfg.MetricsToken != "",
		MetricsToken:   cfg.MetricsToken,
	})

	if err := kit.RunHTTPServer(ctx, ":"+cfg.StubPort, h, log); err != nil {
		log.Fatal("http server stopped", zap.Error(err))
	}
}

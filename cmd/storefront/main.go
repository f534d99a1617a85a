package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/prometheus/client_golang/prometheus"
	"go.uber.org/zap"

	"NotebookStore/internal/catalog"
	"NotebookStore/internal/config"
	"NotebookStore/internal/session"
	"NotebookStore/internal/storefront"
	"NotebookStore/pkg/kit"
)

func main() {
	service := "storefront"

	cfg, err := config.Load()
	if err != nil {
		kit.NewLogger(service, "info").Fatal("config", zap.Error(err))
	}

	log := kit.NewLogger(service, cfg.LogLevel)
	defer func() { _ = log.Sync() }()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	storage := openStorage(ctx, cfg, log)

	reg := prometheus.NewRegistry()
	reg.MustRegister(prometheus.NewGoCollector(), prometheus.NewProcessCollector(prometheus.ProcessCollectorOpts{}))
	metrics := kit.NewMetrics(reg)

	sessions := storefront.NewRegistry(storefront.RegistryDeps{
		Storage:  storage,
		API:      catalog.NewClient(cfg.CatalogAPIURL, cfg.FetchTimeout),
		CacheTTL: cfg.CacheTTL,
		Log:      log,
		Metrics:  metrics,
	})

	s := &storefront.Server{
		Sessions: sessions,
		Storage:  storage,
		Log:      log,
	}

	h := storefront.NewHandler(s, storefront.HTTPDeps{
		Log:             log,
		Service:         service,
		Registry:        reg,
		Metrics:         metrics,
		MetricsEnabled:  cfg.MetricsToken != "",
		MetricsToken:    cfg.MetricsToken,
		RateLimitPerMin: cfg.RateLimitPerMin,
	})

	log.Info("catalog api", zap.String("url", cfg.CatalogAPIURL), zap.Duration("cache_ttl", cfg.CacheTTL))

	if err := kit.RunHTTPServer(ctx, ":"+cfg.Port, h, log); err != nil {
		log.Fatal("http server stopped", zap.Error(err))
	}
}

func openStorage(ctx context.Context, cfg *config.Config, log *zap.Logger) session.Storage {
	if cfg.RedisURL == "" {
		log.Info("session storage", zap.String("backend", "memory"))
		return session.NewMemStorage()
	}

	rdb, err := session.OpenRedis(ctx, cfg.RedisURL)
	if err != nil {
		log.Fatal("redis connect failed", zap.Error(err))
	}
	log.Info("session storage", zap.String("backend", "redis"))
	return session.NewRedisStorage(rdb)
}

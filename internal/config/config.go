package config

import (
	"fmt"
	"net/url"
	"os"
	"strconv"
	"time"
)

// Config is read from the environment once at startup.
type Config struct {
	Port     string
	StubPort string

	CatalogAPIURL string
	FetchTimeout  time.Duration

	CacheTTL time.Duration
	RedisURL string

	LogLevel        string
	MetricsToken    string
	RateLimitPerMin int
}

func Load() (*Config, error) {
	cfg := &Config{
		Port:            getEnvString("PORT", "8080"),
		StubPort:        getEnvString("STUB_PORT", "8000"),
		CatalogAPIURL:   getEnvString("CATALOG_API_URL", "http://localhost:8000/api"),
		FetchTimeout:    getEnvDuration("FETCH_TIMEOUT", 5*time.Second),
		CacheTTL:        getEnvDuration("CACHE_TTL", 30*time.Minute),
		RedisURL:        getEnvString("REDIS_URL", ""),
		LogLevel:        getEnvString("LOG_LEVEL", "info"),
		MetricsToken:    getEnvString("METRICS_TOKEN", ""),
		RateLimitPerMin: getEnvInt("RATE_LIMIT_PER_MIN", 120),
	}

	u, err := url.Parse(cfg.CatalogAPIURL)
	if err != nil || u.Scheme == "" || u.Host == "" {
		return nil, fmt.Errorf("CATALOG_API_URL must be an absolute URL, got %q", cfg.CatalogAPIURL)
	}
	if cfg.CacheTTL <= 0 {
		return nil, fmt.Errorf("CACHE_TTL must be positive, got %s", cfg.CacheTTL)
	}

	return cfg, nil
}

func getEnvString(key, defaultVal string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return defaultVal
}

func getEnvInt(key string, defaultVal int) int {
	v := os.Getenv(key)
	if v == "" {
		return defaultVal
	}
	i, err := strconv.Atoi(v)
	if err != nil {
		return defaultVal
	}
	return i
}

func getEnvDuration(key string, defaultVal time.Duration) time.Duration {
	v := os.Getenv(key)
	if v == "" {
		return defaultVal
	}
	d, err := time.ParseDuration(v)
	if err != nil {
		return defaultVal
	}
	return d
}

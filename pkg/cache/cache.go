// Package cache provides the byte caches used for route search results.
//
// Keys are expected to embed the version of the state they were computed
// from, so entries never need explicit invalidation; they age out.
package cache

import (
	"context"
	"errors"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// ErrCacheMiss is returned by Get when the key is absent or expired.
var ErrCacheMiss = errors.New("cache miss")

// Cache stores opaque values with a TTL.
type Cache interface {
	Get(ctx context.Context, key string) ([]byte, error)
	Set(ctx context.Context, key string, value []byte, ttl time.Duration) error
	Close() error
}

var (
	cacheHits = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "pawswap",
		Subsystem: "cache",
		Name:      "hits_total",
		Help:      "Total number of cache hits",
	}, []string{"backend"})

	cacheMisses = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "pawswap",
		Subsystem: "cache",
		Name:      "misses_total",
		Help:      "Total number of cache misses",
	}, []string{"backend"})

	cacheErrors = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "pawswap",
		Subsystem: "cache",
		Name:      "errors_total",
		Help:      "Total number of cache errors",
	}, []string{"backend"})
)

// Config selects and configures a backend.
type Config struct {
	// Backend is "memory", "redis" or "none".
	Backend  string        `mapstructure:"backend"`
	Size     int           `mapstructure:"size"`
	TTL      time.Duration `mapstructure:"ttl"`
	Address  string        `mapstructure:"address"`
	Password string        `mapstructure:"password"`
	DB       int           `mapstructure:"db"`
	Prefix   string        `mapstructure:"prefix"`
}

// DefaultConfig returns an in-process cache.
func DefaultConfig() Config {
	return Config{
		Backend: "memory",
		Size:    4096,
		TTL:     30 * time.Second,
		Prefix:  "pawswap:",
	}
}

// New builds the configured backend. A "none" backend returns nil.
func New(cfg Config) (Cache, error) {
	switch cfg.Backend {
	case "", "memory":
		return NewMemoryCache(cfg.Size, cfg.TTL), nil
	case "redis":
		c, err := NewRedisCache(cfg)
		if err != nil {
			return nil, err
		}
		return c, nil
	case "none":
		return nil, nil
	default:
		return nil, errors.New("unknown cache backend " + cfg.Backend)
	}
}

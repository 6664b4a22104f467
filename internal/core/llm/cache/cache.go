// Package cache stores candidate-generation results keyed by normalized
// mention text, so repeated mentions skip the model call. Two backends:
// an in-memory TTL/LRU store and redis.
package cache

import (
	"context"

	"nutrimori-ai/internal/infrastructure/config"
)

// Cache is the candidate cache contract. Get returns an error on miss.
type Cache interface {
	Get(ctx context.Context, key string) (string, error)
	Set(ctx context.Context, key, value string) error
	Close() error
}

// New selects the cache backend from config. Returns a nil Cache when
// caching is disabled; callers must check for nil before use.
func New(cfg *config.Config) (Cache, error) {
	if !cfg.Cache.Enabled {
		return nil, nil
	}

	if cfg.Cache.Backend == "redis" {
		return NewRedisCache(&cfg.Cache)
	}

	manager := NewManager(cfg)
	if manager == nil {
		return nil, nil
	}
	return manager, nil
}

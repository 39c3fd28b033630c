// Package cache provides the key/value backends the event store persists to.
package cache

import (
	"context"
	"log/slog"
	"time"
)

// CacheBackend defines the interface for cache implementations
type CacheBackend interface {
	// Get retrieves a value from the cache
	// Returns (value, found, error)
	Get(ctx context.Context, key string) ([]byte, bool, error)

	// Set stores a value in the cache with the given TTL.
	// A zero TTL keeps the value until it is deleted or evicted.
	Set(ctx context.Context, key string, value []byte, ttl time.Duration) error

	// Delete removes a value from the cache
	Delete(ctx context.Context, key string) error

	// GetMultiple retrieves multiple values from the cache
	// Returns a map of found keys to values
	GetMultiple(ctx context.Context, keys []string) (map[string][]byte, error)

	// SetMultiple stores multiple values with the given TTL
	SetMultiple(ctx context.Context, items map[string][]byte, ttl time.Duration) error

	// Close closes the cache connection
	Close() error
}

// New returns a redis backend when redisURL is set and reachable, otherwise
// an in-memory one. The returned kind is "redis" or "memory".
func New(redisURL, prefix string, cfg Config) (CacheBackend, string) {
	if redisURL != "" {
		slog.Info("initializing Redis cache")
		rc, err := NewRedisCache(redisURL, prefix)
		if err == nil {
			slog.Info("Redis cache initialized")
			return rc, "redis"
		}
		slog.Warn("Redis connection failed, using memory cache", "error", err)
	}
	slog.Info("initializing in-memory cache", "max_entries", cfg.MemoryMaxEntries)
	return NewMemoryCache(cfg.MemoryMaxEntries, cfg.CleanupInterval), "memory"
}

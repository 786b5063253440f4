// Package cache keeps the reference catalogs (keywords, universities,
// professors) in a shared key/value store. Recommendations are never cached.
package cache

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/goccy/go-json"
	"github.com/gofiber/storage/redis/v3"
)

// Catalog keys.
const (
	KeyKeywords     = "catalog:keywords"
	KeyUniversities = "catalog:universities"
	KeyProfessors   = "catalog:professors"
)

// Storage is the subset of a Fiber storage backend the cache uses.
type Storage interface {
	Get(key string) ([]byte, error)
	Set(key string, val []byte, exp time.Duration) error
	Close() error
}

// Loader fetches a catalog from its backing store.
type Loader func(ctx context.Context) ([]string, error)

// Catalog caches name lists. A nil *Catalog loads every time.
type Catalog struct {
	store Storage
	ttl   time.Duration
}

// NewCatalog creates a catalog cache over store.
func NewCatalog(store Storage, ttl time.Duration) *Catalog {
	return &Catalog{store: store, ttl: ttl}
}

// NewRedisCatalog connects to the redis server at url.
func NewRedisCatalog(url string, ttl time.Duration) (c *Catalog, err error) {
	// redis.New panics when the initial ping fails.
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("failed to connect to redis: %v", r)
		}
	}()

	store := redis.New(redis.Config{URL: url})
	return NewCatalog(store, ttl), nil
}

// Strings returns the cached list under key, loading and caching it on a miss.
// Cache failures are logged and fall through to load.
func (c *Catalog) Strings(ctx context.Context, key string, load Loader) ([]string, error) {
	if c == nil {
		return load(ctx)
	}

	raw, err := c.store.Get(key)
	if err != nil {
		slog.Warn("catalog cache read failed", "key", key, "error", err)
	} else if raw != nil {
		var names []string
		if err := json.Unmarshal(raw, &names); err == nil {
			return names, nil
		}
		slog.Warn("discarding undecodable catalog cache entry", "key", key)
	}

	return c.Refresh(ctx, key, load)
}

// Refresh loads the list and replaces the cached copy. Failed loads are not cached.
func (c *Catalog) Refresh(ctx context.Context, key string, load Loader) ([]string, error) {
	names, err := load(ctx)
	if err != nil || c == nil {
		return names, err
	}

	raw, err := json.Marshal(names)
	if err != nil {
		return names, nil
	}
	if err := c.store.Set(key, raw, c.ttl); err != nil {
		slog.Warn("catalog cache write failed", "key", key, "error", err)
	}
	return names, nil
}

// Close releases the backing store.
func (c *Catalog) Close() error {
	if c == nil {
		return nil
	}
	return c.store.Close()
}

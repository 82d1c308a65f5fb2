// Package cache provides the apiserver's read-through Redis cache for
// registry lookups.  Lookups against a persisted run are immutable once the
// run is finalized, so cached entries need no invalidation beyond TTL.
package cache

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
	"golang.org/x/sync/singleflight"

	"github.com/turtacn/AcroLex/internal/config"
	"github.com/turtacn/AcroLex/internal/infrastructure/monitoring/logging"
	"github.com/turtacn/AcroLex/pkg/errors"
	"github.com/turtacn/AcroLex/pkg/types/acronym"
)

const keyPrefix = "acrolex:lookup:"

// store is the slice of the redis client the cache needs.
type store interface {
	Get(ctx context.Context, key string) *redis.StringCmd
	Set(ctx context.Context, key string, value interface{}, expiration time.Duration) *redis.StatusCmd
}

// Loader fetches prototypes on a cache miss.
type Loader func(ctx context.Context, runID, surface string) ([]acronym.Prototype, error)

// LookupCache is a read-through cache of per-run prototype lookups.
// Concurrent misses for the same key are collapsed to one loader call.
type LookupCache struct {
	store  store
	ttl    time.Duration
	logger logging.Logger
	group  singleflight.Group
}

// NewClient opens a go-redis client from the configuration and verifies it
// with a ping.
func NewClient(ctx context.Context, cfg config.RedisConfig, log logging.Logger) (*redis.Client, error) {
	client := redis.NewClient(&redis.Options{
		Addr:         cfg.Addr,
		Password:     cfg.Password,
		DB:           cfg.DB,
		PoolSize:     cfg.PoolSize,
		DialTimeout:  cfg.DialTimeout,
		ReadTimeout:  cfg.ReadTimeout,
		WriteTimeout: cfg.WriteTimeout,
	})

	pingCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	if err := client.Ping(pingCtx).Err(); err != nil {
		_ = client.Close()
		return nil, errors.Wrap(err, errors.CodeCacheError, "redis unreachable")
	}

	log.Info("connected to redis", logging.String("addr", cfg.Addr))
	return client, nil
}

// NewLookupCache builds a LookupCache.  A zero ttl defaults to 15 minutes.
func NewLookupCache(s store, ttl time.Duration, log logging.Logger) *LookupCache {
	if ttl <= 0 {
		ttl = 15 * time.Minute
	}
	return &LookupCache{store: s, ttl: ttl, logger: log}
}

// Lookup returns the prototypes for (runID, surface), loading and caching
// them on a miss.  Cache failures degrade to the loader; the cache is an
// optimization, never a dependency.
func (c *LookupCache) Lookup(ctx context.Context, runID, surface string, load Loader) ([]acronym.Prototype, error) {
	key := cacheKey(runID, surface)

	raw, err := c.store.Get(ctx, key).Result()
	switch {
	case err == nil:
		var protos []acronym.Prototype
		if jsonErr := json.Unmarshal([]byte(raw), &protos); jsonErr == nil {
			return protos, nil
		}
		c.logger.Warn("discarding undecodable cache entry", logging.String("key", key))
	case err != redis.Nil:
		c.logger.Warn("cache read failed", logging.String("key", key), logging.Err(err))
	}

	v, err, _ := c.group.Do(key, func() (interface{}, error) {
		protos, err := load(ctx, runID, surface)
		if err != nil {
			return nil, err
		}
		if data, jsonErr := json.Marshal(protos); jsonErr == nil {
			if setErr := c.store.Set(ctx, key, data, c.ttl).Err(); setErr != nil {
				c.logger.Warn("cache write failed", logging.String("key", key), logging.Err(setErr))
			}
		}
		return protos, nil
	})
	if err != nil {
		return nil, err
	}
	return v.([]acronym.Prototype), nil
}

func cacheKey(runID, surface string) string {
	return fmt.Sprintf("%s%s:%s", keyPrefix, runID, surface)
}

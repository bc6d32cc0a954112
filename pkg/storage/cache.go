package storage

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/go-redis/redis/v8"
	lru "github.com/hashicorp/golang-lru/v2/expirable"

	"github.com/bylinehq/byline/pkg/observability"
)

// Cache is a two-level entity cache: an in-process LRU (L1) in front of
// Redis (L2). Values are stored as JSON. A nil Cache is a no-op, so call
// sites never have to branch on whether caching is enabled.
type Cache struct {
	l1      *lru.LRU[string, []byte]
	redis   *redis.Client
	config  Config
	metrics *observability.Metrics
}

// NewCache creates a two-level cache. redisClient may be nil, in which
// case only the in-process level is used.
func NewCache(cfg Config, redisClient *redis.Client, metrics *observability.Metrics) *Cache {
	maxEntries := cfg.L1MaxEntries
	if maxEntries <= 0 {
		maxEntries = 1024
	}

	return &Cache{
		l1:      lru.NewLRU[string, []byte](maxEntries, nil, cfg.TTLFor("post")),
		redis:   redisClient,
		config:  cfg,
		metrics: metrics,
	}
}

// Get loads a cached value into dest. It returns false on a miss at both
// levels; Redis failures count as misses rather than errors because the
// cache is strictly an optimization.
func (c *Cache) Get(ctx context.Context, keyType, key string, dest interface{}) bool {
	if c == nil {
		return false
	}

	cacheKey := c.key(keyType, key)

	if data, ok := c.l1.Get(cacheKey); ok {
		if err := json.Unmarshal(data, dest); err == nil {
			c.recordHit("l1", keyType)
			return true
		}
		c.l1.Remove(cacheKey)
	}

	if c.redis != nil {
		data, err := c.redis.Get(ctx, cacheKey).Bytes()
		if err == nil {
			if err := json.Unmarshal(data, dest); err == nil {
				c.l1.Add(cacheKey, data)
				c.recordHit("redis", keyType)
				return true
			}
			// Corrupt entry; drop it.
			c.redis.Del(ctx, cacheKey)
		}
	}

	c.recordMiss(keyType)
	return false
}

// Set stores a value at both cache levels
func (c *Cache) Set(ctx context.Context, keyType, key string, value interface{}) {
	if c == nil {
		return
	}

	data, err := json.Marshal(value)
	if err != nil {
		return
	}

	cacheKey := c.key(keyType, key)
	c.l1.Add(cacheKey, data)

	if c.redis != nil {
		c.redis.Set(ctx, cacheKey, data, c.config.TTLFor(keyType))
	}
}

// Invalidate removes a value from both cache levels
func (c *Cache) Invalidate(ctx context.Context, keyType, key string) {
	if c == nil {
		return
	}

	cacheKey := c.key(keyType, key)
	c.l1.Remove(cacheKey)

	if c.redis != nil {
		c.redis.Del(ctx, cacheKey)
	}
}

func (c *Cache) key(keyType, key string) string {
	return fmt.Sprintf("%s:%s", keyType, key)
}

func (c *Cache) recordHit(level, keyType string) {
	if c.metrics != nil {
		c.metrics.CacheHitsTotal.WithLabelValues(level, keyType).Inc()
	}
}

func (c *Cache) recordMiss(keyType string) {
	if c.metrics != nil {
		c.metrics.CacheMissesTotal.WithLabelValues("all", keyType).Inc()
	}
}

// Close releases the Redis connection if one is held
func (c *Cache) Close() error {
	if c == nil || c.redis == nil {
		return nil
	}
	return c.redis.Close()
}

// PingRedis verifies Redis connectivity for readiness checks
func (c *Cache) PingRedis(ctx context.Context) error {
	if c == nil || c.redis == nil {
		return nil
	}
	return c.redis.Ping(ctx).Err()
}

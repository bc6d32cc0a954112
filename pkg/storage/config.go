// Package storage provides persistence plumbing: PostgreSQL connection
// management, the Redis client, and a two-level entity cache.
package storage

import "time"

// Config for the storage backends
type Config struct {
	// PostgreSQL config
	PostgresURL      string
	PostgresMaxConns int
	PostgresMinConns int
	PostgresTimeout  time.Duration

	// Redis config
	RedisURL        string
	RedisPassword   string
	RedisDB         int
	RedisMaxRetries int
	RedisPoolSize   int

	// Cache config
	CacheEnabled bool
	CacheTTL     map[string]time.Duration
	L1MaxEntries int
}

// DefaultConfig returns sensible default configuration
func DefaultConfig() Config {
	return Config{
		PostgresMaxConns: 20,
		PostgresMinConns: 2,
		PostgresTimeout:  10 * time.Second,
		RedisDB:          0,
		RedisMaxRetries:  3,
		RedisPoolSize:    10,
		CacheEnabled:     true,
		CacheTTL: map[string]time.Duration{
			"post":    15 * time.Minute,
			"comment": 15 * time.Minute,
			"user":    30 * time.Minute,
			"token":   5 * time.Minute,
		},
		L1MaxEntries: 1024,
	}
}

// TTLFor returns the cache TTL for a key type, with a safe default
func (c Config) TTLFor(keyType string) time.Duration {
	if ttl, ok := c.CacheTTL[keyType]; ok {
		return ttl
	}
	return 5 * time.Minute
}

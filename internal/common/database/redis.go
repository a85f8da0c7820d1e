// internal/common/database/redis.go
package database

import (
	"context"
	"fmt"
	"time"

	"realty-workers/internal/common/config"

	"github.com/redis/go-redis/v9"
)

// RedisClient holds the connection behind the listing snapshot cache.
type RedisClient struct {
	Client *redis.Client
}

// NewRedis connects lazily; call Ping to find out whether the cache is usable.
func NewRedis(cfg config.RedisConfig) (*RedisClient, error) {
	if cfg.Address == "" {
		return nil, fmt.Errorf("redis address is empty")
	}

	poolSize := cfg.PoolSize
	if poolSize <= 0 {
		poolSize = 10
	}
	// The cache is optional, so fail fast rather than stall a listing query.
	return &RedisClient{Client: redis.NewClient(&redis.Options{
		Addr:         cfg.Address,
		Password:     cfg.Password,
		DB:           cfg.DB,
		DialTimeout:  2 * time.Second,
		ReadTimeout:  500 * time.Millisecond,
		WriteTimeout: 500 * time.Millisecond,
		PoolSize:     poolSize,
		MinIdleConns: poolSize / 2,
	})}, nil
}

func (c *RedisClient) Ping(ctx context.Context) error {
	if err := c.Client.Ping(ctx).Err(); err != nil {
		return fmt.Errorf("redis ping failed: %w", err)
	}
	return nil
}

// Cache returns the client as the store's cache. A nil receiver yields a nil
// interface, which the store treats as "no cache".
func (c *RedisClient) Cache() redis.Cmdable {
	if c == nil || c.Client == nil {
		return nil
	}
	return c.Client
}

func (c *RedisClient) Close() error {
	if c.Client != nil {
		return c.Client.Close()
	}
	return nil
}

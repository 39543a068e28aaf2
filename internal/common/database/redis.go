// internal/common/database/redis.go
package database

import (
	"context"
	"fmt"
	"time"

	"loan-approval/internal/common/config"
	"loan-approval/internal/common/errors"

	"github.com/redis/go-redis/v9"
)

// RedisClient holds the connection backing the choice-set cache.
type RedisClient struct {
	Client *redis.Client
}

// NewRedis creates a client for the cache. Timeouts are short: a slow cache
// is bypassed and the reference database is read instead.
func NewRedis(cfg config.RedisConfig) *RedisClient {
	return &RedisClient{Client: redis.NewClient(redisOptions(cfg))}
}

func redisOptions(cfg config.RedisConfig) *redis.Options {
	return &redis.Options{
		Addr:         cfg.Address,
		Password:     cfg.Password,
		DB:           cfg.DB,
		DialTimeout:  2 * time.Second,
		ReadTimeout:  500 * time.Millisecond,
		WriteTimeout: 500 * time.Millisecond,
		PoolSize:     4,
		MaxRetries:   1,
	}
}

// Ping tests the Redis connection
func (c *RedisClient) Ping(ctx context.Context) error {
	if err := c.Client.Ping(ctx).Err(); err != nil {
		return errors.NewDatabaseConnectionFailedError(fmt.Errorf("redis %s: %w", c.Client.Options().Addr, err))
	}
	return nil
}

// Close closes the Redis connection
func (c *RedisClient) Close() error {
	if c.Client != nil {
		return c.Client.Close()
	}
	return nil
}

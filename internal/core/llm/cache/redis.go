package cache

import (
	"context"
	"fmt"

	"nutrimori-ai/internal/infrastructure/config"

	"github.com/go-redis/redis/v8"
)

const redisKeyPrefix = "llm:candidates:"

// RedisCache is the redis-backed cache backend, for deployments with more
// than one service instance.
type RedisCache struct {
	client *redis.Client
	config *config.CacheConfig
}

// NewRedisCache connects to redis and verifies the connection
func NewRedisCache(cfg *config.CacheConfig) (*RedisCache, error) {
	client := redis.NewClient(&redis.Options{
		Addr: cfg.RedisAddr,
	})

	if err := client.Ping(context.Background()).Err(); err != nil {
		return nil, fmt.Errorf("failed to connect to redis: %w", err)
	}

	return &RedisCache{
		client: client,
		config: cfg,
	}, nil
}

// Get returns the cached value for key, or an error on miss
func (c *RedisCache) Get(ctx context.Context, key string) (string, error) {
	val, err := c.client.Get(ctx, redisKeyPrefix+key).Result()
	if err != nil {
		if err == redis.Nil {
			return "", fmt.Errorf("cache miss")
		}
		return "", fmt.Errorf("failed to get cache: %w", err)
	}
	return val, nil
}

// Set stores value under key with the configured TTL
func (c *RedisCache) Set(ctx context.Context, key, value string) error {
	if err := c.client.Set(ctx, redisKeyPrefix+key, value, c.config.TTL).Err(); err != nil {
		return fmt.Errorf("failed to set cache: %w", err)
	}
	return nil
}

// Close closes the redis connection
func (c *RedisCache) Close() error {
	return c.client.Close()
}

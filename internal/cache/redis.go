package cache

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	"github.com/redis/go-redis/v9"

	"agenda/internal/log"
)

// RedisCache stores JSON-encoded values under a key prefix. Redis failures are
// logged and reported as misses.
type RedisCache[T any] struct {
	client *redis.Client
	prefix string
	ttl    time.Duration
	logger *log.Logger
}

// NewRedisClient connects to addr and verifies the connection with PING.
func NewRedisClient(ctx context.Context, addr string) (*redis.Client, error) {
	client := redis.NewClient(&redis.Options{Addr: addr})
	if err := client.Ping(ctx).Err(); err != nil {
		_ = client.Close()
		return nil, err
	}
	return client, nil
}

func NewRedisCache[T any](client *redis.Client, prefix string, ttl time.Duration, logger *log.Logger) *RedisCache[T] {
	return &RedisCache[T]{
		client: client,
		prefix: prefix,
		ttl:    ttl,
		logger: logger.WithComponent(log.ComponentCache),
	}
}

func (c *RedisCache[T]) Get(ctx context.Context, key string) (T, bool) {
	var value T
	raw, err := c.client.Get(ctx, c.prefix+key).Bytes()
	if err != nil {
		if !errors.Is(err, redis.Nil) {
			c.logger.WarnContext(ctx, "Redis get failed", "key", key, "error", err)
		}
		return value, false
	}
	if err := json.Unmarshal(raw, &value); err != nil {
		c.logger.WarnContext(ctx, "Dropping undecodable cache item", "key", key, "error", err)
		c.Delete(ctx, key)
		return value, false
	}
	return value, true
}

func (c *RedisCache[T]) Set(ctx context.Context, key string, value T) {
	raw, err := json.Marshal(value)
	if err != nil {
		c.logger.WarnContext(ctx, "Cache value not encodable", "key", key, "error", err)
		return
	}
	if err := c.client.Set(ctx, c.prefix+key, raw, c.ttl).Err(); err != nil {
		c.logger.WarnContext(ctx, "Redis set failed", "key", key, "error", err)
	}
}

func (c *RedisCache[T]) Delete(ctx context.Context, key string) {
	if err := c.client.Del(ctx, c.prefix+key).Err(); err != nil {
		c.logger.WarnContext(ctx, "Redis delete failed", "key", key, "error", err)
	}
}

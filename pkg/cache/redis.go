package cache

import (
	"context"
	"errors"
	"fmt"
	"net"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/matzehuels/reflow/pkg/observability"
)

// DefaultRedisPrefix namespaces reflow keys inside a shared Redis database.
const DefaultRedisPrefix = "reflow:"

// RedisCache stores entries in Redis. Transient network failures are
// retried with backoff.
type RedisCache struct {
	client redis.UniversalClient
	prefix string
	retry  Backoff
}

// RedisOptions configures a RedisCache.
type RedisOptions struct {
	Addr     string
	Password string
	DB       int
	Prefix   string
	Retry    Backoff // zero uses DefaultBackoff
}

// NewRedisCache connects to Redis and verifies the connection with PING.
func NewRedisCache(ctx context.Context, opts RedisOptions) (*RedisCache, error) {
	client := redis.NewClient(&redis.Options{
		Addr:     opts.Addr,
		Password: opts.Password,
		DB:       opts.DB,
	})
	c := NewRedisCacheFromClient(client, opts.Prefix)
	c.retry = opts.Retry
	if err := client.Ping(ctx).Err(); err != nil {
		client.Close()
		return nil, fmt.Errorf("redis %s: %w: %v", opts.Addr, ErrUnavailable, err)
	}
	return c, nil
}

// NewRedisCacheFromClient wraps an existing client. An empty prefix uses
// [DefaultRedisPrefix].
func NewRedisCacheFromClient(client redis.UniversalClient, prefix string) *RedisCache {
	if prefix == "" {
		prefix = DefaultRedisPrefix
	}
	return &RedisCache{client: client, prefix: prefix}
}

// Get retrieves a value from Redis.
func (c *RedisCache) Get(ctx context.Context, key string) ([]byte, bool, error) {
	var data []byte
	err := c.retry.Do(ctx, func() error {
		v, err := c.client.Get(ctx, c.prefix+key).Bytes()
		if err != nil {
			return classify(err)
		}
		data = v
		return nil
	})
	if errors.Is(err, redis.Nil) {
		observability.Cache().OnCacheMiss(ctx, "redis")
		return nil, false, nil
	}
	if err != nil {
		return nil, false, err
	}
	observability.Cache().OnCacheHit(ctx, "redis")
	return data, true, nil
}

// Set stores a value in Redis. A ttl of zero stores without expiry.
func (c *RedisCache) Set(ctx context.Context, key string, data []byte, ttl time.Duration) error {
	err := c.retry.Do(ctx, func() error {
		return classify(c.client.Set(ctx, c.prefix+key, data, ttl).Err())
	})
	if err != nil {
		return err
	}
	observability.Cache().OnCacheSet(ctx, "redis", len(data))
	return nil
}

// Delete removes a value from Redis.
func (c *RedisCache) Delete(ctx context.Context, key string) error {
	return c.retry.Do(ctx, func() error {
		return classify(c.client.Del(ctx, c.prefix+key).Err())
	})
}

// Clear removes every key under the cache prefix and returns how many were
// removed.
func (c *RedisCache) Clear(ctx context.Context) (int, error) {
	removed := 0
	iter := c.client.Scan(ctx, 0, c.prefix+"*", 256).Iterator()
	var batch []string
	flush := func() error {
		if len(batch) == 0 {
			return nil
		}
		n, err := c.client.Del(ctx, batch...).Result()
		removed += int(n)
		batch = batch[:0]
		return err
	}
	for iter.Next(ctx) {
		batch = append(batch, iter.Val())
		if len(batch) == 256 {
			if err := flush(); err != nil {
				return removed, err
			}
		}
	}
	if err := iter.Err(); err != nil {
		return removed, err
	}
	return removed, flush()
}

// Close closes the Redis client.
func (c *RedisCache) Close() error {
	return c.client.Close()
}

// classify wraps network failures in ErrUnavailable so they are retried.
// redis.Nil and command errors pass through unchanged.
func classify(err error) error {
	if err == nil || errors.Is(err, redis.Nil) {
		return err
	}
	var netErr net.Error
	if errors.As(err, &netErr) || errors.Is(err, context.DeadlineExceeded) {
		return fmt.Errorf("%w: %v", ErrUnavailable, err)
	}
	return err
}

// Ensure RedisCache implements Cache.
var _ Cache = (*RedisCache)(nil)

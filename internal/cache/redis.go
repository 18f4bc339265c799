// internal/cache/redis.go
package cache

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/valpere/OGScrapexter/internal/utils"
)

// DefaultRedisPrefix namespaces keys when no prefix is configured
const DefaultRedisPrefix = "ogscrapexter"

// Redis keeps results in a shared Redis instance with per-key expiry
type Redis struct {
	client *redis.Client
	prefix string
	ttl    time.Duration
	counters
}

// NewRedis wraps an existing client.
func NewRedis(client *redis.Client, prefix string, ttl time.Duration) *Redis {
	if prefix == "" {
		prefix = DefaultRedisPrefix
	}
	if ttl <= 0 {
		ttl = DefaultTTL
	}
	return &Redis{client: client, prefix: prefix, ttl: ttl}
}

// DialRedis parses url, connects and verifies the connection.
func DialRedis(url, prefix string, ttl time.Duration) (*Redis, error) {
	opts, err := redis.ParseURL(url)
	if err != nil {
		return nil, utils.WrapError(err, utils.ErrCodeInvalidConfig, "failed to parse redis url")
	}

	client := redis.NewClient(opts)

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := client.Ping(ctx).Err(); err != nil {
		client.Close()
		return nil, utils.WrapError(err, utils.ErrCodeCacheError, "failed to connect to redis")
	}

	return NewRedis(client, prefix, ttl), nil
}

func (r *Redis) key(key string) string {
	return fmt.Sprintf("%s:%s", r.prefix, key)
}

func (r *Redis) Get(ctx context.Context, key string) ([]byte, bool, error) {
	value, err := r.client.Get(ctx, r.key(key)).Bytes()
	if errors.Is(err, redis.Nil) {
		r.record(false)
		return nil, false, nil
	}
	if err != nil {
		return nil, false, utils.WrapError(err, utils.ErrCodeCacheError, "redis get failed")
	}
	r.record(true)
	return value, true, nil
}

func (r *Redis) Set(ctx context.Context, key string, value []byte) error {
	if err := r.client.Set(ctx, r.key(key), value, r.ttl).Err(); err != nil {
		return utils.WrapError(err, utils.ErrCodeCacheError, "redis set failed")
	}
	return nil
}

func (r *Redis) Delete(ctx context.Context, key string) error {
	if err := r.client.Del(ctx, r.key(key)).Err(); err != nil {
		return utils.WrapError(err, utils.ErrCodeCacheError, "redis delete failed")
	}
	return nil
}

func (r *Redis) Has(ctx context.Context, key string) (bool, error) {
	n, err := r.client.Exists(ctx, r.key(key)).Result()
	if err != nil {
		return false, utils.WrapError(err, utils.ErrCodeCacheError, "redis exists failed")
	}
	return n > 0, nil
}

// Clear removes every key under the prefix and resets the counters.
func (r *Redis) Clear(ctx context.Context) error {
	iter := r.client.Scan(ctx, 0, r.prefix+":*", 100).Iterator()
	var keys []string
	for iter.Next(ctx) {
		keys = append(keys, iter.Val())
	}
	if err := iter.Err(); err != nil {
		return utils.WrapError(err, utils.ErrCodeCacheError, "redis scan failed")
	}
	if len(keys) > 0 {
		if err := r.client.Del(ctx, keys...).Err(); err != nil {
			return utils.WrapError(err, utils.ErrCodeCacheError, "redis clear failed")
		}
	}
	r.hits.Store(0)
	r.misses.Store(0)
	return nil
}

// Stats counts keys under the prefix; Size is -1 when Redis cannot be reached.
func (r *Redis) Stats() Stats {
	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()

	size := 0
	iter := r.client.Scan(ctx, 0, r.prefix+":*", 100).Iterator()
	for iter.Next(ctx) {
		size++
	}
	if iter.Err() != nil {
		size = -1
	}
	return Stats{Hits: r.hits.Load(), Misses: r.misses.Load(), Size: size}
}

func (r *Redis) Close() error {
	return r.client.Close()
}

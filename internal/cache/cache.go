// Package cache stores encoded extraction results keyed by normalized URL.
// Caches are constructed explicitly and injected; there is no package-level instance.
package cache

import (
	"context"
	"sync/atomic"
	"time"

	"github.com/valpere/OGScrapexter/internal/utils"
)

// KeyPrefix is prepended to every cache key.
const KeyPrefix = "og:"

const (
	DefaultTTL     = time.Hour
	DefaultMaxSize = 1000
)

// Cache is a TTL-bounded store of encoded results.
type Cache interface {
	Get(ctx context.Context, key string) ([]byte, bool, error)
	Set(ctx context.Context, key string, value []byte) error
	Delete(ctx context.Context, key string) error
	Has(ctx context.Context, key string) (bool, error)
	Clear(ctx context.Context) error
	Stats() Stats
	Close() error
}

// Stats reports cache effectiveness
type Stats struct {
	Hits   int64 `json:"hits"`
	Misses int64 `json:"misses"`
	Size   int   `json:"size"`
}

// HitRate returns hits / (hits + misses), or 0 before any lookup.
func (s Stats) HitRate() float64 {
	total := s.Hits + s.Misses
	if total == 0 {
		return 0
	}
	return float64(s.Hits) / float64(total)
}

// Key builds the cache key for a URL: the prefix plus the URL with its
// fragment removed and query parameters sorted.
func Key(rawURL string) string {
	normalized, _ := utils.NormalizeURL(rawURL)
	return KeyPrefix + normalized
}

type counters struct {
	hits   atomic.Int64
	misses atomic.Int64
}

func (c *counters) record(found bool) {
	if found {
		c.hits.Add(1)
	} else {
		c.misses.Add(1)
	}
}

// Config selects and sizes a cache backend
type Config struct {
	Type     string        `yaml:"type" json:"type"` // memory, redis or none
	TTL      time.Duration `yaml:"ttl" json:"ttl"`
	MaxSize  int           `yaml:"max_size" json:"max_size"`
	RedisURL string        `yaml:"redis_url" json:"redis_url"`
	Prefix   string        `yaml:"prefix" json:"prefix"`
}

// New builds the backend named by cfg.Type.
func New(cfg Config) (Cache, error) {
	switch cfg.Type {
	case "", "memory":
		return NewMemory(cfg.MaxSize, cfg.TTL), nil
	case "redis":
		return DialRedis(cfg.RedisURL, cfg.Prefix, cfg.TTL)
	case "none", "noop":
		return NewNoop(), nil
	default:
		return nil, utils.NewError(utils.ErrCodeInvalidConfig, "unknown cache type").
			WithContext("type", cfg.Type).Build()
	}
}

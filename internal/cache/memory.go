// internal/cache/memory.go
package cache

import (
	"context"
	"time"

	"github.com/hashicorp/golang-lru/v2/expirable"
)

// Memory is an in-process LRU cache whose entries expire after a fixed TTL.
type Memory struct {
	lru *expirable.LRU[string, []byte]
	counters
}

// NewMemory creates a memory cache. Non-positive arguments select the defaults.
func NewMemory(maxSize int, ttl time.Duration) *Memory {
	if maxSize <= 0 {
		maxSize = DefaultMaxSize
	}
	if ttl <= 0 {
		ttl = DefaultTTL
	}
	return &Memory{lru: expirable.NewLRU[string, []byte](maxSize, nil, ttl)}
}

func (m *Memory) Get(_ context.Context, key string) ([]byte, bool, error) {
	value, ok := m.lru.Get(key)
	m.record(ok)
	return value, ok, nil
}

func (m *Memory) Set(_ context.Context, key string, value []byte) error {
	m.lru.Add(key, value)
	return nil
}

func (m *Memory) Delete(_ context.Context, key string) error {
	m.lru.Remove(key)
	return nil
}

func (m *Memory) Has(_ context.Context, key string) (bool, error) {
	return m.lru.Contains(key), nil
}

// Clear drops every entry and resets the counters.
func (m *Memory) Clear(_ context.Context) error {
	m.lru.Purge()
	m.hits.Store(0)
	m.misses.Store(0)
	return nil
}

func (m *Memory) Stats() Stats {
	return Stats{Hits: m.hits.Load(), Misses: m.misses.Load(), Size: m.lru.Len()}
}

func (m *Memory) Close() error { return nil }

package session

import (
	"context"
	"sync"
)

// Cache is the raw keyed byte store beneath the session store. The contract
// required of an implementation is atomic upsert-by-key and read-your-writes
// consistency for a single key; no cross-key transactions.
type Cache interface {
	Set(ctx context.Context, key string, val []byte) error
	Get(ctx context.Context, key string) ([]byte, bool, error)
	Del(ctx context.Context, key string) error
	Keys(ctx context.Context, prefix string) ([]string, error)
}

// MemoryCache is the in-process implementation for tests and local usage.
type MemoryCache struct {
	mu sync.RWMutex
	m  map[string][]byte
}

func NewMemoryCache() *MemoryCache {
	return &MemoryCache{m: map[string][]byte{}}
}

func (c *MemoryCache) Set(ctx context.Context, key string, val []byte) error {
	cp := make([]byte, len(val))
	copy(cp, val)
	c.mu.Lock()
	c.m[key] = cp
	c.mu.Unlock()
	return nil
}

func (c *MemoryCache) Get(ctx context.Context, key string) ([]byte, bool, error) {
	c.mu.RLock()
	val, okHit := c.m[key]
	c.mu.RUnlock()
	if !okHit {
		return nil, false, nil
	}
	cp := make([]byte, len(val))
	copy(cp, val)
	return cp, true, nil
}

func (c *MemoryCache) Del(ctx context.Context, key string) error {
	c.mu.Lock()
	delete(c.m, key)
	c.mu.Unlock()
	return nil
}

func (c *MemoryCache) Keys(ctx context.Context, prefix string) ([]string, error) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	var out []string
	for k := range c.m {
		if len(k) >= len(prefix) && k[:len(prefix)] == prefix {
			out = append(out, k)
		}
	}
	return out, nil
}

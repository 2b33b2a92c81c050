package cache

import (
	"sync"
	"time"
)

// Cache is a minimal TTL cache for hot-path lookups, safe for concurrent use.
type Cache[K comparable, V any] interface {
	Get(key K) (V, bool)
	Set(key K, value V, ttl time.Duration)
	Delete(key K)
}

type entry[V any] struct {
	value     V
	expiresAt time.Time
}

// TTLCache stores values in memory with per-entry TTLs. Expired entries are
// dropped lazily on read.
type TTLCache[K comparable, V any] struct {
	mu    sync.RWMutex
	items map[K]entry[V]
	now   func() time.Time
}

// Option configures a TTLCache.
type Option[K comparable, V any] func(*TTLCache[K, V])

// WithNow overrides the cache's time source, for tests.
func WithNow[K comparable, V any](now func() time.Time) Option[K, V] {
	return func(c *TTLCache[K, V]) {
		if now != nil {
			c.now = now
		}
	}
}

func NewTTLCache[K comparable, V any](opts ...Option[K, V]) *TTLCache[K, V] {
	c := &TTLCache[K, V]{
		items: make(map[K]entry[V]),
		now:   time.Now,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Get returns a cached value if present and not expired.
func (c *TTLCache[K, V]) Get(key K) (V, bool) {
	var zero V
	c.mu.RLock()
	item, ok := c.items[key]
	c.mu.RUnlock()
	if !ok {
		return zero, false
	}
	if !item.expiresAt.IsZero() && c.now().After(item.expiresAt) {
		c.Delete(key)
		return zero, false
	}
	return item.value, true
}

// Set stores a value. A non-positive ttl stores the value without expiry.
func (c *TTLCache[K, V]) Set(key K, value V, ttl time.Duration) {
	item := entry[V]{value: value}
	if ttl > 0 {
		item.expiresAt = c.now().Add(ttl)
	}
	c.mu.Lock()
	c.items[key] = item
	c.mu.Unlock()
}

// Delete removes a cached entry.
func (c *TTLCache[K, V]) Delete(key K) {
	c.mu.Lock()
	delete(c.items, key)
	c.mu.Unlock()
}

// Noop always misses and ignores writes; used when caching is disabled.
type Noop[K comparable, V any] struct{}

func (Noop[K, V]) Get(key K) (V, bool) {
	var zero V
	return zero, false
}

func (Noop[K, V]) Set(key K, value V, ttl time.Duration) {}

func (Noop[K, V]) Delete(key K) {}

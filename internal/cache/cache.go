// Package cache provides the time-boxed memoization layer the dashboard sits
// on. It is a best-effort cache: two concurrent misses on the same key may
// both run the producer, and the later result wins. Producers are idempotent
// fetches, so that is acceptable.
package cache

import (
	"strings"
	"sync"
	"time"
)

type entry struct {
	value     any
	expiresAt time.Time
}

// Cache is a TTL-expiring key/value store safe for concurrent use.
// Construct one per process and pass it explicitly; there is no package-level
// instance.
type Cache struct {
	mu      sync.RWMutex
	entries map[string]entry
	now     func() time.Time

	// OnHit and OnMiss, when set, run on every lookup outcome.
	OnHit  func()
	OnMiss func()
}

// New creates an empty cache.
func New() *Cache {
	return &Cache{
		entries: make(map[string]entry),
		now:     time.Now,
	}
}

// Key composes a cache key from ticker, operation kind, and window so that
// distinct operations and windows never collide.
func Key(ticker, op, window string) string {
	return strings.Join([]string{ticker, op, window}, "|")
}

func (c *Cache) get(key string) (any, bool) {
	c.mu.RLock()
	e, ok := c.entries[key]
	c.mu.RUnlock()
	if !ok || c.now().After(e.expiresAt) {
		return nil, false
	}
	return e.value, true
}

func (c *Cache) set(key string, value any, ttl time.Duration) {
	c.mu.Lock()
	c.entries[key] = entry{value: value, expiresAt: c.now().Add(ttl)}
	c.mu.Unlock()
}

// Len reports the number of stored entries, expired or not.
func (c *Cache) Len() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return len(c.entries)
}

// GetOrCompute returns the cached value for key if it has not expired,
// otherwise runs produce, stores the result for ttl, and returns it.
// A failed produce caches nothing, so the next call retries immediately.
func GetOrCompute[T any](c *Cache, key string, ttl time.Duration, produce func() (T, error)) (T, error) {
	if v, ok := c.get(key); ok {
		if typed, ok := v.(T); ok {
			if c.OnHit != nil {
				c.OnHit()
			}
			return typed, nil
		}
	}
	if c.OnMiss != nil {
		c.OnMiss()
	}

	var zero T
	value, err := produce()
	if err != nil {
		return zero, err
	}
	c.set(key, value, ttl)
	return value, nil
}

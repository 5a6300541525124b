// Package cache provides an in-memory TTL cache. It holds staff profiles
// so that every authenticated request does not re-read the profiles table.
package cache

import (
	"context"
	"sync"
	"time"
)

type entry[T any] struct {
	value     T
	expiresAt time.Time
}

// InMemory is a thread-safe in-memory cache with TTL.
type InMemory[T any] struct {
	mu    sync.RWMutex
	items map[string]entry[T]
	ttl   time.Duration
	done  chan struct{}
	once  sync.Once
}

// New creates a cache with the given TTL and starts its janitor.
// Call Close to stop the janitor.
func New[T any](ttl time.Duration) *InMemory[T] {
	c := &InMemory[T]{
		items: make(map[string]entry[T]),
		ttl:   ttl,
		done:  make(chan struct{}),
	}
	go c.cleanup()
	return c
}

// Get retrieves a value. Returns false if not found or expired.
func (c *InMemory[T]) Get(key string) (T, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()

	e, ok := c.items[key]
	if !ok || time.Now().After(e.expiresAt) {
		var zero T
		return zero, false
	}
	return e.value, true
}

// Set stores a value with the configured TTL.
func (c *InMemory[T]) Set(key string, value T) {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.items[key] = entry[T]{
		value:     value,
		expiresAt: time.Now().Add(c.ttl),
	}
}

// Delete removes a value.
func (c *InMemory[T]) Delete(key string) {
	c.mu.Lock()
	defer c.mu.Unlock()

	delete(c.items, key)
}

// GetOrLoad returns the cached value for key, calling load on a miss.
// The second return value reports whether the value came from the cache.
// Errors from load are returned as-is and nothing is stored.
func (c *InMemory[T]) GetOrLoad(ctx context.Context, key string, load func(context.Context) (T, error)) (T, bool, error) {
	if v, ok := c.Get(key); ok {
		return v, true, nil
	}
	v, err := load(ctx)
	if err != nil {
		var zero T
		return zero, false, err
	}
	c.Set(key, v)
	return v, false, nil
}

// Len returns the number of stored entries, expired ones included.
func (c *InMemory[T]) Len() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return len(c.items)
}

// Close stops the janitor goroutine. It is safe to call more than once.
func (c *InMemory[T]) Close() {
	c.once.Do(func() { close(c.done) })
}

// cleanup periodically removes expired entries.
func (c *InMemory[T]) cleanup() {
	ticker := time.NewTicker(c.ttl)
	defer ticker.Stop()

	for {
		select {
		case <-c.done:
			return
		case <-ticker.C:
			c.mu.Lock()
			now := time.Now()
			for k, v := range c.items {
				if now.After(v.expiresAt) {
					delete(c.items, k)
				}
			}
			c.mu.Unlock()
		}
	}
}

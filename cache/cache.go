package cache

import "sync"

// Cache is a thread-safe generic key/value store. Entries live until they
// are deleted.
type Cache[K comparable, V any] struct {
	mu    sync.RWMutex
	items map[K]V
}

// NewCache creates an empty Cache.
func NewCache[K comparable, V any]() *Cache[K, V] {
	return &Cache[K, V]{
		items: make(map[K]V),
	}
}

// Set stores v under k, replacing any existing value.
func (c *Cache[K, V]) Set(k K, v V) {
	c.mu.Lock()
	c.items[k] = v
	c.mu.Unlock()
}

// Get returns the value stored under k and whether it was present.
func (c *Cache[K, V]) Get(k K) (V, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	v, ok := c.items[k]
	return v, ok
}

// GetOrSet returns the existing value for k if present. Otherwise it stores v
// and returns it. loaded reports which of the two happened. The check and
// the store are atomic.
func (c *Cache[K, V]) GetOrSet(k K, v V) (actual V, loaded bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if existing, found := c.items[k]; found {
		return existing, true
	}
	c.items[k] = v
	return v, false
}

// Delete removes k.
func (c *Cache[K, V]) Delete(k K) {
	c.mu.Lock()
	delete(c.items, k)
	c.mu.Unlock()
}

// Range calls f for every entry until f returns false. Iteration order is
// not defined. f must not modify the cache.
func (c *Cache[K, V]) Range(f func(key K, value V) bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	for k, v := range c.items {
		if !f(k, v) {
			return
		}
	}
}

// Clean removes every entry.
func (c *Cache[K, V]) Clean() {
	c.mu.Lock()
	c.items = make(map[K]V)
	c.mu.Unlock()
}

// Len returns the number of stored entries.
func (c *Cache[K, V]) Len() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return len(c.items)
}

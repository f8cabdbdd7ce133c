// Package cache provides the process-local singleton cache used to share
// loaded model instances between callers.
package cache

import (
	"sync"
)

// Singleton memoizes values by key. Singleton lookups hold one lock across
// the whole check-load-store sequence, so at most one loader runs for a
// key and concurrent callers observe the stored value. Non-singleton calls
// bypass both the lock and the map.
//
// Entries are never evicted individually; Clear drops all of them.
type Singleton[K comparable, V any] struct {
	mu   sync.Mutex
	data map[K]V
}

// New creates an empty Singleton cache.
func New[K comparable, V any]() *Singleton[K, V] {
	return &Singleton[K, V]{
		data: make(map[K]V),
	}
}

// guard locks the cache only when singleton is set. The returned func
// releases whatever was taken and must always be called.
func (c *Singleton[K, V]) guard(singleton bool) func() {
	if !singleton {
		return func() {}
	}
	c.mu.Lock()
	return c.mu.Unlock
}

// GetOrLoad returns the cached value for key when singleton is set and an
// entry exists. Otherwise it calls loader; on success with singleton set
// the result is stored. hit reports whether loader was skipped.
// Failed loads store nothing.
func (c *Singleton[K, V]) GetOrLoad(singleton bool, key K, loader func() (V, error)) (value V, hit bool, err error) {
	unlock := c.guard(singleton)
	defer unlock()

	if singleton {
		if v, ok := c.data[key]; ok {
			return v, true, nil
		}
	}

	value, err = loader()
	if err != nil {
		var zero V
		return zero, false, err
	}

	if singleton {
		if c.data == nil {
			c.data = make(map[K]V)
		}
		c.data[key] = value
	}
	return value, false, nil
}

// Get returns the stored value for key without loading.
func (c *Singleton[K, V]) Get(key K) (V, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	v, ok := c.data[key]
	return v, ok
}

// Snapshot returns a shallow copy of the stored entries.
// It waits for an in-flight singleton load to finish.
func (c *Singleton[K, V]) Snapshot() map[K]V {
	c.mu.Lock()
	defer c.mu.Unlock()

	result := make(map[K]V, len(c.data))
	for k, v := range c.data {
		result[k] = v
	}
	return result
}

// Clear drops every entry. In-flight non-singleton loads are unaffected.
func (c *Singleton[K, V]) Clear() {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.data = make(map[K]V)
}

// Len returns the number of stored entries.
func (c *Singleton[K, V]) Len() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.data)
}

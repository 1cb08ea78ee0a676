package cache

import (
	"errors"
	"sync"
	"sync/atomic"
)

// DefaultCapacity is used when a non-positive capacity is requested.
const DefaultCapacity = 256

// ErrLoadPanicked is returned to callers that waited on a load which panicked.
var ErrLoadPanicked = errors.New("cache: load panicked")

// call is one in-flight load shared by every caller asking for its key.
type call[V any] struct {
	done chan struct{}
	v    V
	err  error
}

// Cache is a generic thread-safe LRU cache with a fixed capacity.
//
// Cache is safe for concurrent use.
// Cache must not be copied after creation (has mutex).
type Cache[K comparable, V any] struct {
	mu       sync.Mutex
	entries  *lru[K, V]
	inflight map[K]*call[V]

	hits      atomic.Uint64
	misses    atomic.Uint64
	evictions atomic.Uint64
}

// New creates a cache holding at most capacity entries.
// If capacity <= 0, DefaultCapacity is used.
func New[K comparable, V any](capacity int) *Cache[K, V] {
	if capacity <= 0 {
		capacity = DefaultCapacity
	}
	return &Cache[K, V]{entries: newLRU[K, V](capacity)}
}

// Get retrieves a value from the cache.
// Returns (value, true) if found, (zero, false) otherwise.
func (c *Cache[K, V]) Get(key K) (V, bool) {
	c.mu.Lock()
	v, ok := c.entries.get(key)
	c.mu.Unlock()

	if ok {
		c.hits.Add(1)
	} else {
		c.misses.Add(1)
	}
	return v, ok
}

// Set stores a value, evicting the least recently used entry when full.
func (c *Cache[K, V]) Set(key K, value V) {
	c.mu.Lock()
	n := c.entries.put(key, value)
	c.mu.Unlock()
	c.evictions.Add(uint64(n))
}

// GetOrCreate returns the cached value or creates it.
// Concurrent callers for the same key share one create call.
func (c *Cache[K, V]) GetOrCreate(key K, create func() V) V {
	v, _ := c.GetOrLoad(key, func() (V, error) { return create(), nil })
	return v
}

// GetOrLoad is GetOrCreate for loaders that can fail.
// load runs outside the lock, so loads of different keys proceed in
// parallel; callers asking for a key already loading wait for that load.
// Errors are returned to every waiting caller and nothing is cached.
func (c *Cache[K, V]) GetOrLoad(key K, load func() (V, error)) (V, error) {
	c.mu.Lock()
	if v, ok := c.entries.get(key); ok {
		c.mu.Unlock()
		c.hits.Add(1)
		return v, nil
	}
	if cl, ok := c.inflight[key]; ok {
		c.mu.Unlock()
		<-cl.done
		c.hits.Add(1)
		return cl.v, cl.err
	}

	cl := &call[V]{done: make(chan struct{})}
	if c.inflight == nil {
		c.inflight = make(map[K]*call[V])
	}
	c.inflight[key] = cl
	c.mu.Unlock()
	c.misses.Add(1)

	return c.load(key, cl, load)
}

// load runs fn for cl and publishes the result, even when fn panics.
func (c *Cache[K, V]) load(key K, cl *call[V], fn func() (V, error)) (V, error) {
	finished := false
	defer func() {
		if !finished {
			cl.err = ErrLoadPanicked
		}
		c.mu.Lock()
		delete(c.inflight, key)
		if cl.err == nil {
			c.evictions.Add(uint64(c.entries.put(key, cl.v)))
		}
		c.mu.Unlock()
		close(cl.done)
	}()

	cl.v, cl.err = fn()
	finished = true
	return cl.v, cl.err
}

// Delete removes an entry from the cache.
// Returns true if the entry was found and removed.
func (c *Cache[K, V]) Delete(key K) bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.entries.remove(key)
}

// Clear removes all entries from the cache. Statistics are kept.
func (c *Cache[K, V]) Clear() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.entries.clear()
}

// Len returns the number of entries in the cache.
func (c *Cache[K, V]) Len() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.entries.len()
}

// Capacity returns the maximum number of entries.
func (c *Cache[K, V]) Capacity() int {
	return c.entries.capacity
}

// Stats returns current cache statistics.
func (c *Cache[K, V]) Stats() Stats {
	return newStats(c.Len(), c.Capacity(), c.hits.Load(), c.misses.Load(), c.evictions.Load())
}

// Stats contains cache statistics.
type Stats struct {
	// Len is the current number of entries.
	Len int
	// Capacity is the total capacity.
	Capacity int
	// Hits is the number of lookups served from the cache.
	Hits uint64
	// Misses is the number of lookups that had to load.
	Misses uint64
	// HitRate is Hits / (Hits + Misses), 0 when there were no lookups.
	HitRate float64
	// Evictions is the number of entries dropped to make room.
	Evictions uint64
}

func newStats(n, capacity int, hits, misses, evictions uint64) Stats {
	var rate float64
	if total := hits + misses; total > 0 {
		rate = float64(hits) / float64(total)
	}
	return Stats{
		Len:       n,
		Capacity:  capacity,
		Hits:      hits,
		Misses:    misses,
		HitRate:   rate,
		Evictions: evictions,
	}
}

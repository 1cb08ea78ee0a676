package cache

import (
	"encoding/binary"
	"hash/fnv"
)

// ShardCount is the number of shards of a Sharded cache.
// Must be a power of 2 for fast modulo via bitwise AND.
const ShardCount = 16

const shardMask = ShardCount - 1

// Hasher computes the shard-selection hash of a key.
type Hasher[K any] func(K) uint64

// Int64Hasher computes the FNV-1a hash of an int64 key.
func Int64Hasher(v int64) uint64 {
	var buf [8]byte
	binary.LittleEndian.PutUint64(buf[:], uint64(v))
	h := fnv.New64a()
	_, _ = h.Write(buf[:]) // fnv.Write never returns an error
	return h.Sum64()
}

// Sharded is a thread-safe LRU cache split into ShardCount independently
// locked shards to reduce contention between workers.
type Sharded[K comparable, V any] struct {
	shards [ShardCount]*Cache[K, V]
	hasher Hasher[K]
}

// NewSharded creates a sharded cache with the given capacity per shard.
// Total capacity is capacity * ShardCount.
// If capacity <= 0, DefaultCapacity is used.
func NewSharded[K comparable, V any](capacity int, hasher Hasher[K]) *Sharded[K, V] {
	s := &Sharded[K, V]{hasher: hasher}
	for i := range s.shards {
		s.shards[i] = New[K, V](capacity)
	}
	return s
}

func (s *Sharded[K, V]) shard(key K) *Cache[K, V] {
	return s.shards[s.hasher(key)&shardMask]
}

// Get retrieves a cached value by key.
func (s *Sharded[K, V]) Get(key K) (V, bool) {
	return s.shard(key).Get(key)
}

// Set stores a value in the key's shard.
func (s *Sharded[K, V]) Set(key K, value V) {
	s.shard(key).Set(key, value)
}

// GetOrLoad returns the cached value or loads it, see Cache.GetOrLoad.
// Errors are not cached.
func (s *Sharded[K, V]) GetOrLoad(key K, load func() (V, error)) (V, error) {
	return s.shard(key).GetOrLoad(key, load)
}

// Clear removes all entries from every shard.
func (s *Sharded[K, V]) Clear() {
	for _, c := range s.shards {
		c.Clear()
	}
}

// Len returns the total number of entries across all shards.
func (s *Sharded[K, V]) Len() int {
	n := 0
	for _, c := range s.shards {
		n += c.Len()
	}
	return n
}

// Stats aggregates the statistics of all shards.
func (s *Sharded[K, V]) Stats() Stats {
	var n, capacity int
	var hits, misses, evictions uint64
	for _, c := range s.shards {
		st := c.Stats()
		n += st.Len
		capacity += st.Capacity
		hits += st.Hits
		misses += st.Misses
		evictions += st.Evictions
	}
	return newStats(n, capacity, hits, misses, evictions)
}

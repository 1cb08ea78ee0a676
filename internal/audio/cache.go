package audio

import (
	"github.com/gogpu/spectile/internal/cache"
	"github.com/gogpu/spectile/internal/spectrum"
)

// Key identifies one cached spectrum.
type Key struct {
	Pos  int64
	Size spectrum.TransformSize
}

func hashKey(k Key) uint64 {
	return cache.Int64Hasher(k.Pos ^ int64(k.Size)<<48)
}

// SpectrumCache is a sharded LRU of spectra shared by all workers.
// Cached slices are read-only.
type SpectrumCache struct {
	c *cache.Sharded[Key, []float32]
}

// NewSpectrumCache creates a cache holding about capacity spectra.
func NewSpectrumCache(capacity int) *SpectrumCache {
	per := max(1, capacity/cache.ShardCount)
	return &SpectrumCache{c: cache.NewSharded[Key, []float32](per, hashKey)}
}

// Wrap returns a Sampler that consults the cache before s.
func (c *SpectrumCache) Wrap(s spectrum.Sampler) spectrum.Sampler {
	return &cachedSampler{Sampler: s, cache: c}
}

// Clear drops every cached spectrum.
func (c *SpectrumCache) Clear() {
	c.c.Clear()
}

// Len returns the number of cached spectra.
func (c *SpectrumCache) Len() int {
	return c.c.Len()
}

// Stats returns aggregate hit/miss statistics.
func (c *SpectrumCache) Stats() cache.Stats {
	return c.c.Stats()
}

type cachedSampler struct {
	spectrum.Sampler
	cache *SpectrumCache
}

func (s *cachedSampler) Spectrum(pos int64, size spectrum.TransformSize) ([]float32, error) {
	size = size.OrDefault()
	return s.cache.c.GetOrLoad(Key{Pos: pos, Size: size}, func() ([]float32, error) {
		return s.Sampler.Spectrum(pos, size)
	})
}

// Package cache provides the generic LRU caches used by spectile.
//
// # Cache[K, V]
//
// A mutex-guarded LRU with a fixed capacity. spectile keeps one palette per
// color precision in it, so changing the precision back and forth never
// rebuilds a table twice.
//
//	palettes := cache.New[int, *Palette](4)
//	p := palettes.GetOrCreate(precision, func() *Palette { return build(precision) })
//
// # Sharded[K, V]
//
// Sixteen Cache shards selected by a key hash. Spectra are looked up by every
// render worker for every pixel column, so the lock is split to keep workers
// from serializing on it.
//
//	spectra := cache.NewSharded[SpectrumKey, []float32](512, hashKey)
//	s, err := spectra.GetOrLoad(key, compute)
//
// # Thread Safety
//
// Both Cache and Sharded are safe for concurrent use.
// Neither should be copied after creation (they contain mutexes).
package cache

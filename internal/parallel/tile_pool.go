package parallel

import "sync"

// TilePool provides reuse of Tile buffers via sync.Pool.
//
// Only tiles that never reached the index may be returned to the pool:
// renders dropped because their generation went stale or their placeholder
// was cleared. Tiles already published to readers are left to the GC.
//
// Thread safety: TilePool is safe for concurrent use.
type TilePool struct {
	// pools holds a sync.Pool per tile size, keyed by poolKey.
	pools sync.Map
}

// NewTilePool creates a new tile pool.
func NewTilePool() *TilePool {
	return &TilePool{}
}

// Get retrieves a tile of the given size, painted with the background color.
// Returns nil for non-positive dimensions.
func (p *TilePool) Get(width, height int) *Tile {
	if width <= 0 || height <= 0 {
		return nil
	}

	tile := p.getOrCreatePool(poolKey{width, height}, width, height).Get().(*Tile)
	if tile.Width != width || tile.Height != height || len(tile.Data) != width*height*4 {
		// Foreign tile in the wrong pool; never hand out a mismatched size.
		return NewTile(tile.Range, width, height)
	}
	tile.Reset()
	return tile
}

// Put returns a tile to the pool for reuse.
// If tile is nil, this is a no-op.
func (p *TilePool) Put(tile *Tile) {
	if tile == nil || tile.Width <= 0 || tile.Height <= 0 {
		return
	}
	if pool, ok := p.pools.Load(poolKey{tile.Width, tile.Height}); ok {
		pool.(*sync.Pool).Put(tile)
	}
	// If pool doesn't exist, let GC reclaim the tile
}

// poolKey identifies one tile size. Tile widths follow the byte length of
// the rendered range and are unbounded, so the full size is the key.
type poolKey struct {
	width, height int
}

// getOrCreatePool gets or creates a sync.Pool for the given dimensions.
func (p *TilePool) getOrCreatePool(key poolKey, width, height int) *sync.Pool {
	if pool, ok := p.pools.Load(key); ok {
		return pool.(*sync.Pool)
	}

	newPool := &sync.Pool{
		New: func() any {
			return &Tile{
				Width:  width,
				Height: height,
				Data:   make([]byte, width*height*4),
			}
		},
	}

	// Try to store; if another goroutine beat us, use theirs
	actual, _ := p.pools.LoadOrStore(key, newPool)
	return actual.(*sync.Pool)
}

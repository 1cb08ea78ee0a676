package parallel

import (
	"sync"
	"testing"

	"github.com/gogpu/spectile/internal/color"
	"github.com/gogpu/spectile/internal/interval"
)

// =============================================================================
// Tile Tests
// =============================================================================

func TestNewTile(t *testing.T) {
	r := interval.Range{From: 100, To: 200}
	tile := NewTile(r, 3, 2)

	if tile.Range != r {
		t.Errorf("Range = %v, want %v", tile.Range, r)
	}
	if len(tile.Data) != 3*2*4 {
		t.Errorf("len(Data) = %d, want 24", len(tile.Data))
	}
	for py := range 2 {
		for px := range 3 {
			if got := tile.At(px, py); got != color.Black {
				t.Errorf("At(%d,%d) = %+v, want opaque black", px, py, got)
			}
		}
	}
}

func TestNewTile_Invalid(t *testing.T) {
	tests := []struct {
		name          string
		width, height int
	}{
		{"zero width", 0, 10},
		{"zero height", 10, 0},
		{"negative", -1, -1},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if tile := NewTile(interval.Range{}, tt.width, tt.height); tile != nil {
				t.Errorf("NewTile(%d, %d) = %+v, want nil", tt.width, tt.height, tile)
			}
		})
	}
}

func TestTile_PixelOffset(t *testing.T) {
	tile := NewTile(interval.Range{}, 10, 5)

	tests := []struct {
		px, py int
		want   int
	}{
		{0, 0, 0},
		{1, 0, 4},
		{0, 1, 40},
		{9, 4, (4*10 + 9) * 4},
		{10, 0, -1},
		{0, 5, -1},
		{-1, 0, -1},
	}
	for _, tt := range tests {
		if got := tile.PixelOffset(tt.px, tt.py); got != tt.want {
			t.Errorf("PixelOffset(%d, %d) = %d, want %d", tt.px, tt.py, got, tt.want)
		}
	}
}

func TestTile_SetAndClearColumn(t *testing.T) {
	tile := NewTile(interval.Range{}, 4, 3)
	red := color.ColorU8{R: 255, A: 255}

	for py := range 3 {
		tile.Set(2, py, red)
	}
	tile.Set(100, 100, red) // ignored

	if got := tile.At(2, 1); got != red {
		t.Errorf("At(2,1) = %+v, want red", got)
	}

	tile.ClearColumn(2)
	for py := range 3 {
		if got := tile.At(2, py); got != color.Black {
			t.Errorf("At(2,%d) after ClearColumn = %+v, want black", py, got)
		}
	}
}

func TestTile_Image(t *testing.T) {
	tile := NewTile(interval.Range{}, 4, 3)
	tile.Set(1, 2, color.ColorU8{G: 200, A: 255})

	img := tile.Image()
	if img.Bounds().Dx() != 4 || img.Bounds().Dy() != 3 {
		t.Errorf("Image bounds = %v, want 4x3", img.Bounds())
	}
	if img.Stride != tile.Stride() {
		t.Errorf("Image stride = %d, want %d", img.Stride, tile.Stride())
	}
	if got := img.RGBAAt(1, 2); got.G != 200 || got.A != 255 {
		t.Errorf("RGBAAt(1,2) = %+v, want G=200", got)
	}
	if tile.ByteSize() != len(img.Pix) {
		t.Errorf("ByteSize() = %d, len(Pix) = %d", tile.ByteSize(), len(img.Pix))
	}
}

// =============================================================================
// TilePool Tests
// =============================================================================

func TestTilePool_GetPut(t *testing.T) {
	pool := NewTilePool()

	tile := pool.Get(8, 4)
	if tile == nil {
		t.Fatal("Get returned nil")
	}
	if tile.Width != 8 || tile.Height != 4 || len(tile.Data) != 8*4*4 {
		t.Errorf("tile = %dx%d len %d, want 8x4 len 128", tile.Width, tile.Height, len(tile.Data))
	}

	tile.Set(0, 0, color.ColorU8{R: 9, A: 255})
	pool.Put(tile)

	again := pool.Get(8, 4)
	if got := again.At(0, 0); got != color.Black {
		t.Errorf("reused tile not reset: At(0,0) = %+v", got)
	}
}

func TestTilePool_GetInvalid(t *testing.T) {
	pool := NewTilePool()
	if tile := pool.Get(0, 4); tile != nil {
		t.Error("Get(0, 4) should return nil")
	}
	pool.Put(nil)
}

func TestTilePool_Concurrent(t *testing.T) {
	pool := NewTilePool()
	var wg sync.WaitGroup
	for w := range 8 {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for i := range 100 {
				tile := pool.Get(16+w%2, 8)
				tile.Set(i%tile.Width, 0, color.ColorU8{R: 1, A: 255})
				pool.Put(tile)
			}
		}()
	}
	wg.Wait()
}

func TestTilePool_WideTiles(t *testing.T) {
	pool := NewTilePool()

	// Widths above 16 bits must not share a pool.
	for _, width := range []int{70000, 80000, 70000} {
		tile := pool.Get(width, 2)
		if tile.Width != width || len(tile.Data) != width*2*4 {
			t.Fatalf("Get(%d, 2) = width %d, len %d", width, tile.Width, len(tile.Data))
		}
		pool.Put(tile)
	}

	if (poolKey{70000, 1}) == (poolKey{80000, 1}) {
		t.Error("poolKey collides for different wide widths")
	}
	if (poolKey{1, 2}) == (poolKey{2, 1}) {
		t.Error("poolKey collides for transposed sizes")
	}
}

// Package render turns spectra into spectrogram tiles.
//
// A Renderer samples one spectrum per destination column and folds the bins
// of each spectrum into rows, painting every row with the palette color of
// the peak magnitude in that row's frequency band.
package render

import (
	"errors"
	"fmt"
	"math"

	"github.com/gogpu/spectile/internal/color"
	"github.com/gogpu/spectile/internal/interval"
	"github.com/gogpu/spectile/internal/parallel"
	"github.com/gogpu/spectile/internal/spectrum"
)

// DefaultScaleFactor multiplies sqrt(magnitude) before clamping to 1.
const DefaultScaleFactor = 4

// ErrPanic is wrapped by errors returned for a render that panicked.
var ErrPanic = errors.New("render: panic during render")

// Geometry is the snapshot of display settings a tile is rendered with.
type Geometry struct {
	// Height is the tile height in pixels.
	Height int

	// BytesPerPixel is the zoomed number of stream bytes per column.
	BytesPerPixel float64

	// Size is the FFT window size passed to the sampler.
	Size spectrum.TransformSize

	// FrequencyHz is the highest displayed frequency.
	FrequencyHz int

	// SampleRate is the stream's sample rate.
	SampleRate int
}

// Width returns the number of columns a tile for r occupies:
// floor(len / BytesPerPixel), or 0 when the geometry is degenerate.
func (g Geometry) Width(r interval.Range) int {
	if g.BytesPerPixel <= 0 || r.Empty() {
		return 0
	}
	return int(math.Floor(float64(r.Len()) / g.BytesPerPixel))
}

// MaxBin returns the highest spectrum bin folded into rows.
func (g Geometry) MaxBin() int {
	return spectrum.MaxBin(g.Size, g.FrequencyHz, g.SampleRate)
}

// Renderer paints tiles with a fixed palette and scale.
//
// Thread safety: Renderer is safe for concurrent use as long as every
// goroutine passes its own Sampler.
type Renderer struct {
	palette *color.Palette
	scale   float64
	tiles   *parallel.TilePool
}

// New creates a renderer. A nil palette selects precision 0; a non-positive
// scale selects DefaultScaleFactor; a nil pool allocates tiles directly.
func New(palette *color.Palette, scale float64, tiles *parallel.TilePool) *Renderer {
	if palette == nil {
		palette = color.PaletteFor(0)
	}
	if scale <= 0 {
		scale = DefaultScaleFactor
	}
	return &Renderer{palette: palette, scale: scale, tiles: tiles}
}

// Palette returns the renderer's palette.
func (r *Renderer) Palette() *color.Palette {
	return r.palette
}

// Scale returns the renderer's magnitude scale factor.
func (r *Renderer) Scale() float64 {
	return r.scale
}

// Render produces the tile for rng.
//
// It returns (nil, nil) when the range is narrower than one column or the
// height is not positive. Tiles one pixel wide or tall are returned blank.
// A sampler error or a panic aborts the tile and is returned; no partial tile
// is produced.
func (r *Renderer) Render(s spectrum.Sampler, rng interval.Range, g Geometry) (tile *parallel.Tile, err error) {
	width := g.Width(rng)
	if width <= 0 || g.Height <= 0 {
		return nil, nil
	}

	tile = r.newTile(rng, width, g.Height)

	defer func() {
		if p := recover(); p != nil {
			r.discard(tile)
			tile = nil
			err = fmt.Errorf("%w: %v", ErrPanic, p)
		}
	}()

	if width <= 1 || g.Height <= 1 {
		return tile, nil
	}

	maxBin := g.MaxBin()
	binsPerRow := float64(maxBin) / float64(g.Height)
	step := float64(rng.Len()) / float64(width)

	for pos := range width {
		at := rng.From + int64(math.Floor(float64(pos)*step))
		mags, err := s.Spectrum(at, g.Size)
		if err != nil {
			r.discard(tile)
			return nil, fmt.Errorf("render: spectrum at %d: %w", at, err)
		}

		r.column(tile, pos, mags, maxBin, binsPerRow)
		tile.ClearColumn(pos + 1)
	}

	return tile, nil
}

// column folds one spectrum into column pos.
//
// Bins 1..maxBin map to row round(bin/binsPerRow)-1. While the mapped row
// stays put the peak magnitude accumulates; when it advances the peak is
// painted at the row being left and reset.
func (r *Renderer) column(tile *parallel.Tile, pos int, mags []float32, maxBin int, binsPerRow float64) {
	if binsPerRow <= 0 {
		return
	}
	last := min(maxBin, len(mags)-1)

	row := 0
	var peak float32
	for bin := 1; bin <= last; bin++ {
		if m := mags[bin]; m > peak {
			peak = m
		}

		current := int(math.RoundToEven(float64(bin)/binsPerRow)) - 1
		if current > row {
			pct := spectrum.Percentage(peak, r.scale)
			tile.Set(pos, row, r.palette.Color(pct))
			row = current
			peak = 0
		}
	}
}

func (r *Renderer) newTile(rng interval.Range, width, height int) *parallel.Tile {
	if r.tiles == nil {
		return parallel.NewTile(rng, width, height)
	}
	t := r.tiles.Get(width, height)
	t.Range = rng
	return t
}

// discard hands an unpublished tile back to the pool.
func (r *Renderer) discard(t *parallel.Tile) {
	if r.tiles != nil && t != nil {
		r.tiles.Put(t)
	}
}

// Recycle returns a tile that never reached readers to the renderer's pool.
func (r *Renderer) Recycle(t *parallel.Tile) {
	r.discard(t)
}

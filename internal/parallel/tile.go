// Package parallel provides the request queue, worker pool and tile storage
// behind spectile's background rendering.
//
// Requests are pushed onto a Queue and drained FIFO by a fixed WorkerPool.
// Every rendered byte range becomes a Tile: an RGBA pixel buffer, one column
// per horizontal pixel, immutable once it has been inserted into the index.
//
// Thread safety: Queue, WorkerPool and TilePool are safe for concurrent use.
// A Tile may be read concurrently once filled; it must not be written after.
package parallel

import (
	"image"

	"github.com/gogpu/spectile/internal/color"
	"github.com/gogpu/spectile/internal/interval"
)

// Tile is the rendered pixel buffer of one byte range.
type Tile struct {
	// Range is the byte span the tile was rendered from.
	Range interval.Range

	// Width is the number of columns.
	Width int

	// Height is the number of rows.
	Height int

	// Data contains the RGBA pixel data, row-major.
	// Length is Width * Height * 4 bytes.
	Data []byte
}

// NewTile allocates a tile filled with the opaque background color.
// Returns nil for non-positive dimensions.
func NewTile(r interval.Range, width, height int) *Tile {
	if width <= 0 || height <= 0 {
		return nil
	}
	t := &Tile{
		Range:  r,
		Width:  width,
		Height: height,
		Data:   make([]byte, width*height*4),
	}
	t.Reset()
	return t
}

// Reset paints every pixel with the opaque background color.
func (t *Tile) Reset() {
	for i := 0; i < len(t.Data); i += 4 {
		color.Black.Put(t.Data, i)
	}
}

// PixelOffset returns the byte offset into Data for the given pixel.
// Returns -1 if coordinates are out of bounds.
func (t *Tile) PixelOffset(px, py int) int {
	if px < 0 || px >= t.Width || py < 0 || py >= t.Height {
		return -1
	}
	return (py*t.Width + px) * 4
}

// Set writes c at (px, py). Out-of-bounds writes are ignored.
func (t *Tile) Set(px, py int, c color.ColorU8) {
	if off := t.PixelOffset(px, py); off >= 0 {
		c.Put(t.Data, off)
	}
}

// At returns the color at (px, py), or the zero color when out of bounds.
func (t *Tile) At(px, py int) color.ColorU8 {
	off := t.PixelOffset(px, py)
	if off < 0 {
		return color.ColorU8{}
	}
	return color.ColorU8{R: t.Data[off], G: t.Data[off+1], B: t.Data[off+2], A: t.Data[off+3]}
}

// ClearColumn paints column px with the background color.
func (t *Tile) ClearColumn(px int) {
	if px < 0 || px >= t.Width {
		return
	}
	for py := range t.Height {
		color.Black.Put(t.Data, (py*t.Width+px)*4)
	}
}

// Stride returns the row stride in bytes.
func (t *Tile) Stride() int {
	return t.Width * 4
}

// ByteSize returns the total size of the tile data in bytes.
func (t *Tile) ByteSize() int {
	return t.Width * t.Height * 4
}

// Image returns an image.RGBA view sharing the tile's pixels.
// Callers must not modify it.
func (t *Tile) Image() *image.RGBA {
	return &image.RGBA{
		Pix:    t.Data,
		Stride: t.Stride(),
		Rect:   image.Rect(0, 0, t.Width, t.Height),
	}
}

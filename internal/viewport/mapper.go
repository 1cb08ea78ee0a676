// Package viewport maps between byte positions of an audio stream and pixel
// columns of the on-screen spectrogram.
//
// All functions are pure. A Viewport value bundles one geometry snapshot so
// that every tile rendered for it agrees on where pixel columns fall.
package viewport

import "math"

// ZoomRatio returns the fraction of the stream visible at once.
// It is 1 (full view) when the total duration is unknown or the ratio
// would not be positive.
func ZoomRatio(zoomSeconds, totalSeconds float64) float64 {
	if totalSeconds <= 0 {
		return 1
	}
	r := zoomSeconds / totalSeconds
	if !(r > 0) {
		return 1
	}
	return r
}

// BytesPerPixel returns how many stream bytes one column spans at full view.
func BytesPerPixel(totalBytes int64, widthPx int) float64 {
	if widthPx <= 0 {
		return 0
	}
	return float64(totalBytes) / float64(widthPx)
}

// Distance returns the number of bytes visible at the given zoom ratio.
func Distance(totalBytes int64, zoom float64) int64 {
	return int64(math.Floor(float64(totalBytes) * zoom))
}

// ByteToPixel returns the column of b inside the viewport [start, end)
// drawn widthPx columns wide. The result is fractional and may fall outside
// [0, widthPx) for bytes outside the viewport.
func ByteToPixel(b, start, end int64, widthPx int) float64 {
	if end <= start {
		return 0
	}
	ratio := float64(b-start) / float64(end-start)
	return float64(widthPx) * ratio
}

// PixelToByte returns the byte under column x.
func PixelToByte(x float64, start int64, bytesPerPixel, zoom float64) int64 {
	return int64(math.Floor(float64(start) + x*bytesPerPixel*zoom))
}

// Step returns the number of bytes per visible column, rounded down.
func Step(distance int64, widthPx int) int64 {
	if widthPx <= 0 {
		return 0
	}
	return int64(math.Floor(float64(distance) / float64(widthPx)))
}

// Normalize snaps b down to a multiple of step so that tile boundaries line
// up with pixel columns. A non-positive step leaves b unchanged.
func Normalize(b, step int64) int64 {
	if step <= 0 {
		return b
	}
	m := b % step
	if m < 0 {
		m += step
	}
	return b - m
}

// StartForCaret returns the viewport start that keeps position at the caret
// fraction of the width. The start never goes below 0.
func StartForCaret(position int64, widthPx int, caret, bytesPerPixel, zoom float64) int64 {
	pixels := float64(widthPx) * caret
	bytes := int64(math.Round(pixels * bytesPerPixel * zoom))
	return max(0, position-bytes)
}

// Viewport is one geometry snapshot: the visible byte span and the pixel
// grid it is drawn onto.
type Viewport struct {
	// Start is the first visible byte.
	Start int64

	// Width and Height are the drawing area in pixels.
	Width  int
	Height int

	// TotalBytes is the length of the stream.
	TotalBytes int64

	// Zoom is the visible fraction of the stream, see ZoomRatio.
	Zoom float64
}

// Distance returns the number of visible bytes.
func (v Viewport) Distance() int64 {
	return Distance(v.TotalBytes, v.Zoom)
}

// End returns the first byte past the viewport.
func (v Viewport) End() int64 {
	return v.Start + v.Distance()
}

// BytesPerPixel returns the full-view bytes per column.
func (v Viewport) BytesPerPixel() float64 {
	return BytesPerPixel(v.TotalBytes, v.Width)
}

// ZoomedBytesPerPixel returns the bytes one column spans at the current zoom.
func (v Viewport) ZoomedBytesPerPixel() float64 {
	return v.BytesPerPixel() * v.Zoom
}

// Step returns the column-aligned snapping step.
func (v Viewport) Step() int64 {
	return Step(v.Distance(), v.Width)
}

// Normalize snaps b to the column grid.
func (v Viewport) Normalize(b int64) int64 {
	return Normalize(b, v.Step())
}

// ByteToPixel returns the column of b.
func (v Viewport) ByteToPixel(b int64) float64 {
	return ByteToPixel(b, v.Start, v.End(), v.Width)
}

// NormalizedByteToPixel returns the column of b with b and the viewport
// bounds snapped to the column grid, as used when placing tiles.
func (v Viewport) NormalizedByteToPixel(b int64) float64 {
	return ByteToPixel(v.Normalize(b), v.Normalize(v.Start), v.Normalize(v.End()), v.Width)
}

// PixelToByte returns the byte under column x.
func (v Viewport) PixelToByte(x float64) int64 {
	return PixelToByte(x, v.Start, v.BytesPerPixel(), v.Zoom)
}

// Valid reports whether the viewport can be drawn.
func (v Viewport) Valid() bool {
	return v.Width > 0 && v.Height > 0 && v.TotalBytes > 0 && v.Distance() > 0
}

package spectile

import (
	"github.com/gogpu/spectile/internal/cache"
	"github.com/gogpu/spectile/internal/interval"
	"github.com/gogpu/spectile/internal/parallel"
	"github.com/gogpu/spectile/internal/spectrum"
	"github.com/gogpu/spectile/internal/viewport"
)

// ByteRange is a half-open span [From, To) of stream bytes.
type ByteRange = interval.Range

// Tile is the rendered pixel buffer of one ByteRange. Tiles handed out by
// an Engine are immutable.
type Tile = parallel.Tile

// Viewport is a geometry snapshot: the visible byte span and its pixel grid.
type Viewport = viewport.Viewport

// CacheStats reports hit/miss statistics of the spectrum cache.
type CacheStats = cache.Stats

// TransformSize is the FFT window length used to sample spectra.
type TransformSize = spectrum.TransformSize

// Supported transform sizes.
const (
	FFT512  = spectrum.FFT512
	FFT1024 = spectrum.FFT1024
	FFT2048 = spectrum.FFT2048
	FFT4096 = spectrum.FFT4096
	FFT8192 = spectrum.FFT8192
)

// Sampler produces the magnitude spectrum at a byte position.
// Spectrum returns size/2 magnitudes.
type Sampler = spectrum.Sampler

// Stream is a Sampler over a finite audio stream.
type Stream = spectrum.Stream

// Opener opens a fresh Stream. The engine calls it once per worker and
// once for caller-side queries, and again after a failed open.
type Opener func() (Stream, error)

// FrequencyToBin converts a frequency to an FFT bin index for a window of
// length samples: min(round(length*hz/rate), length/2-1).
func FrequencyToBin(hz, length, sampleRate int) int {
	return spectrum.FrequencyToBin(hz, length, sampleRate)
}

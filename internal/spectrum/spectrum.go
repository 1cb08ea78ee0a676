// Package spectrum defines the frequency-sampling contract shared by the
// renderer, the speech heuristic and the audio sources.
package spectrum

import (
	"errors"
	"math"
)

// ErrClosed is returned by a Stream used after Close.
var ErrClosed = errors.New("spectrum: stream closed")

// TransformSize is the number of samples per FFT analysis window.
type TransformSize int

// Supported transform sizes.
const (
	FFT512  TransformSize = 512
	FFT1024 TransformSize = 1024
	FFT2048 TransformSize = 2048
	FFT4096 TransformSize = 4096
	FFT8192 TransformSize = 8192

	// DefaultTransformSize is used for any unsupported value.
	DefaultTransformSize = FFT4096
)

// Valid reports whether s is one of the supported sizes.
func (s TransformSize) Valid() bool {
	switch s {
	case FFT512, FFT1024, FFT2048, FFT4096, FFT8192:
		return true
	}
	return false
}

// OrDefault returns s if valid, DefaultTransformSize otherwise.
func (s TransformSize) OrDefault() TransformSize {
	if s.Valid() {
		return s
	}
	return DefaultTransformSize
}

// Bins returns the length of a magnitude spectrum: half the window.
func (s TransformSize) Bins() int {
	return int(s.OrDefault()) / 2
}

// BinLimit returns the highest usable bin index.
func (s TransformSize) BinLimit() int {
	return s.Bins() - 1
}

// FrequencyToBin converts a frequency to the FFT bin index for a window of
// length samples at sampleRate: round(length * hz / rate), capped at
// length/2 - 1. Rounding is half-to-even.
func FrequencyToBin(hz, length, sampleRate int) int {
	if sampleRate <= 0 || length <= 0 {
		return 0
	}
	bin := int(math.RoundToEven(float64(length) * float64(hz) / float64(sampleRate)))
	mid := length/2 - 1
	if bin > mid {
		return mid
	}
	if bin < 0 {
		return 0
	}
	return bin
}

// MaxBin returns the highest bin a renderer should read for the given size,
// frequency range and sample rate.
func MaxBin(size TransformSize, hz, sampleRate int) int {
	return min(size.BinLimit(), FrequencyToBin(hz, int(size.OrDefault()), sampleRate))
}

// Sampler produces the magnitude spectrum at a byte position.
//
// Spectrum returns size/2 magnitudes. Implementations must be safe to call
// from one goroutine at a time; the engine gives every worker its own
// Sampler.
type Sampler interface {
	Spectrum(pos int64, size TransformSize) ([]float32, error)
}

// Stream is a Sampler over a finite audio stream with a byte-position axis.
type Stream interface {
	Sampler

	// Length returns the stream length in bytes.
	Length() int64

	// SampleRate returns samples per second per channel.
	SampleRate() int

	// SecondsToBytes converts a duration to a byte offset.
	SecondsToBytes(seconds float64) int64

	// BytesToSeconds converts a byte offset to a duration.
	BytesToSeconds(b int64) float64

	// Close releases the stream.
	Close() error
}

// Percentage compresses a magnitude into [0,1]: min(1, sqrt(m) * scale).
// Negative magnitudes count as 0.
func Percentage(m float32, scale float64) float64 {
	if !(m > 0) {
		return 0
	}
	return math.Min(1, math.Sqrt(float64(m))*scale)
}

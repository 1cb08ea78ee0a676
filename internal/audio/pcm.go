// Package audio provides PCM-backed spectrum streams for spectile.
//
// A PCM holds decoded 16-bit interleaved audio. Its byte axis is the
// interleaved s16le representation, so byte positions are stable across
// channel layouts. Spectrum mixes channels to mono, applies a Hann window
// and returns FFT magnitudes normalized so a full-scale sine peaks near 0.5.
//
// Sources are WAV files (PCM16, parsed directly) or anything ffmpeg can
// decode.
package audio

import (
	"errors"
	"fmt"
	"math"
	"sync/atomic"

	"github.com/gogpu/spectile/internal/spectrum"
)

// bytesPerSample is the width of one s16le sample.
const bytesPerSample = 2

// ErrFormat is returned for an invalid sample rate or channel count.
var ErrFormat = errors.New("audio: invalid format")

// Format describes interleaved 16-bit PCM.
type Format struct {
	SampleRate int
	Channels   int
}

// FrameSize returns the number of bytes per interleaved frame.
func (f Format) FrameSize() int {
	return f.Channels * bytesPerSample
}

// Validate reports ErrFormat when the rate or channel count is not positive.
func (f Format) Validate() error {
	if f.SampleRate <= 0 || f.Channels <= 0 {
		return fmt.Errorf("%w: %d Hz, %d channels", ErrFormat, f.SampleRate, f.Channels)
	}
	return nil
}

// PCM is a decoded audio stream implementing spectrum.Stream.
//
// The decoded samples are shared between clones; analysis buffers are not.
// A PCM must be used by one goroutine at a time; use Clone to give each
// worker its own.
type PCM struct {
	format Format
	mono   []float64
	frames int64

	analyzer *analyzer
	closed   atomic.Bool
}

// NewPCM builds a stream from interleaved samples.
// A trailing partial frame is dropped.
func NewPCM(samples []int16, f Format) (*PCM, error) {
	if err := f.Validate(); err != nil {
		return nil, err
	}

	frames := len(samples) / f.Channels
	mono := make([]float64, frames)
	scale := 1 / (32768 * float64(f.Channels))
	for i := range frames {
		var sum float64
		for c := range f.Channels {
			sum += float64(samples[i*f.Channels+c])
		}
		mono[i] = sum * scale
	}

	return &PCM{
		format:   f,
		mono:     mono,
		frames:   int64(frames),
		analyzer: newAnalyzer(),
	}, nil
}

// Clone returns a stream sharing p's samples with its own analysis state.
func (p *PCM) Clone() *PCM {
	return &PCM{
		format:   p.format,
		mono:     p.mono,
		frames:   p.frames,
		analyzer: newAnalyzer(),
	}
}

// Format returns the stream format.
func (p *PCM) Format() Format {
	return p.format
}

// Length returns the stream length in bytes.
func (p *PCM) Length() int64 {
	return p.frames * int64(p.format.FrameSize())
}

// SampleRate returns samples per second per channel.
func (p *PCM) SampleRate() int {
	return p.format.SampleRate
}

// Duration returns the stream length in seconds.
func (p *PCM) Duration() float64 {
	return float64(p.frames) / float64(p.format.SampleRate)
}

// SecondsToBytes converts a duration to a frame-aligned byte offset,
// rounding to the nearest frame.
func (p *PCM) SecondsToBytes(seconds float64) int64 {
	frames := int64(math.Round(seconds * float64(p.format.SampleRate)))
	return frames * int64(p.format.FrameSize())
}

// BytesToSeconds converts a byte offset to a duration.
func (p *PCM) BytesToSeconds(b int64) float64 {
	return float64(b) / float64(p.format.FrameSize()) / float64(p.format.SampleRate)
}

// Spectrum returns size/2 magnitudes of the window starting at byte pos.
// Samples outside the stream read as silence.
func (p *PCM) Spectrum(pos int64, size spectrum.TransformSize) ([]float32, error) {
	if p.closed.Load() {
		return nil, spectrum.ErrClosed
	}
	size = size.OrDefault()
	start := floorDiv(pos, int64(p.format.FrameSize()))
	return p.analyzer.magnitudes(p.mono, start, int(size)), nil
}

// Close marks the stream closed. Shared samples stay valid for clones.
func (p *PCM) Close() error {
	p.closed.Store(true)
	return nil
}

func floorDiv(a, b int64) int64 {
	q := a / b
	if (a%b != 0) && ((a < 0) != (b < 0)) {
		q--
	}
	return q
}

var _ spectrum.Stream = (*PCM)(nil)

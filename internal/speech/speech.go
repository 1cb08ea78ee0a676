// Package speech locates speech boundaries near a stream position.
//
// Each short window is classified as speech when enough spectrum bins exceed
// a loudness threshold. From a query position the detector votes on the
// current state, then walks away from it in small time steps until the
// classification flips for several windows in a row.
package speech

import (
	"fmt"

	"github.com/gogpu/spectile/internal/spectrum"
)

// Defaults for Detector.
const (
	DefaultThreshold = 0.35
	DefaultMinBins   = 4
	DefaultIncrement = 0.01
	DefaultSteps     = 20
	DefaultRun       = 3
	DefaultScale     = 4
)

// Detector holds the heuristic's tuning. The zero value is not usable; start
// from NewDetector.
type Detector struct {
	// Size is the FFT window size used for classification.
	Size spectrum.TransformSize

	// Scale multiplies sqrt(magnitude) before thresholding.
	Scale float64

	// Threshold is the loudness a bin must exceed.
	Threshold float64

	// MinBins is the number of loud bins a window must exceed to be speech.
	MinBins int

	// Increment is the walk step in seconds.
	Increment float64

	// Steps is the number of windows examined per walk.
	Steps int

	// Run is the number of consecutive flipped windows that ends a walk.
	Run int
}

// NewDetector returns a detector with the default tuning.
func NewDetector() Detector {
	return Detector{
		Size:      spectrum.FFT4096,
		Scale:     DefaultScale,
		Threshold: DefaultThreshold,
		MinBins:   DefaultMinBins,
		Increment: DefaultIncrement,
		Steps:     DefaultSteps,
		Run:       DefaultRun,
	}
}

// HasSpeech reports whether more than MinBins bins of mags are loud.
func (d Detector) HasSpeech(mags []float32) bool {
	loud := 0
	for _, m := range mags {
		if spectrum.Percentage(m, d.Scale) > d.Threshold {
			loud++
			if loud > d.MinBins {
				return true
			}
		}
	}
	return false
}

// HasSpeech classifies mags with the default tuning.
func HasSpeech(mags []float32) bool {
	return NewDetector().HasSpeech(mags)
}

// speechAt samples s at pos and classifies the window.
func (d Detector) speechAt(s spectrum.Sampler, pos int64) (bool, error) {
	mags, err := s.Spectrum(pos, d.Size)
	if err != nil {
		return false, fmt.Errorf("speech: spectrum at %d: %w", pos, err)
	}
	return d.HasSpeech(mags), nil
}

// ClosestSilence returns the position nearest pos where speech starts or
// stops.
//
// Three windows at pos-inc, pos and pos+inc vote on whether pos is on speech.
// On speech the walk goes backwards looking for silence, otherwise forwards
// looking for speech. The walk ends at the first run of Run consecutive
// windows with the opposite classification and returns the position examined
// just before that run. When no run is found within Steps windows, or the
// walk would leave the stream, pos is returned unchanged.
func (d Detector) ClosestSilence(s spectrum.Stream, pos int64) (int64, error) {
	length := s.Length()
	if pos < 0 || pos > length {
		return pos, nil
	}

	inc := s.SecondsToBytes(d.Increment)
	if inc <= 0 {
		return pos, nil
	}

	votes := 0
	for _, p := range []int64{max(0, pos-inc), pos, min(length, pos+inc)} {
		on, err := d.speechAt(s, p)
		if err != nil {
			return pos, err
		}
		if on {
			votes++
		}
	}
	onSpeech := votes >= 2

	dir := int64(1)
	if onSpeech {
		dir = -1
	}

	last := pos
	run := 0
	for i := range d.Steps {
		cur := pos + dir*int64(i)*inc
		if cur < 0 || cur > length {
			break
		}

		on, err := d.speechAt(s, cur)
		if err != nil {
			return pos, err
		}

		if on != onSpeech {
			if run == 0 && i > 0 {
				last = cur - dir*inc
			}
			run++
			if run == d.Run {
				return last, nil
			}
			continue
		}
		run = 0
	}

	return pos, nil
}

// ClosestSilence runs the default detector.
func ClosestSilence(s spectrum.Stream, pos int64) (int64, error) {
	return NewDetector().ClosestSilence(s, pos)
}

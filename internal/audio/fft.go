package audio

import (
	"math/cmplx"

	"gonum.org/v1/gonum/dsp/fourier"
	"gonum.org/v1/gonum/dsp/window"
)

// plan holds the reusable FFT state for one window size.
type plan struct {
	fft    *fourier.FFT
	hann   []float64
	frame  []float64
	coeffs []complex128
}

func newPlan(n int) *plan {
	hann := make([]float64, n)
	for i := range hann {
		hann[i] = 1
	}
	window.Hann(hann)

	return &plan{
		fft:    fourier.NewFFT(n),
		hann:   hann,
		frame:  make([]float64, n),
		coeffs: make([]complex128, n/2+1),
	}
}

// analyzer computes windowed magnitude spectra. Not safe for concurrent use.
type analyzer struct {
	plans map[int]*plan
}

func newAnalyzer() *analyzer {
	return &analyzer{plans: make(map[int]*plan)}
}

// magnitudes returns n/2 normalized magnitudes of the n samples starting at
// frame start. Frames outside src are zero.
func (a *analyzer) magnitudes(src []float64, start int64, n int) []float32 {
	pl, ok := a.plans[n]
	if !ok {
		pl = newPlan(n)
		a.plans[n] = pl
	}

	total := int64(len(src))
	for i := range pl.frame {
		j := start + int64(i)
		if j < 0 || j >= total {
			pl.frame[i] = 0
			continue
		}
		pl.frame[i] = src[j] * pl.hann[i]
	}

	pl.coeffs = pl.fft.Coefficients(pl.coeffs, pl.frame)

	out := make([]float32, n/2)
	norm := 2 / float64(n)
	for k := range out {
		out[k] = float32(cmplx.Abs(pl.coeffs[k]) * norm)
	}
	return out
}

package spectile

import (
	"log/slog"
	"testing"

	"github.com/google/go-cmp/cmp"
)

func TestDefaultOptions(t *testing.T) {
	o := defaultOptions()
	o.sanitize()

	want := options{
		workers:     2,
		size:        FFT4096,
		frequencyHz: 2000,
		zoomSeconds: 15,
		width:       1024,
		height:      256,
		precision:   0,
		scale:       4,
	}
	if diff := cmp.Diff(want, o, cmp.AllowUnexported(options{})); diff != "" {
		t.Errorf("defaults mismatch (-want +got):\n%s", diff)
	}
}

func TestOptions_InvalidFallBack(t *testing.T) {
	o := defaultOptions()
	for _, opt := range []Option{
		WithWorkers(1),
		WithTransformSize(3000),
		WithFrequencyRange(-1),
		WithZoomSeconds(0),
		WithSize(0, 100),
		WithColorPrecision(9),
		WithScaleFactor(-2),
		WithSpectrumCache(-5),
	} {
		opt(&o)
	}
	o.sanitize()

	d := defaultOptions()
	if diff := cmp.Diff(d, o, cmp.AllowUnexported(options{})); diff != "" {
		t.Errorf("invalid values did not fall back (-want +got):\n%s", diff)
	}
}

func TestOptions_Apply(t *testing.T) {
	l := slog.Default()
	o := defaultOptions()
	for _, opt := range []Option{
		WithWorkers(6),
		WithTransformSize(FFT1024),
		WithFrequencyRange(8000),
		WithZoomSeconds(5),
		WithSize(800, 300),
		WithColorPrecision(2),
		WithScaleFactor(2.5),
		WithSpectrumCache(4096),
		WithLogger(l),
	} {
		opt(&o)
	}
	o.sanitize()

	want := options{
		workers:     6,
		size:        FFT1024,
		frequencyHz: 8000,
		zoomSeconds: 5,
		width:       800,
		height:      300,
		precision:   2,
		scale:       2.5,
		spectra:     4096,
		logger:      l,
	}
	if diff := cmp.Diff(want, o, cmp.AllowUnexported(options{}), cmp.Comparer(func(a, b *slog.Logger) bool { return a == b })); diff != "" {
		t.Errorf("options mismatch (-want +got):\n%s", diff)
	}
}

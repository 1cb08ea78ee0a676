package spectile

import (
	"log/slog"
	"time"

	"github.com/gogpu/spectile/internal/color"
	"github.com/gogpu/spectile/internal/parallel"
	"github.com/gogpu/spectile/internal/render"
)

// Defaults applied by NewEngine. Invalid option values fall back to these.
const (
	DefaultWorkers          = parallel.MinWorkers
	DefaultTransformSize    = FFT4096
	DefaultFrequencyHz      = 2000
	DefaultZoomSeconds      = 15.0
	DefaultWidth            = 1024
	DefaultHeight           = 256
	DefaultColorPrecision   = 0
	DefaultScaleFactor      = render.DefaultScaleFactor
	DefaultPrefetchInterval = 2 * time.Second
)

// Option configures an Engine during creation.
//
// Example:
//
//	e, err := spectile.NewEngine(src.Open,
//	    spectile.WithWorkers(4),
//	    spectile.WithSize(1920, 400),
//	    spectile.WithFrequencyRange(4000),
//	)
type Option func(*options)

// options holds the Engine configuration.
type options struct {
	workers     int
	size        TransformSize
	frequencyHz int
	zoomSeconds float64
	width       int
	height      int
	precision   int
	scale       float64
	spectra     int
	logger      *slog.Logger
}

// defaultOptions returns the default engine options.
func defaultOptions() options {
	return options{
		workers:     DefaultWorkers,
		size:        DefaultTransformSize,
		frequencyHz: DefaultFrequencyHz,
		zoomSeconds: DefaultZoomSeconds,
		width:       DefaultWidth,
		height:      DefaultHeight,
		precision:   DefaultColorPrecision,
		scale:       DefaultScaleFactor,
	}
}

// sanitize replaces invalid values with their defaults.
func (o *options) sanitize() {
	d := defaultOptions()
	if o.workers < parallel.MinWorkers {
		o.workers = d.workers
	}
	o.size = o.size.OrDefault()
	if o.frequencyHz <= 0 {
		o.frequencyHz = d.frequencyHz
	}
	if !(o.zoomSeconds > 0) {
		o.zoomSeconds = d.zoomSeconds
	}
	if o.width <= 0 || o.height <= 0 {
		o.width, o.height = d.width, d.height
	}
	if o.precision < 0 || o.precision > color.MaxPrecision {
		o.precision = d.precision
	}
	if !(o.scale > 0) {
		o.scale = d.scale
	}
	if o.spectra < 0 {
		o.spectra = 0
	}
}

// WithWorkers sets the number of render workers. Values below 2 are raised
// to 2.
func WithWorkers(n int) Option {
	return func(o *options) {
		o.workers = n
	}
}

// WithTransformSize sets the FFT window size. Unsupported sizes select 4096.
func WithTransformSize(size TransformSize) Option {
	return func(o *options) {
		o.size = size
	}
}

// WithFrequencyRange sets the highest displayed frequency in Hz.
func WithFrequencyRange(hz int) Option {
	return func(o *options) {
		o.frequencyHz = hz
	}
}

// WithZoomSeconds sets how many seconds of audio the viewport spans.
func WithZoomSeconds(seconds float64) Option {
	return func(o *options) {
		o.zoomSeconds = seconds
	}
}

// WithSize sets the viewport size in pixels.
func WithSize(width, height int) Option {
	return func(o *options) {
		o.width = width
		o.height = height
	}
}

// WithColorPrecision sets the palette hue step to 1/10^precision degrees.
// Precision ranges from 0 to 3.
func WithColorPrecision(precision int) Option {
	return func(o *options) {
		o.precision = precision
	}
}

// WithScaleFactor sets the multiplier applied to sqrt(magnitude) before it
// is clamped to [0, 1].
func WithScaleFactor(scale float64) Option {
	return func(o *options) {
		o.scale = scale
	}
}

// WithSpectrumCache enables a shared LRU of about n computed spectra.
// Zero disables the cache.
func WithSpectrumCache(n int) Option {
	return func(o *options) {
		o.spectra = n
	}
}

// WithLogger sets the logger for this engine, overriding the package-wide
// logger configured by SetLogger.
func WithLogger(l *slog.Logger) Option {
	return func(o *options) {
		o.logger = l
	}
}

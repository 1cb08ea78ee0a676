package color

import (
	"math"

	"github.com/gogpu/spectile/internal/cache"
)

// Palette sweep parameters.
const (
	// StartHue is the hue of the weakest magnitude: near-purple blue,
	// 70% of the way around the hue wheel. The sweep runs down to red.
	StartHue = 360 * 0.70

	// Saturation and Value are fixed for every palette entry.
	Saturation = 0.8
	Value      = 0.8

	// MaxPrecision bounds the sweep step at 1/1000 degree.
	MaxPrecision = 3
)

// Palette maps a normalized magnitude in [0,1] to a color.
//
// The table is built once from an HSV sweep and is read-only afterwards,
// so a single Palette is shared by every render worker.
type Palette struct {
	colors    []ColorU8
	precision int
}

// palettes keeps one table per precision.
var palettes = cache.New[int, *Palette](MaxPrecision + 1)

// PaletteFor returns the shared palette for the given precision, building it
// on first use. Precision outside [0, MaxPrecision] falls back to 0.
func PaletteFor(precision int) *Palette {
	if precision < 0 || precision > MaxPrecision {
		precision = 0
	}
	return palettes.GetOrCreate(precision, func() *Palette {
		return NewPalette(precision)
	})
}

// NewPalette builds a palette whose hue step is 1/10^precision degrees:
// floor(StartHue * 10^precision) entries from StartHue down towards 0.
// Precision outside [0, MaxPrecision] falls back to 0.
func NewPalette(precision int) *Palette {
	if precision < 0 || precision > MaxPrecision {
		precision = 0
	}

	stepsPerHue := math.Pow(10, float64(precision))
	steps := int(math.Floor(StartHue * stepsPerHue))
	step := 1 / stepsPerHue

	colors := make([]ColorU8, steps)
	hue := StartHue
	for i := range colors {
		colors[i] = HSV(hue, Saturation, Value)
		hue -= step
	}

	return &Palette{colors: colors, precision: precision}
}

// Len returns the number of entries.
func (p *Palette) Len() int {
	return len(p.colors)
}

// Precision returns the precision the palette was built with.
func (p *Palette) Precision() int {
	return p.precision
}

// At returns entry i. Out-of-range indices are clamped.
func (p *Palette) At(i int) ColorU8 {
	if i < 0 {
		i = 0
	}
	if i >= len(p.colors) {
		i = len(p.colors) - 1
	}
	return p.colors[i]
}

// Index maps a percentage in [0,1] to floor((Len-1) * percentage).
// Values outside [0,1] and NaN are clamped.
func (p *Palette) Index(percentage float64) int {
	if !(percentage > 0) {
		return 0
	}
	if percentage > 1 {
		percentage = 1
	}
	return int(math.Floor(float64(len(p.colors)-1) * percentage))
}

// Color returns the color for a percentage in [0,1].
func (p *Palette) Color(percentage float64) ColorU8 {
	return p.colors[p.Index(percentage)]
}

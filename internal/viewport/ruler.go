package viewport

import (
	"fmt"
	"math"
)

// markerSpacing is the preferred distance between two ruler ticks.
const markerSpacing = 50

// baseResolution is the finest tick interval in milliseconds.
const baseResolution int64 = 100

// resolutionSteps multiply baseResolution: 1s, 2s, 5s, 10s, 15s, 30s,
// 1m, 2m, 5m, 10m, 15m, 30m, 1h.
var resolutionSteps = [...]int64{10, 20, 50, 100, 150, 300, 600, 1200, 3000, 6000, 9000, 18000, 36000}

// Tick is one labelled ruler marker.
type Tick struct {
	// X is the pixel column of the marker.
	X int

	// Millis is the stream time at the marker.
	Millis int64

	// Label is the time formatted as mm:ss.
	Label string
}

// Resolution returns the tick interval in milliseconds for showing span
// milliseconds across widthPx columns: the finest step that keeps ticks
// roughly markerSpacing pixels apart.
func Resolution(spanMillis int64, widthPx int) int64 {
	if widthPx <= 0 {
		return baseResolution
	}
	preferred := float64(spanMillis) / (float64(widthPx) / markerSpacing)
	res := baseResolution
	for i := 0; i < len(resolutionSteps) && float64(res) < preferred; i++ {
		res = baseResolution * resolutionSteps[i]
	}
	return res
}

// Ruler returns the ticks for the time span [startMillis, endMillis) drawn
// widthPx columns wide.
func Ruler(startMillis, endMillis int64, widthPx int) []Tick {
	span := endMillis - startMillis
	if span <= 0 || widthPx <= 0 {
		return nil
	}

	res := Resolution(span, widthPx)
	scale := float64(widthPx) / float64(span)

	var ticks []Tick
	for ms := startMillis - startMillis%res; ms < endMillis; ms += res {
		ticks = append(ticks, Tick{
			X:      int(math.Floor(float64(ms-startMillis) * scale)),
			Millis: ms,
			Label:  FormatTime(ms),
		})
	}
	return ticks
}

// FormatTime formats milliseconds as zero-padded mm:ss.
func FormatTime(millis int64) string {
	secs := millis / 1000
	return fmt.Sprintf("%02d:%02d", secs/60, secs%60)
}

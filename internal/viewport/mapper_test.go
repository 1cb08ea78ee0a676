package viewport

import (
	"math"
	"testing"
)

func TestZoomRatio(t *testing.T) {
	tests := []struct {
		name        string
		zoom, total float64
		want        float64
	}{
		{"quarter", 15, 60, 0.25},
		{"unknown total", 15, 0, 1},
		{"negative total", 15, -3, 1},
		{"zero zoom", 0, 60, 1},
		{"negative zoom", -5, 60, 1},
		{"wider than stream", 120, 60, 2},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := ZoomRatio(tt.zoom, tt.total); got != tt.want {
				t.Errorf("ZoomRatio(%v, %v) = %v, want %v", tt.zoom, tt.total, got, tt.want)
			}
		})
	}
}

func TestNormalize(t *testing.T) {
	tests := []struct {
		b, step, want int64
	}{
		{1000, 100, 1000},
		{1099, 100, 1000},
		{1, 100, 0},
		{1234, 0, 1234},
		{1234, -4, 1234},
		{-5, 4, -8},
	}
	for _, tt := range tests {
		if got := Normalize(tt.b, tt.step); got != tt.want {
			t.Errorf("Normalize(%d, %d) = %d, want %d", tt.b, tt.step, got, tt.want)
		}
	}
}

func TestByteToPixel(t *testing.T) {
	if got := ByteToPixel(150, 100, 200, 1000); got != 500 {
		t.Errorf("ByteToPixel middle = %v, want 500", got)
	}
	if got := ByteToPixel(100, 100, 200, 1000); got != 0 {
		t.Errorf("ByteToPixel start = %v, want 0", got)
	}
	if got := ByteToPixel(50, 100, 200, 1000); got != -500 {
		t.Errorf("ByteToPixel before = %v, want -500", got)
	}
	if got := ByteToPixel(5, 100, 100, 1000); got != 0 {
		t.Errorf("ByteToPixel empty viewport = %v, want 0", got)
	}
}

func TestPixelToByte(t *testing.T) {
	// 1000 bytes per pixel at full view, half zoom -> 500 bytes per column.
	if got := PixelToByte(3, 10000, 1000, 0.5); got != 11500 {
		t.Errorf("PixelToByte = %d, want 11500", got)
	}
}

func TestStartForCaret(t *testing.T) {
	// 800 px, caret in the middle, 100 bytes per zoomed pixel.
	got := StartForCaret(100000, 800, 0.5, 200, 0.5)
	if got != 100000-40000 {
		t.Errorf("StartForCaret = %d, want %d", got, 100000-40000)
	}
	if got := StartForCaret(100, 800, 0.5, 200, 0.5); got != 0 {
		t.Errorf("StartForCaret near start = %d, want 0", got)
	}
}

func TestViewport_RoundTrip(t *testing.T) {
	views := []Viewport{
		{Start: 0, Width: 800, Height: 200, TotalBytes: 44100 * 4 * 60, Zoom: 0.25},
		{Start: 123457, Width: 1024, Height: 100, TotalBytes: 48000 * 4 * 600, Zoom: 15.0 / 600},
		{Start: 999, Width: 333, Height: 50, TotalBytes: 10_000_000, Zoom: 1},
	}
	for _, v := range views {
		for x := 0; x < v.Width; x++ {
			b := v.PixelToByte(float64(x))
			px := v.ByteToPixel(b)
			if math.Abs(px-float64(x)) > 1 {
				t.Fatalf("%+v: ByteToPixel(PixelToByte(%d)) = %v", v, x, px)
			}
		}
	}
}

func TestViewport_Geometry(t *testing.T) {
	v := Viewport{Start: 1000, Width: 100, Height: 50, TotalBytes: 100000, Zoom: 0.5}

	if v.Distance() != 50000 {
		t.Errorf("Distance() = %d, want 50000", v.Distance())
	}
	if v.End() != 51000 {
		t.Errorf("End() = %d, want 51000", v.End())
	}
	if v.BytesPerPixel() != 1000 {
		t.Errorf("BytesPerPixel() = %v, want 1000", v.BytesPerPixel())
	}
	if v.ZoomedBytesPerPixel() != 500 {
		t.Errorf("ZoomedBytesPerPixel() = %v, want 500", v.ZoomedBytesPerPixel())
	}
	if v.Step() != 500 {
		t.Errorf("Step() = %d, want 500", v.Step())
	}
	if got := v.Normalize(1499); got != 1000 {
		t.Errorf("Normalize(1499) = %d, want 1000", got)
	}
	if got := v.NormalizedByteToPixel(26000); got != 50 {
		t.Errorf("NormalizedByteToPixel(26000) = %v, want 50", got)
	}
	if !v.Valid() {
		t.Error("Valid() = false")
	}
	if (Viewport{Width: 10, Height: 10}).Valid() {
		t.Error("empty stream should not be valid")
	}
}

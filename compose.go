package spectile

import (
	"image"
	"image/color"
	"math"

	xdraw "golang.org/x/image/draw"
	"golang.org/x/image/font"
	"golang.org/x/image/font/basicfont"
	"golang.org/x/image/math/fixed"

	"github.com/gogpu/spectile/internal/viewport"
)

// Ruler layout in pixels.
const (
	rulerTickHeight = 8
	rulerLabelInset = 2
)

var (
	background = image.NewUniform(color.RGBA{A: 255})
	rulerInk   = image.NewUniform(color.RGBA{R: 255, G: 255, B: 255, A: 255})
)

// Compose draws view into dst: an opaque black background, every rendered
// tile at its pixel column, and a time ruler along the bottom edge.
//
// Ranges not yet rendered stay black; enqueue or prefetch them and compose
// again after an update. dst is cleared even when view is invalid.
func (e *Engine) Compose(view Viewport, dst *image.RGBA) error {
	b := dst.Bounds()
	xdraw.Draw(dst, b, background, image.Point{}, xdraw.Src)

	if e.closed.Load() {
		return ErrClosed
	}
	if !view.Valid() {
		return ErrInvalidViewport
	}

	for _, t := range e.TilesIntersecting(ByteRange{From: view.Start, To: view.End()}) {
		x := int(math.Floor(view.NormalizedByteToPixel(t.Range.From)))
		r := image.Rect(x, 0, x+t.Width, view.Height).Add(b.Min)
		src := t.Image()
		if t.Height == view.Height {
			xdraw.Draw(dst, r, src, image.Point{}, xdraw.Src)
			continue
		}
		// Tiles of another height only survive until the next Clear.
		xdraw.NearestNeighbor.Scale(dst, r, src, src.Bounds(), xdraw.Src, nil)
	}

	var startMs, endMs int64
	err := e.withControl(func(s Stream) error {
		startMs = int64(s.BytesToSeconds(view.Start) * 1000)
		endMs = int64(s.BytesToSeconds(view.End()) * 1000)
		return nil
	})
	if err != nil {
		return err
	}

	drawRuler(dst, viewport.Ruler(startMs, endMs, view.Width), min(view.Height, b.Dy()))
	return nil
}

// drawRuler draws one tick and one mm:ss label per marker, anchored to the
// bottom of an area height pixels tall.
func drawRuler(dst *image.RGBA, ticks []viewport.Tick, height int) {
	b := dst.Bounds()
	bottom := b.Min.Y + height
	face := basicfont.Face7x13

	d := font.Drawer{Dst: dst, Src: rulerInk, Face: face}
	for _, t := range ticks {
		if t.X < 0 {
			continue
		}
		x := b.Min.X + t.X
		line := image.Rect(x, bottom-rulerTickHeight, x+1, bottom)
		xdraw.Draw(dst, line, rulerInk, image.Point{}, xdraw.Src)

		d.Dot = fixed.P(x+rulerLabelInset, bottom-rulerTickHeight-rulerLabelInset)
		d.DrawString(t.Label)
	}
}

// Package color provides the color types and the magnitude palette for spectile.
package color

import stdcolor "image/color"

// ColorU8 represents an opaque-or-not color with uint8 components in [0,255].
type ColorU8 struct {
	R, G, B, A uint8
}

// Black is the opaque background written between rendered columns.
var Black = ColorU8{A: 255}

// RGBA converts c to the standard library color type.
func (c ColorU8) RGBA() stdcolor.RGBA {
	return stdcolor.RGBA{R: c.R, G: c.G, B: c.B, A: c.A}
}

// Put writes c into an RGBA byte buffer at offset i.
func (c ColorU8) Put(buf []byte, i int) {
	buf[i+0] = c.R
	buf[i+1] = c.G
	buf[i+2] = c.B
	buf[i+3] = c.A
}

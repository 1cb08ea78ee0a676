package color

import "math"

// HSV converts a hue in degrees plus saturation and value in [0,1] to an
// opaque color.
//
// The hue wheel is split into six sectors: hi = floor(hue/60) mod 6 with
// fractional part f. With p = v(1-s), q = v(1-fs) and t = v(1-(1-f)s) the
// sectors yield (v,t,p), (q,v,p), (p,v,t), (p,q,v), (t,p,v) and (v,p,q).
// Components are rounded half-to-even.
func HSV(hue, saturation, value float64) ColorU8 {
	sector := math.Floor(hue / 60)
	hi := int(sector) % 6
	if hi < 0 {
		hi += 6
	}
	f := hue/60 - sector

	value *= 255
	v := toByte(value)
	p := toByte(value * (1 - saturation))
	q := toByte(value * (1 - f*saturation))
	t := toByte(value * (1 - (1-f)*saturation))

	switch hi {
	case 0:
		return ColorU8{R: v, G: t, B: p, A: 255}
	case 1:
		return ColorU8{R: q, G: v, B: p, A: 255}
	case 2:
		return ColorU8{R: p, G: v, B: t, A: 255}
	case 3:
		return ColorU8{R: p, G: q, B: v, A: 255}
	case 4:
		return ColorU8{R: t, G: p, B: v, A: 255}
	default:
		return ColorU8{R: v, G: p, B: q, A: 255}
	}
}

// toByte rounds half-to-even and clamps to [0,255].
func toByte(v float64) uint8 {
	r := math.RoundToEven(v)
	if r <= 0 {
		return 0
	}
	if r >= 255 {
		return 255
	}
	return uint8(r)
}

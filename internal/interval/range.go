// Package interval implements the byte-range algebra behind spectile's tile cache.
//
// A Range is a half-open span [From, To) over the monotonic byte-position axis
// of an audio stream. An Index keeps a sorted, non-overlapping set of ranges,
// each either reserved (render in flight) or filled with a rendered value.
//
// Thread safety: Range is a value type. Index is safe for concurrent use.
package interval

import "fmt"

// Range is a half-open byte interval [From, To).
type Range struct {
	From int64
	To   int64
}

// Len returns the number of bytes covered by the range.
// Inverted ranges report a negative length.
func (r Range) Len() int64 {
	return r.To - r.From
}

// Empty reports whether the range covers no bytes.
func (r Range) Empty() bool {
	return r.To <= r.From
}

// Overlaps reports whether r and o share at least one byte.
func (r Range) Overlaps(o Range) bool {
	return r.From < o.To && o.From < r.To
}

// Contains reports whether pos lies inside the range.
func (r Range) Contains(pos int64) bool {
	return pos >= r.From && pos < r.To
}

// Intersect returns the overlap of r and o.
// The result is empty when the ranges do not overlap.
func (r Range) Intersect(o Range) Range {
	out := Range{From: max(r.From, o.From), To: min(r.To, o.To)}
	if out.To < out.From {
		out.To = out.From
	}
	return out
}

// String formats the range as [from,to).
func (r Range) String() string {
	return fmt.Sprintf("[%d,%d)", r.From, r.To)
}

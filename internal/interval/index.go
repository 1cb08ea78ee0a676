package interval

import (
	"slices"
	"sync"
)

// Entry is a single slot of an Index.
//
// An entry without a value is a reservation: its bytes are claimed by an
// in-flight render and no other caller will be handed them again.
type Entry[T any] struct {
	// ID is the stable key of the slot, unique for the lifetime of the Index.
	ID uint64

	// Range is the byte span owned by the slot.
	Range Range

	// Value is the rendered payload. Only meaningful when Ready is true.
	Value T

	// Ready reports whether Value has been attached by Fill.
	Ready bool
}

// Reservation is a sub-range handed out by Insert that the caller must render
// and then either Fill or Release.
type Reservation struct {
	ID    uint64
	Range Range
}

// Index is an ordered, non-overlapping collection of byte ranges.
//
// Invariant: after every mutation the entries are pairwise non-overlapping and
// sorted ascending by From. Existing coverage, including reservations, always
// wins over newly requested bytes, so no byte is ever scheduled twice.
//
// Thread safety: Index is safe for concurrent use. Mutations take the
// exclusive lock for the whole operation; reads take the shared lock.
type Index[T any] struct {
	mu      sync.RWMutex
	entries []Entry[T]
	nextID  uint64
}

// NewIndex creates an empty index.
func NewIndex[T any]() *Index[T] {
	return &Index[T]{}
}

// Insert reserves every part of req that is not yet covered and returns the
// reserved sub-ranges in ascending order.
//
// The walk is a single pass over the sorted entries:
//   - an entry entirely after the remainder ends the walk and the remainder
//     is reserved in front of it;
//   - an entry overlapping the remainder clips it: from the left when the
//     entry starts first, from the right when the entry ends last (which
//     terminates the remainder), or splits it in two when the entry sits
//     strictly inside;
//   - whatever is left after the last entry is reserved at the end.
//
// Zero-length pieces are dropped. Calling Insert again with a fully covered
// range returns nil.
func (x *Index[T]) Insert(req Range) []Reservation {
	if req.Empty() {
		return nil
	}

	x.mu.Lock()
	defer x.mu.Unlock()

	var out []Reservation
	from, to := req.From, req.To

	i := 0
	for ; i < len(x.entries) && from < to; i++ {
		e := x.entries[i].Range

		if e.From >= to {
			// Remainder lies entirely before e.
			out = append(out, x.reserveAt(i, Range{From: from, To: to}))
			from = to
			break
		}

		if !e.Overlaps(Range{From: from, To: to}) {
			// e lies entirely before the remainder.
			continue
		}

		startsBefore := e.From < from
		endsAfter := e.To > to

		if startsBefore {
			from = e.To
		}

		if endsAfter {
			if e.From > from {
				out = append(out, x.reserveAt(i, Range{From: from, To: e.From}))
			}
			from = to
			break
		}

		if !startsBefore {
			// e sits inside the remainder: reserve the gap in front of it and
			// continue with the tail.
			if e.From > from {
				out = append(out, x.reserveAt(i, Range{From: from, To: e.From}))
				i++
			}
			from = e.To
		}
	}

	if from < to {
		out = append(out, x.reserveAt(i, Range{From: from, To: to}))
	}

	return out
}

// reserveAt inserts a reservation before position i.
// Caller must hold x.mu.
func (x *Index[T]) reserveAt(i int, r Range) Reservation {
	x.nextID++
	id := x.nextID
	x.entries = slices.Insert(x.entries, i, Entry[T]{ID: id, Range: r})
	return Reservation{ID: id, Range: r}
}

// find returns the position of the entry with the given ID, or -1.
// Caller must hold x.mu.
func (x *Index[T]) find(id uint64) int {
	return slices.IndexFunc(x.entries, func(e Entry[T]) bool { return e.ID == id })
}

// Fill attaches v to the reservation with the given ID.
// Returns false if the reservation no longer exists, for example because the
// index was cleared while the value was being produced.
func (x *Index[T]) Fill(id uint64, v T) bool {
	x.mu.Lock()
	defer x.mu.Unlock()

	i := x.find(id)
	if i < 0 {
		return false
	}
	x.entries[i].Value = v
	x.entries[i].Ready = true
	return true
}

// Release drops the reservation with the given ID so its bytes can be
// requested again. Filled entries are not released.
// Returns true if a reservation was removed.
func (x *Index[T]) Release(id uint64) bool {
	x.mu.Lock()
	defer x.mu.Unlock()

	i := x.find(id)
	if i < 0 || x.entries[i].Ready {
		return false
	}
	x.entries = slices.Delete(x.entries, i, i+1)
	return true
}

// Intersecting returns the filled entries overlapping r, in ascending order.
// The returned slice is newly allocated.
func (x *Index[T]) Intersecting(r Range) []Entry[T] {
	if r.Empty() {
		return nil
	}

	x.mu.RLock()
	defer x.mu.RUnlock()

	// Entries are sorted and disjoint, so their ends are sorted too.
	start, _ := slices.BinarySearchFunc(x.entries, r.From, func(e Entry[T], pos int64) int {
		if e.Range.To <= pos {
			return -1
		}
		return 1
	})

	var out []Entry[T]
	for _, e := range x.entries[start:] {
		if e.Range.From >= r.To {
			break
		}
		if e.Ready {
			out = append(out, e)
		}
	}
	return out
}

// Entries returns a snapshot of all entries, reservations included.
func (x *Index[T]) Entries() []Entry[T] {
	x.mu.RLock()
	defer x.mu.RUnlock()
	return slices.Clone(x.entries)
}

// Ranges returns the ranges of all entries, reservations included.
func (x *Index[T]) Ranges() []Range {
	x.mu.RLock()
	defer x.mu.RUnlock()

	out := make([]Range, len(x.entries))
	for i, e := range x.entries {
		out[i] = e.Range
	}
	return out
}

// Len returns the number of entries, reservations included.
func (x *Index[T]) Len() int {
	x.mu.RLock()
	defer x.mu.RUnlock()
	return len(x.entries)
}

// Pending returns the number of reservations not yet filled.
func (x *Index[T]) Pending() int {
	_, pending := x.Counts()
	return pending
}

// Counts returns the number of filled entries and of pending reservations,
// taken from one consistent snapshot.
func (x *Index[T]) Counts() (filled, pending int) {
	x.mu.RLock()
	defer x.mu.RUnlock()

	for _, e := range x.entries {
		if e.Ready {
			filled++
		} else {
			pending++
		}
	}
	return filled, pending
}

// Clear removes every entry. Reservation IDs keep increasing across clears,
// so a Fill for a reservation made before Clear always fails.
func (x *Index[T]) Clear() {
	x.mu.Lock()
	defer x.mu.Unlock()
	x.entries = nil
}

package parallel

import "sync"

// Queue is an unbounded FIFO with a 1-slot wake signal.
//
// Push appends and does a non-blocking send on the wake channel, so any
// number of pushes collapse into at most one pending signal. Consumers that
// pop an item and find more remaining re-signal, which fans the work out to
// other waiting consumers. Duplicate items are legal.
//
// Thread safety: Queue is safe for concurrent use.
type Queue[T any] struct {
	mu    sync.Mutex
	items []T
	wake  chan struct{}
}

// NewQueue creates an empty queue.
func NewQueue[T any]() *Queue[T] {
	return &Queue[T]{wake: make(chan struct{}, 1)}
}

// Push appends v and signals one waiting consumer.
func (q *Queue[T]) Push(v T) {
	q.mu.Lock()
	q.items = append(q.items, v)
	q.mu.Unlock()
	q.signal()
}

// Pop removes and returns the oldest item.
// The boolean is false when the queue is empty. If items remain after the
// pop the wake signal is raised again.
func (q *Queue[T]) Pop() (T, bool) {
	q.mu.Lock()
	if len(q.items) == 0 {
		q.mu.Unlock()
		var zero T
		return zero, false
	}
	v := q.items[0]
	var zero T
	q.items[0] = zero
	q.items = q.items[1:]
	remaining := len(q.items)
	if remaining == 0 {
		// Drop the backing array so a long burst does not pin memory.
		q.items = nil
	}
	q.mu.Unlock()

	if remaining > 0 {
		q.signal()
	}
	return v, true
}

// Clear drops every queued item and returns how many were removed.
func (q *Queue[T]) Clear() int {
	q.mu.Lock()
	defer q.mu.Unlock()
	n := len(q.items)
	q.items = nil
	return n
}

// Len returns the number of queued items.
func (q *Queue[T]) Len() int {
	q.mu.Lock()
	defer q.mu.Unlock()
	return len(q.items)
}

// Wake returns the channel signaled when items are available.
// A receive does not guarantee that Pop will succeed.
func (q *Queue[T]) Wake() <-chan struct{} {
	return q.wake
}

func (q *Queue[T]) signal() {
	select {
	case q.wake <- struct{}{}:
	default:
	}
}

package parallel

import (
	"sync"
	"testing"
)

func TestQueue_FIFO(t *testing.T) {
	q := NewQueue[int]()
	for i := range 5 {
		q.Push(i)
	}
	for i := range 5 {
		v, ok := q.Pop()
		if !ok || v != i {
			t.Fatalf("Pop() = %d, %v, want %d, true", v, ok, i)
		}
	}
	if _, ok := q.Pop(); ok {
		t.Error("Pop() on empty queue returned ok")
	}
}

func TestQueue_DuplicatesAllowed(t *testing.T) {
	q := NewQueue[string]()
	q.Push("a")
	q.Push("a")
	if q.Len() != 2 {
		t.Errorf("Len() = %d, want 2", q.Len())
	}
}

func TestQueue_WakeCoalesces(t *testing.T) {
	q := NewQueue[int]()
	for i := range 10 {
		q.Push(i)
	}

	select {
	case <-q.Wake():
	default:
		t.Fatal("no wake signal after Push")
	}
	select {
	case <-q.Wake():
		t.Fatal("more than one pending wake signal")
	default:
	}
}

func TestQueue_PopResignals(t *testing.T) {
	q := NewQueue[int]()
	q.Push(1)
	q.Push(2)
	<-q.Wake()

	q.Pop()
	select {
	case <-q.Wake():
	default:
		t.Error("Pop with items remaining did not re-signal")
	}

	q.Pop()
	select {
	case <-q.Wake():
		t.Error("Pop of the last item signaled")
	default:
	}
}

func TestQueue_Clear(t *testing.T) {
	q := NewQueue[int]()
	q.Push(1)
	q.Push(2)
	if n := q.Clear(); n != 2 {
		t.Errorf("Clear() = %d, want 2", n)
	}
	if q.Len() != 0 {
		t.Errorf("Len() after Clear = %d, want 0", q.Len())
	}
}

func TestQueue_ConcurrentPushPop(t *testing.T) {
	q := NewQueue[int]()
	const producers, per = 4, 250

	var wg sync.WaitGroup
	for p := range producers {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for i := range per {
				q.Push(p*per + i)
			}
		}()
	}
	wg.Wait()

	seen := make(map[int]bool)
	for {
		v, ok := q.Pop()
		if !ok {
			break
		}
		if seen[v] {
			t.Fatalf("item %d popped twice", v)
		}
		seen[v] = true
	}
	if len(seen) != producers*per {
		t.Errorf("popped %d items, want %d", len(seen), producers*per)
	}
}

package parallel

import (
	"sync"
	"sync/atomic"
)

// MinWorkers is the smallest pool size. Smaller values are raised to it.
const MinWorkers = 2

// Handler processes one queued item. It runs on a pool goroutine.
type Handler[T any] func(worker int, item T)

// WorkerPool is a fixed set of goroutines draining a Queue.
//
// Each worker blocks until the queue's wake signal fires or the pool closes,
// pops one item and hands it to the handler. A wake that finds the queue
// already drained by another worker is not an error; the worker simply waits
// again. In-flight handlers are never interrupted: Close waits for them.
//
// Thread safety: WorkerPool is safe for concurrent use.
type WorkerPool[T any] struct {
	// workers is the number of worker goroutines.
	workers int

	// queue is the shared FIFO all workers drain.
	queue *Queue[T]

	// handle is called for every popped item.
	handle Handler[T]

	// done signals workers to stop.
	done chan struct{}

	// wg waits for all workers to finish.
	wg sync.WaitGroup

	// running indicates whether the pool is still draining.
	running atomic.Bool

	// processed counts handled items.
	processed atomic.Int64
}

// NewWorkerPool starts workers goroutines draining q with handle.
// Values below MinWorkers are raised to MinWorkers.
func NewWorkerPool[T any](workers int, q *Queue[T], handle Handler[T]) *WorkerPool[T] {
	if workers < MinWorkers {
		workers = MinWorkers
	}

	p := &WorkerPool[T]{
		workers: workers,
		queue:   q,
		handle:  handle,
		done:    make(chan struct{}),
	}
	p.running.Store(true)

	p.wg.Add(workers)
	for i := range workers {
		go p.worker(i)
	}

	return p
}

// worker is the main loop for each worker goroutine.
func (p *WorkerPool[T]) worker(id int) {
	defer p.wg.Done()

	for {
		select {
		case <-p.done:
			return
		case <-p.queue.Wake():
		}

		// Stop promptly if Close raced with the wake.
		select {
		case <-p.done:
			return
		default:
		}

		item, ok := p.queue.Pop()
		if !ok {
			// Lost the race to another worker.
			continue
		}
		p.handle(id, item)
		p.processed.Add(1)
	}
}

// Close stops the workers and waits for in-flight handlers to return.
// Items still queued are left in the queue.
// Close is safe to call multiple times.
func (p *WorkerPool[T]) Close() {
	if !p.running.CompareAndSwap(true, false) {
		return
	}
	close(p.done)
	p.wg.Wait()
}

// Workers returns the number of workers in the pool.
func (p *WorkerPool[T]) Workers() int {
	return p.workers
}

// IsRunning returns true until Close is called.
func (p *WorkerPool[T]) IsRunning() bool {
	return p.running.Load()
}

// Processed returns the number of items handled so far.
func (p *WorkerPool[T]) Processed() int64 {
	return p.processed.Load()
}

package spectile

import (
	"context"
	"errors"
	"time"
)

// Prefetch enqueues the visible range of view plus one viewport distance
// ahead, so that scrolling forward finds tiles already rendered.
func (e *Engine) Prefetch(view Viewport) error {
	if e.closed.Load() {
		return ErrClosed
	}
	if !view.Valid() {
		return ErrInvalidViewport
	}

	from := view.Normalize(view.Start)
	to := view.Normalize(view.End() + view.Distance())
	e.Enqueue(ByteRange{From: from, To: to})
	return nil
}

// RunPrefetch calls Prefetch with the viewport returned by viewFn now and
// then every interval until ctx is done or the engine is closed. A viewFn
// returning false skips that tick. A non-positive interval selects
// DefaultPrefetchInterval.
//
// RunPrefetch returns ctx.Err() or ErrClosed.
func (e *Engine) RunPrefetch(ctx context.Context, interval time.Duration, viewFn func() (Viewport, bool)) error {
	if interval <= 0 {
		interval = DefaultPrefetchInterval
	}

	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		if view, ok := viewFn(); ok {
			if err := e.Prefetch(view); err != nil && !errors.Is(err, ErrInvalidViewport) {
				return err
			}
		}

		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-e.done:
			return ErrClosed
		case <-ticker.C:
		}
	}
}

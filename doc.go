// Package spectile incrementally renders and caches spectrogram tiles of a
// long audio stream.
//
// # Overview
//
// A scrolling, zooming spectrogram view asks for byte ranges of the stream.
// spectile renders each byte exactly once per configuration: requests are
// diffed against a coverage index, only the uncovered sub-ranges are
// reserved and rendered by background workers, and the finished tiles are
// inserted back into the index where the view picks them up.
//
// # Quick Start
//
//	e, err := spectile.NewEngine(spectile.OpenFile("talk.wav"), spectile.WithSize(1280, 300))
//	if err != nil {
//	    return err
//	}
//	defer e.Close()
//
//	view, _ := e.Viewport(0)
//	e.Prefetch(view)
//	e.Wait(ctx)
//
//	img := image.NewRGBA(image.Rect(0, 0, view.Width, view.Height))
//	e.Compose(view, img)
//
// # Generations
//
// Clear, and every setting change (frequency range, transform size, size,
// zoom), start a new generation. Requests queued before it are dropped and
// renders finishing after it are discarded, so the index only ever holds
// tiles rendered with the current settings.
//
// # Notifications
//
// OnTileReady callbacks and the Updates channel fire after a request added
// tiles. They carry no payload: re-read TilesIntersecting for the current
// viewport, or call Compose again.
//
// # Architecture
//
// The package is organized into:
//   - Public API: Engine, Option, Opener, Stream, Sampler, Viewport
//   - internal/interval: byte ranges and the coverage index
//   - internal/parallel: request queue, worker pool, tiles
//   - internal/render: spectrum-to-pixels renderer
//   - internal/color: HSV palette
//   - internal/viewport: byte/pixel mapping and the time ruler
//   - internal/audio: PCM streams, FFT, spectrum cache
//   - internal/speech: speech boundary detection
package spectile

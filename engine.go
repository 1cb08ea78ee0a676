package spectile

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"sync/atomic"
	"time"

	"github.com/gogpu/spectile/internal/audio"
	"github.com/gogpu/spectile/internal/color"
	"github.com/gogpu/spectile/internal/interval"
	"github.com/gogpu/spectile/internal/parallel"
	"github.com/gogpu/spectile/internal/render"
	"github.com/gogpu/spectile/internal/speech"
	"github.com/gogpu/spectile/internal/viewport"
)

// request is one queued range together with the generation it was queued in.
type request struct {
	Range ByteRange
	gen   uint64
}

// settings is the display state every tile of one generation is rendered
// with. Changing any field starts a new generation.
type settings struct {
	width       int
	height      int
	zoomSeconds float64
	size        TransformSize
	frequencyHz int
}

// Engine incrementally renders and caches spectrogram tiles of one stream.
//
// Requested byte ranges are queued and drained by a fixed pool of workers.
// Each worker diffs its request against the coverage index, reserves only
// the bytes nobody has rendered or is rendering, renders them and fills the
// reservations with the resulting tiles. Readers see filled tiles only.
//
// Clear and every setting change start a new generation: queued requests
// are dropped, the index is emptied, and renders still in flight from the
// old generation are discarded when they finish.
//
// Thread safety: Engine is safe for concurrent use.
type Engine struct {
	open Opener
	opts options

	index    *interval.Index[*Tile]
	queue    *parallel.Queue[request]
	pool     *parallel.WorkerPool[request]
	tiles    *parallel.TilePool
	renderer *render.Renderer
	spectra  *audio.SpectrumCache

	// mu guards gen and geo. Workers hold the read lock across a generation
	// check and the index mutation that depends on it, so a render from an
	// old generation can never land in the index after Clear.
	mu  sync.RWMutex
	gen uint64
	geo settings

	// streams and samplers are indexed by worker and only touched by that
	// worker's goroutine.
	streams  []Stream
	samplers []Sampler

	controlMu sync.Mutex
	control   Stream

	readyMu sync.RWMutex
	onReady []func()
	updates chan struct{}

	outstanding atomic.Int64
	rendered    atomic.Int64
	failed      atomic.Int64
	empty       atomic.Int64
	stale       atomic.Int64

	done   chan struct{}
	closed atomic.Bool
}

// NewEngine creates an engine over the streams produced by open and starts
// its workers. Streams are opened lazily on first use.
func NewEngine(open Opener, opts ...Option) (*Engine, error) {
	if open == nil {
		return nil, ErrNilOpener
	}

	o := defaultOptions()
	for _, opt := range opts {
		opt(&o)
	}
	o.sanitize()

	tiles := parallel.NewTilePool()
	e := &Engine{
		open:     open,
		opts:     o,
		index:    interval.NewIndex[*Tile](),
		queue:    parallel.NewQueue[request](),
		tiles:    tiles,
		renderer: render.New(color.PaletteFor(o.precision), o.scale, tiles),
		geo: settings{
			width:       o.width,
			height:      o.height,
			zoomSeconds: o.zoomSeconds,
			size:        o.size,
			frequencyHz: o.frequencyHz,
		},
		streams:  make([]Stream, o.workers),
		samplers: make([]Sampler, o.workers),
		updates:  make(chan struct{}, 1),
		done:     make(chan struct{}),
	}
	if o.spectra > 0 {
		e.spectra = audio.NewSpectrumCache(o.spectra)
	}

	e.pool = parallel.NewWorkerPool(o.workers, e.queue, e.handle)

	e.logger().Info("spectile: engine started",
		"workers", o.workers,
		"transform", int(o.size),
		"frequency_hz", o.frequencyHz,
		"zoom_s", o.zoomSeconds)
	return e, nil
}

// Enqueue requests that r be rendered. It never blocks. Overlapping and
// duplicate requests are harmless: only uncovered bytes are rendered.
func (e *Engine) Enqueue(r ByteRange) {
	if e.closed.Load() || r.Empty() {
		return
	}
	e.mu.RLock()
	gen := e.gen
	e.mu.RUnlock()

	e.outstanding.Add(1)
	e.queue.Push(request{Range: r, gen: gen})
}

// Clear drops all queued requests and cached tiles and starts a new
// generation. Callers re-enqueue the current viewport afterwards.
func (e *Engine) Clear() {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.clearLocked()
}

// clearLocked bumps the generation and empties queue and index.
// Caller must hold e.mu exclusively.
func (e *Engine) clearLocked() {
	e.gen++
	dropped := e.queue.Clear()
	e.outstanding.Add(-int64(dropped))
	e.index.Clear()
	e.logger().Debug("spectile: cleared", "generation", e.gen, "dropped", dropped)
}

// OnTileReady registers fn to be called after a request added tiles.
// fn runs on a worker goroutine, possibly concurrently with itself, and
// carries no payload: re-read the tiles of the current viewport.
func (e *Engine) OnTileReady(fn func()) {
	if fn == nil {
		return
	}
	e.readyMu.Lock()
	defer e.readyMu.Unlock()
	e.onReady = append(e.onReady[:len(e.onReady):len(e.onReady)], fn)
}

// Updates returns a channel that receives a value after tiles were added.
// Notifications coalesce: one pending value stands for any number of
// additions.
func (e *Engine) Updates() <-chan struct{} {
	return e.updates
}

func (e *Engine) notify() {
	e.readyMu.RLock()
	fns := e.onReady
	e.readyMu.RUnlock()

	for _, fn := range fns {
		fn()
	}
	select {
	case e.updates <- struct{}{}:
	default:
	}
}

// SetFrequencyRange sets the highest displayed frequency and clears.
// Non-positive values select DefaultFrequencyHz.
func (e *Engine) SetFrequencyRange(hz int) {
	if hz <= 0 {
		hz = DefaultFrequencyHz
	}
	e.update(func(g *settings) { g.frequencyHz = hz })
}

// SetTransformSize sets the FFT window size and clears.
// Unsupported sizes select 4096.
func (e *Engine) SetTransformSize(size TransformSize) {
	size = size.OrDefault()
	e.update(func(g *settings) { g.size = size })
}

// Resize sets the viewport size in pixels and clears.
// Non-positive sizes are ignored.
func (e *Engine) Resize(width, height int) {
	if width <= 0 || height <= 0 {
		return
	}
	e.update(func(g *settings) { g.width, g.height = width, height })
}

// SetZoom sets how many seconds the viewport spans and clears.
// Non-positive values select DefaultZoomSeconds.
func (e *Engine) SetZoom(seconds float64) {
	if !(seconds > 0) {
		seconds = DefaultZoomSeconds
	}
	e.update(func(g *settings) { g.zoomSeconds = seconds })
}

// update applies fn to the settings and clears when anything changed.
func (e *Engine) update(fn func(*settings)) {
	e.mu.Lock()
	defer e.mu.Unlock()

	next := e.geo
	fn(&next)
	if next == e.geo {
		return
	}
	e.geo = next
	e.clearLocked()
}

// settings returns the current settings and generation.
func (e *Engine) settings() (settings, uint64) {
	e.mu.RLock()
	defer e.mu.RUnlock()
	return e.geo, e.gen
}

// TilesIntersecting returns the rendered tiles overlapping r, ordered by
// position. Ranges still being rendered are not included.
func (e *Engine) TilesIntersecting(r ByteRange) []*Tile {
	entries := e.index.Intersecting(r)
	if len(entries) == 0 {
		return nil
	}
	out := make([]*Tile, len(entries))
	for i, en := range entries {
		out[i] = en.Value
	}
	return out
}

// Coverage returns the byte ranges currently rendered or reserved.
func (e *Engine) Coverage() []ByteRange {
	return e.index.Ranges()
}

// Length returns the stream length in bytes.
func (e *Engine) Length() (int64, error) {
	var n int64
	err := e.withControl(func(s Stream) error {
		n = s.Length()
		return nil
	})
	return n, err
}

// StreamInfo describes the open stream.
type StreamInfo struct {
	Length     int64
	SampleRate int
	Seconds    float64
}

// Info returns the length, sample rate and duration of the stream.
func (e *Engine) Info() (StreamInfo, error) {
	var info StreamInfo
	err := e.withControl(func(s Stream) error {
		info = StreamInfo{
			Length:     s.Length(),
			SampleRate: s.SampleRate(),
			Seconds:    s.BytesToSeconds(s.Length()),
		}
		return nil
	})
	return info, err
}

// SecondsToBytes converts a time offset into a byte position of the stream.
func (e *Engine) SecondsToBytes(seconds float64) (int64, error) {
	var b int64
	err := e.withControl(func(s Stream) error {
		b = s.SecondsToBytes(seconds)
		return nil
	})
	return b, err
}

// BytesToSeconds converts a byte position into a time offset.
func (e *Engine) BytesToSeconds(b int64) (float64, error) {
	var sec float64
	err := e.withControl(func(s Stream) error {
		sec = s.BytesToSeconds(b)
		return nil
	})
	return sec, err
}

// Viewport returns the geometry snapshot of the viewport starting at start.
// start is snapped down to the column grid.
func (e *Engine) Viewport(start int64) (Viewport, error) {
	geo, _ := e.settings()
	var v Viewport
	err := e.withControl(func(s Stream) error {
		v = viewFor(geo, s, 0)
		v.Start = v.Normalize(max(0, start))
		return nil
	})
	return v, err
}

// FollowViewport returns the viewport that shows position at the caret
// fraction of its width, as used while following playback.
func (e *Engine) FollowViewport(position int64, caret float64) (Viewport, error) {
	geo, _ := e.settings()
	var v Viewport
	err := e.withControl(func(s Stream) error {
		v = viewFor(geo, s, 0)
		start := viewport.StartForCaret(position, v.Width, caret, v.BytesPerPixel(), v.Zoom)
		v.Start = v.Normalize(start)
		return nil
	})
	return v, err
}

// ClosestSilence returns the position near pos where speech starts or stops.
func (e *Engine) ClosestSilence(pos int64) (int64, error) {
	geo, _ := e.settings()
	d := speech.NewDetector()
	d.Size = geo.size
	d.Scale = e.opts.scale

	var out int64
	err := e.withControl(func(s Stream) error {
		var err error
		out, err = d.ClosestSilence(s, pos)
		return err
	})
	return out, err
}

// Wait blocks until every enqueued request has been handled or dropped, or
// ctx is done.
func (e *Engine) Wait(ctx context.Context) error {
	ticker := time.NewTicker(5 * time.Millisecond)
	defer ticker.Stop()

	for e.outstanding.Load() > 0 {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-e.done:
			return ErrClosed
		case <-ticker.C:
		}
	}
	return nil
}

// Stats is a point-in-time summary of engine state.
type Stats struct {
	// Tiles is the number of rendered tiles in the index.
	Tiles int

	// Pending is the number of reserved ranges still rendering.
	Pending int

	// Queued is the number of requests waiting for a worker.
	Queued int

	// Workers is the size of the worker pool.
	Workers int

	// Generation increases with every Clear.
	Generation uint64

	// Rendered counts tiles added to the index.
	Rendered int64

	// Failed counts ranges whose render returned an error.
	Failed int64

	// Empty counts ranges narrower than one pixel column.
	Empty int64

	// Stale counts renders discarded because a Clear overtook them.
	Stale int64

	// Spectra reports the spectrum cache; zero when disabled.
	Spectra CacheStats
}

// Stats returns the current engine statistics.
func (e *Engine) Stats() Stats {
	_, gen := e.settings()
	tiles, pending := e.index.Counts()
	st := Stats{
		Tiles:      tiles,
		Pending:    pending,
		Queued:     e.queue.Len(),
		Workers:    e.pool.Workers(),
		Generation: gen,
		Rendered:   e.rendered.Load(),
		Failed:     e.failed.Load(),
		Empty:      e.empty.Load(),
		Stale:      e.stale.Load(),
	}
	if e.spectra != nil {
		st.Spectra = e.spectra.Stats()
	}
	return st
}

// Close stops the workers, waits for in-flight renders and closes every
// opened stream. Close is safe to call multiple times.
func (e *Engine) Close() error {
	if !e.closed.CompareAndSwap(false, true) {
		return nil
	}
	close(e.done)
	e.pool.Close()

	var errs []error
	for i, s := range e.streams {
		if s != nil {
			errs = append(errs, s.Close())
			e.streams[i] = nil
		}
	}

	e.controlMu.Lock()
	if e.control != nil {
		errs = append(errs, e.control.Close())
		e.control = nil
	}
	e.controlMu.Unlock()

	e.logger().Info("spectile: engine stopped", "rendered", e.rendered.Load(), "failed", e.failed.Load())
	return errors.Join(errs...)
}

// logger returns the engine's own logger, or the package logger current at
// the time of the call.
func (e *Engine) logger() *slog.Logger {
	if e.opts.logger != nil {
		return e.opts.logger
	}
	return Logger()
}

// withControl runs fn with the caller-side stream, opening it on first use.
func (e *Engine) withControl(fn func(Stream) error) error {
	if e.closed.Load() {
		return ErrClosed
	}

	e.controlMu.Lock()
	defer e.controlMu.Unlock()

	if e.control == nil {
		s, err := e.openStream()
		if err != nil {
			return err
		}
		e.control = s
	}
	return fn(e.control)
}

func (e *Engine) openStream() (Stream, error) {
	s, err := e.open()
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrOpenStream, err)
	}
	if s == nil {
		return nil, fmt.Errorf("%w: opener returned nil stream", ErrOpenStream)
	}
	return s, nil
}

// viewFor builds the viewport for the given settings over s.
func viewFor(geo settings, s Stream, start int64) Viewport {
	length := s.Length()
	return Viewport{
		Start:      start,
		Width:      geo.width,
		Height:     geo.height,
		TotalBytes: length,
		Zoom:       viewport.ZoomRatio(geo.zoomSeconds, s.BytesToSeconds(length)),
	}
}

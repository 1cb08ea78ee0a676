package spectile

import (
	"github.com/gogpu/spectile/internal/interval"
	"github.com/gogpu/spectile/internal/render"
)

// handle processes one request on worker goroutine worker.
func (e *Engine) handle(worker int, req request) {
	defer e.outstanding.Add(-1)

	geo, gen := e.settings()
	if gen != req.gen {
		e.dropStale(req)
		return
	}

	s, sampler, err := e.workerStream(worker)
	if err != nil {
		// Retried on the worker's next request.
		e.logger().Warn("spectile: stream unavailable", "worker", worker, "range", req.Range, "err", err)
		return
	}

	r := req.Range.Intersect(ByteRange{From: 0, To: s.Length()})
	if r.Empty() {
		return
	}

	rg := render.Geometry{
		Height:        geo.height,
		BytesPerPixel: viewFor(geo, s, 0).ZoomedBytesPerPixel(),
		Size:          geo.size,
		FrequencyHz:   geo.frequencyHz,
		SampleRate:    s.SampleRate(),
	}

	e.mu.RLock()
	if e.gen != req.gen {
		e.mu.RUnlock()
		e.dropStale(req)
		return
	}
	reserved := e.index.Insert(r)
	e.mu.RUnlock()

	if len(reserved) == 0 {
		return
	}
	e.logger().Debug("spectile: reserved", "worker", worker, "request", r, "ranges", len(reserved))

	added := false
	for _, res := range reserved {
		if e.renderReservation(sampler, res, rg, req.gen) {
			added = true
		}
	}
	if added {
		e.notify()
	}
}

// renderReservation renders one reserved range and fills it.
// Returns true if a tile was added to the index.
func (e *Engine) renderReservation(s Sampler, res interval.Reservation, g render.Geometry, gen uint64) bool {
	tile, err := e.renderer.Render(s, res.Range, g)
	if err != nil {
		e.index.Release(res.ID)
		e.failed.Add(1)
		e.logger().Warn("spectile: render failed", "err", &RenderError{Range: res.Range, Err: err})
		return false
	}
	if tile == nil {
		e.index.Release(res.ID)
		e.empty.Add(1)
		e.logger().Debug("spectile: range narrower than a column", "range", res.Range)
		return false
	}

	e.mu.RLock()
	filled := e.gen == gen && e.index.Fill(res.ID, tile)
	e.mu.RUnlock()

	if !filled {
		e.renderer.Recycle(tile)
		e.stale.Add(1)
		e.logger().Debug("spectile: dropped stale tile", "range", res.Range, "generation", gen)
		return false
	}
	e.rendered.Add(1)
	return true
}

func (e *Engine) dropStale(req request) {
	e.stale.Add(1)
	e.logger().Debug("spectile: dropped stale request", "range", req.Range, "generation", req.gen)
}

// workerStream returns worker's stream and sampler, opening them on first
// use. A failed open is not remembered.
func (e *Engine) workerStream(worker int) (Stream, Sampler, error) {
	if s := e.streams[worker]; s != nil {
		return s, e.samplers[worker], nil
	}

	s, err := e.openStream()
	if err != nil {
		return nil, nil, err
	}

	var sampler Sampler = s
	if e.spectra != nil {
		sampler = e.spectra.Wrap(s)
	}
	e.streams[worker] = s
	e.samplers[worker] = sampler
	return s, sampler, nil
}

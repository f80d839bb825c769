package render

import (
	"math"
	"sync"
)

// progressReporter forwards progress to a callback, clamped to [0,1] and
// never decreasing. After close it drops every update.
type progressReporter struct {
	mu       sync.Mutex
	fn       func(float64)
	last     float64
	reported bool
	closed   bool
}

func newProgressReporter(fn func(float64)) *progressReporter {
	return &progressReporter{fn: fn}
}

func (r *progressReporter) report(v float64) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.closed {
		return
	}
	v = clamp01(v)
	if r.reported && v <= r.last {
		return
	}
	r.last = v
	r.reported = true
	if r.fn != nil {
		r.fn(v)
	}
}

// complete reports exactly 1.0 and closes the reporter.
func (r *progressReporter) complete() {
	r.report(1)
	r.close()
}

func (r *progressReporter) close() {
	r.mu.Lock()
	r.closed = true
	r.mu.Unlock()
}

func (r *progressReporter) value() float64 {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.last
}

func clamp01(v float64) float64 {
	switch {
	case math.IsNaN(v), v < 0:
		return 0
	case v > 1:
		return 1
	default:
		return v
	}
}

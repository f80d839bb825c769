package render

import (
	"sort"
	"sync"
)

// Resource kinds tracked per job.
const (
	ResourceFrameTarget = "frame_target"
	ResourcePlayback    = "playback"
	ResourceSink        = "sink"
	ResourceAudioRoute  = "audio_route"
)

// Resources counts open render handles by kind.
type Resources struct {
	mu   sync.Mutex
	open map[string]int
}

// NewResources returns an empty tracker.
func NewResources() *Resources {
	return &Resources{open: make(map[string]int)}
}

// Acquire records one open handle of kind and returns its release func.
// Release is idempotent.
func (r *Resources) Acquire(kind string) func() {
	r.mu.Lock()
	r.open[kind]++
	r.mu.Unlock()
	var once sync.Once
	return func() {
		once.Do(func() {
			r.mu.Lock()
			defer r.mu.Unlock()
			r.open[kind]--
			if r.open[kind] <= 0 {
				delete(r.open, kind)
			}
		})
	}
}

// Open returns the number of handles currently held.
func (r *Resources) Open() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	total := 0
	for _, n := range r.open {
		total += n
	}
	return total
}

// Held lists the kinds with open handles, sorted.
func (r *Resources) Held() []string {
	r.mu.Lock()
	defer r.mu.Unlock()
	kinds := make([]string, 0, len(r.open))
	for k := range r.open {
		kinds = append(kinds, k)
	}
	sort.Strings(kinds)
	return kinds
}

package captions

import "sort"

// FindActive returns the first caption in stored order whose interval
// contains t (both ends inclusive). At a shared boundary the earlier caption
// wins.
func FindActive(t float64, caps []Caption) (Caption, bool) {
	for _, c := range caps {
		if c.Contains(t) {
			return c, true
		}
	}
	return Caption{}, false
}

// Timeline is an immutable, indexed copy of a caption set. Active answers the
// same query as FindActive in O(log n) when the captions are start-sorted and
// falls back to a linear scan otherwise.
type Timeline struct {
	caps   []Caption
	maxEnd []float64
	sorted bool
}

// NewTimeline copies caps and builds the lookup index.
func NewTimeline(caps []Caption) Timeline {
	tl := Timeline{caps: clone(caps), sorted: true}
	tl.maxEnd = make([]float64, len(tl.caps))
	for i, c := range tl.caps {
		tl.maxEnd[i] = c.End
		if i > 0 {
			if tl.maxEnd[i-1] > tl.maxEnd[i] {
				tl.maxEnd[i] = tl.maxEnd[i-1]
			}
			if c.Start < tl.caps[i-1].Start {
				tl.sorted = false
			}
		}
	}
	return tl
}

// Len returns the number of captions in the timeline.
func (tl Timeline) Len() int { return len(tl.caps) }

// Captions returns a copy of the timeline's captions.
func (tl Timeline) Captions() []Caption { return clone(tl.caps) }

// Active returns the caption displayed at t.
//
// Candidates are the prefix with Start <= t. The first candidate containing t
// is the first index i in that prefix with End >= t, and since every earlier
// caption in the prefix also has Start <= t, it is the first i whose running
// maximum End reaches t.
func (tl Timeline) Active(t float64) (Caption, bool) {
	if !tl.sorted {
		return FindActive(t, tl.caps)
	}
	k := sort.Search(len(tl.caps), func(i int) bool { return tl.caps[i].Start > t })
	if k == 0 {
		return Caption{}, false
	}
	i := sort.Search(k, func(i int) bool { return tl.maxEnd[i] >= t })
	if i >= k {
		return Caption{}, false
	}
	return tl.caps[i], true
}

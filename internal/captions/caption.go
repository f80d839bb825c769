package captions

import (
	"fmt"
	"math"
	"sort"
	"strings"
)

// Caption is one timed unit of on-screen text. Times are seconds relative to
// the start of the source media.
type Caption struct {
	ID    string  `json:"id"`
	Start float64 `json:"start"`
	End   float64 `json:"end"`
	Text  string  `json:"text"`
}

// Duration returns the caption's display length in seconds.
func (c Caption) Duration() float64 {
	return c.End - c.Start
}

// Contains reports whether t falls inside the caption, both ends inclusive.
func (c Caption) Contains(t float64) bool {
	return c.Start <= t && t <= c.End
}

// Segment is a raw transcription result before it is admitted to the store.
type Segment struct {
	Start float64
	End   float64
	Text  string
}

// IngestReport summarises what Normalize dropped or adjusted.
type IngestReport struct {
	Accepted int
	Dropped  int
	Clamped  int
}

// Normalize validates raw segments and converts them into start-ordered
// captions with ids caption-0, caption-1, ... assigned after sorting.
// Non-finite times and empty intervals (End <= Start) are dropped; a negative
// start is clamped to zero. The sort is stable, so segments sharing a start
// keep their backend order.
func Normalize(segments []Segment) ([]Caption, IngestReport) {
	var report IngestReport
	kept := make([]Segment, 0, len(segments))
	for _, seg := range segments {
		if !finite(seg.Start) || !finite(seg.End) {
			report.Dropped++
			continue
		}
		if seg.Start < 0 {
			seg.Start = 0
			report.Clamped++
		}
		if seg.End <= seg.Start {
			report.Dropped++
			continue
		}
		seg.Text = strings.TrimSpace(seg.Text)
		kept = append(kept, seg)
	}
	sort.SliceStable(kept, func(i, j int) bool { return kept[i].Start < kept[j].Start })

	out := make([]Caption, len(kept))
	for i, seg := range kept {
		out[i] = Caption{
			ID:    fmt.Sprintf("caption-%d", i),
			Start: seg.Start,
			End:   seg.End,
			Text:  seg.Text,
		}
	}
	report.Accepted = len(out)
	return out, report
}

// Validate checks that caps satisfies the stored-set rules: unique non-empty
// ids, finite times, Start < End, and non-decreasing Start.
func Validate(caps []Caption) error {
	seen := make(map[string]struct{}, len(caps))
	for i, c := range caps {
		if strings.TrimSpace(c.ID) == "" {
			return fmt.Errorf("caption %d: empty id", i)
		}
		if _, dup := seen[c.ID]; dup {
			return fmt.Errorf("caption %d: duplicate id %q", i, c.ID)
		}
		seen[c.ID] = struct{}{}
		if !finite(c.Start) || !finite(c.End) {
			return fmt.Errorf("caption %q: non-finite interval", c.ID)
		}
		if c.Start < 0 || c.End <= c.Start {
			return fmt.Errorf("caption %q: invalid interval [%g, %g]", c.ID, c.Start, c.End)
		}
		if i > 0 && c.Start < caps[i-1].Start {
			return fmt.Errorf("caption %q: start %g precedes previous start %g", c.ID, c.Start, caps[i-1].Start)
		}
	}
	return nil
}

func finite(v float64) bool {
	return !math.IsNaN(v) && !math.IsInf(v, 0)
}

func clone(caps []Caption) []Caption {
	if caps == nil {
		return nil
	}
	out := make([]Caption, len(caps))
	copy(out, caps)
	return out
}

package captions

import (
	"math"
	"strings"
)

// Search returns captions whose text contains query, ignoring case. An empty
// query matches everything.
func Search(caps []Caption, query string) []Caption {
	query = strings.ToLower(strings.TrimSpace(query))
	if query == "" {
		return clone(caps)
	}
	var out []Caption
	for _, c := range caps {
		if strings.Contains(strings.ToLower(c.Text), query) {
			out = append(out, c)
		}
	}
	return out
}

// DensityPoint is the word count of one caption keyed by its whole-second
// start time.
type DensityPoint struct {
	Second int
	Words  int
}

// Density reports words per caption, in stored order.
func Density(caps []Caption) []DensityPoint {
	out := make([]DensityPoint, 0, len(caps))
	for _, c := range caps {
		out = append(out, DensityPoint{
			Second: int(math.Floor(c.Start)),
			Words:  len(strings.Fields(c.Text)),
		})
	}
	return out
}

// Stats summarises a caption set.
type Stats struct {
	Count         int
	Words         int
	Covered       float64
	AverageLength float64
	Overlaps      int
}

// Summarize computes totals for the caption set. Covered is the sum of
// caption durations; Overlaps counts adjacent pairs whose intervals
// intersect (shared boundaries included).
func Summarize(caps []Caption) Stats {
	var st Stats
	st.Count = len(caps)
	for i, c := range caps {
		st.Words += len(strings.Fields(c.Text))
		st.Covered += c.Duration()
		if i > 0 && c.Start <= caps[i-1].End {
			st.Overlaps++
		}
	}
	if st.Count > 0 {
		st.AverageLength = st.Covered / float64(st.Count)
	}
	return st
}

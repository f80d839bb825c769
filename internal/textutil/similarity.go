package textutil

// UnchangedThreshold is the similarity at or above which a rewritten text is
// treated as a copy of its source.
const UnchangedThreshold = 0.9

// CosineSimilarity is the cosine of the angle between two term vectors, or
// 0 when either side is empty.
func CosineSimilarity(a, b *Fingerprint) float64 {
	if a == nil || b == nil || a.norm == 0 || b.norm == 0 {
		return 0
	}
	small, large := a.tokens, b.tokens
	if len(small) > len(large) {
		small, large = large, small
	}
	var dot float64
	for term, n := range small {
		dot += n * large[term]
	}
	return dot / (a.norm * b.norm)
}

// Unchanged reports whether rewritten carries essentially the same words as
// source. Texts without comparable tokens are never unchanged.
func Unchanged(source, rewritten string) bool {
	return CosineSimilarity(NewFingerprint(source), NewFingerprint(rewritten)) >= UnchangedThreshold
}

// CountUnchanged counts positions where rewritten[i] is unchanged from
// source[i]. Extra entries in the longer slice are ignored.
func CountUnchanged(source, rewritten []string) int {
	n := min(len(source), len(rewritten))
	count := 0
	for i := range n {
		if Unchanged(source[i], rewritten[i]) {
			count++
		}
	}
	return count
}

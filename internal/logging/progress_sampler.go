package logging

import "strings"

// ProgressSampler thins per-frame progress into one log line per percentage
// step, plus one whenever the stage label changes.
type ProgressSampler struct {
	step   float64
	stage  string
	bucket int
}

// NewProgressSampler emits every step percent; step <= 0 means 5.
func NewProgressSampler(step float64) *ProgressSampler {
	if step <= 0 {
		step = 5
	}
	return &ProgressSampler{step: step, bucket: -1}
}

// ShouldLog reports whether this update is worth a line. A negative percent
// is unknown progress and only a stage change can trigger it. A nil sampler
// logs everything.
func (s *ProgressSampler) ShouldLog(percent float64, stage string) bool {
	if s == nil {
		return true
	}
	changed := false
	if stage = strings.TrimSpace(stage); stage != "" && stage != s.stage {
		s.stage, s.bucket = stage, -1
		changed = true
	}
	if percent < 0 {
		return changed
	}
	if b := int(min(percent, 100) / s.step); b > s.bucket {
		s.bucket = b
		return true
	}
	return changed
}

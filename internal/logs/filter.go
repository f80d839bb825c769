package logs

import (
	"encoding/json"
	"log/slog"
	"path/filepath"
	"strings"

	"dubstudio/internal/logging"
)

// Filter selects structured log records. The zero value matches everything.
type Filter struct {
	ProjectID int64
	MinLevel  slog.Level
}

// Match reports whether a JSON log line passes the filter. Lines that are
// not JSON records pass only an empty filter.
func (f Filter) Match(line string) bool {
	if f.ProjectID == 0 && f.MinLevel <= slog.LevelDebug {
		return true
	}
	var record struct {
		Level     string `json:"level"`
		ProjectID *int64 `json:"project_id"`
	}
	if err := json.Unmarshal([]byte(line), &record); err != nil {
		return false
	}
	if f.ProjectID != 0 && (record.ProjectID == nil || *record.ProjectID != f.ProjectID) {
		return false
	}
	var level slog.Level
	if err := level.UnmarshalText([]byte(strings.TrimSpace(record.Level))); err != nil {
		level = slog.LevelInfo
	}
	return level >= f.MinLevel
}

// Apply returns the lines that match f.
func (f Filter) Apply(lines []string) []string {
	out := lines[:0:0]
	for _, line := range lines {
		if f.Match(line) {
			out = append(out, line)
		}
	}
	return out
}

// ParseLevel maps a level name to a slog level; unknown names select debug.
func ParseLevel(name string) slog.Level {
	if strings.EqualFold(strings.TrimSpace(name), "warning") {
		return slog.LevelWarn
	}
	var level slog.Level
	if err := level.UnmarshalText([]byte(strings.TrimSpace(name))); err != nil {
		return slog.LevelDebug
	}
	return level
}

// Path returns the structured log file under dir.
func Path(dir string) string {
	if strings.TrimSpace(dir) == "" {
		return ""
	}
	return filepath.Join(dir, logging.LogFileName)
}

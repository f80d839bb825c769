package logging

import (
	"io"
	"log/slog"
	"path/filepath"
	"strconv"
	"strings"
)

// newJSONHandler writes one JSON object per line with short lower-case keys:
// ts (UTC, millisecond precision), level, msg and source as file:line.
func newJSONHandler(w io.Writer, level slog.Leveler, addSource bool) slog.Handler {
	return slog.NewJSONHandler(w, &slog.HandlerOptions{
		Level:       level,
		AddSource:   addSource,
		ReplaceAttr: jsonReplaceAttr,
	})
}

func jsonReplaceAttr(groups []string, a slog.Attr) slog.Attr {
	if len(groups) > 0 {
		return a
	}
	switch a.Key {
	case slog.TimeKey:
		if a.Value.Kind() == slog.KindTime {
			return slog.String("ts", a.Value.Time().UTC().Format("2006-01-02T15:04:05.000Z07:00"))
		}
		a.Key = "ts"
	case slog.LevelKey:
		return slog.String("level", strings.ToLower(a.Value.String()))
	case slog.SourceKey:
		if src, ok := a.Value.Any().(*slog.Source); ok && src != nil {
			return slog.String("source", filepath.Base(src.File)+":"+strconv.Itoa(src.Line))
		}
	}
	return a
}

package logging

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"path/filepath"
	"slices"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/dustin/go-humanize"
	"golang.org/x/text/cases"
	"golang.org/x/text/language"
)

const consoleTimeLayout = "Jan 02 15:04:05"

// consoleSink is shared by every handler derived from one console handler so
// writes never interleave and repeat suppression sees all records.
type consoleSink struct {
	mu sync.Mutex
	w  io.Writer
	// last holds the most recent value per label, scoped by job, project or
	// component.
	last map[string]map[string]string
}

// consoleHandler renders records for people: a one-line header naming the
// project, stage and job, then the interesting fields one per line.
type consoleHandler struct {
	sink      *consoleSink
	level     slog.Leveler
	addSource bool
	fields    []field
	prefix    string
}

type field struct {
	key   string
	value slog.Value
}

func newConsoleHandler(w io.Writer, level slog.Leveler, addSource bool) *consoleHandler {
	return &consoleHandler{
		sink:      &consoleSink{w: w, last: make(map[string]map[string]string)},
		level:     level,
		addSource: addSource,
	}
}

func (h *consoleHandler) Enabled(_ context.Context, level slog.Level) bool {
	return level >= h.level.Level()
}

func (h *consoleHandler) WithAttrs(attrs []slog.Attr) slog.Handler {
	next := *h
	next.fields = appendFields(slices.Clone(h.fields), h.prefix, attrs...)
	return &next
}

func (h *consoleHandler) WithGroup(name string) slog.Handler {
	if name == "" {
		return h
	}
	next := *h
	next.prefix = h.prefix + name + "."
	return &next
}

func (h *consoleHandler) Handle(_ context.Context, record slog.Record) error {
	fields := slices.Clone(h.fields)
	record.Attrs(func(a slog.Attr) bool {
		fields = appendFields(fields, h.prefix, a)
		return true
	})
	fields = lastValueWins(fields)

	var hdr header
	rest := hdr.take(fields)

	var b strings.Builder
	hdr.write(&b, record, h.addSource)

	h.sink.mu.Lock()
	defer h.sink.mu.Unlock()
	if record.Level < slog.LevelInfo {
		for _, f := range rest {
			fmt.Fprintf(&b, "    %s: %s\n", f.key, rawValue(f.value))
		}
	} else {
		lines, hidden := infoLines(rest)
		lines = h.sink.dropRepeats(hdr.scope(), lines, record.Level)
		for _, l := range lines {
			fmt.Fprintf(&b, "    - %s: %s\n", l.label, l.value)
		}
		if hidden > 0 {
			fmt.Fprintf(&b, "    + %d more %s hidden\n", hidden, plural(hidden, "field"))
		}
	}
	_, err := io.WriteString(h.sink.w, b.String())
	return err
}

func appendFields(dst []field, prefix string, attrs ...slog.Attr) []field {
	for _, a := range attrs {
		if a.Equal(slog.Attr{}) {
			continue
		}
		v := a.Value.Resolve()
		if v.Kind() == slog.KindGroup {
			p := prefix
			if a.Key != "" {
				p += a.Key + "."
			}
			dst = appendFields(dst, p, v.Group()...)
			continue
		}
		dst = append(dst, field{key: prefix + a.Key, value: v})
	}
	return dst
}

// lastValueWins keeps the first position of each key with its latest value.
func lastValueWins(fields []field) []field {
	pos := make(map[string]int, len(fields))
	out := fields[:0:0]
	for _, f := range fields {
		if f.key == "" {
			continue
		}
		if i, ok := pos[f.key]; ok {
			out[i].value = f.value
			continue
		}
		pos[f.key] = len(out)
		out = append(out, f)
	}
	return out
}

// header holds the identifiers promoted out of the field list.
type header struct {
	component string
	project   string
	job       string
	stage     string
}

func (hd *header) take(fields []field) []field {
	rest := fields[:0:0]
	for _, f := range fields {
		switch f.key {
		case FieldComponent:
			hd.component = plainValue(f.value)
		case FieldProjectID:
			hd.project = plainValue(f.value)
		case FieldJobID:
			hd.job = plainValue(f.value)
		case FieldStage:
			hd.stage = plainValue(f.value)
		default:
			rest = append(rest, f)
		}
	}
	return rest
}

func (hd header) subject() string {
	var parts []string
	switch {
	case hd.project != "" && hd.stage != "":
		parts = append(parts, "Project #"+hd.project+" ("+hd.stage+")")
	case hd.project != "":
		parts = append(parts, "Project #"+hd.project)
	case hd.stage != "":
		parts = append(parts, hd.stage)
	}
	if hd.job != "" {
		parts = append(parts, "job "+shortID(hd.job))
	}
	return strings.Join(parts, " · ")
}

func (hd header) scope() string {
	switch {
	case hd.job != "":
		return "job:" + hd.job
	case hd.project != "":
		return "project:" + hd.project
	default:
		return "component:" + hd.component
	}
}

func (hd header) write(b *strings.Builder, record slog.Record, addSource bool) {
	ts := record.Time
	if ts.IsZero() {
		ts = time.Now()
	}
	b.WriteString(ts.Local().Format(consoleTimeLayout))
	b.WriteByte(' ')
	b.WriteString(levelLabel(record.Level))
	if hd.component != "" {
		b.WriteString(" [" + hd.component + "]")
	}
	if s := hd.subject(); s != "" {
		b.WriteString(" " + s)
	}
	msg := strings.TrimSpace(record.Message)
	if msg == "" {
		msg = "(no message)"
	}
	b.WriteString(" – " + msg)
	if addSource {
		if src := record.Source(); src != nil && src.File != "" {
			fmt.Fprintf(b, " [%s:%d]", filepath.Base(src.File), src.Line)
		}
	}
	b.WriteByte('\n')
}

func levelLabel(level slog.Level) string {
	switch {
	case level >= slog.LevelError:
		return "ERROR"
	case level >= slog.LevelWarn:
		return "WARN"
	case level >= slog.LevelInfo:
		return "INFO"
	default:
		return "DEBUG"
	}
}

type infoLine struct {
	label string
	value string
}

// infoRank orders the fields shown at info level; unranked keys follow in
// record order.
var infoRank = rankOf(
	FieldAlert,
	FieldEventType,
	"status",
	FieldProgressPercent,
	"error",
	FieldErrorHint,
	FieldImpact,
	"render_state",
	"render_frames",
	"render_format",
	"audio_route",
	"artifact",
	"artifact_size_bytes",
	"caption_count",
	"captions_dropped",
	"captions_clamped",
	"target_language",
	"backend",
	"model",
	"elapsed",
)

var infoLabels = map[string]string{
	FieldAlert:            "Alert",
	FieldEventType:        "Event",
	FieldErrorHint:        "Hint",
	FieldProgressPercent:  "Progress",
	"render_state":        "State",
	"render_frames":       "Frames",
	"render_format":       "Format",
	"audio_route":         "Audio",
	"artifact_size_bytes": "Size",
	"caption_count":       "Captions",
	"captions_dropped":    "Dropped",
	"captions_clamped":    "Clamped",
	"target_language":     "Language",
}

func rankOf(keys ...string) map[string]int {
	m := make(map[string]int, len(keys))
	for i, k := range keys {
		m[k] = i
	}
	return m
}

// infoLines formats the fields worth showing at info level. Paths,
// identifiers and oversized values are counted as hidden instead.
func infoLines(fields []field) ([]infoLine, int) {
	shown := make([]field, 0, len(fields))
	hidden := 0
	for _, f := range fields {
		if f.key == FieldSessionID || f.key == FieldCorrelationID {
			continue
		}
		if debugOnly(f.key) {
			hidden++
			continue
		}
		shown = append(shown, f)
	}
	slices.SortStableFunc(shown, func(a, b field) int {
		return rank(a.key) - rank(b.key)
	})
	lines := make([]infoLine, 0, len(shown))
	for _, f := range shown {
		value := humanValue(f.key, f.value)
		if len(value) > 120 && f.key != "error" {
			hidden++
			continue
		}
		lines = append(lines, infoLine{label: label(f.key), value: value})
	}
	return lines, hidden
}

func rank(key string) int {
	if r, ok := infoRank[key]; ok {
		return r
	}
	return len(infoRank)
}

func label(key string) string {
	if l, ok := infoLabels[key]; ok {
		return l
	}
	return cases.Title(language.English).String(strings.NewReplacer("_", " ", "-", " ", ".", " ").Replace(key))
}

func debugOnly(key string) bool {
	switch key {
	case "frame_time", "token_count":
		return true
	}
	return strings.HasSuffix(key, "_path") || strings.HasSuffix(key, "_dir") ||
		strings.HasSuffix(key, "_file") || strings.HasPrefix(key, "ffprobe.")
}

// dropRepeats hides info fields whose value has not changed since the last
// record in the same scope. Warnings and errors always show every field.
func (s *consoleSink) dropRepeats(scope string, lines []infoLine, level slog.Level) []infoLine {
	seen := s.last[scope]
	if seen == nil {
		seen = make(map[string]string)
		s.last[scope] = seen
	}
	out := lines[:0:0]
	for _, l := range lines {
		if prev, ok := seen[l.label]; ok && prev == l.value && level <= slog.LevelInfo {
			continue
		}
		seen[l.label] = l.value
		out = append(out, l)
	}
	return out
}

// humanValue formats sizes, durations, percentages and flags for reading.
func humanValue(key string, v slog.Value) string {
	switch {
	case strings.HasSuffix(key, "_bytes") && (v.Kind() == slog.KindInt64 || v.Kind() == slog.KindUint64):
		if v.Kind() == slog.KindUint64 {
			return humanize.IBytes(v.Uint64())
		}
		if n := v.Int64(); n >= 0 {
			return humanize.IBytes(uint64(n))
		}
		return strconv.FormatInt(v.Int64(), 10) + " B"
	case v.Kind() == slog.KindDuration:
		d := v.Duration()
		if d < time.Second {
			return d.Round(time.Millisecond).String()
		}
		return d.Round(time.Second).String()
	case strings.HasSuffix(key, "_percent") && v.Kind() == slog.KindFloat64:
		return strconv.FormatFloat(v.Float64(), 'f', 1, 64) + "%"
	case v.Kind() == slog.KindBool:
		if v.Bool() {
			return "yes"
		}
		return "no"
	case key == "error":
		msg := plainValue(v)
		if len(msg) > 200 {
			msg = msg[:200] + "…"
		}
		return msg
	default:
		return rawValue(v)
	}
}

// plainValue is the unquoted text of v.
func plainValue(v slog.Value) string {
	v = v.Resolve()
	switch v.Kind() {
	case slog.KindString:
		return strings.TrimSpace(v.String())
	case slog.KindAny:
		if err, ok := v.Any().(error); ok {
			return err.Error()
		}
		return fmt.Sprint(v.Any())
	case slog.KindTime:
		return v.Time().Local().Format(consoleTimeLayout)
	default:
		return v.String()
	}
}

// rawValue is plainValue quoted when it would not read as a single token.
func rawValue(v slog.Value) string {
	s := plainValue(v)
	if v.Kind() == slog.KindString || v.Kind() == slog.KindAny {
		if s == "" || strings.ContainsAny(s, " \t\n\"=") {
			return strconv.Quote(s)
		}
	}
	return s
}

func shortID(id string) string {
	if len(id) > 8 {
		return id[:8]
	}
	return id
}

func plural(n int, word string) string {
	if n == 1 {
		return word
	}
	return word + "s"
}

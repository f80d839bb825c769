package logging

import (
	"context"
	"log/slog"
	"slices"
	"time"
)

type Attr = slog.Attr

func Bool(key string, value bool) Attr { return slog.Bool(key, value) }

func Duration(key string, value time.Duration) Attr { return slog.Duration(key, value) }

func Float64(key string, value float64) Attr { return slog.Float64(key, value) }

func Int(key string, value int) Attr { return slog.Int(key, value) }

func Int64(key string, value int64) Attr { return slog.Int64(key, value) }

func String(key string, value string) Attr { return slog.String(key, value) }

// Percent logs a 0..1 fraction as 0..100 under FieldProgressPercent.
func Percent(fraction float64) Attr { return slog.Float64(FieldProgressPercent, fraction*100) }

func Error(err error) Attr {
	if err == nil {
		return slog.String("error", "<nil>")
	}
	return slog.Any("error", err)
}

func attrsToArgs(attrs []Attr) []any {
	args := make([]any, len(attrs))
	for i, attr := range attrs {
		args[i] = attr
	}
	return args
}

// NewNop returns a logger that drops everything.
func NewNop() *slog.Logger { return slog.New(NoopHandler{}) }

// NewComponentLogger tags logger (or a no-op logger when nil) with component.
func NewComponentLogger(logger *slog.Logger, component string) *slog.Logger {
	if logger == nil {
		logger = NewNop()
	}
	return logger.With(String(FieldComponent, component))
}

// withDefaults appends each default whose key is absent from attrs.
func withDefaults(attrs []Attr, defaults ...Attr) []Attr {
	for _, d := range defaults {
		if !slices.ContainsFunc(attrs, func(a Attr) bool { return a.Key == d.Key }) {
			attrs = append(attrs, d)
		}
	}
	return attrs
}

// WarnWithContext logs a warning that always names its event type, the next
// step for the user, and what the warning cost them.
func WarnWithContext(logger *slog.Logger, msg, eventType string, attrs ...Attr) {
	if logger == nil {
		return
	}
	attrs = withDefaults(attrs,
		String(FieldEventType, eventType),
		String(FieldErrorHint, "check logs for details"),
		String(FieldImpact, "operation completed with warnings"),
	)
	logger.Warn(msg, attrsToArgs(attrs)...)
}

// ErrorWithContext logs an error carrying an event type and a hint.
func ErrorWithContext(logger *slog.Logger, msg, eventType string, attrs ...Attr) {
	if logger == nil {
		return
	}
	attrs = withDefaults(attrs,
		String(FieldEventType, eventType),
		String(FieldErrorHint, "check logs for details"),
	)
	logger.Error(msg, attrsToArgs(attrs)...)
}

// NoopHandler discards all log output.
type NoopHandler struct{}

func (NoopHandler) Enabled(context.Context, slog.Level) bool { return false }

func (NoopHandler) Handle(context.Context, slog.Record) error { return nil }

func (h NoopHandler) WithAttrs([]slog.Attr) slog.Handler { return h }

func (h NoopHandler) WithGroup(string) slog.Handler { return h }

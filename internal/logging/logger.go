package logging

import (
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"github.com/google/uuid"

	"dubstudio/internal/config"
)

// LogFileName is the structured log written under the configured log directory.
const LogFileName = "dubstudio.log"

// Options describes logger construction parameters.
type Options struct {
	Level  string
	Format string // "console" (default) or "json"
	// OutputPaths lists "stdout", "stderr" or file paths; empty means stderr.
	OutputPaths []string
	// FilePath, when set, receives a debug-level JSON copy of every record.
	FilePath  string
	SessionID string
}

var levels = map[string]slog.Level{
	"":        slog.LevelInfo,
	"info":    slog.LevelInfo,
	"debug":   slog.LevelDebug,
	"warn":    slog.LevelWarn,
	"warning": slog.LevelWarn,
	"error":   slog.LevelError,
}

// New builds the terminal handler, tees it into the JSON log file when one
// is configured, and stamps every record with the session id.
func New(opts Options) (*slog.Logger, error) {
	level, ok := levels[strings.ToLower(strings.TrimSpace(opts.Level))]
	if !ok {
		level = slog.LevelInfo
	}
	out, err := openOutputs(opts.OutputPaths)
	if err != nil {
		return nil, err
	}
	addSource := level <= slog.LevelDebug

	var handler slog.Handler
	switch format := strings.ToLower(strings.TrimSpace(opts.Format)); format {
	case "", "console":
		handler = newConsoleHandler(out, level, addSource)
	case "json":
		handler = newJSONHandler(out, level, addSource)
	default:
		return nil, fmt.Errorf("log format: unsupported value %q", opts.Format)
	}

	if path := strings.TrimSpace(opts.FilePath); path != "" {
		file, err := openOutputs([]string{path})
		if err != nil {
			return nil, err
		}
		handler = TeeHandler(handler, newJSONHandler(file, slog.LevelDebug, true))
	}
	if id := strings.TrimSpace(opts.SessionID); id != "" {
		handler = handler.WithAttrs([]slog.Attr{slog.String(FieldSessionID, id)})
	}
	return slog.New(handler), nil
}

// NewFromConfig logs to stderr, keeping stdout for command output, and to
// dubstudio.log in the configured log directory.
func NewFromConfig(cfg *config.Config) (*slog.Logger, error) {
	if cfg == nil {
		return New(Options{})
	}
	opts := Options{
		Level:     cfg.Logging.Level,
		Format:    cfg.Logging.Format,
		SessionID: uuid.NewString(),
	}
	if dir := cfg.Paths.LogDir; dir != "" {
		opts.FilePath = filepath.Join(dir, LogFileName)
	}
	return New(opts)
}

func openOutputs(paths []string) (io.Writer, error) {
	var writers []io.Writer
	seen := make(map[string]bool, len(paths))
	for _, path := range paths {
		path = strings.TrimSpace(path)
		if path == "" || seen[path] {
			continue
		}
		seen[path] = true
		w, err := openOutput(path)
		if err != nil {
			return nil, err
		}
		writers = append(writers, w)
	}
	switch len(writers) {
	case 0:
		return os.Stderr, nil
	case 1:
		return writers[0], nil
	}
	return io.MultiWriter(writers...), nil
}

func openOutput(path string) (io.Writer, error) {
	switch path {
	case "stdout":
		return os.Stdout, nil
	case "stderr":
		return os.Stderr, nil
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return nil, fmt.Errorf("ensure log directory: %w", err)
	}
	file, err := os.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
	if err != nil {
		return nil, fmt.Errorf("open log file %s: %w", path, err)
	}
	return file, nil
}

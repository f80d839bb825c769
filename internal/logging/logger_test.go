package logging_test

import (
	"bytes"
	"context"
	"encoding/json"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"dubstudio/internal/config"
	"dubstudio/internal/logging"
	"dubstudio/internal/services"
)

func TestNewFromConfigWritesJSONLogFile(t *testing.T) {
	cfg := config.Default()
	cfg.Paths.LogDir = filepath.Join(t.TempDir(), "logs")
	cfg.Logging.Level = "error"

	logger, err := logging.NewFromConfig(&cfg)
	if err != nil {
		t.Fatalf("NewFromConfig returned error: %v", err)
	}
	logger.Debug("debug reaches the file", logging.String("k", "v"))

	content, err := os.ReadFile(filepath.Join(cfg.Paths.LogDir, logging.LogFileName))
	if err != nil {
		t.Fatalf("read log file: %v", err)
	}
	var record map[string]any
	if err := json.Unmarshal(bytes.TrimSpace(content), &record); err != nil {
		t.Fatalf("log file is not json: %v (%q)", err, content)
	}
	if record["msg"] != "debug reaches the file" || record["k"] != "v" {
		t.Fatalf("unexpected record: %v", record)
	}
	if id, _ := record[logging.FieldSessionID].(string); id == "" {
		t.Fatalf("expected session id, got %v", record)
	}
}

func TestConsoleLoggerOmitsCallerForInfo(t *testing.T) {
	logPath := filepath.Join(t.TempDir(), "console-info.log")
	logger, err := logging.New(logging.Options{Format: "console", Level: "info", OutputPaths: []string{logPath}})
	if err != nil {
		t.Fatalf("New returned error: %v", err)
	}
	logger.Info("message without caller")

	content, err := os.ReadFile(logPath)
	if err != nil {
		t.Fatalf("read log file: %v", err)
	}
	if strings.Contains(string(content), ".go:") {
		t.Fatalf("expected no caller information in info logs, got %q", content)
	}
}

func TestConsoleLoggerIncludesCallerForDebug(t *testing.T) {
	logPath := filepath.Join(t.TempDir(), "console-debug.log")
	logger, err := logging.New(logging.Options{Format: "console", Level: "debug", OutputPaths: []string{logPath}})
	if err != nil {
		t.Fatalf("New returned error: %v", err)
	}
	logger.Info("message with caller")

	content, err := os.ReadFile(logPath)
	if err != nil {
		t.Fatalf("read log file: %v", err)
	}
	if !strings.Contains(string(content), ".go:") {
		t.Fatalf("expected caller information in debug logs, got %q", content)
	}
}

func TestConsoleHeaderShowsProjectAndStage(t *testing.T) {
	logPath := filepath.Join(t.TempDir(), "console.log")
	logger, err := logging.New(logging.Options{Format: "console", Level: "info", OutputPaths: []string{logPath}})
	if err != nil {
		t.Fatalf("New returned error: %v", err)
	}
	ctx := services.WithProjectID(context.Background(), 7)
	ctx = services.WithStage(ctx, "rendering")
	ctx = services.WithJobID(ctx, "0123456789abcdef")
	logging.WithContext(ctx, logging.NewComponentLogger(logger, "render")).Info(
		"render complete",
		logging.Int64("artifact_size_bytes", 2048),
		logging.Percent(1),
	)

	content, err := os.ReadFile(logPath)
	if err != nil {
		t.Fatalf("read log file: %v", err)
	}
	text := string(content)
	for _, want := range []string{"[render]", "Project #7 (rendering)", "job 01234567", "render complete", "Size: 2.0 KiB", "Progress: 100.0%"} {
		if !strings.Contains(text, want) {
			t.Fatalf("expected %q in %q", want, text)
		}
	}
}

func TestConsoleHidesPathsAndRepeats(t *testing.T) {
	logPath := filepath.Join(t.TempDir(), "console.log")
	logger, err := logging.New(logging.Options{Format: "console", Level: "info", OutputPaths: []string{logPath}, SessionID: "s-1"})
	if err != nil {
		t.Fatalf("New returned error: %v", err)
	}
	logger = logging.WithContext(services.WithProjectID(context.Background(), 3), logger)
	logger.Info("stage started", logging.String("dub_path", "/tmp/dub.wav"), logging.String("target_language", "ur-PK"))
	logger.Info("stage completed", logging.String("target_language", "ur-PK"), logging.Bool("archived", true))

	content, err := os.ReadFile(logPath)
	if err != nil {
		t.Fatalf("read log file: %v", err)
	}
	text := string(content)
	if strings.Contains(text, "/tmp/dub.wav") || !strings.Contains(text, "+ 1 more field hidden") {
		t.Fatalf("expected path hidden, got %q", text)
	}
	if strings.Count(text, "Language: ur-PK") != 1 {
		t.Fatalf("expected repeated field once, got %q", text)
	}
	if !strings.Contains(text, "Archived: yes") || strings.Contains(text, "s-1") {
		t.Fatalf("unexpected field rendering: %q", text)
	}
}

func TestNewRejectsUnknownFormat(t *testing.T) {
	if _, err := logging.New(logging.Options{Format: "xml"}); err == nil {
		t.Fatal("expected error for unknown format")
	}
}

func TestWithContextAddsFields(t *testing.T) {
	ctx := services.WithProjectID(context.Background(), 123)
	ctx = services.WithStage(ctx, "translating")
	ctx = services.WithRequestID(ctx, "req-xyz")

	var buf bytes.Buffer
	logger := slog.New(slog.NewJSONHandler(&buf, nil))
	logging.WithContext(ctx, logger).Info("contextual log")

	var record map[string]any
	if err := json.Unmarshal(buf.Bytes(), &record); err != nil {
		t.Fatalf("decode record: %v", err)
	}
	if record[logging.FieldProjectID] != float64(123) {
		t.Fatalf("project id = %v", record[logging.FieldProjectID])
	}
	if record[logging.FieldStage] != "translating" {
		t.Fatalf("stage = %v", record[logging.FieldStage])
	}
	if record[logging.FieldCorrelationID] != "req-xyz" {
		t.Fatalf("correlation id = %v", record[logging.FieldCorrelationID])
	}
}

func TestTeeHandlerRespectsEachLevel(t *testing.T) {
	var info, debug bytes.Buffer
	h := logging.TeeHandler(
		slog.NewJSONHandler(&info, &slog.HandlerOptions{Level: slog.LevelInfo}),
		slog.NewJSONHandler(&debug, &slog.HandlerOptions{Level: slog.LevelDebug}),
	)
	logger := slog.New(h)
	logger.Debug("only debug sink")
	logger.Info("both sinks")

	if strings.Contains(info.String(), "only debug sink") {
		t.Fatalf("info sink received debug record: %q", info.String())
	}
	if !strings.Contains(debug.String(), "only debug sink") || !strings.Contains(debug.String(), "both sinks") {
		t.Fatalf("debug sink missing records: %q", debug.String())
	}
	if !strings.Contains(info.String(), "both sinks") {
		t.Fatalf("info sink missing record: %q", info.String())
	}
}

func TestErrorWithContextInjectsDefaults(t *testing.T) {
	var buf bytes.Buffer
	logger := slog.New(slog.NewJSONHandler(&buf, nil))
	logging.ErrorWithContext(logger, "render failed", "render_failed", logging.Error(services.ErrRenderResource))

	var record map[string]any
	if err := json.Unmarshal(buf.Bytes(), &record); err != nil {
		t.Fatalf("decode record: %v", err)
	}
	if record[logging.FieldEventType] != "render_failed" || record[logging.FieldErrorHint] == nil {
		t.Fatalf("unexpected record: %v", record)
	}
}

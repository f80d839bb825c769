package testsupport

import (
	"os"
	"path/filepath"
	"testing"

	"dubstudio/internal/config"
)

// ConfigOption adjusts the config NewConfig builds.
type ConfigOption func(*configBuilder)

type configBuilder struct {
	t    testing.TB
	base string
	cfg  *config.Config
}

// NewConfig returns defaults rooted in a fresh temp directory: data/,
// exports/ and logs/ beneath it (not yet created), no credentials, and
// unpaced rendering.
func NewConfig(t testing.TB, opts ...ConfigOption) *config.Config {
	t.Helper()
	cfg := config.Default()
	b := &configBuilder{t: t, base: t.TempDir(), cfg: &cfg}
	cfg.Paths.DataDir = filepath.Join(b.base, "data")
	cfg.Paths.OutputDir = filepath.Join(b.base, "exports")
	cfg.Paths.LogDir = filepath.Join(b.base, "logs")
	cfg.Render.Realtime = false
	for _, opt := range opts {
		opt(b)
	}
	return b.cfg
}

// WithHuggingFace points the Hugging Face inference client at a test server.
func WithHuggingFace(baseURL, token string) ConfigOption {
	return func(b *configBuilder) {
		b.cfg.HuggingFace.BaseURL = baseURL
		b.cfg.HuggingFace.APIKey = token
	}
}

// WithLLM points the translation client at a test server.
func WithLLM(baseURL, key string) ConfigOption {
	return func(b *configBuilder) {
		b.cfg.Translation.BaseURL = baseURL
		b.cfg.Translation.APIKey = key
	}
}

// WithStubbedBinaries puts no-op ffmpeg, ffprobe and uvx scripts (or the
// given names) first on PATH.
func WithStubbedBinaries(names ...string) ConfigOption {
	if len(names) == 0 {
		names = []string{"ffmpeg", "ffprobe", "uvx"}
	}
	return func(b *configBuilder) {
		bin := filepath.Join(b.base, "bin")
		for _, name := range names {
			WriteScript(b.t, filepath.Join(bin, name), "exit 0\n")
		}
		b.t.Setenv("PATH", bin+string(os.PathListSeparator)+os.Getenv("PATH"))
	}
}

// WriteScript writes an executable /bin/sh script with the given body.
func WriteScript(t testing.TB, path, body string) {
	t.Helper()
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		t.Fatalf("mkdir for %s: %v", path, err)
	}
	if err := os.WriteFile(path, []byte("#!/bin/sh\n"+body), 0o755); err != nil {
		t.Fatalf("write script %s: %v", path, err)
	}
}

// BaseDir returns the root temp directory backing the generated config.
func BaseDir(cfg *config.Config) string {
	return filepath.Dir(cfg.Paths.DataDir)
}

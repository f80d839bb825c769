package preflight

import (
	"context"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"

	"dubstudio/internal/config"
	"dubstudio/internal/testsupport"
)

func TestCheckDirectoryAccess_OK(t *testing.T) {
	dir := t.TempDir()
	result := CheckDirectoryAccess("test", dir)
	if !result.Passed {
		t.Fatalf("expected pass for temp dir, got: %s", result.Detail)
	}
}

func TestCheckDirectoryAccess_NotExist(t *testing.T) {
	result := CheckDirectoryAccess("test", filepath.Join(t.TempDir(), "nope"))
	if result.Passed {
		t.Fatal("expected failure for missing dir")
	}
	if result.Detail == "" {
		t.Fatal("expected non-empty detail")
	}
}

func TestCheckDirectoryAccess_NotDir(t *testing.T) {
	f := filepath.Join(t.TempDir(), "file.txt")
	if err := os.WriteFile(f, []byte("x"), 0o644); err != nil {
		t.Fatal(err)
	}
	result := CheckDirectoryAccess("test", f)
	if result.Passed {
		t.Fatal("expected failure for file path")
	}
}

func TestCheckHuggingFaceToken(t *testing.T) {
	cfg := config.Default()
	cfg.HuggingFace.APIKey = ""
	if CheckHuggingFaceToken(&cfg).Passed {
		t.Fatal("expected missing token to fail for the huggingface backend")
	}
	cfg.Transcription.Backend = config.BackendWhisperX
	cfg.Transcription.WhisperXVADMethod = "silero"
	if !CheckHuggingFaceToken(&cfg).Passed {
		t.Fatal("expected whisperx with silero to pass without a token")
	}
	cfg.Transcription.WhisperXVADMethod = "pyannote"
	if CheckHuggingFaceToken(&cfg).Passed {
		t.Fatal("expected pyannote to require a token")
	}
	cfg.HuggingFace.APIKey = "hf_x"
	if !CheckHuggingFaceToken(&cfg).Passed {
		t.Fatal("expected configured token to pass")
	}
}

func TestCheckLLM(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Header.Get("Authorization") != "Bearer good-key" {
			w.WriteHeader(http.StatusUnauthorized)
			return
		}
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"choices":[{"message":{"content":"{\"ok\":true}"}}]}`))
	}))
	defer srv.Close()

	ok := CheckLLM(context.Background(), "LLM", config.LLMConfig{APIKey: "good-key", BaseURL: srv.URL, Model: "m"})
	if !ok.Passed {
		t.Fatalf("expected pass, got: %s", ok.Detail)
	}
	bad := CheckLLM(context.Background(), "LLM", config.LLMConfig{APIKey: "bad-key", BaseURL: srv.URL, Model: "m"})
	if bad.Passed {
		t.Fatal("expected failure for bad key")
	}
	missing := CheckLLM(context.Background(), "LLM", config.LLMConfig{})
	if missing.Passed || missing.Detail != "API key missing" {
		t.Fatalf("unexpected result for missing key: %+v", missing)
	}
}

func TestRunAll_NilConfig(t *testing.T) {
	results := RunAll(context.Background(), nil)
	if results != nil {
		t.Fatal("expected nil results for nil config")
	}
}

func TestRunAll_MinimalConfig(t *testing.T) {
	cfg := config.Default()
	cfg.Paths.DataDir = t.TempDir()
	cfg.Paths.OutputDir = t.TempDir()
	cfg.Paths.LogDir = ""
	cfg.HuggingFace.APIKey = "hf_x"

	results := RunAll(context.Background(), &cfg)
	// data + output directories and the token check
	if len(results) != 3 {
		t.Fatalf("expected 3 results, got %d", len(results))
	}
	if failed := Failed(results); len(failed) != 0 {
		t.Fatalf("unexpected failures: %+v", failed)
	}
}

func TestCollectReportsMissingTools(t *testing.T) {
	t.Setenv("PATH", t.TempDir())
	cfg := config.Default()
	cfg.Paths.DataDir = t.TempDir()
	cfg.Paths.OutputDir = t.TempDir()
	cfg.Paths.LogDir = ""
	cfg.HuggingFace.APIKey = "hf_x"

	report := Collect(context.Background(), &cfg, false)
	if len(report.Tools) != 3 {
		t.Fatalf("expected ffmpeg, ffprobe and uvx entries, got %d", len(report.Tools))
	}
	if report.Ready() {
		t.Fatal("expected report not ready without ffmpeg")
	}
	uvx := report.Tools[2]
	if uvx.Name != "uvx" || !uvx.Optional {
		t.Fatalf("expected uvx optional for the huggingface backend, got %+v", uvx)
	}
}

func TestCollectReadyWithStubbedTools(t *testing.T) {
	cfg := testsupport.NewConfig(t, testsupport.WithStubbedBinaries(), testsupport.WithHuggingFace("", "hf_x"))
	if err := cfg.EnsureDirectories(); err != nil {
		t.Fatalf("EnsureDirectories: %v", err)
	}

	report := Collect(context.Background(), cfg, false)
	for _, tool := range report.Tools {
		if !tool.Available {
			t.Fatalf("expected stubbed %s on PATH: %+v", tool.Name, tool)
		}
	}
	if !report.Ready() {
		t.Fatalf("expected ready report, failed checks: %+v", Failed(report.Checks))
	}
}

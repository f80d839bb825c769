package config_test

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/pelletier/go-toml/v2"

	"dubstudio/internal/config"
)

func clearCredentialEnv(t *testing.T) {
	t.Helper()
	for _, key := range []string{"HF_TOKEN", "HUGGING_FACE_HUB_TOKEN", "OPENROUTER_API_KEY", "DUBSTUDIO_LLM_API_KEY"} {
		t.Setenv(key, "")
	}
}

func TestLoadDefaultConfigExpandsPaths(t *testing.T) {
	clearCredentialEnv(t)
	tempHome := t.TempDir()
	t.Setenv("HOME", tempHome)
	t.Chdir(t.TempDir())

	cfg, resolved, exists, err := config.Load("")
	if err != nil {
		t.Fatalf("Load returned error: %v", err)
	}
	if resolved != filepath.Join(tempHome, ".config", "dubstudio", "config.toml") {
		t.Fatalf("unexpected resolved path: %q", resolved)
	}
	if exists {
		t.Fatal("expected config file to be absent in temp HOME")
	}

	wantData := filepath.Join(tempHome, ".local", "share", "dubstudio")
	if cfg.Paths.DataDir != wantData {
		t.Fatalf("unexpected data dir: got %q want %q", cfg.Paths.DataDir, wantData)
	}
	if cfg.Paths.OutputDir != filepath.Join(tempHome, "Videos", "dubstudio") {
		t.Fatalf("unexpected output dir: %q", cfg.Paths.OutputDir)
	}
	if cfg.DatabasePath() != filepath.Join(wantData, "dubstudio.db") {
		t.Fatalf("unexpected database path: %q", cfg.DatabasePath())
	}
	if cfg.Transcription.Backend != config.BackendHuggingFace {
		t.Fatalf("unexpected backend: %q", cfg.Transcription.Backend)
	}
	if cfg.Render.FPS != 30 || cfg.Render.DefaultWidth != 1280 || cfg.Render.DefaultHeight != 720 {
		t.Fatalf("unexpected render defaults: %+v", cfg.Render)
	}
	if cfg.Render.Container != "webm" || !cfg.Render.Realtime {
		t.Fatalf("unexpected render format defaults: %+v", cfg.Render)
	}
	if cfg.Synthesis.PCMSampleRate != 24000 || cfg.Synthesis.PCMChannels != 1 {
		t.Fatalf("unexpected pcm defaults: %+v", cfg.Synthesis)
	}
	if cfg.HuggingFace.APIKey != "" || cfg.Translation.APIKey != "" {
		t.Fatal("expected empty credentials without env")
	}
	if err := cfg.EnsureDirectories(); err != nil {
		t.Fatalf("EnsureDirectories failed: %v", err)
	}
	for _, dir := range []string{cfg.Paths.DataDir, cfg.ProjectsDir(), cfg.Paths.OutputDir, cfg.Paths.LogDir} {
		info, err := os.Stat(dir)
		if err != nil {
			t.Fatalf("expected directory %q to exist: %v", dir, err)
		}
		if !info.IsDir() {
			t.Fatalf("expected %q to be directory", dir)
		}
	}
}

func TestLoadFallsBackToProjectConfig(t *testing.T) {
	clearCredentialEnv(t)
	t.Setenv("HOME", t.TempDir())
	workDir := t.TempDir()
	t.Chdir(workDir)
	if err := os.WriteFile(filepath.Join(workDir, "dubstudio.toml"), []byte("[render]\nfps = 24\n"), 0o644); err != nil {
		t.Fatalf("write project config: %v", err)
	}

	cfg, resolved, exists, err := config.Load("")
	if err != nil {
		t.Fatalf("Load returned error: %v", err)
	}
	if !exists || filepath.Base(resolved) != "dubstudio.toml" {
		t.Fatalf("expected project config, got %q exists=%v", resolved, exists)
	}
	if cfg.Render.FPS != 24 {
		t.Fatalf("expected fps 24, got %d", cfg.Render.FPS)
	}
}

func TestLoadCustomPath(t *testing.T) {
	clearCredentialEnv(t)
	tempDir := t.TempDir()
	configPath := filepath.Join(tempDir, "dubstudio.toml")

	type payload struct {
		Paths struct {
			DataDir string `toml:"data_dir"`
		} `toml:"paths"`
		Translation struct {
			APIKey string `toml:"api_key"`
			Model  string `toml:"model"`
		} `toml:"translation"`
		Render struct {
			Container string `toml:"container"`
			Realtime  bool   `toml:"realtime"`
		} `toml:"render"`
	}
	custom := payload{}
	custom.Paths.DataDir = filepath.Join(tempDir, "data")
	custom.Translation.APIKey = "abc123"
	custom.Translation.Model = "  some/model  "
	custom.Render.Container = "MP4"
	data, err := toml.Marshal(custom)
	if err != nil {
		t.Fatalf("marshal custom config: %v", err)
	}
	if err := os.WriteFile(configPath, data, 0o644); err != nil {
		t.Fatalf("write custom config: %v", err)
	}

	cfg, resolved, exists, err := config.Load(configPath)
	if err != nil {
		t.Fatalf("Load returned error: %v", err)
	}
	if !exists {
		t.Fatal("expected exists to be true")
	}
	if resolved != configPath {
		t.Fatalf("unexpected resolved path: got %q want %q", resolved, configPath)
	}
	if cfg.Paths.DataDir != filepath.Join(tempDir, "data") {
		t.Fatalf("unexpected data dir: %q", cfg.Paths.DataDir)
	}
	llm := cfg.GetLLM()
	if llm.APIKey != "abc123" || llm.Model != "some/model" {
		t.Fatalf("unexpected llm settings: %+v", llm)
	}
	if cfg.Render.Container != "mp4" {
		t.Fatalf("expected container normalized to mp4, got %q", cfg.Render.Container)
	}
	if cfg.Render.Realtime {
		t.Fatal("expected realtime override false")
	}
}

func TestEnvFillsMissingCredentials(t *testing.T) {
	clearCredentialEnv(t)
	t.Setenv("HOME", t.TempDir())
	t.Setenv("HUGGING_FACE_HUB_TOKEN", "env-hub")
	t.Setenv("OPENROUTER_API_KEY", "env-openrouter")

	cfg, _, _, err := config.Load(filepath.Join(t.TempDir(), "missing.toml"))
	if err != nil {
		t.Fatalf("Load returned error: %v", err)
	}
	if cfg.HuggingFace.APIKey != "env-hub" {
		t.Fatalf("expected hub token fallback, got %q", cfg.HuggingFace.APIKey)
	}
	if cfg.Translation.APIKey != "env-openrouter" {
		t.Fatalf("expected openrouter fallback, got %q", cfg.Translation.APIKey)
	}

	t.Setenv("HF_TOKEN", "env-hf")
	t.Setenv("DUBSTUDIO_LLM_API_KEY", "env-dub")
	cfg, _, _, err = config.Load(filepath.Join(t.TempDir(), "missing.toml"))
	if err != nil {
		t.Fatalf("Load returned error: %v", err)
	}
	if cfg.HuggingFace.APIKey != "env-hf" || cfg.Translation.APIKey != "env-dub" {
		t.Fatalf("expected preferred env keys, got %q / %q", cfg.HuggingFace.APIKey, cfg.Translation.APIKey)
	}
}

func TestFileCredentialsWinOverEnv(t *testing.T) {
	clearCredentialEnv(t)
	t.Setenv("HF_TOKEN", "env-hf")
	path := filepath.Join(t.TempDir(), "dubstudio.toml")
	if err := os.WriteFile(path, []byte("[huggingface]\napi_key = \"file-hf\"\n"), 0o644); err != nil {
		t.Fatalf("write config: %v", err)
	}
	cfg, _, _, err := config.Load(path)
	if err != nil {
		t.Fatalf("Load returned error: %v", err)
	}
	if cfg.HuggingFace.APIKey != "file-hf" {
		t.Fatalf("expected file key, got %q", cfg.HuggingFace.APIKey)
	}
}

func TestLoadRejectsMalformedTOML(t *testing.T) {
	path := filepath.Join(t.TempDir(), "bad.toml")
	if err := os.WriteFile(path, []byte("[render\nfps = 30"), 0o644); err != nil {
		t.Fatalf("write config: %v", err)
	}
	if _, _, _, err := config.Load(path); err == nil || !strings.Contains(err.Error(), "parse config") {
		t.Fatalf("expected parse error, got %v", err)
	}
}

func TestCreateSample(t *testing.T) {
	clearCredentialEnv(t)
	path := filepath.Join(t.TempDir(), "nested", "sample.toml")
	if err := config.CreateSample(path); err != nil {
		t.Fatalf("CreateSample failed: %v", err)
	}

	contents, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("read sample: %v", err)
	}
	if !strings.Contains(string(contents), "your_hf_token_here") {
		t.Fatalf("sample config missing placeholder token: %s", contents)
	}

	var cfg config.Config
	if err := toml.Unmarshal(contents, &cfg); err != nil {
		t.Fatalf("unmarshal sample: %v", err)
	}
	if !strings.Contains(cfg.Paths.DataDir, "dubstudio") {
		t.Fatalf("expected data dir to contain dubstudio, got %q", cfg.Paths.DataDir)
	}

	loaded, _, exists, err := config.Load(path)
	if err != nil {
		t.Fatalf("sample does not load: %v", err)
	}
	if !exists || loaded.Render.ExportPrefix != "dubstudio_export" {
		t.Fatalf("unexpected sample render prefix: %q", loaded.Render.ExportPrefix)
	}
}

func TestValidateDetectsInvalidValues(t *testing.T) {
	cases := map[string]func(*config.Config){
		"backend":     func(c *config.Config) { c.Transcription.Backend = "gemini" },
		"vad":         func(c *config.Config) { c.Transcription.WhisperXVADMethod = "none" },
		"fps":         func(c *config.Config) { c.Render.FPS = 0 },
		"width":       func(c *config.Config) { c.Render.DefaultWidth = -1 },
		"container":   func(c *config.Config) { c.Render.Container = "avi" },
		"prefix":      func(c *config.Config) { c.Render.ExportPrefix = "a/b" },
		"pcm rate":    func(c *config.Config) { c.Synthesis.PCMSampleRate = -1 },
		"pcm chans":   func(c *config.Config) { c.Synthesis.PCMChannels = 3 },
		"log level":   func(c *config.Config) { c.Logging.Level = "loud" },
		"llm timeout": func(c *config.Config) { c.Translation.TimeoutSeconds = 0 },
	}
	for name, mutate := range cases {
		cfg := config.Default()
		mutate(&cfg)
		if err := cfg.Validate(); err == nil {
			t.Fatalf("%s: expected validation error", name)
		}
	}

	cfg := config.Default()
	if err := cfg.Validate(); err != nil {
		t.Fatalf("defaults should validate: %v", err)
	}
}

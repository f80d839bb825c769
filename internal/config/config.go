package config

import (
	_ "embed"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"github.com/pelletier/go-toml/v2"

	"dubstudio/internal/fileutil"
)

//go:embed sample_config.toml
var sampleConfig string

// Paths contains directory configuration.
type Paths struct {
	DataDir   string `toml:"data_dir"`
	OutputDir string `toml:"output_dir"`
	LogDir    string `toml:"log_dir"`
}

// Transcription selects and configures the speech-to-text backend.
type Transcription struct {
	Backend             string `toml:"backend"`
	WhisperXModel       string `toml:"whisperx_model"`
	WhisperXCUDAEnabled bool   `toml:"whisperx_cuda_enabled"`
	WhisperXVADMethod   string `toml:"whisperx_vad_method"`
	HFModel             string `toml:"hf_model"`
}

// Translation contains LLM connection settings used for caption translation.
type Translation struct {
	APIKey          string `toml:"api_key"`
	BaseURL         string `toml:"base_url"`
	Model           string `toml:"model"`
	Referer         string `toml:"referer"`
	Title           string `toml:"title"`
	TimeoutSeconds  int    `toml:"timeout_seconds"`
	DefaultLanguage string `toml:"default_language"`
}

// Synthesis configures dub speech generation.
type Synthesis struct {
	HFModel       string `toml:"hf_model"`
	PCMSampleRate int    `toml:"pcm_sample_rate"`
	PCMChannels   int    `toml:"pcm_channels"`
}

// HuggingFace contains inference API credentials shared by transcription and synthesis.
type HuggingFace struct {
	APIKey         string `toml:"api_key"`
	BaseURL        string `toml:"base_url"`
	TimeoutSeconds int    `toml:"timeout_seconds"`
}

// Render contains export settings.
type Render struct {
	FPS           int    `toml:"fps"`
	DefaultWidth  int    `toml:"default_width"`
	DefaultHeight int    `toml:"default_height"`
	Container     string `toml:"container"`
	VideoCodec    string `toml:"video_codec"`
	AudioCodec    string `toml:"audio_codec"`
	Realtime      bool   `toml:"realtime"`
	ExportPrefix  string `toml:"export_prefix"`
	ArchiveEncode bool   `toml:"archive_encode"`
}

// Notifications contains configuration for ntfy push notifications.
type Notifications struct {
	NtfyTopic      string `toml:"ntfy_topic"`
	RequestTimeout int    `toml:"request_timeout"`
	Renders        bool   `toml:"renders"`
	Steps          bool   `toml:"steps"`
	Errors         bool   `toml:"errors"`
}

// Logging contains configuration for log output.
type Logging struct {
	Format string `toml:"format"`
	Level  string `toml:"level"`
}

// Config encapsulates all configuration values for dubstudio.
//
// Configuration sections by subsystem:
//   - Paths: project data, exports and logs
//   - Transcription: whisperx or Hugging Face speech-to-text
//   - Translation: LLM chat completions endpoint
//   - Synthesis: dub speech model and raw PCM fallback format
//   - HuggingFace: inference API credentials
//   - Render: frame rate, fallback size, container and codecs
//   - Notifications: ntfy push notification settings
//   - Logging: log format and level
type Config struct {
	Paths         Paths         `toml:"paths"`
	Transcription Transcription `toml:"transcription"`
	Translation   Translation   `toml:"translation"`
	Synthesis     Synthesis     `toml:"synthesis"`
	HuggingFace   HuggingFace   `toml:"huggingface"`
	Render        Render        `toml:"render"`
	Notifications Notifications `toml:"notifications"`
	Logging       Logging       `toml:"logging"`
}

// DefaultConfigPath is the per-user config file, ~/.config/dubstudio/config.toml.
func DefaultConfigPath() (string, error) {
	return expandPath(defaultConfigPath)
}

// Load reads the config file at path, or the first of the per-user file and
// ./dubstudio.toml that exists, over the built-in defaults. It returns the
// normalized, validated config, the file it resolved to, and whether that
// file existed. A missing file is not an error.
func Load(path string) (*Config, string, bool, error) {
	resolved, exists, err := locate(path)
	if err != nil {
		return nil, "", false, err
	}
	cfg := Default()
	if exists {
		data, err := os.ReadFile(resolved)
		if err != nil {
			return nil, "", false, fmt.Errorf("open config: %w", err)
		}
		if err := toml.Unmarshal(data, &cfg); err != nil {
			return nil, "", false, fmt.Errorf("parse config: %w", err)
		}
	}
	if err := cfg.normalize(); err != nil {
		return nil, "", false, err
	}
	if err := cfg.Validate(); err != nil {
		return nil, "", false, err
	}
	return &cfg, resolved, exists, nil
}

func locate(explicit string) (string, bool, error) {
	if explicit != "" {
		path, err := expandPath(explicit)
		if err != nil {
			return "", false, err
		}
		switch _, err := os.Stat(path); {
		case err == nil:
			return path, true, nil
		case errors.Is(err, fs.ErrNotExist):
			return path, false, nil
		default:
			return "", false, fmt.Errorf("stat config: %w", err)
		}
	}

	userPath, err := expandPath(defaultConfigPath)
	if err != nil {
		return "", false, err
	}
	localPath, err := filepath.Abs(projectConfigName)
	if err != nil {
		return "", false, err
	}
	for _, candidate := range []string{userPath, localPath} {
		if info, err := os.Stat(candidate); err == nil && info.Mode().IsRegular() {
			return candidate, true, nil
		}
	}
	return userPath, false, nil
}

// EnsureDirectories creates the data, output and log directories.
func (c *Config) EnsureDirectories() error {
	for _, dir := range []string{c.Paths.DataDir, c.ProjectsDir(), c.Paths.OutputDir, c.Paths.LogDir} {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("create directory %q: %w", dir, err)
		}
	}
	return nil
}

// ProjectsDir is where per-project working files (extracted audio, dub track, render lock) live.
func (c *Config) ProjectsDir() string {
	return filepath.Join(c.Paths.DataDir, "projects")
}

// DatabasePath returns the sqlite database location.
func (c *Config) DatabasePath() string {
	return filepath.Join(c.Paths.DataDir, "dubstudio.db")
}

// FFmpegBinary returns the ffmpeg executable name used for playback, encoding and extraction.
func (c *Config) FFmpegBinary() string {
	return "ffmpeg"
}

// FFprobeBinary returns the ffprobe executable name used for media inspection.
func (c *Config) FFprobeBinary() string {
	return "ffprobe"
}

// expandPath resolves a leading "~" or "~/" against the home directory and
// makes the result absolute. Empty stays empty.
func expandPath(value string) (string, error) {
	if value == "" {
		return "", nil
	}
	if value == "~" || strings.HasPrefix(value, "~/") {
		home, err := os.UserHomeDir()
		if err != nil {
			return "", fmt.Errorf("resolve home directory: %w", err)
		}
		value = filepath.Join(home, strings.TrimPrefix(value[1:], "/"))
	}
	abs, err := filepath.Abs(value)
	if err != nil {
		return "", fmt.Errorf("resolve absolute path for %q: %w", value, err)
	}
	return abs, nil
}

// ExpandPath applies the config file's path rules to a user-supplied path.
func ExpandPath(value string) (string, error) {
	return expandPath(value)
}

// CreateSample writes the commented sample config to path, creating its
// directory.
func CreateSample(path string) error {
	err := fileutil.WriteAtomic(path, 0o644, func(w io.Writer) error {
		_, err := io.WriteString(w, sampleConfig)
		return err
	})
	if err != nil {
		return fmt.Errorf("write sample config: %w", err)
	}
	return nil
}

// LLMConfig contains the translation endpoint settings in the shape the LLM client expects.
type LLMConfig struct {
	APIKey         string
	BaseURL        string
	Model          string
	Referer        string
	Title          string
	TimeoutSeconds int
}

// GetLLM returns the translation LLM connection settings.
func (c *Config) GetLLM() LLMConfig {
	return LLMConfig{
		APIKey:         strings.TrimSpace(c.Translation.APIKey),
		BaseURL:        strings.TrimSpace(c.Translation.BaseURL),
		Model:          strings.TrimSpace(c.Translation.Model),
		Referer:        strings.TrimSpace(c.Translation.Referer),
		Title:          strings.TrimSpace(c.Translation.Title),
		TimeoutSeconds: c.Translation.TimeoutSeconds,
	}
}

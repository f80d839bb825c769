package preflight

import (
	"context"
	"errors"
	"fmt"
	"net"
	"os"
	"strings"
	"time"

	"golang.org/x/sys/unix"

	"dubstudio/internal/config"
	"dubstudio/internal/deps"
	"dubstudio/internal/services/llm"
)

const llmProbeTimeout = 30 * time.Second

// CheckLLM makes one chat-completions health call against the translation
// model. It never retries.
func CheckLLM(ctx context.Context, name string, cfg config.LLMConfig) Result {
	if cfg.APIKey == "" {
		return Result{Name: name, Detail: "API key missing"}
	}
	probeCtx, cancel := context.WithTimeout(ctx, llmProbeTimeout)
	defer cancel()

	client := llm.NewClient(llm.Config{
		APIKey:  cfg.APIKey,
		BaseURL: cfg.BaseURL,
		Model:   cfg.Model,
		Referer: cfg.Referer,
		Title:   cfg.Title,
	}, llm.WithRetryMaxAttempts(1))
	if err := client.HealthCheck(probeCtx); err != nil {
		return Result{Name: name, Detail: describeProbeFailure(err)}
	}
	return Result{Name: name, Passed: true, Detail: "API reachable"}
}

// CheckHuggingFaceToken passes when a token is set, or when the configured
// transcriber can do without one. Dubbing always needs it.
func CheckHuggingFaceToken(cfg *config.Config) Result {
	result := Result{Name: "Hugging Face token"}
	tr := cfg.Transcription
	switch {
	case strings.TrimSpace(cfg.HuggingFace.APIKey) != "":
		result.Passed, result.Detail = true, "configured"
	case tr.Backend == config.BackendWhisperX && tr.WhisperXVADMethod != "pyannote":
		result.Passed, result.Detail = true, "not needed for whisperx with silero VAD (dubbing still requires it)"
	default:
		result.Detail = "missing (set HF_TOKEN or [huggingface].api_key)"
	}
	return result
}

// CheckDirectoryAccess requires path to be a directory the current user can
// list and write into.
func CheckDirectoryAccess(name, path string) Result {
	problem := func(format string, args ...any) Result {
		return Result{Name: name, Detail: fmt.Sprintf("%s (error: %s)", path, fmt.Sprintf(format, args...))}
	}
	info, err := os.Stat(path)
	switch {
	case errors.Is(err, os.ErrNotExist):
		return problem("does not exist")
	case err != nil:
		return problem("stat: %v", err)
	case !info.IsDir():
		return problem("is not a directory")
	}
	if err := unix.Access(path, unix.R_OK|unix.W_OK|unix.X_OK); err != nil {
		return problem("insufficient permissions: %v", err)
	}
	return Result{Name: name, Passed: true, Detail: path + " (read/write ok)"}
}

// CheckSystemDeps looks up ffmpeg and ffprobe, which every workflow needs,
// and uvx, which only the whisperx backend needs.
func CheckSystemDeps(cfg *config.Config) []deps.Status {
	return deps.CheckBinaries([]deps.Requirement{
		{Name: "FFmpeg", Command: cfg.FFmpegBinary(), Description: "Required for audio extraction, playback and encoding"},
		{Name: "FFprobe", Command: cfg.FFprobeBinary(), Description: "Required for media inspection"},
		{
			Name:        "uvx",
			Command:     "uvx",
			Description: "Required for WhisperX-driven transcription",
			Optional:    cfg.Transcription.Backend != config.BackendWhisperX,
		},
	})
}

func describeProbeFailure(err error) string {
	var netErr net.Error
	switch {
	case errors.Is(err, context.DeadlineExceeded):
		return "health check timed out (LLM API unresponsive)"
	case errors.As(err, &netErr) && netErr.Timeout():
		return "health check timed out (LLM API unreachable)"
	}
	return err.Error()
}

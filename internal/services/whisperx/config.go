package whisperx

import "strings"

// Config selects the WhisperX model and where it runs.
type Config struct {
	Model       string
	CUDAEnabled bool
	// VADMethod is "silero" (default) or "pyannote"; pyannote needs HFToken.
	VADMethod string
	HFToken   string
	// Language hints the spoken language; empty lets WhisperX detect it.
	Language string
}

const (
	// UVXCommand runs WhisperX from an ephemeral uv environment.
	UVXCommand = "uvx"

	DefaultModel      = "large-v3"
	VADMethodSilero   = "silero"
	VADMethodPyannote = "pyannote"
	CPUDevice         = "cpu"
	CUDADevice        = "cuda"

	CUDAIndexURL = "https://download.pytorch.org/whl/cu128"
	pypiIndexURL = "https://pypi.org/simple"
)

// decodeFlags tune WhisperX for short sentence-level caption segments.
var decodeFlags = [][2]string{
	{"--output_format", "json"},
	{"--segment_resolution", "sentence"},
	{"--batch_size", "4"},
	{"--chunk_size", "15"},
	{"--vad_onset", "0.08"},
	{"--vad_offset", "0.07"},
	{"--beam_size", "10"},
	{"--best_of", "10"},
	{"--temperature", "0.0"},
	{"--patience", "1.0"},
}

func (c Config) model() string {
	if m := strings.TrimSpace(c.Model); m != "" {
		return m
	}
	return DefaultModel
}

func (c Config) vadMethod() string {
	if strings.EqualFold(strings.TrimSpace(c.VADMethod), VADMethodPyannote) {
		return VADMethodPyannote
	}
	return VADMethodSilero
}

// indexArgs point uvx at the CUDA torch wheels when a GPU is in use.
func (c Config) indexArgs() []string {
	if c.CUDAEnabled {
		return []string{"--index-url", CUDAIndexURL, "--extra-index-url", pypiIndexURL}
	}
	return []string{"--index-url", pypiIndexURL}
}

func (c Config) deviceArgs() []string {
	if c.CUDAEnabled {
		return []string{"--device", CUDADevice}
	}
	return []string{"--device", CPUDevice, "--compute_type", "float32"}
}

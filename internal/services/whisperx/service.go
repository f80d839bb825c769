package whisperx

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"strings"

	"dubstudio/internal/captions"
	langpkg "dubstudio/internal/language"
	"dubstudio/internal/services"
)

// CommandRunner runs name with args; tests swap it for a fake.
type CommandRunner func(ctx context.Context, name string, args ...string) error

// Service turns a WAV file into caption segments by shelling out to WhisperX.
type Service struct {
	cfg    Config
	runner CommandRunner
}

func NewService(cfg Config) *Service {
	return &Service{cfg: cfg, runner: execRunner}
}

// WithCommandRunner replaces the process runner.
func (s *Service) WithCommandRunner(runner CommandRunner) *Service {
	if runner != nil {
		s.runner = runner
	}
	return s
}

func (s *Service) Model() string { return s.cfg.model() }

func execRunner(ctx context.Context, name string, args ...string) error {
	cmd := exec.CommandContext(ctx, name, args...) //nolint:gosec
	// pyannote checkpoints fail under torch's weights_only default.
	if _, set := os.LookupEnv("TORCH_FORCE_NO_WEIGHTS_ONLY_LOAD"); !set {
		cmd.Env = append(os.Environ(), "TORCH_FORCE_NO_WEIGHTS_ONLY_LOAD=1")
	}
	out, err := cmd.CombinedOutput()
	if err != nil {
		return fmt.Errorf("%s: %w: %s", name, err, strings.TrimSpace(string(out)))
	}
	return nil
}

// Transcribe runs WhisperX on wavPath. Its JSON lands in a scratch directory
// beside the input that is removed before returning.
func (s *Service) Transcribe(ctx context.Context, wavPath string) ([]captions.Segment, error) {
	fail := func(marker error, msg string, err error) error {
		return services.Wrap(marker, "transcription", "whisperx", msg, err)
	}
	if strings.TrimSpace(wavPath) == "" {
		return nil, fail(services.ErrValidation, "audio path required", nil)
	}
	scratch, err := os.MkdirTemp(filepath.Dir(wavPath), "whisperx-")
	if err != nil {
		return nil, fail(services.ErrCollaborator, "create output dir", err)
	}
	defer os.RemoveAll(scratch)

	if err := s.runner(ctx, UVXCommand, s.buildArgs(wavPath, scratch)...); err != nil {
		if ctxErr := services.FromContext(ctx, "transcription"); ctxErr != nil {
			return nil, ctxErr
		}
		return nil, fail(services.ErrCollaborator, "run whisperx", err)
	}

	stem := strings.TrimSuffix(filepath.Base(wavPath), filepath.Ext(wavPath))
	raw, err := LoadSegments(filepath.Join(scratch, stem+".json"))
	if err != nil {
		return nil, fail(services.ErrCollaborator, "read output", err)
	}
	segments := make([]captions.Segment, 0, len(raw))
	for _, r := range raw {
		if text := strings.TrimSpace(r.Text); text != "" {
			segments = append(segments, captions.Segment{Start: r.Start, End: r.End, Text: text})
		}
	}
	return segments, nil
}

func (s *Service) buildArgs(source, outputDir string) []string {
	args := s.cfg.indexArgs()
	args = append(args, "whisperx", source, "--model", s.cfg.model(), "--output_dir", outputDir)
	for _, f := range decodeFlags {
		args = append(args, f[0], f[1])
	}
	vad := s.cfg.vadMethod()
	args = append(args, "--vad_method", vad)
	if vad == VADMethodPyannote && s.cfg.HFToken != "" {
		args = append(args, "--hf_token", s.cfg.HFToken)
	}
	if iso := langpkg.ToISO2(s.cfg.Language); iso != "" {
		args = append(args, "--language", iso)
	}
	return append(args, s.cfg.deviceArgs()...)
}

// Segment is one entry of the "segments" array WhisperX writes.
type Segment struct {
	Text  string  `json:"text"`
	Start float64 `json:"start"`
	End   float64 `json:"end"`
}

// LoadSegments parses a WhisperX JSON result file.
func LoadSegments(jsonPath string) ([]Segment, error) {
	data, err := os.ReadFile(jsonPath)
	if err != nil {
		return nil, err
	}
	var doc struct {
		Segments []Segment `json:"segments"`
	}
	if err := json.Unmarshal(data, &doc); err != nil {
		return nil, fmt.Errorf("parse whisperx json: %w", err)
	}
	return doc.Segments, nil
}

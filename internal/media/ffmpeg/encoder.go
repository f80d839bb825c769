package ffmpeg

import (
	"context"
	"fmt"
	"image"
	"io"
	"log/slog"
	"os"
	"os/exec"
	"path/filepath"
	"strings"
	"sync"

	"dubstudio/internal/logging"
	"dubstudio/internal/render"
)

// Encoder opens ffmpeg encoder sinks.
type Encoder struct {
	Binary string
	Logger *slog.Logger
}

// NewEncoder returns an Encoder using binary (empty means PATH).
func NewEncoder(binary string, logger *slog.Logger) *Encoder {
	return &Encoder{Binary: binary, Logger: logging.NewComponentLogger(logger, "ffmpeg")}
}

// EncodeArgs returns the ffmpeg arguments for a sink writing to output.
func EncodeArgs(spec render.SinkSpec, output string) []string {
	args := []string{
		"-y",
		"-hide_banner",
		"-loglevel", "error",
		"-f", "rawvideo",
		"-pix_fmt", "rgba",
		"-s", fmt.Sprintf("%dx%d", spec.Width, spec.Height),
		"-r", itoa(spec.FPS),
		"-i", "pipe:0",
	}
	hasAudio := spec.Audio.Kind != render.AudioNone && strings.TrimSpace(spec.Audio.Path) != ""
	if hasAudio {
		args = append(args, "-i", spec.Audio.Path)
	}
	args = append(args, "-map", "0:v:0")
	if hasAudio {
		// Optional map: a source whose audio stream vanished still encodes.
		args = append(args, "-map", "1:a:0?")
	}

	args = append(args, "-c:v", spec.Format.VideoCodec, "-pix_fmt", "yuv420p")
	switch spec.Format.VideoCodec {
	case "libvpx-vp9":
		args = append(args, "-b:v", "0", "-crf", "32", "-row-mt", "1")
		if spec.Realtime {
			args = append(args, "-deadline", "realtime", "-cpu-used", "8")
		} else {
			args = append(args, "-deadline", "good", "-cpu-used", "4")
		}
	case "libx264":
		preset := "medium"
		if spec.Realtime {
			preset = "veryfast"
		}
		args = append(args, "-preset", preset, "-crf", "23")
	}

	if hasAudio {
		args = append(args, "-c:a", spec.Format.AudioCodec, "-b:a", "128k", "-af", "apad", "-shortest")
	} else {
		args = append(args, "-an")
	}
	args = append(args, "-f", spec.Format.Container, output)
	return args
}

// OpenSink starts ffmpeg and returns a sink feeding its stdin.
func (e *Encoder) OpenSink(ctx context.Context, spec render.SinkSpec) (render.Sink, error) {
	if spec.Width <= 0 || spec.Height <= 0 || spec.FPS <= 0 {
		return nil, fmt.Errorf("invalid sink spec %dx%d@%d", spec.Width, spec.Height, spec.FPS)
	}
	if strings.TrimSpace(spec.OutputPath) == "" {
		return nil, fmt.Errorf("sink output path required")
	}
	dir := filepath.Dir(spec.OutputPath)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("ensure output dir: %w", err)
	}
	partial := filepath.Join(dir, "."+filepath.Base(spec.OutputPath)+".partial")

	args := EncodeArgs(spec, partial)
	cmd := exec.CommandContext(ctx, binaryOr(e.Binary, "ffmpeg"), args...) //nolint:gosec
	stdin, err := cmd.StdinPipe()
	if err != nil {
		return nil, fmt.Errorf("ffmpeg encode: %w", err)
	}
	stderr := newTailBuffer(8192)
	cmd.Stderr = stderr
	if err := cmd.Start(); err != nil {
		return nil, fmt.Errorf("ffmpeg encode: start: %w", err)
	}
	logger := e.Logger
	if logger == nil {
		logger = logging.NewNop()
	}
	logger.Debug("encoder started",
		logging.String("output", spec.OutputPath),
		logging.String("video_codec", spec.Format.VideoCodec),
		logging.String("audio_codec", spec.Format.AudioCodec),
		logging.String("audio", spec.Audio.Kind.String()),
	)
	return &sink{
		cmd:     cmd,
		stdin:   stdin,
		stderr:  stderr,
		partial: partial,
		output:  spec.OutputPath,
		w:       spec.Width,
		h:       spec.Height,
	}, nil
}

type sink struct {
	mu      sync.Mutex
	cmd     *exec.Cmd
	stdin   io.WriteCloser
	stderr  *tailBuffer
	partial string
	output  string
	w, h    int
	done    bool
}

func (s *sink) WriteFrame(_ context.Context, frame *image.RGBA) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.done {
		return fmt.Errorf("ffmpeg encode: sink closed")
	}
	b := frame.Bounds()
	if b.Dx() < s.w || b.Dy() < s.h {
		return fmt.Errorf("ffmpeg encode: frame %v smaller than %dx%d", b, s.w, s.h)
	}
	rowBytes := s.w * 4
	if frame.Stride == rowBytes && b.Min == (image.Point{}) && b.Dy() == s.h {
		return s.write(frame.Pix[:rowBytes*s.h])
	}
	for y := 0; y < s.h; y++ {
		start := frame.PixOffset(b.Min.X, b.Min.Y+y)
		if err := s.write(frame.Pix[start : start+rowBytes]); err != nil {
			return err
		}
	}
	return nil
}

func (s *sink) write(p []byte) error {
	if _, err := s.stdin.Write(p); err != nil {
		return fmt.Errorf("ffmpeg encode: write frame: %w: %s", err, s.stderr.String())
	}
	return nil
}

func (s *sink) Finalize(context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.done {
		return fmt.Errorf("ffmpeg encode: sink already closed")
	}
	s.done = true
	closeErr := s.stdin.Close()
	waitErr := s.cmd.Wait()
	if waitErr != nil || closeErr != nil {
		_ = os.Remove(s.partial)
		if waitErr == nil {
			waitErr = closeErr
		}
		return fmt.Errorf("ffmpeg encode: %w: %s", waitErr, s.stderr.String())
	}
	if err := os.Rename(s.partial, s.output); err != nil {
		_ = os.Remove(s.partial)
		return fmt.Errorf("ffmpeg encode: move output: %w", err)
	}
	return nil
}

func (s *sink) Abort() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.done {
		return nil
	}
	s.done = true
	if s.cmd.Process != nil {
		_ = s.cmd.Process.Kill()
	}
	_ = s.stdin.Close()
	_ = s.cmd.Wait()
	if err := os.Remove(s.partial); err != nil && !os.IsNotExist(err) {
		return fmt.Errorf("ffmpeg encode: remove partial output: %w", err)
	}
	return nil
}

package ffmpeg

import (
	"context"
	"errors"
	"fmt"
	"image"
	"io"
	"math"
	"os/exec"
	"strconv"
	"strings"
	"sync"

	"dubstudio/internal/media/ffprobe"
	"dubstudio/internal/render"
)

// Source is a video file decoded by ffmpeg.
type Source struct {
	Path    string
	FFmpeg  string
	FFprobe string
}

// NewSource returns a Source using the given binaries (empty means PATH).
func NewSource(path, ffmpegBinary, ffprobeBinary string) *Source {
	return &Source{Path: path, FFmpeg: ffmpegBinary, FFprobe: ffprobeBinary}
}

// Probe reads duration, natural size, and audio presence.
func (s *Source) Probe(ctx context.Context) (render.MediaInfo, error) {
	result, err := ffprobe.Inspect(ctx, s.FFprobe, s.Path)
	if err != nil {
		return render.MediaInfo{}, err
	}
	if _, ok := result.VideoStream(); !ok {
		return render.MediaInfo{}, fmt.Errorf("%s: no video stream", s.Path)
	}
	w, h := result.Dimensions()
	duration := result.DurationSeconds()
	if math.IsNaN(duration) || duration < 0 {
		duration = 0
	}
	return render.MediaInfo{
		Path:     s.Path,
		Duration: duration,
		Width:    w,
		Height:   h,
		HasAudio: result.HasAudio(),
	}, nil
}

// PlaybackArgs returns the ffmpeg arguments that decode path to raw RGBA
// frames of the requested size and rate on stdout.
func PlaybackArgs(path string, spec render.PlaybackSpec) []string {
	filter := fmt.Sprintf("fps=%d,scale=%d:%d:flags=bilinear", spec.FPS, spec.Width, spec.Height)
	return []string{
		"-hide_banner",
		"-loglevel", "error",
		"-nostdin",
		"-i", path,
		"-map", "0:v:0",
		"-an",
		"-sn",
		"-dn",
		"-vf", filter,
		"-pix_fmt", "rgba",
		"-f", "rawvideo",
		"pipe:1",
	}
}

// Play starts decoding from time zero.
func (s *Source) Play(ctx context.Context, spec render.PlaybackSpec) (render.Playback, error) {
	if spec.Width <= 0 || spec.Height <= 0 || spec.FPS <= 0 {
		return nil, fmt.Errorf("invalid playback spec %+v", spec)
	}
	cmd := exec.CommandContext(ctx, binaryOr(s.FFmpeg, "ffmpeg"), PlaybackArgs(s.Path, spec)...) //nolint:gosec
	stdout, err := cmd.StdoutPipe()
	if err != nil {
		return nil, fmt.Errorf("ffmpeg playback: %w", err)
	}
	stderr := newTailBuffer(4096)
	cmd.Stderr = stderr
	if err := cmd.Start(); err != nil {
		return nil, fmt.Errorf("ffmpeg playback: start: %w", err)
	}
	return &playback{
		cmd:       cmd,
		stdout:    stdout,
		stderr:    stderr,
		w:         spec.Width,
		h:         spec.Height,
		fps:       spec.FPS,
	}, nil
}

type playback struct {
	cmd       *exec.Cmd
	stdout    io.Reader
	stderr    *tailBuffer
	w, h, fps int
	index     int

	closeOnce sync.Once
	closeErr  error
}

func (p *playback) Next(ctx context.Context) (render.Frame, error) {
	if err := ctx.Err(); err != nil {
		return render.Frame{}, err
	}
	img := image.NewRGBA(image.Rect(0, 0, p.w, p.h))
	if _, err := io.ReadFull(p.stdout, img.Pix); err != nil {
		if errors.Is(err, io.EOF) {
			if waitErr := p.wait(); waitErr != nil {
				return render.Frame{}, waitErr
			}
			return render.Frame{}, io.EOF
		}
		if errors.Is(err, io.ErrUnexpectedEOF) {
			return render.Frame{}, fmt.Errorf("ffmpeg playback: truncated frame %d: %s", p.index, p.stderr.String())
		}
		return render.Frame{}, fmt.Errorf("ffmpeg playback: read frame %d: %w", p.index, err)
	}
	t := float64(p.index) / float64(p.fps)
	p.index++
	return render.Frame{Image: img, Time: t}, nil
}

func (p *playback) wait() error {
	p.closeOnce.Do(func() {
		if err := p.cmd.Wait(); err != nil {
			p.closeErr = fmt.Errorf("ffmpeg playback: %w: %s", err, p.stderr.String())
		}
	})
	return p.closeErr
}

func (p *playback) Close() error {
	p.closeOnce.Do(func() {
		if p.cmd.Process != nil {
			_ = p.cmd.Process.Kill()
		}
		_ = p.cmd.Wait()
	})
	return nil
}

func binaryOr(value, fallback string) string {
	if v := strings.TrimSpace(value); v != "" {
		return v
	}
	return fallback
}

// tailBuffer keeps the last limit bytes written to it.
type tailBuffer struct {
	mu    sync.Mutex
	limit int
	buf   []byte
}

func newTailBuffer(limit int) *tailBuffer {
	return &tailBuffer{limit: limit}
}

func (b *tailBuffer) Write(p []byte) (int, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.buf = append(b.buf, p...)
	if over := len(b.buf) - b.limit; over > 0 {
		b.buf = b.buf[over:]
	}
	return len(p), nil
}

func (b *tailBuffer) String() string {
	b.mu.Lock()
	defer b.mu.Unlock()
	return strings.TrimSpace(string(b.buf))
}

func itoa(v int) string { return strconv.Itoa(v) }

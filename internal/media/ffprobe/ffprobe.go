package ffprobe

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"math"
	"os/exec"
	"strconv"
	"strings"
)

// Result represents the parsed output from an ffprobe inspection.
type Result struct {
	Streams []Stream `json:"streams"`
	Format  Format   `json:"format"`
	raw     []byte
}

// Stream describes a single stream in the media container.
type Stream struct {
	Index        int    `json:"index"`
	CodecName    string `json:"codec_name"`
	CodecType    string `json:"codec_type"`
	Duration     string `json:"duration"`
	Width        int    `json:"width"`
	Height       int    `json:"height"`
	AvgFrameRate string `json:"avg_frame_rate"`
	SampleRate   string `json:"sample_rate"`
	Channels     int    `json:"channels"`
}

// Format captures container-level metadata extracted by ffprobe.
type Format struct {
	Filename   string `json:"filename"`
	NBStreams  int    `json:"nb_streams"`
	Duration   string `json:"duration"`
	Size       string `json:"size"`
	FormatName string `json:"format_name"`
}

// Inspect executes ffprobe against the provided path and decodes the JSON response.
func Inspect(ctx context.Context, binary string, path string) (Result, error) {
	binary = strings.TrimSpace(binary)
	if binary == "" {
		binary = "ffprobe"
	}
	path = strings.TrimSpace(path)
	if path == "" {
		return Result{}, errors.New("ffprobe inspect: empty path")
	}

	cmd := exec.CommandContext(ctx, binary, "-v", "error", "-hide_banner", "-show_format", "-show_streams", "-of", "json", "--", path)
	output, err := cmd.Output()
	if err != nil {
		var exitErr *exec.ExitError
		if errors.As(err, &exitErr) {
			return Result{}, fmt.Errorf("ffprobe inspect: %w: %s", err, strings.TrimSpace(string(exitErr.Stderr)))
		}
		return Result{}, fmt.Errorf("ffprobe inspect: %w", err)
	}
	return Parse(output)
}

// Parse decodes an ffprobe JSON document.
func Parse(data []byte) (Result, error) {
	var result Result
	if err := json.Unmarshal(data, &result); err != nil {
		return Result{}, fmt.Errorf("ffprobe parse: %w", err)
	}
	result.raw = append([]byte(nil), data...)
	return result, nil
}

// RawJSON returns the raw ffprobe JSON payload.
func (r Result) RawJSON() []byte {
	return append([]byte(nil), r.raw...)
}

// VideoStream returns the first video stream.
func (r Result) VideoStream() (Stream, bool) {
	return r.firstOfType("video")
}

// AudioStream returns the first audio stream.
func (r Result) AudioStream() (Stream, bool) {
	return r.firstOfType("audio")
}

// HasAudio reports whether the container carries at least one audio stream.
func (r Result) HasAudio() bool {
	_, ok := r.AudioStream()
	return ok
}

// Dimensions returns the natural size of the first video stream, or zeros
// when no video stream reports one.
func (r Result) Dimensions() (int, int) {
	stream, ok := r.VideoStream()
	if !ok || stream.Width <= 0 || stream.Height <= 0 {
		return 0, 0
	}
	return stream.Width, stream.Height
}

// FrameRate returns the average frame rate of the first video stream, or 0
// when unavailable.
func (r Result) FrameRate() float64 {
	stream, ok := r.VideoStream()
	if !ok {
		return 0
	}
	num, den, found := strings.Cut(strings.TrimSpace(stream.AvgFrameRate), "/")
	if !found {
		v := parseFloat(num)
		if math.IsNaN(v) {
			return 0
		}
		return v
	}
	n, d := parseFloat(num), parseFloat(den)
	if math.IsNaN(n) || math.IsNaN(d) || d == 0 {
		return 0
	}
	return n / d
}

// DurationSeconds returns the container duration in seconds, falling back to
// the video stream's duration. Returns 0 when neither is known and NaN when a
// value is present but unparsable.
func (r Result) DurationSeconds() float64 {
	if d := parseFloat(r.Format.Duration); d != 0 {
		return d
	}
	if stream, ok := r.VideoStream(); ok {
		return parseFloat(stream.Duration)
	}
	return 0
}

// SizeBytes returns the reported container size in bytes, or 0 when unavailable.
func (r Result) SizeBytes() int64 {
	size := parseFloat(r.Format.Size)
	if math.IsNaN(size) || size < 0 {
		return 0
	}
	return int64(size)
}

func (r Result) firstOfType(kind string) (Stream, bool) {
	for _, stream := range r.Streams {
		if strings.EqualFold(stream.CodecType, kind) {
			return stream, true
		}
	}
	return Stream{}, false
}

func parseFloat(value string) float64 {
	cleaned := strings.TrimSpace(value)
	if cleaned == "" {
		return 0
	}
	if parsed, err := strconv.ParseFloat(cleaned, 64); err == nil {
		return parsed
	}
	return math.NaN()
}

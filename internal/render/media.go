package render

import (
	"context"
	"image"

	"dubstudio/internal/captions"
)

// MediaInfo is what Priming needs to know about the source.
type MediaInfo struct {
	Path     string
	Duration float64
	Width    int
	Height   int
	HasAudio bool
}

// Frame is one decoded video frame and its playback time in seconds.
type Frame struct {
	Image image.Image
	Time  float64
}

// PlaybackSpec asks the source for frames at a fixed size and rate.
type PlaybackSpec struct {
	Width  int
	Height int
	FPS    int
}

// Media is a video source.
type Media interface {
	Probe(ctx context.Context) (MediaInfo, error)
	Play(ctx context.Context, spec PlaybackSpec) (Playback, error)
}

// Playback yields frames in non-decreasing time order. Next returns io.EOF
// after the last frame.
type Playback interface {
	Next(ctx context.Context) (Frame, error)
	Close() error
}

// SinkSpec fixes the encoder parameters for the whole job.
type SinkSpec struct {
	OutputPath string
	Width      int
	Height     int
	FPS        int
	Format     Format
	Audio      AudioRoute
	Realtime   bool
}

// Sink consumes composited frames. Finalize flushes the encoder and moves
// the result to SinkSpec.OutputPath; Abort discards any partial output.
// Abort after Finalize is a no-op.
type Sink interface {
	WriteFrame(ctx context.Context, frame *image.RGBA) error
	Finalize(ctx context.Context) error
	Abort() error
}

// SinkOpener starts an encoder.
type SinkOpener interface {
	OpenSink(ctx context.Context, spec SinkSpec) (Sink, error)
}

// Compositor draws a frame and optional caption into the frame target.
type Compositor interface {
	Composite(dst *image.RGBA, frame image.Image, active *captions.Caption, w, h int) error
}

package render

import (
	"context"
	"errors"
	"image"
	"image/color"
	"io"
	"os"
	"sync"

	"dubstudio/internal/captions"
)

type fakeMedia struct {
	info     MediaInfo
	frames   int
	fps      int
	probeErr error
	playErr  error
	onFrame  func(index int, t float64)
}

func (m *fakeMedia) Probe(context.Context) (MediaInfo, error) {
	if m.probeErr != nil {
		return MediaInfo{}, m.probeErr
	}
	return m.info, nil
}

func (m *fakeMedia) Play(_ context.Context, spec PlaybackSpec) (Playback, error) {
	if m.playErr != nil {
		return nil, m.playErr
	}
	fps := m.fps
	if fps <= 0 {
		fps = spec.FPS
	}
	return &fakePlayback{media: m, fps: fps, w: spec.Width, h: spec.Height}, nil
}

type fakePlayback struct {
	media  *fakeMedia
	fps    int
	w, h   int
	index  int
	closed bool
}

func (p *fakePlayback) Next(context.Context) (Frame, error) {
	if p.closed {
		return Frame{}, errors.New("playback closed")
	}
	if p.index >= p.media.frames {
		return Frame{}, io.EOF
	}
	t := float64(p.index) / float64(p.fps)
	img := image.NewRGBA(image.Rect(0, 0, p.w, p.h))
	shade := uint8(p.index % 256)
	for i := 0; i < len(img.Pix); i += 4 {
		img.Pix[i], img.Pix[i+1], img.Pix[i+2], img.Pix[i+3] = shade, shade, shade, 255
	}
	if p.media.onFrame != nil {
		p.media.onFrame(p.index, t)
	}
	p.index++
	return Frame{Image: img, Time: t}, nil
}

func (p *fakePlayback) Close() error {
	p.closed = true
	return nil
}

type fakeSinkOpener struct {
	mu      sync.Mutex
	openErr error
	failAt  int
	onOpen  func(SinkSpec)
	sinks   []*fakeSink
}

func (o *fakeSinkOpener) OpenSink(_ context.Context, spec SinkSpec) (Sink, error) {
	if o.onOpen != nil {
		o.onOpen(spec)
	}
	if o.openErr != nil {
		return nil, o.openErr
	}
	s := &fakeSink{spec: spec, failAt: o.failAt}
	o.mu.Lock()
	o.sinks = append(o.sinks, s)
	o.mu.Unlock()
	return s, nil
}

func (o *fakeSinkOpener) last() *fakeSink {
	o.mu.Lock()
	defer o.mu.Unlock()
	if len(o.sinks) == 0 {
		return nil
	}
	return o.sinks[len(o.sinks)-1]
}

type fakeSink struct {
	spec      SinkSpec
	failAt    int
	frames    int
	first     color.RGBA
	finalized bool
	aborted   bool
}

func (s *fakeSink) WriteFrame(_ context.Context, frame *image.RGBA) error {
	if s.failAt > 0 && s.frames+1 == s.failAt {
		return errors.New("encoder pipe closed")
	}
	if s.frames == 0 {
		s.first = frame.RGBAAt(0, 0)
	}
	s.frames++
	return nil
}

func (s *fakeSink) Finalize(context.Context) error {
	s.finalized = true
	return os.WriteFile(s.spec.OutputPath, []byte("webm"), 0o644)
}

func (s *fakeSink) Abort() error {
	if s.finalized {
		return nil
	}
	s.aborted = true
	return nil
}

// recordingCompositor copies the frame and records the caption text drawn
// for every frame.
type recordingCompositor struct {
	mu    sync.Mutex
	texts []string
	err   error
}

func (c *recordingCompositor) Composite(dst *image.RGBA, frame image.Image, active *captions.Caption, w, h int) error {
	if c.err != nil {
		return c.err
	}
	if src, ok := frame.(*image.RGBA); ok {
		copy(dst.Pix, src.Pix)
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	if active == nil {
		c.texts = append(c.texts, "")
	} else {
		c.texts = append(c.texts, active.Text)
	}
	return nil
}

func (c *recordingCompositor) drawn() []string {
	c.mu.Lock()
	defer c.mu.Unlock()
	return append([]string(nil), c.texts...)
}

type progressLog struct {
	mu     sync.Mutex
	values []float64
}

func (l *progressLog) add(v float64) {
	l.mu.Lock()
	l.values = append(l.values, v)
	l.mu.Unlock()
}

func (l *progressLog) all() []float64 {
	l.mu.Lock()
	defer l.mu.Unlock()
	return append([]float64(nil), l.values...)
}

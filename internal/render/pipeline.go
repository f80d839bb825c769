package render

import (
	"context"
	"errors"
	"fmt"
	"image"
	"io"
	"log/slog"
	"os"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"

	"dubstudio/internal/captions"
	"dubstudio/internal/logging"
	"dubstudio/internal/media/audio"
	"dubstudio/internal/services"
)

// Pipeline defaults.
const (
	DefaultFPS    = 30
	DefaultWidth  = 1280
	DefaultHeight = 720

	maxFramePixels = 8192 * 8192
)

// Options are the per-pipeline render settings. They are fixed for every job
// the pipeline runs.
type Options struct {
	FPS           int
	DefaultWidth  int
	DefaultHeight int
	Format        Format
	OutputDir     string
	TempDir       string
	ExportPrefix  string
	Realtime      bool
}

func (o Options) normalized() Options {
	if o.FPS <= 0 {
		o.FPS = DefaultFPS
	}
	if o.DefaultWidth <= 0 || o.DefaultHeight <= 0 {
		o.DefaultWidth, o.DefaultHeight = DefaultWidth, DefaultHeight
	}
	if o.Format.Container == "" {
		o.Format = DefaultFormat
	}
	if strings.TrimSpace(o.OutputDir) == "" {
		o.OutputDir = "."
	}
	if strings.TrimSpace(o.TempDir) == "" {
		o.TempDir = os.TempDir()
	}
	if strings.TrimSpace(o.ExportPrefix) == "" {
		o.ExportPrefix = DefaultExportPrefix
	}
	return o
}

// Option customises a Pipeline.
type Option func(*Pipeline)

// WithScheduler replaces the default FrameClock scheduler.
func WithScheduler(s Scheduler) Option {
	return func(p *Pipeline) {
		if s != nil {
			p.scheduler = s
		}
	}
}

// WithResources shares a handle tracker with the caller.
func WithResources(r *Resources) Option {
	return func(p *Pipeline) {
		if r != nil {
			p.resources = r
		}
	}
}

// WithLogger sets the pipeline logger.
func WithLogger(logger *slog.Logger) Option {
	return func(p *Pipeline) {
		if logger != nil {
			p.logger = logger
		}
	}
}

// WithClock overrides the time source used for artifact names.
func WithClock(now func() time.Time) Option {
	return func(p *Pipeline) {
		if now != nil {
			p.now = now
		}
	}
}

// Pipeline renders caption-burned videos.
type Pipeline struct {
	opts       Options
	compositor Compositor
	sinks      SinkOpener
	scheduler  Scheduler
	resources  *Resources
	logger     *slog.Logger
	now        func() time.Time
}

// NewPipeline builds a pipeline around a compositor and an encoder opener.
func NewPipeline(opts Options, compositor Compositor, sinks SinkOpener, options ...Option) *Pipeline {
	p := &Pipeline{
		opts:       opts.normalized(),
		compositor: compositor,
		sinks:      sinks,
		scheduler:  FrameClock{},
		resources:  NewResources(),
		logger:     logging.NewNop(),
		now:        time.Now,
	}
	for _, opt := range options {
		opt(p)
	}
	p.logger = logging.NewComponentLogger(p.logger, "render")
	return p
}

// Resources returns the pipeline's handle tracker.
func (p *Pipeline) Resources() *Resources { return p.resources }

// CaptionSource supplies the caption snapshot taken during Priming.
type CaptionSource interface {
	Snapshot() captions.Timeline
}

// Request describes one render.
type Request struct {
	JobID    string
	Media    Media
	Captions CaptionSource
	Override *audio.Decoded
	// Progress receives non-decreasing values in [0,1]. It is never called
	// after the job is cancelled or fails.
	Progress func(float64)
	// OnState observes every state transition.
	OnState func(State)
}

// Result summarises a finished job.
type Result struct {
	JobID    string
	State    State
	Progress float64
	Frames   int
	Artifact *Artifact
}

// Render runs one job to a terminal state. A cancelled context yields
// StateCancelled and an error matching services.ErrCancelled; an expired
// deadline and every other error yield StateFailed. All resources are
// released before Render returns.
func (p *Pipeline) Render(ctx context.Context, req Request) (Result, error) {
	j := &job{id: strings.TrimSpace(req.JobID), state: StateIdle, onState: req.OnState}
	if j.id == "" {
		j.id = uuid.NewString()
	}
	ctx = services.WithJobID(ctx, j.id)
	ctx = services.WithStage(ctx, "rendering")
	logger := logging.WithContext(ctx, p.logger)
	progress := newProgressReporter(req.Progress)

	started := time.Now()
	artifact, frames, err := p.run(ctx, j, req, progress, logger)
	result := Result{JobID: j.id, Frames: frames}

	if err == nil {
		progress.complete()
		j.transition(StateCompleted)
		result.Artifact = artifact
		logger.Info("render completed",
			logging.String(logging.FieldEventType, "render_completed"),
			logging.String("artifact", artifact.Path),
			logging.Int("frames", frames),
			logging.Duration("elapsed", time.Since(started)),
		)
	} else {
		progress.close()
		if services.Outcome(err) == services.ResultCancelled {
			j.transition(StateCancelled)
			logger.Info("render cancelled",
				logging.String(logging.FieldEventType, "render_cancelled"),
				logging.Int("frames", frames),
				logging.Float64("progress", progress.value()),
			)
		} else {
			j.transition(StateFailed)
			logging.ErrorWithContext(logger, "render failed", "render_failed",
				logging.Error(err),
				logging.Int("frames", frames),
				logging.String(logging.FieldErrorHint, "check ffmpeg availability and source media"),
			)
		}
	}
	result.State = j.current()
	result.Progress = progress.value()
	return result, err
}

func (p *Pipeline) run(ctx context.Context, j *job, req Request, progress *progressReporter, logger *slog.Logger) (*Artifact, int, error) {
	if req.Media == nil || req.Captions == nil {
		return nil, 0, services.Wrap(services.ErrValidation, "render", "request", "media and captions are required", nil)
	}
	if p.compositor == nil || p.sinks == nil {
		return nil, 0, services.Wrap(services.ErrConfiguration, "render", "pipeline", "compositor and sink opener are required", nil)
	}
	if err := services.FromContext(ctx, "render"); err != nil {
		return nil, 0, err
	}
	j.transition(StatePriming)

	info, err := req.Media.Probe(ctx)
	if err != nil {
		return nil, 0, p.classify(ctx, services.Wrap(services.ErrMediaDecode, "render", "probe", "", err))
	}
	w, h := frameSize(info, p.opts)
	if w != info.Width || h != info.Height {
		logger.Debug("frame size adjusted",
			logging.Int("source_width", info.Width),
			logging.Int("source_height", info.Height),
			logging.Int("width", w),
			logging.Int("height", h),
		)
	}

	target, releaseTarget, err := p.acquireFrameTarget(w, h)
	if err != nil {
		return nil, 0, err
	}
	defer releaseTarget()

	snapshot := req.Captions.Snapshot()

	signal := SelectAudioSource(info, req.Override)
	route, releaseRoute, err := openAudioRoute(signal, p.opts.TempDir)
	if err != nil {
		return nil, 0, err
	}
	releaseRouteHandle := p.resources.Acquire(ResourceAudioRoute)
	defer func() {
		releaseRoute()
		releaseRouteHandle()
	}()

	outPath := artifactPath(p.opts.OutputDir, p.opts.ExportPrefix, p.opts.Format, p.now())
	spec := SinkSpec{
		OutputPath: outPath,
		Width:      w,
		Height:     h,
		FPS:        p.opts.FPS,
		Format:     p.opts.Format,
		Audio:      route,
		Realtime:   p.opts.Realtime,
	}
	sink, err := p.sinks.OpenSink(ctx, spec)
	if err != nil {
		return nil, 0, p.classify(ctx, services.Wrap(services.ErrRenderResource, "render", "open sink", "", err))
	}
	releaseSinkHandle := p.resources.Acquire(ResourceSink)
	finalized := false
	defer func() {
		if !finalized {
			if abortErr := sink.Abort(); abortErr != nil {
				logger.Debug("sink abort failed", logging.Error(abortErr))
			}
		}
		releaseSinkHandle()
	}()

	logger.Info("render primed",
		logging.String(logging.FieldEventType, "render_primed"),
		logging.Int("width", w),
		logging.Int("height", h),
		logging.Float64("duration_seconds", info.Duration),
		logging.Int("captions", snapshot.Len()),
		logging.String("audio", route.Kind.String()),
		logging.String("container", p.opts.Format.Container),
	)

	playback, err := req.Media.Play(ctx, PlaybackSpec{Width: w, Height: h, FPS: p.opts.FPS})
	if err != nil {
		return nil, 0, p.classify(ctx, services.Wrap(services.ErrMediaDecode, "render", "start playback", "", err))
	}
	releasePlaybackHandle := p.resources.Acquire(ResourcePlayback)
	defer func() {
		_ = playback.Close()
		releasePlaybackHandle()
	}()

	j.transition(StateCapturing)
	sampler := logging.NewProgressSampler(5)
	frames := 0
	step := func() (bool, error) {
		frame, err := playback.Next(ctx)
		if errors.Is(err, io.EOF) {
			return true, nil
		}
		if err != nil {
			return false, services.Wrap(services.ErrMediaDecode, "render", "next frame", fmt.Sprintf("frame %d", frames), err)
		}
		var active *captions.Caption
		if c, ok := snapshot.Active(frame.Time); ok {
			active = &c
		}
		if err := p.compositor.Composite(target, frame.Image, active, w, h); err != nil {
			return false, services.Wrap(services.ErrRenderResource, "render", "composite", fmt.Sprintf("frame %d", frames), err)
		}
		if err := sink.WriteFrame(ctx, target); err != nil {
			return false, services.Wrap(services.ErrRenderResource, "render", "write frame", fmt.Sprintf("frame %d", frames), err)
		}
		frames++
		if info.Duration > 0 {
			progress.report(frame.Time / info.Duration)
		}
		if pct := progress.value() * 100; sampler.ShouldLog(pct, "capturing") {
			logger.Debug("render progress", logging.Percent(progress.value()), logging.Int("render_frames", frames))
		}
		return false, nil
	}
	if err := p.scheduler.Run(ctx, p.opts.FPS, step); err != nil {
		return nil, frames, p.classify(ctx, err)
	}
	if frames == 0 {
		return nil, 0, services.Wrap(services.ErrMediaDecode, "render", "capture", "source produced no frames", nil)
	}

	if err := sink.Finalize(ctx); err != nil {
		return nil, frames, p.classify(ctx, services.Wrap(services.ErrRenderResource, "render", "finalize", "", err))
	}
	finalized = true

	stat, err := os.Stat(outPath)
	if err != nil {
		return nil, frames, services.Wrap(services.ErrRenderResource, "render", "finalize", "artifact missing after encode", err)
	}
	return &Artifact{
		Path:     outPath,
		Name:     stat.Name(),
		MIMEType: p.opts.Format.MIMEType,
		Size:     stat.Size(),
		Width:    w,
		Height:   h,
		Duration: info.Duration,
		Audio:    route.Kind,
	}, frames, nil
}

func (p *Pipeline) acquireFrameTarget(w, h int) (*image.RGBA, func(), error) {
	if w <= 0 || h <= 0 || w*h > maxFramePixels {
		return nil, func() {}, services.Wrap(services.ErrRenderResource, "render", "frame target", fmt.Sprintf("unsupported size %dx%d", w, h), nil)
	}
	target := image.NewRGBA(image.Rect(0, 0, w, h))
	return target, p.resources.Acquire(ResourceFrameTarget), nil
}

// classify prefers the context's own outcome over whatever error a blocked
// call returned after the context ended.
func (p *Pipeline) classify(ctx context.Context, err error) error {
	if ctxErr := services.FromContext(ctx, "render"); ctxErr != nil {
		return ctxErr
	}
	return err
}

// frameSize returns the source's natural size, or the configured default
// when it is unknown. Odd dimensions are rounded down for yuv420 encoders.
func frameSize(info MediaInfo, opts Options) (int, int) {
	w, h := info.Width, info.Height
	if w <= 0 || h <= 0 {
		w, h = opts.DefaultWidth, opts.DefaultHeight
	}
	w &^= 1
	h &^= 1
	if w <= 0 || h <= 0 {
		return opts.DefaultWidth, opts.DefaultHeight
	}
	return w, h
}

type job struct {
	mu      sync.Mutex
	id      string
	state   State
	onState func(State)
}

func (j *job) transition(next State) {
	j.mu.Lock()
	if !j.state.canTransition(next) {
		j.mu.Unlock()
		return
	}
	j.state = next
	fn := j.onState
	j.mu.Unlock()
	if fn != nil {
		fn(next)
	}
}

func (j *job) current() State {
	j.mu.Lock()
	defer j.mu.Unlock()
	return j.state
}

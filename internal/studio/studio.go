package studio

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strconv"
	"sync"
	"time"

	"dubstudio/internal/captions"
	"dubstudio/internal/config"
	"dubstudio/internal/logging"
	"dubstudio/internal/media/audio"
	"dubstudio/internal/media/ffmpeg"
	"dubstudio/internal/notifications"
	"dubstudio/internal/render"
	"dubstudio/internal/services"
	"dubstudio/internal/services/drapto"
	"dubstudio/internal/services/huggingface"
	"dubstudio/internal/services/llm"
	"dubstudio/internal/services/whisperx"
	"dubstudio/internal/store"
)

// Project working files.
const (
	AudioFileName = "audio.wav"
	DubFileName   = "dub.wav"
	LockFileName  = "render.lock"
)

// ErrRenderBusy is returned when the project already has a render in progress.
var ErrRenderBusy = errors.New("render already in progress for project")

// Transcriber turns extracted speech audio into timed segments.
type Transcriber interface {
	Transcribe(ctx context.Context, wavPath string) ([]captions.Segment, error)
}

// Translator rewrites caption text into another language. The result must
// keep every id and interval of the input.
type Translator interface {
	Translate(ctx context.Context, caps []captions.Caption, targetLanguage string) ([]captions.Caption, error)
}

// Synthesizer produces speech audio bytes for text.
type Synthesizer interface {
	Synthesize(ctx context.Context, text string) ([]byte, error)
}

// AudioExtractor writes a transcription-ready WAV of source's audio to dest.
type AudioExtractor func(ctx context.Context, source, dest string) error

// MediaOpener returns the video source for a project's file.
type MediaOpener func(path string) render.Media

// Studio runs the localization workflow for stored projects.
type Studio struct {
	cfg   *config.Config
	store *store.Store

	transcriber Transcriber
	translator  Translator
	synthesizer Synthesizer
	archiver    drapto.Archiver
	extract     AudioExtractor
	openMedia   MediaOpener
	sinks       render.SinkOpener
	compositor  render.Compositor
	scheduler   render.Scheduler
	resources   *render.Resources
	notifier    notifications.Service
	logger      *slog.Logger
	now         func() time.Time

	mu   sync.Mutex
	live map[int64]*captions.Store
}

// Option customizes a Studio.
type Option func(*Studio)

// WithTranscriber replaces the configured transcription backend.
func WithTranscriber(t Transcriber) Option { return func(s *Studio) { s.transcriber = t } }

// WithTranslator replaces the LLM translator.
func WithTranslator(t Translator) Option { return func(s *Studio) { s.translator = t } }

// WithSynthesizer replaces the speech synthesis backend.
func WithSynthesizer(syn Synthesizer) Option { return func(s *Studio) { s.synthesizer = syn } }

// WithArchiver replaces the archive encoder.
func WithArchiver(a drapto.Archiver) Option { return func(s *Studio) { s.archiver = a } }

// WithAudioExtractor replaces the ffmpeg audio extraction step.
func WithAudioExtractor(fn AudioExtractor) Option { return func(s *Studio) { s.extract = fn } }

// WithMediaOpener replaces the ffmpeg video source.
func WithMediaOpener(fn MediaOpener) Option { return func(s *Studio) { s.openMedia = fn } }

// WithSinkOpener replaces the ffmpeg encoder.
func WithSinkOpener(o render.SinkOpener) Option { return func(s *Studio) { s.sinks = o } }

// WithCompositor replaces the caption overlay compositor.
func WithCompositor(c render.Compositor) Option { return func(s *Studio) { s.compositor = c } }

// WithScheduler forces a frame scheduler for every render.
func WithScheduler(sch render.Scheduler) Option { return func(s *Studio) { s.scheduler = sch } }

// WithResources shares a render handle tracker with the caller.
func WithResources(r *render.Resources) Option { return func(s *Studio) { s.resources = r } }

// WithNotifier replaces the ntfy notification service.
func WithNotifier(n notifications.Service) Option { return func(s *Studio) { s.notifier = n } }

// WithLogger sets the studio logger.
func WithLogger(logger *slog.Logger) Option {
	return func(s *Studio) {
		if logger != nil {
			s.logger = logger
		}
	}
}

// WithClock overrides the time source used for artifact names.
func WithClock(now func() time.Time) Option { return func(s *Studio) { s.now = now } }

// New wires a Studio from configuration. Collaborators not supplied through
// options are built from cfg; the overlay compositor is created on first render.
func New(cfg *config.Config, st *store.Store, opts ...Option) (*Studio, error) {
	if cfg == nil {
		return nil, services.Wrap(services.ErrConfiguration, "studio", "new", "config is required", nil)
	}
	if st == nil {
		return nil, services.Wrap(services.ErrConfiguration, "studio", "new", "store is required", nil)
	}
	s := &Studio{
		cfg:       cfg,
		store:     st,
		resources: render.NewResources(),
		logger:    logging.NewNop(),
		now:       time.Now,
		live:      make(map[int64]*captions.Store),
	}
	for _, opt := range opts {
		opt(s)
	}
	s.logger = logging.NewComponentLogger(s.logger, "studio")
	s.applyDefaults()
	return s, nil
}

func (s *Studio) applyDefaults() {
	cfg := s.cfg
	hf := huggingface.NewClient(huggingface.Config{
		APIKey:         cfg.HuggingFace.APIKey,
		BaseURL:        cfg.HuggingFace.BaseURL,
		TimeoutSeconds: cfg.HuggingFace.TimeoutSeconds,
	})
	if s.transcriber == nil {
		if cfg.Transcription.Backend == config.BackendWhisperX {
			s.transcriber = whisperx.NewService(whisperx.Config{
				Model:       cfg.Transcription.WhisperXModel,
				CUDAEnabled: cfg.Transcription.WhisperXCUDAEnabled,
				VADMethod:   cfg.Transcription.WhisperXVADMethod,
				HFToken:     cfg.HuggingFace.APIKey,
			})
		} else {
			s.transcriber = huggingface.NewTranscriber(hf, cfg.Transcription.HFModel)
		}
	}
	if s.translator == nil {
		llmCfg := cfg.GetLLM()
		s.translator = llm.NewClient(llm.Config{
			APIKey:         llmCfg.APIKey,
			BaseURL:        llmCfg.BaseURL,
			Model:          llmCfg.Model,
			Referer:        llmCfg.Referer,
			Title:          llmCfg.Title,
			TimeoutSeconds: llmCfg.TimeoutSeconds,
		})
	}
	if s.synthesizer == nil {
		s.synthesizer = huggingface.NewSynthesizer(hf, cfg.Synthesis.HFModel)
	}
	if s.archiver == nil {
		s.archiver = drapto.NewLibrary()
	}
	if s.extract == nil {
		ffmpegBin := cfg.FFmpegBinary()
		s.extract = func(ctx context.Context, source, dest string) error {
			return audio.Extract(ctx, ffmpegBin, source, dest)
		}
	}
	if s.openMedia == nil {
		ffmpegBin, ffprobeBin := cfg.FFmpegBinary(), cfg.FFprobeBinary()
		s.openMedia = func(path string) render.Media {
			return ffmpeg.NewSource(path, ffmpegBin, ffprobeBin)
		}
	}
	if s.sinks == nil {
		s.sinks = ffmpeg.NewEncoder(cfg.FFmpegBinary(), s.logger)
	}
	if s.notifier == nil {
		s.notifier = notifications.NewService(cfg)
	}
}

// Resources returns the render handle tracker.
func (s *Studio) Resources() *render.Resources { return s.resources }

// ProjectDir returns the working directory for a project.
func (s *Studio) ProjectDir(id int64) string {
	return filepath.Join(s.cfg.ProjectsDir(), strconv.FormatInt(id, 10))
}

func (s *Studio) ensureProjectDir(id int64) (string, error) {
	dir := s.ProjectDir(id)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return "", fmt.Errorf("ensure project dir: %w", err)
	}
	return dir, nil
}

// captionStore returns the live caption set for a project, loading it from
// the database on first use.
func (s *Studio) captionStore(ctx context.Context, id int64) (*captions.Store, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if cs, ok := s.live[id]; ok {
		return cs, nil
	}
	caps, err := s.store.LoadCaptions(ctx, id)
	if err != nil {
		return nil, err
	}
	cs := captions.NewStore(nil)
	if err := cs.Load(caps); err != nil {
		return nil, err
	}
	s.live[id] = cs
	return cs, nil
}

func (s *Studio) project(ctx context.Context, id int64) (*store.Project, error) {
	project, err := s.store.GetProject(ctx, id)
	if err != nil {
		return nil, err
	}
	if project == nil {
		return nil, services.Wrap(services.ErrNotFound, "studio", "lookup project", fmt.Sprintf("project #%d", id), nil)
	}
	return project, nil
}

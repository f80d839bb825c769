package studio

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"github.com/gofrs/flock"
	"github.com/google/uuid"

	"dubstudio/internal/logging"
	"dubstudio/internal/media/audio"
	"dubstudio/internal/notifications"
	"dubstudio/internal/overlay"
	"dubstudio/internal/render"
	"dubstudio/internal/services"
	"dubstudio/internal/services/drapto"
	"dubstudio/internal/store"
)

// RenderOptions select per-render behaviour.
type RenderOptions struct {
	// UseDub routes the project's dub track instead of the source audio.
	UseDub bool
	// Fast renders as quickly as the encoder allows instead of in real time.
	Fast bool
	// OutputDir overrides the configured export directory.
	OutputDir string
	// Progress receives non-decreasing values in [0,1].
	Progress func(float64)
	// OnState observes render state transitions.
	OnState func(render.State)
	// OnArchive observes archive encode progress when archiving is enabled.
	OnArchive func(drapto.ProgressUpdate)
}

// RenderOutcome is a finished render and its optional archive copy.
type RenderOutcome struct {
	render.Result
	ArchivePath string
}

// Render burns the project's captions into its video and writes one export
// file. Only one render per project may run at a time; a second caller gets
// ErrRenderBusy. Edits made while rendering do not affect the output.
func (s *Studio) Render(ctx context.Context, id int64, opts RenderOptions) (RenderOutcome, error) {
	var outcome RenderOutcome
	project, err := s.project(ctx, id)
	if err != nil {
		return outcome, err
	}
	dir, err := s.ensureProjectDir(id)
	if err != nil {
		return outcome, err
	}

	lock := flock.New(filepath.Join(dir, LockFileName))
	locked, err := lock.TryLock()
	if err != nil {
		return outcome, services.Wrap(services.ErrRenderResource, "rendering", "lock", "acquire render lock", err)
	}
	if !locked {
		return outcome, ErrRenderBusy
	}
	defer func() { _ = lock.Unlock() }()

	var override *audio.Decoded
	if opts.UseDub {
		if strings.TrimSpace(project.DubPath) == "" {
			return outcome, services.Wrap(services.ErrValidation, "rendering", "dub", "project has no dub track; run dub first", nil)
		}
		override, err = audio.ReadWAVFile(project.DubPath)
		if err != nil {
			return outcome, err
		}
	}
	cs, err := s.captionStore(ctx, id)
	if err != nil {
		return outcome, err
	}
	pipeline, release, err := s.pipeline(opts)
	if err != nil {
		return outcome, err
	}
	defer release()

	jobID := uuid.NewString()
	record, err := s.store.StartRender(ctx, id, jobID)
	if err != nil {
		return outcome, err
	}

	err = s.runStage(ctx, project, stage{
		name:       "rendering",
		processing: store.StatusRendering,
		run: func(ctx context.Context, logger *slog.Logger) error {
			result, err := pipeline.Render(ctx, render.Request{
				JobID:    jobID,
				Media:    s.openMedia(project.SourcePath),
				Captions: cs,
				Override: override,
				Progress: opts.Progress,
				OnState:  opts.OnState,
			})
			outcome.Result = result
			s.finishRecord(ctx, logger, record, result, err)
			if err != nil {
				return err
			}
			if s.cfg.Render.ArchiveEncode && result.Artifact != nil {
				outcome.ArchivePath = s.archive(ctx, logger, result.Artifact.Path, opts.OnArchive)
			}
			return nil
		},
		done: func() (notifications.Event, notifications.Payload) {
			payload := notifications.Payload{"project": project.Name}
			if a := outcome.Artifact; a != nil {
				payload["file"] = a.Path
			}
			return notifications.EventRenderCompleted, payload
		},
	})
	if err != nil && record.FinishedAt == nil {
		// The stage never reached the pipeline.
		s.finishRecord(ctx, s.logger, record, render.Result{JobID: jobID, State: render.StateFailed}, err)
	}
	if services.Outcome(err) == services.ResultCancelled {
		s.notify(ctx, s.logger, notifications.EventRenderCancelled, notifications.Payload{
			"project":  project.Name,
			"progress": fmt.Sprintf("%.0f%%", outcome.Progress*100),
		})
	}
	return outcome, err
}

func (s *Studio) pipeline(opts RenderOptions) (*render.Pipeline, func(), error) {
	format, err := render.LookupFormat(s.cfg.Render.Container, s.cfg.Render.VideoCodec, s.cfg.Render.AudioCodec)
	if err != nil {
		return nil, nil, services.Wrap(services.ErrConfiguration, "rendering", "format", "", err)
	}
	outputDir := strings.TrimSpace(opts.OutputDir)
	if outputDir == "" {
		outputDir = s.cfg.Paths.OutputDir
	}
	if err := os.MkdirAll(outputDir, 0o755); err != nil {
		return nil, nil, services.Wrap(services.ErrRenderResource, "rendering", "output dir", outputDir, err)
	}

	release := func() {}
	compositor := s.compositor
	if compositor == nil {
		c, err := overlay.NewCompositor()
		if err != nil {
			return nil, nil, services.Wrap(services.ErrRenderResource, "rendering", "compositor", "load caption font", err)
		}
		compositor = c
		release = func() { _ = c.Close() }
	}

	realtime := s.cfg.Render.Realtime && !opts.Fast
	scheduler := s.scheduler
	if scheduler == nil {
		if realtime {
			scheduler = render.FrameClock{}
		} else {
			scheduler = render.Immediate{}
		}
	}
	p := render.NewPipeline(render.Options{
		FPS:           s.cfg.Render.FPS,
		DefaultWidth:  s.cfg.Render.DefaultWidth,
		DefaultHeight: s.cfg.Render.DefaultHeight,
		Format:        format,
		OutputDir:     outputDir,
		TempDir:       s.cfg.Paths.DataDir,
		ExportPrefix:  s.cfg.Render.ExportPrefix,
		Realtime:      realtime,
	}, compositor, s.sinks,
		render.WithScheduler(scheduler),
		render.WithResources(s.resources),
		render.WithLogger(s.logger),
		render.WithClock(s.now),
	)
	return p, release, nil
}

// finishRecord writes the terminal state of a render to its history row.
// It uses a detached context so cancelled renders are still recorded.
func (s *Studio) finishRecord(ctx context.Context, logger *slog.Logger, record *store.Render, result render.Result, err error) {
	record.Progress = result.Progress
	record.Frames = result.Frames
	switch services.Outcome(err) {
	case services.ResultCompleted:
		record.State = store.RenderCompleted
	case services.ResultCancelled:
		record.State = store.RenderCancelled
	default:
		record.State = store.RenderFailed
	}
	if err != nil {
		record.ErrorMessage = err.Error()
	}
	if a := result.Artifact; a != nil {
		record.ArtifactPath = a.Path
		record.MIMEType = a.MIMEType
		record.SizeBytes = a.Size
		record.Audio = a.Audio.String()
	}
	if ferr := s.store.FinishRender(context.WithoutCancel(ctx), record); ferr != nil {
		logger.Error("failed to record render result", logging.Error(ferr))
	}
}

// archive makes the optional archive copy. Failure is logged, not returned:
// the export itself already succeeded.
func (s *Studio) archive(ctx context.Context, logger *slog.Logger, artifactPath string, onProgress func(drapto.ProgressUpdate)) string {
	archiveDir := filepath.Join(filepath.Dir(artifactPath), "archive")
	if err := os.MkdirAll(archiveDir, 0o755); err != nil {
		logging.WarnWithContext(logger, "archive encode skipped", "archive_skipped",
			logging.Error(err),
			logging.String(logging.FieldImpact, "no archive copy was written"),
		)
		return ""
	}
	sampler := logging.NewProgressSampler(10)
	path, err := s.archiver.Archive(ctx, artifactPath, archiveDir, func(u drapto.ProgressUpdate) {
		if onProgress != nil {
			onProgress(u)
		}
		if u.Stage != "" && sampler.ShouldLog(u.Percent, u.Stage) {
			logger.Debug("archive progress", logging.String("archive_stage", u.Stage), logging.Float64(logging.FieldProgressPercent, u.Percent))
		}
	})
	if err != nil {
		logging.WarnWithContext(logger, "archive encode failed", "archive_failed",
			logging.Error(err),
			logging.String(logging.FieldImpact, "export is available without an archive copy"),
			logging.String(logging.FieldErrorHint, "check drapto and ffmpeg installation"),
		)
		return ""
	}
	logger.Info("archive written", logging.String("archive_path", path))
	return path
}

package studio

import (
	"context"
	"os"
	"path/filepath"
	"strings"

	"dubstudio/internal/captions"
	"dubstudio/internal/logging"
	"dubstudio/internal/services"
	"dubstudio/internal/store"
)

// AddProject registers a source video. The file must exist.
func (s *Studio) AddProject(ctx context.Context, name, sourcePath string) (*store.Project, error) {
	sourcePath = strings.TrimSpace(sourcePath)
	if sourcePath == "" {
		return nil, services.Wrap(services.ErrValidation, "project", "add", "source path required", nil)
	}
	abs, err := filepath.Abs(sourcePath)
	if err != nil {
		return nil, services.Wrap(services.ErrValidation, "project", "add", "resolve source path", err)
	}
	info, err := os.Stat(abs)
	if err != nil {
		return nil, services.Wrap(services.ErrValidation, "project", "add", "source video not readable", err)
	}
	if info.IsDir() {
		return nil, services.Wrap(services.ErrValidation, "project", "add", abs+" is a directory", nil)
	}
	project, err := s.store.CreateProject(ctx, name, abs)
	if err != nil {
		return nil, err
	}
	if _, err := s.ensureProjectDir(project.ID); err != nil {
		return nil, err
	}
	logging.WithContext(services.WithProjectID(ctx, project.ID), s.logger).Info("project added",
		logging.String(logging.FieldEventType, "project_added"),
		logging.String("source_file", abs),
	)
	return project, nil
}

// Project returns one project or a not-found error.
func (s *Studio) Project(ctx context.Context, id int64) (*store.Project, error) {
	return s.project(ctx, id)
}

// Projects lists every project, newest first.
func (s *Studio) Projects(ctx context.Context) ([]*store.Project, error) {
	return s.store.ListProjects(ctx)
}

// Captions returns the project's current captions in stored order.
func (s *Studio) Captions(ctx context.Context, id int64) ([]captions.Caption, error) {
	if _, err := s.project(ctx, id); err != nil {
		return nil, err
	}
	cs, err := s.captionStore(ctx, id)
	if err != nil {
		return nil, err
	}
	return cs.Captions(), nil
}

// EditCaption replaces the text of one caption and persists the set. A
// render already in progress keeps the text it snapshotted.
func (s *Studio) EditCaption(ctx context.Context, id int64, captionID, text string) error {
	if _, err := s.project(ctx, id); err != nil {
		return err
	}
	cs, err := s.captionStore(ctx, id)
	if err != nil {
		return err
	}
	before := cs.Captions()
	if err := cs.UpdateText(strings.TrimSpace(captionID), strings.TrimSpace(text)); err != nil {
		return err
	}
	if err := s.store.SaveCaptions(ctx, id, cs.Captions()); err != nil {
		// Keep memory and database in agreement.
		_ = cs.Load(before)
		return err
	}
	logging.WithContext(services.WithProjectID(ctx, id), s.logger).Debug("caption edited",
		logging.String("caption_id", captionID),
	)
	return nil
}

// Renders lists a project's render history, newest first.
func (s *Studio) Renders(ctx context.Context, id int64) ([]*store.Render, error) {
	if _, err := s.project(ctx, id); err != nil {
		return nil, err
	}
	return s.store.ListRenders(ctx, id)
}

// Summary aggregates project and render counts.
func (s *Studio) Summary(ctx context.Context) (store.Summary, error) {
	return s.store.Summarize(ctx)
}

// Recover marks work left in flight by a previous process as failed.
func (s *Studio) Recover(ctx context.Context) (int64, error) {
	n, err := s.store.ResetInterrupted(ctx)
	if err != nil {
		return 0, err
	}
	if n > 0 {
		logging.WarnWithContext(s.logger, "reset interrupted projects", "projects_reset",
			logging.Int64("count", n),
			logging.String(logging.FieldImpact, "interrupted work must be re-run"),
			logging.String(logging.FieldErrorHint, "re-run the failed step for each project"),
		)
	}
	return n, nil
}

func (s *Studio) replaceLive(id int64, caps []captions.Caption) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.live[id] = captions.NewStore(caps)
}

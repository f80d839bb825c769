package studio

import (
	"context"
	"fmt"
	"io"
	"path/filepath"
	"strings"

	"dubstudio/internal/captions"
	"dubstudio/internal/fileutil"
	"dubstudio/internal/logging"
	"dubstudio/internal/services"
	"dubstudio/internal/textutil"
)

// ExportSRT writes the project's captions as SubRip. An empty dest writes
// "<project>[.<lang>].srt" into the configured output directory.
func (s *Studio) ExportSRT(ctx context.Context, id int64, dest string) (string, error) {
	project, err := s.project(ctx, id)
	if err != nil {
		return "", err
	}
	cs, err := s.captionStore(ctx, id)
	if err != nil {
		return "", err
	}
	if cs.Len() == 0 {
		return "", services.Wrap(services.ErrValidation, "export", "captions", "no captions; transcribe first", nil)
	}
	dest = strings.TrimSpace(dest)
	if dest == "" {
		dest = filepath.Join(s.cfg.Paths.OutputDir, textutil.CaptionFileName(project.Name, project.TargetLanguage, "srt"))
	}
	caps := cs.Captions()
	if err := fileutil.WriteAtomic(dest, 0o644, func(w io.Writer) error {
		return captions.WriteSRT(w, caps)
	}); err != nil {
		return "", fmt.Errorf("write srt %s: %w", dest, err)
	}
	logging.WithContext(services.WithProjectID(ctx, id), s.logger).Info("captions exported",
		logging.String("export_path", dest),
		logging.Int("caption_count", len(caps)),
	)
	return dest, nil
}

// ImportSRT replaces the project's captions with a SubRip document. Like a
// new transcription it discards any translation marker and dub track.
func (s *Studio) ImportSRT(ctx context.Context, id int64, r io.Reader) (captions.IngestReport, error) {
	var report captions.IngestReport
	project, err := s.project(ctx, id)
	if err != nil {
		return report, err
	}
	segments, err := captions.ParseSRT(r)
	if err != nil {
		return report, services.Wrap(services.ErrValidation, "import", "parse srt", "", err)
	}
	cs := captions.NewStore(nil)
	report = cs.Replace(segments)
	caps := cs.Captions()
	if err := s.store.SaveCaptions(ctx, id, caps); err != nil {
		return report, err
	}
	s.replaceLive(id, caps)
	if err := s.discardDub(ctx, project, true); err != nil {
		return report, err
	}
	return report, nil
}

// ExportDub copies the project's dub track to dest and verifies the copy.
func (s *Studio) ExportDub(ctx context.Context, id int64, dest string) error {
	project, err := s.project(ctx, id)
	if err != nil {
		return err
	}
	if strings.TrimSpace(project.DubPath) == "" {
		return services.Wrap(services.ErrValidation, "export", "dub", "project has no dub track; run dub first", nil)
	}
	if err := fileutil.CopyFileVerified(project.DubPath, dest); err != nil {
		return fmt.Errorf("copy dub to %s: %w", dest, err)
	}
	return nil
}

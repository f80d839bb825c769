package studio

import (
	"context"
	"errors"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"time"

	"dubstudio/internal/captions"
	"dubstudio/internal/language"
	"dubstudio/internal/logging"
	"dubstudio/internal/media/audio"
	"dubstudio/internal/notifications"
	"dubstudio/internal/services"
	"dubstudio/internal/store"
	"dubstudio/internal/textutil"
)

// TranscribeResult reports what a transcription admitted.
type TranscribeResult struct {
	Captions int
	Report   captions.IngestReport
}

// Transcribe extracts the project's audio, runs speech recognition and
// replaces the caption set. Any previous translation and dub are discarded.
func (s *Studio) Transcribe(ctx context.Context, id int64) (TranscribeResult, error) {
	var result TranscribeResult
	project, err := s.project(ctx, id)
	if err != nil {
		return result, err
	}
	dir, err := s.ensureProjectDir(id)
	if err != nil {
		return result, err
	}
	wavPath := filepath.Join(dir, AudioFileName)

	err = s.runStage(ctx, project, stage{
		name:       "extracting_audio",
		processing: store.StatusExtractingAudio,
		run: func(ctx context.Context, logger *slog.Logger) error {
			return s.extract(ctx, project.SourcePath, wavPath)
		},
	})
	if err != nil {
		return result, err
	}

	err = s.runStage(ctx, project, stage{
		name:       "transcribing",
		processing: store.StatusTranscribing,
		run: func(ctx context.Context, logger *slog.Logger) error {
			started := time.Now()
			segments, err := s.transcriber.Transcribe(ctx, wavPath)
			if err != nil {
				return err
			}
			cs := captions.NewStore(nil)
			result.Report = cs.Replace(segments)
			caps := cs.Captions()
			if err := s.store.SaveCaptions(ctx, project.ID, caps); err != nil {
				return err
			}
			s.replaceLive(project.ID, caps)
			result.Captions = len(caps)
			if err := s.discardDub(ctx, project, true); err != nil {
				return err
			}
			if result.Report.Dropped > 0 {
				logging.WarnWithContext(logger, "transcription segments dropped", "segments_dropped",
					logging.Int("dropped", result.Report.Dropped),
					logging.String(logging.FieldImpact, "some speech has no caption"),
					logging.String(logging.FieldErrorHint, "review captions around the gaps"),
				)
			}
			logger.Info("transcription stored",
				logging.Int("caption_count", result.Captions),
				logging.Int("clamped", result.Report.Clamped),
				logging.Duration("elapsed", time.Since(started)),
			)
			return nil
		},
		done: func() (notifications.Event, notifications.Payload) {
			return notifications.EventTranscriptionCompleted, notifications.Payload{
				"project":  project.Name,
				"captions": result.Captions,
			}
		},
	})
	return result, err
}

// Translate rewrites every caption into the target language. The caption
// set changes only if the whole translation succeeds; the previous dub is
// discarded because it no longer matches the text.
func (s *Studio) Translate(ctx context.Context, id int64, targetCode string) (language.Target, error) {
	target, ok := language.Lookup(targetCode)
	if !ok {
		return language.Target{}, services.Wrap(services.ErrValidation, "translation", "target", "unsupported language "+targetCode, nil)
	}
	project, err := s.project(ctx, id)
	if err != nil {
		return target, err
	}
	cs, err := s.captionStore(ctx, id)
	if err != nil {
		return target, err
	}
	if cs.Len() == 0 {
		return target, services.Wrap(services.ErrValidation, "translation", "captions", "no captions; transcribe first", nil)
	}

	err = s.runStage(ctx, project, stage{
		name:       "translating",
		processing: store.StatusTranslating,
		run: func(ctx context.Context, logger *slog.Logger) error {
			current := cs.Captions()
			translated, err := s.translator.Translate(ctx, current, target.Name)
			if err != nil {
				return err
			}
			// Validate against a copy first so the live set is untouched on mismatch.
			staged := captions.NewStore(current)
			if err := staged.ApplyTranslation(translated); err != nil {
				return err
			}
			caps := staged.Captions()
			if err := s.store.SaveCaptions(ctx, project.ID, caps); err != nil {
				return err
			}
			if err := cs.ApplyTranslation(translated); err != nil {
				return err
			}
			project.TargetLanguage = target.Code
			if err := s.discardDub(ctx, project, false); err != nil {
				return err
			}
			if unchanged := unchangedCount(current, caps); unchanged > 0 {
				logging.WarnWithContext(logger, "captions left untranslated", "translation_unchanged",
					logging.Int("unchanged", unchanged),
					logging.Int("caption_count", len(caps)),
					logging.String(logging.FieldImpact, "some captions still show source text"),
					logging.String(logging.FieldErrorHint, "edit the listed captions or re-run translate"),
				)
			}
			logger.Info("captions translated",
				logging.String("target_language", target.Code),
				logging.Int("caption_count", len(caps)),
			)
			return nil
		},
		done: func() (notifications.Event, notifications.Payload) {
			return notifications.EventTranslationCompleted, notifications.Payload{
				"project":  project.Name,
				"language": target.Name,
			}
		},
	})
	return target, err
}

func unchangedCount(source, translated []captions.Caption) int {
	before := make([]string, len(source))
	after := make([]string, len(translated))
	for i, c := range source {
		before[i] = c.Text
	}
	for i, c := range translated {
		after[i] = c.Text
	}
	return textutil.CountUnchanged(before, after)
}

// DubResult describes a synthesized dub track.
type DubResult struct {
	Path     string
	Duration time.Duration
}

// Dub synthesizes speech for the joined caption text and stores it as the
// project's dub track.
func (s *Studio) Dub(ctx context.Context, id int64) (DubResult, error) {
	var result DubResult
	project, err := s.project(ctx, id)
	if err != nil {
		return result, err
	}
	cs, err := s.captionStore(ctx, id)
	if err != nil {
		return result, err
	}
	text := dubScript(cs.Captions())
	if text == "" {
		return result, services.Wrap(services.ErrValidation, "synthesis", "script", "no caption text to speak", nil)
	}
	dir, err := s.ensureProjectDir(id)
	if err != nil {
		return result, err
	}

	err = s.runStage(ctx, project, stage{
		name:       "generating_speech",
		processing: store.StatusGeneratingSpeech,
		run: func(ctx context.Context, logger *slog.Logger) error {
			data, err := s.synthesizer.Synthesize(ctx, text)
			if err != nil {
				return err
			}
			decoded, err := audio.Decode(data, audio.PCMFormat{
				SampleRate: s.cfg.Synthesis.PCMSampleRate,
				Channels:   s.cfg.Synthesis.PCMChannels,
			})
			if err != nil {
				return err
			}
			path := filepath.Join(dir, DubFileName)
			if err := audio.WriteWAVFile(path, decoded); err != nil {
				return services.Wrap(services.ErrMediaDecode, "synthesis", "write dub", path, err)
			}
			project.DubPath = path
			if err := s.store.UpdateProject(ctx, project); err != nil {
				return err
			}
			result = DubResult{Path: path, Duration: decoded.Duration()}
			logger.Info("dub track saved",
				logging.String("dub_path", path),
				logging.Duration("dub_duration", result.Duration),
				logging.Int64("payload_size_bytes", int64(len(data))),
			)
			return nil
		},
		done: func() (notifications.Event, notifications.Payload) {
			return notifications.EventDubCompleted, notifications.Payload{
				"project":  project.Name,
				"duration": result.Duration.Round(100 * time.Millisecond),
			}
		},
	})
	return result, err
}

// dubScript joins caption texts into one utterance, sentence-separated.
func dubScript(caps []captions.Caption) string {
	parts := make([]string, 0, len(caps))
	for _, c := range caps {
		if text := strings.TrimSpace(c.Text); text != "" {
			parts = append(parts, text)
		}
	}
	return strings.Join(parts, ". ")
}

// discardDub removes the dub track (and with clearLanguage the translation
// marker) after the caption text changed underneath it.
func (s *Studio) discardDub(ctx context.Context, project *store.Project, clearLanguage bool) error {
	if project.DubPath != "" {
		if err := os.Remove(project.DubPath); err != nil && !errors.Is(err, os.ErrNotExist) {
			return err
		}
		project.DubPath = ""
	}
	if clearLanguage {
		project.TargetLanguage = ""
	}
	return s.store.UpdateProject(ctx, project)
}

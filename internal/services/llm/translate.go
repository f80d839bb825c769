package llm

import (
	"context"
	"encoding/json"
	"fmt"
	"math"
	"strings"

	"dubstudio/internal/captions"
	"dubstudio/internal/services"
)

const (
	defaultBatchSize = 80
	// intervalTolerance absorbs float formatting drift in echoed timestamps.
	intervalTolerance = 1e-3
)

// TranslationPrompt instructs the model to rewrite caption text only.
const TranslationPrompt = `You translate video captions.

You receive JSON: {"target_language": "...", "captions": [{"id": "...", "start": 0.0, "end": 0.0, "text": "..."}]}.
Translate every caption's text into the target language.

Rules:
- Return every caption exactly once, in the same order, with the same id, start and end.
- Change only the text. Keep it short enough to read in the caption's time window.
- Do not merge, split, add or drop captions.
- Respond with JSON only: {"captions": [{"id": "...", "start": 0.0, "end": 0.0, "text": "..."}]}`

type translationCaption struct {
	ID    string   `json:"id"`
	Start *float64 `json:"start,omitempty"`
	End   *float64 `json:"end,omitempty"`
	Text  string   `json:"text"`
}

type translationPayload struct {
	TargetLanguage string               `json:"target_language,omitempty"`
	Captions       []translationCaption `json:"captions"`
}

// Translate returns caps with text translated into targetLanguage. The
// result has the same ids and intervals in the same order; any deviation by
// the model fails the whole call.
func (c *Client) Translate(ctx context.Context, caps []captions.Caption, targetLanguage string) ([]captions.Caption, error) {
	targetLanguage = strings.TrimSpace(targetLanguage)
	if targetLanguage == "" {
		return nil, services.Wrap(services.ErrValidation, "translation", "translate captions", "target language required", nil)
	}
	if !c.Configured() {
		return nil, services.Wrap(services.ErrConfiguration, "translation", "translate captions", "llm api key not configured", nil)
	}
	out := make([]captions.Caption, 0, len(caps))
	for start := 0; start < len(caps); start += c.batchSize {
		end := min(start+c.batchSize, len(caps))
		translated, err := c.translateBatch(ctx, caps[start:end], targetLanguage)
		if err != nil {
			return nil, services.Wrap(
				services.ErrCollaborator,
				"translation",
				"translate captions",
				fmt.Sprintf("batch %d-%d", start, end-1),
				err,
			)
		}
		out = append(out, translated...)
	}
	return out, nil
}

func (c *Client) translateBatch(ctx context.Context, batch []captions.Caption, targetLanguage string) ([]captions.Caption, error) {
	request := translationPayload{TargetLanguage: targetLanguage, Captions: make([]translationCaption, len(batch))}
	for i, cp := range batch {
		request.Captions[i] = translationCaption{ID: cp.ID, Start: &cp.Start, End: &cp.End, Text: cp.Text}
	}
	encoded, err := json.Marshal(request)
	if err != nil {
		return nil, fmt.Errorf("encode captions: %w", err)
	}
	content, err := c.complete(ctx, "llm translate", TranslationPrompt, string(encoded))
	if err != nil {
		return nil, err
	}
	var response translationPayload
	if err := DecodeLLMJSON(content, &response); err != nil {
		return nil, fmt.Errorf("parse payload: %w", err)
	}
	return mergeTranslation(batch, response.Captions)
}

// mergeTranslation pairs translated text with the source captions, keeping the
// source timing.
func mergeTranslation(source []captions.Caption, translated []translationCaption) ([]captions.Caption, error) {
	if len(translated) != len(source) {
		return nil, fmt.Errorf("expected %d captions, got %d", len(source), len(translated))
	}
	out := make([]captions.Caption, len(source))
	for i, src := range source {
		got := translated[i]
		if strings.TrimSpace(got.ID) != src.ID {
			return nil, fmt.Errorf("caption %d: expected id %q, got %q", i, src.ID, got.ID)
		}
		if got.Start != nil && math.Abs(*got.Start-src.Start) > intervalTolerance {
			return nil, fmt.Errorf("caption %q: start changed from %.3f to %.3f", src.ID, src.Start, *got.Start)
		}
		if got.End != nil && math.Abs(*got.End-src.End) > intervalTolerance {
			return nil, fmt.Errorf("caption %q: end changed from %.3f to %.3f", src.ID, src.End, *got.End)
		}
		text := strings.TrimSpace(got.Text)
		if text == "" && strings.TrimSpace(src.Text) != "" {
			return nil, fmt.Errorf("caption %q: empty translation", src.ID)
		}
		out[i] = captions.Caption{ID: src.ID, Start: src.Start, End: src.End, Text: text}
	}
	return out, nil
}

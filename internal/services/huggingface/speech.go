package huggingface

import (
	"context"
	"encoding/json"
	"strings"

	"dubstudio/internal/services"
)

// DefaultSpeechModel is the MMS text-to-speech checkpoint.
const DefaultSpeechModel = "facebook/mms-tts-eng"

// Synthesizer generates speech audio on the inference API.
type Synthesizer struct {
	client *Client
	model  string
}

// NewSynthesizer returns a synthesizer for model (DefaultSpeechModel when empty).
func NewSynthesizer(client *Client, model string) *Synthesizer {
	model = strings.TrimSpace(model)
	if model == "" {
		model = DefaultSpeechModel
	}
	return &Synthesizer{client: client, model: model}
}

// Synthesize returns the audio bytes the model produces for text. The
// payload is usually a WAV or FLAC container; callers decode it with
// audio.Decode, which falls back to raw PCM.
func (s *Synthesizer) Synthesize(ctx context.Context, text string) ([]byte, error) {
	text = strings.TrimSpace(text)
	if text == "" {
		return nil, services.Wrap(services.ErrValidation, "synthesis", "huggingface", "text required", nil)
	}
	if !s.client.Configured() {
		return nil, services.Wrap(services.ErrConfiguration, "synthesis", "huggingface", "hugging face token not configured", nil)
	}
	payload, err := json.Marshal(map[string]string{"inputs": text})
	if err != nil {
		return nil, services.Wrap(services.ErrValidation, "synthesis", "huggingface", "encode request", err)
	}
	audio, err := s.client.post(ctx, s.model, "application/json", payload)
	if err != nil {
		return nil, wrapCallError(ctx, "synthesis", err)
	}
	if len(audio) == 0 {
		return nil, services.Wrap(services.ErrCollaborator, "synthesis", "huggingface", "empty audio response", nil)
	}
	return audio, nil
}

package huggingface

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"os"
	"strings"

	"dubstudio/internal/captions"
	"dubstudio/internal/services"
)

// DefaultTranscriptionModel is the Whisper checkpoint used for speech recognition.
const DefaultTranscriptionModel = "openai/whisper-large-v3"

// Fallback used when the model returns text without timestamped chunks.
const (
	FallbackEnd  = 10.0
	FallbackText = "No transcription available."
	// missingEndSpan is the duration assumed for a chunk without an end timestamp.
	missingEndSpan = 2.0
)

// Transcriber runs automatic speech recognition on the inference API.
type Transcriber struct {
	client *Client
	model  string
}

// NewTranscriber returns a transcriber for model (DefaultTranscriptionModel when empty).
func NewTranscriber(client *Client, model string) *Transcriber {
	model = strings.TrimSpace(model)
	if model == "" {
		model = DefaultTranscriptionModel
	}
	return &Transcriber{client: client, model: model}
}

type asrChunk struct {
	Timestamp []*float64 `json:"timestamp"`
	Text      string     `json:"text"`
}

type asrResponse struct {
	Text   string     `json:"text"`
	Chunks []asrChunk `json:"chunks"`
}

// Transcribe uploads the WAV at wavPath and returns timestamped segments.
func (t *Transcriber) Transcribe(ctx context.Context, wavPath string) ([]captions.Segment, error) {
	if !t.client.Configured() {
		return nil, services.Wrap(services.ErrConfiguration, "transcription", "huggingface", "hugging face token not configured", nil)
	}
	audio, err := os.ReadFile(wavPath)
	if err != nil {
		return nil, services.Wrap(services.ErrValidation, "transcription", "huggingface", "read audio", err)
	}
	body, err := t.client.post(ctx, t.model, "audio/wav", audio)
	if err != nil {
		return nil, wrapCallError(ctx, "transcription", err)
	}
	var parsed asrResponse
	if err := json.Unmarshal(body, &parsed); err != nil {
		return nil, services.Wrap(services.ErrCollaborator, "transcription", "huggingface", "decode response", err)
	}
	return chunkSegments(parsed), nil
}

// chunkSegments maps chunks to segments. A missing start reads as 0 and a
// missing end as start plus two seconds. Without chunks the whole text
// becomes one [0, 10] segment.
func chunkSegments(resp asrResponse) []captions.Segment {
	if len(resp.Chunks) == 0 {
		text := strings.TrimSpace(resp.Text)
		if text == "" {
			text = FallbackText
		}
		return []captions.Segment{{Start: 0, End: FallbackEnd, Text: text}}
	}
	out := make([]captions.Segment, 0, len(resp.Chunks))
	for _, chunk := range resp.Chunks {
		var start, end float64
		if len(chunk.Timestamp) > 0 && chunk.Timestamp[0] != nil {
			start = *chunk.Timestamp[0]
		}
		if len(chunk.Timestamp) > 1 && chunk.Timestamp[1] != nil {
			end = *chunk.Timestamp[1]
		} else {
			end = start + missingEndSpan
		}
		out = append(out, captions.Segment{Start: start, End: end, Text: strings.TrimSpace(chunk.Text)})
	}
	return out
}

func wrapCallError(ctx context.Context, stage string, err error) error {
	if ctxErr := services.FromContext(ctx, stage); ctxErr != nil {
		return ctxErr
	}
	msg := "inference request failed"
	var status *StatusError
	if errors.As(err, &status) && (status.StatusCode == http.StatusUnauthorized || status.StatusCode == http.StatusForbidden) {
		msg = fmt.Sprintf("token rejected (http %d)", status.StatusCode)
	}
	return services.Wrap(services.ErrCollaborator, stage, "huggingface", msg, err)
}

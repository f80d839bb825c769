package huggingface

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"

	"dubstudio/internal/services"
)

func writeAudio(t *testing.T) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "audio.wav")
	if err := os.WriteFile(path, []byte("RIFF....WAVE"), 0o644); err != nil {
		t.Fatalf("write audio: %v", err)
	}
	return path
}

func TestTranscribeMapsChunks(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/openai/whisper-large-v3" {
			t.Errorf("unexpected path %s", r.URL.Path)
		}
		if r.Header.Get("Authorization") != "Bearer hf" || r.Header.Get("Content-Type") != "audio/wav" {
			t.Errorf("unexpected headers %v", r.Header)
		}
		body, _ := io.ReadAll(r.Body)
		if string(body) != "RIFF....WAVE" {
			t.Errorf("unexpected body %q", body)
		}
		_, _ = io.WriteString(w, `{"text":"hi there","chunks":[
			{"timestamp":[0.0,1.5],"text":" hi "},
			{"timestamp":[null,3.0],"text":"there"},
			{"timestamp":[4.0,null],"text":"open"}]}`)
	}))
	defer server.Close()

	tr := NewTranscriber(NewClient(Config{APIKey: "hf", BaseURL: server.URL + "/"}), "")
	segments, err := tr.Transcribe(context.Background(), writeAudio(t))
	if err != nil {
		t.Fatalf("Transcribe returned error: %v", err)
	}
	if len(segments) != 3 {
		t.Fatalf("expected 3 segments, got %#v", segments)
	}
	if segments[0].Text != "hi" || segments[0].End != 1.5 {
		t.Fatalf("unexpected first segment %#v", segments[0])
	}
	if segments[1].Start != 0 || segments[1].End != 3 {
		t.Fatalf("missing start should read as 0: %#v", segments[1])
	}
	if segments[2].Start != 4 || segments[2].End != 6 {
		t.Fatalf("missing end should be start+2: %#v", segments[2])
	}
}

func TestTranscribeWithoutChunksFallsBack(t *testing.T) {
	cases := map[string]string{
		`{"text":" whole thing "}`: "whole thing",
		`{}`:                       FallbackText,
	}
	for payload, want := range cases {
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			_, _ = io.WriteString(w, payload)
		}))
		tr := NewTranscriber(NewClient(Config{APIKey: "hf", BaseURL: server.URL}), "custom/model")
		segments, err := tr.Transcribe(context.Background(), writeAudio(t))
		server.Close()
		if err != nil {
			t.Fatalf("Transcribe returned error: %v", err)
		}
		if len(segments) != 1 || segments[0].Start != 0 || segments[0].End != FallbackEnd || segments[0].Text != want {
			t.Fatalf("payload %s: unexpected fallback %#v", payload, segments)
		}
	}
}

func TestTranscribeErrors(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusServiceUnavailable)
		_ = json.NewEncoder(w).Encode(map[string]any{"error": "Model is loading", "estimated_time": 20})
	}))
	defer server.Close()

	tr := NewTranscriber(NewClient(Config{APIKey: "hf", BaseURL: server.URL}), "")
	_, err := tr.Transcribe(context.Background(), writeAudio(t))
	if !errors.Is(err, services.ErrCollaborator) {
		t.Fatalf("expected collaborator error, got %v", err)
	}
	var status *StatusError
	if !errors.As(err, &status) || status.Message != "Model is loading" {
		t.Fatalf("expected status error with api message, got %v", err)
	}

	unconfigured := NewTranscriber(NewClient(Config{}), "")
	if _, err := unconfigured.Transcribe(context.Background(), writeAudio(t)); !errors.Is(err, services.ErrConfiguration) {
		t.Fatalf("expected configuration error, got %v", err)
	}
}

func TestTranscribeHonoursCancellation(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		<-r.Context().Done()
	}))
	defer server.Close()

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	tr := NewTranscriber(NewClient(Config{APIKey: "hf", BaseURL: server.URL}), "")
	if _, err := tr.Transcribe(ctx, writeAudio(t)); !errors.Is(err, services.ErrCancelled) {
		t.Fatalf("expected cancellation, got %v", err)
	}
}

func TestSynthesizeReturnsAudioBytes(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/facebook/mms-tts-eng" {
			t.Errorf("unexpected path %s", r.URL.Path)
		}
		var req map[string]string
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil || req["inputs"] != "Hello. World" {
			t.Errorf("unexpected request %v (%v)", req, err)
		}
		w.Header().Set("Content-Type", "audio/flac")
		_, _ = w.Write([]byte{1, 2, 3, 4})
	}))
	defer server.Close()

	syn := NewSynthesizer(NewClient(Config{APIKey: "hf", BaseURL: server.URL}), "")
	audio, err := syn.Synthesize(context.Background(), " Hello. World ")
	if err != nil {
		t.Fatalf("Synthesize returned error: %v", err)
	}
	if len(audio) != 4 {
		t.Fatalf("unexpected audio %v", audio)
	}
	if _, err := syn.Synthesize(context.Background(), "  "); !errors.Is(err, services.ErrValidation) {
		t.Fatalf("expected validation error for blank text, got %v", err)
	}
}

func TestSynthesizeUnauthorized(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusUnauthorized)
		_, _ = io.WriteString(w, "not json")
	}))
	defer server.Close()

	syn := NewSynthesizer(NewClient(Config{APIKey: "bad", BaseURL: server.URL}), "")
	_, err := syn.Synthesize(context.Background(), "hello")
	if !errors.Is(err, services.ErrCollaborator) {
		t.Fatalf("expected collaborator error, got %v", err)
	}
	var status *StatusError
	if !errors.As(err, &status) || status.StatusCode != http.StatusUnauthorized || status.Message != "401 Unauthorized" {
		t.Fatalf("unexpected status error %v", err)
	}
}

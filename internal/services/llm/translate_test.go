package llm

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"dubstudio/internal/captions"
	"dubstudio/internal/services"
)

// echoTranslator answers every request by upper-casing each caption text,
// after applying mutate to the decoded request.
func echoTranslator(t *testing.T, calls *int, mutate func([]translationCaption) []translationCaption) *httptest.Server {
	t.Helper()
	return httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		*calls++
		body, _ := io.ReadAll(r.Body)
		var req struct {
			Messages []chatMessage `json:"messages"`
		}
		if err := json.Unmarshal(body, &req); err != nil || len(req.Messages) != 2 {
			t.Errorf("unexpected request body: %s", body)
			return
		}
		var payload translationPayload
		if err := json.Unmarshal([]byte(req.Messages[1].Content), &payload); err != nil {
			t.Errorf("user prompt is not caption json: %v", err)
			return
		}
		if payload.TargetLanguage != "Spanish" {
			t.Errorf("unexpected target language %q", payload.TargetLanguage)
		}
		out := payload.Captions
		for i := range out {
			out[i].Text = strings.ToUpper(out[i].Text)
		}
		if mutate != nil {
			out = mutate(out)
		}
		encoded, _ := json.Marshal(translationPayload{Captions: out})
		writeChoice(t, w, contentChoice("```json\n"+string(encoded)+"\n```"))
	}))
}

func sampleCaptions() []captions.Caption {
	return []captions.Caption{
		{ID: "caption-0", Start: 0, End: 2, Text: "hello"},
		{ID: "caption-1", Start: 2, End: 4.5, Text: "world"},
		{ID: "caption-2", Start: 5, End: 6, Text: "again"},
	}
}

func TestTranslatePreservesIDsAndIntervals(t *testing.T) {
	var calls int
	server := echoTranslator(t, &calls, nil)
	defer server.Close()

	client := NewClient(Config{APIKey: "test", BaseURL: server.URL}, WithBatchSize(2))
	src := sampleCaptions()
	got, err := client.Translate(context.Background(), src, "Spanish")
	if err != nil {
		t.Fatalf("Translate returned error: %v", err)
	}
	if calls != 2 {
		t.Fatalf("expected 2 batched requests, got %d", calls)
	}
	if len(got) != len(src) {
		t.Fatalf("expected %d captions, got %d", len(src), len(got))
	}
	for i := range src {
		if got[i].ID != src[i].ID || got[i].Start != src[i].Start || got[i].End != src[i].End {
			t.Fatalf("caption %d reshaped: %#v", i, got[i])
		}
		if got[i].Text != strings.ToUpper(src[i].Text) {
			t.Fatalf("caption %d text %q", i, got[i].Text)
		}
	}
}

func TestTranslateRejectsReshapedResponses(t *testing.T) {
	cases := map[string]func([]translationCaption) []translationCaption{
		"dropped": func(c []translationCaption) []translationCaption { return c[:len(c)-1] },
		"renamed": func(c []translationCaption) []translationCaption { c[0].ID = "other"; return c },
		"retimed": func(c []translationCaption) []translationCaption {
			shifted := *c[1].End + 0.5
			c[1].End = &shifted
			return c
		},
		"blank": func(c []translationCaption) []translationCaption { c[2].Text = " "; return c },
	}
	for name, mutate := range cases {
		var calls int
		server := echoTranslator(t, &calls, mutate)
		client := NewClient(Config{APIKey: "test", BaseURL: server.URL})
		got, err := client.Translate(context.Background(), sampleCaptions(), "Spanish")
		server.Close()
		if !errors.Is(err, services.ErrCollaborator) {
			t.Fatalf("%s: expected collaborator error, got %v", name, err)
		}
		if got != nil {
			t.Fatalf("%s: expected no partial result, got %#v", name, got)
		}
	}
}

func TestTranslateToleratesTimestampRounding(t *testing.T) {
	var calls int
	server := echoTranslator(t, &calls, func(c []translationCaption) []translationCaption {
		drift := *c[1].End + 0.0004
		c[1].End = &drift
		c[2].Start = nil
		return c
	})
	defer server.Close()

	client := NewClient(Config{APIKey: "test", BaseURL: server.URL})
	got, err := client.Translate(context.Background(), sampleCaptions(), "Spanish")
	if err != nil {
		t.Fatalf("Translate returned error: %v", err)
	}
	if got[1].End != 4.5 || got[2].Start != 5 {
		t.Fatalf("expected source timing kept, got %#v", got)
	}
}

func TestTranslateEmptyInput(t *testing.T) {
	client := NewClient(Config{APIKey: "test", BaseURL: "http://127.0.0.1:1"})
	got, err := client.Translate(context.Background(), nil, "Spanish")
	if err != nil || len(got) != 0 {
		t.Fatalf("expected empty result, got %#v, %v", got, err)
	}
	if _, err := client.Translate(context.Background(), sampleCaptions(), " "); !errors.Is(err, services.ErrValidation) {
		t.Fatalf("expected validation error for blank language, got %v", err)
	}
}

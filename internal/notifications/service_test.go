package notifications_test

import (
	"context"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync/atomic"
	"testing"

	"dubstudio/internal/config"
	"dubstudio/internal/notifications"
)

func TestNewServiceReturnsNoopWhenTopicMissing(t *testing.T) {
	cfg := config.Default()
	svc := notifications.NewService(&cfg)
	if err := svc.Publish(context.Background(), notifications.EventRenderCompleted, notifications.Payload{"project": "Example"}); err != nil {
		t.Fatalf("expected noop notifier to return nil, got %v", err)
	}
	if err := notifications.NewService(nil).Publish(context.Background(), notifications.EventTest, nil); err != nil {
		t.Fatalf("expected nil config to give noop, got %v", err)
	}
}

func TestNtfyServiceFormatsPayloads(t *testing.T) {
	tests := []struct {
		name           string
		event          notifications.Event
		payload        notifications.Payload
		expectTitle    string
		expectMessage  string
		expectTags     string
		expectPriority string
	}{
		{
			name:          "transcription completed",
			event:         notifications.EventTranscriptionCompleted,
			payload:       notifications.Payload{"project": "Lecture", "captions": 12},
			expectTitle:   "dubstudio - Transcribed",
			expectMessage: "📝 Transcribed Lecture: 12 captions",
			expectTags:    "dubstudio,transcribe,completed",
		},
		{
			name:          "translation completed",
			event:         notifications.EventTranslationCompleted,
			payload:       notifications.Payload{"project": "Lecture", "language": "Urdu"},
			expectTitle:   "dubstudio - Translated",
			expectMessage: "🌐 Translated Lecture to Urdu",
			expectTags:    "dubstudio,translate,completed",
		},
		{
			name:           "render completed",
			event:          notifications.EventRenderCompleted,
			payload:        notifications.Payload{"project": "Lecture", "file": "/exports/dubstudio_export_1.webm"},
			expectTitle:    "dubstudio - Export Ready",
			expectMessage:  "✅ Export ready: Lecture\nFile: /exports/dubstudio_export_1.webm",
			expectTags:     "dubstudio,render,completed",
			expectPriority: "high",
		},
		{
			name:          "render cancelled",
			event:         notifications.EventRenderCancelled,
			payload:       notifications.Payload{"project": "Lecture", "progress": "40%"},
			expectTitle:   "dubstudio - Render Cancelled",
			expectMessage: "Render of Lecture cancelled at 40%",
			expectTags:    "dubstudio,render,cancelled",
		},
		{
			name:           "error",
			event:          notifications.EventError,
			payload:        notifications.Payload{"project": "Lecture", "stage": "translating", "error": "rate limited"},
			expectTitle:    "dubstudio - Error",
			expectMessage:  "❌ Error while translating Lecture: rate limited",
			expectTags:     "dubstudio,error,alert",
			expectPriority: "high",
		},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			var captured struct {
				method   string
				title    string
				tags     string
				priority string
				body     string
			}

			server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				captured.method = r.Method
				captured.title = r.Header.Get("Title")
				captured.tags = r.Header.Get("Tags")
				captured.priority = r.Header.Get("Priority")
				body, _ := io.ReadAll(r.Body)
				captured.body = string(body)
				w.WriteHeader(http.StatusOK)
			}))
			defer server.Close()

			cfg := config.Default()
			cfg.Notifications.NtfyTopic = server.URL
			cfg.Notifications.RequestTimeout = 5

			svc := notifications.NewService(&cfg)
			if err := svc.Publish(context.Background(), tc.event, tc.payload); err != nil {
				t.Fatalf("notification returned error: %v", err)
			}

			if captured.method != http.MethodPost {
				t.Fatalf("unexpected method: %s", captured.method)
			}
			if captured.title != tc.expectTitle {
				t.Fatalf("expected title %q, got %q", tc.expectTitle, captured.title)
			}
			if captured.body != tc.expectMessage {
				t.Fatalf("expected message %q, got %q", tc.expectMessage, captured.body)
			}
			if captured.tags != tc.expectTags {
				t.Fatalf("expected tags %q, got %q", tc.expectTags, captured.tags)
			}
			if captured.priority != tc.expectPriority {
				t.Fatalf("expected priority %q, got %q", tc.expectPriority, captured.priority)
			}
		})
	}
}

func TestNtfyServiceHonoursEventToggles(t *testing.T) {
	var calls atomic.Int32
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls.Add(1)
	}))
	defer server.Close()

	cfg := config.Default()
	cfg.Notifications.NtfyTopic = server.URL
	cfg.Notifications.Steps = false
	cfg.Notifications.Errors = false

	svc := notifications.NewService(&cfg)
	for _, event := range []notifications.Event{
		notifications.EventTranscriptionCompleted,
		notifications.EventDubCompleted,
		notifications.EventError,
		notifications.Event("unknown"),
	} {
		if err := svc.Publish(context.Background(), event, notifications.Payload{"project": "x"}); err != nil {
			t.Fatalf("expected no error for suppressed event %s, got %v", event, err)
		}
	}
	if n := calls.Load(); n != 0 {
		t.Fatalf("expected suppressed events to skip ntfy, got %d calls", n)
	}

	if err := svc.Publish(context.Background(), notifications.EventTest, nil); err != nil {
		t.Fatalf("test notification failed: %v", err)
	}
	if n := calls.Load(); n != 1 {
		t.Fatalf("expected test notification to send, got %d calls", n)
	}
}

func TestNtfyServiceReportsHTTPErrors(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "topic is reserved", http.StatusForbidden)
	}))
	defer server.Close()

	cfg := config.Default()
	cfg.Notifications.NtfyTopic = server.URL
	err := notifications.NewService(&cfg).Publish(context.Background(), notifications.EventTest, nil)
	if err == nil || !strings.Contains(err.Error(), "403") || !strings.Contains(err.Error(), "topic is reserved") {
		t.Fatalf("expected status error, got %v", err)
	}
	if errors.Is(err, context.Canceled) {
		t.Fatal("unexpected cancellation")
	}
}

package notifications

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"dubstudio/internal/config"
)

const userAgent = "dubstudio/0.1"

// Event names a workflow milestone worth a push notification.
type Event string

const (
	EventTranscriptionCompleted Event = "transcription_completed"
	EventTranslationCompleted   Event = "translation_completed"
	EventDubCompleted           Event = "dub_completed"
	EventRenderCompleted        Event = "render_completed"
	EventRenderCancelled        Event = "render_cancelled"
	EventError                  Event = "error"
	EventTest                   Event = "test"
)

// Payload carries the event's display values keyed by name.
type Payload map[string]any

// Service defines the notification surface exposed to workflow components.
type Service interface {
	Publish(ctx context.Context, event Event, payload Payload) error
}

// NewService builds a notification service backed by ntfy when configured.
// When no ntfy topic is configured, a noop implementation is returned.
func NewService(cfg *config.Config) Service {
	if cfg == nil {
		return noopService{}
	}
	topic := strings.TrimSpace(cfg.Notifications.NtfyTopic)
	if topic == "" {
		return noopService{}
	}

	timeout := time.Duration(cfg.Notifications.RequestTimeout) * time.Second
	if timeout <= 0 {
		timeout = 10 * time.Second
	}

	return &ntfyService{
		endpoint: topic,
		client:   &http.Client{Timeout: timeout},
		cfg:      cfg.Notifications,
	}
}

type message struct {
	title    string
	body     string
	tags     []string
	priority string
}

type ntfyService struct {
	endpoint string
	client   *http.Client
	cfg      config.Notifications
}

func (n *ntfyService) Publish(ctx context.Context, event Event, payload Payload) error {
	if n == nil || !n.enabled(event) {
		return nil
	}
	msg, ok := format(event, payload)
	if !ok {
		return nil
	}
	return n.send(ctx, msg)
}

func (n *ntfyService) enabled(event Event) bool {
	switch event {
	case EventRenderCompleted, EventRenderCancelled:
		return n.cfg.Renders
	case EventTranscriptionCompleted, EventTranslationCompleted, EventDubCompleted:
		return n.cfg.Steps
	case EventError:
		return n.cfg.Errors
	case EventTest:
		return true
	default:
		return false
	}
}

func format(event Event, payload Payload) (message, bool) {
	project := payload.text("project")
	switch event {
	case EventTranscriptionCompleted:
		return message{
			title: "dubstudio - Transcribed",
			body:  fmt.Sprintf("📝 Transcribed %s: %s captions", project, payload.text("captions")),
			tags:  []string{"dubstudio", "transcribe", "completed"},
		}, true
	case EventTranslationCompleted:
		return message{
			title: "dubstudio - Translated",
			body:  fmt.Sprintf("🌐 Translated %s to %s", project, payload.text("language")),
			tags:  []string{"dubstudio", "translate", "completed"},
		}, true
	case EventDubCompleted:
		return message{
			title: "dubstudio - Dub Ready",
			body:  fmt.Sprintf("🎙️ Dub ready for %s (%s)", project, payload.text("duration")),
			tags:  []string{"dubstudio", "dub", "completed"},
		}, true
	case EventRenderCompleted:
		body := fmt.Sprintf("✅ Export ready: %s", project)
		if file := payload.text("file"); file != "" {
			body += "\nFile: " + file
		}
		return message{
			title:    "dubstudio - Export Ready",
			body:     body,
			tags:     []string{"dubstudio", "render", "completed"},
			priority: "high",
		}, true
	case EventRenderCancelled:
		return message{
			title: "dubstudio - Render Cancelled",
			body:  fmt.Sprintf("Render of %s cancelled at %s", project, payload.text("progress")),
			tags:  []string{"dubstudio", "render", "cancelled"},
		}, true
	case EventError:
		var b strings.Builder
		b.WriteString("❌ Error")
		if stage := payload.text("stage"); stage != "" {
			b.WriteString(" while ")
			b.WriteString(stage)
		}
		if project != "" {
			b.WriteString(" ")
			b.WriteString(project)
		}
		b.WriteString(": ")
		if e := payload.text("error"); e != "" {
			b.WriteString(e)
		} else {
			b.WriteString("unknown")
		}
		return message{
			title:    "dubstudio - Error",
			body:     b.String(),
			tags:     []string{"dubstudio", "error", "alert"},
			priority: "high",
		}, true
	case EventTest:
		return message{
			title:    "dubstudio - Test",
			body:     "🧪 Notification system test",
			tags:     []string{"dubstudio", "test"},
			priority: "low",
		}, true
	default:
		return message{}, false
	}
}

func (p Payload) text(key string) string {
	if p == nil {
		return ""
	}
	v, ok := p[key]
	if !ok || v == nil {
		return ""
	}
	return strings.TrimSpace(fmt.Sprint(v))
}

func (n *ntfyService) send(ctx context.Context, msg message) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, n.endpoint, strings.NewReader(msg.body))
	if err != nil {
		return fmt.Errorf("build ntfy request: %w", err)
	}
	req.Header.Set("User-Agent", userAgent)
	req.Header.Set("Content-Type", "text/plain; charset=utf-8")
	if msg.title != "" {
		req.Header.Set("Title", msg.title)
	}
	if len(msg.tags) > 0 {
		req.Header.Set("Tags", strings.Join(msg.tags, ","))
	}
	if msg.priority != "" && msg.priority != "default" {
		req.Header.Set("Priority", msg.priority)
	}

	resp, err := n.client.Do(req)
	if err != nil {
		return fmt.Errorf("send ntfy notification: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 300 {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 2048))
		return fmt.Errorf("ntfy returned %d: %s", resp.StatusCode, strings.TrimSpace(string(body)))
	}
	_, _ = io.Copy(io.Discard, resp.Body)
	return nil
}

type noopService struct{}

func (noopService) Publish(context.Context, Event, Payload) error { return nil }

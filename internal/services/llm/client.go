package llm

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"
)

// DefaultBaseURL is the OpenRouter chat completions endpoint.
const DefaultBaseURL = "https://openrouter.ai/api/v1/chat/completions"

const defaultHTTPTimeout = 15 * time.Second

// Config holds the endpoint, credentials and attribution headers for an
// OpenAI-compatible chat completions API.
type Config struct {
	APIKey         string
	BaseURL        string
	Model          string
	Referer        string
	Title          string
	TimeoutSeconds int
}

func (c Config) normalized() Config {
	out := Config{
		APIKey:         strings.TrimSpace(c.APIKey),
		BaseURL:        strings.TrimSpace(c.BaseURL),
		Model:          strings.TrimSpace(c.Model),
		Referer:        strings.TrimSpace(c.Referer),
		Title:          strings.TrimSpace(c.Title),
		TimeoutSeconds: c.TimeoutSeconds,
	}
	if out.BaseURL == "" {
		out.BaseURL = DefaultBaseURL
	}
	return out
}

func (c Config) timeout() time.Duration {
	if c.TimeoutSeconds > 0 {
		return time.Duration(c.TimeoutSeconds) * time.Second
	}
	return defaultHTTPTimeout
}

// Client translates caption batches through a JSON-mode chat model.
type Client struct {
	cfg       Config
	client    *http.Client
	retry     retryPolicy
	batchSize int
}

type Option func(*Client)

// WithRetryMaxAttempts caps attempts per request; the default is 5.
func WithRetryMaxAttempts(attempts int) Option {
	return func(c *Client) { c.retry.maxAttempts = attempts }
}

// WithRetryBackoff sets the first retry delay and the ceiling it doubles to.
func WithRetryBackoff(baseDelay, maxDelay time.Duration) Option {
	return func(c *Client) { c.retry.baseDelay, c.retry.maxDelay = baseDelay, maxDelay }
}

// WithSleeper replaces the retry wait, so tests can record delays.
func WithSleeper(sleeper func(time.Duration)) Option {
	return func(c *Client) { c.retry.sleeper = sleeper }
}

// WithBatchSize caps how many captions go into one translation request.
func WithBatchSize(size int) Option {
	return func(c *Client) {
		if size > 0 {
			c.batchSize = size
		}
	}
}

func NewClient(cfg Config, opts ...Option) *Client {
	cfg = cfg.normalized()
	c := &Client{
		cfg:       cfg,
		client:    &http.Client{Timeout: cfg.timeout()},
		retry:     defaultRetryPolicy(),
		batchSize: defaultBatchSize,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Configured reports whether an API key is set.
func (c *Client) Configured() bool {
	return c != nil && c.cfg.APIKey != ""
}

// CompleteJSON sends a system and a user prompt and returns the model's raw
// JSON answer.
func (c *Client) CompleteJSON(ctx context.Context, systemPrompt, userPrompt string) (string, error) {
	systemPrompt, userPrompt = strings.TrimSpace(systemPrompt), strings.TrimSpace(userPrompt)
	if systemPrompt == "" || userPrompt == "" {
		return "", errors.New("llm complete: system and user prompts required")
	}
	if !c.Configured() {
		return "", errors.New("llm complete: api key required")
	}
	return c.complete(ctx, "llm complete", systemPrompt, userPrompt)
}

// HealthCheck asks the model for {"ok":true} to prove the key and model work.
func (c *Client) HealthCheck(ctx context.Context) error {
	if !c.Configured() {
		return errors.New("llm health: api key required")
	}
	content, err := c.complete(ctx, "llm health", "You must respond with JSON only.", `Respond with {"ok":true}`)
	if err != nil {
		return err
	}
	var ping struct {
		OK bool `json:"ok"`
	}
	if err := DecodeLLMJSON(content, &ping); err != nil {
		return fmt.Errorf("llm health: parse payload: %w", err)
	}
	if !ping.OK {
		return errors.New("llm health: unexpected response")
	}
	return nil
}

type chatRequest struct {
	Model          string            `json:"model"`
	Messages       []chatMessage     `json:"messages"`
	Temperature    float64           `json:"temperature"`
	ResponseFormat map[string]string `json:"response_format"`
}

type chatMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

func (c *Client) complete(ctx context.Context, op, systemPrompt, userPrompt string) (string, error) {
	body, err := json.Marshal(chatRequest{
		Model: c.cfg.Model,
		Messages: []chatMessage{
			{Role: "system", Content: systemPrompt},
			{Role: "user", Content: userPrompt},
		},
		ResponseFormat: map[string]string{"type": "json_object"},
	})
	if err != nil {
		return "", fmt.Errorf("%s: encode body: %w", op, err)
	}
	var content string
	err = c.retry.do(ctx, op, func() error {
		resp, raw, err := c.post(ctx, body)
		if err != nil {
			return err
		}
		if len(resp.Choices) == 0 {
			return fmt.Errorf("%s: empty choices", op)
		}
		text, finish := resp.content()
		if text == "" {
			return &emptyContentError{Op: op, FinishReason: finish, Refusal: resp.refusal(), Snippet: summarizePayloadSnippet(string(raw))}
		}
		content = text
		return nil
	})
	return content, err
}

func (c *Client) post(ctx context.Context, body []byte) (chatResponse, []byte, error) {
	var decoded chatResponse
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.cfg.BaseURL, bytes.NewReader(body))
	if err != nil {
		return decoded, nil, fmt.Errorf("llm request: new request: %w", err)
	}
	req.Header.Set("Authorization", "Bearer "+c.cfg.APIKey)
	req.Header.Set("Content-Type", "application/json")
	for header, value := range map[string]string{"HTTP-Referer": c.cfg.Referer, "X-Title": c.cfg.Title} {
		if value != "" {
			req.Header.Set(header, value)
		}
	}
	resp, err := c.client.Do(req)
	if err != nil {
		return decoded, nil, fmt.Errorf("llm request: http error (timeout=%s): %w", c.client.Timeout, err)
	}
	defer resp.Body.Close()
	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return decoded, nil, fmt.Errorf("llm request: read body: %w", err)
	}
	if resp.StatusCode >= http.StatusMultipleChoices {
		retryAfter, _ := parseRetryAfter(resp.Header.Get("Retry-After"))
		return decoded, raw, &httpStatusError{StatusCode: resp.StatusCode, Body: strings.TrimSpace(string(raw)), RetryAfter: retryAfter}
	}
	if err := json.Unmarshal(raw, &decoded); err != nil {
		return decoded, raw, fmt.Errorf("llm request: decode response: %w", err)
	}
	if decoded.Error != nil {
		return decoded, raw, fmt.Errorf("llm request: api error: %s", strings.TrimSpace(decoded.Error.Message))
	}
	return decoded, raw, nil
}

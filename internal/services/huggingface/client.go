package huggingface

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"
)

// DefaultBaseURL is the hosted inference API root; the model id is appended.
const DefaultBaseURL = "https://api-inference.huggingface.co/models"

const defaultTimeout = 300 * time.Second

// Config captures the settings shared by every inference call.
type Config struct {
	APIKey         string
	BaseURL        string
	TimeoutSeconds int
}

// Client posts inference requests to a Hugging Face model endpoint.
type Client struct {
	cfg        Config
	httpClient *http.Client
}

// Option customizes the client.
type Option func(*Client)

// WithHTTPClient overrides the default HTTP client.
func WithHTTPClient(client *http.Client) Option {
	return func(c *Client) {
		if client != nil {
			c.httpClient = client
		}
	}
}

// NewClient constructs a client using the supplied configuration.
func NewClient(cfg Config, opts ...Option) *Client {
	timeout := defaultTimeout
	if cfg.TimeoutSeconds > 0 {
		timeout = time.Duration(cfg.TimeoutSeconds) * time.Second
	}
	c := &Client{
		cfg: Config{
			APIKey:         strings.TrimSpace(cfg.APIKey),
			BaseURL:        strings.TrimRight(strings.TrimSpace(cfg.BaseURL), "/"),
			TimeoutSeconds: cfg.TimeoutSeconds,
		},
		httpClient: &http.Client{Timeout: timeout},
	}
	if c.cfg.BaseURL == "" {
		c.cfg.BaseURL = DefaultBaseURL
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Configured reports whether an access token is available.
func (c *Client) Configured() bool {
	return c != nil && c.cfg.APIKey != ""
}

// StatusError is a non-2xx answer from the inference API.
type StatusError struct {
	StatusCode int
	Message    string
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("huggingface: http %d: %s", e.StatusCode, e.Message)
}

// post sends body to the model endpoint and returns the raw response body.
func (c *Client) post(ctx context.Context, model, contentType string, body []byte) ([]byte, error) {
	endpoint, err := url.JoinPath(c.cfg.BaseURL, model)
	if err != nil {
		return nil, fmt.Errorf("huggingface: build url: %w", err)
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("huggingface: new request: %w", err)
	}
	req.Header.Set("Authorization", "Bearer "+c.cfg.APIKey)
	req.Header.Set("Content-Type", contentType)
	// Cold models answer 503 until loaded unless asked to wait.
	req.Header.Set("X-Wait-For-Model", "true")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("huggingface: request %s: %w", model, err)
	}
	defer resp.Body.Close()
	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("huggingface: read body: %w", err)
	}
	if resp.StatusCode >= http.StatusMultipleChoices {
		return nil, &StatusError{StatusCode: resp.StatusCode, Message: errorMessage(data, resp.Status)}
	}
	return data, nil
}

// errorMessage extracts {"error": "..."} from a failed response, falling
// back to the HTTP status text.
func errorMessage(body []byte, status string) string {
	var payload struct {
		Error any `json:"error"`
	}
	if json.Unmarshal(body, &payload) == nil && payload.Error != nil {
		switch v := payload.Error.(type) {
		case string:
			if strings.TrimSpace(v) != "" {
				return strings.TrimSpace(v)
			}
		default:
			if encoded, err := json.Marshal(v); err == nil {
				return string(encoded)
			}
		}
	}
	return status
}

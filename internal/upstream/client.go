// Package upstream implements the HTTP client for the AI backend that
// admitted requests are forwarded to. Transport failures and 5xx responses
// are retried with exponential backoff; 4xx responses are relayed to the
// caller unchanged.
package upstream

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/cenkalti/backoff/v5"

	"lanagate/internal/models"
)

// Backend paths for the proxied operations.
const (
	pathChat     = "/v1/chat"
	pathLessons  = "/v1/lessons"
	pathTTS      = "/v1/tts"
	pathRegister = "/v1/register"
)

// Result is a response from the backend. Non-2xx results below 500 are
// returned with a nil error so handlers can relay them to the client.
type Result struct {
	StatusCode  int
	Body        []byte
	ContentType string
}

// Client forwards admitted requests to the AI backend.
type Client struct {
	baseURL       string
	apiKey        string
	maxRetries    int
	retryInterval time.Duration
	httpClient    *http.Client
}

// NewClient creates a backend client from the upstream configuration.
func NewClient(cfg models.UpstreamConfig) *Client {
	return &Client{
		baseURL:       strings.TrimRight(cfg.BaseURL, "/"),
		apiKey:        cfg.APIKey,
		maxRetries:    cfg.MaxRetries,
		retryInterval: cfg.RetryInterval,
		httpClient: &http.Client{
			Timeout: cfg.RequestTimeout,
		},
	}
}

// Chat forwards a chat message to the backend.
func (c *Client) Chat(ctx context.Context, req *models.ChatRequest) (*Result, error) {
	return c.postJSON(ctx, pathChat, req)
}

// GenerateLesson forwards a lesson generation request to the backend.
func (c *Client) GenerateLesson(ctx context.Context, req *models.LessonRequest) (*Result, error) {
	return c.postJSON(ctx, pathLessons, req)
}

// Synthesize forwards a text-to-speech request to the backend.
func (c *Client) Synthesize(ctx context.Context, req *models.TTSRequest) (*Result, error) {
	return c.postJSON(ctx, pathTTS, req)
}

// Register forwards an account registration to the backend.
func (c *Client) Register(ctx context.Context, req *models.RegisterRequest) (*Result, error) {
	return c.postJSON(ctx, pathRegister, req)
}

// postJSON sends the payload to the backend path, retrying transport errors
// and 5xx responses with exponential backoff up to the configured retry
// count. The request body is marshalled once and reused across attempts.
func (c *Client) postJSON(ctx context.Context, path string, payload any) (*Result, error) {
	body, err := json.Marshal(payload)
	if err != nil {
		return nil, fmt.Errorf("failed to encode upstream request: %w", err)
	}

	operation := func() (*Result, error) {
		req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+path, bytes.NewReader(body))
		if err != nil {
			return nil, backoff.Permanent(err)
		}
		req.Header.Set("Content-Type", "application/json")
		if c.apiKey != "" {
			req.Header.Set("Authorization", "Bearer "+c.apiKey)
		}

		resp, err := c.httpClient.Do(req)
		if err != nil {
			return nil, err
		}
		defer resp.Body.Close()

		data, err := io.ReadAll(resp.Body)
		if err != nil {
			return nil, err
		}

		result := &Result{
			StatusCode:  resp.StatusCode,
			Body:        data,
			ContentType: resp.Header.Get("Content-Type"),
		}

		if resp.StatusCode >= http.StatusInternalServerError {
			return nil, fmt.Errorf("upstream returned status %d", resp.StatusCode)
		}

		return result, nil
	}

	b := backoff.NewExponentialBackOff()
	if c.retryInterval > 0 {
		b.InitialInterval = c.retryInterval
	}

	result, err := backoff.Retry(ctx, operation,
		backoff.WithBackOff(b),
		backoff.WithMaxTries(uint(c.maxRetries+1)),
	)
	if err != nil {
		return nil, fmt.Errorf("upstream request to %s failed: %w", path, err)
	}

	return result, nil
}

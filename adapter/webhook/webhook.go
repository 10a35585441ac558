// Package webhook posts completion events to an HTTP endpoint.
//
// Network errors and 5xx responses are retried with exponential backoff.
// 4xx responses fail immediately.
package webhook

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

	"github.com/justapithecus/flightlog/adapter"
)

// DefaultTimeout bounds one POST attempt.
const DefaultTimeout = 10 * time.Second

// DefaultRetries is the retry count used when none is configured.
const DefaultRetries = 3

// Event headers set on every request.
const (
	HeaderEvent   = "X-Flightlog-Event"
	HeaderSession = "X-Flightlog-Session"
)

// maxErrorBody caps the response body kept on a StatusError.
const maxErrorBody = 512

// Config configures the webhook adapter.
type Config struct {
	// URL receives the POST (required).
	URL string
	// Headers are added to every request after the defaults.
	Headers map[string]string
	// Timeout bounds each attempt (default 10s).
	Timeout time.Duration
	// Retries after the first attempt.
	Retries int
	// Backoff is the first retry delay (default adapter.DefaultBackoff).
	Backoff time.Duration
}

// Adapter publishes completion events as JSON POST requests.
type Adapter struct {
	cfg    Config
	client *http.Client
}

// New validates cfg and creates an Adapter.
func New(cfg Config) (*Adapter, error) {
	switch {
	case cfg.URL == "":
		return nil, errors.New("webhook adapter requires a URL")
	case !strings.HasPrefix(cfg.URL, "http://") && !strings.HasPrefix(cfg.URL, "https://"):
		return nil, fmt.Errorf("webhook adapter: URL must be http or https, got %q", cfg.URL)
	case cfg.Retries < 0:
		return nil, fmt.Errorf("retries must be >= 0, got %d", cfg.Retries)
	}
	if cfg.Timeout <= 0 {
		cfg.Timeout = DefaultTimeout
	}
	return &Adapter{cfg: cfg, client: &http.Client{Timeout: cfg.Timeout}}, nil
}

// Publish posts event as JSON.
func (a *Adapter) Publish(ctx context.Context, event *adapter.AnalysisCompletedEvent) error {
	payload, err := json.Marshal(event)
	if err != nil {
		return fmt.Errorf("webhook: marshal event: %w", err)
	}

	return adapter.Retry(ctx, "webhook", a.cfg.Retries, a.cfg.Backoff, func(ctx context.Context) error {
		err := a.post(ctx, event, payload)
		if se := (*StatusError)(nil); errors.As(err, &se) && se.Code >= 400 && se.Code < 500 {
			return adapter.Permanent(err)
		}
		return err
	})
}

// StatusError reports a non-2xx response.
type StatusError struct {
	Code int
	// Body is the start of the response body, possibly empty.
	Body string
}

func (e *StatusError) Error() string {
	if e.Body == "" {
		return fmt.Sprintf("unexpected status %d", e.Code)
	}
	return fmt.Sprintf("unexpected status %d: %s", e.Code, e.Body)
}

func (a *Adapter) post(ctx context.Context, event *adapter.AnalysisCompletedEvent, payload []byte) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, a.cfg.URL, bytes.NewReader(payload))
	if err != nil {
		return fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("User-Agent", "flightlog")
	req.Header.Set(HeaderEvent, event.EventType)
	req.Header.Set(HeaderSession, event.SessionID)
	for k, v := range a.cfg.Headers {
		req.Header.Set(k, v)
	}

	resp, err := a.client.Do(req)
	if err != nil {
		return fmt.Errorf("request failed: %w", err)
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode >= 200 && resp.StatusCode < 300 {
		// Drain so the connection can be reused.
		_, _ = io.Copy(io.Discard, resp.Body)
		return nil
	}
	snippet, _ := io.ReadAll(io.LimitReader(resp.Body, maxErrorBody))
	return &StatusError{Code: resp.StatusCode, Body: strings.TrimSpace(string(snippet))}
}

// Close drops idle connections.
func (a *Adapter) Close() error {
	a.client.CloseIdleConnections()
	return nil
}

var _ adapter.Adapter = (*Adapter)(nil)

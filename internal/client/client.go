// Package client talks to the TWS backend service over HTTP.
//
// It is the only component that performs network I/O. Every failure that
// prevents a result from being obtained is returned as an *APIError:
//   - "Network Error" when no HTTP exchange happened
//   - "HTTP <status>" when the backend answered with a non-2xx status
//   - "Invalid Response" when a 2xx body is not valid JSON
//
// Application-level failures (the backend is reachable but the gateway is
// not) are not errors here; they arrive inside a successfully decoded body.
package client

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strconv"
	"strings"
	"sync"
	"time"

	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"

	"github.com/musher-dev/twsdash/internal/buildinfo"
	"github.com/musher-dev/twsdash/internal/observability"
)

// DefaultBaseURL is the backend address used when none is configured.
const DefaultBaseURL = "http://localhost:8000"

// maxErrorBody bounds how much of a non-2xx body is read for a message.
const maxErrorBody = 64 << 10

// Client is the TWS backend API client. It is safe for concurrent use.
type Client struct {
	mu         sync.RWMutex
	baseURL    string
	httpClient *http.Client
}

// New creates a client for baseURL, or DefaultBaseURL when baseURL is empty.
//
// No request timeout is set: a probe lasts until the backend answers or the
// caller's context ends.
func New(baseURL string) *Client {
	c := &Client{
		httpClient: &http.Client{
			Transport: otelhttp.NewTransport(http.DefaultTransport),
		},
	}
	c.SetBaseURL(baseURL)

	return c
}

// WithHTTPClient replaces the underlying HTTP client.
func (c *Client) WithHTTPClient(hc *http.Client) *Client {
	c.httpClient = hc
	return c
}

// SetBaseURL changes the backend address for subsequent requests.
func (c *Client) SetBaseURL(baseURL string) {
	baseURL = strings.TrimRight(strings.TrimSpace(baseURL), "/")
	if baseURL == "" {
		baseURL = DefaultBaseURL
	}

	c.mu.Lock()
	c.baseURL = baseURL
	c.mu.Unlock()
}

// BaseURL returns the configured backend address.
func (c *Client) BaseURL() string {
	c.mu.RLock()
	defer c.mu.RUnlock()

	return c.baseURL
}

// doJSON issues a bodiless request and decodes a 2xx JSON body into out.
func (c *Client) doJSON(ctx context.Context, method, path, operation string, out any) error {
	logger := observability.FromContext(ctx).With(
		slog.String("component", "client"),
		slog.String("operation", operation),
	)

	url := c.BaseURL() + path

	req, err := http.NewRequestWithContext(ctx, method, url, http.NoBody)
	if err != nil {
		logger.Debug("request construction failed", slog.String("url", url), slog.String("error", err.Error()))
		return networkError(fmt.Errorf("failed to create request: %w", err))
	}

	setRequestHeaders(req)

	start := time.Now()

	resp, err := c.httpClient.Do(req)
	if err != nil {
		logger.Debug("backend unreachable",
			slog.String("url", url),
			slog.Duration("elapsed", time.Since(start)),
			slog.String("error", err.Error()),
		)

		return networkError(err)
	}
	defer resp.Body.Close()

	logger.Debug("backend responded",
		slog.String("url", url),
		slog.Int("status", resp.StatusCode),
		slog.Duration("elapsed", time.Since(start)),
	)

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return statusError(resp)
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return networkError(fmt.Errorf("failed to read response: %w", err))
	}

	if err := json.Unmarshal(body, out); err != nil {
		return invalidResponse(resp.StatusCode, err)
	}

	return nil
}

func setRequestHeaders(req *http.Request) {
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "application/json")
	req.Header.Set("User-Agent", buildinfo.UserAgent())
}

// statusError builds the "HTTP <status>" error. The message comes from the
// body when it is a JSON object carrying one, else from the status line.
func statusError(resp *http.Response) *APIError {
	message := statusText(resp)

	body, readErr := io.ReadAll(io.LimitReader(resp.Body, maxErrorBody))
	if readErr == nil {
		if m := messageFromBody(body); m != "" {
			message = m
		}
	}

	return &APIError{
		Category: "HTTP " + strconv.Itoa(resp.StatusCode),
		Message:  message,
		Status:   resp.StatusCode,
	}
}

// messageFromBody reads "message", then FastAPI's "detail", from an
// arbitrary JSON object. Anything else yields "".
func messageFromBody(body []byte) string {
	var payload map[string]any
	if err := json.Unmarshal(body, &payload); err != nil {
		return ""
	}

	for _, key := range []string{"message", "detail"} {
		if s, ok := payload[key].(string); ok && strings.TrimSpace(s) != "" {
			return s
		}
	}

	return ""
}

// statusText returns the reason phrase of the response, e.g. "Not Found".
func statusText(resp *http.Response) string {
	text := strings.TrimSpace(strings.TrimPrefix(resp.Status, strconv.Itoa(resp.StatusCode)))
	if text == "" {
		text = http.StatusText(resp.StatusCode)
	}

	return text
}

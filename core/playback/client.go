// Package playback drives the speaker box over its little HTTP API. The
// speaker streams clips itself, so playing audio means handing it a URL it
// can reach, not pushing bytes.
package playback

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
)

// DefaultPort is the port the speaker firmware listens on.
const DefaultPort = 8082

const defaultRequestTimeout = 5 * time.Second

type Client struct {
	baseURL    string
	httpClient *http.Client
}

type ClientOption func(*Client)

func WithHTTPClient(httpClient *http.Client) ClientOption {
	return func(c *Client) { c.httpClient = httpClient }
}

// NewClient points at the speaker's host. host may include a port; without
// one the default is appended.
func NewClient(host string, opts ...ClientOption) *Client {
	client := &Client{
		baseURL: fmt.Sprintf("http://%s:%d", host, DefaultPort),
		httpClient: &http.Client{
			Transport: otelhttp.NewTransport(http.DefaultTransport),
			Timeout:   defaultRequestTimeout,
		},
	}
	for _, opt := range opts {
		opt(client)
	}
	return client
}

// NewClientURL points at the speaker with a full base URL, for setups where
// the speaker sits behind a proxy or a non-default port.
func NewClientURL(baseURL string, opts ...ClientOption) *Client {
	client := NewClient("")
	client.baseURL = baseURL
	for _, opt := range opts {
		opt(client)
	}
	return client
}

// Play tells the speaker to fetch and play url. format is the container hint
// the firmware's decoder needs, normally "mp3".
func (c *Client) Play(ctx context.Context, url string, format string) error {
	ctx, span := tracer.Start(ctx, "trigger speaker playback")
	defer span.End()
	span.SetAttributes(attribute.String("clip.url", url), attribute.String("clip.format", format))

	err := c.post(ctx, "/play", map[string]any{"url": url, "format": format})
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
	}
	return err
}

// Stop interrupts whatever the speaker is playing.
func (c *Client) Stop(ctx context.Context) error {
	return c.post(ctx, "/stop", nil)
}

// SetVolume sets the speaker volume, 0 to 100.
func (c *Client) SetVolume(ctx context.Context, level int) error {
	return c.post(ctx, "/volume", map[string]any{"level": level})
}

func (c *Client) post(ctx context.Context, path string, body map[string]any) error {
	var payload bytes.Buffer
	if body != nil {
		if err := json.NewEncoder(&payload).Encode(body); err != nil {
			return fmt.Errorf("failed to encode request body: %w", err)
		}
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+path, &payload)
	if err != nil {
		return fmt.Errorf("failed to build request: %w", err)
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("speaker request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 300 {
		logger.Warn("speaker rejected request", "path", path, "status", resp.StatusCode)
		return fmt.Errorf("speaker returned status %d for %s", resp.StatusCode, path)
	}
	return nil
}

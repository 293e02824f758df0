package upstream

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/nerrad567/uav-groundstation/internal/telemetry"
)

const (
	// DefaultTimeout bounds a single fetch when no timeout is configured.
	DefaultTimeout = 5 * time.Second

	// maxBodySize caps response bodies; camera frames are the largest.
	maxBodySize = 16 << 20

	SensorPath = "/api/sensor"
	CameraPath = "/api/camera"
	LogsPath   = "/api/logs"
)

// Camera is the /api/camera response. Image is nil when the backend has
// no frame yet.
type Camera struct {
	Image *string `json:"image"`
}

// Client talks to one backend. Safe for concurrent use.
type Client struct {
	baseURL string
	http    *http.Client
}

// NewClient returns a client for baseURL (scheme and host, no trailing
// slash needed). A non-positive timeout uses DefaultTimeout.
func NewClient(baseURL string, timeout time.Duration) *Client {
	if timeout <= 0 {
		timeout = DefaultTimeout
	}
	return &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		http:    &http.Client{Timeout: timeout},
	}
}

// BaseURL returns the backend address.
func (c *Client) BaseURL() string {
	return c.baseURL
}

// Sensor fetches the latest sensor reading. Non-numeric fields are dropped.
func (c *Client) Sensor(ctx context.Context) Result[telemetry.Reading] {
	return get[telemetry.Reading](ctx, c, SensorPath)
}

// Camera fetches the latest camera image reference.
func (c *Client) Camera(ctx context.Context) Result[Camera] {
	return get[Camera](ctx, c, CameraPath)
}

// Logs fetches the sensor log listing.
func (c *Client) Logs(ctx context.Context) Result[[]string] {
	return get[[]string](ctx, c, LogsPath)
}

func get[T any](ctx context.Context, c *Client, path string) Result[T] {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+path, nil)
	if err != nil {
		return Fail[T](fmt.Errorf("building request for %s: %w", path, err))
	}
	req.Header.Set("Accept", "application/json")

	resp, err := c.http.Do(req)
	if err != nil {
		return Fail[T](fmt.Errorf("fetching %s: %w", path, err))
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		// Drain so the connection can be reused.
		_, _ = io.Copy(io.Discard, io.LimitReader(resp.Body, maxBodySize)) //nolint:errcheck // best effort
		return Fail[T](fmt.Errorf("%w: %s returned %d", ErrStatus, path, resp.StatusCode))
	}

	var v T
	if err := json.NewDecoder(io.LimitReader(resp.Body, maxBodySize)).Decode(&v); err != nil {
		return Fail[T](fmt.Errorf("%w: %s: %w", ErrDecode, path, err))
	}
	return Ok(v)
}

// v1
// internal/client/client.go
package client

import (
	"context"
	"fmt"
	"time"

	"github.com/go-resty/resty/v2"

	"ssacity/api/internal/models"
)

// Health mirrors the /health response.
type Health struct {
	Status    string    `json:"status"`
	Timestamp time.Time `json:"timestamp"`
	Ticks     uint64    `json:"ticks"`
	LastTick  time.Time `json:"last_tick"`
	Uptime    string    `json:"uptime"`
}

// Healthy reports whether the service declared itself healthy.
func (h Health) Healthy() bool { return h.Status == "healthy" }

type apiError struct {
	Error string `json:"error"`
}

// Client talks to a running API instance.
type Client struct {
	http *resty.Client
}

// New targets baseURL, e.g. http://localhost:8000.
func New(baseURL string, timeout time.Duration) *Client {
	if timeout <= 0 {
		timeout = 10 * time.Second
	}
	c := resty.New().
		SetBaseURL(baseURL).
		SetTimeout(timeout).
		SetRetryCount(3).
		SetRetryWaitTime(200 * time.Millisecond).
		SetRetryMaxWaitTime(2 * time.Second).
		SetHeader("Accept", "application/json")
	return &Client{http: c}
}

func (c *Client) Health(ctx context.Context) (Health, error) {
	var out Health
	err := c.get(ctx, "/health", &out)
	return out, err
}

func (c *Client) Bins(ctx context.Context) ([]models.SmartBin, error) {
	var out []models.SmartBin
	err := c.get(ctx, "/api/v2/smart-bins", &out)
	return out, err
}

func (c *Client) ZoneAnalytics(ctx context.Context) ([]models.ZoneAnalytics, error) {
	var out []models.ZoneAnalytics
	err := c.get(ctx, "/api/v2/zone-analytics", &out)
	return out, err
}

func (c *Client) get(ctx context.Context, path string, result any) error {
	var apiErr apiError
	resp, err := c.http.R().
		SetContext(ctx).
		SetResult(result).
		SetError(&apiErr).
		Get(path)
	if err != nil {
		return fmt.Errorf("GET %s: %w", path, err)
	}
	if resp.IsError() {
		if apiErr.Error != "" {
			return fmt.Errorf("GET %s: %s: %s", path, resp.Status(), apiErr.Error)
		}
		return fmt.Errorf("GET %s: %s", path, resp.Status())
	}
	return nil
}

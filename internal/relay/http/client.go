package http

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/localink/localink-backend/internal/poller"
)

// Response is the body returned by a relay GET.
type Response[T any] struct {
	Success     bool   `json:"success"`
	Data        *T     `json:"data"`
	HasNewData  bool   `json:"hasNewData"`
	LastUpdated string `json:"lastUpdated,omitempty"`
	Message     string `json:"message,omitempty"`
	Error       string `json:"error,omitempty"`
	Details     string `json:"details,omitempty"`
}

// Client reads one relay endpoint. It implements poller.Fetcher.
type Client[T poller.Stamped] struct {
	url        string
	httpClient *http.Client
}

func NewClient[T poller.Stamped](url string, timeout time.Duration) *Client[T] {
	if timeout <= 0 {
		timeout = 15 * time.Second
	}
	return &Client[T]{
		url: url,
		httpClient: &http.Client{
			Timeout: timeout,
		},
	}
}

// Get performs one GET and decodes the relay envelope.
func (c *Client[T]) Get(ctx context.Context) (*Response[T], error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.url, nil)
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("Accept", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("relay request failed: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("read response: %w", err)
	}

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("relay returned status %d: %s", resp.StatusCode, string(body))
	}

	var out Response[T]
	if err := json.Unmarshal(body, &out); err != nil {
		return nil, fmt.Errorf("decode response: %w", err)
	}
	if !out.Success || out.Data == nil {
		return nil, fmt.Errorf("relay returned no data: %s", out.Error)
	}
	return &out, nil
}

func (c *Client[T]) Fetch(ctx context.Context) (poller.Update[T], error) {
	resp, err := c.Get(ctx)
	if err != nil {
		return poller.Update[T]{}, err
	}
	return poller.Update[T]{Record: *resp.Data, HasNewData: resp.HasNewData}, nil
}

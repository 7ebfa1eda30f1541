// internal/common/http/client.go
package http

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"
)

// HeaderSource decorates outgoing requests, typically with credentials.
type HeaderSource interface {
	Apply(ctx context.Context, req *http.Request) error
}

type Client struct {
	httpClient *http.Client
	headers    []HeaderSource
}

func NewClient(timeout time.Duration, headers ...HeaderSource) *Client {
	return &Client{
		httpClient: &http.Client{
			Timeout: timeout,
		},
		headers: headers,
	}
}

// NewClientWith wraps an existing *http.Client, e.g. one from httptest.
func NewClientWith(c *http.Client, headers ...HeaderSource) *Client {
	return &Client{httpClient: c, headers: headers}
}

func (c *Client) Do(req *http.Request) (*http.Response, error) {
	return c.httpClient.Do(req)
}

func (c *Client) DoWithContext(ctx context.Context, req *http.Request) (*http.Response, error) {
	req = req.WithContext(ctx)
	for _, h := range c.headers {
		if err := h.Apply(ctx, req); err != nil {
			return nil, err
		}
	}
	return c.httpClient.Do(req)
}

// StatusError is returned by GetJSON for any non-2xx response.
type StatusError struct {
	StatusCode int
	Body       string
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("unexpected status %d: %s", e.StatusCode, e.Body)
}

// Transient reports whether retrying the request could succeed.
func (e *StatusError) Transient() bool {
	return IsTransientStatus(e.StatusCode)
}

func IsTransientStatus(code int) bool {
	return code == http.StatusTooManyRequests || code >= 500
}

// GetJSON issues a GET and decodes the response body into out.
func (c *Client) GetJSON(ctx context.Context, url string, out interface{}) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Accept", "application/json")

	resp, err := c.DoWithContext(ctx, req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))
		return &StatusError{StatusCode: resp.StatusCode, Body: string(body)}
	}

	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("failed to decode response: %w", err)
	}
	return nil
}

// APIKey sets a static header on every request.
type APIKey struct {
	Header string
	Value  string
}

func (k APIKey) Apply(_ context.Context, req *http.Request) error {
	if k.Value != "" {
		req.Header.Set(k.Header, k.Value)
	}
	return nil
}

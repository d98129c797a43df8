// Package httputil provides HTTP helpers shared by the outbound clients and
// the REST API.
package httputil

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"
)

const (
	// DefaultMaxResponseBytes bounds response bodies read by clients.
	DefaultMaxResponseBytes = 8 << 20 // 8 MiB
	// DefaultMaxErrorBodyBytes bounds error bodies quoted in messages.
	DefaultMaxErrorBodyBytes = 32 << 10 // 32 KiB
)

// ReadAllWithLimit reads at most limit bytes and reports whether the body
// was truncated.
func ReadAllWithLimit(r io.Reader, limit int64) ([]byte, bool, error) {
	data, err := io.ReadAll(io.LimitReader(r, limit+1))
	if err != nil {
		return nil, false, err
	}
	if int64(len(data)) > limit {
		return data[:limit], true, nil
	}
	return data, false, nil
}

// ReadAllStrict reads the body and fails if it exceeds limit bytes.
func ReadAllStrict(r io.Reader, limit int64) ([]byte, error) {
	data, truncated, err := ReadAllWithLimit(r, limit)
	if err != nil {
		return nil, err
	}
	if truncated {
		return nil, fmt.Errorf("response body exceeds %d bytes", limit)
	}
	return data, nil
}

// Client is a JSON HTTP client bound to a base URL with a bearer credential.
type Client struct {
	baseURL    string
	bearer     string
	httpClient *http.Client
}

// ClientConfig configures a Client.
type ClientConfig struct {
	BaseURL string
	Bearer  string
	Timeout time.Duration
}

// NewClient builds a Client. A zero timeout defaults to 30 seconds.
func NewClient(cfg ClientConfig) *Client {
	timeout := cfg.Timeout
	if timeout == 0 {
		timeout = 30 * time.Second
	}
	return &Client{
		baseURL:    strings.TrimRight(cfg.BaseURL, "/"),
		bearer:     cfg.Bearer,
		httpClient: &http.Client{Timeout: timeout},
	}
}

// BaseURL returns the configured base URL.
func (c *Client) BaseURL() string { return c.baseURL }

// Do executes a JSON request against the base URL. A non-nil body is
// marshalled as JSON.
func (c *Client) Do(ctx context.Context, method, path string, body interface{}) (*http.Response, error) {
	var reqBody io.Reader
	if body != nil {
		jsonBody, err := json.Marshal(body)
		if err != nil {
			return nil, fmt.Errorf("marshal request body: %w", err)
		}
		reqBody = bytes.NewReader(jsonBody)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, reqBody)
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if c.bearer != "" {
		req.Header.Set("Authorization", "Bearer "+c.bearer)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("execute request: %w", err)
	}
	return resp, nil
}

// DoRaw executes a request with a raw body and extra headers. Used for
// binary uploads.
func (c *Client) DoRaw(ctx context.Context, method, path string, body []byte, headers map[string]string) (*http.Response, error) {
	var reqBody io.Reader
	if body != nil {
		reqBody = bytes.NewReader(body)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, reqBody)
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}
	for k, v := range headers {
		req.Header.Set(k, v)
	}
	if c.bearer != "" {
		req.Header.Set("Authorization", "Bearer "+c.bearer)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("execute request: %w", err)
	}
	return resp, nil
}

// DecodeResponse decodes a JSON response into target, converting non-2xx
// statuses into errors carrying a bounded slice of the body.
func DecodeResponse(resp *http.Response, target interface{}) error {
	defer resp.Body.Close()

	if resp.StatusCode >= 400 {
		body, truncated, err := ReadAllWithLimit(resp.Body, DefaultMaxErrorBodyBytes)
		if err != nil {
			return fmt.Errorf("read error response body: %w", err)
		}
		msg := strings.TrimSpace(string(body))
		if truncated {
			msg += "...(truncated)"
		}
		return fmt.Errorf("request failed with status %d: %s", resp.StatusCode, msg)
	}

	if target == nil {
		if _, err := io.Copy(io.Discard, io.LimitReader(resp.Body, DefaultMaxResponseBytes)); err != nil {
			return fmt.Errorf("discard response body: %w", err)
		}
		return nil
	}

	body, err := ReadAllStrict(resp.Body, DefaultMaxResponseBytes)
	if err != nil {
		return fmt.Errorf("read response body: %w", err)
	}
	if err := json.Unmarshal(body, target); err != nil {
		return fmt.Errorf("decode response: %w", err)
	}
	return nil
}

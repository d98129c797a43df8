// Package objectstore integrates the hosted object storage the entity
// banners and avatars are uploaded to.
package objectstore

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
	"os"
	"strings"
	"time"

	"github.com/FolioWorks/entity_layer/internal/httputil"
)

// Uploader stores a locally-referenced file and returns its public URL.
type Uploader interface {
	Upload(ctx context.Context, localRef, bucket, fileName string) (string, error)
}

// Client talks to a Supabase-style storage REST API.
type Client struct {
	http *httputil.Client
}

// Config holds object storage configuration.
type Config struct {
	BaseURL    string
	ServiceKey string
	Timeout    time.Duration
}

// NewClient creates a storage client.
func NewClient(cfg Config) (*Client, error) {
	if strings.TrimSpace(cfg.BaseURL) == "" {
		return nil, fmt.Errorf("storage base URL is required")
	}
	if strings.TrimSpace(cfg.ServiceKey) == "" {
		return nil, fmt.Errorf("storage service key is required")
	}
	return &Client{
		http: httputil.NewClient(httputil.ClientConfig{
			BaseURL: cfg.BaseURL,
			Bearer:  cfg.ServiceKey,
			Timeout: cfg.Timeout,
		}),
	}, nil
}

var _ Uploader = (*Client)(nil)

// Upload reads the local reference, stores it under bucket/fileName and
// returns the public URL. References that are already remote URLs pass
// through untouched.
func (c *Client) Upload(ctx context.Context, localRef, bucket, fileName string) (string, error) {
	if localRef == "" {
		return "", fmt.Errorf("local reference is required")
	}
	if strings.HasPrefix(localRef, "http://") || strings.HasPrefix(localRef, "https://") {
		return localRef, nil
	}

	data, err := os.ReadFile(localRef)
	if err != nil {
		return "", fmt.Errorf("read %s: %w", localRef, err)
	}

	contentType := http.DetectContentType(data)
	path := fmt.Sprintf("/storage/v1/object/%s/%s", bucket, url.PathEscape(fileName))
	resp, err := c.http.DoRaw(ctx, http.MethodPost, path, data, map[string]string{
		"Content-Type": contentType,
		"x-upsert":     "true",
	})
	if err != nil {
		return "", fmt.Errorf("upload %s: %w", fileName, err)
	}
	if err := httputil.DecodeResponse(resp, nil); err != nil {
		return "", fmt.Errorf("upload %s: %w", fileName, err)
	}

	return c.PublicURL(bucket, fileName), nil
}

// PublicURL returns the public URL for an uploaded object.
func (c *Client) PublicURL(bucket, fileName string) string {
	return fmt.Sprintf("%s/storage/v1/object/public/%s/%s", c.http.BaseURL(), bucket, url.PathEscape(fileName))
}

// PassThrough returns local references unchanged. Used in development when
// no storage backend is configured.
type PassThrough struct{}

var _ Uploader = PassThrough{}

// Upload returns the reference as-is.
func (PassThrough) Upload(_ context.Context, localRef, _, _ string) (string, error) {
	return localRef, nil
}

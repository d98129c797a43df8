// Package identity integrates the external identity/org provider. Each
// entity is associated 1:1 with an organization managed there.
package identity

import (
	"context"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/FolioWorks/entity_layer/internal/httputil"
)

// Organization is the externally managed identity group.
type Organization struct {
	ID   string `json:"id"`
	Name string `json:"name"`
	Slug string `json:"slug"`
}

// Directory creates identity groups. Failures propagate as fatal submission
// errors; the contract offers no delete, so callers cannot roll back.
type Directory interface {
	CreateOrganization(ctx context.Context, name, slug string) (Organization, error)
}

// Client talks to the provider's REST API.
type Client struct {
	http *httputil.Client
}

// Config holds identity provider configuration.
type Config struct {
	BaseURL   string
	SecretKey string
	Timeout   time.Duration
}

// NewClient creates a directory client.
func NewClient(cfg Config) (*Client, error) {
	if strings.TrimSpace(cfg.BaseURL) == "" {
		return nil, fmt.Errorf("identity base URL is required")
	}
	if strings.TrimSpace(cfg.SecretKey) == "" {
		return nil, fmt.Errorf("identity secret key is required")
	}
	return &Client{
		http: httputil.NewClient(httputil.ClientConfig{
			BaseURL: cfg.BaseURL,
			Bearer:  cfg.SecretKey,
			Timeout: cfg.Timeout,
		}),
	}, nil
}

var _ Directory = (*Client)(nil)

// CreateOrganization creates an identity group and returns its ID.
func (c *Client) CreateOrganization(ctx context.Context, name, slug string) (Organization, error) {
	name = strings.TrimSpace(name)
	slug = strings.TrimSpace(slug)
	if name == "" {
		return Organization{}, fmt.Errorf("organization name is required")
	}

	resp, err := c.http.Do(ctx, http.MethodPost, "/v1/organizations", map[string]string{
		"name": name,
		"slug": slug,
	})
	if err != nil {
		return Organization{}, fmt.Errorf("create organization: %w", err)
	}

	var org Organization
	if err := httputil.DecodeResponse(resp, &org); err != nil {
		return Organization{}, fmt.Errorf("create organization: %w", err)
	}
	if org.ID == "" {
		return Organization{}, fmt.Errorf("create organization: provider returned no id")
	}
	return org, nil
}

// StaticDirectory mints organization IDs locally. Used in development and
// tests when no provider is configured.
type StaticDirectory struct{}

var _ Directory = StaticDirectory{}

// CreateOrganization fabricates an organization with a fresh ID.
func (StaticDirectory) CreateOrganization(_ context.Context, name, slug string) (Organization, error) {
	if strings.TrimSpace(name) == "" {
		return Organization{}, fmt.Errorf("organization name is required")
	}
	return Organization{ID: "org_" + uuid.NewString(), Name: name, Slug: slug}, nil
}

// Package provider defines the vendor catalog entries offered per
// configuration category.
package provider

import (
	"time"

	"github.com/FolioWorks/entity_layer/internal/app/domain/entity"
)

// Provider is one vendor offered for a configuration category.
type Provider struct {
	ID          string             `json:"id"`
	Category    entity.CategoryKey `json:"category"`
	Name        string             `json:"name"`
	Description string             `json:"description,omitempty"`
	URL         string             `json:"url,omitempty"`
	LogoURL     string             `json:"logo_url,omitempty"`
	CreatedAt   time.Time          `json:"created_at"`
}

// Package entities implements entity CRUD on top of the entity store.
package entities

import (
	"context"
	"fmt"
	"strings"

	"github.com/FolioWorks/entity_layer/internal/app/domain/entity"
	"github.com/FolioWorks/entity_layer/internal/app/storage"
	"github.com/FolioWorks/entity_layer/pkg/logger"
)

// Service manages entity records.
type Service struct {
	store storage.EntityStore
	log   *logger.Logger
}

// New constructs an entities service.
func New(store storage.EntityStore, log *logger.Logger) *Service {
	if log == nil {
		log = logger.NewDefault("entities")
	}
	return &Service{store: store, log: log}
}

// Create persists a new entity.
func (s *Service) Create(ctx context.Context, ent entity.Entity) (entity.Entity, error) {
	if strings.TrimSpace(ent.OwnerID) == "" {
		return entity.Entity{}, fmt.Errorf("owner id is required")
	}
	if strings.TrimSpace(ent.Name) == "" {
		return entity.Entity{}, fmt.Errorf("entity name is required")
	}
	created, err := s.store.CreateEntity(ctx, ent)
	if err != nil {
		return entity.Entity{}, fmt.Errorf("create entity: %w", err)
	}
	s.log.WithContext(ctx).WithField("entity_id", created.ID).Info("entity created")
	return created, nil
}

// Get returns one entity.
func (s *Service) Get(ctx context.Context, id string) (entity.Entity, error) {
	return s.store.GetEntity(ctx, id)
}

// List returns the entities owned by a user.
func (s *Service) List(ctx context.Context, ownerID string) ([]entity.Entity, error) {
	return s.store.ListEntities(ctx, ownerID)
}

// Patch carries a partial entity update. nil fields are left untouched.
type Patch struct {
	Name          *string                                       `json:"name,omitempty"`
	Handle        *string                                       `json:"handle,omitempty"`
	Brief         *string                                       `json:"brief,omitempty"`
	Type          *string                                       `json:"type,omitempty"`
	BannerURL     *string                                       `json:"banner_url,omitempty"`
	AvatarURL     *string                                       `json:"avatar_url,omitempty"`
	SocialLinks   *[]entity.SocialLink                          `json:"social_links,omitempty"`
	Configuration *map[entity.CategoryKey]entity.CategoryConfig `json:"configuration,omitempty"`
	CompletedKeys *[]entity.CategoryKey                         `json:"completed_keys,omitempty"`
}

// Update applies a partial update and returns the stored result.
func (s *Service) Update(ctx context.Context, id string, p Patch) (entity.Entity, error) {
	ent, err := s.store.GetEntity(ctx, id)
	if err != nil {
		return entity.Entity{}, err
	}

	if p.Name != nil {
		if strings.TrimSpace(*p.Name) == "" {
			return entity.Entity{}, fmt.Errorf("entity name cannot be blank")
		}
		ent.Name = *p.Name
	}
	if p.Handle != nil {
		ent.Handle = *p.Handle
	}
	if p.Brief != nil {
		ent.Brief = *p.Brief
	}
	if p.Type != nil {
		ent.Type = *p.Type
	}
	if p.BannerURL != nil {
		ent.BannerURL = *p.BannerURL
	}
	if p.AvatarURL != nil {
		ent.AvatarURL = *p.AvatarURL
	}
	if p.SocialLinks != nil {
		ent.SocialLinks = *p.SocialLinks
	}
	if p.Configuration != nil {
		for key := range *p.Configuration {
			if !entity.ValidCategory(key) {
				return entity.Entity{}, fmt.Errorf("unknown category %q", key)
			}
		}
		ent.Configuration = *p.Configuration
	}
	if p.CompletedKeys != nil {
		for _, key := range *p.CompletedKeys {
			if !entity.ValidCategory(key) {
				return entity.Entity{}, fmt.Errorf("unknown category %q", key)
			}
		}
		ent.CompletedKeys = *p.CompletedKeys
	}

	updated, err := s.store.UpdateEntity(ctx, ent)
	if err != nil {
		return entity.Entity{}, fmt.Errorf("update entity: %w", err)
	}
	return updated, nil
}

// SetItemCompleted persists one category completion flag on an entity.
func (s *Service) SetItemCompleted(ctx context.Context, entityID string, key entity.CategoryKey, completed bool) error {
	if !entity.ValidCategory(key) {
		return fmt.Errorf("unknown category %q", key)
	}
	ent, err := s.store.GetEntity(ctx, entityID)
	if err != nil {
		return err
	}

	keys := ent.CompletedKeys[:0:0]
	for _, k := range ent.CompletedKeys {
		if k != key {
			keys = append(keys, k)
		}
	}
	if completed {
		keys = append(keys, key)
	}
	ent.CompletedKeys = keys

	if _, err := s.store.UpdateEntity(ctx, ent); err != nil {
		return fmt.Errorf("persist completion: %w", err)
	}
	return nil
}

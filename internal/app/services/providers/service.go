// Package providers serves the vendor catalog, one list per configuration
// category, with an optional Redis read-through cache.
package providers

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/go-redis/redis/v8"

	"github.com/FolioWorks/entity_layer/internal/app/domain/entity"
	"github.com/FolioWorks/entity_layer/internal/app/domain/provider"
	"github.com/FolioWorks/entity_layer/internal/app/metrics"
	"github.com/FolioWorks/entity_layer/internal/app/storage"
	"github.com/FolioWorks/entity_layer/pkg/logger"
)

const cacheTTL = 5 * time.Minute

// Service serves provider catalogs.
type Service struct {
	store storage.ProviderStore
	cache *redis.Client // nil disables caching
	log   *logger.Logger
}

// New constructs a providers service. cache may be nil.
func New(store storage.ProviderStore, cache *redis.Client, log *logger.Logger) *Service {
	if log == nil {
		log = logger.NewDefault("providers")
	}
	return &Service{store: store, cache: cache, log: log}
}

// ListByCategory returns the vendors for one category. Unknown categories
// are rejected. Cache failures fall through to the store.
func (s *Service) ListByCategory(ctx context.Context, key entity.CategoryKey) ([]provider.Provider, error) {
	if !entity.ValidCategory(key) {
		return nil, fmt.Errorf("unknown category %q", key)
	}

	if cached, ok := s.fromCache(ctx, key); ok {
		metrics.RecordProviderFetch(string(key), "cache_hit")
		return cached, nil
	}

	list, err := s.store.ListProviders(ctx, key)
	if err != nil {
		metrics.RecordProviderFetch(string(key), "error")
		return nil, fmt.Errorf("list providers: %w", err)
	}
	if list == nil {
		list = []provider.Provider{}
	}
	metrics.RecordProviderFetch(string(key), "ok")
	s.toCache(ctx, key, list)
	return list, nil
}

// Seed inserts a provider into the catalog and drops the category's cache
// entry.
func (s *Service) Seed(ctx context.Context, p provider.Provider) (provider.Provider, error) {
	if !entity.ValidCategory(p.Category) {
		return provider.Provider{}, fmt.Errorf("unknown category %q", p.Category)
	}
	if p.Name == "" {
		return provider.Provider{}, fmt.Errorf("provider name is required")
	}
	created, err := s.store.CreateProvider(ctx, p)
	if err != nil {
		return provider.Provider{}, fmt.Errorf("seed provider: %w", err)
	}
	if s.cache != nil {
		if err := s.cache.Del(ctx, cacheKey(p.Category)).Err(); err != nil {
			s.log.WithError(err).WithField("category", p.Category).Debug("cache invalidation failed")
		}
	}
	return created, nil
}

func cacheKey(key entity.CategoryKey) string {
	return "providers:" + string(key)
}

func (s *Service) fromCache(ctx context.Context, key entity.CategoryKey) ([]provider.Provider, bool) {
	if s.cache == nil {
		return nil, false
	}
	raw, err := s.cache.Get(ctx, cacheKey(key)).Bytes()
	if err != nil {
		if err != redis.Nil {
			s.log.WithError(err).WithField("category", key).Debug("cache read failed")
		}
		return nil, false
	}
	var list []provider.Provider
	if err := json.Unmarshal(raw, &list); err != nil {
		return nil, false
	}
	return list, true
}

func (s *Service) toCache(ctx context.Context, key entity.CategoryKey, list []provider.Provider) {
	if s.cache == nil {
		return
	}
	raw, err := json.Marshal(list)
	if err != nil {
		return
	}
	if err := s.cache.Set(ctx, cacheKey(key), raw, cacheTTL).Err(); err != nil {
		s.log.WithError(err).WithField("category", key).Debug("cache write failed")
	}
}

package memory

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/FolioWorks/entity_layer/internal/app/domain/entity"
	"github.com/FolioWorks/entity_layer/internal/app/domain/invite"
	"github.com/FolioWorks/entity_layer/internal/app/domain/provider"
	"github.com/FolioWorks/entity_layer/internal/app/storage"
)

// Store is an in-memory implementation of the storage interfaces. It is safe
// for concurrent use and is primarily intended for tests and local
// development.
type Store struct {
	mu        sync.RWMutex
	nextID    int64
	drafts    map[string]draftSlot
	entities  map[string]entity.Entity
	providers map[entity.CategoryKey][]provider.Provider
	invites   map[string]invite.Invite
	roster    map[string][]invite.ContactCandidate
}

type draftSlot struct {
	payload   []byte
	updatedAt time.Time
}

var _ storage.DraftStore = (*Store)(nil)
var _ storage.EntityStore = (*Store)(nil)
var _ storage.ProviderStore = (*Store)(nil)
var _ storage.InviteStore = (*Store)(nil)
var _ storage.RosterStore = (*Store)(nil)

// New creates an empty store.
func New() *Store {
	return &Store{
		nextID:    1,
		drafts:    make(map[string]draftSlot),
		entities:  make(map[string]entity.Entity),
		providers: make(map[entity.CategoryKey][]provider.Provider),
		invites:   make(map[string]invite.Invite),
		roster:    make(map[string][]invite.ContactCandidate),
	}
}

func (s *Store) nextIDLocked() string {
	id := s.nextID
	s.nextID++
	return fmt.Sprintf("%d", id)
}

// DraftStore implementation --------------------------------------------------

func (s *Store) PutDraft(_ context.Context, userID string, payload []byte, updatedAt time.Time) error {
	if userID == "" {
		return fmt.Errorf("user id is required")
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	buf := make([]byte, len(payload))
	copy(buf, payload)
	s.drafts[userID] = draftSlot{payload: buf, updatedAt: updatedAt.UTC()}
	return nil
}

func (s *Store) GetDraft(_ context.Context, userID string) ([]byte, time.Time, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	slot, ok := s.drafts[userID]
	if !ok {
		return nil, time.Time{}, fmt.Errorf("draft for user %s: %w", userID, storage.ErrNotFound)
	}
	buf := make([]byte, len(slot.payload))
	copy(buf, slot.payload)
	return buf, slot.updatedAt, nil
}

func (s *Store) DeleteDraft(_ context.Context, userID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	delete(s.drafts, userID)
	return nil
}

func (s *Store) ListDraftsBefore(_ context.Context, cutoff time.Time) ([]string, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var users []string
	for userID, slot := range s.drafts {
		if slot.updatedAt.Before(cutoff) {
			users = append(users, userID)
		}
	}
	return users, nil
}

// EntityStore implementation -------------------------------------------------

func (s *Store) CreateEntity(_ context.Context, ent entity.Entity) (entity.Entity, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if ent.ID == "" {
		ent.ID = s.nextIDLocked()
	} else if _, exists := s.entities[ent.ID]; exists {
		return entity.Entity{}, fmt.Errorf("entity %s already exists", ent.ID)
	}

	now := time.Now().UTC()
	ent.CreatedAt = now
	ent.UpdatedAt = now
	ent = cloneEntity(ent)

	s.entities[ent.ID] = ent
	return cloneEntity(ent), nil
}

func (s *Store) UpdateEntity(_ context.Context, ent entity.Entity) (entity.Entity, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	original, ok := s.entities[ent.ID]
	if !ok {
		return entity.Entity{}, fmt.Errorf("entity %s: %w", ent.ID, storage.ErrNotFound)
	}

	ent.CreatedAt = original.CreatedAt
	ent.UpdatedAt = time.Now().UTC()
	ent = cloneEntity(ent)

	s.entities[ent.ID] = ent
	return cloneEntity(ent), nil
}

func (s *Store) GetEntity(_ context.Context, id string) (entity.Entity, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	ent, ok := s.entities[id]
	if !ok {
		return entity.Entity{}, fmt.Errorf("entity %s: %w", id, storage.ErrNotFound)
	}
	return cloneEntity(ent), nil
}

func (s *Store) ListEntities(_ context.Context, ownerID string) ([]entity.Entity, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var out []entity.Entity
	for _, ent := range s.entities {
		if ownerID == "" || ent.OwnerID == ownerID {
			out = append(out, cloneEntity(ent))
		}
	}
	return out, nil
}

// ProviderStore implementation -----------------------------------------------

func (s *Store) CreateProvider(_ context.Context, p provider.Provider) (provider.Provider, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if p.ID == "" {
		p.ID = s.nextIDLocked()
	}
	p.CreatedAt = time.Now().UTC()
	s.providers[p.Category] = append(s.providers[p.Category], p)
	return p, nil
}

func (s *Store) ListProviders(_ context.Context, category entity.CategoryKey) ([]provider.Provider, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	list := s.providers[category]
	out := make([]provider.Provider, len(list))
	copy(out, list)
	return out, nil
}

// InviteStore implementation -------------------------------------------------

func (s *Store) CreateInvite(_ context.Context, inv invite.Invite) (invite.Invite, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if inv.ID == "" {
		inv.ID = s.nextIDLocked()
	} else if _, exists := s.invites[inv.ID]; exists {
		return invite.Invite{}, fmt.Errorf("invite %s already exists", inv.ID)
	}

	now := time.Now().UTC()
	inv.CreatedAt = now
	inv.UpdatedAt = now
	s.invites[inv.ID] = inv
	return inv, nil
}

func (s *Store) UpdateInvite(_ context.Context, inv invite.Invite) (invite.Invite, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	original, ok := s.invites[inv.ID]
	if !ok {
		return invite.Invite{}, fmt.Errorf("invite %s: %w", inv.ID, storage.ErrNotFound)
	}

	inv.CreatedAt = original.CreatedAt
	inv.UpdatedAt = time.Now().UTC()
	s.invites[inv.ID] = inv
	return inv, nil
}

func (s *Store) GetInvite(_ context.Context, id string) (invite.Invite, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	inv, ok := s.invites[id]
	if !ok {
		return invite.Invite{}, fmt.Errorf("invite %s: %w", id, storage.ErrNotFound)
	}
	return inv, nil
}

func (s *Store) ListInvites(_ context.Context, inviterID string) ([]invite.Invite, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var out []invite.Invite
	for _, inv := range s.invites {
		if inviterID == "" || inv.InviterID == inviterID {
			out = append(out, inv)
		}
	}
	return out, nil
}

// RosterStore implementation -------------------------------------------------

func (s *Store) AddRosterContact(_ context.Context, ownerID string, c invite.ContactCandidate) (invite.ContactCandidate, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if c.ID == "" {
		c.ID = s.nextIDLocked()
	}
	s.roster[ownerID] = append(s.roster[ownerID], c)
	return c, nil
}

func (s *Store) ListRoster(_ context.Context, ownerID string) ([]invite.ContactCandidate, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	list := s.roster[ownerID]
	out := make([]invite.ContactCandidate, len(list))
	copy(out, list)
	return out, nil
}

func cloneEntity(ent entity.Entity) entity.Entity {
	out := ent
	if ent.SocialLinks != nil {
		out.SocialLinks = make([]entity.SocialLink, len(ent.SocialLinks))
		copy(out.SocialLinks, ent.SocialLinks)
	}
	if ent.Configuration != nil {
		out.Configuration = make(map[entity.CategoryKey]entity.CategoryConfig, len(ent.Configuration))
		for k, v := range ent.Configuration {
			out.Configuration[k] = v
		}
	}
	if ent.CompletedKeys != nil {
		out.CompletedKeys = make([]entity.CategoryKey, len(ent.CompletedKeys))
		copy(out.CompletedKeys, ent.CompletedKeys)
	}
	return out
}

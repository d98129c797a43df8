package storage

import (
	"context"
	"errors"
	"time"

	"github.com/FolioWorks/entity_layer/internal/app/domain/entity"
	"github.com/FolioWorks/entity_layer/internal/app/domain/invite"
	"github.com/FolioWorks/entity_layer/internal/app/domain/provider"
)

// ErrNotFound is returned when a requested record does not exist. The
// Postgres store maps sql.ErrNoRows onto it so callers never depend on the
// backend.
var ErrNotFound = errors.New("not found")

// DraftStore persists the single-slot wizard draft per user. The payload is
// an opaque JSON blob; shape handling belongs to the drafts service.
type DraftStore interface {
	PutDraft(ctx context.Context, userID string, payload []byte, updatedAt time.Time) error
	GetDraft(ctx context.Context, userID string) ([]byte, time.Time, error)
	DeleteDraft(ctx context.Context, userID string) error
	ListDraftsBefore(ctx context.Context, cutoff time.Time) ([]string, error)
}

// EntityStore persists entity records.
type EntityStore interface {
	CreateEntity(ctx context.Context, ent entity.Entity) (entity.Entity, error)
	UpdateEntity(ctx context.Context, ent entity.Entity) (entity.Entity, error)
	GetEntity(ctx context.Context, id string) (entity.Entity, error)
	ListEntities(ctx context.Context, ownerID string) ([]entity.Entity, error)
}

// ProviderStore persists the vendor catalog.
type ProviderStore interface {
	CreateProvider(ctx context.Context, p provider.Provider) (provider.Provider, error)
	ListProviders(ctx context.Context, category entity.CategoryKey) ([]provider.Provider, error)
}

// InviteStore persists invite records.
type InviteStore interface {
	CreateInvite(ctx context.Context, inv invite.Invite) (invite.Invite, error)
	UpdateInvite(ctx context.Context, inv invite.Invite) (invite.Invite, error)
	GetInvite(ctx context.Context, id string) (invite.Invite, error)
	ListInvites(ctx context.Context, inviterID string) ([]invite.Invite, error)
}

// RosterStore holds the internal contact roster. It is a stable placeholder
// source: empty unless seeded.
type RosterStore interface {
	AddRosterContact(ctx context.Context, ownerID string, c invite.ContactCandidate) (invite.ContactCandidate, error)
	ListRoster(ctx context.Context, ownerID string) ([]invite.ContactCandidate, error)
}

package memory

import (
	"bytes"
	"context"
	"errors"
	"testing"
	"time"

	"github.com/FolioWorks/entity_layer/internal/app/domain/entity"
	"github.com/FolioWorks/entity_layer/internal/app/domain/invite"
	"github.com/FolioWorks/entity_layer/internal/app/storage"
)

func TestDraftSlotOverwrite(t *testing.T) {
	s := New()
	ctx := context.Background()

	if err := s.PutDraft(ctx, "u1", []byte(`{"step":1}`), time.Now()); err != nil {
		t.Fatalf("PutDraft: %v", err)
	}
	if err := s.PutDraft(ctx, "u1", []byte(`{"step":2}`), time.Now()); err != nil {
		t.Fatalf("PutDraft: %v", err)
	}

	payload, _, err := s.GetDraft(ctx, "u1")
	if err != nil {
		t.Fatalf("GetDraft: %v", err)
	}
	if !bytes.Equal(payload, []byte(`{"step":2}`)) {
		t.Fatalf("slot was not overwritten: %s", payload)
	}
}

func TestGetDraftMissing(t *testing.T) {
	s := New()

	_, _, err := s.GetDraft(context.Background(), "nobody")
	if !errors.Is(err, storage.ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
}

func TestListDraftsBefore(t *testing.T) {
	s := New()
	ctx := context.Background()
	old := time.Now().Add(-48 * time.Hour)

	if err := s.PutDraft(ctx, "stale", []byte(`{}`), old); err != nil {
		t.Fatalf("PutDraft: %v", err)
	}
	if err := s.PutDraft(ctx, "fresh", []byte(`{}`), time.Now()); err != nil {
		t.Fatalf("PutDraft: %v", err)
	}

	users, err := s.ListDraftsBefore(ctx, time.Now().Add(-24*time.Hour))
	if err != nil {
		t.Fatalf("ListDraftsBefore: %v", err)
	}
	if len(users) != 1 || users[0] != "stale" {
		t.Fatalf("unexpected stale set: %v", users)
	}
}

func TestEntityCloneIsolation(t *testing.T) {
	s := New()
	ctx := context.Background()

	created, err := s.CreateEntity(ctx, entity.Entity{
		OwnerID:       "u1",
		Name:          "Acme",
		OrgID:         "org_1",
		CompletedKeys: []entity.CategoryKey{entity.CategoryBank},
	})
	if err != nil {
		t.Fatalf("CreateEntity: %v", err)
	}

	// Mutating the returned value must not leak into the store.
	created.CompletedKeys[0] = entity.CategoryLegal
	got, err := s.GetEntity(ctx, created.ID)
	if err != nil {
		t.Fatalf("GetEntity: %v", err)
	}
	if got.CompletedKeys[0] != entity.CategoryBank {
		t.Fatal("stored entity shares state with the caller")
	}
}

func TestUpdateEntityPreservesCreatedAt(t *testing.T) {
	s := New()
	ctx := context.Background()

	created, err := s.CreateEntity(ctx, entity.Entity{OwnerID: "u1", Name: "Acme", OrgID: "org_1"})
	if err != nil {
		t.Fatalf("CreateEntity: %v", err)
	}

	created.Brief = "updated"
	updated, err := s.UpdateEntity(ctx, created)
	if err != nil {
		t.Fatalf("UpdateEntity: %v", err)
	}
	if !updated.CreatedAt.Equal(created.CreatedAt) {
		t.Fatal("created timestamp changed on update")
	}
	if updated.Brief != "updated" {
		t.Fatalf("update not applied: %q", updated.Brief)
	}
}

func TestUpdateEntityMissing(t *testing.T) {
	s := New()

	_, err := s.UpdateEntity(context.Background(), entity.Entity{ID: "nope"})
	if !errors.Is(err, storage.ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
}

func TestInviteLifecycle(t *testing.T) {
	s := New()
	ctx := context.Background()

	created, err := s.CreateInvite(ctx, invite.Invite{InviterID: "u1", EntityID: "e1", Name: "Pat", Status: invite.StatusPending})
	if err != nil {
		t.Fatalf("CreateInvite: %v", err)
	}

	created.Status = invite.StatusSent
	updated, err := s.UpdateInvite(ctx, created)
	if err != nil {
		t.Fatalf("UpdateInvite: %v", err)
	}
	if updated.Status != invite.StatusSent {
		t.Fatalf("status not updated: %q", updated.Status)
	}

	list, err := s.ListInvites(ctx, "u1")
	if err != nil {
		t.Fatalf("ListInvites: %v", err)
	}
	if len(list) != 1 {
		t.Fatalf("expected 1 invite, got %d", len(list))
	}
}

func TestRosterScopedByOwner(t *testing.T) {
	s := New()
	ctx := context.Background()

	if _, err := s.AddRosterContact(ctx, "u1", invite.ContactCandidate{Name: "Pat"}); err != nil {
		t.Fatalf("AddRosterContact: %v", err)
	}

	mine, err := s.ListRoster(ctx, "u1")
	if err != nil {
		t.Fatalf("ListRoster: %v", err)
	}
	if len(mine) != 1 {
		t.Fatalf("expected 1 contact, got %d", len(mine))
	}
	theirs, err := s.ListRoster(ctx, "u2")
	if err != nil {
		t.Fatalf("ListRoster: %v", err)
	}
	if len(theirs) != 0 {
		t.Fatalf("roster leaked across owners: %v", theirs)
	}
}

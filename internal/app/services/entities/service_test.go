package entities

import (
	"context"
	"errors"
	"testing"

	"github.com/FolioWorks/entity_layer/internal/app/domain/entity"
	"github.com/FolioWorks/entity_layer/internal/app/storage"
	"github.com/FolioWorks/entity_layer/internal/app/storage/memory"
)

func seedEntity(t *testing.T, svc *Service) entity.Entity {
	t.Helper()
	created, err := svc.Create(context.Background(), entity.Entity{
		OwnerID: "u1",
		Name:    "Acme",
		Brief:   "a company",
		OrgID:   "org_1",
	})
	if err != nil {
		t.Fatalf("Create: %v", err)
	}
	return created
}

func TestCreateValidation(t *testing.T) {
	svc := New(memory.New(), nil)
	ctx := context.Background()

	if _, err := svc.Create(ctx, entity.Entity{Name: "Acme"}); err == nil {
		t.Fatal("Create accepted a missing owner")
	}
	if _, err := svc.Create(ctx, entity.Entity{OwnerID: "u1", Name: "  "}); err == nil {
		t.Fatal("Create accepted a blank name")
	}
}

func TestUpdateAppliesOnlySetFields(t *testing.T) {
	svc := New(memory.New(), nil)
	created := seedEntity(t, svc)

	brief := "updated brief"
	updated, err := svc.Update(context.Background(), created.ID, Patch{Brief: &brief})
	if err != nil {
		t.Fatalf("Update: %v", err)
	}
	if updated.Brief != brief {
		t.Fatalf("brief not applied: %q", updated.Brief)
	}
	if updated.Name != "Acme" {
		t.Fatalf("name changed unexpectedly: %q", updated.Name)
	}
	if updated.OrgID != "org_1" {
		t.Fatalf("org id changed unexpectedly: %q", updated.OrgID)
	}
}

func TestUpdateRejectsBlankName(t *testing.T) {
	svc := New(memory.New(), nil)
	created := seedEntity(t, svc)

	blank := "  "
	if _, err := svc.Update(context.Background(), created.ID, Patch{Name: &blank}); err == nil {
		t.Fatal("Update accepted a blank name")
	}
}

func TestUpdateRejectsUnknownCategory(t *testing.T) {
	svc := New(memory.New(), nil)
	created := seedEntity(t, svc)

	cfg := map[entity.CategoryKey]entity.CategoryConfig{"yachts": {}}
	if _, err := svc.Update(context.Background(), created.ID, Patch{Configuration: &cfg}); err == nil {
		t.Fatal("Update accepted an unknown category")
	}
}

func TestUpdateMissingEntity(t *testing.T) {
	svc := New(memory.New(), nil)

	brief := "x"
	_, err := svc.Update(context.Background(), "nope", Patch{Brief: &brief})
	if !errors.Is(err, storage.ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
}

func TestSetItemCompleted(t *testing.T) {
	svc := New(memory.New(), nil)
	created := seedEntity(t, svc)
	ctx := context.Background()

	if err := svc.SetItemCompleted(ctx, created.ID, entity.CategoryBank, true); err != nil {
		t.Fatalf("SetItemCompleted: %v", err)
	}
	// Setting twice must not duplicate the key.
	if err := svc.SetItemCompleted(ctx, created.ID, entity.CategoryBank, true); err != nil {
		t.Fatalf("SetItemCompleted: %v", err)
	}

	got, err := svc.Get(ctx, created.ID)
	if err != nil {
		t.Fatalf("Get: %v", err)
	}
	if !got.ItemCompleted(entity.CategoryBank) {
		t.Fatal("category not marked completed")
	}
	if len(got.CompletedKeys) != 1 {
		t.Fatalf("expected 1 completed key, got %d", len(got.CompletedKeys))
	}

	if err := svc.SetItemCompleted(ctx, created.ID, entity.CategoryBank, false); err != nil {
		t.Fatalf("SetItemCompleted: %v", err)
	}
	got, err = svc.Get(ctx, created.ID)
	if err != nil {
		t.Fatalf("Get: %v", err)
	}
	if got.ItemCompleted(entity.CategoryBank) {
		t.Fatal("category still marked completed")
	}

	if err := svc.SetItemCompleted(ctx, created.ID, "yachts", true); err == nil {
		t.Fatal("SetItemCompleted accepted an unknown category")
	}
}

func TestListFiltersByOwner(t *testing.T) {
	svc := New(memory.New(), nil)
	ctx := context.Background()
	seedEntity(t, svc)
	if _, err := svc.Create(ctx, entity.Entity{OwnerID: "u2", Name: "Other", OrgID: "org_2"}); err != nil {
		t.Fatalf("Create: %v", err)
	}

	list, err := svc.List(ctx, "u1")
	if err != nil {
		t.Fatalf("List: %v", err)
	}
	if len(list) != 1 || list[0].OwnerID != "u1" {
		t.Fatalf("unexpected list: %+v", list)
	}
}

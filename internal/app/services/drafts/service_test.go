package drafts

import (
	"context"
	"reflect"
	"testing"
	"time"

	"github.com/FolioWorks/entity_layer/internal/app/domain/draft"
	"github.com/FolioWorks/entity_layer/internal/app/domain/entity"
	"github.com/FolioWorks/entity_layer/internal/app/storage/memory"
)

func TestLoadMissingReturnsEmpty(t *testing.T) {
	svc := New(memory.New(), nil)

	d, err := svc.Load(context.Background(), "nobody")
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if d.Step != draft.StepProfile {
		t.Fatalf("expected step %d, got %d", draft.StepProfile, d.Step)
	}
	if d.Profile.Name != "" {
		t.Fatalf("expected empty profile, got name %q", d.Profile.Name)
	}
}

func TestSaveLoadRoundTrip(t *testing.T) {
	svc := New(memory.New(), nil)
	ctx := context.Background()

	d := draft.Empty()
	d.Step = draft.StepConfiguration
	d.Profile = draft.Profile{Name: "Acme", Brief: "a company", Handle: "acme"}
	d.Configuration.Data[entity.CategoryBank] = entity.CategoryConfig{ProviderID: "p1", Notes: "checking"}
	d.Configuration.SetCompleted(entity.CategoryBank, true)

	if err := svc.Save(ctx, "u1", d); err != nil {
		t.Fatalf("Save: %v", err)
	}
	got, err := svc.Load(ctx, "u1")
	if err != nil {
		t.Fatalf("Load: %v", err)
	}

	got.UpdatedAt, d.UpdatedAt = time.Time{}, time.Time{}
	if !reflect.DeepEqual(d, got) {
		t.Fatalf("round trip mismatch:\nsaved:  %+v\nloaded: %+v", d, got)
	}
}

func TestLoadCorruptReturnsEmpty(t *testing.T) {
	store := memory.New()
	svc := New(store, nil)
	ctx := context.Background()

	if err := store.PutDraft(ctx, "u1", []byte("{not json"), time.Now()); err != nil {
		t.Fatalf("PutDraft: %v", err)
	}

	d, err := svc.Load(ctx, "u1")
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if d.Step != draft.StepProfile || d.Profile.Name != "" {
		t.Fatalf("expected fresh draft, got %+v", d)
	}
}

func TestLoadDropsUnknownCategories(t *testing.T) {
	store := memory.New()
	svc := New(store, nil)
	ctx := context.Background()

	blob := []byte(`{"step":2,"profile":{"name":"Acme","brief":"x"},"configuration":{"data":{"bank":{"provider_id":"p1"},"yachts":{"provider_id":"p9"}},"completed_keys":["bank","yachts"]},"invite":{}}`)
	if err := store.PutDraft(ctx, "u1", blob, time.Now()); err != nil {
		t.Fatalf("PutDraft: %v", err)
	}

	d, err := svc.Load(ctx, "u1")
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if _, ok := d.Configuration.Data["yachts"]; ok {
		t.Fatal("unknown category survived normalization")
	}
	if !d.Configuration.Completed(entity.CategoryBank) {
		t.Fatal("known completed key was dropped")
	}
	if len(d.Configuration.CompletedKeys) != 1 {
		t.Fatalf("expected 1 completed key, got %d", len(d.Configuration.CompletedKeys))
	}
}

func TestClearThenLoad(t *testing.T) {
	svc := New(memory.New(), nil)
	ctx := context.Background()

	d := draft.Empty()
	d.Profile.Name = "Acme"
	if err := svc.Save(ctx, "u1", d); err != nil {
		t.Fatalf("Save: %v", err)
	}
	if err := svc.Clear(ctx, "u1"); err != nil {
		t.Fatalf("Clear: %v", err)
	}

	got, err := svc.Load(ctx, "u1")
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if got.Profile.Name != "" {
		t.Fatalf("draft survived clear: %+v", got)
	}
}

func TestBlankUserIDRejected(t *testing.T) {
	svc := New(memory.New(), nil)
	ctx := context.Background()

	if _, err := svc.Load(ctx, "  "); err == nil {
		t.Fatal("Load accepted a blank user id")
	}
	if err := svc.Save(ctx, "", draft.Empty()); err == nil {
		t.Fatal("Save accepted a blank user id")
	}
	if err := svc.Clear(ctx, ""); err == nil {
		t.Fatal("Clear accepted a blank user id")
	}
}

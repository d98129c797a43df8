package drafts

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/FolioWorks/entity_layer/internal/app/storage"
	"github.com/FolioWorks/entity_layer/internal/app/storage/memory"
)

func TestSweepRemovesStaleDrafts(t *testing.T) {
	store := memory.New()
	ctx := context.Background()

	if err := store.PutDraft(ctx, "stale", []byte(`{}`), time.Now().Add(-48*time.Hour)); err != nil {
		t.Fatalf("PutDraft: %v", err)
	}
	if err := store.PutDraft(ctx, "fresh", []byte(`{}`), time.Now()); err != nil {
		t.Fatalf("PutDraft: %v", err)
	}

	j := NewJanitor(store, 24*time.Hour, "@hourly", nil)
	j.sweep()

	if _, _, err := store.GetDraft(ctx, "stale"); !errors.Is(err, storage.ErrNotFound) {
		t.Fatalf("stale draft survived: %v", err)
	}
	if _, _, err := store.GetDraft(ctx, "fresh"); err != nil {
		t.Fatalf("fresh draft was removed: %v", err)
	}
}

func TestJanitorLifecycle(t *testing.T) {
	j := NewJanitor(memory.New(), time.Hour, "@hourly", nil)

	if got := j.Name(); got != "draft-janitor" {
		t.Fatalf("unexpected name %q", got)
	}
	if err := j.Start(context.Background()); err != nil {
		t.Fatalf("Start: %v", err)
	}
	ctx, cancel := context.WithTimeout(context.Background(), time.Second)
	defer cancel()
	if err := j.Stop(ctx); err != nil {
		t.Fatalf("Stop: %v", err)
	}
}

func TestJanitorRejectsBadSchedule(t *testing.T) {
	j := NewJanitor(memory.New(), time.Hour, "not a schedule", nil)
	if err := j.Start(context.Background()); err == nil {
		t.Fatal("bad cron expression accepted")
	}
}

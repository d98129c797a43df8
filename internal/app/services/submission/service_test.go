package submission

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/FolioWorks/entity_layer/internal/app/domain/draft"
	"github.com/FolioWorks/entity_layer/internal/app/domain/entity"
	"github.com/FolioWorks/entity_layer/internal/app/services/drafts"
	"github.com/FolioWorks/entity_layer/internal/app/services/entities"
	"github.com/FolioWorks/entity_layer/internal/app/storage"
	"github.com/FolioWorks/entity_layer/internal/app/storage/memory"
	"github.com/FolioWorks/entity_layer/internal/identity"
	"github.com/FolioWorks/entity_layer/internal/objectstore"
)

type failingDirectory struct{}

func (failingDirectory) CreateOrganization(context.Context, string, string) (identity.Organization, error) {
	return identity.Organization{}, errors.New("identity provider down")
}

type failingUploader struct{}

func (failingUploader) Upload(context.Context, string, string, string) (string, error) {
	return "", errors.New("storage down")
}

type failingEntityStore struct {
	storage.EntityStore
}

func (failingEntityStore) CreateEntity(context.Context, entity.Entity) (entity.Entity, error) {
	return entity.Entity{}, errors.New("backend returned 500")
}

func testDraft() draft.Draft {
	d := draft.Empty()
	d.Step = draft.StepInvite
	d.Profile = draft.Profile{Name: "Acme Corp", Brief: "a company", AvatarRef: "/tmp/missing-avatar.png"}
	d.Configuration.Data[entity.CategoryBank] = entity.CategoryConfig{ProviderID: "p1"}
	d.Configuration.SetCompleted(entity.CategoryBank, true)
	return d
}

func newService(store *memory.Store, entStore storage.EntityStore, dir identity.Directory, up objectstore.Uploader) (*Service, *drafts.Service) {
	draftSvc := drafts.New(store, nil)
	entitySvc := entities.New(entStore, nil)
	return New(entitySvc, draftSvc, dir, up, nil), draftSvc
}

func TestSubmitRequiresUserID(t *testing.T) {
	store := memory.New()
	svc, _ := newService(store, store, identity.StaticDirectory{}, objectstore.PassThrough{})

	if _, err := svc.Submit(context.Background(), "   ", testDraft()); err == nil {
		t.Fatal("Submit accepted a blank user id")
	}
}

func TestSubmitRequiresName(t *testing.T) {
	store := memory.New()
	svc, _ := newService(store, store, identity.StaticDirectory{}, objectstore.PassThrough{})

	d := testDraft()
	d.Profile.Name = "  "
	if _, err := svc.Submit(context.Background(), "u1", d); err == nil {
		t.Fatal("Submit accepted a blank entity name")
	}
}

func TestSubmitOrgFailureIsFatal(t *testing.T) {
	store := memory.New()
	svc, draftSvc := newService(store, store, failingDirectory{}, objectstore.PassThrough{})
	ctx := context.Background()

	d := testDraft()
	if err := draftSvc.Save(ctx, "u1", d); err != nil {
		t.Fatalf("Save: %v", err)
	}
	if _, err := svc.Submit(ctx, "u1", d); err == nil {
		t.Fatal("expected organization failure to abort submission")
	}

	// Nothing was created and the draft survives.
	list, err := store.ListEntities(ctx, "u1")
	if err != nil {
		t.Fatalf("ListEntities: %v", err)
	}
	if len(list) != 0 {
		t.Fatalf("expected no entities, got %d", len(list))
	}
	got, err := draftSvc.Load(ctx, "u1")
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if got.Profile.Name != "Acme Corp" {
		t.Fatal("draft was lost after a failed submission")
	}
}

func TestSubmitImageFailureIsSwallowed(t *testing.T) {
	store := memory.New()
	svc, _ := newService(store, store, identity.StaticDirectory{}, failingUploader{})

	created, err := svc.Submit(context.Background(), "u1", testDraft())
	if err != nil {
		t.Fatalf("Submit: %v", err)
	}
	if created.AvatarURL != "" {
		t.Fatalf("expected no avatar URL after upload failure, got %q", created.AvatarURL)
	}
	if created.OrgID == "" {
		t.Fatal("entity has no organization id")
	}
}

func TestSubmitEntityFailureKeepsDraft(t *testing.T) {
	store := memory.New()
	svc, draftSvc := newService(store, failingEntityStore{}, identity.StaticDirectory{}, objectstore.PassThrough{})
	ctx := context.Background()

	d := testDraft()
	if err := draftSvc.Save(ctx, "u1", d); err != nil {
		t.Fatalf("Save: %v", err)
	}

	_, err := svc.Submit(ctx, "u1", d)
	if err == nil {
		t.Fatal("expected entity creation failure")
	}
	if !strings.Contains(err.Error(), "500") {
		t.Fatalf("expected the backend message to propagate, got %v", err)
	}

	got, err := draftSvc.Load(ctx, "u1")
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if got.Profile.Name != "Acme Corp" {
		t.Fatal("draft was cleared despite the failed submission")
	}
}

func TestSubmitSuccessClearsDraft(t *testing.T) {
	store := memory.New()
	svc, draftSvc := newService(store, store, identity.StaticDirectory{}, objectstore.PassThrough{})
	ctx := context.Background()

	d := testDraft()
	if err := draftSvc.Save(ctx, "u1", d); err != nil {
		t.Fatalf("Save: %v", err)
	}

	created, err := svc.Submit(ctx, "u1", d)
	if err != nil {
		t.Fatalf("Submit: %v", err)
	}
	if created.ID == "" || created.OrgID == "" {
		t.Fatalf("incomplete entity: %+v", created)
	}
	if created.Handle != "" && created.Handle != d.Profile.Handle {
		t.Fatalf("handle mismatch: %q", created.Handle)
	}
	if !created.ItemCompleted(entity.CategoryBank) {
		t.Fatal("completed keys were not carried onto the entity")
	}

	got, err := draftSvc.Load(ctx, "u1")
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if got.Profile.Name != "" {
		t.Fatal("draft survived a successful submission")
	}
}

func TestSlugify(t *testing.T) {
	cases := map[string]string{
		"Acme Corp":       "acme-corp",
		"  Acme   Corp  ": "acme-corp",
		"ACME!! (2024)":   "acme-2024",
		"日本 Café":         "日本-café",
	}
	for in, want := range cases {
		if got := slugify(in); got != want {
			t.Fatalf("slugify(%q) = %q, want %q", in, got, want)
		}
	}
}

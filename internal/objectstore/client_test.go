package objectstore

import (
	"context"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func TestUploadStoresLocalFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "avatar.png")
	if err := os.WriteFile(path, []byte("\x89PNG\r\n\x1a\nfake"), 0o600); err != nil {
		t.Fatalf("write file: %v", err)
	}

	var gotPath, gotUpsert string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotPath = r.URL.Path
		gotUpsert = r.Header.Get("x-upsert")
		w.WriteHeader(http.StatusOK)
	}))
	defer srv.Close()

	client, err := NewClient(Config{BaseURL: srv.URL, ServiceKey: "sk_test"})
	if err != nil {
		t.Fatalf("NewClient: %v", err)
	}

	url, err := client.Upload(context.Background(), path, "entity-images", "avatar-1.png")
	if err != nil {
		t.Fatalf("Upload: %v", err)
	}
	if gotPath != "/storage/v1/object/entity-images/avatar-1.png" {
		t.Fatalf("unexpected upload path: %q", gotPath)
	}
	if gotUpsert != "true" {
		t.Fatal("upsert header missing")
	}
	want := srv.URL + "/storage/v1/object/public/entity-images/avatar-1.png"
	if url != want {
		t.Fatalf("public url = %q, want %q", url, want)
	}
}

func TestUploadPassesThroughRemoteRefs(t *testing.T) {
	client, err := NewClient(Config{BaseURL: "https://storage.test", ServiceKey: "sk_test"})
	if err != nil {
		t.Fatalf("NewClient: %v", err)
	}

	url, err := client.Upload(context.Background(), "https://cdn.test/x.png", "b", "f")
	if err != nil {
		t.Fatalf("Upload: %v", err)
	}
	if url != "https://cdn.test/x.png" {
		t.Fatalf("remote ref was not passed through: %q", url)
	}
}

func TestUploadMissingFile(t *testing.T) {
	client, err := NewClient(Config{BaseURL: "https://storage.test", ServiceKey: "sk_test"})
	if err != nil {
		t.Fatalf("NewClient: %v", err)
	}
	if _, err := client.Upload(context.Background(), "/nonexistent/file.png", "b", "f"); err == nil {
		t.Fatal("missing file accepted")
	}
}

func TestUploadBackendFailure(t *testing.T) {
	path := filepath.Join(t.TempDir(), "banner.jpg")
	if err := os.WriteFile(path, []byte("jpeg-bytes"), 0o600); err != nil {
		t.Fatalf("write file: %v", err)
	}

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		http.Error(w, "bucket not found", http.StatusNotFound)
	}))
	defer srv.Close()

	client, err := NewClient(Config{BaseURL: srv.URL, ServiceKey: "sk_test"})
	if err != nil {
		t.Fatalf("NewClient: %v", err)
	}
	_, err = client.Upload(context.Background(), path, "missing", "banner.jpg")
	if err == nil || !strings.Contains(err.Error(), "404") {
		t.Fatalf("expected backend failure, got %v", err)
	}
}

func TestPassThrough(t *testing.T) {
	url, err := PassThrough{}.Upload(context.Background(), "file:///local.png", "b", "f")
	if err != nil {
		t.Fatalf("Upload: %v", err)
	}
	if url != "file:///local.png" {
		t.Fatalf("reference changed: %q", url)
	}
}

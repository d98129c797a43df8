package identity

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
)

func TestClientCreateOrganization(t *testing.T) {
	var gotAuth string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPost || r.URL.Path != "/v1/organizations" {
			t.Fatalf("unexpected request: %s %s", r.Method, r.URL.Path)
		}
		gotAuth = r.Header.Get("Authorization")

		var body map[string]string
		if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
			t.Fatalf("decode body: %v", err)
		}
		if body["name"] != "Acme" || body["slug"] != "acme" {
			t.Fatalf("unexpected body: %v", body)
		}
		_ = json.NewEncoder(w).Encode(Organization{ID: "org_123", Name: "Acme", Slug: "acme"})
	}))
	defer srv.Close()

	client, err := NewClient(Config{BaseURL: srv.URL, SecretKey: "sk_test"})
	if err != nil {
		t.Fatalf("NewClient: %v", err)
	}

	org, err := client.CreateOrganization(context.Background(), "Acme", "acme")
	if err != nil {
		t.Fatalf("CreateOrganization: %v", err)
	}
	if org.ID != "org_123" {
		t.Fatalf("unexpected org: %+v", org)
	}
	if gotAuth != "Bearer sk_test" {
		t.Fatalf("missing bearer credential: %q", gotAuth)
	}
}

func TestClientRejectsEmptyID(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		_ = json.NewEncoder(w).Encode(Organization{})
	}))
	defer srv.Close()

	client, err := NewClient(Config{BaseURL: srv.URL, SecretKey: "sk_test"})
	if err != nil {
		t.Fatalf("NewClient: %v", err)
	}
	if _, err := client.CreateOrganization(context.Background(), "Acme", "acme"); err == nil {
		t.Fatal("accepted an organization without an id")
	}
}

func TestClientPropagatesProviderError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		http.Error(w, "quota exceeded", http.StatusPaymentRequired)
	}))
	defer srv.Close()

	client, err := NewClient(Config{BaseURL: srv.URL, SecretKey: "sk_test"})
	if err != nil {
		t.Fatalf("NewClient: %v", err)
	}
	if _, err := client.CreateOrganization(context.Background(), "Acme", "acme"); err == nil {
		t.Fatal("provider error was swallowed")
	}
}

func TestStaticDirectoryMintsIDs(t *testing.T) {
	dir := StaticDirectory{}

	a, err := dir.CreateOrganization(context.Background(), "Acme", "acme")
	if err != nil {
		t.Fatalf("CreateOrganization: %v", err)
	}
	b, err := dir.CreateOrganization(context.Background(), "Acme", "acme")
	if err != nil {
		t.Fatalf("CreateOrganization: %v", err)
	}
	if a.ID == "" || a.ID == b.ID {
		t.Fatalf("ids not unique: %q vs %q", a.ID, b.ID)
	}

	if _, err := dir.CreateOrganization(context.Background(), "  ", ""); err == nil {
		t.Fatal("blank name accepted")
	}
}

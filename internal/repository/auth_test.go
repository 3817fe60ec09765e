package repository

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/atinyakov/codemonkey/internal/models"
	"github.com/google/go-cmp/cmp"
)

func TestStaticIdentityRepository_Verify(t *testing.T) {
	repo := NewStaticIdentityRepository(models.DefaultFixtures())

	tests := []struct {
		name    string
		handle  string
		secret  string
		wantID  string
		wantErr error
	}{
		{name: "admin", handle: "admin", secret: "12345", wantID: "1"},
		{name: "dev1", handle: "dev1", secret: "12345", wantID: "2"},
		{name: "user", handle: "user", secret: "12345", wantID: "3"},
		{name: "wrong secret", handle: "admin", secret: "wrong", wantErr: ErrNotFound},
		{name: "unknown handle", handle: "nouser", secret: "12345", wantErr: ErrNotFound},
		{name: "case sensitive handle", handle: "Admin", secret: "12345", wantErr: ErrNotFound},
		{name: "no trimming", handle: "admin", secret: "12345 ", wantErr: ErrNotFound},
		{name: "empty", handle: "", secret: "", wantErr: ErrNotFound},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := repo.Verify(context.Background(), tt.handle, tt.secret)
			if !errors.Is(err, tt.wantErr) {
				t.Fatalf("Verify(%q, %q) error = %v; want %v", tt.handle, tt.secret, err, tt.wantErr)
			}
			if got.ID != tt.wantID {
				t.Errorf("Verify(%q) id = %q; want %q", tt.handle, got.ID, tt.wantID)
			}
		})
	}
}

func TestStaticIdentityRepository_ReturnsTableEntry(t *testing.T) {
	fx := models.DefaultFixtures()
	repo := NewStaticIdentityRepository(fx)

	for _, want := range fx.Identities {
		got, err := repo.Verify(context.Background(), want.Username, fx.Credentials[want.Username])
		if err != nil {
			t.Fatalf("Verify(%q) returned error: %v", want.Username, err)
		}
		if diff := cmp.Diff(want, got); diff != "" {
			t.Errorf("Verify(%q) mismatch (-want +got):\n%s", want.Username, diff)
		}
	}
}

func TestStaticIdentityRepository_IdentityWithoutCredential(t *testing.T) {
	repo := NewStaticIdentityRepository(models.Fixtures{
		Identities: []models.Identity{{ID: "9", Username: "ghost"}},
	})
	if _, err := repo.Verify(context.Background(), "ghost", ""); !errors.Is(err, ErrNotFound) {
		t.Errorf("expected ErrNotFound, got %v", err)
	}
}

func TestStaticIdentityRepository_CopiesFixtures(t *testing.T) {
	fx := models.DefaultFixtures()
	repo := NewStaticIdentityRepository(fx)

	fx.Credentials["admin"] = "changed"
	fx.Identities[0].Name = "Mutated"

	got, err := repo.Verify(context.Background(), "admin", "12345")
	if err != nil {
		t.Fatalf("Verify returned error: %v", err)
	}
	if got.Name != "Admin User" {
		t.Errorf("Name = %q; want %q", got.Name, "Admin User")
	}
	if len(repo.Identities()) != 3 {
		t.Errorf("expected 3 identities, got %d", len(repo.Identities()))
	}
}

func TestLoadFixtures(t *testing.T) {
	dir := t.TempDir()

	write := func(name, body string) string {
		p := filepath.Join(dir, name)
		if err := os.WriteFile(p, []byte(body), 0o644); err != nil {
			t.Fatal(err)
		}
		return p
	}

	valid := write("valid.yaml", `
identities:
  - id: "7"
    username: tester
    name: Test Person
    email: tester@example.com
    premium: false
    createdAt: "2024-05-01"
credentials:
  tester: s3cret
`)
	dup := write("dup.yaml", `
identities:
  - {id: "1", username: a}
  - {id: "2", username: a}
`)
	missing := write("missing.yaml", `
identities:
  - {name: nobody}
`)
	broken := write("broken.yaml", "identities: [")

	fx, err := LoadFixtures(valid)
	if err != nil {
		t.Fatalf("LoadFixtures returned error: %v", err)
	}
	want := models.Fixtures{
		Identities: []models.Identity{{
			ID: "7", Username: "tester", Name: "Test Person",
			Email: "tester@example.com", CreatedAt: "2024-05-01",
		}},
		Credentials: models.Credentials{"tester": "s3cret"},
	}
	if diff := cmp.Diff(want, fx); diff != "" {
		t.Errorf("fixtures mismatch (-want +got):\n%s", diff)
	}

	for _, p := range []string{dup, missing, broken, filepath.Join(dir, "absent.yaml")} {
		if _, err := LoadFixtures(p); err == nil {
			t.Errorf("LoadFixtures(%s) expected error", filepath.Base(p))
		}
	}
}

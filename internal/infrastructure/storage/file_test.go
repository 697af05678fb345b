package storage

import (
	"os"
	"path/filepath"
	"reflect"
	"testing"

	"github.com/damiancxliew/web-forum/internal/core/domain"
)

func newTestStore(t *testing.T) *FileStore {
	t.Helper()
	store, err := NewFileStore(t.TempDir())
	if err != nil {
		t.Fatalf("create store: %v", err)
	}
	return store
}

func TestFileStore_IdentityRoundTrip(t *testing.T) {
	store := newTestStore(t)
	identity := &domain.Identity{
		ID:       42,
		Username: "bob",
		Email:    "bob@example.com",
		IsAdmin:  true,
		AdminRequests: []domain.AdminRequest{
			{ID: 5, Role: "moderator", Status: domain.RequestPending, OwnerID: 42},
		},
	}

	if err := store.SaveIdentity(identity); err != nil {
		t.Fatalf("save: %v", err)
	}
	got, err := store.LoadIdentity()
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if !reflect.DeepEqual(identity, got) {
		t.Fatalf("round trip mismatch: %+v vs %+v", identity, got)
	}
}

func TestFileStore_AbsentIdentityIsNotAnError(t *testing.T) {
	store := newTestStore(t)

	got, err := store.LoadIdentity()
	if err != nil {
		t.Fatalf("absence must not be an error, got %v", err)
	}
	if got != nil {
		t.Fatalf("expected nil identity, got %+v", got)
	}
}

func TestFileStore_CorruptIdentitySurfacesError(t *testing.T) {
	dir := t.TempDir()
	store, err := NewFileStore(dir)
	if err != nil {
		t.Fatalf("create store: %v", err)
	}
	if err := os.WriteFile(filepath.Join(dir, "identity.json"), []byte("{not json"), 0o600); err != nil {
		t.Fatalf("seed corrupt file: %v", err)
	}

	if _, err := store.LoadIdentity(); err == nil {
		t.Fatal("corrupt identity must surface an error for the caller to handle")
	}
}

func TestFileStore_ClearIdentityIsIdempotent(t *testing.T) {
	store := newTestStore(t)
	if err := store.SaveIdentity(&domain.Identity{ID: 1}); err != nil {
		t.Fatalf("save: %v", err)
	}

	if err := store.ClearIdentity(); err != nil {
		t.Fatalf("clear: %v", err)
	}
	if err := store.ClearIdentity(); err != nil {
		t.Fatalf("second clear must succeed, got %v", err)
	}
	if got, err := store.LoadIdentity(); err != nil || got != nil {
		t.Fatalf("expected empty store, got %+v (%v)", got, err)
	}
}

func TestFileStore_TokenRoundTrip(t *testing.T) {
	store := newTestStore(t)

	if token, err := store.LoadToken(); err != nil || token != "" {
		t.Fatalf("expected empty token, got %q (%v)", token, err)
	}
	if err := store.SaveToken("tok-42"); err != nil {
		t.Fatalf("save: %v", err)
	}
	if token, err := store.LoadToken(); err != nil || token != "tok-42" {
		t.Fatalf("expected tok-42, got %q (%v)", token, err)
	}
	if err := store.ClearToken(); err != nil {
		t.Fatalf("clear: %v", err)
	}
	if token, err := store.LoadToken(); err != nil || token != "" {
		t.Fatalf("expected cleared token, got %q (%v)", token, err)
	}
}

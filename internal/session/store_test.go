package session

import (
	"errors"
	"os"
	"path/filepath"
	"testing"

	"nextchamp/app/internal/domain"
)

func TestStoreRoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), ".nextchamp", "session.json")
	store := NewStore(path)

	if _, err := store.Load(); !errors.Is(err, ErrNoSession) {
		t.Fatalf("Load on empty store = %v, want ErrNoSession", err)
	}

	profile := domain.UserProfile{
		UserID: "priya_1a2b3c4d",
		Name:   "Priya",
		Email:  "priya@example.com",
		Height: "165",
		Weight: "55",
	}
	if err := store.Save(profile); err != nil {
		t.Fatalf("Save failed: %v", err)
	}

	loaded, err := store.Load()
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	if *loaded != profile {
		t.Errorf("Load = %+v, want %+v", loaded, profile)
	}

	if err := store.Clear(); err != nil {
		t.Fatalf("Clear failed: %v", err)
	}
	if _, err := store.Load(); !errors.Is(err, ErrNoSession) {
		t.Errorf("Load after Clear = %v, want ErrNoSession", err)
	}
	// Clearing again is a no-op.
	if err := store.Clear(); err != nil {
		t.Errorf("second Clear = %v, want nil", err)
	}
}

func TestStoreOverwrite(t *testing.T) {
	store := NewStore(filepath.Join(t.TempDir(), "session.json"))
	if err := store.Save(domain.UserProfile{UserID: "old"}); err != nil {
		t.Fatal(err)
	}
	if err := store.Save(domain.UserProfile{UserID: "new"}); err != nil {
		t.Fatal(err)
	}
	loaded, err := store.Load()
	if err != nil {
		t.Fatal(err)
	}
	if loaded.UserID != "new" {
		t.Errorf("UserID = %q, want %q", loaded.UserID, "new")
	}
}

func TestStoreCorruptFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "session.json")
	if err := os.WriteFile(path, []byte("{not json"), 0o600); err != nil {
		t.Fatal(err)
	}
	if _, err := NewStore(path).Load(); err == nil {
		t.Error("Load on corrupt file succeeded")
	}
}

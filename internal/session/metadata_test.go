package session

import (
	"os"
	"path/filepath"
	"testing"
	"time"
)

func TestFileMetadataStore_SaveAndLoad(t *testing.T) {
	store := newTestStore(t)

	saved := &Metadata{
		SessionName:    "crushbase_backend",
		SessionID:      "abc-123",
		SessionType:    TypeTmux,
		AppName:        "crushbase-backend",
		CheckoutPath:   "/srv/Crushbase-Backend",
		Remote:         "https://github.com/nathanielangafor/Crushbase-Backend.git",
		Entrypoint:     "API.app",
		DeploymentID:   "01J8ZX3N9GQ4T5K6M7P8R9S0TV",
		Status:         StatusRunning,
		CreatedAt:      time.Now().Truncate(time.Second),
		LastDeployedAt: time.Now().Truncate(time.Second),
	}

	if err := store.Save(saved); err != nil {
		t.Fatalf("save failed: %v", err)
	}

	loaded, err := store.Load("crushbase_backend")
	if err != nil {
		t.Fatalf("load failed: %v", err)
	}

	if loaded.AppName != saved.AppName {
		t.Errorf("expected app name %s, got %s", saved.AppName, loaded.AppName)
	}

	if loaded.DeploymentID != saved.DeploymentID {
		t.Errorf("expected deployment id %s, got %s", saved.DeploymentID, loaded.DeploymentID)
	}

	if loaded.Status != StatusRunning {
		t.Errorf("expected status running, got %s", loaded.Status)
	}
}

func TestFileMetadataStore_SaveRequiresName(t *testing.T) {
	store := newTestStore(t)

	if err := store.Save(&Metadata{}); err == nil {
		t.Error("expected error for metadata without a session name")
	}
}

func TestFileMetadataStore_LoadMissing(t *testing.T) {
	store := newTestStore(t)

	if _, err := store.Load("nope"); err == nil {
		t.Error("expected error for missing session")
	}
}

func TestFileMetadataStore_DeleteIsIdempotent(t *testing.T) {
	store := newTestStore(t)

	if err := store.Save(&Metadata{SessionName: "app"}); err != nil {
		t.Fatalf("save failed: %v", err)
	}

	if err := store.Delete("app"); err != nil {
		t.Fatalf("delete failed: %v", err)
	}

	if err := store.Delete("app"); err != nil {
		t.Errorf("second delete should succeed: %v", err)
	}
}

func TestFileMetadataStore_List(t *testing.T) {
	store := newTestStore(t)

	for _, name := range []string{"alpha", "beta"} {
		if err := store.Save(&Metadata{SessionName: name}); err != nil {
			t.Fatalf("save failed: %v", err)
		}
	}

	names, err := store.List()
	if err != nil {
		t.Fatalf("list failed: %v", err)
	}

	if len(names) != 2 {
		t.Errorf("expected 2 sessions, got %d", len(names))
	}
}

func TestFileMetadataStore_LoadAllSkipsCorrupted(t *testing.T) {
	dir := t.TempDir()

	store, err := NewMetadataStore(dir)
	if err != nil {
		t.Fatalf("failed to create store: %v", err)
	}

	if err := store.Save(&Metadata{SessionName: "good"}); err != nil {
		t.Fatalf("save failed: %v", err)
	}

	if err := os.WriteFile(filepath.Join(dir, "bad.json"), []byte("{not json"), 0o600); err != nil {
		t.Fatalf("failed to plant corrupted file: %v", err)
	}

	all, err := store.LoadAll()
	if err != nil {
		t.Fatalf("loadAll failed: %v", err)
	}

	if len(all) != 1 || all[0].SessionName != "good" {
		t.Errorf("expected only the good record, got %d records", len(all))
	}
}

func newTestStore(t *testing.T) *FileMetadataStore {
	t.Helper()

	store, err := NewMetadataStore(t.TempDir())
	if err != nil {
		t.Fatalf("failed to create store: %v", err)
	}

	return store
}

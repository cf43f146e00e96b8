package session

import (
	"testing"
)

// newTestManager builds a manager with no multiplexer and an in-memory
// store, so tests never shell out to tmux or screen.
func newTestManager() (*SessionManager, *FakeMetadataStore) {
	store := NewFakeMetadataStore()

	return &SessionManager{
		sessionType:   TypeNone,
		metadataStore: store,
	}, store
}

func TestSaveSessionMetadata_FillsDefaults(t *testing.T) {
	manager, store := newTestManager()

	err := manager.SaveSessionMetadata(&Metadata{SessionName: "crushbase_backend"})
	if err != nil {
		t.Fatalf("save failed: %v", err)
	}

	metadata, err := store.Load("crushbase_backend")
	if err != nil {
		t.Fatalf("load failed: %v", err)
	}

	if metadata.SessionType != TypeNone {
		t.Errorf("expected session type to default to manager's, got %s", metadata.SessionType)
	}

	if metadata.Status != StatusUnknown {
		t.Errorf("expected status to default to unknown, got %s", metadata.Status)
	}

	if metadata.CreatedAt.IsZero() {
		t.Error("expected created timestamp to be set")
	}
}

func TestUpdateSessionStatus(t *testing.T) {
	manager, store := newTestManager()

	if err := manager.SaveSessionMetadata(&Metadata{SessionName: "app", Status: StatusRunning}); err != nil {
		t.Fatalf("save failed: %v", err)
	}

	if err := manager.UpdateSessionStatus("app", StatusFailed); err != nil {
		t.Fatalf("update failed: %v", err)
	}

	metadata, err := store.Load("app")
	if err != nil {
		t.Fatalf("load failed: %v", err)
	}

	if metadata.Status != StatusFailed {
		t.Errorf("expected failed, got %s", metadata.Status)
	}
}

func TestUpdateSessionStatus_MissingSession(t *testing.T) {
	manager, _ := newTestManager()

	if err := manager.UpdateSessionStatus("ghost", StatusStopped); err == nil {
		t.Error("expected error for unknown session")
	}
}

func TestSyncSessionStatus_DowngradesDeadSession(t *testing.T) {
	manager, store := newTestManager()

	// No multiplexer means the session cannot exist, so a running record
	// must be reconciled to stopped
	if err := manager.SaveSessionMetadata(&Metadata{SessionName: "app", Status: StatusRunning}); err != nil {
		t.Fatalf("save failed: %v", err)
	}

	status, err := manager.SyncSessionStatus("app")
	if err != nil {
		t.Fatalf("sync failed: %v", err)
	}

	if status != StatusStopped {
		t.Errorf("expected stopped, got %s", status)
	}

	metadata, err := store.Load("app")
	if err != nil {
		t.Fatalf("load failed: %v", err)
	}

	if metadata.Status != StatusStopped {
		t.Errorf("expected stored status stopped, got %s", metadata.Status)
	}
}

func TestSyncSessionStatus_LeavesStoppedAlone(t *testing.T) {
	manager, _ := newTestManager()

	if err := manager.SaveSessionMetadata(&Metadata{SessionName: "app", Status: StatusStopped}); err != nil {
		t.Fatalf("save failed: %v", err)
	}

	status, err := manager.SyncSessionStatus("app")
	if err != nil {
		t.Fatalf("sync failed: %v", err)
	}

	if status != StatusStopped {
		t.Errorf("expected stopped, got %s", status)
	}
}

func TestKillSession_NoMultiplexer(t *testing.T) {
	manager, _ := newTestManager()

	if err := manager.KillSession("anything"); err == nil {
		t.Error("expected error when no multiplexer is available")
	}
}

func TestHasSession_NoMultiplexer(t *testing.T) {
	manager, _ := newTestManager()

	exists, err := manager.HasSession("anything")
	if err != nil {
		t.Fatalf("hasSession failed: %v", err)
	}

	if exists {
		t.Error("no multiplexer means no sessions")
	}
}

func TestEscapeShellArg(t *testing.T) {
	tests := []struct {
		input string
		want  string
	}{
		{"simple", "'simple'"},
		{"with space", "'with space'"},
		{"it's", "'it'\\''s'"},
	}

	for _, tt := range tests {
		if got := escapeShellArg(tt.input); got != tt.want {
			t.Errorf("escapeShellArg(%q) = %q, want %q", tt.input, got, tt.want)
		}
	}
}

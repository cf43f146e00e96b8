package cli

import (
	"errors"
	"testing"

	"go.uber.org/zap"

	"github.com/crushbase/redeploy/internal/session"
)

// fakeKiller records kill and status calls for testing
type fakeKiller struct {
	killed    []string
	statuses  map[string]session.Status
	killErr   error
	updateErr error
}

func newFakeKiller() *fakeKiller {
	return &fakeKiller{statuses: make(map[string]session.Status)}
}

func (f *fakeKiller) KillSession(name string) error {
	if f.killErr != nil {
		return f.killErr
	}

	f.killed = append(f.killed, name)

	return nil
}

func (f *fakeKiller) UpdateSessionStatus(sessionName string, status session.Status) error {
	if f.updateErr != nil {
		return f.updateErr
	}

	f.statuses[sessionName] = status

	return nil
}

func TestKillSession_MarksRecordStopped(t *testing.T) {
	app := &App{Logger: zap.NewNop()}
	killer := newFakeKiller()

	if err := app.killSession(killer, "crushbase_backend"); err != nil {
		t.Fatalf("kill failed: %v", err)
	}

	if len(killer.killed) != 1 || killer.killed[0] != "crushbase_backend" {
		t.Errorf("expected crushbase_backend to be killed, got %v", killer.killed)
	}

	if killer.statuses["crushbase_backend"] != session.StatusStopped {
		t.Errorf("expected stopped, got %s", killer.statuses["crushbase_backend"])
	}
}

func TestKillSession_PropagatesKillError(t *testing.T) {
	app := &App{Logger: zap.NewNop()}
	killer := newFakeKiller()
	killer.killErr = errors.New("tmux server gone")

	if err := app.killSession(killer, "crushbase_backend"); err == nil {
		t.Fatal("expected kill error")
	}

	if len(killer.statuses) != 0 {
		t.Errorf("status must not change when the kill fails, got %v", killer.statuses)
	}
}

func TestKillSession_ToleratesMissingMetadata(t *testing.T) {
	app := &App{Logger: zap.NewNop()}
	killer := newFakeKiller()
	killer.updateErr = errors.New("no metadata for session untracked")

	// Killing a session this tool never deployed still succeeds
	if err := app.killSession(killer, "untracked"); err != nil {
		t.Fatalf("kill failed: %v", err)
	}

	if len(killer.killed) != 1 {
		t.Errorf("expected the session to be killed, got %v", killer.killed)
	}
}

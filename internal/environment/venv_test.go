package environment

import (
	"os"
	"path/filepath"
	"runtime"
	"testing"
)

func TestVenv_Paths(t *testing.T) {
	if runtime.GOOS == "windows" {
		t.Skip("posix layout test")
	}

	venv := NewVenv("/srv/app", "venv", "python3")

	if venv.Path() != "/srv/app/venv" {
		t.Errorf("unexpected path: %s", venv.Path())
	}

	if venv.Python() != "/srv/app/venv/bin/python" {
		t.Errorf("unexpected python: %s", venv.Python())
	}

	if venv.Pip() != "/srv/app/venv/bin/pip" {
		t.Errorf("unexpected pip: %s", venv.Pip())
	}
}

func TestVenv_Defaults(t *testing.T) {
	venv := NewVenv("/srv/app", "", "")

	if venv.Dir != "venv" {
		t.Errorf("expected default dir venv, got %s", venv.Dir)
	}

	if venv.Interpreter != "python3" {
		t.Errorf("expected default interpreter python3, got %s", venv.Interpreter)
	}
}

func TestVenv_Exists(t *testing.T) {
	dir := t.TempDir()
	venv := NewVenv(dir, "venv", "python3")

	if venv.Exists() {
		t.Error("fresh venv should not exist")
	}

	if err := os.MkdirAll(filepath.Dir(venv.Python()), 0o755); err != nil {
		t.Fatalf("failed to create bin dir: %v", err)
	}

	if err := os.WriteFile(venv.Python(), []byte("#!/bin/sh\n"), 0o755); err != nil { //nolint:gosec
		t.Fatalf("failed to create fake interpreter: %v", err)
	}

	if !venv.Exists() {
		t.Error("venv with interpreter should exist")
	}
}

func TestVenv_EnsureSkipsExisting(t *testing.T) {
	dir := t.TempDir()
	venv := NewVenv(dir, "venv", "definitely-not-a-real-python")

	if err := os.MkdirAll(filepath.Dir(venv.Python()), 0o755); err != nil {
		t.Fatalf("failed to create bin dir: %v", err)
	}

	if err := os.WriteFile(venv.Python(), []byte("#!/bin/sh\n"), 0o755); err != nil { //nolint:gosec
		t.Fatalf("failed to create fake interpreter: %v", err)
	}

	// Interpreter name is bogus, but Ensure must not run it for an
	// existing environment
	if err := venv.Ensure(); err != nil {
		t.Errorf("ensure on existing venv should succeed: %v", err)
	}
}

func TestVenv_EnsureMissingInterpreter(t *testing.T) {
	venv := NewVenv(t.TempDir(), "venv", "definitely-not-a-real-python")

	if err := venv.Ensure(); err == nil {
		t.Error("expected error for missing interpreter")
	}
}

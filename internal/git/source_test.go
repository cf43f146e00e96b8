package git

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func TestSource_Clone(t *testing.T) {
	executor := NewFakeExecutor()
	source := NewSourceWithExecutor("https://github.com/nathanielangafor/Crushbase-Backend.git", "Crushbase-Backend", "", 0, executor)

	if err := source.Clone(); err != nil {
		t.Fatalf("clone failed: %v", err)
	}

	want := "clone https://github.com/nathanielangafor/Crushbase-Backend.git Crushbase-Backend"
	got := strings.Join(executor.GetLastCommand(), " ")
	if got != want {
		t.Errorf("expected %q, got %q", want, got)
	}
}

func TestSource_CloneWithBranchAndDepth(t *testing.T) {
	executor := NewFakeExecutor()
	source := NewSourceWithExecutor("https://example.com/acme/widget.git", "widget", "release", 1, executor)

	if err := source.Clone(); err != nil {
		t.Fatalf("clone failed: %v", err)
	}

	want := "clone --branch release --depth 1 https://example.com/acme/widget.git widget"
	got := strings.Join(executor.GetLastCommand(), " ")
	if got != want {
		t.Errorf("expected %q, got %q", want, got)
	}
}

func TestSource_CloneError(t *testing.T) {
	executor := NewFakeExecutor()
	executor.SetError("clone https://example.com/acme/widget.git widget", fmt.Errorf("network unreachable"))

	source := NewSourceWithExecutor("https://example.com/acme/widget.git", "widget", "", 0, executor)

	if err := source.Clone(); err == nil {
		t.Fatal("expected clone error")
	}
}

func TestSource_RemoveCheckout(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "checkout")
	if err := os.MkdirAll(filepath.Join(dir, "sub"), 0o755); err != nil {
		t.Fatalf("failed to create checkout: %v", err)
	}

	source := NewSourceWithExecutor("https://example.com/acme/widget.git", dir, "", 0, NewFakeExecutor())

	if err := source.RemoveCheckout(); err != nil {
		t.Fatalf("remove failed: %v", err)
	}

	if source.CheckoutExists() {
		t.Error("checkout should be gone")
	}

	// Removing a missing directory is not an error
	if err := source.RemoveCheckout(); err != nil {
		t.Errorf("removing missing checkout should succeed, got %v", err)
	}
}

func TestSource_Head(t *testing.T) {
	executor := NewFakeExecutor()
	executor.SetResponse("rev-parse HEAD", "abc1234")

	source := NewSourceWithExecutor("https://example.com/acme/widget.git", "widget", "", 0, executor)

	head, err := source.Head()
	if err != nil {
		t.Fatalf("head failed: %v", err)
	}

	if head != "abc1234" {
		t.Errorf("expected abc1234, got %s", head)
	}
}

func TestSource_MatchesRemote(t *testing.T) {
	dir := t.TempDir()
	if err := os.MkdirAll(filepath.Join(dir, ".git"), 0o755); err != nil {
		t.Fatalf("failed to create fake repo: %v", err)
	}

	executor := NewFakeExecutor()
	executor.SetResponse("remote get-url origin", "https://example.com/acme/widget.git")

	source := NewSourceWithExecutor("https://example.com/acme/widget.git", dir, "", 0, executor)

	matches, err := source.MatchesRemote()
	if err != nil {
		t.Fatalf("matches failed: %v", err)
	}

	if !matches {
		t.Error("expected remote to match")
	}

	other := NewSourceWithExecutor("https://example.com/other/repo.git", dir, "", 0, executor)

	matches, err = other.MatchesRemote()
	if err != nil {
		t.Fatalf("matches failed: %v", err)
	}

	if matches {
		t.Error("expected remote mismatch")
	}
}

func TestSource_MatchesRemote_NotACheckout(t *testing.T) {
	source := NewSourceWithExecutor("https://example.com/acme/widget.git", t.TempDir(), "", 0, NewFakeExecutor())

	matches, err := source.MatchesRemote()
	if err != nil {
		t.Fatalf("matches failed: %v", err)
	}

	if matches {
		t.Error("a plain directory is not a checkout")
	}
}

package git

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"
)

// Source represents the git source of a deployable application
type Source struct {
	// Remote is the URL the checkout is cloned from
	Remote string
	// Checkout is the local directory the remote is cloned into
	Checkout string
	// Branch pins the clone to a branch or tag; empty means the default branch
	Branch string
	// Depth limits clone history; zero means a full clone
	Depth int

	executor Executor
}

// NewSource creates a source backed by the real git executor
func NewSource(remote, checkout, branch string, depth int) *Source {
	return NewSourceWithExecutor(remote, checkout, branch, depth, NewExecutor())
}

// NewSourceWithExecutor creates a source with an injected executor for testing
func NewSourceWithExecutor(remote, checkout, branch string, depth int, executor Executor) *Source {
	return &Source{
		Remote:   remote,
		Checkout: checkout,
		Branch:   branch,
		Depth:    depth,
		executor: executor,
	}
}

// Clone clones the remote into the checkout directory
func (s *Source) Clone() error {
	args := []string{"clone"}

	if s.Branch != "" {
		args = append(args, "--branch", s.Branch)
	}

	if s.Depth > 0 {
		args = append(args, "--depth", strconv.Itoa(s.Depth))
	}

	args = append(args, s.Remote, s.Checkout)

	if _, err := s.executor.Execute(args...); err != nil {
		return fmt.Errorf("failed to clone %s: %w", s.Remote, err)
	}

	return nil
}

// RemoveCheckout deletes the checkout directory recursively. A missing
// directory is not an error.
func (s *Source) RemoveCheckout() error {
	if err := os.RemoveAll(s.Checkout); err != nil {
		return fmt.Errorf("failed to remove checkout %s: %w", s.Checkout, err)
	}

	return nil
}

// CheckoutExists reports whether the checkout directory is present
func (s *Source) CheckoutExists() bool {
	info, err := os.Stat(s.Checkout)

	return err == nil && info.IsDir()
}

// IsCheckout reports whether the checkout directory holds a git repository
func (s *Source) IsCheckout() bool {
	info, err := os.Stat(filepath.Join(s.Checkout, ".git"))

	return err == nil && info.IsDir()
}

// Head returns the commit hash the checkout currently points at
func (s *Source) Head() (string, error) {
	head, err := s.executor.ExecuteInDir(s.Checkout, "rev-parse", "HEAD")
	if err != nil {
		return "", fmt.Errorf("failed to resolve HEAD: %w", err)
	}

	return head, nil
}

// RemoteURL returns the configured origin URL of the checkout
func (s *Source) RemoteURL() (string, error) {
	url, err := s.executor.ExecuteInDir(s.Checkout, "remote", "get-url", "origin")
	if err != nil {
		return "", fmt.Errorf("failed to read origin URL: %w", err)
	}

	return url, nil
}

// MatchesRemote reports whether the existing checkout tracks the configured
// remote. Used to warn before deleting a directory that belongs to a
// different project.
func (s *Source) MatchesRemote() (bool, error) {
	if !s.IsCheckout() {
		return false, nil
	}

	url, err := s.RemoteURL()
	if err != nil {
		return false, err
	}

	return url == s.Remote, nil
}

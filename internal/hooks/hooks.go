// Package hooks runs user-provided scripts around a deployment. Scripts
// live in .redeploy/hooks/ inside the checkout and are looked up by event
// name (pre-deploy, post-deploy).
package hooks

import (
	"context"
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"time"
)

// hookTimeout bounds a single hook script
const hookTimeout = 5 * time.Minute

// Hook event names
const (
	PreDeploy  = "pre-deploy"
	PostDeploy = "post-deploy"
)

// Runner executes hook scripts from a checkout
type Runner struct {
	// CheckoutPath is the checkout the hooks directory lives in
	CheckoutPath string

	// OnOutput receives combined stdout and stderr of each hook
	OnOutput func(name, output string)
}

// NewRunner creates a hook runner for a checkout
func NewRunner(checkoutPath string) *Runner {
	return &Runner{CheckoutPath: checkoutPath}
}

// hookPath returns where the script for an event would live
func (r *Runner) hookPath(name string) string {
	return filepath.Join(r.CheckoutPath, ".redeploy", "hooks", name)
}

// Exists reports whether a hook script is present for the event
func (r *Runner) Exists(name string) bool {
	info, err := os.Stat(r.hookPath(name))

	return err == nil && !info.IsDir()
}

// Run executes the hook for an event with extra environment variables.
// A missing hook is not an error; hooks are optional.
func (r *Runner) Run(ctx context.Context, name string, env map[string]string) error {
	path := r.hookPath(name)

	info, err := os.Stat(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil
		}

		return fmt.Errorf("failed to stat hook %s: %w", name, err)
	}

	if info.IsDir() {
		return fmt.Errorf("hook %s is a directory", name)
	}

	if info.Mode()&0o111 == 0 {
		return fmt.Errorf("hook %s is not executable", name)
	}

	ctx, cancel := context.WithTimeout(ctx, hookTimeout)
	defer cancel()

	cmd := exec.CommandContext(ctx, path) //nolint:gosec // Hooks are deliberately user-provided scripts
	cmd.Dir = r.CheckoutPath
	cmd.Env = os.Environ()

	for key, value := range env {
		cmd.Env = append(cmd.Env, key+"="+value)
	}

	output, err := cmd.CombinedOutput()

	if r.OnOutput != nil && len(output) > 0 {
		r.OnOutput(name, string(output))
	}

	if err != nil {
		return fmt.Errorf("hook %s failed: %w", name, err)
	}

	return nil
}

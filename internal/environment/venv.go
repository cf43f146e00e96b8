package environment

import (
	"context"
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"runtime"
	"time"
)

// venvCreateTimeout bounds virtual environment creation
const venvCreateTimeout = 2 * time.Minute

// Venv represents a Python virtual environment inside a checkout
type Venv struct {
	// CheckoutPath is the project the environment belongs to
	CheckoutPath string
	// Dir is the environment directory relative to the checkout
	Dir string
	// Interpreter is the base python used to create the environment
	Interpreter string
}

// NewVenv describes a virtual environment without creating it
func NewVenv(checkoutPath, dir, interpreter string) *Venv {
	if dir == "" {
		dir = "venv"
	}

	if interpreter == "" {
		interpreter = "python3"
	}

	return &Venv{
		CheckoutPath: checkoutPath,
		Dir:          dir,
		Interpreter:  interpreter,
	}
}

// Path returns the absolute environment directory
func (v *Venv) Path() string {
	return filepath.Join(v.CheckoutPath, v.Dir)
}

// binDir returns the scripts directory inside the environment
func (v *Venv) binDir() string {
	if runtime.GOOS == "windows" {
		return filepath.Join(v.Path(), "Scripts")
	}

	return filepath.Join(v.Path(), "bin")
}

// Python returns the interpreter inside the environment
func (v *Venv) Python() string {
	return filepath.Join(v.binDir(), "python")
}

// Pip returns the pip executable inside the environment
func (v *Venv) Pip() string {
	return filepath.Join(v.binDir(), "pip")
}

// Exists reports whether the environment has already been created
func (v *Venv) Exists() bool {
	info, err := os.Stat(v.Python())

	return err == nil && !info.IsDir()
}

// Ensure creates the virtual environment if it does not exist yet
func (v *Venv) Ensure() error {
	if v.Exists() {
		return nil
	}

	if _, err := exec.LookPath(v.Interpreter); err != nil {
		return fmt.Errorf("python interpreter %q not found in PATH", v.Interpreter)
	}

	ctx, cancel := context.WithTimeout(context.Background(), venvCreateTimeout)
	defer cancel()

	cmd := exec.CommandContext(ctx, v.Interpreter, "-m", "venv", v.Dir)
	cmd.Dir = v.CheckoutPath

	if output, err := cmd.CombinedOutput(); err != nil {
		return fmt.Errorf("failed to create virtual environment: %w: %s", err, string(output))
	}

	if !v.Exists() {
		return fmt.Errorf("virtual environment created but interpreter missing at %s", v.Python())
	}

	return nil
}

package environment

import (
	"fmt"
)

// SetupOptions contains options for environment setup
type SetupOptions struct {
	// Python is the base interpreter used to create the virtual environment
	Python string

	// VenvDir is the environment directory relative to the checkout
	VenvDir string

	// Requirements overrides the dependency manifest name
	Requirements string

	// ConfiguredPackageManager overrides auto-detection if set
	ConfiguredPackageManager string

	// OnProgress is called with progress messages
	OnProgress func(message string)
}

// SetupResult describes what Setup produced
type SetupResult struct {
	Detection *DetectionResult
	Venv      *Venv
}

// Setup prepares a checkout for launch: detect the project, create its
// virtual environment when it is a Python project, and install the
// declared dependencies. Unlike a worktree convenience install, a failed
// install here is an error: launching without dependencies cannot work.
func Setup(checkoutPath string, opts *SetupOptions) (*SetupResult, error) {
	if opts == nil {
		opts = &SetupOptions{}
	}

	progress := opts.OnProgress
	if progress == nil {
		progress = func(string) {}
	}

	detector := NewDetector(opts.ConfiguredPackageManager)
	detector.ConfiguredRequirements = opts.Requirements

	progress("Detecting project type...")

	result, err := detector.Detect(checkoutPath)
	if err != nil {
		return nil, fmt.Errorf("failed to detect project: %w", err)
	}

	if result.ProjectType == ProjectTypeNone {
		progress("No package manager detected, skipping installation")

		return &SetupResult{Detection: result}, nil
	}

	progress(fmt.Sprintf("Detected %s project with %s package manager", result.ProjectType, result.PackageManager))

	var venv *Venv

	if result.ProjectType == ProjectTypePython {
		venv = NewVenv(checkoutPath, opts.VenvDir, opts.Python)

		progress(fmt.Sprintf("Creating virtual environment in %s...", venv.Dir))

		if err := venv.Ensure(); err != nil {
			return nil, err
		}
	}

	installer := NewInstaller(progress)

	installResult := installer.Install(result, venv)
	if !installResult.Success {
		return nil, fmt.Errorf("dependency installation failed: %s", installResult.Message)
	}

	progress(installResult.Message)

	return &SetupResult{Detection: result, Venv: venv}, nil
}

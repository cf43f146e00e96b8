// Package environment detects a checkout's project layout, creates its
// virtual environment, and installs its declared dependencies.
package environment

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
)

// RealDetector implements the Detector interface
type RealDetector struct {
	// ConfiguredPackageManager allows overriding auto-detection
	ConfiguredPackageManager string
	// ConfiguredRequirements overrides the default requirements manifest name
	ConfiguredRequirements string
}

// NewDetector creates a new RealDetector instance
func NewDetector(configuredPM string) *RealDetector {
	return &RealDetector{
		ConfiguredPackageManager: configuredPM,
	}
}

// DetectProjectType detects the type of project in the given directory
func (d *RealDetector) DetectProjectType(checkoutPath string) (ProjectType, error) {
	// Python first: the deploy target is a Python service and a checkout
	// may carry an auxiliary package.json for tooling
	pythonFiles := []string{
		"requirements.txt",
		"pyproject.toml",
		"setup.py",
		"Pipfile",
		"uv.lock",
		"poetry.lock",
	}
	for _, file := range pythonFiles {
		if d.fileExists(filepath.Join(checkoutPath, file)) {
			return ProjectTypePython, nil
		}
	}

	if d.fileExists(filepath.Join(checkoutPath, "go.mod")) {
		return ProjectTypeGo, nil
	}

	if d.fileExists(filepath.Join(checkoutPath, "package.json")) {
		return ProjectTypeNodeJS, nil
	}

	return ProjectTypeNone, nil
}

// DetectPackageManager detects the package manager for the project
func (d *RealDetector) DetectPackageManager(checkoutPath string, projectType ProjectType) (PackageManager, error) {
	switch projectType {
	case ProjectTypePython:
		return d.detectPythonPackageManager(checkoutPath)
	case ProjectTypeNodeJS:
		return PackageManagerNPM, nil
	case ProjectTypeGo:
		return PackageManagerGoMod, nil
	default:
		return PackageManagerNone, nil
	}
}

// Detect performs both project type and package manager detection
func (d *RealDetector) Detect(checkoutPath string) (*DetectionResult, error) {
	projectType, err := d.DetectProjectType(checkoutPath)
	if err != nil {
		return nil, fmt.Errorf("failed to detect project type: %w", err)
	}

	if projectType == ProjectTypeNone {
		return &DetectionResult{
			ProjectType:    ProjectTypeNone,
			PackageManager: PackageManagerNone,
			CheckoutPath:   checkoutPath,
		}, nil
	}

	packageManager, err := d.DetectPackageManager(checkoutPath, projectType)
	if err != nil {
		return nil, fmt.Errorf("failed to detect package manager: %w", err)
	}

	return &DetectionResult{
		ProjectType:    projectType,
		PackageManager: packageManager,
		CheckoutPath:   checkoutPath,
		Requirements:   d.requirementsManifest(checkoutPath),
	}, nil
}

// detectPythonPackageManager detects the Python package manager
// Priority: configured override > uv > poetry > pip
func (d *RealDetector) detectPythonPackageManager(checkoutPath string) (PackageManager, error) {
	// Check for configured override first
	if d.ConfiguredPackageManager != "" {
		return PackageManager(d.ConfiguredPackageManager), nil
	}

	// Check for uv (modern Python package manager)
	if d.fileExists(filepath.Join(checkoutPath, "uv.lock")) {
		return PackageManagerUV, nil
	}

	// Check pyproject.toml for [tool.uv] section
	pyprojectPath := filepath.Join(checkoutPath, "pyproject.toml")

	if d.fileExists(pyprojectPath) {
		data, err := os.ReadFile(pyprojectPath) //nolint:gosec // Path is derived from the checkout, not user input

		if err == nil && strings.Contains(string(data), "[tool.uv]") {
			return PackageManagerUV, nil
		}
	}

	// Check for poetry
	if d.fileExists(filepath.Join(checkoutPath, "poetry.lock")) {
		return PackageManagerPoetry, nil
	}

	// Default to pip
	return PackageManagerPip, nil
}

// requirementsManifest returns the dependency manifest for a pip project
func (d *RealDetector) requirementsManifest(checkoutPath string) string {
	if d.ConfiguredRequirements != "" {
		if d.fileExists(filepath.Join(checkoutPath, d.ConfiguredRequirements)) {
			return d.ConfiguredRequirements
		}

		return ""
	}

	if d.fileExists(filepath.Join(checkoutPath, "requirements.txt")) {
		return "requirements.txt"
	}

	return ""
}

// fileExists checks if a file exists
func (d *RealDetector) fileExists(path string) bool {
	info, err := os.Stat(path)
	if os.IsNotExist(err) {
		return false
	}

	return err == nil && !info.IsDir()
}

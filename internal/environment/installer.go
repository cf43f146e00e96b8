package environment

import (
	"context"
	"fmt"
	"os/exec"
	"strings"
	"time"
)

// installTimeout bounds a single dependency installation run
const installTimeout = 10 * time.Minute

// RealInstaller implements the Installer interface
type RealInstaller struct {
	// OnProgress is called with progress messages during installation
	OnProgress func(message string)
}

// NewInstaller creates a new RealInstaller instance
func NewInstaller(onProgress func(string)) *RealInstaller {
	return &RealInstaller{
		OnProgress: onProgress,
	}
}

// Install runs the package manager installation command. For pip projects
// the venv's own pip is used so packages land inside the environment.
func (i *RealInstaller) Install(result *DetectionResult, venv *Venv) *InstallResult {
	if result.ProjectType == ProjectTypeNone || result.PackageManager == PackageManagerNone {
		return &InstallResult{
			Success: true,
			Message: "No package manager detected, skipping installation",
		}
	}

	cmd, args, err := i.installCommand(result, venv)
	if err != nil {
		return &InstallResult{
			Success: false,
			Message: err.Error(),
			Error:   err,
		}
	}

	if i.OnProgress != nil {
		i.OnProgress(fmt.Sprintf("Installing dependencies with %s...", result.PackageManager))
	}

	ctx, cancel := context.WithTimeout(context.Background(), installTimeout)
	defer cancel()

	execCmd := exec.CommandContext(ctx, cmd, args...)
	execCmd.Dir = result.CheckoutPath

	output, runErr := execCmd.CombinedOutput()
	if runErr != nil {
		return &InstallResult{
			Success: false,
			Message: fmt.Sprintf("Failed to install dependencies: %s", strings.TrimSpace(string(output))),
			Error:   runErr,
		}
	}

	return &InstallResult{
		Success: true,
		Message: fmt.Sprintf("Successfully installed dependencies with %s", result.PackageManager),
	}
}

// IsAvailable checks if the package manager command is available
func (i *RealInstaller) IsAvailable(pm PackageManager) bool {
	cmd := commandName(pm)
	if cmd == "" {
		return false
	}

	_, err := exec.LookPath(cmd)

	return err == nil
}

// commandName returns the command name for a package manager
func commandName(pm PackageManager) string {
	switch pm {
	case PackageManagerPip:
		return "pip"
	case PackageManagerUV:
		return "uv"
	case PackageManagerPoetry:
		return "poetry"
	case PackageManagerNPM:
		return "npm"
	case PackageManagerGoMod:
		return "go"
	default:
		return ""
	}
}

// installCommand returns the command and args for installing dependencies
func (i *RealInstaller) installCommand(result *DetectionResult, venv *Venv) (string, []string, error) {
	switch result.PackageManager {
	case PackageManagerPip:
		if result.Requirements == "" {
			return "", nil, fmt.Errorf("no requirements manifest found in %s", result.CheckoutPath)
		}

		// Prefer the venv's pip so packages install into the environment
		if venv != nil && venv.Exists() {
			return venv.Pip(), []string{"install", "-r", result.Requirements, "--quiet"}, nil
		}

		if !i.IsAvailable(PackageManagerPip) {
			return "", nil, fmt.Errorf("pip not found in PATH and no virtual environment available")
		}

		return "pip", []string{"install", "-r", result.Requirements, "--quiet"}, nil

	case PackageManagerUV:
		if !i.IsAvailable(PackageManagerUV) {
			return "", nil, fmt.Errorf("package manager 'uv' not found in PATH")
		}

		return "uv", []string{"sync"}, nil

	case PackageManagerPoetry:
		if !i.IsAvailable(PackageManagerPoetry) {
			return "", nil, fmt.Errorf("package manager 'poetry' not found in PATH")
		}

		return "poetry", []string{"install", "--quiet"}, nil

	case PackageManagerNPM:
		if !i.IsAvailable(PackageManagerNPM) {
			return "", nil, fmt.Errorf("package manager 'npm' not found in PATH")
		}

		return "npm", []string{"install", "--silent"}, nil

	case PackageManagerGoMod:
		if !i.IsAvailable(PackageManagerGoMod) {
			return "", nil, fmt.Errorf("go toolchain not found in PATH")
		}

		return "go", []string{"mod", "download"}, nil

	default:
		return "", nil, fmt.Errorf("unknown package manager: %s", result.PackageManager)
	}
}

package environment

// ProjectType represents the type of project detected
type ProjectType string

// Project type constants
const (
	// ProjectTypePython represents a Python project
	ProjectTypePython ProjectType = "python"
	// ProjectTypeNodeJS represents a Node.js project
	ProjectTypeNodeJS ProjectType = "nodejs"
	// ProjectTypeGo represents a Go project
	ProjectTypeGo ProjectType = "go"
	// ProjectTypeNone represents no detected project type
	ProjectTypeNone ProjectType = "none"
)

// PackageManager represents a detected package manager
type PackageManager string

// Package manager constants
const (
	// PackageManagerPip represents the pip package manager for Python
	PackageManagerPip PackageManager = "pip"
	// PackageManagerUV represents the uv package manager for Python
	PackageManagerUV PackageManager = "uv"
	// PackageManagerPoetry represents the poetry package manager for Python
	PackageManagerPoetry PackageManager = "poetry"
	// PackageManagerNPM represents the npm package manager for Node.js
	PackageManagerNPM PackageManager = "npm"
	// PackageManagerGoMod represents the go mod package manager for Go
	PackageManagerGoMod PackageManager = "go"
	// PackageManagerNone represents no detected package manager
	PackageManagerNone PackageManager = "none"
)

// DetectionResult contains the results of project detection
type DetectionResult struct {
	ProjectType    ProjectType
	PackageManager PackageManager
	CheckoutPath   string
	// Requirements is the dependency manifest relative to the checkout,
	// when the project declares one
	Requirements string
}

// InstallResult contains the results of package installation
type InstallResult struct {
	Success bool
	Message string
	Error   error
}

// Detector interface for detecting project types and package managers
type Detector interface {
	// DetectProjectType detects the type of project in the given directory
	DetectProjectType(checkoutPath string) (ProjectType, error)

	// DetectPackageManager detects the package manager for the project
	DetectPackageManager(checkoutPath string, projectType ProjectType) (PackageManager, error)

	// Detect performs both project type and package manager detection
	Detect(checkoutPath string) (*DetectionResult, error)
}

// Installer interface for installing dependencies
type Installer interface {
	// Install runs the package manager installation command
	Install(result *DetectionResult, venv *Venv) *InstallResult

	// IsAvailable checks if the package manager command is available
	IsAvailable(pm PackageManager) bool
}

// Interface compliance checks
var (
	_ Detector  = (*RealDetector)(nil)
	_ Installer = (*RealInstaller)(nil)
)

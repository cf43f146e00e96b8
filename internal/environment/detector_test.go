package environment

import (
	"os"
	"path/filepath"
	"testing"
)

func TestDetectProjectType_Python(t *testing.T) {
	markers := []string{"requirements.txt", "pyproject.toml", "setup.py", "Pipfile", "uv.lock", "poetry.lock"}

	for _, marker := range markers {
		t.Run(marker, func(t *testing.T) {
			dir := t.TempDir()
			writeFile(t, dir, marker, "")

			detector := NewDetector("")

			projectType, err := detector.DetectProjectType(dir)
			if err != nil {
				t.Fatalf("detect failed: %v", err)
			}

			if projectType != ProjectTypePython {
				t.Errorf("expected python, got %s", projectType)
			}
		})
	}
}

func TestDetectProjectType_PythonWinsOverNode(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, dir, "requirements.txt", "flask\n")
	writeFile(t, dir, "package.json", "{}")

	detector := NewDetector("")

	projectType, err := detector.DetectProjectType(dir)
	if err != nil {
		t.Fatalf("detect failed: %v", err)
	}

	if projectType != ProjectTypePython {
		t.Errorf("expected python to win, got %s", projectType)
	}
}

func TestDetectProjectType_None(t *testing.T) {
	detector := NewDetector("")

	projectType, err := detector.DetectProjectType(t.TempDir())
	if err != nil {
		t.Fatalf("detect failed: %v", err)
	}

	if projectType != ProjectTypeNone {
		t.Errorf("expected none, got %s", projectType)
	}
}

func TestDetectPackageManager_PipDefault(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, dir, "requirements.txt", "fastapi\n")

	detector := NewDetector("")

	pm, err := detector.DetectPackageManager(dir, ProjectTypePython)
	if err != nil {
		t.Fatalf("detect failed: %v", err)
	}

	if pm != PackageManagerPip {
		t.Errorf("expected pip, got %s", pm)
	}
}

func TestDetectPackageManager_UVLockWins(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, dir, "requirements.txt", "")
	writeFile(t, dir, "uv.lock", "")

	detector := NewDetector("")

	pm, err := detector.DetectPackageManager(dir, ProjectTypePython)
	if err != nil {
		t.Fatalf("detect failed: %v", err)
	}

	if pm != PackageManagerUV {
		t.Errorf("expected uv, got %s", pm)
	}
}

func TestDetectPackageManager_PoetryLock(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, dir, "poetry.lock", "")

	detector := NewDetector("")

	pm, err := detector.DetectPackageManager(dir, ProjectTypePython)
	if err != nil {
		t.Fatalf("detect failed: %v", err)
	}

	if pm != PackageManagerPoetry {
		t.Errorf("expected poetry, got %s", pm)
	}
}

func TestDetectPackageManager_ConfiguredOverride(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, dir, "uv.lock", "")

	detector := NewDetector("pip")

	pm, err := detector.DetectPackageManager(dir, ProjectTypePython)
	if err != nil {
		t.Fatalf("detect failed: %v", err)
	}

	if pm != PackageManagerPip {
		t.Errorf("configured override should win, got %s", pm)
	}
}

func TestDetect_RecordsRequirementsManifest(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, dir, "requirements.txt", "fastapi\n")

	detector := NewDetector("")

	result, err := detector.Detect(dir)
	if err != nil {
		t.Fatalf("detect failed: %v", err)
	}

	if result.Requirements != "requirements.txt" {
		t.Errorf("expected requirements.txt, got %q", result.Requirements)
	}
}

func TestDetect_ConfiguredRequirementsMissing(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, dir, "requirements.txt", "")

	detector := NewDetector("")
	detector.ConfiguredRequirements = "requirements-prod.txt"

	result, err := detector.Detect(dir)
	if err != nil {
		t.Fatalf("detect failed: %v", err)
	}

	if result.Requirements != "" {
		t.Errorf("missing configured manifest should yield empty, got %q", result.Requirements)
	}
}

func writeFile(t *testing.T, dir, name, content string) {
	t.Helper()

	if err := os.WriteFile(filepath.Join(dir, name), []byte(content), 0o600); err != nil {
		t.Fatalf("failed to write %s: %v", name, err)
	}
}

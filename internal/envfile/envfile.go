// Package envfile inspects and prepares the application's .env file before
// launch. The file itself belongs to the deployed application; this package
// only checks that the keys the application reads are present.
package envfile

import (
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"sort"
	"strings"

	"github.com/joho/godotenv"
)

// Inspection reports the state of an env file against its required keys
type Inspection struct {
	// Exists is false when the file is absent entirely
	Exists bool
	// Missing lists required keys not present in the file
	Missing []string
	// Empty lists required keys present but with empty values
	Empty []string
}

// Complete reports whether every required key is present and non-empty
func (i *Inspection) Complete() bool {
	return i.Exists && len(i.Missing) == 0 && len(i.Empty) == 0
}

// Problems returns a readable list of what still needs attention
func (i *Inspection) Problems() string {
	if !i.Exists {
		return "file does not exist"
	}

	var parts []string

	if len(i.Missing) > 0 {
		parts = append(parts, fmt.Sprintf("missing keys: %s", strings.Join(i.Missing, ", ")))
	}

	if len(i.Empty) > 0 {
		parts = append(parts, fmt.Sprintf("empty keys: %s", strings.Join(i.Empty, ", ")))
	}

	return strings.Join(parts, "; ")
}

// Inspect parses the env file and checks it against the required keys.
// With no required keys, any parseable file passes.
func Inspect(path string, requiredKeys []string) (*Inspection, error) {
	inspection := &Inspection{}

	values, err := godotenv.Read(path)
	if err != nil {
		if os.IsNotExist(err) {
			inspection.Missing = append(inspection.Missing, requiredKeys...)

			return inspection, nil
		}

		return nil, fmt.Errorf("failed to parse %s: %w", path, err)
	}

	inspection.Exists = true

	for _, key := range requiredKeys {
		value, ok := values[key]
		if !ok {
			inspection.Missing = append(inspection.Missing, key)
			continue
		}

		if strings.TrimSpace(value) == "" {
			inspection.Empty = append(inspection.Empty, key)
		}
	}

	sort.Strings(inspection.Missing)
	sort.Strings(inspection.Empty)

	return inspection, nil
}

// WriteTemplate writes a skeleton env file listing the required keys. When
// the checkout ships a .env.example next to the target path, its contents
// seed the template. An existing file is never overwritten.
func WriteTemplate(path string, requiredKeys []string) error {
	if _, err := os.Stat(path); err == nil {
		return nil
	}

	var sb strings.Builder

	sb.WriteString("# Environment configuration\n")
	sb.WriteString("# Fill in every value before launching.\n\n")

	example := filepath.Join(filepath.Dir(path), ".env.example")
	if data, err := os.ReadFile(example); err == nil { //nolint:gosec // Path sits next to the managed env file
		sb.Write(data)

		if !strings.HasSuffix(sb.String(), "\n") {
			sb.WriteString("\n")
		}
	}

	// Append required keys the example did not cover
	existing, _ := godotenv.Unmarshal(sb.String()) //nolint:errcheck

	for _, key := range requiredKeys {
		if _, ok := existing[key]; ok {
			continue
		}

		sb.WriteString(key + "=\n")
	}

	if err := os.WriteFile(path, []byte(sb.String()), 0o600); err != nil {
		return fmt.Errorf("failed to write env template: %w", err)
	}

	return nil
}

// OpenInEditor opens the env file in the user's editor, attached to the
// current terminal, and waits for the editor to exit.
func OpenInEditor(path string) error {
	editor := os.Getenv("EDITOR")
	if editor == "" {
		editor = "vi"
	}

	cmd := exec.Command(editor, path) //nolint:gosec // Editor comes from the user's own environment
	cmd.Stdin = os.Stdin
	cmd.Stdout = os.Stdout
	cmd.Stderr = os.Stderr

	if err := cmd.Run(); err != nil {
		return fmt.Errorf("editor %s failed: %w", editor, err)
	}

	return nil
}

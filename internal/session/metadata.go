package session

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"
)

// Status describes what we believe a deployed session is doing
type Status string

// Session status values
const (
	StatusRunning Status = "running"
	StatusStopped Status = "stopped"
	StatusFailed  Status = "failed"
	StatusIdle    Status = "idle"
	StatusUnknown Status = "unknown"
)

// DependenciesInfo records how the deployment's dependencies were installed
type DependenciesInfo struct {
	ProjectType    string    `json:"project_type"`
	PackageManager string    `json:"package_manager"`
	InstalledAt    time.Time `json:"installed_at"`
}

// Metadata records what is deployed in a session
type Metadata struct {
	SessionName    string            `json:"session_name"`
	SessionID      string            `json:"session_id"`
	SessionType    Type              `json:"session_type"`
	AppName        string            `json:"app_name"`
	CheckoutPath   string            `json:"checkout_path"`
	Remote         string            `json:"remote"`
	Commit         string            `json:"commit,omitempty"`
	Entrypoint     string            `json:"entrypoint"`
	DeploymentID   string            `json:"deployment_id"`
	Status         Status            `json:"status"`
	Dependencies   *DependenciesInfo `json:"dependencies,omitempty"`
	CreatedAt      time.Time         `json:"created_at"`
	LastDeployedAt time.Time         `json:"last_deployed_at"`
}

// MetadataStore persists session metadata
type MetadataStore interface {
	Save(metadata *Metadata) error
	Load(sessionName string) (*Metadata, error)
	Delete(sessionName string) error
	List() ([]string, error)
	LoadAll() ([]*Metadata, error)
}

// FileMetadataStore stores metadata as JSON files, one per session
type FileMetadataStore struct {
	baseDir string
	mu      sync.RWMutex
}

// NewMetadataStore creates a file-based metadata store rooted at baseDir
func NewMetadataStore(baseDir string) (*FileMetadataStore, error) {
	if err := os.MkdirAll(baseDir, 0o700); err != nil {
		return nil, fmt.Errorf("failed to create metadata directory: %w", err)
	}

	return &FileMetadataStore{baseDir: baseDir}, nil
}

// GetSessionDir returns the directory where session metadata lives
func GetSessionDir() (string, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("failed to get home directory: %w", err)
	}

	return filepath.Join(home, ".redeploy", "sessions"), nil
}

// metadataPath returns the path of the JSON file for a session
func (s *FileMetadataStore) metadataPath(sessionName string) string {
	// Session names are already normalized, but guard against separators
	safe := strings.ReplaceAll(sessionName, string(filepath.Separator), "_")

	return filepath.Join(s.baseDir, safe+".json")
}

// Save writes the metadata atomically via a temp file and rename
func (s *FileMetadataStore) Save(metadata *Metadata) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if metadata.SessionName == "" {
		return fmt.Errorf("metadata has no session name")
	}

	data, err := json.MarshalIndent(metadata, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal metadata: %w", err)
	}

	path := s.metadataPath(metadata.SessionName)
	tmpPath := path + ".tmp"

	if err := os.WriteFile(tmpPath, data, 0o600); err != nil {
		return fmt.Errorf("failed to write metadata: %w", err)
	}

	if err := os.Rename(tmpPath, path); err != nil {
		os.Remove(tmpPath) //nolint:errcheck

		return fmt.Errorf("failed to commit metadata: %w", err)
	}

	return nil
}

// Load reads the metadata for a session
func (s *FileMetadataStore) Load(sessionName string) (*Metadata, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	data, err := os.ReadFile(s.metadataPath(sessionName))
	if err != nil {
		if os.IsNotExist(err) {
			return nil, fmt.Errorf("no metadata for session %s", sessionName)
		}

		return nil, fmt.Errorf("failed to read metadata: %w", err)
	}

	var metadata Metadata
	if err := json.Unmarshal(data, &metadata); err != nil {
		return nil, fmt.Errorf("failed to parse metadata for %s: %w", sessionName, err)
	}

	return &metadata, nil
}

// Delete removes the metadata for a session. Deleting metadata that does
// not exist is not an error.
func (s *FileMetadataStore) Delete(sessionName string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := os.Remove(s.metadataPath(sessionName)); err != nil && !os.IsNotExist(err) {
		return fmt.Errorf("failed to delete metadata: %w", err)
	}

	return nil
}

// List returns the names of all sessions with stored metadata
func (s *FileMetadataStore) List() ([]string, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	entries, err := os.ReadDir(s.baseDir)
	if err != nil {
		return nil, fmt.Errorf("failed to read metadata directory: %w", err)
	}

	var names []string

	for _, entry := range entries {
		if entry.IsDir() || !strings.HasSuffix(entry.Name(), ".json") {
			continue
		}

		names = append(names, strings.TrimSuffix(entry.Name(), ".json"))
	}

	return names, nil
}

// LoadAll reads every stored metadata record, skipping corrupted files
func (s *FileMetadataStore) LoadAll() ([]*Metadata, error) {
	names, err := s.List()
	if err != nil {
		return nil, err
	}

	var all []*Metadata

	for _, name := range names {
		metadata, err := s.Load(name)
		if err != nil {
			// Corrupted or half-written files should not block listing
			continue
		}

		all = append(all, metadata)
	}

	return all, nil
}

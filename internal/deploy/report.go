package deploy

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"github.com/oklog/ulid/v2"
)

// StepStatus is the outcome of a single pipeline step
type StepStatus string

// Step outcomes
const (
	StepOK      StepStatus = "ok"
	StepFailed  StepStatus = "failed"
	StepSkipped StepStatus = "skipped"
	StepWarned  StepStatus = "warned"
)

// StepReport records what one pipeline step did
type StepReport struct {
	Name     string        `json:"name"`
	Status   StepStatus    `json:"status"`
	Duration time.Duration `json:"duration"`
	Error    string        `json:"error,omitempty"`
}

// Report records a whole deployment run
type Report struct {
	ID         string       `json:"id"`
	App        string       `json:"app"`
	Session    string       `json:"session"`
	Commit     string       `json:"commit,omitempty"`
	DryRun     bool         `json:"dry_run"`
	Success    bool         `json:"success"`
	StartedAt  time.Time    `json:"started_at"`
	FinishedAt time.Time    `json:"finished_at"`
	Steps      []StepReport `json:"steps"`
	Error      string       `json:"error,omitempty"`
}

// NewRunID returns a fresh deployment run identifier. ULIDs sort
// lexicographically by time, which keeps history listings in order for free.
func NewRunID() string {
	return ulid.Make().String()
}

// HistoryStore persists deployment reports as JSON files named by run ID
type HistoryStore struct {
	baseDir string
}

// DefaultHistoryDir returns where deployment history lives
func DefaultHistoryDir() (string, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("failed to get home directory: %w", err)
	}

	return filepath.Join(home, ".redeploy", "history"), nil
}

// NewHistoryStore creates a history store rooted at baseDir
func NewHistoryStore(baseDir string) (*HistoryStore, error) {
	if err := os.MkdirAll(baseDir, 0o700); err != nil {
		return nil, fmt.Errorf("failed to create history directory: %w", err)
	}

	return &HistoryStore{baseDir: baseDir}, nil
}

// Save writes a report atomically
func (s *HistoryStore) Save(report *Report) error {
	if report.ID == "" {
		return fmt.Errorf("report has no run ID")
	}

	data, err := json.MarshalIndent(report, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal report: %w", err)
	}

	path := filepath.Join(s.baseDir, report.ID+".json")
	tmpPath := path + ".tmp"

	if err := os.WriteFile(tmpPath, data, 0o600); err != nil {
		return fmt.Errorf("failed to write report: %w", err)
	}

	if err := os.Rename(tmpPath, path); err != nil {
		os.Remove(tmpPath) //nolint:errcheck

		return fmt.Errorf("failed to commit report: %w", err)
	}

	return nil
}

// Load reads a report by run ID
func (s *HistoryStore) Load(id string) (*Report, error) {
	data, err := os.ReadFile(filepath.Join(s.baseDir, id+".json")) //nolint:gosec // IDs come from our own listings
	if err != nil {
		if os.IsNotExist(err) {
			return nil, fmt.Errorf("no deployment with run ID %s", id)
		}

		return nil, fmt.Errorf("failed to read report: %w", err)
	}

	var report Report
	if err := json.Unmarshal(data, &report); err != nil {
		return nil, fmt.Errorf("failed to parse report %s: %w", id, err)
	}

	return &report, nil
}

// List returns the most recent reports, newest first, up to limit.
// A limit of zero means all.
func (s *HistoryStore) List(limit int) ([]*Report, error) {
	entries, err := os.ReadDir(s.baseDir)
	if err != nil {
		return nil, fmt.Errorf("failed to read history directory: %w", err)
	}

	var ids []string

	for _, entry := range entries {
		if entry.IsDir() || !strings.HasSuffix(entry.Name(), ".json") {
			continue
		}

		ids = append(ids, strings.TrimSuffix(entry.Name(), ".json"))
	}

	// ULIDs are time-ordered, so reverse lexicographic is newest first
	sort.Sort(sort.Reverse(sort.StringSlice(ids)))

	if limit > 0 && len(ids) > limit {
		ids = ids[:limit]
	}

	reports := make([]*Report, 0, len(ids))

	for _, id := range ids {
		report, err := s.Load(id)
		if err != nil {
			continue
		}

		reports = append(reports, report)
	}

	return reports, nil
}

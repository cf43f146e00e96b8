package session

import (
	"fmt"
	"sync"
)

// FakeMetadataStore is an in-memory MetadataStore for testing
type FakeMetadataStore struct {
	mu       sync.Mutex
	records  map[string]*Metadata
	SaveErr  error
	LoadErr  error
	getCalls int
}

// NewFakeMetadataStore creates an empty in-memory store
func NewFakeMetadataStore() *FakeMetadataStore {
	return &FakeMetadataStore{records: make(map[string]*Metadata)}
}

// Save stores a copy of the metadata
func (s *FakeMetadataStore) Save(metadata *Metadata) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.SaveErr != nil {
		return s.SaveErr
	}

	copied := *metadata
	s.records[metadata.SessionName] = &copied

	return nil
}

// Load returns a copy of the stored metadata
func (s *FakeMetadataStore) Load(sessionName string) (*Metadata, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.getCalls++

	if s.LoadErr != nil {
		return nil, s.LoadErr
	}

	metadata, ok := s.records[sessionName]
	if !ok {
		return nil, fmt.Errorf("no metadata for session %s", sessionName)
	}

	copied := *metadata

	return &copied, nil
}

// Delete removes stored metadata
func (s *FakeMetadataStore) Delete(sessionName string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	delete(s.records, sessionName)

	return nil
}

// List returns stored session names
func (s *FakeMetadataStore) List() ([]string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	names := make([]string, 0, len(s.records))
	for name := range s.records {
		names = append(names, name)
	}

	return names, nil
}

// LoadAll returns copies of every stored record
func (s *FakeMetadataStore) LoadAll() ([]*Metadata, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	all := make([]*Metadata, 0, len(s.records))

	for _, metadata := range s.records {
		copied := *metadata
		all = append(all, &copied)
	}

	return all, nil
}

// GetCallCount returns how many times Load was called
func (s *FakeMetadataStore) GetCallCount() int {
	s.mu.Lock()
	defer s.mu.Unlock()

	return s.getCalls
}

// FakeOperations is a scripted Operations implementation for testing
type FakeOperations struct {
	Type     Type
	Sessions map[string]bool
	Killed   []string
	Created  []string
	Output   string

	CreateErr error
	KillErr   error
}

// NewFakeOperations creates fake operations backed by tmux semantics
func NewFakeOperations() *FakeOperations {
	return &FakeOperations{
		Type:     TypeTmux,
		Sessions: make(map[string]bool),
	}
}

// SessionType returns the configured multiplexer type
func (f *FakeOperations) SessionType() Type { return f.Type }

// IsAvailable reports whether the fake multiplexer exists
func (f *FakeOperations) IsAvailable() bool { return f.Type != TypeNone }

// CreateSession records the creation and marks the session live
func (f *FakeOperations) CreateSession(name, workingDir string, command []string) error {
	if f.CreateErr != nil {
		return f.CreateErr
	}

	f.Created = append(f.Created, name)
	f.Sessions[name] = true

	return nil
}

// HasSession reports whether the fake session is live
func (f *FakeOperations) HasSession(name string) (bool, error) {
	return f.Sessions[name], nil
}

// ListSessions returns live fake session names
func (f *FakeOperations) ListSessions() ([]string, error) {
	var names []string

	for name, live := range f.Sessions {
		if live {
			names = append(names, name)
		}
	}

	return names, nil
}

// KillSession records the kill and marks the session dead
func (f *FakeOperations) KillSession(name string) error {
	if f.KillErr != nil {
		return f.KillErr
	}

	f.Killed = append(f.Killed, name)
	delete(f.Sessions, name)

	return nil
}

// AttachToSession is a no-op in tests
func (f *FakeOperations) AttachToSession(name string) error {
	if !f.Sessions[name] {
		return fmt.Errorf("session not found: %s", name)
	}

	return nil
}

// CapturePane returns the scripted output
func (f *FakeOperations) CapturePane(name string, lines int) (string, error) {
	if !f.Sessions[name] {
		return "", fmt.Errorf("session not found: %s", name)
	}

	return f.Output, nil
}

package session

import (
	"fmt"
	"time"
)

// SaveSessionMetadata persists the metadata record for a session
func (m *SessionManager) SaveSessionMetadata(metadata *Metadata) error {
	if metadata.SessionType == "" {
		metadata.SessionType = m.sessionType
	}

	if metadata.Status == "" {
		metadata.Status = StatusUnknown
	}

	if metadata.CreatedAt.IsZero() {
		metadata.CreatedAt = time.Now()
	}

	return m.metadataStore.Save(metadata)
}

// LoadSessionMetadata reads the metadata record for a session
func (m *SessionManager) LoadSessionMetadata(sessionName string) (*Metadata, error) {
	return m.metadataStore.Load(sessionName)
}

// DeleteSessionMetadata removes the metadata record for a session
func (m *SessionManager) DeleteSessionMetadata(sessionName string) error {
	return m.metadataStore.Delete(sessionName)
}

// ListSessionMetadata returns metadata for every tracked session
func (m *SessionManager) ListSessionMetadata() ([]*Metadata, error) {
	return m.metadataStore.LoadAll()
}

// UpdateSessionStatus sets a session's recorded status
func (m *SessionManager) UpdateSessionStatus(sessionName string, status Status) error {
	metadata, err := m.metadataStore.Load(sessionName)
	if err != nil {
		return fmt.Errorf("failed to load metadata for %s: %w", sessionName, err)
	}

	metadata.Status = status

	return m.metadataStore.Save(metadata)
}

// SyncSessionStatus reconciles a session's recorded status with whether the
// multiplexer session actually exists, and returns the reconciled status.
func (m *SessionManager) SyncSessionStatus(sessionName string) (Status, error) {
	metadata, err := m.metadataStore.Load(sessionName)
	if err != nil {
		return StatusUnknown, err
	}

	exists, err := m.HasSession(sessionName)
	if err != nil {
		return metadata.Status, fmt.Errorf("failed to check session: %w", err)
	}

	reconciled := metadata.Status

	switch {
	case exists && metadata.Status != StatusRunning && metadata.Status != StatusIdle:
		reconciled = StatusRunning
	case !exists && (metadata.Status == StatusRunning || metadata.Status == StatusIdle):
		reconciled = StatusStopped
	}

	if reconciled != metadata.Status {
		metadata.Status = reconciled
		if err := m.metadataStore.Save(metadata); err != nil {
			return reconciled, fmt.Errorf("failed to record status: %w", err)
		}
	}

	return reconciled, nil
}

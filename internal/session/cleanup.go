package session

import (
	"fmt"
	"os"
	"time"
)

// idleThreshold is how long a session may run without a redeploy before it
// is marked idle
const idleThreshold = 14 * 24 * time.Hour

// CleanupResult summarizes what an orphan sweep did
type CleanupResult struct {
	// Reconciled lists sessions whose recorded status was corrected
	Reconciled []string
	// Removed lists sessions whose metadata was deleted because both
	// the session and its checkout are gone
	Removed []string
	// Idle lists live sessions that have not been redeployed recently
	Idle []string
}

// CleanupOrphanedMetadata reconciles stored metadata with reality. Records
// marked running whose session is gone are downgraded to stopped; records
// whose session and checkout are both gone are removed entirely.
func (m *SessionManager) CleanupOrphanedMetadata() (*CleanupResult, error) {
	all, err := m.metadataStore.LoadAll()
	if err != nil {
		return nil, fmt.Errorf("failed to load session metadata: %w", err)
	}

	result := &CleanupResult{}

	for _, metadata := range all {
		exists, err := m.HasSession(metadata.SessionName)
		if err != nil {
			continue
		}

		if exists {
			switch {
			case metadata.Status == StatusRunning && isIdle(metadata, time.Now()):
				metadata.Status = StatusIdle
				if err := m.metadataStore.Save(metadata); err == nil {
					result.Idle = append(result.Idle, metadata.SessionName)
				}
			case metadata.Status != StatusRunning && metadata.Status != StatusIdle:
				metadata.Status = StatusRunning
				if err := m.metadataStore.Save(metadata); err == nil {
					result.Reconciled = append(result.Reconciled, metadata.SessionName)
				}
			}

			continue
		}

		if checkoutGone(metadata.CheckoutPath) {
			if err := m.metadataStore.Delete(metadata.SessionName); err == nil {
				result.Removed = append(result.Removed, metadata.SessionName)
			}

			continue
		}

		if metadata.Status == StatusRunning || metadata.Status == StatusIdle {
			metadata.Status = StatusStopped
			if err := m.metadataStore.Save(metadata); err == nil {
				result.Reconciled = append(result.Reconciled, metadata.SessionName)
			}
		}
	}

	return result, nil
}

// isIdle reports whether a running session has gone too long without a
// redeploy
func isIdle(metadata *Metadata, now time.Time) bool {
	if metadata.LastDeployedAt.IsZero() {
		return false
	}

	return now.Sub(metadata.LastDeployedAt) > idleThreshold
}

// checkoutGone reports whether a checkout directory no longer exists
func checkoutGone(path string) bool {
	if path == "" {
		return true
	}

	_, err := os.Stat(path)

	return os.IsNotExist(err)
}

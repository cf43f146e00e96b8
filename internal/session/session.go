// Package session manages the terminal multiplexer sessions deployments
// run in, and the metadata recorded about each deployment.
package session

import (
	"context"
	"fmt"
	"os"
	"os/exec"
	"strings"
)

// Type represents the type of terminal multiplexer
type Type string

// Terminal multiplexer types
const (
	TypeTmux   Type = "tmux"
	TypeScreen Type = "screen"
	TypeNone   Type = "none"
)

// SessionManager handles multiplexer sessions and their deployment metadata
type SessionManager struct {
	sessionType   Type
	metadataStore MetadataStore
}

// NewManager creates a new session manager. It detects which multiplexer is
// available (tmux preferred, screen fallback) and opens the metadata store.
func NewManager() (*SessionManager, error) {
	sessionDir, err := GetSessionDir()
	if err != nil {
		return nil, err
	}

	store, err := NewMetadataStore(sessionDir)
	if err != nil {
		return nil, err
	}

	return &SessionManager{
		sessionType:   detectMultiplexer(),
		metadataStore: store,
	}, nil
}

// detectMultiplexer picks the available multiplexer type
func detectMultiplexer() Type {
	if commandExists("tmux") {
		return TypeTmux
	}

	if commandExists("screen") {
		return TypeScreen
	}

	return TypeNone
}

// SessionType returns the multiplexer type this manager uses
func (m *SessionManager) SessionType() Type {
	return m.sessionType
}

// IsAvailable returns true if a terminal multiplexer is available
func (m *SessionManager) IsAvailable() bool {
	return m.sessionType != TypeNone
}

// CreateSession creates a new detached session running the specified command
func (m *SessionManager) CreateSession(name, workingDir string, command []string) error {
	if !m.IsAvailable() {
		return fmt.Errorf("no terminal multiplexer available (install tmux or screen)")
	}

	switch m.sessionType {
	case TypeTmux:
		return m.createTmuxSession(name, workingDir, command)
	case TypeScreen:
		return m.createScreenSession(name, workingDir, command)
	default:
		return fmt.Errorf("unsupported session type: %s", m.sessionType)
	}
}

// createTmuxSession creates a detached tmux session
func (m *SessionManager) createTmuxSession(name, workingDir string, command []string) error {
	args := []string{
		"new-session",
		"-d",       // Detached
		"-s", name, // Session name
		"-c", workingDir, // Working directory
	}
	args = append(args, command...)

	cmd := exec.CommandContext(context.Background(), "tmux", args...)
	if output, err := cmd.CombinedOutput(); err != nil {
		return fmt.Errorf("failed to create tmux session: %w: %s", err, strings.TrimSpace(string(output)))
	}

	return nil
}

// createScreenSession creates a detached screen session
func (m *SessionManager) createScreenSession(name, workingDir string, command []string) error {
	// screen doesn't support -c flag for working directory,
	// so we wrap the command in a shell that changes directory first
	shellCmd := fmt.Sprintf("cd %s && %s",
		escapeShellArg(workingDir),
		strings.Join(escapeShellArgs(command), " "))

	cmd := exec.CommandContext(context.Background(), "screen", "-dmS", name, "bash", "-c", shellCmd)
	if err := cmd.Run(); err != nil {
		return fmt.Errorf("failed to create screen session: %w", err)
	}

	return nil
}

// HasSession checks if a session with the given name exists
func (m *SessionManager) HasSession(name string) (bool, error) {
	if !m.IsAvailable() {
		return false, nil
	}

	switch m.sessionType {
	case TypeTmux:
		cmd := exec.CommandContext(context.Background(), "tmux", "has-session", "-t", name)
		return cmd.Run() == nil, nil
	case TypeScreen:
		// List sessions and check if name exists
		cmd := exec.CommandContext(context.Background(), "screen", "-ls")
		output, err := cmd.Output()

		if err != nil {
			// screen -ls returns exit code 1 if no sessions exist
			if len(output) > 0 {
				return strings.Contains(string(output), name), nil
			}

			return false, nil
		}

		return strings.Contains(string(output), name), nil
	default:
		return false, nil
	}
}

// ListSessions returns all active sessions
func (m *SessionManager) ListSessions() ([]string, error) {
	if !m.IsAvailable() {
		return []string{}, nil
	}

	switch m.sessionType {
	case TypeTmux:
		return m.listTmuxSessions()
	case TypeScreen:
		return m.listScreenSessions()
	default:
		return []string{}, nil
	}
}

// listTmuxSessions lists all tmux sessions
func (m *SessionManager) listTmuxSessions() ([]string, error) {
	cmd := exec.CommandContext(context.Background(), "tmux", "list-sessions", "-F", "#{session_name}")
	output, err := cmd.Output()

	if err != nil {
		// No sessions exist
		return []string{}, nil
	}

	sessions := strings.Split(strings.TrimSpace(string(output)), "\n")

	return sessions, nil
}

// listScreenSessions lists all screen sessions
func (m *SessionManager) listScreenSessions() ([]string, error) {
	cmd := exec.CommandContext(context.Background(), "screen", "-ls")
	output, err := cmd.Output()

	if err != nil && len(output) == 0 {
		// No sessions exist
		return []string{}, nil
	}

	// Parse screen -ls output
	// Format: "12345.session-name	(Detached)"
	var sessions []string
	lines := strings.Split(string(output), "\n")

	for _, line := range lines {
		line = strings.TrimSpace(line)
		if strings.Contains(line, "(Detached)") || strings.Contains(line, "(Attached)") {
			// Extract session name
			parts := strings.Fields(line)
			if len(parts) > 0 {
				// Remove PID prefix (12345.session-name -> session-name)
				sessionFull := parts[0]
				if idx := strings.Index(sessionFull, "."); idx != -1 {
					sessions = append(sessions, sessionFull[idx+1:])
				}
			}
		}
	}

	return sessions, nil
}

// KillSession terminates a session. Killing a session that does not exist
// is not an error: redeploys start by tearing down whatever may be running.
func (m *SessionManager) KillSession(name string) error {
	if !m.IsAvailable() {
		return fmt.Errorf("no terminal multiplexer available")
	}

	exists, err := m.HasSession(name)
	if err != nil {
		return fmt.Errorf("failed to check session: %w", err)
	}

	if !exists {
		return nil
	}

	switch m.sessionType {
	case TypeTmux:
		cmd := exec.CommandContext(context.Background(), "tmux", "kill-session", "-t", name)
		return cmd.Run()
	case TypeScreen:
		// screen requires the full session name with PID prefix
		// We need to find it first
		cmd := exec.CommandContext(context.Background(), "screen", "-ls")
		output, err := cmd.Output()

		if err != nil && len(output) == 0 {
			return nil
		}

		lines := strings.Split(string(output), "\n")

		for _, line := range lines {
			if strings.Contains(line, name) {
				parts := strings.Fields(line)
				if len(parts) > 0 {
					sessionFull := parts[0]
					killCmd := exec.CommandContext(context.Background(), "screen", "-S", sessionFull, "-X", "quit")

					return killCmd.Run()
				}
			}
		}

		return nil
	default:
		return fmt.Errorf("unsupported session type: %s", m.sessionType)
	}
}

// AttachToSession attaches the current terminal to the session
func (m *SessionManager) AttachToSession(name string) error {
	if !m.IsAvailable() {
		return fmt.Errorf("no terminal multiplexer available")
	}

	// Check if session exists
	exists, err := m.HasSession(name)
	if err != nil {
		return fmt.Errorf("failed to check session: %w", err)
	}

	if !exists {
		return fmt.Errorf("session not found: %s", name)
	}

	var cmd *exec.Cmd

	switch m.sessionType {
	case TypeTmux:
		cmd = exec.CommandContext(context.Background(), "tmux", "attach-session", "-t", name)
	case TypeScreen:
		cmd = exec.CommandContext(context.Background(), "screen", "-r", name)
	default:
		return fmt.Errorf("unsupported session type: %s", m.sessionType)
	}

	cmd.Stdin = os.Stdin
	cmd.Stdout = os.Stdout
	cmd.Stderr = os.Stderr

	if err := cmd.Run(); err != nil {
		return fmt.Errorf("failed to attach to session %s: %w", name, err)
	}

	return nil
}

// CapturePane returns the visible output of a session's active pane.
// Only tmux supports capture; screen sessions return an error.
func (m *SessionManager) CapturePane(name string, lines int) (string, error) {
	if m.sessionType != TypeTmux {
		return "", fmt.Errorf("capturing output requires tmux")
	}

	exists, err := m.HasSession(name)
	if err != nil {
		return "", fmt.Errorf("failed to check session: %w", err)
	}

	if !exists {
		return "", fmt.Errorf("session not found: %s", name)
	}

	args := []string{"capture-pane", "-p", "-t", name}
	if lines > 0 {
		args = append(args, "-S", fmt.Sprintf("-%d", lines))
	}

	cmd := exec.CommandContext(context.Background(), "tmux", args...)

	output, err := cmd.Output()
	if err != nil {
		return "", fmt.Errorf("failed to capture pane: %w", err)
	}

	return string(output), nil
}

// commandExists checks if a command is available in PATH
func commandExists(cmd string) bool {
	_, err := exec.LookPath(cmd)
	return err == nil
}

// escapeShellArg escapes a single shell argument
func escapeShellArg(arg string) string {
	// Simple escaping: wrap in single quotes and escape existing single quotes
	return "'" + strings.ReplaceAll(arg, "'", "'\\''") + "'"
}

// escapeShellArgs escapes multiple shell arguments
func escapeShellArgs(args []string) []string {
	escaped := make([]string, len(args))

	for i, arg := range args {
		escaped[i] = escapeShellArg(arg)
	}

	return escaped
}

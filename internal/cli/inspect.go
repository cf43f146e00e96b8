package cli

import (
	"fmt"
	"os"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/crushbase/redeploy/internal/session"
	"github.com/crushbase/redeploy/internal/ui"
)

// RunStatus shows what is deployed and whether it is still running
func (a *App) RunStatus() error {
	cfg, err := a.loadConfig()
	if err != nil {
		return err
	}

	manager, err := a.newSessionManager()
	if err != nil {
		return err
	}

	metadata, err := manager.LoadSessionMetadata(cfg.App.Session)
	if err != nil {
		// Nothing recorded; report what the multiplexer says
		exists, hasErr := manager.HasSession(cfg.App.Session)
		if hasErr != nil {
			return hasErr
		}

		if exists {
			fmt.Fprintf(os.Stdout, "Session %s is running, but no deployment is recorded for it.\n", cfg.App.Session) //nolint:errcheck
			fmt.Fprintln(os.Stdout, "Run `redeploy deploy` to take it over.")                                          //nolint:errcheck
		} else {
			fmt.Fprintf(os.Stdout, "%s has never been deployed here. Run `redeploy deploy`.\n", cfg.App.Name) //nolint:errcheck
		}

		return nil
	}

	status, err := manager.SyncSessionStatus(cfg.App.Session)
	if err != nil {
		a.Logger.Warn("could not reconcile session status", zap.Error(err))

		status = metadata.Status
	}

	fmt.Fprintln(os.Stdout, ui.RenderSessionStatus(metadata, status)) //nolint:errcheck

	return nil
}

// sessionKiller is the slice of manager behavior killSession needs
type sessionKiller interface {
	KillSession(name string) error
	UpdateSessionStatus(sessionName string, status session.Status) error
}

// RunSessions lists multiplexer sessions, marking the ones this tool
// deployed. With prune set, stale metadata is swept first; with kill set,
// the named session is stopped instead of listing.
func (a *App) RunSessions(prune bool, kill string) error {
	manager, err := a.newSessionManager()
	if err != nil {
		return err
	}

	if kill != "" {
		return a.killSession(manager, kill)
	}

	if prune {
		result, err := manager.CleanupOrphanedMetadata()
		if err != nil {
			return err
		}

		for _, name := range result.Reconciled {
			fmt.Fprintf(os.Stdout, "reconciled %s\n", name) //nolint:errcheck
		}

		for _, name := range result.Removed {
			fmt.Fprintf(os.Stdout, "removed stale record for %s\n", name) //nolint:errcheck
		}
	}

	if !manager.IsAvailable() {
		return fmt.Errorf("no terminal multiplexer available (install tmux or screen)")
	}

	names, err := manager.ListSessions()
	if err != nil {
		return err
	}

	tracked := map[string]*session.Metadata{}

	if all, err := manager.ListSessionMetadata(); err == nil {
		for _, metadata := range all {
			tracked[metadata.SessionName] = metadata
		}
	}

	if len(names) == 0 {
		fmt.Fprintln(os.Stdout, "No active sessions.") //nolint:errcheck

		return nil
	}

	for _, name := range names {
		line := name

		if metadata, ok := tracked[name]; ok {
			line += fmt.Sprintf("  %s (%s)", metadata.AppName, metadata.Entrypoint)
		}

		fmt.Fprintln(os.Stdout, line) //nolint:errcheck
	}

	return nil
}

// killSession terminates a listed session and downgrades its deployment
// record. A session this tool never deployed has no record to update.
func (a *App) killSession(manager sessionKiller, name string) error {
	if err := manager.KillSession(name); err != nil {
		return err
	}

	if err := manager.UpdateSessionStatus(name, session.StatusStopped); err != nil {
		a.Logger.Debug("no session metadata to update", zap.Error(err))
	}

	fmt.Fprintf(os.Stdout, "killed %s\n", name) //nolint:errcheck

	return nil
}

// RunLogs prints the recent output of the deployed session
func (a *App) RunLogs(lines int) error {
	cfg, err := a.loadConfig()
	if err != nil {
		return err
	}

	manager, err := a.newSessionManager()
	if err != nil {
		return err
	}

	output, err := manager.CapturePane(cfg.App.Session, lines)
	if err != nil {
		return err
	}

	fmt.Fprint(os.Stdout, strings.TrimRight(output, "\n")+"\n") //nolint:errcheck

	return nil
}

// RunAttach attaches the terminal to the deployed session
func (a *App) RunAttach() error {
	cfg, err := a.loadConfig()
	if err != nil {
		return err
	}

	manager, err := a.newSessionManager()
	if err != nil {
		return err
	}

	return manager.AttachToSession(cfg.App.Session)
}

// RunHistory shows past deployments: one report in full when id is set,
// otherwise a summary of the most recent runs.
func (a *App) RunHistory(id string, limit int) error {
	history := a.openHistory()
	if history == nil {
		return fmt.Errorf("deployment history is unavailable")
	}

	if id != "" {
		report, err := history.Load(id)
		if err != nil {
			return err
		}

		fmt.Fprintln(os.Stdout, ui.RenderReport(report)) //nolint:errcheck

		return nil
	}

	reports, err := history.List(limit)
	if err != nil {
		return err
	}

	if len(reports) == 0 {
		fmt.Fprintln(os.Stdout, "No deployments recorded yet.") //nolint:errcheck

		return nil
	}

	for _, report := range reports {
		verdict := "ok"
		if !report.Success {
			verdict = "FAILED"
		}

		if report.DryRun {
			verdict += " (dry run)"
		}

		fmt.Fprintf(os.Stdout, "%s  %s  %-8s %s\n", //nolint:errcheck
			report.ID,
			report.StartedAt.Format(time.RFC3339),
			verdict,
			report.App)
	}

	return nil
}

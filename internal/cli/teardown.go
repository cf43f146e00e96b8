package cli

import (
	"fmt"
	"os"

	tea "github.com/charmbracelet/bubbletea"
	"go.uber.org/zap"

	"github.com/crushbase/redeploy/internal/session"
	"github.com/crushbase/redeploy/internal/ui"
)

// RunTeardown stops the deployed session. With purge set it also deletes
// the checkout and forgets the session metadata.
func (a *App) RunTeardown(purge bool) error {
	cfg, err := a.loadConfig()
	if err != nil {
		return err
	}

	manager, err := a.newSessionManager()
	if err != nil {
		return err
	}

	if a.interactive() {
		prompt := fmt.Sprintf("Stop session %q?", cfg.App.Session)
		if purge {
			prompt = fmt.Sprintf("Stop session %q and delete %s?", cfg.App.Session, cfg.Source.Checkout)
		}

		confirmed, err := a.confirm(prompt)
		if err != nil {
			return err
		}

		if !confirmed {
			fmt.Fprintln(os.Stdout, "Canceled.") //nolint:errcheck

			return nil
		}
	}

	if err := manager.KillSession(cfg.App.Session); err != nil {
		return fmt.Errorf("failed to stop session: %w", err)
	}

	fmt.Fprintf(os.Stdout, "Stopped session %s.\n", cfg.App.Session) //nolint:errcheck

	if !purge {
		if err := manager.UpdateSessionStatus(cfg.App.Session, session.StatusStopped); err != nil {
			a.Logger.Debug("no session metadata to update", zap.Error(err))
		}

		return nil
	}

	source := a.newSource(cfg)

	if source.CheckoutExists() {
		matches, err := source.MatchesRemote()
		if err != nil {
			return fmt.Errorf("could not verify checkout origin: %w", err)
		}

		if !matches {
			return fmt.Errorf("refusing to delete %s: it does not track %s", cfg.Source.Checkout, cfg.Source.Remote)
		}

		if err := source.RemoveCheckout(); err != nil {
			return err
		}

		fmt.Fprintf(os.Stdout, "Removed %s.\n", cfg.Source.Checkout) //nolint:errcheck
	}

	if err := manager.DeleteSessionMetadata(cfg.App.Session); err != nil {
		a.Logger.Debug("no session metadata to delete", zap.Error(err))
	}

	return nil
}

// confirm shows a yes/no dialog and returns the choice
func (a *App) confirm(prompt string) (bool, error) {
	model := ui.NewConfirmModel(prompt)

	finalModel, err := tea.NewProgram(model).Run()
	if err != nil {
		return false, fmt.Errorf("confirmation dialog failed: %w", err)
	}

	confirm, ok := finalModel.(ui.ConfirmModel)
	if !ok {
		return false, fmt.Errorf("unexpected dialog model")
	}

	return confirm.GetChoice(), nil
}

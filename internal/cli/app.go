// Package cli implements the redeploy commands on top of the deploy
// pipeline, the session manager and the terminal UI.
package cli

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/mattn/go-isatty"
	"go.uber.org/zap"

	"github.com/crushbase/redeploy/internal/config"
	"github.com/crushbase/redeploy/internal/deploy"
	"github.com/crushbase/redeploy/internal/git"
	"github.com/crushbase/redeploy/internal/session"
)

// App carries the state shared by every command
type App struct {
	Logger *zap.Logger

	// ConfigPath overrides manifest discovery when set
	ConfigPath string

	// NonInteractive disables prompts, menus and editors
	NonInteractive bool

	// DryRun makes deployments describe their steps without executing
	DryRun bool
}

// interactive reports whether prompting the user is acceptable
func (a *App) interactive() bool {
	return !a.NonInteractive && isatty.IsTerminal(os.Stdout.Fd())
}

// loadConfig reads the manifest and resolves the checkout to an absolute
// path so every component agrees on where the application lives.
func (a *App) loadConfig() (*config.Config, error) {
	cfg, err := config.Load(a.ConfigPath)
	if err != nil {
		return nil, err
	}

	if !filepath.IsAbs(cfg.Source.Checkout) {
		abs, err := filepath.Abs(cfg.Source.Checkout)
		if err != nil {
			return nil, fmt.Errorf("failed to resolve checkout path: %w", err)
		}

		cfg.Source.Checkout = abs
	}

	return cfg, nil
}

// newSource builds the git source for a config
func (a *App) newSource(cfg *config.Config) *git.Source {
	return git.NewSource(cfg.Source.Remote, cfg.Source.Checkout, cfg.Source.Branch, cfg.Source.Depth)
}

// newSessionManager opens the session manager and its metadata store
func (a *App) newSessionManager() (*session.SessionManager, error) {
	manager, err := session.NewManager()
	if err != nil {
		return nil, fmt.Errorf("failed to open session manager: %w", err)
	}

	return manager, nil
}

// openHistory opens the deployment history store. History is best-effort;
// a nil store disables it.
func (a *App) openHistory() *deploy.HistoryStore {
	dir, err := deploy.DefaultHistoryDir()
	if err != nil {
		a.Logger.Warn("deployment history disabled", zap.Error(err))

		return nil
	}

	store, err := deploy.NewHistoryStore(dir)
	if err != nil {
		a.Logger.Warn("deployment history disabled", zap.Error(err))

		return nil
	}

	return store
}

package cli

import (
	"context"
	"fmt"
	"os"

	"go.uber.org/zap"

	"github.com/crushbase/redeploy/internal/config"
	"github.com/crushbase/redeploy/internal/watch"
)

// RunWatch redeploys whenever the manifest changes, until interrupted
func (a *App) RunWatch(ctx context.Context) error {
	cfg, err := a.loadConfig()
	if err != nil {
		return err
	}

	manifest := a.ConfigPath
	if manifest == "" {
		manifest = config.FindManifest()
	}

	if manifest == "" {
		return fmt.Errorf("watch needs a manifest file; run `redeploy init` first")
	}

	// Editors cannot be opened from the watch loop
	watchApp := &App{
		Logger:         a.Logger,
		ConfigPath:     a.ConfigPath,
		NonInteractive: true,
		DryRun:         a.DryRun,
	}

	watcher := &watch.Watcher{
		Path:     manifest,
		Debounce: cfg.Watch.Debounce,
		OnChange: func(ctx context.Context) error {
			a.Logger.Info("manifest changed, redeploying", zap.String("manifest", manifest))

			return watchApp.RunDeploy(ctx)
		},
		OnError: func(err error) {
			a.Logger.Error("redeploy failed", zap.Error(err))
		},
	}

	fmt.Fprintf(os.Stdout, "Watching %s; every change redeploys %s. Ctrl+C to stop.\n", manifest, cfg.App.Name) //nolint:errcheck

	if err := watcher.Run(ctx); err != nil && err != context.Canceled {
		return err
	}

	return nil
}

// RunInit writes a starter manifest into the working directory
func (a *App) RunInit() error {
	if err := config.WriteStarter(config.DefaultManifestName); err != nil {
		return err
	}

	fmt.Fprintf(os.Stdout, "Wrote %s. Edit it, then run `redeploy deploy`.\n", config.DefaultManifestName) //nolint:errcheck

	return nil
}

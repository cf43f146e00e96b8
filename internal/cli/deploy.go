package cli

import (
	"context"
	"fmt"
	"os"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/crushbase/redeploy/internal/config"
	"github.com/crushbase/redeploy/internal/deploy"
	"github.com/crushbase/redeploy/internal/envfile"
	"github.com/crushbase/redeploy/internal/perf"
	"github.com/crushbase/redeploy/internal/session"
	"github.com/crushbase/redeploy/internal/terminal"
	"github.com/crushbase/redeploy/internal/ui"
)

// RunDeploy tears down the running deployment and brings up a fresh one
func (a *App) RunDeploy(ctx context.Context) error {
	end := perf.StartSpan("deploy")
	defer end()

	cfg, err := a.loadConfig()
	if err != nil {
		return err
	}

	manager, err := a.newSessionManager()
	if err != nil {
		return err
	}

	terminal.SetTitle("redeploy: " + cfg.App.Name)

	var (
		report   *deploy.Report
		pipeline *deploy.Pipeline
	)

	if a.interactive() {
		report, pipeline, err = a.deployWithProgressUI(ctx, cfg, manager)
	} else {
		report, pipeline, err = a.deployWithLogger(ctx, cfg, manager)
	}

	if report != nil {
		a.finishDeploy(cfg, manager, report, pipeline)
	}

	return err
}

// deployWithLogger runs the pipeline with plain log output
func (a *App) deployWithLogger(ctx context.Context, cfg *config.Config, manager *session.SessionManager) (*deploy.Report, *deploy.Pipeline, error) {
	pipeline, err := deploy.New(deploy.Options{
		Config:   cfg,
		Source:   a.newSource(cfg),
		Sessions: manager,
		DryRun:   a.DryRun,
		OnProgress: func(step, message string) {
			a.Logger.Info(message, zap.String("step", step))
		},
		OnWarning: func(step, message string) {
			a.Logger.Warn(message, zap.String("step", step))
		},
		OnStepStart: func(step string) {
			a.Logger.Debug("step started", zap.String("step", step))
		},
		OnStepDone: func(step string, status deploy.StepStatus, errMsg string) {
			if status == deploy.StepFailed {
				a.Logger.Error("step failed", zap.String("step", step), zap.String("error", errMsg))

				return
			}

			a.Logger.Debug("step finished", zap.String("step", step), zap.String("status", string(status)))
		},
	})
	if err != nil {
		return nil, nil, err
	}

	report, runErr := pipeline.Run(ctx)

	return report, pipeline, runErr
}

// deployWithProgressUI runs the pipeline behind a Bubbletea progress view.
// The env file editor takes over the terminal while the view is suspended.
func (a *App) deployWithProgressUI(ctx context.Context, cfg *config.Config, manager *session.SessionManager) (*deploy.Report, *deploy.Pipeline, error) {
	// Quitting the view (ctrl+c) must also stop the pipeline, or the run
	// would keep going with nowhere to report to.
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	var program *tea.Program

	pipeline, err := deploy.New(deploy.Options{
		Config:   cfg,
		Source:   a.newSource(cfg),
		Sessions: manager,
		DryRun:   a.DryRun,
		OnStepStart: func(step string) {
			program.Send(ui.StepStartedMsg{Name: step})
		},
		OnStepDone: func(step string, status deploy.StepStatus, errMsg string) {
			msg := ui.StepFinishedMsg{Name: step}

			switch status {
			case deploy.StepWarned:
				msg.Warning = errMsg
			case deploy.StepFailed:
				msg.Err = fmt.Errorf("%s", errMsg)
			}

			program.Send(msg)
		},
		ResolveEnv: func(path string, inspection *envfile.Inspection) error {
			if err := program.ReleaseTerminal(); err != nil {
				return fmt.Errorf("failed to suspend progress view: %w", err)
			}

			fmt.Fprintf(os.Stdout, "\n%s needs attention (%s); opening editor...\n", path, inspection.Problems()) //nolint:errcheck

			editErr := envfile.OpenInEditor(path)

			if err := program.RestoreTerminal(); err != nil {
				return fmt.Errorf("failed to resume progress view: %w", err)
			}

			return editErr
		},
	})
	if err != nil {
		return nil, nil, err
	}

	model := ui.NewProgressModel(pipeline.StepNames())
	program = tea.NewProgram(model)

	type outcome struct {
		report *deploy.Report
		err    error
	}

	results := make(chan outcome, 1)

	go func() {
		report, runErr := pipeline.Run(ctx)
		results <- outcome{report: report, err: runErr}
		program.Send(ui.PipelineDoneMsg{Err: runErr})
	}()

	_, uiErr := program.Run()

	cancel()
	result := <-results

	if uiErr != nil {
		return result.report, pipeline, fmt.Errorf("progress view failed: %w", uiErr)
	}

	return result.report, pipeline, result.err
}

// finishDeploy persists the run report and, on success, the session metadata
func (a *App) finishDeploy(cfg *config.Config, manager *session.SessionManager, report *deploy.Report, pipeline *deploy.Pipeline) {
	if history := a.openHistory(); history != nil {
		if err := history.Save(report); err != nil {
			a.Logger.Warn("failed to record deployment history", zap.Error(err))
		}
	}

	if report.Success && !report.DryRun {
		metadata := &session.Metadata{
			SessionName:    cfg.App.Session,
			SessionID:      uuid.NewString(),
			AppName:        cfg.App.Name,
			CheckoutPath:   cfg.Source.Checkout,
			Remote:         cfg.Source.Remote,
			Commit:         report.Commit,
			Entrypoint:     cfg.Runtime.Module,
			DeploymentID:   report.ID,
			Status:         session.StatusRunning,
			LastDeployedAt: time.Now(),
		}

		if pipeline != nil {
			if detection := pipeline.Detection(); detection != nil {
				metadata.Dependencies = &session.DependenciesInfo{
					ProjectType:    string(detection.ProjectType),
					PackageManager: string(detection.PackageManager),
					InstalledAt:    time.Now(),
				}
			}
		}

		if err := manager.SaveSessionMetadata(metadata); err != nil {
			a.Logger.Warn("failed to record session metadata", zap.Error(err))
		}
	} else if !report.Success {
		// A failed run may have killed the old session already
		if err := manager.UpdateSessionStatus(cfg.App.Session, session.StatusFailed); err != nil {
			a.Logger.Debug("no session metadata to update", zap.Error(err))
		}
	}

	fmt.Fprintln(os.Stdout, "\n"+ui.RenderReport(report)) //nolint:errcheck
}

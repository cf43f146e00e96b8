// Package deploy runs the redeployment pipeline: tear down the running
// session, replace the checkout, prepare its environment, and relaunch the
// application under the terminal multiplexer.
package deploy

import (
	"context"
	"fmt"
	"path/filepath"
	"strings"
	"time"

	"github.com/crushbase/redeploy/internal/config"
	"github.com/crushbase/redeploy/internal/envfile"
	"github.com/crushbase/redeploy/internal/environment"
	"github.com/crushbase/redeploy/internal/hooks"
)

// SourceOperations is the slice of git behavior the pipeline needs
type SourceOperations interface {
	Clone() error
	RemoveCheckout() error
	CheckoutExists() bool
	IsCheckout() bool
	MatchesRemote() (bool, error)
	Head() (string, error)
}

// SessionOperations is the slice of multiplexer behavior the pipeline needs
type SessionOperations interface {
	IsAvailable() bool
	HasSession(name string) (bool, error)
	KillSession(name string) error
	CreateSession(name, workingDir string, command []string) error
}

// SetupFunc prepares the checkout's runtime environment
type SetupFunc func(checkoutPath string, opts *environment.SetupOptions) (*environment.SetupResult, error)

// HookFunc runs a named hook script inside the checkout
type HookFunc func(ctx context.Context, name string, env map[string]string) error

// Options wires the pipeline's dependencies
type Options struct {
	Config   *config.Config
	Source   SourceOperations
	Sessions SessionOperations

	// Setup defaults to environment.Setup
	Setup SetupFunc

	// RunHook defaults to a hooks.Runner in the checkout. Set to nil
	// explicitly via Config.Hooks.Enabled=false to skip hooks.
	RunHook HookFunc

	// ResolveEnv is called when the env file is incomplete, typically to
	// open an editor. Nil means incomplete env files fail the deploy.
	ResolveEnv func(path string, inspection *envfile.Inspection) error

	// DryRun describes each step without executing it
	DryRun bool

	Retry Policy

	OnProgress func(step, message string)
	OnWarning  func(step, message string)

	// OnStepStart and OnStepDone report step boundaries, for progress UIs
	OnStepStart func(step string)
	OnStepDone  func(step string, status StepStatus, errMsg string)
}

// Pipeline executes a full redeployment
type Pipeline struct {
	cfg      *config.Config
	source   SourceOperations
	sessions SessionOperations
	setup    SetupFunc
	runHook  HookFunc

	resolveEnv func(path string, inspection *envfile.Inspection) error
	dryRun     bool
	retry      Policy

	onProgress  func(step, message string)
	onWarning   func(step, message string)
	onStepStart func(step string)
	onStepDone  func(step string, status StepStatus, errMsg string)

	// set by the install step, consumed by launch and metadata recording
	venvPython string
	detection  *environment.DetectionResult

	// current run ID, exposed to hooks
	runID string
}

// step is one stage of the pipeline. Best-effort steps log their failure
// and let the run continue; the rest abort it.
type step struct {
	name       string
	describe   string
	bestEffort bool
	run        func(ctx context.Context) error
}

// New builds a pipeline from options. Config, Source and Sessions are
// required; everything else has defaults.
func New(opts Options) (*Pipeline, error) {
	if opts.Config == nil {
		return nil, fmt.Errorf("pipeline requires a config")
	}

	if opts.Source == nil {
		return nil, fmt.Errorf("pipeline requires a source")
	}

	if opts.Sessions == nil {
		return nil, fmt.Errorf("pipeline requires session operations")
	}

	p := &Pipeline{
		cfg:        opts.Config,
		source:     opts.Source,
		sessions:   opts.Sessions,
		setup:      opts.Setup,
		runHook:    opts.RunHook,
		resolveEnv: opts.ResolveEnv,
		dryRun:      opts.DryRun,
		retry:       opts.Retry,
		onProgress:  opts.OnProgress,
		onWarning:   opts.OnWarning,
		onStepStart: opts.OnStepStart,
		onStepDone:  opts.OnStepDone,
	}

	if p.setup == nil {
		p.setup = environment.Setup
	}

	if p.runHook == nil && opts.Config.Hooks.Enabled {
		runner := hooks.NewRunner(opts.Config.Source.Checkout)
		p.runHook = runner.Run
	}

	if p.retry.Attempts == 0 {
		p.retry = Policy{
			Attempts:     opts.Config.Retry.Attempts,
			InitialDelay: opts.Config.Retry.InitialDelay,
			Backoff:      opts.Config.Retry.Backoff,
		}
	}

	if p.onProgress == nil {
		p.onProgress = func(string, string) {}
	}

	if p.onWarning == nil {
		p.onWarning = func(string, string) {}
	}

	if p.onStepStart == nil {
		p.onStepStart = func(string) {}
	}

	if p.onStepDone == nil {
		p.onStepDone = func(string, StepStatus, string) {}
	}

	return p, nil
}

// StepNames returns the pipeline's stages in execution order
func (p *Pipeline) StepNames() []string {
	steps := p.steps()
	names := make([]string, len(steps))

	for i, s := range steps {
		names[i] = s.name
	}

	return names
}

// Run executes the pipeline and always returns a report, even on failure.
func (p *Pipeline) Run(ctx context.Context) (*Report, error) {
	p.runID = NewRunID()

	report := &Report{
		ID:        p.runID,
		App:       p.cfg.App.Name,
		Session:   p.cfg.App.Session,
		DryRun:    p.dryRun,
		StartedAt: time.Now(),
	}

	var runErr error

	for _, s := range p.steps() {
		if runErr != nil {
			report.Steps = append(report.Steps, StepReport{Name: s.name, Status: StepSkipped})
			p.onStepDone(s.name, StepSkipped, "")

			continue
		}

		if p.dryRun {
			p.onProgress(s.name, "would "+s.describe)
			report.Steps = append(report.Steps, StepReport{Name: s.name, Status: StepSkipped})
			p.onStepDone(s.name, StepSkipped, "")

			continue
		}

		p.onStepStart(s.name)

		start := time.Now()
		err := s.run(ctx)
		elapsed := time.Since(start)

		switch {
		case err == nil:
			report.Steps = append(report.Steps, StepReport{Name: s.name, Status: StepOK, Duration: elapsed})
			p.onStepDone(s.name, StepOK, "")
		case s.bestEffort:
			p.onWarning(s.name, err.Error())
			report.Steps = append(report.Steps, StepReport{
				Name: s.name, Status: StepWarned, Duration: elapsed, Error: err.Error(),
			})
			p.onStepDone(s.name, StepWarned, err.Error())
		default:
			report.Steps = append(report.Steps, StepReport{
				Name: s.name, Status: StepFailed, Duration: elapsed, Error: err.Error(),
			})
			p.onStepDone(s.name, StepFailed, err.Error())

			runErr = fmt.Errorf("%s: %w", s.name, err)
		}
	}

	report.FinishedAt = time.Now()
	report.Success = runErr == nil

	if runErr != nil {
		report.Error = runErr.Error()
	}

	if !p.dryRun && runErr == nil {
		if head, err := p.source.Head(); err == nil {
			report.Commit = head
		}
	}

	return report, runErr
}

// steps returns the pipeline stages in execution order
func (p *Pipeline) steps() []step {
	return []step{
		{
			name:       "stop-session",
			describe:   fmt.Sprintf("kill multiplexer session %q", p.cfg.App.Session),
			bestEffort: true,
			run:        p.stopSession,
		},
		{
			name:       "remove-checkout",
			describe:   fmt.Sprintf("delete checkout %q", p.cfg.Source.Checkout),
			bestEffort: true,
			run:        p.removeCheckout,
		},
		{
			name:     "clone",
			describe: fmt.Sprintf("clone %s into %q", p.cfg.Source.Remote, p.cfg.Source.Checkout),
			run:      p.clone,
		},
		{
			name:     "configure-env",
			describe: fmt.Sprintf("verify %s against required keys", p.envPath()),
			run:      p.configureEnv,
		},
		{
			name:     "install-dependencies",
			describe: "create the virtual environment and install dependencies",
			run:      p.installDependencies,
		},
		{
			name:     "pre-deploy-hook",
			describe: "run the pre-deploy hook if present",
			run:      p.preDeployHook,
		},
		{
			name:     "launch",
			describe: fmt.Sprintf("start %q in session %q", strings.Join(p.cfg.LaunchCommand(""), " "), p.cfg.App.Session),
			run:      p.launch,
		},
		{
			name:       "post-deploy-hook",
			describe:   "run the post-deploy hook if present",
			bestEffort: true,
			run:        p.postDeployHook,
		},
	}
}

// stopSession kills the previous deployment's session if one is running
func (p *Pipeline) stopSession(ctx context.Context) error {
	if !p.sessions.IsAvailable() {
		p.onWarning("stop-session", "no terminal multiplexer available")

		return nil
	}

	p.onProgress("stop-session", fmt.Sprintf("Stopping session %s", p.cfg.App.Session))

	return p.sessions.KillSession(p.cfg.App.Session)
}

// removeCheckout deletes the previous checkout. A checkout tracking a
// different remote is never deleted; the error surfaces as a warning here
// and the clone step then fails on the occupied directory. A directory
// that is not a git checkout at all is treated as leftovers and removed,
// so a wedged clone target does not block every later run.
func (p *Pipeline) removeCheckout(ctx context.Context) error {
	if !p.source.CheckoutExists() {
		return nil
	}

	if p.source.IsCheckout() {
		matches, err := p.source.MatchesRemote()
		if err != nil {
			p.onWarning("remove-checkout", fmt.Sprintf("could not verify checkout origin: %v", err))
		}

		if err == nil && !matches {
			return fmt.Errorf("refusing to delete %s: it does not track %s", p.cfg.Source.Checkout, p.cfg.Source.Remote)
		}
	}

	p.onProgress("remove-checkout", fmt.Sprintf("Removing %s", p.cfg.Source.Checkout))

	return p.source.RemoveCheckout()
}

// clone fetches a fresh checkout, retrying transient failures
func (p *Pipeline) clone(ctx context.Context) error {
	p.onProgress("clone", fmt.Sprintf("Cloning %s", p.cfg.Source.Remote))

	return p.retry.Do(ctx, func(attempt int, err error) {
		p.onWarning("clone", fmt.Sprintf("attempt %d failed: %v", attempt, err))
	}, p.source.Clone)
}

// envPath returns the env file location inside the checkout
func (p *Pipeline) envPath() string {
	if filepath.IsAbs(p.cfg.Env.File) {
		return p.cfg.Env.File
	}

	return filepath.Join(p.cfg.Source.Checkout, p.cfg.Env.File)
}

// configureEnv makes sure the application's env file is complete before
// launch. A fresh clone never ships one, so a template is written first.
func (p *Pipeline) configureEnv(ctx context.Context) error {
	path := p.envPath()

	if err := envfile.WriteTemplate(path, p.cfg.Env.RequiredKeys); err != nil {
		return err
	}

	inspection, err := envfile.Inspect(path, p.cfg.Env.RequiredKeys)
	if err != nil {
		return err
	}

	if inspection.Complete() {
		return nil
	}

	if p.resolveEnv != nil {
		// Give the user a few passes through the editor before giving up
		for attempt := 0; attempt < 3 && !inspection.Complete(); attempt++ {
			p.onProgress("configure-env", fmt.Sprintf("Env file needs attention: %s", inspection.Problems()))

			if err := p.resolveEnv(path, inspection); err != nil {
				return err
			}

			inspection, err = envfile.Inspect(path, p.cfg.Env.RequiredKeys)
			if err != nil {
				return err
			}
		}

		if inspection.Complete() {
			return nil
		}
	}

	return fmt.Errorf("env file %s is incomplete: %s", path, inspection.Problems())
}

// installDependencies creates the venv and installs requirements, retrying
// transient install failures
func (p *Pipeline) installDependencies(ctx context.Context) error {
	var result *environment.SetupResult

	err := p.retry.Do(ctx, func(attempt int, err error) {
		p.onWarning("install-dependencies", fmt.Sprintf("attempt %d failed: %v", attempt, err))
	}, func() error {
		var setupErr error

		result, setupErr = p.setup(p.cfg.Source.Checkout, &environment.SetupOptions{
			Python:       p.cfg.Runtime.Python,
			VenvDir:      p.cfg.Runtime.VenvDir,
			Requirements: p.cfg.Runtime.Requirements,
			OnProgress: func(message string) {
				p.onProgress("install-dependencies", message)
			},
		})

		return setupErr
	})
	if err != nil {
		return err
	}

	if result != nil {
		p.detection = result.Detection

		if result.Venv != nil {
			p.venvPython = result.Venv.Python()
		}
	}

	return nil
}

// hookEnv is the environment hooks receive
func (p *Pipeline) hookEnv() map[string]string {
	return map[string]string{
		"REDEPLOY_APP":      p.cfg.App.Name,
		"REDEPLOY_SESSION":  p.cfg.App.Session,
		"REDEPLOY_CHECKOUT": p.cfg.Source.Checkout,
		"REDEPLOY_RUN_ID":   p.runID,
	}
}

// preDeployHook runs before launch; its failure aborts the deploy when
// hooks are configured to fail on error
func (p *Pipeline) preDeployHook(ctx context.Context) error {
	if p.runHook == nil {
		return nil
	}

	err := p.runHook(ctx, hooks.PreDeploy, p.hookEnv())
	if err != nil && !p.cfg.Hooks.FailOnError {
		p.onWarning("pre-deploy-hook", err.Error())

		return nil
	}

	return err
}

// postDeployHook runs after launch; the application is already up, so this
// step is always best-effort
func (p *Pipeline) postDeployHook(ctx context.Context) error {
	if p.runHook == nil {
		return nil
	}

	return p.runHook(ctx, hooks.PostDeploy, p.hookEnv())
}

// launch starts the application in a fresh detached session
func (p *Pipeline) launch(ctx context.Context) error {
	command := p.cfg.LaunchCommand(p.venvPython)

	p.onProgress("launch", fmt.Sprintf("Starting %s in session %s", strings.Join(command, " "), p.cfg.App.Session))

	return p.sessions.CreateSession(p.cfg.App.Session, p.cfg.Source.Checkout, command)
}

// VenvPython returns the interpreter the launch step used, for callers that
// record deployment metadata after a run.
func (p *Pipeline) VenvPython() string {
	return p.venvPython
}

// Detection returns what the install step found in the checkout, nil until
// that step has run.
func (p *Pipeline) Detection() *environment.DetectionResult {
	return p.detection
}

package cli

import (
	"fmt"
	"os"
	"os/exec"

	"github.com/crushbase/redeploy/internal/config"
	"github.com/crushbase/redeploy/internal/session"
	"github.com/crushbase/redeploy/internal/ui"
)

// check is one doctor diagnostic
type check struct {
	name     string
	ok       bool
	detail   string
	hint     string
	required bool
}

// RunDoctor verifies the tools a deployment needs and explains how to fix
// what is missing.
func (a *App) RunDoctor() error {
	var checks []check

	checks = append(checks, a.checkBinary("git", true,
		"install with your package manager, e.g. `apt install git` or `brew install git`"))

	cfg, cfgErr := a.loadConfig()

	python := "python3"
	if cfgErr == nil && cfg.Runtime.Python != "" {
		python = cfg.Runtime.Python
	}

	checks = append(checks, a.checkBinary(python, true,
		"install Python 3, e.g. `apt install python3 python3-venv` or `brew install python`"))

	multiplexer := check{name: "terminal multiplexer", required: true,
		hint: "install tmux (`apt install tmux` / `brew install tmux`) or screen"}

	if _, err := exec.LookPath("tmux"); err == nil {
		multiplexer.ok = true
		multiplexer.detail = "tmux"
	} else if _, err := exec.LookPath("screen"); err == nil {
		multiplexer.ok = true
		multiplexer.detail = "screen (tmux recommended; `logs` needs it)"
	}

	checks = append(checks, multiplexer)

	manifest := check{name: "manifest", required: true,
		hint: "run `redeploy init` to create " + config.DefaultManifestName}

	if cfgErr == nil {
		manifest.ok = true
		manifest.detail = fmt.Sprintf("%s -> session %s", cfg.App.Name, cfg.App.Session)
	} else {
		manifest.detail = cfgErr.Error()
	}

	checks = append(checks, manifest)

	state := check{name: "state directory", required: true,
		hint: "check permissions on ~/.redeploy"}

	if dir, err := session.GetSessionDir(); err == nil {
		if mkErr := os.MkdirAll(dir, 0o700); mkErr == nil {
			state.ok = true
			state.detail = dir
		} else {
			state.detail = mkErr.Error()
		}
	} else {
		state.detail = err.Error()
	}

	checks = append(checks, state)

	editor := check{name: "editor", hint: "set $EDITOR so `deploy` can open the env file"}
	if os.Getenv("EDITOR") != "" {
		editor.ok = true
		editor.detail = os.Getenv("EDITOR")
	} else {
		editor.detail = "falls back to vi"
		editor.ok = true
	}

	checks = append(checks, editor)

	failed := 0

	for _, c := range checks {
		marker := ui.SuccessStyle.Render("✓")
		if !c.ok {
			if c.required {
				marker = ui.ErrorStyle.Render("✗")
				failed++
			} else {
				marker = ui.WarningStyle.Render("!")
			}
		}

		line := fmt.Sprintf("%s %-22s %s", marker, c.name, c.detail)
		fmt.Fprintln(os.Stdout, line) //nolint:errcheck

		if !c.ok && c.hint != "" {
			fmt.Fprintln(os.Stdout, ui.SubtleStyle.Render("    "+c.hint)) //nolint:errcheck
		}
	}

	if failed > 0 {
		return fmt.Errorf("%d required check(s) failed", failed)
	}

	fmt.Fprintln(os.Stdout, "\nAll checks passed.") //nolint:errcheck

	return nil
}

// checkBinary verifies a command is on PATH
func (a *App) checkBinary(name string, required bool, hint string) check {
	c := check{name: name, required: required, hint: hint}

	if path, err := exec.LookPath(name); err == nil {
		c.ok = true
		c.detail = path
	} else {
		c.detail = "not found in PATH"
	}

	return c
}

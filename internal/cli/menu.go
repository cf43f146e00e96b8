package cli

import (
	"context"
	"fmt"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/crushbase/redeploy/internal/ui"
)

// Menu action identifiers
const (
	actionDeploy   = "deploy"
	actionDryRun   = "dry-run"
	actionStatus   = "status"
	actionLogs     = "logs"
	actionAttach   = "attach"
	actionHistory  = "history"
	actionTeardown = "teardown"
	actionDoctor   = "doctor"
	actionQuit     = "quit"
)

// RunInteractiveMenu is the bare `redeploy` experience: a menu loop that
// dispatches to the other commands until the user quits.
func (a *App) RunInteractiveMenu(ctx context.Context) error {
	if !a.interactive() {
		return fmt.Errorf("no command given; run `redeploy deploy` or see `redeploy --help`")
	}

	for {
		choice, err := a.showMenu()
		if err != nil {
			return err
		}

		switch choice {
		case actionDeploy:
			err = a.RunDeploy(ctx)
		case actionDryRun:
			dryApp := *a
			dryApp.DryRun = true
			err = dryApp.RunDeploy(ctx)
		case actionStatus:
			err = a.RunStatus()
		case actionLogs:
			err = a.RunLogs(200)
		case actionAttach:
			err = a.RunAttach()
		case actionHistory:
			err = a.RunHistory("", 10)
		case actionTeardown:
			err = a.RunTeardown(false)
		case actionDoctor:
			err = a.RunDoctor()
		case actionQuit, "":
			return nil
		}

		if err != nil {
			fmt.Println(ui.ErrorStyle.Render("Error: " + err.Error()))
		}

		fmt.Println()
	}
}

// showMenu displays the action menu and returns the chosen action
func (a *App) showMenu() (string, error) {
	menu := ui.NewMenu("redeploy", []ui.MenuItem{
		ui.NewMenuItem("Deploy", "redeploy the application from scratch", actionDeploy),
		ui.NewMenuItem("Dry run", "show what a deploy would do", actionDryRun),
		ui.NewMenuItem("Status", "show the deployed session", actionStatus),
		ui.NewMenuItem("Logs", "recent output from the session", actionLogs),
		ui.NewMenuItem("Attach", "attach this terminal to the session", actionAttach),
		ui.NewMenuItem("History", "recent deployment runs", actionHistory),
		ui.NewMenuItem("Teardown", "stop the session", actionTeardown),
		ui.NewMenuItem("Doctor", "check this machine can deploy", actionDoctor),
		ui.NewMenuItem("Quit", "", actionQuit),
	})

	finalModel, err := tea.NewProgram(menu).Run()
	if err != nil {
		return "", fmt.Errorf("menu failed: %w", err)
	}

	model, ok := finalModel.(ui.MenuModel)
	if !ok {
		return "", fmt.Errorf("unexpected menu model")
	}

	return model.Choice(), nil
}

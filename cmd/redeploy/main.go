// Command redeploy tears down and relaunches an application from its git
// remote inside a terminal multiplexer session.
package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/crushbase/redeploy/internal/cli"
	"github.com/crushbase/redeploy/internal/logging"
	"github.com/crushbase/redeploy/internal/perf"
)

var version = "dev"

func main() {
	perf.Init()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)

	err := newRootCmd().ExecuteContext(ctx)

	stop()
	perf.Shutdown()

	if err != nil {
		fmt.Fprintln(os.Stderr, "Error:", err) //nolint:errcheck
		os.Exit(1)
	}
}

// newRootCmd builds the command tree
func newRootCmd() *cobra.Command {
	app := &cli.App{}

	var verbose bool

	root := &cobra.Command{
		Use:   "redeploy",
		Short: "Redeploy an application from its git remote into a tmux session",
		Long: `redeploy replaces a running deployment from scratch: it stops the
multiplexer session, deletes the old checkout, clones the remote, prepares
the env file and virtual environment, installs dependencies and relaunches
the application detached.

Run without arguments for an interactive menu.`,
		Version:       version,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			logger, err := logging.New(verbose)
			if err != nil {
				return err
			}

			app.Logger = logger

			return nil
		},
		PersistentPostRun: func(cmd *cobra.Command, args []string) {
			if app.Logger != nil {
				_ = app.Logger.Sync() //nolint:errcheck
			}
		},
		RunE: func(cmd *cobra.Command, args []string) error {
			return app.RunInteractiveMenu(cmd.Context())
		},
	}

	root.PersistentFlags().StringVarP(&app.ConfigPath, "config", "c", "", "path to the deploy manifest")
	root.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "enable debug logging")
	root.PersistentFlags().BoolVar(&app.NonInteractive, "non-interactive", false, "never prompt; fail instead")
	root.PersistentFlags().BoolVar(&app.DryRun, "dry-run", false, "describe each step without executing")

	root.AddCommand(
		newDeployCmd(app),
		newStatusCmd(app),
		newSessionsCmd(app),
		newTeardownCmd(app),
		newLogsCmd(app),
		newAttachCmd(app),
		newHistoryCmd(app),
		newWatchCmd(app),
		newDoctorCmd(app),
		newInitCmd(app),
	)

	return root
}

func newDeployCmd(app *cli.App) *cobra.Command {
	return &cobra.Command{
		Use:   "deploy",
		Short: "Tear down and redeploy the application",
		RunE: func(cmd *cobra.Command, args []string) error {
			return app.RunDeploy(cmd.Context())
		},
	}
}

func newStatusCmd(app *cli.App) *cobra.Command {
	return &cobra.Command{
		Use:   "status",
		Short: "Show the deployed session and its recorded deployment",
		RunE: func(cmd *cobra.Command, args []string) error {
			return app.RunStatus()
		},
	}
}

func newSessionsCmd(app *cli.App) *cobra.Command {
	var (
		prune bool
		kill  string
	)

	cmd := &cobra.Command{
		Use:   "sessions",
		Short: "List multiplexer sessions and which ones this tool deployed",
		RunE: func(cmd *cobra.Command, args []string) error {
			return app.RunSessions(prune, kill)
		},
	}

	cmd.Flags().BoolVar(&prune, "prune", false, "sweep metadata for sessions that no longer exist")
	cmd.Flags().StringVar(&kill, "kill", "", "terminate the named session instead of listing")

	return cmd
}

func newTeardownCmd(app *cli.App) *cobra.Command {
	var purge bool

	cmd := &cobra.Command{
		Use:   "teardown",
		Short: "Stop the deployed session",
		RunE: func(cmd *cobra.Command, args []string) error {
			return app.RunTeardown(purge)
		},
	}

	cmd.Flags().BoolVar(&purge, "purge", false, "also delete the checkout and forget the session")

	return cmd
}

func newLogsCmd(app *cli.App) *cobra.Command {
	var lines int

	cmd := &cobra.Command{
		Use:   "logs",
		Short: "Print recent output from the deployed session",
		RunE: func(cmd *cobra.Command, args []string) error {
			return app.RunLogs(lines)
		},
	}

	cmd.Flags().IntVarP(&lines, "lines", "n", 200, "how far back to capture")

	return cmd
}

func newAttachCmd(app *cli.App) *cobra.Command {
	return &cobra.Command{
		Use:   "attach",
		Short: "Attach this terminal to the deployed session",
		RunE: func(cmd *cobra.Command, args []string) error {
			return app.RunAttach()
		},
	}
}

func newHistoryCmd(app *cli.App) *cobra.Command {
	var limit int

	cmd := &cobra.Command{
		Use:   "history [run-id]",
		Short: "Show past deployment runs",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id := ""
			if len(args) == 1 {
				id = args[0]
			}

			return app.RunHistory(id, limit)
		},
	}

	cmd.Flags().IntVarP(&limit, "limit", "l", 20, "how many runs to list")

	return cmd
}

func newWatchCmd(app *cli.App) *cobra.Command {
	return &cobra.Command{
		Use:   "watch",
		Short: "Redeploy whenever the manifest changes",
		RunE: func(cmd *cobra.Command, args []string) error {
			return app.RunWatch(cmd.Context())
		},
	}
}

func newDoctorCmd(app *cli.App) *cobra.Command {
	return &cobra.Command{
		Use:   "doctor",
		Short: "Check this machine has everything a deploy needs",
		RunE: func(cmd *cobra.Command, args []string) error {
			return app.RunDoctor()
		},
	}
}

func newInitCmd(app *cli.App) *cobra.Command {
	return &cobra.Command{
		Use:   "init",
		Short: "Write a starter manifest to the working directory",
		RunE: func(cmd *cobra.Command, args []string) error {
			return app.RunInit()
		},
	}
}

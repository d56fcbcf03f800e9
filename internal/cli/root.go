// Package cli provides the Cobra-based command-line interface for skillflow.
//
// The CLI is built around the [App] struct, which holds every dependency the
// commands need. This keeps commands testable: tests build an App with a
// buffer-backed printer and mock handlers, then drive [NewRootCommand].
//
// Commands:
//   - parse: print the steps parsed from a skill document
//   - validate: check skill documents for dropped or missing steps
//   - run: execute a skill's workflow and record a run report
//   - skills: list the skills in the catalog
//   - history: list past run reports
//   - version: print the build version
//
// Commands signal failure by returning an [ExitError]; only [Execute] exits.
package cli

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"skillflow/internal/config"
	"skillflow/internal/executor"
	"skillflow/internal/logging"
	"skillflow/internal/output"
)

// Version is the build version, set with -ldflags "-X skillflow/internal/cli.Version=...".
var Version = "dev"

// App holds the dependencies shared by all commands.
type App struct {
	Config  *config.Config
	Logger  *zap.SugaredLogger
	Printer *output.Printer

	// Handlers overrides the handlers built from Config. Tests use it to run
	// workflows without side effects.
	Handlers executor.Handlers

	// Now defaults to time.Now.
	Now func() time.Time
}

// NewApp creates an [App] from configuration, writing output to stdout and
// logs to stderr.
func NewApp(cfg *config.Config) (*App, error) {
	logger, err := logging.New(cfg.Log, os.Stderr)
	if err != nil {
		return nil, err
	}

	printer := output.NewPrinter()
	printer.SetTruncation(cfg.Output.TruncateLines, cfg.Output.TruncateLength)

	return &App{
		Config:  cfg,
		Logger:  logger,
		Printer: printer,
		Now:     time.Now,
	}, nil
}

func (app *App) logger() *zap.SugaredLogger {
	if app.Logger == nil {
		return logging.Nop()
	}
	return app.Logger
}

func (app *App) now() time.Time {
	if app.Now == nil {
		return time.Now()
	}
	return app.Now()
}

// NewRootCommand creates the root command with every subcommand attached.
func NewRootCommand(app *App) *cobra.Command {
	rootCmd := &cobra.Command{
		Use:   "skillflow",
		Short: "Parse and run workflows embedded in Markdown skill documents",
		Long: `skillflow reads Markdown skill documents, extracts the numbered steps under
their "## Workflow" heading and runs them in order.

Each step line has the form:

  N. [KIND] content - description

where KIND is TERMINAL, API, DB (or DB:<connection>), WEB, FILE or WAIT.`,
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	rootCmd.AddCommand(
		newParseCommand(app),
		newValidateCommand(app),
		newRunCommand(app),
		newSkillsCommand(app),
		newHistoryCommand(app),
		newVersionCommand(app),
	)

	return rootCmd
}

// ExecuteResult is the outcome of running the CLI.
type ExecuteResult struct {
	ExitCode int
	Err      error
}

// RunWithConfig builds an [App] from cfg and runs the root command with the
// process arguments. SIGINT and SIGTERM cancel the command context.
func RunWithConfig(cfg *config.Config) ExecuteResult {
	app, err := NewApp(cfg)
	if err != nil {
		return ExecuteResult{ExitCode: 1, Err: err}
	}
	defer app.Logger.Sync() //nolint:errcheck

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	rootCmd := NewRootCommand(app)
	if err := rootCmd.ExecuteContext(ctx); err != nil {
		if code, ok := IsExitError(err); ok {
			app.logger().Debugw("command failed", "exit_code", code, "error", err)
			return ExecuteResult{ExitCode: code, Err: err}
		}
		return ExecuteResult{ExitCode: 1, Err: err}
	}
	return ExecuteResult{ExitCode: 0}
}

// Execute loads configuration, runs the CLI and exits with its status.
func Execute() {
	cfg, err := config.NewLoader().Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error loading config: %v\n", err)
		os.Exit(1)
	}

	result := RunWithConfig(cfg)
	if result.Err != nil {
		if _, ok := IsExitError(result.Err); !ok {
			fmt.Fprintf(os.Stderr, "Error: %v\n", result.Err)
		}
	}
	os.Exit(result.ExitCode)
}

func newVersionCommand(app *App) *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print the skillflow version",
		Args:  cobra.NoArgs,
		Run: func(cmd *cobra.Command, args []string) {
			app.Printer.Text("skillflow %s", Version)
		},
	}
}

package cli

import (
	"github.com/spf13/cobra"

	"skillflow/internal/executor"
	"skillflow/internal/handlers"
	"skillflow/internal/report"
)

type runOptions struct {
	continueOnError bool
	dryRun          bool
	from            int
	noReport        bool
}

func newRunCommand(app *App) *cobra.Command {
	var opts runOptions

	cmd := &cobra.Command{
		Use:   "run <file|skill>",
		Short: "Run a skill's workflow",
		Long: `Run the workflow of a skill document step by step.

The argument is a path to a Markdown file, or the name or shortcut of a skill
in the skills directory. A failed step stops the run unless
--continue-on-error is set; a timed-out wait always stops it.

Every run is recorded in the runs directory (see "skillflow history").

Examples:
  skillflow run skills/deploy.md
  skillflow run /deploy --from 3
  skillflow run deploy --dry-run`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if !cmd.Flags().Changed("continue-on-error") {
				opts.continueOnError = app.Config.Execution.ContinueOnError
			}
			return app.runSkill(cmd, args[0], opts)
		},
	}

	cmd.Flags().BoolVar(&opts.continueOnError, "continue-on-error", false, "keep running after a failed step")
	cmd.Flags().BoolVar(&opts.dryRun, "dry-run", false, "print the steps without running them")
	cmd.Flags().IntVar(&opts.from, "from", 1, "start at the n-th step (1-based); earlier steps are skipped")
	cmd.Flags().BoolVar(&opts.noReport, "no-report", false, "do not write a run report")

	return cmd
}

func (app *App) runSkill(cmd *cobra.Command, arg string, opts runOptions) error {
	s, err := app.loadSkill(arg)
	if err != nil {
		app.Printer.Error("%v", err)
		return exitWith(1, err)
	}

	doc := s.Workflow()
	app.logDiagnostics(s, doc)

	app.Printer.Header(s.Name)
	app.Printer.Diagnostics(doc.Diagnostics)

	if doc.Empty() {
		app.Printer.Text("No workflow defined.")
		return nil
	}
	if opts.from < 1 || opts.from > len(doc.Steps) {
		app.Printer.Error("--from %d is out of range (workflow has %d steps)", opts.from, len(doc.Steps))
		return NewExitError(2)
	}

	if opts.dryRun {
		app.Printer.Plan(doc)
		return nil
	}

	hs := app.Handlers
	if hs == nil {
		set := handlers.NewSet(app.Config, app.logger(), handlers.Options{})
		defer func() {
			if err := set.Close(); err != nil {
				app.logger().Warnw("failed to close handlers", "error", err)
			}
		}()
		hs = set.Handlers()
	}

	exec := executor.New(hs, app.logger())
	exec.SetContinueOnError(opts.continueOnError)
	exec.SetStartAt(opts.from)
	exec.SetProgressCallback(app.Printer.StepStart)
	exec.SetResultCallback(app.Printer.StepResult)

	run := report.NewRun(s.Name, s.Path, app.now())
	results := exec.Execute(cmd.Context(), doc)
	run.Finish(results, app.now())

	summary := executor.Summarize(results)
	app.Printer.Summary(summary, run.Duration())

	if !opts.noReport {
		app.writeReport(run)
	}

	if !summary.OK() {
		return NewExitError(1)
	}
	return nil
}

func (app *App) writeReport(run *report.Run) {
	path, err := report.NewWriter(app.Config.Runs.Dir).Write(run)
	if err != nil {
		app.logger().Warnw("failed to write run report", "error", err)
		return
	}
	app.logger().Debugw("wrote run report", "path", path, "run_id", run.ID)
}


package cli

import (
	"github.com/spf13/cobra"

	"skillflow/internal/report"
)

func newHistoryCommand(app *App) *cobra.Command {
	var limit int

	cmd := &cobra.Command{
		Use:   "history [run-id]",
		Short: "List past runs",
		Long: `List recorded runs, newest first.

With a run id (or a unique prefix of one) the steps of that run are shown.

Examples:
  skillflow history --limit 5
  skillflow history 3f2a9c1b`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			reader := report.NewReader(app.Config.Runs.Dir)

			if len(args) == 1 {
				run, err := reader.Find(args[0])
				if err != nil {
					app.Printer.Error("%v", err)
					return exitWith(1, err)
				}
				app.printRun(run)
				return nil
			}

			runs, err := reader.List(limit)
			if err != nil {
				app.Printer.Error("%v", err)
				return NewExitError(1)
			}
			if len(runs) == 0 {
				app.Printer.Text("No runs recorded in %s", app.Config.Runs.Dir)
				return nil
			}

			app.Printer.Header("Runs")
			for _, run := range runs {
				mark := "✓"
				if !run.Summary.OK() {
					mark = "✗"
				}
				app.Printer.Text("  %s %s  %s  %-20s %d/%d succeeded",
					mark,
					shortID(run.ID),
					run.StartedAt.Local().Format("2006-01-02 15:04:05"),
					run.Skill,
					run.Summary.Succeeded,
					run.Summary.Total)
			}
			return nil
		},
	}

	cmd.Flags().IntVarP(&limit, "limit", "n", 20, "maximum number of runs to list (0 for all)")
	return cmd
}

func (app *App) printRun(run *report.Run) {
	app.Printer.Header(run.Skill + " " + shortID(run.ID))
	app.Printer.Text("  source:  %s", run.Source)
	app.Printer.Text("  started: %s", run.StartedAt.Local().Format("2006-01-02 15:04:05"))
	for _, s := range run.Steps {
		line := "  " + string(s.Status) + "  " + s.Label
		if s.Error != "" {
			line += ": " + s.Error
		}
		app.Printer.Text("%d.%s", s.Index, line)
	}
	app.Printer.Summary(run.Summary, run.Duration())
}

func shortID(id string) string {
	if len(id) > 8 {
		return id[:8]
	}
	return id
}

package cli

import (
	"github.com/spf13/cobra"
)

func newValidateCommand(app *App) *cobra.Command {
	return &cobra.Command{
		Use:   "validate <file|skill> [file|skill...]",
		Short: "Check skill documents for dropped or missing steps",
		Long: `Validate one or more skill documents.

A document fails validation when it has no workflow steps or when any line
under its "## Workflow" heading could not be parsed.

Example:
  skillflow validate skills/*.md`,
		Args: cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			failed := 0
			for _, arg := range args {
				if !app.validateOne(arg) {
					failed++
				}
			}

			if failed > 0 {
				app.Printer.Error("%d of %d document(s) failed validation", failed, len(args))
				return NewExitError(1)
			}
			return nil
		},
	}
}

func (app *App) validateOne(arg string) bool {
	s, err := app.loadSkill(arg)
	if err != nil {
		app.Printer.Error("%s: %v", arg, err)
		return false
	}

	doc := s.Workflow()
	app.logDiagnostics(s, doc)

	switch {
	case doc.Empty() && len(doc.Diagnostics) == 0:
		app.Printer.Error("%s: no workflow defined", arg)
		return false
	case len(doc.Diagnostics) > 0:
		app.Printer.Error("%s: %d step(s), %d dropped line(s)", arg, len(doc.Steps), len(doc.Diagnostics))
		app.Printer.Diagnostics(doc.Diagnostics)
		return false
	}

	app.Printer.Text("✓ %s: %d step(s)", arg, len(doc.Steps))
	return true
}

package cli

import (
	"encoding/json"
	"fmt"

	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"skillflow/internal/workflow"
)

// stepView is the serialized form of a step for "parse --format yaml|json".
type stepView struct {
	Index  int             `json:"index" yaml:"index"`
	ID     string          `json:"id" yaml:"id"`
	Kind   workflow.Kind   `json:"kind" yaml:"kind"`
	Label  string          `json:"label" yaml:"label"`
	Line   string          `json:"line" yaml:"line"`
	Action workflow.Action `json:"action" yaml:"action"`
}

type documentView struct {
	Skill       string                `json:"skill" yaml:"skill"`
	Steps       []stepView            `json:"steps" yaml:"steps"`
	Diagnostics []workflow.Diagnostic `json:"diagnostics,omitempty" yaml:"diagnostics,omitempty"`
}

func newDocumentView(name string, doc *workflow.Document) documentView {
	view := documentView{Skill: name, Steps: make([]stepView, len(doc.Steps)), Diagnostics: doc.Diagnostics}
	for i, s := range doc.Steps {
		view.Steps[i] = stepView{
			Index:  i + 1,
			ID:     s.ID,
			Kind:   s.Kind(),
			Label:  s.Label,
			Line:   s.Format(i + 1),
			Action: s.Action,
		}
	}
	return view
}

func newParseCommand(app *App) *cobra.Command {
	var format string

	cmd := &cobra.Command{
		Use:   "parse <file|skill>",
		Short: "Print the steps parsed from a skill document",
		Long: `Parse a skill document and print its workflow steps.

Dropped lines are logged as warnings. Use --format yaml or --format json for
machine-readable output.

Example:
  skillflow parse skills/deploy.md --format yaml`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			s, err := app.loadSkill(args[0])
			if err != nil {
				app.Printer.Error("%v", err)
				return NewExitError(1)
			}

			doc := s.Workflow()
			app.logDiagnostics(s, doc)

			switch format {
			case "text", "":
				app.Printer.Header(s.Name)
				app.Printer.Plan(doc)
				app.Printer.Diagnostics(doc.Diagnostics)
				return nil
			case "yaml":
				enc := yaml.NewEncoder(app.Printer.Writer())
				enc.SetIndent(2)
				if err := enc.Encode(newDocumentView(s.Name, doc)); err != nil {
					return fmt.Errorf("failed to encode yaml: %w", err)
				}
				return enc.Close()
			case "json":
				enc := json.NewEncoder(app.Printer.Writer())
				enc.SetIndent("", "  ")
				return enc.Encode(newDocumentView(s.Name, doc))
			}

			app.Printer.Error("unknown format %q (want text, yaml or json)", format)
			return NewExitError(2)
		},
	}

	cmd.Flags().StringVarP(&format, "format", "f", "text", "output format: text, yaml or json")
	return cmd
}

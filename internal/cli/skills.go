package cli

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"skillflow/internal/skill"
)

func newSkillsCommand(app *App) *cobra.Command {
	var dir string

	cmd := &cobra.Command{
		Use:   "skills",
		Short: "List the skills in the catalog",
		Long: `List every skill document found in the skills directory.

The directory defaults to skills.dir from the configuration.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if dir == "" {
				dir = app.Config.Skills.Dir
			}

			catalog, err := skill.LoadDir(dir)
			if err != nil {
				app.Printer.Error("%v", err)
				return NewExitError(1)
			}

			if len(catalog.Skills) == 0 {
				app.Printer.Text("No skills found in %s", dir)
				return nil
			}

			app.Printer.Header("Skills")
			for _, s := range catalog.Skills {
				app.Printer.Text("%s", describeSkill(s))
			}
			return nil
		},
	}

	cmd.Flags().StringVar(&dir, "dir", "", "skills directory (default from config)")
	return cmd
}

func describeSkill(s *skill.Skill) string {
	var b strings.Builder
	b.WriteString("  ")
	b.WriteString(s.Name)
	if s.Shortcut != "" {
		b.WriteString(" (" + s.Shortcut + ")")
	}
	doc := s.Workflow()
	b.WriteString(" - ")
	b.WriteString(pluralSteps(len(doc.Steps)))
	if s.Description != "" {
		b.WriteString(": " + s.Description)
	}
	if len(s.Tags) > 0 {
		b.WriteString(" [" + strings.Join(s.Tags, ", ") + "]")
	}
	return b.String()
}

func pluralSteps(n int) string {
	if n == 1 {
		return "1 step"
	}
	return fmt.Sprintf("%d steps", n)
}

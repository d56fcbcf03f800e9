package cli

import (
	"os"

	"skillflow/internal/skill"
	"skillflow/internal/workflow"
)

// loadSkill resolves arg to a skill document: an existing file path first,
// then a name or shortcut in the configured skills directory.
func (app *App) loadSkill(arg string) (*skill.Skill, error) {
	if info, err := os.Stat(arg); err == nil && !info.IsDir() {
		return skill.Load(arg)
	}

	catalog, err := skill.LoadDir(app.Config.Skills.Dir)
	if err != nil {
		return nil, err
	}
	return catalog.Find(arg)
}

// logDiagnostics reports dropped workflow lines at warn level.
func (app *App) logDiagnostics(s *skill.Skill, doc *workflow.Document) {
	for _, d := range doc.Diagnostics {
		app.logger().Warnw("dropped workflow line",
			"skill", s.Name,
			"line", d.Line,
			"reason", d.Reason,
			"text", d.Text)
	}
}

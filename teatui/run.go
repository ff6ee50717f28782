package teatui

import (
	tea "github.com/charmbracelet/bubbletea/v2"

	"github.com/billie-coop/easytea/worker"
)

// Run runs a Bubble Tea program built from model and, once its
// blocking run returns (window closed, fatal error, interrupt),
// cancels every worker in the registry so no background goroutine
// outlives the UI.
func Run(model tea.Model, registry *worker.Registry, opts ...tea.ProgramOption) error {
	p := tea.NewProgram(model, opts...)
	_, err := p.Run()
	if registry != nil {
		registry.CancelAll()
	}
	return err
}

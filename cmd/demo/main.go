// Package main is a small Bubble Tea program that shows the bridge in
// action: a background ticker worker counts away on its own goroutine
// and marshals every increment onto the UI loop through the queue.
package main

import (
	"fmt"
	"os"
	"time"

	"github.com/charmbracelet/bubbles/v2/spinner"
	tea "github.com/charmbracelet/bubbletea/v2"
	"github.com/charmbracelet/glamour/v2"
	"github.com/charmbracelet/lipgloss/v2"
	"go.uber.org/zap"

	"github.com/billie-coop/easytea"
	"github.com/billie-coop/easytea/config"
	"github.com/billie-coop/easytea/worker"
)

// Style definitions for the UI.
var (
	titleStyle = lipgloss.NewStyle().
		Bold(true).
		Foreground(lipgloss.Color("205")).
		MarginTop(1).
		MarginBottom(1)

	counterStyle = lipgloss.NewStyle().
		Bold(true).
		Foreground(lipgloss.Color("86"))

	helpStyle = lipgloss.NewStyle().
		Foreground(lipgloss.Color("241"))
)

const helpMarkdown = `# easytea demo

A background **worker** increments a counter on its own goroutine.
It never touches the UI: each tick it enqueues a closure, and the
bridge runs that closure here, on the UI loop.

## Keys

- ` + "`t`" + ` — cancel the ticker (cooperative: it finishes its
  current iteration first)
- ` + "`r`" + ` — replace the ticker (override cancels the old one)
- ` + "`h`" + ` — toggle this help
- ` + "`q`" + ` — quit; every worker is cancelled on the way out
`

// model is the demo UI state. Only Update ever mutates it, which is
// the whole point of the exercise.
type model struct {
	bridge *easytea.Bridge
	spin   spinner.Model
	count  int
	lastAt time.Time
	help   bool
	width  int
	height int
}

func initialModel(bridge *easytea.Bridge) *model {
	s := spinner.New()
	s.Spinner = spinner.Dot
	s.Style = lipgloss.NewStyle().Foreground(lipgloss.Color("205"))

	return &model{bridge: bridge, spin: s}
}

// startTicker registers (or replaces) the background worker. The
// closure it enqueues is what finally touches the model.
func (m *model) startTicker(override bool) error {
	opts := []worker.Option{worker.AutoStart()}
	if override {
		opts = append(opts, worker.AllowOverride())
	}
	_, err := m.bridge.Register("ticker", func() {
		now := time.Now()
		_ = m.bridge.Enqueue(func() {
			m.count++
			m.lastAt = now
		})
		time.Sleep(200 * time.Millisecond)
	}, opts...)
	return err
}

func (m *model) Init() tea.Cmd {
	return m.spin.Tick
}

func (m *model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		switch msg.String() {
		case "ctrl+c", "q":
			return m, tea.Quit
		case "h":
			m.help = !m.help
		case "t":
			_ = m.bridge.Cancel("ticker")
		case "r":
			_ = m.startTicker(true)
		}

	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height

	case spinner.TickMsg:
		var cmd tea.Cmd
		m.spin, cmd = m.spin.Update(msg)
		return m, cmd
	}

	return m, nil
}

func (m *model) View() tea.View {
	if m.help {
		return tea.NewView(renderHelp(m.width))
	}

	s := titleStyle.Render("easytea — cross-thread bridge demo")
	s += "\n\n"

	running := false
	if task, ok := m.bridge.Workers.Get("ticker"); ok {
		running = task.State() == worker.Running
	}
	if running {
		s += m.spin.View() + " ticker running\n"
	} else {
		s += "  ticker stopped\n"
	}

	s += "\n" + counterStyle.Render(fmt.Sprintf("count: %d", m.count)) + "\n"
	if !m.lastAt.IsZero() {
		s += helpStyle.Render("last tick "+m.lastAt.Format("15:04:05.000")) + "\n"
	}

	s += "\n" + helpStyle.Render("t: stop ticker • r: restart • h: help • q: quit")
	return tea.NewView(s)
}

func renderHelp(width int) string {
	if width <= 0 {
		width = 80
	}
	r, err := glamour.NewTermRenderer(glamour.WithWordWrap(width - 2))
	if err != nil {
		return helpMarkdown
	}
	out, err := r.Render(helpMarkdown)
	if err != nil {
		return helpMarkdown
	}
	return out
}

func main() {
	cfg, err := config.Load()
	if err != nil {
		fmt.Printf("Error: %v\n", err)
		os.Exit(1)
	}

	// Faults go to a log file; stdout belongs to the TUI.
	logger := zap.NewNop()
	if f, err := os.OpenFile("easytea-demo.log", os.O_CREATE|os.O_APPEND|os.O_WRONLY, 0o644); err == nil {
		defer f.Close()
		zcfg := zap.NewDevelopmentConfig()
		zcfg.OutputPaths = []string{f.Name()}
		if l, err := zcfg.Build(); err == nil {
			logger = l
		}
	}

	bridge := easytea.New(easytea.FromConfig(cfg), easytea.WithLogger(logger))

	m := initialModel(bridge)
	if err := m.startTicker(false); err != nil {
		fmt.Printf("Error: %v\n", err)
		os.Exit(1)
	}

	if err := bridge.RunProgram(m, tea.WithAltScreen()); err != nil {
		fmt.Printf("Error: %v\n", err)
		os.Exit(1)
	}
}

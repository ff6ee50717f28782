// Package teatui adapts the bridge to Bubble Tea.
//
// Model wraps any top-level tea.Model and weaves queue drains through
// the program's own message loop: a self-rescheduling tick message
// triggers a drain inside Update, which is exactly the one goroutine
// allowed to touch the model. The inner model is opaque; every message
// that is not the drain tick passes straight through.
//
// Used by: applications embedding the bridge in a Bubble Tea program
// Connects to: dispatch.Queue (drained), worker.Registry (cancelled
// when the program's blocking Run returns)
package teatui

import (
	"time"

	tea "github.com/charmbracelet/bubbletea/v2"

	"github.com/billie-coop/easytea/dispatch"
	"github.com/billie-coop/easytea/pump"
)

// drainMsg is the private tick that keeps the drain chain alive.
type drainMsg struct{}

// Model wraps an inner tea.Model and drains a queue between its
// updates.
type Model struct {
	inner tea.Model
	queue *dispatch.Queue

	startDelay   time.Duration
	pollInterval time.Duration
}

// Option configures the wrapper.
type Option func(*Model)

// WithStartDelay sets the delay before the first drain.
func WithStartDelay(d time.Duration) Option {
	return func(m *Model) { m.startDelay = d }
}

// WithPollInterval sets the interval between drain passes.
func WithPollInterval(d time.Duration) Option {
	return func(m *Model) { m.pollInterval = d }
}

// New wraps inner so that queue is drained on the program goroutine.
// Timings default to the pump package's 50ms/50ms.
func New(inner tea.Model, queue *dispatch.Queue, opts ...Option) Model {
	m := Model{
		inner:        inner,
		queue:        queue,
		startDelay:   pump.DefaultStartDelay,
		pollInterval: pump.DefaultPollInterval,
	}
	for _, opt := range opts {
		opt(&m)
	}
	return m
}

// Init starts the inner model and schedules the first drain.
func (m Model) Init() tea.Cmd {
	return tea.Batch(m.inner.Init(), drainTick(m.startDelay))
}

// Update intercepts the drain tick; everything else goes to the inner
// model untouched.
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	if _, ok := msg.(drainMsg); ok {
		m.queue.Drain()
		// Reschedule no matter what: Drain contains callable faults,
		// so the chain cannot die.
		return m, drainTick(m.pollInterval)
	}

	inner, cmd := m.inner.Update(msg)
	m.inner = inner
	return m, cmd
}

// View renders the inner model.
func (m Model) View() tea.View {
	if v, ok := m.inner.(tea.ViewableModel); ok {
		return v.View()
	}
	return tea.View{}
}

// Inner returns the wrapped model, for callers that need to reach
// their own state after Update has replaced it.
func (m Model) Inner() tea.Model {
	return m.inner
}

func drainTick(d time.Duration) tea.Cmd {
	return tea.Tick(d, func(time.Time) tea.Msg {
		return drainMsg{}
	})
}

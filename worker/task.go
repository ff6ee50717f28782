// Package worker runs repeating background actions on their own
// goroutines with cooperative cancellation, and manages them by name.
//
// A Task runs its action back-to-back until cancelled; it is never
// force-killed. Cancellation is a one-way flag checked between
// iterations, so a blocking action delays its own stop but affects
// nothing else. Actions that need to touch UI state must not do so
// directly; they hand closures to a dispatch.Queue instead.
//
// Used by: easytea.Bridge (owns a Registry), application setup code
// Connects to: event.Broker (lifecycle and fault reporting)
package worker

import (
	"fmt"
	"sync"
	"sync/atomic"
	"time"

	"github.com/billie-coop/easytea/event"
)

// State describes where a task is in its lifecycle.
// Transitions only move forward; a Stopped task never runs again.
type State int32

const (
	// Created: registered, not yet started.
	Created State = iota
	// Running: the action loop is executing on its goroutine.
	Running
	// CancelRequested: cancel flag set, the in-flight iteration is
	// still finishing.
	CancelRequested
	// Stopped: the loop has exited (cancelled, faulted, or cancelled
	// before it ever started).
	Stopped
)

func (s State) String() string {
	switch s {
	case Created:
		return "created"
	case Running:
		return "running"
	case CancelRequested:
		return "cancel_requested"
	case Stopped:
		return "stopped"
	default:
		return fmt.Sprintf("state(%d)", int32(s))
	}
}

// Task wraps a zero-argument action and runs it repeatedly on a
// dedicated goroutine until cancelled.
//
// The cancel flag is one-way: once set it is never cleared, and the
// task cannot be restarted. Create a new Task for a fresh run.
type Task struct {
	name   string
	action func()
	broker *event.Broker

	state     atomic.Int32
	cancelled atomic.Bool

	done     chan struct{}
	doneOnce sync.Once
}

// NewTask creates a task in the Created state. The name is only used
// in reporting; uniqueness is the registry's concern.
func NewTask(name string, action func(), broker *event.Broker) *Task {
	return &Task{
		name:   name,
		action: action,
		broker: broker,
		done:   make(chan struct{}),
	}
}

// Name returns the name the task was registered under.
func (t *Task) Name() string {
	return t.name
}

// State returns the task's current lifecycle state.
func (t *Task) State() State {
	return State(t.state.Load())
}

// Done returns a channel that is closed once the task will never run
// another iteration: after the loop exits, or immediately if the task
// was cancelled before starting.
func (t *Task) Done() <-chan struct{} {
	return t.done
}

// Start begins executing the action in a loop on a new goroutine.
//
// A second Start returns ErrAlreadyStarted. Starting a task that was
// cancelled before it ever ran returns ErrCancelled.
func (t *Task) Start() error {
	if !t.state.CompareAndSwap(int32(Created), int32(Running)) {
		if t.cancelled.Load() && t.State() == Stopped {
			return fmt.Errorf("worker %q: %w", t.name, ErrCancelled)
		}
		return fmt.Errorf("worker %q: %w", t.name, ErrAlreadyStarted)
	}

	t.publish(event.WorkerStartedEvent, event.WorkerPayload{Name: t.name, At: time.Now()})
	go t.run()
	return nil
}

// Cancel sets the cancellation flag. It does not wait for the in-flight
// iteration; use Done to observe the actual stop. Idempotent, safe from
// any goroutine.
func (t *Task) Cancel() {
	t.cancelled.Store(true)

	// Never started: it never will be, mark it stopped right away.
	if t.state.CompareAndSwap(int32(Created), int32(Stopped)) {
		t.doneOnce.Do(func() { close(t.done) })
		return
	}
	t.state.CompareAndSwap(int32(Running), int32(CancelRequested))
}

// run is the worker goroutine body: action back-to-back, flag checked
// at the top of each iteration.
func (t *Task) run() {
	defer func() {
		t.state.Store(int32(Stopped))
		t.doneOnce.Do(func() { close(t.done) })
		t.publish(event.WorkerStoppedEvent, event.WorkerPayload{Name: t.name, At: time.Now()})
	}()

	for !t.cancelled.Load() {
		if !t.runOnce() {
			return
		}
	}
}

// runOnce executes a single iteration, containing any panic. A faulted
// iteration stops the task for good; the goroutine itself survives to
// report and unwind cleanly.
func (t *Task) runOnce() (ok bool) {
	defer func() {
		if r := recover(); r != nil {
			t.cancelled.Store(true)
			t.publish(event.WorkerFaultEvent, event.WorkerFaultPayload{
				Name: t.name,
				Err:  fmt.Errorf("worker %q: action panicked: %v", t.name, r),
				At:   time.Now(),
			})
			ok = false
		}
	}()
	t.action()
	return true
}

func (t *Task) publish(typ event.Type, payload interface{}) {
	if t.broker == nil {
		return
	}
	t.broker.Publish(event.Event{Type: typ, Payload: payload})
}

package worker

import (
	"context"
	"fmt"

	"github.com/billie-coop/easytea/event"
	"github.com/billie-coop/easytea/internal/csync"
)

// Registry owns named tasks: it creates them, starts and cancels them
// by name, and cancels everything at shutdown. Entries are never
// removed, only cancelled, so a stopped worker stays visible for
// lookup and introspection.
//
// The name map is mutex-guarded; registering a worker from inside
// another worker's action is safe.
type Registry struct {
	tasks  *csync.Map[string, *Task]
	broker *event.Broker
}

// NewRegistry creates an empty registry. The broker may be nil, in
// which case lifecycle and fault events are discarded.
func NewRegistry(broker *event.Broker) *Registry {
	return &Registry{
		tasks:  csync.NewMap[string, *Task](),
		broker: broker,
	}
}

// Option configures a single Register call.
type Option func(*registerOptions)

type registerOptions struct {
	autoStart     bool
	allowOverride bool
}

// AutoStart starts the task immediately after registration.
func AutoStart() Option {
	return func(o *registerOptions) { o.autoStart = true }
}

// AllowOverride permits replacing an existing entry with the same
// name. The outgoing task is cancelled before it is replaced, so an
// overridden worker cannot keep running unreachable.
func AllowOverride() Option {
	return func(o *registerOptions) { o.allowOverride = true }
}

// Register creates a task from action and stores it under name.
//
// Without AllowOverride, a taken name fails with ErrDuplicateName and
// the existing task is untouched. With AutoStart, the task is started
// before Register returns.
func (r *Registry) Register(name string, action func(), opts ...Option) (*Task, error) {
	var o registerOptions
	for _, opt := range opts {
		opt(&o)
	}

	task := NewTask(name, action, r.broker)

	if o.allowOverride {
		if old, existed := r.tasks.Swap(name, task); existed {
			old.Cancel()
		}
	} else {
		if _, loaded := r.tasks.PutIfAbsent(name, task); loaded {
			return nil, fmt.Errorf("worker %q: %w", name, ErrDuplicateName)
		}
	}

	if o.autoStart {
		if err := task.Start(); err != nil {
			return task, err
		}
	}
	return task, nil
}

// Start starts the named task.
func (r *Registry) Start(name string) error {
	task, ok := r.tasks.Get(name)
	if !ok {
		return fmt.Errorf("worker %q: %w", name, ErrNotFound)
	}
	return task.Start()
}

// Cancel requests cancellation of the named task. Idempotent: a second
// Cancel, or cancelling an already-stopped task, is a no-op.
func (r *Registry) Cancel(name string) error {
	task, ok := r.tasks.Get(name)
	if !ok {
		return fmt.Errorf("worker %q: %w", name, ErrNotFound)
	}
	task.Cancel()
	return nil
}

// CancelAll cancels every registered task, including already-stopped
// ones. Called at UI-loop shutdown so no worker outlives the window.
func (r *Registry) CancelAll() {
	r.tasks.Range(func(_ string, task *Task) bool {
		task.Cancel()
		return true
	})
}

// CancelAllAndWait cancels every task and blocks until each one has
// actually stopped or the context expires. A worker stuck in a
// blocking action is the usual reason for a deadline here.
func (r *Registry) CancelAllAndWait(ctx context.Context) error {
	r.CancelAll()

	for _, task := range r.tasks.Values() {
		select {
		case <-task.Done():
		case <-ctx.Done():
			return fmt.Errorf("waiting for worker %q: %w", task.Name(), ctx.Err())
		}
	}
	return nil
}

// Get returns the named task, if registered.
func (r *Registry) Get(name string) (*Task, bool) {
	return r.tasks.Get(name)
}

// Names returns the names of all registered tasks, stopped ones
// included.
func (r *Registry) Names() []string {
	return r.tasks.Keys()
}

// Len returns the number of registered tasks.
func (r *Registry) Len() int {
	return r.tasks.Len()
}

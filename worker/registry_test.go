package worker

import (
	"context"
	"sort"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func TestRegistry_RegisterAndStart(t *testing.T) {
	r := NewRegistry(nil)

	var ticks atomic.Int64
	task, err := r.Register("ticker", func() { ticks.Add(1) })
	require.NoError(t, err)
	require.Equal(t, Created, task.State())

	require.NoError(t, r.Start("ticker"))
	for ticks.Load() == 0 {
		time.Sleep(time.Millisecond)
	}

	require.NoError(t, r.Cancel("ticker"))
	waitDone(t, task)
}

func TestRegistry_AutoStart(t *testing.T) {
	r := NewRegistry(nil)

	started := make(chan struct{})
	var once atomic.Bool
	task, err := r.Register("w", func() {
		if once.CompareAndSwap(false, true) {
			close(started)
		}
	}, AutoStart())
	require.NoError(t, err)

	select {
	case <-started:
	case <-time.After(time.Second):
		t.Fatal("auto-started worker never ran")
	}

	task.Cancel()
	waitDone(t, task)
}

func TestRegistry_DuplicateName(t *testing.T) {
	r := NewRegistry(nil)

	original, err := r.Register("w", func() {}, AutoStart())
	require.NoError(t, err)

	_, err = r.Register("w", func() {})
	require.ErrorIs(t, err, ErrDuplicateName)

	// The original is untouched and still running.
	require.Equal(t, Running, original.State())
	got, ok := r.Get("w")
	require.True(t, ok)
	require.Same(t, original, got)

	original.Cancel()
	waitDone(t, original)
}

func TestRegistry_OverrideCancelsOutgoingTask(t *testing.T) {
	r := NewRegistry(nil)

	old, err := r.Register("w", func() {}, AutoStart())
	require.NoError(t, err)

	replacement, err := r.Register("w", func() {}, AllowOverride())
	require.NoError(t, err)
	require.NotSame(t, old, replacement)

	// The outgoing task must not keep running unreachable.
	waitDone(t, old)
	require.Equal(t, Stopped, old.State())

	got, ok := r.Get("w")
	require.True(t, ok)
	require.Same(t, replacement, got)
}

func TestRegistry_NotFound(t *testing.T) {
	r := NewRegistry(nil)

	require.ErrorIs(t, r.Start("missing"), ErrNotFound)
	require.ErrorIs(t, r.Cancel("missing"), ErrNotFound)
}

func TestRegistry_CancelIsIdempotentThroughRegistry(t *testing.T) {
	r := NewRegistry(nil)

	task, err := r.Register("w", func() {}, AutoStart())
	require.NoError(t, err)

	require.NoError(t, r.Cancel("w"))
	require.NoError(t, r.Cancel("w"))
	waitDone(t, task)
	require.Equal(t, Stopped, task.State())
}

func TestRegistry_CancelAllMixedStates(t *testing.T) {
	r := NewRegistry(nil)

	running, err := r.Register("running", func() {}, AutoStart())
	require.NoError(t, err)

	stopped, err := r.Register("stopped", func() {}, AutoStart())
	require.NoError(t, err)
	stopped.Cancel()
	waitDone(t, stopped)

	neverStarted, err := r.Register("created", func() {})
	require.NoError(t, err)

	r.CancelAll()

	for _, task := range []*Task{running, stopped, neverStarted} {
		waitDone(t, task)
		require.Equal(t, Stopped, task.State(), "worker %q", task.Name())
	}

	// Entries survive cancellation for introspection.
	names := r.Names()
	sort.Strings(names)
	require.Equal(t, []string{"created", "running", "stopped"}, names)
	require.Equal(t, 3, r.Len())
}

func TestRegistry_CancelAllAndWait(t *testing.T) {
	r := NewRegistry(nil)

	_, err := r.Register("quick", func() { time.Sleep(time.Millisecond) }, AutoStart())
	require.NoError(t, err)

	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()
	require.NoError(t, r.CancelAllAndWait(ctx))
}

func TestRegistry_CancelAllAndWaitDeadline(t *testing.T) {
	r := NewRegistry(nil)

	release := make(chan struct{})
	_, err := r.Register("stuck", func() { <-release }, AutoStart())
	require.NoError(t, err)
	defer close(release)

	ctx, cancel := context.WithTimeout(context.Background(), 50*time.Millisecond)
	defer cancel()

	err = r.CancelAllAndWait(ctx)
	require.ErrorIs(t, err, context.DeadlineExceeded)
}

func TestRegistry_RegisterFromWorkerGoroutine(t *testing.T) {
	r := NewRegistry(nil)

	registered := make(chan struct{})
	var once atomic.Bool
	parent, err := r.Register("parent", func() {
		if once.CompareAndSwap(false, true) {
			_, regErr := r.Register("child", func() {})
			if regErr != nil {
				t.Errorf("register from worker goroutine: %v", regErr)
			}
			close(registered)
		}
	}, AutoStart())
	require.NoError(t, err)

	select {
	case <-registered:
	case <-time.After(time.Second):
		t.Fatal("worker never registered its child")
	}

	_, ok := r.Get("child")
	require.True(t, ok)
	parent.Cancel()
	waitDone(t, parent)
}

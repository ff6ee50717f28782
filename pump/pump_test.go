package pump

import (
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/billie-coop/easytea/dispatch"
)

func TestTickLoop_CallbacksRunOnLoopGoroutine(t *testing.T) {
	loop := NewTickLoop()

	done := make(chan struct{})
	go func() {
		_ = loop.Run()
		close(done)
	}()

	ran := make(chan int, 3)
	for i := 0; i < 3; i++ {
		i := i
		loop.After(time.Duration(i+1)*5*time.Millisecond, func() { ran <- i })
	}

	for want := 0; want < 3; want++ {
		select {
		case got := <-ran:
			require.Equal(t, want, got, "callbacks fired out of timer order")
		case <-time.After(2 * time.Second):
			t.Fatal("callback never ran")
		}
	}

	loop.Stop()
	select {
	case <-done:
	case <-time.After(2 * time.Second):
		t.Fatal("Run did not return after Stop")
	}
}

func TestTickLoop_EqualDelaysRunInScheduleOrder(t *testing.T) {
	loop := NewTickLoop()

	done := make(chan struct{})
	go func() {
		_ = loop.Run()
		close(done)
	}()
	defer loop.Stop()

	const n = 64
	ran := make(chan int, n)
	for i := 0; i < n; i++ {
		i := i
		loop.After(5*time.Millisecond, func() { ran <- i })
	}

	for want := 0; want < n; want++ {
		select {
		case got := <-ran:
			require.Equal(t, want, got, "equal-delay callbacks fired out of schedule order")
		case <-time.After(2 * time.Second):
			t.Fatalf("callback %d never ran", want)
		}
	}
}

func TestTickLoop_StopIsIdempotentAndDropsPending(t *testing.T) {
	loop := NewTickLoop()
	loop.Stop()
	loop.Stop()

	// Scheduling on a stopped loop must not panic or leak a stuck
	// timer goroutine.
	loop.After(time.Millisecond, func() { t.Error("callback ran on stopped loop") })
	require.NoError(t, loop.Run())
	time.Sleep(20 * time.Millisecond)
}

func TestPump_DrainsPeriodically(t *testing.T) {
	loop := NewTickLoop()
	go func() { _ = loop.Run() }()
	defer loop.Stop()

	q := dispatch.New()
	p := New(loop, q, 0, time.Millisecond)
	p.Attach()

	var counter atomic.Int64

	// Producer goroutine enqueues across several poll intervals.
	go func() {
		for i := 0; i < 50; i++ {
			_ = q.Enqueue(func() { counter.Add(1) })
			time.Sleep(time.Millisecond)
		}
	}()

	require.Eventually(t, func() bool { return counter.Load() == 50 },
		5*time.Second, 5*time.Millisecond)
	require.Equal(t, 0, q.Len())
}

func TestPump_ReschedulesWithEmptyQueue(t *testing.T) {
	loop := NewTickLoop()
	go func() { _ = loop.Run() }()
	defer loop.Stop()

	q := dispatch.New()
	p := New(loop, q, 0, time.Millisecond)
	p.Attach()

	// Idle for a while, then enqueue: the chain must still be alive.
	time.Sleep(30 * time.Millisecond)

	ran := make(chan struct{})
	_ = q.Enqueue(func() { close(ran) })

	select {
	case <-ran:
	case <-time.After(2 * time.Second):
		t.Fatal("pump stopped rescheduling while idle")
	}
}

func TestPump_SurvivesPanickingCallable(t *testing.T) {
	loop := NewTickLoop()
	go func() { _ = loop.Run() }()
	defer loop.Stop()

	q := dispatch.New()
	p := New(loop, q, 0, time.Millisecond)
	p.Attach()

	_ = q.Enqueue(func() { panic("bad") })

	ran := make(chan struct{})
	_ = q.Enqueue(func() { close(ran) })

	select {
	case <-ran:
	case <-time.After(2 * time.Second):
		t.Fatal("a panicking callable killed the drain chain")
	}
}

func TestPump_StopBreaksChain(t *testing.T) {
	loop := NewTickLoop()
	go func() { _ = loop.Run() }()
	defer loop.Stop()

	q := dispatch.New()
	p := New(loop, q, 0, time.Millisecond)
	p.Attach()
	p.Stop()

	// Give any in-flight tick time to notice the stop.
	time.Sleep(20 * time.Millisecond)

	_ = q.Enqueue(func() {})
	time.Sleep(30 * time.Millisecond)
	require.Equal(t, 1, q.Len(), "stopped pump should no longer drain")
}

func TestPump_NegativeDurationsUseDefaults(t *testing.T) {
	q := dispatch.New()
	p := New(NewTickLoop(), q, -1, -1)
	require.Equal(t, DefaultStartDelay, p.startDelay)
	require.Equal(t, DefaultPollInterval, p.pollInterval)
}

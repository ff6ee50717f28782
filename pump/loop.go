// Package pump drives a dispatch.Queue from a host event loop.
//
// The host only has to provide one primitive: run a callback once,
// after a delay, on the loop goroutine. Pump uses it to schedule a
// drain that perpetually reschedules itself, which is how draining
// stays on the UI goroutine and only happens between otherwise-idle
// loop iterations.
//
// teatui adapts Bubble Tea to the Loop interface; TickLoop is a
// headless implementation for tests and non-TUI embedders.
package pump

import (
	"container/heap"
	"sync"
	"time"
)

// Loop is the host event loop's scheduling primitive: fn runs once,
// on the loop goroutine, no sooner than d from now.
type Loop interface {
	After(d time.Duration, fn func())
}

// RunnableLoop is a Loop the bridge can also run to completion. Run
// blocks until the loop is stopped; its return is the shutdown signal.
type RunnableLoop interface {
	Loop
	Run() error
}

// TickLoop is a minimal single-goroutine event loop. All callbacks
// scheduled with After execute on the goroutine that called Run, in
// deadline order; callbacks with the same deadline run in the order
// they were scheduled.
//
// A single timer goroutine owns the deadline heap and feeds due
// callbacks to Run one at a time, which is what keeps equal-deadline
// dispatch stable.
type TickLoop struct {
	work     chan func()
	quit     chan struct{}
	wake     chan struct{}
	stopOnce sync.Once

	mu     sync.Mutex
	timers timerHeap
	seq    uint64
}

// NewTickLoop creates a loop. Call Run to start dispatching.
func NewTickLoop() *TickLoop {
	l := &TickLoop{
		work: make(chan func(), 16),
		quit: make(chan struct{}),
		wake: make(chan struct{}, 1),
	}
	go l.schedule()
	return l
}

// After schedules fn to run on the loop goroutine after d. Safe from
// any goroutine. Callbacks scheduled after Stop are dropped.
func (l *TickLoop) After(d time.Duration, fn func()) {
	l.mu.Lock()
	l.seq++
	heap.Push(&l.timers, &timerEntry{at: time.Now().Add(d), seq: l.seq, fn: fn})
	l.mu.Unlock()

	select {
	case l.wake <- struct{}{}:
	default:
	}
}

// Run dispatches callbacks until Stop is called. It always returns
// nil; the error return exists to satisfy RunnableLoop for hosts
// whose run entry can fail.
func (l *TickLoop) Run() error {
	for {
		select {
		case fn := <-l.work:
			fn()
		case <-l.quit:
			return nil
		}
	}
}

// Stop ends the loop. Run returns, and pending or future callbacks
// are discarded. Idempotent.
func (l *TickLoop) Stop() {
	l.stopOnce.Do(func() { close(l.quit) })
}

// schedule owns the deadline heap: it sleeps until the earliest
// deadline, then hands every due callback to Run in heap order. After
// interrupts the sleep through wake whenever a new entry might move
// the earliest deadline forward.
func (l *TickLoop) schedule() {
	for {
		l.mu.Lock()
		empty := len(l.timers) == 0
		var next time.Time
		if !empty {
			next = l.timers[0].at
		}
		l.mu.Unlock()

		if empty {
			select {
			case <-l.wake:
				continue
			case <-l.quit:
				return
			}
		}

		if wait := time.Until(next); wait > 0 {
			timer := time.NewTimer(wait)
			select {
			case <-timer.C:
			case <-l.wake:
				timer.Stop()
				continue
			case <-l.quit:
				timer.Stop()
				return
			}
		}

		for _, fn := range l.due(time.Now()) {
			select {
			case l.work <- fn:
			case <-l.quit:
				return
			}
		}
	}
}

// due pops every entry whose deadline has passed, in dispatch order.
func (l *TickLoop) due(now time.Time) []func() {
	l.mu.Lock()
	defer l.mu.Unlock()

	var fns []func()
	for len(l.timers) > 0 && !l.timers[0].at.After(now) {
		e := heap.Pop(&l.timers).(*timerEntry)
		fns = append(fns, e.fn)
	}
	return fns
}

// timerEntry is one pending After callback. seq breaks deadline ties
// in favor of the earlier schedule.
type timerEntry struct {
	at  time.Time
	seq uint64
	fn  func()
}

type timerHeap []*timerEntry

func (h timerHeap) Len() int { return len(h) }

func (h timerHeap) Less(i, j int) bool {
	if h[i].at.Equal(h[j].at) {
		return h[i].seq < h[j].seq
	}
	return h[i].at.Before(h[j].at)
}

func (h timerHeap) Swap(i, j int) { h[i], h[j] = h[j], h[i] }

func (h *timerHeap) Push(x any) { *h = append(*h, x.(*timerEntry)) }

func (h *timerHeap) Pop() any {
	old := *h
	n := len(old)
	e := old[n-1]
	old[n-1] = nil
	*h = old[:n-1]
	return e
}

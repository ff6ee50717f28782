// Package dispatch marshals work from background goroutines onto the
// UI event loop.
//
// A Queue is a FIFO of deferred closures. Any goroutine may Enqueue;
// exactly one consumer, the UI loop, calls Drain between its own
// iterations. That split is the whole thread-safety contract of the
// bridge: workers never touch UI state, they enqueue closures that the
// loop later runs in UI context.
//
// Used by: worker actions (producers), pump.Pump / teatui.Model (the
// one consumer)
// Connects to: event.Broker (drain faults, overflow drops)
package dispatch

import (
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/billie-coop/easytea/event"
)

// ErrQueueFull is returned by Enqueue under the DropNewest policy when
// the queue is at capacity.
var ErrQueueFull = errors.New("dispatch queue full")

// Policy decides what Enqueue does when a bounded queue is full.
type Policy int

const (
	// Unbounded: the queue grows without limit; capacity is ignored.
	Unbounded Policy = iota
	// DropNewest: Enqueue rejects the new closure with ErrQueueFull
	// and a QueueOverflowEvent is published.
	DropNewest
	// Block: Enqueue waits until a drain makes room. Producers on the
	// loop goroutine itself must not use a Block queue: a full queue
	// would deadlock the only goroutine able to drain it.
	Block
)

// Queue is a thread-safe FIFO of deferred closures.
//
// Closures enqueued by the same goroutine run in enqueue order. No
// order is defined between closures racing in from different
// goroutines. Drain must only ever be called from the UI loop
// goroutine; single-consumer serialization is the loop's job, not a
// lock's.
type Queue struct {
	mu   sync.Mutex
	cond *sync.Cond
	fns  []func()

	capacity int
	policy   Policy
	broker   *event.Broker
}

// Option configures a Queue.
type Option func(*Queue)

// WithCapacity bounds the queue at n pending closures. Only meaningful
// together with WithPolicy(DropNewest) or WithPolicy(Block); the
// default Unbounded policy ignores it.
func WithCapacity(n int) Option {
	return func(q *Queue) { q.capacity = n }
}

// WithPolicy selects the overflow behavior for a bounded queue.
func WithPolicy(p Policy) Option {
	return func(q *Queue) { q.policy = p }
}

// WithBroker routes drain faults and overflow drops to b.
func WithBroker(b *event.Broker) Option {
	return func(q *Queue) { q.broker = b }
}

// New creates a queue. With no options it is unbounded and silent.
func New(opts ...Option) *Queue {
	q := &Queue{}
	for _, opt := range opts {
		opt(q)
	}
	q.cond = sync.NewCond(&q.mu)
	return q
}

// Enqueue appends fn to the tail of the queue. Safe from any
// goroutine, including the UI loop itself. It never blocks under the
// default policy; under Block it waits for room, under DropNewest it
// returns ErrQueueFull when the queue is at capacity.
//
// A nil fn is ignored.
func (q *Queue) Enqueue(fn func()) error {
	if fn == nil {
		return nil
	}

	q.mu.Lock()
	defer q.mu.Unlock()

	if q.bounded() {
		switch q.policy {
		case DropNewest:
			if len(q.fns) >= q.capacity {
				q.publish(event.Event{
					Type:    event.QueueOverflowEvent,
					Payload: event.QueueOverflowPayload{Capacity: q.capacity, At: time.Now()},
				})
				return fmt.Errorf("capacity %d: %w", q.capacity, ErrQueueFull)
			}
		case Block:
			for len(q.fns) >= q.capacity {
				q.cond.Wait()
			}
		}
	}

	q.fns = append(q.fns, fn)
	return nil
}

// Drain pops and runs closures from the head, in FIFO order, until the
// queue is observed empty. It returns the number of closures executed.
//
// Drain must be called only from the UI loop goroutine. A closure that
// panics is reported as a DrainFaultEvent and the pass continues with
// the next one; a fault never escapes into the host loop's timer
// callback.
func (q *Queue) Drain() int {
	executed := 0
	for {
		fn, ok := q.pop()
		if !ok {
			return executed
		}
		q.invoke(fn)
		executed++
	}
}

// Len returns the number of pending closures. Snapshot only; useful
// for monitoring and tests.
func (q *Queue) Len() int {
	q.mu.Lock()
	defer q.mu.Unlock()
	return len(q.fns)
}

// pop removes the head closure. It wakes one blocked producer, since
// the removal just made room.
func (q *Queue) pop() (func(), bool) {
	q.mu.Lock()
	defer q.mu.Unlock()

	if len(q.fns) == 0 {
		// Let the backing array go once the queue empties out.
		q.fns = nil
		return nil, false
	}

	fn := q.fns[0]
	q.fns = q.fns[1:]
	q.cond.Signal()
	return fn, true
}

// invoke runs a single closure outside the lock, containing any panic.
func (q *Queue) invoke(fn func()) {
	defer func() {
		if r := recover(); r != nil {
			q.publish(event.Event{
				Type:    event.DrainFaultEvent,
				Payload: event.DrainFaultPayload{Err: fmt.Errorf("queued callable panicked: %v", r), At: time.Now()},
			})
		}
	}()
	fn()
}

func (q *Queue) bounded() bool {
	return q.policy != Unbounded && q.capacity > 0
}

func (q *Queue) publish(e event.Event) {
	if q.broker == nil {
		return
	}
	q.broker.Publish(e)
}

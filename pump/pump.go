package pump

import (
	"sync/atomic"
	"time"

	"github.com/billie-coop/easytea/dispatch"
)

// Default drain timings.
const (
	DefaultStartDelay   = 50 * time.Millisecond
	DefaultPollInterval = 50 * time.Millisecond
)

// Pump binds a queue to a host loop. Once attached, it drains the
// queue on the loop goroutine every PollInterval, forever, whether or
// not anything was pending. The chain never needs restarting: Drain
// contains callable faults, so the reschedule after each pass always
// happens.
type Pump struct {
	queue        *dispatch.Queue
	loop         Loop
	startDelay   time.Duration
	pollInterval time.Duration
	stopped      atomic.Bool
}

// New creates a pump. Negative durations are clamped to the defaults.
func New(loop Loop, queue *dispatch.Queue, startDelay, pollInterval time.Duration) *Pump {
	if startDelay < 0 {
		startDelay = DefaultStartDelay
	}
	if pollInterval < 0 {
		pollInterval = DefaultPollInterval
	}
	return &Pump{
		queue:        queue,
		loop:         loop,
		startDelay:   startDelay,
		pollInterval: pollInterval,
	}
}

// Attach schedules the first drain after the start delay. Call once.
func (p *Pump) Attach() {
	p.loop.After(p.startDelay, p.tick)
}

// Stop breaks the reschedule chain. Only needed when the host loop
// outlives the pump; tearing down the loop itself makes Stop
// redundant.
func (p *Pump) Stop() {
	p.stopped.Store(true)
}

// tick runs on the loop goroutine: one drain pass, then reschedule.
func (p *Pump) tick() {
	if p.stopped.Load() {
		return
	}
	p.queue.Drain()
	p.loop.After(p.pollInterval, p.tick)
}

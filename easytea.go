package easytea

import (
	"context"
	"time"

	tea "github.com/charmbracelet/bubbletea/v2"
	"go.uber.org/zap"

	"github.com/billie-coop/easytea/config"
	"github.com/billie-coop/easytea/dispatch"
	"github.com/billie-coop/easytea/event"
	"github.com/billie-coop/easytea/pump"
	"github.com/billie-coop/easytea/teatui"
	"github.com/billie-coop/easytea/worker"
)

// Bridge ties the pieces together: a worker registry, the dispatch
// queue they marshal UI work through, and the event broker everything
// reports to. One Bridge per UI loop.
type Bridge struct {
	Workers *worker.Registry
	Queue   *dispatch.Queue
	Events  *event.Broker

	startDelay   time.Duration
	pollInterval time.Duration
	stopLog      func()
}

type options struct {
	startDelay   time.Duration
	pollInterval time.Duration
	capacity     int
	policy       dispatch.Policy
	logger       *zap.Logger
	broker       *event.Broker
}

// Option configures a Bridge.
type Option func(*options)

// WithStartDelay sets the delay before the first drain pass.
func WithStartDelay(d time.Duration) Option {
	return func(o *options) { o.startDelay = d }
}

// WithPollInterval sets the interval between drain passes.
func WithPollInterval(d time.Duration) Option {
	return func(o *options) { o.pollInterval = d }
}

// WithCapacity bounds the queue; pair it with WithPolicy.
func WithCapacity(n int) Option {
	return func(o *options) { o.capacity = n }
}

// WithPolicy sets the queue overflow policy.
func WithPolicy(p dispatch.Policy) Option {
	return func(o *options) { o.policy = p }
}

// WithLogger attaches a zap logger to the bridge's broker so worker
// faults, drain faults and overflow drops get logged.
func WithLogger(l *zap.Logger) Option {
	return func(o *options) { o.logger = l }
}

// WithBroker supplies an externally owned broker instead of a fresh
// one, for applications that already route events through their own.
func WithBroker(b *event.Broker) Option {
	return func(o *options) { o.broker = b }
}

// FromConfig applies a loaded config.Config.
func FromConfig(c config.Config) Option {
	return func(o *options) {
		o.startDelay = c.StartDelay()
		o.pollInterval = c.PollInterval()
		o.capacity = c.Queue.Capacity
		switch c.Queue.Policy {
		case "drop":
			o.policy = dispatch.DropNewest
		case "block":
			o.policy = dispatch.Block
		default:
			o.policy = dispatch.Unbounded
		}
	}
}

// New creates a bridge. Defaults: 50ms start delay, 50ms poll
// interval, unbounded queue, no logging.
func New(opts ...Option) *Bridge {
	o := options{
		startDelay:   pump.DefaultStartDelay,
		pollInterval: pump.DefaultPollInterval,
	}
	for _, opt := range opts {
		opt(&o)
	}

	broker := o.broker
	if broker == nil {
		broker = event.NewBroker()
	}

	b := &Bridge{
		Workers: worker.NewRegistry(broker),
		Queue: dispatch.New(
			dispatch.WithCapacity(o.capacity),
			dispatch.WithPolicy(o.policy),
			dispatch.WithBroker(broker),
		),
		Events:       broker,
		startDelay:   o.startDelay,
		pollInterval: o.pollInterval,
		stopLog:      func() {},
	}

	if o.logger != nil {
		b.stopLog = event.LogSubscriber(broker, o.logger)
	}
	return b
}

// Register registers a named worker. See worker.Registry.Register.
func (b *Bridge) Register(name string, action func(), opts ...worker.Option) (*worker.Task, error) {
	return b.Workers.Register(name, action, opts...)
}

// Start starts the named worker.
func (b *Bridge) Start(name string) error {
	return b.Workers.Start(name)
}

// Cancel requests cancellation of the named worker.
func (b *Bridge) Cancel(name string) error {
	return b.Workers.Cancel(name)
}

// CancelAll cancels every worker.
func (b *Bridge) CancelAll() {
	b.Workers.CancelAll()
}

// Enqueue hands a closure to the UI loop. Safe from any goroutine;
// the closure runs on the loop goroutine during a later drain pass.
func (b *Bridge) Enqueue(fn func()) error {
	return b.Queue.Enqueue(fn)
}

// AttachTo starts pumping the queue through an externally run host
// loop. Use RunLoop or RunProgram instead when the bridge should own
// the loop's lifetime.
func (b *Bridge) AttachTo(loop pump.Loop) *pump.Pump {
	p := pump.New(loop, b.Queue, b.startDelay, b.pollInterval)
	p.Attach()
	return p
}

// RunLoop attaches the pump, runs the host loop until it stops, then
// cancels every worker. This is the whole window lifecycle: loop runs,
// loop ends, workers die.
func (b *Bridge) RunLoop(loop pump.RunnableLoop) error {
	b.AttachTo(loop)
	err := loop.Run()
	b.Workers.CancelAll()
	return err
}

// WrapModel wraps a top-level Bubble Tea model so the program drains
// this bridge's queue between updates.
func (b *Bridge) WrapModel(inner tea.Model) teatui.Model {
	return teatui.New(inner, b.Queue,
		teatui.WithStartDelay(b.startDelay),
		teatui.WithPollInterval(b.pollInterval),
	)
}

// RunProgram runs inner as a Bubble Tea program wired to this bridge,
// cancelling all workers when the program exits.
func (b *Bridge) RunProgram(inner tea.Model, opts ...tea.ProgramOption) error {
	return teatui.Run(b.WrapModel(inner), b.Workers, opts...)
}

// Shutdown cancels every worker, waits for them to stop (bounded by
// ctx), and detaches the log subscriber.
func (b *Bridge) Shutdown(ctx context.Context) error {
	err := b.Workers.CancelAllAndWait(ctx)
	b.stopLog()
	return err
}

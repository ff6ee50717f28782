package event

import "time"

// Type identifies the kind of event
type Type string

const (
	// Worker lifecycle events
	WorkerStartedEvent Type = "worker.started"
	WorkerStoppedEvent Type = "worker.stopped"
	WorkerFaultEvent   Type = "worker.fault"

	// Queue events
	DrainFaultEvent    Type = "queue.drain.fault"
	QueueOverflowEvent Type = "queue.overflow"
)

// Event represents something that happened inside the bridge
type Event struct {
	Type    Type
	Payload interface{}
}

// Event payload types

// WorkerPayload accompanies worker lifecycle events.
type WorkerPayload struct {
	Name string
	At   time.Time
}

// WorkerFaultPayload accompanies WorkerFaultEvent. Err is the recovered
// panic of a worker action, wrapped as an error. The worker is Stopped
// after the fault; it will not run again.
type WorkerFaultPayload struct {
	Name string
	Err  error
	At   time.Time
}

// DrainFaultPayload accompanies DrainFaultEvent. Err is the recovered
// panic of a queued callable. The drain pass continues with the next
// callable.
type DrainFaultPayload struct {
	Err error
	At  time.Time
}

// QueueOverflowPayload accompanies QueueOverflowEvent when a bounded
// queue rejects an enqueue under the drop policy.
type QueueOverflowPayload struct {
	Capacity int
	At       time.Time
}

// Package event distributes bridge lifecycle and fault notifications.
//
// The broker is the injectable reporting sink for the whole module:
// workers publish start/stop/fault events, the dispatch queue publishes
// drain faults and overflow drops. Subscribers receive events on
// buffered channels; a slow subscriber loses events rather than
// blocking a worker goroutine or the UI loop.
//
// Used by: worker (lifecycle, faults), dispatch (drain faults, drops)
// Consumed by: LogSubscriber (zap), application code, tests
package event

import (
	"sync"
)

// Broker manages event distribution
type Broker struct {
	subscribers map[Type][]chan Event
	mu          sync.RWMutex
	bufferSize  int
}

// NewBroker creates a new event broker
func NewBroker() *Broker {
	return &Broker{
		subscribers: make(map[Type][]chan Event),
		bufferSize:  16,
	}
}

// Subscribe creates a subscription to specific event types.
// With no types, the subscription receives every event.
func (b *Broker) Subscribe(types ...Type) <-chan Event {
	b.mu.Lock()
	defer b.mu.Unlock()

	ch := make(chan Event, b.bufferSize)

	if len(types) == 0 {
		types = []Type{"*"} // wildcard
	}

	for _, t := range types {
		b.subscribers[t] = append(b.subscribers[t], ch)
	}

	return ch
}

// Unsubscribe removes a subscription and closes its channel.
// With no types, the channel is removed from every subscriber list.
func (b *Broker) Unsubscribe(ch <-chan Event, types ...Type) {
	b.mu.Lock()
	defer b.mu.Unlock()

	if len(types) == 0 {
		types = make([]Type, 0, len(b.subscribers))
		for t := range b.subscribers {
			types = append(types, t)
		}
	}

	var found chan Event
	for _, t := range types {
		if c := b.removeChannel(t, ch); c != nil {
			found = c
		}
	}

	// Close once, even if the channel was registered under several types
	if found != nil {
		close(found)
	}
}

// Publish sends an event to all subscribers.
// Safe from any goroutine. Never blocks: a full subscriber channel
// drops the event for that subscriber.
func (b *Broker) Publish(e Event) {
	b.mu.RLock()
	defer b.mu.RUnlock()

	if subscribers, ok := b.subscribers[e.Type]; ok {
		for _, ch := range subscribers {
			select {
			case ch <- e:
			default:
				// Channel full, skip this event
			}
		}
	}

	if wildcards, ok := b.subscribers["*"]; ok {
		for _, ch := range wildcards {
			select {
			case ch <- e:
			default:
			}
		}
	}
}

// removeChannel removes a channel from a specific event type's
// subscribers and returns it if it was registered there.
func (b *Broker) removeChannel(t Type, target <-chan Event) chan Event {
	var found chan Event
	subscribers := b.subscribers[t]
	for i, ch := range subscribers {
		if ch == target {
			b.subscribers[t] = append(subscribers[:i], subscribers[i+1:]...)
			found = ch
			break
		}
	}

	if len(b.subscribers[t]) == 0 {
		delete(b.subscribers, t)
	}
	return found
}

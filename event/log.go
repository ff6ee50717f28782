package event

import (
	"go.uber.org/zap"
)

// LogSubscriber attaches a zap logger to a broker and logs every fault
// and lifecycle event it sees. The bridge wires one up when it is
// given a logger; applications that want richer handling subscribe
// themselves.
//
// The returned stop function unsubscribes and waits for the logging
// goroutine to exit. Call it before discarding the broker.
func LogSubscriber(b *Broker, logger *zap.Logger) (stop func()) {
	if logger == nil {
		logger = zap.NewNop()
	}

	ch := b.Subscribe()
	done := make(chan struct{})

	go func() {
		defer close(done)
		for e := range ch {
			logEvent(logger, e)
		}
	}()

	return func() {
		b.Unsubscribe(ch)
		<-done
	}
}

func logEvent(logger *zap.Logger, e Event) {
	switch p := e.Payload.(type) {
	case WorkerPayload:
		logger.Info(string(e.Type), zap.String("worker", p.Name))
	case WorkerFaultPayload:
		logger.Error(string(e.Type),
			zap.String("worker", p.Name),
			zap.Error(p.Err))
	case DrainFaultPayload:
		logger.Error(string(e.Type), zap.Error(p.Err))
	case QueueOverflowPayload:
		logger.Warn(string(e.Type), zap.Int("capacity", p.Capacity))
	default:
		logger.Info(string(e.Type))
	}
}

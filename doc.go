// Package easytea bridges background workers and a single-threaded UI
// event loop.
//
// # Overview
//
// UI toolkits with a cooperative event loop (Bubble Tea included) share
// one rule: only the loop goroutine may touch UI state. This package
// reconciles that rule with preemptive background goroutines:
//
//   - worker.Task: a repeating action on its own goroutine, stopped by
//     a cooperative cancel flag, never force-killed
//   - worker.Registry: named tasks with start/cancel/cancel-all
//   - dispatch.Queue: a thread-safe FIFO of closures; workers enqueue,
//     the loop drains
//   - pump.Pump / teatui.Model: the self-rescheduling timer that makes
//     draining happen on the loop goroutine, between idle iterations
//
// A worker computes something, then enqueues a closure that applies the
// result to the UI. The closure runs later, on the loop goroutine,
// where it is safe.
//
// # Example
//
//	bridge := easytea.New()
//
//	_, err := bridge.Register("poller", func() {
//	    n := fetchCount()
//	    bridge.Enqueue(func() { model.count = n })
//	}, worker.AutoStart())
//
//	err = bridge.RunProgram(model) // blocks; workers cancelled on exit
//
// # Faults
//
// A panicking worker action stops that worker; a panicking queued
// closure is skipped. Neither kills a goroutine, aborts a drain pass,
// or breaks the drain chain. Faults surface as events on the bridge's
// broker; attach a zap logger with WithLogger or subscribe directly.
package easytea

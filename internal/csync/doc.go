// Package csync provides thread-safe concurrent data structures.
//
// This package implements a generic, mutex-guarded map used by the
// worker registry. All operations are protected by a read-write mutex
// so the map can be mutated from worker goroutines as well as the UI
// goroutine without additional synchronization.
//
// Example usage:
//
//	tasks := csync.NewMap[string, *worker.Task]()
//	if prev, loaded := tasks.PutIfAbsent("ticker", task); loaded {
//		// "ticker" already registered; prev is the existing task
//	}
package csync

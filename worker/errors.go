package worker

import "errors"

// Sentinel errors returned by the registry and task lifecycle.
// They are always wrapped with the worker name; match with errors.Is.
var (
	// ErrDuplicateName is returned by Register when the name is taken
	// and override was not requested.
	ErrDuplicateName = errors.New("worker name already registered")

	// ErrNotFound is returned when operating on an unregistered name.
	ErrNotFound = errors.New("worker not found")

	// ErrAlreadyStarted is returned by a second Start on the same task.
	ErrAlreadyStarted = errors.New("worker already started")

	// ErrCancelled is returned by Start on a task that was cancelled
	// before it ever ran. A cancelled task cannot be restarted; register
	// a new one instead.
	ErrCancelled = errors.New("worker already cancelled")
)

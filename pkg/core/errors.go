package core

import "errors"

// Common errors.
var (
	// ErrWatchLost signals that the underlying filesystem watch is gone and
	// cannot be resumed in-place. The supervisor restarts the watch worker
	// with backoff when it returns this error.
	ErrWatchLost = errors.New("filesystem watch lost")
)

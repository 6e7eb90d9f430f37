package framecall

import "errors"

// Standard errors.
var (
	// ErrAlreadyRunning is returned by Start when the registry is already live.
	ErrAlreadyRunning = errors.New("framecall: registry is already running")

	// ErrNotRunning is returned by Stop when the registry was never started
	// or has already been stopped.
	ErrNotRunning = errors.New("framecall: registry is not running")
)

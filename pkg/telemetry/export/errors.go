package export

import (
	"errors"
	"fmt"
)

var (
	// ErrAlreadyRunning is returned by Start when the server is already listening.
	ErrAlreadyRunning = errors.New("server is already running")

	// ErrInvalidMetricsPath is returned by Start when MetricsPath cannot be
	// routed.
	ErrInvalidMetricsPath = errors.New("invalid metrics path")
)

// LifecycleError reports a failed server state transition.
type LifecycleError struct {
	// Op is the transition that failed ("start").
	Op string

	// Addr is the address the server was bound or binding to.
	Addr string

	Err error
}

// Error implements the error interface.
func (e *LifecycleError) Error() string {
	return fmt.Sprintf("metrics export server %s on %s failed: %v", e.Op, e.Addr, e.Err)
}

// Unwrap returns the underlying cause.
func (e *LifecycleError) Unwrap() error {
	return e.Err
}

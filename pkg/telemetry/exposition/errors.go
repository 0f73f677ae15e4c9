package exposition

import (
	"errors"
	"fmt"
)

// FormatErrorPrefix starts the message of every FormatError.
const FormatErrorPrefix = "Failed to format Prometheus metrics: "

var (
	// ErrNilSnapshot is returned when Format is given a nil snapshot.
	ErrNilSnapshot = errors.New("snapshot is nil")

	// ErrInvalidSnapshot is returned when a snapshot fails sanity checks.
	ErrInvalidSnapshot = errors.New("invalid snapshot")
)

// FormatError wraps any failure raised while rendering a snapshot.
type FormatError struct {
	Err error
}

// Error implements the error interface.
func (e *FormatError) Error() string {
	return FormatErrorPrefix + e.Err.Error()
}

// Unwrap returns the underlying cause.
func (e *FormatError) Unwrap() error {
	return e.Err
}

func invalidSnapshot(format string, args ...any) error {
	return fmt.Errorf("%w: %s", ErrInvalidSnapshot, fmt.Sprintf(format, args...))
}

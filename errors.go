package spectile

import (
	"errors"
	"fmt"
)

// Sentinel errors returned by Engine.
var (
	// ErrNilOpener is returned by NewEngine when no stream opener is given.
	ErrNilOpener = errors.New("spectile: nil stream opener")

	// ErrClosed is returned by operations on a closed Engine.
	ErrClosed = errors.New("spectile: engine closed")

	// ErrInvalidViewport is returned when a viewport has no drawable area.
	ErrInvalidViewport = errors.New("spectile: invalid viewport")

	// ErrOpenStream wraps failures of the stream opener.
	ErrOpenStream = errors.New("spectile: open stream")
)

// RenderError reports a failed render of one byte range.
// The range's placeholder is released so a later request retries it.
type RenderError struct {
	Range ByteRange
	Err   error
}

// Error implements the error interface.
func (e *RenderError) Error() string {
	return fmt.Sprintf("spectile: render %v: %v", e.Range, e.Err)
}

// Unwrap returns the underlying error.
func (e *RenderError) Unwrap() error {
	return e.Err
}

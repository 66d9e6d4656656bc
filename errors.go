package fragpipe

import (
	"errors"
	"fmt"
)

// Error kinds. Every error returned by fragpipe and its sub-packages matches
// one of these with errors.Is.
var (
	// ErrNotFound reports a buffer name missing from an AccessContext.
	ErrNotFound = errors.New("fragpipe: buffer not found")

	// ErrAccessViolation reports a pixel operation not permitted by the
	// buffer's current access mode.
	ErrAccessViolation = errors.New("fragpipe: access violation")

	// ErrInvalidMode reports an unknown access mode value or name.
	ErrInvalidMode = errors.New("fragpipe: invalid access mode")

	// ErrIO reports a failure to load or save a buffer.
	ErrIO = errors.New("fragpipe: i/o failure")

	// ErrParse reports a malformed pipeline description.
	ErrParse = errors.New("fragpipe: parse error")

	// ErrScheduler reports a failure inside a fragment scheduler run.
	ErrScheduler = errors.New("fragpipe: scheduler failure")

	// ErrInvalidArgument reports a bad dimension, count or size.
	ErrInvalidArgument = errors.New("fragpipe: invalid argument")

	// ErrOutOfBounds reports pixel coordinates outside a buffer.
	ErrOutOfBounds = errors.New("fragpipe: coordinates out of bounds")
)

// NotFoundError reports a lookup of an unknown buffer name.
type NotFoundError struct {
	Name string
}

func (e *NotFoundError) Error() string {
	return fmt.Sprintf("fragpipe: buffer %q not found", e.Name)
}

func (e *NotFoundError) Unwrap() error { return ErrNotFound }

// AccessError reports a read or write attempted in a mode that forbids it.
type AccessError struct {
	// Op is "read" or "write".
	Op string

	// Mode is the buffer's mode at the time of the attempt.
	Mode Mode
}

func (e *AccessError) Error() string {
	return fmt.Sprintf("fragpipe: %s not permitted in mode %s", e.Op, e.Mode)
}

func (e *AccessError) Unwrap() error { return ErrAccessViolation }

// IOError reports a failure to load or save a buffer at Path.
type IOError struct {
	Op   string
	Path string
	Err  error
}

func (e *IOError) Error() string {
	return fmt.Sprintf("fragpipe: %s %s: %v", e.Op, e.Path, e.Err)
}

// Unwrap returns both ErrIO and the underlying cause.
func (e *IOError) Unwrap() []error { return []error{ErrIO, e.Err} }

// SchedulerError reports an aborted scheduler run.
type SchedulerError struct {
	// Worker is the id of the worker (or block) that failed.
	Worker int

	// Region is the fragment being processed when the failure occurred,
	// formatted as "WxH+X+Y".
	Region string

	// Err is the cause: a panic value converted to an error, or the error
	// returned by a pixel write.
	Err error
}

func (e *SchedulerError) Error() string {
	return fmt.Sprintf("fragpipe: worker %d aborted in fragment %s: %v", e.Worker, e.Region, e.Err)
}

// Unwrap returns both ErrScheduler and the underlying cause.
func (e *SchedulerError) Unwrap() []error { return []error{ErrScheduler, e.Err} }

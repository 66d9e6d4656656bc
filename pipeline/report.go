package pipeline

import (
	"fmt"
	"time"

	"github.com/google/uuid"
)

// Status is the result of one task in a run.
type Status uint8

const (
	StatusSucceeded Status = iota
	StatusFailed
	StatusSkipped
)

// String returns "OK", "Failed" or "Skipped".
func (s Status) String() string {
	switch s {
	case StatusSucceeded:
		return "OK"
	case StatusFailed:
		return "Failed"
	case StatusSkipped:
		return "Skipped"
	default:
		return fmt.Sprintf("Status(%d)", uint8(s))
	}
}

// Outcome records what happened to one task.
type Outcome struct {
	Index       int
	Kind        Kind
	Description string
	Status      Status
	Duration    time.Duration

	// Message is the error text for failed tasks and empty otherwise.
	Message string
	Err     error
}

// Report is the ordered record of a pipeline run.
type Report struct {
	RunID    uuid.UUID
	Started  time.Time
	Elapsed  time.Duration
	Outcomes []Outcome
}

// OK reports whether every task succeeded.
func (r *Report) OK() bool {
	_, failed := r.Failed()
	return !failed && !r.hasSkipped()
}

// Failed returns the failing task's outcome, if any.
func (r *Report) Failed() (*Outcome, bool) {
	for i := range r.Outcomes {
		if r.Outcomes[i].Status == StatusFailed {
			return &r.Outcomes[i], true
		}
	}
	return nil, false
}

// Err returns a *TaskError for the failing task, or nil.
func (r *Report) Err() error {
	o, ok := r.Failed()
	if !ok {
		return nil
	}
	return &TaskError{Index: o.Index, Description: o.Description, Err: o.Err}
}

// Executed returns the number of tasks that ran, including a failed one.
func (r *Report) Executed() int {
	n := 0
	for _, o := range r.Outcomes {
		if o.Status != StatusSkipped {
			n++
		}
	}
	return n
}

func (r *Report) hasSkipped() bool {
	return r.Executed() != len(r.Outcomes)
}

// TaskError reports the failure of the task at Index.
type TaskError struct {
	Index       int
	Description string
	Err         error
}

func (e *TaskError) Error() string {
	return fmt.Sprintf("pipeline: task %d (%s): %v", e.Index, e.Description, e.Err)
}

func (e *TaskError) Unwrap() error { return e.Err }

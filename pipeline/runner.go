package pipeline

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"

	"github.com/gogpu/fragpipe"
)

// ErrCanceled is the cause recorded when the context is canceled between
// tasks.
var ErrCanceled = errors.New("pipeline: run canceled")

// Runner executes tasks in order and stops at the first failure.
//
// Thread safety: a Runner may be shared, but each Run owns its own
// AccessContext and must not overlap another run on the same context.
type Runner struct {
	// OnOutcome, if set, is called after each task finishes or is skipped.
	OnOutcome func(Outcome)
}

// Run executes tasks against a fresh AccessContext, which is closed when
// the run ends. See RunWith.
func (r *Runner) Run(ctx context.Context, tasks []Task) (*Report, error) {
	ac := fragpipe.NewAccessContext()
	defer ac.Close()
	return r.RunWith(ctx, ac, tasks)
}

// RunWith executes tasks against ac in order.
//
// Each task's wall-clock duration is recorded. When a task fails, the
// remaining tasks are recorded as skipped and the returned error is a
// *TaskError for the failing task. Cancellation of ctx is checked before
// each task and fails the task about to start. The report is returned in
// every case.
func (r *Runner) RunWith(ctx context.Context, ac *fragpipe.AccessContext, tasks []Task) (*Report, error) {
	if ctx == nil {
		ctx = context.Background()
	}

	report := &Report{
		RunID:    uuid.New(),
		Started:  time.Now(),
		Outcomes: make([]Outcome, 0, len(tasks)),
	}
	log := fragpipe.Logger().With("run_id", report.RunID.String())
	log.Debug("pipeline: run started", "tasks", len(tasks))

	failed := false
	for i, task := range tasks {
		o := Outcome{Index: i, Kind: task.Kind(), Description: task.String()}

		switch {
		case failed:
			o.Status = StatusSkipped
		case ctx.Err() != nil:
			o.Status = StatusFailed
			o.Err = errors.Join(ErrCanceled, context.Cause(ctx))
		default:
			start := time.Now()
			o.Err = task.Execute(ac)
			o.Duration = time.Since(start)
			if o.Err != nil {
				o.Status = StatusFailed
			}
		}

		if o.Status == StatusFailed {
			failed = true
			o.Message = o.Err.Error()
			log.Warn("pipeline: task failed", "index", i, "task", o.Description, "elapsed", o.Duration, "error", o.Err)
		} else if o.Status == StatusSucceeded {
			log.Info("pipeline: task done", "index", i, "task", o.Description, "elapsed", o.Duration)
		}

		report.Outcomes = append(report.Outcomes, o)
		if r.OnOutcome != nil {
			r.OnOutcome(o)
		}
	}

	report.Elapsed = time.Since(report.Started)
	log.Debug("pipeline: run finished", "ok", !failed, "elapsed", report.Elapsed)
	return report, report.Err()
}

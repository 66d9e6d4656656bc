package parallel

import (
	"fmt"
	"sync/atomic"

	"golang.org/x/sync/errgroup"
)

// RunCrew starts every worker with fn and joins them all.
//
// All workers share one abort flag: when fn fails or panics on any worker,
// the others finish their current fragment and stop. RunCrew does not return
// until every started worker has exited. The first error observed is
// returned; it is a *FragmentError or a *PanicError.
//
// Workers must be fresh. A worker that was already started makes RunCrew fail
// with ErrWorkerReused before anything is launched.
func RunCrew(workers []*Worker, fn ProcessFunc) error {
	for _, w := range workers {
		if w.started.Load() {
			return fmt.Errorf("%w: worker %d", ErrWorkerReused, w.id)
		}
	}

	var abort atomic.Bool
	var g errgroup.Group
	for _, w := range workers {
		if err := w.Start(fn, &abort); err != nil {
			abort.Store(true)
			g.Go(func() error { return err })
			continue
		}
		g.Go(w.Wait)
	}
	return g.Wait()
}

// RunGrid partitions grid over n fresh workers and runs them as a crew.
// It returns the workers so callers can inspect per-worker counters.
func RunGrid(grid *Grid, n int, fn ProcessFunc) ([]*Worker, error) {
	if n <= 0 {
		return nil, fmt.Errorf("parallel: worker count must be positive, got %d", n)
	}
	workers := NewWorkers(n)
	grid.Distribute(workers)
	return workers, RunCrew(workers, fn)
}

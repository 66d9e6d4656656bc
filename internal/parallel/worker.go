package parallel

import (
	"errors"
	"fmt"
	"runtime/debug"
	"sync"
	"sync/atomic"
)

// Worker lifecycle errors.
var (
	// ErrWorkerReused is returned when a worker is started or joined a second time.
	ErrWorkerReused = errors.New("parallel: worker already used")

	// ErrWorkerNotStarted is returned by Wait on a worker that was never started.
	ErrWorkerNotStarted = errors.New("parallel: worker not started")
)

// ProcessFunc processes one fragment on behalf of the worker with the given id.
type ProcessFunc func(workerID int, f Fragment) error

// FragmentError reports a ProcessFunc failure.
type FragmentError struct {
	Worker   int
	Fragment Fragment
	Err      error
}

func (e *FragmentError) Error() string {
	return fmt.Sprintf("parallel: worker %d, fragment %s: %v", e.Worker, e.Fragment, e.Err)
}

func (e *FragmentError) Unwrap() error { return e.Err }

// PanicError reports a panic raised while a worker processed a fragment.
// The panic value is preserved; if it is an error, Unwrap returns it.
type PanicError struct {
	Worker   int
	Fragment Fragment
	Value    any
	Stack    []byte
}

func (e *PanicError) Error() string {
	return fmt.Sprintf("parallel: worker %d panicked in fragment %s: %v", e.Worker, e.Fragment, e.Value)
}

func (e *PanicError) Unwrap() error {
	if err, ok := e.Value.(error); ok {
		return err
	}
	return nil
}

// Worker owns a FIFO queue of fragments and drains it on its own goroutine.
//
// A Worker is single-use: fill the queue, Start it once, Wait for it once,
// then discard it.
//
// Thread safety: Push, Pending, Assigned and Completed are safe for
// concurrent use. Start and Wait must each be called once.
type Worker struct {
	id int

	mu       sync.Mutex
	queue    []Fragment
	assigned int

	completed atomic.Int64
	started   atomic.Bool
	joined    atomic.Bool

	// done is closed when the goroutine exits; err is valid after that.
	done chan struct{}
	err  error
}

// NewWorker creates an idle worker with an empty queue.
func NewWorker(id int) *Worker {
	return &Worker{
		id:   id,
		done: make(chan struct{}),
	}
}

// NewWorkers creates n idle workers with ids 0..n-1.
func NewWorkers(n int) []*Worker {
	workers := make([]*Worker, n)
	for i := range n {
		workers[i] = NewWorker(i)
	}
	return workers
}

// ID returns the worker index.
func (w *Worker) ID() int {
	return w.id
}

// Push appends a fragment to the queue.
func (w *Worker) Push(f Fragment) {
	w.mu.Lock()
	w.queue = append(w.queue, f)
	w.assigned++
	w.mu.Unlock()
}

// pop removes the oldest fragment. ok is false when the queue is empty.
func (w *Worker) pop() (f Fragment, ok bool) {
	w.mu.Lock()
	defer w.mu.Unlock()

	if len(w.queue) == 0 {
		return Fragment{}, false
	}
	f = w.queue[0]
	w.queue = w.queue[1:]
	return f, true
}

// Assigned returns how many fragments were ever pushed.
func (w *Worker) Assigned() int {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.assigned
}

// Pending returns how many fragments are still queued.
func (w *Worker) Pending() int {
	w.mu.Lock()
	defer w.mu.Unlock()
	return len(w.queue)
}

// Completed returns how many fragments were fully processed.
func (w *Worker) Completed() int {
	return int(w.completed.Load())
}

// Start launches the worker goroutine. It dequeues fragments until the queue
// is empty, fn fails, or abort is set. A failing or panicking fn sets abort so
// that sibling workers sharing the flag stop at their next fragment.
// abort may be nil.
func (w *Worker) Start(fn ProcessFunc, abort *atomic.Bool) error {
	if !w.started.CompareAndSwap(false, true) {
		return fmt.Errorf("%w: start worker %d", ErrWorkerReused, w.id)
	}
	if abort == nil {
		abort = new(atomic.Bool)
	}

	go w.run(fn, abort)
	return nil
}

// run is the worker goroutine.
func (w *Worker) run(fn ProcessFunc, abort *atomic.Bool) {
	var current Fragment
	defer close(w.done)
	defer func() {
		if r := recover(); r != nil {
			w.err = &PanicError{Worker: w.id, Fragment: current, Value: r, Stack: debug.Stack()}
			abort.Store(true)
		}
	}()

	for !abort.Load() {
		f, ok := w.pop()
		if !ok {
			return
		}
		current = f
		if err := fn(w.id, f); err != nil {
			w.err = &FragmentError{Worker: w.id, Fragment: f, Err: err}
			abort.Store(true)
			return
		}
		w.completed.Add(1)
	}
}

// Wait blocks until the worker goroutine exits and returns its error.
func (w *Worker) Wait() error {
	if !w.started.Load() {
		return fmt.Errorf("%w: worker %d", ErrWorkerNotStarted, w.id)
	}
	if !w.joined.CompareAndSwap(false, true) {
		return fmt.Errorf("%w: join worker %d", ErrWorkerReused, w.id)
	}
	<-w.done
	return w.err
}

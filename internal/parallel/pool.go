package parallel

import (
	"runtime"
	"sync"
	"sync/atomic"
)

// WorkerPool is a fixed set of goroutines that execute block work items.
//
// Each goroutine owns a buffered queue. A goroutine whose queue is empty
// steals from its siblings before blocking, so a slow block does not hold
// up the blocks queued behind it. The pool size bounds how many blocks run
// at the same time.
//
// Thread safety: WorkerPool is safe for concurrent use.
type WorkerPool struct {
	// workers is the number of goroutines.
	workers int

	// queues holds one work queue per goroutine.
	queues []chan func()

	// done signals goroutines to stop.
	done chan struct{}

	// wg waits for all goroutines to exit.
	wg sync.WaitGroup

	// running is false once Close has been called.
	running atomic.Bool
}

// NewWorkerPool starts a pool with the given number of goroutines.
// If workers is 0 or negative, GOMAXPROCS is used.
func NewWorkerPool(workers int) *WorkerPool {
	if workers <= 0 {
		workers = runtime.GOMAXPROCS(0)
	}

	queueSize := max(workers*4, 8)

	p := &WorkerPool{
		workers: workers,
		queues:  make([]chan func(), workers),
		done:    make(chan struct{}),
	}
	for i := range workers {
		p.queues[i] = make(chan func(), queueSize)
	}

	p.running.Store(true)

	p.wg.Add(workers)
	for i := range workers {
		go p.loop(i)
	}

	return p
}

// loop is the body of each pool goroutine.
func (p *WorkerPool) loop(id int) {
	defer p.wg.Done()

	own := p.queues[id]

	for {
		select {
		case <-p.done:
			p.drain(own)
			return

		case work := <-own:
			if work != nil {
				work()
			}

		default:
			if stolen := p.steal(id); stolen != nil {
				stolen()
				continue
			}
			select {
			case <-p.done:
				p.drain(own)
				return
			case work := <-own:
				if work != nil {
					work()
				}
			}
		}
	}
}

// drain executes everything left in queue.
func (p *WorkerPool) drain(queue chan func()) {
	for {
		select {
		case work := <-queue:
			if work != nil {
				work()
			}
		default:
			return
		}
	}
}

// steal takes one item from another goroutine's queue, or returns nil.
func (p *WorkerPool) steal(self int) func() {
	for i := range p.workers {
		if i == self {
			continue
		}
		select {
		case work := <-p.queues[i]:
			return work
		default:
		}
	}
	return nil
}

// ExecuteAll hands the work items to the pool round-robin and blocks until
// every item has completed. It is a no-op on a closed pool.
func (p *WorkerPool) ExecuteAll(work []func()) {
	if len(work) == 0 || !p.running.Load() {
		return
	}

	var pending sync.WaitGroup
	pending.Add(len(work))

	for i, fn := range work {
		wrapped := func() {
			defer pending.Done()
			fn()
		}

		select {
		case p.queues[i%p.workers] <- wrapped:
		case <-p.done:
			pending.Done()
		}
	}

	pending.Wait()
}

// Close stops the pool after the queued work has run. Safe to call more
// than once.
func (p *WorkerPool) Close() {
	if !p.running.CompareAndSwap(true, false) {
		return
	}
	close(p.done)
	p.wg.Wait()
}

package parallel

import (
	"fmt"
	"runtime/debug"
	"sync/atomic"
)

// SplitBlocks cuts area into exactly bx×by blocks in row-major order.
//
// Block edges are spread evenly: column i spans [i*w/bx, (i+1)*w/bx). bx and
// by are clamped to [1, area.Width] and [1, area.Height] so that no block is
// empty. An empty area yields no blocks.
func SplitBlocks(area Fragment, bx, by int) []Fragment {
	if area.Empty() {
		return nil
	}
	bx = min(max(bx, 1), area.Width)
	by = min(max(by, 1), area.Height)

	blocks := make([]Fragment, 0, bx*by)
	for row := range by {
		y0 := row * area.Height / by
		y1 := (row + 1) * area.Height / by
		for col := range bx {
			x0 := col * area.Width / bx
			x1 := (col + 1) * area.Width / bx
			blocks = append(blocks, Fragment{
				X:      area.X + x0,
				Y:      area.Y + y0,
				Width:  x1 - x0,
				Height: y1 - y0,
			})
		}
	}
	return blocks
}

// RunBlocks processes each block as one work item on a WorkerPool of at most
// maxConcurrent goroutines, and waits until every block has signaled
// completion.
//
// fn receives the block index as its worker id. The first failing or
// panicking block sets an abort flag; blocks that have not started yet are
// skipped. The error of the lowest-indexed failing block is returned.
func RunBlocks(blocks []Fragment, maxConcurrent int, fn ProcessFunc) error {
	if len(blocks) == 0 {
		return nil
	}
	if maxConcurrent <= 0 {
		return fmt.Errorf("parallel: max concurrent blocks must be positive, got %d", maxConcurrent)
	}

	pool := NewWorkerPool(min(maxConcurrent, len(blocks)))
	defer pool.Close()

	var abort atomic.Bool
	errs := make([]error, len(blocks))
	work := make([]func(), len(blocks))
	for i, b := range blocks {
		work[i] = func() {
			if abort.Load() {
				return
			}
			defer func() {
				if r := recover(); r != nil {
					errs[i] = &PanicError{Worker: i, Fragment: b, Value: r, Stack: debug.Stack()}
					abort.Store(true)
				}
			}()
			if err := fn(i, b); err != nil {
				errs[i] = &FragmentError{Worker: i, Fragment: b, Err: err}
				abort.Store(true)
			}
		}
	}
	pool.ExecuteAll(work)

	for _, err := range errs {
		if err != nil {
			return err
		}
	}
	return nil
}

package fragpipe

import (
	"errors"
	"fmt"
	"image"
	"strings"
	"time"

	"github.com/gogpu/fragpipe/internal/parallel"
)

// Scheduler defaults.
const (
	DefaultWorkers        = 768
	DefaultFragmentWidth  = 16
	DefaultFragmentHeight = 16
	DefaultBlocksX        = 4
	DefaultBlocksY        = 4
	DefaultMaxConcurrent  = 8
)

// Strategy selects how a scheduler run splits its region into work.
type Strategy uint8

const (
	// StrategyFragments cuts the region into fragments of at most
	// MaxFragmentWidth×MaxFragmentHeight and deals them to Workers queues.
	StrategyFragments Strategy = iota

	// StrategyBlocks cuts the region into exactly BlocksX×BlocksY blocks,
	// one work item each, with at most MaxConcurrent running at once.
	StrategyBlocks
)

// String returns the strategy name.
func (s Strategy) String() string {
	switch s {
	case StrategyFragments:
		return "fragments"
	case StrategyBlocks:
		return "blocks"
	default:
		return fmt.Sprintf("Strategy(%d)", uint8(s))
	}
}

// ParseStrategy converts "fragments" or "blocks" to a Strategy.
func ParseStrategy(s string) (Strategy, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "fragments", "fragment":
		return StrategyFragments, nil
	case "blocks", "block":
		return StrategyBlocks, nil
	default:
		return 0, fmt.Errorf("%w: unknown strategy %q", ErrInvalidArgument, s)
	}
}

// Scheduler applies a Transform to every pixel of a source buffer in
// parallel and stores the results in a destination buffer.
//
// A run partitions the region so that every pixel belongs to exactly one
// unit of work, starts all workers together and returns only after every
// worker has exited. Workers write disjoint pixels, so no locking is done
// on the destination.
//
// Thread safety: a Scheduler holds only configuration and may be used for
// several runs, including concurrent runs over unrelated buffers.
type Scheduler struct {
	Workers           int
	MaxFragmentWidth  int
	MaxFragmentHeight int

	Strategy      Strategy
	BlocksX       int
	BlocksY       int
	MaxConcurrent int
}

// NewScheduler creates a scheduler with default settings modified by opts.
func NewScheduler(opts ...SchedulerOption) *Scheduler {
	s := &Scheduler{
		Workers:           DefaultWorkers,
		MaxFragmentWidth:  DefaultFragmentWidth,
		MaxFragmentHeight: DefaultFragmentHeight,
		Strategy:          StrategyFragments,
		BlocksX:           DefaultBlocksX,
		BlocksY:           DefaultBlocksY,
		MaxConcurrent:     DefaultMaxConcurrent,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Process runs fn over the whole of src with the fragment strategy.
func Process(src, dst *Buffer, fn Transform, workers, maxW, maxH int) error {
	s := Scheduler{
		Workers:           workers,
		MaxFragmentWidth:  maxW,
		MaxFragmentHeight: maxH,
	}
	return s.Run(src, dst, fn)
}

// Validate checks the parameters of the selected strategy.
func (s *Scheduler) Validate() error {
	switch s.Strategy {
	case StrategyFragments:
		if s.Workers <= 0 {
			return fmt.Errorf("%w: workers must be positive, got %d", ErrInvalidArgument, s.Workers)
		}
		if s.MaxFragmentWidth <= 0 || s.MaxFragmentHeight <= 0 {
			return fmt.Errorf("%w: fragment size must be positive, got %dx%d",
				ErrInvalidArgument, s.MaxFragmentWidth, s.MaxFragmentHeight)
		}
	case StrategyBlocks:
		if s.BlocksX <= 0 || s.BlocksY <= 0 {
			return fmt.Errorf("%w: block grid must be positive, got %dx%d",
				ErrInvalidArgument, s.BlocksX, s.BlocksY)
		}
		if s.MaxConcurrent <= 0 {
			return fmt.Errorf("%w: max concurrent must be positive, got %d", ErrInvalidArgument, s.MaxConcurrent)
		}
	default:
		return fmt.Errorf("%w: unknown strategy %s", ErrInvalidArgument, s.Strategy)
	}
	return nil
}

// Run processes every pixel of src.
func (s *Scheduler) Run(src, dst *Buffer, fn Transform) error {
	if src == nil {
		return fmt.Errorf("%w: nil source buffer", ErrInvalidArgument)
	}
	return s.RunRegion(src, dst, fn, src.Bounds())
}

// RunRegion processes the pixels of src inside r. r is clipped to the source
// bounds; an empty intersection is a successful no-op.
//
// src must be readable and dst writable, they must be distinct buffers, and
// dst must be at least as large as src. Violations are reported before any worker starts. A transform
// that panics aborts the run: the other workers stop at their next fragment
// boundary and RunRegion returns a *SchedulerError once all have exited.
func (s *Scheduler) RunRegion(src, dst *Buffer, fn Transform, r image.Rectangle) error {
	if err := s.check(src, dst, fn); err != nil {
		return err
	}

	r = r.Intersect(src.Bounds())
	if r.Empty() {
		return nil
	}
	area := parallel.Fragment{X: r.Min.X, Y: r.Min.Y, Width: r.Dx(), Height: r.Dy()}

	log := Logger()
	start := time.Now()
	log.Debug("fragpipe: scheduler run started",
		"strategy", s.Strategy.String(), "region", area.String(),
		"workers", s.Workers, "fragment_width", s.MaxFragmentWidth, "fragment_height", s.MaxFragmentHeight)

	var (
		err   error
		attrs []any
	)
	switch s.Strategy {
	case StrategyBlocks:
		blocks := parallel.SplitBlocks(area, s.BlocksX, s.BlocksY)
		err = parallel.RunBlocks(blocks, s.MaxConcurrent, processFragment(src, dst, fn, len(blocks)))
		attrs = []any{"blocks", len(blocks)}
	default:
		grid := parallel.NewGrid(area, s.MaxFragmentWidth, s.MaxFragmentHeight)
		var workers []*parallel.Worker
		workers, err = parallel.RunGrid(grid, s.Workers, processFragment(src, dst, fn, s.Workers))
		attrs = crewAttrs(grid, workers)
	}

	if err != nil {
		serr := schedulerError(err)
		log.Warn("fragpipe: scheduler run aborted",
			append(attrs, "error", serr, "elapsed", time.Since(start))...)
		return serr
	}

	log.Debug("fragpipe: scheduler run finished",
		append(attrs, "region", area.String(), "pixels", area.Area(), "elapsed", time.Since(start))...)
	return nil
}

// crewAttrs summarizes how the grid was spread over the workers.
func crewAttrs(grid *parallel.Grid, workers []*parallel.Worker) []any {
	var completed, pending, busiest int
	for _, w := range workers {
		completed += w.Completed()
		pending += w.Pending()
		busiest = max(busiest, w.Assigned())
	}
	return []any{
		"grid", fmt.Sprintf("%dx%d", grid.Cols(), grid.Rows()),
		"fragments", grid.Count(),
		"completed", completed,
		"pending", pending,
		"max_per_worker", busiest,
	}
}

// check validates the run preconditions.
func (s *Scheduler) check(src, dst *Buffer, fn Transform) error {
	if src == nil || dst == nil {
		return fmt.Errorf("%w: nil buffer", ErrInvalidArgument)
	}
	if src == dst {
		return fmt.Errorf("%w: source and destination are the same buffer", ErrInvalidArgument)
	}
	if fn == nil {
		return fmt.Errorf("%w: nil transform", ErrInvalidArgument)
	}
	if err := s.Validate(); err != nil {
		return err
	}
	if !src.Mode().CanRead() {
		return fmt.Errorf("source: %w", &AccessError{Op: "read", Mode: src.Mode()})
	}
	if !dst.Mode().CanWrite() {
		return fmt.Errorf("destination: %w", &AccessError{Op: "write", Mode: dst.Mode()})
	}
	if dst.Width() < src.Width() || dst.Height() < src.Height() {
		return fmt.Errorf("%w: destination %dx%d smaller than source %dx%d",
			ErrInvalidArgument, dst.Width(), dst.Height(), src.Width(), src.Height())
	}
	return nil
}

// processFragment returns the per-fragment work function shared by all
// workers of a run.
func processFragment(src, dst *Buffer, fn Transform, threads int) parallel.ProcessFunc {
	return func(id int, f parallel.Fragment) error {
		ctx := &ThreadContext{
			ThreadID:    id,
			ThreadCount: threads,
			src:         src,
			dst:         dst,
			fragment:    image.Rect(f.X, f.Y, f.X+f.Width, f.Y+f.Height),
		}
		for x, y := range f.Pixels() {
			if err := dst.Set(x, y, fn(x, y, ctx)); err != nil {
				return err
			}
		}
		return nil
	}
}

// schedulerError converts a worker failure into a *SchedulerError.
func schedulerError(err error) error {
	var fe *parallel.FragmentError
	if errors.As(err, &fe) {
		return &SchedulerError{Worker: fe.Worker, Region: fe.Fragment.String(), Err: fe.Err}
	}
	var pe *parallel.PanicError
	if errors.As(err, &pe) {
		cause, ok := pe.Value.(error)
		if !ok {
			cause = fmt.Errorf("panic: %v", pe.Value)
		}
		return &SchedulerError{Worker: pe.Worker, Region: pe.Fragment.String(), Err: cause}
	}
	return &SchedulerError{Worker: -1, Err: err}
}

package fragpipe

// SchedulerOption configures a Scheduler during creation.
//
// Example:
//
//	// Defaults: 768 workers, 16x16 fragments
//	s := fragpipe.NewScheduler()
//
//	// Eight workers over 32x32 fragments
//	s := fragpipe.NewScheduler(fragpipe.WithWorkers(8), fragpipe.WithFragmentSize(32, 32))
type SchedulerOption func(*Scheduler)

// WithWorkers sets the number of fragment workers.
func WithWorkers(n int) SchedulerOption {
	return func(s *Scheduler) {
		s.Workers = n
	}
}

// WithFragmentSize sets the maximum fragment width and height.
func WithFragmentSize(w, h int) SchedulerOption {
	return func(s *Scheduler) {
		s.MaxFragmentWidth = w
		s.MaxFragmentHeight = h
	}
}

// WithStrategy selects how the region is split into work.
func WithStrategy(st Strategy) SchedulerOption {
	return func(s *Scheduler) {
		s.Strategy = st
	}
}

// WithBlocks sets the block grid used by StrategyBlocks and switches the
// scheduler to that strategy.
//
// Example:
//
//	// 4x4 blocks, at most 8 running at once
//	s := fragpipe.NewScheduler(fragpipe.WithBlocks(4, 4), fragpipe.WithMaxConcurrent(8))
func WithBlocks(x, y int) SchedulerOption {
	return func(s *Scheduler) {
		s.Strategy = StrategyBlocks
		s.BlocksX = x
		s.BlocksY = y
	}
}

// WithMaxConcurrent caps how many blocks run at the same time under
// StrategyBlocks.
func WithMaxConcurrent(n int) SchedulerOption {
	return func(s *Scheduler) {
		s.MaxConcurrent = n
	}
}

package parallel

import (
	"errors"
	"sync"
	"sync/atomic"
	"testing"
)

// =============================================================================
// Crew Tests
// =============================================================================

func TestRunGrid_ProcessesEveryFragmentOnce(t *testing.T) {
	area := Fragment{Width: 37, Height: 23}

	for _, n := range []int{1, 2, 7, 64, 1000} {
		g := NewGrid(area, 5, 4)

		var mu sync.Mutex
		seen := make(map[Fragment]int)
		workers, err := RunGrid(g, n, func(_ int, f Fragment) error {
			mu.Lock()
			seen[f]++
			mu.Unlock()
			return nil
		})
		if err != nil {
			t.Fatalf("n=%d: RunGrid() error = %v", n, err)
		}

		if len(seen) != g.Count() {
			t.Errorf("n=%d: processed %d distinct fragments, want %d", n, len(seen), g.Count())
		}
		for f, c := range seen {
			if c != 1 {
				t.Errorf("n=%d: fragment %v processed %d times", n, f, c)
			}
		}

		completed := 0
		for _, w := range workers {
			completed += w.Completed()
		}
		if completed != g.Count() {
			t.Errorf("n=%d: workers completed %d, want %d", n, completed, g.Count())
		}
	}
}

func TestRunGrid_WorkerOwnsAssignedFragments(t *testing.T) {
	g := NewGrid(Fragment{Width: 10, Height: 10}, 4, 4)
	queues := g.Assign(4)

	var mu sync.Mutex
	got := make([][]Fragment, 4)
	_, err := RunGrid(g, 4, func(id int, f Fragment) error {
		mu.Lock()
		got[id] = append(got[id], f)
		mu.Unlock()
		return nil
	})
	if err != nil {
		t.Fatalf("RunGrid() error = %v", err)
	}

	for i := range queues {
		if len(got[i]) != len(queues[i]) {
			t.Fatalf("worker %d processed %v, want %v", i, got[i], queues[i])
		}
		for j := range queues[i] {
			if got[i][j] != queues[i][j] {
				t.Errorf("worker %d item %d = %v, want %v", i, j, got[i][j], queues[i][j])
			}
		}
	}
}

func TestRunGrid_InvalidWorkerCount(t *testing.T) {
	g := NewGrid(Fragment{Width: 4, Height: 4}, 2, 2)
	if _, err := RunGrid(g, 0, func(int, Fragment) error { return nil }); err == nil {
		t.Error("RunGrid(0 workers) should fail")
	}
}

func TestRunCrew_FirstErrorAbortsOthers(t *testing.T) {
	g := NewGrid(Fragment{Width: 64, Height: 64}, 1, 1)
	boom := errors.New("boom")

	var processed atomic.Int64
	_, err := RunGrid(g, 4, func(_ int, f Fragment) error {
		if f.X == 0 && f.Y == 0 {
			return boom
		}
		processed.Add(1)
		return nil
	})

	if !errors.Is(err, boom) {
		t.Fatalf("RunGrid() error = %v, want boom", err)
	}
	if processed.Load() >= int64(g.Count()-1) {
		t.Errorf("processed %d fragments, abort should stop workers early", processed.Load())
	}
}

func TestRunCrew_Panic(t *testing.T) {
	g := NewGrid(Fragment{Width: 8, Height: 8}, 2, 2)

	_, err := RunGrid(g, 3, func(int, Fragment) error {
		panic("transform failed")
	})

	var pe *PanicError
	if !errors.As(err, &pe) {
		t.Fatalf("RunGrid() error = %v, want *PanicError", err)
	}
	if pe.Value != "transform failed" {
		t.Errorf("panic value = %v", pe.Value)
	}
}

func TestRunCrew_RejectsStartedWorker(t *testing.T) {
	w := NewWorker(0)
	_ = w.Start(func(int, Fragment) error { return nil }, nil)
	_ = w.Wait()

	err := RunCrew([]*Worker{NewWorker(1), w}, func(int, Fragment) error { return nil })
	if !errors.Is(err, ErrWorkerReused) {
		t.Errorf("RunCrew() error = %v, want ErrWorkerReused", err)
	}
}

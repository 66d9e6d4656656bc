package parallel

// Grid cuts a rectangular area into fragments of at most cellW×cellH pixels.
//
// Cells are laid out row-major starting at the area's top-left corner. Cells
// in the last column and last row are clipped to the area, so the fragments
// never overlap and together cover every pixel of the area exactly once.
//
// Thread safety: Grid is immutable after NewGrid and safe for concurrent use.
type Grid struct {
	// area is the region being partitioned, in buffer space.
	area Fragment

	// cellW and cellH are the maximum fragment dimensions.
	cellW int
	cellH int

	// cols and rows are ceil(area.Width/cellW) and ceil(area.Height/cellH).
	cols int
	rows int
}

// NewGrid creates a grid over area with the given maximum fragment size.
// An empty area or a non-positive fragment size yields a grid with no cells.
func NewGrid(area Fragment, maxW, maxH int) *Grid {
	if area.Empty() || maxW <= 0 || maxH <= 0 {
		return &Grid{area: area, cellW: maxW, cellH: maxH}
	}

	return &Grid{
		area:  area,
		cellW: maxW,
		cellH: maxH,
		cols:  (area.Width + maxW - 1) / maxW,
		rows:  (area.Height + maxH - 1) / maxH,
	}
}

// Area returns the partitioned region.
func (g *Grid) Area() Fragment {
	return g.area
}

// Cols returns the number of fragment columns.
func (g *Grid) Cols() int {
	return g.cols
}

// Rows returns the number of fragment rows.
func (g *Grid) Rows() int {
	return g.rows
}

// Count returns the total number of fragments.
func (g *Grid) Count() int {
	return g.cols * g.rows
}

// At returns the fragment in column col and row row, clipped to the area.
// Returns an empty Fragment if the cell is outside the grid.
func (g *Grid) At(col, row int) Fragment {
	if col < 0 || col >= g.cols || row < 0 || row >= g.rows {
		return Fragment{}
	}

	x := col * g.cellW
	y := row * g.cellH
	return Fragment{
		X:      g.area.X + x,
		Y:      g.area.Y + y,
		Width:  min(g.area.Width-x, g.cellW),
		Height: min(g.area.Height-y, g.cellH),
	}
}

// ForEach calls fn for each cell in row-major order.
func (g *Grid) ForEach(fn func(col, row int, f Fragment)) {
	for row := range g.rows {
		for col := range g.cols {
			fn(col, row, g.At(col, row))
		}
	}
}

// WorkerIndex returns the worker that owns cell (col, row) when the grid is
// spread over n workers.
//
// The index is (row*areaWidth + col) mod n, where areaWidth is the width of
// the area in pixels rather than the number of columns. Assignments stay
// deterministic for a given area and worker count.
func (g *Grid) WorkerIndex(col, row, n int) int {
	if n <= 0 {
		return 0
	}
	return (row*g.area.Width + col) % n
}

// Assign groups the fragments by owning worker for n workers.
// Within each group fragments keep row-major order.
func (g *Grid) Assign(n int) [][]Fragment {
	if n <= 0 {
		return nil
	}
	queues := make([][]Fragment, n)
	g.ForEach(func(col, row int, f Fragment) {
		i := g.WorkerIndex(col, row, n)
		queues[i] = append(queues[i], f)
	})
	return queues
}

// Distribute pushes every fragment onto the queue of its owning worker.
func (g *Grid) Distribute(workers []*Worker) {
	for i, queue := range g.Assign(len(workers)) {
		for _, f := range queue {
			workers[i].Push(f)
		}
	}
}

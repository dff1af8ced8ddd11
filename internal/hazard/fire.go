// Package hazard implements the coupled fire and smoke cellular automata:
// a boolean burning raster with per-cell ignition accumulators, and a
// float smoke raster that diffuses from burning cells and decays.
package hazard

import "crowdsim/internal/nav"

// FireSpreadRate is the ignition-accumulator growth per second for a
// neighbour adjacent to a burning cell.
const FireSpreadRate = 0.18

// FireGrid tracks which cells are burning and each cell's ignition
// accumulator, at 1 m resolution aligned with the passability grid.
type FireGrid struct {
	rows, cols   int
	burning      []bool
	accum        []float64
	burningCount int
	grid         *nav.Grid

	// FireStartTime is the simulation time of the first ignition, or -1 if
	// no cell has ever burned.
	FireStartTime float64
}

// NewFireGrid builds an all-clear fire grid aligned with passable.
func NewFireGrid(passable *nav.Grid) *FireGrid {
	return &FireGrid{
		rows:          passable.Rows,
		cols:          passable.Cols,
		burning:       make([]bool, passable.Rows*passable.Cols),
		accum:         make([]float64, passable.Rows*passable.Cols),
		grid:          passable,
		FireStartTime: -1,
	}
}

func (f *FireGrid) index(row, col int) int { return row*f.cols + col }

func (f *FireGrid) inBounds(row, col int) bool {
	return row >= 0 && col >= 0 && row < f.rows && col < f.cols
}

// Burning reports whether (row, col) is currently on fire.
func (f *FireGrid) Burning(row, col int) bool {
	if !f.inBounds(row, col) {
		return false
	}
	return f.burning[f.index(row, col)]
}

// BurningCount returns the number of cells currently on fire.
func (f *FireGrid) BurningCount() int { return f.burningCount }

// Rows and Cols expose the grid dimensions for snapshot consumers.
func (f *FireGrid) Rows() int { return f.rows }
func (f *FireGrid) Cols() int { return f.cols }

// Ignite sets (row, col) burning if it is passable and not already on
// fire; only passable cells can burn. It returns true if this is the very
// first ignition the grid has ever seen.
func (f *FireGrid) Ignite(row, col int, simTime float64) (firstIgnition bool) {
	if !f.inBounds(row, col) || !f.grid.Passable(row, col) {
		return false
	}
	idx := f.index(row, col)
	if f.burning[idx] {
		return false
	}
	f.burning[idx] = true
	f.accum[idx] = 0
	f.burningCount++
	first := f.FireStartTime < 0
	if first {
		f.FireStartTime = simTime
	}
	return first
}

// Extinguish clears (row, col) and resets its accumulator.
func (f *FireGrid) Extinguish(row, col int) {
	if !f.inBounds(row, col) {
		return
	}
	idx := f.index(row, col)
	if f.burning[idx] {
		f.burning[idx] = false
		f.burningCount--
	}
	f.accum[idx] = 0
}

// ResetAccumulator zeroes a cell's accumulator without changing its
// burning state, used by the firefighter's neighbourhood damping pass.
func (f *FireGrid) ResetAccumulator(row, col int) {
	if !f.inBounds(row, col) {
		return
	}
	f.accum[f.index(row, col)] = 0
}

// Accumulator returns a cell's current ignition accumulator value.
func (f *FireGrid) Accumulator(row, col int) float64 {
	if !f.inBounds(row, col) {
		return 0
	}
	return f.accum[f.index(row, col)]
}

var fireNeighbors = [4][2]int{{-1, 0}, {1, 0}, {0, -1}, {0, 1}}

// Spread advances every burning cell's 4-neighbour propagation by dt
// seconds of simulated time. It observes the burning map as it stood at
// the start of the call; cells ignited during this call do not themselves
// spread until the next tick.
func (f *FireGrid) Spread(dt float64) {
	if f.burningCount == 0 {
		return
	}
	burningCells := make([]int, 0, f.burningCount)
	for idx, b := range f.burning {
		if b {
			burningCells = append(burningCells, idx)
		}
	}
	for _, idx := range burningCells {
		row, col := idx/f.cols, idx%f.cols
		for _, off := range fireNeighbors {
			nr, nc := row+off[0], col+off[1]
			if !f.inBounds(nr, nc) || !f.grid.Passable(nr, nc) {
				continue
			}
			nidx := f.index(nr, nc)
			if f.burning[nidx] {
				continue
			}
			f.accum[nidx] += dt * FireSpreadRate
			if f.accum[nidx] >= 1 {
				f.burning[nidx] = true
				f.accum[nidx] = 0
				f.burningCount++
			}
		}
	}
}

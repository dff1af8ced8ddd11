// Package nav implements the passability grid and the A* path planner
// agents and firefighters navigate with.
package nav

import (
	"math"

	"crowdsim/internal/simconfig"
)

// CellSize is the grid resolution in metres.
const CellSize = 1.0

// Grid is a boolean passability raster over the venue, false wherever any
// wall rectangle's integer cell range covers the cell.
type Grid struct {
	Rows, Cols int
	passable   []bool
	width      float64
	height     float64
}

// BuildGrid rasterises wall rectangles into a passability grid. It is a
// pure function of its inputs and therefore idempotent.
func BuildGrid(width, height float64, walls []simconfig.Wall) *Grid {
	rows := int(math.Ceil(height))
	cols := int(math.Ceil(width))
	if rows <= 0 {
		rows = 1
	}
	if cols <= 0 {
		cols = 1
	}
	g := &Grid{Rows: rows, Cols: cols, passable: make([]bool, rows*cols), width: width, height: height}
	for i := range g.passable {
		g.passable[i] = true
	}
	for _, wall := range walls {
		minCol := int(math.Floor(wall.Rect.X))
		minRow := int(math.Floor(wall.Rect.Y))
		maxCol := int(math.Floor(wall.Rect.X + wall.Rect.Width))
		maxRow := int(math.Floor(wall.Rect.Y + wall.Rect.Height))
		for r := minRow; r <= maxRow; r++ {
			if r < 0 || r >= rows {
				continue
			}
			for c := minCol; c <= maxCol; c++ {
				if c < 0 || c >= cols {
					continue
				}
				g.passable[r*cols+c] = false
			}
		}
	}
	return g
}

func (g *Grid) index(row, col int) int { return row*g.Cols + col }

// Width and Height return the venue dimensions the grid was built from, in
// world-space metres.
func (g *Grid) Width() float64  { return g.width }
func (g *Grid) Height() float64 { return g.height }

// InBounds reports whether (row, col) addresses a real cell.
func (g *Grid) InBounds(row, col int) bool {
	return g != nil && row >= 0 && col >= 0 && row < g.Rows && col < g.Cols
}

// Passable reports whether (row, col) is walkable. Out-of-bounds cells are
// never passable.
func (g *Grid) Passable(row, col int) bool {
	if !g.InBounds(row, col) {
		return false
	}
	return g.passable[g.index(row, col)]
}

// CellOf returns the row/col containing the world point (x, y).
func (g *Grid) CellOf(x, y float64) (row, col int) {
	return int(math.Floor(y)), int(math.Floor(x))
}

// CellCenter returns the world-space centre of cell (row, col).
func (g *Grid) CellCenter(row, col int) (x, y float64) {
	return float64(col) + 0.5, float64(row) + 0.5
}

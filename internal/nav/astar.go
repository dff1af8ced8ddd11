package nav

import (
	"container/heap"
	"math"

	"crowdsim/internal/geom"
)

type cell struct{ row, col int }

var neighborOffsets = [8]struct {
	dRow, dCol int
	cost       float64
}{
	{-1, 0, 1}, {1, 0, 1}, {0, -1, 1}, {0, 1, 1},
	{-1, -1, math.Sqrt2}, {-1, 1, math.Sqrt2}, {1, -1, math.Sqrt2}, {1, 1, math.Sqrt2},
}

type pathNode struct {
	cell   cell
	g, f   float64
	index  int
	parent *pathNode
}

type pathQueue []*pathNode

func (pq pathQueue) Len() int            { return len(pq) }
func (pq pathQueue) Less(i, j int) bool  { return pq[i].f < pq[j].f }
func (pq pathQueue) Swap(i, j int)       { pq[i], pq[j] = pq[j], pq[i]; pq[i].index = i; pq[j].index = j }
func (pq *pathQueue) Push(x any)         { n := *pq; item := x.(*pathNode); item.index = len(n); *pq = append(n, item) }
func (pq *pathQueue) Pop() any {
	old := *pq
	n := len(old)
	item := old[n-1]
	old[n-1] = nil
	item.index = -1
	*pq = old[:n-1]
	return item
}

func euclidean(a, b cell) float64 {
	dr := float64(a.row - b.row)
	dc := float64(a.col - b.col)
	return math.Hypot(dr, dc)
}

// Planner runs 8-connected A* over a fixed grid.
type Planner struct {
	grid *Grid
}

// NewPlanner builds a planner bound to grid.
func NewPlanner(grid *Grid) *Planner {
	return &Planner{grid: grid}
}

// Plan finds a path from startWorld to goalWorld. The returned path is the
// pruned sequence of cell-centre waypoints with the exact goal as its final
// element; it is empty only when start and goal share a cell.
func (p *Planner) Plan(startWorld, goalWorld geom.Vec2) []geom.Vec2 {
	g := p.grid
	startRow, startCol := g.CellOf(startWorld.X, startWorld.Y)
	goalRow, goalCol := g.CellOf(goalWorld.X, goalWorld.Y)

	if !g.Passable(startRow, startCol) {
		return []geom.Vec2{goalWorld}
	}

	if !g.Passable(goalRow, goalCol) {
		var ok bool
		goalRow, goalCol, ok = p.repairGoal(goalRow, goalCol)
		if !ok {
			return []geom.Vec2{goalWorld}
		}
	}

	start := cell{startRow, startCol}
	goal := cell{goalRow, goalCol}
	if start == goal {
		return nil
	}

	nodes, found := p.search(start, goal)
	if !found {
		return []geom.Vec2{goalWorld}
	}

	waypoints := make([]geom.Vec2, 0, len(nodes))
	for _, c := range nodes {
		x, y := g.CellCenter(c.row, c.col)
		waypoints = append(waypoints, geom.Vec2{X: x, Y: y})
	}
	pruned := prune(waypoints)
	if len(pruned) == 0 {
		return []geom.Vec2{goalWorld}
	}
	pruned[len(pruned)-1] = goalWorld
	return pruned
}

// repairGoal searches a 7x7 window around a blocked goal cell for the
// nearest passable cell by squared distance.
func (p *Planner) repairGoal(row, col int) (int, int, bool) {
	g := p.grid
	bestDist := math.MaxFloat64
	bestRow, bestCol := 0, 0
	found := false
	for dr := -3; dr <= 3; dr++ {
		for dc := -3; dc <= 3; dc++ {
			r, c := row+dr, col+dc
			if !g.Passable(r, c) {
				continue
			}
			d := float64(dr*dr + dc*dc)
			if d < bestDist {
				bestDist = d
				bestRow, bestCol = r, c
				found = true
			}
		}
	}
	return bestRow, bestCol, found
}

func (p *Planner) search(start, goal cell) ([]cell, bool) {
	g := p.grid
	open := &pathQueue{}
	heap.Init(open)
	startNode := &pathNode{cell: start, g: 0, f: euclidean(start, goal)}
	heap.Push(open, startNode)
	gScore := map[cell]float64{start: 0}
	closed := make(map[cell]struct{})

	for open.Len() > 0 {
		current := heap.Pop(open).(*pathNode)
		if _, seen := closed[current.cell]; seen {
			continue
		}
		closed[current.cell] = struct{}{}
		if current.cell == goal {
			return reconstruct(current), true
		}
		for _, off := range neighborOffsets {
			next := cell{current.cell.row + off.dRow, current.cell.col + off.dCol}
			if !g.Passable(next.row, next.col) {
				continue
			}
			if _, seen := closed[next]; seen {
				continue
			}
			tentativeG := current.g + off.cost
			if prev, ok := gScore[next]; ok && tentativeG >= prev {
				continue
			}
			gScore[next] = tentativeG
			heap.Push(open, &pathNode{cell: next, g: tentativeG, f: tentativeG + euclidean(next, goal), parent: current})
		}
	}
	return nil, false
}

func reconstruct(end *pathNode) []cell {
	var path []cell
	for n := end; n != nil; n = n.parent {
		path = append(path, n.cell)
	}
	for i, j := 0, len(path)-1; i < j; i, j = i+1, j-1 {
		path[i], path[j] = path[j], path[i]
	}
	return path
}

// prune drops a middle waypoint iff the cross product of the two adjacent
// segments is near zero, collapsing collinear runs into straight lines.
func prune(points []geom.Vec2) []geom.Vec2 {
	if len(points) < 3 {
		return points
	}
	out := make([]geom.Vec2, 0, len(points))
	out = append(out, points[0])
	for i := 1; i < len(points)-1; i++ {
		prev := out[len(out)-1]
		cur := points[i]
		next := points[i+1]
		v1x, v1y := cur.X-prev.X, cur.Y-prev.Y
		v2x, v2y := next.X-cur.X, next.Y-cur.Y
		cross := v1x*v2y - v1y*v2x
		if math.Abs(cross) < 1e-6 {
			continue
		}
		out = append(out, cur)
	}
	out = append(out, points[len(points)-1])
	return out
}

// Package firefighter implements the fire-response sub-agents: they spawn
// after a response delay, plan to the nearest burning cell, approach it,
// and extinguish it along with its young neighbours.
package firefighter

import (
	"math"

	"crowdsim/internal/geom"
	"crowdsim/internal/hazard"
	"crowdsim/internal/nav"
	"crowdsim/internal/simconfig"
)

// Response and extinguish tuning.
const (
	Count              = 3
	ResponseDelay      = 30.0 // seconds after first fire
	Radius             = 0.3
	DesiredSpeed       = 1.6
	SteerTau           = 0.3
	ArriveRadius       = 0.6
	ExtinguishDuration = 1.5
	HoldDamping        = 0.8
	YoungAccumLimit    = 0.6
)

// Firefighter is a firefighter sub-agent.
type Firefighter struct {
	ID  int
	Pos geom.Vec2
	Vel geom.Vec2

	HasTarget bool
	TargetRow int
	TargetCol int
	Path      []geom.Vec2
	PathIndex int

	ExtinguishTimer float64
}

// Spawn creates Count firefighters at entrances, cycled round-robin.
func Spawn(entrances []simconfig.Entrance, startID int) []*Firefighter {
	out := make([]*Firefighter, 0, Count)
	if len(entrances) == 0 {
		return out
	}
	for i := 0; i < Count; i++ {
		e := entrances[i%len(entrances)]
		out = append(out, &Firefighter{
			ID:  startID + i,
			Pos: geom.Vec2{X: e.X, Y: e.Y},
		})
	}
	return out
}

// Extinguishing reports whether the firefighter is currently holding
// position to extinguish its target cell.
func (f *Firefighter) Extinguishing() bool { return f.ExtinguishTimer > 0 }

// Update advances one firefighter by dt seconds through its
// hold/plan/approach cycle. It returns how many burning cells this call
// extinguished, zero on every tick that does not complete a hold.
func Update(f *Firefighter, fire *hazard.FireGrid, grid *nav.Grid, planner *nav.Planner, walls []simconfig.Wall, dt float64) (extinguished int) {
	if f.ExtinguishTimer > 0 {
		f.Vel = f.Vel.Scale(HoldDamping)
		f.ExtinguishTimer -= dt
		if f.ExtinguishTimer <= 0 {
			extinguished = extinguishNeighborhood(f, fire)
		}
		return extinguished
	}

	if !f.HasTarget || !fire.Burning(f.TargetRow, f.TargetCol) {
		row, col, found := nearestBurningCell(f.Pos, fire, grid)
		if !found {
			f.HasTarget = false
			f.Vel = geom.Vec2{}
			return 0
		}
		f.TargetRow, f.TargetCol = row, col
		f.HasTarget = true
		cx, cy := grid.CellCenter(row, col)
		f.Path = planner.Plan(f.Pos, geom.Vec2{X: cx, Y: cy})
		f.PathIndex = 0
		return 0
	}

	wp, ok := currentWaypoint(f)
	if !ok {
		f.ExtinguishTimer = ExtinguishDuration
		f.Vel = geom.Vec2{}
		return 0
	}

	dir := wp.Sub(f.Pos).Unit()
	desired := dir.Scale(DesiredSpeed)
	accel := desired.Sub(f.Vel).Scale(1 / SteerTau)
	f.Vel = f.Vel.Add(accel.Scale(dt))
	if speed := f.Vel.Len(); speed > DesiredSpeed && speed > 0 {
		f.Vel = f.Vel.Scale(DesiredSpeed / speed)
	}
	f.Pos = f.Pos.Add(f.Vel.Scale(dt))
	resolveWallPenetration(f, grid, walls)

	if f.Pos.Dist(wp) <= ArriveRadius {
		f.PathIndex++
		if f.PathIndex >= len(f.Path) {
			f.ExtinguishTimer = ExtinguishDuration
			f.Vel = geom.Vec2{}
		}
	}
	return 0
}

func currentWaypoint(f *Firefighter) (geom.Vec2, bool) {
	if f.PathIndex >= len(f.Path) {
		return geom.Vec2{}, false
	}
	return f.Path[f.PathIndex], true
}

var eightNeighbors = [8][2]int{
	{-1, 0}, {1, 0}, {0, -1}, {0, 1},
	{-1, -1}, {-1, 1}, {1, -1}, {1, 1},
}

// extinguishNeighborhood extinguishes the target cell and any young
// (accum < 0.6) burning neighbour, resetting every neighbour's accumulator
// regardless. It returns the number of cells it put out.
func extinguishNeighborhood(f *Firefighter, fire *hazard.FireGrid) int {
	count := 0
	if fire.Burning(f.TargetRow, f.TargetCol) {
		count++
	}
	fire.Extinguish(f.TargetRow, f.TargetCol)
	for _, off := range eightNeighbors {
		nr, nc := f.TargetRow+off[0], f.TargetCol+off[1]
		if fire.Burning(nr, nc) && fire.Accumulator(nr, nc) < YoungAccumLimit {
			fire.Extinguish(nr, nc)
			count++
		}
		fire.ResetAccumulator(nr, nc)
	}
	f.HasTarget = false
	return count
}

func nearestBurningCell(pos geom.Vec2, fire *hazard.FireGrid, grid *nav.Grid) (int, int, bool) {
	bestDist := math.MaxFloat64
	bestRow, bestCol := 0, 0
	found := false
	for row := 0; row < fire.Rows(); row++ {
		for col := 0; col < fire.Cols(); col++ {
			if !fire.Burning(row, col) {
				continue
			}
			cx, cy := grid.CellCenter(row, col)
			d := pos.DistSq(geom.Vec2{X: cx, Y: cy})
			if d < bestDist {
				bestDist = d
				bestRow, bestCol = row, col
				found = true
			}
		}
	}
	return bestRow, bestCol, found
}

// resolveWallPenetration applies the same shortest-axis wall pushout as
// agents; firefighters never participate in social forces.
func resolveWallPenetration(f *Firefighter, grid *nav.Grid, walls []simconfig.Wall) {
	for _, w := range walls {
		r := w.Rect
		if f.Pos.X+Radius <= r.X || f.Pos.X-Radius >= r.X+r.Width ||
			f.Pos.Y+Radius <= r.Y || f.Pos.Y-Radius >= r.Y+r.Height {
			continue
		}
		left := f.Pos.X + Radius - r.X
		right := (r.X + r.Width) - (f.Pos.X - Radius)
		top := f.Pos.Y + Radius - r.Y
		bottom := (r.Y + r.Height) - (f.Pos.Y - Radius)

		min := left
		axis := 0
		if right < min {
			min, axis = right, 1
		}
		if top < min {
			min, axis = top, 2
		}
		if bottom < min {
			min, axis = bottom, 3
		}

		switch axis {
		case 0:
			f.Pos.X = r.X - Radius
			if f.Vel.X > 0 {
				f.Vel.X = 0
			}
		case 1:
			f.Pos.X = r.X + r.Width + Radius
			if f.Vel.X < 0 {
				f.Vel.X = 0
			}
		case 2:
			f.Pos.Y = r.Y - Radius
			if f.Vel.Y > 0 {
				f.Vel.Y = 0
			}
		case 3:
			f.Pos.Y = r.Y + r.Height + Radius
			if f.Vel.Y < 0 {
				f.Vel.Y = 0
			}
		}
	}
	f.Pos = geom.Clamp(f.Pos, Radius, Radius, grid.Width()-Radius, grid.Height()-Radius)
}

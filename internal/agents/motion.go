package agents

import (
	"math"

	"crowdsim/internal/geom"
	"crowdsim/internal/hazard"
	"crowdsim/internal/nav"
	"crowdsim/internal/simconfig"
)

// Force-model constants.
const (
	SteeringTau = 0.5

	AgentRepulsionA = 2.0
	AgentRepulsionB = 0.15

	WallRepulsionA     = 3.0
	WallRepulsionB     = 0.1
	WallRepulsionRange = 1.5

	FireRepulsionCoeff = 10.0
	FireRepulsionDecay = 0.4
	fireScanCells      = 6

	WaypointArriveRadius = 0.6
	MaxSpeedFactor       = 1.5

	StuckSpeedThreshold = 0.05
	StuckTimeLimit      = 2.5

	smokeSlowThreshold = 0.15
	smokeSlowFloor     = 0.35
	smokeSlowSlope     = 0.65
)

// Neighbor is the data the spatial hash gives the force model about a
// nearby agent. Firefighters are not in the hash and never appear here.
type Neighbor struct {
	Pos    geom.Vec2
	Radius float64
}

// DesiredVelocity computes v_des toward the agent's current waypoint,
// slowed once local smoke passes the visibility threshold (never below
// 35% of desired speed).
func DesiredVelocity(a *Agent, localSmoke float64) geom.Vec2 {
	wp, ok := a.CurrentWaypoint()
	if !ok {
		return geom.Vec2{}
	}
	dir := wp.Sub(a.Pos).Unit()
	if dir == (geom.Vec2{}) {
		return geom.Vec2{}
	}
	smokeFactor := 1.0
	if localSmoke > smokeSlowThreshold {
		smokeFactor = math.Max(smokeSlowFloor, 1-localSmoke*smokeSlowSlope)
	}
	return dir.Scale(a.DesiredSpeed * smokeFactor)
}

// AdvanceWaypoint moves the path cursor forward when within arrival range
// of the current waypoint. It reports whether the agent has just reached
// the end of its path.
func AdvanceWaypoint(a *Agent) (endOfPath bool) {
	wp, ok := a.CurrentWaypoint()
	if !ok {
		return false
	}
	if a.Pos.Dist(wp) <= WaypointArriveRadius {
		a.PathIndex++
		if a.PathIndex >= len(a.Path) {
			return true
		}
	}
	return false
}

// ComputeAcceleration sums the four force terms: steering, agent
// repulsion, wall repulsion, and fire repulsion.
func ComputeAcceleration(a *Agent, desiredVel geom.Vec2, neighbors []Neighbor, walls []simconfig.Wall, fire *hazard.FireGrid, grid *nav.Grid, avoidanceStrength, personalSpace float64) geom.Vec2 {
	var force geom.Vec2

	force = force.Add(desiredVel.Sub(a.Vel).Scale(1 / SteeringTau))

	for _, n := range neighbors {
		d := a.Pos.Dist(n.Pos)
		if d < 1e-9 {
			continue
		}
		overlap := (a.Radius + n.Radius) - d
		if overlap <= -2*personalSpace {
			continue
		}
		dir := a.Pos.Sub(n.Pos).Unit()
		mag := AgentRepulsionA * avoidanceStrength * math.Exp(overlap/AgentRepulsionB)
		force = force.Add(dir.Scale(mag))
	}

	for _, w := range walls {
		closest := closestPointOnRect(a.Pos, w.Rect)
		d := a.Pos.Dist(closest)
		if d < 1e-9 || d >= WallRepulsionRange {
			continue
		}
		dir := a.Pos.Sub(closest).Unit()
		mag := WallRepulsionA * math.Exp((a.Radius-d)/WallRepulsionB)
		force = force.Add(dir.Scale(mag))
	}

	if fire != nil && grid != nil {
		force = force.Add(fireRepulsion(a, fire, grid))
	}

	return force
}

func fireRepulsion(a *Agent, fire *hazard.FireGrid, grid *nav.Grid) geom.Vec2 {
	var force geom.Vec2
	centerRow, centerCol := grid.CellOf(a.Pos.X, a.Pos.Y)
	for dr := -fireScanCells; dr <= fireScanCells; dr++ {
		for dc := -fireScanCells; dc <= fireScanCells; dc++ {
			row, col := centerRow+dr, centerCol+dc
			if !fire.Burning(row, col) {
				continue
			}
			cx, cy := grid.CellCenter(row, col)
			cell := geom.Vec2{X: cx, Y: cy}
			d := a.Pos.Dist(cell)
			if d < 1e-9 {
				continue
			}
			dir := a.Pos.Sub(cell).Unit()
			mag := FireRepulsionCoeff * math.Exp(-d/FireRepulsionDecay)
			force = force.Add(dir.Scale(mag))
		}
	}
	return force
}

func closestPointOnRect(p geom.Vec2, r simconfig.Rect) geom.Vec2 {
	return geom.Vec2{
		X: clampf(p.X, r.X, r.X+r.Width),
		Y: clampf(p.Y, r.Y, r.Y+r.Height),
	}
}

func clampf(v, lo, hi float64) float64 {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}

// Integrate advances velocity and position by dt, clamps speed and venue
// bounds, then resolves wall penetration by shortest-axis pushout while
// zeroing the velocity component that drove the agent into the wall.
func Integrate(a *Agent, force geom.Vec2, dt, width, height float64, walls []simconfig.Wall) {
	a.Vel = a.Vel.Add(force.Scale(dt))
	maxSpeed := MaxSpeedFactor * a.DesiredSpeed
	if speed := a.Vel.Len(); speed > maxSpeed && speed > 0 {
		a.Vel = a.Vel.Scale(maxSpeed / speed)
	}
	a.Pos = a.Pos.Add(a.Vel.Scale(dt))
	a.Pos = geom.Clamp(a.Pos, a.Radius, a.Radius, width-a.Radius, height-a.Radius)

	resolveWallPenetration(a, walls, width, height)

	moved := a.Pos.Dist(a.lastPos)
	if a.Vel.Len() < StuckSpeedThreshold {
		a.StuckTime += dt
	} else if moved > 1e-6 {
		a.StuckTime = 0
	}
	a.lastPos = a.Pos
}

// resolveWallPenetration pushes the agent out of any overlapping wall
// along the shortest axis and zeroes the velocity component pointed back
// into the wall.
func resolveWallPenetration(a *Agent, walls []simconfig.Wall, width, height float64) {
	for _, w := range walls {
		r := w.Rect
		if a.Pos.X+a.Radius <= r.X || a.Pos.X-a.Radius >= r.X+r.Width ||
			a.Pos.Y+a.Radius <= r.Y || a.Pos.Y-a.Radius >= r.Y+r.Height {
			continue
		}
		left := a.Pos.X + a.Radius - r.X
		right := (r.X + r.Width) - (a.Pos.X - a.Radius)
		top := a.Pos.Y + a.Radius - r.Y
		bottom := (r.Y + r.Height) - (a.Pos.Y - a.Radius)

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
			a.Pos.X = r.X - a.Radius
			if a.Vel.X > 0 {
				a.Vel.X = 0
			}
		case 1:
			a.Pos.X = r.X + r.Width + a.Radius
			if a.Vel.X < 0 {
				a.Vel.X = 0
			}
		case 2:
			a.Pos.Y = r.Y - a.Radius
			if a.Vel.Y > 0 {
				a.Vel.Y = 0
			}
		case 3:
			a.Pos.Y = r.Y + r.Height + a.Radius
			if a.Vel.Y < 0 {
				a.Vel.Y = 0
			}
		}
	}
	a.Pos = geom.Clamp(a.Pos, a.Radius, a.Radius, width-a.Radius, height-a.Radius)
}

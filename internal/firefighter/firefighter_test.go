package firefighter

import (
	"testing"

	"crowdsim/internal/geom"
	"crowdsim/internal/hazard"
	"crowdsim/internal/nav"
	"crowdsim/internal/simconfig"
)

func newTestGrid() (*nav.Grid, *hazard.FireGrid) {
	grid := nav.BuildGrid(10, 10, nil)
	fire := hazard.NewFireGrid(grid)
	return grid, fire
}

func TestSpawnRoundRobin(t *testing.T) {
	entrances := []simconfig.Entrance{
		{ID: "e1", X: 1, Y: 0},
		{ID: "e2", X: 9, Y: 0},
	}
	fighters := Spawn(entrances, 100)
	if len(fighters) != Count {
		t.Fatalf("expected %d firefighters, got %d", Count, len(fighters))
	}
	if fighters[0].Pos != (geom.Vec2{X: 1, Y: 0}) {
		t.Fatalf("expected first firefighter at entrance e1, got %v", fighters[0].Pos)
	}
	if fighters[1].Pos != (geom.Vec2{X: 9, Y: 0}) {
		t.Fatalf("expected second firefighter cycled to entrance e2, got %v", fighters[1].Pos)
	}
	if fighters[2].Pos != (geom.Vec2{X: 1, Y: 0}) {
		t.Fatalf("expected third firefighter to wrap back to entrance e1, got %v", fighters[2].Pos)
	}
}

func TestFirefighterPlansTowardNearestFire(t *testing.T) {
	grid, fire := newTestGrid()
	fire.Ignite(8, 8, 0)
	planner := nav.NewPlanner(grid)

	f := &Firefighter{ID: 1, Pos: geom.Vec2{X: 0.5, Y: 0.5}}
	Update(f, fire, grid, planner, nil, 0.05)

	if !f.HasTarget {
		t.Fatalf("expected firefighter to acquire a target")
	}
	if f.TargetRow != 8 || f.TargetCol != 8 {
		t.Fatalf("expected target at burning cell (8,8), got (%d,%d)", f.TargetRow, f.TargetCol)
	}
	if len(f.Path) == 0 {
		t.Fatalf("expected a planned path toward the fire")
	}
}

func TestFirefighterExtinguishesAfterArriving(t *testing.T) {
	grid, fire := newTestGrid()
	fire.Ignite(1, 1, 0)
	planner := nav.NewPlanner(grid)

	cx, cy := grid.CellCenter(1, 1)
	f := &Firefighter{
		ID:        1,
		Pos:       geom.Vec2{X: cx, Y: cy},
		HasTarget: true,
		TargetRow: 1,
		TargetCol: 1,
		Path:      []geom.Vec2{{X: cx, Y: cy}},
		PathIndex: 0,
	}

	Update(f, fire, grid, planner, nil, 0.05)
	if !f.Extinguishing() {
		t.Fatalf("expected firefighter to begin its extinguish hold on arrival")
	}

	for f.ExtinguishTimer > 0 {
		Update(f, fire, grid, planner, nil, 0.1)
	}

	if fire.Burning(1, 1) {
		t.Fatalf("expected target cell to be extinguished once the hold completes")
	}
	if f.HasTarget {
		t.Fatalf("expected firefighter to drop its target once extinguished")
	}
}

func TestFirefighterHoldsPositionWhileExtinguishing(t *testing.T) {
	grid, fire := newTestGrid()
	f := &Firefighter{
		ID:              1,
		Pos:             geom.Vec2{X: 5, Y: 5},
		Vel:             geom.Vec2{X: 1, Y: 0},
		ExtinguishTimer: ExtinguishDuration,
	}
	planner := nav.NewPlanner(grid)
	Update(f, fire, grid, planner, nil, 0.1)

	if f.Pos != (geom.Vec2{X: 5, Y: 5}) {
		t.Fatalf("expected firefighter to hold position, got %v", f.Pos)
	}
	if f.Vel.Len() >= 1.0 {
		t.Fatalf("expected velocity to be damped while extinguishing, got %v", f.Vel)
	}
}

package nav

import (
	"testing"

	"crowdsim/internal/geom"
	"crowdsim/internal/simconfig"
)

func TestBuildGridMarksWallCellsImpassable(t *testing.T) {
	walls := []simconfig.Wall{
		{ID: "w1", Rect: simconfig.Rect{X: 3, Y: 4, Width: 2, Height: 1}},
	}
	g := BuildGrid(10, 10, walls)

	if g.Rows != 10 || g.Cols != 10 {
		t.Fatalf("expected a 10x10 grid, got %dx%d", g.Rows, g.Cols)
	}
	for col := 3; col <= 5; col++ {
		if g.Passable(4, col) {
			t.Fatalf("expected cell (4,%d) under the wall to be impassable", col)
		}
	}
	if !g.Passable(4, 2) || !g.Passable(3, 3) {
		t.Fatalf("expected cells adjacent to the wall to stay passable")
	}
}

func TestBuildGridIsIdempotent(t *testing.T) {
	walls := []simconfig.Wall{
		{ID: "w1", Rect: simconfig.Rect{X: 1, Y: 1, Width: 3, Height: 3}},
	}
	a := BuildGrid(8, 8, walls)
	b := BuildGrid(8, 8, walls)
	for row := 0; row < a.Rows; row++ {
		for col := 0; col < a.Cols; col++ {
			if a.Passable(row, col) != b.Passable(row, col) {
				t.Fatalf("expected identical grids from identical inputs at (%d,%d)", row, col)
			}
		}
	}
}

func TestGridOutOfBoundsIsImpassable(t *testing.T) {
	g := BuildGrid(5, 5, nil)
	for _, c := range [][2]int{{-1, 0}, {0, -1}, {5, 0}, {0, 5}} {
		if g.Passable(c[0], c[1]) {
			t.Fatalf("expected out-of-bounds cell (%d,%d) to be impassable", c[0], c[1])
		}
	}
}

func TestPlanReturnsPassableWaypoints(t *testing.T) {
	walls := []simconfig.Wall{
		{ID: "w1", Rect: simconfig.Rect{X: 4, Y: 0, Width: 1, Height: 7}},
	}
	g := BuildGrid(10, 10, walls)
	p := NewPlanner(g)

	path := p.Plan(geom.Vec2{X: 1.5, Y: 1.5}, geom.Vec2{X: 8.5, Y: 1.5})
	if len(path) == 0 {
		t.Fatalf("expected a path around the wall")
	}
	for i, wp := range path[:len(path)-1] {
		row, col := g.CellOf(wp.X, wp.Y)
		if !g.Passable(row, col) {
			t.Fatalf("waypoint %d at %v lies in an impassable cell", i, wp)
		}
	}
	last := path[len(path)-1]
	if last != (geom.Vec2{X: 8.5, Y: 1.5}) {
		t.Fatalf("expected the exact goal as the final waypoint, got %v", last)
	}
}

func TestPlanSameCellIsEmpty(t *testing.T) {
	g := BuildGrid(10, 10, nil)
	p := NewPlanner(g)
	path := p.Plan(geom.Vec2{X: 2.2, Y: 2.2}, geom.Vec2{X: 2.8, Y: 2.8})
	if len(path) != 0 {
		t.Fatalf("expected an empty path within one cell, got %v", path)
	}
}

func TestPlanBlockedStartFallsBackToDirectGoal(t *testing.T) {
	walls := []simconfig.Wall{
		{ID: "w1", Rect: simconfig.Rect{X: 2, Y: 2, Width: 0.5, Height: 0.5}},
	}
	g := BuildGrid(10, 10, walls)
	p := NewPlanner(g)
	goal := geom.Vec2{X: 8.5, Y: 8.5}
	path := p.Plan(geom.Vec2{X: 2.5, Y: 2.5}, goal)
	if len(path) != 1 || path[0] != goal {
		t.Fatalf("expected a direct [goal] path from a blocked start, got %v", path)
	}
}

func TestPlanRepairsBlockedGoal(t *testing.T) {
	walls := []simconfig.Wall{
		{ID: "w1", Rect: simconfig.Rect{X: 7, Y: 7, Width: 0.5, Height: 0.5}},
	}
	g := BuildGrid(10, 10, walls)
	p := NewPlanner(g)

	path := p.Plan(geom.Vec2{X: 1.5, Y: 1.5}, geom.Vec2{X: 7.5, Y: 7.5})
	if len(path) == 0 {
		t.Fatalf("expected a path toward a repaired goal cell")
	}
	for _, wp := range path[:len(path)-1] {
		row, col := g.CellOf(wp.X, wp.Y)
		if !g.Passable(row, col) {
			t.Fatalf("waypoint %v lies in an impassable cell", wp)
		}
	}
}

func TestPruneCollapsesCollinearRuns(t *testing.T) {
	g := BuildGrid(20, 20, nil)
	p := NewPlanner(g)

	path := p.Plan(geom.Vec2{X: 0.5, Y: 0.5}, geom.Vec2{X: 15.5, Y: 0.5})
	if len(path) > 2 {
		t.Fatalf("expected a straight corridor to prune to at most 2 waypoints, got %d: %v", len(path), path)
	}
}

// Package geom holds the small shared coordinate types used across the
// kernel's subsystems.
package geom

import "math"

// Vec2 is a world-space point or vector in metres.
type Vec2 struct {
	X, Y float64
}

// Add returns a + b.
func (a Vec2) Add(b Vec2) Vec2 { return Vec2{a.X + b.X, a.Y + b.Y} }

// Sub returns a - b.
func (a Vec2) Sub(b Vec2) Vec2 { return Vec2{a.X - b.X, a.Y - b.Y} }

// Scale returns a scaled by s.
func (a Vec2) Scale(s float64) Vec2 { return Vec2{a.X * s, a.Y * s} }

// Len returns the Euclidean length of a.
func (a Vec2) Len() float64 { return math.Hypot(a.X, a.Y) }

// Dist returns the Euclidean distance between a and b.
func (a Vec2) Dist(b Vec2) float64 { return a.Sub(b).Len() }

// DistSq returns the squared Euclidean distance between a and b, avoiding a
// sqrt when only comparisons are needed.
func (a Vec2) DistSq(b Vec2) float64 {
	dx := a.X - b.X
	dy := a.Y - b.Y
	return dx*dx + dy*dy
}

// Unit returns the unit vector in the direction of a, or the zero vector
// when a is (near) zero length, so degenerate directions contribute no
// motion.
func (a Vec2) Unit() Vec2 {
	l := a.Len()
	if l < 1e-9 {
		return Vec2{}
	}
	return Vec2{a.X / l, a.Y / l}
}

// Clamp restricts both axes of a point to [minX, maxX] x [minY, maxY].
func Clamp(v Vec2, minX, minY, maxX, maxY float64) Vec2 {
	return Vec2{clampf(v.X, minX, maxX), clampf(v.Y, minY, maxY)}
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

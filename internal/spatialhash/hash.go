// Package spatialhash implements a uniform-grid neighbour index keyed by
// world coordinates: insert ids per tick, query a halo of buckets around a
// point, and let the caller filter by exact distance.
package spatialhash

import "math"

type cellKey struct{ cx, cy int }

// Hash buckets integer ids by the grid cell containing their last-inserted
// position. Clear must run before every tick; Insert only appends, so a
// stale hash that is never cleared would accumulate duplicate entries.
type Hash struct {
	cellSize float64
	buckets  map[cellKey][]int
}

// New constructs a Hash with the given cell size, normally twice the
// personal-space radius.
func New(cellSize float64) *Hash {
	if cellSize <= 0 {
		cellSize = 1
	}
	return &Hash{cellSize: cellSize, buckets: make(map[cellKey][]int)}
}

// Clear empties every bucket, reusing the underlying map so a rebuild
// allocates nothing in steady state.
func (h *Hash) Clear() {
	for k := range h.buckets {
		delete(h.buckets, k)
	}
}

func (h *Hash) keyOf(x, y float64) cellKey {
	return cellKey{int(math.Floor(x / h.cellSize)), int(math.Floor(y / h.cellSize))}
}

// Insert appends id to the bucket containing (x, y).
func (h *Hash) Insert(id int, x, y float64) {
	k := h.keyOf(x, y)
	h.buckets[k] = append(h.buckets[k], id)
}

// Query returns every id in the halo of buckets covering a radius-r circle
// around (x, y). Callers must filter by exact distance themselves.
func (h *Hash) Query(x, y, r float64) []int {
	center := h.keyOf(x, y)
	halo := int(math.Ceil(r / h.cellSize))
	var out []int
	for dy := -halo; dy <= halo; dy++ {
		for dx := -halo; dx <= halo; dx++ {
			k := cellKey{center.cx + dx, center.cy + dy}
			if bucket, ok := h.buckets[k]; ok {
				out = append(out, bucket...)
			}
		}
	}
	return out
}

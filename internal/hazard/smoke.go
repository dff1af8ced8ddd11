package hazard

// Smoke diffusion constants.
const (
	SmokeDiffusionRate = 0.06
	SmokeDecayRate     = 0.018
	smokeHasSmokeFloor = 0.01
)

// SmokeGrid tracks a per-cell [0,1] intensity with 4-neighbour diffusion
// and decay. Step writes into a scratch buffer and swaps, so readers never
// observe a partially-updated field and steady state allocates nothing.
type SmokeGrid struct {
	rows, cols int
	intensity  []float64
	next       []float64
	fire       *FireGrid

	// HasSmoke is true iff any cell exceeds the 0.01 floor.
	HasSmoke bool
}

// NewSmokeGrid builds an all-clear smoke grid coupled to fire.
func NewSmokeGrid(rows, cols int, fire *FireGrid) *SmokeGrid {
	return &SmokeGrid{
		rows:      rows,
		cols:      cols,
		intensity: make([]float64, rows*cols),
		next:      make([]float64, rows*cols),
		fire:      fire,
	}
}

func (s *SmokeGrid) index(row, col int) int { return row*s.cols + col }

func (s *SmokeGrid) inBounds(row, col int) bool {
	return row >= 0 && col >= 0 && row < s.rows && col < s.cols
}

// At returns the smoke intensity at (row, col), or 0 out of bounds.
func (s *SmokeGrid) At(row, col int) float64 {
	if !s.inBounds(row, col) {
		return 0
	}
	return s.intensity[s.index(row, col)]
}

var smokeNeighbors = [4][2]int{{-1, 0}, {1, 0}, {0, -1}, {0, 1}}

// Step advances smoke by dt seconds: burning cells pin at 1.0; others
// receive neighbour inflow, clamp to [0,1], then decay. It runs every
// tick, including after fire is fully extinguished, so smoke lingers and
// fades.
func (s *SmokeGrid) Step(dt float64) {
	any := false
	for row := 0; row < s.rows; row++ {
		for col := 0; col < s.cols; col++ {
			idx := s.index(row, col)
			if s.fire != nil && s.fire.Burning(row, col) {
				s.next[idx] = 1.0
				any = true
				continue
			}
			inflow := 0.0
			for _, off := range smokeNeighbors {
				nr, nc := row+off[0], col+off[1]
				if !s.inBounds(nr, nc) {
					continue
				}
				inflow += s.intensity[s.index(nr, nc)] * SmokeDiffusionRate * dt
			}
			v := s.intensity[idx] + inflow
			if v < 0 {
				v = 0
			}
			if v > 1 {
				v = 1
			}
			v *= 1 - SmokeDecayRate*dt
			if v < 0 {
				v = 0
			}
			s.next[idx] = v
			if v > smokeHasSmokeFloor {
				any = true
			}
		}
	}
	s.intensity, s.next = s.next, s.intensity
	s.HasSmoke = any
}

// Rows and Cols expose the grid dimensions for snapshot consumers.
func (s *SmokeGrid) Rows() int { return s.rows }
func (s *SmokeGrid) Cols() int { return s.cols }

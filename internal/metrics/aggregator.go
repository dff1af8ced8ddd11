// Package metrics aggregates the per-tick crowd statistics: a density
// heatmap, dwell-time accumulators against the warning/danger thresholds,
// queue-length tracking, and egress-time percentiles.
package metrics

import (
	"sort"

	"gonum.org/v1/gonum/stat"

	"crowdsim/internal/geom"
)

// Aggregator owns every running statistic a run reports.
type Aggregator struct {
	cellSize   float64
	rows, cols int
	density    []float64

	warningDensity float64
	dangerDensity  float64

	peakDensity      float64
	timeAboveWarning float64
	timeAboveDanger  float64

	maxQueueLen map[string]int
	egressTimes []float64
}

// NewAggregator builds an aggregator for a width x height venue rasterised
// at cellSize resolution.
func NewAggregator(width, height, cellSize, warningDensity, dangerDensity float64) *Aggregator {
	if cellSize <= 0 {
		cellSize = 1
	}
	cols := int(width/cellSize) + 1
	rows := int(height/cellSize) + 1
	return &Aggregator{
		cellSize:       cellSize,
		rows:           rows,
		cols:           cols,
		density:        make([]float64, rows*cols),
		warningDensity: warningDensity,
		dangerDensity:  dangerDensity,
		maxQueueLen:    make(map[string]int),
	}
}

func (m *Aggregator) index(row, col int) int { return row*m.cols + col }

func (m *Aggregator) cellOf(p geom.Vec2) (row, col int) {
	row = int(p.Y / m.cellSize)
	col = int(p.X / m.cellSize)
	if row < 0 {
		row = 0
	}
	if row >= m.rows {
		row = m.rows - 1
	}
	if col < 0 {
		col = 0
	}
	if col >= m.cols {
		col = m.cols - 1
	}
	return row, col
}

// Step rasterises positions into the density grid, in persons per square
// metre, updates the running peak, and accumulates dwell time above the
// warning and danger thresholds for dt seconds.
func (m *Aggregator) Step(dt float64, positions []geom.Vec2) {
	for i := range m.density {
		m.density[i] = 0
	}
	area := m.cellSize * m.cellSize
	for _, p := range positions {
		row, col := m.cellOf(p)
		m.density[m.index(row, col)] += 1 / area
	}

	maxThisTick := 0.0
	warningCell := false
	dangerCell := false
	for _, d := range m.density {
		if d > maxThisTick {
			maxThisTick = d
		}
		if d >= m.warningDensity {
			warningCell = true
		}
		if d >= m.dangerDensity {
			dangerCell = true
		}
	}
	if maxThisTick > m.peakDensity {
		m.peakDensity = maxThisTick
	}
	if warningCell {
		m.timeAboveWarning += dt
	}
	if dangerCell {
		m.timeAboveDanger += dt
	}
}

// Rows and Cols expose the density grid dimensions.
func (m *Aggregator) Rows() int { return m.rows }
func (m *Aggregator) Cols() int { return m.cols }

// DensityGrid copies the latest per-cell density raster (persons per square
// metre) into a fresh rows x cols slice-of-rows for snapshot consumers.
func (m *Aggregator) DensityGrid() [][]float64 {
	out := make([][]float64, m.rows)
	for row := 0; row < m.rows; row++ {
		rowVals := make([]float64, m.cols)
		copy(rowVals, m.density[row*m.cols:(row+1)*m.cols])
		out[row] = rowVals
	}
	return out
}

// RecordQueueLength folds length into the running maximum observed for
// attractorID.
func (m *Aggregator) RecordQueueLength(attractorID string, length int) {
	if length > m.maxQueueLen[attractorID] {
		m.maxQueueLen[attractorID] = length
	}
}

// MaxQueueLength returns the running maximum queue length ever observed for
// attractorID.
func (m *Aggregator) MaxQueueLength(attractorID string) int { return m.maxQueueLen[attractorID] }

// RecordEgress appends an agent's total egress time (seconds from spawn to
// exit) to the distribution used by P95Egress.
func (m *Aggregator) RecordEgress(seconds float64) {
	m.egressTimes = append(m.egressTimes, seconds)
}

// EgressCount returns how many agents have exited so far.
func (m *Aggregator) EgressCount() int { return len(m.egressTimes) }

// PeakDensity returns the highest per-cell density ever observed, in
// persons per square metre.
func (m *Aggregator) PeakDensity() float64 { return m.peakDensity }

// TimeAboveWarning and TimeAboveDanger return the cumulative seconds during
// which at least one cell reached or exceeded the respective threshold.
func (m *Aggregator) TimeAboveWarning() float64 { return m.timeAboveWarning }
func (m *Aggregator) TimeAboveDanger() float64  { return m.timeAboveDanger }

// P95Egress returns the 95th percentile egress time in seconds, or 0 if no
// agent has exited yet.
func (m *Aggregator) P95Egress() float64 {
	if len(m.egressTimes) == 0 {
		return 0
	}
	sorted := append([]float64(nil), m.egressTimes...)
	sort.Float64s(sorted)
	return stat.Quantile(0.95, stat.Empirical, sorted, nil)
}

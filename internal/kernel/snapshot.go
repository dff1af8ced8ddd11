package kernel

import (
	"sort"

	"crowdsim/internal/agents"
)

// AgentView is the read-only projection of one agent exposed in a
// FrameSnapshot.
type AgentView struct {
	ID     int
	X, Y   float64
	VX, VY float64
	Radius float64
	State  agents.State
}

// FirefighterView is the read-only projection of one firefighter exposed
// in a FrameSnapshot. TargetRow/TargetCol are meaningful only when
// HasTarget is set.
type FirefighterView struct {
	ID            int
	X, Y          float64
	Extinguishing bool
	HasTarget     bool
	TargetRow     int
	TargetCol     int
}

// FrameSnapshot is the kernel's complete, immutable render-frame output.
// Every slice is a fresh copy; mutating it never touches the kernel.
type FrameSnapshot struct {
	Tick       uint64
	SimTime    float64
	Running    bool
	Evacuating bool

	Agents       []AgentView
	Firefighters []FirefighterView
	BlockedExits []string

	Density                  [][]float64
	DensityRows, DensityCols int

	FireGrid           [][]bool
	FireRows, FireCols int
	BurningCellCount   int
	Smoke              [][]float64

	Metrics Metrics
}

// GetFrame builds an immutable snapshot of the current tick's state.
// Snapshots are taken between ticks; no tick is in flight while the caller
// holds one.
func (k *Kernel) GetFrame() FrameSnapshot {
	agentViews := make([]AgentView, 0, len(k.agentList))
	for _, a := range k.agentList {
		if !a.Active() {
			continue
		}
		agentViews = append(agentViews, AgentView{
			ID: a.ID, X: a.Pos.X, Y: a.Pos.Y, VX: a.Vel.X, VY: a.Vel.Y,
			Radius: a.Radius, State: a.State,
		})
	}

	ffViews := make([]FirefighterView, 0, len(k.firefighters))
	for _, f := range k.firefighters {
		ffViews = append(ffViews, FirefighterView{
			ID: f.ID, X: f.Pos.X, Y: f.Pos.Y,
			Extinguishing: f.Extinguishing(),
			HasTarget:     f.HasTarget,
			TargetRow:     f.TargetRow,
			TargetCol:     f.TargetCol,
		})
	}

	blocked := make([]string, 0, len(k.blockedExits))
	for id := range k.blockedExits {
		blocked = append(blocked, id)
	}
	sort.Strings(blocked)

	fireGrid := make([][]bool, k.fire.Rows())
	for row := range fireGrid {
		rowVals := make([]bool, k.fire.Cols())
		for col := range rowVals {
			rowVals[col] = k.fire.Burning(row, col)
		}
		fireGrid[row] = rowVals
	}

	smoke := make([][]float64, k.smoke.Rows())
	for row := range smoke {
		rowVals := make([]float64, k.smoke.Cols())
		for col := range rowVals {
			rowVals[col] = k.smoke.At(row, col)
		}
		smoke[row] = rowVals
	}

	return FrameSnapshot{
		Tick:             k.tick,
		SimTime:          k.simTime,
		Running:          k.running,
		Evacuating:       k.evacuationTriggered,
		Agents:           agentViews,
		Firefighters:     ffViews,
		BlockedExits:     blocked,
		Density:          k.metrics.DensityGrid(),
		DensityRows:      k.metrics.Rows(),
		DensityCols:      k.metrics.Cols(),
		FireGrid:         fireGrid,
		FireRows:         k.fire.Rows(),
		FireCols:         k.fire.Cols(),
		BurningCellCount: k.fire.BurningCount(),
		Smoke:            smoke,
		Metrics:          k.GetMetrics(),
	}
}

// Metrics is the kernel's read-only metrics projection.
type Metrics struct {
	PeakDensity      float64
	TimeAboveWarning float64
	TimeAboveDanger  float64
	EgressCount      int
	P95EgressSeconds float64
	MaxQueueLength   map[string]int
}

// GetMetrics builds an immutable metrics snapshot.
func (k *Kernel) GetMetrics() Metrics {
	maxQueue := make(map[string]int, len(k.layout.Attractors))
	for _, a := range k.layout.Attractors {
		if a.Queueing {
			maxQueue[a.ID] = k.metrics.MaxQueueLength(a.ID)
		}
	}
	return Metrics{
		PeakDensity:      k.metrics.PeakDensity(),
		TimeAboveWarning: k.metrics.TimeAboveWarning(),
		TimeAboveDanger:  k.metrics.TimeAboveDanger(),
		EgressCount:      k.metrics.EgressCount(),
		P95EgressSeconds: k.metrics.P95Egress(),
		MaxQueueLength:   maxQueue,
	}
}

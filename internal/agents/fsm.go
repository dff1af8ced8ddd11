package agents

import (
	"math/rand"

	"crowdsim/internal/geom"
	"crowdsim/internal/simconfig"
)

// QueueState lets the selection helpers below see current occupancy
// without importing the queue package (which itself references Agent),
// avoiding an import cycle.
type QueueState interface {
	// Occupancy returns the number of agents queued plus being served at
	// attractorID.
	Occupancy(attractorID string) int
}

// PickAttractor performs a weighted random draw over attractors with
// non-zero weight, skipping any whose queue is enabled and full, returning
// "no target" only once none remain eligible.
func PickAttractor(rng *rand.Rand, attractors []simconfig.Attractor, queues QueueState) (string, bool) {
	candidates := make([]simconfig.Attractor, 0, len(attractors))
	for _, a := range attractors {
		if a.Weight <= 0 {
			continue
		}
		if a.Queueing && queues != nil && queues.Occupancy(a.ID) >= a.QueueCapacity {
			continue
		}
		candidates = append(candidates, a)
	}
	if len(candidates) == 0 {
		return NoTarget, false
	}

	total := 0.0
	for _, a := range candidates {
		total += a.Weight
	}
	if total <= 0 {
		return NoTarget, false
	}
	draw := rng.Float64() * total
	for _, a := range candidates {
		draw -= a.Weight
		if draw <= 0 {
			return a.ID, true
		}
	}
	return candidates[len(candidates)-1].ID, true
}

// PickExit chooses the non-blocked exit nearest pos. When every exit is
// blocked it falls back to the full exit set so the caller still has a
// plannable target, even though the agent cannot yet be absorbed.
func PickExit(pos geom.Vec2, exits []simconfig.Exit, blocked map[string]bool) (string, bool) {
	if len(exits) == 0 {
		return NoTarget, false
	}
	best, ok := nearestExit(pos, exits, blocked)
	if ok {
		return best, true
	}
	best, ok = nearestExit(pos, exits, nil)
	return best, ok
}

func nearestExit(pos geom.Vec2, exits []simconfig.Exit, blocked map[string]bool) (string, bool) {
	bestDist := -1.0
	bestID := NoTarget
	found := false
	for _, e := range exits {
		if blocked != nil && blocked[e.ID] {
			continue
		}
		d := pos.DistSq(geom.Vec2{X: e.X, Y: e.Y})
		if !found || d < bestDist {
			bestDist = d
			bestID = e.ID
			found = true
		}
	}
	return bestID, found
}

// ArrivedAtExit reports whether the agent is close enough to exit e to
// depart: within width/2 + radius + 0.3 m of the exit centre.
func ArrivedAtExit(pos geom.Vec2, e simconfig.Exit, radius float64) bool {
	threshold := e.Width/2 + radius + 0.3
	return pos.DistSq(geom.Vec2{X: e.X, Y: e.Y}) <= threshold*threshold
}

// BeginSeekingAttractor transitions a freshly spawned agent toward an
// attractor target.
func (a *Agent) BeginSeekingAttractor(attractorID string, path []geom.Vec2) {
	a.State = StateSeekingAttractor
	a.TargetAttractor = attractorID
	a.SetPath(path)
}

// BeginSeekingExitFresh transitions a freshly spawned agent (with no
// attractor target) directly toward an exit.
func (a *Agent) BeginSeekingExitFresh(exitID string, path []geom.Vec2) {
	a.State = StateSeekingExit
	a.TargetExit = exitID
	a.SetPath(path)
}

// BeginQueuing transitions an agent that reached its attractor into the
// queue for it.
func (a *Agent) BeginQueuing() {
	a.State = StateQueuing
	a.Vel = geom.Vec2{}
}

// BeginAtAttractor transitions a queued (or queue-disabled) agent into
// service.
func (a *Agent) BeginAtAttractor(serviceUntil float64) {
	a.State = StateAtAttractor
	a.ServiceUntil = serviceUntil
	a.Vel = geom.Vec2{}
}

// BeginSeekingExitFromService transitions a served agent toward an exit.
func (a *Agent) BeginSeekingExitFromService(exitID string, path []geom.Vec2) {
	a.State = StateSeekingExit
	a.TargetAttractor = NoTarget
	a.TargetExit = exitID
	a.SetPath(path)
}

// BeginEvacuating transitions any non-exited agent into evacuation,
// clearing any attractor target and multiplying its desired speed by the
// panic multiplier. It is idempotent: an agent already evacuating is left
// untouched so its speed is not multiplied twice.
func (a *Agent) BeginEvacuating(exitID string, path []geom.Vec2, panicMultiplier float64) {
	if a.State == StateEvacuating {
		return
	}
	a.State = StateEvacuating
	a.TargetAttractor = NoTarget
	a.TargetExit = exitID
	a.SetPath(path)
	a.DesiredSpeed *= panicMultiplier
}

// Exit transitions the agent to its terminal state and records its exit
// time.
func (a *Agent) Exit(now float64) {
	a.State = StateExited
	a.ExitTime = now
}

// RetargetExit swaps the agent's target exit and installs the fresh path,
// keeping its state, for re-routes after its exit is blocked.
func (a *Agent) RetargetExit(exitID string, path []geom.Vec2) {
	a.TargetExit = exitID
	a.Replan(path)
}

// Replan installs a freshly computed path without altering state, used
// for stuck-timer re-plans and exit-block re-routes.
func (a *Agent) Replan(path []geom.Vec2) {
	a.SetPath(path)
	a.StuckTime = 0
}

package kernel

import (
	"context"
	"strconv"

	"crowdsim/internal/agents"
	"crowdsim/internal/firefighter"
	"crowdsim/internal/geom"
	"crowdsim/internal/logging"
	"crowdsim/internal/simconfig"
)

// neighborQueryRadius bounds how far the spatial hash scans for nearby
// agents. The exponential repulsion terms in internal/agents are already
// negligible past a couple of metres, so a wider scan only costs cycles.
const neighborQueryRadius = 2.0

// Tick advances the simulation by dt seconds, clamped to MaxDT, in a
// fixed phase order: evacuation trigger, fire spread, smoke diffusion,
// firefighter update, spawn, spatial hash rebuild, per-agent update, queue
// service, density computation, metric accumulation, clock advance.
func (k *Kernel) Tick(dt float64) {
	if !k.running {
		return
	}
	if dt > MaxDT {
		dt = MaxDT
	}
	if dt <= 0 {
		return
	}

	k.checkEvacuationTrigger()
	k.fire.Spread(dt)
	k.smoke.Step(dt)
	k.updateFirefighters(dt)
	k.spawnArrivals()
	k.rebuildSpatialHash()
	k.updateAgents(dt)
	k.serviceQueues()
	k.accumulateMetrics(dt)
	k.pruneExited()

	k.tick++
	k.telemetry.Ticks++
	k.simTime += dt
}

func (k *Kernel) checkEvacuationTrigger() {
	if !k.cfg.EvacuationEnabled || k.evacuationTriggered || k.simTime < k.cfg.EvacuationTime {
		return
	}
	k.triggerEvacuation()
}

func (k *Kernel) triggerEvacuation() {
	if k.evacuationTriggered {
		return
	}
	k.evacuationTriggered = true
	for _, a := range k.agentList {
		if !a.Active() {
			continue
		}
		switch a.State {
		case agents.StateQueuing:
			k.queues.LeaveAny(a.ID)
		case agents.StateAtAttractor:
			k.queues.DecrementServing(a.TargetAttractor)
		}
		exitID, _ := agents.PickExit(a.Pos, k.layout.Exits, k.blockedExits)
		path := k.planner.Plan(a.Pos, k.exitPoint(exitID))
		a.BeginEvacuating(exitID, path, k.cfg.PanicMultiplier)
	}
	k.publisher.Publish(context.Background(), logging.Event{
		Type:     logging.EventEvacuationStarted,
		Severity: logging.SeverityWarn,
		Tick:     k.tick,
		SimTime:  k.simTime,
		Actor:    logging.EntityRef{Kind: logging.EntityKindWorld},
		Category: logging.CategoryEvacuate,
	})
}

func (k *Kernel) exitPoint(exitID string) geom.Vec2 {
	for _, e := range k.layout.Exits {
		if e.ID == exitID {
			return geom.Vec2{X: e.X, Y: e.Y}
		}
	}
	return geom.Vec2{}
}

func (k *Kernel) attractorPoint(attractorID string) geom.Vec2 {
	for _, a := range k.layout.Attractors {
		if a.ID == attractorID {
			return geom.Vec2{X: a.X, Y: a.Y}
		}
	}
	return geom.Vec2{}
}

func (k *Kernel) attractorByID(attractorID string) (simconfig.Attractor, bool) {
	for _, at := range k.layout.Attractors {
		if at.ID == attractorID {
			return at, true
		}
	}
	return simconfig.Attractor{}, false
}

func (k *Kernel) updateFirefighters(dt float64) {
	if !k.firefightersSpawned && k.fire.FireStartTime >= 0 && k.simTime >= k.fire.FireStartTime+firefighter.ResponseDelay {
		k.firefighters = firefighter.Spawn(k.layout.Entrances, k.nextFirefighterID)
		k.nextFirefighterID += len(k.firefighters)
		k.firefightersSpawned = true
	}
	for _, f := range k.firefighters {
		extinguished := firefighter.Update(f, k.fire, k.grid, k.planner, k.layout.Walls, dt)
		if extinguished == 0 {
			continue
		}
		k.telemetry.CellsExtinguished += uint64(extinguished)
		k.publisher.Publish(context.Background(), logging.Event{
			Type:     logging.EventFireExtinguished,
			Severity: logging.SeverityInfo,
			Tick:     k.tick,
			SimTime:  k.simTime,
			Actor:    logging.EntityRef{ID: agentIDString(f.ID), Kind: logging.EntityKindFirefighter},
			Category: logging.CategoryHazard,
		})
	}
}

func (k *Kernel) spawnArrivals() {
	due := k.spawnCtrl.Due(k.simTime)
	if due == 0 {
		return
	}
	fresh := k.spawnCtrl.Spawn(k.spawnRNG, k.layout.Entrances, k.cfg, due)
	for _, a := range fresh {
		a.SpawnTime = k.simTime
		if k.evacuationTriggered {
			exitID, _ := agents.PickExit(a.Pos, k.layout.Exits, k.blockedExits)
			path := k.planner.Plan(a.Pos, k.exitPoint(exitID))
			a.BeginEvacuating(exitID, path, k.cfg.PanicMultiplier)
		} else if attractorID, ok := agents.PickAttractor(k.agentRNG, k.layout.Attractors, k.queues); ok {
			path := k.planner.Plan(a.Pos, k.attractorPoint(attractorID))
			a.BeginSeekingAttractor(attractorID, path)
		} else {
			exitID, _ := agents.PickExit(a.Pos, k.layout.Exits, k.blockedExits)
			path := k.planner.Plan(a.Pos, k.exitPoint(exitID))
			a.BeginSeekingExitFresh(exitID, path)
		}
		k.agentList = append(k.agentList, a)
		k.spawned++
		k.telemetry.AgentsSpawned++
		k.publisher.Publish(context.Background(), logging.Event{
			Type:     logging.EventAgentSpawned,
			Severity: logging.SeverityDebug,
			Tick:     k.tick,
			SimTime:  k.simTime,
			Actor:    logging.EntityRef{ID: agentIDString(a.ID), Kind: logging.EntityKindAgent},
			Category: logging.CategorySystem,
		})
	}
}

func (k *Kernel) rebuildSpatialHash() {
	k.spatial.Clear()
	for i, a := range k.agentList {
		if !a.Active() || a.State == agents.StateQueuing || a.State == agents.StateAtAttractor {
			continue
		}
		k.spatial.Insert(i, a.Pos.X, a.Pos.Y)
	}
}

func (k *Kernel) neighborsOf(a *agents.Agent) []agents.Neighbor {
	ids := k.spatial.Query(a.Pos.X, a.Pos.Y, neighborQueryRadius)
	out := make([]agents.Neighbor, 0, len(ids))
	for _, idx := range ids {
		other := k.agentList[idx]
		if other.ID == a.ID || !other.Active() {
			continue
		}
		out = append(out, agents.Neighbor{Pos: other.Pos, Radius: other.Radius})
	}
	return out
}

func (k *Kernel) updateAgents(dt float64) {
	for _, a := range k.agentList {
		if !a.Active() {
			continue
		}
		switch a.State {
		case agents.StateQueuing, agents.StateAtAttractor:
			k.updateStationaryAgent(a)
			continue
		}
		k.updateMovingAgent(a, dt)
	}
}

func (k *Kernel) updateStationaryAgent(a *agents.Agent) {
	if a.State != agents.StateAtAttractor {
		return
	}
	if k.simTime < a.ServiceUntil {
		return
	}
	attractorID := a.TargetAttractor
	k.queues.DecrementServing(attractorID)
	exitID, _ := agents.PickExit(a.Pos, k.layout.Exits, k.blockedExits)
	path := k.planner.Plan(a.Pos, k.exitPoint(exitID))
	a.BeginSeekingExitFromService(exitID, path)
}

func (k *Kernel) updateMovingAgent(a *agents.Agent, dt float64) {
	row, col := k.grid.CellOf(a.Pos.X, a.Pos.Y)
	smokeHere := k.smoke.At(row, col)

	desired := agents.DesiredVelocity(a, smokeHere)
	neighbors := k.neighborsOf(a)
	accel := agents.ComputeAcceleration(a, desired, neighbors, k.layout.Walls, k.fire, k.grid, k.cfg.AvoidanceStrength, k.cfg.PersonalSpace)
	agents.Integrate(a, accel, dt, k.layout.Width, k.layout.Height, k.layout.Walls)

	if a.StuckTime > agents.StuckTimeLimit {
		a.Replan(k.replanTarget(a))
	}

	endOfPath := agents.AdvanceWaypoint(a)

	switch a.State {
	case agents.StateSeekingAttractor:
		if endOfPath {
			k.arriveAtAttractor(a)
		}
	case agents.StateSeekingExit, agents.StateEvacuating:
		if k.tryExit(a) {
			return
		}
	}
}

func (k *Kernel) replanTarget(a *agents.Agent) []geom.Vec2 {
	switch a.State {
	case agents.StateSeekingAttractor:
		return k.planner.Plan(a.Pos, k.attractorPoint(a.TargetAttractor))
	default:
		return k.planner.Plan(a.Pos, k.exitPoint(a.TargetExit))
	}
}

func (k *Kernel) arriveAtAttractor(a *agents.Agent) {
	info, ok := k.attractorByID(a.TargetAttractor)
	if !ok {
		exitID, _ := agents.PickExit(a.Pos, k.layout.Exits, k.blockedExits)
		a.BeginSeekingExitFromService(exitID, k.planner.Plan(a.Pos, k.exitPoint(exitID)))
		return
	}
	if info.Queueing && k.cfg.QueueEnabled {
		k.queues.Enqueue(a.TargetAttractor, a.ID)
		a.BeginQueuing()
		return
	}
	a.BeginAtAttractor(k.simTime + info.ServiceTime)
	k.queues.IncrementServing(a.TargetAttractor)
}

func (k *Kernel) tryExit(a *agents.Agent) bool {
	for _, e := range k.layout.Exits {
		if e.ID != a.TargetExit {
			continue
		}
		if agents.ArrivedAtExit(a.Pos, e, a.Radius) {
			a.Exit(k.simTime)
			k.telemetry.AgentsExited++
			k.metrics.RecordEgress(k.simTime - a.SpawnTime)
			k.publisher.Publish(context.Background(), logging.Event{
				Type:     logging.EventAgentExited,
				Severity: logging.SeverityInfo,
				Tick:     k.tick,
				SimTime:  k.simTime,
				Actor:    logging.EntityRef{ID: agentIDString(a.ID), Kind: logging.EntityKindAgent},
				Category: logging.CategoryEvacuate,
			})
			return true
		}
	}
	return false
}

func (k *Kernel) serviceQueues() {
	for _, at := range k.layout.Attractors {
		if !at.Queueing {
			continue
		}
		k.metrics.RecordQueueLength(at.ID, k.queues.QueueLen(at.ID))
		agentID, ok := k.queues.ServiceTick(at.ID)
		if !ok {
			continue
		}
		agent := k.findAgent(agentID)
		if agent == nil {
			continue
		}
		k.queues.IncrementServing(at.ID)
		agent.BeginAtAttractor(k.simTime + at.ServiceTime)
	}
}

func (k *Kernel) findAgent(id int) *agents.Agent {
	for _, a := range k.agentList {
		if a.ID == id {
			return a
		}
	}
	return nil
}

func (k *Kernel) accumulateMetrics(dt float64) {
	positions := make([]geom.Vec2, 0, len(k.agentList))
	for _, a := range k.agentList {
		if a.Active() {
			positions = append(positions, a.Pos)
		}
	}
	k.metrics.Step(dt, positions)
}

// pruneExited drops agents that exited this tick from the live list. Their
// egress time and state change were already recorded when they exited.
func (k *Kernel) pruneExited() {
	live := k.agentList[:0]
	for _, a := range k.agentList {
		if a.Active() {
			live = append(live, a)
		}
	}
	k.agentList = live
}

func agentIDString(id int) string {
	return strconv.Itoa(id)
}

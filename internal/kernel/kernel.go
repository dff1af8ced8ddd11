// Package kernel owns the authoritative simulation state: a
// single-threaded, fixed-timestep tick loop over every subsystem, exposing
// only immutable snapshots to the host.
package kernel

import (
	"context"
	"math/rand"

	"crowdsim/internal/agents"
	"crowdsim/internal/firefighter"
	"crowdsim/internal/hazard"
	"crowdsim/internal/logging"
	"crowdsim/internal/metrics"
	"crowdsim/internal/nav"
	"crowdsim/internal/queue"
	"crowdsim/internal/simconfig"
	"crowdsim/internal/simrand"
	"crowdsim/internal/spatialhash"
	"crowdsim/internal/spawn"
)

// MaxDT is the largest timestep a single Tick call accepts; larger host
// stalls are clamped so the integration cannot jump past collisions.
const MaxDT = 0.05

// Kernel owns the authoritative simulation state for one run.
type Kernel struct {
	cfg    simconfig.Config
	layout simconfig.VenueLayout

	grid    *nav.Grid
	planner *nav.Planner
	fire    *hazard.FireGrid
	smoke   *hazard.SmokeGrid
	spatial *spatialhash.Hash
	queues  *queue.Manager
	metrics *metrics.Aggregator

	spawnCtrl *spawn.Controller
	spawnRNG  *rand.Rand
	agentRNG  *rand.Rand

	agentList    []*agents.Agent
	firefighters []*firefighter.Firefighter
	blockedExits map[string]bool

	nextFirefighterID   int
	firefightersSpawned bool
	evacuationTriggered bool

	spawned   int
	telemetry Telemetry

	publisher logging.Publisher

	running bool
	tick    uint64
	simTime float64
}

// New constructs a fresh kernel for cfg and layout. A nil publisher is
// replaced with logging.NopPublisher.
func New(cfg simconfig.Config, layout simconfig.VenueLayout, publisher logging.Publisher) *Kernel {
	if publisher == nil {
		publisher = logging.NopPublisher()
	}
	k := &Kernel{publisher: publisher}
	k.reset(cfg.Normalize(), layout)
	return k
}

// Reset rebuilds every subsystem from scratch using the kernel's current
// configuration and layout. The kernel comes back paused.
func (k *Kernel) Reset() {
	k.reset(k.cfg, k.layout)
}

func (k *Kernel) reset(cfg simconfig.Config, layout simconfig.VenueLayout) {
	k.cfg = cfg
	k.layout = layout

	k.grid = nav.BuildGrid(layout.Width, layout.Height, layout.Walls)
	k.planner = nav.NewPlanner(k.grid)
	k.fire = hazard.NewFireGrid(k.grid)
	k.smoke = hazard.NewSmokeGrid(k.grid.Rows, k.grid.Cols, k.fire)
	k.spatial = spatialhash.New(2 * cfg.PersonalSpace)
	// Every attractor keeps the manager's default of one concurrent server;
	// QueueCapacity is an occupancy cap checked by agents.PickAttractor.
	k.queues = queue.NewManager()
	k.metrics = metrics.NewAggregator(layout.Width, layout.Height, cfg.HeatmapCellSize, cfg.WarningDensity, cfg.DangerDensity)

	k.spawnRNG = simrand.New(cfg.Seed, "spawn")
	k.agentRNG = simrand.New(cfg.Seed, "agents")
	k.spawnCtrl = spawn.NewController(cfg, 1)

	k.agentList = nil
	k.firefighters = nil
	k.nextFirefighterID = 1
	k.firefightersSpawned = false
	k.evacuationTriggered = false
	k.spawned = 0
	k.telemetry = Telemetry{}
	k.blockedExits = make(map[string]bool)

	k.running = false
	k.tick = 0
	k.simTime = 0
}

// UpdateConfig re-normalises cfg and resets the run under it, as Reset
// does: every subsystem is rebuilt, agents and metrics are cleared and the
// kernel is left paused at t = 0. Layout is left unchanged.
func (k *Kernel) UpdateConfig(cfg simconfig.Config) {
	k.reset(cfg.Normalize(), k.layout)
}

// UpdateLayout resets the run on a new layout, keeping the current config:
// as with Reset, every subsystem is rebuilt, agents and metrics are cleared
// and the kernel is left paused at t = 0.
func (k *Kernel) UpdateLayout(layout simconfig.VenueLayout) {
	k.reset(k.cfg, layout)
}

// Start and Pause toggle whether Tick advances the clock.
func (k *Kernel) Start() { k.running = true }
func (k *Kernel) Pause() { k.running = false }

// Running reports whether the kernel currently advances on Tick.
func (k *Kernel) Running() bool { return k.running }

// StartFire ignites the grid cell containing (x, y) and triggers the
// evacuation if one is not already under way.
func (k *Kernel) StartFire(x, y float64) {
	row, col := k.grid.CellOf(x, y)
	if k.fire.Ignite(row, col, k.simTime) {
		k.telemetry.FireIgnitions++
		k.publisher.Publish(context.Background(), logging.Event{
			Type:     logging.EventFireIgnited,
			Severity: logging.SeverityWarn,
			Tick:     k.tick,
			SimTime:  k.simTime,
			Actor:    logging.EntityRef{Kind: logging.EntityKindWorld},
			Category: logging.CategoryHazard,
		})
		k.triggerEvacuation()
	}
}

// TriggerEvacuation switches the run into evacuation on demand, moving
// every non-exited agent to the evacuating state. Idempotent.
func (k *Kernel) TriggerEvacuation() {
	k.triggerEvacuation()
}

// SetBlockedExits replaces the set of currently-blocked exit ids and
// re-plans every exit-seeking agent whose target just became blocked.
func (k *Kernel) SetBlockedExits(ids []string) {
	blocked := make(map[string]bool, len(ids))
	for _, id := range ids {
		blocked[id] = true
	}
	k.blockedExits = blocked
	for _, a := range k.agentList {
		if !a.Active() {
			continue
		}
		switch a.State {
		case agents.StateSeekingExit, agents.StateEvacuating:
			if !blocked[a.TargetExit] {
				continue
			}
			exitID, ok := agents.PickExit(a.Pos, k.layout.Exits, k.blockedExits)
			if !ok {
				continue
			}
			a.RetargetExit(exitID, k.planner.Plan(a.Pos, k.exitPoint(exitID)))
		}
	}
	for id := range blocked {
		k.publisher.Publish(context.Background(), logging.Event{
			Type:     logging.EventExitBlocked,
			Severity: logging.SeverityWarn,
			Tick:     k.tick,
			SimTime:  k.simTime,
			Actor:    logging.EntityRef{ID: id, Kind: logging.EntityKindExit},
			Category: logging.CategorySystem,
		})
	}
}

// SimTime returns the simulated seconds elapsed since the last reset.
func (k *Kernel) SimTime() float64 { return k.simTime }

// TickCount returns how many ticks have run since the last reset.
func (k *Kernel) TickCount() uint64 { return k.tick }

// IsEvacuating reports whether the evacuation has been triggered.
func (k *Kernel) IsEvacuating() bool { return k.evacuationTriggered }

// SpawnedCount returns how many agents have ever spawned this run.
func (k *Kernel) SpawnedCount() int { return k.spawned }

// ActiveAgents returns how many spawned agents have not yet exited.
func (k *Kernel) ActiveAgents() int {
	n := 0
	for _, a := range k.agentList {
		if a.Active() {
			n++
		}
	}
	return n
}

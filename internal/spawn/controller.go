// Package spawn schedules agent arrivals: burst, linear, or gaussian
// arrival curves evaluated deterministically from the config, plus
// entrance position jitter and speed sampling drawn from an injected RNG
// so a run is fully reproducible from its seed.
package spawn

import (
	"math/rand"

	"gonum.org/v1/gonum/stat/distuv"

	"crowdsim/internal/agents"
	"crowdsim/internal/geom"
	"crowdsim/internal/simconfig"
)

// entranceJitterAlong and entranceJitterDepth bound the spawn-position
// jitter: up to 0.4 of the entrance width along its strip, and up to
// 0.25 m of depth into the room.
const (
	entranceJitterAlong = 0.4
	entranceJitterDepth = 0.25
)

// Pedestrian body radius bounds, metres.
const (
	radiusMin = 0.22
	radiusMax = 0.28
)

// randSource adapts the kernel's injected *rand.Rand to the rand/v2 Source
// gonum's distributions draw from, keeping every sample on the seeded
// stream.
type randSource struct{ r *rand.Rand }

func (s randSource) Uint64() uint64 { return s.r.Uint64() }

// Schedule computes the sorted arrival times (seconds from run start) for
// cfg.N agents under cfg.ArrivalMode. All three curves are deterministic
// functions of the config; per-agent randomness enters at Spawn time only.
func Schedule(cfg simconfig.Config) []float64 {
	n := cfg.N
	times := make([]float64, n)
	durationSeconds := cfg.ArrivalDuration * 60

	switch cfg.ArrivalMode {
	case simconfig.ArrivalBurst:
		// Burst means simultaneous arrival at t=0, not a short ramp.
		for i := range times {
			times[i] = 0
		}
	case simconfig.ArrivalGaussian:
		// The arrival target is the normal ogive N·Φ(t; 0.5d, 0.2d), so
		// agent i arrives once the curve reaches i+1, at the (i+1)/n
		// quantile: the count of entries at or before t is ⌊N·Φ(t)⌋.
		// Evaluating the inverse CDF there yields the exact curve, already
		// sorted, with no sampling noise between runs. Quantiles past the
		// window (the last one is +Inf) are clamped to its end.
		dist := distuv.Normal{Mu: 0.5 * durationSeconds, Sigma: 0.2 * durationSeconds}
		for i := range times {
			t := dist.Quantile(float64(i+1) / float64(n))
			if t < 0 {
				t = 0
			}
			if t > durationSeconds {
				t = durationSeconds
			}
			times[i] = t
		}
	default: // ArrivalLinear
		if n > 1 {
			step := durationSeconds / float64(n)
			for i := range times {
				times[i] = step * float64(i)
			}
		}
	}
	return times
}

// SampleSpeed draws a desired walking speed from a normal distribution
// centred on cfg.SpeedMean, clamped to [cfg.SpeedMin, cfg.SpeedMax].
func SampleSpeed(rng *rand.Rand, cfg simconfig.Config) float64 {
	sigma := (cfg.SpeedMax - cfg.SpeedMin) / 4
	if sigma <= 0 {
		return cfg.SpeedMean
	}
	dist := distuv.Normal{Mu: cfg.SpeedMean, Sigma: sigma, Src: randSource{rng}}
	v := dist.Rand()
	if v < cfg.SpeedMin {
		v = cfg.SpeedMin
	}
	if v > cfg.SpeedMax {
		v = cfg.SpeedMax
	}
	return v
}

// SampleEntrancePoint jitters a spawn position within entrance e, up to
// 0.4 of its width along the strip (its Y extent) and up to 0.25 m of
// depth into the room (its X extent).
func SampleEntrancePoint(rng *rand.Rand, e simconfig.Entrance) geom.Vec2 {
	along := (rng.Float64()*2 - 1) * entranceJitterAlong * e.Width
	depth := (rng.Float64()*2 - 1) * entranceJitterDepth
	return geom.Vec2{X: e.X + depth, Y: e.Y + along}
}

// Controller drives agent arrivals tick by tick from a precomputed
// schedule.
type Controller struct {
	schedule []float64
	cursor   int
	nextID   int
}

// NewController builds a spawn controller for cfg. startID is the id
// assigned to the first spawned agent.
func NewController(cfg simconfig.Config, startID int) *Controller {
	return &Controller{schedule: Schedule(cfg), nextID: startID}
}

// Remaining reports how many scheduled arrivals have not yet spawned.
func (c *Controller) Remaining() int { return len(c.schedule) - c.cursor }

// Due pops every scheduled arrival time at or before now, advancing the
// cursor, and returns how many agents should spawn this tick.
func (c *Controller) Due(now float64) int {
	count := 0
	for c.cursor < len(c.schedule) && c.schedule[c.cursor] <= now {
		c.cursor++
		count++
	}
	return count
}

// Spawn builds count freshly-arrived agents at a uniformly-chosen
// entrance, with sampled speed and radius, in StateSeekingExit; the caller
// transitions them toward an attractor once a path is planned.
func (c *Controller) Spawn(rng *rand.Rand, entrances []simconfig.Entrance, cfg simconfig.Config, count int) []*agents.Agent {
	out := make([]*agents.Agent, 0, count)
	if len(entrances) == 0 {
		return out
	}
	for i := 0; i < count; i++ {
		e := entrances[rng.Intn(len(entrances))]
		pos := SampleEntrancePoint(rng, e)
		speed := SampleSpeed(rng, cfg)
		radius := radiusMin + rng.Float64()*(radiusMax-radiusMin)
		a := agents.New(c.nextID, pos, speed, radius)
		c.nextID++
		out = append(out, a)
	}
	return out
}

// Package sweep finds safe venue capacity: it runs abbreviated
// simulations across a range of participant counts and evaluates the
// peak-density, p95-egress, and warning-dwell criteria for each.
package sweep

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"

	"crowdsim/internal/kernel"
	"crowdsim/internal/logging"
	"crowdsim/internal/simconfig"
)

// DT is the fixed timestep every sweep run ticks at.
const DT = 0.05

// drainGrace is how long past the evacuation trigger a run must have been
// running before an empty venue ends it early.
const drainGrace = 60.0

// ErrNoEgressRoute is returned when the layout cannot host a sweep at all.
var ErrNoEgressRoute = errors.New("sweep: need at least one entrance and one exit")

// Result is the §6 sweep-result record for a single N.
type Result struct {
	RunID               string  `json:"runId" db:"run_id"`
	N                   int     `json:"n" db:"n"`
	PeakDensity         float64 `json:"peakDensity" db:"peak_density"`
	P95EgressMinutes    float64 `json:"p95EgressTime" db:"p95_egress_minutes"`
	TimeAboveWarningPct float64 `json:"timeAboveWarningPct" db:"time_above_warning_pct"`
	Passed              bool    `json:"passed" db:"passed"`
}

// Report is the outcome of a full sweep: one Result per N, plus the
// largest N that passed (zero when none did).
type Report struct {
	SweepID  string   `json:"sweepId"`
	Results  []Result `json:"results"`
	SafeMaxN int      `json:"safeMaxN"`
}

// ProgressFunc receives each Result as soon as its run completes.
type ProgressFunc func(Result)

// Driver runs sweeps over one layout with one base config.
type Driver struct {
	layout    simconfig.VenueLayout
	base      simconfig.Config
	publisher logging.Publisher
	progress  ProgressFunc
}

// NewDriver builds a sweep driver. publisher and progress may be nil.
func NewDriver(layout simconfig.VenueLayout, base simconfig.Config, publisher logging.Publisher, progress ProgressFunc) *Driver {
	if publisher == nil {
		publisher = logging.NopPublisher()
	}
	return &Driver{layout: layout, base: base.Normalize(), publisher: publisher, progress: progress}
}

// Run executes the sweep from SweepMinN to SweepMaxN by SweepStep and
// returns the per-N results. It fails outright when the layout has no
// entrance or no exit; every other configuration problem just produces a
// degenerate (and failing) run.
func (d *Driver) Run(ctx context.Context) (Report, error) {
	if len(d.layout.Entrances) == 0 || len(d.layout.Exits) == 0 {
		return Report{}, ErrNoEgressRoute
	}

	report := Report{SweepID: uuid.NewString()}
	for n := d.base.SweepMinN; n <= d.base.SweepMaxN; n += d.base.SweepStep {
		if err := ctx.Err(); err != nil {
			return report, fmt.Errorf("sweep %s interrupted at N=%d: %w", report.SweepID, n, err)
		}
		result := d.runOne(n)
		report.Results = append(report.Results, result)
		if result.Passed && n > report.SafeMaxN {
			report.SafeMaxN = n
		}
		d.publisher.Publish(ctx, logging.Event{
			Type:     logging.EventSweepProgress,
			Severity: logging.SeverityInfo,
			Actor:    logging.EntityRef{ID: report.SweepID, Kind: logging.EntityKindSweep},
			Category: logging.CategorySweep,
			Payload:  result,
		})
		if d.progress != nil {
			d.progress(result)
		}
	}
	return report, nil
}

// runOne builds a fresh kernel for one N, with evacuation forced on two
// minutes after arrivals finish, and ticks it to completion.
func (d *Driver) runOne(n int) Result {
	cfg := d.base
	cfg.N = n
	cfg.EvacuationEnabled = true
	cfg.EvacuationTime = (cfg.ArrivalDuration + 2) * 60
	cfg = cfg.Normalize()

	k := kernel.New(cfg, d.layout, logging.NopPublisher())
	k.Start()

	simDuration := (cfg.ArrivalDuration + 10) * 60
	for k.SimTime() < simDuration {
		k.Tick(DT)
		if k.SimTime() > cfg.EvacuationTime+drainGrace && k.ActiveAgents() == 0 {
			break
		}
	}

	m := k.GetMetrics()
	warnPct := 0.0
	if simTime := k.SimTime(); simTime > 0 {
		warnPct = m.TimeAboveWarning / simTime * 100
	}
	p95Minutes := m.P95EgressSeconds / 60

	return Result{
		RunID:               uuid.NewString(),
		N:                   n,
		PeakDensity:         m.PeakDensity,
		P95EgressMinutes:    p95Minutes,
		TimeAboveWarningPct: warnPct,
		Passed: m.PeakDensity <= cfg.DangerDensity &&
			p95Minutes <= cfg.SweepP95EgressLimit &&
			warnPct <= cfg.SweepWarningTimeLimitPct,
	}
}

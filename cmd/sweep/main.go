// Command sweep runs a capacity sweep over a venue layout and prints the
// per-N safety results. With -db it also appends the results to a SQLite
// history so runs can be compared across layout revisions.
package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"os"
	"os/signal"
	"time"

	"crowdsim/internal/layout"
	"crowdsim/internal/logging"
	"crowdsim/internal/simconfig"
	"crowdsim/internal/store"
	"crowdsim/internal/sweep"
)

func main() {
	layoutPath := flag.String("layout", "", "venue layout JSON file (default: built-in demo layout)")
	seed := flag.String("seed", "sweep", "deterministic run seed")
	minN := flag.Int("min", 0, "sweep lower bound (default: config default)")
	maxN := flag.Int("max", 0, "sweep upper bound (default: config default)")
	step := flag.Int("step", 0, "sweep step (default: config default)")
	dbPath := flag.String("db", "", "SQLite file to append results to (optional)")
	flag.Parse()

	venue := simconfig.DefaultVenueLayout()
	if *layoutPath != "" {
		data, err := os.ReadFile(*layoutPath)
		if err != nil {
			log.Fatalf("read layout: %v", err)
		}
		doc, err := layout.Unmarshal(data)
		if err != nil {
			log.Fatalf("parse layout: %v", err)
		}
		venue = doc.ToVenueLayout()
	}

	cfg := simconfig.DefaultConfig()
	cfg.Seed = *seed
	if *minN > 0 {
		cfg.SweepMinN = *minN
	}
	if *maxN > 0 {
		cfg.SweepMaxN = *maxN
	}
	if *step > 0 {
		cfg.SweepStep = *step
	}

	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt)
	defer cancel()

	fmt.Printf("%8s %12s %12s %10s %7s\n", "N", "peak p/m2", "p95 egress", "warn %", "pass")
	driver := sweep.NewDriver(venue, cfg, logging.NopPublisher(), func(r sweep.Result) {
		fmt.Printf("%8d %12.2f %9.2f min %9.1f%% %7v\n",
			r.N, r.PeakDensity, r.P95EgressMinutes, r.TimeAboveWarningPct, r.Passed)
	})

	report, err := driver.Run(ctx)
	if err != nil {
		log.Fatalf("sweep: %v", err)
	}

	if report.SafeMaxN > 0 {
		fmt.Printf("\nsafe max N: %d\n", report.SafeMaxN)
	} else {
		fmt.Printf("\nno swept N satisfied all three safety criteria\n")
	}

	if *dbPath != "" {
		db, err := store.Open(*dbPath)
		if err != nil {
			log.Fatalf("open history db: %v", err)
		}
		defer db.Close()
		if err := db.SaveReport(report, time.Now()); err != nil {
			log.Fatalf("save history: %v", err)
		}
		fmt.Printf("saved sweep %s to %s\n", report.SweepID, *dbPath)
	}
}

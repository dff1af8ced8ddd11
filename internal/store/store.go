// Package store provides SQLite-backed persistence for sweep history, so a
// host can compare capacity runs across layout revisions.
package store

import (
	"fmt"
	"time"

	"github.com/jmoiron/sqlx"
	_ "modernc.org/sqlite"

	"crowdsim/internal/sweep"
)

// DB wraps a SQLite connection holding the append-only sweep history.
type DB struct {
	conn *sqlx.DB
}

// Open opens or creates a SQLite database at the given path.
func Open(path string) (*DB, error) {
	conn, err := sqlx.Open("sqlite", path+"?_journal_mode=WAL&_busy_timeout=5000")
	if err != nil {
		return nil, fmt.Errorf("open db: %w", err)
	}

	db := &DB{conn: conn}
	if err := db.migrate(); err != nil {
		conn.Close()
		return nil, fmt.Errorf("migrate: %w", err)
	}
	return db, nil
}

// Close closes the database connection.
func (db *DB) Close() error {
	return db.conn.Close()
}

func (db *DB) migrate() error {
	schema := `
	CREATE TABLE IF NOT EXISTS sweep_results (
		run_id TEXT PRIMARY KEY,
		sweep_id TEXT NOT NULL,
		recorded_at TEXT NOT NULL,
		n INTEGER NOT NULL,
		peak_density REAL NOT NULL,
		p95_egress_minutes REAL NOT NULL,
		time_above_warning_pct REAL NOT NULL,
		passed INTEGER NOT NULL
	);

	CREATE INDEX IF NOT EXISTS idx_sweep_results_sweep
		ON sweep_results (sweep_id, n);
	`
	if _, err := db.conn.Exec(schema); err != nil {
		return fmt.Errorf("create schema: %w", err)
	}
	return nil
}

// SaveReport appends every result of one sweep, stamped with the time the
// report was recorded.
func (db *DB) SaveReport(report sweep.Report, recordedAt time.Time) error {
	tx, err := db.conn.Beginx()
	if err != nil {
		return fmt.Errorf("begin: %w", err)
	}
	stamp := recordedAt.UTC().Format(time.RFC3339)
	for _, r := range report.Results {
		_, err := tx.Exec(
			`INSERT INTO sweep_results
				(run_id, sweep_id, recorded_at, n, peak_density, p95_egress_minutes, time_above_warning_pct, passed)
			 VALUES (?, ?, ?, ?, ?, ?, ?, ?)`,
			r.RunID, report.SweepID, stamp, r.N, r.PeakDensity, r.P95EgressMinutes, r.TimeAboveWarningPct, r.Passed,
		)
		if err != nil {
			tx.Rollback()
			return fmt.Errorf("insert result N=%d: %w", r.N, err)
		}
	}
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit: %w", err)
	}
	return nil
}

// ResultsForSweep loads the stored results of one sweep, ordered by N.
func (db *DB) ResultsForSweep(sweepID string) ([]sweep.Result, error) {
	var results []sweep.Result
	err := db.conn.Select(&results,
		`SELECT run_id, n, peak_density, p95_egress_minutes, time_above_warning_pct, passed
		 FROM sweep_results WHERE sweep_id = ? ORDER BY n`, sweepID)
	if err != nil {
		return nil, fmt.Errorf("select sweep %s: %w", sweepID, err)
	}
	return results, nil
}

// SweepIDs lists every stored sweep id, newest first.
func (db *DB) SweepIDs() ([]string, error) {
	var ids []string
	err := db.conn.Select(&ids,
		`SELECT DISTINCT sweep_id FROM sweep_results ORDER BY recorded_at DESC`)
	if err != nil {
		return nil, fmt.Errorf("select sweep ids: %w", err)
	}
	return ids, nil
}

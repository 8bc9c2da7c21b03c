// Package store records grading runs in a local SQLite database so past runs
// and their decisions can be reviewed. It never feeds back into grading: a
// re-run recomputes everything from the providers.
package store

import (
	"database/sql"
	"fmt"
	"time"

	"github.com/Aidan-B1409/engr103-autograder/internal/model"

	_ "modernc.org/sqlite"
)

type Store struct {
	db *sql.DB
}

func New(dbPath string) (*Store, error) {
	db, err := sql.Open("sqlite", dbPath+"?_journal_mode=WAL&_busy_timeout=5000")
	if err != nil {
		return nil, fmt.Errorf("open database: %w", err)
	}
	if err := db.Ping(); err != nil {
		return nil, fmt.Errorf("ping database: %w", err)
	}
	s := &Store{db: db}
	if err := s.migrate(); err != nil {
		return nil, fmt.Errorf("migrate: %w", err)
	}
	return s, nil
}

func (s *Store) Close() error {
	return s.db.Close()
}

func (s *Store) migrate() error {
	schema := `
	CREATE TABLE IF NOT EXISTS runs (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		date TEXT NOT NULL,
		course_id INTEGER NOT NULL,
		assignment_id INTEGER NOT NULL,
		keyphrase TEXT NOT NULL,
		fetched INTEGER NOT NULL DEFAULT 0,
		in_window INTEGER NOT NULL DEFAULT 0,
		validated INTEGER NOT NULL DEFAULT 0,
		present INTEGER NOT NULL DEFAULT 0,
		absent INTEGER NOT NULL DEFAULT 0,
		flagged INTEGER NOT NULL DEFAULT 0,
		submit_failures INTEGER NOT NULL DEFAULT 0,
		dry_run INTEGER NOT NULL DEFAULT 0,
		created_at DATETIME NOT NULL
	);

	CREATE TABLE IF NOT EXISTS decisions (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		run_id INTEGER NOT NULL,
		login TEXT NOT NULL,
		name TEXT NOT NULL,
		score INTEGER NOT NULL,
		evidence_id TEXT NOT NULL DEFAULT '',
		FOREIGN KEY (run_id) REFERENCES runs(id)
	);
	`
	_, err := s.db.Exec(schema)
	return err
}

// RecordRun stores one completed run and its decisions in a single
// transaction, returning the run id.
func (s *Store) RecordRun(run model.RunRecord, decisions []model.Decision) (int64, error) {
	tx, err := s.db.Begin()
	if err != nil {
		return 0, err
	}
	defer tx.Rollback()

	res, err := tx.Exec(
		`INSERT INTO runs (date, course_id, assignment_id, keyphrase, fetched, in_window, validated,
		                   present, absent, flagged, submit_failures, dry_run, created_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		run.Date, run.CourseID, run.AssignmentID, run.Keyphrase,
		run.Stats.Fetched, run.Stats.InWindow, run.Stats.Validated,
		run.Stats.Present, run.Stats.Absent, run.Stats.Flagged,
		run.Stats.SubmitFailures, run.DryRun, time.Now(),
	)
	if err != nil {
		return 0, err
	}
	runID, err := res.LastInsertId()
	if err != nil {
		return 0, err
	}

	for _, d := range decisions {
		evidenceID := ""
		if d.Evidence != nil {
			evidenceID = d.Evidence.ID
		}
		_, err := tx.Exec(
			`INSERT INTO decisions (run_id, login, name, score, evidence_id) VALUES (?, ?, ?, ?, ?)`,
			runID, d.Entry.LoginID, d.Entry.Name, d.Score, evidenceID,
		)
		if err != nil {
			return 0, err
		}
	}

	return runID, tx.Commit()
}

// ListRuns returns all recorded runs, most recent first.
func (s *Store) ListRuns() ([]model.RunRecord, error) {
	rows, err := s.db.Query(
		`SELECT id, date, course_id, assignment_id, keyphrase, fetched, in_window, validated,
		        present, absent, flagged, submit_failures, dry_run, created_at
		 FROM runs ORDER BY id DESC`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var runs []model.RunRecord
	for rows.Next() {
		var r model.RunRecord
		if err := rows.Scan(&r.ID, &r.Date, &r.CourseID, &r.AssignmentID, &r.Keyphrase,
			&r.Stats.Fetched, &r.Stats.InWindow, &r.Stats.Validated,
			&r.Stats.Present, &r.Stats.Absent, &r.Stats.Flagged,
			&r.Stats.SubmitFailures, &r.DryRun, &r.CreatedAt); err != nil {
			return nil, err
		}
		runs = append(runs, r)
	}
	return runs, rows.Err()
}

// DecisionsForRun returns the stored decisions of one run in roster order.
func (s *Store) DecisionsForRun(runID int64) ([]model.StoredDecision, error) {
	rows, err := s.db.Query(
		`SELECT login, name, score, evidence_id FROM decisions WHERE run_id = ? ORDER BY id`, runID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var decisions []model.StoredDecision
	for rows.Next() {
		var d model.StoredDecision
		if err := rows.Scan(&d.Login, &d.Name, &d.Score, &d.EvidenceID); err != nil {
			return nil, err
		}
		decisions = append(decisions, d)
	}
	return decisions, rows.Err()
}

// RunCount returns the number of recorded runs.
func (s *Store) RunCount() (int, error) {
	var count int
	err := s.db.QueryRow(`SELECT COUNT(*) FROM runs`).Scan(&count)
	return count, err
}

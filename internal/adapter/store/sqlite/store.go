// Package sqlite persists run history so quality trends can be inspected
// across invocations.
package sqlite

import (
	"context"
	"crypto/sha256"
	"database/sql"
	"encoding/hex"
	"fmt"
	"time"

	_ "github.com/mattn/go-sqlite3"

	"github.com/bkyoung/code-refactor/internal/domain"
)

// Store implements the pipeline's Store port using SQLite.
type Store struct {
	db  *sql.DB
	now func() time.Time
}

// NewStore creates a SQLite store at the given path. Use ":memory:" for an
// in-memory database (useful for testing).
func NewStore(dbPath string) (*Store, error) {
	db, err := sql.Open("sqlite3", dbPath)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	if _, err := db.Exec("PRAGMA foreign_keys = ON"); err != nil {
		return nil, fmt.Errorf("failed to enable foreign keys: %w", err)
	}

	s := &Store{db: db, now: time.Now}
	if err := s.createSchema(); err != nil {
		return nil, fmt.Errorf("failed to create schema: %w", err)
	}
	return s, nil
}

func (s *Store) createSchema() error {
	schema := `
	-- One row per pipeline invocation
	CREATE TABLE IF NOT EXISTS runs (
		run_id TEXT PRIMARY KEY,
		started_at INTEGER NOT NULL,
		target_dir TEXT NOT NULL,
		total_files INTEGER NOT NULL,
		succeeded INTEGER NOT NULL,
		failed INTEGER NOT NULL,
		skipped INTEGER NOT NULL,
		elapsed_ms INTEGER NOT NULL
	);

	-- Terminal outcome per file
	CREATE TABLE IF NOT EXISTS file_results (
		result_id TEXT PRIMARY KEY,
		run_id TEXT NOT NULL,
		file TEXT NOT NULL,
		status TEXT NOT NULL,
		iterations INTEGER NOT NULL,
		final_score REAL NOT NULL,
		FOREIGN KEY (run_id) REFERENCES runs(run_id) ON DELETE CASCADE
	);

	-- Per-iteration measurements for trend inspection
	CREATE TABLE IF NOT EXISTS iterations (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		result_id TEXT NOT NULL,
		idx INTEGER NOT NULL,
		issues_found INTEGER NOT NULL,
		action TEXT NOT NULL,
		verdict TEXT NOT NULL,
		score REAL NOT NULL,
		score_delta REAL NOT NULL,
		FOREIGN KEY (result_id) REFERENCES file_results(result_id) ON DELETE CASCADE
	);

	CREATE INDEX IF NOT EXISTS idx_file_results_run ON file_results(run_id);
	CREATE INDEX IF NOT EXISTS idx_iterations_result ON iterations(result_id);
	CREATE INDEX IF NOT EXISTS idx_runs_started ON runs(started_at DESC);
	`

	_, err := s.db.Exec(schema)
	return err
}

// SaveRun stores a run summary with its per-file results and iteration
// records in one transaction.
func (s *Store) SaveRun(ctx context.Context, run domain.RunSummary, results []domain.FileRunResult) error {
	started := s.now()
	runID := generateRunID(started, run.TargetDir)

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin transaction: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	_, err = tx.ExecContext(ctx, `
		INSERT INTO runs (run_id, started_at, target_dir, total_files, succeeded, failed, skipped, elapsed_ms)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)`,
		runID, started.Unix(), run.TargetDir, run.TotalFiles, run.Succeeded, run.Failed, run.Skipped, run.Elapsed.Milliseconds(),
	)
	if err != nil {
		return fmt.Errorf("insert run: %w", err)
	}

	for i, result := range results {
		resultID := fmt.Sprintf("%s-%04d", runID, i)
		_, err = tx.ExecContext(ctx, `
			INSERT INTO file_results (result_id, run_id, file, status, iterations, final_score)
			VALUES (?, ?, ?, ?, ?, ?)`,
			resultID, runID, result.File, string(result.Status), result.Iterations, result.FinalScore,
		)
		if err != nil {
			return fmt.Errorf("insert file result for %s: %w", result.File, err)
		}

		for _, rec := range result.Records {
			_, err = tx.ExecContext(ctx, `
				INSERT INTO iterations (result_id, idx, issues_found, action, verdict, score, score_delta)
				VALUES (?, ?, ?, ?, ?, ?, ?)`,
				resultID, rec.Index, rec.IssuesFound, string(rec.Fix.Action), string(rec.Validation.Verdict), rec.Validation.QualityScore, rec.ScoreDelta,
			)
			if err != nil {
				return fmt.Errorf("insert iteration %d for %s: %w", rec.Index, result.File, err)
			}
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit run: %w", err)
	}
	return nil
}

// RunCount returns how many runs are stored, for reporting and tests.
func (s *Store) RunCount(ctx context.Context) (int, error) {
	var count int
	if err := s.db.QueryRowContext(ctx, "SELECT COUNT(*) FROM runs").Scan(&count); err != nil {
		return 0, fmt.Errorf("count runs: %w", err)
	}
	return count, nil
}

// Close closes the database connection.
func (s *Store) Close() error {
	return s.db.Close()
}

// generateRunID creates a unique, time-ordered run ID.
func generateRunID(timestamp time.Time, targetDir string) string {
	ts := timestamp.UTC().Format("20060102T150405Z")
	input := fmt.Sprintf("%s|%d", targetDir, timestamp.UnixNano())
	hash := sha256.Sum256([]byte(input))
	return fmt.Sprintf("run-%s-%s", ts, hex.EncodeToString(hash[:3]))
}

// Package history records docscheck runs in a SQLite database so check
// results can be compared across runs.
package history

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	_ "github.com/mattn/go-sqlite3"

	"github.com/harrison/docscheck/internal/models"
)

// ErrRunNotFound is returned when a run ID is not in the database.
var ErrRunNotFound = errors.New("run not found")

// RunSummary is one recorded run without its results
type RunSummary struct {
	RunID       string
	ProjectRoot string
	StartedAt   time.Time
	Duration    time.Duration
	Live        bool
	Total       int
	Passed      int
	Failed      int
	Skipped     int
}

// CheckRecord is one outcome of a check in a past run
type CheckRecord struct {
	RunID     string
	StartedAt time.Time
	Status    models.Status
	Message   string
	Duration  time.Duration
}

// Store manages the SQLite history database
type Store struct {
	db     *sql.DB
	dbPath string
}

// NewStore creates a new Store instance and initializes the database
func NewStore(dbPath string) (*Store, error) {
	if dbPath != ":memory:" {
		if err := os.MkdirAll(filepath.Dir(dbPath), 0755); err != nil {
			return nil, fmt.Errorf("create database directory: %w", err)
		}
	}

	db, err := sql.Open("sqlite3", dbPath)
	if err != nil {
		return nil, fmt.Errorf("open database: %w", err)
	}
	if dbPath == ":memory:" {
		// every connection would get its own empty database
		db.SetMaxOpenConns(1)
	}

	pragmas := []string{
		"PRAGMA busy_timeout=5000", // must be first
		"PRAGMA journal_mode=WAL",
		"PRAGMA foreign_keys=ON",
	}
	for _, pragma := range pragmas {
		if err := execWithRetry(db, pragma, 5, 10*time.Millisecond); err != nil {
			db.Close()
			return nil, fmt.Errorf("set %s: %w", pragma, err)
		}
	}

	store := &Store{db: db, dbPath: dbPath}
	if err := store.ApplyMigrations(context.Background()); err != nil {
		db.Close()
		return nil, fmt.Errorf("init schema: %w", err)
	}
	return store, nil
}

// execWithRetry executes a statement, backing off on lock errors.
func execWithRetry(db *sql.DB, stmt string, maxRetries int, baseDelay time.Duration) error {
	var lastErr error
	for attempt := 0; attempt < maxRetries; attempt++ {
		_, err := db.Exec(stmt)
		if err == nil {
			return nil
		}
		if !strings.Contains(err.Error(), "database is locked") {
			return err
		}
		lastErr = err
		time.Sleep(baseDelay * time.Duration(1<<attempt))
	}
	return lastErr
}

// Path returns the database path.
func (s *Store) Path() string {
	return s.dbPath
}

// Close closes the database connection
func (s *Store) Close() error {
	if s.db != nil {
		return s.db.Close()
	}
	return nil
}

// RecordRun stores a report and all of its results.
func (s *Store) RecordRun(ctx context.Context, report *models.Report) error {
	if report == nil || report.RunID == "" {
		return fmt.Errorf("record run: report has no run ID")
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin transaction: %w", err)
	}
	defer tx.Rollback()

	_, err = tx.ExecContext(ctx, `INSERT INTO runs
		(run_id, project_root, started_at, duration_ms, live, total, passed, failed, skipped)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		report.RunID,
		report.ProjectRoot,
		report.StartedAt.UTC(),
		report.Duration.Milliseconds(),
		report.Live,
		report.Total(),
		report.Count(models.StatusPass),
		report.Count(models.StatusFail),
		report.Count(models.StatusSkip),
	)
	if err != nil {
		return fmt.Errorf("insert run: %w", err)
	}

	stmt, err := tx.PrepareContext(ctx, `INSERT INTO check_results
		(run_id, check_id, category, status, message, duration_ms, live, position)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)`)
	if err != nil {
		return fmt.Errorf("prepare result insert: %w", err)
	}
	defer stmt.Close()

	for i, r := range report.Results {
		if _, err := stmt.ExecContext(ctx, report.RunID, r.ID, r.Category, string(r.Status),
			r.Message, r.Duration.Milliseconds(), r.Live, i); err != nil {
			return fmt.Errorf("insert result %s: %w", r.ID, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit run: %w", err)
	}
	return nil
}

// RecentRuns returns up to limit runs, newest first. limit <= 0 returns all.
func (s *Store) RecentRuns(ctx context.Context, limit int) ([]RunSummary, error) {
	query := `SELECT run_id, project_root, started_at, duration_ms, live, total, passed, failed, skipped
		FROM runs ORDER BY started_at DESC, id DESC`
	var args []interface{}
	if limit > 0 {
		query += ` LIMIT ?`
		args = append(args, limit)
	}

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("query runs: %w", err)
	}
	defer rows.Close()

	var runs []RunSummary
	for rows.Next() {
		var r RunSummary
		var durationMS int64
		if err := rows.Scan(&r.RunID, &r.ProjectRoot, &r.StartedAt, &durationMS, &r.Live,
			&r.Total, &r.Passed, &r.Failed, &r.Skipped); err != nil {
			return nil, fmt.Errorf("scan run: %w", err)
		}
		r.Duration = time.Duration(durationMS) * time.Millisecond
		runs = append(runs, r)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate runs: %w", err)
	}
	return runs, nil
}

// RunResults returns the results of one run in run order.
func (s *Store) RunResults(ctx context.Context, runID string) ([]models.CheckResult, error) {
	var exists int
	if err := s.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM runs WHERE run_id = ?`, runID).Scan(&exists); err != nil {
		return nil, fmt.Errorf("query run: %w", err)
	}
	if exists == 0 {
		return nil, fmt.Errorf("%w: %s", ErrRunNotFound, runID)
	}

	rows, err := s.db.QueryContext(ctx, `SELECT check_id, category, status, message, duration_ms, live
		FROM check_results WHERE run_id = ? ORDER BY position ASC`, runID)
	if err != nil {
		return nil, fmt.Errorf("query results: %w", err)
	}
	defer rows.Close()

	var results []models.CheckResult
	for rows.Next() {
		var r models.CheckResult
		var status string
		var message sql.NullString
		var durationMS int64
		if err := rows.Scan(&r.ID, &r.Category, &status, &message, &durationMS, &r.Live); err != nil {
			return nil, fmt.Errorf("scan result: %w", err)
		}
		r.Status = models.Status(status)
		r.Message = message.String
		r.Duration = time.Duration(durationMS) * time.Millisecond
		results = append(results, r)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate results: %w", err)
	}
	return results, nil
}

// CheckHistory returns up to limit outcomes of one check, newest first.
func (s *Store) CheckHistory(ctx context.Context, checkID string, limit int) ([]CheckRecord, error) {
	query := `SELECT r.run_id, r.started_at, c.status, c.message, c.duration_ms
		FROM check_results c JOIN runs r ON r.run_id = c.run_id
		WHERE c.check_id = ?
		ORDER BY r.started_at DESC, r.id DESC`
	args := []interface{}{checkID}
	if limit > 0 {
		query += ` LIMIT ?`
		args = append(args, limit)
	}

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("query check history: %w", err)
	}
	defer rows.Close()

	var records []CheckRecord
	for rows.Next() {
		var rec CheckRecord
		var status string
		var message sql.NullString
		var durationMS int64
		if err := rows.Scan(&rec.RunID, &rec.StartedAt, &status, &message, &durationMS); err != nil {
			return nil, fmt.Errorf("scan check history: %w", err)
		}
		rec.Status = models.Status(status)
		rec.Message = message.String
		rec.Duration = time.Duration(durationMS) * time.Millisecond
		records = append(records, rec)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate check history: %w", err)
	}
	return records, nil
}

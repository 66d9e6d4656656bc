// Package history persists pipeline run reports in a SQLite database.
package history

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	_ "modernc.org/sqlite"

	"github.com/gogpu/fragpipe/pipeline"
)

// ErrRunNotFound is returned by Get for an unknown run id.
var ErrRunNotFound = errors.New("history: run not found")

const schema = `
CREATE TABLE IF NOT EXISTS runs (
	id         TEXT PRIMARY KEY,
	script     TEXT NOT NULL,
	started_at INTEGER NOT NULL,
	elapsed_ms REAL NOT NULL,
	ok         INTEGER NOT NULL
);
CREATE TABLE IF NOT EXISTS task_outcomes (
	run_id      TEXT NOT NULL REFERENCES runs(id) ON DELETE CASCADE,
	seq         INTEGER NOT NULL,
	kind        TEXT NOT NULL,
	description TEXT NOT NULL,
	status      TEXT NOT NULL,
	duration_ms REAL NOT NULL,
	message     TEXT NOT NULL DEFAULT '',
	PRIMARY KEY (run_id, seq)
);
CREATE INDEX IF NOT EXISTS idx_runs_started ON runs(started_at);
`

// Run is one recorded pipeline run.
type Run struct {
	ID      string
	Script  string
	Started time.Time
	Elapsed time.Duration
	OK      bool

	// Tasks is filled by Get and left empty by Recent.
	Tasks []Task
}

// Task is the recorded outcome of one task.
type Task struct {
	Seq         int
	Kind        string
	Description string
	Status      string
	Duration    time.Duration
	Message     string
}

// Store is a run history database.
//
// Thread safety: Store is safe for concurrent use; writes are serialized
// on a single connection.
type Store struct {
	db   *sql.DB
	path string
}

// Open opens or creates the database at path.
func Open(path string) (*Store, error) {
	if path != ":memory:" {
		if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
			return nil, fmt.Errorf("failed to create directory: %w", err)
		}
	}

	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}
	db.SetMaxOpenConns(1)

	if _, err := db.Exec(schema); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to initialize schema: %w", err)
	}
	return &Store{db: db, path: path}, nil
}

// Path returns the database path.
func (s *Store) Path() string {
	return s.path
}

// Close closes the database.
func (s *Store) Close() error {
	return s.db.Close()
}

// Record stores a report and its task outcomes in one transaction.
func (s *Store) Record(ctx context.Context, script string, r *pipeline.Report) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	_, err = tx.ExecContext(ctx,
		`INSERT INTO runs (id, script, started_at, elapsed_ms, ok) VALUES (?, ?, ?, ?, ?)`,
		r.RunID.String(), script, r.Started.UnixNano(), millis(r.Elapsed), r.OK())
	if err != nil {
		return fmt.Errorf("failed to insert run: %w", err)
	}

	stmt, err := tx.PrepareContext(ctx,
		`INSERT INTO task_outcomes (run_id, seq, kind, description, status, duration_ms, message)
		 VALUES (?, ?, ?, ?, ?, ?, ?)`)
	if err != nil {
		return fmt.Errorf("failed to prepare outcome insert: %w", err)
	}
	defer stmt.Close()

	for _, o := range r.Outcomes {
		_, err := stmt.ExecContext(ctx, r.RunID.String(), o.Index, o.Kind.String(),
			o.Description, o.Status.String(), millis(o.Duration), o.Message)
		if err != nil {
			return fmt.Errorf("failed to insert outcome %d: %w", o.Index, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit run: %w", err)
	}
	return nil
}

// Recent returns up to limit runs, newest first, without task details.
func (s *Store) Recent(ctx context.Context, limit int) ([]Run, error) {
	if limit <= 0 {
		return nil, nil
	}

	rows, err := s.db.QueryContext(ctx,
		`SELECT id, script, started_at, elapsed_ms, ok FROM runs
		 ORDER BY started_at DESC, rowid DESC LIMIT ?`, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to query runs: %w", err)
	}
	defer rows.Close()

	var runs []Run
	for rows.Next() {
		run, err := scanRun(rows)
		if err != nil {
			return nil, err
		}
		runs = append(runs, run)
	}
	return runs, rows.Err()
}

// Get returns one run with its task outcomes in order.
func (s *Store) Get(ctx context.Context, id string) (*Run, error) {
	row := s.db.QueryRowContext(ctx,
		`SELECT id, script, started_at, elapsed_ms, ok FROM runs WHERE id = ?`, id)
	run, err := scanRun(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("%w: %s", ErrRunNotFound, id)
	}
	if err != nil {
		return nil, err
	}

	rows, err := s.db.QueryContext(ctx,
		`SELECT seq, kind, description, status, duration_ms, message FROM task_outcomes
		 WHERE run_id = ? ORDER BY seq`, id)
	if err != nil {
		return nil, fmt.Errorf("failed to query outcomes: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var (
			t  Task
			ms float64
		)
		if err := rows.Scan(&t.Seq, &t.Kind, &t.Description, &t.Status, &ms, &t.Message); err != nil {
			return nil, fmt.Errorf("failed to scan outcome: %w", err)
		}
		t.Duration = duration(ms)
		run.Tasks = append(run.Tasks, t)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return &run, nil
}

type scanner interface {
	Scan(dest ...any) error
}

func scanRun(sc scanner) (Run, error) {
	var (
		run     Run
		started int64
		ms      float64
	)
	if err := sc.Scan(&run.ID, &run.Script, &started, &ms, &run.OK); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return Run{}, err
		}
		return Run{}, fmt.Errorf("failed to scan run: %w", err)
	}
	run.Started = time.Unix(0, started)
	run.Elapsed = duration(ms)
	return run, nil
}

func millis(d time.Duration) float64 {
	return float64(d) / float64(time.Millisecond)
}

func duration(ms float64) time.Duration {
	return time.Duration(ms * float64(time.Millisecond))
}

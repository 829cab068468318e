// Package history records replay runs in a SQLite database so past results
// can be listed with `tracereplay history`.
package history

import (
	"context"
	"database/sql"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	_ "modernc.org/sqlite"
)

const schema = `
CREATE TABLE IF NOT EXISTS replay_runs (
	id INTEGER PRIMARY KEY AUTOINCREMENT,
	trace_path TEXT NOT NULL,
	tracers TEXT NOT NULL,
	packets INTEGER NOT NULL,
	replayed INTEGER NOT NULL,
	failed INTEGER NOT NULL,
	skipped INTEGER NOT NULL,
	warnings INTEGER NOT NULL,
	errors INTEGER NOT NULL,
	outcome TEXT NOT NULL,
	duration_ms INTEGER NOT NULL,
	created_at INTEGER NOT NULL
);
CREATE INDEX IF NOT EXISTS replay_runs_created_at ON replay_runs (created_at);
`

// Outcome values stored with a run.
const (
	OutcomeOK        = "ok"
	OutcomeDegraded  = "degraded"
	OutcomeLoadError = "load-error"
	OutcomeCancelled = "cancelled"
)

// Run is one recorded replay.
type Run struct {
	ID        int64
	TracePath string
	Tracers   string
	Packets   int
	Replayed  int
	Failed    int
	Skipped   int
	Warnings  int
	Errors    int
	Outcome   string
	Duration  time.Duration
	CreatedAt time.Time
}

// Store provides SQLite-backed run history.
type Store struct {
	sqlDB *sql.DB
}

// Open opens (creating if needed) the history database at path.
func Open(path string) (*Store, error) {
	if strings.TrimSpace(path) == "" {
		return nil, fmt.Errorf("storage path is required")
	}
	cleanPath := filepath.Clean(path)
	if err := os.MkdirAll(filepath.Dir(cleanPath), 0o755); err != nil {
		return nil, fmt.Errorf("create history dir: %w", err)
	}
	dsn := cleanPath + "?_pragma=journal_mode(WAL)&_pragma=busy_timeout(5000)&_pragma=synchronous(NORMAL)"
	sqlDB, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("open sqlite db: %w", err)
	}
	if err := sqlDB.Ping(); err != nil {
		_ = sqlDB.Close()
		return nil, fmt.Errorf("ping sqlite db: %w", err)
	}
	if _, err := sqlDB.Exec(schema); err != nil {
		_ = sqlDB.Close()
		return nil, fmt.Errorf("apply schema: %w", err)
	}
	return &Store{sqlDB: sqlDB}, nil
}

// Close releases the SQLite connection.
func (s *Store) Close() error {
	if s == nil || s.sqlDB == nil {
		return nil
	}
	return s.sqlDB.Close()
}

// Record persists run and returns its id.
func (s *Store) Record(ctx context.Context, run Run) (int64, error) {
	if err := ctx.Err(); err != nil {
		return 0, err
	}
	if s == nil || s.sqlDB == nil {
		return 0, fmt.Errorf("storage is not configured")
	}
	run.TracePath = strings.TrimSpace(run.TracePath)
	if run.TracePath == "" {
		return 0, fmt.Errorf("trace path is required")
	}
	if run.Outcome == "" {
		return 0, fmt.Errorf("outcome is required")
	}
	if run.CreatedAt.IsZero() {
		run.CreatedAt = time.Now().UTC()
	}

	res, err := s.sqlDB.ExecContext(ctx, `
INSERT INTO replay_runs (
	trace_path,
	tracers,
	packets,
	replayed,
	failed,
	skipped,
	warnings,
	errors,
	outcome,
	duration_ms,
	created_at
) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
`,
		run.TracePath,
		run.Tracers,
		run.Packets,
		run.Replayed,
		run.Failed,
		run.Skipped,
		run.Warnings,
		run.Errors,
		run.Outcome,
		run.Duration.Milliseconds(),
		run.CreatedAt.UTC().UnixMilli(),
	)
	if err != nil {
		return 0, fmt.Errorf("record run: %w", err)
	}
	id, err := res.LastInsertId()
	if err != nil {
		return 0, fmt.Errorf("record run: %w", err)
	}
	return id, nil
}

// List returns up to limit runs, newest first.
func (s *Store) List(ctx context.Context, limit int) ([]Run, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if s == nil || s.sqlDB == nil {
		return nil, fmt.Errorf("storage is not configured")
	}
	if limit <= 0 {
		return nil, fmt.Errorf("limit must be greater than zero")
	}

	rows, err := s.sqlDB.QueryContext(ctx, `
SELECT
	id,
	trace_path,
	tracers,
	packets,
	replayed,
	failed,
	skipped,
	warnings,
	errors,
	outcome,
	duration_ms,
	created_at
FROM replay_runs
ORDER BY created_at DESC, id DESC
LIMIT ?
`, limit)
	if err != nil {
		return nil, fmt.Errorf("list runs: %w", err)
	}
	defer rows.Close()

	runs := make([]Run, 0, limit)
	for rows.Next() {
		var run Run
		var durationMS, createdAt int64
		if err := rows.Scan(
			&run.ID,
			&run.TracePath,
			&run.Tracers,
			&run.Packets,
			&run.Replayed,
			&run.Failed,
			&run.Skipped,
			&run.Warnings,
			&run.Errors,
			&run.Outcome,
			&durationMS,
			&createdAt,
		); err != nil {
			return nil, fmt.Errorf("scan run: %w", err)
		}
		run.Duration = time.Duration(durationMS) * time.Millisecond
		run.CreatedAt = time.UnixMilli(createdAt).UTC()
		runs = append(runs, run)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate runs: %w", err)
	}
	return runs, nil
}

package telemetry

import (
	"context"
	"database/sql"
	stderrors "errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/google/uuid"
	_ "modernc.org/sqlite" // Pure Go SQLite driver (no CGO)

	"github.com/Aman-CERP/joinindex/internal/errors"
)

// ScenarioResult is the outcome of one scenario on one backend.
type ScenarioResult struct {
	Scenario string        `json:"scenario"`
	Backend  string        `json:"backend"`
	Chains   []string      `json:"chains"`
	Facts    int           `json:"facts"`
	Moves    int           `json:"moves"`
	Queries  int64         `json:"queries"`
	Matches  int64         `json:"matches"`
	Verified int           `json:"verified"`
	Elapsed  time.Duration `json:"elapsed"`
}

// OpsPerSecond counts each move as one retract and one insert per chain.
func (r ScenarioResult) OpsPerSecond() float64 {
	if r.Elapsed <= 0 {
		return 0
	}
	ops := float64(int64(r.Moves)*2*int64(len(r.Chains)) + r.Queries)
	return ops / r.Elapsed.Seconds()
}

// OpCount is a per-chain operation total.
type OpCount struct {
	Chain string `json:"chain"`
	Op    string `json:"op"`
	Count int64  `json:"count"`
}

// Run is one persisted bench or check invocation.
type Run struct {
	ID        string           `json:"id"`
	Command   string           `json:"command"`
	StartedAt time.Time        `json:"started_at"`
	Seed      uint64           `json:"seed"`
	Facts     int              `json:"facts"`
	Moves     int              `json:"moves"`
	Results   []ScenarioResult `json:"results"`
	OpCounts  []OpCount        `json:"op_counts,omitempty"`
	HotKeys   []KeyCount       `json:"hot_keys,omitempty"`
}

// NewRunID returns a fresh run identifier.
func NewRunID() string {
	return uuid.NewString()
}

// AttachMetrics copies op totals and hot keys from a metrics snapshot.
func (r *Run) AttachMetrics(s *MetricsSnapshot) {
	if s == nil {
		return
	}
	r.OpCounts = r.OpCounts[:0]
	for _, c := range s.Chains {
		for op, n := range c.Ops {
			r.OpCounts = append(r.OpCounts, OpCount{Chain: c.Chain, Op: string(op), Count: n})
		}
	}
	r.HotKeys = append([]KeyCount(nil), s.HotKeys...)
}

// timeLayout is fixed-width so started_at sorts lexically.
const timeLayout = "2006-01-02T15:04:05.000000000Z"

// RunStore persists runs in SQLite.
type RunStore struct {
	db   *sql.DB
	lock *FileLock
	owns bool
}

// OpenRunStore opens (creating if needed) the run store at path using the
// pure Go driver. Writes are serialized across processes with a FileLock.
func OpenRunStore(path string) (*RunStore, error) {
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return nil, errors.New(errors.ErrCodeResultsStore, "failed to create run store directory", err).
			WithDetail("path", path)
	}

	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, errors.New(errors.ErrCodeResultsStore, "failed to open run store", err).
			WithDetail("path", path)
	}
	db.SetMaxOpenConns(1)
	db.SetMaxIdleConns(1)
	db.SetConnMaxLifetime(0)

	pragmas := []string{
		"PRAGMA journal_mode = WAL",
		"PRAGMA busy_timeout = 5000",
		"PRAGMA synchronous = NORMAL",
		"PRAGMA foreign_keys = ON",
	}
	for _, pragma := range pragmas {
		if _, err := db.Exec(pragma); err != nil {
			_ = db.Close()
			return nil, errors.New(errors.ErrCodeResultsStore, "failed to set pragma", err).
				WithDetail("pragma", pragma)
		}
	}

	if err := InitRunSchema(db); err != nil {
		_ = db.Close()
		return nil, err
	}

	return &RunStore{db: db, lock: NewFileLock(path), owns: true}, nil
}

// NewRunStore wraps an existing connection. The schema must already exist
// and Close leaves db open.
func NewRunStore(db *sql.DB) (*RunStore, error) {
	if db == nil {
		return nil, fmt.Errorf("database connection is required")
	}
	return &RunStore{db: db}, nil
}

// InitRunSchema creates the run tables if they don't exist.
func InitRunSchema(db *sql.DB) error {
	schema := `
	CREATE TABLE IF NOT EXISTS runs (
		id TEXT PRIMARY KEY,
		command TEXT NOT NULL,
		started_at TEXT NOT NULL,
		seed INTEGER NOT NULL,
		facts INTEGER NOT NULL,
		moves INTEGER NOT NULL
	);
	CREATE INDEX IF NOT EXISTS idx_runs_started ON runs(started_at DESC);

	CREATE TABLE IF NOT EXISTS scenario_results (
		run_id TEXT NOT NULL REFERENCES runs(id) ON DELETE CASCADE,
		position INTEGER NOT NULL,
		scenario TEXT NOT NULL,
		backend TEXT NOT NULL,
		chains TEXT NOT NULL,
		facts INTEGER NOT NULL,
		moves INTEGER NOT NULL,
		queries INTEGER NOT NULL,
		matches INTEGER NOT NULL,
		verified INTEGER NOT NULL,
		elapsed_ns INTEGER NOT NULL,
		PRIMARY KEY (run_id, position)
	);

	CREATE TABLE IF NOT EXISTS op_counts (
		run_id TEXT NOT NULL REFERENCES runs(id) ON DELETE CASCADE,
		chain TEXT NOT NULL,
		op TEXT NOT NULL,
		count INTEGER NOT NULL,
		PRIMARY KEY (run_id, chain, op)
	);

	CREATE TABLE IF NOT EXISTS hot_keys (
		run_id TEXT NOT NULL REFERENCES runs(id) ON DELETE CASCADE,
		rank INTEGER NOT NULL,
		chain TEXT NOT NULL,
		key TEXT NOT NULL,
		count INTEGER NOT NULL,
		PRIMARY KEY (run_id, rank)
	);
	`
	if _, err := db.Exec(schema); err != nil {
		return errors.New(errors.ErrCodeResultsStore, "create run schema", err)
	}
	return nil
}

// SaveRun writes run and its children in one transaction.
func (s *RunStore) SaveRun(ctx context.Context, run *Run) error {
	if run.ID == "" {
		run.ID = NewRunID()
	}
	if s.lock != nil {
		if err := s.lock.Lock(); err != nil {
			return errors.New(errors.ErrCodeResultsStore, "lock run store", err)
		}
		defer func() { _ = s.lock.Unlock() }()
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return errors.New(errors.ErrCodeResultsStore, "begin transaction", err)
	}
	defer func() { _ = tx.Rollback() }()

	if _, err := tx.ExecContext(ctx, `
		INSERT INTO runs (id, command, started_at, seed, facts, moves)
		VALUES (?, ?, ?, ?, ?, ?)
	`, run.ID, run.Command, run.StartedAt.UTC().Format(timeLayout),
		int64(run.Seed), run.Facts, run.Moves); err != nil {
		return errors.New(errors.ErrCodeResultsStore, "insert run", err).WithDetail("id", run.ID)
	}

	for i, r := range run.Results {
		if _, err := tx.ExecContext(ctx, `
			INSERT INTO scenario_results
				(run_id, position, scenario, backend, chains, facts, moves, queries, matches, verified, elapsed_ns)
			VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
		`, run.ID, i, r.Scenario, r.Backend, joinChains(r.Chains), r.Facts, r.Moves,
			r.Queries, r.Matches, r.Verified, int64(r.Elapsed)); err != nil {
			return errors.New(errors.ErrCodeResultsStore, "insert scenario result", err).
				WithDetail("scenario", r.Scenario)
		}
	}

	for _, c := range run.OpCounts {
		if _, err := tx.ExecContext(ctx, `
			INSERT INTO op_counts (run_id, chain, op, count) VALUES (?, ?, ?, ?)
			ON CONFLICT(run_id, chain, op) DO UPDATE SET count = count + excluded.count
		`, run.ID, c.Chain, c.Op, c.Count); err != nil {
			return errors.New(errors.ErrCodeResultsStore, "insert op count", err)
		}
	}

	for i, k := range run.HotKeys {
		if _, err := tx.ExecContext(ctx, `
			INSERT INTO hot_keys (run_id, rank, chain, key, count) VALUES (?, ?, ?, ?, ?)
		`, run.ID, i, k.Chain, k.Key, k.Count); err != nil {
			return errors.New(errors.ErrCodeResultsStore, "insert hot key", err)
		}
	}

	if err := tx.Commit(); err != nil {
		return errors.New(errors.ErrCodeResultsStore, "commit transaction", err)
	}
	return nil
}

// ListRuns returns the most recent runs with their scenario results, newest
// first. Op counts and hot keys are only loaded by GetRun.
func (s *RunStore) ListRuns(ctx context.Context, limit int) ([]Run, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT id, command, started_at, seed, facts, moves
		FROM runs
		ORDER BY started_at DESC
		LIMIT ?
	`, limit)
	if err != nil {
		return nil, errors.New(errors.ErrCodeResultsStore, "query runs", err)
	}

	var runs []Run
	for rows.Next() {
		run, err := scanRun(rows)
		if err != nil {
			_ = rows.Close()
			return nil, err
		}
		runs = append(runs, *run)
	}
	if err := rows.Err(); err != nil {
		_ = rows.Close()
		return nil, errors.New(errors.ErrCodeResultsStore, "iterate runs", err)
	}
	_ = rows.Close()

	for i := range runs {
		results, err := s.results(ctx, runs[i].ID)
		if err != nil {
			return nil, err
		}
		runs[i].Results = results
	}
	return runs, nil
}

// GetRun loads one run by ID or unique ID prefix.
func (s *RunStore) GetRun(ctx context.Context, id string) (*Run, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT id, command, started_at, seed, facts, moves
		FROM runs
		WHERE id = ? OR id LIKE ? || '%'
		ORDER BY id = ? DESC
		LIMIT 2
	`, id, id, id)
	if err != nil {
		return nil, errors.New(errors.ErrCodeResultsStore, "query run", err)
	}

	var found []*Run
	for rows.Next() {
		run, err := scanRun(rows)
		if err != nil {
			_ = rows.Close()
			return nil, err
		}
		found = append(found, run)
	}
	_ = rows.Close()

	switch {
	case len(found) == 0:
		return nil, errors.New(errors.ErrCodeResultsStore, "run not found", sql.ErrNoRows).
			WithDetail("id", id).
			WithSuggestion("run 'joinindex stats' to list stored runs")
	case len(found) > 1 && found[0].ID != id:
		return nil, errors.New(errors.ErrCodeResultsStore, "run id prefix is ambiguous", nil).
			WithDetail("id", id)
	}
	run := found[0]

	if run.Results, err = s.results(ctx, run.ID); err != nil {
		return nil, err
	}
	if run.OpCounts, err = s.opCounts(ctx, run.ID); err != nil {
		return nil, err
	}
	if run.HotKeys, err = s.hotKeys(ctx, run.ID); err != nil {
		return nil, err
	}
	return run, nil
}

// IsNotFound reports whether err came from GetRun missing its run.
func IsNotFound(err error) bool {
	return stderrors.Is(err, sql.ErrNoRows)
}

// Close releases resources. A connection passed to NewRunStore stays open.
func (s *RunStore) Close() error {
	if !s.owns {
		return nil
	}
	return s.db.Close()
}

type scanner interface {
	Scan(dest ...any) error
}

func scanRun(row scanner) (*Run, error) {
	var (
		run     Run
		started string
		seed    int64
	)
	if err := row.Scan(&run.ID, &run.Command, &started, &seed, &run.Facts, &run.Moves); err != nil {
		return nil, errors.New(errors.ErrCodeResultsStore, "scan run", err)
	}
	t, err := time.Parse(timeLayout, started)
	if err != nil {
		return nil, errors.New(errors.ErrCodeResultsStore, "parse run start time", err).
			WithDetail("started_at", started)
	}
	run.StartedAt = t
	run.Seed = uint64(seed)
	return &run, nil
}

func (s *RunStore) results(ctx context.Context, runID string) ([]ScenarioResult, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT scenario, backend, chains, facts, moves, queries, matches, verified, elapsed_ns
		FROM scenario_results
		WHERE run_id = ?
		ORDER BY position
	`, runID)
	if err != nil {
		return nil, errors.New(errors.ErrCodeResultsStore, "query scenario results", err)
	}
	defer rows.Close()

	var results []ScenarioResult
	for rows.Next() {
		var (
			r       ScenarioResult
			chains  string
			elapsed int64
		)
		if err := rows.Scan(&r.Scenario, &r.Backend, &chains, &r.Facts, &r.Moves,
			&r.Queries, &r.Matches, &r.Verified, &elapsed); err != nil {
			return nil, errors.New(errors.ErrCodeResultsStore, "scan scenario result", err)
		}
		r.Chains = splitChains(chains)
		r.Elapsed = time.Duration(elapsed)
		results = append(results, r)
	}
	return results, rows.Err()
}

func (s *RunStore) opCounts(ctx context.Context, runID string) ([]OpCount, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT chain, op, count FROM op_counts WHERE run_id = ? ORDER BY chain, op
	`, runID)
	if err != nil {
		return nil, errors.New(errors.ErrCodeResultsStore, "query op counts", err)
	}
	defer rows.Close()

	var counts []OpCount
	for rows.Next() {
		var c OpCount
		if err := rows.Scan(&c.Chain, &c.Op, &c.Count); err != nil {
			return nil, errors.New(errors.ErrCodeResultsStore, "scan op count", err)
		}
		counts = append(counts, c)
	}
	return counts, rows.Err()
}

func (s *RunStore) hotKeys(ctx context.Context, runID string) ([]KeyCount, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT chain, key, count FROM hot_keys WHERE run_id = ? ORDER BY rank
	`, runID)
	if err != nil {
		return nil, errors.New(errors.ErrCodeResultsStore, "query hot keys", err)
	}
	defer rows.Close()

	var keys []KeyCount
	for rows.Next() {
		var k KeyCount
		if err := rows.Scan(&k.Chain, &k.Key, &k.Count); err != nil {
			return nil, errors.New(errors.ErrCodeResultsStore, "scan hot key", err)
		}
		keys = append(keys, k)
	}
	return keys, rows.Err()
}

// Chain shapes never contain a newline.
func joinChains(chains []string) string {
	return strings.Join(chains, "\n")
}

func splitChains(s string) []string {
	if s == "" {
		return nil
	}
	return strings.Split(s, "\n")
}

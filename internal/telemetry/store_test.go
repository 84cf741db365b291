package telemetry

import (
	"context"
	"database/sql"
	"path/filepath"
	"testing"
	"time"

	_ "github.com/mattn/go-sqlite3"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Aman-CERP/joinindex/internal/errors"
)

func setupTestDB(t *testing.T) *sql.DB {
	t.Helper()

	dbPath := filepath.Join(t.TempDir(), "test.db")
	db, err := sql.Open("sqlite3", dbPath+"?_journal_mode=WAL&_foreign_keys=on")
	require.NoError(t, err)

	require.NoError(t, InitRunSchema(db))

	t.Cleanup(func() {
		_ = db.Close()
	})

	return db
}

func setupTestStore(t *testing.T) *RunStore {
	t.Helper()
	store, err := NewRunStore(setupTestDB(t))
	require.NoError(t, err)
	return store
}

func sampleRun(id string, started time.Time) *Run {
	return &Run{
		ID:        id,
		Command:   "bench",
		StartedAt: started,
		Seed:      42,
		Facts:     100,
		Moves:     1000,
		Results: []ScenarioResult{
			{
				Scenario: "equal",
				Backend:  "linked",
				Chains:   []string{"==[2] -> linked", "==[2] -> linked"},
				Facts:    100,
				Moves:    1000,
				Queries:  1000,
				Matches:  4321,
				Verified: 2,
				Elapsed:  150 * time.Millisecond,
			},
			{
				Scenario: "equal",
				Backend:  "indexed",
				Chains:   []string{"==[2] -> indexed"},
				Facts:    100,
				Moves:    1000,
				Queries:  1000,
				Matches:  4321,
				Elapsed:  120 * time.Millisecond,
			},
		},
		OpCounts: []OpCount{
			{Chain: "equal/linked/left", Op: "put", Count: 1100},
			{Chain: "equal/linked/left", Op: "remove", Count: 1000},
		},
		HotKeys: []KeyCount{
			{Chain: "equal/linked/left", Key: "{1 3}", Count: 17},
			{Chain: "equal/linked/left", Key: "{2 0}", Count: 9},
		},
	}
}

func TestRunStore_SaveAndGetRun(t *testing.T) {
	store := setupTestStore(t)
	ctx := context.Background()
	started := time.Date(2026, 3, 1, 10, 0, 0, 123, time.UTC)

	// Given: a saved run
	run := sampleRun("run-1", started)
	require.NoError(t, store.SaveRun(ctx, run))

	// When: reading it back
	got, err := store.GetRun(ctx, "run-1")

	// Then: every part round-trips
	require.NoError(t, err)
	assert.Equal(t, "bench", got.Command)
	assert.True(t, started.Equal(got.StartedAt))
	assert.Equal(t, uint64(42), got.Seed)
	assert.Equal(t, run.Results, got.Results)
	assert.Equal(t, run.OpCounts, got.OpCounts)
	assert.Equal(t, run.HotKeys, got.HotKeys)
}

func TestRunStore_SaveRun_AssignsID(t *testing.T) {
	store := setupTestStore(t)
	run := sampleRun("", time.Now())

	require.NoError(t, store.SaveRun(context.Background(), run))

	assert.Len(t, run.ID, 36)
}

func TestRunStore_SaveRun_DuplicateIDFails(t *testing.T) {
	store := setupTestStore(t)
	ctx := context.Background()
	require.NoError(t, store.SaveRun(ctx, sampleRun("dup", time.Now())))

	err := store.SaveRun(ctx, sampleRun("dup", time.Now()))

	require.Error(t, err)
	assert.Equal(t, errors.ErrCodeResultsStore, errors.GetCode(err))
}

func TestRunStore_SaveRun_LargeSeed(t *testing.T) {
	store := setupTestStore(t)
	ctx := context.Background()
	run := sampleRun("seed", time.Now())
	run.Seed = 1<<63 + 5

	require.NoError(t, store.SaveRun(ctx, run))
	got, err := store.GetRun(ctx, "seed")

	require.NoError(t, err)
	assert.Equal(t, uint64(1<<63+5), got.Seed)
}

func TestRunStore_ListRuns_NewestFirstWithLimit(t *testing.T) {
	store := setupTestStore(t)
	ctx := context.Background()
	base := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)
	for i, id := range []string{"a", "b", "c"} {
		require.NoError(t, store.SaveRun(ctx, sampleRun(id, base.Add(time.Duration(i)*time.Hour))))
	}

	runs, err := store.ListRuns(ctx, 2)

	require.NoError(t, err)
	require.Len(t, runs, 2)
	assert.Equal(t, "c", runs[0].ID)
	assert.Equal(t, "b", runs[1].ID)
	assert.Len(t, runs[0].Results, 2)
	assert.Empty(t, runs[0].HotKeys, "hot keys are only loaded by GetRun")
}

func TestRunStore_GetRun_ByPrefix(t *testing.T) {
	store := setupTestStore(t)
	ctx := context.Background()
	require.NoError(t, store.SaveRun(ctx, sampleRun("abc123", time.Now())))
	require.NoError(t, store.SaveRun(ctx, sampleRun("abd456", time.Now())))

	t.Run("unique prefix", func(t *testing.T) {
		got, err := store.GetRun(ctx, "abc")
		require.NoError(t, err)
		assert.Equal(t, "abc123", got.ID)
	})

	t.Run("ambiguous prefix", func(t *testing.T) {
		_, err := store.GetRun(ctx, "ab")
		require.Error(t, err)
		assert.Contains(t, err.Error(), "ambiguous")
	})

	t.Run("missing", func(t *testing.T) {
		_, err := store.GetRun(ctx, "zzz")
		require.Error(t, err)
		assert.True(t, IsNotFound(err))
	})
}

func TestRunStore_AttachMetrics(t *testing.T) {
	m := NewIndexMetrics(DefaultMetricsConfig())
	observeN(m, "c1", "put", 3)
	observeN(m, "c1", "iterator", 2)

	run := &Run{ID: "m"}
	run.AttachMetrics(m.Snapshot())

	assert.ElementsMatch(t, []OpCount{
		{Chain: "c1", Op: "put", Count: 3},
		{Chain: "c1", Op: "iterator", Count: 2},
	}, run.OpCounts)
	require.Len(t, run.HotKeys, 1)
	assert.Equal(t, int64(2), run.HotKeys[0].Count)
}

func TestScenarioResult_OpsPerSecond(t *testing.T) {
	r := ScenarioResult{Chains: []string{"a", "b"}, Moves: 10, Queries: 60, Elapsed: time.Second}
	assert.InDelta(t, 100.0, r.OpsPerSecond(), 1e-9)

	assert.Zero(t, ScenarioResult{Moves: 10}.OpsPerSecond())
}

func TestOpenRunStore_PureGoDriver(t *testing.T) {
	path := filepath.Join(t.TempDir(), "data", "runs.db")

	// Given: a store opened through the production path
	store, err := OpenRunStore(path)
	require.NoError(t, err)
	ctx := context.Background()

	// When: saving and reopening
	require.NoError(t, store.SaveRun(ctx, sampleRun("persisted", time.Now())))
	require.NoError(t, store.Close())

	reopened, err := OpenRunStore(path)
	require.NoError(t, err)
	defer reopened.Close()

	// Then: the run survives and the writer lock was released
	got, err := reopened.GetRun(ctx, "persisted")
	require.NoError(t, err)
	assert.Len(t, got.Results, 2)
	assert.False(t, reopened.lock.IsLocked())
}

func TestNewRunStore_NilDB(t *testing.T) {
	_, err := NewRunStore(nil)
	assert.Error(t, err)
}

func TestSplitChains(t *testing.T) {
	assert.Nil(t, splitChains(""))
	assert.Equal(t, []string{"a", "b -> c"}, splitChains(joinChains([]string{"a", "b -> c"})))
}

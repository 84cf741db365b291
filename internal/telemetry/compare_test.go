package telemetry

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// result builds a result whose OpsPerSecond is ops.
func result(scenario, backend string, ops float64, matches int64) ScenarioResult {
	return ScenarioResult{
		Scenario: scenario,
		Backend:  backend,
		Queries:  int64(ops),
		Matches:  matches,
		Elapsed:  time.Second,
	}
}

func TestCompareRuns(t *testing.T) {
	// Given: a baseline and a current run on the same workload
	baseline := &Run{ID: "base", Seed: 7, Facts: 100, Moves: 1000, Results: []ScenarioResult{
		result("equal", "linked", 1000, 50),
		result("equal", "indexed", 1000, 50),
		result("mixed", "linked", 1000, 80),
		result("contained-in", "linked", 1000, 10),
	}}
	current := &Run{ID: "cur", Seed: 7, Facts: 100, Moves: 1000, Results: []ScenarioResult{
		result("equal", "linked", 700, 50),
		result("equal", "indexed", 1200, 50),
		result("mixed", "linked", 950, 80),
		result("deep", "linked", 400, 5),
	}}

	// When: comparing
	c := CompareRuns(baseline, current, 0)

	// Then: each job is classified and results are sorted
	assert.True(t, c.SameWorkload)
	assert.Equal(t, DefaultRegressionThreshold, c.Threshold)
	require.Len(t, c.Deltas, 5)

	statuses := map[string]CompareStatus{}
	for _, d := range c.Deltas {
		statuses[d.Scenario+"/"+d.Backend] = d.Status
	}
	assert.Equal(t, map[string]CompareStatus{
		"equal/linked":        StatusRegression,
		"equal/indexed":       StatusImproved,
		"mixed/linked":        StatusOK,
		"deep/linked":         StatusNew,
		"contained-in/linked": StatusMissing,
	}, statuses)
	assert.Equal(t, "contained-in", c.Deltas[0].Scenario)
	assert.Equal(t, 1, c.Regressions)
	assert.Equal(t, 1, c.Improvements)
	assert.InDelta(t, -30.0, c.Deltas[3].DeltaPct, 1e-9, "equal/linked")
	assert.True(t, c.Failed())
}

func TestCompareRuns_MatchDisagreementFails(t *testing.T) {
	baseline := &Run{Seed: 1, Facts: 10, Moves: 10, Results: []ScenarioResult{result("equal", "linked", 100, 5)}}
	current := &Run{Seed: 1, Facts: 10, Moves: 10, Results: []ScenarioResult{result("equal", "linked", 100, 6)}}

	c := CompareRuns(baseline, current, 0.5)

	require.Len(t, c.Deltas, 1)
	assert.True(t, c.Deltas[0].MatchesDiffer)
	assert.Zero(t, c.Regressions)
	assert.True(t, c.Failed())
}

func TestCompareRuns_DifferentWorkloadIgnoresMatches(t *testing.T) {
	baseline := &Run{Seed: 1, Results: []ScenarioResult{result("equal", "linked", 100, 5)}}
	current := &Run{Seed: 2, Results: []ScenarioResult{result("equal", "linked", 100, 6)}}

	c := CompareRuns(baseline, current, 0)

	assert.False(t, c.SameWorkload)
	assert.False(t, c.Failed())
}

package telemetry

import "slices"

const (
	// DefaultRegressionThreshold is the throughput drop that fails a comparison.
	DefaultRegressionThreshold = 0.20
	// ImprovementThreshold is the throughput gain reported as an improvement.
	ImprovementThreshold = 0.10
)

// CompareStatus classifies one scenario/backend pair.
type CompareStatus string

// Comparison statuses.
const (
	StatusOK         CompareStatus = "ok"
	StatusRegression CompareStatus = "regression"
	StatusImproved   CompareStatus = "improved"
	StatusNew        CompareStatus = "new"
	StatusMissing    CompareStatus = "missing"
)

// ResultDelta compares the throughput of one job across two runs.
type ResultDelta struct {
	Scenario string        `json:"scenario"`
	Backend  string        `json:"backend"`
	Baseline float64       `json:"baseline_ops_per_sec"`
	Current  float64       `json:"current_ops_per_sec"`
	DeltaPct float64       `json:"delta_percent"`
	Status   CompareStatus `json:"status"`
	// MatchesDiffer is set when the runs share a seed and workload but
	// observed a different number of matches.
	MatchesDiffer bool `json:"matches_differ,omitempty"`
}

// Comparison is the outcome of comparing a run against a baseline run.
type Comparison struct {
	BaselineID   string        `json:"baseline_id"`
	CurrentID    string        `json:"current_id"`
	Threshold    float64       `json:"threshold"`
	SameWorkload bool          `json:"same_workload"`
	Deltas       []ResultDelta `json:"deltas"`
	Regressions  int           `json:"regressions"`
	Improvements int           `json:"improvements"`
}

// Failed reports whether any job regressed past the threshold or, on the
// same workload, disagreed on matches.
func (c *Comparison) Failed() bool {
	if c.Regressions > 0 {
		return true
	}
	for _, d := range c.Deltas {
		if d.MatchesDiffer {
			return true
		}
	}
	return false
}

// CompareRuns compares current against baseline job by job. Deltas are
// positive when current is faster. A threshold of 0 or less uses
// DefaultRegressionThreshold.
func CompareRuns(baseline, current *Run, threshold float64) *Comparison {
	if threshold <= 0 {
		threshold = DefaultRegressionThreshold
	}
	c := &Comparison{
		BaselineID: baseline.ID,
		CurrentID:  current.ID,
		Threshold:  threshold,
		SameWorkload: baseline.Seed == current.Seed &&
			baseline.Facts == current.Facts && baseline.Moves == current.Moves,
	}

	type jobKey struct{ scenario, backend string }
	base := make(map[jobKey]ScenarioResult, len(baseline.Results))
	for _, r := range baseline.Results {
		base[jobKey{r.Scenario, r.Backend}] = r
	}

	seen := make(map[jobKey]bool, len(current.Results))
	for _, cur := range current.Results {
		k := jobKey{cur.Scenario, cur.Backend}
		seen[k] = true
		d := ResultDelta{Scenario: cur.Scenario, Backend: cur.Backend, Current: cur.OpsPerSecond()}

		b, ok := base[k]
		if !ok {
			d.Status = StatusNew
			c.Deltas = append(c.Deltas, d)
			continue
		}
		d.Baseline = b.OpsPerSecond()
		d.MatchesDiffer = c.SameWorkload && b.Matches != cur.Matches

		change := 0.0
		if d.Baseline > 0 {
			change = (d.Current - d.Baseline) / d.Baseline
		}
		d.DeltaPct = change * 100
		switch {
		case change < -threshold:
			d.Status = StatusRegression
			c.Regressions++
		case change > ImprovementThreshold:
			d.Status = StatusImproved
			c.Improvements++
		default:
			d.Status = StatusOK
		}
		c.Deltas = append(c.Deltas, d)
	}

	for _, b := range baseline.Results {
		if !seen[jobKey{b.Scenario, b.Backend}] {
			c.Deltas = append(c.Deltas, ResultDelta{
				Scenario: b.Scenario,
				Backend:  b.Backend,
				Baseline: b.OpsPerSecond(),
				Status:   StatusMissing,
			})
		}
	}

	slices.SortStableFunc(c.Deltas, func(a, b ResultDelta) int {
		if a.Scenario != b.Scenario {
			if a.Scenario < b.Scenario {
				return -1
			}
			return 1
		}
		if a.Backend < b.Backend {
			return -1
		}
		if a.Backend > b.Backend {
			return 1
		}
		return 0
	})
	return c
}

package bench

import (
	"math/rand/v2"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Aman-CERP/joinindex/internal/config"
	"github.com/Aman-CERP/joinindex/internal/errors"
	"github.com/Aman-CERP/joinindex/pkg/index"
)

// duplicating visits every tuple twice.
type duplicating struct {
	index.Indexer[*Lesson]
}

func (d duplicating) ForEach(key any, fn func(*Lesson)) {
	d.Indexer.ForEach(key, func(l *Lesson) {
		fn(l)
		fn(l)
	})
}

func loadedJob(t *testing.T, scenario string, backend index.Backend) (*job, *side, *side, []*Lesson) {
	t.Helper()
	scenarios, err := LookupScenarios([]string{scenario})
	require.NoError(t, err)
	j := &job{scenario: scenarios[0], backend: backend, workload: testWorkload(), logger: discardLogger()}
	left, right, err := j.buildSides()
	require.NoError(t, err)

	lessons := j.workload.Generate(60, rand.New(rand.NewPCG(5, 5)))
	for _, l := range lessons {
		j.insert(left, right, l)
	}
	return j, left, right, lessons
}

func TestSide_Verify_AgreesWithScan(t *testing.T) {
	for _, scenario := range config.AllScenarios {
		for _, backend := range []index.Backend{index.LinkedBackend, index.IndexedBackend} {
			t.Run(scenario+"/"+backend.String(), func(t *testing.T) {
				j, left, right, lessons := loadedJob(t, scenario, backend)

				err := j.verify(left, right, lessons, rand.New(rand.NewPCG(9, 9)), 40)

				assert.NoError(t, err)
			})
		}
	}
}

func TestSide_Verify_DetectsWrongAnswer(t *testing.T) {
	// Given: a side whose reference predicate accepts everything
	_, left, _, lessons := loadedJob(t, config.ScenarioEqual, index.LinkedBackend)
	left.matches = func(_, _ *Lesson) bool { return true }

	// When: verifying
	err := left.verify(lessons, lessons[:1])

	// Then: a fatal verification error names the chain and probe
	require.Error(t, err)
	assert.Equal(t, errors.ErrCodeVerificationFailed, errors.GetCode(err))
	assert.True(t, errors.IsFatal(err))
	ie := err.(*errors.IndexError)
	assert.Equal(t, left.name, ie.Details["chain"])
	assert.Equal(t, "0", ie.Details["probe_id"])
	assert.NotEmpty(t, ie.Details["missing"])
}

func TestSide_Verify_DetectsDuplicates(t *testing.T) {
	_, left, _, lessons := loadedJob(t, config.ScenarioEqual, index.LinkedBackend)
	left.idx = duplicating{left.idx}

	err := left.verify(lessons, lessons[:1])

	require.Error(t, err)
	assert.Contains(t, err.Error(), "visited twice")
}

func TestSupportsGet(t *testing.T) {
	tests := []struct {
		scenario string
		backend  index.Backend
		left     bool
		right    bool
	}{
		{config.ScenarioEqual, index.LinkedBackend, false, false},
		{config.ScenarioEqual, index.IndexedBackend, true, true},
		{config.ScenarioMixed, index.IndexedBackend, true, true},
		{config.ScenarioContainingAnyOf, index.IndexedBackend, false, false},
		// ContainedIn flips to Containing on the right.
		{config.ScenarioContainedIn, index.IndexedBackend, true, false},
	}
	for _, tt := range tests {
		t.Run(tt.scenario+"/"+tt.backend.String(), func(t *testing.T) {
			_, left, right, _ := loadedJob(t, tt.scenario, tt.backend)

			assert.Equal(t, tt.left, left.positional)
			assert.Equal(t, tt.right, right.positional)
		})
	}
}

func TestDifference(t *testing.T) {
	assert.Equal(t, []int{1, 4}, difference([]int{1, 2, 3, 4}, []int{2, 3, 5}))
	assert.Nil(t, difference([]int{2}, []int{1, 2}))
}

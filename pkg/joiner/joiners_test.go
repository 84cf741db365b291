package joiner

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Aman-CERP/joinindex/pkg/keys"
)

type lesson struct {
	room  string
	day   string
	start int
}

type slot struct {
	room string
	day  string
	end  int
}

func TestJoiners_Builder(t *testing.T) {
	// Given: an equality on room and day followed by an ordering on time
	j := New[lesson, slot]().
		Equal(func(l lesson) any { return l.room }, func(s slot) any { return s.room }).
		Equal(func(l lesson) any { return l.day }, func(s slot) any { return s.day }).
		LessThan(func(l lesson) any { return l.start }, func(s slot) any { return s.end }).
		WithComparator(keys.Reverse(keys.Compare))

	// Then: declaration order is kept and the comparator sticks to the last joiner
	assert.Equal(t, 3, j.Len())
	assert.Equal(t, []Type{Equal, Equal, LessThan}, j.Types())
	comparators := j.Comparators()
	assert.Nil(t, comparators[0])
	require.NotNil(t, comparators[2])
	assert.Equal(t, 1, comparators[2](1, 2))

	preds := j.Predicates()
	require.Len(t, preds, 3)
	assert.Equal(t, LessThan, preds[2].Type)

	l := lesson{room: "R1", day: "Mon", start: 9}
	assert.Equal(t, "Mon", j.LeftMappings()[1](l))
	assert.Equal(t, 12, j.RightMappings()[2](slot{end: 12}))
}

func TestJoiners_Matches(t *testing.T) {
	j := New[lesson, slot]().
		Equal(func(l lesson) any { return l.room }, func(s slot) any { return s.room }).
		LessThan(func(l lesson) any { return l.start }, func(s slot) any { return s.end })

	assert.True(t, j.Matches(lesson{room: "R1", start: 10}, slot{room: "R1", end: 15}))
	assert.False(t, j.Matches(lesson{room: "R1", start: 20}, slot{room: "R1", end: 15}))
	assert.False(t, j.Matches(lesson{room: "R2", start: 10}, slot{room: "R1", end: 15}))
}

func TestJoiners_WithComparatorOnEmptyListIsNoop(t *testing.T) {
	j := New[lesson, slot]().WithComparator(keys.Compare)
	assert.Zero(t, j.Len())
}

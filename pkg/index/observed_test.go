package index

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Aman-CERP/joinindex/pkg/joiner"
)

func TestObserve_ReportsEveryOperation(t *testing.T) {
	// Given: an observed equality chain
	f, err := NewFactory([]Predicate{{Type: joiner.Equal}}, WithBackend(IndexedBackend))
	require.NoError(t, err)
	var events []Event
	idx := Observe(Build[string](f, Left), "rooms", ObserverFunc(func(e Event) { events = append(events, e) }))

	// When: the chain is used
	e1 := idx.Put("R1", "a")
	idx.Put("R1", "b")
	idx.Size("R1")
	idx.ForEach("R1", func(string) {})
	for range idx.Iterator("R1") {
		break
	}
	idx.Get("R1", 0)
	idx.Remove("R1", e1)

	// Then: each call produced one event with its match count
	var ops []Op
	for _, e := range events {
		ops = append(ops, e.Op)
		assert.Equal(t, "rooms", e.Chain)
		assert.Equal(t, "R1", e.Key)
	}
	assert.Equal(t, []Op{OpPut, OpPut, OpSize, OpForEach, OpIterator, OpGet, OpRemove}, ops)
	assert.Equal(t, 2, events[2].Matches)
	assert.Equal(t, 2, events[3].Matches)
	assert.Equal(t, 1, events[4].Matches)
	assert.Equal(t, "== -> indexed", idx.String())
	assert.False(t, idx.IsEmpty())
}

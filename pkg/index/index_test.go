package index

import (
	"slices"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Aman-CERP/joinindex/internal/errors"
	"github.com/Aman-CERP/joinindex/pkg/joiner"
	"github.com/Aman-CERP/joinindex/pkg/keys"
)

var backends = []Backend{LinkedBackend, IndexedBackend}

func TestIndex_EqualityChain_MergedLevel(t *testing.T) {
	for _, backend := range backends {
		t.Run(backend.String(), func(t *testing.T) {
			// Given: room and day equalities merged into one level
			c := newChain(t, joiner.New[*fact, *fact]().Equal(room, room).Equal(day, day), WithBackend(backend))
			require.Equal(t, []Level{{Type: joiner.Equal, Width: 2}}, c.factory.Levels())
			idx := Build[*fact](c.factory, Left)

			first := &fact{id: 1, room: "R1", day: "Mon"}
			for _, f := range []*fact{first, {id: 2, room: "R1", day: "Tue"}, {id: 3, room: "R2", day: "Mon"}} {
				idx.Put(c.leftKey(f), f)
			}

			// When: querying (R1, Mon)
			got := visit(idx, keys.Of("R1", "Mon"))

			// Then: exactly the first tuple matches
			assert.Equal(t, []*fact{first}, got)
			assert.Equal(t, 1, idx.Size(keys.Of("R1", "Mon")))
			assert.Zero(t, idx.Size(keys.Of("R3", "Mon")))
		})
	}
}

func TestIndex_MixedChain_EqualThenLessThan(t *testing.T) {
	for _, backend := range backends {
		t.Run(backend.String(), func(t *testing.T) {
			c := newChain(t, joiner.New[*fact, *fact]().Equal(room, room).LessThan(start, start), WithBackend(backend))
			idx := Build[*fact](c.factory, Left)

			early := &fact{id: 1, room: "R1", start: 10}
			for _, f := range []*fact{early, {id: 2, room: "R1", start: 20}, {id: 3, room: "R2", start: 5}} {
				idx.Put(c.leftKey(f), f)
			}

			query := c.rightKey(&fact{room: "R1", start: 15})

			assert.Equal(t, []*fact{early}, visit(idx, query))
			assert.Equal(t, "== -> < -> "+backend.String(), idx.String())
		})
	}
}

func TestIndex_Comparison_Boundaries(t *testing.T) {
	tests := []struct {
		typ  joiner.Type
		want []int
	}{
		{joiner.LessThan, []int{1}},
		{joiner.LessOrEqual, []int{1, 3}},
		{joiner.GreaterThan, []int{5}},
		{joiner.GreaterOrEqual, []int{3, 5}},
	}
	for _, tt := range tests {
		t.Run(tt.typ.String(), func(t *testing.T) {
			// Given: buckets at 1, 3 and 5
			f, err := NewFactory([]Predicate{{Type: tt.typ}})
			require.NoError(t, err)
			idx := Build[int](f, Left)
			for _, k := range []int{1, 3, 5} {
				idx.Put(k, k)
			}

			// When: querying 3
			var got []int
			idx.ForEach(3, func(v int) { got = append(got, v) })

			// Then: only qualifying buckets are visited
			slices.Sort(got)
			assert.Equal(t, tt.want, got)
			assert.Equal(t, len(tt.want), idx.Size(3))
			assert.ElementsMatch(t, tt.want, slices.Collect(idx.Iterator(3)))
		})
	}
}

func TestIndex_Comparison_SingleBucketFastPath(t *testing.T) {
	f, err := NewFactory([]Predicate{{Type: joiner.GreaterOrEqual}})
	require.NoError(t, err)
	idx := Build[string](f, Left)
	idx.Put(7, "a")
	idx.Put(7, "b")

	assert.Equal(t, 2, idx.Size(7))
	assert.Equal(t, 2, idx.Size(6))
	assert.Zero(t, idx.Size(8))
}

func TestIndex_Comparison_CustomComparator(t *testing.T) {
	// Reversed comparator turns < into "stored key is larger".
	f, err := NewFactory([]Predicate{{Type: joiner.LessThan, Comparator: keys.Reverse(keys.Compare)}})
	require.NoError(t, err)
	idx := Build[int](f, Left)
	for _, k := range []int{1, 3, 5} {
		idx.Put(k, k)
	}

	assert.ElementsMatch(t, []int{5}, slices.Collect(idx.Iterator(3)))
}

func TestIndex_Comparison_RightSideIsFlipped(t *testing.T) {
	// left.start < right.start; the right index stores right facts.
	c := newChain(t, joiner.New[*fact, *fact]().LessThan(start, start))
	right := Build[*fact](c.factory, Right)
	for i, s := range []int{5, 10, 15} {
		f := &fact{id: i, start: s}
		right.Put(c.rightKey(f), f)
	}

	got := visit(right, c.leftKey(&fact{start: 10}))

	assert.Equal(t, []int{2}, ids(got))
	assert.Equal(t, "> -> linked", right.String())
}

func TestIndex_ContainingAnyOf_NoDuplicates(t *testing.T) {
	// Given: one tuple indexed under {A, B, C}
	f, err := NewFactory([]Predicate{{Type: joiner.ContainingAnyOf}})
	require.NoError(t, err)
	idx := Build[string](f, Left)
	idx.Put([]string{"A", "B", "C"}, "t1")

	// When: querying with {A, B}
	query := []string{"A", "B"}

	// Then: the tuple is visited once
	var got []string
	idx.ForEach(query, func(s string) { got = append(got, s) })
	assert.Equal(t, []string{"t1"}, got)
	assert.Equal(t, 1, idx.Size(query))
	assert.Equal(t, []string{"t1"}, slices.Collect(idx.Iterator(query)))
	assert.Equal(t, 1, idx.Size([]string{"C"}))
	assert.Zero(t, idx.Size([]string{"D"}))
	assert.Zero(t, idx.Size([]string{}))
}

func TestIndex_FanOutRetract_PrunesEveryBucket(t *testing.T) {
	for _, typ := range []joiner.Type{joiner.Containing, joiner.ContainingAnyOf} {
		t.Run(typ.String(), func(t *testing.T) {
			// Given: a room level above a set-membership level
			c := newChain(t, joiner.New[*fact, *fact]().Equal(room, room).ContainingAnyOf(skills, skills))
			if typ == joiner.Containing {
				c = newChain(t, joiner.New[*fact, *fact]().Equal(room, room).Containing(skills, skill))
			}
			idx := Build[*fact](c.factory, Left)
			f := &fact{id: 1, room: "R1", skills: []string{"X", "Y"}}
			entry := idx.Put(c.leftKey(f), f)
			require.False(t, idx.IsEmpty())

			// When: the tuple is removed once
			idx.Remove(c.leftKey(f), entry)

			// Then: both element buckets and the room bucket are gone
			assert.True(t, idx.IsEmpty())
			assert.True(t, idx.IsRemovable())
		})
	}
}

func TestIndex_EmptyKeyCollection_StoresNothing(t *testing.T) {
	tests := []struct {
		name   string
		preds  []Predicate
		stored func(elements ...string) any
		query  any
	}{
		{
			name:   "containing any of",
			preds:  []Predicate{{Type: joiner.ContainingAnyOf}},
			stored: func(e ...string) any { return e },
			query:  []string{"A", "B"},
		},
		{
			name:   "equal then containing any of",
			preds:  []Predicate{{Type: joiner.Equal}, {Type: joiner.ContainingAnyOf}},
			stored: func(e ...string) any { return keys.Of("R3", e) },
			query:  keys.Of("R3", []string{"A", "B"}),
		},
		{
			name:   "less than then containing any of",
			preds:  []Predicate{{Type: joiner.LessThan}, {Type: joiner.ContainingAnyOf}},
			stored: func(e ...string) any { return keys.Of(3, e) },
			query:  keys.Of(5, []string{"A", "B"}),
		},
		{
			name:   "equal then containing",
			preds:  []Predicate{{Type: joiner.Equal}, {Type: joiner.Containing}},
			stored: func(e ...string) any { return keys.Of("R3", e) },
			query:  keys.Of("R3", "A"),
		},
		{
			name:   "containing then containing any of",
			preds:  []Predicate{{Type: joiner.Containing}, {Type: joiner.ContainingAnyOf}},
			stored: func(e ...string) any { return keys.Of([]string{"X"}, e) },
			query:  keys.Of("X", []string{"A", "B"}),
		},
	}
	for _, tt := range tests {
		for _, backend := range backends {
			t.Run(tt.name+"/"+backend.String(), func(t *testing.T) {
				f, err := NewFactory(tt.preds, WithBackend(backend))
				require.NoError(t, err)
				idx := Build[string](f, Left)

				// Given: two tuples with empty collections under the same parent key
				first := idx.Put(tt.stored(), "a")
				second := idx.Put(tt.stored(), "b")

				// Then: nothing is stored and no empty bucket is kept
				assert.True(t, idx.IsEmpty())
				assert.True(t, idx.IsRemovable())
				assert.Zero(t, idx.Size(tt.query))

				// When: a real tuple joins them and all three are removed
				kept := idx.Put(tt.stored("A"), "c")
				require.False(t, idx.IsEmpty())
				assert.Equal(t, 1, idx.Size(tt.query))

				err = errors.Capture(func() {
					idx.Remove(tt.stored(), first)
					idx.Remove(tt.stored("A"), kept)
					idx.Remove(tt.stored(), second)
				})

				// Then: every removal succeeds and the chain is empty again
				require.NoError(t, err)
				assert.True(t, idx.IsEmpty())
				assert.Zero(t, idx.Size(tt.query))
			})
		}
	}
}

func TestIndex_ContainingAnyOf_SameTupleValue(t *testing.T) {
	f, err := NewFactory([]Predicate{{Type: joiner.ContainingAnyOf}})
	require.NoError(t, err)
	idx := Build[string](f, Left)
	e := idx.Put([]string{"A"}, "t")

	// When: the same value is put again under another collection
	err = errors.Capture(func() { idx.Put([]string{"B"}, "t") })

	// Then: it is rejected and every query still counts it once
	assert.Equal(t, errors.ErrCodeImpossibleState, errors.GetCode(err))
	assert.Equal(t, 1, idx.Size([]string{"A"}))
	assert.Equal(t, 1, idx.Size([]string{"A", "B"}))
	assert.Zero(t, idx.Size([]string{"B"}))

	// And: once removed, the value may be stored again
	idx.Remove([]string{"A"}, e)
	idx.Put([]string{"A", "B"}, "t")
	assert.Equal(t, 1, idx.Size([]string{"A", "B"}))
}

func TestIndex_Containing_SingleValueQuery(t *testing.T) {
	c := newChain(t, joiner.New[*fact, *fact]().Containing(skills, skill))
	idx := Build[*fact](c.factory, Left)
	a := &fact{id: 1, skills: []string{"A", "B"}}
	b := &fact{id: 2, skills: []string{"B"}}
	idx.Put(c.leftKey(a), a)
	idx.Put(c.leftKey(b), b)

	assert.Equal(t, []int{1, 2}, ids(visit(idx, c.rightKey(&fact{skill: "B"}))))
	assert.Equal(t, []int{1}, ids(visit(idx, c.rightKey(&fact{skill: "A"}))))
	assert.Zero(t, idx.Size(c.rightKey(&fact{skill: "Z"})))
}

func TestIndex_ContainedIn_GetAndIterator(t *testing.T) {
	f, err := NewFactory([]Predicate{{Type: joiner.ContainedIn}}, WithBackend(IndexedBackend))
	require.NoError(t, err)
	idx := Build[string](f, Left)
	idx.Put("A", "a1")
	idx.Put("A", "a2")
	idx.Put("B", "b1")
	idx.Put("C", "c1")

	query := []string{"B", "A", "B"}

	assert.Equal(t, 3, idx.Size(query))
	var got []string
	for i := range idx.Size(query) {
		got = append(got, idx.Get(query, i))
	}
	assert.Equal(t, "b1", got[0])
	assert.ElementsMatch(t, []string{"a1", "a2", "b1"}, got)

	first := ""
	for s := range idx.Iterator(query) {
		first = s
		break
	}
	assert.Equal(t, "b1", first)

	err = errors.Capture(func() { idx.Get(query, 3) })
	assert.Equal(t, errors.ErrCodeKeyOutOfRange, errors.GetCode(err))
}

func TestIndex_NullKeys(t *testing.T) {
	c := newChain(t, joiner.New[*fact, *fact]().Equal(func(f *fact) any {
		if f.room == "" {
			return nil
		}
		return f.room
	}, room))
	idx := Build[*fact](c.factory, Left)
	unassigned := &fact{id: 1}
	idx.Put(c.leftKey(unassigned), unassigned)

	assert.Equal(t, keys.Null, c.leftKey(unassigned))
	assert.Equal(t, 1, idx.Size(keys.Null))
	assert.Equal(t, 1, idx.Size(nil))
	assert.Zero(t, idx.Size(""))
}

func TestIndex_NoPredicates_IsTerminal(t *testing.T) {
	c := newChain(t, joiner.New[*fact, *fact]())
	idx := Build[*fact](c.factory, Left)
	f := &fact{id: 1}

	entry := idx.Put(c.leftKey(f), f)
	assert.Equal(t, keys.None, c.leftKey(f))
	assert.Equal(t, 1, idx.Size(keys.None))
	idx.Remove(keys.None, entry)
	assert.True(t, idx.IsEmpty())
}

func TestIndex_Remove_ImpossibleStates(t *testing.T) {
	tests := []struct {
		name  string
		preds []Predicate
		run   func(idx Indexer[string])
	}{
		{
			name:  "missing equality bucket",
			preds: []Predicate{{Type: joiner.Equal}},
			run: func(idx Indexer[string]) {
				e := idx.Put("A", "t")
				idx.Remove("B", e)
			},
		},
		{
			name:  "missing comparison bucket",
			preds: []Predicate{{Type: joiner.LessThan}},
			run: func(idx Indexer[string]) {
				e := idx.Put(1, "t")
				idx.Remove(2, e)
			},
		},
		{
			name:  "double remove",
			preds: []Predicate{{Type: joiner.Equal}, {Type: joiner.LessThan}},
			run: func(idx Indexer[string]) {
				idx.Put(keys.Of("A", 1), "keep")
				e := idx.Put(keys.Of("A", 1), "t")
				idx.Remove(keys.Of("A", 1), e)
				idx.Remove(keys.Of("A", 1), e)
			},
		},
		{
			name:  "fan-out count changed",
			preds: []Predicate{{Type: joiner.ContainingAnyOf}},
			run: func(idx Indexer[string]) {
				e := idx.Put([]string{"A", "B"}, "t")
				idx.Remove([]string{"A", "B", "C"}, e)
			},
		},
		{
			name:  "empty collection removed twice",
			preds: []Predicate{{Type: joiner.ContainingAnyOf}},
			run: func(idx Indexer[string]) {
				e := idx.Put([]string{}, "t")
				idx.Remove([]string{}, e)
				idx.Remove([]string{}, e)
			},
		},
		{
			name:  "empty collection removed twice below a parent level",
			preds: []Predicate{{Type: joiner.Equal}, {Type: joiner.ContainingAnyOf}},
			run: func(idx Indexer[string]) {
				e := idx.Put(keys.Of("R3", []string{}), "t")
				idx.Remove(keys.Of("R3", []string{}), e)
				idx.Remove(keys.Of("R3", []string{}), e)
			},
		},
		{
			name:  "same tuple twice in containing any of",
			preds: []Predicate{{Type: joiner.ContainingAnyOf}},
			run: func(idx Indexer[string]) {
				idx.Put([]string{"A"}, "t")
				idx.Put([]string{"B"}, "t")
			},
		},
		{
			name:  "foreign entry",
			preds: []Predicate{{Type: joiner.Containing}},
			run: func(idx Indexer[string]) {
				idx.Remove([]string{"A"}, "not an entry")
			},
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f, err := NewFactory(tt.preds)
			require.NoError(t, err)
			idx := Build[string](f, Left)

			err = errors.Capture(func() { tt.run(idx) })

			require.Error(t, err)
			assert.Equal(t, errors.ErrCodeImpossibleState, errors.GetCode(err))
			assert.True(t, errors.IsFatal(err))
		})
	}
}

func TestIndex_Get_Unsupported(t *testing.T) {
	tests := []struct {
		name    string
		backend Backend
		typ     joiner.Type
		key     any
	}{
		{"linked terminal", LinkedBackend, joiner.Equal, "A"},
		{"containing", IndexedBackend, joiner.Containing, "A"},
		{"containing any of", IndexedBackend, joiner.ContainingAnyOf, []string{"A"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f, err := NewFactory([]Predicate{{Type: tt.typ}}, WithBackend(tt.backend))
			require.NoError(t, err)
			idx := Build[string](f, Left)
			idx.Put("A", "t")

			err = errors.Capture(func() { idx.Get(tt.key, 0) })

			assert.Equal(t, errors.ErrCodeUnsupportedOperation, errors.GetCode(err))
		})
	}
}

func TestIndex_Get_PositionalAcrossComparisonBuckets(t *testing.T) {
	f, err := NewFactory([]Predicate{{Type: joiner.GreaterOrEqual}}, WithBackend(IndexedBackend))
	require.NoError(t, err)
	idx := Build[int](f, Left)
	for _, k := range []int{1, 3, 5, 5, 7} {
		idx.Put(k, k)
	}

	var got []int
	for i := range idx.Size(4) {
		got = append(got, idx.Get(4, i))
	}

	assert.Equal(t, []int{7, 5, 5}, got)
	err = errors.Capture(func() { idx.Get(4, -1) })
	assert.Equal(t, errors.ErrCodeKeyOutOfRange, errors.GetCode(err))
}

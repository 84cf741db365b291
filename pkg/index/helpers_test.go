package index

import (
	"slices"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/Aman-CERP/joinindex/pkg/joiner"
)

type fact struct {
	id     int
	room   string
	day    string
	start  int
	skill  string
	skills []string
}

func room(f *fact) any   { return f.room }
func day(f *fact) any    { return f.day }
func start(f *fact) any  { return f.start }
func skill(f *fact) any  { return f.skill }
func skills(f *fact) any { return f.skills }

// chain bundles a factory with both key extractors of a joiner list.
type chain struct {
	joiners  *joiner.Joiners[*fact, *fact]
	factory  *Factory
	leftKey  func(*fact) any
	rightKey func(*fact) any
}

func newChain(t *testing.T, j *joiner.Joiners[*fact, *fact], opts ...Option) chain {
	t.Helper()
	f, err := NewFactory(j.Predicates(), opts...)
	require.NoError(t, err)
	lk, err := KeysExtractor(f, j.LeftMappings())
	require.NoError(t, err)
	rk, err := KeysExtractor(f, j.RightMappings())
	require.NoError(t, err)
	return chain{joiners: j, factory: f, leftKey: lk, rightKey: rk}
}

func ids(facts []*fact) []int {
	out := make([]int, 0, len(facts))
	for _, f := range facts {
		out = append(out, f.id)
	}
	slices.Sort(out)
	return out
}

func visit(idx Indexer[*fact], key any) []*fact {
	var out []*fact
	idx.ForEach(key, func(f *fact) { out = append(out, f) })
	return out
}

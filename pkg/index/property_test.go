package index

import (
	"fmt"
	"math/rand/v2"
	"slices"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Aman-CERP/joinindex/pkg/joiner"
)

var (
	rooms     = []string{"R1", "R2", "R3"}
	days      = []string{"Mon", "Tue"}
	skillPool = []string{"A", "B", "C", "D"}
)

func randomFact(rng *rand.Rand, id int) *fact {
	f := &fact{
		id:    id,
		room:  rooms[rng.IntN(len(rooms))],
		day:   days[rng.IntN(len(days))],
		start: rng.IntN(8),
		skill: skillPool[rng.IntN(len(skillPool))],
	}
	for range rng.IntN(4) {
		f.skills = append(f.skills, skillPool[rng.IntN(len(skillPool))])
	}
	return f
}

func propertyChains() map[string]*joiner.Joiners[*fact, *fact] {
	return map[string]*joiner.Joiners[*fact, *fact]{
		"equal":        joiner.New[*fact, *fact]().Equal(room, room).Equal(day, day),
		"mixed":        joiner.New[*fact, *fact]().Equal(room, room).LessThan(start, start),
		"ge":           joiner.New[*fact, *fact]().GreaterOrEqual(start, start),
		"le_then_eq":   joiner.New[*fact, *fact]().LessOrEqual(start, start).Equal(day, day),
		"containing":   joiner.New[*fact, *fact]().Containing(skills, skill),
		"contained_in": joiner.New[*fact, *fact]().ContainedIn(skill, skills),
		"any_of":       joiner.New[*fact, *fact]().Equal(room, room).ContainingAnyOf(skills, skills),
		"gt_any_of":    joiner.New[*fact, *fact]().GreaterThan(start, start).ContainingAnyOf(skills, skills),
		"five_equal": joiner.New[*fact, *fact]().
			Equal(room, room).Equal(day, day).Equal(start, start).Equal(skill, skill).
			Equal(func(f *fact) any { return f.start % 2 }, func(f *fact) any { return f.start % 2 }),
	}
}

// TestIndex_MatchesBruteForce churns random puts and removes and checks every
// query against a scan that evaluates the joiners directly.
func TestIndex_MatchesBruteForce(t *testing.T) {
	for name, j := range propertyChains() {
		for _, backend := range backends {
			for _, side := range []Side{Left, Right} {
				t.Run(fmt.Sprintf("%s/%s/%s", name, backend, side), func(t *testing.T) {
					c := newChain(t, j, WithBackend(backend))
					runBruteForce(t, c, side, rand.New(rand.NewPCG(42, uint64(len(name)))))
				})
			}
		}
	}
}

func runBruteForce(t *testing.T, c chain, side Side, rng *rand.Rand) {
	storeKey, queryKey := c.leftKey, c.rightKey
	matches := c.joiners.Matches
	if side == Right {
		storeKey, queryKey = c.rightKey, c.leftKey
		matches = func(l, r *fact) bool { return c.joiners.Matches(r, l) }
	}

	type storedFact struct {
		fact  *fact
		entry Entry
	}

	idx := Build[*fact](c.factory, side)
	var stored []storedFact
	positional := c.factory.SupportsGet(side)

	// removeAt retracts the i-th stored fact; the last one takes its place.
	removeAt := func(i int) {
		s := stored[i]
		idx.Remove(storeKey(s.fact), s.entry)
		stored[i] = stored[len(stored)-1]
		stored = stored[:len(stored)-1]
	}

	for step := range 600 {
		switch op := rng.IntN(10); {
		case op < 5 || len(stored) == 0:
			f := randomFact(rng, step)
			stored = append(stored, storedFact{fact: f, entry: idx.Put(storeKey(f), f)})
		case op < 7:
			removeAt(rng.IntN(len(stored)))
		default:
			probe := randomFact(rng, -1)
			key := queryKey(probe)

			var want []*fact
			for _, s := range stored {
				if matches(s.fact, probe) {
					want = append(want, s.fact)
				}
			}

			got := visit(idx, key)
			require.Equal(t, ids(want), ids(got), "step %d probe %+v", step, probe)
			require.Equal(t, len(got), idx.Size(key))
			require.Equal(t, ids(got), ids(slices.Collect(idx.Iterator(key))))

			if positional {
				byPosition := make([]*fact, 0, len(got))
				for i := range idx.Size(key) {
					byPosition = append(byPosition, idx.Get(key, i))
				}
				require.Equal(t, ids(got), ids(byPosition))
			}
		}
	}

	for len(stored) > 0 {
		removeAt(rng.IntN(len(stored)))
	}
	assert.True(t, idx.IsEmpty())
	assert.True(t, idx.IsRemovable())
	for range 20 {
		assert.Zero(t, idx.Size(queryKey(randomFact(rng, -1))))
	}
}

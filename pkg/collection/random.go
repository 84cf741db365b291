package collection

import (
	"iter"
	"math/rand/v2"
)

// RandomIndices yields the integers [0, n) in random order, each exactly once.
// It runs a Fisher-Yates shuffle lazily, remembering only the swapped slots,
// so drawing k values costs O(k) time and memory.
func RandomIndices(n int, rng *rand.Rand) iter.Seq[int] {
	return func(yield func(int) bool) {
		swapped := make(map[int]int)
		at := func(i int) int {
			if v, ok := swapped[i]; ok {
				return v
			}
			return i
		}
		for remaining := n; remaining > 0; remaining-- {
			j := rng.IntN(remaining)
			last := remaining - 1
			picked := at(j)
			swapped[j] = at(last)
			delete(swapped, last)
			if !yield(picked) {
				return
			}
		}
	}
}

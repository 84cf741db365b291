package index

import (
	"iter"
	"math/rand/v2"

	"github.com/Aman-CERP/joinindex/pkg/collection"
)

// RandomSequence yields the tuples matching key in random order, each once,
// through positional Get. Nothing is copied, so drawing a few tuples from a
// large bucket is cheap. The chain must not change while the sequence runs,
// and it must use IndexedBackend.
func RandomSequence[T comparable](idx Indexer[T], key any, rng *rand.Rand) iter.Seq[T] {
	return func(yield func(T) bool) {
		for i := range collection.RandomIndices(idx.Size(key), rng) {
			if !yield(idx.Get(key, i)) {
				return
			}
		}
	}
}

// RandomElement picks one tuple matching key, or reports false when none does.
func RandomElement[T comparable](idx Indexer[T], key any, rng *rand.Rand) (T, bool) {
	n := idx.Size(key)
	if n == 0 {
		var zero T
		return zero, false
	}
	return idx.Get(key, rng.IntN(n)), true
}

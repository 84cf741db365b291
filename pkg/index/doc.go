// Package index provides incremental join indexes.
//
// An index is a fixed chain of nodes compiled once from an ordered list of
// join predicates. Each node consumes one position of the composite key and
// delegates to a lazily created downstream node per bucket; the last node
// stores the tuples.
//
// # Architecture
//
//	key (R1, Mon, 15)
//	      │
//	┌─────▼──────┐
//	│  ==[2]     │  room, day merged into one level
//	└─────┬──────┘
//	┌─────▼──────┐
//	│  <         │  ordered buckets, stops at the first miss
//	└─────┬──────┘
//	┌─────▼──────┐
//	│  terminal  │  linked list or indexed set
//	└────────────┘
//
// Node kinds:
//   - equality: hash buckets
//   - comparison (<, <=, >, >=): ordered buckets on a B-tree
//   - containing, contained in, containing any of: set-membership with fan-out
//   - terminal: the leaf store selected by [Backend]
//
// # Usage
//
//	f, err := index.NewFactory(joiners.Predicates(), index.WithBackend(index.IndexedBackend))
//	if err != nil {
//	    return err
//	}
//	left := index.Build[*Lesson](f, index.Left)
//	leftKey, _ := index.KeysExtractor(f, joiners.LeftMappings())
//	rightKey, _ := index.KeysExtractor(f, joiners.RightMappings())
//
//	entry := left.Put(leftKey(lesson), lesson)
//	left.ForEach(rightKey(other), visit)
//	left.Remove(leftKey(lesson), entry)
//
// # Thread Safety
//
// Indexes are not safe for concurrent use. A chain is owned by one goroutine;
// independent chains may run in parallel.
//
// # Errors
//
// Broken invariants panic with an *errors.IndexError: ERR_502 when removing
// something that was never put, ERR_503 when a node does not support an
// operation and ERR_504 for positions out of range. Use errors.Capture at the
// application boundary.
package index

// Package collection provides the leaf stores behind join index buckets.
//
//   - [LinkedList] is pointer-linked: O(1) add and O(1) remove by the returned
//     [Element] handle, fast sequential iteration, no positional access.
//   - [IndexedSet] is array-backed: O(1) amortized add, O(1) remove through a
//     caller-supplied [PositionTracker], and positional Get. Removal leaves a
//     tombstone that later reads compact away.
//
// Neither type is safe for concurrent use. Callbacks must not mutate the
// collection they are iterating.
package collection

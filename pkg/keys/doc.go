// Package keys provides the composite key model used by join indexes.
//
// A key is a plain Go value. Zero extracted values map to [None], a single
// non-nil value is used as-is, a single nil value maps to [Null], and two or
// more values are wrapped in a fixed-arity composite ([Pair], [Triple], [Quad])
// or, from five values on, in [Many]. Every shape is a comparable struct, so
// two keys built from pairwise-equal values are == and hash identically when
// used as map keys.
//
// Extracted values must themselves be comparable. Collections used by
// set-membership joins are never keys at a map level; their elements are.
//
// # Usage
//
//	k := keys.Of(room, day)          // keys.Pair{room, day}
//	room := keys.At(0)(k)            // sub-key for chain position 0
//	keys.Of(nil) == keys.Null        // true
//	keys.Of() == keys.None           // true
package keys

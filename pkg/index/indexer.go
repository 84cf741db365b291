package index

import (
	"fmt"
	"iter"

	"github.com/Aman-CERP/joinindex/internal/errors"
	"github.com/Aman-CERP/joinindex/pkg/keys"
)

// Entry is the handle returned by Put. It must be passed back unchanged to
// Remove together with the same key.
type Entry any

// Indexer is one node of a join index chain.
//
// The set of implementations is closed; only this package can add one.
type Indexer[T comparable] interface {
	// Put stores tuple under key and returns the handle needed to remove it.
	//
	// Behavior:
	//   - Buckets are created on demand and kept only while non-empty
	//   - Set-membership nodes store the tuple once per distinct element;
	//     an empty key collection stores nothing but still returns an entry
	//   - Containing-any-of nodes report each tuple once, so they panic
	//     with ERR_502 when the same tuple value is already stored
	Put(key any, tuple T) Entry

	// Remove deletes the tuple stored by Put under the same key.
	//
	// Behavior:
	//   - Buckets that become empty are removed
	//   - Panics with ERR_502 if the key and entry were never put or were
	//     already removed
	Remove(key any, entry Entry)

	// Size counts the tuples matching key, each once.
	Size(key any) int

	// ForEach visits the tuples matching key, each once.
	ForEach(key any, fn func(T))

	// Iterator returns a lazy sequence over the tuples matching key.
	Iterator(key any) iter.Seq[T]

	// Get returns the i-th tuple matching key.
	//
	// Panics with ERR_503 on nodes without positional access and with
	// ERR_504 when i is outside [0, Size(key)).
	Get(key any, i int) T

	// IsEmpty reports whether no tuple is stored.
	IsEmpty() bool

	// IsRemovable reports whether a parent may drop this node.
	IsRemovable() bool

	// String describes the chain shape below and including this node.
	String() string

	indexer()
}

func positionOutOfRange(i, size int) {
	panic(errors.New(errors.ErrCodeKeyOutOfRange,
		fmt.Sprintf("position %d out of range for %d matches", i, size), nil))
}

// bucketMap holds one downstream node per key. A key present in the map
// always has a non-empty downstream node.
type bucketMap[T comparable] struct {
	next    func() Indexer[T]
	buckets map[any]Indexer[T]
}

func newBucketMap[T comparable](next func() Indexer[T]) bucketMap[T] {
	return bucketMap[T]{next: next, buckets: make(map[any]Indexer[T])}
}

// put delegates to the bucket for bucketKey. A new bucket is kept only if the
// downstream node stored something.
func (b *bucketMap[T]) put(bucketKey, key any, tuple T) Entry {
	downstream, ok := b.buckets[bucketKey]
	if !ok {
		downstream = b.next()
	}
	entry := downstream.Put(key, tuple)
	if !ok && !downstream.IsRemovable() {
		b.buckets[bucketKey] = downstream
	}
	return entry
}

func (b *bucketMap[T]) remove(bucketKey, key any, entry Entry) {
	downstream, ok := b.buckets[bucketKey]
	if !ok {
		if release(entry) {
			return
		}
		errors.ImpossibleState("no bucket for key %v", bucketKey)
	}
	downstream.Remove(key, entry)
	if downstream.IsRemovable() {
		delete(b.buckets, bucketKey)
	}
}

func (b *bucketMap[T]) get(bucketKey any) (Indexer[T], bool) {
	downstream, ok := b.buckets[bucketKey]
	return downstream, ok
}

func (b *bucketMap[T]) isEmpty() bool {
	return len(b.buckets) == 0
}

// single normalizes a single-value sub-key so that nil and Null share a bucket.
func single(v any) any {
	if v == nil {
		return keys.Null
	}
	return v
}

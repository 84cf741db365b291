package index

import (
	"iter"

	"github.com/Aman-CERP/joinindex/pkg/keys"
)

type equalIndexer[T comparable] struct {
	retriever keys.Retriever
	bucketMap[T]
	shape string
}

func newEqualIndexer[T comparable](retriever keys.Retriever, next func() Indexer[T], shape string) *equalIndexer[T] {
	return &equalIndexer[T]{retriever: retriever, bucketMap: newBucketMap(next), shape: shape}
}

func (e *equalIndexer[T]) Put(key any, tuple T) Entry {
	return e.put(single(e.retriever(key)), key, tuple)
}

func (e *equalIndexer[T]) Remove(key any, entry Entry) {
	e.remove(single(e.retriever(key)), key, entry)
}

func (e *equalIndexer[T]) Size(key any) int {
	downstream, ok := e.get(single(e.retriever(key)))
	if !ok {
		return 0
	}
	return downstream.Size(key)
}

func (e *equalIndexer[T]) ForEach(key any, fn func(T)) {
	if downstream, ok := e.get(single(e.retriever(key))); ok {
		downstream.ForEach(key, fn)
	}
}

func (e *equalIndexer[T]) Iterator(key any) iter.Seq[T] {
	downstream, ok := e.get(single(e.retriever(key)))
	if !ok {
		return func(func(T) bool) {}
	}
	return downstream.Iterator(key)
}

func (e *equalIndexer[T]) Get(key any, i int) T {
	downstream, ok := e.get(single(e.retriever(key)))
	if !ok {
		positionOutOfRange(i, 0)
	}
	return downstream.Get(key, i)
}

func (e *equalIndexer[T]) IsEmpty() bool     { return e.isEmpty() }
func (e *equalIndexer[T]) IsRemovable() bool { return e.isEmpty() }
func (e *equalIndexer[T]) String() string    { return e.shape }
func (e *equalIndexer[T]) indexer()          {}

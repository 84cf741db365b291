package index

import (
	"iter"

	"github.com/Aman-CERP/joinindex/internal/errors"
	"github.com/Aman-CERP/joinindex/pkg/collection"
)

func newTerminal[T comparable](b Backend) Indexer[T] {
	if b == IndexedBackend {
		return newIndexedTerminal[T]()
	}
	return newLinkedTerminal[T]()
}

// linkedTerminal stores tuples in insertion order. The entry is the list
// element.
type linkedTerminal[T comparable] struct {
	list collection.LinkedList[T]
}

func newLinkedTerminal[T comparable]() *linkedTerminal[T] {
	return &linkedTerminal[T]{}
}

func (l *linkedTerminal[T]) Put(_ any, tuple T) Entry {
	return l.list.Add(tuple)
}

func (l *linkedTerminal[T]) Remove(_ any, entry Entry) {
	e, ok := entry.(*collection.Element[T])
	if !ok {
		errors.ImpossibleState("entry %T was not returned by a linked terminal", entry)
	}
	l.list.Remove(e)
}

func (l *linkedTerminal[T]) Size(any) int              { return l.list.Len() }
func (l *linkedTerminal[T]) ForEach(_ any, fn func(T)) { l.list.ForEach(fn) }
func (l *linkedTerminal[T]) Iterator(any) iter.Seq[T]  { return l.list.All() }
func (l *linkedTerminal[T]) IsEmpty() bool             { return l.list.IsEmpty() }
func (l *linkedTerminal[T]) IsRemovable() bool         { return l.list.IsEmpty() }
func (l *linkedTerminal[T]) String() string            { return LinkedBackend.String() }
func (l *linkedTerminal[T]) indexer()                  {}

func (l *linkedTerminal[T]) Get(any, int) T {
	errors.Unsupported("Get", l.String())
	var zero T
	return zero
}

// indexedEntry wraps a tuple with the slot it occupies in an indexed set.
type indexedEntry[T comparable] struct {
	tuple    T
	position int
}

func entryTracker[T comparable]() collection.FieldTracker[*indexedEntry[T]] {
	return collection.NewFieldTracker(
		func(e *indexedEntry[T]) int { return e.position },
		func(e *indexedEntry[T], p int) { e.position = p },
	)
}

// indexedTerminal stores tuples in an indexed set. The entry is the wrapper
// that carries the slot.
type indexedTerminal[T comparable] struct {
	set *collection.IndexedSet[*indexedEntry[T]]
}

func newIndexedTerminal[T comparable]() *indexedTerminal[T] {
	return &indexedTerminal[T]{set: collection.NewIndexedSet[*indexedEntry[T]](entryTracker[T]())}
}

func (x *indexedTerminal[T]) Put(_ any, tuple T) Entry {
	e := &indexedEntry[T]{tuple: tuple, position: collection.Unused}
	x.set.Add(e)
	return e
}

func (x *indexedTerminal[T]) Remove(_ any, entry Entry) {
	e, ok := entry.(*indexedEntry[T])
	if !ok {
		errors.ImpossibleState("entry %T was not returned by an indexed terminal", entry)
	}
	if !x.set.Remove(e) {
		errors.ImpossibleState("entry for %v is not stored (already removed?)", e.tuple)
	}
}

func (x *indexedTerminal[T]) Size(any) int { return x.set.Size() }

func (x *indexedTerminal[T]) ForEach(_ any, fn func(T)) {
	x.set.ForEach(func(e *indexedEntry[T]) { fn(e.tuple) })
}

func (x *indexedTerminal[T]) Iterator(any) iter.Seq[T] {
	return func(yield func(T) bool) {
		for e := range x.set.All() {
			if !yield(e.tuple) {
				return
			}
		}
	}
}

func (x *indexedTerminal[T]) Get(_ any, i int) T {
	if i < 0 || i >= x.set.Size() {
		positionOutOfRange(i, x.set.Size())
	}
	return x.set.Get(i).tuple
}

func (x *indexedTerminal[T]) IsEmpty() bool     { return x.set.IsEmpty() }
func (x *indexedTerminal[T]) IsRemovable() bool { return x.set.IsEmpty() }
func (x *indexedTerminal[T]) String() string    { return IndexedBackend.String() }
func (x *indexedTerminal[T]) indexer()          {}

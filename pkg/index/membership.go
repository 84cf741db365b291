package index

import (
	"iter"

	"github.com/Aman-CERP/joinindex/internal/errors"
	"github.com/Aman-CERP/joinindex/pkg/keys"
)

// fanOut is the entry of a tuple stored once per element of its key
// collection. parts keeps the order in which the elements were stored.
type fanOut struct {
	tuple   any
	parts   []fanOutPart
	removed bool
}

type fanOutPart struct {
	element any
	entry   Entry
}

func (fo *fanOut) retire() {
	if fo.removed {
		errors.ImpossibleState("set-membership entry for %v was already removed", fo.tuple)
	}
	fo.removed = true
}

// vacant reports whether entry stored nothing at all: a set-membership entry
// whose parts are all vacant, including one with an empty key collection.
func vacant(entry Entry) bool {
	fo, ok := entry.(*fanOut)
	if !ok {
		return false
	}
	for _, part := range fo.parts {
		if !vacant(part.entry) {
			return false
		}
	}
	return true
}

// release retires a vacant entry whose bucket was never kept. It returns false
// if entry stored something.
func release(entry Entry) bool {
	if !vacant(entry) {
		return false
	}
	retireAll(entry.(*fanOut))
	return true
}

func retireAll(fo *fanOut) {
	fo.retire()
	for _, part := range fo.parts {
		retireAll(part.entry.(*fanOut))
	}
}

// fanOutWriter is the write side shared by the nodes that store a collection.
type fanOutWriter[T comparable] struct {
	retriever keys.Retriever
	bucketMap[T]
}

func (w *fanOutWriter[T]) Put(key any, tuple T) Entry {
	elements := keys.Elements(w.retriever(key))
	fo := &fanOut{tuple: tuple, parts: make([]fanOutPart, len(elements))}
	for i, element := range elements {
		fo.parts[i] = fanOutPart{element: element, entry: w.put(element, key, tuple)}
	}
	return fo
}

func (w *fanOutWriter[T]) Remove(key any, entry Entry) {
	fo, ok := entry.(*fanOut)
	if !ok {
		errors.ImpossibleState("entry %T was not returned by a set-membership node", entry)
	}
	if fo.removed {
		errors.ImpossibleState("set-membership entry for %v was already removed", fo.tuple)
	}
	if n := len(keys.Elements(w.retriever(key))); n != len(fo.parts) {
		errors.ImpossibleState("tuple was stored under %d keys but its key now has %d", len(fo.parts), n)
	}
	for _, part := range fo.parts {
		w.remove(part.element, key, part.entry)
	}
	fo.removed = true
}

func (w *fanOutWriter[T]) IsEmpty() bool     { return w.isEmpty() }
func (w *fanOutWriter[T]) IsRemovable() bool { return w.isEmpty() }

// containingIndexer stores collections and is queried by a single value.
type containingIndexer[T comparable] struct {
	fanOutWriter[T]
	shape string
}

func newContainingIndexer[T comparable](retriever keys.Retriever, next func() Indexer[T], shape string) *containingIndexer[T] {
	return &containingIndexer[T]{
		fanOutWriter: fanOutWriter[T]{retriever: retriever, bucketMap: newBucketMap(next)},
		shape:        shape,
	}
}

func (c *containingIndexer[T]) Size(key any) int {
	downstream, ok := c.get(single(c.retriever(key)))
	if !ok {
		return 0
	}
	return downstream.Size(key)
}

func (c *containingIndexer[T]) ForEach(key any, fn func(T)) {
	if downstream, ok := c.get(single(c.retriever(key))); ok {
		downstream.ForEach(key, fn)
	}
}

func (c *containingIndexer[T]) Iterator(key any) iter.Seq[T] {
	downstream, ok := c.get(single(c.retriever(key)))
	if !ok {
		return func(func(T) bool) {}
	}
	return downstream.Iterator(key)
}

func (c *containingIndexer[T]) Get(any, int) T {
	errors.Unsupported("Get", c.shape)
	var zero T
	return zero
}

func (c *containingIndexer[T]) String() string { return c.shape }
func (c *containingIndexer[T]) indexer()       {}

// containingAnyOfIndexer stores collections and is queried by a collection.
// A tuple reachable through several query elements is reported once, so a
// tuple value may be stored only once per node.
type containingAnyOfIndexer[T comparable] struct {
	fanOutWriter[T]
	stored map[T]struct{}
	shape  string
}

func newContainingAnyOfIndexer[T comparable](retriever keys.Retriever, next func() Indexer[T], shape string) *containingAnyOfIndexer[T] {
	return &containingAnyOfIndexer[T]{
		fanOutWriter: fanOutWriter[T]{retriever: retriever, bucketMap: newBucketMap(next)},
		stored:       make(map[T]struct{}),
		shape:        shape,
	}
}

func (c *containingAnyOfIndexer[T]) Put(key any, tuple T) Entry {
	if _, dup := c.stored[tuple]; dup {
		errors.ImpossibleState("tuple %v is already stored in %s", tuple, c.shape)
	}
	entry := c.fanOutWriter.Put(key, tuple)
	if !vacant(entry) {
		c.stored[tuple] = struct{}{}
	}
	return entry
}

func (c *containingAnyOfIndexer[T]) Remove(key any, entry Entry) {
	c.fanOutWriter.Remove(key, entry)
	if !vacant(entry) {
		delete(c.stored, entry.(*fanOut).tuple.(T))
	}
}

func (c *containingAnyOfIndexer[T]) Size(key any) int {
	query := keys.Elements(c.retriever(key))
	if len(query) == 1 {
		if downstream, ok := c.get(query[0]); ok {
			return downstream.Size(key)
		}
		return 0
	}
	total := 0
	c.visit(key, query, func(T) bool {
		total++
		return true
	})
	return total
}

func (c *containingAnyOfIndexer[T]) ForEach(key any, fn func(T)) {
	c.visit(key, keys.Elements(c.retriever(key)), func(t T) bool {
		fn(t)
		return true
	})
}

func (c *containingAnyOfIndexer[T]) Iterator(key any) iter.Seq[T] {
	return func(yield func(T) bool) {
		c.visit(key, keys.Elements(c.retriever(key)), yield)
	}
}

// visit reports every distinct tuple reachable from query until fn returns
// false. A single-element query cannot produce duplicates and skips the seen
// set.
func (c *containingAnyOfIndexer[T]) visit(key any, query []any, fn func(T) bool) {
	switch len(query) {
	case 0:
		return
	case 1:
		if downstream, ok := c.get(query[0]); ok {
			for t := range downstream.Iterator(key) {
				if !fn(t) {
					return
				}
			}
		}
		return
	}
	seen := make(map[T]struct{}, len(query))
	for _, element := range query {
		downstream, ok := c.get(element)
		if !ok {
			continue
		}
		for t := range downstream.Iterator(key) {
			if _, dup := seen[t]; dup {
				continue
			}
			seen[t] = struct{}{}
			if !fn(t) {
				return
			}
		}
	}
}

func (c *containingAnyOfIndexer[T]) Get(any, int) T {
	errors.Unsupported("Get", c.shape)
	var zero T
	return zero
}

func (c *containingAnyOfIndexer[T]) String() string { return c.shape }
func (c *containingAnyOfIndexer[T]) indexer()       {}

// containedInIndexer stores single values and is queried by a collection.
// Each tuple lives in exactly one bucket, so the distinct query elements
// reach disjoint tuples.
type containedInIndexer[T comparable] struct {
	retriever keys.Retriever
	bucketMap[T]
	shape string
}

func newContainedInIndexer[T comparable](retriever keys.Retriever, next func() Indexer[T], shape string) *containedInIndexer[T] {
	return &containedInIndexer[T]{retriever: retriever, bucketMap: newBucketMap(next), shape: shape}
}

func (c *containedInIndexer[T]) Put(key any, tuple T) Entry {
	return c.put(single(c.retriever(key)), key, tuple)
}

func (c *containedInIndexer[T]) Remove(key any, entry Entry) {
	c.remove(single(c.retriever(key)), key, entry)
}

// each visits the non-empty buckets selected by the query collection.
func (c *containedInIndexer[T]) each(key any, visit func(Indexer[T]) bool) {
	for _, element := range keys.Elements(c.retriever(key)) {
		if downstream, ok := c.get(element); ok && !visit(downstream) {
			return
		}
	}
}

func (c *containedInIndexer[T]) Size(key any) int {
	total := 0
	c.each(key, func(d Indexer[T]) bool {
		total += d.Size(key)
		return true
	})
	return total
}

func (c *containedInIndexer[T]) ForEach(key any, fn func(T)) {
	c.each(key, func(d Indexer[T]) bool {
		d.ForEach(key, fn)
		return true
	})
}

func (c *containedInIndexer[T]) Iterator(key any) iter.Seq[T] {
	return func(yield func(T) bool) {
		c.each(key, func(d Indexer[T]) bool {
			for t := range d.Iterator(key) {
				if !yield(t) {
					return false
				}
			}
			return true
		})
	}
}

func (c *containedInIndexer[T]) Get(key any, i int) T {
	var (
		found T
		done  bool
	)
	offset, seen := i, 0
	if i >= 0 {
		c.each(key, func(d Indexer[T]) bool {
			size := d.Size(key)
			if offset < size {
				found, done = d.Get(key, offset), true
				return false
			}
			offset -= size
			seen += size
			return true
		})
	}
	if !done {
		positionOutOfRange(i, seen)
	}
	return found
}

func (c *containedInIndexer[T]) IsEmpty() bool     { return c.isEmpty() }
func (c *containedInIndexer[T]) IsRemovable() bool { return c.isEmpty() }
func (c *containedInIndexer[T]) String() string    { return c.shape }
func (c *containedInIndexer[T]) indexer()          {}
